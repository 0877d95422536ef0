// Command datmant is the headless companion of the annotation tool: it
// scans working directories, converts masks between color and class
// coding, validates color tables and generates GIS defect overlays without
// a GUI.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/alphacontrollab/datmant"
	"github.com/alphacontrollab/datmant/colortable"
	"github.com/alphacontrollab/datmant/maskio"
	"github.com/alphacontrollab/datmant/overlay"
	"github.com/alphacontrollab/datmant/session"
)

const usage = `usage: datmant <command> [flags]

commands:
  ls        list the labelable items of a working directory
  convert   convert a color mask to a class mask (or back with -reverse)
  table     validate a color table file
  overlay   rasterize the GIS defect registry into a helper overlay

run 'datmant <command> -h' for command flags
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var run func(args []string, log *zap.Logger) error
	switch os.Args[1] {
	case "ls":
		run = runLs
	case "convert":
		run = runConvert
	case "table":
		run = runTable
	case "overlay":
		run = runOverlay
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "datmant: unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	log, err := buildLogger(os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "datmant:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(os.Args[2:], log); err != nil {
		log.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

// buildLogger peeks at the shared -debug flag before the command parses
// its own flag set.
func buildLogger(args []string) (*zap.Logger, error) {
	for _, a := range args {
		if a == "-debug" || a == "--debug" {
			return zap.NewDevelopment()
		}
	}
	return zap.NewProduction()
}

func commandFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Bool("debug", false, "verbose development logging")
	return fs
}

func runLs(args []string, log *zap.Logger) error {
	fs := commandFlags("ls")
	dir := fs.String("dir", ".", "working directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := session.Scan(*dir)
	if err != nil {
		return err
	}

	for _, it := range items {
		surface, defect := "-", "-"
		if it.HasSurfaceMask() {
			surface = "surface"
		}
		if it.HasDefectMask() {
			defect = "defect"
		}
		fmt.Printf("%-40s %-8s %s\n", it.Name, surface, defect)
	}
	log.Info("scan finished", zap.String("dir", *dir), zap.Int("items", len(items)))
	return nil
}

func runConvert(args []string, log *zap.Logger) error {
	fs := commandFlags("convert")
	in := fs.String("in", "", "input mask file")
	out := fs.String("out", "", "output mask file")
	tablePath := fs.String("table", "", "color table CSV (empty: legacy two-class table)")
	reverse := fs.Bool("reverse", false, "convert class mask to color mask")
	tolerance := fs.Int("tolerance", datmant.DefaultTolerance, "per-channel color matching tolerance")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("convert: -in and -out are required")
	}

	table, err := loadTable(*tablePath, uint8(*tolerance))
	if err != nil {
		return err
	}
	c := datmant.NewCanvas(datmant.WithColorTable(table))

	if *reverse {
		classes, err := maskio.LoadClassMask(*in, 0, 0)
		if err != nil {
			return err
		}
		img := datmant.NewPixmap(classes.Width(), classes.Height())
		if err := c.InitializeFromClasses(img, classes, nil); err != nil {
			return err
		}
		mask, err := c.ExportColorMask()
		if err != nil {
			return err
		}
		if err := maskio.SaveColorMask(*out, mask); err != nil {
			return err
		}
	} else {
		mask, err := maskio.LoadColorMask(*in, 0, 0)
		if err != nil {
			return err
		}
		if err := c.Initialize(mask, mask, nil, false); err != nil {
			return err
		}
		classes, err := c.ExportClassMask()
		if err != nil {
			return err
		}
		if err := maskio.SaveClassMask(*out, classes); err != nil {
			return err
		}
	}

	log.Info("mask converted",
		zap.String("in", *in), zap.String("out", *out), zap.Bool("reverse", *reverse))
	return nil
}

func runTable(args []string, log *zap.Logger) error {
	fs := commandFlags("table")
	check := fs.String("check", "", "color table CSV to validate")
	tolerance := fs.Int("tolerance", datmant.DefaultTolerance, "per-channel color matching tolerance")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *check == "" {
		return fmt.Errorf("table: -check is required")
	}

	table, err := colortable.LoadTable(*check, uint8(*tolerance))
	if err != nil {
		return err
	}

	for _, e := range table.Entries() {
		fmt.Printf("%3d  %-9s  %-20s  %v\n", e.Code, e.Color.HexString(), e.Label, e.Aliases)
	}
	log.Info("table valid", zap.String("path", *check), zap.Int("classes", table.Len()))
	return nil
}

func runOverlay(args []string, log *zap.Logger) error {
	fs := commandFlags("overlay")
	dir := fs.String("dir", ".", "working directory with the orthophotos")
	name := fs.String("name", "", "item name (without the .marked.jpg suffix)")
	shapes := fs.String("shapes", "", "directory holding the defect shapefiles")
	out := fs.String("out", "", "overlay output PNG (default <name>.defects.overlay.png)")
	blendOut := fs.String("blend", "", "optional blended preview output (PNG or JPEG)")
	weight := fs.Float64("weight", 0.7, "base image weight in the blended preview")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *shapes == "" {
		return fmt.Errorf("overlay: -name and -shapes are required")
	}

	s, err := session.New(*dir, log)
	if err != nil {
		return err
	}
	var item session.Item
	found := false
	for _, it := range s.Items() {
		if it.Name == *name {
			item, found = it, true
			break
		}
	}
	if !found {
		return fmt.Errorf("overlay: item %q not in %s", *name, *dir)
	}

	img, err := s.LoadImage(item)
	if err != nil {
		return err
	}

	gen := overlay.New(log)
	helper, err := gen.GenerateForImage(item.VRTPath(), *shapes, img.Width(), img.Height())
	if err != nil {
		return err
	}

	outPath := *out
	if outPath == "" {
		outPath = item.ImagePath() + ".defects.overlay.png"
	}
	if err := maskio.SaveColorMask(outPath, helper); err != nil {
		return err
	}
	log.Info("overlay written", zap.String("path", outPath))

	if *blendOut != "" {
		var plane *datmant.ClassBuffer
		if item.HasSurfaceMask() {
			plane, err = maskio.LoadClassMask(item.SurfaceMaskPath(), img.Width(), img.Height())
			if err != nil {
				return err
			}
		}
		preview, err := overlay.Blend(img, helper, plane, *weight)
		if err != nil {
			return err
		}
		if err := maskio.SaveImage(*blendOut, preview); err != nil {
			return err
		}
		log.Info("preview written", zap.String("path", *blendOut))
	}

	return nil
}

// loadTable resolves the table flag: an explicit CSV path, or the legacy
// two-class table when the flag is empty.
func loadTable(path string, tolerance uint8) (*datmant.ColorTable, error) {
	if path == "" {
		return datmant.NewColorTable(colortable.Default(), tolerance)
	}
	return colortable.LoadTable(path, tolerance)
}
