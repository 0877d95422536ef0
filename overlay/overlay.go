// Package overlay rasterizes the defect registry of a road segment into a
// helper layer for the annotation canvas. The registry arrives as three
// ESRI shapefiles in world coordinates (defects_polygon, defects_line,
// defects_point); the GDAL .vrt sidecar of the orthophoto provides the
// affine transform from world coordinates to pixels.
//
// Line-kind defects are drawn as wide polylines, surface-kind defects as
// filled polygons, point-kind defects as rings, all in a single signal
// color. The result is a read-only Pixmap sized like the orthophoto,
// transparent where no defect is registered, ready to install as a canvas
// helper layer.
package overlay

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"go.uber.org/zap"

	"github.com/alphacontrollab/datmant"
)

// Overlay errors.
var (
	// ErrNoGeoTransform is returned when the .vrt sidecar carries no
	// GeoTransform element.
	ErrNoGeoTransform = errors.New("overlay: no GeoTransform in vrt")

	// ErrNoShapefiles is returned when none of the three defect
	// shapefiles exist in the registry directory.
	ErrNoShapefiles = errors.New("overlay: no defect shapefiles")
)

// Kind partitions the registry defect types by how they are drawn.
type Kind int

const (
	KindLine Kind = iota
	KindSurface
	KindPoint
)

// defectKinds maps the registry type codes to their drawing kind.
// The codes are fixed by the road-survey standard feeding the registry.
var defectKinds = map[string]Kind{
	"KPIKIPR": KindLine,
	"KVUUK":   KindLine,
	"PAIK_J":  KindLine,
	"POIKPR":  KindLine,
	"SERV":    KindLine,
	"VORK":    KindSurface,
	"PAIK":    KindSurface,
	"MUREN":   KindSurface,
	"AUK":     KindPoint,
}

// shapefileNames are the registry files, one per geometry type.
var shapefileNames = []string{"defects_polygon", "defects_line", "defects_point"}

// GeoTransform is the GDAL six-coefficient affine transform:
// origin X, pixel width, row rotation, origin Y, column rotation, pixel
// height (negative for north-up imagery).
type GeoTransform [6]float64

// ReadGeoTransform extracts the transform from a GDAL .vrt sidecar.
func ReadGeoTransform(path string) (GeoTransform, error) {
	var gt GeoTransform

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return gt, fmt.Errorf("overlay: read vrt: %w", err)
	}

	text := string(data)
	from := strings.Index(text, "<GeoTransform>")
	to := strings.Index(text, "</GeoTransform>")
	if from < 0 || to < from {
		return gt, fmt.Errorf("%w: %s", ErrNoGeoTransform, filepath.Base(path))
	}

	fields := strings.Split(text[from+len("<GeoTransform>"):to], ",")
	if len(fields) != 6 {
		return gt, fmt.Errorf("%w: want 6 coefficients, got %d", ErrNoGeoTransform, len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return gt, fmt.Errorf("overlay: bad GeoTransform coefficient %q: %w", f, err)
		}
		gt[i] = v
	}
	if gt[1] == 0 || gt[5] == 0 {
		return gt, fmt.Errorf("%w: zero pixel size", ErrNoGeoTransform)
	}
	return gt, nil
}

// Pixel projects a world coordinate to pixel coordinates, rounding to the
// nearest pixel. Rotation coefficients are ignored: survey orthophotos are
// north-up.
func (g GeoTransform) Pixel(x, y float64) datmant.Point {
	return datmant.Pt(
		math.Round((x-g[0])/g[1]),
		math.Round((y-g[3])/g[5]),
	)
}

// Extent returns the world-coordinate bounds of a w x h image.
func (g GeoTransform) Extent(w, h int) (xmin, xmax, ymin, ymax float64) {
	xmin = g[0]
	xmax = g[0] + g[1]*float64(w-1)
	ymin = g[3] + g[5]*float64(h-1)
	ymax = g[3]
	return
}

// Generator rasterizes registry defects into helper overlays.
// The zero drawing parameters of New match the legacy tool.
type Generator struct {
	LineWidth  int          // stroke diameter for line-kind defects
	RingRadius int          // ring radius for point-kind defects
	RingWidth  int          // ring stroke width
	Color      datmant.RGBA8

	log *zap.Logger
}

// New returns a generator with the legacy drawing parameters.
func New(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		LineWidth:  40,
		RingRadius: 50,
		RingWidth:  25,
		Color:      datmant.RGBA8{R: 128, B: 255, A: 255},
		log:        log,
	}
}

// Generate reads the registry shapefiles under shapeDir and rasterizes
// every defect intersecting the image extent into a w x h helper layer.
// Shapefiles absent from the directory are skipped; at least one must
// exist.
func (g *Generator) Generate(gt GeoTransform, shapeDir string, w, h int) (*datmant.Pixmap, error) {
	xmin, xmax, ymin, ymax := gt.Extent(w, h)
	out := datmant.NewPixmap(w, h)
	opened, drawn := 0, 0

	for _, name := range shapefileNames {
		path := filepath.Join(shapeDir, name+".shp")
		if _, err := os.Stat(path); err != nil {
			g.log.Warn("shapefile missing", zap.String("path", path))
			continue
		}

		r, err := shp.Open(path)
		if err != nil {
			return nil, fmt.Errorf("overlay: open %s: %w", name, err)
		}
		opened++

		fields := r.Fields()
		for r.Next() {
			row, shape := r.Shape()

			box := shape.BBox()
			if !boxTouches(box, xmin, xmax, ymin, ymax) {
				continue
			}

			kind, ok := defectKind(r, fields, row)
			if !ok {
				g.log.Warn("defect with unknown type code skipped",
					zap.String("file", name), zap.Int("row", row))
				continue
			}

			g.drawShape(out, gt, shape, kind)
			drawn++
		}
		r.Close()
	}

	if opened == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoShapefiles, shapeDir)
	}

	g.log.Info("overlay generated",
		zap.Int("width", w), zap.Int("height", h), zap.Int("defects", drawn))
	return out, nil
}

// GenerateForImage is Generate with the transform read from a .vrt
// sidecar.
func (g *Generator) GenerateForImage(vrtPath, shapeDir string, w, h int) (*datmant.Pixmap, error) {
	gt, err := ReadGeoTransform(vrtPath)
	if err != nil {
		return nil, err
	}
	return g.Generate(gt, shapeDir, w, h)
}

// defectKind resolves the drawing kind of a record by scanning its
// attributes for a known registry type code.
func defectKind(r *shp.Reader, fields []shp.Field, row int) (Kind, bool) {
	for col := range fields {
		code := strings.TrimSpace(r.ReadAttribute(row, col))
		if kind, ok := defectKinds[strings.ToUpper(code)]; ok {
			return kind, true
		}
	}
	return 0, false
}

// boxTouches reports whether any corner coordinate pair of box falls
// inside the open extent, the same acceptance rule the legacy tool used.
func boxTouches(box shp.Box, xmin, xmax, ymin, ymax float64) bool {
	xin := func(x float64) bool { return xmin < x && x < xmax }
	yin := func(y float64) bool { return ymin < y && y < ymax }
	return (xin(box.MinX) || xin(box.MaxX)) && (yin(box.MinY) || yin(box.MaxY))
}

func (g *Generator) drawShape(out *datmant.Pixmap, gt GeoTransform, shape shp.Shape, kind Kind) {
	switch s := shape.(type) {
	case *shp.Point:
		g.drawRing(out, gt.Pixel(s.X, s.Y))
	case *shp.PolyLine:
		g.drawParts(out, gt, s.Points, s.Parts, kind)
	case *shp.Polygon:
		g.drawParts(out, gt, s.Points, s.Parts, kind)
	}
}

// drawParts projects each part of a multi-part shape and draws it by kind.
func (g *Generator) drawParts(out *datmant.Pixmap, gt GeoTransform, points []shp.Point, parts []int32, kind Kind) {
	for i := range parts {
		start := int(parts[i])
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if start >= end {
			continue
		}

		px := make([]datmant.Point, 0, end-start)
		for _, p := range points[start:end] {
			px = append(px, gt.Pixel(p.X, p.Y))
		}

		switch kind {
		case KindSurface:
			fillPolygon(out, px, g.Color)
		case KindPoint:
			g.drawRing(out, px[0])
		default:
			g.drawPolyline(out, px)
		}
	}
}

func (g *Generator) drawPolyline(out *datmant.Pixmap, pts []datmant.Point) {
	if len(pts) == 1 {
		out.FillDisc(pts[0], g.LineWidth, g.Color)
		return
	}
	for i := 1; i < len(pts); i++ {
		out.FillCapsule(pts[i-1], pts[i], g.LineWidth, g.Color)
	}
}

// drawRing draws an annulus of RingRadius and RingWidth centered at c.
func (g *Generator) drawRing(out *datmant.Pixmap, c datmant.Point) {
	outer := float64(g.RingRadius) + float64(g.RingWidth)/2
	inner := float64(g.RingRadius) - float64(g.RingWidth)/2
	if inner < 0 {
		inner = 0
	}

	minX, maxX := int(c.X-outer)-1, int(c.X+outer)+1
	minY, maxY := int(c.Y-outer)-1, int(c.Y+outer)+1
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := c.Distance(datmant.Pt(float64(x), float64(y)))
			if d >= inner && d <= outer {
				out.SetPixel(x, y, g.Color)
			}
		}
	}
}

// fillPolygon fills a closed ring with even-odd scanline parity. The ring
// closes implicitly from the last point back to the first.
func fillPolygon(out *datmant.Pixmap, pts []datmant.Point, col datmant.RGBA8) {
	if len(pts) < 3 {
		return
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	y0 := int(math.Max(0, math.Floor(minY)))
	y1 := int(math.Min(float64(out.Height()-1), math.Ceil(maxY)))

	var xs []float64
	for y := y0; y <= y1; y++ {
		fy := float64(y)
		xs = xs[:0]
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if a.Y == b.Y {
				continue
			}
			// Half-open edge rule keeps shared vertices from double
			// counting.
			if (fy >= math.Min(a.Y, b.Y)) && (fy < math.Max(a.Y, b.Y)) {
				t := (fy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			out.FillSpan(int(math.Ceil(xs[i])), int(math.Floor(xs[i+1]))+1, y, col)
		}
	}
}

// Blend produces the dimmed defect preview the legacy tool showed:
// overlay pixels replace base pixels, pixels masked out by the surface
// plane (value 0) are blacked, and the result is mixed back over the base
// with the given base weight.
func Blend(base, over *datmant.Pixmap, surfacePlane *datmant.ClassBuffer, baseWeight float64) (*datmant.Pixmap, error) {
	w, h := base.Width(), base.Height()
	if over.Width() != w || over.Height() != h {
		return nil, fmt.Errorf("%w: overlay %dx%d, base %dx%d",
			datmant.ErrDimensionMismatch, over.Width(), over.Height(), w, h)
	}
	if surfacePlane != nil && (surfacePlane.Width() != w || surfacePlane.Height() != h) {
		return nil, fmt.Errorf("%w: surface plane %dx%d, base %dx%d",
			datmant.ErrDimensionMismatch, surfacePlane.Width(), surfacePlane.Height(), w, h)
	}
	if baseWeight < 0 {
		baseWeight = 0
	} else if baseWeight > 1 {
		baseWeight = 1
	}

	out := datmant.NewPixmap(w, h)
	for y := range h {
		for x := range w {
			bp := base.GetPixel(x, y)

			fg := bp
			if op := over.GetPixel(x, y); op.A > 0 {
				fg = op
			}
			if surfacePlane != nil && surfacePlane.At(x, y) == 0 {
				fg = datmant.Black
			}

			out.SetPixel(x, y, datmant.RGBA8{
				R: mix(bp.R, fg.R, baseWeight),
				G: mix(bp.G, fg.G, baseWeight),
				B: mix(bp.B, fg.B, baseWeight),
				A: 255,
			})
		}
	}
	return out, nil
}

func mix(a, b uint8, wa float64) uint8 {
	v := wa*float64(a) + (1-wa)*float64(b)
	return uint8(math.Round(math.Min(255, math.Max(0, v))))
}
