// Package session manages an annotation working directory: scanning it for
// labelable images, pairing each image with its mask sidecars, assembling
// the initial color mask a canvas loads from, and writing the exported
// masks back in the legacy on-disk layout.
//
// The layout is one orthophoto per item plus sidecar masks next to it:
//
//	<name>.marked.jpg        the annotated orthophoto (the item itself)
//	<name>.mask.png          base surface mask, 0 = masked out
//	<name>.cut.mask_v2.png   updated surface mask, replaces the base when present
//	<name>.defect.mask.png   defect mask, 255 = defect
//	<name>.vrt               GDAL sidecar for the GIS overlay
//
// Files matching *.cut.marked.jpg are crops of already processed items and
// are never listed.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/alphacontrollab/datmant"
	"github.com/alphacontrollab/datmant/maskio"
)

// Sidecar suffixes of the legacy directory layout.
const (
	imageSuffix       = ".marked.jpg"
	cutImageSuffix    = ".cut.marked.jpg"
	baseMaskSuffix    = ".mask.png"
	surfaceMaskSuffix = ".cut.mask_v2.png"
	defectMaskSuffix  = ".defect.mask.png"
	vrtSuffix         = ".vrt"
)

// Class codes the legacy masks project from. They match the Default color
// table of the colortable package.
const (
	SurfaceCode uint8 = 1
	DefectCode  uint8 = 2
)

// Session errors.
var (
	// ErrNoItems is returned when a scanned directory holds no labelable
	// images.
	ErrNoItems = errors.New("session: no images in directory")

	// ErrOutOfRange is returned by navigation past either end of the item
	// list.
	ErrOutOfRange = errors.New("session: item index out of range")
)

// Item is one labelable image and its sidecar masks.
type Item struct {
	Name string // base name without the .marked.jpg suffix
	Dir  string
}

// ImagePath returns the orthophoto path.
func (it Item) ImagePath() string { return filepath.Join(it.Dir, it.Name+imageSuffix) }

// BaseMaskPath returns the base surface mask path.
func (it Item) BaseMaskPath() string { return filepath.Join(it.Dir, it.Name+baseMaskSuffix) }

// SurfaceMaskPath returns the updated surface mask path.
func (it Item) SurfaceMaskPath() string { return filepath.Join(it.Dir, it.Name+surfaceMaskSuffix) }

// DefectMaskPath returns the defect mask path.
func (it Item) DefectMaskPath() string { return filepath.Join(it.Dir, it.Name+defectMaskSuffix) }

// VRTPath returns the GDAL sidecar path.
func (it Item) VRTPath() string { return filepath.Join(it.Dir, it.Name+vrtSuffix) }

// HasSurfaceMask reports whether the item was annotated before: an updated
// surface mask exists next to it.
func (it Item) HasSurfaceMask() bool { return fileExists(it.SurfaceMaskPath()) }

// HasDefectMask reports whether a defect mask exists next to the item.
func (it Item) HasDefectMask() bool { return fileExists(it.DefectMaskPath()) }

// Scan lists the labelable items of a directory in name order.
func Scan(dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("session: read directory: %w", err)
	}

	var items []Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, imageSuffix) || strings.HasSuffix(name, cutImageSuffix) {
			continue
		}
		items = append(items, Item{
			Name: strings.TrimSuffix(name, imageSuffix),
			Dir:  dir,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Session walks the items of one working directory, keeping a cursor and
// an optional save hook invoked before the cursor moves.
type Session struct {
	dir   string
	items []Item
	idx   int
	log   *zap.Logger

	// OnLeave, when set, runs for the current item before Next or Prev
	// move the cursor. Navigation stops on its error, so unsaved work is
	// never silently abandoned.
	OnLeave func(Item) error
}

// New scans dir and opens a session on its items.
func New(dir string, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	items, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoItems, dir)
	}
	log.Info("session opened", zap.String("dir", dir), zap.Int("items", len(items)))
	return &Session{dir: dir, items: items, log: log}, nil
}

// Dir returns the working directory.
func (s *Session) Dir() string { return s.dir }

// Items returns the scanned items in order.
func (s *Session) Items() []Item { return append([]Item(nil), s.items...) }

// Len returns the item count.
func (s *Session) Len() int { return len(s.items) }

// Index returns the cursor position.
func (s *Session) Index() int { return s.idx }

// Current returns the item under the cursor.
func (s *Session) Current() Item { return s.items[s.idx] }

// Next moves the cursor forward, running the OnLeave hook first.
// Returns ErrOutOfRange on the last item, with the cursor unmoved.
func (s *Session) Next() (Item, error) { return s.advance(1) }

// Prev moves the cursor backward, running the OnLeave hook first.
// Returns ErrOutOfRange on the first item, with the cursor unmoved.
func (s *Session) Prev() (Item, error) { return s.advance(-1) }

func (s *Session) advance(delta int) (Item, error) {
	next := s.idx + delta
	if next < 0 || next >= len(s.items) {
		return Item{}, ErrOutOfRange
	}
	if s.OnLeave != nil {
		if err := s.OnLeave(s.items[s.idx]); err != nil {
			return Item{}, fmt.Errorf("session: leaving %s: %w", s.items[s.idx].Name, err)
		}
	}
	s.idx = next
	s.log.Debug("cursor moved", zap.String("item", s.items[s.idx].Name))
	return s.items[s.idx], nil
}

// LoadImage loads the item's orthophoto.
func (s *Session) LoadImage(it Item) (*datmant.Pixmap, error) {
	return maskio.LoadImage(it.ImagePath())
}

// LoadMask assembles the initial color mask of an item for a w x h canvas:
// surface color where the surface mask plane is 0, defect color on top
// where the defect mask plane is 255. The updated surface mask takes
// precedence over the base mask; with neither present the whole plane
// counts as masked out, so the assembled mask starts fully surface-colored.
func (s *Session) LoadMask(it Item, w, h int) (*datmant.Pixmap, error) {
	surface := datmant.RGBA8{R: 255, A: 99}
	defect := datmant.RGBA8{B: 255, A: 99}

	var plane *datmant.ClassBuffer
	switch {
	case it.HasSurfaceMask():
		p, err := maskio.LoadClassMask(it.SurfaceMaskPath(), w, h)
		if err != nil {
			return nil, err
		}
		plane = p
		s.log.Debug("loaded updated surface mask", zap.String("item", it.Name))
	case fileExists(it.BaseMaskPath()):
		p, err := maskio.LoadClassMask(it.BaseMaskPath(), w, h)
		if err != nil {
			return nil, err
		}
		plane = p
	default:
		plane = datmant.NewClassBuffer(w, h)
		s.log.Warn("no surface mask, starting fully masked", zap.String("item", it.Name))
	}

	mask := datmant.NewPixmap(w, h)
	for y := range h {
		for x := range w {
			if plane.At(x, y) == 0 {
				mask.SetPixel(x, y, surface)
			}
		}
	}

	if it.HasDefectMask() {
		defects, err := maskio.LoadClassMask(it.DefectMaskPath(), w, h)
		if err != nil {
			return nil, err
		}
		for y := range h {
			for x := range w {
				if defects.At(x, y) == 255 {
					mask.SetPixel(x, y, defect)
				}
			}
		}
	}

	return mask, nil
}

// Save exports the canvas as the item's two legacy binary masks: the
// defect mask (255 where the defect class is painted) and the updated
// surface mask (0 where the surface class is painted).
func (s *Session) Save(it Item, c *datmant.Canvas) error {
	classes, err := c.ExportClassMask()
	if err != nil {
		return fmt.Errorf("session: export %s: %w", it.Name, err)
	}

	if err := maskio.SaveBinaryMask(it.DefectMaskPath(), classes, DefectCode, 255, 0); err != nil {
		return fmt.Errorf("session: save defect mask: %w", err)
	}
	if err := maskio.SaveBinaryMask(it.SurfaceMaskPath(), classes, SurfaceCode, 0, 255); err != nil {
		return fmt.Errorf("session: save surface mask: %w", err)
	}

	s.log.Info("masks saved", zap.String("item", it.Name))
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
