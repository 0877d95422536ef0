package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alphacontrollab/datmant"
	"github.com/alphacontrollab/datmant/colortable"
	"github.com/alphacontrollab/datmant/maskio"
)

var (
	surface = datmant.RGBA8{R: 255, A: 99}
	defect  = datmant.RGBA8{B: 255, A: 99}
)

func writeImage(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	pm := datmant.NewPixmap(w, h)
	pm.Clear(datmant.RGBA8{R: 90, G: 90, B: 90, A: 255})
	require.NoError(t, maskio.SaveImage(filepath.Join(dir, name), pm))
}

func writePlane(t *testing.T, path string, w, h int, fill uint8, set map[[2]int]uint8) {
	t.Helper()
	plane := datmant.NewClassBuffer(w, h)
	plane.Fill(fill)
	for at, v := range set {
		plane.Set(at[0], at[1], v)
	}
	require.NoError(t, maskio.SaveClassMask(path, plane))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "b.marked.jpg", 2, 2)
	writeImage(t, dir, "a.marked.jpg", 2, 2)
	writeImage(t, dir, "a.cut.marked.jpg", 2, 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.marked.jpg"), 0o755))

	items, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].Name)
	require.Equal(t, "b", items[1].Name)
}

func TestNewEmptyDirectory(t *testing.T) {
	_, err := New(t.TempDir(), zap.NewNop())
	require.ErrorIs(t, err, ErrNoItems)
}

func TestNavigation(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a", "b", "c"} {
		writeImage(t, dir, n+".marked.jpg", 2, 2)
	}

	s, err := New(dir, nil)
	require.NoError(t, err)
	require.Equal(t, "a", s.Current().Name)

	var left []string
	s.OnLeave = func(it Item) error {
		left = append(left, it.Name)
		return nil
	}

	it, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, "b", it.Name)

	it, err = s.Next()
	require.NoError(t, err)
	require.Equal(t, "c", it.Name)

	_, err = s.Next()
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Equal(t, "c", s.Current().Name)

	it, err = s.Prev()
	require.NoError(t, err)
	require.Equal(t, "b", it.Name)

	require.Equal(t, []string{"a", "b", "c"}, left)
}

func TestNavigationStopsOnHookError(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.marked.jpg", 2, 2)
	writeImage(t, dir, "b.marked.jpg", 2, 2)

	s, err := New(dir, nil)
	require.NoError(t, err)

	hookErr := errors.New("disk full")
	s.OnLeave = func(Item) error { return hookErr }

	_, err = s.Next()
	require.ErrorIs(t, err, hookErr)
	require.Equal(t, "a", s.Current().Name)
}

func TestLoadMaskAssembly(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.marked.jpg", 4, 4)

	// Base mask: everything masked out except pixel (1,1).
	writePlane(t, filepath.Join(dir, "a.mask.png"), 4, 4, 0, map[[2]int]uint8{{1, 1}: 255})
	// Defect mask: one defect pixel at (2,2).
	writePlane(t, filepath.Join(dir, "a.defect.mask.png"), 4, 4, 0, map[[2]int]uint8{{2, 2}: 255})

	s, err := New(dir, nil)
	require.NoError(t, err)

	mask, err := s.LoadMask(s.Current(), 4, 4)
	require.NoError(t, err)

	require.Equal(t, surface, mask.GetPixel(0, 0))
	require.Equal(t, datmant.Transparent, mask.GetPixel(1, 1))
	require.Equal(t, defect, mask.GetPixel(2, 2))
}

func TestLoadMaskPrefersUpdatedSurfaceMask(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.marked.jpg", 2, 2)

	// Base says fully masked; the updated mask clears everything.
	writePlane(t, filepath.Join(dir, "a.mask.png"), 2, 2, 0, nil)
	writePlane(t, filepath.Join(dir, "a.cut.mask_v2.png"), 2, 2, 255, nil)

	s, err := New(dir, nil)
	require.NoError(t, err)

	mask, err := s.LoadMask(s.Current(), 2, 2)
	require.NoError(t, err)
	require.Equal(t, datmant.Transparent, mask.GetPixel(0, 0))
	require.Equal(t, datmant.Transparent, mask.GetPixel(1, 1))
}

func TestLoadMaskWithoutSidecars(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.marked.jpg", 2, 2)

	s, err := New(dir, nil)
	require.NoError(t, err)

	mask, err := s.LoadMask(s.Current(), 2, 2)
	require.NoError(t, err)
	require.Equal(t, surface, mask.GetPixel(0, 0))
	require.Equal(t, surface, mask.GetPixel(1, 1))
}

func TestSaveProjections(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.marked.jpg", 4, 4)

	s, err := New(dir, nil)
	require.NoError(t, err)
	it := s.Current()

	table, err := datmant.NewColorTable(colortable.Default(), datmant.DefaultTolerance)
	require.NoError(t, err)

	c := datmant.NewCanvas(datmant.WithColorTable(table))
	img, err := s.LoadImage(it)
	require.NoError(t, err)
	require.NoError(t, c.Initialize(img, nil, nil, true))

	c.SetBrushColor(surface)
	c.SetBrushDiameter(1)
	c.StampAt(datmant.Pt(0, 0))
	c.SetBrushColor(defect)
	c.StampAt(datmant.Pt(3, 3))

	require.NoError(t, s.Save(it, c))

	defects, err := maskio.LoadClassMask(it.DefectMaskPath(), 4, 4)
	require.NoError(t, err)
	require.Equal(t, uint8(255), defects.At(3, 3))
	require.Equal(t, uint8(0), defects.At(0, 0))

	surf, err := maskio.LoadClassMask(it.SurfaceMaskPath(), 4, 4)
	require.NoError(t, err)
	require.Equal(t, uint8(0), surf.At(0, 0))
	require.Equal(t, uint8(255), surf.At(3, 3))
	require.Equal(t, uint8(255), surf.At(1, 1))

	require.True(t, it.HasSurfaceMask())
	require.True(t, it.HasDefectMask())
}

func TestRoundTripThroughLoad(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "a.marked.jpg", 4, 4)

	s, err := New(dir, zap.NewNop())
	require.NoError(t, err)
	it := s.Current()

	table, err := datmant.NewColorTable(colortable.Default(), datmant.DefaultTolerance)
	require.NoError(t, err)

	// Annotate: clear everything, paint one defect pixel, save.
	c := datmant.NewCanvas(datmant.WithColorTable(table))
	img, err := s.LoadImage(it)
	require.NoError(t, err)
	require.NoError(t, c.Initialize(img, nil, nil, true))
	c.SetBrushColor(defect)
	c.SetBrushDiameter(1)
	c.StampAt(datmant.Pt(2, 1))
	require.NoError(t, s.Save(it, c))

	// A fresh load assembles the same annotation from the saved masks.
	mask, err := s.LoadMask(it, 4, 4)
	require.NoError(t, err)
	require.Equal(t, defect, mask.GetPixel(2, 1))
	require.Equal(t, datmant.Transparent, mask.GetPixel(0, 0))
}
