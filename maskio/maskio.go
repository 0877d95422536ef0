// Package maskio decodes and encodes the image and mask files of an
// annotation session: orthophotos in PNG, JPEG, TIFF or BMP, color masks
// and class masks in PNG, and the legacy per-class binary mask
// projections.
//
// The canvas engine never touches files itself; maskio is the persistence
// collaborator sitting between the filesystem and the engine's pixel
// buffers.
package maskio

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/alphacontrollab/datmant"
)

// ErrUnsupportedFormat is returned when a save path carries an extension
// maskio cannot encode.
var ErrUnsupportedFormat = errors.New("maskio: unsupported format")

// jpegQuality is used for blended preview output. Masks always go through
// PNG; JPEG is for human-facing previews only.
const jpegQuality = 90

// LoadImage loads an image from the given file path, auto-detecting the
// format. Supported formats: PNG, JPEG, TIFF, BMP.
func LoadImage(path string) (*datmant.Pixmap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return datmant.FromImage(img), nil
}

// LoadColorMask loads an RGBA color mask, rescaling it with nearest
// neighbor when its dimensions differ from the wanted w and h. Masks must
// stay hard-edged, so no interpolating filter is ever applied. Pass
// non-positive dimensions to keep the stored size.
func LoadColorMask(path string, w, h int) (*datmant.Pixmap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return datmant.FromImage(img), nil
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		img = rescale(img, w, h)
	}
	return datmant.FromImage(img), nil
}

// LoadClassMask loads a grayscale PNG as a single-channel byte plane: a
// class mask, or one of the legacy binary masks. Rescales with nearest
// neighbor on dimension mismatch; pass non-positive dimensions to keep the
// stored size.
func LoadClassMask(path string, w, h int) (*datmant.ClassBuffer, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if w <= 0 || h <= 0 {
		w, h = b.Dx(), b.Dy()
	}
	if b.Dx() != w || b.Dy() != h {
		img = rescale(img, w, h)
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		gray = image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	buf := datmant.NewClassBuffer(w, h)
	if gray.Stride == w {
		copy(buf.Data(), gray.Pix)
		return buf, nil
	}
	for y := range h {
		copy(buf.Data()[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
	}
	return buf, nil
}

// SaveColorMask writes a color mask as PNG.
func SaveColorMask(path string, mask *datmant.Pixmap) error {
	return encodeFile(path, mask.ToImage())
}

// SaveClassMask writes a class buffer as a grayscale PNG, one byte per
// pixel, class codes verbatim.
func SaveClassMask(path string, classes *datmant.ClassBuffer) error {
	return encodeFile(path, grayOf(classes))
}

// SaveBinaryMask writes the legacy single-class projection of a class
// buffer: every pixel holding code becomes set, every other pixel becomes
// unset. The defect mask projection is (code, 255, 0); the surface update
// mask projection is (code, 0, 255).
func SaveBinaryMask(path string, classes *datmant.ClassBuffer, code, set, unset uint8) error {
	w, h := classes.Width(), classes.Height()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	src := classes.Data()
	for i, c := range src {
		if c == code {
			gray.Pix[i] = set
		} else {
			gray.Pix[i] = unset
		}
	}
	return encodeFile(path, gray)
}

// SaveImage writes a pixmap as PNG or JPEG depending on the path
// extension. JPEG output is opaque; the alpha channel is dropped.
func SaveImage(path string, pm *datmant.Pixmap) error {
	return encodeFile(path, pm.ToImage())
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("maskio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("maskio: decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func encodeFile(path string, img image.Image) error {
	var encode func(f *os.File) error
	switch ext := filepath.Ext(path); ext {
	case ".png", ".PNG":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		encode = func(f *os.File) error {
			return jpeg.Encode(f, opaque(img), &jpeg.Options{Quality: jpegQuality})
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("maskio: create file: %w", err)
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("maskio: encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// rescale resizes img to w x h with nearest neighbor, preserving hard mask
// edges and exact class codes.
func rescale(img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func grayOf(classes *datmant.ClassBuffer) *image.Gray {
	w, h := classes.Width(), classes.Height()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	copy(gray.Pix, classes.Data())
	return gray
}

// opaque flattens an image onto black for JPEG output.
func opaque(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
