package assets

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatHint selects the decoder for LoadTexture. FormatAuto picks by file extension.
type FormatHint int

const (
	FormatAuto FormatHint = iota
	FormatBMP
	FormatPNG
	FormatJPEG
)

func (f FormatHint) String() string {
	switch f {
	case FormatBMP:
		return "bmp"
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	}
	return "auto"
}

func hintFromPath(path string) FormatHint {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return FormatBMP
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	}
	return FormatAuto
}

// LoadTexture decodes an image file into tightly packed RGBA rows, top row first.
func LoadTexture(path string, hint FormatHint) (*image.RGBA, error) {
	if hint == FormatAuto {
		hint = hintFromPath(path)
	}

	var decode func(io.Reader) (image.Image, error)
	switch hint {
	case FormatBMP:
		decode = bmp.Decode
	case FormatPNG:
		decode = png.Decode
	case FormatJPEG:
		decode = jpeg.Decode
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s as %s: %w", path, hint, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
