package tile

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
)

var (
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	jpegMagic = []byte{0xFF, 0xD8}
)

// Decode detects the image format (PNG or JPEG) and decodes data into a
// 4-band RGBA tile placed at (originX, originY).
func Decode(data []byte, originX, originY int) (*Tile, error) {
	var (
		img image.Image
		err error
	)

	switch {
	case bytes.HasPrefix(data, pngMagic):
		img, err = png.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, jpegMagic):
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, ErrUnrecognizedFormat
	}
	if err != nil {
		return nil, err
	}

	return FromImage(img, originX, originY)
}

// FromImage converts img into a 4-band tile with 8-bit RGBA samples.
func FromImage(img image.Image, originX, originY int) (*Tile, error) {
	bounds := img.Bounds()
	t, err := New(originX, originY, bounds.Dx(), bounds.Dy(), 4)
	if err != nil {
		return nil, err
	}

	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			idx := (y*t.width + x) * 4
			t.pixels[idx] = int(c.R)
			t.pixels[idx+1] = int(c.G)
			t.pixels[idx+2] = int(c.B)
			t.pixels[idx+3] = int(c.A)
		}
	}

	return t, nil
}

// Image renders the tile as an 8-bit image. One band gives a grayscale
// image, three bands an opaque RGB image and four bands RGBA with
// non-premultiplied alpha. Samples are clamped to [0, 255].
func (t *Tile) Image() (image.Image, error) {
	rect := image.Rect(0, 0, t.width, t.height)

	switch t.bands {
	case 1:
		img := image.NewGray(rect)
		for i, v := range t.pixels {
			img.Pix[i] = clamp8(v)
		}
		return img, nil
	case 3, 4:
		img := image.NewNRGBA(rect)
		for i := 0; i < t.width*t.height; i++ {
			src := i * t.bands
			dst := i * 4
			img.Pix[dst] = clamp8(t.pixels[src])
			img.Pix[dst+1] = clamp8(t.pixels[src+1])
			img.Pix[dst+2] = clamp8(t.pixels[src+2])
			if t.bands == 4 {
				img.Pix[dst+3] = clamp8(t.pixels[src+3])
			} else {
				img.Pix[dst+3] = 255
			}
		}
		return img, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnsupportedBands, t.bands)
}

// EncodePNG writes the tile to w as a PNG image.
func (t *Tile) EncodePNG(w io.Writer) error {
	img, err := t.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
