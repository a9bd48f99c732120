// Package tile provides an in-memory, multi-band block of a larger raster
// grid together with its placement and coordinate-transform metadata.
//
// A Tile is not safe for concurrent mutation. Whoever shares a Tile between
// goroutines must serialise access to it.
package tile

import (
	"image"
	"math"
)

// Tile holds the samples of one rectangular window of a raster.
//
// Samples are interleaved by band and stored row-major, so the sample for
// (x, y, band) lives at index (y*width+x)*bands+band.
type Tile struct {
	originX, originY int
	width, height    int
	bands            int
	pixels           []int
	transform        string
}

// BandStats summarises the samples of a single band
type BandStats struct {
	Min  int
	Max  int
	Mean float64
}

// New creates a zero-filled tile whose upper-left corner sits at
// (originX, originY) in the parent grid.
func New(originX, originY, width, height, bandCount int) (*Tile, error) {
	if width <= 0 || height <= 0 {
		return nil, invalidArgument("tile size %dx%d must be positive", width, height)
	}
	if bandCount <= 0 {
		return nil, invalidArgument("band count %d must be positive", bandCount)
	}
	if !fits(width, height, bandCount) {
		return nil, invalidArgument("tile %dx%d with %d bands is too large", width, height, bandCount)
	}

	return &Tile{
		originX: originX,
		originY: originY,
		width:   width,
		height:  height,
		bands:   bandCount,
		pixels:  make([]int, width*height*bandCount),
	}, nil
}

// fits reports whether width*height*bands samples can be indexed by an int.
func fits(width, height, bands int) bool {
	return width <= math.MaxInt/height && width*height <= math.MaxInt/bands
}

// Clone returns a deep copy of t. The copy owns its own pixel storage.
func (t *Tile) Clone() *Tile {
	pixels := make([]int, len(t.pixels))
	copy(pixels, t.pixels)

	return &Tile{
		originX:   t.originX,
		originY:   t.originY,
		width:     t.width,
		height:    t.height,
		bands:     t.bands,
		pixels:    pixels,
		transform: t.transform,
	}
}

// Origin returns the upper-left corner of the tile in the parent grid.
func (t *Tile) Origin() (int, int) {
	return t.originX, t.originY
}

// Size returns the tile extent in pixels.
func (t *Tile) Size() (int, int) {
	return t.width, t.height
}

// Bounds returns the extent of the tile in parent grid coordinates.
func (t *Tile) Bounds() image.Rectangle {
	return image.Rect(t.originX, t.originY, t.originX+t.width, t.originY+t.height)
}

// SetSize resizes the tile by reallocating its pixel store.
//
// Samples inside both the old and the new extent keep their (x, y, band)
// position. Cells that only exist in the new extent are zero. Cells that fall
// outside the new extent are dropped. A non-positive size is rejected and the
// tile is left untouched.
func (t *Tile) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return invalidArgument("tile size %dx%d must be positive", width, height)
	}
	if !fits(width, height, t.bands) {
		return invalidArgument("tile %dx%d with %d bands is too large", width, height, t.bands)
	}
	if width == t.width && height == t.height {
		return nil
	}

	pixels := make([]int, width*height*t.bands)
	rowLen := min(width, t.width) * t.bands
	for y := 0; y < min(height, t.height); y++ {
		src := y * t.width * t.bands
		dst := y * width * t.bands
		copy(pixels[dst:dst+rowLen], t.pixels[src:src+rowLen])
	}

	t.width = width
	t.height = height
	t.pixels = pixels
	return nil
}

// BandCount returns the number of bands. It is fixed at construction.
func (t *Tile) BandCount() int {
	return t.bands
}

// Pixel returns the sample stored at (x, y, band).
func (t *Tile) Pixel(x, y, band int) (int, error) {
	idx, err := t.index(x, y, band)
	if err != nil {
		return 0, err
	}
	return t.pixels[idx], nil
}

// SetPixel overwrites the sample stored at (x, y, band).
func (t *Tile) SetPixel(x, y, band, value int) error {
	idx, err := t.index(x, y, band)
	if err != nil {
		return err
	}
	t.pixels[idx] = value
	return nil
}

// Transform returns the transform identifier exactly as it was stored.
func (t *Tile) Transform() string {
	return t.transform
}

// SetTransform stores an opaque pixel-to-world transform identifier. The
// value is not interpreted.
func (t *Tile) SetTransform(id string) {
	t.transform = id
}

// Band returns a row-major copy of one band.
func (t *Tile) Band(band int) ([]int, error) {
	if err := t.checkBand(band); err != nil {
		return nil, err
	}

	values := make([]int, t.width*t.height)
	for i := range values {
		values[i] = t.pixels[i*t.bands+band]
	}
	return values, nil
}

// Fill sets every sample of band to value.
func (t *Tile) Fill(band, value int) error {
	if err := t.checkBand(band); err != nil {
		return err
	}

	for i := band; i < len(t.pixels); i += t.bands {
		t.pixels[i] = value
	}
	return nil
}

// Stats computes minimum, maximum and mean of one band.
func (t *Tile) Stats(band int) (BandStats, error) {
	if err := t.checkBand(band); err != nil {
		return BandStats{}, err
	}

	stats := BandStats{Min: t.pixels[band], Max: t.pixels[band]}
	var sum float64
	for i := band; i < len(t.pixels); i += t.bands {
		v := t.pixels[i]
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += float64(v)
	}
	stats.Mean = sum / float64(t.width*t.height)
	return stats, nil
}

// Samples returns a copy of the interleaved sample buffer.
func (t *Tile) Samples() []int {
	out := make([]int, len(t.pixels))
	copy(out, t.pixels)
	return out
}

func (t *Tile) index(x, y, band int) (int, error) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height || band < 0 || band >= t.bands {
		return 0, &RangeError{
			X: x, Y: y, Band: band,
			Width: t.width, Height: t.height, Bands: t.bands,
		}
	}
	return (y*t.width+x)*t.bands + band, nil
}

func (t *Tile) checkBand(band int) error {
	if band < 0 || band >= t.bands {
		return &RangeError{
			Band:  band,
			Width: t.width, Height: t.height, Bands: t.bands,
		}
	}
	return nil
}
