package tiling

import (
	"context"
	"fmt"

	"github.com/kiesman99/rastertile/pkg/geo"
	"github.com/kiesman99/rastertile/pkg/tile"
)

// Window is a rectangular region of a raster in pixel coordinates
type Window struct {
	X, Y          int
	Width, Height int
}

// Windows covers a width x height raster with size x size windows in
// row-major order. Windows on the right and bottom edges are clipped.
func Windows(width, height, size int) ([]Window, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raster size %dx%d must be positive", tile.ErrInvalidArgument, width, height)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: tile size %d must be positive", tile.ErrInvalidArgument, size)
	}

	cols := (width + size - 1) / size
	rows := (height + size - 1) / size
	windows := make([]Window, 0, cols*rows)

	for y := 0; y < height; y += size {
		for x := 0; x < width; x += size {
			windows = append(windows, Window{
				X:      x,
				Y:      y,
				Width:  min(size, width-x),
				Height: min(size, height-y),
			})
		}
	}

	return windows, nil
}

// Split cuts src into tiles of at most size x size pixels.
func Split(src *tile.Tile, size int) ([]*tile.Tile, error) {
	return SplitContext(context.Background(), src, size)
}

// SplitContext is Split with cancellation checked between tiles.
//
// Each child owns its own copy of the samples and sits at the parent origin
// plus its window offset. A source transform that parses as a geotransform is
// translated to the child window; any other transform is copied verbatim.
func SplitContext(ctx context.Context, src *tile.Tile, size int) ([]*tile.Tile, error) {
	width, height := src.Size()
	windows, err := Windows(width, height, size)
	if err != nil {
		return nil, err
	}

	ox, oy := src.Origin()
	gt, gtErr := geo.Parse(src.Transform())
	bands := src.BandCount()
	samples := src.Samples()

	tiles := make([]*tile.Tile, 0, len(windows))
	for _, w := range windows {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t, err := tile.New(ox+w.X, oy+w.Y, w.Width, w.Height, bands)
		if err != nil {
			return nil, err
		}

		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				srcIdx := ((w.Y+y)*width + w.X + x) * bands
				for b := 0; b < bands; b++ {
					if err := t.SetPixel(x, y, b, samples[srcIdx+b]); err != nil {
						return nil, err
					}
				}
			}
		}

		if gtErr == nil {
			t.SetTransform(gt.Translate(w.X, w.Y).String())
		} else {
			t.SetTransform(src.Transform())
		}

		tiles = append(tiles, t)
	}

	return tiles, nil
}

// Mosaic pastes tiles into a new width x height tile at (originX, originY)
// using each tile's origin. Parts of a tile outside the mosaic are clipped;
// later tiles overwrite earlier ones where they overlap.
func Mosaic(tiles []*tile.Tile, originX, originY, width, height, bands int) (*tile.Tile, error) {
	out, err := tile.New(originX, originY, width, height, bands)
	if err != nil {
		return nil, err
	}

	for _, t := range tiles {
		if t.BandCount() != bands {
			return nil, fmt.Errorf("%w: tile has %d bands, mosaic has %d", tile.ErrInvalidArgument, t.BandCount(), bands)
		}

		tx, ty := t.Origin()
		xoff := tx - originX
		yoff := ty - originY
		tw, th := t.Size()
		samples := t.Samples()

		for y := 0; y < th; y++ {
			for x := 0; x < tw; x++ {
				xd := x + xoff
				yd := y + yoff

				if xd < 0 || yd < 0 || xd >= width || yd >= height {
					continue
				}

				srcIdx := (y*tw + x) * bands
				for b := 0; b < bands; b++ {
					if err := out.SetPixel(xd, yd, b, samples[srcIdx+b]); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	return out, nil
}
