// Package geo interprets the transform identifiers attached to tiles as
// GDAL-style affine geotransforms.
package geo

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// originShift is half the circumference of the earth in EPSG:3857 metres.
const originShift = 20037508.342789244 // 2 * pi * 6378137 / 2

// GeoTransform maps pixel coordinates to world coordinates:
//
//	Xworld = gt[0] + px*gt[1] + py*gt[2]
//	Yworld = gt[3] + px*gt[4] + py*gt[5]
type GeoTransform [6]float64

// Identity returns the transform that maps pixels onto themselves.
func Identity() GeoTransform {
	return GeoTransform{0, 1, 0, 0, 0, 1}
}

// Parse reads six comma or whitespace separated coefficients.
func Parse(s string) (GeoTransform, error) {
	var gt GeoTransform

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) != 6 {
		return gt, fmt.Errorf("geotransform must have 6 coefficients, got %d", len(fields))
	}

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return gt, fmt.Errorf("invalid geotransform coefficient %d: %v", i, err)
		}
		gt[i] = v
	}

	return gt, nil
}

// String formats gt so that Parse returns the same coefficients.
func (gt GeoTransform) String() string {
	parts := make([]string, len(gt))
	for i, v := range gt {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Apply converts a pixel position to world coordinates.
func (gt GeoTransform) Apply(px, py float64) (float64, float64) {
	return gt[0] + px*gt[1] + py*gt[2], gt[3] + px*gt[4] + py*gt[5]
}

// Translate returns the transform of a window whose upper-left pixel is
// (dx, dy) in the raster described by gt.
func (gt GeoTransform) Translate(dx, dy int) GeoTransform {
	out := gt
	out[0], out[3] = gt.Apply(float64(dx), float64(dy))
	return out
}

// PixelSize returns the ground size of a pixel along each axis.
func (gt GeoTransform) PixelSize() (float64, float64) {
	return math.Hypot(gt[1], gt[4]), math.Hypot(gt[2], gt[5])
}

// WorldFile renders gt as an ESRI world file. World files reference the
// centre of the upper-left pixel, not its corner.
func (gt GeoTransform) WorldFile() []byte {
	cx, cy := gt.Apply(0.5, 0.5)

	var buf bytes.Buffer
	for _, v := range []float64{gt[1], gt[4], gt[2], gt[5], cx, cy} {
		fmt.Fprintf(&buf, "%24.10f\n", v)
	}
	return buf.Bytes()
}

// WorldFileName derives the world file name for an image file.
func WorldFileName(imageName string) string {
	ext := filepath.Ext(imageName)
	base := strings.TrimSuffix(imageName, ext)

	switch strings.ToLower(ext) {
	case "":
		return imageName + ".wld"
	case ".png":
		return base + ".pgw"
	case ".jpg", ".jpeg":
		return base + ".jgw"
	case ".tif", ".tiff":
		return base + ".tfw"
	}
	return base + ".wld"
}

// ProjectLatLon converts WGS84 lat/lon to Spherical Mercator (EPSG:3857).
func ProjectLatLon(lat, lon float64) (float64, float64) {
	x := lon * originShift / 180.0
	y := math.Log(math.Tan((90+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0

	return x, y
}

// ForMapTile returns the EPSG:3857 transform of a slippy map tile rendered
// at size x size pixels.
func ForMapTile(t maptile.Tile, size int) GeoTransform {
	bound := t.Bound()
	minX, minY := ProjectLatLon(bound.Min.Lat(), bound.Min.Lon())
	maxX, maxY := ProjectLatLon(bound.Max.Lat(), bound.Max.Lon())

	return GeoTransform{
		minX, (maxX - minX) / float64(size), 0,
		maxY, 0, -(maxY - minY) / float64(size),
	}
}

// MaxZoom is the deepest zoom level MapTile accepts.
const MaxZoom = 32

// MapTile returns the slippy map tile z/x/y. Both x and y must lie in
// [0, 2^z) at zoom z.
func MapTile(z, x, y int) (maptile.Tile, error) {
	if z < 0 || z > MaxZoom {
		return maptile.Tile{}, fmt.Errorf("zoom %d must be between 0 and %d", z, MaxZoom)
	}

	n := uint64(1) << uint(z)
	if x < 0 || y < 0 || uint64(x) >= n || uint64(y) >= n {
		return maptile.Tile{}, fmt.Errorf("x and y must be between 0 and %d at zoom %d", n-1, z)
	}

	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), nil
}
