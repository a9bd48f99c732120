package geo

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb/maptile"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestParse_RoundTrip(t *testing.T) {
	gt := GeoTransform{500000, 30, 0, 4100000, 0, -30.5}

	parsed, err := Parse(gt.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed != gt {
		t.Errorf("Expected %v, got %v", gt, parsed)
	}

	parsed, err = Parse(" 1 2\t3,4, 5 ,6 ")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed != (GeoTransform{1, 2, 3, 4, 5, 6}) {
		t.Errorf("Unexpected coefficients %v", parsed)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "xform", "1,2,3,4,5", "1,2,3,4,5,6,7", "1,2,3,a,5,6"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestTranslate(t *testing.T) {
	gt := GeoTransform{100, 2, 0, 50, 0, -2}

	moved := gt.Translate(10, 5)
	if moved != (GeoTransform{120, 2, 0, 40, 0, -2}) {
		t.Errorf("Unexpected translated transform %v", moved)
	}

	// A pixel in the window maps to the same place as in the parent.
	x1, y1 := moved.Apply(3, 4)
	x2, y2 := gt.Apply(13, 9)
	if x1 != x2 || y1 != y2 {
		t.Errorf("Window pixel maps to %v,%v, parent pixel to %v,%v", x1, y1, x2, y2)
	}

	if Identity().Translate(7, 9) != (GeoTransform{7, 1, 0, 9, 0, 1}) {
		t.Errorf("Unexpected identity translation %v", Identity().Translate(7, 9))
	}
}

func TestPixelSize(t *testing.T) {
	px, py := GeoTransform{0, 3, 0, 0, 0, -4}.PixelSize()
	if px != 3 || py != 4 {
		t.Errorf("Expected 3,4, got %v,%v", px, py)
	}
}

func TestWorldFile(t *testing.T) {
	gt := GeoTransform{100, 2, 0, 50, 0, -2}
	lines := strings.Split(strings.TrimSpace(string(gt.WorldFile())), "\n")
	if len(lines) != 6 {
		t.Fatalf("Expected 6 lines, got %d", len(lines))
	}

	want := []string{"2.0000000000", "0.0000000000", "0.0000000000", "-2.0000000000", "101.0000000000", "49.0000000000"}
	for i, line := range lines {
		if strings.TrimSpace(line) != want[i] {
			t.Errorf("Line %d: expected %s, got %q", i, want[i], line)
		}
	}
}

func TestWorldFileName(t *testing.T) {
	testCases := map[string]string{
		"out/tile_0_0.png": "out/tile_0_0.pgw",
		"scene.JPG":        "scene.jgw",
		"scene.tif":        "scene.tfw",
		"scene.raw":        "scene.wld",
		"scene":            "scene.wld",
	}
	for in, want := range testCases {
		if got := WorldFileName(in); got != want {
			t.Errorf("WorldFileName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestProjectLatLon(t *testing.T) {
	x, y := ProjectLatLon(0, 0)
	if !almostEqual(x, 0, 1e-6) || !almostEqual(y, 0, 1e-6) {
		t.Errorf("Expected origin, got %v,%v", x, y)
	}

	x, _ = ProjectLatLon(0, 180)
	if !almostEqual(x, originShift, 1e-6) {
		t.Errorf("Expected %v, got %v", originShift, x)
	}
}

func TestForMapTile(t *testing.T) {
	gt := ForMapTile(maptile.New(0, 0, 0), 256)

	if !almostEqual(gt[0], -originShift, 1e-3) || !almostEqual(gt[3], originShift, 1e-3) {
		t.Errorf("Unexpected upper-left corner %v,%v", gt[0], gt[3])
	}
	if !almostEqual(gt[1], 2*originShift/256, 1e-6) {
		t.Errorf("Unexpected pixel width %v", gt[1])
	}
	if !almostEqual(gt[5], -2*originShift/256, 1e-6) {
		t.Errorf("Unexpected pixel height %v", gt[5])
	}

	// Neighbouring tiles at the same zoom share an edge.
	left := ForMapTile(maptile.New(3, 5, 4), 256)
	right := ForMapTile(maptile.New(4, 5, 4), 256)
	edgeX, _ := left.Apply(256, 0)
	if !almostEqual(edgeX, right[0], 1e-3) {
		t.Errorf("Expected shared edge at %v, got %v", right[0], edgeX)
	}
}

func TestMapTile(t *testing.T) {
	mt, err := MapTile(3, 4, 2)
	if err != nil {
		t.Fatalf("MapTile failed: %v", err)
	}
	if mt.X != 4 || mt.Y != 2 || mt.Z != 3 {
		t.Errorf("Expected tile 3/4/2, got %d/%d/%d", mt.Z, mt.X, mt.Y)
	}

	if _, err := MapTile(MaxZoom, 1<<32-1, 0); err != nil {
		t.Errorf("Expected last column at max zoom to be valid, got %v", err)
	}

	testCases := []struct {
		name    string
		z, x, y int
	}{
		{"negative zoom", -1, 0, 0},
		{"zoom too deep", MaxZoom + 1, 0, 0},
		{"x beyond zoom", 3, 100, 0},
		{"y beyond zoom", 3, 0, 8},
		{"negative x", 3, -1, 0},
		{"negative y", 0, 0, -1},
		{"x at zoom 0", 0, 1, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MapTile(tc.z, tc.x, tc.y); err == nil {
				t.Errorf("Expected error for %d/%d/%d", tc.z, tc.x, tc.y)
			}
		})
	}
}
