package cmd

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiesman99/rastertile/pkg/geo"
	"github.com/kiesman99/rastertile/pkg/tile"
)

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer

	err := runDemo(&out, demoOptions{OriginX: 10, OriginY: 20, Width: 2500, Height: 2500, Bands: 8})
	if err != nil {
		t.Fatalf("runDemo failed: %v", err)
	}

	want := "Starting up\nCreating tile\nx,y is 2500,2500\nTile XForm is:\nTile Bandcount is:8\n"
	if out.String() != want {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", out.String(), want)
	}
}

func TestRunDemo_Transform(t *testing.T) {
	var out bytes.Buffer

	err := runDemo(&out, demoOptions{Width: 4, Height: 2, Bands: 1, Transform: "xform"})
	if err != nil {
		t.Fatalf("runDemo failed: %v", err)
	}
	if !strings.Contains(out.String(), "x,y is 4,2\n") {
		t.Errorf("Expected size line, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Tile XForm is:xform\n") {
		t.Errorf("Expected transform line, got:\n%s", out.String())
	}
}

func TestRunDemo_InvalidArgument(t *testing.T) {
	var out bytes.Buffer

	err := runDemo(&out, demoOptions{Width: 0, Height: 10, Bands: 1})
	if !errors.Is(err, tile.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func writeTestImage(t *testing.T, dir string, width, height int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 0, A: 255})
		}
	}

	path := filepath.Join(dir, "input.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode input: %v", err)
	}
	return path
}

func TestSplitImage(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 5, 3)
	outDir := filepath.Join(dir, "tiles")

	var log bytes.Buffer
	err := splitImage(context.Background(), &log, splitOptions{
		Input:  input,
		OutDir: outDir,
		Size:   2,
		Zoom:   -1,
	})
	if err != nil {
		t.Fatalf("splitImage failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output directory: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("Expected 6 files, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(outDir, "tile_4_2.png"))
	if err != nil {
		t.Fatalf("Expected tile_4_2.png: %v", err)
	}
	last, err := tile.Decode(data, 0, 0)
	if err != nil {
		t.Fatalf("Failed to decode tile: %v", err)
	}
	if w, h := last.Size(); w != 1 || h != 1 {
		t.Errorf("Expected 1x1 edge tile, got %dx%d", w, h)
	}
	if r, _ := last.Pixel(0, 0, 0); r != 40 {
		t.Errorf("Expected red 40, got %d", r)
	}
	if g, _ := last.Pixel(0, 0, 1); g != 20 {
		t.Errorf("Expected green 20, got %d", g)
	}

	if _, err := os.Stat(filepath.Join(outDir, "tile_4_2.pgw")); !os.IsNotExist(err) {
		t.Error("Did not expect a world file without georeferencing")
	}
}

func TestSplitImage_WorldFiles(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 4, 4)
	outDir := filepath.Join(dir, "tiles")

	gt := geo.GeoTransform{1000, 10, 0, 2000, 0, -10}

	var log bytes.Buffer
	err := splitImage(context.Background(), &log, splitOptions{
		Input:        input,
		OutDir:       outDir,
		Size:         2,
		GeoTransform: gt.String(),
		Zoom:         -1,
	})
	if err != nil {
		t.Fatalf("splitImage failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "tile_2_2.pgw"))
	if err != nil {
		t.Fatalf("Expected world file: %v", err)
	}
	if want := gt.Translate(2, 2).WorldFile(); !bytes.Equal(data, want) {
		t.Errorf("Unexpected world file:\n%s\nexpected:\n%s", data, want)
	}
}

func TestSplitImage_MapTile(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 4, 4)
	outDir := filepath.Join(dir, "tiles")

	var log bytes.Buffer
	err := splitImage(context.Background(), &log, splitOptions{
		Input:  input,
		OutDir: outDir,
		Size:   2,
		Zoom:   3,
		TileX:  7,
		TileY:  7,
	})
	if err != nil {
		t.Fatalf("splitImage failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "tile_2_2.pgw")); err != nil {
		t.Errorf("Expected world file for map tile: %v", err)
	}
}

func TestSplitImage_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 4, 4)

	testCases := []struct {
		name string
		opts splitOptions
	}{
		{"missing input", splitOptions{OutDir: dir, Size: 2, Zoom: -1}},
		{"zero size", splitOptions{Input: input, OutDir: dir, Size: 0, Zoom: -1}},
		{"bad geotransform", splitOptions{Input: input, OutDir: dir, Size: 2, Zoom: -1, GeoTransform: "1,2,3"}},
		{"geotransform and zoom", splitOptions{Input: input, OutDir: dir, Size: 2, Zoom: 3, GeoTransform: "0,1,0,0,0,1"}},
		{"tile x beyond zoom", splitOptions{Input: input, OutDir: dir, Size: 2, Zoom: 3, TileX: 100}},
		{"tile y beyond zoom", splitOptions{Input: input, OutDir: dir, Size: 2, Zoom: 3, TileY: 8}},
		{"zoom too deep", splitOptions{Input: input, OutDir: dir, Size: 2, Zoom: 33}},
		{"missing input file", splitOptions{Input: filepath.Join(dir, "missing.png"), OutDir: dir, Size: 2, Zoom: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var log bytes.Buffer
			if err := splitImage(context.Background(), &log, tc.opts); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
