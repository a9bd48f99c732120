package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/rastertile/internal/source"
	"github.com/kiesman99/rastertile/internal/tiling"
	"github.com/kiesman99/rastertile/pkg/geo"
	"github.com/kiesman99/rastertile/pkg/tile"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split an image into tiles",
	Long: `Split reads a PNG or JPEG image from a file or URL and writes it out as
PNG tiles named tile_<x>_<y>.png, where x and y are the tile origin.

When the image is georeferenced, either with --geotransform or as a slippy
map tile with --zoom/--tile-x/--tile-y, a world file is written next to
every tile.

Examples:
  # Split a local image into 256 pixel tiles
  rastertile split --input scene.png --size 256 --out tiles/

  # Split an OpenStreetMap tile into quarters with world files
  rastertile split --input https://tile.openstreetmap.org/3/4/2.png --size 128 --zoom 3 --tile-x 4 --tile-y 2 --out tiles/`,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringP("input", "i", "", "input image file or URL (required)")
	splitCmd.Flags().StringP("out", "o", ".", "output directory")
	splitCmd.Flags().IntP("size", "s", 256, "tile size in pixels")
	splitCmd.Flags().String("geotransform", "", "geotransform of the input as 6 comma separated coefficients")
	splitCmd.Flags().Int("zoom", -1, "zoom level when the input is a slippy map tile")
	splitCmd.Flags().Int("tile-x", 0, "slippy map tile column")
	splitCmd.Flags().Int("tile-y", 0, "slippy map tile row")
	splitCmd.Flags().String("user-agent", source.DefaultUserAgent, "HTTP User-Agent header")

	viper.BindPFlag("split.input", splitCmd.Flags().Lookup("input"))
	viper.BindPFlag("split.out", splitCmd.Flags().Lookup("out"))
	viper.BindPFlag("split.size", splitCmd.Flags().Lookup("size"))
	viper.BindPFlag("split.geotransform", splitCmd.Flags().Lookup("geotransform"))
	viper.BindPFlag("split.zoom", splitCmd.Flags().Lookup("zoom"))
	viper.BindPFlag("split.tile-x", splitCmd.Flags().Lookup("tile-x"))
	viper.BindPFlag("split.tile-y", splitCmd.Flags().Lookup("tile-y"))
	viper.BindPFlag("split.user-agent", splitCmd.Flags().Lookup("user-agent"))
}

type splitOptions struct {
	Input        string
	OutDir       string
	Size         int
	GeoTransform string
	Zoom         int
	TileX, TileY int
	UserAgent    string
}

func runSplit(cmd *cobra.Command, args []string) error {
	opts := splitOptions{
		Input:        viper.GetString("split.input"),
		OutDir:       viper.GetString("split.out"),
		Size:         viper.GetInt("split.size"),
		GeoTransform: viper.GetString("split.geotransform"),
		Zoom:         viper.GetInt("split.zoom"),
		TileX:        viper.GetInt("split.tile-x"),
		TileY:        viper.GetInt("split.tile-y"),
		UserAgent:    viper.GetString("split.user-agent"),
	}

	return splitImage(cmd.Context(), cmd.ErrOrStderr(), opts)
}

func splitImage(ctx context.Context, log io.Writer, opts splitOptions) error {
	if opts.Input == "" {
		return fmt.Errorf("an input image is required (use --input)")
	}
	if opts.GeoTransform != "" && opts.Zoom >= 0 {
		return fmt.Errorf("--geotransform and --zoom are mutually exclusive")
	}

	data, err := source.NewFetcher(opts.UserAgent, nil).Fetch(ctx, opts.Input)
	if err != nil {
		return err
	}

	src, err := tile.Decode(data, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", opts.Input, err)
	}
	width, height := src.Size()

	georeferenced := true
	switch {
	case opts.GeoTransform != "":
		gt, err := geo.Parse(opts.GeoTransform)
		if err != nil {
			return err
		}
		src.SetTransform(gt.String())
	case opts.Zoom >= 0:
		mt, err := geo.MapTile(opts.Zoom, opts.TileX, opts.TileY)
		if err != nil {
			return fmt.Errorf("invalid map tile %d/%d/%d: %w", opts.Zoom, opts.TileX, opts.TileY, err)
		}
		src.SetTransform(geo.ForMapTile(mt, width).String())
	default:
		georeferenced = false
	}

	fmt.Fprintf(log, "==Raster Size: %dx%d, %d bands\n", width, height, src.BandCount())

	tiles, err := tiling.SplitContext(ctx, src, opts.Size)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return err
	}

	for i, t := range tiles {
		x, y := t.Origin()
		name := filepath.Join(opts.OutDir, fmt.Sprintf("tile_%d_%d.png", x, y))

		progress := float64(i+1) / float64(len(tiles)) * 100
		fmt.Fprintf(log, "%.2f%%: %s\n", progress, name)

		if err := writeTilePNG(name, t); err != nil {
			return fmt.Errorf("failed to write PNG: %v", err)
		}

		if georeferenced {
			gt, err := geo.Parse(t.Transform())
			if err != nil {
				return err
			}
			worldName := geo.WorldFileName(name)
			if err := os.WriteFile(worldName, gt.WorldFile(), 0o644); err != nil {
				return fmt.Errorf("failed to write world file: %v", err)
			}
		}
	}

	fmt.Fprintf(log, "Wrote %d tiles to '%s'.\n", len(tiles), opts.OutDir)
	return nil
}

func writeTilePNG(name string, t *tile.Tile) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := t.EncodePNG(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
