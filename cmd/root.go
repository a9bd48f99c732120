package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kiesman99/rastertile/pkg/tile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rastertile",
	Short: "Tiled multi-band raster blocks",
	Long: `rastertile builds and inspects tiles: fixed-size, multi-band blocks of a
larger raster grid carrying their placement and a pixel-to-world transform.

Run without a subcommand it constructs a tile and prints its size, transform
and band count.

Examples:
  # Construct the default 2500x2500 tile with 8 bands at (10,20)
  rastertile

  # Construct a smaller tile with a transform
  rastertile --width 256 --height 256 --bands 3 --transform "500000,30,0,4100000,0,-30"

  # Split an image into 256 pixel tiles
  rastertile split --input scene.png --size 256 --out tiles/

  # Start HTTP server
  rastertile serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout(), demoOptions{
			OriginX:   viper.GetInt("origin-x"),
			OriginY:   viper.GetInt("origin-y"),
			Width:     viper.GetInt("width"),
			Height:    viper.GetInt("height"),
			Bands:     viper.GetInt("bands"),
			Transform: viper.GetString("transform"),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rastertile.yaml)")

	// Tile construction
	rootCmd.Flags().Int("origin-x", 10, "tile origin column in the parent grid")
	rootCmd.Flags().Int("origin-y", 20, "tile origin row in the parent grid")
	rootCmd.Flags().Int("width", 2500, "tile width in pixels")
	rootCmd.Flags().Int("height", 2500, "tile height in pixels")
	rootCmd.Flags().Int("bands", 8, "number of bands")
	rootCmd.Flags().String("transform", "", "pixel to world transform identifier")

	viper.BindPFlag("origin-x", rootCmd.Flags().Lookup("origin-x"))
	viper.BindPFlag("origin-y", rootCmd.Flags().Lookup("origin-y"))
	viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	viper.BindPFlag("height", rootCmd.Flags().Lookup("height"))
	viper.BindPFlag("bands", rootCmd.Flags().Lookup("bands"))
	viper.BindPFlag("transform", rootCmd.Flags().Lookup("transform"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".rastertile" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rastertile")
	}

	viper.SetEnvPrefix("rastertile")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

type demoOptions struct {
	OriginX, OriginY int
	Width, Height    int
	Bands            int
	Transform        string
}

// runDemo constructs a tile, applies its size through SetSize and reports
// size, transform and band count.
func runDemo(w io.Writer, opts demoOptions) error {
	fmt.Fprintln(w, "Starting up")
	fmt.Fprintln(w, "Creating tile")

	t, err := tile.New(opts.OriginX, opts.OriginY, opts.Width, opts.Height, opts.Bands)
	if err != nil {
		return fmt.Errorf("failed to create tile: %w", err)
	}
	if err := t.SetSize(opts.Width, opts.Height); err != nil {
		return fmt.Errorf("failed to size tile: %w", err)
	}
	t.SetTransform(opts.Transform)

	width, height := t.Size()
	fmt.Fprintf(w, "x,y is %d,%d\n", width, height)
	fmt.Fprintf(w, "Tile XForm is:%s\n", t.Transform())
	fmt.Fprintf(w, "Tile Bandcount is:%d\n", t.BandCount())

	return nil
}
