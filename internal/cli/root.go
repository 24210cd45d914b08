// Package cli implements the slidetool command tree.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slidetool",
	Short: "Inspect and extract regions from whole-slide images",
	Long: `slidetool reads gigapixel pyramidal whole-slide images and exposes
their pyramid structure, metadata, channels, and pixel data.

Examples:
  # Show pyramid levels, properties, and channels
  slidetool info /data/slide.pyr

  # Extract a 2048x2048 region at level 0 to PNG
  slidetool region /data/slide.pyr --x 10000 --y 20000 --width 2048 --height 2048 -o region.png

  # Render a spectral region as a color composite
  slidetool region /data/slide.pyr --width 1024 --height 1024 --composite -o composite.png

  # Write a thumbnail bounded to 512 pixels
  slidetool thumbnail /data/slide.pyr --max 512 -o thumb.png

  # Export the label image and OCR its text
  slidetool associated /data/slide.pyr --export label -o label.png
  slidetool label-text /data/slide.pyr`,
	SilenceUsage: true,
}

// Execute runs the command tree. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig wires environment variables: every flag can be supplied as
// SLIDETOOL_<FLAG> with dashes replaced by underscores.
func initConfig() {
	viper.SetEnvPrefix("SLIDETOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}
