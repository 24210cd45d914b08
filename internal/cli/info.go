package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/wholeslide/pkg/formats"
)

var infoCmd = &cobra.Command{
	Use:   "info <slide>",
	Short: "Show pyramid structure, properties, and channels",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	reader, err := formats.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	out := cmd.OutOrStdout()
	format := reader.Format()
	fmt.Fprintf(out, "Format: %s (%s)\n", format.Name(), format.Kind())
	dims := reader.Dimensions()
	fmt.Fprintf(out, "Dimensions: %dx%d\n", dims.Width, dims.Height)
	tile := format.Geometry().TileSize
	fmt.Fprintf(out, "Tile size: %dx%d\n", tile.Width, tile.Height)

	fmt.Fprintf(out, "\nLevels (%d):\n", reader.LevelCount())
	for i := 0; i < reader.LevelCount(); i++ {
		info, _ := reader.LevelInfo(i)
		fmt.Fprintf(out, "  %d: %dx%d  downsample %g\n",
			i, info.Dimensions.Width, info.Dimensions.Height, info.Downsample)
	}

	if channels := reader.Channels(); len(channels) > 0 {
		fmt.Fprintf(out, "\nChannels (%d):\n", len(channels))
		for i, ch := range channels {
			fmt.Fprintf(out, "  %d: %s (%s) color %s\n", i, ch.Name, ch.Biomarker, ch.Color)
		}
	}

	if names := reader.AssociatedImages(); len(names) > 0 {
		fmt.Fprintf(out, "\nAssociated images:\n")
		for _, name := range names {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}

	fmt.Fprintf(out, "\nProperties:\n")
	props := reader.Properties()
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		fmt.Fprintf(out, "  %s: %s\n", key, value)
	}
	return nil
}
