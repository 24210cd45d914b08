package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/wholeslide/pkg/formats"
)

var associatedCmd = &cobra.Command{
	Use:   "associated <slide>",
	Short: "List or export associated images (label, thumbnail, macro)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssociated,
}

func init() {
	rootCmd.AddCommand(associatedCmd)

	associatedCmd.Flags().String("export", "", "name of the associated image to export")
	associatedCmd.Flags().StringP("output", "o", "associated.png", "output PNG file for --export")

	viper.BindPFlag("associated.export", associatedCmd.Flags().Lookup("export"))
	viper.BindPFlag("associated.output", associatedCmd.Flags().Lookup("output"))
}

func runAssociated(cmd *cobra.Command, args []string) error {
	reader, err := formats.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	name := viper.GetString("associated.export")
	if name == "" {
		names := reader.AssociatedImages()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No associated images")
			return nil
		}
		for _, n := range names {
			dims, err := reader.Format().AssociatedImageDimensions(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d\n", n, dims.Width, dims.Height)
		}
		return nil
	}

	img, err := reader.ReadAssociatedImage(name)
	if err != nil {
		return err
	}
	output := viper.GetString("associated.output")
	if err := writePNG(img, output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", output, img.Description())
	return nil
}
