package cli

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/wholeslide/pkg/formats"
	"github.com/ironsheep/wholeslide/pkg/pixel"
	"github.com/ironsheep/wholeslide/pkg/render"
	"github.com/ironsheep/wholeslide/pkg/slide"
	"github.com/ironsheep/wholeslide/pkg/tiling"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail <slide>",
	Short: "Write a whole-slide thumbnail bounded to a pixel size",
	Long: `Write a whole-slide thumbnail bounded to a pixel size.

The read happens at the most-downsampled pyramid level that still
exceeds the requested size, then the result is resampled down, so even
gigapixel slides thumbnail without touching level 0.`,
	Args: cobra.ExactArgs(1),
	RunE: runThumbnail,
}

func init() {
	rootCmd.AddCommand(thumbnailCmd)

	thumbnailCmd.Flags().Uint32("max", 512, "longest edge of the thumbnail in pixels")
	thumbnailCmd.Flags().StringP("output", "o", "thumbnail.png", "output PNG file")

	viper.BindPFlag("thumbnail.max", thumbnailCmd.Flags().Lookup("max"))
	viper.BindPFlag("thumbnail.output", thumbnailCmd.Flags().Lookup("output"))
}

func runThumbnail(cmd *cobra.Command, args []string) error {
	maxEdge := viper.GetUint32("thumbnail.max")
	if maxEdge == 0 {
		return fmt.Errorf("thumbnail size must be positive")
	}

	reader, err := formats.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	dims := reader.Dimensions()
	longest := dims.Width
	if dims.Height > longest {
		longest = dims.Height
	}
	level := reader.BestLevelForDownsample(float64(longest) / float64(maxEdge))
	info, err := reader.LevelInfo(level)
	if err != nil {
		return err
	}

	img, err := reader.ReadRegion(tiling.RegionSpec{Size: info.Dimensions, Level: level})
	if err != nil {
		return err
	}
	if img.Format() == pixel.Spectral {
		if img, err = render.Composite(img, visibleChannelRecords(reader), render.Options{}); err != nil {
			return err
		}
	}
	goImg, err := img.GoImage()
	if err != nil {
		return err
	}

	thumb := imaging.Fit(goImg, int(maxEdge), int(maxEdge), imaging.Lanczos)
	output := viper.GetString("thumbnail.output")
	if err := imaging.Save(thumb, output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d from level %d)\n",
		output, thumb.Bounds().Dx(), thumb.Bounds().Dy(), level)
	return nil
}

func visibleChannelRecords(reader *slide.Reader) []slide.Channel {
	channels := reader.Channels()
	visible := reader.VisibleChannels()
	if visible == nil {
		return channels
	}
	subset := make([]slide.Channel, len(visible))
	for i, idx := range visible {
		subset[i] = channels[idx]
	}
	return subset
}
