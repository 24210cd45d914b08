package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ironsheep/wholeslide/internal/labelocr"
	"github.com/ironsheep/wholeslide/pkg/formats"
	"github.com/ironsheep/wholeslide/pkg/metadata"
)

var labelTextCmd = &cobra.Command{
	Use:   "label-text <slide>",
	Short: "OCR the slide label image to recover its printed identifier",
	Long: `OCR the slide label image to recover its printed identifier.

When the slide metadata already carries a slide_id it is printed
directly; otherwise the label associated image is run through Tesseract
and the most identifier-like line is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runLabelText,
}

func init() {
	rootCmd.AddCommand(labelTextCmd)

	labelTextCmd.Flags().String("language", "eng", "Tesseract language code")
	labelTextCmd.Flags().Bool("full", false, "print the full recognized text, not just the ID guess")

	viper.BindPFlag("labeltext.language", labelTextCmd.Flags().Lookup("language"))
	viper.BindPFlag("labeltext.full", labelTextCmd.Flags().Lookup("full"))
}

func runLabelText(cmd *cobra.Command, args []string) error {
	reader, err := formats.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	out := cmd.OutOrStdout()
	if id := reader.Properties().GetString(metadata.KeySlideID, ""); id != "" {
		fmt.Fprintf(out, "Slide ID (metadata): %s\n", id)
		return nil
	}

	label, err := reader.ReadAssociatedImage("label")
	if err != nil {
		return fmt.Errorf("slide has no label image to OCR: %w", err)
	}
	result, err := labelocr.ExtractLabelText(label, viper.GetString("labeltext.language"))
	if err != nil {
		return err
	}

	if viper.GetBool("labeltext.full") {
		fmt.Fprintln(out, result.FullText)
		return nil
	}
	if id := labelocr.GuessSlideID(result); id != "" {
		fmt.Fprintf(out, "Slide ID (label OCR): %s\n", id)
		return nil
	}
	fmt.Fprintln(out, "No identifier found on label; use --full to see the raw text")
	return nil
}
