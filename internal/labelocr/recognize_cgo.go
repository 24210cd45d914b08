//go:build cgo && linux

package labelocr

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/wholeslide/pkg/pixel"
)

// recognize runs Tesseract over the label image. Tesseract reads files,
// not memory, so the image goes through a temporary PNG.
func recognize(img *pixel.Image, language string) (string, error) {
	goImg, err := img.GoImage()
	if err != nil {
		rgb, convErr := img.ToRGB()
		if convErr != nil {
			return "", fmt.Errorf("label image not renderable: %w", err)
		}
		if goImg, err = rgb.GoImage(); err != nil {
			return "", fmt.Errorf("label image not renderable: %w", err)
		}
	}

	tmpDir, err := os.MkdirTemp("", "labelocr")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, "label.png")
	file, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp image: %w", err)
	}
	if err := png.Encode(file, goImg); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to encode label image: %w", err)
	}
	file.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("unsupported OCR language %q: %w", language, err)
	}
	if err := client.SetImage(tmpPath); err != nil {
		return "", fmt.Errorf("failed to load label image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
