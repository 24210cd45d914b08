// Package labelocr recovers printed slide identifiers from label images.
//
// Scanned slides usually bundle a photo of the physical label, which
// carries the accession number or slide ID as printed text or under a
// barcode. When a format's metadata lacks a slide_id, OCR over the label
// image is the fallback.
//
// The Tesseract engine is linked through gosseract and needs cgo plus a
// system Tesseract installation. On platforms built without cgo the
// package compiles but ExtractLabelText reports ErrUnavailable.
package labelocr

import (
	"errors"
	"strings"

	"github.com/ironsheep/wholeslide/pkg/pixel"
)

// ErrUnavailable marks a build without OCR support.
var ErrUnavailable = errors.New("OCR support not built in (requires cgo and tesseract)")

// Result holds the OCR output for one label image.
type Result struct {
	// FullText is the raw recognized text with original line breaks.
	FullText string
	// Lines is FullText split into trimmed, non-empty lines.
	Lines []string
}

// ExtractLabelText runs OCR over a label image. The language is a
// Tesseract code such as "eng"; an empty string defaults to English.
func ExtractLabelText(img *pixel.Image, language string) (*Result, error) {
	if img == nil || img.Empty() {
		return nil, errors.New("empty label image")
	}
	if language == "" {
		language = "eng"
	}
	text, err := recognize(img, language)
	if err != nil {
		return nil, err
	}
	return &Result{FullText: text, Lines: splitLines(text)}, nil
}

// GuessSlideID picks the most identifier-like line from an OCR result:
// the longest line that contains a digit and no spaces. Returns "" when
// nothing qualifies.
func GuessSlideID(r *Result) string {
	best := ""
	for _, line := range r.Lines {
		if strings.ContainsAny(line, "0123456789") && !strings.Contains(line, " ") && len(line) > len(best) {
			best = line
		}
	}
	return best
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
