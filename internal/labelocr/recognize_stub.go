//go:build !cgo || !linux

package labelocr

import "github.com/ironsheep/wholeslide/pkg/pixel"

func recognize(_ *pixel.Image, _ string) (string, error) {
	return "", ErrUnavailable
}
