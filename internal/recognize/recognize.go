// Package recognize turns the cropped text region of a card into a string.
package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// IdentifierChars are the characters a collector line can contain.
const IdentifierChars = "0123456789/-.ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz "

// Result is the text read from a region.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0..1, 0 when the backend reports none
}

// Recognizer reads the text of an RGB image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (Result, error)
}

// Func adapts a function to a Recognizer.
type Func func(ctx context.Context, img image.Image) (Result, error)

func (f Func) Recognize(ctx context.Context, img image.Image) (Result, error) { return f(ctx, img) }

// Preprocess prepares a text region for recognition: grayscale, scaled up
// by scale with Lanczos resampling, sharpened and contrast-stretched.
func Preprocess(img image.Image, scale int) *image.NRGBA {
	out := imaging.Grayscale(img)
	if scale > 1 {
		out = imaging.Resize(out, out.Bounds().Dx()*scale, 0, imaging.Lanczos)
	}
	out = imaging.Sharpen(out, 1.0)
	return imaging.AdjustContrast(out, 20)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode region: %w", err)
	}
	return buf.Bytes(), nil
}
