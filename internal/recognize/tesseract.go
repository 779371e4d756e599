package recognize

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with a local Tesseract installation. A client
// is created per call, so a Tesseract value may be shared between goroutines.
type Tesseract struct {
	Languages []string // default "eng"
	Whitelist string   // default IdentifierChars
	Scale     int      // upscaling before recognition, default 3
}

// NewTesseract returns a Tesseract with the defaults for collector lines.
func NewTesseract() *Tesseract {
	return &Tesseract{Languages: []string{"eng"}, Whitelist: IdentifierChars, Scale: 3}
}

func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	png, err := encodePNG(Preprocess(img, t.Scale))
	if err != nil {
		return Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()
	langs := t.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	if err := client.SetLanguage(langs...); err != nil {
		return Result{}, fmt.Errorf("tesseract language: %w", err)
	}
	if t.Whitelist != "" {
		if err := client.SetWhitelist(t.Whitelist); err != nil {
			return Result{}, fmt.Errorf("tesseract whitelist: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return Result{}, fmt.Errorf("tesseract page mode: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return Result{}, fmt.Errorf("tesseract image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract: %w", err)
	}
	return wordsResult(boxes), nil
}

// wordsResult joins recognized words; confidence is their mean.
func wordsResult(boxes []gosseract.BoundingBox) Result {
	words := make([]string, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		w := strings.TrimSpace(b.Word)
		if w == "" {
			continue
		}
		words = append(words, w)
		sum += b.Confidence
	}
	if len(words) == 0 {
		return Result{}
	}
	return Result{Text: strings.Join(words, " "), Confidence: sum / float64(len(words)) / 100}
}
