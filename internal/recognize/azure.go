package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// Azure recognizes text with the Azure Computer Vision OCR endpoint.
type Azure struct {
	client computervision.BaseClient
}

// NewAzure returns a recognizer for the Computer Vision resource at endpoint.
func NewAzure(endpoint, apiKey string) *Azure {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	return &Azure{client: client}
}

// Recognize sends the region as PNG. The endpoint reports no confidence, so
// Result.Confidence is always 0.
func (a *Azure) Recognize(ctx context.Context, img image.Image) (Result, error) {
	png, err := encodePNG(img)
	if err != nil {
		return Result{}, err
	}
	res, err := a.client.RecognizePrintedTextInStream(ctx, true,
		io.NopCloser(bytes.NewReader(png)), computervision.OcrLanguages(computervision.En))
	if err != nil {
		return Result{}, fmt.Errorf("azure ocr: %w", err)
	}
	return Result{Text: ocrText(res)}, nil
}

// ocrText joins every word of every line in reading order.
func ocrText(res computervision.OcrResult) string {
	var words []string
	if res.Regions == nil {
		return ""
	}
	for _, region := range *res.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			for _, w := range *line.Words {
				if w.Text != nil {
					words = append(words, *w.Text)
				}
			}
		}
	}
	return strings.Join(words, " ")
}
