package recognize

import (
	"context"
	"image"
	"image/color"
	"os"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestPreprocess(t *testing.T) {
	src := imaging.New(300, 52, color.NRGBA{200, 40, 40, 255})
	out := Preprocess(src, 3)
	assert.Equal(t, 900, out.Bounds().Dx())
	assert.Equal(t, 156, out.Bounds().Dy())

	c := out.NRGBAAt(450, 78)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)

	assert.Equal(t, src.Bounds(), Preprocess(src, 1).Bounds())
}

func TestWordsResult(t *testing.T) {
	res := wordsResult([]gosseract.BoundingBox{
		{Word: "12/204", Confidence: 90},
		{Word: " ", Confidence: 10},
		{Word: "EN", Confidence: 80},
		{Word: "3", Confidence: 70},
	})
	assert.Equal(t, "12/204 EN 3", res.Text)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)

	assert.Equal(t, Result{}, wordsResult(nil))
}

func TestOCRText(t *testing.T) {
	str := func(s string) *string { return &s }
	res := computervision.OcrResult{Regions: &[]computervision.OcrRegion{
		{Lines: &[]computervision.OcrLine{
			{Words: &[]computervision.OcrWord{{Text: str("12/204")}, {Text: str("EN")}}},
			{Words: nil},
			{Words: &[]computervision.OcrWord{{Text: str("3")}, {Text: nil}}},
		}},
		{Lines: nil},
	}}
	assert.Equal(t, "12/204 EN 3", ocrText(res))
	assert.Empty(t, ocrText(computervision.OcrResult{}))
}

func TestFunc(t *testing.T) {
	var r Recognizer = Func(func(context.Context, image.Image) (Result, error) {
		return Result{Text: "1/204 EN 1", Confidence: 1}, nil
	})
	res, err := r.Recognize(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.NoError(t, err)
	assert.Equal(t, "1/204 EN 1", res.Text)
}

func TestTesseractCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTesseract().Recognize(ctx, image.NewRGBA(image.Rect(0, 0, 10, 10)))
	assert.ErrorIs(t, err, context.Canceled)
}

// renderLine draws text the size of a rectified collector line.
func renderLine(t *testing.T, text string) image.Image {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(240, 240, 240, 0), 52, 300, gocv.MatTypeCV8UC3)
	defer m.Close()
	gocv.PutText(&m, text, image.Pt(8, 38), gocv.FontHersheySimplex, 1.0, color.RGBA{10, 10, 10, 0}, 2)
	img, err := m.ToImage()
	require.NoError(t, err)
	return img
}

// Tesseract tests are opt-in. Set TESSERACT_TEST=1 with tesseract installed.
func TestTesseractRecognize(t *testing.T) {
	if os.Getenv("TESSERACT_TEST") != "1" {
		t.Skip("tesseract tests are disabled; set TESSERACT_TEST=1 to enable")
	}
	res, err := NewTesseract().Recognize(context.Background(), renderLine(t, "12/204 EN 3"))
	require.NoError(t, err)
	assert.Equal(t, "12/204EN3", strings.ReplaceAll(res.Text, " ", ""))
	assert.Greater(t, res.Confidence, 0.5)
}

// Azure tests are opt-in. Set AZURE_VISION_ENDPOINT and AZURE_VISION_KEY.
func TestAzureRecognize(t *testing.T) {
	endpoint, key := os.Getenv("AZURE_VISION_ENDPOINT"), os.Getenv("AZURE_VISION_KEY")
	if endpoint == "" || key == "" {
		t.Skip("azure tests are disabled; set AZURE_VISION_ENDPOINT and AZURE_VISION_KEY to enable")
	}
	res, err := NewAzure(endpoint, key).Recognize(context.Background(), renderLine(t, "12/204 EN 3"))
	require.NoError(t, err)
	assert.Contains(t, strings.ReplaceAll(res.Text, " ", ""), "12/204")
	assert.Zero(t, res.Confidence)
}
