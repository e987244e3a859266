package ocr

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/usnaveen/paperlink/internal/code"
)

// EngineTesseract names the local Tesseract backend.
const EngineTesseract = "tesseract"

// tesseractWhitelist limits recognition to the code alphabet, the hyphen,
// and the confusable characters the corrector knows how to repair.
// Leaving the confusables in beats forcing Tesseract onto the alphabet:
// a wrong-but-repairable 0 is more useful than a confidently wrong Q.
var tesseractWhitelist = code.Alphabet + "-01OIBSZ"

// TesseractEngine recognizes text with a local Tesseract installation.
// Clients are per call; the engine itself holds nothing.
type TesseractEngine struct {
	lang string
}

// NewTesseractEngine returns a Tesseract-backed engine. The tesseract
// shared library must be present at runtime (cgo).
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{lang: "eng"}
}

// Recognize runs Tesseract over the image bytes.
func (t *TesseractEngine) Recognize(ctx context.Context, image io.Reader) (*Result, error) {
	const op = "TesseractEngine.Recognize"
	start := time.Now()

	data, err := io.ReadAll(image)
	if err != nil {
		return nil, wrapScanError(op, err, "failed to read image data")
	}
	// Tesseract runs synchronously in cgo; honor cancellation up front.
	if err := ctx.Err(); err != nil {
		return nil, wrapScanError(op, err, "canceled before recognition")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.lang); err != nil {
		return nil, wrapScanError(op, err, "failed to set language")
	}
	if err := client.SetVariable("tessedit_char_whitelist", tesseractWhitelist); err != nil {
		return nil, wrapScanError(op, err, "failed to set character whitelist")
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, wrapScanError(op, err, "failed to set page segmentation mode")
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, wrapScanError(op, err, "failed to load image")
	}

	text, err := client.Text()
	if err != nil {
		return nil, wrapScanError(op, ErrRecognitionFailed, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return nil, wrapScanError(op, ErrNoText, "")
	}

	return &Result{
		Text:        text,
		Engine:      EngineTesseract,
		ProcessedAt: time.Now(),
		Duration:    time.Since(start),
	}, nil
}

// Close implements Engine; nothing is held between calls.
func (t *TesseractEngine) Close() error {
	return nil
}
