// Package ocr turns photos of printed or handwritten codes into raw text
// for the recovery pipeline. Two engines sit behind one interface: a
// local Tesseract engine tuned to the code alphabet, and Google Cloud
// Vision for deployments that prefer a managed service.
//
// Engine selection and credentials:
//   - PAPERLINK_OCR_ENGINE: "tesseract" (default) or "vision"
//   - GOOGLE_CREDENTIALS: inline service account JSON (vision), OR
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file
//
// Image handling stays deliberately dumb: bytes go in, text comes out.
// Cropping, thresholding and other preprocessing belong to whoever took
// the photo.
package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Engine is implemented by every OCR backend.
type Engine interface {
	// Recognize extracts text from a single image.
	Recognize(ctx context.Context, image io.Reader) (*Result, error)

	// Close releases any resources held by the engine.
	Close() error
}

// Result carries recognized text with processing metadata.
type Result struct {
	// Text is the raw recognized text, line breaks preserved.
	Text string `json:"text"`

	// Confidence is the engine's mean confidence (0.0 to 1.0), 0 when
	// the engine does not report one.
	Confidence float32 `json:"confidence"`

	// Engine names the backend that produced the result.
	Engine string `json:"engine"`

	// ProcessedAt is when recognition completed.
	ProcessedAt time.Time `json:"processed_at"`

	// Duration is how long recognition took.
	Duration time.Duration `json:"duration"`
}

// NewEngine builds the engine registered under name: "tesseract" or
// "vision". An empty name selects tesseract.
func NewEngine(ctx context.Context, name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineTesseract:
		return NewTesseractEngine(), nil
	case EngineVision:
		return NewVisionEngine(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}
