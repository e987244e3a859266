package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// EngineVision names the Google Cloud Vision backend.
const EngineVision = "vision"

// MaxImageSizeBytes is the Vision API limit for synchronous requests.
const MaxImageSizeBytes = 20 * 1024 * 1024

// VisionEngine recognizes text with the Google Cloud Vision API.
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionEngine creates a Vision-backed engine with credentials from
// the environment, tried in order: GOOGLE_CREDENTIALS (inline JSON),
// GOOGLE_APPLICATION_CREDENTIALS (file path), application default
// credentials.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, wrapScanError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, wrapScanError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, wrapScanError(op, ErrMissingCredentials, fmt.Sprintf("no credentials in environment, default credentials unavailable: %v", err))
		}
	}

	return &VisionEngine{client: client}, nil
}

// NewVisionEngineWithClient wraps an existing client, mainly for tests.
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient) *VisionEngine {
	return &VisionEngine{client: client}
}

// Recognize runs document text detection over the image.
func (v *VisionEngine) Recognize(ctx context.Context, image io.Reader) (*Result, error) {
	const op = "VisionEngine.Recognize"
	start := time.Now()

	data, err := io.ReadAll(image)
	if err != nil {
		return nil, wrapScanError(op, err, "failed to read image data")
	}
	if len(data) > MaxImageSizeBytes {
		return nil, wrapScanError(op, ErrImageTooLarge, fmt.Sprintf("image size: %d bytes", len(data)))
	}

	annotation, err := v.client.DetectDocumentText(ctx, &visionpb.Image{Content: data}, nil)
	if err != nil {
		return nil, wrapScanError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if annotation == nil || strings.TrimSpace(annotation.GetText()) == "" {
		return nil, wrapScanError(op, ErrNoText, "")
	}

	return &Result{
		Text:        annotation.GetText(),
		Confidence:  blockConfidence(annotation),
		Engine:      EngineVision,
		ProcessedAt: time.Now(),
		Duration:    time.Since(start),
	}, nil
}

// blockConfidence averages block-level confidence over all detected
// pages; 0 when the response carries none.
func blockConfidence(annotation *visionpb.TextAnnotation) float32 {
	var sum float32
	var count int
	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			if block.GetConfidence() > 0 {
				sum += block.GetConfidence()
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float32(count)
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
