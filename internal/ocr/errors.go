package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrNoText is returned when the engine finds no readable text in
	// the image.
	ErrNoText = errors.New("image contains no readable text")

	// ErrImageTooLarge is returned when the image exceeds the Vision
	// API's 20MB limit for synchronous requests.
	ErrImageTooLarge = errors.New("image exceeds the maximum size (20MB)")

	// ErrMissingCredentials is returned when neither GOOGLE_CREDENTIALS
	// nor GOOGLE_APPLICATION_CREDENTIALS is configured for the Vision
	// engine.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")

	// ErrUnknownEngine is returned for engine names NewEngine does not
	// recognize.
	ErrUnknownEngine = errors.New("unknown OCR engine")

	// ErrRecognitionFailed is returned when the backend errors out.
	ErrRecognitionFailed = errors.New("text recognition failed")
)

// ScanError wraps engine failures with the operation that failed and any
// extra context worth keeping.
type ScanError struct {
	// Op is the operation that failed, e.g. "VisionEngine.Recognize".
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the wrapped sentinel.
func (e *ScanError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapScanError wraps err as a ScanError unless it already is one.
func wrapScanError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return err
	}

	return &ScanError{Op: op, Err: err, Details: details}
}
