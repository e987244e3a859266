package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/usnaveen/paperlink/internal/links"
	"github.com/usnaveen/paperlink/internal/logger"
	"github.com/usnaveen/paperlink/internal/ocr"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "OCR a photo and recover the link printed on it",
	Long: `Run OCR over a photo of a printed code and recover the registered link.

The recognized text goes through the full recovery pipeline: extraction
of code-shaped substrings, confusion-aware candidate generation, and an
edit distance fallback. Tesseract runs locally and needs no credentials;
the vision engine calls the Google Cloud Vision API.

Required environment variables (vision engine only):
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Scan a flyer photo and resolve the code on it
  paperlink scan flyer.jpg

  # Use the Cloud Vision engine instead of local tesseract
  paperlink scan flyer.jpg --engine vision

  # Just print what the engine read, without resolving
  paperlink scan flyer.jpg --text-only

  # Machine-readable output with recognition metadata
  paperlink scan flyer.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

// ScanOutput represents the JSON output structure when --json flag is used
type ScanOutput struct {
	Text       string            `json:"text"`
	Engine     string            `json:"engine"`
	Confidence float32           `json:"confidence,omitempty"`
	Duration   string            `json:"duration,omitempty"`
	FileName   string            `json:"file_name"`
	FileSize   int64             `json:"file_size"`
	Resolution *links.Resolution `json:"resolution,omitempty"`
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().String("engine", "", "OCR engine: tesseract or vision (default: PAPERLINK_OCR_ENGINE)")
	scanCmd.Flags().Bool("text-only", false, "Print the recognized text without resolving it")
	scanCmd.Flags().Bool("json", false, "Output as JSON")
	scanCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	engineName, _ := cmd.Flags().GetString("engine")
	textOnly, _ := cmd.Flags().GetBool("text-only")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if engineName == "" {
		engineName = cfg.OCREngine
	}

	log.Info().
		Str("file", imagePath).
		Str("engine", engineName).
		Bool("text_only", textOnly).
		Int("timeout", timeoutSecs).
		Msg("Starting scan")

	// Validate and get file info
	fileInfo, err := validateImageFile(imagePath, log)
	if err != nil {
		return err
	}

	// Create context with timeout and signal handling
	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	// Create OCR engine
	engine, err := createEngine(ctx, engineName, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()

	// Open image file
	imageFile, err := os.Open(imagePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", imagePath).
			Msg("Failed to open image file")
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer func() {
		if closeErr := imageFile.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close image file")
		}
	}()

	log.Info().
		Str("file", imagePath).
		Int64("size", fileInfo.Size()).
		Msg("Recognizing text")

	result, err := engine.Recognize(ctx, imageFile)
	if err != nil {
		return handleScanError(err, log)
	}

	log.Info().
		Str("engine", result.Engine).
		Float32("confidence", result.Confidence).
		Dur("duration", result.Duration).
		Int("text_length", len(result.Text)).
		Msg("Recognition completed")

	// Resolve the recognized text against the registered codes
	var res *links.Resolution
	if !textOnly {
		svc, st, err := openService(cfg, cfg.MaxDistance, log)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close link database")
			}
		}()

		res, err = svc.Resolve(ctx, result.Text)
		if err != nil {
			if errors.Is(err, links.ErrNoMatch) {
				return fmt.Errorf("no registered code matches the scanned text %q. "+
					"Rescan closer to the code, or inspect the raw text with --text-only",
					strings.TrimSpace(result.Text))
			}
			return fmt.Errorf("recovery failed: %w", err)
		}
	}

	// Format and output results
	return outputScanResults(result, res, fileInfo, jsonOutput)
}

// validateImageFile checks if the file exists, is readable, and is small
// enough to send to an OCR engine
func validateImageFile(imagePath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", imagePath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp", ".webp":
	default:
		log.Warn().
			Str("file", imagePath).
			Msg("File does not have a common image extension")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", imagePath).
			Msg("Image file is empty")
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	if fileInfo.Size() > ocr.MaxImageSizeBytes {
		log.Error().
			Str("file", imagePath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", ocr.MaxImageSizeBytes).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), ocr.MaxImageSizeBytes)
	}

	return fileInfo, nil
}

// createEngine creates and configures the OCR engine
func createEngine(ctx context.Context, name string, log zerolog.Logger) (ocr.Engine, error) {
	engine, err := ocr.NewEngine(ctx, name)
	if err != nil {
		if errors.Is(err, ocr.ErrUnknownEngine) {
			return nil, fmt.Errorf("unknown OCR engine %q. Use tesseract or vision", name)
		}
		if errors.Is(err, ocr.ErrMissingCredentials) {
			log.Error().
				Err(err).
				Msg("Google Cloud credentials not configured")
			return nil, fmt.Errorf("Google Cloud credentials not configured for the vision engine. Please set one of:\n\n"+
				"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n"+
				"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n"+
				"2. Export GOOGLE_CREDENTIALS with inline JSON:\n"+
				"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",...}'\n\n"+
				"3. Use Application Default Credentials (if gcloud is configured):\n"+
				"   gcloud auth application-default login\n\n"+
				"Or run with --engine tesseract, which needs no credentials.\n\n"+
				"Original error: %w", err)
		}
		log.Error().
			Err(err).
			Msg("Failed to create OCR engine")
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	log.Debug().Str("engine", name).Msg("OCR engine created successfully")
	return engine, nil
}

// handleScanError provides user-friendly error messages for OCR failures
func handleScanError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Text recognition failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("scan timed out. Try increasing --timeout or using a smaller image")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("scan was canceled")
	case errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("image is too large (maximum 20MB). Try downscaling the photo")
	case errors.Is(err, ocr.ErrNoText):
		return fmt.Errorf("no readable text found in the image. Move closer to the printed code and rescan")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "auth:") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Please check your credentials:\n\n"+
			"1. Set GOOGLE_APPLICATION_CREDENTIALS to your service account JSON file path\n"+
			"2. Or set GOOGLE_CREDENTIALS with inline JSON credentials\n"+
			"3. Ensure the service account has 'Cloud Vision API User' role\n\n"+
			"Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return fmt.Errorf("permission denied. Please ensure your Google Cloud service account has the 'Cloud Vision API User' role")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud Vision API quota exceeded. Check your project quotas in the Google Cloud Console")
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return fmt.Errorf("text recognition failed. This may be due to network issues, API limits, or a missing tesseract installation: %w", err)
	default:
		return fmt.Errorf("text recognition failed: %w", err)
	}
}

// outputScanResults formats and outputs the scan results
func outputScanResults(result *ocr.Result, res *links.Resolution, fileInfo os.FileInfo, jsonOutput bool) error {
	if jsonOutput {
		output := ScanOutput{
			Text:       result.Text,
			Engine:     result.Engine,
			Confidence: result.Confidence,
			Duration:   result.Duration.String(),
			FileName:   filepath.Base(fileInfo.Name()),
			FileSize:   fileInfo.Size(),
			Resolution: res,
		}

		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if res == nil {
		fmt.Println(strings.TrimRight(result.Text, "\n"))
		return nil
	}
	return outputResolution(res, false)
}
