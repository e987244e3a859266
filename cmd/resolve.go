package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/usnaveen/paperlink/internal/links"
	"github.com/usnaveen/paperlink/internal/logger"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [text]",
	Short: "Recover a registered link from scanned text",
	Long: `Recover a registered link from OCR output or hand-typed text.

The text is scanned for code-shaped substrings, each attempt runs
through confusion-aware candidate generation, and anything left over is
matched by edit distance against the registered codes. With --live the
cheap single-substitution matcher runs instead, the same one the
interactive scanning endpoint uses.

Relevant environment variables:
  PAPERLINK_DB             - SQLite database path (default: paperlink.db)
  PAPERLINK_MAX_DISTANCE   - Edit distance budget (default: 2)
  PAPERLINK_CONFUSION_FILE - YAML file overriding the built-in confusion table`,
	Example: `  # Resolve a misread code (0 was printed as Q)
  paperlink resolve PL-0A9-K2M

  # Resolve a whole OCR dump from a file
  paperlink resolve --file scan.txt

  # Pipe OCR output in
  tesseract flyer.jpg - | paperlink resolve --stdin

  # Exact-or-one-substitution only, as the live scanner matches
  paperlink resolve PL-ACD-EFG --live`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringP("file", "f", "", "Read the text to resolve from a file")
	resolveCmd.Flags().Bool("stdin", false, "Read the text to resolve from stdin")
	resolveCmd.Flags().Bool("live", false, "Use the single-substitution live matcher")
	resolveCmd.Flags().Int("max-distance", -1, "Edit distance budget (default: PAPERLINK_MAX_DISTANCE)")
	resolveCmd.Flags().Bool("json", false, "Output as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("resolve")

	filePath, _ := cmd.Flags().GetString("file")
	fromStdin, _ := cmd.Flags().GetBool("stdin")
	live, _ := cmd.Flags().GetBool("live")
	maxDistance, _ := cmd.Flags().GetInt("max-distance")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	text, err := readResolveInput(args, filePath, fromStdin)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if maxDistance < 0 {
		maxDistance = cfg.MaxDistance
	}

	svc, st, err := openService(cfg, maxDistance, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close link database")
		}
	}()

	ctx := context.Background()

	var res *links.Resolution
	if live {
		res, err = svc.ResolveLive(ctx, text)
	} else {
		res, err = svc.Resolve(ctx, text)
	}
	if err != nil {
		return handleResolveError(err, log)
	}

	return outputResolution(res, jsonOutput)
}

// readResolveInput picks the text source: the positional argument, a
// file, or stdin. Exactly one must be given.
func readResolveInput(args []string, filePath string, fromStdin bool) (string, error) {
	sources := 0
	if len(args) > 0 {
		sources++
	}
	if filePath != "" {
		sources++
	}
	if fromStdin {
		sources++
	}
	if sources == 0 {
		return "", fmt.Errorf("nothing to resolve: pass text as an argument, or use --file or --stdin")
	}
	if sources > 1 {
		return "", fmt.Errorf("pass text as an argument, --file or --stdin, not several at once")
	}

	switch {
	case len(args) > 0:
		return args[0], nil
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", filePath, err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

// handleResolveError provides user-friendly error messages for recovery failures
func handleResolveError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Recovery failed")

	switch {
	case errors.Is(err, links.ErrNoMatch):
		return fmt.Errorf("no registered code matches the scanned text. " +
			"Rescan closer to the code, or check the code was registered with \"shorten\"")
	default:
		return fmt.Errorf("recovery failed: %w", err)
	}
}

// outputResolution formats and outputs a successful recovery
func outputResolution(res *links.Resolution, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s -> %s\n", res.Code, res.Link.URL)
	detail := fmt.Sprintf("method: %s", res.Method)
	if res.Distance > 0 {
		detail += fmt.Sprintf(" (distance %d)", res.Distance)
	}
	if scanned := strings.TrimSpace(res.Scanned); scanned != "" && scanned != res.Code {
		detail += fmt.Sprintf(", scanned %q", scanned)
	}
	fmt.Println(detail)
	return nil
}
