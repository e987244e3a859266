package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usnaveen/paperlink/internal/links"
	"github.com/usnaveen/paperlink/internal/logger"
)

var shortenCmd = &cobra.Command{
	Use:   "shorten [url]",
	Short: "Register a URL under a freshly minted code",
	Long: `Register a target URL under a freshly minted short code.

The code is generated at random and retried on the (vanishingly rare)
collision with an existing one. The target must be an absolute http or
https URL.

Relevant environment variables:
  PAPERLINK_DB       - SQLite database path (default: paperlink.db)
  PAPERLINK_BASE_URL - Base URL printed in front of codes (default: http://localhost:8080)`,
	Example: `  # Register a landing page
  paperlink shorten https://example.com/spring-menu

  # Machine-readable output
  paperlink shorten https://example.com/spring-menu --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShorten,
}

// ShortenOutput represents the JSON output structure when --json flag is used
type ShortenOutput struct {
	Code     string `json:"code"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
}

func init() {
	rootCmd.AddCommand(shortenCmd)

	shortenCmd.Flags().Bool("json", false, "Output as JSON")
}

func runShorten(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("shorten")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	rawURL := args[0]

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	svc, st, err := openService(cfg, cfg.MaxDistance, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close link database")
		}
	}()

	link, err := svc.Shorten(context.Background(), rawURL)
	if err != nil {
		if errors.Is(err, links.ErrInvalidURL) {
			return fmt.Errorf("target must be an absolute http or https URL, got %q", rawURL)
		}
		return fmt.Errorf("failed to register link: %w", err)
	}

	shortURL := strings.TrimRight(cfg.BaseURL, "/") + "/" + link.Code

	if jsonOutput {
		output := ShortenOutput{
			Code:     link.Code,
			URL:      link.URL,
			ShortURL: shortURL,
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s -> %s\n", link.Code, link.URL)
	fmt.Println(shortURL)
	return nil
}
