package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/usnaveen/paperlink/internal/logger"
	"github.com/usnaveen/paperlink/internal/store"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List registered links",
	Long: `List registered links, newest first, with their scan counters.

Relevant environment variables:
  PAPERLINK_DB - SQLite database path (default: paperlink.db)`,
	Example: `  # Show the 20 most recent links
  paperlink links

  # Show everything as JSON
  paperlink links --limit 0 --json`,
	RunE: runLinks,
}

func init() {
	rootCmd.AddCommand(linksCmd)

	linksCmd.Flags().Int("limit", 20, "Maximum number of links to show (0 for all)")
	linksCmd.Flags().Bool("json", false, "Output as JSON")
}

func runLinks(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("links")

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("database", cfg.DatabasePath).
			Msg("Failed to open link database")
		return fmt.Errorf("failed to open link database: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close link database")
		}
	}()

	ctx := context.Background()

	registered, err := st.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}
	total, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count links: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(registered, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(registered) == 0 {
		fmt.Println("No links registered yet. Use \"shorten\" to add one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tURL\tSCANS\tLAST SCAN")
	for _, link := range registered {
		lastScan := "-"
		if link.LastScannedAt != nil {
			lastScan = link.LastScannedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", link.Code, link.URL, link.ScanCount, lastScan)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("\n%d of %d links\n", len(registered), total)
	return nil
}
