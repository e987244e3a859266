package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/usnaveen/paperlink/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "paperlink",
	Short: "PaperLink - short links that survive being printed on paper",
	Long: `PaperLink mints short codes designed to be printed on flyers, posters
and packaging, then scanned back in with a phone camera.

Codes use a 29-character alphabet with the glyphs OCR engines most often
confuse (0/O, 1/I, B, S, Z) removed, and recovery repairs the misreads
that slip through anyway.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("PaperLink CLI executed")

		fmt.Println("Welcome to PaperLink!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
