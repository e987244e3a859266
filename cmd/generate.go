package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usnaveen/paperlink/internal/code"
	"github.com/usnaveen/paperlink/internal/logger"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Mint OCR-safe short codes",
	Long: `Mint random short codes in the PL-XXX-XXX format.

Codes draw from a 29-character alphabet that excludes the glyphs OCR
engines most often confuse: 0, O, 1, I, B, S and Z. Generation is pure
randomness over 29^6 combinations; codes are NOT registered and NOT
checked against the database. Use "shorten" to mint and register a code
for a target URL in one step.`,
	Example: `  # Mint a single code
  paperlink generate

  # Mint a batch for a print run
  paperlink generate --count 50`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntP("count", "n", 1, "Number of codes to mint")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("generate")

	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	log.Debug().Int("count", count).Msg("Minting codes")

	for i := 0; i < count; i++ {
		fmt.Println(code.Generate())
	}
	return nil
}
