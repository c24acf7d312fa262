package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visarchlab/visextract/internal/pipeline"
)

var layoutOCRCmd = &cobra.Command{
	Use:   "layoutocr [data-dir]",
	Short: "Extract visuals using layout analysis with an OCR fallback",
	Long: `Extract visuals and captions like the layout command, but send every page
without embedded images through Tesseract OCR. Scanned pages yield cropped
figure regions; captions are matched against the recognized text. PDFs the
layout parser cannot read at all are fully rasterized and recognized when
the fallback is enabled.

Requires a Tesseract installation with the configured language data.

Examples:
  visextract layoutocr ./data --output ./results
  visextract layoutocr ./data --mods ./data/00123_mods.xml --output ./results`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runLayoutOCRCommand,
}

func runLayoutOCRCommand(cmd *cobra.Command, args []string) error {
	opts, err := pipelineOptions(cmd, args[0])
	if err != nil {
		return err
	}

	result, err := pipeline.NewLayoutOCR(opts).Run()
	if err != nil {
		return fmt.Errorf("layoutocr pipeline: %w", err)
	}
	reportResult(cmd, result)
	return nil
}

func init() {
	addPipelineFlags(layoutOCRCmd)
	rootCmd.AddCommand(layoutOCRCmd)
}
