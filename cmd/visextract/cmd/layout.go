package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/visarchlab/visextract/internal/pipeline"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [data-dir]",
	Short: "Extract visuals from born-digital PDFs using layout analysis",
	Long: `Extract embedded images and their captions from the PDF files in a data
directory. Captions are matched to images by spatial proximity and keyword
disambiguation. Results are written to a per-entry output directory.

Examples:
  visextract layout ./data --output ./results
  visextract layout ./data --mods ./data/00123_mods.xml --output ./results`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runLayoutCommand,
}

func runLayoutCommand(cmd *cobra.Command, args []string) error {
	opts, err := pipelineOptions(cmd, args[0])
	if err != nil {
		return err
	}

	result, err := pipeline.NewLayout(opts).Run()
	if err != nil {
		return fmt.Errorf("layout pipeline: %w", err)
	}
	reportResult(cmd, result)
	return nil
}

// pipelineOptions assembles pipeline options shared by the layout and
// layoutocr commands from their common flags.
func pipelineOptions(cmd *cobra.Command, dataDir string) (pipeline.Options, error) {
	outputDir, _ := cmd.Flags().GetString("output")
	modsFile, _ := cmd.Flags().GetString("mods")
	entryID, _ := cmd.Flags().GetString("entry")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if _, err := os.Stat(dataDir); err != nil {
		return pipeline.Options{}, fmt.Errorf("data directory: %w", err)
	}

	opts := pipeline.Options{
		DataDir:   dataDir,
		OutputDir: outputDir,
		MODSFile:  modsFile,
		EntryID:   entryID,
		Config:    GetConfig(),
		Logger:    slog.Default(),
	}
	if !quiet {
		opts.Progress = pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), "")
	}
	return opts, nil
}

func reportResult(cmd *cobra.Command, result *pipeline.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "Entry %s: %d visuals from %d documents (%d failed) in %v\n",
		result.Entry.ID,
		result.Entry.TotalVisuals(),
		result.Documents,
		len(result.FailedDocuments),
		result.Duration.Round(time.Millisecond))
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "./output", "directory where results are saved")
	cmd.Flags().String("mods", "", "path to the entry's MODS metadata file")
	cmd.Flags().String("entry", "", "entry identifier (derived from the MODS filename when omitted)")
	cmd.Flags().BoolP("quiet", "q", false, "suppress the progress bar")
}

func init() {
	addPipelineFlags(layoutCmd)
	rootCmd.AddCommand(layoutCmd)
}
