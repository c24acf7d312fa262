package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/visarchlab/visextract/internal/batch"
	"github.com/visarchlab/visextract/internal/pipeline"
)

var batchCmd = &cobra.Command{
	Use:   "batch [entry-range] [data-dir] [output-dir]",
	Short: "Process a range of repository entries with the layoutocr pipeline",
	Long: `Process a range of entries in one run. Entry ids are five-digit,
zero-padded numbers; for each id in the range the command looks for
<id>_mods.xml in the data directory and processes the entry's PDF files.
Entries without a MODS file are skipped with a warning.

Each worker keeps its own OCR engine, so raising --workers trades memory
for throughput.

Examples:
  visextract batch 1-100 ./data ./results
  visextract batch 250-250 ./data ./results --workers 4`,
	Args:         cobra.ExactArgs(3),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	from, to, err := parseEntryRange(args[0])
	if err != nil {
		return err
	}
	dataDir, outputDir := args[1], args[2]
	if _, err := os.Stat(dataDir); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	workers, _ := cmd.Flags().GetInt("workers")
	cfg := GetConfig()
	logger := slog.Default()

	entryIDs := make([]string, 0, to-from+1)
	for id := from; id <= to; id++ {
		entryIDs = append(entryIDs, fmt.Sprintf("%05d", id))
	}

	summary := batch.Process(entryIDs, batch.Config{Workers: workers},
		func(entryID string) (bool, error) {
			modsFile := filepath.Join(dataDir, entryID+"_mods.xml")
			if _, err := os.Stat(modsFile); err != nil {
				logger.Warn("no MODS file for entry, skipping", "entry", entryID)
				return true, nil
			}

			opts := pipeline.Options{
				DataDir:   dataDir,
				OutputDir: outputDir,
				MODSFile:  modsFile,
				Config:    cfg,
				Logger:    logger,
			}
			result, err := pipeline.NewLayoutOCR(opts).Run()
			if err != nil {
				logger.Error("entry failed", "entry", entryID, "error", err)
				return false, err
			}
			reportResult(cmd, result)
			return false, nil
		})

	fmt.Fprintf(cmd.OutOrStdout(), "Batch done: %d processed, %d skipped, %d failed\n",
		summary.Processed, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d entries failed", summary.Failed)
	}
	return nil
}

// parseEntryRange parses an inclusive numeric range like "1-100".
func parseEntryRange(s string) (from, to int, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid entry range %q, expected FROM-TO", s)
	}
	from, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q", parts[0])
	}
	to, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q", parts[1])
	}
	if from < 0 || to < from {
		return 0, 0, fmt.Errorf("invalid entry range %q", s)
	}
	return from, to, nil
}

func init() {
	batchCmd.Flags().Int("workers", 1, "number of entries processed in parallel")
	rootCmd.AddCommand(batchCmd)
}
