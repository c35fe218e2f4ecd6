package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/drawcheck/internal/batch"
	"github.com/MeKo-Tech/drawcheck/internal/model"
)

var batchCmd = &cobra.Command{
	Use:   "batch <master-dir> <check-dir>",
	Short: "Compare every drawing pair found under two parallel directories",
	Long: `Batch discovers a master drawing under master-dir and its matching
check drawing under check-dir (paired by relative path with the file
extension stripped) and runs the comparison pipeline over every pair
using a bounded worker pool.

Examples:
  drawcheck batch ./masters ./checks
  drawcheck batch ./masters ./checks --recursive --workers 8 --continue-on-error`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		format := cfg.Output.Format
		validFormats := []string{"text", "json", "csv"}
		isValid := false
		for _, f := range validFormats {
			if format == f {
				isValid = true
				break
			}
		}
		if !isValid {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
		}

		recursive, _ := cmd.Flags().GetBool("recursive")
		include, _ := cmd.Flags().GetStringSlice("include")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		quiet, _ := cmd.Flags().GetBool("quiet")
		showStats, _ := cmd.Flags().GetBool("stats")

		ctx := cmd.Context()
		pl, err := buildPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := pl.Close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error closing pipeline: %v\n", err)
			}
		}()

		batchCfg := &batch.Config{
			Options: model.ComparisonOptions{
				UseCNNOCR:             cfg.OCR.UseCNNOCR,
				OCRConsensusThreshold: cfg.OCR.ConsensusThreshold,
				CNNMinConfidence:      cfg.OCR.CNNMinConfidence,
				ReviewMode:            model.ReviewMode(cfg.Review.Mode),
			},
			Workers:         cfg.Batch.Workers,
			ContinueOnError: cfg.Batch.ContinueOnError,
			Recursive:       recursive,
			IncludePatterns: include,
			ExcludePatterns: exclude,
			Quiet:           quiet,
			ShowStats:       showStats,
		}

		result, err := batch.ProcessBatch(ctx, pl, args[0], args[1], batchCfg)
		if err != nil {
			return fmt.Errorf("batch comparison failed: %w", err)
		}

		if err := result.SaveResults(format, cfg.Output.File, quiet); err != nil {
			return fmt.Errorf("failed to save batch results: %w", err)
		}
		result.PrintStats(quiet || !showStats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("format", "f", "text", "output format (text, json, csv)")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	batchCmd.Flags().Bool("recursive", false, "recurse into subdirectories when discovering drawing pairs")
	batchCmd.Flags().StringSlice("include", []string{"*.pdf"}, "glob patterns of files to include")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to exclude")
	batchCmd.Flags().Int("workers", 4, "number of drawing pairs compared concurrently")
	batchCmd.Flags().Bool("continue-on-error", false, "keep processing remaining pairs after one pair's comparison fails")
	batchCmd.Flags().Bool("quiet", false, "suppress progress and statistics output")
	batchCmd.Flags().Bool("stats", true, "print summary statistics after the run")

	bindings := []struct{ key, flag string }{
		{"output.format", "format"},
		{"output.file", "output"},
		{"batch.workers", "workers"},
		{"batch.continue_on_error", "continue-on-error"},
	}
	for _, b := range bindings {
		if err := viper.BindPFlag(b.key, batchCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", b.flag, err))
		}
	}
}

// GetBatchCommand returns the batch command for testing purposes.
func GetBatchCommand() *cobra.Command {
	return batchCmd
}
