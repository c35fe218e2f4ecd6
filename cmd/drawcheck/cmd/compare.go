package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/drawcheck/internal/batch"
	"github.com/MeKo-Tech/drawcheck/internal/model"
)

var compareCmd = &cobra.Command{
	Use:   "compare <master> <check>",
	Short: "Compare a master drawing against a check drawing",
	Long: `Compare runs the full loader -> OCR -> comparator -> reviewer
pipeline over one master/check drawing pair and prints a structured
difference report.

Examples:
  drawcheck compare master.pdf check.pdf
  drawcheck compare master.pdf check.pdf --format json --output report.json
  drawcheck compare master.pdf check.pdf --review-mode both`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		format := cfg.Output.Format
		outputFile := cfg.Output.File
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

		req := model.ComparisonRequest{
			MasterPath: args[0],
			CheckPath:  args[1],
			Options: model.ComparisonOptions{
				UseCNNOCR:             cfg.OCR.UseCNNOCR,
				OCRConsensusThreshold: cfg.OCR.ConsensusThreshold,
				CNNMinConfidence:      cfg.OCR.CNNMinConfidence,
				ReviewMode:            model.ReviewMode(cfg.Review.Mode),
			},
		}

		result, err := pl.Run(ctx, req)
		if err != nil {
			return fmt.Errorf("comparison failed: %w", err)
		}
		if result.Summary.Status == "error" {
			return errors.New("comparison timed out before completion")
		}

		batchResult := &batch.Result{
			Pairs: []batch.PairResult{{MasterPath: args[0], CheckPath: args[1], Result: result}},
		}
		return batchResult.SaveResults(format, outputFile, false)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringP("format", "f", "text", "output format (text, json, csv)")
	compareCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	compareCmd.Flags().String("review-mode", "structured", "review mode (structured, adversarial, both)")
	compareCmd.Flags().Bool("cnn-ocr", true, "enable CNN OCR engine alongside the traditional engine")
	compareCmd.Flags().Float64("cnn-min-confidence", 0.7, "minimum CNN OCR confidence")
	compareCmd.Flags().Int("ocr-consensus-threshold", 2, "minimum number of nearby OCR detections for a region to be kept (<=1 disables)")

	bindings := []struct{ key, flag string }{
		{"output.format", "format"},
		{"output.file", "output"},
		{"review.mode", "review-mode"},
		{"ocr.use_cnn_ocr", "cnn-ocr"},
		{"ocr.cnn_min_confidence", "cnn-min-confidence"},
		{"ocr.ocr_consensus_threshold", "ocr-consensus-threshold"},
	}
	for _, b := range bindings {
		if err := viper.BindPFlag(b.key, compareCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", b.flag, err))
		}
	}
}

// GetCompareCommand returns the compare command for testing purposes.
func GetCompareCommand() *cobra.Command {
	return compareCmd
}
