package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/drawcheck/internal/benchmark"
)

var (
	benchmarkModelPath  string
	benchmarkIterations int
	benchmarkImagePaths []string
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark [flags]",
	Short: "Compare CNN OCR throughput on CPU vs GPU for a set of images",
	Long: `benchmark runs the CNN OCR engine's Detect call on each given image
--iterations times with CUDA acceleration requested and --iterations times
without (each after one warmup call), and reports the speedup and memory
delta between the two runs.

Example:
  drawcheck benchmark --model ./models/cnn.onnx --iterations 5 a.png b.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		images := benchmarkImagePaths
		images = append(images, args...)
		if len(images) == 0 {
			return fmt.Errorf("benchmark: at least one image path is required")
		}
		if benchmarkModelPath == "" {
			return fmt.Errorf("benchmark: --model is required")
		}

		b := benchmark.NewGPUVSCPUBenchmark(benchmarkModelPath)
		for _, p := range images {
			b.AddTestImage(p, p, "unspecified")
		}

		results, err := b.RunBenchmark(benchmarkIterations)
		if err != nil {
			return fmt.Errorf("benchmark: %w", err)
		}

		for _, r := range results {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), r.String())
		}
		return nil
	},
}

func init() {
	benchmarkCmd.Flags().StringVar(&benchmarkModelPath, "model", "", "path to the CNN ONNX model")
	benchmarkCmd.Flags().IntVar(&benchmarkIterations, "iterations", 10, "benchmark iterations per image")
	benchmarkCmd.Flags().StringSliceVar(&benchmarkImagePaths, "image", nil, "image path to benchmark (repeatable)")
	rootCmd.AddCommand(benchmarkCmd)
}
