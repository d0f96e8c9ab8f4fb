package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/umlstools/relcheck/internal/analyze"
	"github.com/umlstools/relcheck/internal/model"
	"github.com/umlstools/relcheck/internal/report"
	"github.com/umlstools/relcheck/internal/worker"
)

var (
	batchType        string
	batchOutputDir   string
	batchTimeout     time.Duration
	batchConcurrency int
	batchNoCache     bool
	batchLLM         bool
	batchLLMProvider string
	batchLLMModel    string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-manifest>",
	Short: "Audit multiple relationship files concurrently",
	Long: `Batch audits several MRREL.RRF files using a worker pool. The argument
is either a directory (all *.RRF files inside are audited) or a manifest
file listing one path per line (# comments and blank lines are skipped).

Each input gets its own subdirectory under the output directory, named
after the file, holding that run's CSV and JSON artifacts.

Example:
  relcheck batch ./releases/2026AA/META
  relcheck batch manifest.txt --concurrency 8 --type parent-child`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchType, "type", "t", "both", "analysis to run (parent-child, broader-than, both)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 4, "number of concurrent audits")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable report cache (force fresh analysis)")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "./relcheck-reports", "output directory for reports")
	batchCmd.Flags().BoolVar(&batchLLM, "llm", false, "enable LLM summary generation")
	batchCmd.Flags().StringVar(&batchLLMProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	batchCmd.Flags().StringVar(&batchLLMModel, "llm-model", "", "LLM model name (provider default if empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	analysis, err := model.ParseAnalysisType(batchType)
	if err != nil {
		return err
	}

	paths, err := worker.CollectInputs(args[0])
	if err != nil {
		return err
	}

	// The single-file flags feed buildConfig; mirror them from the batch
	// flag set before assembling the configuration.
	outputDir = batchOutputDir
	noCache = batchNoCache
	llmEnabled = batchLLM
	llmProvider = batchLLMProvider
	llmModel = batchLLMModel

	cfg, err := buildConfig(analysis)
	if err != nil {
		return err
	}
	if batchConcurrency > 0 {
		cfg.Concurrency.Workers = batchConcurrency
	}

	analyzer := analyze.New(cfg)
	if cfg.LLM.Provider != "" {
		analyzer.SetLLMLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))
	}

	fmt.Fprintf(os.Stderr, "Batch auditing %d files with %d workers\n\n", len(paths), cfg.Concurrency.Workers)

	processor := worker.NewBatchProcessor(analyzer, analysis, cfg.Concurrency.Workers)
	results := processor.ProcessPaths(ctx, paths)

	succeeded := 0
	failed := 0
	totalDefects := 0
	for _, res := range results {
		if res.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Path, res.Error)
			continue
		}

		dir := filepath.Join(cfg.Output.Dir, sanitizeFilename(res.Path))
		renderer := report.NewRenderer(dir)
		written, err := renderer.RenderCSVs(res.Report)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: render failed: %v\n", res.Path, err)
			continue
		}
		if err := renderer.RenderJSON(res.Report, filepath.Join(dir, "report.json")); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: render JSON failed: %v\n", res.Path, err)
			continue
		}

		succeeded++
		defects := res.Report.Stats.SelfLoopCount + res.Report.Stats.DuplicateCount +
			res.Report.Stats.ParentChildCycles + res.Report.Stats.BroaderThanCycles
		totalDefects += defects
		fmt.Fprintf(os.Stderr, "✓ %s: %d defects, %d artifacts\n", res.Path, defects, len(written)+1)
	}

	fmt.Fprintln(os.Stderr, "\n========================================")
	fmt.Fprintf(os.Stderr, "Batch complete: %d succeeded, %d failed\n", succeeded, failed)
	fmt.Fprintf(os.Stderr, "Total structural defects: %d\n", totalDefects)
	fmt.Fprintf(os.Stderr, "Reports in: %s\n", cfg.Output.Dir)
	fmt.Fprintln(os.Stderr, "========================================")

	if failed > 0 {
		return fmt.Errorf("%d of %d audits failed", failed, len(results))
	}
	return nil
}

// sanitizeFilename turns an input path into a directory-safe name.
func sanitizeFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		name = "input"
	}
	return name
}
