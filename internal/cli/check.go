package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/umlstools/relcheck/internal/analyze"
	"github.com/umlstools/relcheck/internal/model"
	"github.com/umlstools/relcheck/internal/report"
)

var (
	analysisType string
	outJSON      string
	outputDir    string
	timeout      time.Duration
	noCache      bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <MRREL.RRF>",
	Short: "Audit a single relationship file and generate defect reports",
	Long: `Check parses a pipe-delimited MRREL.RRF relationship file, builds the
parent-child and broader-than graphs, and reports:
- cycles per graph (each reported once, rotation-normalized)
- self-referential relationships
- duplicate relationship rows with their multiplicity
- summary statistics for the run

Example:
  relcheck check MRREL.RRF
  relcheck check MRREL.RRF --type parent-child --output-dir ./audit
  relcheck check MRREL.RRF --json report.json --llm openai`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Analysis flags
	checkCmd.Flags().StringVarP(&analysisType, "type", "t", "both", "analysis to run (parent-child, broader-than, both)")
	checkCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall audit timeout (increase for very large dumps)")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable report cache (force fresh analysis)")

	// Output flags
	checkCmd.Flags().StringVar(&outputDir, "output-dir", "./relcheck-reports", "output directory for CSV reports")
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (optional)")

	// LLM flags
	checkCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	analysis, err := model.ParseAnalysisType(analysisType)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(analysis)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Auditing: %s\n", file)
		fmt.Fprintf(os.Stderr, "Analysis: %s\n", analysis)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	analyzer := analyze.New(cfg)

	rep, err := analyzer.Run(ctx, file, analysis)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Parsed %d records (%d skipped)\n", rep.Stats.TotalRecords, rep.Stats.SkippedRecords)
		for _, g := range rep.Graphs {
			fmt.Fprintf(os.Stderr, "✓ Graph %s: %d nodes, %d edges, %d cycles\n", g.Kind, g.NodeCount, g.EdgeCount, g.CycleCount)
		}
		fmt.Fprintf(os.Stderr, "✓ Self-loops: %d, duplicates: %d\n", rep.Stats.SelfLoopCount, rep.Stats.DuplicateCount)
		if rep.LLM != nil && rep.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", rep.LLM.Provider, rep.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	renderer := report.NewRenderer(cfg.Output.Dir)
	written, err := renderer.RenderCSVs(rep)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}

	if outJSON != "" {
		if err := renderer.RenderJSON(rep, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
	}

	if defects := rep.Stats.SelfLoopCount + rep.Stats.DuplicateCount + rep.Stats.ParentChildCycles + rep.Stats.BroaderThanCycles; defects > 0 {
		fmt.Fprintf(os.Stderr, "\n✗ Found %d structural defects\n", defects)
	} else {
		fmt.Fprintf(os.Stderr, "\n✓ No structural defects found\n")
	}

	return nil
}

// buildConfig assembles the run configuration from defaults, the config
// file and CLI flags, in ascending priority.
func buildConfig(analysis model.AnalysisType) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Analysis = analysis
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
	cfg.Output.Dir = outputDir
	cfg.Output.Verbose = verbose

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	} else {
		cfg.LLM.Provider = ""
	}

	return cfg, nil
}
