package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/umlstools/relcheck/internal/model"
	"github.com/umlstools/relcheck/internal/worker"
)

// maxPromptCycles caps how many cycles are inlined into the prompt; large
// defect lists would otherwise blow the context window for no gain.
const maxPromptCycles = 10

// Summarizer turns an audit report into a short narrative via a configured
// provider. A nil provider means summaries are disabled.
type Summarizer struct {
	provider Provider
	limiter  *worker.Limiter // nil disables throttling
	config   Config
}

// NewSummarizer creates a summarizer from configuration.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	return &Summarizer{
		provider: provider,
		config:   config,
	}, nil
}

// SetLimiter attaches a rate limiter, used by batch runs to throttle API
// calls across concurrent audits.
func (s *Summarizer) SetLimiter(limiter *worker.Limiter) {
	s.limiter = limiter
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the active provider's name, or "" when disabled.
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary produces the narrative summary for a report. Returns
// (nil, nil) when disabled.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.provider.Host()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	summary := &model.LLMSummary{
		Enabled:  true,
		Provider: s.provider.Name(),
		Model:    resp.Model,
		Summary:  resp.Summary,
	}
	if resp.Summary == "" {
		summary.Warnings = append(summary.Warnings, "provider returned an empty summary")
	}
	return summary, nil
}

// BuildPrompt renders the default prompt: the summary counts plus a sample
// of the detected cycles, with instructions to stay within the given data.
func BuildPrompt(report model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summarize the structural audit of %s for an ontology maintainer.\n\n", report.Source)
	fmt.Fprintf(&b, "Records parsed: %d (skipped: %d)\n", report.Stats.TotalRecords, report.Stats.SkippedRecords)
	fmt.Fprintf(&b, "Self-loops: %d\n", report.Stats.SelfLoopCount)
	fmt.Fprintf(&b, "Duplicate edges: %d\n", report.Stats.DuplicateCount)

	for _, g := range report.Graphs {
		fmt.Fprintf(&b, "\nGraph %s: %d nodes, %d edges, %d cycles\n", g.Kind, g.NodeCount, g.EdgeCount, g.CycleCount)
		for i, cycle := range g.Cycles {
			if i >= maxPromptCycles {
				fmt.Fprintf(&b, "  ... and %d more\n", len(g.Cycles)-maxPromptCycles)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", cycle.String())
		}
	}

	b.WriteString("\nWrite at most three short paragraphs. Mention only concepts and numbers listed above; do not speculate about causes outside the data.\n")
	return b.String()
}
