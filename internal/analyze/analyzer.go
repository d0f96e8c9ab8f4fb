// Package analyze orchestrates the full audit: parse and classify the
// relationship dump, build one graph per requested relation kind, run cycle
// detection, and aggregate the findings into a report.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/umlstools/relcheck/internal/cache"
	"github.com/umlstools/relcheck/internal/classify"
	"github.com/umlstools/relcheck/internal/detect"
	"github.com/umlstools/relcheck/internal/llm"
	"github.com/umlstools/relcheck/internal/model"
	"github.com/umlstools/relcheck/internal/mrrel"
	"github.com/umlstools/relcheck/internal/relgraph"
	"github.com/umlstools/relcheck/internal/worker"
)

// Analyzer runs audits. It keeps no per-run state: every Run receives input
// and returns a fresh report, so one Analyzer may serve concurrent batch
// jobs.
type Analyzer struct {
	config     *model.Config
	cache      cache.Cache // nil disables memoization
	summarizer *llm.Summarizer
}

// New creates an analyzer from the given configuration.
func New(cfg *model.Config) *Analyzer {
	var store cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Analyzer{
		config:     cfg,
		cache:      store,
		summarizer: summarizer,
	}
}

// SetLLMLimiter attaches a shared rate limiter to the summarizer, so
// concurrent batch jobs don't overrun the provider's API limits. No-op when
// summaries are disabled.
func (a *Analyzer) SetLLMLimiter(l *worker.Limiter) {
	if a.summarizer != nil {
		a.summarizer.SetLimiter(l)
	}
}

// Run audits one MRREL file and returns the complete report. Either the
// full report is returned or an error; there are no partial results.
func (a *Analyzer) Run(ctx context.Context, path string, analysis model.AnalysisType) (*model.Report, error) {
	var key string
	if a.cache != nil {
		if k, err := cache.FileKey(path, string(analysis)); err == nil {
			key = k
			if data, found := a.cache.Get(key); found {
				var report model.Report
				if err := json.Unmarshal(data, &report); err == nil {
					return &report, nil
				}
			}
		}
	}

	report, err := a.analyze(ctx, path, analysis)
	if err != nil {
		return nil, err
	}

	// The optional narrative is generated after detection completes and
	// never feeds back into the findings.
	if a.summarizer != nil && a.summarizer.IsEnabled() {
		summary, err := a.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM summary generation failed: %v\n", err)
		} else if summary != nil {
			report.LLM = summary
		}
	}

	if a.cache != nil && key != "" {
		if data, err := json.Marshal(report); err == nil {
			_ = a.cache.Set(key, data, 0)
		}
	}

	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, path string, analysis model.AnalysisType) (*model.Report, error) {
	kinds := analysis.Kinds()
	builders := make(map[model.RelationKind]*relgraph.Builder, len(kinds))
	for _, kind := range kinds {
		builders[kind] = relgraph.NewBuilder(kind)
	}

	parseStart := time.Now()
	readStats, err := mrrel.ReadFile(path, func(rec model.Record) {
		edge, ok := classify.Classify(rec)
		if !ok {
			return
		}
		if builder, wanted := builders[edge.Kind]; wanted {
			builder.Add(edge)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	parseSeconds := time.Since(parseStart).Seconds()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	// The graphs are independent once sealed, so detection runs in
	// parallel with no shared mutable state.
	detectStart := time.Now()
	graphs := make([]*relgraph.Graph, len(kinds))
	cycles := make([][]model.Cycle, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		graphs[i] = builders[kind].Build()
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cycles[i] = detect.Cycles(graphs[i])
		}(i)
	}
	wg.Wait()
	detectSeconds := time.Since(detectStart).Seconds()

	report := aggregate(path, analysis, readStats, builders, graphs, cycles)
	report.Stats.ParseSeconds = parseSeconds
	report.Stats.DetectSeconds = detectSeconds
	return report, nil
}

// aggregate merges the per-graph findings into one report. Pure
// read/combine step; no new detection logic.
func aggregate(
	path string,
	analysis model.AnalysisType,
	readStats *mrrel.ReadStats,
	builders map[model.RelationKind]*relgraph.Builder,
	graphs []*relgraph.Graph,
	cycles [][]model.Cycle,
) *model.Report {
	report := &model.Report{
		Source:      path,
		Analysis:    analysis,
		GeneratedAt: time.Now().UTC(),
		SelfLoops:   []model.SelfLoop{},
		Duplicates:  []model.DuplicateEdge{},
		Stats: model.Stats{
			TotalRecords:   readStats.TotalRecords,
			SkippedRecords: readStats.Skipped,
			RelationCodes:  len(readStats.RelationCodes),
		},
	}

	for i, g := range graphs {
		builder := builders[g.Kind()]
		report.SelfLoops = append(report.SelfLoops, builder.SelfLoops()...)
		report.Duplicates = append(report.Duplicates, builder.Duplicates()...)

		graphCycles := cycles[i]
		if graphCycles == nil {
			graphCycles = []model.Cycle{}
		}
		report.Graphs = append(report.Graphs, model.GraphReport{
			Kind:       g.Kind(),
			NodeCount:  g.NodeCount(),
			EdgeCount:  g.EdgeCount(),
			Cycles:     graphCycles,
			CycleCount: len(graphCycles),
		})

		switch g.Kind() {
		case model.ParentChild:
			report.Stats.ParentChildEdges = g.EdgeCount()
			report.Stats.ParentChildCycles = len(graphCycles)
		case model.BroaderThan:
			report.Stats.BroaderThanEdges = g.EdgeCount()
			report.Stats.BroaderThanCycles = len(graphCycles)
		}
	}

	report.Stats.SelfLoopCount = len(report.SelfLoops)
	report.Stats.DuplicateCount = len(report.Duplicates)
	return report
}
