package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/umlstools/relcheck/internal/model"
)

// Runner is the analysis entry point the batch processor drives. Satisfied
// by analyze.Analyzer.
type Runner interface {
	Run(ctx context.Context, path string, analysis model.AnalysisType) (*model.Report, error)
}

// AuditJob analyzes a single relationship file.
type AuditJob struct {
	Path     string
	Analysis model.AnalysisType
	Runner   Runner
}

// Execute runs the audit.
func (j *AuditJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.Run(ctx, j.Path, j.Analysis)
	return &AuditResult{
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// AuditResult is the outcome of one file audit.
type AuditResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the audit error, if any.
func (r *AuditResult) GetError() error {
	return r.Error
}

// BatchProcessor audits multiple relationship files concurrently. Each job
// owns disjoint state, so no locking is needed beyond the pool's own.
type BatchProcessor struct {
	runner      Runner
	analysis    model.AnalysisType
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(runner Runner, analysis model.AnalysisType, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		analysis:    analysis,
		concurrency: concurrency,
	}
}

// ProcessPaths audits the given files concurrently and returns one result
// per input, in completion order.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AuditResult {
	if len(paths) == 0 {
		return []*AuditResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&AuditJob{
			Path:     path,
			Analysis: b.analysis,
			Runner:   b.runner,
		})
	}

	results := pool.Wait()

	auditResults := make([]*AuditResult, len(results))
	for i, result := range results {
		auditResults[i] = result.(*AuditResult)
	}
	return auditResults
}

// CollectInputs resolves a batch argument into the list of files to audit.
// A directory yields its *.RRF files (sorted); anything else is treated as
// a manifest listing one path per line.
func CollectInputs(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(arg, "*.RRF"))
		if err != nil {
			return nil, fmt.Errorf("glob dir: %w", err)
		}
		sort.Strings(matches)
		if len(matches) == 0 {
			return nil, fmt.Errorf("no .RRF files in %s", arg)
		}
		return matches, nil
	}

	return readManifest(arg)
}

// readManifest reads file paths from a manifest, one per line, skipping
// blanks and # comments. Duplicates collapse to one entry.
func readManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("manifest %s lists no files", path)
	}
	return paths, nil
}
