// Package report turns a finished analysis report into CSV and JSON
// artifacts. It is a pure rendering collaborator; all detection happens
// upstream.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/umlstools/relcheck/internal/model"
)

// Renderer writes report artifacts into an output directory. Every file of
// one run shares the same timestamp suffix so runs never overwrite each
// other.
type Renderer struct {
	dir       string
	timestamp string
}

// NewRenderer creates a renderer for the given output directory.
func NewRenderer(dir string) *Renderer {
	return &Renderer{
		dir:       dir,
		timestamp: time.Now().Format("20060102_150405"),
	}
}

// RenderCSVs writes the per-defect CSV files and the statistics file,
// returning the paths written. Cycle files are only written for graphs that
// actually contain cycles; self-loop, duplicate and statistics files are
// always written.
func (r *Renderer) RenderCSVs(rep *model.Report) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string

	for _, g := range rep.Graphs {
		if len(g.Cycles) == 0 {
			continue
		}
		name := fmt.Sprintf("%s_cycles_%s.csv", g.Kind, r.timestamp)
		path, err := r.writeCSV(name, [][]string{{"Cycle_ID", "Cycle"}}, func(w *csv.Writer) error {
			for i, cycle := range g.Cycles {
				if err := w.Write([]string{strconv.Itoa(i + 1), cycle.String()}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path, err := r.writeCSV(
		fmt.Sprintf("self_loops_%s.csv", r.timestamp),
		[][]string{{"CUI", "Kind", "Count"}},
		func(w *csv.Writer) error {
			for _, loop := range rep.SelfLoops {
				if err := w.Write([]string{loop.CUI, string(loop.Kind), strconv.Itoa(loop.Count)}); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	path, err = r.writeCSV(
		fmt.Sprintf("duplicates_%s.csv", r.timestamp),
		[][]string{{"Source", "Target", "Kind", "Count"}},
		func(w *csv.Writer) error {
			for _, dupe := range rep.Duplicates {
				row := []string{dupe.Source, dupe.Target, string(dupe.Kind), strconv.Itoa(dupe.Count)}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	path, err = r.writeCSV(
		fmt.Sprintf("analysis_statistics_%s.csv", r.timestamp),
		[][]string{{"Metric", "Value"}},
		func(w *csv.Writer) error {
			for _, row := range statRows(rep) {
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	return written, nil
}

// RenderJSON writes the full report as indented JSON.
func (r *Renderer) RenderJSON(rep *model.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (r *Renderer) writeCSV(name string, header [][]string, body func(*csv.Writer) error) (path string, err error) {
	path = filepath.Join(r.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", name, closeErr)
		}
	}()

	w := csv.NewWriter(f)
	for _, row := range header {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := body(w); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", name, err)
	}

	return path, nil
}

// statRows mirrors the metric names of the statistics report, one row per
// metric.
func statRows(rep *model.Report) [][]string {
	s := rep.Stats
	rows := [][]string{
		{"Total Records", strconv.Itoa(s.TotalRecords)},
		{"Skipped Records", strconv.Itoa(s.SkippedRecords)},
		{"Total Unique Relationship Types", strconv.Itoa(s.RelationCodes)},
		{"Total Self-Loops", strconv.Itoa(s.SelfLoopCount)},
		{"Total Duplicates", strconv.Itoa(s.DuplicateCount)},
	}

	for _, g := range rep.Graphs {
		switch g.Kind {
		case model.ParentChild:
			rows = append(rows,
				[]string{"Total Parent-Child Relationships", strconv.Itoa(g.EdgeCount)},
				[]string{"Parent-Child Cycle Count", strconv.Itoa(g.CycleCount)},
			)
		case model.BroaderThan:
			rows = append(rows,
				[]string{"Total Broader-Than Relationships", strconv.Itoa(g.EdgeCount)},
				[]string{"Broader-Than Cycle Count", strconv.Itoa(g.CycleCount)},
			)
		}
	}

	rows = append(rows,
		[]string{"Parse Time (s)", fmt.Sprintf("%.2f", s.ParseSeconds)},
		[]string{"Detection Time (s)", fmt.Sprintf("%.2f", s.DetectSeconds)},
	)
	return rows
}
