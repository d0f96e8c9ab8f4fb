package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/umlstools/relcheck/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Source:      "MRREL.RRF",
		Analysis:    model.AnalysisBoth,
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Stats: model.Stats{
			TotalRecords:      6,
			RelationCodes:     4,
			ParentChildEdges:  3,
			BroaderThanEdges:  1,
			SelfLoopCount:     1,
			DuplicateCount:    1,
			ParentChildCycles: 1,
		},
		SelfLoops: []model.SelfLoop{
			{CUI: "C0000005", Kind: model.BroaderThan, Count: 1},
		},
		Duplicates: []model.DuplicateEdge{
			{Source: "C0000001", Target: "C0000002", Kind: model.ParentChild, Count: 2},
		},
		Graphs: []model.GraphReport{
			{
				Kind:       model.ParentChild,
				NodeCount:  3,
				EdgeCount:  3,
				Cycles:     []model.Cycle{{"C0000001", "C0000002", "C0000003"}},
				CycleCount: 1,
			},
			{
				Kind:       model.BroaderThan,
				NodeCount:  2,
				EdgeCount:  1,
				Cycles:     []model.Cycle{},
				CycleCount: 0,
			},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func findFile(t *testing.T, paths []string, prefix string) string {
	t.Helper()
	for _, p := range paths {
		if strings.HasPrefix(filepath.Base(p), prefix) {
			return p
		}
	}
	t.Fatalf("no file with prefix %q in %v", prefix, paths)
	return ""
}

func TestRenderCSVs(t *testing.T) {
	dir := t.TempDir()
	written, err := NewRenderer(dir).RenderCSVs(sampleReport())
	if err != nil {
		t.Fatalf("RenderCSVs() error = %v", err)
	}

	// One cycle file (only the hierarchy graph has cycles) plus
	// self-loops, duplicates and statistics.
	if len(written) != 4 {
		t.Fatalf("wrote %d files, want 4: %v", len(written), written)
	}

	cycleRows := readCSV(t, findFile(t, written, "parent_child_cycles_"))
	wantCycles := [][]string{
		{"Cycle_ID", "Cycle"},
		{"1", "C0000001 -> C0000002 -> C0000003"},
	}
	if !reflect.DeepEqual(cycleRows, wantCycles) {
		t.Errorf("cycle rows = %v, want %v", cycleRows, wantCycles)
	}

	loopRows := readCSV(t, findFile(t, written, "self_loops_"))
	wantLoops := [][]string{
		{"CUI", "Kind", "Count"},
		{"C0000005", "broader_than", "1"},
	}
	if !reflect.DeepEqual(loopRows, wantLoops) {
		t.Errorf("self-loop rows = %v, want %v", loopRows, wantLoops)
	}

	dupeRows := readCSV(t, findFile(t, written, "duplicates_"))
	wantDupes := [][]string{
		{"Source", "Target", "Kind", "Count"},
		{"C0000001", "C0000002", "parent_child", "2"},
	}
	if !reflect.DeepEqual(dupeRows, wantDupes) {
		t.Errorf("duplicate rows = %v, want %v", dupeRows, wantDupes)
	}

	statRows := readCSV(t, findFile(t, written, "analysis_statistics_"))
	if statRows[0][0] != "Metric" || statRows[0][1] != "Value" {
		t.Errorf("statistics header = %v", statRows[0])
	}
	metrics := make(map[string]string)
	for _, row := range statRows[1:] {
		metrics[row[0]] = row[1]
	}
	if metrics["Parent-Child Cycle Count"] != "1" {
		t.Errorf("Parent-Child Cycle Count = %q, want 1", metrics["Parent-Child Cycle Count"])
	}
	if metrics["Total Self-Loops"] != "1" {
		t.Errorf("Total Self-Loops = %q, want 1", metrics["Total Self-Loops"])
	}
	if metrics["Total Broader-Than Relationships"] != "1" {
		t.Errorf("Total Broader-Than Relationships = %q, want 1", metrics["Total Broader-Than Relationships"])
	}
}

func TestRenderCSVs_NoCycleFileForCleanGraph(t *testing.T) {
	rep := sampleReport()
	rep.Graphs[0].Cycles = []model.Cycle{}
	rep.Graphs[0].CycleCount = 0

	written, err := NewRenderer(t.TempDir()).RenderCSVs(rep)
	if err != nil {
		t.Fatalf("RenderCSVs() error = %v", err)
	}
	for _, p := range written {
		if strings.Contains(filepath.Base(p), "cycles") {
			t.Errorf("unexpected cycle file for clean graphs: %s", p)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := NewRenderer(t.TempDir()).RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report JSON does not round-trip: %v", err)
	}
	if decoded.Source != "MRREL.RRF" {
		t.Errorf("Source = %q, want MRREL.RRF", decoded.Source)
	}
	if len(decoded.Graphs) != 2 {
		t.Errorf("Graphs = %d, want 2", len(decoded.Graphs))
	}
	if !reflect.DeepEqual(decoded.Graphs[0].Cycles, sampleReport().Graphs[0].Cycles) {
		t.Errorf("cycles did not survive JSON round-trip")
	}
}
