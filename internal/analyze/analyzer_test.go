package analyze

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/umlstools/relcheck/internal/model"
)

func writeMRREL(t *testing.T, rows []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MRREL.RRF")
	content := ""
	for _, row := range rows {
		content += row + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	return cfg
}

// row builds a minimal MRREL row with the checker-relevant columns filled.
func row(cui1, rel, cui2 string) string {
	return cui1 + "|A0000001|SCUI|" + rel + "|" + cui2 + "|A0000002|SCUI||R0000001||MSH|MSH|||N||"
}

func TestAnalyzer_HierarchyCycle(t *testing.T) {
	path := writeMRREL(t, []string{
		row("A", "PAR", "B"),
		row("B", "PAR", "C"),
		row("C", "PAR", "A"),
	})

	report, err := New(testConfig()).Run(context.Background(), path, model.AnalysisParentChild)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Graphs) != 1 {
		t.Fatalf("got %d graphs, want 1", len(report.Graphs))
	}
	g := report.Graphs[0]
	if g.Kind != model.ParentChild {
		t.Errorf("graph kind = %s, want parent_child", g.Kind)
	}
	wantCycles := []model.Cycle{{"A", "B", "C"}}
	if !reflect.DeepEqual(g.Cycles, wantCycles) {
		t.Errorf("Cycles = %v, want %v", g.Cycles, wantCycles)
	}
	if len(report.SelfLoops) != 0 || len(report.Duplicates) != 0 {
		t.Errorf("unexpected defects: loops=%v dupes=%v", report.SelfLoops, report.Duplicates)
	}
	if report.Stats.ParentChildCycles != 1 {
		t.Errorf("ParentChildCycles = %d, want 1", report.Stats.ParentChildCycles)
	}
}

func TestAnalyzer_SelfLoopYieldsNoCycle(t *testing.T) {
	path := writeMRREL(t, []string{
		row("X", "PAR", "X"),
	})

	report, err := New(testConfig()).Run(context.Background(), path, model.AnalysisParentChild)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantLoops := []model.SelfLoop{{CUI: "X", Kind: model.ParentChild, Count: 1}}
	if !reflect.DeepEqual(report.SelfLoops, wantLoops) {
		t.Errorf("SelfLoops = %+v, want %+v", report.SelfLoops, wantLoops)
	}
	if got := report.Graphs[0].CycleCount; got != 0 {
		t.Errorf("CycleCount = %d, want 0 (self-loops are not 1-cycles)", got)
	}
}

func TestAnalyzer_DuplicateEdge(t *testing.T) {
	path := writeMRREL(t, []string{
		row("P", "PAR", "Q"),
		row("P", "PAR", "Q"),
	})

	report, err := New(testConfig()).Run(context.Background(), path, model.AnalysisParentChild)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantDupes := []model.DuplicateEdge{{Source: "P", Target: "Q", Kind: model.ParentChild, Count: 2}}
	if !reflect.DeepEqual(report.Duplicates, wantDupes) {
		t.Errorf("Duplicates = %+v, want %+v", report.Duplicates, wantDupes)
	}
	if got := report.Graphs[0].EdgeCount; got != 1 {
		t.Errorf("EdgeCount = %d, want 1 (duplicate rows store one edge)", got)
	}
}

func TestAnalyzer_BothGraphsIndependent(t *testing.T) {
	path := writeMRREL(t, []string{
		// Hierarchy cycle via mixed PAR/CHD rows.
		row("A", "PAR", "B"),
		row("C", "CHD", "B"), // normalizes to B -> C
		row("C", "PAR", "A"),
		// Acyclic broader-than edges.
		row("W", "RB", "N1"),
		row("N2", "RN", "W"), // normalizes to W -> N2
		// Noise the classifier ignores.
		row("A", "RO", "B"),
	})

	report, err := New(testConfig()).Run(context.Background(), path, model.AnalysisBoth)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Graphs) != 2 {
		t.Fatalf("got %d graphs, want 2", len(report.Graphs))
	}

	pc, bt := report.Graphs[0], report.Graphs[1]
	if pc.Kind != model.ParentChild || bt.Kind != model.BroaderThan {
		t.Fatalf("graph order = %s, %s; want parent_child, broader_than", pc.Kind, bt.Kind)
	}

	wantCycles := []model.Cycle{{"A", "B", "C"}}
	if !reflect.DeepEqual(pc.Cycles, wantCycles) {
		t.Errorf("hierarchy cycles = %v, want %v", pc.Cycles, wantCycles)
	}
	if bt.CycleCount != 0 {
		t.Errorf("broader-than CycleCount = %d, want 0", bt.CycleCount)
	}
	if bt.EdgeCount != 2 {
		t.Errorf("broader-than EdgeCount = %d, want 2", bt.EdgeCount)
	}
	if report.Stats.RelationCodes != 5 {
		t.Errorf("RelationCodes = %d, want 5 (PAR, CHD, RB, RN, RO)", report.Stats.RelationCodes)
	}
}

func TestAnalyzer_SelectedKindOnly(t *testing.T) {
	path := writeMRREL(t, []string{
		row("A", "PAR", "B"),
		row("W", "RB", "N1"),
	})

	report, err := New(testConfig()).Run(context.Background(), path, model.AnalysisBroaderThan)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Graphs) != 1 {
		t.Fatalf("got %d graphs, want 1", len(report.Graphs))
	}
	if report.Graphs[0].Kind != model.BroaderThan {
		t.Errorf("graph kind = %s, want broader_than", report.Graphs[0].Kind)
	}
	if report.Stats.ParentChildEdges != 0 {
		t.Errorf("ParentChildEdges = %d, want 0 when not requested", report.Stats.ParentChildEdges)
	}
}

func TestAnalyzer_Idempotent(t *testing.T) {
	path := writeMRREL(t, []string{
		row("A", "PAR", "B"),
		row("B", "PAR", "C"),
		row("C", "PAR", "A"),
		row("X", "RB", "X"),
		row("P", "RN", "Q"),
		row("P", "RN", "Q"),
	})

	a := New(testConfig())
	first, err := a.Run(context.Background(), path, model.AnalysisBoth)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := a.Run(context.Background(), path, model.AnalysisBoth)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(first.SelfLoops, second.SelfLoops) {
		t.Errorf("SelfLoops differ between runs")
	}
	if !reflect.DeepEqual(first.Duplicates, second.Duplicates) {
		t.Errorf("Duplicates differ between runs")
	}
	if !reflect.DeepEqual(first.Graphs, second.Graphs) {
		t.Errorf("Graphs differ between runs")
	}
	if first.Stats.SelfLoopCount != second.Stats.SelfLoopCount ||
		first.Stats.DuplicateCount != second.Stats.DuplicateCount {
		t.Errorf("summary counts differ between runs")
	}
}

func TestAnalyzer_CachedRun(t *testing.T) {
	path := writeMRREL(t, []string{
		row("A", "PAR", "B"),
		row("B", "PAR", "A"),
	})

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = t.TempDir()

	a := New(cfg)
	first, err := a.Run(context.Background(), path, model.AnalysisParentChild)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := a.Run(context.Background(), path, model.AnalysisParentChild)
	if err != nil {
		t.Fatalf("cached Run() error = %v", err)
	}

	if !reflect.DeepEqual(first.Graphs, second.Graphs) {
		t.Errorf("cached report differs: %+v vs %+v", second.Graphs, first.Graphs)
	}
	if !reflect.DeepEqual(first.Stats, second.Stats) {
		t.Errorf("cached stats differ: %+v vs %+v", second.Stats, first.Stats)
	}
}

func TestAnalyzer_MissingFile(t *testing.T) {
	_, err := New(testConfig()).Run(context.Background(), filepath.Join(t.TempDir(), "absent.RRF"), model.AnalysisBoth)
	if err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestAnalyzer_Cancelled(t *testing.T) {
	path := writeMRREL(t, []string{row("A", "PAR", "B")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(testConfig()).Run(ctx, path, model.AnalysisBoth); err == nil {
		t.Error("expected error for cancelled context")
	}
}
