package relgraph

import (
	"reflect"
	"testing"

	"github.com/umlstools/relcheck/internal/model"
)

func edge(source, target string) model.Edge {
	return model.Edge{Source: source, Target: target, Kind: model.ParentChild}
}

func TestBuilder_DuplicatesCollapseInGraph(t *testing.T) {
	b := NewBuilder(model.ParentChild)
	b.Add(edge("P", "Q"))
	b.Add(edge("P", "Q"))
	b.Add(edge("P", "Q"))
	b.Add(edge("P", "R"))

	g := b.Build()
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (duplicates must collapse)", g.EdgeCount())
	}
	if got := g.Neighbors("P"); !reflect.DeepEqual(got, []string{"Q", "R"}) {
		t.Errorf("Neighbors(P) = %v, want [Q R]", got)
	}

	dupes := b.Duplicates()
	want := []model.DuplicateEdge{{Source: "P", Target: "Q", Kind: model.ParentChild, Count: 3}}
	if !reflect.DeepEqual(dupes, want) {
		t.Errorf("Duplicates() = %+v, want %+v", dupes, want)
	}
}

func TestBuilder_SingleOccurrenceIsNotDuplicate(t *testing.T) {
	b := NewBuilder(model.BroaderThan)
	b.Add(model.Edge{Source: "A", Target: "B", Kind: model.BroaderThan})

	if dupes := b.Duplicates(); len(dupes) != 0 {
		t.Errorf("Duplicates() = %+v, want empty", dupes)
	}
}

func TestBuilder_SelfLoopsExcludedFromAdjacency(t *testing.T) {
	b := NewBuilder(model.ParentChild)
	b.Add(edge("X", "X"))
	b.Add(edge("X", "X"))
	b.Add(edge("A", "B"))

	loops := b.SelfLoops()
	want := []model.SelfLoop{{CUI: "X", Kind: model.ParentChild, Count: 2}}
	if !reflect.DeepEqual(loops, want) {
		t.Errorf("SelfLoops() = %+v, want %+v", loops, want)
	}

	g := b.Build()
	if got := g.Neighbors("X"); len(got) != 0 {
		t.Errorf("Neighbors(X) = %v, want empty (self-loop must not enter adjacency)", got)
	}
	// The self-loop edge never entered the graph, so X is not a node.
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	// A repeated self-loop counts under both defect classes.
	wantDupes := []model.DuplicateEdge{{Source: "X", Target: "X", Kind: model.ParentChild, Count: 2}}
	if dupes := b.Duplicates(); !reflect.DeepEqual(dupes, wantDupes) {
		t.Errorf("Duplicates() = %+v, want %+v", dupes, wantDupes)
	}
}

func TestBuilder_NodesCreatedImplicitly(t *testing.T) {
	b := NewBuilder(model.ParentChild)
	b.Add(edge("A", "B"))
	b.Add(edge("B", "C"))

	g := b.Build()
	wantNodes := []string{"A", "B", "C"}
	if !reflect.DeepEqual(g.Nodes(), wantNodes) {
		t.Errorf("Nodes() = %v, want %v", g.Nodes(), wantNodes)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	// C has no outgoing edges but is still a node.
	if got := g.Neighbors("C"); len(got) != 0 {
		t.Errorf("Neighbors(C) = %v, want empty", got)
	}
}

func TestBuilder_InsertionOrderIrrelevant(t *testing.T) {
	b1 := NewBuilder(model.ParentChild)
	b1.Add(edge("A", "B"))
	b1.Add(edge("A", "C"))
	b1.Add(edge("B", "C"))

	b2 := NewBuilder(model.ParentChild)
	b2.Add(edge("B", "C"))
	b2.Add(edge("A", "C"))
	b2.Add(edge("A", "B"))

	g1, g2 := b1.Build(), b2.Build()
	if !reflect.DeepEqual(g1.Nodes(), g2.Nodes()) {
		t.Errorf("node order differs: %v vs %v", g1.Nodes(), g2.Nodes())
	}
	for _, n := range g1.Nodes() {
		if !reflect.DeepEqual(g1.Neighbors(n), g2.Neighbors(n)) {
			t.Errorf("Neighbors(%s) differ: %v vs %v", n, g1.Neighbors(n), g2.Neighbors(n))
		}
	}
}
