// Package relgraph accumulates normalized edges into a directed graph per
// relation kind, tracking self-loops and duplicate multiplicity along the
// way. A Builder owns all construction state for one run; the Graph it
// produces is sealed and read-only.
package relgraph

import (
	"sort"

	"github.com/umlstools/relcheck/internal/model"
)

type edgeKey struct {
	source string
	target string
}

// Builder collects edges for a single relation kind. Insertion order does
// not affect the resulting Graph; identical edges collapse to one stored
// edge with their multiplicity counted separately.
type Builder struct {
	kind        model.RelationKind
	adjacency   map[string]map[string]bool
	occurrences map[edgeKey]int
	selfLoops   map[string]int
}

// NewBuilder creates a builder for one relation kind.
func NewBuilder(kind model.RelationKind) *Builder {
	return &Builder{
		kind:        kind,
		adjacency:   make(map[string]map[string]bool),
		occurrences: make(map[edgeKey]int),
		selfLoops:   make(map[string]int),
	}
}

// Kind returns the relation kind this builder accumulates.
func (b *Builder) Kind() model.RelationKind {
	return b.kind
}

// Add records one edge occurrence. Self-referential edges are captured as
// self-loops and excluded from the adjacency so they never surface as
// 1-cycles; their occurrences still feed the duplicate counter, so a
// repeated self-loop row is reported under both defect classes. Edges are
// never removed once added.
func (b *Builder) Add(edge model.Edge) {
	b.occurrences[edgeKey{edge.Source, edge.Target}]++

	if edge.Source == edge.Target {
		b.selfLoops[edge.Source]++
		return
	}

	if b.adjacency[edge.Source] == nil {
		b.adjacency[edge.Source] = make(map[string]bool)
	}
	b.adjacency[edge.Source][edge.Target] = true
}

// SelfLoops returns the recorded self-loops sorted by concept identifier.
func (b *Builder) SelfLoops() []model.SelfLoop {
	loops := make([]model.SelfLoop, 0, len(b.selfLoops))
	for cui, count := range b.selfLoops {
		loops = append(loops, model.SelfLoop{CUI: cui, Kind: b.kind, Count: count})
	}
	sort.Slice(loops, func(i, j int) bool { return loops[i].CUI < loops[j].CUI })
	return loops
}

// Duplicates returns every edge that occurred more than once, sorted by
// (source, target).
func (b *Builder) Duplicates() []model.DuplicateEdge {
	var dupes []model.DuplicateEdge
	for key, count := range b.occurrences {
		if count < 2 {
			continue
		}
		dupes = append(dupes, model.DuplicateEdge{
			Source: key.source,
			Target: key.target,
			Kind:   b.kind,
			Count:  count,
		})
	}
	sort.Slice(dupes, func(i, j int) bool {
		if dupes[i].Source != dupes[j].Source {
			return dupes[i].Source < dupes[j].Source
		}
		return dupes[i].Target < dupes[j].Target
	})
	return dupes
}

// Build seals the accumulated edges into an immutable Graph. Node and
// neighbor lists are sorted once here so traversal order downstream is
// deterministic.
func (b *Builder) Build() *Graph {
	nodeSet := make(map[string]bool)
	adjacency := make(map[string][]string, len(b.adjacency))
	edgeCount := 0

	for source, targets := range b.adjacency {
		nodeSet[source] = true
		neighbors := make([]string, 0, len(targets))
		for target := range targets {
			nodeSet[target] = true
			neighbors = append(neighbors, target)
		}
		sort.Strings(neighbors)
		adjacency[source] = neighbors
		edgeCount += len(neighbors)
	}

	nodes := make([]string, 0, len(nodeSet))
	for node := range nodeSet {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	return &Graph{
		kind:      b.kind,
		nodes:     nodes,
		adjacency: adjacency,
		edgeCount: edgeCount,
	}
}

// Graph is a sealed directed graph for one relation kind. All accessors
// return deterministic, sorted views; the graph is safe for concurrent
// readers.
type Graph struct {
	kind      model.RelationKind
	nodes     []string
	adjacency map[string][]string
	edgeCount int
}

// Kind returns the relation kind of the graph.
func (g *Graph) Kind() model.RelationKind {
	return g.kind
}

// NodeCount returns the number of distinct concepts referenced by stored
// edges.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct stored edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Nodes returns all nodes in sorted order. The returned slice is shared;
// callers must not modify it.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// Neighbors returns the outgoing targets of node in sorted order. The
// returned slice is shared; callers must not modify it.
func (g *Graph) Neighbors(node string) []string {
	return g.adjacency[node]
}
