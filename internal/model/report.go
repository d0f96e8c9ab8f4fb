package model

import (
	"strings"
	"time"
)

// Report is the complete result of one analysis run. It is built once and
// read-only afterward; the renderer turns it into CSV/JSON artifacts.
type Report struct {
	Source      string       `json:"source"`       // path of the analyzed MRREL file
	Analysis    AnalysisType `json:"analysis"`     // which analyses were requested
	GeneratedAt time.Time    `json:"generated_at"` // when the run finished

	Stats      Stats           `json:"stats"`
	SelfLoops  []SelfLoop      `json:"self_loops"`
	Duplicates []DuplicateEdge `json:"duplicates"`
	Graphs     []GraphReport   `json:"graphs"`

	LLM *LLMSummary `json:"llm,omitempty"` // optional narrative summary (never affects findings)
}

// GraphReport holds the findings for a single relation graph.
type GraphReport struct {
	Kind       RelationKind `json:"kind"`
	NodeCount  int          `json:"node_count"`
	EdgeCount  int          `json:"edge_count"`
	Cycles     []Cycle      `json:"cycles"`
	CycleCount int          `json:"cycle_count"`
}

// SelfLoop records a concept related to itself. Count is the number of raw
// rows that produced the loop; a repeated self-loop additionally surfaces
// as a duplicate.
type SelfLoop struct {
	CUI   string       `json:"cui"`
	Kind  RelationKind `json:"kind"`
	Count int          `json:"count"`
}

// DuplicateEdge records an edge that occurred more than once in the input.
// Multiplicity is counted at (source, target, kind) granularity; the graph
// itself stores the edge only once.
type DuplicateEdge struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Kind   RelationKind `json:"kind"`
	Count  int          `json:"count"`
}

// Cycle is a closed walk of length >= 2, stored in canonical rotation: the
// sequence starts at its lexicographically smallest node. Self-loops are
// reported separately, never as 1-cycles.
type Cycle []string

// String renders the cycle as "A -> B -> C".
func (c Cycle) String() string {
	return strings.Join(c, " -> ")
}

// Stats contains the summary counts exposed in the statistics report.
type Stats struct {
	TotalRecords      int `json:"total_records"`
	SkippedRecords    int `json:"skipped_records"` // malformed rows excluded from classification
	RelationCodes     int `json:"relation_codes"`  // distinct REL values seen in the input
	ParentChildEdges  int `json:"parent_child_edges"`
	BroaderThanEdges  int `json:"broader_than_edges"`
	SelfLoopCount     int `json:"self_loop_count"`
	DuplicateCount    int `json:"duplicate_count"`
	ParentChildCycles int `json:"parent_child_cycles"`
	BroaderThanCycles int `json:"broader_than_cycles"`

	ParseSeconds  float64 `json:"parse_seconds"`
	DetectSeconds float64 `json:"detect_seconds"`
}

// LLMSummary contains an optional model-generated narrative for the report.
// It is produced after detection completes and never feeds back into the
// structural findings.
type LLMSummary struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
