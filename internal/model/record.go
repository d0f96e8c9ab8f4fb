package model

import "fmt"

// Record is one parsed MRREL.RRF row, reduced to the fields the checker uses.
// The remaining RRF columns carry provenance and attribute data that does not
// affect structural analysis and is dropped at parse time.
type Record struct {
	CUI1 string // source concept identifier
	REL  string // relationship code (PAR, CHD, RB, RN, ...)
	CUI2 string // target concept identifier
}

// RelationKind identifies which logical graph an edge belongs to after
// normalization.
type RelationKind string

const (
	ParentChild RelationKind = "parent_child" // hierarchy graph, oriented parent -> child
	BroaderThan RelationKind = "broader_than" // broader-than graph, oriented broader -> narrower
)

// Edge is a directed, normalized relationship between two concepts.
// Edges are immutable values; identity is (Source, Target, Kind).
type Edge struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Kind   RelationKind `json:"kind"`
}

// AnalysisType selects which graph analyses to run.
type AnalysisType string

const (
	AnalysisParentChild AnalysisType = "parent-child"
	AnalysisBroaderThan AnalysisType = "broader-than"
	AnalysisBoth        AnalysisType = "both"
)

// ParseAnalysisType validates a user-supplied analysis type string.
func ParseAnalysisType(s string) (AnalysisType, error) {
	switch AnalysisType(s) {
	case AnalysisParentChild, AnalysisBroaderThan, AnalysisBoth:
		return AnalysisType(s), nil
	default:
		return "", fmt.Errorf("unknown analysis type: %q (supported: parent-child, broader-than, both)", s)
	}
}

// Kinds returns the relation kinds covered by this analysis type, in the
// order they are reported.
func (t AnalysisType) Kinds() []RelationKind {
	switch t {
	case AnalysisParentChild:
		return []RelationKind{ParentChild}
	case AnalysisBroaderThan:
		return []RelationKind{BroaderThan}
	default:
		return []RelationKind{ParentChild, BroaderThan}
	}
}
