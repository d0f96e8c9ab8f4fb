// Package classify maps raw MRREL relationship records onto the two logical
// graphs the checker analyzes. The set of recognized relationship codes is an
// explicit finite table so it stays auditable.
package classify

import "github.com/umlstools/relcheck/internal/model"

// rule describes how one relationship code maps into a graph. flip reverses
// source and target before insertion so that paired codes normalize to a
// single directional sense.
type rule struct {
	kind model.RelationKind
	flip bool
}

// rules is the complete set of recognized relationship codes. Hierarchy
// edges are stored parent -> child and broader-than edges broader ->
// narrower: PAR and RB rows keep their original direction, CHD and RN rows
// are flipped. The orientation is an internal convention; it only affects
// the literal node order of printed cycles.
var rules = map[string]rule{
	"PAR": {kind: model.ParentChild},
	"CHD": {kind: model.ParentChild, flip: true},
	"RB":  {kind: model.BroaderThan},
	"RN":  {kind: model.BroaderThan, flip: true},
}

// Classify maps one relationship record to at most one normalized edge.
// Records with unrecognized codes return ok=false; that is not an error,
// the caller decides whether to count them.
func Classify(rec model.Record) (model.Edge, bool) {
	r, ok := rules[rec.REL]
	if !ok {
		return model.Edge{}, false
	}

	edge := model.Edge{Source: rec.CUI1, Target: rec.CUI2, Kind: r.kind}
	if r.flip {
		edge.Source, edge.Target = edge.Target, edge.Source
	}
	return edge, true
}

// Recognized reports whether a relationship code maps into a graph.
func Recognized(code string) bool {
	_, ok := rules[code]
	return ok
}
