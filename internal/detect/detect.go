// Package detect finds every directed cycle reachable by depth-first
// traversal of a sealed relation graph. Detected cycles are the detector's
// normal output, not an error condition.
package detect

import (
	"strings"

	"github.com/umlstools/relcheck/internal/model"
	"github.com/umlstools/relcheck/internal/relgraph"
)

// frame is one node on the explicit DFS stack together with the index of
// the next neighbor to explore.
type frame struct {
	node string
	next int
}

// Cycles returns the distinct cycles of g, each in canonical rotation.
//
// The traversal is an iterative DFS with an explicit frame stack, so
// arbitrarily deep transitive chains cannot overflow the goroutine stack.
// Roots and neighbors are walked in the graph's sorted order, which makes
// the result reproducible for identical graph content. A cycle is recorded
// when traversal reaches a node already on the recursion path; the cycle is
// the path suffix starting at that node. Two walks that are rotations of
// each other are the same cycle and are reported once.
func Cycles(g *relgraph.Graph) []model.Cycle {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	seen := make(map[string]bool)

	var cycles []model.Cycle
	var path []string

	for _, root := range g.Nodes() {
		if visited[root] {
			continue
		}

		visited[root] = true
		onPath[root] = true
		path = append(path, root)
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := g.Neighbors(top.node)

			if top.next < len(neighbors) {
				next := neighbors[top.next]
				top.next++

				if onPath[next] {
					cycle := canonicalize(pathSuffix(path, next))
					key := strings.Join(cycle, "\x1f")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
					continue
				}
				if visited[next] {
					continue
				}

				visited[next] = true
				onPath[next] = true
				path = append(path, next)
				stack = append(stack, frame{node: next})
				continue
			}

			onPath[top.node] = false
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}

	return cycles
}

// pathSuffix returns a copy of path from the first occurrence of start.
// Nodes on the recursion path are unique, so the first match is the only
// one.
func pathSuffix(path []string, start string) []string {
	for i, node := range path {
		if node == start {
			return append([]string(nil), path[i:]...)
		}
	}
	// start is always on the path when this is called; reaching here would
	// mean the traversal bookkeeping is broken.
	panic("detect: back edge target not on recursion path")
}

// canonicalize rotates a closed walk so it starts at its lexicographically
// smallest node.
func canonicalize(nodes []string) model.Cycle {
	min := 0
	for i, node := range nodes {
		if node < nodes[min] {
			min = i
		}
	}

	cycle := make(model.Cycle, 0, len(nodes))
	cycle = append(cycle, nodes[min:]...)
	cycle = append(cycle, nodes[:min]...)
	return cycle
}
