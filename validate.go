package loom

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// validateGraph checks the deduplicated factory set for missing
// dependencies and cycles. Both checks see the whole set, so From either
// returns a fully resolvable module or no module at all.
func validateGraph(factories []*Factory, index map[uuid.UUID]*Factory) error {
	if err := checkMissing(factories, index); err != nil {
		return err
	}
	return checkCycles(factories, index)
}

// checkMissing collects, per factory, every dependency key that no factory
// in the module provides. Selector keys are expanded to their members: the
// selector itself is never provided, its members must be.
func checkMissing(factories []*Factory, index map[uuid.UUID]*Factory) error {
	var missing []MissingDependency
	for _, f := range factories {
		var absent []*keyNode
		for _, dep := range f.dependsOn {
			for _, edge := range expandEdges(dep) {
				if _, ok := index[edge.id]; !ok {
					absent = append(absent, edge)
				}
			}
		}
		if len(absent) == 0 {
			continue
		}
		absent = lo.UniqBy(absent, func(n *keyNode) uuid.UUID { return n.id })
		missing = append(missing, MissingDependency{
			Factory: f.provides.label,
			Keys:    lo.Map(absent, func(n *keyNode, _ int) string { return n.label }),
		})
	}
	if len(missing) > 0 {
		return &MissingDependenciesError{Missing: missing}
	}
	return nil
}

type visitColor int8

const (
	colorUnvisited visitColor = iota
	colorOnPath
	colorVisited
)

// traversal carries the cycle search bookkeeping explicitly rather than
// hiding it in shared mutable state on the module.
type traversal struct {
	index  map[uuid.UUID]*Factory
	colors map[uuid.UUID]visitColor
	path   []*keyNode
}

// checkCycles runs a three-color depth-first search over the provided-key
// graph. Factories are visited in module order and edges in declaration
// order, so the first cycle found, and therefore the error message, is
// deterministic.
func checkCycles(factories []*Factory, index map[uuid.UUID]*Factory) error {
	tr := &traversal{
		index:  index,
		colors: make(map[uuid.UUID]visitColor, len(factories)),
	}
	for _, f := range factories {
		if err := tr.visit(f.provides); err != nil {
			return err
		}
	}
	return nil
}

func (tr *traversal) visit(n *keyNode) error {
	switch tr.colors[n.id] {
	case colorOnPath:
		return cycleError(tr.path, n)
	case colorVisited:
		return nil
	}

	tr.colors[n.id] = colorOnPath
	tr.path = append(tr.path, n)

	// checkMissing ran first, so every edge target has a factory.
	for _, dep := range tr.index[n.id].dependsOn {
		for _, edge := range expandEdges(dep) {
			if err := tr.visit(edge); err != nil {
				return err
			}
		}
	}

	tr.path = tr.path[:len(tr.path)-1]
	tr.colors[n.id] = colorVisited
	return nil
}

// expandEdges turns one declared dependency into its graph edges: a plain
// key is a single edge, a selector key fans out to one edge per member.
func expandEdges(n *keyNode) []*keyNode {
	if n.kind == keySelector {
		return n.members
	}
	return []*keyNode{n}
}

// cycleError trims the discovery path so it starts at the repeated key and
// appends that key again to close the loop: finding A -> B -> C -> B
// reports "B -> C -> B", and a self-dependency reports "B -> B".
func cycleError(path []*keyNode, repeat *keyNode) error {
	start := 0
	for i, n := range path {
		if n.id == repeat.id {
			start = i
			break
		}
	}
	labels := lo.Map(path[start:], func(n *keyNode, _ int) string { return n.label })
	return &CycleError{Path: append(labels, repeat.label)}
}
