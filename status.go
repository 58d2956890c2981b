package loom

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Status is a diagnostic tool that returns a string representing the
// current state of the module: one line per factory with its provided
// key, lifetime, scope tag, declared dependencies and, for singletons,
// the state of the backing cell. Lines are sorted so the output is stable
// regardless of assembly order.
//
// The output looks like:
//
//	cache - singleton - scope: request - deps: (config) - ready
//	config - singleton - deps: () - ready
//	handler - transient - deps: (cache, backends[redis memcached])
func (m *Module) Status() string {
	lines := lo.Map(m.factories, func(f *Factory, _ int) string {
		return m.statusLine(f)
	})
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func (m *Module) statusLine(f *Factory) string {
	b := strings.Builder{}
	b.WriteString(f.provides.label)
	b.WriteString(" - ")
	b.WriteString(f.lifetime.String())
	if f.scope.id != uuid.Nil {
		b.WriteString(" - scope: ")
		b.WriteString(f.scope.label)
	}
	b.WriteString(" - deps: ")
	b.WriteString(formatDeps(f.dependsOn))
	if c, ok := m.cells[f.provides.id]; ok {
		state, err := c.snapshot()
		b.WriteString(" - ")
		b.WriteString(state.String())
		if state == cellFailed && err != nil {
			b.WriteString(": ")
			b.WriteString(err.Error())
		}
	}
	return b.String()
}

// formatDeps renders a dependency list for Status output. Selector keys
// show their members so the expanded graph edges stay visible.
func formatDeps(deps []*keyNode) string {
	parts := lo.Map(deps, func(n *keyNode, _ int) string {
		if n.kind != keySelector {
			return n.label
		}
		members := lo.Map(n.members, func(mn *keyNode, _ int) string { return mn.label })
		return n.label + "[" + strings.Join(members, " ") + "]"
	})
	return "(" + strings.Join(parts, ", ") + ")"
}
