package loom

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Sentinel errors. Module construction failures additionally carry typed
// detail; match the class with errors.Is and dig into the detail with
// errors.As.
var (
	// ErrInvalidModule matches every error From returns. The concrete
	// value is a *CycleError or a *MissingDependenciesError.
	ErrInvalidModule = fmt.Errorf("loom: invalid module")

	// ErrFactoryNotFound matches the error Resolve and Get return when
	// the module provides no factory for the requested key. It is the
	// only resolution error GetOptional swallows.
	ErrFactoryNotFound = fmt.Errorf("loom: factory not found")
)

// CycleError reports a dependency cycle found during module assembly.
// Path holds the key labels along the cycle in traversal order with the
// repeated key appearing both first and last, so a self-dependency has a
// path of length two.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "Circular dependency detected: " + strings.Join(e.Path, " -> ")
}

// Is reports ErrInvalidModule as a match so callers can class-check
// assembly failures without knowing the concrete type.
func (e *CycleError) Is(target error) bool {
	return target == ErrInvalidModule
}

// MissingDependency names one factory whose dependencies are not all
// provided by the module, along with the labels of the keys it is
// missing.
type MissingDependency struct {
	Factory string
	Keys    []string
}

// MissingDependenciesError reports every factory left unsatisfiable after
// module assembly, in module order. Reporting all of them at once beats
// fixing one missing key per run.
type MissingDependenciesError struct {
	Missing []MissingDependency
}

func (e *MissingDependenciesError) Error() string {
	blocks := lo.Map(e.Missing, func(m MissingDependency, _ int) string {
		b := strings.Builder{}
		b.WriteString(m.Factory)
		b.WriteString(" will fail because it depends on:")
		for _, k := range m.Keys {
			b.WriteString("\n -> ")
			b.WriteString(k)
		}
		return b.String()
	})
	return strings.Join(blocks, "\n")
}

// Is reports ErrInvalidModule as a match, same as CycleError.
func (e *MissingDependenciesError) Is(target error) bool {
	return target == ErrInvalidModule
}
