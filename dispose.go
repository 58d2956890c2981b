package loom

import (
	"errors"

	"github.com/google/uuid"
)

// Dispose dispatches the cleanup hooks of the selected factories and
// resets their singleton cells so a later Get reconstructs from scratch.
// With no arguments every factory is selected; otherwise only factories
// whose scope matches one of the given scopes by identity. Factories
// without a hook still get their cells reset.
//
// Hooks run synchronously in module order. Their errors are collected
// with errors.Join and returned together; a failing hook does not stop
// the remaining ones. Dispose does not wait for in-flight resolutions: a
// construction already under way still delivers its outcome to the
// callers waiting on it, but no longer populates the cell.
func (m *Module) Dispose(scopes ...Scope) error {
	var errs []error
	for _, f := range m.factories {
		if !scopeMatch(f, scopes) {
			continue
		}
		if c, ok := m.cells[f.provides.id]; ok {
			c.reset()
		}
		if f.dispose == nil {
			continue
		}
		m.logger.Debug("disposing", "key", f.provides.label)
		if err := f.dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// scopeMatch reports whether the factory falls under one of the given
// scopes by identity. An empty scope list selects everything; a zero
// Scope value selects nothing rather than matching every untagged
// factory.
func scopeMatch(f *Factory, scopes []Scope) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s.id == uuid.Nil {
			continue
		}
		if f.scope.id == s.id {
			return true
		}
	}
	return false
}
