package loom

import (
	"context"

	"github.com/gburgyan/go-timing"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Resolve locates the factory providing key and constructs its value,
// resolving the factory's declared dependencies first. Sibling
// dependencies resolve concurrently and the initializer only runs once
// all of them have settled. Singleton factories share one outcome per
// module; transient factories construct fresh on every call. Resolve is
// safe for concurrent use and never cancels resolution work itself, so an
// initializer that honors ctx is the way to bound slow constructions.
//
// Prefer the typed Get and GetOptional helpers; Resolve is the untyped
// engine they wrap, kept exported for callers that only hold an AnyKey.
func (m *Module) Resolve(ctx context.Context, key AnyKey) (any, error) {
	if key == nil || key.node() == nil {
		panic("loom: Resolve called with a zero key")
	}
	return m.resolveNode(ctx, key.node())
}

func (m *Module) resolveNode(ctx context.Context, n *keyNode) (any, error) {
	f, ok := m.index[n.id]
	if !ok {
		return nil, errors.Wrapf(ErrFactoryNotFound, "no factory provides %s", n.label)
	}
	if f.lifetime == LifetimeSingleton {
		return m.cells[n.id].resolve(func() (any, error) {
			return m.construct(ctx, f)
		})
	}
	return m.construct(ctx, f)
}

// construct resolves the factory's dependencies and invokes its
// initializer. Initializer errors pass through unwrapped so callers can
// match their own sentinel errors with errors.Is.
func (m *Module) construct(ctx context.Context, f *Factory) (any, error) {
	deps, err := m.resolveDeps(ctx, f)
	if err != nil {
		return nil, err
	}
	if EnableTiming == TimingInitializers {
		tCtx, complete := timing.Start(ctx, "init:"+f.provides.label)
		defer complete()
		ctx = tCtx
	}
	m.logger.Debug("constructing", "key", f.provides.label, "lifetime", f.lifetime.String())
	return f.initialize(ctx, deps)
}

// resolveDeps fans the factory's dependencies out concurrently and joins
// once every sibling has settled. The first error wins, but no sibling is
// cancelled early: the group deliberately carries no context, so a
// singleton claimed by a failing tree still finishes constructing for the
// callers that share it.
func (m *Module) resolveDeps(ctx context.Context, f *Factory) (Deps, error) {
	switch len(f.dependsOn) {
	case 0:
		return nil, nil
	case 1:
		// Skip the goroutine handoff for the common single-dependency
		// case.
		v, err := m.resolveDep(ctx, f.dependsOn[0])
		if err != nil {
			return nil, err
		}
		return Deps{v}, nil
	}

	deps := make(Deps, len(f.dependsOn))
	var group errgroup.Group
	for i, dep := range f.dependsOn {
		i, dep := i, dep
		group.Go(func() error {
			v, err := m.resolveDep(ctx, dep)
			if err != nil {
				return err
			}
			deps[i] = v
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return deps, nil
}

// resolveDep resolves a single declared dependency. A selector key binds
// a Selector handle without touching its members; a plain key recurses
// into the engine.
func (m *Module) resolveDep(ctx context.Context, n *keyNode) (any, error) {
	if n.kind == keySelector {
		return n.bindSelector(m), nil
	}
	return m.resolveNode(ctx, n)
}

// Get resolves key into a value of its produced type:
//
//	cfg, err := loom.Get(ctx, m, ConfigKey)
//
// It fails with an error matching ErrFactoryNotFound when the module does
// not provide the key, and otherwise with whatever error the initializer
// chain produced, unchanged.
func Get[T any](ctx context.Context, m *Module, key Key[T]) (T, error) {
	var zero T
	v, err := m.Resolve(ctx, key)
	if err != nil {
		return zero, err
	}
	if v == nil {
		// An interface-typed initializer may succeed with a nil value,
		// which the type assertion below would reject.
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("loom: %s resolved to %T, not %T", key.n.label, v, zero)
	}
	return out, nil
}

// GetOptional behaves like Get except that an unprovided key is not an
// error: it reports found as false with a nil error instead. Every other
// failure, in particular an initializer error, propagates unchanged with
// found false, so a missing optional feature and a broken one stay
// distinguishable.
func GetOptional[T any](ctx context.Context, m *Module, key Key[T]) (T, bool, error) {
	var zero T
	v, err := m.Resolve(ctx, key)
	if err != nil {
		if errors.Is(err, ErrFactoryNotFound) {
			return zero, false, nil
		}
		return zero, false, err
	}
	if v == nil {
		// A nil interface success still counts as found.
		return zero, true, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, false, errors.Errorf("loom: %s resolved to %T, not %T", key.n.label, v, zero)
	}
	return out, true, nil
}
