package loom

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Lifetime controls how many instances of a factory's value a module
// creates.
type Lifetime int

const (
	// LifetimeTransient runs the initializer on every resolution. Nothing
	// is shared: a transient key requested from two branches of the same
	// resolution is constructed twice.
	LifetimeTransient Lifetime = iota

	// LifetimeSingleton runs the initializer at most once per module and
	// shares the outcome with every caller, including callers that arrive
	// while the first construction is still in flight.
	LifetimeSingleton
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case LifetimeTransient:
		return "transient"
	case LifetimeSingleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Deps carries the resolved dependency values of a factory, positionally
// matching its DependsOn declaration. A selector dependency resolves to a
// *Selector of the member type instead of the member values.
type Deps []any

// At returns the dependency at position i as a T. It panics if the value
// at that position has a different type, which means the DependsOn order
// and the initializer disagree about the factory's inputs.
func At[T any](deps Deps, i int) T {
	v, ok := deps[i].(T)
	if !ok {
		panic(fmt.Sprintf("loom: dependency %d is %T, not %T", i, deps[i], v))
	}
	return v
}

// InitFunc constructs the value a factory provides. The deps slice holds
// the resolved dependency values in DependsOn order; use At to pull them
// out typed. Returned errors reach the Get caller unchanged.
type InitFunc[T any] func(ctx context.Context, deps Deps) (T, error)

// Factory binds a provided key to an initializer, an ordered list of
// dependency keys, a lifetime, an optional scope tag and an optional
// disposer hook. Factories are created with Transient and Singleton and
// assembled into a Module with From; a single factory may be assembled
// into any number of modules, each of which constructs its own instances.
type Factory struct {
	provides   *keyNode
	dependsOn  []*keyNode
	lifetime   Lifetime
	scope      Scope
	initialize func(ctx context.Context, deps Deps) (any, error)
	dispose    func() error
}

// FactoryOption configures a factory during construction.
type FactoryOption func(*Factory)

// DependsOn declares the factory's dependencies in the order their
// resolved values are passed to the initializer. Selector keys may appear
// here and resolve to a bound *Selector instead of eager member values.
// It panics on a zero key.
func DependsOn(keys ...AnyKey) FactoryOption {
	return func(f *Factory) {
		for _, k := range keys {
			if k == nil || k.node() == nil {
				panic("loom: zero key in DependsOn")
			}
			f.dependsOn = append(f.dependsOn, k.node())
		}
	}
}

// InScope tags the factory with a scope so Dispose can target it
// selectively. It panics on a zero Scope, which would otherwise silently
// group the factory with every untagged one.
func InScope(scope Scope) FactoryOption {
	return func(f *Factory) {
		if scope.id == uuid.Nil {
			panic("loom: zero Scope in InScope")
		}
		f.scope = scope
	}
}

// OnDispose registers a cleanup hook invoked by Module.Dispose. The hook
// takes no arguments; capture whatever the factory needs to release when
// declaring it.
func OnDispose(fn func() error) FactoryOption {
	return func(f *Factory) {
		f.dispose = fn
	}
}

// Transient returns a factory whose initializer runs on every resolution
// of the provided key.
func Transient[T any](provides Key[T], initialize InitFunc[T], opts ...FactoryOption) *Factory {
	return newFactory(provides, initialize, LifetimeTransient, opts)
}

// Singleton returns a factory whose initializer runs at most once per
// module, with the outcome shared by every caller.
func Singleton[T any](provides Key[T], initialize InitFunc[T], opts ...FactoryOption) *Factory {
	return newFactory(provides, initialize, LifetimeSingleton, opts)
}

func newFactory[T any](provides Key[T], initialize InitFunc[T], lifetime Lifetime, opts []FactoryOption) *Factory {
	if provides.n == nil {
		panic("loom: factory provides a zero key")
	}
	if initialize == nil {
		panic("loom: factory has no initializer")
	}
	f := &Factory{
		provides: provides.n,
		lifetime: lifetime,
		initialize: func(ctx context.Context, deps Deps) (any, error) {
			v, err := initialize(ctx, deps)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}
