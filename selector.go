package loom

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Selector is a resolution-time handle bound to a module and a selector
// key. Binding one performs no resolution at all: a consumer holding a
// selector fetches exactly the members it wants, when it wants them.
// Factories receive a *Selector for every selector key they depend on,
// and NewSelector binds one directly without going through a factory.
type Selector[T any] struct {
	module *Module
	key    SelectorKey[T]
}

// NewSelector binds a selector handle to a module. The key does not need
// to appear anywhere in the module's graph, but members the module does
// not provide will fail to resolve with ErrFactoryNotFound.
func NewSelector[T any](m *Module, key SelectorKey[T]) *Selector[T] {
	if m == nil {
		panic("loom: NewSelector called with a nil module")
	}
	if key.n == nil {
		panic("loom: NewSelector called with a zero key")
	}
	return &Selector[T]{module: m, key: key}
}

// Get resolves one member exactly as resolving it against the module
// directly would: the same lifetime and sharing rules apply. The member
// does not have to appear in the selector's member list.
func (s *Selector[T]) Get(ctx context.Context, member Key[T]) (T, error) {
	return Get(ctx, s.module, member)
}

// Members returns the member keys in declaration order.
func (s *Selector[T]) Members() []Key[T] {
	return lo.Map(s.key.n.members, func(n *keyNode, _ int) Key[T] {
		return Key[T]{n: n}
	})
}

// All resolves every member concurrently and returns the values in member
// order. The first error is reported after all resolutions have settled.
func (s *Selector[T]) All(ctx context.Context) ([]T, error) {
	members := s.key.n.members
	out := make([]T, len(members))
	var group errgroup.Group
	for i, n := range members {
		i, n := i, n
		group.Go(func() error {
			v, err := Get(ctx, s.module, Key[T]{n: n})
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
