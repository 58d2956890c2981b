package loom

import (
	"context"

	"github.com/gburgyan/go-timing"
	"golang.org/x/sync/errgroup"
)

// Warm eagerly resolves every singleton factory so later Gets land on
// settled cells instead of paying construction cost on the serving path.
// Factories warm concurrently; Warm returns the first error after every
// resolution has settled. Transient factories are untouched, and warming
// an already-warm module does nothing.
func (m *Module) Warm(ctx context.Context) error {
	if EnableTiming != TimingDisable {
		tCtx, complete := timing.Start(ctx, "warm")
		defer complete()
		ctx = tCtx
	}
	var group errgroup.Group
	for _, f := range m.factories {
		if f.lifetime != LifetimeSingleton {
			continue
		}
		f := f
		group.Go(func() error {
			_, err := m.resolveNode(ctx, f.provides)
			return err
		})
	}
	return group.Wait()
}
