package loom

import (
	"sync"

	"github.com/pkg/errors"
)

// cellState tracks where a singleton cell is in its lifecycle. The states
// make the "one in-flight construction shared by concurrent callers"
// contract explicit instead of burying it in lock choreography.
type cellState int

const (
	cellUninitialized cellState = iota
	cellInFlight
	cellReady
	cellFailed
)

func (s cellState) String() string {
	switch s {
	case cellUninitialized:
		return "uninitialized"
	case cellInFlight:
		return "in-flight"
	case cellReady:
		return "ready"
	case cellFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// flight is the shared handle for one construction attempt. Waiters block
// on done and then read value and err, both written exactly once before
// done is closed. There is deliberately no context select in await: an
// initializer that never settles stalls its dependents rather than letting
// them observe a half-built module.
type flight struct {
	done  chan struct{}
	value any
	err   error
}

func (fl *flight) await() (any, error) {
	<-fl.done
	return fl.value, fl.err
}

// cell is the per-factory singleton slot. One exists per singleton factory
// per module, allocated during assembly so the cell map itself never
// mutates afterward.
//
// State transitions:
//
//	uninitialized -> in-flight      first resolver claims the cell
//	failed        -> in-flight      a later resolver retries
//	in-flight     -> ready|failed   the claiming resolver commits
//	any           -> uninitialized  Dispose resets the cell
//
// A reset while a construction is in flight bumps gen; the stale flight
// still delivers its outcome to its own waiters but no longer commits to
// the cell.
type cell struct {
	mu    sync.Mutex
	state cellState
	gen   uint64
	fl    *flight
	value any
	err   error
}

// resolve drives the cell through its state machine. A ready cell returns
// its value immediately, an in-flight cell is awaited, and otherwise the
// calling goroutine claims the cell, runs construct exactly once and
// shares the outcome with everyone who arrived meanwhile. A failed cell is
// claimed again, so construction errors are retried rather than cached.
//
// The cell is claimed before construct runs, which is what lets callers
// that race the first resolver find the flight instead of starting their
// own construction.
func (c *cell) resolve(construct func() (any, error)) (any, error) {
	c.mu.Lock()
	switch c.state {
	case cellReady:
		v := c.value
		c.mu.Unlock()
		return v, nil
	case cellInFlight:
		fl := c.fl
		c.mu.Unlock()
		return fl.await()
	}

	fl := &flight{done: make(chan struct{})}
	gen := c.gen
	c.state = cellInFlight
	c.fl = fl
	c.mu.Unlock()

	settled := false
	commit := func(v any, err error) {
		fl.value, fl.err = v, err
		c.mu.Lock()
		if c.gen == gen {
			c.fl = nil
			if err != nil {
				c.state = cellFailed
				c.value, c.err = nil, err
			} else {
				c.state = cellReady
				c.value, c.err = v, nil
			}
		}
		c.mu.Unlock()
		close(fl.done)
		settled = true
	}

	// A construct that panics must still settle the flight on the way
	// out: the cell fails, the waiters get an error, and the panic keeps
	// unwinding to the claiming caller. An unsettled flight would leave
	// the cell in-flight forever and block every later resolve.
	defer func() {
		if settled {
			return
		}
		r := recover()
		commit(nil, errors.Errorf("loom: initializer panicked: %v", r))
		if r != nil {
			panic(r)
		}
	}()

	// Construction happens outside the lock so dependency resolution and
	// slow initializers never serialize unrelated cells.
	v, err := construct()
	commit(v, err)
	return v, err
}

// reset returns the cell to uninitialized and invalidates the commit of
// any construction currently in flight.
func (c *cell) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = cellUninitialized
	c.fl = nil
	c.value = nil
	c.err = nil
}

// snapshot reads the current state and last error under the lock, for
// Status reporting.
func (c *cell) snapshot() (cellState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.err
}
