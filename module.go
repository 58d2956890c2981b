package loom

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Entry is anything From accepts: a *Factory, a previously assembled
// *Module whose factories are flattened in, or a ModuleOption.
type Entry interface {
	moduleEntry()
}

func (*Factory) moduleEntry()     {}
func (*Module) moduleEntry()      {}
func (ModuleOption) moduleEntry() {}

// ModuleOption configures the module being assembled. Options travel in
// the same entry list as factories and may appear anywhere in it.
type ModuleOption struct {
	apply func(*Module)
}

// WithLogger sets the logger the module emits Debug-level assembly,
// construction and disposal events to. The default logger discards
// everything.
func WithLogger(logger *slog.Logger) ModuleOption {
	return ModuleOption{apply: func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}}
}

// Module is a validated, immutable collection of factories. It resolves
// keys with Resolve and the typed Get helpers, eagerly constructs
// singletons with Warm, and dispatches cleanup hooks with Dispose. A
// module never changes after From returns it; all mutable singleton state
// lives in per-factory cells created during assembly, so a module is safe
// for any amount of concurrent use.
type Module struct {
	factories []*Factory
	index     map[uuid.UUID]*Factory
	cells     map[uuid.UUID]*cell
	logger    *slog.Logger
}

// From assembles a module out of factories and other modules. Module
// entries are flattened into their factory sequences in place, so entry
// order is also factory order. When several factories provide the same
// key, the last one wins and the earlier ones are dropped entirely;
// layering a base module with test or environment overrides is the
// intended use:
//
//	m, err := loom.From(baseModule, loom.Singleton(DBKey, fakeDB))
//
// The flattened graph is validated before the module is returned. A
// dependency cycle or a dependency no factory provides fails assembly
// with an error matching ErrInvalidModule, and no module is produced.
//
// From panics on nil entries; everything else reports through the error.
func From(entries ...Entry) (*Module, error) {
	m := &Module{
		index:  make(map[uuid.UUID]*Factory),
		cells:  make(map[uuid.UUID]*cell),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	var flat []*Factory
	for _, entry := range entries {
		switch e := entry.(type) {
		case *Factory:
			if e == nil {
				panic("loom: nil *Factory entry")
			}
			flat = append(flat, e)
		case *Module:
			if e == nil {
				panic("loom: nil *Module entry")
			}
			flat = append(flat, e.factories...)
		case ModuleOption:
			if e.apply == nil {
				panic("loom: zero ModuleOption entry")
			}
			e.apply(m)
		case nil:
			panic("loom: nil entry")
		}
	}

	// Last-wins dedup by provided-key identity. The surviving factory
	// keeps the position of its last occurrence, so an override also
	// moves the key to the override's place in module order.
	lastIdx := make(map[uuid.UUID]int, len(flat))
	for i, f := range flat {
		lastIdx[f.provides.id] = i
	}
	m.factories = lo.Filter(flat, func(f *Factory, i int) bool {
		return lastIdx[f.provides.id] == i
	})

	for _, f := range m.factories {
		m.index[f.provides.id] = f
	}

	if err := validateGraph(m.factories, m.index); err != nil {
		return nil, err
	}

	for _, f := range m.factories {
		if f.lifetime == LifetimeSingleton {
			m.cells[f.provides.id] = &cell{}
		}
	}

	m.logger.Debug("module assembled", "factories", len(m.factories))
	return m, nil
}
