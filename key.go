package loom

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// keyKind discriminates plain keys from selector keys so the validator and
// resolver can switch on an explicit tag instead of sniffing members.
type keyKind int

const (
	keyPlain keyKind = iota
	keySelector
)

// keyNode is the type-erased identity record behind Key and SelectorKey.
// Identity is the uuid token; the label is diagnostic only and never takes
// part in equality.
type keyNode struct {
	id    uuid.UUID
	label string
	kind  keyKind

	// members holds the member nodes of a selector key in declaration
	// order. Always empty for plain keys.
	members []*keyNode

	// bindSelector builds the typed Selector for this node against a
	// module. Populated by NewSelectorKey while the member type is still
	// known, so the untyped resolver can hand a factory its selector
	// without reflection.
	bindSelector func(m *Module) any
}

// AnyKey is the type-erased view of Key and SelectorKey. It lets DependsOn
// accept an ordered list of keys with different produced types. Only keys
// created by NewKey and NewSelectorKey implement it.
type AnyKey interface {
	node() *keyNode

	// String returns the diagnostic label of the key.
	String() string
}

// Key addresses the factory producing a value of type T. Keys are compared
// by an internal unique token, never by label or type: two keys created
// with the same label are different keys, while any copy of a key is equal
// to the original. Allocate them once as package-level variables and share
// them between the providing and consuming sides.
type Key[T any] struct {
	n *keyNode
}

// NewKey allocates a fresh key with a globally unique identity. The label
// only shows up in error messages and Status output.
func NewKey[T any](label string) Key[T] {
	return Key[T]{n: &keyNode{
		id:    uuid.New(),
		label: label,
		kind:  keyPlain,
	}}
}

func (k Key[T]) node() *keyNode { return k.n }

// String returns the diagnostic label of the key.
func (k Key[T]) String() string { return k.n.label }

// SelectorKey is a composite key over an ordered set of member keys that
// share a produced type. It can only appear on the dependency side of a
// factory; resolving it yields a *Selector bound to the module rather than
// eagerly resolving the members, so a consumer can pick members on demand.
type SelectorKey[T any] struct {
	n *keyNode
}

// NewSelectorKey allocates a composite key over the given member keys.
// Member order is preserved and is the order Selector.All resolves in. It
// panics if any member is a zero Key.
func NewSelectorKey[T any](label string, members ...Key[T]) SelectorKey[T] {
	n := &keyNode{
		id:    uuid.New(),
		label: label,
		kind:  keySelector,
		members: lo.Map(members, func(m Key[T], _ int) *keyNode {
			if m.n == nil {
				panic("loom: zero Key passed to NewSelectorKey")
			}
			return m.n
		}),
	}
	n.bindSelector = func(m *Module) any {
		return &Selector[T]{module: m, key: SelectorKey[T]{n: n}}
	}
	return SelectorKey[T]{n: n}
}

func (k SelectorKey[T]) node() *keyNode { return k.n }

// String returns the diagnostic label of the key.
func (k SelectorKey[T]) String() string { return k.n.label }

// Scope is an opaque identity tag grouping factories for selective
// disposal. Like keys, scopes are compared by an internal token, so two
// scopes with the same label stay distinct.
type Scope struct {
	id    uuid.UUID
	label string
}

// NewScope allocates a fresh scope tag.
func NewScope(label string) Scope {
	return Scope{id: uuid.New(), label: label}
}

// String returns the diagnostic label of the scope.
func (s Scope) String() string { return s.label }
