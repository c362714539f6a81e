package beartype

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Kind discriminates the closed set of schema node variants. The compiler
// dispatches on Kind with an exhaustive switch; an unknown kind reaching the
// compiler is a malformed-schema error, never silently skipped.
type Kind uint8

const (
	// KindAny accepts every value.
	KindAny Kind = iota
	// KindLeaf requires the value to be an instance of one concrete type.
	KindLeaf
	// KindUnion requires the value to satisfy at least one alternative.
	KindUnion
	// KindGeneric requires origin-type membership plus structural checks.
	KindGeneric
	// KindForwardRef is an unresolved symbolic reference, resolved lazily.
	KindForwardRef
	// KindTypeVar is a placeholder resolved via the enclosing frame's
	// substitution table.
	KindTypeVar
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindLeaf:
		return "leaf"
	case KindUnion:
		return "union"
	case KindGeneric:
		return "generic"
	case KindForwardRef:
		return "forwardref"
	case KindTypeVar:
		return "typevar"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Node is one node of a schema tree. Nodes are externally supplied, treated
// as immutable by the compiler, and safe to share between compile requests.
//
// The set of implementations is closed: Any, Leaf, Union, Generic,
// ForwardRef and TypeVar.
type Node interface {
	Kind() Kind
	String() string

	// node seals the interface to this package's variants.
	node()
}

// Any accepts every value. A union containing an Any alternative is itself
// ignorable and compiles to no checking code at all.
type Any struct{}

func (*Any) Kind() Kind     { return KindAny }
func (*Any) String() string { return "any" }
func (*Any) node()          {}

// Leaf requires the value to be an instance of Type. For interface types,
// membership means the value's dynamic type implements the interface.
type Leaf struct {
	Type reflect.Type
}

// LeafOf returns a Leaf node for the given concrete or interface type.
func LeafOf(t reflect.Type) *Leaf { return &Leaf{Type: t} }

// TypeOf returns a Leaf node for the Go type T.
func TypeOf[T any]() *Leaf {
	return &Leaf{Type: reflect.TypeOf((*T)(nil)).Elem()}
}

func (n *Leaf) Kind() Kind { return KindLeaf }

func (n *Leaf) String() string {
	if n.Type == nil {
		return "leaf(<nil>)"
	}
	return n.Type.String()
}

func (*Leaf) node() {}

// Union requires the value to satisfy at least one member. Members are kept
// in discovery order so generated validators are reproducible, though union
// semantics are order-independent.
type Union struct {
	Members []Node
}

// UnionOf returns a Union node over the given alternatives.
func UnionOf(members ...Node) *Union { return &Union{Members: members} }

func (n *Union) Kind() Kind { return KindUnion }

func (n *Union) String() string {
	if len(n.Members) == 0 {
		return "union()"
	}
	parts := make([]string, len(n.Members))
	for i, m := range n.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (*Union) node() {}

// Generic requires the value to be an instance of the unparametrized Origin
// type and, when structural constraints are present, to satisfy them on one
// or more representative elements.
//
// For slice, array, map and channel origins the constraints describe element
// shape: one node for sequences, a value node or a key/value pair for maps.
// For any other origin each constraint is checked against the value itself,
// forming a conjunction.
//
// TypeParams, when present, name the type parameters of Origin; visiting the
// node binds TypeParams[i] to Args[i] in the substitution table inherited by
// the structural constraints, so constraints may be written in terms of
// TypeVar nodes. When TypeParams is empty the constraints default to Args.
type Generic struct {
	Origin     reflect.Type
	Args       []Node
	TypeParams []string

	// Shape overrides Args as the structural constraints. Required when
	// TypeParams is non-empty, since Args then carry bindings, not shape.
	Shape []Node

	// Consume permits destructive sampling of consuming sources such as
	// channels. Without it such origins are checked by membership only.
	Consume bool
}

// SliceOf returns a Generic node matching []E values whose sampled elements
// satisfy elem.
func SliceOf[E any](elem Node) *Generic {
	return &Generic{Origin: reflect.TypeOf((*[]E)(nil)).Elem(), Args: []Node{elem}}
}

// MapOf returns a Generic node matching map[K]V values whose sampled entries
// satisfy key and val.
func MapOf[K comparable, V any](key, val Node) *Generic {
	return &Generic{Origin: reflect.TypeOf((*map[K]V)(nil)).Elem(), Args: []Node{key, val}}
}

func (n *Generic) Kind() Kind { return KindGeneric }

func (n *Generic) String() string {
	origin := "<nil>"
	if n.Origin != nil {
		origin = n.Origin.String()
	}
	if len(n.Args) == 0 {
		return origin
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return origin + "[" + strings.Join(parts, ", ") + "]"
}

func (*Generic) node() {}

// ForwardRef is an unresolved symbolic reference into a Scope. Resolution is
// deferred until the compiled validator is first exercised, which is what
// lets self-referential schemas compile without recursing forever.
type ForwardRef struct {
	Name  string
	Scope *Scope
}

// Ref returns a ForwardRef node naming a schema in scope.
func Ref(name string, scope *Scope) *ForwardRef {
	return &ForwardRef{Name: name, Scope: scope}
}

func (n *ForwardRef) Kind() Kind     { return KindForwardRef }
func (n *ForwardRef) String() string { return fmt.Sprintf("%q", n.Name) }
func (*ForwardRef) node()            {}

// TypeVar is a placeholder resolved through the substitution table carried
// by the enclosing frame. Absent a substitution it falls back to Bound, or
// to accept-anything when unbound.
type TypeVar struct {
	Name  string
	Bound Node
}

// Var returns an unbounded TypeVar node.
func Var(name string) *TypeVar { return &TypeVar{Name: name} }

func (n *TypeVar) Kind() Kind     { return KindTypeVar }
func (n *TypeVar) String() string { return "~" + n.Name }
func (*TypeVar) node()            {}

// Scope is the defining lexical scope of forward references: a named
// registry of schema nodes. Registration may happen after validators
// referencing the scope have been compiled; resolution is lazy.
type Scope struct {
	mu    sync.RWMutex
	names map[string]Node
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{names: make(map[string]Node, 8)}
}

// Register binds name to a schema node, replacing any previous binding.
func (s *Scope) Register(name string, n Node) {
	s.mu.Lock()
	s.names[name] = n
	s.mu.Unlock()
}

// Lookup returns the node bound to name, if any.
func (s *Scope) Lookup(name string) (Node, bool) {
	s.mu.RLock()
	n, ok := s.names[name]
	s.mu.RUnlock()
	return n, ok
}

// MarshalYAML renders nodes as plain documents for debug logging.

func (*Any) MarshalYAML() (any, error) {
	return struct {
		Kind string `yaml:"kind"`
	}{Kind: "any"}, nil
}

func (n *Leaf) MarshalYAML() (any, error) {
	return struct {
		Kind string `yaml:"kind"`
		Type string `yaml:"type"`
	}{Kind: "leaf", Type: typeName(n.Type)}, nil
}

func (n *Union) MarshalYAML() (any, error) {
	return struct {
		Kind    string `yaml:"kind"`
		Members []Node `yaml:"members"`
	}{Kind: "union", Members: n.Members}, nil
}

func (n *Generic) MarshalYAML() (any, error) {
	return struct {
		Kind       string   `yaml:"kind"`
		Origin     string   `yaml:"origin"`
		Args       []Node   `yaml:"args,omitempty"`
		TypeParams []string `yaml:"typeparams,omitempty"`
		Shape      []Node   `yaml:"shape,omitempty"`
		Consume    bool     `yaml:"consume,omitempty"`
	}{
		Kind:       "generic",
		Origin:     typeName(n.Origin),
		Args:       n.Args,
		TypeParams: n.TypeParams,
		Shape:      n.Shape,
		Consume:    n.Consume,
	}, nil
}

func (n *ForwardRef) MarshalYAML() (any, error) {
	return struct {
		Kind string `yaml:"kind"`
		Name string `yaml:"name"`
	}{Kind: "forwardref", Name: n.Name}, nil
}

func (n *TypeVar) MarshalYAML() (any, error) {
	return struct {
		Kind  string `yaml:"kind"`
		Name  string `yaml:"name"`
		Bound Node   `yaml:"bound,omitempty"`
	}{Kind: "typevar", Name: n.Name, Bound: n.Bound}, nil
}

// typeName returns a stable, package-qualified name for a reflect type.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.String()
}
