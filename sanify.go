package beartype

import "reflect"

// Child-schema sanification: the normalization applied to every node as it
// is visited. Type variables are substituted away, and under the numeric
// tower the wider numeric leaves expand into implicit unions. Expansion is
// what produces nested unions inside parent unions, which the union
// compiler's flattening pass then eliminates one level at a time.

var (
	anyInterfaceType = reflect.TypeOf((*any)(nil)).Elem()
	intType          = reflect.TypeOf(int(0))
	float64Type      = reflect.TypeOf(float64(0))
	complex128Type   = reflect.TypeOf(complex128(0))
)

// towerFloat64 and towerComplex128 are the implicit unions the numeric
// tower widens float64 and complex128 leaves into.
var (
	towerFloat64 = &Union{Members: []Node{
		&Leaf{Type: float64Type},
		&Leaf{Type: intType},
	}}
	towerComplex128 = &Union{Members: []Node{
		&Leaf{Type: complex128Type},
		&Leaf{Type: float64Type},
		&Leaf{Type: intType},
	}}
)

// sanifyTypeVarDepth bounds substitution chains so a table binding a
// variable to itself surfaces as a schema error instead of spinning.
const sanifyTypeVarDepth = 32

// sanifyChild normalizes a node before compilation or partitioning.
// Sanifying the same node under the same table twice yields the same
// result, which is what makes type-variable compilation idempotent.
func sanifyChild(n Node, conf *Config, tvars map[string]Node, label string) (Node, error) {
	for depth := 0; ; depth++ {
		if depth >= sanifyTypeVarDepth {
			return nil, &SchemaError{Label: label, Node: n, Reason: "type variable substitution does not terminate"}
		}
		tv, ok := n.(*TypeVar)
		if !ok {
			break
		}
		if tvars != nil {
			if sub, ok := tvars[tv.Name]; ok {
				n = sub
				continue
			}
		}
		if tv.Bound != nil {
			n = tv.Bound
			continue
		}
		// Unsubstituted and unbounded: accepts anything.
		return &Any{}, nil
	}

	if leaf, ok := n.(*Leaf); ok && conf.NumericTower() {
		switch leaf.Type {
		case float64Type:
			return towerFloat64, nil
		case complex128Type:
			return towerComplex128, nil
		}
	}
	return n, nil
}

// isIgnorable reports whether a sanified node accepts every value and thus
// compiles to no checking code. A union containing an ignorable alternative
// is itself ignorable; that propagation lives in the union compiler, which
// sees the flattened child list.
func isIgnorable(n Node) bool {
	switch n := n.(type) {
	case *Any:
		return true
	case *Leaf:
		return n.Type == anyInterfaceType
	default:
		return false
	}
}
