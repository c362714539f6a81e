package beartype

import (
	"reflect"
	"sync"
)

// compileUnion emits the short-circuit OR-expression for a union node.
//
// Children are first flattened one level (configuration-driven widening
// turns leaves into nested unions; flattening expands them into the parent
// list, preserving discovery order). Any ignorable child makes the whole
// union ignorable. The remainder partitions into a shallow bucket, checked
// once by a single multi-type membership test, and composite children,
// each compiled as a nested sub-expression against the same materialized
// value binding.
func (c *compiler) compileUnion(n *Union, f *frame) error {
	childs, err := flattenUnionArgs(n, c.conf, f.tvars, c.label)
	if err != nil {
		return err
	}
	if len(childs) == 0 {
		// An unsubscripted union factory is pre-filtered as ignorable
		// upstream; a childless union reaching this compiler is an
		// internal invariant violation.
		return &SchemaError{Label: c.label, Node: n, Reason: "union with no children"}
	}

	for _, ch := range childs {
		if isIgnorable(ch) {
			f.slot.sub = trueExpr{}
			return nil
		}
	}

	seen := acquireTypeSet()
	defer releaseTypeSet(seen)
	composites := acquireNodeSlice()
	defer releaseNodeSlice(composites)

	// shallow escapes into the compiled artifact, so it is allocated
	// fresh rather than borrowed.
	shallow := make([]reflect.Type, 0, len(childs))
	for _, ch := range childs {
		if leaf, ok := ch.(*Leaf); ok {
			if leaf.Type == nil {
				return &SchemaError{Label: c.label, Node: leaf, Reason: "leaf with nil type"}
			}
			if _, dup := seen[leaf.Type]; !dup {
				seen[leaf.Type] = struct{}{}
				shallow = append(shallow, leaf.Type)
			}
			continue
		}
		*composites = append(*composites, ch)
	}

	// The value under test is materialized into a numbered local binding
	// by the first emitted test and referenced by name thereafter, so no
	// alternative recomputes the source expression.
	varName := pithVarName(f.pithIdx)
	assignForm := f.pithExpr
	if f.pithExpr != varName {
		assignForm = "(" + varName + " := " + f.pithExpr + ")"
	}

	subs := make([]expr, 0, 1+len(*composites))
	if len(shallow) > 0 {
		pith := f.pithExpr
		if len(*composites) > 0 {
			pith = assignForm
		}
		subs = append(subs, &typesExpr{pith: pith, types: shallow})
	}
	for i, comp := range *composites {
		pith := varName
		if len(shallow) == 0 && i == 0 {
			pith = assignForm
		}
		child := &slotExpr{}
		c.enqueue(comp, child, f.indent+1, pith, f.pithIdx, f.tvars)
		subs = append(subs, child)
	}

	if len(subs) == 1 {
		f.slot.sub = subs[0]
		return nil
	}
	f.slot.sub = &orExpr{subs: subs}
	return nil
}

// flattenKey memoizes flattening per (schema node, configuration) pair;
// flattening is a pure function of both.
type flattenKey struct {
	node *Union
	conf *Config
}

type flattenCacheState struct {
	mu      sync.RWMutex
	entries map[flattenKey][]Node
}

var flattenCache = &flattenCacheState{entries: make(map[flattenKey][]Node, 64)}

func (fc *flattenCacheState) get(k flattenKey) ([]Node, bool) {
	fc.mu.RLock()
	v, ok := fc.entries[k]
	fc.mu.RUnlock()
	return v, ok
}

func (fc *flattenCacheState) set(k flattenKey, v []Node) {
	fc.mu.Lock()
	fc.entries[k] = v
	fc.mu.Unlock()
}

func (fc *flattenCacheState) reset() {
	fc.mu.Lock()
	fc.entries = make(map[flattenKey][]Node, 64)
	fc.mu.Unlock()
}

// flattenUnionArgs returns the sanified children of a union with nested
// child unions expanded directly into the returned list.
//
// Flattening is one level deep: a union surviving several independent
// expansion passes can still carry a nested union, which is tolerated
// rather than recursively flattened. Results are memoized only when no
// substitution table is in play, since the table changes what sanification
// produces.
func flattenUnionArgs(n *Union, conf *Config, tvars map[string]Node, label string) ([]Node, error) {
	memoizable := len(tvars) == 0
	key := flattenKey{node: n, conf: conf}
	if memoizable {
		if v, ok := flattenCache.get(key); ok {
			return v, nil
		}
	}

	scratch := acquireNodeSlice()
	defer releaseNodeSlice(scratch)

	for _, ch := range n.Members {
		s, err := sanifyChild(ch, conf, tvars, label)
		if err != nil {
			return nil, err
		}
		if cu, ok := s.(*Union); ok {
			*scratch = append(*scratch, cu.Members...)
			continue
		}
		*scratch = append(*scratch, s)
	}

	out := make([]Node, len(*scratch))
	copy(out, *scratch)
	if memoizable {
		flattenCache.set(key, out)
	}
	return out, nil
}
