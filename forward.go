package beartype

// compileForwardRef emits a deferred-resolution check. The reference stays
// symbolic in the compiled body; first use resolves the name against its
// defining scope, compiles whatever schema it names through the ordinary
// cache-backed path, and pins the outcome. An unresolvable name is an
// authoring defect surfaced as a ResolutionError, never as a validation
// failure.
func (c *compiler) compileForwardRef(n *ForwardRef, f *frame) error {
	if n.Name == "" {
		return &SchemaError{Label: c.label, Node: n, Reason: "forward reference with empty name"}
	}

	// Names not resolvable right now are reported on the assembled
	// validator so the caller can register resolution hooks before use.
	if !resolvableNow(n) {
		c.unresolved = append(c.unresolved, n.Name)
	}

	f.slot.sub = &deferredExpr{
		pith:  f.pithExpr,
		ref:   n,
		conf:  c.conf,
		label: c.label,
	}
	return nil
}

func resolvableNow(n *ForwardRef) bool {
	if n.Scope == nil {
		return false
	}
	_, ok := n.Scope.Lookup(n.Name)
	return ok
}
