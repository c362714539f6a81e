package beartype

import "reflect"

// compileGeneric emits the conjunction for a generic node: a membership
// test against the unparametrized origin, then structural checks against
// representative elements (container origins) or against the value itself
// (class-like origins), under the configured checking strategy.
func (c *compiler) compileGeneric(n *Generic, f *frame) error {
	if n.Origin == nil {
		return &SchemaError{Label: c.label, Node: n, Reason: "generic with nil origin"}
	}

	shape := n.Shape
	tvars := f.tvars
	if len(n.TypeParams) > 0 {
		if len(n.Args) != len(n.TypeParams) {
			return &SchemaError{Label: c.label, Node: n, Reason: "type parameter count does not match argument count"}
		}
		if shape == nil {
			return &SchemaError{Label: c.label, Node: n, Reason: "parametrized generic without shape"}
		}
		// Child frames inherit a table extended with this node's bindings.
		tv := make(map[string]Node, len(f.tvars)+len(n.TypeParams))
		for k, v := range f.tvars {
			tv[k] = v
		}
		for i, name := range n.TypeParams {
			tv[name] = n.Args[i]
		}
		tvars = tv
	} else if shape == nil {
		shape = n.Args
	}

	// Sanify structural constraints up front so ignorable ones drop out
	// before any element machinery is emitted.
	sane := make([]Node, len(shape))
	for i, sh := range shape {
		s, err := sanifyChild(sh, c.conf, tvars, c.label)
		if err != nil {
			return err
		}
		sane[i] = s
	}

	varName := pithVarName(f.pithIdx)
	subs := make([]expr, 0, 2)
	subs = append(subs, &originExpr{pith: f.pithExpr, origin: n.Origin})

	switch n.Origin.Kind() {
	case reflect.Slice, reflect.Array:
		if len(sane) > 1 {
			return &SchemaError{Label: c.label, Node: n, Reason: "sequence with more than one element constraint"}
		}
		if len(sane) == 1 && !isIgnorable(sane[0]) {
			elemIdx := c.nextVar()
			elemVar := pithVarName(elemIdx)
			elemSlot := &slotExpr{}
			c.enqueue(sane[0], elemSlot, f.indent+1, elemVar, elemIdx, tvars)
			subs = append(subs, &seqElemExpr{
				srcPith:  varName,
				elemVar:  elemVar,
				elem:     elemSlot,
				strategy: c.conf.Strategy(),
			})
		}

	case reflect.Map:
		var keyNode, valNode Node
		switch len(sane) {
		case 0:
		case 1:
			valNode = sane[0]
		case 2:
			keyNode = sane[0]
			valNode = sane[1]
		default:
			return &SchemaError{Label: c.label, Node: n, Reason: "map with more than two entry constraints"}
		}
		var keySlot, valSlot *slotExpr
		var keyVar, valVar string
		if keyNode != nil && !isIgnorable(keyNode) {
			keyIdx := c.nextVar()
			keyVar = pithVarName(keyIdx)
			keySlot = &slotExpr{}
			c.enqueue(keyNode, keySlot, f.indent+1, keyVar, keyIdx, tvars)
		}
		if valNode != nil && !isIgnorable(valNode) {
			valIdx := c.nextVar()
			valVar = pithVarName(valIdx)
			valSlot = &slotExpr{}
			c.enqueue(valNode, valSlot, f.indent+1, valVar, valIdx, tvars)
		}
		if keyVar == "" {
			keyVar = "_"
		}
		if valVar == "" {
			valVar = "_"
		}
		if keySlot != nil || valSlot != nil {
			subs = append(subs, &mapElemExpr{
				srcPith:  varName,
				keyVar:   keyVar,
				valVar:   valVar,
				key:      keySlot,
				val:      valSlot,
				strategy: c.conf.Strategy(),
			})
		}

	case reflect.Chan:
		if len(sane) > 1 {
			return &SchemaError{Label: c.label, Node: n, Reason: "channel with more than one element constraint"}
		}
		// Receiving from a channel consumes it. Without explicit opt-in
		// there is no non-consuming accessor, so membership is the whole
		// check.
		if len(sane) == 1 && n.Consume && !isIgnorable(sane[0]) {
			elemIdx := c.nextVar()
			elemVar := pithVarName(elemIdx)
			elemSlot := &slotExpr{}
			c.enqueue(sane[0], elemSlot, f.indent+1, elemVar, elemIdx, tvars)
			subs = append(subs, &chanElemExpr{
				srcPith: varName,
				elemVar: elemVar,
				elem:    elemSlot,
			})
		}

	default:
		// Class-like origin: each structural constraint narrows the value
		// itself, not an element of it.
		for _, s := range sane {
			if isIgnorable(s) {
				continue
			}
			sub := &slotExpr{}
			c.enqueue(s, sub, f.indent+1, varName, f.pithIdx, tvars)
			subs = append(subs, sub)
		}
	}

	if len(subs) == 1 {
		f.slot.sub = subs[0]
		return nil
	}
	f.slot.sub = &andExpr{subs: subs}
	return nil
}
