package beartype

import "strings"

// Validator is the compiled artifact for one (schema, configuration) pair:
// a callable conformance check plus the forward-reference names still
// pending resolution and a readable rendering of the compiled logic. Validators are immutable and safe for
// concurrent use.
type Validator struct {
	schema     Node
	conf       *Config
	label      string
	root       *slotExpr
	unresolved []string
	rendered   string
}

// assemble wraps the accumulated expression body into the final artifact.
func (c *compiler) assemble(schema Node, root *slotExpr) *Validator {
	var b strings.Builder
	b.WriteString("return ")
	root.render(&b, 0)

	vd := &Validator{
		schema:     schema,
		conf:       c.conf,
		label:      c.label,
		root:       root,
		unresolved: c.unresolved,
		rendered:   b.String(),
	}

	if c.conf.Debug() {
		c.log.With(map[string]any{
			"schema": yamlString(schema),
			"vars":   c.nvars,
		}).Debugf("compiled validator:\n%s", vd.rendered)
	}
	return vd
}

// Bool reports whether the value conforms to the schema. The error return
// carries resolution failures only, never plain non-conformance.
func (vd *Validator) Bool(value any) (bool, error) {
	return vd.root.eval(value)
}

// Check validates a value against the schema. It returns nil on
// conformance, a *ResolutionError when a forward reference cannot be
// resolved, and otherwise reports the violation per the configured
// severity policy: raised as a *Violation, or logged and swallowed under
// the warn policy.
func (vd *Validator) Check(value any) error {
	ok, err := vd.Bool(value)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	viol := vd.root.explain(value)
	if viol == nil {
		viol = &Violation{Path: pithVarName(0), Schema: vd.schema, Value: value}
	}
	viol.Label = vd.label

	if vd.conf.Policy() == PolicyWarn {
		vd.conf.logger().Warnf("%s", viol.Error())
		return nil
	}
	return viol
}

// Unresolved returns the forward-reference names that were not resolvable
// when the validator was constructed. Callers use it to register
// resolution hooks before first use.
func (vd *Validator) Unresolved() []string {
	out := make([]string, len(vd.unresolved))
	copy(out, vd.unresolved)
	return out
}

// Render returns a human-readable rendering of the compiled boolean body.
func (vd *Validator) Render() string { return vd.rendered }

// Schema returns the schema this validator was compiled from.
func (vd *Validator) Schema() Node { return vd.schema }

// Config returns the configuration this validator was compiled under.
func (vd *Validator) Config() *Config { return vd.conf }
