package beartype

import "reflect"

// CompileOption adjusts one compile request without participating in the
// memoization key.
type CompileOption func(*compileSettings)

type compileSettings struct {
	label string
}

// WithLabel sets the exception-context label prefixed to diagnostics
// produced by the compiler and the generated validator.
func WithLabel(label string) CompileOption {
	return func(s *compileSettings) { s.label = label }
}

const defaultLabel = "value"

// Compile turns a schema tree into an executable validator under the given
// configuration. Results are memoized by (schema fingerprint, config
// identity): compiling a structurally identical schema again is a cache
// hit and performs no node-compiler work. Compilation errors propagate
// synchronously and are never retried.
//
// A nil conf compiles under DefaultConfig.
func Compile(schema Node, conf *Config, opts ...CompileOption) (*Validator, error) {
	settings := compileSettings{label: defaultLabel}
	for _, opt := range opts {
		opt(&settings)
	}
	if conf == nil {
		conf = DefaultConfig()
	}
	if schema == nil {
		return nil, &SchemaError{Label: settings.label, Reason: "nil schema"}
	}
	vd, err := defaultCache.getOrCompile(schema, conf, func() (*Validator, error) {
		return compileSchema(schema, conf, settings.label)
	})
	if err != nil {
		return nil, err
	}
	// The label is diagnostic, per-request state; a cache hit from a
	// request with a different label gets a shallow copy so its own
	// violations carry the right context.
	if vd.label != settings.label {
		relabeled := *vd
		relabeled.label = settings.label
		return &relabeled, nil
	}
	return vd, nil
}

// compiler is the mutable state threaded through one compile request: the
// pending-frame queue, the running local-binding counter, and the names of
// forward references not yet resolvable.
type compiler struct {
	conf       *Config
	label      string
	queue      workQueue
	nvars      int
	unresolved []string
	log        Logger
}

func compileSchema(schema Node, conf *Config, label string) (*Validator, error) {
	c := &compiler{
		conf:  conf,
		label: label,
		log:   conf.logger(),
	}

	root := &slotExpr{}
	c.nvars = 1 // v0 is the root binding
	c.enqueue(schema, root, 1, pithVarName(0), 0, nil)

	// BFS loop: each iteration pops exactly one frame and dispatches to
	// the node compiler for its kind, which fills the frame's slot and
	// may enqueue child frames. Every node reachable from the root is
	// visited exactly once; forward references compile to deferred calls
	// instead of being inlined, which is what terminates cyclic schemas.
	for {
		f := c.queue.pop()
		if f == nil {
			break
		}
		err := c.compileFrame(f)
		releaseFrame(f)
		if err != nil {
			c.queue.drain()
			return nil, err
		}
	}

	return c.assemble(schema, root), nil
}

// nextVar allocates a fresh local-binding index, uniquifying binding names
// across the whole validator body.
func (c *compiler) nextVar() int {
	idx := c.nvars
	c.nvars++
	return idx
}

// enqueue borrows a frame from the pool, binds it to a node and slot, and
// pushes it onto the work queue.
func (c *compiler) enqueue(n Node, slot *slotExpr, indent int, pithExpr string, pithIdx int, tvars map[string]Node) {
	f := acquireFrame()
	f.node = n
	f.slot = slot
	f.indent = indent
	f.pithExpr = pithExpr
	f.pithIdx = pithIdx
	f.tvars = tvars
	c.queue.push(f)
}

// compileFrame sanifies the frame's node, then dispatches over the closed
// set of node kinds. An unknown kind is an upstream normalization defect.
func (c *compiler) compileFrame(f *frame) error {
	node, err := sanifyChild(f.node, c.conf, f.tvars, c.label)
	if err != nil {
		return err
	}
	f.node = node
	f.slot.node = node
	f.slot.pith = f.pithExpr

	switch n := node.(type) {
	case *Any:
		f.slot.sub = trueExpr{}
		return nil
	case *Leaf:
		return c.compileLeaf(n, f)
	case *Union:
		return c.compileUnion(n, f)
	case *Generic:
		return c.compileGeneric(n, f)
	case *ForwardRef:
		return c.compileForwardRef(n, f)
	case *TypeVar:
		// sanifyChild substitutes every type variable away; one surviving
		// to dispatch is an internal invariant violation.
		return &SchemaError{Label: c.label, Node: n, Reason: "unsubstituted type variable reached the compiler"}
	default:
		return &SchemaError{Label: c.label, Node: node, Reason: "unsupported schema node kind"}
	}
}

func (c *compiler) compileLeaf(n *Leaf, f *frame) error {
	if n.Type == nil {
		return &SchemaError{Label: c.label, Node: n, Reason: "leaf with nil type"}
	}
	if isIgnorable(n) {
		f.slot.sub = trueExpr{}
		return nil
	}
	f.slot.sub = &typesExpr{pith: f.pithExpr, types: []reflect.Type{n.Type}}
	return nil
}
