package beartype

// frame is one unit of in-progress compilation work: a schema node paired
// with the expression slot its compiled form must fill. Frames reference
// nodes, never own them, and never outlive the BFS loop of one compile
// request.
type frame struct {
	// node is the schema position this frame compiles.
	node Node

	// slot is the placeholder in the shared expression body designated by
	// the parent frame for this node's code.
	slot *slotExpr

	// indent is the 1-based indentation level for rendered output.
	indent int

	// pithExpr is the source-value expression this frame validates, as it
	// appears in rendered output and diagnostics.
	pithExpr string

	// pithIdx numbers the local binding a child check materializes the
	// current pith into, uniquifying names across the validator body.
	pithIdx int

	// tvars is the type-variable substitution table inherited from the
	// parent frame. Read-only once attached.
	tvars map[string]Node
}

// workQueue is the FIFO of pending frames driving the breadth-first walk.
// Order affects only code layout, not acceptance behavior.
type workQueue struct {
	frames []*frame
	head   int
}

func (q *workQueue) push(f *frame) {
	q.frames = append(q.frames, f)
}

func (q *workQueue) pop() *frame {
	if q.head >= len(q.frames) {
		return nil
	}
	f := q.frames[q.head]
	q.frames[q.head] = nil
	q.head++
	return f
}

func (q *workQueue) len() int {
	return len(q.frames) - q.head
}

// drain returns every still-pending frame to the pool. Called on error
// paths so borrowed frames are recycled regardless of how compilation
// exits.
func (q *workQueue) drain() {
	for {
		f := q.pop()
		if f == nil {
			return
		}
		releaseFrame(f)
	}
}
