package beartype

import (
	"crypto/sha256"
	"fmt"
	"sync"
)

// Schema fingerprinting: the structural half of the memoization key. Two
// schemas with identical structure produce identical fingerprints, so a
// freshly built node tree that matches one compiled earlier is a cache hit
// even though the pointers differ. The fingerprint of a node is the SHA-256
// digest of its deterministic canonical rendering.

// fingerprinter canonicalizes and hashes schema nodes, caching by node
// pointer since nodes are immutable once handed to the compiler.
type fingerprinter struct {
	mu       sync.RWMutex
	cache    map[Node]string
	maxDepth int
}

func newFingerprinter() *fingerprinter {
	return &fingerprinter{
		cache:    make(map[Node]string, 256),
		maxDepth: 1000,
	}
}

var defaultFingerprinter = newFingerprinter()

// fingerprintNode returns a deterministic hex fingerprint for a schema.
func (fp *fingerprinter) fingerprintNode(n Node) string {
	if n == nil {
		return "bottom"
	}

	fp.mu.RLock()
	if sum, ok := fp.cache[n]; ok {
		fp.mu.RUnlock()
		return sum
	}
	fp.mu.RUnlock()

	ctx := &canonCtx{
		inProgress: make(map[Node]int, 16),
		nextID:     1,
		maxDepth:   fp.maxDepth,
	}
	w := newCanonWriter()
	encodeNode(n, ctx, w)
	sum := sha256.Sum256(w.Bytes())
	hex := fmt.Sprintf("%x", sum[:])

	fp.mu.Lock()
	fp.cache[n] = hex
	fp.mu.Unlock()

	return hex
}

func (fp *fingerprinter) reset() {
	fp.mu.Lock()
	fp.cache = make(map[Node]string, 256)
	fp.mu.Unlock()
}

// canonCtx holds state for a single canonicalization traversal.
type canonCtx struct {
	inProgress map[Node]int // Cycle detection: node → cycle ID
	nextID     int
	depth      int
	maxDepth   int
}

// encodeNode writes the canonical form of a node. Field order is fixed per
// kind; union members keep discovery order, matching the reproducible
// codegen order the compiler itself uses.
func encodeNode(n Node, ctx *canonCtx, w *canonWriter) {
	ctx.depth++
	if ctx.depth > ctx.maxDepth {
		w.WriteString(`{"$max_depth":true}`)
		ctx.depth--
		return
	}
	defer func() { ctx.depth-- }()

	if n == nil {
		w.WriteString(`{"$bottom":true}`)
		return
	}

	// A node graph cyclic through shared pointers encodes the back edge
	// as a cycle marker instead of recursing.
	if id, busy := ctx.inProgress[n]; busy {
		fmt.Fprintf(w, `{"$cycle":%d}`, id)
		return
	}
	id := ctx.nextID
	ctx.nextID++
	ctx.inProgress[n] = id
	defer delete(ctx.inProgress, n)

	switch n := n.(type) {
	case *Any:
		w.WriteString(`{"$any":true}`)
	case *Leaf:
		fmt.Fprintf(w, `{"leaf":%q}`, typeName(n.Type))
	case *Union:
		w.WriteString(`{"union":[`)
		for i, m := range n.Members {
			if i > 0 {
				w.WriteByte(',')
			}
			encodeNode(m, ctx, w)
		}
		w.WriteString(`]}`)
	case *Generic:
		fmt.Fprintf(w, `{"generic":%q,"consume":%t,"args":[`, typeName(n.Origin), n.Consume)
		for i, a := range n.Args {
			if i > 0 {
				w.WriteByte(',')
			}
			encodeNode(a, ctx, w)
		}
		w.WriteString(`],"params":[`)
		for i, p := range n.TypeParams {
			if i > 0 {
				w.WriteByte(',')
			}
			fmt.Fprintf(w, "%q", p)
		}
		w.WriteString(`],"shape":[`)
		for i, s := range n.Shape {
			if i > 0 {
				w.WriteByte(',')
			}
			encodeNode(s, ctx, w)
		}
		w.WriteString(`]}`)
	case *ForwardRef:
		// Scope identity participates: the same name in two scopes can
		// resolve to different schemas.
		fmt.Fprintf(w, `{"ref":%q,"scope":"%p"}`, n.Name, n.Scope)
	case *TypeVar:
		fmt.Fprintf(w, `{"typevar":%q,"bound":`, n.Name)
		encodeNode(n.Bound, ctx, w)
		w.WriteByte('}')
	default:
		fmt.Fprintf(w, `{"$unknown":%q}`, n.Kind())
	}
}

// canonWriter is a simple buffer for building canonical representations.
type canonWriter struct {
	buf []byte
}

func newCanonWriter() *canonWriter {
	return &canonWriter{buf: make([]byte, 0, 256)}
}

func (w *canonWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *canonWriter) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *canonWriter) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

func (w *canonWriter) Bytes() []byte {
	return w.buf
}
