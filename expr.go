package beartype

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// The compiled validator body is a tree of expr nodes: one flattened,
// short-circuiting boolean expression per validator rather than one
// validator per nesting level. The original system assembled source text
// and evaluated it; here the same contract is preserved by composing
// closures directly, with render producing the textual body for debugging.
type expr interface {
	// eval reports whether the value satisfies this expression. The error
	// return carries resolution failures only; plain non-conformance is
	// the false result.
	eval(v any) (bool, error)

	// render appends a readable form of this expression to w.
	render(w *strings.Builder, indent int)

	// explain returns the deepest failing sub-schema context for a value
	// this expression rejects, or nil when the nearest enclosing slot
	// should report instead.
	explain(v any) *Violation
}

func pithVarName(i int) string { return fmt.Sprintf("v%d", i) }

func indentOf(level int) string { return strings.Repeat("    ", level) }

// slotExpr is the placeholder a parent frame designates for a child frame
// to fill. It carries the sanified node and pith binding it was compiled
// from, which is what violation reporting hangs context on.
type slotExpr struct {
	sub  expr
	node Node
	pith string
}

func (s *slotExpr) eval(v any) (bool, error) {
	return s.sub.eval(v)
}

func (s *slotExpr) render(w *strings.Builder, indent int) {
	if s.sub == nil {
		w.WriteString("<pending>")
		return
	}
	s.sub.render(w, indent)
}

func (s *slotExpr) explain(v any) *Violation {
	if viol := s.sub.explain(v); viol != nil {
		return viol
	}
	return &Violation{Path: s.pith, Schema: s.node, Value: v}
}

// trueExpr accepts every value; ignorable schemas compile to it.
type trueExpr struct{}

func (trueExpr) eval(any) (bool, error)                 { return true, nil }
func (trueExpr) render(w *strings.Builder, indent int)  { w.WriteString("true") }
func (trueExpr) explain(any) *Violation                 { return nil }

// typesExpr is a single multi-type membership test: the shallow bucket of
// a union, or a lone leaf, checked in one shot without recursion.
type typesExpr struct {
	pith  string
	types []reflect.Type
}

func (e *typesExpr) eval(v any) (bool, error) {
	vt := reflect.TypeOf(v)
	for _, t := range e.types {
		if typeMatches(vt, t) {
			return true, nil
		}
	}
	return false, nil
}

func (e *typesExpr) render(w *strings.Builder, indent int) {
	if len(e.types) == 1 {
		fmt.Fprintf(w, "is(%s, %s)", e.pith, e.types[0])
		return
	}
	names := make([]string, len(e.types))
	for i, t := range e.types {
		names[i] = t.String()
	}
	fmt.Fprintf(w, "is(%s, (%s))", e.pith, strings.Join(names, ", "))
}

func (e *typesExpr) explain(any) *Violation { return nil }

// typeMatches reports whether a value of dynamic type vt is an instance of
// t. A nil interface value matches interface targets only.
func typeMatches(vt, t reflect.Type) bool {
	if t == nil {
		return false
	}
	if vt == nil {
		return t.Kind() == reflect.Interface
	}
	if vt == t {
		return true
	}
	return t.Kind() == reflect.Interface && vt.Implements(t)
}

// originExpr is the membership half of a generic check. Container origins
// (slice, array, map, channel) match at kind level, the way the original
// checked against the unparametrized container class; class-like origins
// match exactly.
type originExpr struct {
	pith   string
	origin reflect.Type
}

func (e *originExpr) eval(v any) (bool, error) {
	rv := reflect.ValueOf(v)
	switch e.origin.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.IsValid() && rv.Kind() == e.origin.Kind(), nil
	default:
		return typeMatches(reflect.TypeOf(v), e.origin), nil
	}
}

func (e *originExpr) render(w *strings.Builder, indent int) {
	switch e.origin.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		fmt.Fprintf(w, "is(%s, %s)", e.pith, e.origin.Kind())
	default:
		fmt.Fprintf(w, "is(%s, %s)", e.pith, e.origin)
	}
}

func (e *originExpr) explain(any) *Violation { return nil }

// andExpr is a short-circuit conjunction.
type andExpr struct {
	subs []expr
}

func (e *andExpr) eval(v any) (bool, error) {
	for _, sub := range e.subs {
		ok, err := sub.eval(v)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (e *andExpr) render(w *strings.Builder, indent int) {
	renderJoined(w, e.subs, "and", indent)
}

func (e *andExpr) explain(v any) *Violation {
	for _, sub := range e.subs {
		if ok, err := sub.eval(v); err != nil || !ok {
			return sub.explain(v)
		}
	}
	return nil
}

// orExpr is a short-circuit disjunction: the union as a whole fails only
// when every alternative fails.
type orExpr struct {
	subs []expr
}

func (e *orExpr) eval(v any) (bool, error) {
	for _, sub := range e.subs {
		ok, err := sub.eval(v)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (e *orExpr) render(w *strings.Builder, indent int) {
	renderJoined(w, e.subs, "or", indent)
}

// explain declines to pick an alternative: no single branch explains a
// union rejection, so the enclosing slot reports the union itself.
func (e *orExpr) explain(any) *Violation { return nil }

func renderJoined(w *strings.Builder, subs []expr, op string, indent int) {
	if len(subs) == 1 {
		subs[0].render(w, indent)
		return
	}
	w.WriteString("(\n")
	inner := indentOf(indent + 1)
	for i, sub := range subs {
		w.WriteString(inner)
		sub.render(w, indent+1)
		if i < len(subs)-1 {
			w.WriteString(" " + op)
		}
		w.WriteByte('\n')
	}
	w.WriteString(indentOf(indent))
	w.WriteByte(')')
}

// Linear-strategy scans are bounded by a time budget derived from the
// cumulative time this process has already spent scanning, amortizing the
// cost of large containers across the process lifetime.
var linearScanNanos atomic.Int64

const (
	linearScanFloor   = 50 * time.Microsecond
	linearScanCeil    = 2 * time.Millisecond
	linearScanDivisor = 8
)

func linearBudget() time.Duration {
	b := time.Duration(linearScanNanos.Load() / linearScanDivisor)
	if b < linearScanFloor {
		return linearScanFloor
	}
	if b > linearScanCeil {
		return linearScanCeil
	}
	return b
}

func recordLinearScan(d time.Duration) {
	linearScanNanos.Add(int64(d))
}

// seqElemExpr checks representative elements of a slice or array against
// the element schema. Empty containers satisfy the constraint vacuously.
type seqElemExpr struct {
	srcPith  string
	elemVar  string
	elem     *slotExpr
	strategy Strategy
}

func (e *seqElemExpr) eval(v any) (bool, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false, nil
	}
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return false, nil
	}
	n := rv.Len()
	if n == 0 {
		return true, nil
	}
	if e.strategy == StrategyO1 {
		return e.elem.eval(rv.Index(0).Interface())
	}
	budget := linearBudget()
	start := time.Now()
	defer func() { recordLinearScan(time.Since(start)) }()
	for i := 0; i < n; i++ {
		ok, err := e.elem.eval(rv.Index(i).Interface())
		if err != nil || !ok {
			return false, err
		}
		if time.Since(start) > budget {
			break
		}
	}
	return true, nil
}

func (e *seqElemExpr) render(w *strings.Builder, indent int) {
	idx := "0"
	if e.strategy == StrategyOn {
		idx = ".."
	}
	fmt.Fprintf(w, "(len(%s) == 0 or (%s := %s[%s]; ", e.srcPith, e.elemVar, e.srcPith, idx)
	e.elem.render(w, indent)
	w.WriteString("))")
}

func (e *seqElemExpr) explain(v any) *Violation {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	limit := rv.Len()
	if e.strategy == StrategyO1 && limit > 1 {
		limit = 1
	}
	for i := 0; i < limit; i++ {
		elem := rv.Index(i).Interface()
		if ok, err := e.elem.eval(elem); err == nil && !ok {
			return e.elem.explain(elem)
		}
	}
	return nil
}

// mapElemExpr checks representative entries of a map against key and value
// schemas. Either slot may be nil when that position is unconstrained.
type mapElemExpr struct {
	srcPith  string
	keyVar   string
	valVar   string
	key      *slotExpr
	val      *slotExpr
	strategy Strategy
}

func (e *mapElemExpr) eval(v any) (bool, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return false, nil
	}
	if rv.Len() == 0 {
		return true, nil
	}
	budget := linearBudget()
	start := time.Now()
	if e.strategy == StrategyOn {
		defer func() { recordLinearScan(time.Since(start)) }()
	}
	iter := rv.MapRange()
	for iter.Next() {
		if e.key != nil {
			ok, err := e.key.eval(iter.Key().Interface())
			if err != nil || !ok {
				return false, err
			}
		}
		if e.val != nil {
			ok, err := e.val.eval(iter.Value().Interface())
			if err != nil || !ok {
				return false, err
			}
		}
		if e.strategy == StrategyO1 || time.Since(start) > budget {
			break
		}
	}
	return true, nil
}

func (e *mapElemExpr) render(w *strings.Builder, indent int) {
	idx := "0"
	if e.strategy == StrategyOn {
		idx = ".."
	}
	fmt.Fprintf(w, "(len(%s) == 0 or (%s, %s := %s[%s]; ", e.srcPith, e.keyVar, e.valVar, e.srcPith, idx)
	first := true
	if e.key != nil {
		e.key.render(w, indent)
		first = false
	}
	if e.val != nil {
		if !first {
			w.WriteString(" and ")
		}
		e.val.render(w, indent)
	}
	w.WriteString("))")
}

func (e *mapElemExpr) explain(v any) *Violation {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil
	}
	iter := rv.MapRange()
	for iter.Next() {
		if e.key != nil {
			k := iter.Key().Interface()
			if ok, err := e.key.eval(k); err == nil && !ok {
				return e.key.explain(k)
			}
		}
		if e.val != nil {
			val := iter.Value().Interface()
			if ok, err := e.val.eval(val); err == nil && !ok {
				return e.val.explain(val)
			}
		}
		if e.strategy == StrategyO1 {
			break
		}
	}
	return nil
}

// chanElemExpr destructively samples one buffered element of a channel.
// Compiled only when the schema opts in to consuming sampling; a channel
// with nothing ready satisfies the constraint vacuously.
type chanElemExpr struct {
	srcPith string
	elemVar string
	elem    *slotExpr
}

func (e *chanElemExpr) eval(v any) (bool, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Chan {
		return false, nil
	}
	if rv.Type().ChanDir() == reflect.SendDir {
		return true, nil
	}
	x, ok := rv.TryRecv()
	if !ok || !x.IsValid() {
		return true, nil
	}
	return e.elem.eval(x.Interface())
}

func (e *chanElemExpr) render(w *strings.Builder, indent int) {
	fmt.Fprintf(w, "(%s := <-%s; ", e.elemVar, e.srcPith)
	e.elem.render(w, indent)
	w.WriteByte(')')
}

func (e *chanElemExpr) explain(any) *Violation { return nil }

// deferredExpr is the delayed call a forward reference compiles to: the
// reference stays symbolic until the validator first needs it, which is
// what breaks cycles in self-referential schemas. Resolution happens at
// most once and its outcome, success or failure, is permanent.
type deferredExpr struct {
	pith  string
	ref   *ForwardRef
	conf  *Config
	label string

	once sync.Once
	vd   *Validator
	err  error
}

func (e *deferredExpr) resolve() (*Validator, error) {
	e.once.Do(func() {
		if e.ref.Scope == nil {
			e.err = &ResolutionError{Name: e.ref.Name, Label: e.label}
			return
		}
		n, ok := e.ref.Scope.Lookup(e.ref.Name)
		if !ok {
			e.err = &ResolutionError{Name: e.ref.Name, Label: e.label}
			return
		}
		vd, err := Compile(n, e.conf, WithLabel(e.label))
		if err != nil {
			e.err = &ResolutionError{Name: e.ref.Name, Label: e.label, Err: err}
			return
		}
		e.vd = vd
	})
	return e.vd, e.err
}

func (e *deferredExpr) eval(v any) (bool, error) {
	vd, err := e.resolve()
	if err != nil {
		return false, err
	}
	return vd.root.eval(v)
}

func (e *deferredExpr) render(w *strings.Builder, indent int) {
	fmt.Fprintf(w, "deferred(%q)(%s)", e.ref.Name, e.pith)
}

func (e *deferredExpr) explain(v any) *Violation {
	vd, err := e.resolve()
	if err != nil {
		return nil
	}
	return vd.root.explain(v)
}
