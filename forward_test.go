package beartype

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestForwardRef_ResolvesAfterRegistration(t *testing.T) {
	scope := NewScope()
	schema := Ref("Ident", scope)
	vd := mustCompile(t, schema, DefaultConfig())

	if diff := cmp.Diff([]string{"Ident"}, vd.Unresolved()); diff != "" {
		t.Errorf("Unresolved mismatch (-want +got):\n%s", diff)
	}

	// Registration after compile, before first use: the deferred check
	// resolves lazily.
	scope.Register("Ident", TypeOf[string]())
	if !mustBool(t, vd, "hello") {
		t.Error("resolved reference rejected conforming value")
	}
	if mustBool(t, vd, 5) {
		t.Error("resolved reference accepted bad value")
	}
}

func TestForwardRef_UnresolvableIsResolutionError(t *testing.T) {
	scope := NewScope()
	vd := mustCompile(t, Ref("Nowhere", scope), DefaultConfig())

	_, err := vd.Bool("anything")
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("Bool = %v, want *ResolutionError", err)
	}
	if re.Name != "Nowhere" {
		t.Errorf("ResolutionError.Name = %q, want %q", re.Name, "Nowhere")
	}

	// Not a validation failure: the taxonomy stays distinct.
	var viol *Violation
	if errors.As(err, &viol) {
		t.Error("resolution failure surfaced as a violation")
	}

	// Resolution outcomes are permanent: registering afterwards does not
	// revive this validator.
	scope.Register("Nowhere", TypeOf[int]())
	if _, err := vd.Bool(1); !errors.As(err, &re) {
		t.Errorf("resolution error was retried: %v", err)
	}
}

func TestForwardRef_ResolutionIdempotent(t *testing.T) {
	ResetCaches()
	t.Cleanup(ResetCaches)

	scope := NewScope()
	scope.Register("Item", TypeOf[int]())
	vd := mustCompile(t, Ref("Item", scope), DefaultConfig())

	if len(vd.Unresolved()) != 0 {
		t.Errorf("registered reference listed as unresolved: %v", vd.Unresolved())
	}

	if !mustBool(t, vd, 1) {
		t.Fatal("first resolution rejected conforming value")
	}
	_, missesAfterFirst := CacheStats()

	// Second use resolves to the same compiled schema with no new work.
	if !mustBool(t, vd, 2) {
		t.Fatal("second resolution rejected conforming value")
	}
	if _, misses := CacheStats(); misses != missesAfterFirst {
		t.Errorf("second resolution recompiled: misses %d -> %d", missesAfterFirst, misses)
	}
}

func TestForwardRef_RecursiveSchema(t *testing.T) {
	// Tree = int | []Tree: self-referential through the scope, compiled
	// without recursing forever because the reference becomes a deferred
	// call rather than inlined code.
	scope := NewScope()
	tree := UnionOf(TypeOf[int](), SliceOf[any](Ref("Tree", scope)))
	scope.Register("Tree", tree)

	vd := mustCompile(t, tree, DefaultConfig())

	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"leaf int", 1, true},
		{"shallow list", []any{1}, true},
		{"deep list", []any{[]any{[]any{2}}}, true},
		{"bad leaf", "x", false},
		{"bad nested leaf", []any{[]any{"x"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustBool(t, vd, tc.value); got != tc.want {
				t.Errorf("Bool(%#v) = %t, want %t", tc.value, got, tc.want)
			}
		})
	}
}

func TestForwardRef_EmptyNameIsFatal(t *testing.T) {
	_, err := Compile(Ref("", NewScope()), DefaultConfig())
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Compile = %v, want *SchemaError", err)
	}
}

func TestForwardRef_NilScopeUnresolvable(t *testing.T) {
	vd := mustCompile(t, Ref("Orphan", nil), DefaultConfig())
	if diff := cmp.Diff([]string{"Orphan"}, vd.Unresolved()); diff != "" {
		t.Errorf("Unresolved mismatch (-want +got):\n%s", diff)
	}
	_, err := vd.Bool(1)
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("Bool = %v, want *ResolutionError", err)
	}
}
