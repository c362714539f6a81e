package beartype

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnion_IgnorableChildPropagates(t *testing.T) {
	cases := []struct {
		name   string
		schema Node
	}{
		{"any member", UnionOf(TypeOf[int](), &Any{})},
		{"empty interface leaf", UnionOf(TypeOf[int](), TypeOf[any]())},
		{"nested ignorable", UnionOf(TypeOf[int](), UnionOf(TypeOf[string](), &Any{}))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vd := mustCompile(t, tc.schema, DefaultConfig())
			for _, v := range []any{nil, 1, "x", 3.14, []byte("b")} {
				if !mustBool(t, vd, v) {
					t.Errorf("ignorable union rejected %#v", v)
				}
			}
		})
	}
}

func TestUnion_ChildlessIsFatal(t *testing.T) {
	_, err := Compile(&Union{}, DefaultConfig())
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Compile(childless union) = %v, want *SchemaError", err)
	}
}

func TestUnion_FlattenOneLevel(t *testing.T) {
	nested := UnionOf(TypeOf[int](), UnionOf(TypeOf[string](), TypeOf[float64]()))

	childs, err := flattenUnionArgs(nested, DefaultConfig(), nil, "test")
	if err != nil {
		t.Fatalf("flattenUnionArgs failed: %v", err)
	}
	if len(childs) != 3 {
		t.Fatalf("flattened union has %d children, want 3", len(childs))
	}
	for i, ch := range childs {
		if _, ok := ch.(*Union); ok {
			t.Errorf("child %d is still a union after flattening", i)
		}
	}

	// Discovery order is preserved for reproducible codegen.
	want := []string{"int", "string", "float64"}
	got := make([]string, len(childs))
	for i, ch := range childs {
		got[i] = ch.String()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flatten order mismatch (-want +got):\n%s", diff)
	}
}

func TestUnion_FlattenMemoized(t *testing.T) {
	ResetCaches()
	t.Cleanup(ResetCaches)

	conf := DefaultConfig()
	schema := UnionOf(TypeOf[int](), UnionOf(TypeOf[string](), TypeOf[float64]()))

	first, err := flattenUnionArgs(schema, conf, nil, "test")
	if err != nil {
		t.Fatalf("flattenUnionArgs failed: %v", err)
	}
	second, err := flattenUnionArgs(schema, conf, nil, "test")
	if err != nil {
		t.Fatalf("flattenUnionArgs failed: %v", err)
	}
	// Memoized flattening hands back the identical slice, not a rebuild.
	if len(first) != len(second) || &first[0] != &second[0] {
		t.Error("flattening was recomputed for a memoized (node, config) pair")
	}
}

func TestUnion_NumericTowerWidening(t *testing.T) {
	conf, err := NewConfig(Options{NumericTower: true})
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	vd := mustCompile(t, UnionOf(TypeOf[float64](), TypeOf[string]()), conf)
	if !mustBool(t, vd, 3) {
		t.Error("tower-widened float64 union rejected int")
	}
	if !mustBool(t, vd, 3.5) {
		t.Error("tower-widened float64 union rejected float64")
	}
	if mustBool(t, vd, uint(3)) {
		t.Error("tower-widened float64 union accepted uint")
	}

	// Without the tower, int stays rejected.
	plain := mustCompile(t, UnionOf(TypeOf[float64](), TypeOf[string]()), DefaultConfig())
	if mustBool(t, plain, 3) {
		t.Error("unwidened float64 union accepted int")
	}
}

func TestUnion_DuplicateShallowChildrenDeduped(t *testing.T) {
	schema := UnionOf(TypeOf[int](), TypeOf[int](), TypeOf[string]())
	vd := mustCompile(t, schema, DefaultConfig())
	if !mustBool(t, vd, 1) || !mustBool(t, vd, "s") {
		t.Error("deduped union rejected a member type")
	}
	if mustBool(t, vd, 1.0) {
		t.Error("deduped union accepted a non-member type")
	}
}

func TestUnion_ShallowAndCompositeMix(t *testing.T) {
	schema := UnionOf(
		TypeOf[int](),
		SliceOf[any](TypeOf[string]()),
	)
	vd := mustCompile(t, schema, DefaultConfig())

	cases := []struct {
		value any
		want  bool
	}{
		{7, true},
		{[]any{"a"}, true},
		{[]any{}, true},
		{[]any{1}, false},
		{"bare string", false},
	}
	for _, tc := range cases {
		if got := mustBool(t, vd, tc.value); got != tc.want {
			t.Errorf("Bool(%#v) = %t, want %t", tc.value, got, tc.want)
		}
	}
}
