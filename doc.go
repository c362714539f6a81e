// Package beartype compiles declarative type schemas into executable
// validators.
//
// A schema is a tagged tree of nodes (concrete-type leaves, unions of
// alternatives, generic containers, forward references and type variables)
// describing the shape a value must have. Compile walks the tree with a
// breadth-first work queue and emits a single flattened, short-circuiting
// boolean expression per schema rather than one validator per nested
// level. Compiled validators are memoized by structural fingerprint and
// configuration identity, so repeated compilations of structurally
// identical schemas are cache hits.
//
//	schema := beartype.UnionOf(
//	    beartype.TypeOf[int](),
//	    beartype.SliceOf[any](beartype.TypeOf[string]()),
//	)
//	vd, err := beartype.Compile(schema, beartype.DefaultConfig())
//	if err != nil {
//	    // malformed schema: an authoring defect, never retried
//	}
//	ok, _ := vd.Bool([]any{"a", "b"})
//
// The validator's own failures split into two kinds: a *Violation is the
// ordinary "value does not conform" answer, while a *ResolutionError marks
// a forward reference that cannot be resolved.
// Schema normalization, argument binding and message formatting belong to
// the callers of this package.
package beartype
