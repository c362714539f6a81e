package beartype

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// The compiler distinguishes three failure families. SchemaError and
// ResolutionError are authoring defects surfaced by the compiler or by
// first-use reference resolution; Violation is the generated validator's
// ordinary "no" answer. Callers tell them apart with errors.As.

// SchemaError reports a structurally invalid schema node: an upstream
// normalization defect, fatal and never retried.
type SchemaError struct {
	Label  string
	Node   Node
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("beartype: %s: malformed schema %s: %s", e.Label, e.Node, e.Reason)
	}
	return fmt.Sprintf("beartype: %s: malformed schema: %s", e.Label, e.Reason)
}

// ResolutionError reports a forward reference whose name could not be
// resolved against its defining scope, or whose resolved schema failed to
// compile. It is permanent for the referencing validator.
type ResolutionError struct {
	Name  string
	Label string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("beartype: %s: forward reference %q unresolvable: %v", e.Label, e.Name, e.Err)
	}
	return fmt.Sprintf("beartype: %s: forward reference %q unresolvable", e.Label, e.Name)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Violation reports a value that does not conform to the schema. It carries
// the failing sub-schema, the binding path of the value under test, and a
// truncated sample of the offending value; rendering a full human-readable
// explanation is the caller's concern.
type Violation struct {
	Label  string
	Path   string
	Schema Node
	Value  any
}

// violationSampleWidth bounds the display width of value samples embedded
// in violation messages.
const violationSampleWidth = 56

func (e *Violation) Error() string {
	sample := truncateSample(e.Value, violationSampleWidth)
	if e.Schema != nil {
		return fmt.Sprintf("beartype: %s: %s (%s) not instance of %s",
			e.Label, sample, e.Path, e.Schema)
	}
	return fmt.Sprintf("beartype: %s: %s (%s) not conformant", e.Label, sample, e.Path)
}

// truncateSample renders a value and clips it to the given display width.
// Width is measured in terminal cells, not bytes, so wide runes do not
// overflow the column budget.
func truncateSample(v any, width int) string {
	s := fmt.Sprintf("%#v", v)
	return runewidth.Truncate(s, width, "...")
}
