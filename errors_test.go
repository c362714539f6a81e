package beartype

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrors_TaxonomyDistinct(t *testing.T) {
	var (
		schemaErr error = &SchemaError{Label: "arg", Reason: "broken"}
		resErr    error = &ResolutionError{Name: "X", Label: "arg"}
		viol      error = &Violation{Label: "arg", Path: "v0", Value: 1}
	)

	var se *SchemaError
	var re *ResolutionError
	var vi *Violation

	if !errors.As(schemaErr, &se) || errors.As(schemaErr, &re) || errors.As(schemaErr, &vi) {
		t.Error("SchemaError matched a foreign family")
	}
	if !errors.As(resErr, &re) || errors.As(resErr, &se) || errors.As(resErr, &vi) {
		t.Error("ResolutionError matched a foreign family")
	}
	if !errors.As(viol, &vi) || errors.As(viol, &se) || errors.As(viol, &re) {
		t.Error("Violation matched a foreign family")
	}
}

func TestErrors_ResolutionUnwrap(t *testing.T) {
	cause := fmt.Errorf("scope gone")
	err := &ResolutionError{Name: "X", Label: "arg", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ResolutionError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), `"X"`) {
		t.Errorf("message %q missing reference name", err)
	}
}

func TestErrors_SchemaErrorMessage(t *testing.T) {
	withNode := &SchemaError{Label: "arg", Node: UnionOf(), Reason: "union with no children"}
	for _, want := range []string{"arg", "union()", "no children"} {
		if !strings.Contains(withNode.Error(), want) {
			t.Errorf("message %q missing %q", withNode.Error(), want)
		}
	}
	withoutNode := &SchemaError{Label: "arg", Reason: "nil schema"}
	if strings.Contains(withoutNode.Error(), "union") {
		t.Errorf("nodeless message %q mentions a node", withoutNode.Error())
	}
}

func TestErrors_ViolationMessage(t *testing.T) {
	viol := &Violation{
		Label:  "return",
		Path:   "v2",
		Schema: TypeOf[int](),
		Value:  "oops",
	}
	msg := viol.Error()
	for _, want := range []string{"return", "v2", `"oops"`, "int"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestErrors_TruncateSample(t *testing.T) {
	short := truncateSample("hi", 10)
	if short != `"hi"` {
		t.Errorf("truncateSample(short) = %q", short)
	}

	long := truncateSample(strings.Repeat("a", 200), 20)
	if !strings.HasSuffix(long, "...") {
		t.Errorf("truncateSample(long) = %q, want ellipsis suffix", long)
	}
	if len(long) > 20 {
		t.Errorf("truncateSample(long) = %d bytes, want <= 20", len(long))
	}

	// Width counts terminal cells, so wide runes halve the rune budget.
	wide := truncateSample(strings.Repeat("界", 40), 12)
	if !strings.HasSuffix(wide, "...") {
		t.Errorf("truncateSample(wide) = %q, want ellipsis suffix", wide)
	}
}
