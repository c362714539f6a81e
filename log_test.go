package beartype

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogFormatter_DeterministicFields(t *testing.T) {
	f := &textFormatter{}
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	fields := map[string]any{
		"zulu":  1,
		"alpha": "two words",
		"mike":  StrategyOn,
	}
	got := string(f.format(ts, LevelWarn, "checking failed", fields))
	want := "[WARN] checking failed alpha=\"two words\" mike=O(n) zulu=1\n"
	if got != want {
		t.Errorf("format = %q, want %q", got, want)
	}
}

func TestLogFormatter_Timestamp(t *testing.T) {
	f := &textFormatter{includeTimestamp: true}
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("X", 3600))

	got := string(f.format(ts, LevelInfo, "hello", nil))
	// Rendered in UTC regardless of the input zone.
	if !strings.Contains(got, "2025-03-14T08:26:53") {
		t.Errorf("format = %q, missing UTC timestamp", got)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LevelWarn, &buf)

	log.Debugf("hidden %d", 1)
	log.Infof("hidden %d", 2)
	log.Warnf("shown %d", 3)
	log.Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-severity lines leaked: %q", out)
	}
	for _, want := range []string{"[WARN] shown 3", "[ERROR] shown 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(LevelInfo, &buf)
	child := parent.With(map[string]any{"schema": "union(int, string)"})

	child.Infof("compiled")
	parent.Infof("plain")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "schema=") {
		t.Errorf("child line %q missing field", lines[0])
	}
	if strings.Contains(lines[1], "schema=") {
		t.Errorf("parent line %q inherited child field", lines[1])
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"nonsense", LevelWarn},
	}
	for _, tc := range cases {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestYAMLString(t *testing.T) {
	got := yamlString(UnionOf(TypeOf[int](), TypeOf[string]()))
	for _, want := range []string{"kind: union", "members:", "kind: leaf", "type: int", "type: string"} {
		if !strings.Contains(got, want) {
			t.Errorf("yamlString = %q, missing %q", got, want)
		}
	}
}
