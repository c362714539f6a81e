package beartype

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Strategy selects how the generated validator checks container elements.
type Strategy int

const (
	// StrategyO1 inspects one fixed representative element per container,
	// regardless of container size.
	StrategyO1 Strategy = iota
	// StrategyOn inspects elements in order until a time budget derived
	// from cumulative checking time is exhausted.
	StrategyOn
)

func (s Strategy) String() string {
	switch s {
	case StrategyO1:
		return "O(1)"
	case StrategyOn:
		return "O(n)"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ViolationPolicy governs what (*Validator).Check does with a value that
// does not conform to the schema.
type ViolationPolicy int

const (
	// PolicyRaise returns the violation as an error.
	PolicyRaise ViolationPolicy = iota
	// PolicyWarn logs the violation and reports success.
	PolicyWarn
)

func (p ViolationPolicy) String() string {
	switch p {
	case PolicyRaise:
		return "raise"
	case PolicyWarn:
		return "warn"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ColorMode governs whether downstream formatters should colorize
// violation messages. The compiler only decides the policy; rendering
// belongs to the caller.
type ColorMode int

const (
	// ColorAuto colorizes only when standard error is a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways always colorizes.
	ColorAlways
	// ColorNever never colorizes.
	ColorNever
)

func (c ColorMode) String() string {
	switch c {
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// colorEnvVar overrides the color mode of every configuration constructed
// afterwards. Accepted values mirror the original tri-state: "True",
// "False" and "None".
const colorEnvVar = "BEARTYPE_IS_COLOR"

var colorEnvValues = map[string]ColorMode{
	"True":  ColorAlways,
	"False": ColorNever,
	"None":  ColorAuto,
}

// Options are the raw settings a Config is built from. The zero value is
// the default configuration. Options is a comparable value type: two equal
// Options always yield the same *Config.
type Options struct {
	Strategy     Strategy
	NumericTower bool
	Debug        bool
	Policy       ViolationPolicy
	Color        ColorMode
}

// Config is an immutable compilation configuration. Configs are
// deduplicated by Options value behind a lock, so pointer identity is a
// valid cache-key component: NewConfig with equal Options returns the same
// *Config process-wide.
type Config struct {
	opts Options
	log  Logger
}

var (
	configMu    sync.Mutex
	configCache = make(map[Options]*Config, 8)

	defaultConfigOnce sync.Once
	defaultConfig     *Config
)

// NewConfig returns the canonical Config for the given options. A
// BEARTYPE_IS_COLOR environment value overrides opts.Color; an invalid
// value is a configuration error.
func NewConfig(opts Options) (*Config, error) {
	if mode, ok, err := colorModeFromEnv(); err != nil {
		return nil, err
	} else if ok {
		opts.Color = mode
	}
	return internConfig(opts), nil
}

// DefaultConfig returns the configuration for zero-valued Options. An
// invalid environment override is ignored here rather than surfaced, so
// callers that never touch configuration still get a working default.
func DefaultConfig() *Config {
	defaultConfigOnce.Do(func() {
		opts := Options{}
		if mode, ok, err := colorModeFromEnv(); err == nil && ok {
			opts.Color = mode
		}
		defaultConfig = internConfig(opts)
	})
	return defaultConfig
}

func internConfig(opts Options) *Config {
	configMu.Lock()
	defer configMu.Unlock()
	if c, ok := configCache[opts]; ok {
		return c
	}
	level := LevelWarn
	if opts.Debug {
		level = LevelDebug
	}
	c := &Config{
		opts: opts,
		log:  NewLogger(level, nil),
	}
	configCache[opts] = c
	return c
}

func colorModeFromEnv() (ColorMode, bool, error) {
	raw, ok := os.LookupEnv(colorEnvVar)
	if !ok {
		return ColorAuto, false, nil
	}
	if mode, ok := colorEnvValues[raw]; ok {
		return mode, true, nil
	}
	valid := make([]string, 0, len(colorEnvValues))
	for k := range colorEnvValues {
		valid = append(valid, fmt.Sprintf("%q", k))
	}
	sort.Strings(valid)
	return ColorAuto, false, fmt.Errorf(
		"beartype: environment variable %s=%q invalid; expected one of %s",
		colorEnvVar, raw, strings.Join(valid, ", "))
}

// Strategy returns the container-checking strategy.
func (c *Config) Strategy() Strategy { return c.opts.Strategy }

// NumericTower reports whether numeric leaves widen into implicit unions
// of the wider numeric types (float64 into float64|int, complex128 into
// complex128|float64|int).
func (c *Config) NumericTower() bool { return c.opts.NumericTower }

// Debug reports whether compile-time debug logging is enabled.
func (c *Config) Debug() bool { return c.opts.Debug }

// Policy returns the violation-severity policy.
func (c *Config) Policy() ViolationPolicy { return c.opts.Policy }

// Color returns the configured color mode.
func (c *Config) Color() ColorMode { return c.opts.Color }

// ShouldColor resolves the color mode against the environment: auto mode
// probes whether standard error is attached to a terminal.
func (c *Config) ShouldColor() bool {
	switch c.opts.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		fd := os.Stderr.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

func (c *Config) logger() Logger { return c.log }

func (c *Config) String() string {
	return fmt.Sprintf("Config{strategy=%s tower=%t debug=%t policy=%s color=%s}",
		c.opts.Strategy, c.opts.NumericTower, c.opts.Debug, c.opts.Policy, c.opts.Color)
}
