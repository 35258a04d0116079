// Package scale computes responsive scale factors from a host measurement.
//
// An Engine is owned by the host. The host calls Configure whenever it
// re-measures the viewport and then queries scaling functions while building
// its UI. Configure captures an immutable Snapshot; queries read the latest
// one. The Engine is not safe for concurrent Configure calls, it is meant to be
// driven from a single UI thread.
package scale

import (
	"fmt"
	"math"

	"github.com/ByLCY/papyrus-scale/breakpoint"
)

// Measurement is what the host reports for one layout pass.
type Measurement struct {
	Width            float64 `json:"width" yaml:"width" toml:"width"`
	Height           float64 `json:"height" yaml:"height" toml:"height"`
	DevicePixelRatio float64 `json:"devicePixelRatio" yaml:"devicePixelRatio" toml:"devicePixelRatio"`
	// TextScale is the platform text-scale multiplier; 0 is read as 1.
	TextScale float64 `json:"textScale" yaml:"textScale" toml:"textScale"`
}

// Viewport is the state stored by Configure.
type Viewport struct {
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
	TextScaleFactor  float64 `json:"textScaleFactor"`
	SystemTextScale  bool    `json:"systemTextScale"`
}

// UninitializedMode selects what queries do before the first Configure.
type UninitializedMode int

const (
	// Strict fails with *UninitializedError.
	Strict UninitializedMode = iota
	// Zero returns 0 (or false) without error.
	Zero
)

func (m UninitializedMode) String() string {
	if m == Zero {
		return "zero"
	}
	return "strict"
}

// ParseUninitializedMode accepts "strict"/"error" and "zero".
func ParseUninitializedMode(s string) (UninitializedMode, error) {
	switch s {
	case "", "strict", "error":
		return Strict, nil
	case "zero":
		return Zero, nil
	}
	return Strict, &breakpoint.ConfigurationError{Op: "uninitialized mode", Reason: fmt.Sprintf("unknown mode %q", s)}
}

// Engine holds the current Snapshot.
type Engine struct {
	table         *breakpoint.Table
	uninitialized UninitializedMode
	units         PhysicalUnits
	snap          *Snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithTable selects the breakpoint table used for base sizes and smart scaling.
func WithTable(t *breakpoint.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithUninitialized selects the behavior of queries before Configure.
func WithUninitialized(m UninitializedMode) Option {
	return func(e *Engine) { e.uninitialized = m }
}

// WithPhysicalUnits selects the cm/mm conversion formulas.
func WithPhysicalUnits(u PhysicalUnits) Option {
	return func(e *Engine) { e.units = u }
}

// New returns an unconfigured Engine using the full breakpoint table,
// strict initialization and legacy physical units.
func New(opts ...Option) *Engine {
	e := &Engine{table: breakpoint.Full}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type configureOptions struct {
	base            *breakpoint.Size
	systemTextScale *bool
}

// ConfigureOption overrides a derived value for one Configure call.
type ConfigureOption func(*configureOptions)

// WithBaseSize replaces the category default base size.
func WithBaseSize(s breakpoint.Size) ConfigureOption {
	return func(o *configureOptions) { o.base = &s }
}

// WithSystemTextScale forces whether the text scale factor applies to fonts.
func WithSystemTextScale(enabled bool) ConfigureOption {
	return func(o *configureOptions) { o.systemTextScale = &enabled }
}

// Configure validates m, derives a Snapshot and makes it current. On error the
// previous Snapshot stays in place. Calling it twice with the same inputs
// yields equal snapshots.
func (e *Engine) Configure(m Measurement, opts ...ConfigureOption) (*Snapshot, error) {
	var co configureOptions
	for _, opt := range opts {
		opt(&co)
	}
	if err := validateMeasurement(m); err != nil {
		return nil, err
	}

	textScale := m.TextScale
	if textScale == 0 {
		textScale = 1
	}

	category := e.table.Classify(m.Width)
	var base breakpoint.Size
	if co.base != nil {
		base = *co.base
	} else {
		base, _ = e.table.BaseSize(category)
	}
	if err := validateBase(base); err != nil {
		return nil, err
	}
	base = base.Oriented(m.Width > m.Height)

	systemTextScale := textScale != 1
	if co.systemTextScale != nil {
		systemTextScale = *co.systemTextScale
	}

	snap := &Snapshot{
		viewport: Viewport{
			Width:            m.Width,
			Height:           m.Height,
			DevicePixelRatio: m.DevicePixelRatio,
			TextScaleFactor:  textScale,
			SystemTextScale:  systemTextScale,
		},
		base:     base,
		ppi:      m.DevicePixelRatio * breakpoint.DesignPPI,
		category: category,
		table:    e.table,
		units:    e.units,
	}
	e.snap = snap
	return snap, nil
}

// Configured reports whether Configure has succeeded at least once since New or Reset.
func (e *Engine) Configured() bool { return e.snap != nil }

// Reset drops the current Snapshot.
func (e *Engine) Reset() { e.snap = nil }

// Table returns the breakpoint table in use.
func (e *Engine) Table() *breakpoint.Table { return e.table }

// Mode returns the uninitialized mode.
func (e *Engine) Mode() UninitializedMode { return e.uninitialized }

// Units returns the physical unit formulas in use.
func (e *Engine) Units() PhysicalUnits { return e.units }

// Snapshot returns the current snapshot. Before the first Configure it returns
// *UninitializedError in Strict mode.
//
// In Zero mode it returns (nil, nil) before the first Configure: a nil error does
// NOT mean the snapshot is usable. Check Configured, or the snapshot for nil,
// before calling Snapshot methods; the Engine methods already degrade to zero.
func (e *Engine) Snapshot() (*Snapshot, error) {
	return e.current("snapshot")
}

func (e *Engine) current(op string) (*Snapshot, error) {
	if e.snap != nil {
		return e.snap, nil
	}
	if e.uninitialized == Zero {
		return nil, nil
	}
	return nil, &UninitializedError{Op: op}
}

func validateMeasurement(m Measurement) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"width", m.Width},
		{"height", m.Height},
		{"devicePixelRatio", m.DevicePixelRatio},
		{"textScale", m.TextScale},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return &breakpoint.ConfigurationError{Op: "configure", Reason: fmt.Sprintf("%s must be a finite non-negative number, got %g", f.name, f.v)}
		}
	}
	return nil
}

func validateBase(s breakpoint.Size) error {
	if !(s.Width > 0) || !(s.Height > 0) || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
		return &breakpoint.ConfigurationError{Op: "configure", Reason: fmt.Sprintf("base size must be positive, got %s", s)}
	}
	return nil
}
