package scale

import (
	"fmt"

	"github.com/ByLCY/papyrus-scale/breakpoint"
)

// Ratio clamp for WidthScale and HeightScale, and the defaults of the smart variants.
const (
	MinRatio        = 0.5
	MaxRatio        = 3.0
	DefaultSmartMin = MinRatio
	DefaultSmartMax = MaxRatio
	// AdaptiveFactor is how far AdaptiveScale moves from size toward the smart width scale.
	AdaptiveFactor = 0.5
)

// Reference sizes for smart scaling. Phone and tablet are absent on purpose:
// narrow widths fall back to the large reference through breakpoint.Resolve.
var (
	smartWidthRefs = breakpoint.Candidates[float64]{
		Large:   breakpoint.Value(360.0),
		XLarge:  breakpoint.Value(600.0),
		XXLarge: breakpoint.Value(1024.0),
	}
	smartHeightRefs = breakpoint.Candidates[float64]{
		Large:   breakpoint.Value(640.0),
		XLarge:  breakpoint.Value(960.0),
		XXLarge: breakpoint.Value(768.0),
	}
)

// PhysicalUnits selects the cm/mm formulas.
type PhysicalUnits int

const (
	// LegacyUnits keeps cm = size*2.54*ppi and mm = size*0.1*ppi*2.54.
	LegacyUnits PhysicalUnits = iota
	// StandardUnits uses cm = size/2.54*ppi and mm = size/25.4*ppi.
	StandardUnits
)

func (u PhysicalUnits) String() string {
	if u == StandardUnits {
		return "standard"
	}
	return "legacy"
}

// ParsePhysicalUnits accepts "legacy" and "standard".
func ParsePhysicalUnits(s string) (PhysicalUnits, error) {
	switch s {
	case "", "legacy":
		return LegacyUnits, nil
	case "standard":
		return StandardUnits, nil
	}
	return LegacyUnits, &breakpoint.ConfigurationError{Op: "physical units", Reason: fmt.Sprintf("unknown units %q", s)}
}

// Snapshot is the immutable state of one Configure call.
type Snapshot struct {
	viewport Viewport
	base     breakpoint.Size
	ppi      float64
	category breakpoint.Category
	table    *breakpoint.Table
	units    PhysicalUnits
}

// Viewport returns the configured viewport.
func (s *Snapshot) Viewport() Viewport { return s.viewport }

// Base returns the base size after orientation matching.
func (s *Snapshot) Base() breakpoint.Size { return s.base }

// PPI returns devicePixelRatio * DesignPPI.
func (s *Snapshot) PPI() float64 { return s.ppi }

// Category returns the breakpoint category of the viewport width.
func (s *Snapshot) Category() breakpoint.Category { return s.category }

// Table returns the breakpoint table the snapshot was built with.
func (s *Snapshot) Table() *breakpoint.Table { return s.table }

// SystemTextScale reports whether FontScale applies the text scale factor.
func (s *Snapshot) SystemTextScale() bool { return s.viewport.SystemTextScale }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WidthScale scales size by viewport/base width, clamped to [0.5, 3].
func (s *Snapshot) WidthScale(size float64) float64 {
	return size * clamp(s.viewport.Width/s.base.Width, MinRatio, MaxRatio)
}

// HeightScale scales size by viewport/base height, clamped to [0.5, 3].
func (s *Snapshot) HeightScale(size float64) float64 {
	return size * clamp(s.viewport.Height/s.base.Height, MinRatio, MaxRatio)
}

// SmartWidthScale scales size by viewport width over the reference width of
// the width's category, clamped to [lo, hi]. With lo > hi the result is pinned
// to size*lo; Eval rejects such bounds.
//
// The reference is resolved on the snapshot's table, so under Minimal every
// viewport maps to phone or tablet and falls back to the large reference.
func (s *Snapshot) SmartWidthScale(size, lo, hi float64) float64 {
	ref := s.reference(smartWidthRefs)
	return size * clamp(s.viewport.Width/ref, lo, hi)
}

// SmartHeightScale is SmartWidthScale on the height axis. The reference is
// still chosen by viewport width.
func (s *Snapshot) SmartHeightScale(size, lo, hi float64) float64 {
	ref := s.reference(smartHeightRefs)
	return size * clamp(s.viewport.Height/ref, lo, hi)
}

// SmartWidth is SmartWidthScale with the default clamp.
func (s *Snapshot) SmartWidth(size float64) float64 {
	return s.SmartWidthScale(size, DefaultSmartMin, DefaultSmartMax)
}

// SmartHeight is SmartHeightScale with the default clamp.
func (s *Snapshot) SmartHeight(size float64) float64 {
	return s.SmartHeightScale(size, DefaultSmartMin, DefaultSmartMax)
}

func (s *Snapshot) reference(refs breakpoint.Candidates[float64]) float64 {
	// refs is never empty, so the error path is unreachable.
	ref, _ := breakpoint.ResolveWith(s.table, s.viewport.Width, refs)
	return ref
}

// AdaptiveScale moves size halfway toward SmartWidth(size).
func (s *Snapshot) AdaptiveScale(size float64) float64 {
	return size + (s.SmartWidth(size)-size)*AdaptiveFactor
}

// FontScale is AdaptiveScale times the text scale factor when system text
// scaling is enabled.
func (s *Snapshot) FontScale(size float64) float64 {
	factor := 1.0
	if s.viewport.SystemTextScale {
		factor = s.viewport.TextScaleFactor
	}
	return s.AdaptiveScale(size) * factor
}

// Physical converts design-density units to device pixels.
func (s *Snapshot) Physical(size float64) float64 {
	return (size / breakpoint.DesignPPI) * s.ppi
}

// CM converts centimeters to pixels.
func (s *Snapshot) CM(size float64) float64 {
	if s.units == StandardUnits {
		return size / 2.54 * s.ppi
	}
	return size * 2.54 * s.ppi
}

// MM converts millimeters to pixels.
func (s *Snapshot) MM(size float64) float64 {
	if s.units == StandardUnits {
		return size / 25.4 * s.ppi
	}
	return size * 0.1 * s.ppi * 2.54
}

// Inches converts inches to pixels.
func (s *Snapshot) Inches(size float64) float64 {
	return size * s.ppi
}

// WidthPercent returns percent of the viewport width.
func (s *Snapshot) WidthPercent(percent float64) float64 {
	return s.viewport.Width * percent / 100
}

// HeightPercent returns percent of the viewport height.
func (s *Snapshot) HeightPercent(percent float64) float64 {
	return s.viewport.Height * percent / 100
}
