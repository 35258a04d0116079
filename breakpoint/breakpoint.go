// Package breakpoint partitions the viewport-width axis into device categories
// and resolves per-category values for a given width.
package breakpoint

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DesignPPI is the reference pixel density; 1 logical unit = 1/160 in.
const DesignPPI = 160.0

// Category is a named width range.
type Category int

const (
	Phone Category = iota
	Tablet
	Large
	XLarge
	XXLarge
)

// Categories lists every category in ascending width order.
var Categories = [...]Category{Phone, Tablet, Large, XLarge, XXLarge}

var categoryNames = [...]string{
	Phone:   "phone",
	Tablet:  "tablet",
	Large:   "large",
	XLarge:  "xLarge",
	XXLarge: "xxLarge",
}

func (c Category) String() string {
	if c < Phone || c > XXLarge {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory accepts the String form case-insensitively ("xlarge", "xLarge").
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(categoryNames[c], strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return Phone, &ConfigurationError{Op: "parse category", Reason: fmt.Sprintf("unknown category %q", s)}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Size is a width x height pair in logical units.
type Size struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// Landscape reports whether the size is wider than tall.
func (s Size) Landscape() bool { return s.Width > s.Height }

// Swapped exchanges the two axes.
func (s Size) Swapped() Size { return Size{Width: s.Height, Height: s.Width} }

// Oriented returns s with its axes swapped if needed so that Landscape() == landscape.
func (s Size) Oriented(landscape bool) Size {
	if s.Landscape() != landscape {
		return s.Swapped()
	}
	return s
}

func (s Size) String() string { return fmt.Sprintf("%gx%g", s.Width, s.Height) }

// threshold is the lower bound of one category.
type threshold struct {
	min      float64
	category Category
	base     Size
}

// Table is an ascending set of width thresholds with the default base size of
// each category. The first threshold is always 0.
type Table struct {
	name       string
	thresholds []threshold
}

// Full is the five-category table.
var Full = &Table{
	name: "full",
	thresholds: []threshold{
		{min: 0, category: Phone, base: Size{360, 640}},
		{min: 600, category: Tablet, base: Size{600, 960}},
		{min: 960, category: Large, base: Size{1024, 768}},
		{min: 1280, category: XLarge, base: Size{1280, 800}},
		{min: 1920, category: XXLarge, base: Size{1920, 1080}},
	},
}

// Minimal only distinguishes phones from tablets.
var Minimal = &Table{
	name: "minimal",
	thresholds: []threshold{
		{min: 0, category: Phone, base: Size{360, 640}},
		{min: 600, category: Tablet, base: Size{600, 960}},
	},
}

// LookupTable returns a built-in table by name ("full" or "minimal").
func LookupTable(name string) (*Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "full":
		return Full, nil
	case "minimal":
		return Minimal, nil
	}
	return nil, &ConfigurationError{Op: "lookup table", Reason: fmt.Sprintf("unknown breakpoint table %q", name)}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Classify returns the category whose half-open range [min, next) holds width.
// Widths below zero fall into the lowest category.
func (t *Table) Classify(width float64) Category {
	return t.thresholds[t.match(width)].category
}

// match returns the index of the first threshold, walking from the top, whose
// lower bound is <= width.
func (t *Table) match(width float64) int {
	for i := len(t.thresholds) - 1; i > 0; i-- {
		if width >= t.thresholds[i].min {
			return i
		}
	}
	return 0
}

// BaseSize returns the default design size of c. ok is false when the table
// has no such category.
func (t *Table) BaseSize(c Category) (Size, bool) {
	for _, th := range t.thresholds {
		if th.category == c {
			return th.base, true
		}
	}
	return Size{}, false
}

// Band is one category range of a table. Max is +Inf for the top band.
type Band struct {
	Category Category `json:"category"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Base     Size     `json:"base"`
}

// Contains reports whether width falls in [Min, Max).
func (b Band) Contains(width float64) bool { return width >= b.Min && width < b.Max }

// MarshalJSON writes an unbounded Max as null.
func (b Band) MarshalJSON() ([]byte, error) {
	type band struct {
		Category Category `json:"category"`
		Min      float64  `json:"min"`
		Max      *float64 `json:"max"`
		Base     Size     `json:"base"`
	}
	out := band{Category: b.Category, Min: b.Min, Base: b.Base}
	if !math.IsInf(b.Max, 1) {
		upper := b.Max
		out.Max = &upper
	}
	return json.Marshal(out)
}

// Bands returns the table as contiguous ranges in ascending order.
func (t *Table) Bands() []Band {
	bands := make([]Band, len(t.thresholds))
	for i, th := range t.thresholds {
		upper := math.Inf(1)
		if i+1 < len(t.thresholds) {
			upper = t.thresholds[i+1].min
		}
		bands[i] = Band{Category: th.category, Min: th.min, Max: upper, Base: th.base}
	}
	return bands
}

// Classify maps width to a category of the Full table.
func Classify(width float64) Category { return Full.Classify(width) }

// DefaultBaseSize returns the Full table's base size for c.
func DefaultBaseSize(c Category) Size {
	s, _ := Full.BaseSize(c)
	return s
}
