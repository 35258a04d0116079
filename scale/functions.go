package scale

import (
	"fmt"
	"sort"
)

func (e *Engine) number(op string, fn func(*Snapshot) float64) (float64, error) {
	s, err := e.current(op)
	if s == nil {
		return 0, err
	}
	return fn(s), nil
}

func (e *Engine) flag(op string, fn func(*Snapshot) bool) (bool, error) {
	s, err := e.current(op)
	if s == nil {
		return false, err
	}
	return fn(s), nil
}

// WidthScale is Snapshot.WidthScale on the current snapshot.
func (e *Engine) WidthScale(size float64) (float64, error) {
	return e.number("widthScale", func(s *Snapshot) float64 { return s.WidthScale(size) })
}

// HeightScale is Snapshot.HeightScale on the current snapshot.
func (e *Engine) HeightScale(size float64) (float64, error) {
	return e.number("heightScale", func(s *Snapshot) float64 { return s.HeightScale(size) })
}

// SmartWidthScale is Snapshot.SmartWidthScale on the current snapshot.
func (e *Engine) SmartWidthScale(size, lo, hi float64) (float64, error) {
	return e.number("smartWidthScale", func(s *Snapshot) float64 { return s.SmartWidthScale(size, lo, hi) })
}

// SmartHeightScale is Snapshot.SmartHeightScale on the current snapshot.
func (e *Engine) SmartHeightScale(size, lo, hi float64) (float64, error) {
	return e.number("smartHeightScale", func(s *Snapshot) float64 { return s.SmartHeightScale(size, lo, hi) })
}

// AdaptiveScale is Snapshot.AdaptiveScale on the current snapshot.
func (e *Engine) AdaptiveScale(size float64) (float64, error) {
	return e.number("adaptiveScale", func(s *Snapshot) float64 { return s.AdaptiveScale(size) })
}

// FontScale is Snapshot.FontScale on the current snapshot.
func (e *Engine) FontScale(size float64) (float64, error) {
	return e.number("fontScale", func(s *Snapshot) float64 { return s.FontScale(size) })
}

// Physical converts design units to device pixels.
func (e *Engine) Physical(size float64) (float64, error) {
	return e.number("physical", func(s *Snapshot) float64 { return s.Physical(size) })
}

// CM follows the engine's PhysicalUnits.
func (e *Engine) CM(size float64) (float64, error) {
	return e.number("cm", func(s *Snapshot) float64 { return s.CM(size) })
}

// MM follows the engine's PhysicalUnits.
func (e *Engine) MM(size float64) (float64, error) {
	return e.number("mm", func(s *Snapshot) float64 { return s.MM(size) })
}

// Inches returns size * ppi.
func (e *Engine) Inches(size float64) (float64, error) {
	return e.number("inches", func(s *Snapshot) float64 { return s.Inches(size) })
}

// WidthPercent returns percent of the viewport width.
func (e *Engine) WidthPercent(percent float64) (float64, error) {
	return e.number("widthPercent", func(s *Snapshot) float64 { return s.WidthPercent(percent) })
}

// HeightPercent returns percent of the viewport height.
func (e *Engine) HeightPercent(percent float64) (float64, error) {
	return e.number("heightPercent", func(s *Snapshot) float64 { return s.HeightPercent(percent) })
}

// The Is* wrappers below evaluate the Snapshot query of the same name on the
// current snapshot, failing like every other Engine method before Configure.

// IsPhone reports a width in [360, 600).
func (e *Engine) IsPhone() (bool, error) { return e.flag("isPhone", (*Snapshot).IsPhone) }

// IsTablet reports a width in [600, 1024).
func (e *Engine) IsTablet() (bool, error) { return e.flag("isTablet", (*Snapshot).IsTablet) }

// IsLarge reports a width in [1024, 1280).
func (e *Engine) IsLarge() (bool, error) { return e.flag("isLarge", (*Snapshot).IsLarge) }

// IsXLarge reports a width in [1280, 1920).
func (e *Engine) IsXLarge() (bool, error) { return e.flag("isXLarge", (*Snapshot).IsXLarge) }

// IsPhoneOrLarger reports a width of at least 360.
func (e *Engine) IsPhoneOrLarger() (bool, error) {
	return e.flag("isPhoneOrLarger", (*Snapshot).IsPhoneOrLarger)
}

// IsTabletOrLarger reports a width of at least 600.
func (e *Engine) IsTabletOrLarger() (bool, error) {
	return e.flag("isTabletOrLarger", (*Snapshot).IsTabletOrLarger)
}

// IsLargeOrLarger reports a width of at least 1024.
func (e *Engine) IsLargeOrLarger() (bool, error) {
	return e.flag("isLargeOrLarger", (*Snapshot).IsLargeOrLarger)
}

// IsXLargeOrLarger reports a width of at least 1280.
func (e *Engine) IsXLargeOrLarger() (bool, error) {
	return e.flag("isXLargeOrLarger", (*Snapshot).IsXLargeOrLarger)
}

// IsXXLargeOrLarger reports a width of at least 1920.
func (e *Engine) IsXXLargeOrLarger() (bool, error) {
	return e.flag("isXXLargeOrLarger", (*Snapshot).IsXXLargeOrLarger)
}

// IsPortrait reports height >= width.
func (e *Engine) IsPortrait() (bool, error) { return e.flag("isPortrait", (*Snapshot).IsPortrait) }

// IsLandscape reports width > height.
func (e *Engine) IsLandscape() (bool, error) { return e.flag("isLandscape", (*Snapshot).IsLandscape) }

// Kind tells numeric functions from boolean queries.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
)

func (k Kind) String() string {
	if k == KindBool {
		return "bool"
	}
	return "number"
}

// Result is the outcome of Eval. Bool is meaningful only for KindBool.
type Result struct {
	Kind   Kind
	Number float64
	Bool   bool
}

// Func describes a function callable by name.
type Func struct {
	Name    string
	Kind    Kind
	MinArgs int
	MaxArgs int
	Doc     string
	number  func(s *Snapshot, args []float64) float64
	flag    func(s *Snapshot) bool
	check   func(name string, args []float64) error
}

func unary(fn func(*Snapshot, float64) float64) func(*Snapshot, []float64) float64 {
	return func(s *Snapshot, args []float64) float64 { return fn(s, args[0]) }
}

func smartBounds(args []float64) (lo, hi float64) {
	lo, hi = DefaultSmartMin, DefaultSmartMax
	if len(args) > 1 {
		lo = args[1]
	}
	if len(args) > 2 {
		hi = args[2]
	}
	return lo, hi
}

func smart(fn func(*Snapshot, float64, float64, float64) float64) func(*Snapshot, []float64) float64 {
	return func(s *Snapshot, args []float64) float64 {
		lo, hi := smartBounds(args)
		return fn(s, args[0], lo, hi)
	}
}

func orderedBounds(name string, args []float64) error {
	if lo, hi := smartBounds(args); lo > hi {
		return fmt.Errorf("%s: min %g is greater than max %g", name, lo, hi)
	}
	return nil
}

func numberFunc(name, doc string, fn func(*Snapshot, []float64) float64, minArgs, maxArgs int) Func {
	return Func{Name: name, Kind: KindNumber, MinArgs: minArgs, MaxArgs: maxArgs, Doc: doc, number: fn}
}

func (f Func) checked(check func(name string, args []float64) error) Func {
	f.check = check
	return f
}

func boolFunc(name, doc string, fn func(*Snapshot) bool) Func {
	return Func{Name: name, Kind: KindBool, Doc: doc, flag: fn}
}

var registry = func() map[string]Func {
	funcs := []Func{
		numberFunc("widthScale", "size * clamp(width/baseWidth, 0.5, 3)", unary((*Snapshot).WidthScale), 1, 1),
		numberFunc("heightScale", "size * clamp(height/baseHeight, 0.5, 3)", unary((*Snapshot).HeightScale), 1, 1),
		numberFunc("smartWidthScale", "size * clamp(width/referenceWidth, min, max)", smart((*Snapshot).SmartWidthScale), 1, 3).checked(orderedBounds),
		numberFunc("smartHeightScale", "size * clamp(height/referenceHeight, min, max)", smart((*Snapshot).SmartHeightScale), 1, 3).checked(orderedBounds),
		numberFunc("adaptiveScale", "size + (smartWidthScale(size) - size) * 0.5", unary((*Snapshot).AdaptiveScale), 1, 1),
		numberFunc("fontScale", "adaptiveScale(size) * textScale", unary((*Snapshot).FontScale), 1, 1),
		numberFunc("physical", "size / 160 * ppi", unary((*Snapshot).Physical), 1, 1),
		numberFunc("cm", "centimeters to pixels", unary((*Snapshot).CM), 1, 1),
		numberFunc("mm", "millimeters to pixels", unary((*Snapshot).MM), 1, 1),
		numberFunc("inches", "size * ppi", unary((*Snapshot).Inches), 1, 1),
		numberFunc("widthPercent", "width * percent / 100", unary((*Snapshot).WidthPercent), 1, 1),
		numberFunc("heightPercent", "height * percent / 100", unary((*Snapshot).HeightPercent), 1, 1),
		boolFunc("isPhone", "width in [360, 600)", (*Snapshot).IsPhone),
		boolFunc("isTablet", "width in [600, 1024)", (*Snapshot).IsTablet),
		boolFunc("isLarge", "width in [1024, 1280)", (*Snapshot).IsLarge),
		boolFunc("isXLarge", "width in [1280, 1920)", (*Snapshot).IsXLarge),
		boolFunc("isPhoneOrLarger", "width >= 360", (*Snapshot).IsPhoneOrLarger),
		boolFunc("isTabletOrLarger", "width >= 600", (*Snapshot).IsTabletOrLarger),
		boolFunc("isLargeOrLarger", "width >= 1024", (*Snapshot).IsLargeOrLarger),
		boolFunc("isXLargeOrLarger", "width >= 1280", (*Snapshot).IsXLargeOrLarger),
		boolFunc("isXXLargeOrLarger", "width >= 1920", (*Snapshot).IsXXLargeOrLarger),
		boolFunc("isPortrait", "height >= width", (*Snapshot).IsPortrait),
		boolFunc("isLandscape", "width > height", (*Snapshot).IsLandscape),
	}
	m := make(map[string]Func, len(funcs))
	for _, f := range funcs {
		m[f.Name] = f
	}
	return m
}()

// Lookup returns the function registered under name.
func Lookup(name string) (Func, bool) {
	f, ok := registry[name]
	return f, ok
}

// Funcs returns every registered function sorted by name.
func Funcs() []Func {
	out := make([]Func, 0, len(registry))
	for _, f := range registry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// checkArgs validates the argument count and, for smart scales, that min <= max.
func (f Func) checkArgs(args []float64) error {
	n := len(args)
	if n >= f.MinArgs && n <= f.MaxArgs {
		if f.check != nil {
			return f.check(f.Name, args)
		}
		return nil
	}
	if f.MinArgs == f.MaxArgs {
		return fmt.Errorf("%s: expected %d argument(s), got %d", f.Name, f.MinArgs, n)
	}
	return fmt.Errorf("%s: expected %d to %d arguments, got %d", f.Name, f.MinArgs, f.MaxArgs, n)
}

// Apply evaluates f against s.
func (f Func) Apply(s *Snapshot, args ...float64) (Result, error) {
	if err := f.checkArgs(args); err != nil {
		return Result{}, err
	}
	if f.Kind == KindBool {
		return Result{Kind: KindBool, Bool: f.flag(s)}, nil
	}
	return Result{Kind: KindNumber, Number: f.number(s, args)}, nil
}

// Eval calls the function registered under name on the current snapshot.
func (e *Engine) Eval(name string, args ...float64) (Result, error) {
	f, ok := Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("unknown scaling function %q", name)
	}
	s, err := e.current(name)
	if err != nil {
		return Result{}, err
	}
	if s == nil {
		// Zero mode: degrade to the zero value of the function's kind.
		if err := f.checkArgs(args); err != nil {
			return Result{}, err
		}
		return Result{Kind: f.Kind}, nil
	}
	return f.Apply(s, args...)
}
