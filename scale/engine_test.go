package scale

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/papyrus-scale/breakpoint"
)

func configured(t *testing.T, m Measurement, opts ...ConfigureOption) *Snapshot {
	t.Helper()
	s, err := New().Configure(m, opts...)
	require.NoError(t, err)
	return s
}

func TestPhoneScenario(t *testing.T) {
	e := New()
	s, err := e.Configure(Measurement{Width: 375, Height: 812, DevicePixelRatio: 3, TextScale: 1})
	require.NoError(t, err)

	assert.Equal(t, breakpoint.Phone, breakpoint.Classify(375))
	assert.Equal(t, breakpoint.Phone, s.Category())
	assert.Equal(t, breakpoint.Size{Width: 360, Height: 640}, s.Base())
	assert.Equal(t, 480.0, s.PPI())
	assert.False(t, s.SystemTextScale())

	got, err := e.WidthPercent(50)
	require.NoError(t, err)
	assert.Equal(t, 187.5, got)
	got, err = e.HeightPercent(10)
	require.NoError(t, err)
	assert.InDelta(t, 81.2, got, 1e-9)

	phone, err := e.IsPhone()
	require.NoError(t, err)
	assert.True(t, phone)
	tablet, err := e.IsTabletOrLarger()
	require.NoError(t, err)
	assert.False(t, tablet)
}

func TestLandscapeTabletScenario(t *testing.T) {
	e := New()
	s, err := e.Configure(Measurement{Width: 1024, Height: 768, DevicePixelRatio: 2, TextScale: 1.3})
	require.NoError(t, err)

	assert.True(t, s.SystemTextScale(), "1.3 != 1 enables system text scale")
	assert.Equal(t, breakpoint.Large, s.Category())

	font, err := e.FontScale(16)
	require.NoError(t, err)
	adaptive, err := e.AdaptiveScale(16)
	require.NoError(t, err)
	assert.Equal(t, adaptive*1.3, font)
	// reference width 360: smart(16) = 16 * 1024/360
	assert.InDelta(t, 16+(16*1024.0/360-16)*0.5, adaptive, 1e-9)
}

func TestSystemTextScaleOverride(t *testing.T) {
	s := configured(t, Measurement{Width: 1024, Height: 768, DevicePixelRatio: 2, TextScale: 1.3}, WithSystemTextScale(false))
	assert.False(t, s.SystemTextScale())
	assert.Equal(t, s.AdaptiveScale(16), s.FontScale(16))

	s = configured(t, Measurement{Width: 400, Height: 800, DevicePixelRatio: 2, TextScale: 1}, WithSystemTextScale(true))
	assert.True(t, s.SystemTextScale())
	assert.Equal(t, s.AdaptiveScale(16), s.FontScale(16), "factor 1 leaves the value unchanged")
}

func TestZeroTextScaleReadsAsOne(t *testing.T) {
	s := configured(t, Measurement{Width: 400, Height: 800, DevicePixelRatio: 1})
	assert.False(t, s.SystemTextScale())
	assert.Equal(t, 1.0, s.Viewport().TextScaleFactor)
}

func TestBaseSizeFollowsViewportOrientation(t *testing.T) {
	s := configured(t, Measurement{Width: 500, Height: 300, DevicePixelRatio: 1})
	assert.Equal(t, breakpoint.Size{Width: 640, Height: 360}, s.Base())

	s = configured(t, Measurement{Width: 1100, Height: 1400, DevicePixelRatio: 1})
	assert.Equal(t, breakpoint.Large, s.Category())
	assert.Equal(t, breakpoint.Size{Width: 768, Height: 1024}, s.Base())

	s = configured(t, Measurement{Width: 800, Height: 400, DevicePixelRatio: 1}, WithBaseSize(breakpoint.Size{Width: 300, Height: 500}))
	assert.Equal(t, breakpoint.Size{Width: 500, Height: 300}, s.Base(), "overrides are reoriented too")
}

func TestWidthScaleClampsAtBoundaries(t *testing.T) {
	s := configured(t, Measurement{Width: 180, Height: 640, DevicePixelRatio: 1})
	require.Equal(t, 360.0, s.Base().Width)
	assert.Equal(t, 5.0, s.WidthScale(10), "180/360 sits exactly on the lower clamp")

	s = configured(t, Measurement{Width: 100, Height: 640, DevicePixelRatio: 1})
	assert.Equal(t, 5.0, s.WidthScale(10))

	s = configured(t, Measurement{Width: 1500, Height: 2000, DevicePixelRatio: 1}, WithBaseSize(breakpoint.Size{Width: 360, Height: 640}))
	assert.Equal(t, 30.0, s.WidthScale(10), "1500/360 clamps to 3")
	assert.Equal(t, 30.0, s.HeightScale(10), "2000/640 clamps to 3")
}

func TestWidthAndHeightScaleMonotonic(t *testing.T) {
	base := WithBaseSize(breakpoint.Size{Width: 360, Height: 640})
	prevW, prevH := 0.0, 0.0
	for w := 100.0; w <= 1200; w += 7 {
		s := configured(t, Measurement{Width: w, Height: w * 1.5, DevicePixelRatio: 1}, base)
		gotW, gotH := s.WidthScale(10), s.HeightScale(10)
		assert.GreaterOrEqual(t, gotW, prevW, "width %g", w)
		assert.GreaterOrEqual(t, gotH, prevH, "width %g", w)
		assert.GreaterOrEqual(t, gotW, 5.0)
		assert.LessOrEqual(t, gotW, 30.0)
		prevW, prevH = gotW, gotH
	}
}

func TestSmartScaleReferences(t *testing.T) {
	tests := []struct {
		width, height float64
		refW, refH    float64
	}{
		{375, 812, 360, 640},    // phone borrows the large reference
		{700, 1000, 360, 640},   // tablet too
		{1100, 800, 360, 640},   // large
		{1440, 900, 600, 960},   // xLarge
		{2560, 1440, 1024, 768}, // xxLarge
	}
	for _, tt := range tests {
		s := configured(t, Measurement{Width: tt.width, Height: tt.height, DevicePixelRatio: 1})
		assert.InDelta(t, 10*clamp(tt.width/tt.refW, 0.5, 3), s.SmartWidth(10), 1e-9, "width %g", tt.width)
		assert.InDelta(t, 10*clamp(tt.height/tt.refH, 0.5, 3), s.SmartHeight(10), 1e-9, "width %g", tt.width)
	}

	s := configured(t, Measurement{Width: 720, Height: 1280, DevicePixelRatio: 1})
	assert.Equal(t, 15.0, s.SmartWidthScale(10, 0.5, 1.5), "caller clamp applies")
	assert.Equal(t, 10.0, s.SmartWidthScale(10, 0.1, 1))
}

func TestAdaptiveScale(t *testing.T) {
	s := configured(t, Measurement{Width: 360, Height: 640, DevicePixelRatio: 1})
	require.Equal(t, 24.0, s.SmartWidth(24))
	assert.Equal(t, 24.0, s.AdaptiveScale(24), "ratio 1 leaves the size untouched")

	for _, w := range []float64{200, 500, 720, 1100, 1440, 2560} {
		s := configured(t, Measurement{Width: w, Height: 900, DevicePixelRatio: 1})
		size := 16.0
		smart := s.SmartWidth(size)
		adaptive := s.AdaptiveScale(size)
		lo, hi := size, smart
		if lo > hi {
			lo, hi = hi, lo
		}
		assert.Greater(t, adaptive, lo, "width %g", w)
		assert.Less(t, adaptive, hi, "width %g", w)
	}
}

func TestPhysicalRoundTrip(t *testing.T) {
	for _, dpr := range []float64{0.75, 1, 1.5, 2, 2.625, 3, 4} {
		s := configured(t, Measurement{Width: 400, Height: 800, DevicePixelRatio: dpr})
		assert.InDelta(t, s.PPI(), s.Physical(breakpoint.DesignPPI), 1e-9, "dpr %g", dpr)
		assert.Equal(t, 2*s.PPI(), s.Inches(2))
	}
}

func TestPhysicalUnitFormulas(t *testing.T) {
	m := Measurement{Width: 400, Height: 800, DevicePixelRatio: 1}

	legacy, err := New().Configure(m)
	require.NoError(t, err)
	assert.InDelta(t, 1*2.54*160, legacy.CM(1), 1e-9)
	assert.InDelta(t, 10*0.1*160*2.54, legacy.MM(10), 1e-9)

	standard, err := New(WithPhysicalUnits(StandardUnits)).Configure(m)
	require.NoError(t, err)
	assert.InDelta(t, 160.0, standard.CM(2.54), 1e-9)
	assert.InDelta(t, 160.0, standard.MM(25.4), 1e-9)
	assert.InDelta(t, standard.CM(1), standard.MM(10), 1e-9)
}

func TestClassificationQueries(t *testing.T) {
	type flags struct{ phone, tablet, large, xLarge, phoneUp, tabletUp, largeUp, xLargeUp, xxLargeUp bool }
	tests := map[float64]flags{
		320:  {},
		360:  {phone: true, phoneUp: true},
		599:  {phone: true, phoneUp: true},
		600:  {tablet: true, phoneUp: true, tabletUp: true},
		960:  {tablet: true, phoneUp: true, tabletUp: true}, // Large category, still a tablet here
		1024: {large: true, phoneUp: true, tabletUp: true, largeUp: true},
		1280: {xLarge: true, phoneUp: true, tabletUp: true, largeUp: true, xLargeUp: true},
		1920: {phoneUp: true, tabletUp: true, largeUp: true, xLargeUp: true, xxLargeUp: true},
	}
	for w, want := range tests {
		s := configured(t, Measurement{Width: w, Height: 1000, DevicePixelRatio: 1})
		got := flags{
			s.IsPhone(), s.IsTablet(), s.IsLarge(), s.IsXLarge(),
			s.IsPhoneOrLarger(), s.IsTabletOrLarger(), s.IsLargeOrLarger(), s.IsXLargeOrLarger(), s.IsXXLargeOrLarger(),
		}
		assert.Equal(t, want, got, "width %g", w)
	}
}

func TestOrientationQueries(t *testing.T) {
	s := configured(t, Measurement{Width: 500, Height: 500, DevicePixelRatio: 1})
	assert.True(t, s.IsPortrait())
	assert.False(t, s.IsLandscape())

	s = configured(t, Measurement{Width: 501, Height: 500, DevicePixelRatio: 1})
	assert.False(t, s.IsPortrait())
	assert.True(t, s.IsLandscape())
}

func TestStrictEngineBeforeConfigure(t *testing.T) {
	e := New()
	assert.False(t, e.Configured())

	_, err := e.WidthScale(10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUninitialized)
	var uninit *UninitializedError
	require.True(t, errors.As(err, &uninit))
	assert.Equal(t, "widthScale", uninit.Op)

	_, err = e.IsPortrait()
	assert.ErrorIs(t, err, ErrUninitialized)
	_, err = e.Snapshot()
	assert.ErrorIs(t, err, ErrUninitialized)
	_, err = e.Eval("fontScale", 12)
	assert.ErrorIs(t, err, ErrUninitialized)
}

func TestZeroEngineBeforeConfigure(t *testing.T) {
	e := New(WithUninitialized(Zero))

	got, err := e.WidthScale(10)
	require.NoError(t, err)
	assert.Zero(t, got)
	got, err = e.SmartHeightScale(10, 0.5, 3)
	require.NoError(t, err)
	assert.Zero(t, got)
	landscape, err := e.IsLandscape()
	require.NoError(t, err)
	assert.False(t, landscape)

	snap, err := e.Snapshot()
	assert.NoError(t, err)
	assert.Nil(t, snap, "zero mode reports no snapshot rather than a usable one")
	assert.False(t, e.Configured())

	res, err := e.Eval("isPhone")
	require.NoError(t, err)
	assert.Equal(t, Result{Kind: KindBool}, res)
}

func TestConfigureRejectsInvalidInput(t *testing.T) {
	e := New()
	first, err := e.Configure(Measurement{Width: 400, Height: 800, DevicePixelRatio: 2})
	require.NoError(t, err)

	bad := []struct {
		m    Measurement
		opts []ConfigureOption
	}{
		{Measurement{Width: 400, Height: 800, DevicePixelRatio: 1}, []ConfigureOption{WithBaseSize(breakpoint.Size{Width: 0, Height: 640})}},
		{Measurement{Width: 400, Height: 800, DevicePixelRatio: 1}, []ConfigureOption{WithBaseSize(breakpoint.Size{Width: 360, Height: -1})}},
		{Measurement{Width: -1, Height: 800, DevicePixelRatio: 1}, nil},
		{Measurement{Width: 400, Height: 800, DevicePixelRatio: -2}, nil},
	}
	for _, b := range bad {
		_, err := e.Configure(b.m, b.opts...)
		require.Error(t, err)
		assert.ErrorIs(t, err, breakpoint.ErrConfiguration)
	}
	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Same(t, first, snap, "failed configure keeps the previous snapshot")
}

func TestConfigureIsIdempotentAndOverwrites(t *testing.T) {
	e := New()
	m := Measurement{Width: 820, Height: 1180, DevicePixelRatio: 2, TextScale: 1.1}
	a, err := e.Configure(m)
	require.NoError(t, err)
	b, err := e.Configure(m)
	require.NoError(t, err)
	assert.Equal(t, *a, *b)

	_, err = e.Configure(Measurement{Width: 1920, Height: 1080, DevicePixelRatio: 1})
	require.NoError(t, err)
	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, breakpoint.XXLarge, snap.Category())
	assert.Equal(t, 1.0, snap.Viewport().TextScaleFactor, "no state carried over")

	e.Reset()
	assert.False(t, e.Configured())
}

func TestMinimalTableEngine(t *testing.T) {
	e := New(WithTable(breakpoint.Minimal))
	s, err := e.Configure(Measurement{Width: 1440, Height: 900, DevicePixelRatio: 1})
	require.NoError(t, err)
	assert.Equal(t, breakpoint.Tablet, s.Category())
	assert.Equal(t, breakpoint.Size{Width: 960, Height: 600}, s.Base())
	assert.InDelta(t, 10*3.0, s.SmartWidth(10), 1e-9, "minimal table keeps the large reference")
}

func TestEvalByName(t *testing.T) {
	e := New()
	_, err := e.Configure(Measurement{Width: 375, Height: 812, DevicePixelRatio: 3, TextScale: 1})
	require.NoError(t, err)

	res, err := e.Eval("widthPercent", 50)
	require.NoError(t, err)
	assert.Equal(t, Result{Kind: KindNumber, Number: 187.5}, res)

	res, err = e.Eval("smartWidthScale", 10, 0.5, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Number)

	res, err = e.Eval("isPortrait")
	require.NoError(t, err)
	assert.True(t, res.Bool)

	_, err = e.Eval("widthScale")
	assert.Error(t, err)
	_, err = e.Eval("isPhone", 1)
	assert.Error(t, err)
	_, err = e.Eval("rem", 1)
	assert.Error(t, err)
}

func TestEvalRejectsInvertedSmartBounds(t *testing.T) {
	e := New()
	s, err := e.Configure(Measurement{Width: 375, Height: 812, DevicePixelRatio: 3, TextScale: 1})
	require.NoError(t, err)

	_, err = e.Eval("smartWidthScale", 10, 3, 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smartWidthScale")
	_, err = e.Eval("smartHeightScale", 10, 4)
	assert.Error(t, err, "min above the default max is inverted too")

	res, err := e.Eval("smartWidthScale", 10, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Number)

	// the Snapshot method keeps the plain clamp: lo wins
	assert.Equal(t, 30.0, s.SmartWidthScale(10, 3, 0.5))

	zero := New(WithUninitialized(Zero))
	_, err = zero.Eval("smartWidthScale", 10, 3, 0.5)
	assert.Error(t, err, "bounds are checked before the zero fallback")
}

func TestFuncsSorted(t *testing.T) {
	funcs := Funcs()
	require.NotEmpty(t, funcs)
	for i := 1; i < len(funcs); i++ {
		assert.Less(t, funcs[i-1].Name, funcs[i].Name)
	}
	f, ok := Lookup("fontScale")
	require.True(t, ok)
	assert.Equal(t, KindNumber, f.Kind)
}

func TestParseModes(t *testing.T) {
	m, err := ParseUninitializedMode("error")
	require.NoError(t, err)
	assert.Equal(t, Strict, m)
	m, err = ParseUninitializedMode("zero")
	require.NoError(t, err)
	assert.Equal(t, Zero, m)
	_, err = ParseUninitializedMode("panic")
	assert.ErrorIs(t, err, breakpoint.ErrConfiguration)

	u, err := ParsePhysicalUnits("standard")
	require.NoError(t, err)
	assert.Equal(t, StandardUnits, u)
	_, err = ParsePhysicalUnits("metric")
	assert.Error(t, err)
}
