package breakpoint

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := map[float64]Category{
		-10:     Phone,
		0:       Phone,
		375:     Phone,
		599.999: Phone,
		600:     Tablet,
		959:     Tablet,
		960:     Large,
		1279:    Large,
		1280:    XLarge,
		1919.5:  XLarge,
		1920:    XXLarge,
		10000:   XXLarge,
	}
	for width, want := range tests {
		assert.Equal(t, want, Classify(width), "width %g", width)
	}
}

func TestClassifyPartitionsWidthAxis(t *testing.T) {
	bands := Full.Bands()
	require.Len(t, bands, 5)
	for w := 0.0; w <= 5000; w += 0.5 {
		matches := 0
		for _, b := range bands {
			if b.Contains(w) {
				matches++
				assert.Equal(t, b.Category, Classify(w), "width %g", w)
			}
		}
		require.Equal(t, 1, matches, "width %g must be in exactly one band", w)
	}
	for i := 1; i < len(bands); i++ {
		assert.Equal(t, bands[i-1].Max, bands[i].Min, "gap between %v and %v", bands[i-1].Category, bands[i].Category)
	}
	assert.True(t, math.IsInf(bands[len(bands)-1].Max, 1))
}

func TestMinimalTable(t *testing.T) {
	assert.Equal(t, Phone, Minimal.Classify(599))
	assert.Equal(t, Tablet, Minimal.Classify(600))
	assert.Equal(t, Tablet, Minimal.Classify(2500))

	_, ok := Minimal.BaseSize(Large)
	assert.False(t, ok)
	size, ok := Minimal.BaseSize(Tablet)
	require.True(t, ok)
	assert.Equal(t, Size{600, 960}, size)
}

func TestDefaultBaseSize(t *testing.T) {
	assert.Equal(t, Size{360, 640}, DefaultBaseSize(Phone))
	assert.Equal(t, Size{600, 960}, DefaultBaseSize(Tablet))
	assert.Equal(t, Size{1024, 768}, DefaultBaseSize(Large))
	assert.Equal(t, Size{1280, 800}, DefaultBaseSize(XLarge))
	assert.Equal(t, Size{1920, 1080}, DefaultBaseSize(XXLarge))
}

func TestSizeOriented(t *testing.T) {
	portrait := Size{360, 640}
	assert.Equal(t, portrait, portrait.Oriented(false))
	assert.Equal(t, Size{640, 360}, portrait.Oriented(true))
	square := Size{500, 500}
	assert.Equal(t, square, square.Oriented(false))
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseCategory("XXLARGE")
	require.NoError(t, err)
	assert.Equal(t, XXLarge, got)

	_, err = ParseCategory("watch")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLookupTable(t *testing.T) {
	tbl, err := LookupTable("")
	require.NoError(t, err)
	assert.Same(t, Full, tbl)
	tbl, err = LookupTable("Minimal")
	require.NoError(t, err)
	assert.Same(t, Minimal, tbl)
	_, err = LookupTable("huge")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBandJSONWritesNullForUnboundedMax(t *testing.T) {
	data, err := json.Marshal(Minimal.Bands())
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"category":"phone","min":0,"max":600,"base":{"width":360,"height":640}},
		{"category":"tablet","min":600,"max":null,"base":{"width":600,"height":960}}
	]`, string(data))
}

func TestResolveNearestBelow(t *testing.T) {
	c := Candidates[string]{Phone: Value("p"), Large: Value("l")}
	tests := map[float64]string{
		100:  "p",
		700:  "p", // tablet absent, falls to phone
		1000: "l",
		1500: "l", // xLarge absent, falls to large
		3000: "l",
	}
	for width, want := range tests {
		got, err := Resolve(width, c)
		require.NoError(t, err)
		assert.Equal(t, want, got, "width %g", width)
	}
}

func TestResolveGlobalAscendingFallback(t *testing.T) {
	c := Candidates[float64]{Tablet: Value(42.0)}
	for _, width := range []float64{0, 50, 599, 600, 1000, 5000} {
		got, err := Resolve(width, c)
		require.NoError(t, err, "width %g", width)
		assert.Equal(t, 42.0, got, "width %g", width)
	}

	// Nothing at or below phone: smallest supplied category wins, not the closest.
	c = Candidates[float64]{Large: Value(1.0), XXLarge: Value(2.0)}
	got, err := Resolve(10, c)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestResolveWithMinimalTable(t *testing.T) {
	c := Candidates[int]{Phone: Value(1), XLarge: Value(4)}
	got, err := ResolveWith(Minimal, 1500, c)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "minimal table never classifies above tablet")
}

func TestResolveWithoutCandidates(t *testing.T) {
	for _, width := range []float64{0, 600, 1920, 1e6} {
		_, err := Resolve(width, Candidates[int]{})
		require.Error(t, err)
		var cfgErr *ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
		assert.ErrorIs(t, err, ErrConfiguration)
	}
}

func TestResolveOnlyCallsSelectedProducer(t *testing.T) {
	calls := 0
	c := Candidates[int]{
		Phone:  func() int { calls++; return 1 },
		Tablet: func() int { calls += 10; return 2 },
	}
	got, err := Resolve(800, c)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, 10, calls)
}
