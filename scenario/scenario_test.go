package scenario

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/papyrus-scale/dsl"
	"github.com/ByLCY/papyrus-scale/scale"
)

func evaluate(t *testing.T, src string, data any, opts Options) *Report {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(src))
	require.NoError(t, err, "解析场景失败")
	report, err := Evaluate(doc, data, opts)
	require.NoError(t, err)
	return report
}

func query(t *testing.T, r *Report, name string) Query {
	t.Helper()
	for _, q := range r.Queries {
		if q.Name == name {
			return q
		}
	}
	t.Fatalf("query %s not found", name)
	return Query{}
}

const phoneScenario = `
scenario Phone v1 {
  device {
    width: 375
    height: 812
    dpr: 3
    textScale: 1
  }
  queries {
    half widthPercent 50
    tenth heightPercent(10)
    phone isPhone
    tabletUp isTabletOrLarger
    pad resolve phone 8 large 24
    wide resolve xLarge widthScale(10)
  }
}
`

func TestEvaluatePhoneScenario(t *testing.T) {
	r := evaluate(t, phoneScenario, nil, Options{})

	assert.True(t, r.Configured)
	assert.Equal(t, "phone", r.Category)
	assert.Equal(t, "full", r.Table)
	assert.Equal(t, "strict", r.Mode)
	assert.Equal(t, 480.0, r.PPI)
	require.NotNil(t, r.Base)
	assert.Equal(t, 360.0, r.Base.Width)
	assert.True(t, r.Flags["isPhone"])
	assert.False(t, r.Flags["isTabletOrLarger"])
	assert.True(t, r.Flags["isPortrait"])
	assert.Len(t, r.Bands, 5)

	assert.Equal(t, 187.5, query(t, r, "half").Value)
	assert.InDelta(t, 81.2, query(t, r, "tenth").Value, 1e-9)
	assert.Equal(t, []float64{10}, query(t, r, "tenth").Args)
	assert.True(t, query(t, r, "phone").Bool)
	assert.Equal(t, "bool", query(t, r, "phone").Kind)
	assert.False(t, query(t, r, "tabletUp").Bool)

	pad := query(t, r, "pad")
	assert.Equal(t, 8.0, pad.Value)
	assert.Equal(t, "phone", pad.Picked)
	assert.Len(t, pad.Cands, 2)

	// only xLarge supplied: global ascending fallback evaluates widthScale(10) = 10 * 375/360
	wide := query(t, r, "wide")
	assert.Equal(t, "xLarge", wide.Picked)
	assert.InDelta(t, 10*375.0/360, wide.Value, 1e-9)
	assert.Zero(t, r.Failed())
}

func TestEvaluateTextScaleFromData(t *testing.T) {
	src := `
scenario Tablet v1 {
  device {
    width: "${screen.width}"
    height: 768
    dpr: 2
    textScale: "${screen.textScale|1}"
  }
  queries {
    body fontScale 16
    adaptive adaptiveScale 16
  }
}
`
	var data any
	require.NoError(t, json.Unmarshal([]byte(`{"screen":{"width":1024,"textScale":1.3}}`), &data))
	r := evaluate(t, src, data, Options{})

	require.NotNil(t, r.Viewport)
	assert.True(t, r.Viewport.SystemTextScale)
	assert.Equal(t, 1.3, r.Viewport.TextScaleFactor)
	assert.Equal(t, query(t, r, "adaptive").Value*1.3, query(t, r, "body").Value)
}

func TestEvaluateOptions(t *testing.T) {
	src := `
scenario Options v1 {
  device {
    width: 1440
    height: 900
    textScale: 1.2
  }
  options {
    table: minimal
    base: phone
    systemTextScale: false
    units: standard
  }
  queries {
    inch cm 2.54
    w widthScale 10
  }
}
`
	r := evaluate(t, src, nil, Options{})
	assert.Equal(t, "minimal", r.Table)
	assert.Equal(t, "tablet", r.Category)
	assert.Equal(t, "standard", r.Units)
	require.NotNil(t, r.Base)
	assert.Equal(t, 640.0, r.Base.Width, "phone base reoriented to landscape")
	assert.False(t, r.Viewport.SystemTextScale)
	assert.Equal(t, 1.0, r.Viewport.DevicePixelRatio, "missing dpr defaults to 1")
	assert.InDelta(t, 160.0, query(t, r, "inch").Value, 1e-9)
	assert.InDelta(t, 10*1440.0/640, query(t, r, "w").Value, 1e-9)
	assert.Len(t, r.Bands, 2)
}

const unconfiguredScenario = `
scenario Bare v1 {
  options {
    uninitialized: %s
  }
  queries {
    w widthScale 10
    p isPhone
    pad resolve phone 4
  }
}
`

func TestEvaluateWithoutDeviceStrict(t *testing.T) {
	r := evaluate(t, strings.Replace(unconfiguredScenario, "%s", "strict", 1), nil, Options{})
	assert.False(t, r.Configured)
	assert.Nil(t, r.Viewport)
	assert.Equal(t, 3, r.Failed())
	assert.Contains(t, query(t, r, "w").Error, scale.ErrUninitialized.Error())
}

func TestEvaluateWithoutDeviceZero(t *testing.T) {
	r := evaluate(t, strings.Replace(unconfiguredScenario, "%s", "zero", 1), nil, Options{})
	assert.False(t, r.Configured)
	assert.Zero(t, r.Failed())
	assert.Zero(t, query(t, r, "w").Value)
	assert.False(t, query(t, r, "p").Bool)
	assert.Equal(t, 4.0, query(t, r, "pad").Value)
}

func TestEvaluateDeviceOverride(t *testing.T) {
	m := scale.Measurement{Width: 2560, Height: 1440, DevicePixelRatio: 1}
	r := evaluate(t, phoneScenario, nil, Options{Device: &m, DeviceName: "desktop"})
	assert.Equal(t, "desktop", r.Source)
	assert.Equal(t, "xxLarge", r.Category)
	assert.Equal(t, 1280.0, query(t, r, "half").Value)
	assert.Equal(t, 24.0, query(t, r, "pad").Value)
	assert.Equal(t, "large", query(t, r, "pad").Picked)
}

func TestEvaluateResolveBlock(t *testing.T) {
	src := `
scenario Block v1 {
  device {
    width: 700
    height: 1000
  }
  queries {
    gap resolve {
      phone: 4
      tablet: widthPercent(2)
    }
  }
}
`
	r := evaluate(t, src, nil, Options{})
	gap := query(t, r, "gap")
	assert.Equal(t, "tablet", gap.Picked)
	assert.Equal(t, 14.0, gap.Value)
	assert.Equal(t, "widthPercent ( 2 )", gap.Cands[1].Expr)
}

func TestEvaluateErrors(t *testing.T) {
	cases := map[string]string{
		"unknown function": "scenario E {\n queries {\n  a rem 1\n }\n}\n",
		"bad arity":        "scenario E {\n device {\n  width: 1\n  height: 1\n }\n queries {\n  a widthScale\n }\n}\n",
		"empty resolve":    "scenario E {\n device {\n  width: 1\n  height: 1\n }\n queries {\n  a resolve\n }\n}\n",
		"duplicate cat":    "scenario E {\n queries {\n  a resolve phone 1 phone 2\n }\n}\n",
		"bool candidate":   "scenario E {\n device {\n  width: 1\n  height: 1\n }\n queries {\n  a resolve phone isPhone\n }\n}\n",
		"unknown option":   "scenario E {\n options {\n  colour: red\n }\n}\n",
		"bad base":         "scenario E {\n options {\n  table: minimal\n  base: xxLarge\n }\n}\n",
		"missing height":   "scenario E {\n device {\n  width: 10\n }\n}\n",
		"zero base":        "scenario E {\n device {\n  width: 10\n  height: 10\n }\n options {\n  base: [0, 10]\n }\n}\n",
		"assignment query": "scenario E {\n queries {\n  a: 1\n }\n}\n",
		"inverted clamp":   "scenario E {\n device {\n  width: 400\n  height: 800\n }\n queries {\n  a smartWidthScale 10 3 0.5\n }\n}\n",
		"missing data":     "scenario E {\n device {\n  width: \"${w}\"\n  height: 10\n }\n}\n",
	}
	for name, src := range cases {
		doc, err := dsl.ParseString(src)
		require.NoError(t, err, name)
		_, err = Evaluate(doc, nil, Options{})
		assert.Error(t, err, name)
	}
}

func TestQueryFormatting(t *testing.T) {
	r := evaluate(t, phoneScenario, nil, Options{})
	tenth := query(t, r, "tenth")
	assert.Equal(t, "heightPercent(10)", tenth.Call())
	assert.Equal(t, "81.2", tenth.Result())
	assert.Empty(t, tenth.Note())

	pad := query(t, r, "pad")
	assert.Equal(t, "resolve phone: 8, large: 24", pad.Call())
	assert.Equal(t, "picked phone", pad.Note())
	assert.Equal(t, "true", query(t, r, "phone").Result())

	failed := Query{Func: "widthScale", Args: []float64{1.5}, Kind: "number", Error: "boom"}
	assert.Equal(t, "-", failed.Result())
	assert.Equal(t, "boom", failed.Note())

	assert.Equal(t, "1.0417", FormatNumber(375.0/360))
	assert.Equal(t, "-3", FormatNumber(-3))
	assert.Equal(t, "+Inf", FormatNumber(math.Inf(1)))
}

func TestEvaluateBaseCategoryIgnoresOptionOrder(t *testing.T) {
	const device = " device {\n  width: 800\n  height: 1280\n }\n"
	orders := map[string]string{
		"table first": " options {\n  table: minimal\n  base: %s\n }\n",
		"base first":  " options {\n  base: %s\n  table: minimal\n }\n",
	}
	for name, opts := range orders {
		r := evaluate(t, "scenario B {\n"+device+strings.Replace(opts, "%s", "tablet", 1)+"}\n", nil, Options{})
		assert.Equal(t, "minimal", r.Table, name)
		require.NotNil(t, r.Base, name)
		assert.Equal(t, 600.0, r.Base.Width, name)
		assert.Equal(t, 960.0, r.Base.Height, name)

		doc, err := dsl.ParseString("scenario B {\n" + device + strings.Replace(opts, "%s", "large", 1) + "}\n")
		require.NoError(t, err, name)
		_, err = Evaluate(doc, nil, Options{})
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "minimal", name)
	}
}
