package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 9, 12, 72, 160, 1000}
	for _, pt := range samples {
		back := Length{Value: Length{Value: pt, Unit: UnitPT}.ToMM(), Unit: UnitMM}.ToPT()
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestLengthToConversions 覆盖 Length 在常见单位上的转换正确性（到 mm/pt）。
func TestLengthToConversions(t *testing.T) {
	cases := []struct {
		in   Length
		want float64
	}{
		{Length{Value: 1, Unit: UnitIN}, 25.4},
		{Length{Value: 2.54, Unit: UnitCM}, 25.4},
		{Length{Value: 12, Unit: UnitPT}, 12 * PtToMm},
		{Length{Value: 160, Unit: UnitDP}, 25.4},
		{Length{Value: 7, Unit: UnitNone}, 7},
	}
	for _, c := range cases {
		if got := c.in.ToMM(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%s 转 mm 期望 %g，实际 %g", c.in, c.want, got)
		}
	}
	if got := (Length{Value: 10, Unit: UnitMM}).ToPT(); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10mm 转 pt 期望 %g，实际 %g", 10*MmToPt, got)
	}
}

func TestParseRawLengthStr(t *testing.T) {
	cases := map[string]Length{
		"9pt":     {Value: 9, Unit: UnitPT},
		" 3.5MM ": {Value: 3.5, Unit: UnitMM},
		"48dp":    {Value: 48, Unit: UnitDP},
		"1.2":     {Value: 1.2, Unit: UnitNone},
		"abc":     {},
		"":        {},
	}
	for in, want := range cases {
		if got := ParseRawLengthStr(in); got != want {
			t.Fatalf("ParseRawLengthStr(%q) = %+v，期望 %+v", in, got, want)
		}
	}
	if s := (Length{Value: 9, Unit: UnitPT}).String(); s != "9pt" {
		t.Fatalf("unexpected String: %s", s)
	}
}

// TestLineHeightResolve 验证行高解析：倍数与绝对值两种语义在目标单位（mm）下的解析结果。
func TestLineHeightResolve(t *testing.T) {
	fontSizePT := Length{Value: 12, Unit: UnitPT}
	lhFactor := LineHeightSpec{Kind: LineHeightFactor, Factor: 1.2}
	if got, want := lhFactor.Resolve(fontSizePT, UnitMM), 12*1.2*PtToMm; math.Abs(got-want) > 1e-9 {
		t.Fatalf("1.2x 解析为 mm 错误: got=%g want=%g", got, want)
	}
	lhAbs := LineHeightSpec{Kind: LineHeightAbsolute, Len: Length{Value: 6, Unit: UnitMM}}
	if got := lhAbs.Resolve(fontSizePT, UnitMM); math.Abs(got-6) > 1e-9 {
		t.Fatalf("6mm 行高解析为 mm 错误: got=%g", got)
	}
}
