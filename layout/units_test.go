package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
	for _, px := range samples {
		mm := px * PxToMm
		back := mm * MmToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→mm→px 往返误差过大: in=%gpx mm=%g back=%g diff=%g", px, mm, back, diff)
		}
	}
}

// TestLengthToPX 覆盖常见单位到 px 的转换。
func TestLengthToPX(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"200", 200},
		{"35px", 35},
		{"12pt", 16},
		{"1in", 96},
		{"2.54cm", 96},
		{"25.4mm", 96},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.in, err)
		}
		if got := l.ToPX(); math.Abs(got-c.want) > 1e-6 {
			t.Fatalf("%q 转 px 期望 %g，实际 %g", c.in, c.want, got)
		}
	}
}

func TestParseLengthRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "px", "abc", "12zz"} {
		if _, err := ParseLength(in); err == nil {
			t.Fatalf("期望 %q 解析失败", in)
		}
	}
	l, _ := ParseLength("3PT")
	if UnitToString(l.Unit) != "pt" {
		t.Fatalf("单位应大小写无关，实际 %q", UnitToString(l.Unit))
	}
}
