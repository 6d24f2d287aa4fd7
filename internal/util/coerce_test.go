package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"menuboard/internal"
)

func TestCoerceYesNo(t *testing.T) {
	for _, in := range []string{"si", "Sí", " SI ", "s", "yes", "Y", "1", "TRUE"} {
		assert.True(t, CoerceYesNo(in), in)
	}
	for _, in := range []string{"", "  ", "no", "0", "false", "ok", "sip", "日本"} {
		assert.False(t, CoerceYesNo(in), in)
	}
}

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"3", 3},
		{" 12,5 ", 12.5},
		{"1.25", 1.25},
		{"", 999},
		{"   ", 999},
		{"abc", 999},
		{"Inf", 999},
		{"NaN", 999},
		{"ñ", 999},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CoerceNumber(tc.in, 999), tc.in)
	}
	assert.True(t, math.IsNaN(CoerceNumber("x", math.NaN())))
}

func TestCoerceMoneyText(t *testing.T) {
	assert.Equal(t, "", CoerceMoneyText(""))
	assert.Equal(t, "", CoerceMoneyText("   "))
	assert.Equal(t, "$ 400", CoerceMoneyText("400"))
	assert.Equal(t, "$ 400", CoerceMoneyText(" $400 "))
	assert.Equal(t, "2x1", CoerceMoneyText(" 2x1 "))
	assert.Equal(t, "DESDE 500", CoerceMoneyText("DESDE 500"))
	assert.Equal(t, "--", CoerceMoneyText("--"))
	assert.Equal(t, "100 - 200", CoerceMoneyText("100 - 200"))
}

func TestCoerceMoneyTextThousands(t *testing.T) {
	assert.Equal(t, CoerceMoneyText("1500"), CoerceMoneyText("1.500"))
	assert.Equal(t, CoerceMoneyText("12.5"), CoerceMoneyText("12,50"))
	assert.NotEqual(t, CoerceMoneyText("1500"), CoerceMoneyText("1.5"))
	assert.Equal(t, "$ "+defaultMoney.Format(2.125), CoerceMoneyText("2.1250"))
}

func TestMoneyFormatterPrefix(t *testing.T) {
	f := NewMoneyFormatter("not a locale", "ARS ")
	assert.Equal(t, "ARS 75", f.Text("75"))
}

func TestCoercePromotionFlag(t *testing.T) {
	assert.True(t, CoercePromotionFlag("sí", internal.PromoAffirmativeWord))
	assert.False(t, CoercePromotionFlag("3x2", internal.PromoAffirmativeWord))
	assert.False(t, CoercePromotionFlag("", internal.PromoAffirmativeWord))

	assert.True(t, CoercePromotionFlag("3x2", internal.PromoNonEmptyNonZero))
	assert.True(t, CoercePromotionFlag("sí", internal.PromoNonEmptyNonZero))
	assert.False(t, CoercePromotionFlag(" 0 ", internal.PromoNonEmptyNonZero))
	assert.False(t, CoercePromotionFlag(" ", internal.PromoNonEmptyNonZero))
}

func TestCoercionIsTotal(t *testing.T) {
	inputs := []string{"", " ", "\t\n", "é", "🍕", "1,2,3", "$", "--1", "1e400", "\x00"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_ = CoerceYesNo(in)
			n := CoerceNumber(in, 7)
			assert.False(t, math.IsNaN(n), in)
			_ = CoerceMoneyText(in)
		}, in)
	}
}

func TestShowsPrice(t *testing.T) {
	assert.True(t, ShowsPrice("$ 1.500"))
	assert.True(t, ShowsPrice("2x1"))
	assert.False(t, ShowsPrice("$ 0"))
	assert.False(t, ShowsPrice(""))

	n, ok := ParseAmount("$ 1.500,50")
	assert.True(t, ok)
	assert.Equal(t, 1500.5, n)
}
