package common

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCompareMoney(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"10.00", "9.99", 1},
		{"9.99", "10.00", -1},
		{"12.50", "12.50", 0},
		{"12.49", "12.50", -1},
		{"12.5", "12.50", 0},
		{"100", "99.9", 1},
	}
	for _, tc := range cases {
		got, err := CompareMoney(tc.a, tc.b)
		if err != nil {
			t.Fatalf("compare %s %s: %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Fatalf("compare %s %s = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}

	if _, err := CompareMoney("ten", "9.99"); !errors.Is(err, ErrMoneyFormat) {
		t.Fatalf("expected ErrMoneyFormat, got %v", err)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice("9.9", ""); got != "¥9.90" {
		t.Fatalf("single price: %q", got)
	}
	if got := FormatPrice("9.90", "9.9"); got != "¥9.90" {
		t.Fatalf("equal range: %q", got)
	}
	if got := FormatPrice("9.90", "19.90"); got != "¥9.90-19.90" {
		t.Fatalf("range: %q", got)
	}
	if got := FormatPrice("n/a", ""); got != "¥n/a" {
		t.Fatalf("malformed: %q", got)
	}
}

func TestPriceRange_FloatAmounts(t *testing.T) {
	got := PriceRange(MoneyFromFloat(0.1+0.2), MoneyFromFloat(120), MoneyFromFloat(9))
	if got != "¥0.30-120.00" {
		t.Fatalf("range: %q", got)
	}
	if PriceRange() != "¥0.00" {
		t.Fatalf("empty range: %q", PriceRange())
	}
	want, _ := decimal.NewFromString("12.50")
	if !MoneyFromFloat(12.499999).Equal(want) {
		t.Fatalf("expected rounding to cents")
	}
}
