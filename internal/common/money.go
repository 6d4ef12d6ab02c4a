package common

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrMoneyFormat = errors.New("money: malformed amount")

// ParseMoney reads a decimal amount such as "12.5" or "12.50".
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(ErrMoneyFormat, "%q", s)
	}
	return d, nil
}

// MoneyFromFloat converts a wire amount, rounding to cents.
func MoneyFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// CompareMoney compares two decimal amounts without going through float64.
func CompareMoney(a, b string) (int, error) {
	da, err := ParseMoney(a)
	if err != nil {
		return 0, err
	}
	db, err := ParseMoney(b)
	if err != nil {
		return 0, err
	}
	return da.Cmp(db), nil
}

// PriceRange renders the lowest and highest of amounts as "¥lo" or "¥lo-hi".
func PriceRange(amounts ...decimal.Decimal) string {
	if len(amounts) == 0 {
		return "¥0.00"
	}
	lo, hi := amounts[0], amounts[0]
	for _, a := range amounts[1:] {
		if a.Cmp(lo) < 0 {
			lo = a
		}
		if a.Cmp(hi) > 0 {
			hi = a
		}
	}
	if lo.Equal(hi) {
		return "¥" + lo.StringFixed(2)
	}
	return "¥" + lo.StringFixed(2) + "-" + hi.StringFixed(2)
}

// FormatPrice renders a single price or a "min-max" range from string amounts.
// Malformed input is shown as given.
func FormatPrice(minPrice, maxPrice string) string {
	lo, err := ParseMoney(minPrice)
	if err != nil {
		return "¥" + minPrice
	}
	if maxPrice == "" {
		return PriceRange(lo)
	}
	hi, err := ParseMoney(maxPrice)
	if err != nil {
		return PriceRange(lo)
	}
	return PriceRange(lo, hi)
}
