// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents so that sums are exact and independent of
// iteration order. Decimal arithmetic for parsing, ratios and display goes
// through shopspring/decimal.
package core

import (
	"bytes"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Cents builds a Money value.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// FromDecimal converts a decimal amount to cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// CheckedFromDecimal is FromDecimal for untrusted input. Amounts whose cents
// do not fit in an int64 return ErrInvalidAmount.
func CheckedFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Returns ErrInvalidAmount for
// invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil || strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	m, err := CheckedFromDecimal(d)
	if err != nil || m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals and no symbol.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the amount in currency units for display purposes only.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Mul scales the amount by f, rounding to the nearest cent.
func (m Money) Mul(f decimal.Decimal) Money {
	return FromDecimal(m.Decimal().Mul(f))
}

// Div divides the amount by n, rounding to the nearest cent. Zero when n <= 0.
func (m Money) Div(n int) Money {
	if n <= 0 {
		return Money{}
	}
	return FromDecimal(m.Decimal().Div(decimal.NewFromInt(int64(n))))
}

// Percent returns m as a percentage of of. Zero when of is not positive.
func (m Money) Percent(of Money) float64 {
	if of.Cents <= 0 {
		return 0
	}
	return decimal.NewFromInt(m.Cents).
		Div(decimal.NewFromInt(of.Cents)).
		Mul(hundred).
		InexactFloat64()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return ErrInvalidAmount
	}
	parsed, err := CheckedFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Currency is passed explicitly to everything that formats amounts.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

var (
	USD = Currency{Code: "USD", Symbol: "$"}
	EUR = Currency{Code: "EUR", Symbol: "€"}
	GBP = Currency{Code: "GBP", Symbol: "£"}
	INR = Currency{Code: "INR", Symbol: "₹"}
	JPY = Currency{Code: "JPY", Symbol: "¥"}
	CAD = Currency{Code: "CAD", Symbol: "C$"}
	AUD = Currency{Code: "AUD", Symbol: "A$"}
)

// Currencies lists the supported display currencies.
var Currencies = []Currency{USD, EUR, GBP, INR, JPY, CAD, AUD}

// LookupCurrency finds a supported currency by ISO code, case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// Format renders m with the currency symbol and thousands grouping, e.g. "$1,234.50".
func (c Currency) Format(m Money) string {
	sign := ""
	if m.Cents < 0 {
		sign = "-"
		m.Cents = -m.Cents
	}
	return sign + c.Symbol + humanize.FormatFloat("#,###.##", m.Float())
}
