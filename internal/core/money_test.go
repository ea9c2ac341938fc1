package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.345", 1235, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"1e3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"92233720368547758.07", 9223372036854775807, true},
		{"92233720368547758.08", 0, false},
		{"184467440737095516.17", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%q expected validation error, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyPercent(t *testing.T) {
	tests := []struct {
		name  string
		spent Money
		of    Money
		want  float64
	}{
		{"eighty percent", Cents(40000), Cents(50000), 80},
		{"over", Cents(60000), Cents(50000), 120},
		{"zero base", Cents(60000), Cents(0), 0},
		{"negative base", Cents(100), Cents(-100), 0},
		{"nothing spent", Cents(0), Cents(100), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spent.Percent(tt.of); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	if got := Cents(1000).Div(3); got.Cents != 333 {
		t.Errorf("Div(3) = %d, want 333", got.Cents)
	}
	if got := Cents(1000).Div(0); got.Cents != 0 {
		t.Errorf("Div(0) = %d, want 0", got.Cents)
	}
	if got := Cents(400000).Mul(decimal.RequireFromString("0.25")); got.Cents != 100000 {
		t.Errorf("Mul(0.25) = %d, want 100000", got.Cents)
	}
	if got := Cents(1250).String(); got != "12.50" {
		t.Errorf("String() = %q, want 12.50", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12.5, "b": "3.456"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Cents != 1250 || v.B.Cents != 346 {
		t.Fatalf("got %d/%d, want 1250/346", v.A.Cents, v.B.Cents)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":12.50,"b":3.46}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestMoneyJSONRejectsOverflow(t *testing.T) {
	for _, in := range []string{`"184467440737095516.17"`, `184467440737095516.17`, `-92233720368547758.09`} {
		var m Money
		err := json.Unmarshal([]byte(in), &m)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v (cents=%d)", in, err, m.Cents)
		}
		if m.Cents != 0 {
			t.Fatalf("%s: money changed to %d", in, m.Cents)
		}
	}
}

func TestCurrencyFormat(t *testing.T) {
	tests := []struct {
		cur  Currency
		m    Money
		want string
	}{
		{USD, Cents(123450), "$1,234.50"},
		{EUR, Cents(5), "€0.05"},
		{INR, Cents(-2500), "-₹25.00"},
		{USD, Cents(0), "$0.00"},
	}
	for _, tt := range tests {
		if got := tt.cur.Format(tt.m); got != tt.want {
			t.Errorf("%s.Format(%d) = %q, want %q", tt.cur.Code, tt.m.Cents, got, tt.want)
		}
	}
}

func TestLookupCurrency(t *testing.T) {
	if c, ok := LookupCurrency(" gbp "); !ok || c != GBP {
		t.Fatalf("LookupCurrency(gbp) = %v, %v", c, ok)
	}
	if _, ok := LookupCurrency("XXX"); ok {
		t.Fatalf("expected unknown currency")
	}
}
