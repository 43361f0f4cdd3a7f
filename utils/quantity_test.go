package utils

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{"12.5", "12.5"},
		{"12-990", "12.99"},
		{"0-500", "0.5"},
		{"1-001", "1.001"},
		{"1,200", "1200"},
		{"  5  ", "5"},
	}
	for _, tc := range cases {
		got, err := ParseQuantity(tc.in)
		if err != nil {
			t.Errorf("ParseQuantity(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("ParseQuantity(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseQuantityRejects(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"0",
		"-3",
		"abc",
		"12-1500", // subunit at or above scale is an error, not a carry
		"12-1000",
		"12-abc",
		"0-0",
	}
	for _, in := range cases {
		if _, err := ParseQuantity(in); !errors.Is(err, ErrorParse) {
			t.Errorf("ParseQuantity(%q) = %v, want ErrorParse", in, err)
		}
	}
}

func TestCompoundQtyDecimal(t *testing.T) {
	q := CompoundQty{Whole: 12, Subunit: 990}
	if got := q.Decimal(); !got.Equal(decimal.RequireFromString("12.99")) {
		t.Fatalf("Decimal() = %s, want 12.99", got)
	}
	if got := q.String(); got != "12-990" {
		t.Fatalf("String() = %q, want 12-990", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.99", "12-990"},
		{"5", "5-000"},
		{"0.5", "0-500"},
		{"2.9999", "3-000"}, // subunit rounding carries into the whole part
	}
	for _, tc := range cases {
		got := FormatQuantity(decimal.RequireFromString(tc.in))
		if got != tc.want {
			t.Errorf("FormatQuantity(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
