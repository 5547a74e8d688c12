package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmountCents(t *testing.T) {
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
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
		{"92233720368547759", 0, false}, // would overflow when scaled to cents
		{"92233720368547758.07", math.MaxInt64, true}, // exactly the top of the range
		{"92233720368547758.08", 0, false}, // one cent past it
		{"92233720368547758.99", 0, false}, // whole units fit, cents wrap
		{"92233720368547758.075", 0, false}, // rounding pushes it past the top
	}
	for _, tc := range cases {
		got, err := ParseAmountCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got)
			}
		}
	}
}

func TestParseAmountCentsNeverNegative(t *testing.T) {
	// Inputs near the int64 ceiling must either parse to their exact cent
	// value or fail; a silent wrap to a negative amount is never acceptable.
	for _, in := range []string{
		"92233720368547757.99",
		"92233720368547758",
		"92233720368547758.07",
		"92233720368547758.08",
		"92233720368547758.99",
		"92233720368547759.00",
		"99999999999999999999",
	} {
		got, err := ParseAmountCents(in)
		if err == nil && got < 0 {
			t.Fatalf("%q parsed to negative %d", in, got)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{1234, "12.34"},
		{200000, "2000.00"},
		{-1234, "-12.34"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.in); got != tc.out {
			t.Fatalf("FormatCents(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestAddCents(t *testing.T) {
	if got, err := AddCents(500, 1200); err != nil || got != 1700 {
		t.Fatalf("expected 1700, got %d (err=%v)", got, err)
	}

	if _, err := AddCents(math.MaxInt64, 1); !errors.Is(err, ErrAggregationOverflow) {
		t.Fatalf("expected ErrAggregationOverflow, got %v", err)
	}
	if _, err := AddCents(math.MinInt64, -1); !errors.Is(err, ErrAggregationOverflow) {
		t.Fatalf("expected ErrAggregationOverflow, got %v", err)
	}
	if got, err := AddCents(math.MaxInt64, 0); err != nil || got != math.MaxInt64 {
		t.Fatalf("adding zero must not overflow, got %d (err=%v)", got, err)
	}
}
