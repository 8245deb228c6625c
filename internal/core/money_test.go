package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.5", 50, false},
		{".5", 50, false},
		{"12.345", 1235, false},
		{"12.346", 1235, false},
		{"12.344", 1234, false},
		{"1.234,56", 123456, false},
		{"1,234.56", 123456, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"12x", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDecimalString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{50, "0.50"},
		{0, "0.00"},
		{100000, "1000.00"},
		{-1234, "-12.34"},
		{5, "0.05"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).DecimalString(); got != tt.want {
			t.Errorf("Money{%d}.DecimalString() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345, 999999} {
		s := Money{Cents: cents}.DecimalString()
		got, err := ParseDecimalToCents(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got != cents {
			t.Errorf("round trip %d -> %q -> %d", cents, s, got)
		}
	}
}
