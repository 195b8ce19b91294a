package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"integer", "100", "100", false},
		{"stellar precision", "100.0000000", "100", false},
		{"smallest unit", "0.0000001", "0.0000001", false},
		{"large number", "922337203685.4775807", "922337203685.4775807", false},
		{"negative", "-5.5", "-5.5", false},
		{"empty", "", "", true},
		{"whitespace", "  ", "", true},
		{"garbage", "12abc", "", true},
		{"exponent", "1e3", "", true},
		{"explicit plus", "+5", "", true},
		{"leading dot", ".5", "", true},
		{"trailing dot", "5.", "", true},
		{"surrounding spaces", " 5 ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedInput) {
					t.Fatalf("ParseAmount(%q) error = %v, want ErrMalformedInput", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid decimal", "3.14", "3.14"},
		{"empty string", "", "0"},
		{"invalid string", "abc", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeParse(tt.input)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("SafeParse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestStroopConversion(t *testing.T) {
	one := decimal.RequireFromString("0.0000001")
	if !ToStroops(one).Equal(decimal.NewFromInt(1)) {
		t.Errorf("ToStroops(0.0000001) = %s, want 1", ToStroops(one))
	}
	if !ToStroops(decimal.NewFromInt(3)).Equal(decimal.NewFromInt(30000000)) {
		t.Errorf("ToStroops(3) = %s", ToStroops(decimal.NewFromInt(3)))
	}
	if !FromStroops(decimal.NewFromInt(25)).Equal(decimal.RequireFromString("0.0000025")) {
		t.Errorf("FromStroops(25) = %s", FromStroops(decimal.NewFromInt(25)))
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"99.0000000", "99"},
		{"44.5", "44.5"},
		{"1.23456789", "1.2345679"},
		{"-3.5", "-3.5"},
		{"0", "0"},
		{"-0.00000001", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatAmount(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplayAmount(t *testing.T) {
	d := decimal.RequireFromString("0.0000042")
	if got := DisplayAmount(d, true); got != "42" {
		t.Errorf("DisplayAmount(stroops) = %q, want 42", got)
	}
	if got := DisplayAmount(d, false); got != "0.0000042" {
		t.Errorf("DisplayAmount(face) = %q, want 0.0000042", got)
	}
}
