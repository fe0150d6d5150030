package utils

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	valid := map[string]string{
		"15550100123":         "15550100123",
		"+1 (555) 010-0123":   "15550100123",
		"  +1.555.010.0123  ": "15550100123",
		"0015550100123":       "15550100123",
		"08031234567":         "08031234567",
		"+2348031234567":      "2348031234567",
	}
	for raw, want := range valid {
		got, err := NormalizePhone(raw)
		if err != nil {
			t.Errorf("NormalizePhone(%q) error: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", raw, got, want)
		}
	}

	t.Run("empty", func(t *testing.T) {
		for _, raw := range []string{"", "   "} {
			if _, err := NormalizePhone(raw); !errors.Is(err, ErrEmptyPhone) {
				t.Errorf("NormalizePhone(%q) error = %v, want ErrEmptyPhone", raw, err)
			}
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		for _, raw := range []string{"123", "abc", "+1234567890123456"} {
			if _, err := NormalizePhone(raw); !errors.Is(err, ErrInvalidPhone) {
				t.Errorf("NormalizePhone(%q) error = %v, want ErrInvalidPhone", raw, err)
			}
		}
	})
}

func TestMaskMSISDN(t *testing.T) {
	if got := MaskMSISDN("15550100123"); got != "155*****123" {
		t.Errorf("got %q", got)
	}
	if got := MaskMSISDN("12345"); got != "***" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeWeight(t *testing.T) {
	cases := map[float64]float64{
		12.5: 0.125,
		100:  1,
		150:  1,
		0:    0,
		-5:   0,
	}
	for in, want := range cases {
		if got := NormalizeWeight(in); math.Abs(got-want) > 1e-12 {
			t.Errorf("NormalizeWeight(%v) = %v, want %v", in, got, want)
		}
	}
	if got := NormalizeWeight(math.NaN()); got != 0 {
		t.Errorf("NormalizeWeight(NaN) = %v, want 0", got)
	}
}
