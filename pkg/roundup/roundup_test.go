package roundup

import (
	"testing"

	"github.com/rounduppay/core/pkg/money"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		want   string
	}{
		{"S1 fractional", 1.23, "0.77"},
		{"S2 whole positive", 4.00, "1.00"},
		{"S3 negative", -5.50, "0.00"},
		{"zero", 0.00, "0.00"},
		{"small fraction", 0.01, "0.99"},
		{"already a cent under whole", 9.99, "0.01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cents, err := money.FromFloat(tc.amount)
			if err != nil {
				t.Fatalf("FromFloat(%v): %v", tc.amount, err)
			}
			got := Compute(cents)
			if got.String() != tc.want {
				t.Errorf("Compute(%v) = %s, want %s", tc.amount, got.String(), tc.want)
			}
		})
	}
}

func TestCompute_NonNegative(t *testing.T) {
	for _, amount := range []float64{-100, -0.01, 0, 0.5, 12345.67} {
		cents, err := money.FromFloat(amount)
		if err != nil {
			t.Fatalf("FromFloat(%v): %v", amount, err)
		}
		if Compute(cents) < 0 {
			t.Errorf("Compute(%v) produced a negative round-up", amount)
		}
	}
}
