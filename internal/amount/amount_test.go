package amount

import (
	"math/big"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		value    *big.Int
		decimals uint8
		want     string
	}{
		{big.NewInt(1_000_000_000_000_000_000), 18, "1"},
		{big.NewInt(1_500_000), 6, "1.5"},
		{big.NewInt(123), 0, "123"},
		{big.NewInt(-25), 1, "-2.5"},
		{nil, 18, "0"},
	}
	for _, tc := range cases {
		if got := Format(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("Format(%v, %d) = %s, want %s", tc.value, tc.decimals, got, tc.want)
		}
	}
}

func TestProbability(t *testing.T) {
	price, _ := new(big.Int).SetString("654321000000000000", 10)
	if got := Probability(price); got != 0.654 {
		t.Fatalf("probability mismatch: %v", got)
	}
	if got := Round(0.6665, 3); got != 0.667 {
		t.Fatalf("round mismatch: %v", got)
	}
}
