package trading

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFloorToPrecision(t *testing.T) {
	cases := []struct {
		in        string
		precision int
		want      string
	}{
		{"0.5994", 2, "0.59"},
		{"0.6", 2, "0.6"},
		{"0.999999", 0, "0"},
		{"123.456789", 4, "123.4567"},
		{"0.1", 1, "0.1"},
		{"0.30000000000000004", 1, "0.3"},
		{"42", 3, "42"},
	}
	for _, tc := range cases {
		got := FloorToPrecision(dec(tc.in), tc.precision)
		assert.True(t, got.Equal(dec(tc.want)), "floor(%s, %d) = %s, want %s", tc.in, tc.precision, got, tc.want)
	}
}

func TestFloorToPrecisionNeverRoundsUp(t *testing.T) {
	inputs := []string{"0.019", "1.999", "0.5994", "7.123456", "0.0001"}
	for _, in := range inputs {
		for p := 0; p <= 6; p++ {
			got := FloorToPrecision(dec(in), p)
			assert.True(t, got.LessThanOrEqual(dec(in)), "floor(%s, %d) must not exceed input", in, p)
			// Truncation is idempotent.
			again := FloorToPrecision(got, p)
			assert.True(t, again.Equal(got))
		}
	}
}

func TestFloorToPrecisionNegativePrecisionClamped(t *testing.T) {
	got := FloorToPrecision(dec("5.7"), -3)
	assert.True(t, got.Equal(dec("5")))
}

func TestNetQuantity(t *testing.T) {
	net := NetQuantity(dec("0.60"), dec("0.0006"))
	assert.True(t, net.Equal(dec("0.5994")))
}

func TestQuantityForBudget(t *testing.T) {
	q := QuantityForBudget(dec("60000"), dec("100000"))
	require.True(t, q.Equal(dec("0.6")))

	assert.True(t, QuantityForBudget(dec("60000"), decimal.Zero).IsZero())
	assert.True(t, QuantityForBudget(dec("60000"), dec("-1")).IsZero())
}

func TestScenarioBuyThenSellSizing(t *testing.T) {
	// entry 100000, budget 60000, amount precision 2.
	raw := QuantityForBudget(dec("60000"), dec("100000"))
	formatted := FloorToPrecision(raw, 2)
	require.True(t, formatted.Equal(dec("0.60")))

	net := NetQuantity(dec("0.60"), dec("0.0006"))
	require.True(t, net.Equal(dec("0.5994")))

	sell := FloorToPrecision(net, 2)
	assert.True(t, sell.Equal(dec("0.59")))
}
