package currency_test

import (
	"testing"

	"kasuwa/internal/currency"

	"github.com/stretchr/testify/assert"
)

func TestConvertFromBase(t *testing.T) {
	// Base to base is the identity.
	assert.Equal(t, 10000.0, currency.ConvertFromBase(10000, "NGN"))

	// Defined rate is a plain multiplication.
	assert.InDelta(t, 10000*currency.Rate("USD"), currency.ConvertFromBase(10000, "USD"), 1e-9)

	// Unknown code falls back to the base currency: amount unchanged.
	assert.Equal(t, 10000.0, currency.ConvertFromBase(10000, "XYZ"))
	assert.False(t, currency.Known("XYZ"))
	assert.True(t, currency.Known("NGN"))
	assert.True(t, currency.Known("USD"))
}

func TestConvertRoundTrip(t *testing.T) {
	amounts := []float64{1, 999.99, 10000, 123456.78, 5000000}
	codes := []string{"USD", "EUR", "GBP", "CAD", "NGN"}

	for _, a := range amounts {
		for _, c := range codes {
			converted := currency.ConvertFromBase(a, c)
			back := currency.ConvertToBase(converted, c)
			assert.InDelta(t, a, back, 1e-6, "round trip for %f %s", a, c)
		}
	}
}

func TestFormat(t *testing.T) {
	// Base currency: symbol, grouping, no decimals.
	assert.Equal(t, "₦10,000", currency.Format(10000, "NGN"))
	assert.Equal(t, "₦9,700", currency.Format(9700, "NGN"))
	assert.Equal(t, "₦1,234,568", currency.Format(1234567.8, "NGN"))
	assert.Equal(t, "₦500", currency.Format(500, "NGN"))

	// Other currencies keep two decimals.
	assert.Equal(t, "$6.50", currency.Format(6.5, "USD"))
	assert.Equal(t, "£1,020.00", currency.Format(1020, "GBP"))

	// Unknown code formats as base.
	assert.Equal(t, "₦2,500", currency.Format(2500, "XYZ"))
}
