// Package currency converts base-currency (NGN) amounts into display
// currencies using a static rate table, and formats amounts for screens.
// Conversion is pure and deterministic: no network, no caching, no rounding
// before final display formatting.
package currency

import (
	"fmt"
	"strings"
)

// Base is the currency wallet balances and persisted monetary fields are
// authoritative in.
const Base = "NGN"

// rates maps a currency code to its rate relative to the base currency:
// amountTarget = amountBase * rate. Refreshed out of band, never at runtime.
var rates = map[string]float64{
	"USD": 0.00065,
	"EUR": 0.00060,
	"GBP": 0.00051,
	"CAD": 0.00089,
}

var symbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "CA$",
}

// Known reports whether code has a defined rate (or is the base currency).
// Callers may use it to flag missing rate entries; ConvertFromBase itself
// falls back silently.
func Known(code string) bool {
	if code == Base {
		return true
	}
	_, ok := rates[code]
	return ok
}

// Rate returns the conversion rate for code relative to the base currency.
// The base currency's rate is 1. Unknown codes also report 1, matching the
// ConvertFromBase fallback.
func Rate(code string) float64 {
	if code == Base {
		return 1
	}
	if r, ok := rates[code]; ok {
		return r
	}
	return 1
}

// ConvertFromBase converts an amount in the base currency into target.
// An unknown target code is treated as the base currency and the amount is
// returned unchanged. That fallback is deliberate, not an error.
func ConvertFromBase(amountBase float64, target string) float64 {
	return amountBase * Rate(target)
}

// ConvertToBase converts an amount in from back into the base currency.
func ConvertToBase(amount float64, from string) float64 {
	return amount / Rate(from)
}

// Format renders an amount with its currency symbol and thousands grouping.
// The base currency is shown with no decimal places by convention; other
// currencies keep two.
func Format(amount float64, code string) string {
	symbol, ok := symbols[code]
	if !ok {
		symbol = symbols[Base]
		code = Base
	}
	if code == Base {
		return symbol + group(fmt.Sprintf("%.0f", amount))
	}
	s := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(s, ".", 2)
	return symbol + group(parts[0]) + "." + parts[1]
}

// group inserts comma separators into a plain integer string.
func group(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
