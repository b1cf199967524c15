// Package pricing computes order totals. All fee arithmetic happens in the
// base currency; display-currency figures are obtained by converting the
// already-computed base amounts, never by recomputing fees in the display
// currency.
package pricing

import (
	"strings"

	"kasuwa/internal/currency"
	"kasuwa/internal/models"
)

// ServiceFeeRate is the fixed service fee fraction applied to every subtotal.
const ServiceFeeRate = 0.02

// DeliveryFeeTable derives a delivery fee (base currency) from a free-text
// delivery location. The tiering is configuration, not business logic, so it
// is injectable.
type DeliveryFeeTable interface {
	FeeFor(location string) float64
}

// tieredTable classifies a location as within-city, other-domestic or
// international and charges a flat fee per tier.
type tieredTable struct {
	withinCity    float64
	domestic      float64
	international float64
	cityMarkers   []string
	countryMarker string
}

// DefaultDeliveryFees returns the standard Lagos-based tier table.
func DefaultDeliveryFees() DeliveryFeeTable {
	return &tieredTable{
		withinCity:    500,
		domestic:      1500,
		international: 10000,
		cityMarkers:   []string{"lagos", "within-city"},
		countryMarker: "nigeria",
	}
}

func (t *tieredTable) FeeFor(location string) float64 {
	loc := strings.ToLower(location)
	for _, m := range t.cityMarkers {
		if strings.Contains(loc, m) {
			return t.withinCity
		}
	}
	if loc == "" || strings.Contains(loc, t.countryMarker) {
		return t.domestic
	}
	return t.international
}

// FeeBreakdown is the output of CalculateOrderTotal, all in base currency.
type FeeBreakdown struct {
	Subtotal    float64
	ServiceFee  float64
	DeliveryFee float64
	Total       float64
}

// CalculateOrderTotal derives the service and delivery fees for a subtotal.
func CalculateOrderTotal(subtotalBase float64, deliveryLocation string, fees DeliveryFeeTable) FeeBreakdown {
	service := subtotalBase * ServiceFeeRate
	delivery := fees.FeeFor(deliveryLocation)
	return FeeBreakdown{
		Subtotal:    subtotalBase,
		ServiceFee:  service,
		DeliveryFee: delivery,
		Total:       subtotalBase + service + delivery,
	}
}

// OrderTotals carries every order figure in the base currency together with
// its independently converted display-currency counterpart.
type OrderTotals struct {
	Subtotal    float64
	ServiceFee  float64
	DeliveryFee float64
	Discount    float64
	Total       float64

	DisplayCurrency    string
	DisplaySubtotal    float64
	DisplayServiceFee  float64
	DisplayDeliveryFee float64
	DisplayDiscount    float64
	DisplayTotal       float64
}

// Subtotal sums the base-currency line totals of a cart.
func Subtotal(items []models.CartItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

// Assemble combines subtotal, fees and an optional promo discount into the
// final payable total. The discount applies to the subtotal only, never to
// subtotal plus fees.
func Assemble(items []models.CartItem, deliveryLocation string, promo *models.AppliedPromo, displayCurrency string, fees DeliveryFeeTable) OrderTotals {
	subtotal := Subtotal(items)
	breakdown := CalculateOrderTotal(subtotal, deliveryLocation, fees)

	var discount float64
	if promo != nil {
		discount = subtotal * promo.Discount
	}

	totals := OrderTotals{
		Subtotal:        subtotal,
		ServiceFee:      breakdown.ServiceFee,
		DeliveryFee:     breakdown.DeliveryFee,
		Discount:        discount,
		Total:           subtotal + breakdown.ServiceFee + breakdown.DeliveryFee - discount,
		DisplayCurrency: displayCurrency,
	}
	totals.DisplaySubtotal = currency.ConvertFromBase(totals.Subtotal, displayCurrency)
	totals.DisplayServiceFee = currency.ConvertFromBase(totals.ServiceFee, displayCurrency)
	totals.DisplayDeliveryFee = currency.ConvertFromBase(totals.DeliveryFee, displayCurrency)
	totals.DisplayDiscount = currency.ConvertFromBase(totals.Discount, displayCurrency)
	totals.DisplayTotal = currency.ConvertFromBase(totals.Total, displayCurrency)
	return totals
}
