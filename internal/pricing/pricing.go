// Package pricing computes the discounted amount of one fuel dispensation.
// The computation is pure; persisting the resulting charge record is an
// explicit separate step performed by the caller after confirmation.
package pricing

import "errors"

// ErrInvalidInput indicates a negative unit price or liters, or a percentage
// outside 0-100.
var ErrInvalidInput = errors.New("unit price and liters must be non-negative and percent between 0 and 100")

// Charge holds the computed amounts of one dispensation.
type Charge struct {
	Gross          float64 `json:"bruto"`
	DiscountAmount float64 `json:"descuento"`
	Net            float64 `json:"neto"`
}

// ComputeCharge computes gross, discount and net amounts for a dispensation.
// A beneficiary whose affiliation has no discount record pays full price:
// callers pass percent 0, absence of a discount is not an error. The percent
// is bounded to 100 so all three amounts stay non-negative.
func ComputeCharge(unitPrice, liters, percent float64) (Charge, error) {
	if unitPrice < 0 || liters < 0 || percent < 0 || percent > 100 {
		return Charge{}, ErrInvalidInput
	}

	gross := unitPrice * liters
	discount := gross * percent / 100
	return Charge{
		Gross:          gross,
		DiscountAmount: discount,
		Net:            gross - discount,
	}, nil
}
