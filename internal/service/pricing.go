package service

import (
	"math"

	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

// PricingCalculator estimates what a pickup costs.
type PricingCalculator struct {
	scale float64
}

// NewPricingCalculator rounds estimates to minorUnits decimals. Negative values fall
// back to two decimals.
func NewPricingCalculator(minorUnits int) *PricingCalculator {
	if minorUnits < 0 {
		minorUnits = 2
	}
	return &PricingCalculator{scale: math.Pow10(minorUnits)}
}

// Estimate returns quantity × category.PricePerKg rounded half away from zero.
func (p *PricingCalculator) Estimate(category *models.WasteCategory, quantity float64) (float64, error) {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return 0, appErrors.ErrInvalidQuantity
	}
	if category == nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "waste category is required")
	}
	if category.PricePerKg < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "price per kg must not be negative")
	}
	return math.Round(quantity*category.PricePerKg*p.scale) / p.scale, nil
}
