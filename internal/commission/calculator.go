package commission

import (
	"github.com/jualbuku/bookmart-backend/pkg/db/models"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	minRate = decimal.Zero
	maxRate = decimal.NewFromInt(100)
	hundred = decimal.NewFromInt(100)
)

// ValidateRate checks a commission percentage is within [0, 100] with at most
// two decimal places.
func ValidateRate(rate decimal.Decimal) error {
	if rate.LessThan(minRate) || rate.GreaterThan(maxRate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100").
			WithDetails(map[string]any{"rate": rate.String()})
	}
	if rate.Exponent() < -2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "commission rate supports at most two decimal places").
			WithDetails(map[string]any{"rate": rate.String()})
	}
	return nil
}

// EffectiveRate resolves the percentage applied to a seller's items: the
// seller's override when set, otherwise the platform default.
func EffectiveRate(profile *models.SellerProfile, platformDefault decimal.Decimal) (decimal.Decimal, error) {
	rate := platformDefault
	if profile != nil && profile.CommissionRate != nil {
		rate = *profile.CommissionRate
	}
	if err := ValidateRate(rate); err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

// LineAmount computes the commission withheld on a single order line. The
// result is rounded half-up to a whole currency unit.
func LineAmount(unitPrice decimal.Decimal, quantity int, rate decimal.Decimal) decimal.Decimal {
	lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return lineTotal.Mul(rate).Div(hundred).Round(0)
}

// LineTotal is the gross value of a single order line before commission.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// SellerNet is what the seller keeps on a line after commission.
func SellerNet(unitPrice decimal.Decimal, quantity int, commissionAmount decimal.Decimal) decimal.Decimal {
	return LineTotal(unitPrice, quantity).Sub(commissionAmount)
}
