package services

import (
	"github.com/shopspring/decimal"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
)

// validateAmount rejects values that numeric(10,2) would round or overflow.
func validateAmount(field string, amount decimal.Decimal) error {
	if !models.FitsMoney(amount) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			field+" must have at most two decimal places and be less than 100000000")
	}
	return nil
}
