package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	halfDay = decimal.NewFromFloat(0.5)
	fullDay = decimal.NewFromInt(1)
)

// ValidateAdjustmentValue допускает только ±0.5 и ±1.0
func ValidateAdjustmentValue(value decimal.Decimal) error {
	abs := value.Abs()
	if abs.Equal(halfDay) || abs.Equal(fullDay) {
		return nil
	}
	return fmt.Errorf("%w: adjustment must be ±0.5 or ±1.0, got %s", ErrInvalidValue, value.String())
}

// ValidateDailyValue проверяет, что дневная ставка неотрицательна и
// задана не точнее копеек, как колонка numeric(12,2)
func ValidateDailyValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: daily value must be non-negative, got %s", ErrInvalidValue, value.String())
	}
	if !value.Equal(value.Round(2)) {
		return fmt.Errorf("%w: daily value must have at most 2 decimal places, got %s", ErrInvalidValue, value.String())
	}
	return nil
}

// TotalPayment считает сумму к выплате, округлённую до копеек
func TotalPayment(finalWorkedDays, dailyValue decimal.Decimal) decimal.Decimal {
	return finalWorkedDays.Mul(dailyValue).Round(2)
}
