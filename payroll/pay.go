package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY CALCULATOR
// =============================================================================

// PayScale is the number of decimal places money is rounded to.
const PayScale = 2

// CalculatePay multiplies worked hours by rates. Each field is rounded to cents
// half-up; TotalPay is the sum of the rounded fields so per-record rows always
// reconcile with totals.
func CalculatePay(w WorkedTime, r Rate) PayRecord {
	regular := Pay(w.Regular, r.Regular)
	overtime := Pay(w.Overtime, r.Overtime)
	return PayRecord{
		RegularPay:  regular,
		OvertimePay: overtime,
		TotalPay:    regular.Add(overtime),
	}
}

// Pay returns duration hours x rate rounded to cents. The product stays exact
// until the single rounding step; inputs are non-negative, where decimal's
// half-away-from-zero rounding is half-up.
func Pay(d time.Duration, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Mul(rate).DivRound(hourNanos, PayScale)
}
