package payroll

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultOvertimeThreshold is the per-shift regular-time limit.
const DefaultOvertimeThreshold = 8 * time.Hour

// OvertimePolicy names how the threshold is applied.
type OvertimePolicy string

// OvertimePerShift evaluates each punch record on its own. Two 4h shifts on the
// same day are 8h regular, never overtime. It is the only policy implemented.
const OvertimePerShift OvertimePolicy = "per_shift"

// SplitOvertime divides a net duration at the threshold.
// Negative net is treated as zero.
func SplitOvertime(net, threshold time.Duration) WorkedTime {
	if net < 0 {
		net = 0
	}
	if threshold < 0 {
		threshold = 0
	}
	if net <= threshold {
		return WorkedTime{Regular: net}
	}
	return WorkedTime{Regular: threshold, Overtime: net - threshold}
}

var maxDurationNanos = decimal.NewFromInt(math.MaxInt64)

// ThresholdFromHours converts a threshold given in hours, as clients send it.
// Negative values and values beyond the time.Duration range are a
// *ComputationError for field.
func ThresholdFromHours(field string, h decimal.Decimal) (time.Duration, error) {
	if h.IsNegative() {
		return 0, &ComputationError{Field: field, Value: h.String(), Err: ErrNegativeThreshold}
	}
	if h.Mul(hourNanos).GreaterThan(maxDurationNanos) {
		return 0, &ComputationError{Field: field, Value: h.String(), Err: ErrThresholdTooLarge}
	}
	return FromHours(h), nil
}
