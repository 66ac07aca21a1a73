package domain

import "github.com/shopspring/decimal"

// Targets are the two target figures stored on every tracker entry.
// Actual is the task's base target verbatim; Tenure is the employee specific
// denominator used for billable hours.
type Targets struct {
	Actual decimal.Decimal
	Tenure decimal.Decimal
}

// CalculateTargets derives entry targets from the task base target and the
// employee's tenure factor. Only Tenure is scaled.
func CalculateTargets(baseTarget, tenureFactor decimal.Decimal) Targets {
	return Targets{
		Actual: baseTarget,
		Tenure: baseTarget.Mul(tenureFactor).Round(2),
	}
}

// BillableHours converts production into billable hours. The result is null
// when the tenure target is not positive.
func BillableHours(production, tenureTarget decimal.Decimal) decimal.NullDecimal {
	if !tenureTarget.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(production.Div(tenureTarget))
}

// pace is the required hours per remaining day, null when no day remains.
func pace(totalTarget, achieved decimal.Decimal, pendingDays int) decimal.NullDecimal {
	if pendingDays <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(totalTarget.Sub(achieved).Div(decimal.NewFromInt(int64(pendingDays))).Round(4))
}
