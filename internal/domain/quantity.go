package domain

import (
	"fmt"
	"time"
)

// TODO: make hours per day configurable from service fees
const hoursPerDay = 8

// WorkingDaysInMonth counts Monday through Friday over the whole month
func WorkingDaysInMonth(y Year, m Month) int {
	count := 0
	last := int(m.LastDay(y.IsLeap()))
	for day := 1; day <= last; day++ {
		d := Date{year: y, month: m, day: Day(day)}
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// workingDays counts the billable weekdays of a period. Fortnight periods
// deliberately count over their whole containing month; fixtures depend on
// this.
func workingDays(p Period) int {
	return WorkingDaysInMonth(p.Year(), p.Month())
}

// QuantityInPeriod computes the raw billable quantity for a period given
// the service granularity and cadence:
//
//	monthly × month       1
//	biweekly × month      error
//	monthly × fortnight   2
//	biweekly × fortnight  1
//	any × day             working days
//	any × hour            8 × working days
func QuantityInPeriod(p Period, g Granularity, c Cadence, off PeriodsOff) (Amount, error) {
	if off.Contains(p) {
		return Amount{}, fmt.Errorf("%w: %s", ErrTargetPeriodOff, p)
	}
	if g > p.MaxGranularity() {
		return Amount{}, fmt.Errorf("%w: %s service in %s period %s", ErrGranularityTooCoarse, g, p.Kind(), p)
	}
	switch g {
	case GranularityMonth:
		if c == CadenceBiWeekly {
			return Amount{}, ErrCannotInvoiceMonthWhenBiWeekly
		}
		return AmountFromInt(1), nil
	case GranularityFortnight:
		if c == CadenceBiWeekly {
			return AmountFromInt(1), nil
		}
		return AmountFromInt(2), nil
	case GranularityDay:
		return AmountFromInt(int64(workingDays(p))), nil
	case GranularityHour:
		return AmountFromInt(int64(hoursPerDay * workingDays(p))), nil
	}
	return Amount{}, fmt.Errorf("%w: %d", ErrInvalidGranularity, g)
}

// BillableQuantity subtracts recorded time off from the period quantity.
// Time off must be recorded in the unit the service is priced in.
func BillableQuantity(p Period, fees ServiceFees, timeOff *TimeOff, off PeriodsOff) (Amount, error) {
	quantity, err := QuantityInPeriod(p, fees.Rate.Granularity, fees.Cadence, off)
	if err != nil {
		return Amount{}, err
	}
	if timeOff == nil {
		return quantity, nil
	}
	if timeOff.Granularity != fees.Rate.Granularity {
		return Amount{}, fmt.Errorf("%w: free=%s service=%s",
			ErrInvalidTimeOffGranularity, timeOff.Granularity, fees.Rate.Granularity)
	}
	return quantity.Sub(timeOff.Quantity), nil
}
