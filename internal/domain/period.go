package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MonthHalf splits a month into two fortnights. The first half is days
// 1..=15, except February where it is 1..=14.
type MonthHalf uint8

const (
	FirstHalf MonthHalf = iota + 1
	SecondHalf
)

// LastDay returns the last day of the half within the given month
func (h MonthHalf) LastDay(m Month, leap bool) Day {
	if h == FirstHalf {
		if m == February {
			return 14
		}
		return 15
	}
	return m.LastDay(leap)
}

// PeriodKind tags which variant a Period holds
type PeriodKind uint8

const (
	KindMonth PeriodKind = iota + 1
	KindFortnight
)

func (k PeriodKind) String() string {
	if k == KindFortnight {
		return "fortnight"
	}
	return "month"
}

// Period is one billing unit: a whole month or a half-month fortnight.
// The zero value is invalid; use the constructors.
type Period struct {
	kind  PeriodKind
	year  Year
	month Month
	half  MonthHalf // set only for KindFortnight
}

func NewMonthPeriod(y Year, m Month) Period {
	return Period{kind: KindMonth, year: y, month: m}
}

func NewFortnightPeriod(y Year, m Month, half MonthHalf) Period {
	return Period{kind: KindFortnight, year: y, month: m, half: half}
}

// CurrentPeriod returns the fortnight containing now
func CurrentPeriod(now time.Time) Period {
	d := DateFromTime(now)
	half := FirstHalf
	if d.Day() > FirstHalf.LastDay(d.Month(), d.Year().IsLeap()) {
		half = SecondHalf
	}
	return NewFortnightPeriod(d.Year(), d.Month(), half)
}

func (p Period) Kind() PeriodKind { return p.kind }
func (p Period) Year() Year       { return p.year }
func (p Period) Month() Month     { return p.month }
func (p Period) Half() MonthHalf  { return p.half }

// MaxGranularity is the coarsest unit this period can be invoiced in
func (p Period) MaxGranularity() Granularity {
	if p.kind == KindFortnight {
		return GranularityFortnight
	}
	return GranularityMonth
}

// OneEarlier rolls back one billing unit: a month for month periods,
// a half for fortnight periods (First rolls into the previous month).
func (p Period) OneEarlier() Period {
	switch {
	case p.kind == KindFortnight && p.half == SecondHalf:
		return NewFortnightPeriod(p.year, p.month, FirstHalf)
	case p.kind == KindFortnight:
		y, m := oneMonthEarlier(p.year, p.month)
		return NewFortnightPeriod(y, m, SecondHalf)
	default:
		y, m := oneMonthEarlier(p.year, p.month)
		return NewMonthPeriod(y, m)
	}
}

func oneMonthEarlier(y Year, m Month) (Year, Month) {
	if m == January {
		return y - 1, December
	}
	return y, m - 1
}

// ElapsedPeriodsSince counts whole billing units from start up to p.
// Fails with ErrStartAfterEnd when start lies after p and with
// ErrPeriodKindMismatch when the variants differ.
func (p Period) ElapsedPeriodsSince(start Period) (uint16, error) {
	if p.kind != start.kind {
		return 0, fmt.Errorf("%w: %s vs %s", ErrPeriodKindMismatch, start.kind, p.kind)
	}
	months := (int(p.year)-int(start.year))*12 + int(p.month) - int(start.month)
	var elapsed int
	if p.kind == KindFortnight {
		elapsed = 2*months + int(p.half) - int(start.half)
	} else {
		elapsed = months
	}
	if elapsed < 0 {
		return 0, fmt.Errorf("%w: %s is after %s", ErrStartAfterEnd, start, p)
	}
	return uint16(elapsed), nil
}

// EndOfPeriod resolves the last calendar day of the period
func (p Period) EndOfPeriod() Date {
	leap := p.year.IsLeap()
	day := p.month.LastDay(leap)
	if p.kind == KindFortnight {
		day = p.half.LastDay(p.month, leap)
	}
	return Date{year: p.year, month: p.month, day: day}
}

// DowncastTo converts the period to the given kind. Fortnight periods
// truncate to their containing month; month periods cannot gain a half.
func (p Period) DowncastTo(kind PeriodKind) (Period, error) {
	if p.kind == kind {
		return p, nil
	}
	if p.kind == KindFortnight && kind == KindMonth {
		return NewMonthPeriod(p.year, p.month), nil
	}
	return Period{}, fmt.Errorf("%w: cannot turn %s period into %s", ErrPeriodKindMismatch, p.kind, kind)
}

// Compare orders periods of the same kind; half is the tiebreaker for
// fortnight periods. Returns <0, 0, or >0.
func (p Period) Compare(other Period) int {
	if p.year != other.year {
		return int(p.year) - int(other.year)
	}
	if p.month != other.month {
		return int(p.month) - int(other.month)
	}
	return int(p.half) - int(other.half)
}

func (p Period) Equal(other Period) bool {
	return p.kind == other.kind && p.Compare(other) == 0
}

func (p Period) String() string {
	base := fmt.Sprintf("%04d-%02d", p.year, p.month)
	if p.kind != KindFortnight {
		return base
	}
	if p.half == FirstHalf {
		return base + "-first-half"
	}
	return base + "-second-half"
}

// ParsePeriod parses the period spec syntax:
//
//	YYYY-MM                                whole month
//	YYYY-MM-first-half | -first | -1       first fortnight
//	YYYY-MM-second-half | -second | -2     second fortnight
//	current | last                         fortnight containing now / one half earlier
func ParsePeriod(s string, now time.Time) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "current":
		return CurrentPeriod(now), nil
	case "last":
		return CurrentPeriod(now).OneEarlier(), nil
	}

	parts := strings.SplitN(strings.TrimSpace(s), "-", 3)
	if len(parts) < 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	rawYear, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	year, err := NewYear(rawYear)
	if err != nil {
		return Period{}, err
	}
	rawMonth, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	month, err := NewMonth(rawMonth)
	if err != nil {
		return Period{}, err
	}

	if len(parts) == 2 {
		return NewMonthPeriod(year, month), nil
	}
	switch parts[2] {
	case "first-half", "first", "1":
		return NewFortnightPeriod(year, month, FirstHalf), nil
	case "second-half", "second", "2":
		return NewFortnightPeriod(year, month, SecondHalf), nil
	}
	return Period{}, fmt.Errorf("%w: unknown half %q", ErrInvalidPeriod, parts[2])
}

func (p Period) MarshalYAML() (any, error) {
	return p.String(), nil
}

func (p *Period) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParsePeriod(raw, time.Now())
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
