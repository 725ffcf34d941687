package domain

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Year is a four-digit calendar year
type Year uint16

func NewYear(y int) (Year, error) {
	if y < 1000 || y > 9999 {
		return 0, fmt.Errorf("%w: year %d is not four digits", ErrInvalidDate, y)
	}
	return Year(y), nil
}

func (y Year) IsLeap() bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

// Month is a calendar month, January through December
type Month uint8

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

func NewMonth(m int) (Month, error) {
	if m < 1 || m > 12 {
		return 0, fmt.Errorf("%w: month %d out of range", ErrInvalidDate, m)
	}
	return Month(m), nil
}

var daysPerMonth = [13]uint8{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// LastDay returns the last day of the month, accounting for leap years
func (m Month) LastDay(leap bool) Day {
	if m == February && leap {
		return 29
	}
	return Day(daysPerMonth[m])
}

// Day is a day of month in [1, 31]
type Day uint8

func NewDay(d int) (Day, error) {
	if d < 1 || d > 31 {
		return 0, fmt.Errorf("%w: day %d out of range", ErrInvalidDate, d)
	}
	return Day(d), nil
}

// NetDays is a payment term net of N calendar days
type NetDays uint16

// Date is a validated calendar date
type Date struct {
	year  Year
	month Month
	day   Day
}

func NewDate(y Year, m Month, d Day) (Date, error) {
	if m < 1 || m > 12 {
		return Date{}, fmt.Errorf("%w: month %d out of range", ErrInvalidDate, m)
	}
	if d < 1 || d > m.LastDay(y.IsLeap()) {
		return Date{}, fmt.Errorf("%w: %04d-%02d has no day %d", ErrInvalidDate, y, m, d)
	}
	return Date{year: y, month: m, day: d}, nil
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateFromTime(t), nil
}

func DateFromTime(t time.Time) Date {
	return Date{
		year:  Year(t.Year()),
		month: Month(t.Month()),
		day:   Day(t.Day()),
	}
}

func (d Date) Year() Year   { return d.year }
func (d Date) Month() Month { return d.month }
func (d Date) Day() Day     { return d.day }

func (d Date) Time() time.Time {
	return time.Date(int(d.year), time.Month(d.month), int(d.day), 0, 0, 0, 0, time.UTC)
}

// Advance returns the date n calendar days later
func (d Date) Advance(n NetDays) Date {
	return DateFromTime(d.Time().AddDate(0, 0, int(n)))
}

// Weekday returns the day of week
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
