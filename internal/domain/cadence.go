package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Granularity is the unit the service is priced in, totally ordered
// Hour < Day < Fortnight < Month.
type Granularity uint8

const (
	GranularityHour Granularity = iota + 1
	GranularityDay
	GranularityFortnight
	GranularityMonth
)

func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "hour", "hours":
		return GranularityHour, nil
	case "day", "days":
		return GranularityDay, nil
	case "fortnight":
		return GranularityFortnight, nil
	case "month":
		return GranularityMonth, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
}

func (g Granularity) String() string {
	switch g {
	case GranularityHour:
		return "hour"
	case GranularityDay:
		return "day"
	case GranularityFortnight:
		return "fortnight"
	case GranularityMonth:
		return "month"
	}
	return "unknown"
}

func (g Granularity) MarshalYAML() (any, error) { return g.String(), nil }

func (g *Granularity) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseGranularity(raw)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Cadence is how often the vendor invoices
type Cadence uint8

const (
	CadenceMonthly Cadence = iota + 1
	CadenceBiWeekly
)

func ParseCadence(s string) (Cadence, error) {
	switch s {
	case "monthly":
		return CadenceMonthly, nil
	case "biweekly", "bi-weekly":
		return CadenceBiWeekly, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCadence, s)
}

func (c Cadence) String() string {
	if c == CadenceBiWeekly {
		return "biweekly"
	}
	return "monthly"
}

func (c Cadence) MarshalYAML() (any, error) { return c.String(), nil }

func (c *Cadence) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseCadence(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Validate checks that a rate granularity can be invoiced on this cadence.
// Bi-weekly invoicing cannot carry month-priced services.
func (c Cadence) Validate(g Granularity) error {
	if c == CadenceBiWeekly && g == GranularityMonth {
		return ErrCannotInvoiceMonthWhenBiWeekly
	}
	return nil
}

// Rate is a unit price per granularity unit
type Rate struct {
	Price       Amount      `yaml:"price"`
	Granularity Granularity `yaml:"granularity"`
}

func HourlyRate(price Amount) Rate    { return Rate{Price: price, Granularity: GranularityHour} }
func DailyRate(price Amount) Rate     { return Rate{Price: price, Granularity: GranularityDay} }
func FortnightRate(price Amount) Rate { return Rate{Price: price, Granularity: GranularityFortnight} }
func MonthlyRate(price Amount) Rate   { return Rate{Price: price, Granularity: GranularityMonth} }

// ServiceFees describes the consulting service being invoiced
type ServiceFees struct {
	Name    string  `yaml:"name"`
	Rate    Rate    `yaml:"rate"`
	Cadence Cadence `yaml:"cadence"`
}

func NewServiceFees(name string, rate Rate, cadence Cadence) (ServiceFees, error) {
	fees := ServiceFees{Name: name, Rate: rate, Cadence: cadence}
	if err := fees.Validate(); err != nil {
		return ServiceFees{}, err
	}
	return fees, nil
}

func (s ServiceFees) Validate() error {
	return s.Cadence.Validate(s.Rate.Granularity)
}

// TimeOff is unworked time to subtract from the billable quantity.
// Only hour and day units exist.
type TimeOff struct {
	Granularity Granularity
	Quantity    Amount
}

func TimeOffHours(q Amount) TimeOff { return TimeOff{Granularity: GranularityHour, Quantity: q} }
func TimeOffDays(q Amount) TimeOff  { return TimeOff{Granularity: GranularityDay, Quantity: q} }
