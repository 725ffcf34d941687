package domain

import "gopkg.in/yaml.v3"

// InvoiceNumber is the sequential number printed on the invoice
type InvoiceNumber uint16

// TimestampedInvoiceNumber anchors the numbering sequence: the invoice
// issued for Period carried the number Number, and every later number is
// derived from it.
type TimestampedInvoiceNumber struct {
	Number InvoiceNumber `yaml:"number"`
	Period Period        `yaml:"period"`
}

// PeriodsOff is an ordered set of periods for which no invoice was issued
type PeriodsOff struct {
	periods []Period
}

func NewPeriodsOff(periods ...Period) PeriodsOff {
	var off PeriodsOff
	for _, p := range periods {
		off.Insert(p)
	}
	return off
}

func (o PeriodsOff) Contains(p Period) bool {
	for _, existing := range o.periods {
		if existing.Equal(p) {
			return true
		}
	}
	return false
}

// Insert adds a period, keeping the set sorted and free of duplicates
func (o *PeriodsOff) Insert(p Period) {
	if o.Contains(p) {
		return
	}
	at := len(o.periods)
	for i, existing := range o.periods {
		if p.Compare(existing) < 0 {
			at = i
			break
		}
	}
	o.periods = append(o.periods, Period{})
	copy(o.periods[at+1:], o.periods[at:])
	o.periods[at] = p
}

func (o PeriodsOff) Len() int { return len(o.periods) }

func (o PeriodsOff) All() []Period {
	out := make([]Period, len(o.periods))
	copy(out, o.periods)
	return out
}

func (o PeriodsOff) MarshalYAML() (any, error) {
	return o.periods, nil
}

func (o *PeriodsOff) UnmarshalYAML(node *yaml.Node) error {
	var periods []Period
	if err := node.Decode(&periods); err != nil {
		return err
	}
	*o = NewPeriodsOff(periods...)
	return nil
}

// ComputeInvoiceNumber derives the number for target from the anchor:
// offset number plus elapsed periods, minus periods off in between, plus
// one when the invoice covers expenses so it always lands directly after
// the services invoice for the same period.
func ComputeInvoiceNumber(
	offset TimestampedInvoiceNumber,
	target Period,
	isExpenses bool,
	periodsOff PeriodsOff,
) (InvoiceNumber, error) {
	if periodsOff.Contains(offset.Period) {
		return 0, ErrPeriodsOffContainsOffset
	}
	elapsed, err := target.ElapsedPeriodsSince(offset.Period)
	if err != nil {
		return 0, err
	}
	skipped := 0
	for _, p := range periodsOff.All() {
		if p.Compare(offset.Period) > 0 && p.Compare(target) <= 0 {
			skipped++
		}
	}
	n := int(offset.Number) + int(elapsed) - skipped
	if isExpenses {
		n++
	}
	return InvoiceNumber(n), nil
}
