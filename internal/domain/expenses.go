package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ExpenseBucket is the recorded expenses of one period
type ExpenseBucket struct {
	Period Period `yaml:"period"`
	Items  []Item `yaml:"items"`
}

// ExpensedPeriods maps periods to canonical expense item lists. Items that
// share name, transaction date, unit price, and currency merge into a
// single row whose quantity is the sum; first-seen order is preserved.
type ExpensedPeriods struct {
	buckets []ExpenseBucket
}

// Insert appends items to the period's bucket and re-canonicalizes it
func (e *ExpensedPeriods) Insert(p Period, items []Item) {
	for i := range e.buckets {
		if e.buckets[i].Period.Equal(p) {
			e.buckets[i].Items = canonicalize(append(e.buckets[i].Items, items...))
			return
		}
	}
	e.buckets = append(e.buckets, ExpenseBucket{
		Period: p,
		Items:  canonicalize(items),
	})
}

// Get returns the canonical item list for a period
func (e ExpensedPeriods) Get(p Period) ([]Item, error) {
	for _, bucket := range e.buckets {
		if bucket.Period.Equal(p) {
			out := make([]Item, len(bucket.Items))
			copy(out, bucket.Items)
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrExpensesMissing, p)
}

func (e ExpensedPeriods) Contains(p Period) bool {
	for _, bucket := range e.buckets {
		if bucket.Period.Equal(p) {
			return true
		}
	}
	return false
}

func (e ExpensedPeriods) Len() int { return len(e.buckets) }

// canonicalize merges duplicate rows, summing quantities, keeping the
// order each distinct row was first seen in
func canonicalize(items []Item) []Item {
	var out []Item
	index := make(map[string]int, len(items))
	for _, item := range items {
		key := item.mergeKey()
		if at, seen := index[key]; seen {
			out[at].Quantity = out[at].Quantity.Add(item.Quantity)
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}

func (e ExpensedPeriods) MarshalYAML() (any, error) {
	return e.buckets, nil
}

func (e *ExpensedPeriods) UnmarshalYAML(node *yaml.Node) error {
	var buckets []ExpenseBucket
	if err := node.Decode(&buckets); err != nil {
		return err
	}
	// hand-edited files may hold duplicate rows; Insert re-canonicalizes
	e.buckets = nil
	for _, bucket := range buckets {
		e.Insert(bucket.Period, bucket.Items)
	}
	return nil
}
