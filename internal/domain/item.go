package domain

import (
	"fmt"
	"strings"
)

// Item is a priced line item in its source currency
type Item struct {
	Name            string   `yaml:"name"`
	UnitPrice       Amount   `yaml:"unit_price"`
	Currency        Currency `yaml:"currency"`
	Quantity        Amount   `yaml:"quantity"`
	TransactionDate Date     `yaml:"transaction_date"`
}

func NewItem(name string, unitPrice Amount, currency Currency, quantity Amount, date Date) (Item, error) {
	item := Item{
		Name:            strings.TrimSpace(name),
		UnitPrice:       unitPrice,
		Currency:        currency,
		Quantity:        quantity,
		TransactionDate: date,
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if i.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidItem)
	}
	return nil
}

// mergeKey identifies items that canonicalize into one row
func (i Item) mergeKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", i.Name, i.TransactionDate, i.UnitPrice.Decimal.String(), i.Currency)
}

// ParseItem parses the expense item spec
// "name,unit_price,CURRENCY,quantity,YYYY-MM-DD"; whitespace around each
// field is trimmed.
func ParseItem(s string) (Item, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 5 {
		return Item{}, fmt.Errorf("%w: want 5 comma-separated fields, got %d", ErrInvalidItem, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	unitPrice, err := NewAmount(fields[1])
	if err != nil {
		return Item{}, err
	}
	currency, err := ParseCurrency(fields[2])
	if err != nil {
		return Item{}, err
	}
	quantity, err := NewAmount(fields[3])
	if err != nil {
		return Item{}, err
	}
	date, err := ParseDate(fields[4])
	if err != nil {
		return Item{}, err
	}
	return NewItem(fields[0], unitPrice, currency, quantity, date)
}

// ConvertedItem is an item repriced in the target currency with its
// precomputed total.
type ConvertedItem struct {
	Item
	TotalCost Amount
}

// ConvertInto reprices the item using the given rates and computes
// total_cost = converted unit price × quantity.
func (i Item) ConvertInto(rates ExchangeRates) (ConvertedItem, error) {
	price, err := rates.Convert(i.UnitPrice, i.Currency)
	if err != nil {
		return ConvertedItem{}, err
	}
	converted := i
	converted.UnitPrice = price
	converted.Currency = rates.Target
	return ConvertedItem{
		Item:      converted,
		TotalCost: price.Mul(i.Quantity),
	}, nil
}

// ExchangeRates maps source currencies to unit prices in the target currency
type ExchangeRates struct {
	Target Currency
	Rates  map[Currency]Amount
}

// Convert reprices a source-currency amount into the target currency
func (r ExchangeRates) Convert(price Amount, from Currency) (Amount, error) {
	if from == r.Target {
		return price, nil
	}
	rate, ok := r.Rates[from]
	if !ok {
		return Amount{}, fmt.Errorf("%w: %s -> %s", ErrNoExchangeRate, from, r.Target)
	}
	return price.Mul(rate), nil
}
