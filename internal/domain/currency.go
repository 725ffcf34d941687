package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Currency is a closed set of ISO 4217 codes plus a few cryptocurrencies.
// Codes are parsed case-sensitively.
type Currency string

const (
	AUD Currency = "AUD"
	CAD Currency = "CAD"
	CHF Currency = "CHF"
	CNY Currency = "CNY"
	CZK Currency = "CZK"
	DKK Currency = "DKK"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	HKD Currency = "HKD"
	HUF Currency = "HUF"
	INR Currency = "INR"
	ISK Currency = "ISK"
	JPY Currency = "JPY"
	NOK Currency = "NOK"
	NZD Currency = "NZD"
	PLN Currency = "PLN"
	RON Currency = "RON"
	SEK Currency = "SEK"
	SGD Currency = "SGD"
	USD Currency = "USD"
	ZAR Currency = "ZAR"

	// Cryptocurrencies. The public rate oracle does not quote these;
	// converting them surfaces ErrNoExchangeRate.
	BTC Currency = "BTC"
	ETH Currency = "ETH"
)

var knownCurrencies = map[Currency]struct{}{
	AUD: {}, CAD: {}, CHF: {}, CNY: {}, CZK: {}, DKK: {}, EUR: {}, GBP: {},
	HKD: {}, HUF: {}, INR: {}, ISK: {}, JPY: {}, NOK: {}, NZD: {}, PLN: {},
	RON: {}, SEK: {}, SGD: {}, USD: {}, ZAR: {}, BTC: {}, ETH: {},
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if _, ok := knownCurrencies[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	return c, nil
}

func (c Currency) String() string { return string(c) }

func (c Currency) MarshalYAML() (any, error) { return string(c), nil }

func (c *Currency) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseCurrency(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
