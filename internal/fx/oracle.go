package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/klirr/klirr/internal/domain"
)

// ErrRateFetch wraps network and decode failures from the rate oracle
var ErrRateFetch = errors.New("failed to fetch exchange rate")

// RateOracle quotes the exchange rate between two currencies on a date
type RateOracle interface {
	GetRate(ctx context.Context, date domain.Date, from, to domain.Currency) (decimal.Decimal, error)
}

const defaultOracleBaseURL = "https://api.frankfurter.app"

// HTTPOracle queries a public exchange-rate endpoint that answers
// GET {base}/{date}?base={from}&symbols={to} with {"rates": {CODE: n}}.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOracle() *HTTPOracle {
	return &HTTPOracle{
		baseURL: defaultOracleBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewHTTPOracleWithBaseURL is used by tests to point at a stub server
func NewHTTPOracleWithBaseURL(baseURL string) *HTTPOracle {
	o := NewHTTPOracle()
	o.baseURL = baseURL
	return o
}

type rateResponse struct {
	Rates map[string]json.Number `json:"rates"`
}

func (o *HTTPOracle) GetRate(ctx context.Context, date domain.Date, from, to domain.Currency) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s?base=%s&symbols=%s", o.baseURL, date, from, to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", ErrRateFetch, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", ErrRateFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("%w: oracle returned status %d", ErrRateFetch, resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	var body rateResponse
	if err := decoder.Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", ErrRateFetch, err)
	}

	raw, ok := body.Rates[string(to)]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s -> %s on %s", domain.ErrNoExchangeRate, from, to, date)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: bad rate %q", ErrRateFetch, raw.String())
	}
	return rate, nil
}
