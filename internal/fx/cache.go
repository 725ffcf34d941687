package fx

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/logger"
	"github.com/klirr/klirr/internal/storage"
)

// cachedRatesFile is the persisted cache shape:
// date -> from currency -> to currency -> rate.
type cachedRatesFile map[string]map[string]map[string]domain.Amount

// Cache is the persistent date-addressed exchange-rate cache. It is the
// only cross-run mutable state; it is written back at most once per
// command and only when new rates were fetched.
type Cache struct {
	store storage.Store
	rates cachedRatesFile
	dirty bool
	log   zerolog.Logger
}

// LoadCache reads the cache from the store. A missing or undecodable file
// resets to an empty cache, as on first run.
func LoadCache(store storage.Store) *Cache {
	c := &Cache{
		store: store,
		rates: cachedRatesFile{},
		log:   logger.WithComponent("fx"),
	}
	if !store.Exists(storage.KeyCachedRates) {
		return c
	}
	if err := store.Load(storage.KeyCachedRates, &c.rates); err != nil {
		c.log.Warn().Err(err).Msg("failed to load rate cache, starting empty")
		c.rates = cachedRatesFile{}
	}
	if c.rates == nil {
		c.rates = cachedRatesFile{}
	}
	return c
}

func (c *Cache) lookup(date domain.Date, from, to domain.Currency) (domain.Amount, bool) {
	rate, ok := c.rates[date.String()][string(from)][string(to)]
	return rate, ok
}

func (c *Cache) insert(date domain.Date, from, to domain.Currency, rate domain.Amount) {
	day := date.String()
	if c.rates[day] == nil {
		c.rates[day] = map[string]map[string]domain.Amount{}
	}
	if c.rates[day][string(from)] == nil {
		c.rates[day][string(from)] = map[string]domain.Amount{}
	}
	c.rates[day][string(from)][string(to)] = rate
	c.dirty = true
}

// LoadElseFetch answers from the cache when possible, otherwise asks the
// oracle and records the answer. The second return reports whether a
// network fetch happened.
func (c *Cache) LoadElseFetch(
	ctx context.Context,
	date domain.Date,
	from, to domain.Currency,
	oracle RateOracle,
) (domain.Amount, bool, error) {
	if rate, ok := c.lookup(date, from, to); ok {
		return rate, false, nil
	}
	fetched, err := oracle.GetRate(ctx, date, from, to)
	if err != nil {
		return domain.Amount{}, false, err
	}
	rate := domain.AmountFromDecimal(fetched)
	c.insert(date, from, to, rate)
	return rate, true, nil
}

// FetchForItems resolves one rate per distinct source currency over the
// items' transaction dates. Same-currency items cost no network call. The
// cache is persisted only when something new was fetched; a persist
// failure is logged and never aborts invoice generation.
func (c *Cache) FetchForItems(
	ctx context.Context,
	target domain.Currency,
	items []domain.Item,
	oracle RateOracle,
) (domain.ExchangeRates, error) {
	rates := domain.ExchangeRates{
		Target: target,
		Rates:  map[domain.Currency]domain.Amount{},
	}
	fetchedAny := false
	for _, item := range items {
		if item.Currency == target {
			rates.Rates[target] = domain.AmountFromInt(1)
			continue
		}
		rate, fetchedNew, err := c.LoadElseFetch(ctx, item.TransactionDate, item.Currency, target, oracle)
		if err != nil {
			return domain.ExchangeRates{}, fmt.Errorf("rate for %s on %s: %w", item.Currency, item.TransactionDate, err)
		}
		fetchedAny = fetchedAny || fetchedNew
		rates.Rates[item.Currency] = rate
	}
	if fetchedAny {
		if err := c.store.Save(storage.KeyCachedRates, c.rates); err != nil {
			c.log.Warn().Err(err).Msg("failed to persist rate cache")
		} else {
			c.dirty = false
		}
	}
	return rates, nil
}

// Rate reads a cached rate without fetching; used by tests and dumps
func (c *Cache) Rate(date domain.Date, from, to domain.Currency) (domain.Amount, bool) {
	return c.lookup(date, from, to)
}

// Insert seeds the cache; used by tests
func (c *Cache) Insert(date domain.Date, from, to domain.Currency, rate decimal.Decimal) {
	c.insert(date, from, to, domain.AmountFromDecimal(rate))
}
