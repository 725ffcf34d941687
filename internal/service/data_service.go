package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/logger"
	"github.com/klirr/klirr/internal/storage"
)

// DataService maintains the persisted dataset: recording expenses and
// periods off, seeding, and validation.
type DataService interface {
	// RecordExpenses appends expense items to a period's ledger bucket
	RecordExpenses(period domain.Period, items []domain.Item) error

	// RecordPeriodOff marks a period as not invoiced
	RecordPeriodOff(period domain.Period) error

	// Validate loads every dataset key and cross-checks it
	Validate() (domain.Data, error)

	// Init seeds the data directory with a sample dataset to edit
	Init() error
}

type dataService struct {
	store storage.Store
	log   zerolog.Logger
}

func NewDataService(store storage.Store) DataService {
	return &dataService{store: store, log: logger.WithComponent("data")}
}

func (s *dataService) loadFees() (domain.ServiceFees, error) {
	var fees domain.ServiceFees
	if err := s.store.Load(storage.KeyServiceFees, &fees); err != nil {
		return domain.ServiceFees{}, err
	}
	return fees, nil
}

// RecordExpenses refuses periods whose kind is incompatible with the
// configured cadence, then merges the items into the period bucket.
func (s *dataService) RecordExpenses(period domain.Period, items []domain.Item) error {
	fees, err := s.loadFees()
	if err != nil {
		return err
	}
	switch {
	case fees.Cadence == domain.CadenceMonthly && period.Kind() == domain.KindFortnight:
		return domain.ErrCannotExpenseFortnightWhenMonthly
	case fees.Cadence == domain.CadenceBiWeekly && period.Kind() == domain.KindMonth:
		return domain.ErrCannotExpenseMonthWhenBiWeekly
	}

	var expenses domain.ExpensedPeriods
	if s.store.Exists(storage.KeyExpenses) {
		if err := s.store.Load(storage.KeyExpenses, &expenses); err != nil {
			return err
		}
	}
	expenses.Insert(period, items)
	if err := s.store.Save(storage.KeyExpenses, expenses); err != nil {
		return err
	}
	s.log.Info().Stringer("period", period).Int("items", len(items)).Msg("expenses recorded")
	return nil
}

func (s *dataService) RecordPeriodOff(period domain.Period) error {
	var info domain.ProtoInvoiceInfo
	if err := s.store.Load(storage.KeyInvoiceInfo, &info); err != nil {
		return err
	}
	target, err := period.DowncastTo(info.Offset.Period.Kind())
	if err != nil {
		return err
	}
	if target.Equal(info.Offset.Period) {
		return domain.ErrPeriodsOffContainsOffset
	}
	info.PeriodsOff.Insert(target)
	if err := info.Validate(); err != nil {
		return err
	}
	if err := s.store.Save(storage.KeyInvoiceInfo, info); err != nil {
		return err
	}
	s.log.Info().Stringer("period", target).Msg("period off recorded")
	return nil
}

func (s *dataService) Validate() (domain.Data, error) {
	svc := &invoiceService{store: s.store, log: s.log}
	data, err := svc.LoadData()
	if err != nil {
		return domain.Data{}, fmt.Errorf("dataset invalid: %w", err)
	}
	return data, nil
}

// Init writes the sample dataset for every key that does not exist yet,
// leaving already-edited files alone.
func (s *dataService) Init() error {
	sample := SampleData()
	seeds := []struct {
		key   storage.Key
		value any
	}{
		{storage.KeyVendor, sample.Vendor},
		{storage.KeyClient, sample.Client},
		{storage.KeyPayment, sample.Payment},
		{storage.KeyServiceFees, sample.ServiceFees},
		{storage.KeyInvoiceInfo, sample.InvoiceInfo},
		{storage.KeyExpenses, sample.Expenses},
	}
	for _, seed := range seeds {
		if s.store.Exists(seed.key) {
			s.log.Debug().Str("key", string(seed.key)).Msg("exists, skipping")
			continue
		}
		if err := s.store.Save(seed.key, seed.value); err != nil {
			return err
		}
	}
	return nil
}
