package domain

import "errors"

// Period arithmetic errors
var (
	// ErrStartAfterEnd is returned when elapsed-period arithmetic is asked
	// to count backwards from a start period that lies after the end.
	ErrStartAfterEnd = errors.New("start period is after end period")

	// ErrPeriodKindMismatch is returned when month and fortnight periods
	// are mixed in arithmetic or when loaded data disagrees with the input.
	ErrPeriodKindMismatch = errors.New("period kinds do not match")
)

// Validation errors
var (
	// ErrPeriodsOffContainsOffset is returned when the record of periods off
	// contains the numbering offset period itself.
	ErrPeriodsOffContainsOffset = errors.New("record of periods off must not contain the offset period")

	// ErrTargetPeriodOff is returned when asked to invoice a period that is
	// recorded as off.
	ErrTargetPeriodOff = errors.New("target period is recorded as a period off")

	// ErrGranularityTooCoarse is returned when the service granularity is
	// coarser than the target period can carry.
	ErrGranularityTooCoarse = errors.New("granularity too coarse for target period")

	// ErrInvalidTimeOffGranularity is returned when recorded time off is not
	// in the same unit the service is priced in.
	ErrInvalidTimeOffGranularity = errors.New("time off granularity does not match service granularity")
)

// Cadence errors
var (
	ErrCannotInvoiceMonthWhenBiWeekly    = errors.New("cannot invoice a whole month on a bi-weekly cadence")
	ErrCannotExpenseFortnightWhenMonthly = errors.New("cannot record expenses for a fortnight on a monthly cadence")
	ErrCannotExpenseMonthWhenBiWeekly    = errors.New("cannot record expenses for a whole month on a bi-weekly cadence")
)

// Ledger and conversion errors
var (
	// ErrExpensesMissing is returned when an expenses invoice is requested
	// for a period with no recorded expenses.
	ErrExpensesMissing = errors.New("target period has no recorded expenses")

	// ErrNoExchangeRate is returned when no rate is known for a source
	// currency appearing in the line items.
	ErrNoExchangeRate = errors.New("found no exchange rate")

	// ErrDecimalConversion is returned when a decimal amount cannot be
	// represented as a finite float64 for the renderer.
	ErrDecimalConversion = errors.New("decimal does not convert to a finite float64")
)

// Parse errors
var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrInvalidCurrency    = errors.New("unknown currency code")
	ErrInvalidItem        = errors.New("invalid expense item")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidGranularity = errors.New("unknown granularity")
	ErrInvalidCadence     = errors.New("unknown cadence")
)
