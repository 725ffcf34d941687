package domain

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func expenseItem(t *testing.T, spec string) Item {
	t.Helper()
	item, err := ParseItem(spec)
	if err != nil {
		t.Fatalf("ParseItem(%q): %v", spec, err)
	}
	return item
}

func TestExpensesMergeDuplicates(t *testing.T) {
	period := mustParsePeriod(t, "2025-05")
	var ledger ExpensedPeriods
	ledger.Insert(period, []Item{
		expenseItem(t, "Train ticket,50,EUR,1,2025-05-10"),
		expenseItem(t, "Hotel,120,EUR,2,2025-05-10"),
		expenseItem(t, "Train ticket,50,EUR,1,2025-05-10"),
	})

	items, err := ledger.Get(period)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Name != "Train ticket" || !items[0].Quantity.Equal(AmountFromInt(2)) {
		t.Errorf("merged row = %+v", items[0])
	}
	if items[1].Name != "Hotel" {
		t.Errorf("first-seen order not preserved: %+v", items[1])
	}
}

// inserting the same items again doubles quantities without adding rows
func TestExpensesInsertTwiceDoublesQuantities(t *testing.T) {
	period := mustParsePeriod(t, "2025-05")
	items := []Item{
		expenseItem(t, "Taxi,30,USD,1,2025-05-02"),
		expenseItem(t, "Lunch,15,USD,3,2025-05-03"),
	}
	var ledger ExpensedPeriods
	ledger.Insert(period, items)
	ledger.Insert(period, items)

	got, err := ledger.Get(period)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].Quantity.Equal(AmountFromInt(2)) || !got[1].Quantity.Equal(AmountFromInt(6)) {
		t.Errorf("quantities = %s, %s", got[0].Quantity.Decimal, got[1].Quantity.Decimal)
	}
}

// different unit price means a distinct row, not a merge
func TestExpensesDistinctPriceNotMerged(t *testing.T) {
	period := mustParsePeriod(t, "2025-05")
	var ledger ExpensedPeriods
	ledger.Insert(period, []Item{
		expenseItem(t, "Train ticket,50,EUR,1,2025-05-10"),
		expenseItem(t, "Train ticket,55,EUR,1,2025-05-10"),
	})
	items, _ := ledger.Get(period)
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
}

func TestExpensesGetMissingPeriod(t *testing.T) {
	var ledger ExpensedPeriods
	_, err := ledger.Get(mustParsePeriod(t, "2025-06"))
	if !errors.Is(err, ErrExpensesMissing) {
		t.Errorf("want ErrExpensesMissing, got %v", err)
	}
}

func TestExpensesYAMLRoundTrip(t *testing.T) {
	period := mustParsePeriod(t, "2025-05")
	var ledger ExpensedPeriods
	ledger.Insert(period, []Item{
		expenseItem(t, "Hotel,120.50,GBP,2,2025-05-10"),
	})

	encoded, err := yaml.Marshal(ledger)
	if err != nil {
		t.Fatal(err)
	}
	var decoded ExpensedPeriods
	if err := yaml.Unmarshal(encoded, &decoded); err != nil {
		t.Fatal(err)
	}
	items, err := decoded.Get(period)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Currency != GBP || items[0].UnitPrice.Decimal.String() != "120.5" {
		t.Errorf("round trip lost data: %+v", items)
	}
}
