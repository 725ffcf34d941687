package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/klirr/klirr/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	price, _ := domain.NewAmount("1000")
	fees := domain.ServiceFees{
		Name:    "Software development",
		Rate:    domain.DailyRate(price),
		Cadence: domain.CadenceMonthly,
	}
	if err := store.Save(KeyServiceFees, fees); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(KeyServiceFees) {
		t.Fatal("saved key reported as missing")
	}

	var loaded domain.ServiceFees
	if err := store.Load(KeyServiceFees, &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Name != fees.Name || loaded.Cadence != fees.Cadence {
		t.Errorf("loaded = %+v", loaded)
	}
	if !loaded.Rate.Price.Equal(price) {
		t.Errorf("rate = %s, want %s", loaded.Rate.Price, price)
	}
}

func TestFileStoreHumanReadable(t *testing.T) {
	store := NewFileStore(t.TempDir())

	period, _ := domain.ParsePeriod("2025-01", time.Time{})
	info := domain.ProtoInvoiceInfo{
		Offset:            domain.TimestampedInvoiceNumber{Number: 100, Period: period},
		FooterText:        "Reverse charge",
		EmphasizeColorHex: domain.DefaultEmphasizeColorHex,
	}
	if err := store.Save(KeyInvoiceInfo, info); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(store.Path(KeyInvoiceInfo))
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.Contains(text, "2025-01") {
		t.Errorf("period not legible in file:\n%s", text)
	}
	if !strings.Contains(text, "Reverse charge") {
		t.Errorf("footer not legible in file:\n%s", text)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	var fees domain.ServiceFees
	if err := store.Load(KeyServiceFees, &fees); err == nil {
		t.Fatal("want error for missing file")
	}
	if store.Exists(KeyServiceFees) {
		t.Error("missing key reported as present")
	}
}
