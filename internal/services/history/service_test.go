package history

import (
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
)

func newTestService(seed int64) *Service {
	return NewService(common.SynthesisConfig{
		Seed:            seed,
		DailyDrift:      0.0008,
		DailyVolatility: 0.015,
	}, common.NewLogger("error"))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func snapshotOn(d time.Time, value float64) models.PortfolioSnapshot {
	return models.PortfolioSnapshot{Date: d, TotalCurrentValue: value}
}

func TestAppend_NewDateAppendsSorted(t *testing.T) {
	svc := newTestService(42)

	history := &models.PerformanceHistory{Snapshots: []models.PortfolioSnapshot{
		snapshotOn(date(2025, 6, 2), 1000),
		snapshotOn(date(2025, 6, 4), 1020),
	}}

	// Out-of-order insert lands in date order.
	history = svc.Append(history, snapshotOn(date(2025, 6, 3), 1010))

	if history.Len() != 3 {
		t.Fatalf("got %d snapshots, want 3", history.Len())
	}
	for i := 1; i < history.Len(); i++ {
		if !history.Snapshots[i-1].Date.Before(history.Snapshots[i].Date) {
			t.Fatalf("history not sorted at index %d", i)
		}
	}
	if history.Snapshots[1].TotalCurrentValue != 1010 {
		t.Errorf("middle snapshot: got %v, want 1010", history.Snapshots[1].TotalCurrentValue)
	}
}

func TestAppend_SameDayReplaces(t *testing.T) {
	svc := newTestService(42)

	history := &models.PerformanceHistory{Snapshots: []models.PortfolioSnapshot{
		snapshotOn(date(2025, 6, 2), 1000),
	}}

	// Later run on the same calendar date replaces, never duplicates.
	replacement := snapshotOn(date(2025, 6, 2).Add(14*time.Hour), 1055)
	history = svc.Append(history, replacement)

	if history.Len() != 1 {
		t.Fatalf("got %d snapshots, want 1 after same-day upsert", history.Len())
	}
	if history.Snapshots[0].TotalCurrentValue != 1055 {
		t.Errorf("got value %v, want 1055", history.Snapshots[0].TotalCurrentValue)
	}
}

func TestAppend_NilHistory(t *testing.T) {
	svc := newTestService(42)
	history := svc.Append(nil, snapshotOn(date(2025, 6, 2), 1000))
	if history == nil || history.Len() != 1 {
		t.Fatal("append to nil history should create a single-entry history")
	}
}

func TestSynthesize_DeterministicBySeed(t *testing.T) {
	positions := []models.Position{
		{Symbol: "AAA", PurchasePrice: 100, Quantity: 10, PurchaseDate: date(2025, 1, 6)},
	}
	asOf := date(2025, 3, 31)

	a, err := newTestService(42).Synthesize(positions, asOf)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	b, err := newTestService(42).Synthesize(positions, asOf)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if a.Len() != b.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Snapshots {
		if a.Snapshots[i] != b.Snapshots[i] {
			t.Fatalf("snapshot %d differs between identical seeds", i)
		}
	}

	c, err := newTestService(7).Synthesize(positions, asOf)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	same := true
	for i := range a.Snapshots {
		if a.Snapshots[i].TotalCurrentValue != c.Snapshots[i].TotalCurrentValue {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical series")
	}
}

func TestSynthesize_BusinessDaysOnly(t *testing.T) {
	positions := []models.Position{
		{Symbol: "AAA", PurchasePrice: 100, Quantity: 10, PurchaseDate: date(2025, 1, 6)},
	}

	history, err := newTestService(42).Synthesize(positions, date(2025, 1, 31))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if !history.Synthetic {
		t.Error("synthesized history must be flagged Synthetic")
	}
	// Jan 6 (Mon) through Jan 31 (Fri) 2025 spans exactly 4 full weeks.
	if history.Len() != 20 {
		t.Errorf("got %d snapshots, want 20 business days", history.Len())
	}
	for _, snap := range history.Snapshots {
		if wd := snap.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("weekend snapshot at %s", snap.Date.Format("2006-01-02"))
		}
		if snap.TotalInvestment != 1000 {
			t.Errorf("investment should stay constant at 1000, got %v", snap.TotalInvestment)
		}
		if snap.TotalCurrentValue <= 0 {
			t.Errorf("non-positive synthetic value at %s", snap.Date.Format("2006-01-02"))
		}
	}
}

func TestSynthesize_InputValidation(t *testing.T) {
	svc := newTestService(42)
	valid := models.Position{Symbol: "AAA", PurchasePrice: 100, Quantity: 10, PurchaseDate: date(2025, 1, 6)}

	if _, err := svc.Synthesize(nil, date(2025, 3, 1)); err == nil {
		t.Error("expected error for no positions")
	}

	noDate := valid
	noDate.PurchaseDate = time.Time{}
	if _, err := svc.Synthesize([]models.Position{noDate}, date(2025, 3, 1)); err == nil {
		t.Error("expected error when no purchase dates present")
	}

	if _, err := svc.Synthesize([]models.Position{valid}, date(2024, 12, 1)); err == nil {
		t.Error("expected error when as-of precedes earliest purchase")
	}

	invalid := valid
	invalid.Quantity = 0
	if _, err := svc.Synthesize([]models.Position{invalid}, date(2025, 3, 1)); err == nil {
		t.Error("expected error for invalid position")
	}
}
