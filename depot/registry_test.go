package depot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Thejas6666/gas-agency-app/depot"
	"github.com/Thejas6666/gas-agency-app/depot/store"
)

func TestRegistry_OpenNewDay_SeedsSummaryRows(t *testing.T) {
	// GIVEN: Three cylinder types on file
	// WHEN: Opening a new day
	// THEN: The day is OPEN with a blank summary row per type

	ctx := context.Background()
	mem := store.NewMemory()
	for _, code := range []string{"14.2KG", "5KG", "19KG"} {
		if _, err := mem.CreateCylinderType(ctx, code); err != nil {
			t.Fatalf("create type: %v", err)
		}
	}

	reg := depot.NewRegistry(mem)
	day, err := reg.OpenNewDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("open day: %v", err)
	}
	if !day.Open() {
		t.Error("new day should be OPEN")
	}
	if day.DeliveryNoMovement {
		t.Error("new day should have the delivery flag cleared")
	}

	rows, err := mem.SummaryRows(ctx, day.ID)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 seeded rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.OpeningFilled != nil || row.Reconciled || row.ItemReceipt != 0 {
			t.Errorf("seeded row for %s is not blank: %+v", row.Code, row)
		}
	}
}

func TestRegistry_OpenNewDay_DuplicateDateRejected(t *testing.T) {
	// GIVEN: An existing (closed) day for March 14
	// WHEN: Opening another day for the same date
	// THEN: Rejected with ErrDuplicateDate carrying the date

	ctx := context.Background()
	mem := store.NewMemory()
	reg := depot.NewRegistry(mem)

	date := depot.NewDate(2026, time.March, 14)
	day, err := reg.OpenNewDay(ctx, date)
	if err != nil {
		t.Fatalf("open day: %v", err)
	}
	if err := mem.CloseDay(ctx, day.ID); err != nil {
		t.Fatalf("close day: %v", err)
	}

	_, err = reg.OpenNewDay(ctx, date)
	if !errors.Is(err, depot.ErrDuplicateDate) {
		t.Fatalf("err = %v, want ErrDuplicateDate", err)
	}
	var dup *depot.DuplicateDateError
	if !errors.As(err, &dup) || !dup.Date.Equal(date) {
		t.Errorf("duplicate error should carry the date, got %v", err)
	}
	if !depot.IsConflict(err) {
		t.Error("duplicate date should classify as a conflict")
	}
}

func TestRegistry_OpenNewDay_SecondOpenDayRejected(t *testing.T) {
	// GIVEN: An OPEN day for March 14
	// WHEN: Opening a day for March 15 without closing the first
	// THEN: Rejected with ErrAnotherDayOpen; one OPEN day at a time

	ctx := context.Background()
	reg := depot.NewRegistry(store.NewMemory())

	if _, err := reg.OpenNewDay(ctx, depot.NewDate(2026, time.March, 14)); err != nil {
		t.Fatalf("open day: %v", err)
	}

	_, err := reg.OpenNewDay(ctx, depot.NewDate(2026, time.March, 15))
	if !errors.Is(err, depot.ErrAnotherDayOpen) {
		t.Errorf("err = %v, want ErrAnotherDayOpen", err)
	}
}

func TestRegistry_ActiveDay_NoneOpen(t *testing.T) {
	// GIVEN: An empty registry
	// WHEN: Resolving the active day
	// THEN: ErrNoActiveDay, which classifies as not-found

	reg := depot.NewRegistry(store.NewMemory())

	_, err := reg.ActiveDay(context.Background())
	if !errors.Is(err, depot.ErrNoActiveDay) {
		t.Fatalf("err = %v, want ErrNoActiveDay", err)
	}
	if !depot.IsNotFound(err) {
		t.Error("ErrNoActiveDay should classify as not-found")
	}
}

func TestRegistry_NextAvailableDate(t *testing.T) {
	// GIVEN: An empty registry, then one with a day for March 14
	// WHEN: Asking for the next available date
	// THEN: Today while empty; the day after the latest day otherwise

	ctx := context.Background()
	mem := store.NewMemory()
	reg := depot.NewRegistry(mem)
	today := depot.NewDate(2026, time.March, 20)

	next, err := reg.NextAvailableDate(ctx, today)
	if err != nil {
		t.Fatalf("next date: %v", err)
	}
	if !next.Equal(today) {
		t.Errorf("next = %s, want today %s on empty registry", next, today)
	}

	if _, err := reg.OpenNewDay(ctx, depot.NewDate(2026, time.March, 14)); err != nil {
		t.Fatalf("open day: %v", err)
	}

	next, err = reg.NextAvailableDate(ctx, today)
	if err != nil {
		t.Fatalf("next date: %v", err)
	}
	if want := depot.NewDate(2026, time.March, 15); !next.Equal(want) {
		t.Errorf("next = %s, want %s", next, want)
	}
}

func TestRegistry_History_ClosedDaysNewestFirst(t *testing.T) {
	// GIVEN: Three days opened and closed in sequence, one still open
	// WHEN: Listing history
	// THEN: Only closed days, newest first

	ctx := context.Background()
	mem := store.NewMemory()
	reg := depot.NewRegistry(mem)

	dates := []depot.Date{
		depot.NewDate(2026, time.March, 10),
		depot.NewDate(2026, time.March, 11),
		depot.NewDate(2026, time.March, 12),
	}
	for _, d := range dates {
		day, err := reg.OpenNewDay(ctx, d)
		if err != nil {
			t.Fatalf("open day %s: %v", d, err)
		}
		if err := mem.CloseDay(ctx, day.ID); err != nil {
			t.Fatalf("close day %s: %v", d, err)
		}
	}
	if _, err := reg.OpenNewDay(ctx, depot.NewDate(2026, time.March, 13)); err != nil {
		t.Fatalf("open current day: %v", err)
	}

	history, err := reg.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 closed days, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Date.After(history[i-1].Date) {
			t.Errorf("history out of order at %d: %s before %s", i, history[i-1].Date, history[i].Date)
		}
	}
}

func TestRegistry_LatestDay_ReturnsOpenOrClosed(t *testing.T) {
	// GIVEN: A closed day followed by an open one
	// WHEN: Asking for the latest day
	// THEN: The open day; after closing it, still that day

	ctx := context.Background()
	mem := store.NewMemory()
	reg := depot.NewRegistry(mem)

	first, err := reg.OpenNewDay(ctx, depot.NewDate(2026, time.March, 10))
	if err != nil {
		t.Fatalf("open day: %v", err)
	}
	if err := mem.CloseDay(ctx, first.ID); err != nil {
		t.Fatalf("close day: %v", err)
	}
	second, err := reg.OpenNewDay(ctx, depot.NewDate(2026, time.March, 11))
	if err != nil {
		t.Fatalf("open day: %v", err)
	}

	latest, err := reg.LatestDay(ctx)
	if err != nil {
		t.Fatalf("latest day: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest = day %d, want %d", latest.ID, second.ID)
	}

	if err := mem.CloseDay(ctx, second.ID); err != nil {
		t.Fatalf("close day: %v", err)
	}
	latest, err = reg.LatestDay(ctx)
	if err != nil {
		t.Fatalf("latest day: %v", err)
	}
	if latest.ID != second.ID || latest.Open() {
		t.Errorf("latest after close = %+v, want closed day %d", latest, second.ID)
	}
}
