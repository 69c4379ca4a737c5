package depot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Thejas6666/gas-agency-app/depot"
	"github.com/Thejas6666/gas-agency-app/depot/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type ledgerFixture struct {
	mem    *store.Memory
	ledger *depot.Ledger
	day    depot.StockDay
	types  []depot.CylinderType
}

// newLedgerFixture seeds two cylinder types, two drivers and one open
// day with opening stock already entered.
func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	var types []depot.CylinderType
	for _, code := range []string{"14.2KG", "5KG"} {
		typ, err := mem.CreateCylinderType(ctx, code)
		if err != nil {
			t.Fatalf("create type: %v", err)
		}
		types = append(types, typ)
	}
	for _, name := range []string{"Ramesh", "Suresh"} {
		if _, err := mem.CreateDeliveryPerson(ctx, name); err != nil {
			t.Fatalf("create person: %v", err)
		}
	}

	day, err := mem.CreateDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("create day: %v", err)
	}

	ledger := depot.NewLedger(mem)
	for _, typ := range types {
		if err := ledger.SetOpeningStock(ctx, day.ID, typ.ID, 100, 40, 0); err != nil {
			t.Fatalf("set opening: %v", err)
		}
	}

	return ledgerFixture{mem: mem, ledger: ledger, day: day, types: types}
}

func (f ledgerFixture) rows(t *testing.T) []depot.SummaryRow {
	t.Helper()
	rows, err := f.mem.SummaryRows(context.Background(), f.day.ID)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	return rows
}

func (f ledgerFixture) finalize(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := f.ledger.RecordSupplierMovement(ctx, f.day.ID, f.types[0].ID, 10, 5); err != nil {
		t.Fatalf("record movement: %v", err)
	}
	if err := f.ledger.RecordDeliveryIssues(ctx, f.day.ID, []depot.DeliveryIssue{
		{DeliveryPersonID: 1, CylinderTypeID: f.types[0].ID, RegularQty: 8},
	}); err != nil {
		t.Fatalf("record issues: %v", err)
	}
	if err := depot.NewReconciler(f.mem).Finalize(ctx, f.day.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
}

// =============================================================================
// BATCH WRITES - all rows or none
// =============================================================================

func TestLedger_RecordSupplierMovements_UnknownTypeAppliesNothing(t *testing.T) {
	// GIVEN: A batch with one valid entry followed by one for a type
	// the day does not carry
	// WHEN: Recording the batch
	// THEN: Rejected up front; the valid entry is not applied either

	ctx := context.Background()
	f := newLedgerFixture(t)

	err := f.ledger.RecordSupplierMovements(ctx, f.day.ID, []depot.MovementEntry{
		{CylinderTypeID: f.types[0].ID, Receipt: 10, Return: 5},
		{CylinderTypeID: 9999, Receipt: 1},
	})
	if !errors.Is(err, depot.ErrUnknownCylinderType) {
		t.Fatalf("err = %v, want ErrUnknownCylinderType", err)
	}

	for _, row := range f.rows(t) {
		if row.ItemReceipt != 0 || row.ItemReturn != 0 {
			t.Errorf("%s carries movement from a rejected batch: %+v", row.Code, row)
		}
	}
}

func TestLedger_RecordOpeningStock_UnknownTypeAppliesNothing(t *testing.T) {
	// GIVEN: An opening-stock batch with one valid entry and one for an
	// unknown type
	// WHEN: Recording the batch on a fresh day
	// THEN: Rejected up front; no opening figure sticks

	ctx := context.Background()
	mem := store.NewMemory()
	typ, _ := mem.CreateCylinderType(ctx, "14.2KG")
	day, err := mem.CreateDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("create day: %v", err)
	}

	ledger := depot.NewLedger(mem)
	err = ledger.RecordOpeningStock(ctx, day.ID, []depot.OpeningEntry{
		{CylinderTypeID: typ.ID, Filled: 50, Empty: 20},
		{CylinderTypeID: 9999, Filled: 1},
	})
	if !errors.Is(err, depot.ErrUnknownCylinderType) {
		t.Fatalf("err = %v, want ErrUnknownCylinderType", err)
	}

	rows, err := mem.SummaryRows(ctx, day.ID)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	if rows[0].OpeningFilled != nil {
		t.Errorf("opening figures stuck from a rejected batch: %+v", rows[0])
	}
}

func TestLedger_RecordOpeningStock_ValidBatchAppliesAllRows(t *testing.T) {
	// GIVEN: A two-row opening-stock batch
	// WHEN: Recording it
	// THEN: Both rows hold their figures

	ctx := context.Background()
	mem := store.NewMemory()
	var types []depot.CylinderType
	for _, code := range []string{"14.2KG", "5KG"} {
		typ, _ := mem.CreateCylinderType(ctx, code)
		types = append(types, typ)
	}
	day, err := mem.CreateDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("create day: %v", err)
	}

	ledger := depot.NewLedger(mem)
	if err := ledger.RecordOpeningStock(ctx, day.ID, []depot.OpeningEntry{
		{CylinderTypeID: types[0].ID, Filled: 50, Empty: 20, Defective: 2},
		{CylinderTypeID: types[1].ID, Filled: 30, Empty: 10},
	}); err != nil {
		t.Fatalf("record opening: %v", err)
	}

	rows, err := mem.SummaryRows(ctx, day.ID)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	for _, row := range rows {
		if row.OpeningFilled == nil || row.OpeningEmpty == nil {
			t.Errorf("%s missing opening figures after a valid batch", row.Code)
		}
	}
}

// =============================================================================
// IOCL MOVEMENT GATING
// =============================================================================

func TestLedger_SupplierMovement_RequiresOpeningStock(t *testing.T) {
	// GIVEN: A fresh day with no opening stock entered
	// WHEN: Recording an IOCL receipt
	// THEN: Rejected with a prerequisite error naming step 1

	ctx := context.Background()
	mem := store.NewMemory()
	typ, _ := mem.CreateCylinderType(ctx, "14.2KG")
	day, err := mem.CreateDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("create day: %v", err)
	}

	ledger := depot.NewLedger(mem)
	err = ledger.RecordSupplierMovement(ctx, day.ID, typ.ID, 10, 5)
	if !errors.Is(err, depot.ErrPrerequisiteNotMet) {
		t.Fatalf("err = %v, want ErrPrerequisiteNotMet", err)
	}
	var prereq *depot.PrerequisiteError
	if !errors.As(err, &prereq) || prereq.Step != depot.StepOpeningStock {
		t.Errorf("prerequisite error should name the opening-stock step, got %v", err)
	}
}

func TestLedger_ExplicitMovementAndFlag_OverwriteEachOther(t *testing.T) {
	// GIVEN: An open day with opening stock
	// WHEN: Flagging no-movement, then recording a real receipt, then
	// flagging again
	// THEN: Each write replaces the other; quantities and the flag
	// never coexist on a row

	f := newLedgerFixture(t)
	ctx := context.Background()

	if err := f.ledger.SetSupplierNoMovement(ctx, f.day.ID); err != nil {
		t.Fatalf("no-movement: %v", err)
	}
	rows := f.rows(t)
	if !rows[0].IOCLNoMovement || !rows[1].IOCLNoMovement {
		t.Fatal("flag should be set on every row")
	}

	if err := f.ledger.RecordSupplierMovement(ctx, f.day.ID, f.types[0].ID, 30, 25); err != nil {
		t.Fatalf("record movement: %v", err)
	}
	rows = f.rows(t)
	if rows[0].IOCLNoMovement {
		t.Error("explicit write should clear the flag on its row")
	}
	if rows[0].ItemReceipt != 30 || rows[0].ItemReturn != 25 {
		t.Errorf("movement = %d/%d, want 30/25", rows[0].ItemReceipt, rows[0].ItemReturn)
	}

	if err := f.ledger.SetSupplierNoMovement(ctx, f.day.ID); err != nil {
		t.Fatalf("no-movement: %v", err)
	}
	rows = f.rows(t)
	if rows[0].ItemReceipt != 0 || rows[0].ItemReturn != 0 {
		t.Error("flagging no-movement should zero recorded quantities")
	}
	if !rows[0].IOCLNoMovement {
		t.Error("flag should be set after flagging")
	}
}

func TestLedger_ResetSupplierMovements_ReopensStep2(t *testing.T) {
	// GIVEN: A day with IOCL receipts recorded
	// WHEN: Resetting supplier movements
	// THEN: Quantities and the flag are both cleared

	f := newLedgerFixture(t)
	ctx := context.Background()

	if err := f.ledger.RecordSupplierMovement(ctx, f.day.ID, f.types[0].ID, 30, 25); err != nil {
		t.Fatalf("record movement: %v", err)
	}
	if err := f.ledger.ResetSupplierMovements(ctx, f.day.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, row := range f.rows(t) {
		if row.ItemReceipt != 0 || row.ItemReturn != 0 || row.IOCLNoMovement {
			t.Errorf("row %s not blank after reset: %+v", row.Code, row)
		}
	}
}

// =============================================================================
// DELIVERY ISSUES
// =============================================================================

func TestLedger_DeliveryIssues_UpsertOverwritesQuantities(t *testing.T) {
	// GIVEN: A driver's entry for one cylinder type
	// WHEN: Submitting a second entry for the same (driver, type) key
	// THEN: All four quantities are replaced, not added, and
	// tv_out_qty on the summary follows the ledger

	f := newLedgerFixture(t)
	ctx := context.Background()

	entry := depot.DeliveryIssue{DeliveryPersonID: 1, CylinderTypeID: f.types[0].ID,
		RegularQty: 10, NCQty: 2, DBCQty: 1, TVOutQty: 4}
	if err := f.ledger.RecordDeliveryIssues(ctx, f.day.ID, []depot.DeliveryIssue{entry}); err != nil {
		t.Fatalf("record issues: %v", err)
	}

	entry.RegularQty, entry.NCQty, entry.DBCQty, entry.TVOutQty = 7, 0, 0, 1
	if err := f.ledger.RecordDeliveryIssues(ctx, f.day.ID, []depot.DeliveryIssue{entry}); err != nil {
		t.Fatalf("record issues: %v", err)
	}

	issues, err := f.mem.Issues(ctx, f.day.ID)
	if err != nil {
		t.Fatalf("issues: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue row after upsert, got %d", len(issues))
	}
	got := issues[0]
	if got.RegularQty != 7 || got.NCQty != 0 || got.DBCQty != 0 || got.TVOutQty != 1 {
		t.Errorf("quantities not overwritten: %+v", got)
	}

	rows := f.rows(t)
	if rows[0].TVOutQty != 1 {
		t.Errorf("summary tv_out_qty = %d, want 1 (recomputed, not incremented)", rows[0].TVOutQty)
	}
}

func TestLedger_DeliveryIssues_AllZeroEntriesSkipped(t *testing.T) {
	// GIVEN: A submission mixing a real entry with an all-zero one
	// WHEN: Recording
	// THEN: Only the real entry creates a row

	f := newLedgerFixture(t)
	ctx := context.Background()

	err := f.ledger.RecordDeliveryIssues(ctx, f.day.ID, []depot.DeliveryIssue{
		{DeliveryPersonID: 1, CylinderTypeID: f.types[0].ID, RegularQty: 5},
		{DeliveryPersonID: 2, CylinderTypeID: f.types[0].ID},
	})
	if err != nil {
		t.Fatalf("record issues: %v", err)
	}

	issues, _ := f.mem.Issues(ctx, f.day.ID)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue row, got %d", len(issues))
	}
	if issues[0].Source != depot.IssueSourceDriver {
		t.Errorf("source = %q, want %q", issues[0].Source, depot.IssueSourceDriver)
	}
}

func TestLedger_DeliveryNoMovement_DeletesIssues(t *testing.T) {
	// GIVEN: Recorded delivery issues with transfer-out quantities
	// WHEN: Enabling the day-level no-movement flag
	// THEN: Issue rows are gone and tv_out_qty is zeroed; a set flag
	// and a non-empty ledger never coexist. Disabling the flag does
	// not resurrect the rows.

	f := newLedgerFixture(t)
	ctx := context.Background()

	if err := f.ledger.RecordDeliveryIssues(ctx, f.day.ID, []depot.DeliveryIssue{
		{DeliveryPersonID: 1, CylinderTypeID: f.types[0].ID, RegularQty: 5, TVOutQty: 3},
	}); err != nil {
		t.Fatalf("record issues: %v", err)
	}

	if err := f.ledger.SetDeliveryNoMovement(ctx, f.day.ID, true); err != nil {
		t.Fatalf("no-movement: %v", err)
	}

	issues, _ := f.mem.Issues(ctx, f.day.ID)
	if len(issues) != 0 {
		t.Fatalf("expected 0 issue rows, got %d", len(issues))
	}
	if f.rows(t)[0].TVOutQty != 0 {
		t.Error("tv_out_qty should be zeroed with the ledger")
	}

	if err := f.ledger.SetDeliveryNoMovement(ctx, f.day.ID, false); err != nil {
		t.Fatalf("clear no-movement: %v", err)
	}
	issues, _ = f.mem.Issues(ctx, f.day.ID)
	if len(issues) != 0 {
		t.Error("disabling the flag must not resurrect deleted rows")
	}
}

func TestLedger_ResetAll_ReturnsDayToBlankSlate(t *testing.T) {
	// GIVEN: A day with IOCL receipts, delivery issues and the
	// delivery flag toggled along the way
	// WHEN: Resetting all movements
	// THEN: Issues deleted, IOCL fields cleared, both flags cleared

	f := newLedgerFixture(t)
	ctx := context.Background()

	if err := f.ledger.RecordSupplierMovement(ctx, f.day.ID, f.types[0].ID, 30, 25); err != nil {
		t.Fatalf("record movement: %v", err)
	}
	if err := f.ledger.RecordDeliveryIssues(ctx, f.day.ID, []depot.DeliveryIssue{
		{DeliveryPersonID: 1, CylinderTypeID: f.types[0].ID, RegularQty: 5, TVOutQty: 2},
	}); err != nil {
		t.Fatalf("record issues: %v", err)
	}

	if err := f.ledger.ResetAll(ctx, f.day.ID); err != nil {
		t.Fatalf("reset all: %v", err)
	}

	state, err := f.mem.LoadDayState(ctx, f.day.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.IssueCount != 0 {
		t.Errorf("issue count = %d, want 0", state.IssueCount)
	}
	if state.MovementTotal() != 0 || state.AnyIOCLNoMovement() {
		t.Error("IOCL fields should be blank after reset")
	}
	if state.Day.DeliveryNoMovement {
		t.Error("delivery flag should be cleared after reset")
	}
	if !state.HasOpening() {
		t.Error("reset must not touch opening stock")
	}
}

// =============================================================================
// THE ONE-WAY LOCK
// =============================================================================

func TestLedger_AllWritesRejectedAfterFinalize(t *testing.T) {
	// GIVEN: A finalized day
	// WHEN: Attempting every ledger mutation
	// THEN: Each one fails with the step-locked error; the lock has no
	// unlock path

	f := newLedgerFixture(t)
	f.finalize(t)
	ctx := context.Background()

	mutations := map[string]func() error{
		"opening stock": func() error {
			return f.ledger.SetOpeningStock(ctx, f.day.ID, f.types[0].ID, 1, 1, 0)
		},
		"supplier movement": func() error {
			return f.ledger.RecordSupplierMovement(ctx, f.day.ID, f.types[0].ID, 1, 1)
		},
		"supplier no-movement": func() error {
			return f.ledger.SetSupplierNoMovement(ctx, f.day.ID)
		},
		"supplier reset": func() error {
			return f.ledger.ResetSupplierMovements(ctx, f.day.ID)
		},
		"delivery issues": func() error {
			return f.ledger.RecordDeliveryIssues(ctx, f.day.ID, []depot.DeliveryIssue{
				{DeliveryPersonID: 1, CylinderTypeID: f.types[0].ID, RegularQty: 1},
			})
		},
		"delivery no-movement": func() error {
			return f.ledger.SetDeliveryNoMovement(ctx, f.day.ID, true)
		},
		"reset all": func() error {
			return f.ledger.ResetAll(ctx, f.day.ID)
		},
	}

	for name, mutate := range mutations {
		if err := mutate(); !errors.Is(err, depot.ErrStepLocked) {
			t.Errorf("%s after finalize: err = %v, want ErrStepLocked", name, err)
		}
	}
}

func TestLedger_ClosedDay_RejectsWrites(t *testing.T) {
	// GIVEN: A day that has been closed
	// WHEN: Recording a movement
	// THEN: Rejected with ErrDayClosed

	f := newLedgerFixture(t)
	ctx := context.Background()
	if err := f.mem.CloseDay(ctx, f.day.ID); err != nil {
		t.Fatalf("close day: %v", err)
	}

	err := f.ledger.RecordSupplierMovement(ctx, f.day.ID, f.types[0].ID, 1, 1)
	if !errors.Is(err, depot.ErrDayClosed) {
		t.Errorf("err = %v, want ErrDayClosed", err)
	}
}
