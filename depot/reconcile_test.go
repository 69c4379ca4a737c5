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
// PROJECTION - Pure conservation math
// =============================================================================

func TestProjectClosing_TypicalDay(t *testing.T) {
	// GIVEN: Opening 50 filled / 20 empty, a truck delivering 10 and
	// taking 5 empties back, and drivers issuing 8 regular, 1 new
	// connection, 1 deposit-backed and 2 transfer-out
	// WHEN: Projecting the closing balances
	// THEN: closing_filled = 50+10-(8+1+1) = 50
	//       closing_empty  = 20+8+2-5      = 25
	//       total_stock    = 50+25+0       = 75

	state := blankState()
	state.Rows = state.Rows[:1]
	state.Rows[0].OpeningFilled = intp(50)
	state.Rows[0].OpeningEmpty = intp(20)
	state.Rows[0].ItemReceipt = 10
	state.Rows[0].ItemReturn = 5
	state.IssueCount = 2
	state.IssueTotals[1] = depot.IssueTotals{
		Regular:       8,
		NonCash:       1,
		DepositBacked: 1,
		TransferOut:   2,
	}

	rows := depot.ProjectClosing(state)

	if len(rows) != 1 {
		t.Fatalf("expected 1 closing row, got %d", len(rows))
	}
	got := rows[0]
	if got.ClosingFilled != 50 {
		t.Errorf("closing filled = %d, want 50", got.ClosingFilled)
	}
	if got.ClosingEmpty != 25 {
		t.Errorf("closing empty = %d, want 25", got.ClosingEmpty)
	}
	if got.TotalStock != 75 {
		t.Errorf("total stock = %d, want 75", got.TotalStock)
	}
}

func TestProjectClosing_NullInputsCoalesceToZero(t *testing.T) {
	// GIVEN: A row whose opening figures were never entered
	// WHEN: Projecting
	// THEN: Nil counts as zero; the math never panics and the result is
	// the (possibly negative) pure arithmetic outcome

	state := blankState()
	state.IssueTotals[1] = depot.IssueTotals{Regular: 3}

	rows := depot.ProjectClosing(state)

	if rows[0].ClosingFilled != -3 {
		t.Errorf("closing filled = %d, want -3", rows[0].ClosingFilled)
	}
	if rows[0].ClosingEmpty != 3 {
		t.Errorf("closing empty = %d, want 3", rows[0].ClosingEmpty)
	}
	if rows[1].ClosingFilled != 0 || rows[1].ClosingEmpty != 0 || rows[1].TotalStock != 0 {
		t.Errorf("untouched row should project all zeros, got %+v", rows[1])
	}
}

func TestProjectClosing_ConservationHoldsPerRow(t *testing.T) {
	// GIVEN: Several rows with assorted movements
	// WHEN: Projecting
	// THEN: Each row satisfies the conservation identities exactly

	state := depot.DayState{
		Day: openDay(1),
		Rows: []depot.SummaryRow{
			{DayID: 1, CylinderTypeID: 1, Code: "14.2KG", OpeningFilled: intp(120), OpeningEmpty: intp(45), ItemReceipt: 30, ItemReturn: 25, DefectiveEmptyVehicle: 2},
			{DayID: 1, CylinderTypeID: 2, Code: "5KG", OpeningFilled: intp(60), OpeningEmpty: intp(20), DefectiveEmptyVehicle: 1},
			{DayID: 1, CylinderTypeID: 3, Code: "19KG", OpeningFilled: intp(40), OpeningEmpty: intp(15), ItemReceipt: 10, ItemReturn: 8},
		},
		IssueTotals: map[int64]depot.IssueTotals{
			1: {Regular: 43, NonCash: 2, DepositBacked: 1, TransferOut: 3},
			2: {Regular: 9, TransferOut: 1},
			3: {Regular: 6, NonCash: 1},
		},
	}

	for _, row := range depot.ProjectClosing(state) {
		wantFilled := row.OpeningFilled + row.ItemReceipt - (row.Regular + row.NonCash + row.DepositBacked)
		wantEmpty := row.OpeningEmpty + row.Regular + row.TransferOut - row.ItemReturn

		if row.ClosingFilled != wantFilled {
			t.Errorf("%s closing filled = %d, want %d", row.Code, row.ClosingFilled, wantFilled)
		}
		if row.ClosingEmpty != wantEmpty {
			t.Errorf("%s closing empty = %d, want %d", row.Code, row.ClosingEmpty, wantEmpty)
		}
		if row.TotalStock != row.ClosingFilled+row.ClosingEmpty+row.Defective {
			t.Errorf("%s total stock = %d, want %d", row.Code, row.TotalStock, row.ClosingFilled+row.ClosingEmpty+row.Defective)
		}
	}
}

func TestProjectClosing_Deterministic(t *testing.T) {
	// GIVEN: One day state
	// WHEN: Projecting twice
	// THEN: Identical rows; the projection reads nothing but its input

	state := blankState()
	state.Rows[0].OpeningFilled = intp(50)
	state.Rows[0].OpeningEmpty = intp(20)
	state.Rows[0].ItemReceipt = 10
	state.IssueTotals[1] = depot.IssueTotals{Regular: 8, TransferOut: 2}

	first := depot.ProjectClosing(state)
	second := depot.ProjectClosing(state)

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("row %d differs between projections: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// =============================================================================
// FINALIZE - Gate, lock and committed figures
// =============================================================================

// workedDay builds a memory store with one open day carried through
// steps 1-3: opening stock, a receipt, and one delivery issue.
func workedDay(t *testing.T) (*store.Memory, *depot.Reconciler, depot.StockDay) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	typ, err := mem.CreateCylinderType(ctx, "14.2KG")
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	if _, err := mem.CreateDeliveryPerson(ctx, "Ramesh"); err != nil {
		t.Fatalf("create person: %v", err)
	}

	day, err := mem.CreateDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("create day: %v", err)
	}

	if err := mem.SetOpeningStock(ctx, day.ID, typ.ID, 50, 20, 0); err != nil {
		t.Fatalf("set opening: %v", err)
	}
	if err := mem.SetSupplierMovement(ctx, day.ID, typ.ID, 10, 5); err != nil {
		t.Fatalf("set movement: %v", err)
	}
	if err := mem.UpsertIssues(ctx, day.ID, []depot.DeliveryIssue{{
		DayID: day.ID, DeliveryPersonID: 1, CylinderTypeID: typ.ID,
		RegularQty: 8, NCQty: 1, DBCQty: 1, TVOutQty: 2, Source: depot.IssueSourceDriver,
	}}); err != nil {
		t.Fatalf("upsert issues: %v", err)
	}

	return mem, depot.NewReconciler(mem), day
}

func TestReconciler_Finalize_CommitsProjectionAndLocks(t *testing.T) {
	// GIVEN: A day carried through steps 1-3
	// WHEN: Finalizing
	// THEN: Every summary row holds the projected figures and the lock
	// bit; a second finalize is rejected outright

	ctx := context.Background()
	mem, rec, day := workedDay(t)

	if err := rec.Finalize(ctx, day.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	rows, err := mem.SummaryRows(ctx, day.ID)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	row := rows[0]
	if !row.Reconciled {
		t.Error("lock bit not set")
	}
	if row.ClosingFilled == nil || *row.ClosingFilled != 50 {
		t.Errorf("closing filled = %v, want 50", row.ClosingFilled)
	}
	if row.ClosingEmpty == nil || *row.ClosingEmpty != 25 {
		t.Errorf("closing empty = %v, want 25", row.ClosingEmpty)
	}
	if row.TotalStock == nil || *row.TotalStock != 75 {
		t.Errorf("total stock = %v, want 75", row.TotalStock)
	}
	if row.SalesRegular != 8 || row.NCQty != 1 || row.DBCQty != 1 || row.TVOutQty != 2 {
		t.Errorf("issue totals not committed: %+v", row)
	}

	if err := rec.Finalize(ctx, day.ID); !errors.Is(err, depot.ErrAlreadyFinalized) {
		t.Errorf("second finalize: err = %v, want ErrAlreadyFinalized", err)
	}
}

func TestReconciler_Finalize_RequiresDeliveriesStep(t *testing.T) {
	// GIVEN: A day with opening stock and IOCL movement but no
	// delivery entry and no no-movement flag
	// WHEN: Finalizing
	// THEN: Rejected with a prerequisite error naming step 3

	ctx := context.Background()
	mem := store.NewMemory()
	typ, _ := mem.CreateCylinderType(ctx, "14.2KG")
	day, err := mem.CreateDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("create day: %v", err)
	}
	if err := mem.SetOpeningStock(ctx, day.ID, typ.ID, 50, 20, 0); err != nil {
		t.Fatalf("set opening: %v", err)
	}
	if err := mem.SetSupplierMovement(ctx, day.ID, typ.ID, 10, 5); err != nil {
		t.Fatalf("set movement: %v", err)
	}

	rec := depot.NewReconciler(mem)
	err = rec.Finalize(ctx, day.ID)
	if !errors.Is(err, depot.ErrPrerequisiteNotMet) {
		t.Fatalf("err = %v, want ErrPrerequisiteNotMet", err)
	}
	var prereq *depot.PrerequisiteError
	if !errors.As(err, &prereq) || prereq.Step != depot.StepDeliveries {
		t.Errorf("prerequisite error should name the deliveries step, got %v", err)
	}
}

func TestReconciler_Finalize_NoMovementDay(t *testing.T) {
	// GIVEN: A day where both no-movement shortcuts were taken
	// WHEN: Finalizing
	// THEN: Closing balances equal opening balances exactly

	ctx := context.Background()
	mem := store.NewMemory()
	typ, _ := mem.CreateCylinderType(ctx, "14.2KG")
	day, err := mem.CreateDay(ctx, depot.NewDate(2026, time.March, 14))
	if err != nil {
		t.Fatalf("create day: %v", err)
	}
	if err := mem.SetOpeningStock(ctx, day.ID, typ.ID, 50, 20, 3); err != nil {
		t.Fatalf("set opening: %v", err)
	}
	if err := mem.SetSupplierNoMovement(ctx, day.ID); err != nil {
		t.Fatalf("iocl no-movement: %v", err)
	}
	if err := mem.SetDeliveryNoMovement(ctx, day.ID, true); err != nil {
		t.Fatalf("delivery no-movement: %v", err)
	}

	rec := depot.NewReconciler(mem)
	if err := rec.Finalize(ctx, day.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	rows, _ := mem.SummaryRows(ctx, day.ID)
	row := rows[0]
	if *row.ClosingFilled != 50 || *row.ClosingEmpty != 20 {
		t.Errorf("closing = %d/%d, want 50/20", *row.ClosingFilled, *row.ClosingEmpty)
	}
	if *row.TotalStock != 73 {
		t.Errorf("total stock = %d, want 73 (50+20+3 defective)", *row.TotalStock)
	}
}

func TestMemory_FinalizeDay_UnknownTypeLeavesNothingApplied(t *testing.T) {
	// GIVEN: Two cylinder types, but closing rows covering only one of
	// them
	// WHEN: Finalizing at the store level
	// THEN: Rejected, and no row carries the lock bit or closing
	// figures; all rows flip together or none do

	ctx := context.Background()
	mem, _, day := workedDay(t)
	second, err := mem.CreateCylinderType(ctx, "5KG")
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	if err := mem.SetOpeningStock(ctx, day.ID, second.ID, 30, 10, 0); err != nil {
		t.Fatalf("set opening: %v", err)
	}

	state, err := mem.LoadDayState(ctx, day.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	closing := depot.ProjectClosing(state)
	closing = closing[:1]

	if err := mem.FinalizeDay(ctx, day.ID, closing); !errors.Is(err, depot.ErrUnknownCylinderType) {
		t.Fatalf("err = %v, want ErrUnknownCylinderType", err)
	}

	rows, err := mem.SummaryRows(ctx, day.ID)
	if err != nil {
		t.Fatalf("summary rows: %v", err)
	}
	for _, row := range rows {
		if row.Reconciled {
			t.Errorf("row for type %d locked by a failed finalize", row.CylinderTypeID)
		}
		if row.ClosingFilled != nil {
			t.Errorf("row for type %d holds closing figures from a failed finalize", row.CylinderTypeID)
		}
	}

	// A stray closing row for a type the day does not carry is rejected
	// the same way.
	state, _ = mem.LoadDayState(ctx, day.ID)
	stray := append(depot.ProjectClosing(state), depot.ClosingRow{CylinderTypeID: 9999})
	if err := mem.FinalizeDay(ctx, day.ID, stray); !errors.Is(err, depot.ErrUnknownCylinderType) {
		t.Fatalf("stray row: err = %v, want ErrUnknownCylinderType", err)
	}
	rows, _ = mem.SummaryRows(ctx, day.ID)
	for _, row := range rows {
		if row.Reconciled {
			t.Errorf("row for type %d locked by a failed finalize", row.CylinderTypeID)
		}
	}
}

func TestReconciler_Projection_HasNoSideEffects(t *testing.T) {
	// GIVEN: A day carried through steps 1-3
	// WHEN: Calling Projection repeatedly
	// THEN: Nothing is written; the day stays unlocked and editable

	ctx := context.Background()
	mem, rec, day := workedDay(t)

	for i := 0; i < 3; i++ {
		if _, err := rec.Projection(ctx, day.ID); err != nil {
			t.Fatalf("projection: %v", err)
		}
	}

	state, err := mem.LoadDayState(ctx, day.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Finalized() {
		t.Error("projection must not set the lock bit")
	}
	if state.Rows[0].ClosingFilled != nil {
		t.Error("projection must not persist closing figures")
	}
}
