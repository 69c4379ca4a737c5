/*
reconcile.go - Closing-stock projection and the one-way finalize

PURPOSE:
  Derives closing filled/empty balances and total stock per cylinder
  type from four independent input streams: opening balances, IOCL
  movements, delivery-ledger sums and the defective count. Finalize
  commits the derived values and asserts the lock.

CONSERVATION ARITHMETIC:
  closing_filled = opening_filled + item_receipt - (reg + nc + dbc)
  closing_empty  = opening_empty + reg + tv - item_return
  total_stock    = closing_filled + closing_empty + defective

  All integer, exact. Null opening/receipt/return values coalesce to
  zero. Getting this silently wrong corrupts inventory records that are
  never revisited, which is why the math is a pure function with its
  own tests.

PROJECTION vs FINALIZE:
  ProjectClosing answers "what WOULD finalize write?". It is always
  computable, even before steps 2/3 are done, and free of side effects.
  Finalize computes the same rows and hands them to the store, which
  writes them and flips every row's lock bit in one transaction.

SEE ALSO:
  - steps.go:  Step 3 gate consumed by Finalize
  - store.go:  FinalizeDay atomicity contract
*/
package depot

import "context"

// =============================================================================
// PROJECTION - Pure closing-stock math
// =============================================================================

// ClosingRow is the derived end-of-day figure set for one cylinder
// type: the inputs the math consumed and the balances it produced.
type ClosingRow struct {
	CylinderTypeID int64
	Code           string

	OpeningFilled int
	OpeningEmpty  int
	ItemReceipt   int
	ItemReturn    int

	// Delivery-ledger sums across all drivers.
	Regular       int
	NonCash       int
	DepositBacked int
	TransferOut   int

	Defective int

	ClosingFilled int
	ClosingEmpty  int
	TotalStock    int
}

// ProjectClosing computes the closing balances for every cylinder type
// in the day's summary. Pure: same state in, same rows out.
func ProjectClosing(state DayState) []ClosingRow {
	rows := make([]ClosingRow, 0, len(state.Rows))

	for _, s := range state.Rows {
		t := state.TotalsFor(s.CylinderTypeID)

		openingFilled := intOrZero(s.OpeningFilled)
		openingEmpty := intOrZero(s.OpeningEmpty)

		closingFilled := openingFilled + s.ItemReceipt - (t.Regular + t.NonCash + t.DepositBacked)
		closingEmpty := openingEmpty + t.Regular + t.TransferOut - s.ItemReturn

		rows = append(rows, ClosingRow{
			CylinderTypeID: s.CylinderTypeID,
			Code:           s.Code,
			OpeningFilled:  openingFilled,
			OpeningEmpty:   openingEmpty,
			ItemReceipt:    s.ItemReceipt,
			ItemReturn:     s.ItemReturn,
			Regular:        t.Regular,
			NonCash:        t.NonCash,
			DepositBacked:  t.DepositBacked,
			TransferOut:    t.TransferOut,
			Defective:      s.DefectiveEmptyVehicle,
			ClosingFilled:  closingFilled,
			ClosingEmpty:   closingEmpty,
			TotalStock:     closingFilled + closingEmpty + s.DefectiveEmptyVehicle,
		})
	}

	return rows
}

// =============================================================================
// RECONCILER - Projection preview and finalize
// =============================================================================

// Reconciler derives closing figures for the active day and commits
// them on finalize.
type Reconciler struct {
	store Store
}

// NewReconciler creates a Reconciler backed by the given store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Projection returns the closing rows finalize would write, without
// writing anything.
func (r *Reconciler) Projection(ctx context.Context, dayID int64) ([]ClosingRow, error) {
	state, err := r.store.LoadDayState(ctx, dayID)
	if err != nil {
		return nil, err
	}
	return ProjectClosing(state), nil
}

// Finalize computes the closing rows and commits them, flipping the
// per-row lock bit on every summary row in one store transaction.
//
// Preconditions: the day is OPEN, not yet finalized (ErrAlreadyFinalized),
// and step 3 (deliveries) is complete (PrerequisiteError). The store
// re-checks the lock bit inside the transaction, so a duplicate
// finalize can never partially apply.
func (r *Reconciler) Finalize(ctx context.Context, dayID int64) error {
	state, err := r.store.LoadDayState(ctx, dayID)
	if err != nil {
		return err
	}

	if !state.Day.Open() {
		return ErrDayClosed
	}
	if state.Finalized() {
		return ErrAlreadyFinalized
	}

	steps := EvaluateSteps(state)
	if !steps.Deliveries {
		return &PrerequisiteError{DayID: dayID, Step: StepDeliveries}
	}

	return r.store.FinalizeDay(ctx, dayID, ProjectClosing(state))
}
