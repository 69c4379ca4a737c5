/*
ledger.go - Movement Ledger: supplier movements and driver deliveries

PURPOSE:
  All writes to the active day's movement records go through here.
  Every method checks the one-way finalize lock before touching the
  store, and the IOCL entry additionally checks the step 1 gate.

TWO NO-MOVEMENT FLAGS (intentionally asymmetric):
  - IOCL:     per summary row (iocl_no_movement), step 2 aggregates
              with MAX across rows.
  - Delivery: one flag on the stock day (delivery_no_movement).
  They complete different steps and are not unified. Enabling the
  delivery flag deletes the day's issue rows; a non-empty ledger and a
  set flag never coexist.

UPSERT SEMANTICS:
  Delivery entries overwrite all four quantities for their
  (driver, cylinder type) key; they are not additive. All-zero entries
  are skipped. After every upsert the summary rows' tv_out_qty is
  recomputed from the ledger, so edits and resets stay correct.

SEE ALSO:
  - steps.go:     The gates these writes feed
  - reconcile.go: Finalize, which asserts the lock this package honors
*/
package depot

import "context"

// Ledger records IOCL supplier movements and driver delivery issues
// for the active day.
type Ledger struct {
	store Store
}

// NewLedger creates a Ledger backed by the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// OpeningEntry is one cylinder type's opening figures, as entered on
// the opening-stock screen.
type OpeningEntry struct {
	CylinderTypeID int64
	Filled         int
	Empty          int
	Defective      int
}

// MovementEntry is one cylinder type's explicit IOCL receipt/return
// quantities.
type MovementEntry struct {
	CylinderTypeID int64
	Receipt        int
	Return         int
}

// mutableState loads the day and rejects writes to closed or finalized
// days. Shared precondition for every mutation below.
func (l *Ledger) mutableState(ctx context.Context, dayID int64) (DayState, error) {
	state, err := l.store.LoadDayState(ctx, dayID)
	if err != nil {
		return DayState{}, err
	}
	if !state.Day.Open() {
		return DayState{}, ErrDayClosed
	}
	if state.Finalized() {
		return DayState{}, &StepLockedError{DayID: state.Day.ID, Date: state.Day.Date}
	}
	return state, nil
}

// requireKnownTypes rejects the batch before the first write when any
// entry names a cylinder type the day carries no summary row for.
func requireKnownTypes(state DayState, ids []int64) error {
	known := make(map[int64]bool, len(state.Rows))
	for _, row := range state.Rows {
		known[row.CylinderTypeID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return ErrUnknownCylinderType
		}
	}
	return nil
}

// =============================================================================
// IOCL SUPPLIER MOVEMENTS (step 2)
// =============================================================================

// RecordSupplierMovement records the IOCL receipt/return quantities for
// one cylinder type. Requires the opening-stock step (1) to be
// complete. Clears the row's iocl_no_movement flag: an explicit write
// and the shortcut flag overwrite each other rather than merging.
func (l *Ledger) RecordSupplierMovement(ctx context.Context, dayID, cylinderTypeID int64, receipt, ret int) error {
	state, err := l.mutableState(ctx, dayID)
	if err != nil {
		return err
	}
	if !state.HasOpening() {
		return &PrerequisiteError{DayID: dayID, Step: StepOpeningStock}
	}
	return l.store.SetSupplierMovement(ctx, dayID, cylinderTypeID, receipt, ret)
}

// RecordSupplierMovements records a full screen's worth of IOCL entries
// in one call. Every entry's cylinder type is validated before the
// first write, so a rejected batch leaves no row applied.
func (l *Ledger) RecordSupplierMovements(ctx context.Context, dayID int64, entries []MovementEntry) error {
	state, err := l.mutableState(ctx, dayID)
	if err != nil {
		return err
	}
	if !state.HasOpening() {
		return &PrerequisiteError{DayID: dayID, Step: StepOpeningStock}
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.CylinderTypeID
	}
	if err := requireKnownTypes(state, ids); err != nil {
		return err
	}
	for _, e := range entries {
		if err := l.store.SetSupplierMovement(ctx, dayID, e.CylinderTypeID, e.Receipt, e.Return); err != nil {
			return err
		}
	}
	return nil
}

// SetSupplierNoMovement marks the day as having no IOCL movement:
// receipt/return are zeroed and iocl_no_movement is set on every row.
func (l *Ledger) SetSupplierNoMovement(ctx context.Context, dayID int64) error {
	state, err := l.mutableState(ctx, dayID)
	if err != nil {
		return err
	}
	if !state.HasOpening() {
		return &PrerequisiteError{DayID: dayID, Step: StepOpeningStock}
	}
	return l.store.SetSupplierNoMovement(ctx, dayID)
}

// ResetSupplierMovements zeroes receipt/return and clears the
// no-movement flag on every row, reopening step 2.
func (l *Ledger) ResetSupplierMovements(ctx context.Context, dayID int64) error {
	if _, err := l.mutableState(ctx, dayID); err != nil {
		return err
	}
	return l.store.ResetSupplierMovements(ctx, dayID)
}

// =============================================================================
// DRIVER DELIVERY ISSUES (step 3)
// =============================================================================

// RecordDeliveryIssues upserts delivery issue rows for the day. Entries
// with all-zero quantities are skipped (no row created). The summary
// rows' tv_out_qty is resynchronized from the ledger in the same store
// transaction.
func (l *Ledger) RecordDeliveryIssues(ctx context.Context, dayID int64, entries []DeliveryIssue) error {
	if _, err := l.mutableState(ctx, dayID); err != nil {
		return err
	}

	issues := make([]DeliveryIssue, 0, len(entries))
	for _, e := range entries {
		if e.Empty() {
			continue
		}
		e.DayID = dayID
		if e.Source == "" {
			e.Source = IssueSourceDriver
		}
		issues = append(issues, e)
	}

	return l.store.UpsertIssues(ctx, dayID, issues)
}

// SetDeliveryNoMovement toggles the day-level no-movement flag.
// Enabling deletes all of the day's issue rows and zeroes tv_out_qty;
// disabling only clears the flag. Deleted rows are not resurrected.
func (l *Ledger) SetDeliveryNoMovement(ctx context.Context, dayID int64, enabled bool) error {
	if _, err := l.mutableState(ctx, dayID); err != nil {
		return err
	}
	return l.store.SetDeliveryNoMovement(ctx, dayID, enabled)
}

// ResetAll clears the day's movement records back to a blank slate:
// delivery issues deleted, tv_out_qty zeroed, both no-movement flags
// and the IOCL receipt/return fields cleared. Fails with ErrStepLocked
// once the day is finalized.
func (l *Ledger) ResetAll(ctx context.Context, dayID int64) error {
	if _, err := l.mutableState(ctx, dayID); err != nil {
		return err
	}
	return l.store.ResetDay(ctx, dayID)
}

// =============================================================================
// OPENING STOCK (step 1 collaborator input)
// =============================================================================

// SetOpeningStock records the opening-stock collaborator's figures for
// one cylinder type. The opening step itself is outside this core, but
// its write still honors the finalize lock.
func (l *Ledger) SetOpeningStock(ctx context.Context, dayID, cylinderTypeID int64, filled, empty, defective int) error {
	if _, err := l.mutableState(ctx, dayID); err != nil {
		return err
	}
	return l.store.SetOpeningStock(ctx, dayID, cylinderTypeID, filled, empty, defective)
}

// RecordOpeningStock records the whole opening-stock screen in one
// call, validating every entry's cylinder type before the first write.
func (l *Ledger) RecordOpeningStock(ctx context.Context, dayID int64, entries []OpeningEntry) error {
	state, err := l.mutableState(ctx, dayID)
	if err != nil {
		return err
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.CylinderTypeID
	}
	if err := requireKnownTypes(state, ids); err != nil {
		return err
	}
	for _, e := range entries {
		if err := l.store.SetOpeningStock(ctx, dayID, e.CylinderTypeID, e.Filled, e.Empty, e.Defective); err != nil {
			return err
		}
	}
	return nil
}
