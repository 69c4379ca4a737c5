/*
store.go - Persistence interface for the depot engine

PURPOSE:
  Defines the interface between the domain services and the database.
  Services (Registry, Ledger, Reconciler, CashDesk) depend only on this
  interface; implementations decide transactions and locking.

TRANSACTION CONTRACT:
  Every mutating method is one atomic unit:
  - CreateDay checks DuplicateDate/AnotherDayOpen and inserts under one
    lock scope, and seeds a blank summary row per cylinder type.
  - UpsertIssues writes all entries AND resynchronizes tv_out_qty on the
    summary rows in the same transaction. The sync is recomputed from
    the issue rows, never incremented.
  - FinalizeDay re-verifies the lock bit and writes every closing row in
    one transaction: all rows flip to reconciled together or none do.
  - ResetDay clears the delivery ledger, the tv sync, and both
    no-movement flags together.

LOCKING:
  Implementations serialize writers per store instance (sqlite and the
  in-memory store both hold a mutex). Gating checks live in the
  services; the stores only re-check what atomicity requires (the
  finalize lock bit).

IMPLEMENTATIONS:
  - store/sqlite:     Production SQLite
  - depot/store:      In-memory, for tests and demos

SEE ALSO:
  - registry.go, ledger.go, reconcile.go, cash.go: Consumers
*/
package depot

import "context"

// Store handles persistence for stock days, summaries, delivery issues
// and the cash gating tables.
type Store interface {
	// --- Stock days ---

	// ActiveDay returns the single OPEN day, or ErrNoActiveDay.
	ActiveDay(ctx context.Context) (StockDay, error)

	// LatestDay returns the most recent day regardless of status, or
	// ErrDayNotFound when the registry is empty.
	LatestDay(ctx context.Context) (StockDay, error)

	// DayByID returns the day, or ErrDayNotFound.
	DayByID(ctx context.Context, id int64) (StockDay, error)

	// DayByDate returns the day for a calendar date, or ErrDayNotFound.
	DayByDate(ctx context.Context, date Date) (StockDay, error)

	// CreateDay inserts an OPEN day for date and seeds one blank summary
	// row per cylinder type. Returns ErrDuplicateDate or
	// ErrAnotherDayOpen when the registry invariants reject it.
	CreateDay(ctx context.Context, date Date) (StockDay, error)

	// ClosedDays lists CLOSED days, newest first.
	ClosedDays(ctx context.Context) ([]StockDay, error)

	// SetDeliveryNoMovement sets the day-level flag. When enabling, it
	// also deletes the day's delivery issues and zeroes tv_out_qty on
	// every summary row, in the same transaction. Disabling only clears
	// the flag.
	SetDeliveryNoMovement(ctx context.Context, dayID int64, enabled bool) error

	// --- Reference data ---

	CylinderTypes(ctx context.Context) ([]CylinderType, error)
	CreateCylinderType(ctx context.Context, code string) (CylinderType, error)
	DeliveryPersons(ctx context.Context, activeOnly bool) ([]DeliveryPerson, error)
	CreateDeliveryPerson(ctx context.Context, name string) (DeliveryPerson, error)

	// --- Day state ---

	// LoadDayState returns the full snapshot for one day: summary rows,
	// delivery-ledger aggregates, issue count and cash row counts.
	// Returns ErrDayNotFound for an unknown id.
	LoadDayState(ctx context.Context, dayID int64) (DayState, error)

	// SummaryRows returns the day's summary rows ordered by cylinder type.
	SummaryRows(ctx context.Context, dayID int64) ([]SummaryRow, error)

	// --- Summary writes ---

	// SetOpeningStock records the opening-stock collaborator's figures
	// for one cylinder type. ErrUnknownCylinderType if the day has no
	// row for it.
	SetOpeningStock(ctx context.Context, dayID, cylinderTypeID int64, filled, empty, defective int) error

	// SetSupplierMovement records IOCL receipt/return for one cylinder
	// type and clears the row's iocl_no_movement flag.
	SetSupplierMovement(ctx context.Context, dayID, cylinderTypeID int64, receipt, ret int) error

	// SetSupplierNoMovement zeroes receipt/return and sets
	// iocl_no_movement on every row of the day.
	SetSupplierNoMovement(ctx context.Context, dayID int64) error

	// ResetSupplierMovements zeroes receipt/return and clears
	// iocl_no_movement on every row of the day.
	ResetSupplierMovements(ctx context.Context, dayID int64) error

	// --- Delivery issues ---

	// Issues returns the day's delivery issue rows.
	Issues(ctx context.Context, dayID int64) ([]DeliveryIssue, error)

	// UpsertIssues inserts or overwrites issue rows keyed by
	// (day, driver, cylinder type), then resynchronizes tv_out_qty on
	// the day's summary rows from the ledger, all in one transaction.
	UpsertIssues(ctx context.Context, dayID int64, issues []DeliveryIssue) error

	// --- Finalize and reset ---

	// FinalizeDay writes the computed closing rows and sets the per-row
	// lock bit on every row, atomically. Returns ErrAlreadyFinalized if
	// any row is already reconciled (re-checked inside the transaction).
	FinalizeDay(ctx context.Context, dayID int64, rows []ClosingRow) error

	// ResetDay deletes the day's delivery issues, zeroes tv_out_qty,
	// clears delivery_no_movement, and clears the IOCL fields, in one
	// transaction.
	ResetDay(ctx context.Context, dayID int64) error

	// --- Cash gating tables (steps 5-7 inputs) ---

	AddExpectedAmount(ctx context.Context, rec ExpectedAmount) error
	AddCashDeposit(ctx context.Context, rec CashDeposit) error
	AddCashBalance(ctx context.Context, rec CashBalance) error
}
