/*
Package depot tracks the daily operational cycle of a cylinder
distribution depot.

PURPOSE:
  This package contains the domain types and services for one depot day:
  opening inventory, IOCL supplier movements, driver delivery issues,
  and end-of-day reconciliation. Exactly one day is OPEN system-wide at
  any time; closed days are read-only history.

KEY CONCEPTS IN THIS FILE (types.go):
  - StockDay:      The unit of work. OPEN accepts writes, CLOSED is history.
  - SummaryRow:    Per (day, cylinder type) inventory figures.
  - DeliveryIssue: Per (day, driver, cylinder type) issued quantities.
  - DayState:      Snapshot of everything the gating and reconciliation
                   logic needs, loaded in one store call.

DESIGN PRINCIPLES:
  1. Integer arithmetic: cylinder counts are exact; no floats anywhere
     near the conservation math.
  2. Pure decision logic: step gating (steps.go) and closing-stock math
     (reconcile.go) are functions of DayState, testable without a database.
  3. One-way lock: once a day is reconciled, nothing in this package
     mutates it again.

SEE ALSO:
  - steps.go:     Seven-step workflow gate evaluator
  - reconcile.go: Closing-stock projection and finalize
  - ledger.go:    Movement ledger (supplier + delivery writes)
  - store.go:     Persistence interface
*/
package depot

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day (no time-of-day component)
// =============================================================================

// Date is a calendar date. Stock days are keyed by Date, unique across
// the registry.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

// NewDate creates a Date for the given calendar day (UTC).
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

// =============================================================================
// STOCK DAY - The single unit of work
// =============================================================================

// DayStatus is the lifecycle state of a stock day.
type DayStatus string

const (
	// DayOpen accepts writes. At most one OPEN day exists at a time.
	DayOpen DayStatus = "OPEN"
	// DayClosed is immutable history.
	DayClosed DayStatus = "CLOSED"
)

// StockDay is one operational day of the depot.
type StockDay struct {
	ID     int64
	Date   Date
	Status DayStatus

	// DeliveryNoMovement marks a day with zero driver deliveries. It is
	// the day-level shortcut for step 3: set, it stands in for delivery
	// issue rows. Distinct from the per-row IOCL flag on SummaryRow.
	DeliveryNoMovement bool
}

// Open reports whether the day still accepts writes.
func (d StockDay) Open() bool {
	return d.Status == DayOpen
}

// =============================================================================
// REFERENCE DATA - Maintained by an external collaborator
// =============================================================================

// CylinderType is a cylinder SKU (e.g. "14.2KG", "5KG").
type CylinderType struct {
	ID   int64
	Code string
}

// DeliveryPerson is a driver who issues cylinders to customers.
type DeliveryPerson struct {
	ID     int64
	Name   string
	Active bool
}

// =============================================================================
// DAILY STOCK SUMMARY - One row per (day, cylinder type)
// =============================================================================

// SummaryRow holds the per-cylinder-type figures for one day.
//
// Opening and closing fields are nullable: nil opening means the
// opening-stock step has not run for this type yet; nil closing means
// the day has not been finalized. Reconciled is the per-row lock bit;
// finalize sets it on every row of the day in one transaction.
type SummaryRow struct {
	DayID          int64
	CylinderTypeID int64
	Code           string // cylinder type code, joined for display

	OpeningFilled *int
	OpeningEmpty  *int

	// IOCL supplier movement for the day.
	ItemReceipt    int
	ItemReturn     int
	IOCLNoMovement bool // "no supplier movement today", not merely zero

	// Synced from the delivery ledger before finalize; authoritative
	// after finalize.
	TVOutQty int

	// Reconciled issue totals, written only at finalize.
	SalesRegular int
	NCQty        int
	DBCQty       int

	DefectiveEmptyVehicle int

	// Derived, written only at finalize.
	ClosingFilled *int
	ClosingEmpty  *int
	TotalStock    *int

	Reconciled bool
}

// =============================================================================
// DELIVERY ISSUES - One row per (day, driver, cylinder type)
// =============================================================================

// IssueSource tags where a delivery issue row came from.
const IssueSourceDriver = "DELIVERY_PERSON"

// DeliveryIssue records the quantities a driver took out for one
// cylinder type on one day. Upserts overwrite all four quantities.
type DeliveryIssue struct {
	DayID            int64
	DeliveryPersonID int64
	CylinderTypeID   int64

	RegularQty int // regular refill sales
	NCQty      int // new connections
	DBCQty     int // deposit-backed connections
	TVOutQty   int // transfer-out to another vehicle/agency

	Source string
}

// Empty reports whether all four quantities are zero. Empty entries are
// skipped on upsert; no row is created for them.
func (i DeliveryIssue) Empty() bool {
	return i.RegularQty == 0 && i.NCQty == 0 && i.DBCQty == 0 && i.TVOutQty == 0
}

// IssueTotals are the delivery-ledger sums for one cylinder type across
// all drivers.
type IssueTotals struct {
	Regular       int
	NonCash       int
	DepositBacked int
	TransferOut   int
}

// =============================================================================
// DAY STATE - Snapshot consumed by gating and reconciliation
// =============================================================================

// CashCounts are row counts in each of the three cash-settlement tables.
// The cash steps themselves live outside this core; only row existence
// feeds the step gates.
type CashCounts struct {
	Expected int
	Deposits int
	Balances int
}

// DayState is everything the step evaluator and the reconciliation math
// need about one day, loaded in a single store call so both operate on
// one consistent snapshot.
type DayState struct {
	Day         StockDay
	Rows        []SummaryRow
	IssueCount  int
	IssueTotals map[int64]IssueTotals // keyed by cylinder type id
	Cash        CashCounts
}

// Finalized reports whether the day's figures are locked. The source
// system aggregates the per-row bits with MAX, so any reconciled row
// counts; finalize itself always sets all rows together.
func (s DayState) Finalized() bool {
	for _, r := range s.Rows {
		if r.Reconciled {
			return true
		}
	}
	return false
}

// HasOpening reports whether at least one row has its opening filled
// count set. This is the step 1 predicate.
func (s DayState) HasOpening() bool {
	for _, r := range s.Rows {
		if r.OpeningFilled != nil {
			return true
		}
	}
	return false
}

// MovementTotal sums IOCL receipts and returns across all rows.
func (s DayState) MovementTotal() int {
	total := 0
	for _, r := range s.Rows {
		total += r.ItemReceipt + r.ItemReturn
	}
	return total
}

// AnyIOCLNoMovement reports whether any row carries the IOCL
// no-movement flag (MAX aggregate, matching the source system).
func (s DayState) AnyIOCLNoMovement() bool {
	for _, r := range s.Rows {
		if r.IOCLNoMovement {
			return true
		}
	}
	return false
}

// TotalsFor returns the delivery-ledger sums for a cylinder type, zero
// if no driver issued that type.
func (s DayState) TotalsFor(cylinderTypeID int64) IssueTotals {
	return s.IssueTotals[cylinderTypeID]
}

// intOrZero is the null-coalescing helper for nullable counts.
func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
