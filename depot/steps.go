/*
steps.go - Seven-step daily workflow gate evaluator

PURPOSE:
  Computes the completion state of each of the seven ordered steps of a
  depot day. Step i is complete only if its own predicate holds AND step
  i-1 is complete. The evaluator is a pure projection of DayState: it is
  recomputed on every query and stores nothing.

THE SEVEN STEPS:
  1. Opening stock       any summary row has a non-null opening_filled
  2. IOCL movements      receipts+returns > 0, OR the per-row
                         no-movement flag is set on any row
  3. Deliveries          delivery issue rows exist, OR the day-level
                         no-movement flag is set
  4. Finalized stock     the per-row lock bit (is_reconciled)
  5. Expected cash       rows exist in delivery_expected_amount
  6. Cash collection     rows exist in delivery_cash_deposit
  7. Reconciled cash     rows exist in delivery_cash_balance
  Steps 5-7 belong to the external cash-settlement collaborator; this
  core only counts their rows and chains them on step 4.

KNOWN QUIRK (kept on purpose):
  Step 2 aggregates iocl_no_movement with MAX across rows. If one row
  carries the flag while others carry real receipts, the step still
  reports complete. The source system behaves this way; intent is
  unclear, so the behavior is reproduced rather than corrected. See
  steps_test.go.

SEE ALSO:
  - types.go:     DayState and its predicate helpers
  - reconcile.go: Finalize consumes the step 3 gate
*/
package depot

// =============================================================================
// STEPS
// =============================================================================

// Step identifies one of the seven ordered workflow steps.
type Step int

const (
	StepOpeningStock Step = iota + 1
	StepIOCLMovements
	StepDeliveries
	StepFinalized
	StepExpectedCash
	StepCashCollection
	StepCashReconciled
)

func (s Step) String() string {
	switch s {
	case StepOpeningStock:
		return "opening stock"
	case StepIOCLMovements:
		return "iocl movements"
	case StepDeliveries:
		return "deliveries"
	case StepFinalized:
		return "finalized stock"
	case StepExpectedCash:
		return "expected cash"
	case StepCashCollection:
		return "cash collection"
	case StepCashReconciled:
		return "reconciled cash"
	default:
		return "unknown"
	}
}

// Progress is the boolean completion map for one day. Fields are in
// step order; each is already chained on its predecessor.
type Progress struct {
	OpeningStock   bool
	IOCLMovements  bool
	Deliveries     bool
	Finalized      bool
	ExpectedCash   bool
	CashCollection bool
	CashReconciled bool
}

// Complete reports the completion state of a single step.
func (p Progress) Complete(s Step) bool {
	switch s {
	case StepOpeningStock:
		return p.OpeningStock
	case StepIOCLMovements:
		return p.IOCLMovements
	case StepDeliveries:
		return p.Deliveries
	case StepFinalized:
		return p.Finalized
	case StepExpectedCash:
		return p.ExpectedCash
	case StepCashCollection:
		return p.CashCollection
	case StepCashReconciled:
		return p.CashReconciled
	default:
		return false
	}
}

// =============================================================================
// EVALUATOR
// =============================================================================

// EvaluateSteps computes the seven-step progress for a day. A CLOSED
// day reports every step false: the dashboard renders closed days as
// history, not as a workflow in progress.
func EvaluateSteps(state DayState) Progress {
	if !state.Day.Open() {
		return Progress{}
	}

	var p Progress

	// Step 1: opening stock recorded for at least one cylinder type.
	p.OpeningStock = state.HasOpening()

	// Step 2: real IOCL movement, or the per-row shortcut flag
	// (MAX-aggregated; see the package comment for the known quirk).
	hasIOCL := state.MovementTotal() > 0 || state.AnyIOCLNoMovement()
	p.IOCLMovements = hasIOCL && p.OpeningStock

	// Step 3: delivery issue rows, or the day-level shortcut flag.
	hasDeliveries := state.IssueCount > 0 || state.Day.DeliveryNoMovement
	p.Deliveries = hasDeliveries && p.IOCLMovements

	// Step 4: the one-way finalize lock.
	p.Finalized = state.Finalized() && p.Deliveries

	// Steps 5-7: external cash tables, row existence only.
	p.ExpectedCash = state.Cash.Expected > 0 && p.Finalized
	p.CashCollection = state.Cash.Deposits > 0 && p.ExpectedCash
	p.CashReconciled = state.Cash.Balances > 0 && p.CashCollection

	return p
}
