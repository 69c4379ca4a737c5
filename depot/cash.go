/*
cash.go - Cash-settlement gating records (steps 5-7)

PURPOSE:
  The cash-settlement steps live outside this core; what this engine
  owns is their entry gates. Steps 5-7 are complete when rows exist in
  the three cash tables, chained on step 4 and each other. CashDesk
  accepts those rows from the settlement collaborator and enforces the
  chaining on the way in.

MONEY:
  Amounts use decimal.Decimal. Cylinder counts are integers, cash is
  not, and settlement variances must not pick up float error.
*/
package depot

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDS
// =============================================================================

// ExpectedAmount is the cash a driver is expected to hand over for one
// day, derived by the settlement collaborator from the finalized totals.
type ExpectedAmount struct {
	ID               int64
	DayID            int64
	DeliveryPersonID int64
	Amount           decimal.Decimal
}

// CashDeposit is the cash a driver actually deposited.
type CashDeposit struct {
	ID               int64
	DayID            int64
	DeliveryPersonID int64
	Amount           decimal.Decimal
}

// CashBalance is the settlement outcome for one driver: expected vs
// deposited and the signed variance.
type CashBalance struct {
	ID               int64
	DayID            int64
	DeliveryPersonID int64
	Expected         decimal.Decimal
	Deposited        decimal.Decimal
	Variance         decimal.Decimal
}

// =============================================================================
// CASH DESK - Gated intake for the settlement collaborator
// =============================================================================

// CashDesk accepts cash-settlement rows, enforcing the step chain:
// expected cash requires the day finalized, deposits require expected
// rows, balances require deposits.
type CashDesk struct {
	store Store
}

// NewCashDesk creates a CashDesk backed by the given store.
func NewCashDesk(store Store) *CashDesk {
	return &CashDesk{store: store}
}

func (c *CashDesk) stepsFor(ctx context.Context, dayID int64) (Progress, error) {
	state, err := c.store.LoadDayState(ctx, dayID)
	if err != nil {
		return Progress{}, err
	}
	return EvaluateSteps(state), nil
}

// RecordExpected stores a driver's expected-cash figure. Requires step
// 4 (finalize) complete.
func (c *CashDesk) RecordExpected(ctx context.Context, rec ExpectedAmount) error {
	steps, err := c.stepsFor(ctx, rec.DayID)
	if err != nil {
		return err
	}
	if !steps.Finalized {
		return &PrerequisiteError{DayID: rec.DayID, Step: StepFinalized}
	}
	return c.store.AddExpectedAmount(ctx, rec)
}

// RecordDeposit stores a driver's cash deposit. Requires step 5.
func (c *CashDesk) RecordDeposit(ctx context.Context, rec CashDeposit) error {
	steps, err := c.stepsFor(ctx, rec.DayID)
	if err != nil {
		return err
	}
	if !steps.ExpectedCash {
		return &PrerequisiteError{DayID: rec.DayID, Step: StepExpectedCash}
	}
	return c.store.AddCashDeposit(ctx, rec)
}

// RecordBalance stores a driver's settlement outcome. Requires step 6.
// The variance is computed here if the collaborator left it zero while
// expected and deposited differ.
func (c *CashDesk) RecordBalance(ctx context.Context, rec CashBalance) error {
	steps, err := c.stepsFor(ctx, rec.DayID)
	if err != nil {
		return err
	}
	if !steps.CashCollection {
		return &PrerequisiteError{DayID: rec.DayID, Step: StepCashCollection}
	}
	if rec.Variance.IsZero() && !rec.Expected.Equal(rec.Deposited) {
		rec.Variance = rec.Deposited.Sub(rec.Expected)
	}
	return c.store.AddCashBalance(ctx, rec)
}
