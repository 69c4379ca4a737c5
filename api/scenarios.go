/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with
	realistic depot data for demos. Each scenario seeds cylinder types
	and delivery persons, then walks the daily workflow to a chosen
	point.

AVAILABLE SCENARIOS:

	fresh-depot: Reference data only, no stock day yet
	mid-day:     Open day with opening stock and supplier receipts
	reconciled:  Fully finalized day with cash settlement recorded

HOW SCENARIOS WORK:
 1. Wipe database (clear all data)
 2. Seed cylinder types and delivery persons
 3. Optionally open a day and replay workflow steps through the
    same services the API uses

USAGE VIA API:

	POST /api/scenarios/load
	{"name": "mid-day"}

NOTE:

	Scenarios wipe the database. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: writeJSON/writeError helpers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Thejas6666/gas-agency-app/depot"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		Name:        "fresh-depot",
		Description: "Cylinder types and drivers only; no stock day opened yet",
	},
	{
		Name:        "mid-day",
		Description: "Open day with opening stock entered and IOCL receipts recorded",
	},
	{
		Name:        "reconciled",
		Description: "Finalized day with deliveries and full cash settlement",
	},
}

// wiper is the optional store capability behind scenario loading.
type wiper interface {
	Wipe(ctx context.Context) error
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario wipes the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	wp, ok := h.Store.(wiper)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not support scenario loading", nil)
		return
	}

	ctx := r.Context()
	if err := wp.Wipe(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.Name {
	case "fresh-depot":
		_, _, err = h.loadFreshDepotScenario(ctx)
	case "mid-day":
		_, err = h.loadMidDayScenario(ctx)
	case "reconciled":
		err = h.loadReconciledScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.Name})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFreshDepotScenario(ctx context.Context) ([]depot.CylinderType, []depot.DeliveryPerson, error) {
	// The standard domestic and commercial cylinder sizes.
	codes := []string{"14.2KG", "5KG", "19KG", "47.5KG"}
	types := make([]depot.CylinderType, 0, len(codes))
	for _, code := range codes {
		t, err := h.Store.CreateCylinderType(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		types = append(types, t)
	}

	names := []string{"Ramesh", "Suresh", "Mahesh"}
	persons := make([]depot.DeliveryPerson, 0, len(names))
	for _, name := range names {
		p, err := h.Store.CreateDeliveryPerson(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		persons = append(persons, p)
	}

	return types, persons, nil
}

func (h *Handler) loadMidDayScenario(ctx context.Context) (depot.StockDay, error) {
	types, _, err := h.loadFreshDepotScenario(ctx)
	if err != nil {
		return depot.StockDay{}, err
	}

	day, err := h.Registry.OpenNewDay(ctx, depot.Today())
	if err != nil {
		return depot.StockDay{}, err
	}

	// Opening counts scale down with cylinder size.
	opening := [][3]int{{120, 45, 2}, {60, 20, 0}, {40, 15, 1}, {10, 4, 0}}
	for i, t := range types {
		o := opening[i]
		if err := h.Ledger.SetOpeningStock(ctx, day.ID, t.ID, o[0], o[1], o[2]); err != nil {
			return depot.StockDay{}, err
		}
	}

	// A morning truck from the plant: fresh 14.2KG and 19KG, empties
	// sent back.
	if err := h.Ledger.RecordSupplierMovement(ctx, day.ID, types[0].ID, 30, 25); err != nil {
		return depot.StockDay{}, err
	}
	if err := h.Ledger.RecordSupplierMovement(ctx, day.ID, types[2].ID, 10, 8); err != nil {
		return depot.StockDay{}, err
	}

	return day, nil
}

func (h *Handler) loadReconciledScenario(ctx context.Context) error {
	day, err := h.loadMidDayScenario(ctx)
	if err != nil {
		return err
	}

	persons, err := h.Store.DeliveryPersons(ctx, true)
	if err != nil {
		return err
	}
	types, err := h.Store.CylinderTypes(ctx)
	if err != nil {
		return err
	}

	issues := []depot.DeliveryIssue{
		{DeliveryPersonID: persons[0].ID, CylinderTypeID: types[0].ID, RegularQty: 25, NCQty: 2, DBCQty: 1, TVOutQty: 3},
		{DeliveryPersonID: persons[1].ID, CylinderTypeID: types[0].ID, RegularQty: 18, NCQty: 0, DBCQty: 0, TVOutQty: 0},
		{DeliveryPersonID: persons[1].ID, CylinderTypeID: types[2].ID, RegularQty: 6, NCQty: 1, DBCQty: 0, TVOutQty: 0},
		{DeliveryPersonID: persons[2].ID, CylinderTypeID: types[1].ID, RegularQty: 9, NCQty: 0, DBCQty: 0, TVOutQty: 1},
	}
	if err := h.Ledger.RecordDeliveryIssues(ctx, day.ID, issues); err != nil {
		return err
	}

	if err := h.Reconciler.Finalize(ctx, day.ID); err != nil {
		return err
	}

	// Cash settlement per driver. Suresh deposits short to show a
	// non-zero variance.
	amounts := []struct {
		expected  string
		deposited string
	}{
		{"26450.00", "26450.00"},
		{"21780.00", "21500.00"},
		{"8190.00", "8190.00"},
	}
	for i, p := range persons {
		exp, _ := decimal.NewFromString(amounts[i].expected)
		dep, _ := decimal.NewFromString(amounts[i].deposited)

		if err := h.CashDesk.RecordExpected(ctx, depot.ExpectedAmount{
			DayID: day.ID, DeliveryPersonID: p.ID, Amount: exp,
		}); err != nil {
			return err
		}
		if err := h.CashDesk.RecordDeposit(ctx, depot.CashDeposit{
			DayID: day.ID, DeliveryPersonID: p.ID, Amount: dep,
		}); err != nil {
			return err
		}
		if err := h.CashDesk.RecordBalance(ctx, depot.CashBalance{
			DayID: day.ID, DeliveryPersonID: p.ID, Expected: exp, Deposited: dep,
		}); err != nil {
			return err
		}
	}

	return nil
}
