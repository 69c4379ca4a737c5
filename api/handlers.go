/*
handlers.go - HTTP API handlers for the depot engine

PURPOSE:
  Exposes the daily depot workflow via REST. Handles HTTP
  request/response and JSON; all gating and arithmetic lives in the
  depot package.

ENDPOINTS:
  Dashboard / days:
    GET  /api/dashboard                  Latest day + history + progress
    POST /api/stock-days                 Open a new day
    GET  /api/stock-days/next-date       Suggested next date

  Daily workflow (all resolve the single active OPEN day):
    POST /api/opening-stock              Step 1 collaborator input
    GET  /api/iocl-movements             Step 2 screen state
    POST /api/iocl-movements             Explicit receipts/returns
    POST /api/iocl-movements/no-movement Shortcut flag
    POST /api/iocl-movements/reset       Clear step 2
    GET  /api/delivery-transactions      Step 3 screen state
    POST /api/delivery-transactions      Upsert driver issues
    POST /api/delivery-transactions/no-movement
    POST /api/delivery-transactions/reset
    GET  /api/closing-stock              Projection preview
    POST /api/closing-stock/finalize     The one-way lock

  Cash settlement (steps 5-7 gating inputs):
    POST /api/cash/expected, /api/cash/deposits, /api/cash/balances

  Reference data, reports, scenarios, admin:
    GET/POST /api/cylinder-types, /api/delivery-persons
    GET  /api/reports/resolve?date=YYYY-MM-DD
    GET  /api/scenarios, POST /api/scenarios/load
    POST /api/admin/close-day

ERROR HANDLING:
  Domain errors map to HTTP status in one place (writeDomainError):
  - 404: no active day / unknown day or date
  - 409: duplicate date, another day open, finalized lock
  - 422: prerequisite step not complete
  - 400: bad input
  - 500: storage failures

SEE ALSO:
  - dto.go:       Request/response shapes
  - server.go:    Router and middleware
  - scenarios.go: Demo data loaders
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Thejas6666/gas-agency-app/depot"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      depot.Store
	Registry   *depot.Registry
	Ledger     *depot.Ledger
	Reconciler *depot.Reconciler
	CashDesk   *depot.CashDesk
}

// NewHandler creates a handler with services wired to the given store.
func NewHandler(store depot.Store) *Handler {
	return &Handler{
		Store:      store,
		Registry:   depot.NewRegistry(store),
		Ledger:     depot.NewLedger(store),
		Reconciler: depot.NewReconciler(store),
		CashDesk:   depot.NewCashDesk(store),
	}
}

// dayCloser is the optional store capability behind the admin
// close-day endpoint. Day closing belongs to the settlement
// collaborator; both bundled stores support it.
type dayCloser interface {
	CloseDay(ctx context.Context, dayID int64) error
}

// activeDay resolves the single OPEN day or writes the 404.
func (h *Handler) activeDay(w http.ResponseWriter, r *http.Request) (depot.StockDay, bool) {
	day, err := h.Registry.ActiveDay(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return depot.StockDay{}, false
	}
	return day, true
}

// =============================================================================
// DASHBOARD AND STOCK DAYS
// =============================================================================

// Dashboard returns the most recent day, closed-day history and the
// seven-step progress. Progress is recomputed on every call.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := DashboardResponse{History: []DayDTO{}}

	day, err := h.Registry.LatestDay(ctx)
	switch {
	case err == nil:
		dto := toDayDTO(day)
		resp.Day = &dto
		resp.IsDayClosed = !day.Open()
	case depot.IsNotFound(err):
		// Empty registry: dashboard renders the create-day prompt.
	default:
		writeError(w, http.StatusInternalServerError, "Failed to load day", err)
		return
	}

	history, err := h.Registry.History(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}
	for _, d := range history {
		resp.History = append(resp.History, toDayDTO(d))
	}

	if resp.Day != nil && !resp.IsDayClosed {
		state, err := h.Store.LoadDayState(ctx, day.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load day state", err)
			return
		}
		resp.Progress = toProgressDTO(depot.EvaluateSteps(state))
	}

	writeJSON(w, http.StatusOK, resp)
}

// OpenDay creates a new OPEN stock day.
// POST /api/stock-days
func (h *Handler) OpenDay(w http.ResponseWriter, r *http.Request) {
	var req OpenDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := depot.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	day, err := h.Registry.OpenNewDay(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDayDTO(day))
}

// NextDate suggests the date for the next day to open.
// GET /api/stock-days/next-date
func (h *Handler) NextDate(w http.ResponseWriter, r *http.Request) {
	next, err := h.Registry.NextAvailableDate(r.Context(), depot.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute next date", err)
		return
	}
	writeJSON(w, http.StatusOK, NextDateResponse{NextAvailableDate: next.String()})
}

// CloseActiveDay marks the active day CLOSED on behalf of the
// settlement collaborator.
// POST /api/admin/close-day
func (h *Handler) CloseActiveDay(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	closer, ok := h.Store.(dayCloser)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not support closing days", nil)
		return
	}
	if err := closer.CloseDay(r.Context(), day.ID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "closed", "date": day.Date.String()})
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

// ListCylinderTypes returns all cylinder types.
// GET /api/cylinder-types
func (h *Handler) ListCylinderTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.CylinderTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cylinder types", err)
		return
	}

	dtos := make([]CylinderTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = CylinderTypeDTO{ID: t.ID, Code: t.Code}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCylinderType adds a cylinder type.
// POST /api/cylinder-types
func (h *Handler) CreateCylinderType(w http.ResponseWriter, r *http.Request) {
	var req CreateCylinderTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Code is required", err)
		return
	}

	t, err := h.Store.CreateCylinderType(r.Context(), req.Code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create cylinder type", err)
		return
	}
	writeJSON(w, http.StatusCreated, CylinderTypeDTO{ID: t.ID, Code: t.Code})
}

// ListDeliveryPersons returns drivers; ?active=1 filters to active.
// GET /api/delivery-persons
func (h *Handler) ListDeliveryPersons(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "1"

	persons, err := h.Store.DeliveryPersons(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list delivery persons", err)
		return
	}

	dtos := make([]DeliveryPersonDTO, len(persons))
	for i, p := range persons {
		dtos[i] = DeliveryPersonDTO{ID: p.ID, Name: p.Name, Active: p.Active}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDeliveryPerson adds a driver.
// POST /api/delivery-persons
func (h *Handler) CreateDeliveryPerson(w http.ResponseWriter, r *http.Request) {
	var req CreateDeliveryPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", err)
		return
	}

	p, err := h.Store.CreateDeliveryPerson(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create delivery person", err)
		return
	}
	writeJSON(w, http.StatusCreated, DeliveryPersonDTO{ID: p.ID, Name: p.Name, Active: p.Active})
}

// =============================================================================
// OPENING STOCK (step 1 collaborator input)
// =============================================================================

// SetOpeningStock records the opening figures for the active day.
// POST /api/opening-stock
func (h *Handler) SetOpeningStock(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	var req OpeningStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries := make([]depot.OpeningEntry, len(req.Rows))
	for i, row := range req.Rows {
		entries[i] = depot.OpeningEntry{
			CylinderTypeID: row.CylinderTypeID,
			Filled:         row.Filled,
			Empty:          row.Empty,
			Defective:      row.Defective,
		}
	}
	if err := h.Ledger.RecordOpeningStock(r.Context(), day.ID, entries); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// IOCL MOVEMENTS (step 2)
// =============================================================================

// GetIOCLMovements returns the supplier-movement screen state for the
// active day.
// GET /api/iocl-movements
func (h *Handler) GetIOCLMovements(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	state, err := h.Store.LoadDayState(r.Context(), day.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load day state", err)
		return
	}

	resp := IOCLMovementsResponse{
		StockDate:   day.Date.String(),
		Rows:        make([]IOCLRowDTO, 0, len(state.Rows)),
		NoMovement:  state.AnyIOCLNoMovement(),
		Step1Done:   state.HasOpening(),
		IsFinalized: state.Finalized(),
	}
	for _, row := range state.Rows {
		resp.Rows = append(resp.Rows, IOCLRowDTO{
			CylinderTypeID: row.CylinderTypeID,
			Code:           row.Code,
			ItemReceipt:    row.ItemReceipt,
			ItemReturn:     row.ItemReturn,
		})
		resp.TotalReceived += row.ItemReceipt
		resp.TotalReturned += row.ItemReturn
	}
	resp.HasData = resp.TotalReceived+resp.TotalReturned > 0 || resp.NoMovement
	resp.IsEditable = resp.Step1Done && !resp.IsFinalized

	writeJSON(w, http.StatusOK, resp)
}

// RecordIOCLMovements writes explicit receipts/returns per cylinder
// type for the active day.
// POST /api/iocl-movements
func (h *Handler) RecordIOCLMovements(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	var req IOCLMovementsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries := make([]depot.MovementEntry, len(req.Rows))
	for i, row := range req.Rows {
		entries[i] = depot.MovementEntry{
			CylinderTypeID: row.CylinderTypeID,
			Receipt:        row.Receipt,
			Return:         row.Return,
		}
	}
	if err := h.Ledger.RecordSupplierMovements(r.Context(), day.ID, entries); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetIOCLNoMovement marks the active day as having no supplier
// movement.
// POST /api/iocl-movements/no-movement
func (h *Handler) SetIOCLNoMovement(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.SetSupplierNoMovement(r.Context(), day.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResetIOCLMovements clears step 2 for the active day.
// POST /api/iocl-movements/reset
func (h *Handler) ResetIOCLMovements(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.ResetSupplierMovements(r.Context(), day.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// DELIVERY TRANSACTIONS (step 3)
// =============================================================================

// GetDeliveryTransactions returns the delivery entry screen state.
// GET /api/delivery-transactions
func (h *Handler) GetDeliveryTransactions(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	persons, err := h.Store.DeliveryPersons(ctx, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list delivery persons", err)
		return
	}
	types, err := h.Store.CylinderTypes(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cylinder types", err)
		return
	}
	issues, err := h.Store.Issues(ctx, day.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list delivery issues", err)
		return
	}
	state, err := h.Store.LoadDayState(ctx, day.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load day state", err)
		return
	}

	resp := DeliveryTransactionsResponse{
		StockDate:   day.Date.String(),
		Persons:     make([]DeliveryPersonDTO, 0, len(persons)),
		Types:       make([]CylinderTypeDTO, 0, len(types)),
		Issues:      make([]DeliveryIssueDTO, 0, len(issues)),
		NoMovement:  day.DeliveryNoMovement,
		IsSaved:     len(issues) > 0 || day.DeliveryNoMovement,
		IsFinalized: state.Finalized(),
	}
	for _, p := range persons {
		resp.Persons = append(resp.Persons, DeliveryPersonDTO{ID: p.ID, Name: p.Name, Active: p.Active})
	}
	for _, t := range types {
		resp.Types = append(resp.Types, CylinderTypeDTO{ID: t.ID, Code: t.Code})
	}
	for _, i := range issues {
		resp.Issues = append(resp.Issues, DeliveryIssueDTO{
			DeliveryPersonID: i.DeliveryPersonID,
			CylinderTypeID:   i.CylinderTypeID,
			RegularQty:       i.RegularQty,
			NCQty:            i.NCQty,
			DBCQty:           i.DBCQty,
			TVOutQty:         i.TVOutQty,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// RecordDeliveryTransactions upserts driver issue entries for the
// active day. All-zero entries are skipped.
// POST /api/delivery-transactions
func (h *Handler) RecordDeliveryTransactions(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	var req DeliveryTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries := make([]depot.DeliveryIssue, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, depot.DeliveryIssue{
			DeliveryPersonID: e.DeliveryPersonID,
			CylinderTypeID:   e.CylinderTypeID,
			RegularQty:       e.RegularQty,
			NCQty:            e.NCQty,
			DBCQty:           e.DBCQty,
			TVOutQty:         e.TVOutQty,
		})
	}

	if err := h.Ledger.RecordDeliveryIssues(r.Context(), day.ID, entries); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetDeliveryNoMovement toggles the day-level no-movement flag.
// POST /api/delivery-transactions/no-movement
func (h *Handler) SetDeliveryNoMovement(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	var req DeliveryNoMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Ledger.SetDeliveryNoMovement(r.Context(), day.ID, req.Enabled); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResetDeliveryTransactions clears the active day's movement records.
// POST /api/delivery-transactions/reset
func (h *Handler) ResetDeliveryTransactions(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.ResetAll(r.Context(), day.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CLOSING STOCK (step 4)
// =============================================================================

// GetClosingStock returns the reconciliation preview for the active
// day: exactly what finalize would write.
// GET /api/closing-stock
func (h *Handler) GetClosingStock(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	state, err := h.Store.LoadDayState(r.Context(), day.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load day state", err)
		return
	}

	steps := depot.EvaluateSteps(state)
	resp := ClosingStockResponse{
		StockDate:   day.Date.String(),
		Rows:        make([]ClosingRowDTO, 0, len(state.Rows)),
		Step3Done:   steps.Deliveries,
		IsFinalized: state.Finalized(),
	}
	for _, row := range depot.ProjectClosing(state) {
		resp.Rows = append(resp.Rows, toClosingRowDTO(row))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Finalize commits the projection and asserts the one-way lock.
// POST /api/closing-stock/finalize
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	if err := h.Reconciler.Finalize(r.Context(), day.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "finalized",
		"date":   day.Date.String(),
	})
}

// =============================================================================
// CASH SETTLEMENT INPUTS (steps 5-7)
// =============================================================================

// RecordExpectedCash stores a driver's expected-cash figure.
// POST /api/cash/expected
func (h *Handler) RecordExpectedCash(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	var req CashRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	if err := h.CashDesk.RecordExpected(r.Context(), depot.ExpectedAmount{
		DayID:            day.ID,
		DeliveryPersonID: req.DeliveryPersonID,
		Amount:           amount,
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// RecordCashDeposit stores a driver's deposit.
// POST /api/cash/deposits
func (h *Handler) RecordCashDeposit(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	var req CashRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	if err := h.CashDesk.RecordDeposit(r.Context(), depot.CashDeposit{
		DayID:            day.ID,
		DeliveryPersonID: req.DeliveryPersonID,
		Amount:           amount,
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// RecordCashBalance stores a driver's settlement outcome.
// POST /api/cash/balances
func (h *Handler) RecordCashBalance(w http.ResponseWriter, r *http.Request) {
	day, ok := h.activeDay(w, r)
	if !ok {
		return
	}

	var req CashBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	expected, err := decimal.NewFromString(req.Expected)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expected amount", err)
		return
	}
	deposited, err := decimal.NewFromString(req.Deposited)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid deposited amount", err)
		return
	}

	if err := h.CashDesk.RecordBalance(r.Context(), depot.CashBalance{
		DayID:            day.ID,
		DeliveryPersonID: req.DeliveryPersonID,
		Expected:         expected,
		Deposited:        deposited,
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// =============================================================================
// REPORTS
// =============================================================================

// ResolveReport returns the (day id, date) report key for a CLOSED
// day. Open or unknown days do not resolve.
// GET /api/reports/resolve?date=YYYY-MM-DD
func (h *Handler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	date, err := depot.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	day, err := h.Store.DayByDate(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if day.Open() {
		writeError(w, http.StatusNotFound, "No finalized records found for "+date.String(), nil)
		return
	}

	writeJSON(w, http.StatusOK, ReportKeyResponse{StockDayID: day.ID, Date: day.Date.String()})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps depot error kinds to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case depot.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, depot.ErrPrerequisiteNotMet):
		writeError(w, http.StatusUnprocessableEntity, "Prerequisite step not complete", err)
	case depot.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, depot.ErrUnknownCylinderType):
		writeError(w, http.StatusBadRequest, "Unknown cylinder type", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
