// Package store provides an in-memory depot.Store implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Thejas6666/gas-agency-app/depot"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	nextDayID    int64
	nextTypeID   int64
	nextPersonID int64
	nextCashID   int64

	days      map[int64]depot.StockDay
	types     []depot.CylinderType
	persons   []depot.DeliveryPerson
	summaries map[int64][]depot.SummaryRow // by day id, ordered by cylinder type
	issues    map[int64]map[issueKey]depot.DeliveryIssue

	expected map[int64][]depot.ExpectedAmount
	deposits map[int64][]depot.CashDeposit
	balances map[int64][]depot.CashBalance
}

type issueKey struct {
	PersonID int64
	TypeID   int64
}

func NewMemory() *Memory {
	return &Memory{
		days:      make(map[int64]depot.StockDay),
		summaries: make(map[int64][]depot.SummaryRow),
		issues:    make(map[int64]map[issueKey]depot.DeliveryIssue),
		expected:  make(map[int64][]depot.ExpectedAmount),
		deposits:  make(map[int64][]depot.CashDeposit),
		balances:  make(map[int64][]depot.CashBalance),
	}
}

// =============================================================================
// STOCK DAYS
// =============================================================================

func (m *Memory) ActiveDay(_ context.Context) (depot.StockDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found depot.StockDay
	ok := false
	for _, d := range m.days {
		if d.Status == depot.DayOpen && (!ok || d.Date.After(found.Date)) {
			found, ok = d, true
		}
	}
	if !ok {
		return depot.StockDay{}, depot.ErrNoActiveDay
	}
	return found, nil
}

func (m *Memory) LatestDay(_ context.Context) (depot.StockDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest depot.StockDay
	ok := false
	for _, d := range m.days {
		if !ok || d.Date.After(latest.Date) {
			latest, ok = d, true
		}
	}
	if !ok {
		return depot.StockDay{}, depot.ErrDayNotFound
	}
	return latest, nil
}

func (m *Memory) DayByID(_ context.Context, id int64) (depot.StockDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dayLocked(id)
}

func (m *Memory) dayLocked(id int64) (depot.StockDay, error) {
	d, ok := m.days[id]
	if !ok {
		return depot.StockDay{}, depot.ErrDayNotFound
	}
	return d, nil
}

func (m *Memory) DayByDate(_ context.Context, date depot.Date) (depot.StockDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.days {
		if d.Date.Equal(date) {
			return d, nil
		}
	}
	return depot.StockDay{}, depot.ErrDayNotFound
}

func (m *Memory) CreateDay(_ context.Context, date depot.Date) (depot.StockDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.days {
		if d.Date.Equal(date) {
			return depot.StockDay{}, &depot.DuplicateDateError{Date: date}
		}
		if d.Status == depot.DayOpen {
			return depot.StockDay{}, depot.ErrAnotherDayOpen
		}
	}

	m.nextDayID++
	day := depot.StockDay{
		ID:     m.nextDayID,
		Date:   date,
		Status: depot.DayOpen,
	}
	m.days[day.ID] = day

	// Seed one blank summary row per cylinder type.
	rows := make([]depot.SummaryRow, 0, len(m.types))
	for _, t := range m.types {
		rows = append(rows, depot.SummaryRow{
			DayID:          day.ID,
			CylinderTypeID: t.ID,
			Code:           t.Code,
		})
	}
	m.summaries[day.ID] = rows
	m.issues[day.ID] = make(map[issueKey]depot.DeliveryIssue)

	return day, nil
}

func (m *Memory) ClosedDays(_ context.Context) ([]depot.StockDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var closed []depot.StockDay
	for _, d := range m.days {
		if d.Status == depot.DayClosed {
			closed = append(closed, d)
		}
	}
	sort.Slice(closed, func(i, j int) bool {
		return closed[i].Date.After(closed[j].Date)
	})
	return closed, nil
}

func (m *Memory) SetDeliveryNoMovement(_ context.Context, dayID int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	day, err := m.dayLocked(dayID)
	if err != nil {
		return err
	}
	day.DeliveryNoMovement = enabled
	m.days[dayID] = day

	if enabled {
		m.issues[dayID] = make(map[issueKey]depot.DeliveryIssue)
		m.zeroTransferOutLocked(dayID)
	}
	return nil
}

// CloseDay marks a day CLOSED. Day closing is an external operation in
// production; the memory store exposes it for tests and demo scenarios.
func (m *Memory) CloseDay(_ context.Context, dayID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	day, err := m.dayLocked(dayID)
	if err != nil {
		return err
	}
	day.Status = depot.DayClosed
	m.days[dayID] = day
	return nil
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func (m *Memory) CylinderTypes(_ context.Context) ([]depot.CylinderType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]depot.CylinderType, len(m.types))
	copy(out, m.types)
	return out, nil
}

func (m *Memory) CreateCylinderType(_ context.Context, code string) (depot.CylinderType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTypeID++
	t := depot.CylinderType{ID: m.nextTypeID, Code: code}
	m.types = append(m.types, t)
	return t, nil
}

func (m *Memory) DeliveryPersons(_ context.Context, activeOnly bool) ([]depot.DeliveryPerson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []depot.DeliveryPerson
	for _, p := range m.persons {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) CreateDeliveryPerson(_ context.Context, name string) (depot.DeliveryPerson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPersonID++
	p := depot.DeliveryPerson{ID: m.nextPersonID, Name: name, Active: true}
	m.persons = append(m.persons, p)
	return p, nil
}

// =============================================================================
// DAY STATE
// =============================================================================

func (m *Memory) LoadDayState(_ context.Context, dayID int64) (depot.DayState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day, err := m.dayLocked(dayID)
	if err != nil {
		return depot.DayState{}, err
	}

	totals := make(map[int64]depot.IssueTotals)
	for _, i := range m.issues[dayID] {
		t := totals[i.CylinderTypeID]
		t.Regular += i.RegularQty
		t.NonCash += i.NCQty
		t.DepositBacked += i.DBCQty
		t.TransferOut += i.TVOutQty
		totals[i.CylinderTypeID] = t
	}

	return depot.DayState{
		Day:         day,
		Rows:        m.copyRowsLocked(dayID),
		IssueCount:  len(m.issues[dayID]),
		IssueTotals: totals,
		Cash: depot.CashCounts{
			Expected: len(m.expected[dayID]),
			Deposits: len(m.deposits[dayID]),
			Balances: len(m.balances[dayID]),
		},
	}, nil
}

func (m *Memory) SummaryRows(_ context.Context, dayID int64) ([]depot.SummaryRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := m.dayLocked(dayID); err != nil {
		return nil, err
	}
	return m.copyRowsLocked(dayID), nil
}

// copyRowsLocked deep-copies the nullable fields so callers can't alias
// store state.
func (m *Memory) copyRowsLocked(dayID int64) []depot.SummaryRow {
	rows := m.summaries[dayID]
	out := make([]depot.SummaryRow, len(rows))
	for i, r := range rows {
		r.OpeningFilled = copyInt(r.OpeningFilled)
		r.OpeningEmpty = copyInt(r.OpeningEmpty)
		r.ClosingFilled = copyInt(r.ClosingFilled)
		r.ClosingEmpty = copyInt(r.ClosingEmpty)
		r.TotalStock = copyInt(r.TotalStock)
		out[i] = r
	}
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// =============================================================================
// SUMMARY WRITES
// =============================================================================

func (m *Memory) SetOpeningStock(_ context.Context, dayID, cylinderTypeID int64, filled, empty, defective int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updateRowLocked(dayID, cylinderTypeID, func(r *depot.SummaryRow) {
		f, e := filled, empty
		r.OpeningFilled = &f
		r.OpeningEmpty = &e
		r.DefectiveEmptyVehicle = defective
	})
}

func (m *Memory) SetSupplierMovement(_ context.Context, dayID, cylinderTypeID int64, receipt, ret int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updateRowLocked(dayID, cylinderTypeID, func(r *depot.SummaryRow) {
		r.ItemReceipt = receipt
		r.ItemReturn = ret
		r.IOCLNoMovement = false
	})
}

func (m *Memory) updateRowLocked(dayID, cylinderTypeID int64, fn func(*depot.SummaryRow)) error {
	if _, err := m.dayLocked(dayID); err != nil {
		return err
	}
	rows := m.summaries[dayID]
	for i := range rows {
		if rows[i].CylinderTypeID == cylinderTypeID {
			fn(&rows[i])
			return nil
		}
	}
	return depot.ErrUnknownCylinderType
}

func (m *Memory) SetSupplierNoMovement(_ context.Context, dayID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.dayLocked(dayID); err != nil {
		return err
	}
	rows := m.summaries[dayID]
	for i := range rows {
		rows[i].ItemReceipt = 0
		rows[i].ItemReturn = 0
		rows[i].IOCLNoMovement = true
	}
	return nil
}

func (m *Memory) ResetSupplierMovements(_ context.Context, dayID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.dayLocked(dayID); err != nil {
		return err
	}
	m.resetIOCLLocked(dayID)
	return nil
}

func (m *Memory) resetIOCLLocked(dayID int64) {
	rows := m.summaries[dayID]
	for i := range rows {
		rows[i].ItemReceipt = 0
		rows[i].ItemReturn = 0
		rows[i].IOCLNoMovement = false
	}
}

// =============================================================================
// DELIVERY ISSUES
// =============================================================================

func (m *Memory) Issues(_ context.Context, dayID int64) ([]depot.DeliveryIssue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := m.dayLocked(dayID); err != nil {
		return nil, err
	}
	out := make([]depot.DeliveryIssue, 0, len(m.issues[dayID]))
	for _, i := range m.issues[dayID] {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].DeliveryPersonID != out[b].DeliveryPersonID {
			return out[a].DeliveryPersonID < out[b].DeliveryPersonID
		}
		return out[a].CylinderTypeID < out[b].CylinderTypeID
	})
	return out, nil
}

func (m *Memory) UpsertIssues(_ context.Context, dayID int64, issues []depot.DeliveryIssue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.dayLocked(dayID); err != nil {
		return err
	}
	byKey := m.issues[dayID]
	for _, i := range issues {
		byKey[issueKey{PersonID: i.DeliveryPersonID, TypeID: i.CylinderTypeID}] = i
	}
	m.syncTransferOutLocked(dayID)
	return nil
}

// syncTransferOutLocked recomputes tv_out_qty on every summary row from
// the ledger. Recomputed, never incremented.
func (m *Memory) syncTransferOutLocked(dayID int64) {
	tv := make(map[int64]int)
	for _, i := range m.issues[dayID] {
		tv[i.CylinderTypeID] += i.TVOutQty
	}
	rows := m.summaries[dayID]
	for i := range rows {
		rows[i].TVOutQty = tv[rows[i].CylinderTypeID]
	}
}

func (m *Memory) zeroTransferOutLocked(dayID int64) {
	rows := m.summaries[dayID]
	for i := range rows {
		rows[i].TVOutQty = 0
	}
}

// =============================================================================
// FINALIZE AND RESET
// =============================================================================

func (m *Memory) FinalizeDay(_ context.Context, dayID int64, closing []depot.ClosingRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.dayLocked(dayID); err != nil {
		return err
	}

	rows := m.summaries[dayID]
	for i := range rows {
		if rows[i].Reconciled {
			return depot.ErrAlreadyFinalized
		}
	}

	byType := make(map[int64]depot.ClosingRow, len(closing))
	for _, c := range closing {
		byType[c.CylinderTypeID] = c
	}

	// Validate coverage before touching any row: all rows flip together
	// or none do.
	known := make(map[int64]bool, len(rows))
	for i := range rows {
		if _, ok := byType[rows[i].CylinderTypeID]; !ok {
			return depot.ErrUnknownCylinderType
		}
		known[rows[i].CylinderTypeID] = true
	}
	for _, c := range closing {
		if !known[c.CylinderTypeID] {
			return depot.ErrUnknownCylinderType
		}
	}

	for i := range rows {
		c := byType[rows[i].CylinderTypeID]
		cf, ce, ts := c.ClosingFilled, c.ClosingEmpty, c.TotalStock
		rows[i].ClosingFilled = &cf
		rows[i].ClosingEmpty = &ce
		rows[i].TotalStock = &ts
		rows[i].SalesRegular = c.Regular
		rows[i].NCQty = c.NonCash
		rows[i].DBCQty = c.DepositBacked
		rows[i].TVOutQty = c.TransferOut
		rows[i].Reconciled = true
	}
	return nil
}

func (m *Memory) ResetDay(_ context.Context, dayID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	day, err := m.dayLocked(dayID)
	if err != nil {
		return err
	}

	m.issues[dayID] = make(map[issueKey]depot.DeliveryIssue)
	m.zeroTransferOutLocked(dayID)
	m.resetIOCLLocked(dayID)

	day.DeliveryNoMovement = false
	m.days[dayID] = day
	return nil
}

// Wipe clears everything, including reference data. Scenario loaders
// only.
func (m *Memory) Wipe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextDayID, m.nextTypeID, m.nextPersonID, m.nextCashID = 0, 0, 0, 0
	m.days = make(map[int64]depot.StockDay)
	m.types = nil
	m.persons = nil
	m.summaries = make(map[int64][]depot.SummaryRow)
	m.issues = make(map[int64]map[issueKey]depot.DeliveryIssue)
	m.expected = make(map[int64][]depot.ExpectedAmount)
	m.deposits = make(map[int64][]depot.CashDeposit)
	m.balances = make(map[int64][]depot.CashBalance)
	return nil
}

// =============================================================================
// CASH GATING TABLES
// =============================================================================

func (m *Memory) AddExpectedAmount(_ context.Context, rec depot.ExpectedAmount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.dayLocked(rec.DayID); err != nil {
		return err
	}
	m.nextCashID++
	rec.ID = m.nextCashID
	m.expected[rec.DayID] = append(m.expected[rec.DayID], rec)
	return nil
}

func (m *Memory) AddCashDeposit(_ context.Context, rec depot.CashDeposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.dayLocked(rec.DayID); err != nil {
		return err
	}
	m.nextCashID++
	rec.ID = m.nextCashID
	m.deposits[rec.DayID] = append(m.deposits[rec.DayID], rec)
	return nil
}

func (m *Memory) AddCashBalance(_ context.Context, rec depot.CashBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.dayLocked(rec.DayID); err != nil {
		return err
	}
	m.nextCashID++
	rec.ID = m.nextCashID
	m.balances[rec.DayID] = append(m.balances[rec.DayID], rec)
	return nil
}

func (m *Memory) ExpectedAmounts(_ context.Context, dayID int64) ([]depot.ExpectedAmount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]depot.ExpectedAmount, len(m.expected[dayID]))
	copy(out, m.expected[dayID])
	return out, nil
}

func (m *Memory) CashDeposits(_ context.Context, dayID int64) ([]depot.CashDeposit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]depot.CashDeposit, len(m.deposits[dayID]))
	copy(out, m.deposits[dayID])
	return out, nil
}

func (m *Memory) CashBalances(_ context.Context, dayID int64) ([]depot.CashBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]depot.CashBalance, len(m.balances[dayID]))
	copy(out, m.balances[dayID])
	return out, nil
}
