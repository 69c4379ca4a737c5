/*
Package sqlite provides the SQLite-backed implementation of depot.Store.

PURPOSE:
  Persists stock days, daily stock summaries, delivery issues, reference
  data and the cash gating tables. In production the same patterns apply
  to MySQL/PostgreSQL - only minor SQL dialect differences.

TRANSACTIONS:
  Every mutating operation is one database transaction. The two places
  where this is load-bearing:
  - UpsertIssues: the upserts and the tv_out_qty resync commit together.
  - FinalizeDay: the lock bit is re-checked and every closing row is
    written inside one transaction. A partial finalize (some cylinder
    types locked, others not) cannot be observed.

KEY TABLES:
  stock_days:              One row per operational day; stock_date UNIQUE.
  daily_stock_summary:     One row per (day, cylinder type); carries the
                           per-row is_reconciled lock bit.
  delivery_issues:         One row per (day, driver, cylinder type).
  delivery_expected_amount / delivery_cash_deposit /
  delivery_cash_balance:   Cash-settlement gating tables (steps 5-7).

CONCURRENCY:
  Uses sync.RWMutex so concurrent requests against the same day
  serialize rather than interleave partial writes. WAL mode keeps
  readers unblocked.

USAGE:
  store, err := sqlite.New("./data/depot.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - depot/store.go: Interface contract
  - depot/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Thejas6666/gas-agency-app/depot"
)

// Store implements depot.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: writes serialize through the mutex anyway, and a
	// ":memory:" database exists per connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Stock days: the unit of work. Exactly one OPEN at a time
	-- (enforced by CreateDay, not by a constraint).
	CREATE TABLE IF NOT EXISTS stock_days (
		stock_day_id INTEGER PRIMARY KEY AUTOINCREMENT,
		stock_date TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		delivery_no_movement INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_stock_days_status
		ON stock_days(status, stock_date DESC);

	-- Reference data
	CREATE TABLE IF NOT EXISTS cylinder_types (
		cylinder_type_id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS delivery_persons (
		delivery_person_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	-- One row per (day, cylinder type). Nullable opening/closing:
	-- NULL opening means step 1 hasn't run, NULL closing means the day
	-- isn't finalized. is_reconciled is the per-row lock bit.
	CREATE TABLE IF NOT EXISTS daily_stock_summary (
		stock_day_id INTEGER NOT NULL REFERENCES stock_days(stock_day_id),
		cylinder_type_id INTEGER NOT NULL REFERENCES cylinder_types(cylinder_type_id),
		opening_filled INTEGER,
		opening_empty INTEGER,
		item_receipt INTEGER NOT NULL DEFAULT 0,
		item_return INTEGER NOT NULL DEFAULT 0,
		iocl_no_movement INTEGER NOT NULL DEFAULT 0,
		tv_out_qty INTEGER NOT NULL DEFAULT 0,
		sales_regular INTEGER NOT NULL DEFAULT 0,
		nc_qty INTEGER NOT NULL DEFAULT 0,
		dbc_qty INTEGER NOT NULL DEFAULT 0,
		defective_empty_vehicle INTEGER NOT NULL DEFAULT 0,
		closing_filled INTEGER,
		closing_empty INTEGER,
		total_stock INTEGER,
		is_reconciled INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (stock_day_id, cylinder_type_id)
	);

	-- One row per (day, driver, cylinder type); upserts overwrite.
	CREATE TABLE IF NOT EXISTS delivery_issues (
		stock_day_id INTEGER NOT NULL REFERENCES stock_days(stock_day_id),
		delivery_person_id INTEGER NOT NULL REFERENCES delivery_persons(delivery_person_id),
		cylinder_type_id INTEGER NOT NULL REFERENCES cylinder_types(cylinder_type_id),
		regular_qty INTEGER NOT NULL DEFAULT 0,
		nc_qty INTEGER NOT NULL DEFAULT 0,
		dbc_qty INTEGER NOT NULL DEFAULT 0,
		tv_out_qty INTEGER NOT NULL DEFAULT 0,
		delivery_source TEXT NOT NULL DEFAULT 'DELIVERY_PERSON',
		PRIMARY KEY (stock_day_id, delivery_person_id, cylinder_type_id)
	);

	CREATE INDEX IF NOT EXISTS idx_delivery_issues_day_type
		ON delivery_issues(stock_day_id, cylinder_type_id);

	-- Cash-settlement gating tables (steps 5-7). Only row existence
	-- feeds the step gates; amounts stored as decimal strings.
	CREATE TABLE IF NOT EXISTS delivery_expected_amount (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stock_day_id INTEGER NOT NULL REFERENCES stock_days(stock_day_id),
		delivery_person_id INTEGER NOT NULL,
		amount TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS delivery_cash_deposit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stock_day_id INTEGER NOT NULL REFERENCES stock_days(stock_day_id),
		delivery_person_id INTEGER NOT NULL,
		amount TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS delivery_cash_balance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stock_day_id INTEGER NOT NULL REFERENCES stock_days(stock_day_id),
		delivery_person_id INTEGER NOT NULL,
		expected TEXT NOT NULL,
		deposited TEXT NOT NULL,
		variance TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expected_day ON delivery_expected_amount(stock_day_id);
	CREATE INDEX IF NOT EXISTS idx_deposit_day ON delivery_cash_deposit(stock_day_id);
	CREATE INDEX IF NOT EXISTS idx_balance_day ON delivery_cash_balance(stock_day_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STOCK DAYS
// =============================================================================

const dayColumns = "stock_day_id, stock_date, status, delivery_no_movement"

func (s *Store) ActiveDay(ctx context.Context) (depot.StockDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+dayColumns+` FROM stock_days
		WHERE status = ? ORDER BY stock_date DESC LIMIT 1`, depot.DayOpen)

	day, err := scanDay(row)
	if err == sql.ErrNoRows {
		return depot.StockDay{}, depot.ErrNoActiveDay
	}
	return day, err
}

func (s *Store) LatestDay(ctx context.Context) (depot.StockDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+dayColumns+` FROM stock_days ORDER BY stock_date DESC LIMIT 1`)

	day, err := scanDay(row)
	if err == sql.ErrNoRows {
		return depot.StockDay{}, depot.ErrDayNotFound
	}
	return day, err
}

func (s *Store) DayByID(ctx context.Context, id int64) (depot.StockDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dayByID(ctx, s.db, id)
}

func (s *Store) dayByID(ctx context.Context, q queryer, id int64) (depot.StockDay, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+dayColumns+` FROM stock_days WHERE stock_day_id = ?`, id)

	day, err := scanDay(row)
	if err == sql.ErrNoRows {
		return depot.StockDay{}, depot.ErrDayNotFound
	}
	return day, err
}

func (s *Store) DayByDate(ctx context.Context, date depot.Date) (depot.StockDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+dayColumns+` FROM stock_days WHERE stock_date = ?`, date.String())

	day, err := scanDay(row)
	if err == sql.ErrNoRows {
		return depot.StockDay{}, depot.ErrDayNotFound
	}
	return day, err
}

func (s *Store) CreateDay(ctx context.Context, date depot.Date) (depot.StockDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return depot.StockDay{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Uniqueness checks inside the transaction: date taken, or a day
	// still open.
	var n int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stock_days WHERE stock_date = ?", date.String()).Scan(&n); err != nil {
		return depot.StockDay{}, fmt.Errorf("failed to check date: %w", err)
	}
	if n > 0 {
		return depot.StockDay{}, &depot.DuplicateDateError{Date: date}
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stock_days WHERE status = ?", depot.DayOpen).Scan(&n); err != nil {
		return depot.StockDay{}, fmt.Errorf("failed to check open days: %w", err)
	}
	if n > 0 {
		return depot.StockDay{}, depot.ErrAnotherDayOpen
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO stock_days (stock_date, status, delivery_no_movement)
		VALUES (?, ?, 0)`, date.String(), depot.DayOpen)
	if err != nil {
		return depot.StockDay{}, fmt.Errorf("failed to insert stock day: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return depot.StockDay{}, fmt.Errorf("failed to read day id: %w", err)
	}

	// Seed one blank summary row per cylinder type so every per-type
	// operation has a row to write.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_stock_summary (stock_day_id, cylinder_type_id)
		SELECT ?, cylinder_type_id FROM cylinder_types`, id); err != nil {
		return depot.StockDay{}, fmt.Errorf("failed to seed summary rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return depot.StockDay{}, fmt.Errorf("failed to commit: %w", err)
	}

	return depot.StockDay{ID: id, Date: date, Status: depot.DayOpen}, nil
}

func (s *Store) ClosedDays(ctx context.Context) ([]depot.StockDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+dayColumns+` FROM stock_days
		WHERE status = ? ORDER BY stock_date DESC`, depot.DayClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed days: %w", err)
	}
	defer rows.Close()

	var days []depot.StockDay
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *Store) SetDeliveryNoMovement(ctx context.Context, dayID int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireDay(ctx, tx, dayID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE stock_days SET delivery_no_movement = ? WHERE stock_day_id = ?`,
		boolInt(enabled), dayID); err != nil {
		return fmt.Errorf("failed to set delivery_no_movement: %w", err)
	}

	if enabled {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM delivery_issues WHERE stock_day_id = ?", dayID); err != nil {
			return fmt.Errorf("failed to delete delivery issues: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE daily_stock_summary SET tv_out_qty = 0 WHERE stock_day_id = ?", dayID); err != nil {
			return fmt.Errorf("failed to zero tv_out_qty: %w", err)
		}
	}

	return tx.Commit()
}

// CloseDay marks a day CLOSED. Day closing belongs to the cash
// settlement collaborator, not this core; the store method exists so
// the admin surface and tests can drive it.
func (s *Store) CloseDay(ctx context.Context, dayID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE stock_days SET status = ? WHERE stock_day_id = ?`, depot.DayClosed, dayID)
	if err != nil {
		return fmt.Errorf("failed to close day: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return depot.ErrDayNotFound
	}
	return nil
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func (s *Store) CylinderTypes(ctx context.Context) ([]depot.CylinderType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT cylinder_type_id, code FROM cylinder_types ORDER BY cylinder_type_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query cylinder types: %w", err)
	}
	defer rows.Close()

	var types []depot.CylinderType
	for rows.Next() {
		var t depot.CylinderType
		if err := rows.Scan(&t.ID, &t.Code); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) CreateCylinderType(ctx context.Context, code string) (depot.CylinderType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO cylinder_types (code) VALUES (?)", code)
	if err != nil {
		return depot.CylinderType{}, fmt.Errorf("failed to insert cylinder type: %w", err)
	}
	id, _ := res.LastInsertId()
	return depot.CylinderType{ID: id, Code: code}, nil
}

func (s *Store) DeliveryPersons(ctx context.Context, activeOnly bool) ([]depot.DeliveryPerson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT delivery_person_id, name, is_active FROM delivery_persons"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery persons: %w", err)
	}
	defer rows.Close()

	var persons []depot.DeliveryPerson
	for rows.Next() {
		var p depot.DeliveryPerson
		var active int
		if err := rows.Scan(&p.ID, &p.Name, &active); err != nil {
			return nil, err
		}
		p.Active = active == 1
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (s *Store) CreateDeliveryPerson(ctx context.Context, name string) (depot.DeliveryPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO delivery_persons (name, is_active) VALUES (?, 1)", name)
	if err != nil {
		return depot.DeliveryPerson{}, fmt.Errorf("failed to insert delivery person: %w", err)
	}
	id, _ := res.LastInsertId()
	return depot.DeliveryPerson{ID: id, Name: name, Active: true}, nil
}

// =============================================================================
// DAY STATE
// =============================================================================

func (s *Store) LoadDayState(ctx context.Context, dayID int64) (depot.DayState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day, err := s.dayByID(ctx, s.db, dayID)
	if err != nil {
		return depot.DayState{}, err
	}

	summary, err := s.summaryRows(ctx, dayID)
	if err != nil {
		return depot.DayState{}, err
	}

	totals := make(map[int64]depot.IssueTotals)
	rows, err := s.db.QueryContext(ctx, `
		SELECT cylinder_type_id,
		       COALESCE(SUM(regular_qty), 0),
		       COALESCE(SUM(nc_qty), 0),
		       COALESCE(SUM(dbc_qty), 0),
		       COALESCE(SUM(tv_out_qty), 0)
		FROM delivery_issues
		WHERE stock_day_id = ?
		GROUP BY cylinder_type_id`, dayID)
	if err != nil {
		return depot.DayState{}, fmt.Errorf("failed to query issue totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typeID int64
		var t depot.IssueTotals
		if err := rows.Scan(&typeID, &t.Regular, &t.NonCash, &t.DepositBacked, &t.TransferOut); err != nil {
			return depot.DayState{}, err
		}
		totals[typeID] = t
	}
	if err := rows.Err(); err != nil {
		return depot.DayState{}, err
	}

	var issueCount int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM delivery_issues WHERE stock_day_id = ?", dayID).Scan(&issueCount); err != nil {
		return depot.DayState{}, fmt.Errorf("failed to count issues: %w", err)
	}

	var cash depot.CashCounts
	if err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM delivery_expected_amount WHERE stock_day_id = ?),
			(SELECT COUNT(*) FROM delivery_cash_deposit WHERE stock_day_id = ?),
			(SELECT COUNT(*) FROM delivery_cash_balance WHERE stock_day_id = ?)`,
		dayID, dayID, dayID).Scan(&cash.Expected, &cash.Deposits, &cash.Balances); err != nil {
		return depot.DayState{}, fmt.Errorf("failed to count cash rows: %w", err)
	}

	return depot.DayState{
		Day:         day,
		Rows:        summary,
		IssueCount:  issueCount,
		IssueTotals: totals,
		Cash:        cash,
	}, nil
}

func (s *Store) SummaryRows(ctx context.Context, dayID int64) ([]depot.SummaryRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.dayByID(ctx, s.db, dayID); err != nil {
		return nil, err
	}
	return s.summaryRows(ctx, dayID)
}

func (s *Store) summaryRows(ctx context.Context, dayID int64) ([]depot.SummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.stock_day_id, d.cylinder_type_id, t.code,
		       d.opening_filled, d.opening_empty,
		       d.item_receipt, d.item_return, d.iocl_no_movement,
		       d.tv_out_qty, d.sales_regular, d.nc_qty, d.dbc_qty,
		       d.defective_empty_vehicle,
		       d.closing_filled, d.closing_empty, d.total_stock,
		       d.is_reconciled
		FROM daily_stock_summary d
		JOIN cylinder_types t ON t.cylinder_type_id = d.cylinder_type_id
		WHERE d.stock_day_id = ?
		ORDER BY d.cylinder_type_id`, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary rows: %w", err)
	}
	defer rows.Close()

	var out []depot.SummaryRow
	for rows.Next() {
		var r depot.SummaryRow
		var openF, openE, closeF, closeE, total sql.NullInt64
		var noMov, reconciled int
		if err := rows.Scan(
			&r.DayID, &r.CylinderTypeID, &r.Code,
			&openF, &openE,
			&r.ItemReceipt, &r.ItemReturn, &noMov,
			&r.TVOutQty, &r.SalesRegular, &r.NCQty, &r.DBCQty,
			&r.DefectiveEmptyVehicle,
			&closeF, &closeE, &total,
			&reconciled,
		); err != nil {
			return nil, err
		}
		r.OpeningFilled = nullableInt(openF)
		r.OpeningEmpty = nullableInt(openE)
		r.ClosingFilled = nullableInt(closeF)
		r.ClosingEmpty = nullableInt(closeE)
		r.TotalStock = nullableInt(total)
		r.IOCLNoMovement = noMov == 1
		r.Reconciled = reconciled == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// SUMMARY WRITES
// =============================================================================

func (s *Store) SetOpeningStock(ctx context.Context, dayID, cylinderTypeID int64, filled, empty, defective int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateSummaryRow(ctx, dayID, `
		UPDATE daily_stock_summary
		SET opening_filled = ?, opening_empty = ?, defective_empty_vehicle = ?
		WHERE stock_day_id = ? AND cylinder_type_id = ?`,
		filled, empty, defective, dayID, cylinderTypeID)
}

func (s *Store) SetSupplierMovement(ctx context.Context, dayID, cylinderTypeID int64, receipt, ret int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Explicit write clears the no-movement shortcut for this row.
	return s.updateSummaryRow(ctx, dayID, `
		UPDATE daily_stock_summary
		SET item_receipt = ?, item_return = ?, iocl_no_movement = 0
		WHERE stock_day_id = ? AND cylinder_type_id = ?`,
		receipt, ret, dayID, cylinderTypeID)
}

func (s *Store) updateSummaryRow(ctx context.Context, dayID int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update summary row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.dayByID(ctx, s.db, dayID); err != nil {
			return err
		}
		return depot.ErrUnknownCylinderType
	}
	return nil
}

func (s *Store) SetSupplierNoMovement(ctx context.Context, dayID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.execForDay(ctx, dayID, `
		UPDATE daily_stock_summary
		SET item_receipt = 0, item_return = 0, iocl_no_movement = 1
		WHERE stock_day_id = ?`)
}

func (s *Store) ResetSupplierMovements(ctx context.Context, dayID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.execForDay(ctx, dayID, `
		UPDATE daily_stock_summary
		SET item_receipt = 0, item_return = 0, iocl_no_movement = 0
		WHERE stock_day_id = ?`)
}

func (s *Store) execForDay(ctx context.Context, dayID int64, query string) error {
	if _, err := s.dayByID(ctx, s.db, dayID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, dayID); err != nil {
		return fmt.Errorf("failed to update day %d: %w", dayID, err)
	}
	return nil
}

// =============================================================================
// DELIVERY ISSUES
// =============================================================================

func (s *Store) Issues(ctx context.Context, dayID int64) ([]depot.DeliveryIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.dayByID(ctx, s.db, dayID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT stock_day_id, delivery_person_id, cylinder_type_id,
		       regular_qty, nc_qty, dbc_qty, tv_out_qty, delivery_source
		FROM delivery_issues
		WHERE stock_day_id = ?
		ORDER BY delivery_person_id, cylinder_type_id`, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery issues: %w", err)
	}
	defer rows.Close()

	var issues []depot.DeliveryIssue
	for rows.Next() {
		var i depot.DeliveryIssue
		if err := rows.Scan(&i.DayID, &i.DeliveryPersonID, &i.CylinderTypeID,
			&i.RegularQty, &i.NCQty, &i.DBCQty, &i.TVOutQty, &i.Source); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func (s *Store) UpsertIssues(ctx context.Context, dayID int64, issues []depot.DeliveryIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireDay(ctx, tx, dayID); err != nil {
		return err
	}

	for _, i := range issues {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO delivery_issues
				(stock_day_id, delivery_person_id, cylinder_type_id,
				 regular_qty, nc_qty, dbc_qty, tv_out_qty, delivery_source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (stock_day_id, delivery_person_id, cylinder_type_id)
			DO UPDATE SET
				regular_qty = excluded.regular_qty,
				nc_qty = excluded.nc_qty,
				dbc_qty = excluded.dbc_qty,
				tv_out_qty = excluded.tv_out_qty`,
			dayID, i.DeliveryPersonID, i.CylinderTypeID,
			i.RegularQty, i.NCQty, i.DBCQty, i.TVOutQty, i.Source); err != nil {
			return fmt.Errorf("failed to upsert delivery issue: %w", err)
		}
	}

	// Resync tv_out_qty from the ledger in the same transaction.
	// Recomputed, never incremented, so edits and resets stay correct.
	if _, err := tx.ExecContext(ctx, `
		UPDATE daily_stock_summary
		SET tv_out_qty = (
			SELECT COALESCE(SUM(tv_out_qty), 0)
			FROM delivery_issues
			WHERE delivery_issues.stock_day_id = daily_stock_summary.stock_day_id
			  AND delivery_issues.cylinder_type_id = daily_stock_summary.cylinder_type_id
		)
		WHERE stock_day_id = ?`, dayID); err != nil {
		return fmt.Errorf("failed to sync tv_out_qty: %w", err)
	}

	return tx.Commit()
}

// =============================================================================
// FINALIZE AND RESET
// =============================================================================

func (s *Store) FinalizeDay(ctx context.Context, dayID int64, closing []depot.ClosingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireDay(ctx, tx, dayID); err != nil {
		return err
	}

	// Re-check the lock bit inside the transaction. A concurrent or
	// duplicate finalize can never partially apply.
	var locked int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(is_reconciled), 0) FROM daily_stock_summary
		WHERE stock_day_id = ?`, dayID).Scan(&locked); err != nil {
		return fmt.Errorf("failed to check lock: %w", err)
	}
	if locked == 1 {
		return depot.ErrAlreadyFinalized
	}

	for _, c := range closing {
		res, err := tx.ExecContext(ctx, `
			UPDATE daily_stock_summary
			SET closing_filled = ?,
			    closing_empty = ?,
			    total_stock = ?,
			    sales_regular = ?,
			    nc_qty = ?,
			    dbc_qty = ?,
			    tv_out_qty = ?,
			    is_reconciled = 1
			WHERE stock_day_id = ? AND cylinder_type_id = ?`,
			c.ClosingFilled, c.ClosingEmpty, c.TotalStock,
			c.Regular, c.NonCash, c.DepositBacked, c.TransferOut,
			dayID, c.CylinderTypeID)
		if err != nil {
			return fmt.Errorf("failed to finalize cylinder type %d: %w", c.CylinderTypeID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return depot.ErrUnknownCylinderType
		}
	}

	// Every row must carry the lock bit now: a closing set that missed
	// a cylinder type rolls back rather than committing a partial lock.
	var unlocked int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_stock_summary
		WHERE stock_day_id = ? AND is_reconciled = 0`, dayID).Scan(&unlocked); err != nil {
		return fmt.Errorf("failed to verify lock coverage: %w", err)
	}
	if unlocked > 0 {
		return depot.ErrUnknownCylinderType
	}

	return tx.Commit()
}

func (s *Store) ResetDay(ctx context.Context, dayID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireDay(ctx, tx, dayID); err != nil {
		return err
	}

	steps := []string{
		"DELETE FROM delivery_issues WHERE stock_day_id = ?",
		"UPDATE daily_stock_summary SET tv_out_qty = 0, item_receipt = 0, item_return = 0, iocl_no_movement = 0 WHERE stock_day_id = ?",
		"UPDATE stock_days SET delivery_no_movement = 0 WHERE stock_day_id = ?",
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, dayID); err != nil {
			return fmt.Errorf("failed to reset day %d: %w", dayID, err)
		}
	}

	return tx.Commit()
}

// Wipe clears every table. Used by the demo scenario loaders; never
// called from the daily workflow.
func (s *Store) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Child tables first, foreign keys are on.
	tables := []string{
		"delivery_cash_balance",
		"delivery_cash_deposit",
		"delivery_expected_amount",
		"delivery_issues",
		"daily_stock_summary",
		"stock_days",
		"delivery_persons",
		"cylinder_types",
	}
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("failed to wipe %s: %w", t, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// CASH GATING TABLES
// =============================================================================

func (s *Store) AddExpectedAmount(ctx context.Context, rec depot.ExpectedAmount) error {
	return s.insertCashRow(ctx, rec.DayID, `
		INSERT INTO delivery_expected_amount (stock_day_id, delivery_person_id, amount)
		VALUES (?, ?, ?)`, rec.DayID, rec.DeliveryPersonID, rec.Amount.String())
}

func (s *Store) AddCashDeposit(ctx context.Context, rec depot.CashDeposit) error {
	return s.insertCashRow(ctx, rec.DayID, `
		INSERT INTO delivery_cash_deposit (stock_day_id, delivery_person_id, amount)
		VALUES (?, ?, ?)`, rec.DayID, rec.DeliveryPersonID, rec.Amount.String())
}

func (s *Store) AddCashBalance(ctx context.Context, rec depot.CashBalance) error {
	return s.insertCashRow(ctx, rec.DayID, `
		INSERT INTO delivery_cash_balance (stock_day_id, delivery_person_id, expected, deposited, variance)
		VALUES (?, ?, ?, ?, ?)`,
		rec.DayID, rec.DeliveryPersonID,
		rec.Expected.String(), rec.Deposited.String(), rec.Variance.String())
}

func (s *Store) insertCashRow(ctx context.Context, dayID int64, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.dayByID(ctx, s.db, dayID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert cash row: %w", err)
	}
	return nil
}

// ExpectedAmounts returns the expected-cash rows for a day. Read-side
// support for the settlement collaborator's views.
func (s *Store) ExpectedAmounts(ctx context.Context, dayID int64) ([]depot.ExpectedAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stock_day_id, delivery_person_id, amount
		FROM delivery_expected_amount WHERE stock_day_id = ? ORDER BY id`, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expected amounts: %w", err)
	}
	defer rows.Close()

	var out []depot.ExpectedAmount
	for rows.Next() {
		var rec depot.ExpectedAmount
		var amount string
		if err := rows.Scan(&rec.ID, &rec.DayID, &rec.DeliveryPersonID, &amount); err != nil {
			return nil, err
		}
		rec.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("bad amount %q: %w", amount, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDay(r rowScanner) (depot.StockDay, error) {
	var day depot.StockDay
	var dateStr string
	var noMov int
	if err := r.Scan(&day.ID, &dateStr, &day.Status, &noMov); err != nil {
		return depot.StockDay{}, err
	}

	date, err := depot.ParseDate(dateStr)
	if err != nil {
		return depot.StockDay{}, fmt.Errorf("bad stock_date in database: %w", err)
	}
	day.Date = date
	day.DeliveryNoMovement = noMov == 1
	return day, nil
}

func (s *Store) requireDay(ctx context.Context, tx *sql.Tx, dayID int64) error {
	_, err := s.dayByID(ctx, tx, dayID)
	return err
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
