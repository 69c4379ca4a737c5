/*
registry.go - Day Registry: the single OPEN day and closed-day history

PURPOSE:
  Owns the "exactly one OPEN day" invariant. Every other service
  resolves the active day through here; closed days are append-only
  history.

INVARIANT:
  The source system enforced uniqueness by convention (every query just
  took the newest OPEN row). Here creation is rejected explicitly:
  ErrAnotherDayOpen when an OPEN day exists, ErrDuplicateDate when the
  date is taken. Closing a day is an external operation, not modeled in
  this core.

SEE ALSO:
  - store.go: CreateDay performs both checks inside one lock scope
*/
package depot

import "context"

// Registry owns the active stock day and the history of closed days.
type Registry struct {
	store Store
}

// NewRegistry creates a Registry backed by the given store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// ActiveDay returns the single OPEN day, or ErrNoActiveDay.
func (r *Registry) ActiveDay(ctx context.Context) (StockDay, error) {
	return r.store.ActiveDay(ctx)
}

// LatestDay returns the most recent day, OPEN or CLOSED. The dashboard
// shows it either way; ErrDayNotFound on an empty registry.
func (r *Registry) LatestDay(ctx context.Context) (StockDay, error) {
	return r.store.LatestDay(ctx)
}

// OpenNewDay creates an OPEN day for date with the delivery no-movement
// flag cleared, seeding a blank summary row per cylinder type.
//
// Fails with ErrDuplicateDate if a day exists for date, and with
// ErrAnotherDayOpen if any day is still OPEN; it never silently
// creates a second active day.
func (r *Registry) OpenNewDay(ctx context.Context, date Date) (StockDay, error) {
	return r.store.CreateDay(ctx, date)
}

// History lists CLOSED days, newest first.
func (r *Registry) History(ctx context.Context) ([]StockDay, error) {
	return r.store.ClosedDays(ctx)
}

// NextAvailableDate suggests the date for the next day to open: the day
// after the most recent existing day, or today when the registry is
// empty.
func (r *Registry) NextAvailableDate(ctx context.Context, today Date) (Date, error) {
	last, err := r.store.LatestDay(ctx)
	if err != nil {
		if IsNotFound(err) {
			return today, nil
		}
		return Date{}, err
	}
	return last.Date.AddDays(1), nil
}
