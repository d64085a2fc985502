// Package reservation owns the table reservation lifecycle: flipping
// availability in the store and running the per-table auto-release
// countdown. Each table has a slot holding its own lock and its armed
// timer; the store write and the timer change for a table always happen
// under that slot's lock, so a reserve and a clear for the same table
// serialize end to end and the invariant "at most one live timer per
// table, and only while the table is reserved" holds by construction.
package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rapid-reservation/rapid-api/internal/model"
)

// storeTimeout bounds the background store write performed when a
// countdown fires outside of any request scope.
const storeTimeout = 5 * time.Second

// TableStore is the slice of the data layer the manager needs. It is
// satisfied by *repository.TableRepo; tests substitute an in-memory
// implementation.
type TableStore interface {
	GetByID(ctx context.Context, tableID uint64) (model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
	SetAvailability(ctx context.Context, tableID uint64, available bool) error
	ReleaseAll(ctx context.Context) error
}

// tableState is one table's slot. mu covers both the store write and
// the timer transition for that table. seq advances on every arm and
// disarm, which makes the fire callback self-identifying: a timer that
// lost the race to a clear or a re-reserve finds seq moved and backs
// off without touching anything.
type tableState struct {
	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func (st *tableState) disarmLocked() {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.seq++
}

// Manager coordinates reservation state between the store and the
// per-table countdown timers. OnAutoRelease, when set, is invoked after
// a countdown releases a table; the HTTP layer uses it to publish a
// released event and drop cached table reads. The hook runs while the
// table's slot is still locked, so it must not call back into the
// Manager.
type Manager struct {
	store  TableStore
	ttl    time.Duration
	logger *logrus.Logger

	OnAutoRelease func(tableID uint64)

	mu     sync.Mutex
	tables map[uint64]*tableState
}

// NewManager builds a Manager releasing reservations after ttl. A nil
// logger falls back to the logrus standard logger.
func NewManager(store TableStore, ttl time.Duration, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger,
		tables: make(map[uint64]*tableState),
	}
}

// state returns the slot for tableID, creating it on first use. Slots
// live for the process lifetime; there is one per table on the floor.
func (m *Manager) state(tableID uint64) *tableState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.tables[tableID]
	if !ok {
		st = &tableState{}
		m.tables[tableID] = st
	}
	return st
}

// Reserve marks a table unavailable and arms its auto-release
// countdown. Reserving an already-reserved table is allowed and
// restarts the countdown: the old timer is discarded and a fresh one
// takes its place, which is the observable contract clients rely on to
// extend a reservation. The slot stays locked from the store write
// through the arming, so a concurrent clear waits and then cancels this
// countdown instead of slipping in between.
func (m *Manager) Reserve(ctx context.Context, tableID uint64) error {
	st := m.state(tableID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := m.store.SetAvailability(ctx, tableID, false); err != nil {
		return err
	}
	if st.timer != nil {
		st.timer.Stop()
	}
	st.seq++
	seq := st.seq
	st.timer = time.AfterFunc(m.ttl, func() { m.expire(st, tableID, seq) })
	return nil
}

// Clear marks a table available and cancels any pending release for
// it. The countdown is disarmed only after the store write succeeds:
// if the write fails the reservation keeps its countdown, so the table
// still auto-releases even though this clear was lost. Clearing a
// table with no pending release (never reserved, timer already fired,
// cleared twice) is a no-op on the slot, never an error.
func (m *Manager) Clear(ctx context.Context, tableID uint64) error {
	st := m.state(tableID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := m.store.SetAvailability(ctx, tableID, true); err != nil {
		return err
	}
	st.disarmLocked()
	return nil
}

// ClearAll disarms every countdown and releases every table in one
// store operation. Each slot is disarmed under its own lock and the
// seq bump makes any in-flight fire callback back off, so no timer can
// fire mid-sweep and undo the bulk release.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	states := make([]*tableState, 0, len(m.tables))
	for _, st := range m.tables {
		states = append(states, st)
	}
	m.mu.Unlock()

	for _, st := range states {
		st.mu.Lock()
		st.disarmLocked()
		st.mu.Unlock()
	}
	return m.store.ReleaseAll(ctx)
}

// Get returns the current view of one table. Pure read.
func (m *Manager) Get(ctx context.Context, tableID uint64) (model.Table, error) {
	return m.store.GetByID(ctx, tableID)
}

// List returns every table ordered by table_id. Pure read.
func (m *Manager) List(ctx context.Context) ([]model.Table, error) {
	return m.store.List(ctx)
}

// PendingExpiries reports how many auto-release countdowns are armed.
func (m *Manager) PendingExpiries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, st := range m.tables {
		st.mu.Lock()
		if st.timer != nil {
			n++
		}
		st.mu.Unlock()
	}
	return n
}

// expire is the timer callback. It claims the slot first; if seq moved
// or the timer is already gone, this firing lost a race with Clear,
// ClearAll or a re-Reserve and must do nothing. The release write runs
// under the slot lock so it cannot interleave with a clear or reserve
// for the same table.
func (m *Manager) expire(st *tableState, tableID, seq uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.timer == nil || st.seq != seq {
		return
	}
	st.timer = nil

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := m.store.SetAvailability(ctx, tableID, true); err != nil {
		m.logger.Errorf("auto-release of table %d failed: %v", tableID, err)
		return
	}
	m.logger.Infof("reservation expired, table %d released", tableID)
	if m.OnAutoRelease != nil {
		m.OnAutoRelease(tableID)
	}
}
