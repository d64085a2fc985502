package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapid-reservation/rapid-api/internal/model"
	"github.com/rapid-reservation/rapid-api/internal/repository"
)

// fakeStore is an in-memory TableStore so the countdown logic can be
// exercised without a database. onReserveWrite, when set, runs at the
// start of every availability write that marks a table reserved;
// releaseErr, when set, fails every write that marks a table available.
type fakeStore struct {
	mu             sync.Mutex
	tables         map[uint64]*model.Table
	onReserveWrite func()
	releaseErr     error
}

func newFakeStore(ids ...uint64) *fakeStore {
	s := &fakeStore{tables: make(map[uint64]*model.Table)}
	for _, id := range ids {
		s.tables[id] = &model.Table{TableID: id, MaxCustomer: 4, TableAvailable: true}
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return model.Table{}, repository.ErrTableNotFound
	}
	return *t, nil
}

func (s *fakeStore) List(_ context.Context) ([]model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeStore) SetAvailability(_ context.Context, id uint64, available bool) error {
	if !available && s.onReserveWrite != nil {
		s.onReserveWrite()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if available && s.releaseErr != nil {
		return s.releaseErr
	}
	t, ok := s.tables[id]
	if !ok {
		return repository.ErrTableNotFound
	}
	t.TableAvailable = available
	return nil
}

func (s *fakeStore) setReleaseErr(err error) {
	s.mu.Lock()
	s.releaseErr = err
	s.mu.Unlock()
}

func (s *fakeStore) ReleaseAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tables {
		t.TableAvailable = true
	}
	return nil
}

func (s *fakeStore) available(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[id].TableAvailable
}

func newTestManager(store *fakeStore, ttl time.Duration) *Manager {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewManager(store, ttl, logger)
}

func TestReserveMarksTableUnavailable(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, time.Hour)
	defer m.ClearAll(context.Background())

	require.NoError(t, m.Reserve(context.Background(), 1))

	got, err := m.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, got.TableAvailable)
	assert.Equal(t, 1, m.PendingExpiries())
}

func TestReserveUnknownTable(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, time.Hour)

	err := m.Reserve(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrTableNotFound)
	assert.Equal(t, 0, m.PendingExpiries())
}

func TestClearReleasesTableAndCancelsCountdown(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, time.Hour)

	require.NoError(t, m.Reserve(context.Background(), 1))
	require.NoError(t, m.Clear(context.Background(), 1))

	assert.True(t, store.available(1))
	assert.Equal(t, 0, m.PendingExpiries())
}

func TestClearTwiceIsIdempotent(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, time.Hour)

	require.NoError(t, m.Reserve(context.Background(), 1))
	require.NoError(t, m.Clear(context.Background(), 1))
	require.NoError(t, m.Clear(context.Background(), 1))

	assert.True(t, store.available(1))
	assert.Equal(t, 0, m.PendingExpiries())
}

func TestCountdownReleasesTableWithoutClear(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, 40*time.Millisecond)

	require.NoError(t, m.Reserve(context.Background(), 1))
	assert.False(t, store.available(1))

	require.Eventually(t, func() bool { return store.available(1) },
		time.Second, 10*time.Millisecond, "table should auto-release after the countdown")
	assert.Equal(t, 0, m.PendingExpiries())
}

func TestClearPreventsLateFire(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, 200*time.Millisecond)

	// Reserve, clear well before the countdown, then reserve again
	// later. If the first timer were still armed it would fire around
	// t=200ms and flip the re-reserved table back to available; the
	// second timer does not fire until t=350ms.
	require.NoError(t, m.Reserve(context.Background(), 1))
	require.NoError(t, m.Clear(context.Background(), 1))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, m.Reserve(context.Background(), 1))

	time.Sleep(100 * time.Millisecond) // past the first window
	assert.False(t, store.available(1), "cleared countdown must never fire")
	assert.Equal(t, 1, m.PendingExpiries())
}

func TestReReserveResetsCountdown(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, 120*time.Millisecond)

	require.NoError(t, m.Reserve(context.Background(), 1))
	time.Sleep(80 * time.Millisecond)
	require.NoError(t, m.Reserve(context.Background(), 1)) // restart countdown

	// Past the first window but inside the second one.
	time.Sleep(80 * time.Millisecond)
	assert.False(t, store.available(1), "re-reserve must discard the old countdown")

	require.Eventually(t, func() bool { return store.available(1) },
		time.Second, 10*time.Millisecond)
}

func TestClearAllEmptiesRegistry(t *testing.T) {
	store := newFakeStore(1, 2, 3)
	m := newTestManager(store, time.Hour)

	for id := uint64(1); id <= 3; id++ {
		require.NoError(t, m.Reserve(context.Background(), id))
	}
	require.Equal(t, 3, m.PendingExpiries())

	require.NoError(t, m.ClearAll(context.Background()))
	assert.Equal(t, 0, m.PendingExpiries())
	for id := uint64(1); id <= 3; id++ {
		assert.True(t, store.available(id))
	}
}

func TestConcurrentReservesKeepOneCountdown(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, time.Hour)
	defer m.ClearAll(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Reserve(context.Background(), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.PendingExpiries())
	assert.False(t, store.available(1))
}

func TestClearDuringReserveStoreWriteCancelsCountdown(t *testing.T) {
	store := newFakeStore(1)
	entered := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	store.onReserveWrite = func() {
		once.Do(func() {
			close(entered)
			<-proceed
		})
	}
	m := newTestManager(store, time.Hour)

	// Pause Reserve inside its store write, then issue a Clear. The
	// clear must wait for the reserve to arm its countdown and then
	// cancel it; a clear that slips in between the store write and the
	// arming would leave the table available with a live timer.
	reserveDone := make(chan error, 1)
	go func() { reserveDone <- m.Reserve(context.Background(), 1) }()
	<-entered

	clearDone := make(chan error, 1)
	go func() { clearDone <- m.Clear(context.Background(), 1) }()
	close(proceed)

	require.NoError(t, <-reserveDone)
	require.NoError(t, <-clearDone)
	assert.True(t, store.available(1))
	assert.Equal(t, 0, m.PendingExpiries())
}

func TestFailedClearKeepsCountdownArmed(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store, time.Hour)
	defer m.ClearAll(context.Background())

	require.NoError(t, m.Reserve(context.Background(), 1))

	// A clear whose store write fails must not disarm the countdown:
	// the table is still reserved and has to keep its auto-release.
	store.setReleaseErr(errors.New("connection reset"))
	err := m.Clear(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, store.available(1))
	assert.Equal(t, 1, m.PendingExpiries())

	store.setReleaseErr(nil)
	require.NoError(t, m.Clear(context.Background(), 1))
	assert.True(t, store.available(1))
	assert.Equal(t, 0, m.PendingExpiries())
}

func TestClearAllRacesReserves(t *testing.T) {
	store := newFakeStore(1, 2, 3, 4)
	m := newTestManager(store, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		id := uint64(i%4 + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Reserve(context.Background(), id)
		}()
		if i%8 == 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = m.ClearAll(context.Background())
			}()
		}
	}
	wg.Wait()

	// Whatever interleaving happened, a final bulk clear must leave no
	// armed countdowns and every table available.
	require.NoError(t, m.ClearAll(context.Background()))
	assert.Equal(t, 0, m.PendingExpiries())
	for id := uint64(1); id <= 4; id++ {
		assert.True(t, store.available(id))
	}
}
