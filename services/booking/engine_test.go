package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	reservationRepo "innkeeper/database/repository/reservation"
	roomRepo "innkeeper/database/repository/room"
	"innkeeper/models"
	"innkeeper/services/catalog"
	"innkeeper/services/roomlock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	engine  *DefaultBookingEngine
	locker  *roomlock.LocalLocker
	catalog *catalog.DefaultCatalogService
	rooms   *roomRepo.MemoryRoomRepo
	ledger  *reservationRepo.MemoryReservationRepo
}

// newFixture builds an engine over room 1 (Standard, 100.00) and
// room 2 (Deluxe, 150.00), both flagged available. Today is 2024-06-01.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	rooms := roomRepo.NewMemoryRoomRepo()
	for _, r := range []models.Room{
		{Label: "1", Category: "Standard", NightlyRate: 100.00, Available: true},
		{Label: "2", Category: "Deluxe", NightlyRate: 150.00, Available: true},
	} {
		room := r
		_, err := rooms.Create(ctx, &room)
		require.NoError(t, err)
	}
	ledger := reservationRepo.NewMemoryReservationRepo()
	locker := roomlock.NewLocal(2 * time.Second)
	cat := catalog.NewCatalogService(rooms, ledger, locker, func() time.Time { return day("2024-06-01") })

	return &fixture{
		engine:  NewBookingEngine(cat, ledger, locker, nil),
		locker:  locker,
		catalog: cat,
		rooms:   rooms,
		ledger:  ledger,
	}
}

func (f *fixture) flag(t *testing.T, roomID int64) bool {
	t.Helper()
	room, err := f.rooms.GetByID(context.Background(), roomID)
	require.NoError(t, err)
	return room.Available
}

func request(roomID int64, guest, in, out string) models.BookingRequest {
	return models.BookingRequest{
		RoomID:       roomID,
		GuestName:    guest,
		GuestContact: guest + "@example.com",
		CheckIn:      day(in),
		CheckOut:     day(out),
	}
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	price, err := f.engine.Quote(ctx, 1, day("2024-06-01"), day("2024-06-04"))
	require.NoError(t, err)
	assert.Equal(t, 300.00, price)

	_, err = f.engine.Quote(ctx, 1, day("2024-06-01"), day("2024-06-01"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = f.engine.Quote(ctx, 99, day("2024-06-01"), day("2024-06-02"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookCancelEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.engine.Book(ctx, request(1, "Alice", "2024-06-01", "2024-06-03"))
	require.NoError(t, err)
	assert.Empty(t, alice.Warnings)
	assert.NotZero(t, alice.Reservation.ID)
	assert.Equal(t, 200.00, alice.Reservation.TotalPrice)
	assert.Equal(t, models.StatusActive, alice.Reservation.Status)
	assert.False(t, f.flag(t, 1))

	_, err = f.engine.Book(ctx, request(1, "Bob", "2024-06-02", "2024-06-04"))
	assert.ErrorIs(t, err, ErrConflict)

	cancelled, err := f.engine.Cancel(ctx, alice.Reservation.ID)
	require.NoError(t, err)
	require.NotNil(t, cancelled.RoomAvailable)
	assert.True(t, *cancelled.RoomAvailable)
	assert.True(t, f.flag(t, 1))

	bob, err := f.engine.Book(ctx, request(1, "Bob", "2024-06-02", "2024-06-04"))
	require.NoError(t, err)
	assert.Equal(t, 200.00, bob.Reservation.TotalPrice)
	assert.Greater(t, bob.Reservation.ID, alice.Reservation.ID)
}

func TestBookTurnoverDayAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Book(ctx, request(1, "Alice", "2024-01-01", "2024-01-05"))
	require.NoError(t, err)
	_, err = f.engine.Book(ctx, request(1, "Bob", "2024-01-05", "2024-01-10"))
	assert.NoError(t, err)
}

func TestCancelTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.engine.Book(ctx, request(1, "Alice", "2024-06-01", "2024-06-03"))
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, res.Reservation.ID)
	require.NoError(t, err)
	assert.True(t, f.flag(t, 1))

	_, err = f.engine.Cancel(ctx, res.Reservation.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, f.flag(t, 1))

	_, err = f.engine.Cancel(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelKeepsFlagWhileTodayIsCovered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	current, err := f.engine.Book(ctx, request(1, "Alice", "2024-05-30", "2024-06-03"))
	require.NoError(t, err)
	later, err := f.engine.Book(ctx, request(1, "Bob", "2024-06-10", "2024-06-12"))
	require.NoError(t, err)
	assert.False(t, f.flag(t, 1))

	result, err := f.engine.Cancel(ctx, later.Reservation.ID)
	require.NoError(t, err)
	require.NotNil(t, result.RoomAvailable)
	assert.False(t, *result.RoomAvailable)
	assert.False(t, f.flag(t, 1))

	result, err = f.engine.Cancel(ctx, current.Reservation.ID)
	require.NoError(t, err)
	assert.True(t, *result.RoomAvailable)
	assert.True(t, f.flag(t, 1))
}

func TestFutureBookingKeepsRoomSearchable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Book(ctx, request(2, "Alice", "2030-01-01", "2030-01-03"))
	require.NoError(t, err)
	assert.True(t, f.flag(t, 2))

	rooms, err := f.catalog.Search(ctx, "Deluxe", day("2031-05-01"), day("2031-05-03"))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(2), rooms[0].ID)

	rooms, err = f.catalog.Search(ctx, "Deluxe", day("2030-01-02"), day("2030-01-04"))
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestQuoteLongStay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	price, err := f.engine.Quote(ctx, 1, day("2024-01-01"), day("2400-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 13733100.00, price)

	result, err := f.engine.Book(ctx, request(1, "Alice", "2024-01-01", "2400-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 13733100.00, result.Reservation.TotalPrice)
	assert.Equal(t, 137331, result.Reservation.Nights())
}

func TestBookRejectsBadInputWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Book(ctx, request(1, "Alice", "2024-06-03", "2024-06-03"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = f.engine.Book(ctx, request(1, "Alice", "2024-06-05", "2024-06-03"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	req := request(1, "", "2024-06-01", "2024-06-03")
	_, err = f.engine.Book(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.engine.Book(ctx, request(99, "Alice", "2024-06-01", "2024-06-03"))
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := f.ledger.ListActiveByRoom(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.True(t, f.flag(t, 1))
}

func TestConcurrentBookingsExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Book(ctx, request(2, "Guest", "2024-08-01", "2024-08-05"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)

	active, err := f.ledger.ListActiveByRoom(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

type failingLedger struct {
	reservationRepo.ReservationRepository
	insertErr error
}

func (l *failingLedger) Insert(context.Context, *models.Reservation) (int64, error) {
	return 0, l.insertErr
}

func TestInsertFailureLeavesFlagUntouched(t *testing.T) {
	f := newFixture(t)
	ledger := &failingLedger{ReservationRepository: f.ledger, insertErr: errors.New("connection reset")}
	engine := NewBookingEngine(f.catalog, ledger, f.locker, nil)

	_, err := engine.Book(context.Background(), request(1, "Alice", "2024-06-01", "2024-06-03"))
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.True(t, f.flag(t, 1))
}

type flakyCatalog struct {
	catalog.Service
	flagErr error
}

func (c *flakyCatalog) RecomputeFlag(context.Context, int64) (bool, error) {
	return false, c.flagErr
}

type recordingRepairer struct {
	mu    sync.Mutex
	rooms []int64
}

func (r *recordingRepairer) ScheduleFlagRepair(_ context.Context, roomID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, roomID)
	return nil
}

func TestFlagFailureKeepsReservationAndWarns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repairer := &recordingRepairer{}
	cat := &flakyCatalog{Service: f.catalog, flagErr: errors.New("write timeout")}
	engine := NewBookingEngine(cat, f.ledger, f.locker, repairer)

	result, err := engine.Book(ctx, request(1, "Alice", "2024-06-01", "2024-06-03"))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "availability flag")

	stored, err := engine.GetReservation(ctx, result.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)

	cancelled, err := engine.Cancel(ctx, result.Reservation.ID)
	require.NoError(t, err)
	assert.Len(t, cancelled.Warnings, 1)
	assert.Nil(t, cancelled.RoomAvailable)

	assert.Equal(t, []int64{1, 1}, repairer.rooms)
}

func TestSearchIgnoresStaleFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A stale false flag does not hide free dates.
	require.NoError(t, f.catalog.SetAvailabilityFlag(ctx, 2, false))
	rooms, err := f.catalog.Search(ctx, "Deluxe", day("2024-06-03"), day("2024-06-04"))
	require.NoError(t, err)
	assert.Len(t, rooms, 1)

	_, err = f.engine.Book(ctx, request(2, "Alice", "2024-06-01", "2024-06-05"))
	require.NoError(t, err)
	// Flag incorrectly reset to true.
	require.NoError(t, f.catalog.SetAvailabilityFlag(ctx, 2, true))

	rooms, err = f.catalog.Search(ctx, "Deluxe", day("2024-06-03"), day("2024-06-04"))
	require.NoError(t, err)
	assert.Empty(t, rooms)

	available, err := f.engine.IsAvailable(ctx, 2, day("2024-06-05"), day("2024-06-06"))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestGetReservationNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.GetReservation(context.Background(), 12)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// pausingLedger blocks the first HasConflict call until release is closed.
type pausingLedger struct {
	reservationRepo.ReservationRepository
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (l *pausingLedger) HasConflict(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	conflict, err := l.ReservationRepository.HasConflict(ctx, roomID, checkIn, checkOut)
	l.once.Do(func() {
		close(l.reached)
		<-l.release
	})
	return conflict, err
}

func TestRefreshDoesNotOverwriteConcurrentBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := func() time.Time { return day("2030-06-01") }

	paused := &pausingLedger{ReservationRepository: f.ledger, reached: make(chan struct{}), release: make(chan struct{})}
	refresher := catalog.NewCatalogService(f.rooms, paused, f.locker, now)
	engine := NewBookingEngine(catalog.NewCatalogService(f.rooms, f.ledger, f.locker, now), f.ledger, f.locker, nil)

	refreshed := make(chan error, 1)
	go func() {
		_, err := refresher.RefreshFlag(ctx, 1)
		refreshed <- err
	}()
	<-paused.reached

	booked := make(chan error, 1)
	go func() {
		_, err := engine.Book(ctx, request(1, "Alice", "2030-06-01", "2030-06-03"))
		booked <- err
	}()

	select {
	case err := <-booked:
		t.Fatalf("booking finished while the refresh held the room lock: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(paused.release)
	require.NoError(t, <-refreshed)
	require.NoError(t, <-booked)

	active, err := f.ledger.ListActiveByRoom(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.False(t, f.flag(t, 1))
}
