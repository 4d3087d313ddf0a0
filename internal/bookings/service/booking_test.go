package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"liora/internal/bookings/events"
	bookingserrors "liora/internal/bookings/errors"
	bookingvalidator "liora/internal/bookings/validator"
	listingserrors "liora/internal/listings/errors"
	"liora/pkg/config"
	mongotx "liora/pkg/db/mongo"
	apperrors "liora/pkg/errors"
	"liora/pkg/logger"
	"liora/pkg/model"
	"liora/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────

type fakeBookingRepository struct {
	mu       sync.Mutex
	seq      int
	bookings map[string]*model.Booking
	beforeTx func()
}

func newFakeBookingRepository() *fakeBookingRepository {
	return &fakeBookingRepository{bookings: make(map[string]*model.Booking)}
}

func (f *fakeBookingRepository) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = fmt.Sprintf("65c0000000000000000000%02d", f.seq)
	b.CreatedAt = time.Now().UTC()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepository) filter(match func(*model.Booking) bool) []*model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range f.bookings {
		if match(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeBookingRepository) FindByGuest(_ context.Context, guestID string) ([]*model.Booking, error) {
	return f.filter(func(b *model.Booking) bool { return b.GuestID == guestID }), nil
}

func (f *fakeBookingRepository) FindByHost(_ context.Context, hostID string) ([]*model.Booking, error) {
	return f.filter(func(b *model.Booking) bool { return b.HostID == hostID }), nil
}

func (f *fakeBookingRepository) FindByPaymentIntent(_ context.Context, intentID string) (*model.Booking, error) {
	found := f.filter(func(b *model.Booking) bool { return b.PaymentIntentID == intentID })
	if len(found) == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return found[0], nil
}

// FindOverlapping returns every booking on the listing; the service filters overlaps itself.
func (f *fakeBookingRepository) FindOverlapping(_ context.Context, listingID string, _, _ time.Time) ([]*model.Booking, error) {
	return f.filter(func(b *model.Booking) bool { return b.ListingID == listingID }), nil
}

func (f *fakeBookingRepository) UpdateStatus(_ context.Context, id, from, to string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return nil, bookingserrors.ErrStatusChanged
	}
	b.Status = to
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if f.beforeTx != nil {
		f.beforeTx()
	}
	return fn(ctx)
}

func (f *fakeBookingRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

type fakeLockRepository struct {
	mu       sync.Mutex
	locks    map[string]*model.BookingLock
	renewals int
}

func newFakeLockRepository() *fakeLockRepository {
	return &fakeLockRepository{locks: make(map[string]*model.BookingLock)}
}

func (f *fakeLockRepository) Create(_ context.Context, lock *model.BookingLock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.locks[lock.ID]; held {
		return bookingserrors.ErrLockHeld
	}
	cp := *lock
	f.locks[lock.ID] = &cp
	return nil
}

func (f *fakeLockRepository) Delete(_ context.Context, lockID, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.locks[lockID]; ok && l.Owner == owner {
		delete(f.locks, lockID)
	}
	return nil
}

func (f *fakeLockRepository) Renew(_ context.Context, lockID, owner string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[lockID]
	if !ok || l.Owner != owner {
		return bookingserrors.ErrLockLost
	}
	l.ExpiresAt = expiresAt
	f.renewals++
	return nil
}

func (f *fakeLockRepository) DeleteExpired(_ context.Context, lockID string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.locks[lockID]; ok && l.ExpiresAt.Before(now) {
		delete(f.locks, lockID)
		return true, nil
	}
	return false, nil
}

func (f *fakeLockRepository) held() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.locks)
}

type fakeListings struct {
	listings map[string]*model.Listing
}

func (f *fakeListings) FindByID(_ context.Context, id string) (*model.Listing, error) {
	if l, ok := f.listings[id]; ok {
		return l, nil
	}
	return nil, listingserrors.ErrNotFound
}

func (f *fakeListings) FindByIDs(_ context.Context, ids []string) ([]*model.Listing, error) {
	var out []*model.Listing
	for _, id := range ids {
		if l, ok := f.listings[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[string]*model.User
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []string) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakePayments struct {
	mu        sync.Mutex
	createErr error
	amounts   []int64
	metadata  []map[string]string
	cancelled []string
	seq       int
}

func (f *fakePayments) CreateIntent(_ context.Context, amount int64, _ string, metadata map[string]string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	f.amounts = append(f.amounts, amount)
	f.metadata = append(f.metadata, metadata)
	id := fmt.Sprintf("pi_%d", f.seq)
	return &payment.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (f *fakePayments) CancelIntent(_ context.Context, intentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, intentID)
	return nil
}

func (f *fakePayments) ParseEvent([]byte, string) (*payment.Event, error) {
	return nil, payment.ErrWebhookDisabled
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.BookingEvent
}

func (p *recordingPublisher) PublishBooking(_ context.Context, e *model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var _ events.Publisher = (*recordingPublisher)(nil)

// ────────────────────────────────────────────────
// Harness
// ────────────────────────────────────────────────

const (
	listingID = "65b000000000000000000001"
	hostID    = "65a000000000000000000001"
	guestID   = "65a000000000000000000002"
	otherID   = "65a000000000000000000003"
)

type harness struct {
	svc       BookingService
	repo      *fakeBookingRepository
	locks     *fakeLockRepository
	payments  *fakePayments
	publisher *recordingPublisher
}

func newHarness(t *testing.T, withPayments bool) *harness {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{
		Log:                      log,
		PaymentCurrency:          "usd",
		BookingLockTTL:           30 * time.Second,
		BookingLockRetries:       3,
		BookingLockRetryInterval: time.Millisecond,
	}

	h := &harness{
		repo:      newFakeBookingRepository(),
		locks:     newFakeLockRepository(),
		publisher: &recordingPublisher{},
	}

	var provider payment.Provider
	if withPayments {
		h.payments = &fakePayments{}
		provider = h.payments
	}

	listings := &fakeListings{listings: map[string]*model.Listing{
		listingID: {ID: listingID, HostID: hostID, Title: "Cabin", Price: 100},
	}}
	users := &fakeUsers{users: map[string]*model.User{
		guestID: {ID: guestID, Name: "Gina Guest", Email: "gina@example.com"},
	}}

	h.svc = NewBookingService(h.repo, h.locks, listings, users, provider, h.publisher, bookingvalidator.NewBookingValidator(log), cfg)
	return h
}

func (h *harness) book(in, out string) (*model.BookingResult, error) {
	return h.svc.Create(context.Background(), guestID, &model.CreateBookingRequest{
		ListingID: listingID,
		CheckIn:   in,
		CheckOut:  out,
	})
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

// ────────────────────────────────────────────────
// Overlap
// ────────────────────────────────────────────────

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		aIn, aOut  int
		bIn, bOut  int
		wantResult bool
	}{
		{"identical", 1, 3, 1, 3, true},
		{"partial tail", 1, 3, 2, 4, true},
		{"partial head", 2, 4, 1, 3, true},
		{"contained", 1, 10, 3, 5, true},
		{"containing", 3, 5, 1, 10, true},
		{"abutting after", 1, 3, 3, 5, false},
		{"abutting before", 3, 5, 1, 3, false},
		{"disjoint", 1, 2, 5, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(day(tt.aIn), day(tt.aOut), day(tt.bIn), day(tt.bOut))
			if got != tt.wantResult {
				t.Errorf("Overlaps(%d-%d, %d-%d) = %v, want %v", tt.aIn, tt.aOut, tt.bIn, tt.bOut, got, tt.wantResult)
			}
		})
	}
}

func TestConflicting_IgnoresCancelled(t *testing.T) {
	existing := []*model.Booking{
		{ID: "c", CheckIn: day(1), CheckOut: day(5), Status: model.BookingCancelled},
	}
	assert.Nil(t, conflicting(existing, day(2), day(3)))

	existing = append(existing, &model.Booking{ID: "p", CheckIn: day(2), CheckOut: day(4), Status: model.BookingPending})
	got := conflicting(existing, day(2), day(3))
	require.NotNil(t, got)
	assert.Equal(t, "p", got.ID)
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_Scenario(t *testing.T) {
	h := newHarness(t, false)

	first, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, 200.0, first.Booking.TotalPrice)
	assert.Equal(t, 2, first.Booking.Nights)
	assert.Equal(t, model.BookingConfirmed, first.Booking.Status)
	assert.Equal(t, hostID, first.Booking.HostID)
	assert.Empty(t, first.ClientSecret)

	_, err = h.book("2024-01-02", "2024-01-04")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, 1, h.repo.count(), "rejected booking must not be stored")

	third, err := h.book("2024-01-03", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, 200.0, third.Booking.TotalPrice)

	assert.Equal(t, 2, h.repo.count())
	assert.Zero(t, h.locks.held(), "locks must be released")
	assert.Equal(t, []string{model.EventBookingCreated, model.EventBookingCreated}, h.publisher.types())
}

func TestCreate_TotalIsPriceTimesNights(t *testing.T) {
	h := newHarness(t, false)

	res, err := h.book("2024-02-10", "2024-02-17")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Booking.Nights)
	assert.Equal(t, 700.0, res.Booking.TotalPrice)
}

func TestCreate_RejectsBeforeQuerying(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.book("2024-01-03", "2024-01-03")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Zero(t, h.repo.count())
}

func TestCreate_UnknownListing(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.svc.Create(context.Background(), guestID, &model.CreateBookingRequest{
		ListingID: "65b0000000000000000000ff",
		CheckIn:   "2024-01-01",
		CheckOut:  "2024-01-02",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreate_CancelledBookingFreesDates(t *testing.T) {
	h := newHarness(t, true)

	first, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)
	_, err = h.svc.Cancel(context.Background(), guestID, first.Booking.ID)
	require.NoError(t, err)

	_, err = h.book("2024-01-01", "2024-01-03")
	assert.NoError(t, err)
}

func TestCreate_WithPaymentsIsPending(t *testing.T) {
	h := newHarness(t, true)

	res, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)

	assert.Equal(t, model.BookingPending, res.Booking.Status)
	assert.Equal(t, "pi_1", res.Booking.PaymentIntentID)
	assert.Equal(t, "pi_1_secret", res.ClientSecret)
	assert.Equal(t, []int64{20000}, h.payments.amounts)
	assert.Equal(t, map[string]string{"listing_id": listingID, "guest_id": guestID}, h.payments.metadata[0])
}

func TestCreate_PaymentFailureCreatesNothing(t *testing.T) {
	h := newHarness(t, true)
	h.payments.createErr = errors.New("card_declined")

	_, err := h.book("2024-01-01", "2024-01-03")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePaymentFailed))
	assert.Zero(t, h.repo.count())
	assert.Zero(t, h.locks.held())
	assert.Empty(t, h.publisher.types())
}

func TestCreate_ConflictAfterPaymentCancelsIntent(t *testing.T) {
	h := newHarness(t, true)
	h.repo.beforeTx = func() {
		_ = h.repo.Create(context.Background(), &model.Booking{
			ListingID: listingID,
			GuestID:   otherID,
			HostID:    hostID,
			CheckIn:   day(1),
			CheckOut:  day(3),
			Status:    model.BookingConfirmed,
		})
	}

	_, err := h.book("2024-01-02", "2024-01-04")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, []string{"pi_1"}, h.payments.cancelled)
	assert.Equal(t, 1, h.repo.count(), "only the competing booking exists")
	assert.Zero(t, h.locks.held())
	assert.Empty(t, h.publisher.types())
}

func TestCreate_LockLostBeforeInsertIsConflict(t *testing.T) {
	h := newHarness(t, true)
	lockID := model.BookingLockID(listingID)
	h.repo.beforeTx = func() {
		h.locks.mu.Lock()
		defer h.locks.mu.Unlock()
		h.locks.locks[lockID] = &model.BookingLock{
			ID:        lockID,
			Owner:     "reclaimed-by-other",
			ExpiresAt: time.Now().Add(time.Minute),
		}
	}

	_, err := h.book("2024-01-01", "2024-01-03")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, []string{"pi_1"}, h.payments.cancelled)
	assert.Zero(t, h.repo.count())
	assert.Equal(t, "reclaimed-by-other", h.locks.locks[lockID].Owner, "the new holder's lock is kept")
}

func TestCreate_RenewsLockInsideTransaction(t *testing.T) {
	h := newHarness(t, false)
	h.repo.beforeTx = func() {
		assert.Zero(t, h.locks.renewals, "renewal happens inside the transaction")
	}

	_, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, 1, h.locks.renewals)
	assert.Zero(t, h.locks.held())
}

func TestCreate_LockHeldIsConflict(t *testing.T) {
	h := newHarness(t, false)
	h.locks.locks[model.BookingLockID(listingID)] = &model.BookingLock{
		ID:        model.BookingLockID(listingID),
		Owner:     "someone-else",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	_, err := h.book("2024-01-01", "2024-01-03")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Zero(t, h.repo.count())
	assert.Equal(t, 1, h.locks.held(), "a foreign lock must not be released")
}

func TestCreate_ReclaimsExpiredLock(t *testing.T) {
	h := newHarness(t, false)
	h.locks.locks[model.BookingLockID(listingID)] = &model.BookingLock{
		ID:        model.BookingLockID(listingID),
		Owner:     "crashed-process",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.Zero(t, h.locks.held())
}

func TestCreate_ConcurrentSameDatesOneWins(t *testing.T) {
	h := newHarness(t, false)
	svc := h.svc.(*bookingService)
	svc.cfg.BookingLockRetries = 200

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.book("2024-03-01", "2024-03-04")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, h.repo.count())
}

// ────────────────────────────────────────────────
// Cancel / payment settlement
// ────────────────────────────────────────────────

func TestCancel_OnlyFromPending(t *testing.T) {
	h := newHarness(t, true)
	res, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)
	id := res.Booking.ID

	_, err = h.svc.Cancel(context.Background(), otherID, id)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	cancelled, err := h.svc.Cancel(context.Background(), hostID, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
	assert.Equal(t, []string{"pi_1"}, h.payments.cancelled)

	_, err = h.svc.Cancel(context.Background(), guestID, id)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	assert.Equal(t, []string{model.EventBookingCreated, model.EventBookingCancelled}, h.publisher.types())
}

func TestCancel_ConfirmedIsConflict(t *testing.T) {
	h := newHarness(t, false)
	res, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)

	_, err = h.svc.Cancel(context.Background(), guestID, res.Booking.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	h := newHarness(t, true)
	res, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)

	require.NoError(t, h.svc.ConfirmPayment(context.Background(), "pi_1"))
	require.NoError(t, h.svc.ConfirmPayment(context.Background(), "pi_1"))
	require.NoError(t, h.svc.FailPayment(context.Background(), "pi_1"))

	stored, err := h.repo.FindByID(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, stored.Status)
	assert.Equal(t, []string{model.EventBookingCreated, model.EventBookingConfirmed}, h.publisher.types())
}

func TestFailPayment_CancelsPending(t *testing.T) {
	h := newHarness(t, true)
	res, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)

	require.NoError(t, h.svc.FailPayment(context.Background(), "pi_1"))

	stored, err := h.repo.FindByID(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, stored.Status)
}

func TestSettlePayment_UnknownIntentIgnored(t *testing.T) {
	h := newHarness(t, true)

	assert.NoError(t, h.svc.ConfirmPayment(context.Background(), "pi_unknown"))
	assert.NoError(t, h.svc.FailPayment(context.Background(), ""))
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestGetByID_Visibility(t *testing.T) {
	h := newHarness(t, false)
	res, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)

	_, err = h.svc.GetByID(context.Background(), otherID, res.Booking.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	asGuest, err := h.svc.GetByID(context.Background(), guestID, res.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, asGuest.Listing)
	assert.Equal(t, "Cabin", asGuest.Listing.Title)
	assert.Nil(t, asGuest.Guest)

	asHost, err := h.svc.GetByID(context.Background(), hostID, res.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, asHost.Guest)
	assert.Equal(t, "gina@example.com", asHost.Guest.Email)
}

func TestHostBookings_HydratesGuest(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)

	views, err := h.svc.HostBookings(context.Background(), hostID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Gina Guest", views[0].Guest.Name)
	assert.Equal(t, "Cabin", views[0].Listing.Title)

	trips, err := h.svc.MyTrips(context.Background(), guestID)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Nil(t, trips[0].Guest)
}

func TestCheckAvailability(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.book("2024-01-01", "2024-01-03")
	require.NoError(t, err)

	busy, err := h.svc.CheckAvailability(context.Background(), listingID, "2024-01-02", "2024-01-04")
	require.NoError(t, err)
	assert.False(t, busy.Available)

	free, err := h.svc.CheckAvailability(context.Background(), listingID, "2024-01-03", "2024-01-06")
	require.NoError(t, err)
	assert.True(t, free.Available)
	assert.Equal(t, 3, free.Nights)
	assert.Equal(t, 300.0, free.TotalPrice)

	_, err = h.svc.CheckAvailability(context.Background(), listingID, "2024-01-06", "2024-01-03")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
