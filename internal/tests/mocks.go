package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/gateway"
	internalRedis "stayhub/internal/redis"
	"stayhub/internal/repository"
	"stayhub/internal/service"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount           int32
	UpdateStatusFromCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// GetPayment returns the stored payment with the given id, or nil.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil
	}
	copy := *p
	return &copy
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.PaymentStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusFromCallCount, 1)
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	MarkPaidCallCount int32

	// Error injection
	UpdateError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

// GetBooking returns the stored booking with the given id, or nil.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil
	}
	copy := *b
	return &copy
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (m *MockBookingRepository) GetByGuestID(ctx context.Context, guestID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.GuestID == guestID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.bookings[booking.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != booking.Version {
		return repository.ErrVersionConflict
	}
	copy := *booking
	copy.Version++
	m.bookings[booking.ID] = &copy
	booking.Version++
	return nil
}

func (m *MockBookingRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	atomic.AddInt32(&m.MarkPaidCallCount, 1)
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.PaymentStatus != domain.BookingPaymentPending {
		return false, nil
	}
	b.PaymentStatus = domain.BookingPaymentPaid
	b.BookingStatus = domain.BookingStatusConfirmed
	b.Version++
	return true, nil
}

func (m *MockBookingRepository) SetPaymentIntentID(ctx context.Context, id, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentIntentID = intentID
	b.Version++
	return nil
}

// ──────────────────────────────────────────────
// MOCK LISTING REPOSITORY
// ──────────────────────────────────────────────

// MockListingRepository is a mock implementation of ListingRepository.
type MockListingRepository struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
}

// NewMockListingRepository creates a new mock listing repository.
func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{
		listings: make(map[string]*domain.Listing),
	}
}

// AddListing adds a listing to the mock repository.
func (m *MockListingRepository) AddListing(listing *domain.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listing.ID] = listing
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *listing
	m.listings[listing.ID] = &copy
	return nil
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *l
	return &copy, nil
}

func (m *MockListingRepository) GetAll(ctx context.Context) ([]*domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Listing
	for _, l := range m.listings {
		copy := *l
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner runs transactional units directly against the mock
// repositories. Rollback is not simulated; tests inject errors on the
// repositories instead.
type MockTxRunner struct {
	Payments *MockPaymentRepository
	Bookings *MockBookingRepository
}

func (m *MockTxRunner) WithinTx(ctx context.Context, fn func(payments repository.PaymentRepository, bookings repository.BookingRepository) error) error {
	return fn(m.Payments, m.Bookings)
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// MockNotifier records notifications handed to the sink.
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []service.CreateNotification

	// Error injection
	CreateError error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Create(ctx context.Context, n service.CreateNotification) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
	return nil
}

// Count returns the number of recorded notifications.
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications)
}

// ForUser returns the notifications recorded for a user.
func (m *MockNotifier) ForUser(userID string) []service.CreateNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []service.CreateNotification
	for _, n := range m.Notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK GATEWAY CLIENT
// ──────────────────────────────────────────────

// MockGatewayClient is a mock implementation of gateway.Client.
type MockGatewayClient struct {
	mu      sync.Mutex
	intents map[string]*gateway.Intent
	nextID  int

	// Counters for verification
	CreateCallCount int32
	GetCallCount    int32
	CancelCallCount int32

	// Error injection
	CreateError error
	GetError    error
	CancelError error
}

// NewMockGatewayClient creates a new mock gateway client.
func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{
		intents: make(map[string]*gateway.Intent),
	}
}

func (m *MockGatewayClient) CreateIntent(ctx context.Context, params gateway.CreateIntentParams) (*gateway.Intent, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	intent := &gateway.Intent{
		ID:           fmt.Sprintf("pi_%d", m.nextID),
		ClientSecret: fmt.Sprintf("pi_%d_secret", m.nextID),
		Amount:       params.Amount,
		Currency:     params.Currency,
		Status:       "requires_payment_method",
	}
	m.intents[intent.ID] = intent
	return intent, nil
}

func (m *MockGatewayClient) GetIntent(ctx context.Context, id string) (*gateway.Intent, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok {
		return nil, &gateway.Error{Code: gateway.ErrCodeInvalidRequest, Message: "no such payment_intent: " + id}
	}
	copy := *intent
	return &copy, nil
}

func (m *MockGatewayClient) CancelIntent(ctx context.Context, id string) error {
	atomic.AddInt32(&m.CancelCallCount, 1)
	if m.CancelError != nil {
		return m.CancelError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok {
		return &gateway.Error{Code: gateway.ErrCodeInvalidRequest, Message: "no such payment_intent: " + id}
	}
	intent.Status = "canceled"
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the booking lock.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[bookingID] {
		return false, nil
	}
	m.locks[bookingID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseBookingLock(ctx context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, bookingID)
	return nil
}

// Held reports whether the lock is currently held for the booking.
func (m *MockLockStore) Held(bookingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[bookingID]
}

// Hold marks the lock as held, simulating a concurrent owner.
func (m *MockLockStore) Hold(bookingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[bookingID] = true
}

// ──────────────────────────────────────────────
// MOCK EVENT STORE
// ──────────────────────────────────────────────

// MockEventStore is an in-memory processed-webhook-event store.
type MockEventStore struct {
	mu   sync.Mutex
	seen map[string]bool

	// Error injection
	MarkError error
}

// NewMockEventStore creates a new mock event store.
func NewMockEventStore() *MockEventStore {
	return &MockEventStore{seen: make(map[string]bool)}
}

func (m *MockEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	if m.MarkError != nil {
		return false, m.MarkError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

// ──────────────────────────────────────────────
// MOCK LISTING CACHE
// ──────────────────────────────────────────────

// MockListingCache is an in-memory listing cache.
type MockListingCache struct {
	mu      sync.Mutex
	entries map[string]*internalRedis.CachedListing

	GetCallCount int32
	SetCallCount int32

	// Error injection
	GetError error
	SetError error
}

// NewMockListingCache creates a new mock listing cache.
func NewMockListingCache() *MockListingCache {
	return &MockListingCache{entries: make(map[string]*internalRedis.CachedListing)}
}

func (m *MockListingCache) GetListing(ctx context.Context, listingID string) (*internalRedis.CachedListing, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[listingID]
	if !ok {
		return nil, nil
	}
	copy := *entry
	return &copy, nil
}

func (m *MockListingCache) SetListing(ctx context.Context, listing *internalRedis.CachedListing) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *listing
	m.entries[listing.ID] = &copy
	return nil
}

func (m *MockListingCache) InvalidateListing(ctx context.Context, listingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, listingID)
	return nil
}
