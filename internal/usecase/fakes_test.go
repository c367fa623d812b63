package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"renterra/internal/domain/entity"
	"renterra/pkg/errors"
)

// In-memory repositories with the same contracts as the Firestore adapters:
// UpdateTx re-reads under lock, applies fn to a copy, and only writes the
// copy back when fn succeeds. The dispute repo shares the rental map so
// CreateWithFreeze can flip the freeze flag atomically, like the production
// transaction does.

type memStore struct {
	mu       sync.Mutex
	rentals  map[string]*entity.Rental
	disputes map[string]*entity.Dispute
	refunds  map[string]*entity.Refund
	users    map[string]*entity.User
	items    map[string]*entity.Item
	logs     []*entity.RentalLog
}

func newMemStore() *memStore {
	return &memStore{
		rentals:  make(map[string]*entity.Rental),
		disputes: make(map[string]*entity.Dispute),
		refunds:  make(map[string]*entity.Refund),
		users:    make(map[string]*entity.User),
		items:    make(map[string]*entity.Item),
	}
}

func cloneRental(r *entity.Rental) *entity.Rental {
	cp := *r
	return &cp
}

func cloneDispute(d *entity.Dispute) *entity.Dispute {
	cp := *d
	cp.Activities = append([]entity.DisputeActivity(nil), d.Activities...)
	cp.Proposals = append([]entity.ResolutionProposal(nil), d.Proposals...)
	return &cp
}

type memRentalRepo struct {
	store *memStore
}

func (m *memRentalRepo) Create(ctx context.Context, rental *entity.Rental) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if rental.ID == "" {
		rental.ID = uuid.New().String()
	}
	now := time.Now()
	rental.CreatedAt = now
	rental.UpdatedAt = now
	m.store.rentals[rental.ID] = cloneRental(rental)
	return nil
}

func (m *memRentalRepo) GetByID(ctx context.Context, id string) (*entity.Rental, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	rental, ok := m.store.rentals[id]
	if !ok {
		return nil, errors.NotFound("Rental", nil)
	}
	return cloneRental(rental), nil
}

func (m *memRentalRepo) UpdateTx(ctx context.Context, id string, fn func(*entity.Rental) error) (*entity.Rental, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	rental, ok := m.store.rentals[id]
	if !ok {
		return nil, errors.NotFound("Rental", nil)
	}

	working := cloneRental(rental)
	if err := fn(working); err != nil {
		return nil, err
	}

	working.UpdatedAt = time.Now()
	m.store.rentals[id] = cloneRental(working)
	return working, nil
}

func (m *memRentalRepo) ListByUserID(ctx context.Context, userID, role string, status entity.RentalStatus, limit, offset int) ([]*entity.Rental, int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var out []*entity.Rental
	for _, r := range m.store.rentals {
		if role == "owner" && r.OwnerID != userID {
			continue
		}
		if role == "renter" && r.RenterID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, cloneRental(r))
	}
	return out, int64(len(out)), nil
}

func (m *memRentalRepo) ListPayoutCandidates(ctx context.Context, before time.Time, limit int) ([]*entity.Rental, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var out []*entity.Rental
	for _, r := range m.store.rentals {
		if r.Status != entity.RentalCompletedPendingPayout || r.PayoutFrozen {
			continue
		}
		if r.PayoutEligibleAt == nil || r.PayoutEligibleAt.After(before) {
			continue
		}
		out = append(out, cloneRental(r))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memRentalRepo) CreateLog(ctx context.Context, log *entity.RentalLog) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.CreatedAt = time.Now()
	m.store.logs = append(m.store.logs, log)
	return nil
}

func (m *memRentalRepo) ListLogsByRentalID(ctx context.Context, rentalID string) ([]*entity.RentalLog, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var out []*entity.RentalLog
	for _, l := range m.store.logs {
		if l.RentalID == rentalID {
			out = append(out, l)
		}
	}
	return out, nil
}

type memDisputeRepo struct {
	store *memStore
}

func (m *memDisputeRepo) CreateWithFreeze(ctx context.Context, dispute *entity.Dispute) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	rental, ok := m.store.rentals[dispute.RentalID]
	if !ok {
		return false, errors.NotFound("Rental", nil)
	}

	if dispute.ID == "" {
		dispute.ID = uuid.New().String()
	}
	now := time.Now()
	dispute.CreatedAt = now
	dispute.UpdatedAt = now

	frozen := false
	if rental.Status == entity.RentalCompletedPendingPayout && !rental.PayoutFrozen {
		rental.PayoutFrozen = true
		rental.UpdatedAt = now
		frozen = true
	}

	m.store.disputes[dispute.ID] = cloneDispute(dispute)
	return frozen, nil
}

func (m *memDisputeRepo) GetByID(ctx context.Context, id string) (*entity.Dispute, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	dispute, ok := m.store.disputes[id]
	if !ok {
		return nil, errors.NotFound("Dispute", nil)
	}
	return cloneDispute(dispute), nil
}

func (m *memDisputeRepo) UpdateTx(ctx context.Context, id string, fn func(*entity.Dispute) error) (*entity.Dispute, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	dispute, ok := m.store.disputes[id]
	if !ok {
		return nil, errors.NotFound("Dispute", nil)
	}

	working := cloneDispute(dispute)
	if err := fn(working); err != nil {
		return nil, err
	}

	working.UpdatedAt = time.Now()
	m.store.disputes[id] = cloneDispute(working)
	return working, nil
}

func (m *memDisputeRepo) ListByRentalID(ctx context.Context, rentalID string) ([]*entity.Dispute, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var out []*entity.Dispute
	for _, d := range m.store.disputes {
		if d.RentalID == rentalID {
			out = append(out, cloneDispute(d))
		}
	}
	return out, nil
}

func (m *memDisputeRepo) ListByUserID(ctx context.Context, userID string, status entity.DisputeStatus, limit, offset int) ([]*entity.Dispute, int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var out []*entity.Dispute
	for _, d := range m.store.disputes {
		if d.ReporterID != userID && d.AccusedID != userID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, cloneDispute(d))
	}
	return out, int64(len(out)), nil
}

type memRefundRepo struct {
	store *memStore
}

func (m *memRefundRepo) Create(ctx context.Context, refund *entity.Refund) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if refund.ID == "" {
		refund.ID = uuid.New().String()
	}
	now := time.Now()
	refund.CreatedAt = now
	refund.UpdatedAt = now
	cp := *refund
	m.store.refunds[refund.ID] = &cp
	return nil
}

func (m *memRefundRepo) GetByID(ctx context.Context, id string) (*entity.Refund, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	refund, ok := m.store.refunds[id]
	if !ok {
		return nil, errors.NotFound("Refund", nil)
	}
	cp := *refund
	return &cp, nil
}

func (m *memRefundRepo) Update(ctx context.Context, refund *entity.Refund) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	existing, ok := m.store.refunds[refund.ID]
	if !ok {
		return errors.NotFound("Refund", nil)
	}
	if existing.Status == entity.RefundCompleted {
		return errors.Conflict("Refund is already completed")
	}
	refund.UpdatedAt = time.Now()
	cp := *refund
	m.store.refunds[refund.ID] = &cp
	return nil
}

func (m *memRefundRepo) ListByRentalID(ctx context.Context, rentalID string) ([]*entity.Refund, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var out []*entity.Refund
	for _, r := range m.store.refunds {
		if r.RentalID == rentalID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memUserRepo struct {
	store *memStore
}

func (m *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	cp := *user
	m.store.users[user.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	user, ok := m.store.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *user
	return &cp, nil
}

func (m *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	cp := *user
	m.store.users[user.ID] = &cp
	return nil
}

type memItemRepo struct {
	store *memStore
}

func (m *memItemRepo) Create(ctx context.Context, item *entity.Item) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	cp := *item
	m.store.items[item.ID] = &cp
	return nil
}

func (m *memItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	item, ok := m.store.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	cp := *item
	return &cp, nil
}

func (m *memItemRepo) Update(ctx context.Context, item *entity.Item) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.items[item.ID]; !ok {
		return errors.NotFound("Item", nil)
	}
	cp := *item
	m.store.items[item.ID] = &cp
	return nil
}

func (m *memItemRepo) SoftDelete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	item, ok := m.store.items[id]
	if !ok {
		return errors.NotFound("Item", nil)
	}
	now := time.Now()
	item.DeletedAt = &now
	item.Status = "unlisted"
	return nil
}

func (m *memItemRepo) ListByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Item, int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	var out []*entity.Item
	for _, i := range m.store.items {
		if i.OwnerID == ownerID && i.DeletedAt == nil {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

// recordingGateway counts calls and can be told to fail, so tests can assert
// the transfer-before-stamp ordering and the idempotency of settlement.
type recordingGateway struct {
	mu sync.Mutex

	chargeCalls   int
	transferCalls int
	refundCalls   int

	transfers map[string]string

	failCharge   bool
	failTransfer bool
	failRefund   bool

	// Invoked while the processor call is in flight, before it returns.
	// Lets tests race a state change against a charge or transfer.
	onCharge   func()
	onTransfer func()
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{transfers: make(map[string]string)}
}

func (g *recordingGateway) Charge(ctx context.Context, renterID string, amount float64, rentalID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.chargeCalls++
	if g.failCharge {
		return "", fmt.Errorf("card declined")
	}
	if g.onCharge != nil {
		g.onCharge()
	}
	return "pay-" + rentalID, nil
}

func (g *recordingGateway) Transfer(ctx context.Context, ownerID string, amount float64, rentalID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.transferCalls++
	if g.failTransfer {
		return "", fmt.Errorf("bank unavailable")
	}
	if g.onTransfer != nil {
		g.onTransfer()
	}
	if ref, ok := g.transfers[rentalID]; ok {
		return ref, nil
	}
	ref := "trf-" + rentalID
	g.transfers[rentalID] = ref
	return ref, nil
}

func (g *recordingGateway) Refund(ctx context.Context, paymentRef string, amount float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.refundCalls++
	if g.failRefund {
		return "", fmt.Errorf("refund rejected")
	}
	return "rfd-" + paymentRef, nil
}

// fixture wires the usecases over one shared store with a controllable clock.
type fixture struct {
	store   *memStore
	gateway *recordingGateway

	rentalUC     *RentalUseCase
	settlementUC *SettlementUseCase
	disputeUC    *DisputeUseCase

	clock time.Time
}

func newFixture() *fixture {
	store := newMemStore()
	gateway := newRecordingGateway()

	rentalRepo := &memRentalRepo{store: store}
	disputeRepo := &memDisputeRepo{store: store}
	refundRepo := &memRefundRepo{store: store}
	userRepo := &memUserRepo{store: store}
	itemRepo := &memItemRepo{store: store}

	f := &fixture{
		store:   store,
		gateway: gateway,
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	f.rentalUC = NewRentalUseCase(rentalRepo, itemRepo, userRepo, refundRepo, gateway, NewRefundCalculator(24), nil, 24, 48)
	f.rentalUC.now = f.now

	f.settlementUC = NewSettlementUseCase(rentalRepo, gateway, nil)
	f.settlementUC.now = f.now

	f.disputeUC = NewDisputeUseCase(disputeRepo, rentalRepo, refundRepo, userRepo, gateway, nil)
	f.disputeUC.now = f.now

	return f
}

func (f *fixture) now() time.Time {
	return f.clock
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) addUser(id, role string) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.users[id] = &entity.User{ID: id, Username: id, Role: role, Status: "active"}
}

func (f *fixture) addItem(id, ownerID string, dailyRate float64) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.items[id] = &entity.Item{
		ID:        id,
		OwnerID:   ownerID,
		Title:     "Cordless drill",
		DailyRate: dailyRate,
		Currency:  "USD",
		Status:    "active",
	}
}

func (f *fixture) addRental(r *entity.Rental) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	f.store.rentals[r.ID] = cloneRental(r)
}

func (f *fixture) rental(id string) *entity.Rental {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return cloneRental(f.store.rentals[id])
}

func (f *fixture) refundsFor(rentalID string) []*entity.Refund {
	out, _ := (&memRefundRepo{store: f.store}).ListByRentalID(context.Background(), rentalID)
	return out
}
