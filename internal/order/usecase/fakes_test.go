package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tablepos/internal/domain"
	"tablepos/internal/dto"
	apperrors "tablepos/internal/errors"
	"tablepos/internal/infrastructure/mysql"
	"tablepos/internal/order/service"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

var (
	deadlockErr  = &driver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	duplicateErr = &driver.MySQLError{Number: 1062, Message: "Duplicate entry"}
)

// memState is the committed content of the in-memory store.
type memState struct {
	tickets  map[uint]domain.Ticket
	orders   map[uint]domain.Order
	payments []domain.Payment
	nextID   uint
}

func (s *memState) clone() *memState {
	c := &memState{
		tickets:  make(map[uint]domain.Ticket, len(s.tickets)),
		orders:   make(map[uint]domain.Order, len(s.orders)),
		payments: append([]domain.Payment(nil), s.payments...),
		nextID:   s.nextID,
	}
	for id, t := range s.tickets {
		t.Items = append([]domain.LineItem(nil), t.Items...)
		c.tickets[id] = t
	}
	for id, o := range s.orders {
		o.Items = append([]domain.LineItem(nil), o.Items...)
		c.orders[id] = o
	}
	return c
}

type memStore struct {
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		tickets: map[uint]domain.Ticket{},
		orders:  map[uint]domain.Order{},
	}}
}

func (s *memStore) id() uint {
	s.state.nextID++
	return s.state.nextID
}

func (s *memStore) snapshot() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *memStore) restore(st *memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *memStore) seedTicket(t domain.Ticket) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.state.tickets[t.ID] = t
	return t.ID
}

func (s *memStore) seedOrder(o domain.Order) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	s.state.orders[o.ID] = o
	return o.ID
}

func (s *memStore) ticket(id uint) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.tickets[id]
}

func (s *memStore) order(id uint) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.orders[id]
}

func (s *memStore) allOrders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0, len(s.state.orders))
	for _, o := range s.state.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.tickets)
}

func (s *memStore) paymentsFor(orderID uint) []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Payment
	for _, p := range s.state.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out
}

func (s *memStore) paymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.payments)
}

// fakeTxManager serializes transactions, which is what the row locks
// guarantee for one ticket, and restores the snapshot on rollback.
type fakeTxManager struct {
	store     *memStore
	lock      sync.Mutex
	begins    atomic.Int32
	commits   atomic.Int32
	rollbacks atomic.Int32
	beginErr  error
}

func (m *fakeTxManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (mysql.Tx, error) {
	m.begins.Add(1)
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.lock.Lock()
	return &fakeTx{m: m, snap: m.store.snapshot()}, nil
}

type fakeTx struct {
	m    *fakeTxManager
	snap *memState
	done bool
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, errors.New("fakeTx does not run SQL")
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, errors.New("fakeTx does not run SQL")
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.m.commits.Add(1)
	t.m.lock.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.m.store.restore(t.snap)
	t.m.rollbacks.Add(1)
	t.m.lock.Unlock()
	return nil
}

type fakeTickets struct {
	s *memStore
}

func (f *fakeTickets) Insert(ctx context.Context, q mysql.DBTX, ticket *domain.Ticket) (uint, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.state.tickets {
		if t.RestaurantID == ticket.RestaurantID && t.Number == ticket.Number {
			return 0, duplicateErr
		}
	}
	t := *ticket
	t.ID = f.s.id()
	t.Items = domain.CopyLines(ticket.Items)
	f.s.state.tickets[t.ID] = t
	return t.ID, nil
}

func (f *fakeTickets) FindByID(ctx context.Context, restaurantID int, id uint) (*domain.Ticket, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.state.tickets[id]
	if !ok || t.RestaurantID != restaurantID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("ticket with id %d not found", id))
	}
	t.Items = append([]domain.LineItem(nil), t.Items...)
	return &t, nil
}

func (f *fakeTickets) FindByIDForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, id uint) (*domain.Ticket, error) {
	return f.FindByID(ctx, restaurantID, id)
}

func (f *fakeTickets) UpdateStatus(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.TicketStatus, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.state.tickets[id]
	if !ok || t.RestaurantID != restaurantID {
		return apperrors.NewNotFoundError(fmt.Sprintf("ticket with id %d not found", id))
	}
	t.Status = status
	t.UpdatedAt = at
	f.s.state.tickets[id] = t
	return nil
}

func (f *fakeTickets) NumberExists(ctx context.Context, q mysql.DBTX, restaurantID int, number string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.state.tickets {
		if t.RestaurantID == restaurantID && t.Number == number {
			return true, nil
		}
	}
	return false, nil
}

type fakeOrders struct {
	s *memStore

	mu         sync.Mutex
	insertErrs []error
	inserts    int
}

// failInserts makes the next Insert calls return errs in order.
func (f *fakeOrders) failInserts(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertErrs = append(f.insertErrs, errs...)
}

func (f *fakeOrders) Insert(ctx context.Context, q mysql.DBTX, order *domain.Order) (uint, error) {
	f.mu.Lock()
	f.inserts++
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		f.mu.Unlock()
		return 0, err
	}
	f.mu.Unlock()

	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, o := range f.s.state.orders {
		if o.RestaurantID != order.RestaurantID {
			continue
		}
		if o.Number == order.Number {
			return 0, duplicateErr
		}
		if o.SourceTicketID != nil && order.SourceTicketID != nil && *o.SourceTicketID == *order.SourceTicketID {
			return 0, duplicateErr
		}
	}
	o := *order
	o.ID = f.s.id()
	o.Items = domain.CopyLines(order.Items)
	o.Payments = nil
	f.s.state.orders[o.ID] = o
	return o.ID, nil
}

func (f *fakeOrders) Overwrite(ctx context.Context, q mysql.DBTX, order *domain.Order) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	existing, ok := f.s.state.orders[order.ID]
	if !ok || existing.RestaurantID != order.RestaurantID {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", order.ID))
	}
	o := *order
	o.Number = existing.Number
	o.CreatedAt = existing.CreatedAt
	o.SourceTicketID = existing.SourceTicketID
	o.Items = domain.CopyLines(order.Items)
	f.s.state.orders[o.ID] = o
	return nil
}

func (f *fakeOrders) FindByID(ctx context.Context, restaurantID int, id uint) (*domain.Order, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.state.orders[id]
	if !ok || o.RestaurantID != restaurantID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	o.Items = append([]domain.LineItem(nil), o.Items...)
	return &o, nil
}

func (f *fakeOrders) FindByIDForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, id uint) (*domain.Order, error) {
	return f.FindByID(ctx, restaurantID, id)
}

func (f *fakeOrders) FindBySourceTicket(ctx context.Context, q mysql.DBTX, restaurantID int, ticketID uint) (*domain.Order, error) {
	for _, o := range f.s.allOrders() {
		if o.RestaurantID == restaurantID && o.SourceTicketID != nil && *o.SourceTicketID == ticketID {
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) FindLegacyCandidates(ctx context.Context, q mysql.DBTX, c domain.MatchCriteria) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.s.allOrders() {
		if c.Matches(&o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) FindHeldForUpdate(ctx context.Context, q mysql.DBTX, restaurantID int, tableID *int) (*domain.Order, error) {
	for _, o := range f.s.allOrders() {
		if o.RestaurantID != restaurantID || !o.IsHeld() {
			continue
		}
		if (o.TableID == nil) != (tableID == nil) {
			continue
		}
		if o.TableID != nil && *o.TableID != *tableID {
			continue
		}
		return &o, nil
	}
	return nil, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.OrderStatus, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.state.orders[id]
	if !ok || o.RestaurantID != restaurantID {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	o.Status = status
	o.UpdatedAt = at
	f.s.state.orders[id] = o
	return nil
}

func (f *fakeOrders) UpdatePayment(ctx context.Context, q mysql.DBTX, restaurantID int, id uint, status domain.PaymentStatus, method string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.state.orders[id]
	if !ok || o.RestaurantID != restaurantID {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	o.PaymentStatus = status
	o.PaymentMethod = method
	o.UpdatedAt = at
	f.s.state.orders[id] = o
	return nil
}

func (f *fakeOrders) NumberExists(ctx context.Context, q mysql.DBTX, restaurantID int, number string) (bool, error) {
	for _, o := range f.s.allOrders() {
		if o.RestaurantID == restaurantID && o.Number == number {
			return true, nil
		}
	}
	return false, nil
}

type fakePayments struct {
	s *memStore
}

func (f *fakePayments) Insert(ctx context.Context, q mysql.DBTX, p domain.Payment) (uint, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p.ID = f.s.id()
	f.s.state.payments = append(f.s.state.payments, p)
	return p.ID, nil
}

func (f *fakePayments) SumSuccessful(ctx context.Context, q mysql.DBTX, restaurantID int, orderID uint) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range f.s.paymentsFor(orderID) {
		if p.RestaurantID == restaurantID && p.Status == domain.PaymentRecordSuccess {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (f *fakePayments) FindByOrderID(ctx context.Context, restaurantID int, orderID uint) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range f.s.paymentsFor(orderID) {
		if p.RestaurantID == restaurantID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	items map[int]domain.MenuItem
	calls atomic.Int32
}

func (f *fakeCatalog) LookupItems(ctx context.Context, restaurantID int, ids []int) (map[int]domain.MenuItem, error) {
	f.calls.Add(1)
	out := make(map[int]domain.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := f.items[id]; ok && item.RestaurantID == restaurantID {
			out[id] = item
		}
	}
	return out, nil
}

type fakeTables struct {
	tables map[int]int // tableID -> restaurantID
}

func (f *fakeTables) VerifyTable(ctx context.Context, restaurantID int, tableID int) error {
	if rid, ok := f.tables[tableID]; ok && rid == restaurantID {
		return nil
	}
	return apperrors.NewNotFoundError(fmt.Sprintf("table %d not found", tableID))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.KitchenEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event dto.KitchenEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

const (
	restaurantID      = 1
	otherRestaurantID = 2
	teaID             = 10
	samosaID          = 11
	retiredID         = 12
	tableThree        = 3
	tableFive         = 5
)

type harness struct {
	uc      *LifecycleUseCase
	store   *memStore
	tx      *fakeTxManager
	orders  *fakeOrders
	catalog *fakeCatalog
	events  *recordingPublisher
	actor   domain.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	txm := &fakeTxManager{store: store}
	tickets := &fakeTickets{s: store}
	orders := &fakeOrders{s: store}
	payments := &fakePayments{s: store}
	catalog := &fakeCatalog{items: map[int]domain.MenuItem{
		teaID:     {ID: teaID, RestaurantID: restaurantID, Name: "Tea", Price: decimal.NewFromInt(40), IsActive: true},
		samosaID:  {ID: samosaID, RestaurantID: restaurantID, Name: "Samosa", Price: decimal.RequireFromString("25.50"), IsActive: true},
		retiredID: {ID: retiredID, RestaurantID: restaurantID, Name: "Old Special", Price: decimal.NewFromInt(99), IsActive: false},
	}}
	tables := &fakeTables{tables: map[int]int{tableThree: restaurantID, tableFive: restaurantID, 9: otherRestaurantID}}
	events := &recordingPublisher{}
	logger := zap.NewNop()
	now := func() time.Time { return fixedNow }

	uc := NewLifecycleUseCase(
		txm,
		tickets,
		orders,
		payments,
		catalog,
		tables,
		service.NewNumberingServiceWithSource(100, now, rand.IntN, logger),
		service.NewReconciliationMatcher(orders, 15*time.Minute, domain.MoneyTolerance, logger),
		service.NewPaymentRecorder(payments, now),
		events,
		logger,
		LifecycleOptions{MaxRetryAttempts: 3, TxTimeout: 5 * time.Second, DefaultPaymentMethod: domain.PaymentMethodCash, Now: now},
	)

	return &harness{
		uc:      uc,
		store:   store,
		tx:      txm,
		orders:  orders,
		catalog: catalog,
		events:  events,
		actor:   domain.Actor{RestaurantID: restaurantID, UserID: "cashier-1", Role: "cashier"},
	}
}

func cartItem(id int, name string, price string, qty int) dto.CartItem {
	p := decimal.RequireFromString(price)
	return dto.CartItem{ItemID: id, Name: name, Price: &p, Quantity: &qty}
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// teaTicket creates a dine-in ticket for two teas at table three.
func (h *harness) teaTicket(t *testing.T) uint {
	t.Helper()
	res, err := h.uc.CreateTicketOrOrder(context.Background(), h.actor, dto.CreateTicketOrOrderRequest{
		Items:     []dto.CartItem{cartItem(teaID, "Tea", "40", 2)},
		TableID:   intPtr(tableThree),
		OrderType: string(domain.OrderTypeDineIn),
	})
	if err != nil {
		t.Fatalf("creating tea ticket: %v", err)
	}
	return *res.TicketID
}
