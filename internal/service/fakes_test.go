package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// memStore is an in-memory OrderRepository + MessageRepository for unit tests.
// Append is all-or-nothing like the Postgres transaction.
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	orders   map[string]*model.Order
	messages []*model.Message
	names    map[string]string
	nextID   int

	findErr   error
	appendErr error
	markErr   error
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*model.Order), names: make(map[string]string)}
}

func (s *memStore) addOrder(id, authorID string, at time.Time) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &model.Order{ID: id, AuthorID: authorID, Status: model.OrderStatusPending, CreatedAt: at, LastActivityAt: at}
	s.orders[id] = o
	return o
}

func (s *memStore) order(id string) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.orders[id]
}

func (s *memStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *memStore) Create(ctx context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = fmt.Sprintf("order-%d", s.nextID)
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *memStore) FindByID(ctx context.Context, id string) (*model.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (s *memStore) ListAll(ctx context.Context, reader model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error) {
	return s.list(reader, "", opts), nil
}

func (s *memStore) ListByAuthor(ctx context.Context, authorID string, reader model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error) {
	return s.list(reader, authorID, opts), nil
}

func (s *memStore) list(reader model.Actor, authorID string, opts model.OrderListOptions) []*model.OrderSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.OrderSummary
	for _, o := range s.orders {
		if authorID != "" && o.AuthorID != authorID {
			continue
		}
		sum := &model.OrderSummary{Order: *o, AuthorName: s.names[o.AuthorID]}
		for _, m := range s.messages {
			if m.OrderID == o.ID && m.UnreadFor(reader) {
				sum.UnreadCount++
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	if opts.Offset >= len(out) {
		return nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out
}

func (s *memStore) Append(ctx context.Context, msg *model.Message) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[msg.OrderID]
	if !ok {
		return repository.ErrNotFound
	}
	s.nextID++
	msg.ID = fmt.Sprintf("msg-%d", s.nextID)
	cp := *msg
	s.messages = append(s.messages, &cp)
	if msg.CreatedAt.After(o.LastActivityAt) {
		o.LastActivityAt = msg.CreatedAt
	}
	return nil
}

func (s *memStore) ListByOrder(ctx context.Context, orderID string) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Message
	for _, m := range s.messages {
		if m.OrderID == orderID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) MarkRead(ctx context.Context, orderID, readerID string, role model.Role) (int64, error) {
	if s.markErr != nil {
		return 0, s.markErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reader := model.Actor{ID: readerID, Role: role}
	var n int64
	for _, m := range s.messages {
		if m.OrderID != orderID || !m.UnreadFor(reader) {
			continue
		}
		if role == model.RoleStaff {
			m.IsReadByStaff = true
		} else {
			m.IsReadByCustomer = true
		}
		n++
	}
	return n, nil
}

func (s *memStore) CountUnread(ctx context.Context, orderID, readerID string, role model.Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reader := model.Actor{ID: readerID, Role: role}
	n := 0
	for _, m := range s.messages {
		if m.OrderID == orderID && m.UnreadFor(reader) {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// memLedger is an in-memory SubmissionLedger.
// ---------------------------------------------------------------------------

type memLedger struct {
	mu      sync.Mutex
	entries []model.ContactSubmission
	err     error
}

func (l *memLedger) ExistsSince(ctx context.Context, origin string, since time.Time) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.OriginAddress == origin && !e.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (l *memLedger) Record(ctx context.Context, origin string, at time.Time) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, model.ContactSubmission{OriginAddress: origin, CreatedAt: at})
	return nil
}

// ---------------------------------------------------------------------------
// mockContactRepository and mockUserRepository are func-field stubs.
// ---------------------------------------------------------------------------

type mockContactRepository struct {
	saveFunc     func(ctx context.Context, msg *model.ContactMessage) error
	listFunc     func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	markReadFunc func(ctx context.Context, id string) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, msg)
	}
	msg.ID = "contact-1"
	return nil
}

func (m *mockContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockContactRepository) MarkRead(ctx context.Context, id string) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id)
	}
	return nil
}

func (m *mockContactRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockUserRepository struct {
	users map[string]*model.User
	err   error
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

var errDB = errors.New("db connection lost")

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
