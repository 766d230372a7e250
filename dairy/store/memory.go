// Package store provides the in-memory Store implementation used by tests
// and development. It honors the same snapshot fan-out contract as the
// SQLite store: every mutation broadcasts the whole changed collection to
// all subscribers.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mahalaxmi/dairybook/dairy"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	customers map[string]dairy.Customer
	logs      dairy.LogBook
	payments  map[string]dairy.Payment

	nextSub      int
	customerSubs map[int]func([]dairy.Customer)
	logSubs      map[int]func(dairy.LogBook)
	paymentSubs  map[int]func([]dairy.Payment)
}

func NewMemory() *Memory {
	return &Memory{
		customers:    make(map[string]dairy.Customer),
		logs:         dairy.LogBook{},
		payments:     make(map[string]dairy.Payment),
		customerSubs: make(map[int]func([]dairy.Customer)),
		logSubs:      make(map[int]func(dairy.LogBook)),
		paymentSubs:  make(map[int]func([]dairy.Payment)),
	}
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (m *Memory) PutCustomer(_ context.Context, c dairy.Customer) error {
	m.mu.Lock()
	m.customers[c.ID] = c
	snap, subs := m.customerSnapshotLocked()
	m.mu.Unlock()
	notifyCustomers(snap, subs)
	return nil
}

func (m *Memory) MergeCustomer(_ context.Context, id string, patch dairy.CustomerPatch) error {
	m.mu.Lock()
	existing, ok := m.customers[id]
	if !ok {
		m.mu.Unlock()
		return &dairy.NotFoundError{Kind: "customer", ID: id}
	}
	m.customers[id] = existing.Apply(patch)
	snap, subs := m.customerSnapshotLocked()
	m.mu.Unlock()
	notifyCustomers(snap, subs)
	return nil
}

func (m *Memory) DeleteCustomer(_ context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.customers[id]; !ok {
		m.mu.Unlock()
		return &dairy.NotFoundError{Kind: "customer", ID: id}
	}
	delete(m.customers, id)
	snap, subs := m.customerSnapshotLocked()
	m.mu.Unlock()
	notifyCustomers(snap, subs)
	return nil
}

func (m *Memory) Customers(_ context.Context) ([]dairy.Customer, error) {
	m.mu.RLock()
	snap, _ := m.customerSnapshotLocked()
	m.mu.RUnlock()
	return snap, nil
}

// customerSnapshotLocked builds the id-ordered snapshot the original store
// delivered (customers collection ordered by id).
func (m *Memory) customerSnapshotLocked() ([]dairy.Customer, []func([]dairy.Customer)) {
	snap := make([]dairy.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		snap = append(snap, c)
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID })

	subs := make([]func([]dairy.Customer), 0, len(m.customerSubs))
	for _, fn := range m.customerSubs {
		subs = append(subs, fn)
	}
	return snap, subs
}

func notifyCustomers(snap []dairy.Customer, subs []func([]dairy.Customer)) {
	for _, fn := range subs {
		fn(append([]dairy.Customer(nil), snap...))
	}
}

// =============================================================================
// DELIVERY LOG
// =============================================================================

func (m *Memory) MergeLog(_ context.Context, key dairy.LogKey, patch dairy.LogPatch) error {
	m.mu.Lock()
	m.logs[key] = m.logs[key].Apply(patch)
	snap, subs := m.logSnapshotLocked()
	m.mu.Unlock()
	notifyLogs(snap, subs)
	return nil
}

func (m *Memory) DeleteLog(_ context.Context, key dairy.LogKey) error {
	m.mu.Lock()
	if _, ok := m.logs[key]; !ok {
		m.mu.Unlock()
		return &dairy.NotFoundError{Kind: "log", ID: key.Date.String() + "/" + key.CustomerID}
	}
	delete(m.logs, key)
	snap, subs := m.logSnapshotLocked()
	m.mu.Unlock()
	notifyLogs(snap, subs)
	return nil
}

func (m *Memory) Logs(_ context.Context) (dairy.LogBook, error) {
	m.mu.RLock()
	snap, _ := m.logSnapshotLocked()
	m.mu.RUnlock()
	return snap, nil
}

func (m *Memory) logSnapshotLocked() (dairy.LogBook, []func(dairy.LogBook)) {
	snap := make(dairy.LogBook, len(m.logs))
	for k, v := range m.logs {
		snap[k] = v
	}
	subs := make([]func(dairy.LogBook), 0, len(m.logSubs))
	for _, fn := range m.logSubs {
		subs = append(subs, fn)
	}
	return snap, subs
}

func notifyLogs(snap dairy.LogBook, subs []func(dairy.LogBook)) {
	for _, fn := range subs {
		cp := make(dairy.LogBook, len(snap))
		for k, v := range snap {
			cp[k] = v
		}
		fn(cp)
	}
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Memory) AddPayment(_ context.Context, p dairy.Payment) (string, error) {
	m.mu.Lock()
	p.ID = uuid.NewString()
	m.payments[p.ID] = p
	snap, subs := m.paymentSnapshotLocked()
	m.mu.Unlock()
	notifyPayments(snap, subs)
	return p.ID, nil
}

func (m *Memory) DeletePayment(_ context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.payments[id]; !ok {
		m.mu.Unlock()
		return &dairy.NotFoundError{Kind: "payment", ID: id}
	}
	delete(m.payments, id)
	snap, subs := m.paymentSnapshotLocked()
	m.mu.Unlock()
	notifyPayments(snap, subs)
	return nil
}

func (m *Memory) Payments(_ context.Context) ([]dairy.Payment, error) {
	m.mu.RLock()
	snap, _ := m.paymentSnapshotLocked()
	m.mu.RUnlock()
	return snap, nil
}

// paymentSnapshotLocked orders by date then id so snapshots are
// deterministic even for same-day payments.
func (m *Memory) paymentSnapshotLocked() ([]dairy.Payment, []func([]dairy.Payment)) {
	snap := make([]dairy.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		snap = append(snap, p)
	}
	sort.Slice(snap, func(i, j int) bool {
		if !snap[i].Date.Equal(snap[j].Date) {
			return snap[i].Date.Before(snap[j].Date)
		}
		return snap[i].ID < snap[j].ID
	})

	subs := make([]func([]dairy.Payment), 0, len(m.paymentSubs))
	for _, fn := range m.paymentSubs {
		subs = append(subs, fn)
	}
	return snap, subs
}

func notifyPayments(snap []dairy.Payment, subs []func([]dairy.Payment)) {
	for _, fn := range subs {
		fn(append([]dairy.Payment(nil), snap...))
	}
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

func (m *Memory) SubscribeCustomers(fn func([]dairy.Customer)) dairy.CancelFunc {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.customerSubs[id] = fn
	snap, _ := m.customerSnapshotLocked()
	m.mu.Unlock()

	fn(snap)
	return func() {
		m.mu.Lock()
		delete(m.customerSubs, id)
		m.mu.Unlock()
	}
}

func (m *Memory) SubscribeLogs(fn func(dairy.LogBook)) dairy.CancelFunc {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.logSubs[id] = fn
	snap, _ := m.logSnapshotLocked()
	m.mu.Unlock()

	fn(snap)
	return func() {
		m.mu.Lock()
		delete(m.logSubs, id)
		m.mu.Unlock()
	}
}

func (m *Memory) SubscribePayments(fn func([]dairy.Payment)) dairy.CancelFunc {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.paymentSubs[id] = fn
	snap, _ := m.paymentSnapshotLocked()
	m.mu.Unlock()

	fn(snap)
	return func() {
		m.mu.Lock()
		delete(m.paymentSubs, id)
		m.mu.Unlock()
	}
}
