package dairy

import (
	"sync"
)

// =============================================================================
// REPLICA - Local mirror of the three collections
// =============================================================================

// Replica holds the latest snapshot of each collection, fed by the store's
// subscriptions. Each stream replaces its collection wholesale and
// independently; a log snapshot may briefly reference a customer the
// customer snapshot does not know yet, and readers must treat that as "no
// data", never as an error.
type Replica struct {
	mu        sync.RWMutex
	customers []Customer
	logs      LogBook
	payments  []Payment
}

func NewReplica() *Replica {
	return &Replica{logs: LogBook{}}
}

// Start subscribes the replica to all three collections and returns a
// function tearing the subscriptions down. Call once at boot, cancel once
// at shutdown.
func (r *Replica) Start(store Store) CancelFunc {
	c1 := store.SubscribeCustomers(r.setCustomers)
	c2 := store.SubscribeLogs(r.setLogs)
	c3 := store.SubscribePayments(r.setPayments)
	return func() {
		c1()
		c2()
		c3()
	}
}

func (r *Replica) setCustomers(cs []Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = cs
}

func (r *Replica) setLogs(b LogBook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b == nil {
		b = LogBook{}
	}
	r.logs = b
}

func (r *Replica) setPayments(ps []Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = ps
}

// Customers returns a copy of the current customer snapshot.
func (r *Replica) Customers() []Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Customer, len(r.customers))
	copy(out, r.customers)
	return out
}

// Logs returns a copy of the current log snapshot.
func (r *Replica) Logs() LogBook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(LogBook, len(r.logs))
	for k, v := range r.logs {
		out[k] = v
	}
	return out
}

// Payments returns a copy of the current payment snapshot.
func (r *Replica) Payments() []Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Payment, len(r.payments))
	copy(out, r.payments)
	return out
}

// Customer looks one customer up in the current snapshot.
func (r *Replica) Customer(id string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return FindCustomer(r.customers, id)
}
