/*
Package sqlite provides the SQLite-backed implementation of dairy.Store.

PURPOSE:
  Persists the three collections (customers, logs, payments) in SQLite and
  reproduces the document-store semantics the application was written
  against: field-level merge on log entries, store-assigned payment ids,
  and whole-collection snapshot fan-out to subscribers after every commit.

KEY TABLES:
  customers:  one row per customer, keyed by the user-assigned id
  logs:       one row per (date, customer_id) delivery entry
  payments:   one row per payment, keyed by a generated uuid

MERGE SEMANTICS:
  Log and customer merges read the existing row, apply the patch in Go,
  and write the result back inside one database transaction. That keeps
  the merge logic in exactly one place (the domain Apply methods) instead
  of duplicating it in SQL.

FAN-OUT:
  After every successful mutation the affected collection is re-read in
  full and pushed to all subscribers. Subscribers replace their copy
  wholesale; the three collections notify independently with no cross-
  collection ordering guarantee, matching the remote-store contract.

WAL MODE:
  SQLite is opened with WAL so snapshot reads don't block the writer.

USAGE:
  st, err := sqlite.New("./data/dairybook.db")
  ...
  defer st.Close()

SEE ALSO:
  - dairy/store.go: interface and contract
  - dairy/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mahalaxmi/dairybook/dairy"
)

// Store implements dairy.Store on SQLite.
type Store struct {
	db *sql.DB

	mu           sync.Mutex
	nextSub      int
	customerSubs map[int]func([]dairy.Customer)
	logSubs      map[int]func(dairy.LogBook)
	paymentSubs  map[int]func([]dairy.Payment)
}

// New opens (or creates) the database at dbPath. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer connection: SQLite serializes writes anyway, and a pooled
	// ":memory:" database would otherwise be a different database per conn.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:           db,
		customerSubs: make(map[int]func([]dairy.Customer)),
		logSubs:      make(map[int]func(dairy.LogBook)),
		paymentSubs:  make(map[int]func([]dairy.Payment)),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		mobile  TEXT NOT NULL DEFAULT '',
		rate    TEXT NOT NULL,
		shift   TEXT NOT NULL DEFAULT 'both'
	);

	CREATE TABLE IF NOT EXISTS logs (
		date           TEXT NOT NULL,
		customer_id    TEXT NOT NULL,
		morning_liters TEXT NOT NULL DEFAULT '',
		morning_ml     TEXT NOT NULL DEFAULT '',
		evening_liters TEXT NOT NULL DEFAULT '',
		evening_ml     TEXT NOT NULL DEFAULT '',
		rate           TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (date, customer_id)
	);

	-- Per-customer history lookups (ledger, erase) without key-suffix games.
	CREATE INDEX IF NOT EXISTS idx_logs_customer ON logs(customer_id, date);

	CREATE TABLE IF NOT EXISTS payments (
		id          TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		amount      TEXT NOT NULL,
		date        TEXT NOT NULL,
		method      TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_payments_customer ON payments(customer_id);
	CREATE INDEX IF NOT EXISTS idx_payments_date ON payments(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Store) PutCustomer(ctx context.Context, c dairy.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, address, mobile, rate, shift)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			mobile = excluded.mobile,
			rate = excluded.rate,
			shift = excluded.shift`,
		c.ID, c.Name, c.Address, c.Mobile, c.Rate.String(), string(c.Shift.Normalize()))
	if err != nil {
		return err
	}
	s.notifyCustomers(ctx)
	return nil
}

func (s *Store) MergeCustomer(ctx context.Context, id string, patch dairy.CustomerPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, name, address, mobile, rate, shift FROM customers WHERE id = ?`, id)
	existing, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return &dairy.NotFoundError{Kind: "customer", ID: id}
	}
	if err != nil {
		return err
	}

	merged := existing.Apply(patch)
	_, err = tx.ExecContext(ctx, `
		UPDATE customers SET name = ?, address = ?, mobile = ?, rate = ?, shift = ?
		WHERE id = ?`,
		merged.Name, merged.Address, merged.Mobile, merged.Rate.String(),
		string(merged.Shift.Normalize()), id)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.notifyCustomers(ctx)
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &dairy.NotFoundError{Kind: "customer", ID: id}
	}
	s.notifyCustomers(ctx)
	return nil
}

func (s *Store) Customers(ctx context.Context) ([]dairy.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, mobile, rate, shift FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dairy.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(r rowScanner) (dairy.Customer, error) {
	var c dairy.Customer
	var rate, shift string
	if err := r.Scan(&c.ID, &c.Name, &c.Address, &c.Mobile, &rate, &shift); err != nil {
		return dairy.Customer{}, err
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return dairy.Customer{}, fmt.Errorf("customer %s: bad rate %q: %w", c.ID, rate, err)
	}
	c.Rate = d
	c.Shift = dairy.Shift(shift).Normalize()
	return c, nil
}

// =============================================================================
// DELIVERY LOG
// =============================================================================

func (s *Store) MergeLog(ctx context.Context, key dairy.LogKey, patch dairy.LogPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing dairy.LogEntry
	row := tx.QueryRowContext(ctx, `
		SELECT morning_liters, morning_ml, evening_liters, evening_ml, rate
		FROM logs WHERE date = ? AND customer_id = ?`,
		key.Date.String(), key.CustomerID)
	err = row.Scan(&existing.MorningLiters, &existing.MorningML,
		&existing.EveningLiters, &existing.EveningML, &existing.Rate)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	merged := existing.Apply(patch)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO logs (date, customer_id, morning_liters, morning_ml, evening_liters, evening_ml, rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, customer_id) DO UPDATE SET
			morning_liters = excluded.morning_liters,
			morning_ml = excluded.morning_ml,
			evening_liters = excluded.evening_liters,
			evening_ml = excluded.evening_ml,
			rate = excluded.rate`,
		key.Date.String(), key.CustomerID,
		merged.MorningLiters, merged.MorningML,
		merged.EveningLiters, merged.EveningML, merged.Rate)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.notifyLogs(ctx)
	return nil
}

func (s *Store) DeleteLog(ctx context.Context, key dairy.LogKey) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM logs WHERE date = ? AND customer_id = ?`,
		key.Date.String(), key.CustomerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &dairy.NotFoundError{Kind: "log", ID: key.Date.String() + "/" + key.CustomerID}
	}
	s.notifyLogs(ctx)
	return nil
}

func (s *Store) Logs(ctx context.Context) (dairy.LogBook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, customer_id, morning_liters, morning_ml, evening_liters, evening_ml, rate
		FROM logs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	book := dairy.LogBook{}
	for rows.Next() {
		var dateStr, customerID string
		var e dairy.LogEntry
		if err := rows.Scan(&dateStr, &customerID,
			&e.MorningLiters, &e.MorningML, &e.EveningLiters, &e.EveningML, &e.Rate); err != nil {
			return nil, err
		}
		date, err := dairy.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("log row: %w", err)
		}
		book[dairy.LogKey{Date: date, CustomerID: customerID}] = e
	}
	return book, rows.Err()
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) AddPayment(ctx context.Context, p dairy.Payment) (string, error) {
	p.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, customer_id, amount, date, method)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, p.Amount.String(), p.Date.String(), p.Method)
	if err != nil {
		return "", err
	}
	s.notifyPayments(ctx)
	return p.ID, nil
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &dairy.NotFoundError{Kind: "payment", ID: id}
	}
	s.notifyPayments(ctx)
	return nil
}

func (s *Store) Payments(ctx context.Context) ([]dairy.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, amount, date, method
		FROM payments ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dairy.Payment
	for rows.Next() {
		var p dairy.Payment
		var amount, dateStr string
		if err := rows.Scan(&p.ID, &p.CustomerID, &amount, &dateStr, &p.Method); err != nil {
			return nil, err
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("payment %s: bad amount %q: %w", p.ID, amount, err)
		}
		date, err := dairy.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		p.Amount = a
		p.Date = date
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// SUBSCRIPTIONS - whole-collection fan-out
// =============================================================================

func (s *Store) SubscribeCustomers(fn func([]dairy.Customer)) dairy.CancelFunc {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.customerSubs[id] = fn
	s.mu.Unlock()

	if snap, err := s.Customers(context.Background()); err == nil {
		fn(snap)
	}
	return func() {
		s.mu.Lock()
		delete(s.customerSubs, id)
		s.mu.Unlock()
	}
}

func (s *Store) SubscribeLogs(fn func(dairy.LogBook)) dairy.CancelFunc {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.logSubs[id] = fn
	s.mu.Unlock()

	if snap, err := s.Logs(context.Background()); err == nil {
		fn(snap)
	}
	return func() {
		s.mu.Lock()
		delete(s.logSubs, id)
		s.mu.Unlock()
	}
}

func (s *Store) SubscribePayments(fn func([]dairy.Payment)) dairy.CancelFunc {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.paymentSubs[id] = fn
	s.mu.Unlock()

	if snap, err := s.Payments(context.Background()); err == nil {
		fn(snap)
	}
	return func() {
		s.mu.Lock()
		delete(s.paymentSubs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notifyCustomers(ctx context.Context) {
	snap, err := s.Customers(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	subs := make([]func([]dairy.Customer), 0, len(s.customerSubs))
	for _, fn := range s.customerSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(append([]dairy.Customer(nil), snap...))
	}
}

func (s *Store) notifyLogs(ctx context.Context) {
	snap, err := s.Logs(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	subs := make([]func(dairy.LogBook), 0, len(s.logSubs))
	for _, fn := range s.logSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		cp := make(dairy.LogBook, len(snap))
		for k, v := range snap {
			cp[k] = v
		}
		fn(cp)
	}
}

func (s *Store) notifyPayments(ctx context.Context) {
	snap, err := s.Payments(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	subs := make([]func([]dairy.Payment), 0, len(s.paymentSubs))
	for _, fn := range s.paymentSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(append([]dairy.Payment(nil), snap...))
	}
}
