/*
Package dairy provides the core record-keeping engine for a milk delivery
operation.

PURPOSE:
  This package contains the domain records (customers, delivery log entries,
  payments) and the aggregation engine that derives every report the
  application shows: daily shift statistics, per-customer period totals for
  billing, and the chronological running-balance ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Customer: A delivery customer with a default per-liter rate
  - LogKey: Explicit composite key (date, customer id) for delivery entries
  - LogEntry: One day's recorded quantities, in liters and milliliters
  - LogBook: The full delivery log, replaced wholesale on every snapshot
  - Payment: An immutable payment record

DESIGN PRINCIPLES:
  1. Snapshots over diffs: collections arrive whole from the store and are
     replaced wholesale; derived views are recomputed fresh each time
  2. Precision: decimal.Decimal for all money and volume arithmetic
  3. Historical rates: a rate captured on an entry always wins over the
     customer's current default, so bills never change retroactively
  4. Explicit keys: LogKey replaces string-concatenated keys, so customer
     ids that are suffixes of other ids can never collide

SEE ALSO:
  - aggregate.go: Daily and period aggregation
  - ledger.go: Running-balance ledger
  - store.go: Document store contract (snapshots + mutations)
*/
package dairy

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT - Delivery window
// =============================================================================

type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
	ShiftBoth    Shift = "both"
)

// Normalize maps absent or unknown values to ShiftBoth. Legacy customer
// records predate the shift field entirely.
func (s Shift) Normalize() Shift {
	switch s {
	case ShiftMorning, ShiftEvening, ShiftBoth:
		return s
	default:
		return ShiftBoth
	}
}

func (s Shift) IncludesMorning() bool { n := s.Normalize(); return n == ShiftMorning || n == ShiftBoth }
func (s Shift) IncludesEvening() bool { n := s.Normalize(); return n == ShiftEvening || n == ShiftBoth }

// =============================================================================
// CUSTOMER
// =============================================================================

// Customer is a delivery customer. The ID is user-assigned at creation and
// immutable afterwards; Rate is the current default price per liter, used
// only for entries that did not capture their own rate.
type Customer struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Address string          `json:"address,omitempty"`
	Mobile  string          `json:"mobile,omitempty"`
	Rate    decimal.Decimal `json:"rate"`
	Shift   Shift           `json:"shift,omitempty"`
}

// CustomerPatch is a partial customer update. Nil fields are left untouched.
// The ID is deliberately absent: it cannot be changed after creation.
type CustomerPatch struct {
	Name    *string          `json:"name,omitempty"`
	Address *string          `json:"address,omitempty"`
	Mobile  *string          `json:"mobile,omitempty"`
	Rate    *decimal.Decimal `json:"rate,omitempty"`
	Shift   *Shift           `json:"shift,omitempty"`
}

// Apply merges the patch into a copy of the customer.
func (c Customer) Apply(p CustomerPatch) Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Mobile != nil {
		c.Mobile = *p.Mobile
	}
	if p.Rate != nil {
		c.Rate = *p.Rate
	}
	if p.Shift != nil {
		c.Shift = p.Shift.Normalize()
	}
	return c
}

// FindCustomer looks up a customer by id in a snapshot.
func FindCustomer(customers []Customer, id string) (Customer, error) {
	for _, c := range customers {
		if c.ID == id {
			return c, nil
		}
	}
	return Customer{}, &NotFoundError{Kind: "customer", ID: id}
}

// =============================================================================
// DELIVERY LOG
// =============================================================================

// LogKey identifies one delivery entry: one customer, one calendar day.
type LogKey struct {
	Date       Date
	CustomerID string
}

// LogEntry records the quantities delivered on one day. Quantities are kept
// as the numeric strings the entry forms produce; empty, "0" and absent all
// mean "no delivery recorded for that shift". Liters and milliliters are
// additive: 1 liter + 500 ml = 1.5 L.
//
// Rate is the price per liter captured when the entry was saved. Once set it
// is historical and always preferred over the customer's current default.
type LogEntry struct {
	MorningLiters string `json:"morning_liters,omitempty"`
	MorningML     string `json:"morning_ml,omitempty"`
	EveningLiters string `json:"evening_liters,omitempty"`
	EveningML     string `json:"evening_ml,omitempty"`
	Rate          string `json:"rate,omitempty"`
}

// parseQuantity turns a quantity string into a decimal. Missing, empty or
// unparseable values count as zero rather than poisoning a total.
func parseQuantity(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var thousand = decimal.NewFromInt(1000)

// MorningVolume returns liters + ml/1000 for the morning shift.
func (e LogEntry) MorningVolume() decimal.Decimal {
	return parseQuantity(e.MorningLiters).Add(parseQuantity(e.MorningML).Div(thousand))
}

// EveningVolume returns liters + ml/1000 for the evening shift.
func (e LogEntry) EveningVolume() decimal.Decimal {
	return parseQuantity(e.EveningLiters).Add(parseQuantity(e.EveningML).Div(thousand))
}

// TotalVolume returns the whole day's volume.
func (e LogEntry) TotalVolume() decimal.Decimal {
	return e.MorningVolume().Add(e.EveningVolume())
}

// HasRate reports whether the entry captured its own rate at save time.
func (e LogEntry) HasRate() bool {
	return strings.TrimSpace(e.Rate) != ""
}

// EffectiveRate resolves the price for this entry: the captured rate if
// present, else the customer's current default. Every bill computation in
// this package resolves rates through here.
func (e LogEntry) EffectiveRate(customerDefault decimal.Decimal) decimal.Decimal {
	if e.HasRate() {
		return parseQuantity(e.Rate)
	}
	return customerDefault
}

// LogPatch is a partial entry update with merge semantics: nil fields are
// left untouched, so saving a morning quantity never clobbers the evening.
type LogPatch struct {
	MorningLiters *string `json:"morning_liters,omitempty"`
	MorningML     *string `json:"morning_ml,omitempty"`
	EveningLiters *string `json:"evening_liters,omitempty"`
	EveningML     *string `json:"evening_ml,omitempty"`
	Rate          *string `json:"rate,omitempty"`
}

// Apply merges the patch into a copy of the entry.
func (e LogEntry) Apply(p LogPatch) LogEntry {
	if p.MorningLiters != nil {
		e.MorningLiters = *p.MorningLiters
	}
	if p.MorningML != nil {
		e.MorningML = *p.MorningML
	}
	if p.EveningLiters != nil {
		e.EveningLiters = *p.EveningLiters
	}
	if p.EveningML != nil {
		e.EveningML = *p.EveningML
	}
	if p.Rate != nil {
		e.Rate = *p.Rate
	}
	return e
}

// LogBook is the full delivery log keyed by (date, customer id). Snapshots
// replace it wholesale; nothing mutates it in place.
type LogBook map[LogKey]LogEntry

// DatedEntry pairs an entry with its date for per-customer listings.
type DatedEntry struct {
	Date  Date
	Entry LogEntry
}

// ByCustomer returns every entry for one customer ordered by date. This is
// the explicit index that replaces suffix-matching on concatenated keys.
func (b LogBook) ByCustomer(customerID string) []DatedEntry {
	var entries []DatedEntry
	for k, e := range b {
		if k.CustomerID == customerID {
			entries = append(entries, DatedEntry{Date: k.Date, Entry: e})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries
}

// =============================================================================
// PAYMENT
// =============================================================================

// Payment is a single payment received from a customer. The ID is assigned
// by the store at creation; payments are never mutated afterwards, only
// deleted.
type Payment struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	Date       Date            `json:"date"`
	Method     string          `json:"method,omitempty"`
}

// PaymentsFor filters a payment snapshot down to one customer, preserving
// the snapshot's date ordering.
func PaymentsFor(payments []Payment, customerID string) []Payment {
	var out []Payment
	for _, p := range payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out
}
