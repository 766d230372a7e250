/*
ledger.go - Running-balance ledger and account summaries

PURPOSE:
  Merges one customer's delivery charges and payments into a single
  chronological sequence with a running balance: MILK events increase the
  balance (money owed), PAYMENT events decrease it.

ORDERING:
  Events are stable-sorted by date only. When a charge and a payment fall
  on the same day their relative order is whatever the merge produced -
  that order is deterministic for given snapshots, which is all the
  contract asks for.

BALANCE:
  balance = total milk cost to date - total payments to date, computed in
  forward chronological order. Presenters show newest-first by reversing
  the computed sequence, never by recomputing backwards.
*/
package dairy

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER EVENTS
// =============================================================================

type EventType string

const (
	EventMilk    EventType = "MILK"    // a day's delivery charge
	EventPayment EventType = "PAYMENT" // a payment received
)

// LedgerEvent is one line of a customer's financial history. Balance is the
// running balance after applying this event.
type LedgerEvent struct {
	Type      EventType
	Date      Date
	Amount    decimal.Decimal
	Method    string // payments only
	PaymentID string // payments only
	Balance   decimal.Decimal
}

// BuildLedger merges delivery charges and payments for one customer into a
// chronological sequence with running balances. MILK events are emitted only
// for days whose cost is positive; zero-volume entries never clutter the
// history.
func BuildLedger(c Customer, logs LogBook, payments []Payment) []LedgerEvent {
	var events []LedgerEvent

	for _, de := range logs.ByCustomer(c.ID) {
		cost := de.Entry.TotalVolume().Mul(de.Entry.EffectiveRate(c.Rate))
		if cost.IsPositive() {
			events = append(events, LedgerEvent{Type: EventMilk, Date: de.Date, Amount: cost})
		}
	}
	for _, p := range PaymentsFor(payments, c.ID) {
		events = append(events, LedgerEvent{
			Type:      EventPayment,
			Date:      p.Date,
			Amount:    p.Amount,
			Method:    p.Method,
			PaymentID: p.ID,
		})
	}

	// Stable sort keyed only by date: same-day charge/payment order is
	// implementation-defined but deterministic per snapshot.
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	balance := decimal.Zero
	for i := range events {
		if events[i].Type == EventMilk {
			balance = balance.Add(events[i].Amount)
		} else {
			balance = balance.Sub(events[i].Amount)
		}
		events[i].Balance = balance
	}
	return events
}

// NewestFirst returns a reversed copy for presentation. Balances are already
// computed; this only changes display order.
func NewestFirst(events []LedgerEvent) []LedgerEvent {
	out := make([]LedgerEvent, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}

// OwesThreshold is the display policy for flagging debtors: balances above
// ten currency units render as "owes money". It is a presentation rule, not
// part of the balance arithmetic.
var OwesThreshold = decimal.NewFromInt(10)

func Owes(balance decimal.Decimal) bool { return balance.GreaterThan(OwesThreshold) }

// =============================================================================
// ACCOUNT SUMMARIES - All-time bill vs paid, per customer
// =============================================================================

// AccountSummary is one row of the balances overview: everything ever
// billed, everything ever paid, and the difference.
type AccountSummary struct {
	Customer    Customer
	TotalBilled decimal.Decimal
	TotalPaid   decimal.Decimal
	Balance     decimal.Decimal
}

// Accounts computes the all-time summary for every customer in the snapshot.
func Accounts(customers []Customer, logs LogBook, payments []Payment) []AccountSummary {
	rows := make([]AccountSummary, 0, len(customers))
	for _, c := range customers {
		billed := decimal.Zero
		for _, de := range logs.ByCustomer(c.ID) {
			billed = billed.Add(de.Entry.TotalVolume().Mul(de.Entry.EffectiveRate(c.Rate)))
		}
		paid := decimal.Zero
		for _, p := range PaymentsFor(payments, c.ID) {
			paid = paid.Add(p.Amount)
		}
		rows = append(rows, AccountSummary{
			Customer:    c,
			TotalBilled: billed,
			TotalPaid:   paid,
			Balance:     billed.Sub(paid),
		})
	}
	return rows
}
