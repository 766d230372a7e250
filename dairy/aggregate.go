/*
aggregate.go - The aggregation engine

PURPOSE:
  Pure functions deriving every report view from the raw snapshots:

    ComputeDayStats  one date, all customers, split by shift (dashboard)
    CustomerPeriod   one customer over a date range (bill)
    MasterPeriod     every customer over a date range (master ledger)

  Historically this arithmetic was duplicated in each presenter and the
  copies drifted. It lives here exactly once now; presenters are thin
  callers.

CONTRACT:
  - Inputs are whole-collection snapshots; outputs are recomputed fresh on
    every call. No incremental state, no side effects.
  - A missing log entry contributes zero. A log entry for an unknown
    customer is simply never reached (these functions iterate customers).
  - Rate resolution goes through LogEntry.EffectiveRate everywhere.
  - The customer's shift preference is ignored here: the log records what
    was actually delivered, and delivered milk is billed.

SEE ALSO:
  - ledger.go: running-balance ledger built on the same rate rules
*/
package dairy

import "github.com/shopspring/decimal"

// =============================================================================
// DAILY STATS - One date, all customers, per shift
// =============================================================================

// ShiftTotals is one dashboard bucket: delivered volume, number of customers
// with a delivery, and the money value of the milk.
type ShiftTotals struct {
	Milk      decimal.Decimal
	Customers int
	Cost      decimal.Decimal
}

// DayStats holds the three dashboard buckets for one date. Total.Customers
// is the full customer count; the shift buckets count only customers with a
// positive volume in that shift.
type DayStats struct {
	Date    Date
	Total   ShiftTotals
	Morning ShiftTotals
	Evening ShiftTotals
}

// ComputeDayStats derives the dashboard numbers for one calendar day.
func ComputeDayStats(customers []Customer, logs LogBook, date Date) DayStats {
	stats := DayStats{Date: date}
	stats.Total.Customers = len(customers)

	for _, c := range customers {
		entry, ok := logs[LogKey{Date: date, CustomerID: c.ID}]
		if !ok {
			continue
		}

		morning := entry.MorningVolume()
		evening := entry.EveningVolume()
		rate := entry.EffectiveRate(c.Rate)
		day := morning.Add(evening)

		stats.Total.Milk = stats.Total.Milk.Add(day)
		stats.Total.Cost = stats.Total.Cost.Add(day.Mul(rate))

		if morning.IsPositive() {
			stats.Morning.Milk = stats.Morning.Milk.Add(morning)
			stats.Morning.Cost = stats.Morning.Cost.Add(morning.Mul(rate))
			stats.Morning.Customers++
		}
		if evening.IsPositive() {
			stats.Evening.Milk = stats.Evening.Milk.Add(evening)
			stats.Evening.Cost = stats.Evening.Cost.Add(evening.Mul(rate))
			stats.Evening.Customers++
		}
	}
	return stats
}

// =============================================================================
// PERIOD AGGREGATION - Date range, per customer
// =============================================================================

// PeriodTotals is one customer's billing summary over a range. AverageRate
// is Cost/Milk when any milk was delivered, else the customer's current
// default rate (a sensible display value, and no division by zero).
type PeriodTotals struct {
	Milk        decimal.Decimal
	Cost        decimal.Decimal
	AverageRate decimal.Decimal
}

// DayDetail is one bill row. Only days with a positive volume produce rows.
type DayDetail struct {
	Date    Date
	Morning decimal.Decimal
	Evening decimal.Decimal
	Rate    decimal.Decimal
	Cost    decimal.Decimal
}

// CustomerPeriod walks every calendar day in [from, to] inclusive and
// accumulates the customer's volume and cost. An inverted range yields zero
// totals and no rows rather than an error; callers guard their own UI.
func CustomerPeriod(c Customer, logs LogBook, from, to Date) (PeriodTotals, []DayDetail) {
	totals := PeriodTotals{AverageRate: c.Rate}
	var details []DayDetail

	for d := from; d.BeforeOrEqual(to); d = d.Next() {
		entry, ok := logs[LogKey{Date: d, CustomerID: c.ID}]
		if !ok {
			continue
		}

		morning := entry.MorningVolume()
		evening := entry.EveningVolume()
		volume := morning.Add(evening)
		rate := entry.EffectiveRate(c.Rate)
		cost := volume.Mul(rate)

		totals.Milk = totals.Milk.Add(volume)
		totals.Cost = totals.Cost.Add(cost)

		if volume.IsPositive() {
			details = append(details, DayDetail{
				Date:    d,
				Morning: morning,
				Evening: evening,
				Rate:    rate,
				Cost:    cost,
			})
		}
	}

	if totals.Milk.IsPositive() {
		totals.AverageRate = totals.Cost.Div(totals.Milk)
	}
	return totals, details
}

// CustomerTotals pairs a customer with their period summary for the master
// report.
type CustomerTotals struct {
	Customer Customer
	Totals   PeriodTotals
}

// MasterPeriod runs CustomerPeriod for every customer in snapshot order.
func MasterPeriod(customers []Customer, logs LogBook, from, to Date) []CustomerTotals {
	rows := make([]CustomerTotals, 0, len(customers))
	for _, c := range customers {
		totals, _ := CustomerPeriod(c, logs, from, to)
		rows = append(rows, CustomerTotals{Customer: c, Totals: totals})
	}
	return rows
}
