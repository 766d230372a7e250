/*
dto.go - Data transfer objects for API requests and responses

PURPOSE:
  JSON structures decoupling the domain model from the API contract.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

FORMATTING:
  Money and volume fields are pre-formatted strings with the display
  rounding the reports have always used: volumes to two decimals, bill
  totals to two decimals, dashboard earnings to whole rupees. Raw rates
  travel as JSON numbers.
*/
package api

import (
	"github.com/mahalaxmi/dairybook/dairy"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// =============================================================================
// CUSTOMERS
// =============================================================================

type CustomerDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Mobile  string  `json:"mobile,omitempty"`
	Rate    float64 `json:"rate"`
	Shift   string  `json:"shift"`
}

func toCustomerDTO(c dairy.Customer) CustomerDTO {
	return CustomerDTO{
		ID:      c.ID,
		Name:    c.Name,
		Address: c.Address,
		Mobile:  c.Mobile,
		Rate:    c.Rate.InexactFloat64(),
		Shift:   string(c.Shift.Normalize()),
	}
}

type CreateCustomerRequest struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Mobile  string  `json:"mobile"`
	Rate    float64 `json:"rate"`
	Shift   string  `json:"shift"`
}

// UpdateCustomerRequest is a partial update; absent fields stay untouched.
type UpdateCustomerRequest struct {
	Name    *string  `json:"name,omitempty"`
	Address *string  `json:"address,omitempty"`
	Mobile  *string  `json:"mobile,omitempty"`
	Rate    *float64 `json:"rate,omitempty"`
	Shift   *string  `json:"shift,omitempty"`
}

type EraseResultDTO struct {
	CustomerID      string `json:"customer_id"`
	LogsDeleted     int    `json:"logs_deleted"`
	PaymentsDeleted int    `json:"payments_deleted"`
	Phase           string `json:"phase"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// ShiftTotalsDTO is one dashboard card row: milk to two decimals, earnings
// to whole rupees.
type ShiftTotalsDTO struct {
	Milk      string `json:"milk"`
	Customers int    `json:"customers"`
	Cost      string `json:"cost"`
}

type DayStatsDTO struct {
	Date    string         `json:"date"`
	Total   ShiftTotalsDTO `json:"total"`
	Morning ShiftTotalsDTO `json:"morning"`
	Evening ShiftTotalsDTO `json:"evening"`
}

func toShiftTotalsDTO(s dairy.ShiftTotals) ShiftTotalsDTO {
	return ShiftTotalsDTO{
		Milk:      s.Milk.StringFixed(2),
		Customers: s.Customers,
		Cost:      s.Cost.StringFixed(0),
	}
}

// =============================================================================
// BILLS & MASTER REPORT
// =============================================================================

type DayDetailDTO struct {
	Date    string `json:"date"`
	Display string `json:"display"` // DD/MM for bill tables
	Morning string `json:"morning"`
	Evening string `json:"evening"`
	Rate    string `json:"rate"`
	Cost    string `json:"cost"`
}

type BillDTO struct {
	Customer  CustomerDTO    `json:"customer"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Days      int            `json:"days"`
	TotalMilk string         `json:"total_milk"`
	TotalCost string         `json:"total_cost"`
	AvgRate   string         `json:"avg_rate"`
	Details   []DayDetailDTO `json:"details"`
}

type BillMessageDTO struct {
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link"`
}

type MasterRowDTO struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	TotalMilk  string `json:"total_milk"`
	TotalCost  string `json:"total_cost"`
	AvgRate    string `json:"avg_rate"`
}

type MasterReportDTO struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	Rows      []MasterRowDTO `json:"rows"`
	TotalMilk string         `json:"total_milk"`
	TotalCost string         `json:"total_cost"`
}

// =============================================================================
// LEDGER & BALANCES
// =============================================================================

type LedgerEventDTO struct {
	Type      string `json:"type"` // MILK or PAYMENT
	Date      string `json:"date"`
	Amount    string `json:"amount"`
	Method    string `json:"method,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`
	Balance   string `json:"balance"`
}

type LedgerDTO struct {
	CustomerID string           `json:"customer_id"`
	Events     []LedgerEventDTO `json:"events"` // newest first
	Balance    string           `json:"balance"`
	Owes       bool             `json:"owes"`
}

type AccountSummaryDTO struct {
	CustomerID  string `json:"customer_id"`
	Name        string `json:"name"`
	TotalBilled string `json:"total_billed"`
	TotalPaid   string `json:"total_paid"`
	Balance     string `json:"balance"`
	Owes        bool   `json:"owes"`
}

// =============================================================================
// DELIVERY LOG
// =============================================================================

// LogEntryDTO is one delivery entry with its key flattened in.
type LogEntryDTO struct {
	Date          string `json:"date"`
	CustomerID    string `json:"customer_id"`
	MorningLiters string `json:"morning_liters,omitempty"`
	MorningML     string `json:"morning_ml,omitempty"`
	EveningLiters string `json:"evening_liters,omitempty"`
	EveningML     string `json:"evening_ml,omitempty"`
	Rate          string `json:"rate,omitempty"`
}

// SaveLogRequest carries merge-update fields; absent fields stay untouched.
type SaveLogRequest struct {
	MorningLiters *string `json:"morning_liters,omitempty"`
	MorningML     *string `json:"morning_ml,omitempty"`
	EveningLiters *string `json:"evening_liters,omitempty"`
	EveningML     *string `json:"evening_ml,omitempty"`
	Rate          *string `json:"rate,omitempty"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	Method     string `json:"method,omitempty"`
}

type CreatePaymentRequest struct {
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Method     string  `json:"method"`
}

// =============================================================================
// TRANSLITERATION
// =============================================================================

type TranslitRequest struct {
	Text string `json:"text"`
}

type TranslitResponse struct {
	Text   string `json:"text"`
	Result string `json:"result"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`

	// Cascading erase failures report how far the erase got.
	Phase           string `json:"phase,omitempty"`
	LogsDeleted     *int   `json:"logs_deleted,omitempty"`
	PaymentsDeleted *int   `json:"payments_deleted,omitempty"`
}
