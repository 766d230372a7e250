/*
handlers.go - HTTP API handlers for the dairy record-keeping system

PURPOSE:
  Exposes the aggregation engine and mutation gateway over REST. Handlers
  parse requests, delegate to domain logic, and serialize responses; all
  arithmetic lives in the dairy package.

REQUEST FLOW:
  1. Parse and validate HTTP input
  2. Reads go to the Replica (latest snapshots)
  3. Mutations go through the Gateway (validation + store)
  4. Serialize response or map the domain error

ERROR HANDLING:
  - 400: validation errors, malformed dates/bodies
  - 404: unknown customer/payment/log entry
  - 409: duplicate customer id
  - 500: store failures (generic notice; state is never rolled back
         locally - truth arrives with the next snapshot)
  Failed cascading erases additionally report the phase reached and the
  partial deletion counts.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
  - auth.go: login and bearer middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mahalaxmi/dairybook/config"
	"github.com/mahalaxmi/dairybook/dairy"
	"github.com/mahalaxmi/dairybook/report"
	"github.com/mahalaxmi/dairybook/translit"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Replica  *dairy.Replica
	Gateway  *dairy.Gateway
	Translit *translit.Client
	Auth     config.AuthConfig

	log *zap.Logger
}

// NewHandler wires the handler. A nil logger is replaced with a no-op one.
func NewHandler(replica *dairy.Replica, gateway *dairy.Gateway, tc *translit.Client, auth config.AuthConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Replica: replica, Gateway: gateway, Translit: tc, Auth: auth, log: log}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns the current customer snapshot.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.Replica.Customers()
	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCustomer adds a customer with a user-assigned id.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c := dairy.Customer{
		ID:      req.ID,
		Name:    req.Name,
		Address: req.Address,
		Mobile:  req.Mobile,
		Rate:    decimal.NewFromFloat(req.Rate),
		Shift:   dairy.Shift(req.Shift).Normalize(),
	}
	if err := h.Gateway.AddCustomer(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

// UpdateCustomer merges a partial update into an existing customer.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := dairy.CustomerPatch{
		Name:    req.Name,
		Address: req.Address,
		Mobile:  req.Mobile,
	}
	if req.Rate != nil {
		rate := decimal.NewFromFloat(*req.Rate)
		patch.Rate = &rate
	}
	if req.Shift != nil {
		shift := dairy.Shift(*req.Shift).Normalize()
		patch.Shift = &shift
	}

	if err := h.Gateway.UpdateCustomer(r.Context(), id, patch); err != nil {
		writeDomainError(w, "Failed to update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": id})
}

// DeleteCustomer removes the customer record only (no cascade).
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Gateway.DeleteCustomer(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// EraseCustomer removes a customer and their entire delivery and payment
// history, reporting per-category counts.
func (h *Handler) EraseCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.Gateway.EraseCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to erase customer", err)
		return
	}
	writeJSON(w, http.StatusOK, EraseResultDTO{
		CustomerID:      res.CustomerID,
		LogsDeleted:     res.LogsDeleted,
		PaymentsDeleted: res.PaymentsDeleted,
		Phase:           string(res.Phase),
	})
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard returns the shift-split stats for one date (default: today).
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	date := dairy.Today()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := dairy.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		date = parsed
	}

	stats := dairy.ComputeDayStats(h.Replica.Customers(), h.Replica.Logs(), date)
	writeJSON(w, http.StatusOK, DayStatsDTO{
		Date:    stats.Date.String(),
		Total:   toShiftTotalsDTO(stats.Total),
		Morning: toShiftTotalsDTO(stats.Morning),
		Evening: toShiftTotalsDTO(stats.Evening),
	})
}

// =============================================================================
// BILLS
// =============================================================================

// parseRange reads from/to query params, or a month=YYYY-MM shortcut that
// expands to the first and last day of that month.
func parseRange(r *http.Request) (dairy.Date, dairy.Date, error) {
	q := r.URL.Query()

	if month := q.Get("month"); month != "" {
		first, err := dairy.ParseDate(month + "-01")
		if err != nil {
			return dairy.Date{}, dairy.Date{}, err
		}
		return first, dairy.EndOfMonth(first.Year(), first.Month()), nil
	}

	from, err := dairy.ParseDate(q.Get("from"))
	if err != nil {
		return dairy.Date{}, dairy.Date{}, err
	}
	to, err := dairy.ParseDate(q.Get("to"))
	if err != nil {
		return dairy.Date{}, dairy.Date{}, err
	}
	return from, to, nil
}

func (h *Handler) billFor(r *http.Request) (dairy.Customer, dairy.Date, dairy.Date, dairy.PeriodTotals, []dairy.DayDetail, error) {
	c, err := h.Replica.Customer(chi.URLParam(r, "id"))
	if err != nil {
		return dairy.Customer{}, dairy.Date{}, dairy.Date{}, dairy.PeriodTotals{}, nil, err
	}
	from, to, err := parseRange(r)
	if err != nil {
		return dairy.Customer{}, dairy.Date{}, dairy.Date{}, dairy.PeriodTotals{}, nil,
			&dairy.ValidationError{Field: "range", Reason: "use from/to or month in YYYY-MM-DD form"}
	}
	totals, details := dairy.CustomerPeriod(c, h.Replica.Logs(), from, to)
	return c, from, to, totals, details, nil
}

// GetBill returns one customer's period summary with per-day detail rows.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	c, from, to, totals, details, err := h.billFor(r)
	if err != nil {
		writeDomainError(w, "Failed to build bill", err)
		return
	}

	rows := make([]DayDetailDTO, len(details))
	for i, d := range details {
		rows[i] = DayDetailDTO{
			Date:    d.Date.String(),
			Display: report.DisplayDate(d.Date),
			Morning: d.Morning.StringFixed(2),
			Evening: d.Evening.StringFixed(2),
			Rate:    d.Rate.String(),
			Cost:    d.Cost.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, BillDTO{
		Customer:  toCustomerDTO(c),
		From:      from.String(),
		To:        to.String(),
		Days:      from.DaysInclusive(to),
		TotalMilk: totals.Milk.StringFixed(2),
		TotalCost: totals.Cost.StringFixed(2),
		AvgRate:   totals.AverageRate.StringFixed(2),
		Details:   rows,
	})
}

// DownloadBill streams the bill as an xlsx workbook.
func (h *Handler) DownloadBill(w http.ResponseWriter, r *http.Request) {
	c, from, to, totals, details, err := h.billFor(r)
	if err != nil {
		writeDomainError(w, "Failed to build bill", err)
		return
	}

	data, err := report.BillWorkbook(c, from, to, totals, details)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render bill document", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.BillFilename(c, from)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// BillMessage returns the shareable bill text and its WhatsApp link.
func (h *Handler) BillMessage(w http.ResponseWriter, r *http.Request) {
	c, from, to, totals, _, err := h.billFor(r)
	if err != nil {
		writeDomainError(w, "Failed to build bill", err)
		return
	}

	msg := report.BillMessage(c, from, to, totals)
	link, err := report.WhatsAppLink(c, msg)
	if err != nil {
		writeDomainError(w, "Failed to build share link", err)
		return
	}
	writeJSON(w, http.StatusOK, BillMessageDTO{Message: msg, WhatsAppLink: link})
}

// =============================================================================
// MASTER REPORT & BALANCES
// =============================================================================

// MasterReport returns period totals for every customer plus grand totals.
func (h *Handler) MasterReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	rows := dairy.MasterPeriod(h.Replica.Customers(), h.Replica.Logs(), from, to)
	dtos := make([]MasterRowDTO, len(rows))
	totalMilk, totalCost := decimal.Zero, decimal.Zero
	for i, row := range rows {
		dtos[i] = MasterRowDTO{
			CustomerID: row.Customer.ID,
			Name:       row.Customer.Name,
			TotalMilk:  row.Totals.Milk.StringFixed(2),
			TotalCost:  row.Totals.Cost.StringFixed(2),
			AvgRate:    row.Totals.AverageRate.StringFixed(2),
		}
		totalMilk = totalMilk.Add(row.Totals.Milk)
		totalCost = totalCost.Add(row.Totals.Cost)
	}

	writeJSON(w, http.StatusOK, MasterReportDTO{
		From:      from.String(),
		To:        to.String(),
		Rows:      dtos,
		TotalMilk: totalMilk.StringFixed(2),
		TotalCost: totalCost.StringFixed(0),
	})
}

// Balances returns the all-time billed/paid/balance overview.
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	rows := dairy.Accounts(h.Replica.Customers(), h.Replica.Logs(), h.Replica.Payments())
	dtos := make([]AccountSummaryDTO, len(rows))
	for i, row := range rows {
		dtos[i] = AccountSummaryDTO{
			CustomerID:  row.Customer.ID,
			Name:        row.Customer.Name,
			TotalBilled: row.TotalBilled.StringFixed(2),
			TotalPaid:   row.TotalPaid.StringFixed(2),
			Balance:     row.Balance.StringFixed(2),
			Owes:        dairy.Owes(row.Balance),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLedger returns a customer's running-balance history, newest first.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	c, err := h.Replica.Customer(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to build ledger", err)
		return
	}

	events := dairy.BuildLedger(c, h.Replica.Logs(), h.Replica.Payments())
	balance := decimal.Zero
	if len(events) > 0 {
		balance = events[len(events)-1].Balance
	}

	newest := dairy.NewestFirst(events)
	dtos := make([]LedgerEventDTO, len(newest))
	for i, e := range newest {
		dtos[i] = LedgerEventDTO{
			Type:      string(e.Type),
			Date:      e.Date.String(),
			Amount:    e.Amount.StringFixed(2),
			Method:    e.Method,
			PaymentID: e.PaymentID,
			Balance:   e.Balance.StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, LedgerDTO{
		CustomerID: c.ID,
		Events:     dtos,
		Balance:    balance.StringFixed(2),
		Owes:       dairy.Owes(balance),
	})
}

// =============================================================================
// DELIVERY LOG HANDLERS
// =============================================================================

// ListLogs returns every delivery entry, date-ascending then by customer.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs := h.Replica.Logs()
	dtos := make([]LogEntryDTO, 0, len(logs))
	for k, e := range logs {
		dtos = append(dtos, LogEntryDTO{
			Date:          k.Date.String(),
			CustomerID:    k.CustomerID,
			MorningLiters: e.MorningLiters,
			MorningML:     e.MorningML,
			EveningLiters: e.EveningLiters,
			EveningML:     e.EveningML,
			Rate:          e.Rate,
		})
	}
	sort.Slice(dtos, func(i, j int) bool {
		if dtos[i].Date != dtos[j].Date {
			return dtos[i].Date < dtos[j].Date
		}
		return dtos[i].CustomerID < dtos[j].CustomerID
	})
	writeJSON(w, http.StatusOK, dtos)
}

// SaveLog merge-upserts a delivery entry for {date}/{customerId}.
func (h *Handler) SaveLog(w http.ResponseWriter, r *http.Request) {
	date, err := dairy.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	customerID := chi.URLParam(r, "customerId")

	var req SaveLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := dairy.LogPatch{
		MorningLiters: req.MorningLiters,
		MorningML:     req.MorningML,
		EveningLiters: req.EveningLiters,
		EveningML:     req.EveningML,
		Rate:          req.Rate,
	}
	if err := h.Gateway.SaveLogEntry(r.Context(), date, customerID, patch); err != nil {
		writeDomainError(w, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": date.String() + "/" + customerID})
}

// DeleteLog removes one delivery entry.
func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	date, err := dairy.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	customerID := chi.URLParam(r, "customerId")

	if err := h.Gateway.DeleteLogEntry(r.Context(), date, customerID); err != nil {
		writeDomainError(w, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": date.String() + "/" + customerID})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns the payment snapshot (date ascending).
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments := h.Replica.Payments()
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = PaymentDTO{
			ID:         p.ID,
			CustomerID: p.CustomerID,
			Amount:     p.Amount.StringFixed(2),
			Date:       p.Date.String(),
			Method:     p.Method,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment records a payment; the store assigns the id.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p := dairy.Payment{
		CustomerID: req.CustomerID,
		Amount:     decimal.NewFromFloat(req.Amount),
		Method:     req.Method,
	}
	if req.Date != "" {
		date, err := dairy.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		p.Date = date
	}

	id, err := h.Gateway.AddPayment(r.Context(), p)
	if err != nil {
		writeDomainError(w, "Failed to add payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// DeletePayment removes one payment.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Gateway.DeletePayment(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete payment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// =============================================================================
// TRANSLITERATION
// =============================================================================

// TransformText runs the best-effort script conversion. This can never
// fail: the worst case is the input coming back unchanged.
func (h *Handler) TransformText(w http.ResponseWriter, r *http.Request) {
	var req TranslitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	result := h.Translit.Transform(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, TranslitResponse{Text: req.Text, Result: result})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses. Erase failures
// carry their phase and partial counts so the caller knows exactly what
// state the store was left in.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var ee *dairy.EraseError
	if errors.As(err, &ee) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:           message,
			Details:         err.Error(),
			Phase:           string(ee.Phase),
			LogsDeleted:     &ee.LogsDeleted,
			PaymentsDeleted: &ee.PaymentsDeleted,
		})
		return
	}

	switch {
	case errors.Is(err, dairy.ErrCustomerExists):
		writeError(w, http.StatusConflict, message, err)
	case dairy.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case dairy.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
