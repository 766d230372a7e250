/*
Package report renders customer bills for export: a downloadable
spreadsheet and a plain-text message suitable for WhatsApp sharing.

The layout mirrors the bill the operation has always handed out: a header
with the customer, the period and the totals, then one row per delivery
day (date, morning, evening, rate, amount). Days without deliveries never
appear.
*/
package report

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mahalaxmi/dairybook/dairy"
)

// =============================================================================
// SPREADSHEET BILL
// =============================================================================

const billSheet = "Bill"

// BillWorkbook renders the bill as an xlsx workbook and returns its bytes.
func BillWorkbook(c dairy.Customer, from, to dairy.Date, totals dairy.PeriodTotals, details []dairy.DayDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(billSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	set := func(cell string, value any) {
		f.SetCellValue(billSheet, cell, value)
	}

	set("A1", fmt.Sprintf("Milk Bill: %s", c.Name))
	set("A2", fmt.Sprintf("From: %s   To: %s", from, to))
	set("A3", fmt.Sprintf("Total Liters: %s L", totals.Milk.StringFixed(2)))
	set("A4", fmt.Sprintf("Total Amount: Rs %s", totals.Cost.StringFixed(2)))

	headers := []string{"Date", "Morning", "Evening", "Rate", "Total (Rs)"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 6)
		if err != nil {
			return nil, err
		}
		set(cell, h)
	}

	for i, row := range details {
		values := []string{
			row.Date.String(),
			row.Morning.StringFixed(2),
			row.Evening.StringFixed(2),
			row.Rate.String(),
			row.Cost.StringFixed(2),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, 7+i)
			if err != nil {
				return nil, err
			}
			set(cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BillFilename names the downloaded document after the customer and the
// period start.
func BillFilename(c dairy.Customer, from dairy.Date) string {
	return fmt.Sprintf("Bill_%s_%s.xlsx", c.Name, from)
}

// =============================================================================
// SHARE MESSAGE
// =============================================================================

// BillMessage is the plain-text bill summary sent over messaging apps.
// Amount is rounded to whole rupees, milk to one decimal.
func BillMessage(c dairy.Customer, from, to dairy.Date, totals dairy.PeriodTotals) string {
	return fmt.Sprintf("Hello %s, your milk bill from %s to %s is ₹%s. Total Milk: %s Liters.",
		c.Name, from, to, totals.Cost.StringFixed(0), totals.Milk.StringFixed(1))
}

// NormalizePhone strips everything but digits and prefixes the country code
// when exactly ten digits remain (a bare Indian mobile number).
func NormalizePhone(mobile string) string {
	var b strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		return "91" + digits
	}
	return digits
}

// WhatsAppLink builds the wa.me share URL for a customer's bill message.
// Fails when the customer has no mobile number on file.
func WhatsAppLink(c dairy.Customer, message string) (string, error) {
	if strings.TrimSpace(c.Mobile) == "" {
		return "", &dairy.ValidationError{Field: "mobile", Reason: "is required for sharing"}
	}
	return "https://wa.me/" + NormalizePhone(c.Mobile) + "?text=" + url.QueryEscape(message), nil
}

// DisplayDate renders a date as DD/MM for bill tables.
func DisplayDate(d dairy.Date) string {
	return fmt.Sprintf("%02d/%02d", d.Day(), int(d.Month()))
}
