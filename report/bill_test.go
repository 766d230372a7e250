package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mahalaxmi/dairybook/dairy"
	"github.com/mahalaxmi/dairybook/report"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func ravi() dairy.Customer {
	return dairy.Customer{
		ID:     "r1",
		Name:   "Ravi",
		Mobile: "98765 43210",
		Rate:   decimal.NewFromInt(40),
	}
}

func samplePeriod() (dairy.Date, dairy.Date, dairy.PeriodTotals, []dairy.DayDetail) {
	from := dairy.NewDate(2026, time.June, 1)
	to := dairy.NewDate(2026, time.June, 30)
	totals := dairy.PeriodTotals{
		Milk:        decimal.NewFromFloat(45.5),
		Cost:        decimal.NewFromInt(1820),
		AverageRate: decimal.NewFromInt(40),
	}
	details := []dairy.DayDetail{
		{
			Date:    from,
			Morning: decimal.NewFromInt(1),
			Evening: decimal.NewFromFloat(0.5),
			Rate:    decimal.NewFromInt(40),
			Cost:    decimal.NewFromInt(60),
		},
	}
	return from, to, totals, details
}

// =============================================================================
// SPREADSHEET
// =============================================================================

func TestBillWorkbook_RendersHeaderAndRows(t *testing.T) {
	from, to, totals, details := samplePeriod()

	data, err := report.BillWorkbook(ravi(), from, to, totals, details)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// The output must be a readable workbook with the expected cells.
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Bill", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Milk Bill: Ravi", title)

	liters, _ := f.GetCellValue("Bill", "A3")
	assert.Equal(t, "Total Liters: 45.50 L", liters)

	amount, _ := f.GetCellValue("Bill", "A4")
	assert.Equal(t, "Total Amount: Rs 1820.00", amount)

	header, _ := f.GetCellValue("Bill", "A6")
	assert.Equal(t, "Date", header)

	firstDate, _ := f.GetCellValue("Bill", "A7")
	assert.Equal(t, "2026-06-01", firstDate)
	firstCost, _ := f.GetCellValue("Bill", "E7")
	assert.Equal(t, "60.00", firstCost)
}

func TestBillFilename(t *testing.T) {
	assert.Equal(t, "Bill_Ravi_2026-06-01.xlsx",
		report.BillFilename(ravi(), dairy.NewDate(2026, time.June, 1)))
}

// =============================================================================
// SHARE MESSAGE
// =============================================================================

func TestBillMessage_Rounding(t *testing.T) {
	// Amount renders as whole rupees, milk to one decimal.
	from, to, totals, _ := samplePeriod()
	msg := report.BillMessage(ravi(), from, to, totals)
	assert.Equal(t,
		"Hello Ravi, your milk bill from 2026-06-01 to 2026-06-30 is ₹1820. Total Milk: 45.5 Liters.",
		msg)
}

func TestNormalizePhone(t *testing.T) {
	// Bare 10-digit numbers get the country code; separators are stripped;
	// anything else passes through digits-only.
	cases := []struct {
		in   string
		want string
	}{
		{"9876543210", "919876543210"},
		{"98765 43210", "919876543210"},
		{"+91-98765-43210", "919876543210"},
		{"12345", "12345"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, report.NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link, err := report.WhatsAppLink(ravi(), "Hello Ravi")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/919876543210?text=Hello+Ravi", link)
}

func TestWhatsAppLink_NoMobile(t *testing.T) {
	c := ravi()
	c.Mobile = "  "
	_, err := report.WhatsAppLink(c, "msg")
	assert.ErrorIs(t, err, dairy.ErrValidation)
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "05/06", report.DisplayDate(dairy.NewDate(2026, time.June, 5)))
}
