// Package export renders evaluation tables as CSV with amounts rounded to cents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/mpsdeal/internal/amortization"
	"github.com/Simplici0/mpsdeal/internal/cashflow"
)

const places = 2

var (
	cashFlowHeader = []string{"month", "income", "opex", "financing", "net", "cumulative"}
	scheduleHeader = []string{"month", "installment", "interest", "principal", "balance"}
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func WriteCashFlowCSV(w io.Writer, rows []cashflow.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cashFlowHeader); err != nil {
		return fmt.Errorf("write cash flow header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Month),
			money(r.Income),
			money(r.Opex),
			money(r.Financing),
			money(r.Net),
			money(r.Cumulative),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write cash flow month %d: %w", r.Month, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteScheduleCSV(w io.Writer, rows []amortization.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return fmt.Errorf("write schedule header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Month),
			money(r.Installment),
			money(r.Interest),
			money(r.Principal),
			money(r.Balance),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write schedule month %d: %w", r.Month, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
