/*
reports.go - Payroll exports

PURPOSE:
  Builds the monthly loss-of-pay workbook payroll deducts from. Approval
  never blocks on an unpaid remainder; this export is where those days
  surface, so a request with loss_of_pay > 0 must appear here or the
  deduction is silently lost.

FORMAT:
  xlsx via excelize. One row per approved request starting in the report
  month with a positive loss-of-pay portion, plus a totals row.

USAGE:
  GET /api/reports/lop?year=2025&month=6
  Defaults to the current month.

SEE ALSO:
  - server.go: Report route definitions
  - ledger/store.go: RequestRecord, the split source
*/
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

// LopReport streams the month's loss-of-pay workbook.
func (h *Handler) LopReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if q := r.URL.Query().Get("year"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = n
	}
	if q := r.URL.Query().Get("month"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		month = time.Month(n)
	}

	f, err := buildLopReport(r.Context(), h.Store, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("lop-%04d-%02d.xlsx", year, int(month))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("Failed to stream report %s: %v", filename, err)
	}
}

var lopReportHeaders = []string{
	"Employee ID", "Employee Name", "Leave Type",
	"Start Date", "End Date", "Days", "Loss of Pay Days", "Note",
}

// buildLopReport collects the month's approved requests with an unpaid
// portion into a workbook.
func buildLopReport(ctx context.Context, store *sqlite.Store, year int, month time.Month) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := fmt.Sprintf("LOP %04d-%02d", year, int(month))
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "H", 18); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeReportRow(f, sheet, 1, toRowValues(lopReportHeaders)); err != nil {
		f.Close()
		return nil, err
	}

	employees, err := store.ListEmployees(ctx)
	if err != nil {
		f.Close()
		return nil, err
	}

	row := 2
	total := leave.ZeroDays()
	for _, emp := range employees {
		records, err := store.ApprovedInMonth(ctx, emp.ID, year, month)
		if err != nil {
			f.Close()
			return nil, err
		}
		for _, rec := range records {
			if !rec.LossOfPay.IsPositive() {
				continue
			}
			values := []any{
				string(rec.EmployeeID),
				emp.Name,
				string(rec.Type),
				rec.StartDate.String(),
				rec.EndDate.String(),
				rec.DaysCount.Float64(),
				rec.LossOfPay.Float64(),
				rec.Note,
			}
			if err := writeReportRow(f, sheet, row, values); err != nil {
				f.Close()
				return nil, err
			}
			total = total.Add(rec.LossOfPay)
			row++
		}
	}

	if err := writeReportRow(f, sheet, row+1, []any{"Total", "", "", "", "", "", total.Float64(), ""}); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeReportRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func toRowValues(strs []string) []any {
	values := make([]any, len(strs))
	for i, s := range strs {
		values[i] = s
	}
	return values
}
