package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
)

// Workbook renders the admin report as a spreadsheet with a summary sheet
// and a daily transaction volume sheet.
func Workbook(counts *domain.ReportCounts, daily []*domain.DailyCount) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)

	header, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total users", counts.TotalUsers},
		{"Active savings accounts", counts.ActiveAccounts},
		{"Pending savings accounts", counts.PendingAccounts},
		{"Active credit cards", counts.ActiveCards},
		{"Pending credit cards", counts.PendingCards},
		{"Consultations booked", counts.TotalConsultations},
		{"Consultations completed", counts.CompletedConsultations},
		{"Transactions", counts.TotalTransactions},
		{"Total balance held", counts.TotalActiveBalance},
		{"Generated at", counts.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(summary, "A1", "B1", header)
	_ = f.SetColWidth(summary, "A", "A", 28)
	_ = f.SetColWidth(summary, "B", "B", 22)

	const volume = "Daily Transactions"
	if _, err := f.NewSheet(volume); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(volume, "A1", &[]interface{}{"Date", "Transactions"}); err != nil {
		return nil, err
	}
	for i, d := range daily {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{d.Date.Format("2006-01-02"), d.Count}
		if err := f.SetSheetRow(volume, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(volume, "A1", "B1", header)
	_ = f.SetColWidth(volume, "A", "B", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
