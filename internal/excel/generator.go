package excel

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/contracts-billing/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes one workbook: a summary block followed by one row per
// profession with its paid volume for the period.
func (g *Generator) Generate(report model.EarningsReport) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Earnings"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", "Paid volume by profession")
	set("A2", "Period start")
	set("B2", report.PeriodStart.Format("2006-01-02"))
	set("A3", "Period end")
	set("B3", report.PeriodEnd.Format("2006-01-02"))
	set("A4", "Total paid")
	set("B4", sumTotals(report.Rows).StringFixed(2))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Profession")
	set(fmt.Sprintf("B%d", tableRow), "Paid total")

	for i, row := range report.Rows {
		line := tableRow + 1 + i
		set(fmt.Sprintf("A%d", line), row.Profession)
		set(fmt.Sprintf("B%d", line), row.Total.StringFixed(2))
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "B", 18)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sumTotals(rows []model.ProfessionEarnings) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Total)
	}
	return total
}
