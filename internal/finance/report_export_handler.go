package finance

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/finance/reports/monthly.xlsx?year=2026&month=8
// Aylık finans raporunu Excel olarak indirir: günlük kırılım + özet satırı.
func ExportMonthlyReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
		}

		loc := time.Now().Location()
		firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		lastDay := firstDay.AddDate(0, 1, -1)

		breakdown, err := summarizeRange(firstDay, lastDay)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor verileri hesaplanamadı")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Rapor"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Tarih", "Oda Geliri", "POS Geliri", "Gider", "İade", "Net"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		var roomTotal, posTotal, expenseTotal, refundTotal float64
		for i, dr := range breakdown {
			rowNo := i + 2
			net := dr.RoomRevenue + dr.POSRevenue - dr.Expenses - dr.Refunds
			values := []interface{}{dr.Date, dr.RoomRevenue, dr.POSRevenue, dr.Expenses, dr.Refunds, net}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowNo)
				f.SetCellValue(sheet, cell, v)
			}
			roomTotal += dr.RoomRevenue
			posTotal += dr.POSRevenue
			expenseTotal += dr.Expenses
			refundTotal += dr.Refunds
		}

		// Toplam satırı
		totalRow := len(breakdown) + 2
		totals := []interface{}{
			"TOPLAM", roomTotal, posTotal, expenseTotal, refundTotal,
			roomTotal + posTotal - expenseTotal - refundTotal,
		}
		for col, v := range totals {
			cell, _ := excelize.CoordinatesToCellName(col+1, totalRow)
			f.SetCellValue(sheet, cell, v)
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor dosyası oluşturulamadı")
		}

		filename := fmt.Sprintf("finans-raporu-%d-%02d.xlsx", year, month)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		return c.Send(buf.Bytes())
	}
}
