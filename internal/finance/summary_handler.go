package finance

import (
	"fmt"
	"sort"
	"time"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type FinancialSummaryResponse struct {
	Period         string         `json:"period"` // "daily", "monthly"
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	RoomRevenue    float64        `json:"room_revenue"`    // konaklama ödemeleri
	POSRevenue     float64        `json:"pos_revenue"`     // tamamlanmış POS satışları
	TotalRevenue   float64        `json:"total_revenue"`   // oda + POS
	TotalExpenses  float64        `json:"total_expenses"`  // giderler
	TotalRefunds   float64        `json:"total_refunds"`   // onaylanmış iadeler
	NetProfit      float64        `json:"net_profit"`      // ciro - gider - iade
	DailyBreakdown []DailyRevenue `json:"daily_breakdown,omitempty"`
}

type DailyRevenue struct {
	Date        string  `json:"date"`
	RoomRevenue float64 `json:"room_revenue"`
	POSRevenue  float64 `json:"pos_revenue"`
	Expenses    float64 `json:"expenses"`
	Refunds     float64 `json:"refunds"`
}

// summarizeRange: tarih aralığındaki gelir/gider/iade verilerini günlük kırılımla toplar
func summarizeRange(from, to time.Time) ([]DailyRevenue, error) {
	var payments []models.Payment
	if err := database.DB.Where("date >= ? AND date <= ?", from, to).Find(&payments).Error; err != nil {
		return nil, err
	}

	var posTxs []models.POSTransaction
	if err := database.DB.Where("status = ? AND date >= ? AND date <= ?", models.POSStatusCompleted, from, to).
		Find(&posTxs).Error; err != nil {
		return nil, err
	}

	var expenses []models.Expense
	if err := database.DB.Where("date >= ? AND date <= ?", from, to).Find(&expenses).Error; err != nil {
		return nil, err
	}

	var refunds []models.RefundRequest
	if err := database.DB.Where("status = ? AND decided_at >= ? AND decided_at <= ?", models.RefundStatusApproved, from, to).
		Find(&refunds).Error; err != nil {
		return nil, err
	}

	// Günlük breakdown oluştur
	dailyMap := make(map[string]DailyRevenue)
	current := from
	for !current.After(to) {
		dateStr := current.Format("2006-01-02")
		dailyMap[dateStr] = DailyRevenue{Date: dateStr}
		current = current.AddDate(0, 0, 1)
	}

	for _, p := range payments {
		dateStr := p.Date.Format("2006-01-02")
		if dr, ok := dailyMap[dateStr]; ok {
			dr.RoomRevenue += p.Amount
			dailyMap[dateStr] = dr
		}
	}

	for _, tx := range posTxs {
		dateStr := tx.Date.Format("2006-01-02")
		if dr, ok := dailyMap[dateStr]; ok {
			dr.POSRevenue += tx.Total
			dailyMap[dateStr] = dr
		}
	}

	for _, exp := range expenses {
		dateStr := exp.Date.Format("2006-01-02")
		if dr, ok := dailyMap[dateStr]; ok {
			dr.Expenses += exp.Amount
			dailyMap[dateStr] = dr
		}
	}

	for _, r := range refunds {
		if r.DecidedAt == nil {
			continue
		}
		dateStr := r.DecidedAt.Format("2006-01-02")
		if dr, ok := dailyMap[dateStr]; ok {
			dr.Refunds += r.Amount
			dailyMap[dateStr] = dr
		}
	}

	breakdown := make([]DailyRevenue, 0, len(dailyMap))
	for _, dr := range dailyMap {
		breakdown = append(breakdown, dr)
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Date < breakdown[j].Date })
	return breakdown, nil
}

func buildSummary(period string, from, to time.Time, withBreakdown bool) (FinancialSummaryResponse, error) {
	breakdown, err := summarizeRange(from, to)
	if err != nil {
		return FinancialSummaryResponse{}, err
	}

	var roomRevenue, posRevenue, totalExpenses, totalRefunds float64
	for _, dr := range breakdown {
		roomRevenue += dr.RoomRevenue
		posRevenue += dr.POSRevenue
		totalExpenses += dr.Expenses
		totalRefunds += dr.Refunds
	}

	resp := FinancialSummaryResponse{
		Period:        period,
		StartDate:     from.Format("2006-01-02"),
		EndDate:       to.Format("2006-01-02"),
		RoomRevenue:   roomRevenue,
		POSRevenue:    posRevenue,
		TotalRevenue:  roomRevenue + posRevenue,
		TotalExpenses: totalExpenses,
		TotalRefunds:  totalRefunds,
		NetProfit:     roomRevenue + posRevenue - totalExpenses - totalRefunds,
	}
	if withBreakdown {
		resp.DailyBreakdown = breakdown
	}
	return resp, nil
}

// GET /api/finance/summary/daily?from=...&to=...
// Günlük ciro (tarih aralığı ile)
func GetDailyFinancialSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fromStr := c.Query("from")
		toStr := c.Query("to")
		if fromStr == "" || toStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "from ve to tarihleri zorunlu (YYYY-MM-DD)")
		}

		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
		}
		if to.Before(from) {
			return fiber.NewError(fiber.StatusBadRequest, "to, from'dan önce olamaz")
		}

		resp, err := buildSummary("daily", from, to, true)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		return c.JSON(resp)
	}
}

// GET /api/finance/summary/monthly?year=2026&month=8
// Aylık ciro ve kar
func GetMonthlyFinancialSummaryHandler() fiber.Handler {
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

		resp, err := buildSummary("monthly", firstDay, lastDay, false)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		return c.JSON(resp)
	}
}
