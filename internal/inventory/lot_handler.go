package inventory

import (
	"fmt"
	"time"

	"otel-backend/internal/audit"
	"otel-backend/internal/auth"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateLotRequest struct {
	Brand      string  `json:"brand"`
	BatchCode  string  `json:"batch_code"`
	ExpiryDate *string `json:"expiry_date"` // "2026-03-01", boş = SKT yok
	Quantity   float64 `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
}

type LotResponse struct {
	ID         uint    `json:"id"`
	ItemID     uint    `json:"item_id"`
	Brand      string  `json:"brand"`
	BatchCode  string  `json:"batch_code"`
	ExpiryDate *string `json:"expiry_date"`
	Quantity   float64 `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
	CreatedAt  string  `json:"created_at"`
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

func toLotResponse(lot models.InventoryLot) LotResponse {
	res := LotResponse{
		ID:        lot.ID,
		ItemID:    lot.ItemID,
		Brand:     lot.Brand,
		BatchCode: lot.BatchCode,
		Quantity:  lot.Quantity,
		UnitCost:  lot.UnitCost,
		CreatedAt: lot.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if lot.ExpiryDate != nil {
		s := lot.ExpiryDate.Format("2006-01-02")
		res.ExpiryDate = &s
	}
	return res
}

// POST /api/inventory/items/:id/lots
// Mal kabul: yeni parti girişi
func CreateLotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if !item.TracksLots {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ürün parti takibi yapmıyor, stok düzeltmesi kullanın")
		}

		var body CreateLotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalı")
		}
		if body.UnitCost < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "unit_cost negatif olamaz")
		}

		var expiry *time.Time
		if body.ExpiryDate != nil && *body.ExpiryDate != "" {
			d, err := time.Parse("2006-01-02", *body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expiry_date formatı 'YYYY-MM-DD' olmalı")
			}
			expiry = &d
		}

		lot := models.InventoryLot{
			ItemID:     item.ID,
			Brand:      body.Brand,
			BatchCode:  body.BatchCode,
			ExpiryDate: expiry,
			Quantity:   body.Quantity,
			UnitCost:   body.UnitCost,
		}

		if err := database.DB.Create(&lot).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Parti oluşturulamadı")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory_lot",
				EntityID:    lot.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Mal kabul: %s, %.2f %s", item.Name, body.Quantity, item.Unit),
				After:       lot,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toLotResponse(lot))
	}
}

// GET /api/inventory/items/:id/lots?include_empty=true
// SKT sırasıyla partiler (SKT'siz en sonda, tüketim önceliğiyle aynı sıra)
func ListLotsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		q := database.DB.Where("item_id = ?", item.ID)
		if c.Query("include_empty") != "true" {
			q = q.Where("quantity > 0")
		}

		var lots []models.InventoryLot
		if err := q.Order("expiry_date asc NULLS LAST").Find(&lots).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Partiler listelenemedi")
		}

		res := make([]LotResponse, 0, len(lots))
		for _, lot := range lots {
			res = append(res, toLotResponse(lot))
		}

		return c.JSON(res)
	}
}

// GET /api/inventory/expiring?days=30
// Yaklaşan SKT raporu
func ExpiringLotsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		if days <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "days 0'dan büyük olmalı")
		}

		cutoff := time.Now().AddDate(0, 0, days)

		var lots []models.InventoryLot
		if err := database.DB.Preload("Item").
			Where("quantity > 0 AND expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
			Order("expiry_date asc").Find(&lots).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Partiler listelenemedi")
		}

		type ExpiringLot struct {
			LotResponse
			ItemName string `json:"item_name"`
		}

		res := make([]ExpiringLot, 0, len(lots))
		for _, lot := range lots {
			res = append(res, ExpiringLot{LotResponse: toLotResponse(lot), ItemName: lot.Item.Name})
		}

		return c.JSON(res)
	}
}
