package inventory

import (
	"fmt"

	"otel-backend/internal/audit"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateAdjustmentRequest struct {
	ItemID uint    `json:"item_id"`
	LotID  *uint   `json:"lot_id"` // parti takipli ürünlerde zorunlu
	Delta  float64 `json:"delta"`  // pozitif = giriş, negatif = düşüm (fire, kırılma vs.)
	Reason string  `json:"reason"`
}

// POST /api/inventory/adjustments
// Elle stok düzeltmesi. Negatif düzeltme stoku sıfırın altına indiremez.
func CreateAdjustmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAdjustmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ItemID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_id zorunlu")
		}
		if body.Delta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "delta 0 olamaz")
		}
		if len(body.Reason) < 3 {
			return fiber.NewError(fiber.StatusBadRequest, "reason zorunlu ve en az 3 karakter olmalı")
		}

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", body.ItemID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		if item.TracksLots && body.LotID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Parti takipli ürün için lot_id zorunlu")
		}

		adjustment := models.StockAdjustment{
			ItemID: item.ID,
			LotID:  body.LotID,
			Delta:  body.Delta,
			Reason: body.Reason,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if item.TracksLots {
				var lot models.InventoryLot
				if err := tx.First(&lot, "id = ? AND item_id = ?", *body.LotID, item.ID).Error; err != nil {
					return fmt.Errorf("parti bulunamadı")
				}
				if lot.Quantity+body.Delta < 0 {
					return fmt.Errorf("parti stoku sıfırın altına inemez (mevcut %.2f)", lot.Quantity)
				}
				if err := tx.Model(&models.InventoryLot{}).Where("id = ?", lot.ID).
					Update("quantity", gorm.Expr("quantity + ?", body.Delta)).Error; err != nil {
					return err
				}
			} else {
				if item.StockQuantity+body.Delta < 0 {
					return fmt.Errorf("stok sıfırın altına inemez (mevcut %.2f)", item.StockQuantity)
				}
				if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ID).
					Update("stock_quantity", gorm.Expr("stock_quantity + ?", body.Delta)).Error; err != nil {
					return err
				}
			}
			return tx.Create(&adjustment).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Stok düzeltmesi yapılamadı: %v", err))
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "stock_adjustment",
				EntityID:    adjustment.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Stok düzeltmesi: %s, %+.2f (%s)", item.Name, body.Delta, body.Reason),
				After:       adjustment,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(adjustment)
	}
}

// GET /api/inventory/adjustments?item_id=5
func ListAdjustmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.StockAdjustment{}).Preload("Item")

		if itemID := c.Query("item_id"); itemID != "" {
			q = q.Where("item_id = ?", itemID)
		}

		var adjustments []models.StockAdjustment
		if err := q.Order("created_at desc").Limit(200).Find(&adjustments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Düzeltmeler listelenemedi")
		}

		return c.JSON(adjustments)
	}
}
