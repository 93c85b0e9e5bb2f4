package pos

import (
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Sepet uçları stateless çalışır: frontend mevcut sepet satırlarını gönderir,
// sunucu güncel stok/parti durumuna göre yerleşimi hesaplayıp geri döner.
// Kalıcı stok düşümü sadece checkout'ta yapılır.

type CartQuoteRequest struct {
	ItemID   uint       `json:"item_id"`
	Quantity float64    `json:"quantity"`
	Lines    []CartLine `json:"lines"` // sepetteki mevcut satırlar
}

type CartQuoteResponse struct {
	PlacedLines []CartLine `json:"placed_lines"`
	Shortfall   float64    `json:"shortfall"`
	Cart        []CartLine `json:"cart"` // yerleşim sonrası birleşik sepet (shortfall 0 ise)
}

type CartRebindRequest struct {
	Line       CartLine   `json:"line"`        // taşınan satır
	NewLotID   uint       `json:"new_lot_id"`  // hedef parti
	OtherLines []CartLine `json:"other_lines"` // taşınan satır HARİÇ sepet satırları
}

type CartRebindResponse struct {
	Line    CartLine `json:"line"`
	Capped  bool     `json:"capped"`
	Warning string   `json:"warning,omitempty"`
}

// POST /api/pos/cart/quote
func CartQuoteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CartQuoteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ItemID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_id zorunlu")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalı")
		}

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", body.ItemID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün bulunamadı")
		}

		var lots []models.InventoryLot
		if item.TracksLots {
			if err := database.DB.Where("item_id = ?", item.ID).Find(&lots).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Partiler yüklenemedi")
			}
		}

		res := Allocate(item, lots, body.Quantity, body.Lines)

		response := CartQuoteResponse{
			PlacedLines: res.PlacedLines,
			Shortfall:   res.Shortfall,
		}
		// Shortfall varsa sepete hiçbir satır eklenmez, mevcut sepet aynen döner
		if res.Shortfall > 0 {
			response.Cart = body.Lines
		} else {
			response.Cart = MergeLines(body.Lines, res.PlacedLines)
		}

		return c.JSON(response)
	}
}

// POST /api/pos/cart/rebind
// Satırı başka partiye taşı; kapasite yetmezse miktar kırpılır, hata dönmez
func CartRebindHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CartRebindRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.NewLotID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "new_lot_id zorunlu")
		}

		var lots []models.InventoryLot
		if err := database.DB.Where("item_id = ?", body.Line.ItemID).Find(&lots).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Partiler yüklenemedi")
		}

		rebound, capped := RebindLine(body.Line, body.NewLotID, lots, body.OtherLines)

		res := CartRebindResponse{Line: rebound, Capped: capped}
		if capped {
			res.Warning = "Hedef partide yeterli stok yok, miktar kalan kapasiteye düşürüldü"
		}

		return c.JSON(res)
	}
}
