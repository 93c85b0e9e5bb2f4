package inventory

import (
	"strings"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ItemResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	SalePrice     float64 `json:"sale_price"`
	TracksLots    bool    `json:"tracks_lots"`
	StockQuantity float64 `json:"stock_quantity"` // parti takipli ürünlerde partilerin toplamı
	MinStockLevel float64 `json:"min_stock_level"`
}

type CreateItemRequest struct {
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	SalePrice     float64 `json:"sale_price"`
	TracksLots    bool    `json:"tracks_lots"`
	StockQuantity float64 `json:"stock_quantity"` // sadece parti takipsiz ürün için
	MinStockLevel float64 `json:"min_stock_level"`
}

type UpdateItemRequest struct {
	Name          *string  `json:"name"`
	Unit          *string  `json:"unit"`
	Category      *string  `json:"category"`
	SalePrice     *float64 `json:"sale_price"`
	MinStockLevel *float64 `json:"min_stock_level"`
}

// Parti takipli üründe görünen stok = partilerin toplamı
func effectiveStock(item models.InventoryItem) float64 {
	if !item.TracksLots {
		return item.StockQuantity
	}
	var total float64
	database.DB.Model(&models.InventoryLot{}).
		Where("item_id = ?", item.ID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total)
	return total
}

func toItemResponse(item models.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Unit:          item.Unit,
		Category:      item.Category,
		SalePrice:     item.SalePrice,
		TracksLots:    item.TracksLots,
		StockQuantity: effectiveStock(item),
		MinStockLevel: item.MinStockLevel,
	}
}

// POST /api/inventory/items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
		}
		if body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Birim zorunlu (adet, kg, şişe vs.)")
		}
		if body.SalePrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satış fiyatı negatif olamaz")
		}
		if body.TracksLots && body.StockQuantity != 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Parti takipli ürüne düz stok girilemez, parti girişi kullanın")
		}

		item := models.InventoryItem{
			Name:          body.Name,
			Unit:          body.Unit,
			Category:      body.Category,
			SalePrice:     body.SalePrice,
			TracksLots:    body.TracksLots,
			StockQuantity: body.StockQuantity,
			MinStockLevel: body.MinStockLevel,
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı (isim kullanımda olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(toItemResponse(item))
	}
}

// GET /api/inventory/items?category=minibar&search=cola
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.InventoryItem{})

		if category := c.Query("category"); category != "" {
			q = q.Where("category = ?", category)
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}

		var items []models.InventoryItem
		if err := q.Order("name asc").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ItemResponse, 0, len(items))
		for _, item := range items {
			res = append(res, toItemResponse(item))
		}

		return c.JSON(res)
	}
}

// GET /api/inventory/items/:id
func GetItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		return c.JSON(toItemResponse(item))
	}
}

// PUT /api/inventory/items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			item.Name = name
		}
		if body.Unit != nil {
			item.Unit = *body.Unit
		}
		if body.Category != nil {
			item.Category = *body.Category
		}
		if body.SalePrice != nil {
			if *body.SalePrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Satış fiyatı negatif olamaz")
			}
			item.SalePrice = *body.SalePrice
		}
		if body.MinStockLevel != nil {
			item.MinStockLevel = *body.MinStockLevel
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return c.JSON(toItemResponse(item))
	}
}

// DELETE /api/inventory/items/:id
func DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var saleCount int64
		database.DB.Model(&models.POSTransactionItem{}).Where("item_id = ?", item.ID).Count(&saleCount)
		if saleCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Satış kaydı olan ürün silinemez")
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Ürün silindi"})
	}
}

// GET /api/inventory/low-stock
// Kritik seviyenin altına düşen ürünler
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.InventoryItem
		if err := database.DB.Where("min_stock_level > 0").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ItemResponse, 0)
		for _, item := range items {
			r := toItemResponse(item)
			if r.StockQuantity < item.MinStockLevel {
				res = append(res, r)
			}
		}

		return c.JSON(res)
	}
}
