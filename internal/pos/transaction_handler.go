package pos

import (
	"fmt"
	"time"

	"otel-backend/internal/audit"
	"otel-backend/internal/auth"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutRequest struct {
	GuestID   *uint            `json:"guest_id"`   // walk-in satışta boş
	BookingID *uint            `json:"booking_id"` // oda hesabına yazılacaksa zorunlu
	Status    models.POSStatus `json:"status"`     // "pending" (oda hesabı) | "completed" (tahsil edildi)
	Lines     []CartLine       `json:"lines"`
}

type TransactionItemResponse struct {
	ID        uint    `json:"id"`
	ItemID    uint    `json:"item_id"`
	ItemName  string  `json:"item_name"`
	LotID     *uint   `json:"lot_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type TransactionResponse struct {
	ID        uint                      `json:"id"`
	ReceiptNo string                    `json:"receipt_no"`
	GuestID   *uint                     `json:"guest_id"`
	BookingID *uint                     `json:"booking_id"`
	Status    string                    `json:"status"`
	Total     float64                   `json:"total"`
	Date      string                    `json:"date"`
	Items     []TransactionItemResponse `json:"items"`
	CreatedAt string                    `json:"created_at"`
}

// lockForUpdate: satır kilidi. SQLite FOR UPDATE desteklemez, orada
// transaction'ın kendisi yeterli.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
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

func toTransactionResponse(tx models.POSTransaction) TransactionResponse {
	items := make([]TransactionItemResponse, 0, len(tx.Items))
	for _, item := range tx.Items {
		items = append(items, TransactionItemResponse{
			ID:        item.ID,
			ItemID:    item.ItemID,
			ItemName:  item.Item.Name,
			LotID:     item.LotID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return TransactionResponse{
		ID:        tx.ID,
		ReceiptNo: tx.ReceiptNo,
		GuestID:   tx.GuestID,
		BookingID: tx.BookingID,
		Status:    string(tx.Status),
		Total:     tx.Total,
		Date:      tx.Date.Format("2006-01-02 15:04:05"),
		Items:     items,
		CreatedAt: tx.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/pos/checkout
// Sepetteki satırları kalıcı satışa çevirir. Stok düşümü burada, tek transaction
// içinde ve satır kilidi (FOR UPDATE) altında yapılır: sepetteki "kalan" hesabı
// sadece istemci tarafı bir ön kontroldür, eşzamanlı iki checkout'a karşı güvence
// bu yeniden doğrulamadır.
func CheckoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if len(body.Lines) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sepet boş")
		}

		switch body.Status {
		case models.POSStatusPending, models.POSStatusCompleted:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "status 'pending' veya 'completed' olmalı")
		}

		// Oda hesabına yazılacaksa aktif konaklama şart
		if body.Status == models.POSStatusPending {
			if body.BookingID == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Oda hesabına yazmak için booking_id zorunlu")
			}
			var booking models.Booking
			if err := database.DB.First(&booking, "id = ?", *body.BookingID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Rezervasyon bulunamadı")
			}
			if booking.Status != models.BookingStatusCheckedIn {
				return fiber.NewError(fiber.StatusConflict, "Oda hesabına sadece aktif konaklamada yazılabilir")
			}
			if body.GuestID == nil {
				body.GuestID = &booking.GuestID
			}
		}

		for _, line := range body.Lines {
			if line.ItemID == 0 || line.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Tüm satırlar için item_id ve pozitif quantity zorunlu")
			}
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var created models.POSTransaction

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			// Parti başına ve düz stoklu ürün başına toplam talep
			perLot := make(map[uint]float64)
			perFlatItem := make(map[uint]float64)
			for _, line := range body.Lines {
				if line.LotID != nil {
					perLot[*line.LotID] += line.Quantity
				} else {
					perFlatItem[line.ItemID] += line.Quantity
				}
			}

			// Partileri kilitle ve güncel stokla yeniden doğrula
			for lotID, needed := range perLot {
				var lot models.InventoryLot
				if err := lockForUpdate(tx).
					First(&lot, "id = ?", lotID).Error; err != nil {
					return fmt.Errorf("parti bulunamadı: %d", lotID)
				}
				if lot.Quantity < needed {
					return fmt.Errorf("stok yetersiz: parti %d (kalan %.2f, istenen %.2f)", lotID, lot.Quantity, needed)
				}
				if err := tx.Model(&models.InventoryLot{}).Where("id = ?", lotID).
					Update("quantity", gorm.Expr("quantity - ?", needed)).Error; err != nil {
					return err
				}
			}

			// Düz stoklu ürünler için aynı doğrulama
			for itemID, needed := range perFlatItem {
				var item models.InventoryItem
				if err := lockForUpdate(tx).
					First(&item, "id = ?", itemID).Error; err != nil {
					return fmt.Errorf("ürün bulunamadı: %d", itemID)
				}
				if item.TracksLots {
					return fmt.Errorf("parti takipli ürün için lot_id zorunlu: %s", item.Name)
				}
				if item.StockQuantity < needed {
					return fmt.Errorf("stok yetersiz: %s (kalan %.2f, istenen %.2f)", item.Name, item.StockQuantity, needed)
				}
				if err := tx.Model(&models.InventoryItem{}).Where("id = ?", itemID).
					Update("stock_quantity", gorm.Expr("stock_quantity - ?", needed)).Error; err != nil {
					return err
				}
			}

			// Satış kaydı
			total := 0.0
			var items []models.POSTransactionItem
			for _, line := range body.Lines {
				unitPrice := line.UnitPrice
				if unitPrice <= 0 {
					var item models.InventoryItem
					if err := tx.First(&item, "id = ?", line.ItemID).Error; err != nil {
						return fmt.Errorf("ürün bulunamadı: %d", line.ItemID)
					}
					unitPrice = item.SalePrice
				}
				lineTotal := line.Quantity * unitPrice
				total += lineTotal
				items = append(items, models.POSTransactionItem{
					ItemID:    line.ItemID,
					LotID:     line.LotID,
					Quantity:  line.Quantity,
					UnitPrice: unitPrice,
					LineTotal: lineTotal,
				})
			}

			created = models.POSTransaction{
				ReceiptNo: uuid.NewString(),
				GuestID:   body.GuestID,
				BookingID: body.BookingID,
				Status:    body.Status,
				Total:     total,
				Date:      time.Now(),
				CreatedBy: userID,
				Items:     items,
			}

			return tx.Create(&created).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Satış tamamlanamadı: %v", txErr))
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "pos_transaction",
			EntityID:    created.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("POS satışı: %.2f (%s)", created.Total, created.Status),
			After:       created,
		})

		// Items'ın ürün adlarıyla dönmesi için yeniden yükle
		database.DB.Preload("Items").Preload("Items.Item").First(&created, created.ID)

		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(created))
	}
}

// GET /api/pos/transactions?status=pending&guest_id=4&booking_id=7&from=2025-12-01&to=2025-12-31
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.POSTransaction{}).Preload("Items").Preload("Items.Item")

		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if guestID := c.Query("guest_id"); guestID != "" {
			q = q.Where("guest_id = ?", guestID)
		}
		if bookingID := c.Query("booking_id"); bookingID != "" {
			q = q.Where("booking_id = ?", bookingID)
		}
		if from := c.Query("from"); from != "" {
			if d, err := time.Parse("2006-01-02", from); err == nil {
				q = q.Where("date >= ?", d)
			}
		}
		if to := c.Query("to"); to != "" {
			if d, err := time.Parse("2006-01-02", to); err == nil {
				q = q.Where("date < ?", d.AddDate(0, 0, 1))
			}
		}

		var txs []models.POSTransaction
		if err := q.Order("date desc").Limit(500).Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		res := make([]TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			res = append(res, toTransactionResponse(tx))
		}

		return c.JSON(res)
	}
}

// GET /api/pos/transactions/:id
func GetTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tx models.POSTransaction
		if err := database.DB.Preload("Items").Preload("Items.Item").
			First(&tx, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		return c.JSON(toTransactionResponse(tx))
	}
}

// POST /api/pos/transactions/:id/complete
// Oda hesabındaki (pending) satışı tahsil edildi olarak işaretle
func CompleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tx models.POSTransaction
		if err := database.DB.First(&tx, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		if tx.Status != models.POSStatusPending {
			return fiber.NewError(fiber.StatusConflict, "Sadece bekleyen satış tahsil edilebilir")
		}

		tx.Status = models.POSStatusCompleted
		if err := database.DB.Save(&tx).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış güncellenemedi")
		}

		return c.JSON(fiber.Map{"id": tx.ID, "status": tx.Status})
	}
}

// POST /api/pos/transactions/:id/void
// Bekleyen satışı iptal et: checkout'ta düşülen stok partilere geri yüklenir
func VoidTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var posTx models.POSTransaction
		if err := database.DB.Preload("Items").First(&posTx, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		if posTx.Status != models.POSStatusPending {
			return fiber.NewError(fiber.StatusConflict, "Sadece bekleyen satış iptal edilebilir")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			for _, item := range posTx.Items {
				if item.LotID != nil {
					if err := tx.Model(&models.InventoryLot{}).Where("id = ?", *item.LotID).
						Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
						return err
					}
				} else {
					if err := tx.Model(&models.InventoryItem{}).Where("id = ?", item.ItemID).
						Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
						return err
					}
				}
			}
			return tx.Model(&models.POSTransaction{}).Where("id = ?", posTx.ID).
				Update("status", models.POSStatusVoid).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış iptal edilemedi")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "pos_transaction",
				EntityID:    posTx.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("POS satışı iptal edildi: fiş %s", posTx.ReceiptNo),
				Before:      posTx,
			})
		}

		return c.JSON(fiber.Map{"id": posTx.ID, "status": models.POSStatusVoid})
	}
}
