package bookings

import (
	"fmt"
	"time"

	"otel-backend/internal/audit"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreatePaymentRequest struct {
	Amount      float64              `json:"amount"`
	Method      models.PaymentMethod `json:"method"` // "cash" | "card" | "transfer"
	Date        *string              `json:"date"`   // boşsa bugün
	Description string               `json:"description"`
}

type PaymentResponse struct {
	ID          uint    `json:"id"`
	BookingID   uint    `json:"booking_id"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"method"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// POST /api/bookings/:id/payments
// Ödeme kaydı + booking.paid_amount güncellemesi tek transaction'da
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		if booking.Status == models.BookingStatusCancelled {
			return fiber.NewError(fiber.StatusConflict, "İptal edilmiş rezervasyona ödeme alınamaz")
		}

		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar 0'dan büyük olmalı")
		}

		switch body.Method {
		case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodTransfer:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "method 'cash', 'card' veya 'transfer' olmalı")
		}

		date := time.Now()
		if body.Date != nil && *body.Date != "" {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			date = d
		}

		payment := models.Payment{
			BookingID:   booking.ID,
			Amount:      body.Amount,
			Method:      body.Method,
			Date:        date,
			Description: body.Description,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			return tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
				Update("paid_amount", gorm.Expr("paid_amount + ?", body.Amount)).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödeme kaydedilemedi")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Ödeme alındı: %.2f (%s), rezervasyon #%d", body.Amount, body.Method, booking.ID),
				After:       payment,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(PaymentResponse{
			ID:          payment.ID,
			BookingID:   payment.BookingID,
			Amount:      payment.Amount,
			Method:      string(payment.Method),
			Date:        payment.Date.Format("2006-01-02"),
			Description: payment.Description,
		})
	}
}

// GET /api/bookings/:id/payments
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		var payments []models.Payment
		if err := database.DB.Where("booking_id = ?", booking.ID).
			Order("date asc").Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödemeler listelenemedi")
		}

		res := make([]PaymentResponse, 0, len(payments))
		for _, p := range payments {
			res = append(res, PaymentResponse{
				ID:          p.ID,
				BookingID:   p.BookingID,
				Amount:      p.Amount,
				Method:      string(p.Method),
				Date:        p.Date.Format("2006-01-02"),
				Description: p.Description,
			})
		}

		return c.JSON(res)
	}
}
