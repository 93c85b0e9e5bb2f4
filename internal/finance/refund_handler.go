package finance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"otel-backend/internal/audit"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateRefundRequest struct {
	BookingID uint    `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
}

// POST /api/refunds
// İade talebi oluşturur. Sadece onaylanan talepler misafir bakiyesine yansır.
func CreateRefundHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var body CreateRefundRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount > 0 olmalı")
		}
		body.Reason = strings.TrimSpace(body.Reason)
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "reason zorunlu")
		}

		var booking models.Booking
		if err := database.DB.First(&booking, body.BookingID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		refund := models.RefundRequest{
			BookingID: body.BookingID,
			Amount:    body.Amount,
			Reason:    body.Reason,
			Status:    models.RefundStatusRequested,
		}
		if err := database.DB.Create(&refund).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İade talebi oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "refund_request",
			EntityID:    refund.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("İade talebi: rezervasyon #%d, %.2f TL", booking.ID, refund.Amount),
			After:       refund,
		})

		return c.Status(fiber.StatusCreated).JSON(refund)
	}
}

// GET /api/refunds?status=requested&booking_id=3
func ListRefundsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Booking").Preload("Booking.Guest").Model(&models.RefundRequest{})

		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if bookingID := c.Query("booking_id"); bookingID != "" {
			query = query.Where("booking_id = ?", bookingID)
		}

		var refunds []models.RefundRequest
		if err := query.Order("created_at desc").Find(&refunds).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İade talepleri listelenemedi")
		}
		return c.JSON(refunds)
	}
}

// PATCH /api/admin/refunds/:id/decision  body: {"decision": "approved" | "rejected"}
// Sadece admin. Karar verilmiş talep tekrar değiştirilemez.
func DecideRefundHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}

		var body struct {
			Decision string `json:"decision"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		decision := models.RefundStatus(body.Decision)
		if decision != models.RefundStatusApproved && decision != models.RefundStatusRejected {
			return fiber.NewError(fiber.StatusBadRequest, "decision 'approved' veya 'rejected' olmalı")
		}

		var refund models.RefundRequest
		if err := database.DB.First(&refund, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İade talebi bulunamadı")
		}
		if refund.Status != models.RefundStatusRequested {
			return fiber.NewError(fiber.StatusBadRequest, "Bu talep için zaten karar verilmiş")
		}

		before := refund
		now := time.Now()
		refund.Status = decision
		refund.DecidedByID = &userID
		refund.DecidedAt = &now

		if err := database.DB.Save(&refund).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Karar kaydedilemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "refund_request",
			EntityID:    refund.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("İade talebi kararı: #%d -> %s", refund.ID, decision),
			Before:      before,
			After:       refund,
		})

		return c.JSON(refund)
	}
}
