package billing

import (
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ForBooking: Rezervasyonun güncel bakiye özetini hesaplar. POS harcamaları,
// en son oda kontrolü ve onaylanmış iadeler veritabanından çekilir.
func ForBooking(booking models.Booking) Snapshot {
	var posTxs []models.POSTransaction
	database.DB.Where("booking_id = ?", booking.ID).Find(&posTxs)

	var latestAssessment *models.RoomAssessment
	var assessment models.RoomAssessment
	if err := database.DB.Where("booking_id = ?", booking.ID).
		Order("created_at desc").First(&assessment).Error; err == nil {
		latestAssessment = &assessment
	}

	var refunded float64
	database.DB.Model(&models.RefundRequest{}).
		Where("booking_id = ? AND status = ?", booking.ID, models.RefundStatusApproved).
		Select("COALESCE(SUM(amount), 0)").Scan(&refunded)

	return Aggregate(booking, posTxs, latestAssessment, refunded)
}

// GET /api/bookings/:id/billing
func BookingBillingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		return c.JSON(ForBooking(booking))
	}
}

// GET /api/guests/:id/billing
// Misafir kartı: aktif (veya en son) rezervasyonun bakiye özeti
func GuestBillingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var guest models.Guest
		if err := database.DB.First(&guest, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Misafir bulunamadı")
		}

		// Önce aktif konaklama, yoksa en son rezervasyon
		var booking models.Booking
		err := database.DB.Where("guest_id = ? AND status = ?", guest.ID, models.BookingStatusCheckedIn).
			Order("check_in_date desc").First(&booking).Error
		if err != nil {
			if err := database.DB.Where("guest_id = ?", guest.ID).
				Order("check_in_date desc").First(&booking).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Misafirin rezervasyonu yok")
			}
		}

		snap := ForBooking(booking)

		return c.JSON(fiber.Map{
			"guest_id":     guest.ID,
			"guest_name":   guest.FullName,
			"booking_id":   booking.ID,
			"booking_code": booking.Code,
			"billing":      snap,
		})
	}
}
