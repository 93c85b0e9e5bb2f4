package housekeeping

import (
	"fmt"
	"strconv"

	"otel-backend/internal/audit"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateAssessmentRequest struct {
	BookingID   uint    `json:"booking_id"`
	DamageCost  float64 `json:"damage_cost"`
	MissingCost float64 `json:"missing_cost"`
	Note        string  `json:"note"`
}

// POST /api/housekeeping/assessments
// Check-out sonrası oda kontrolü. Aynı rezervasyona birden fazla kayıt
// girilebilir, misafir bakiyesine en son kayıt yansır.
func CreateAssessmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var req CreateAssessmentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if req.DamageCost < 0 || req.MissingCost < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Maliyet negatif olamaz")
		}

		var booking models.Booking
		if err := database.DB.First(&booking, req.BookingID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}
		if booking.Status != models.BookingStatusCheckedIn && booking.Status != models.BookingStatusCheckedOut {
			return fiber.NewError(fiber.StatusBadRequest, "Oda kontrolü sadece konaklayan veya çıkış yapmış rezervasyonlar için girilebilir")
		}

		assessment := models.RoomAssessment{
			BookingID:   req.BookingID,
			DamageCost:  req.DamageCost,
			MissingCost: req.MissingCost,
			Note:        req.Note,
		}
		if err := database.DB.Create(&assessment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oda kontrolü kaydedilemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "room_assessment",
			EntityID:    assessment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Oda kontrolü: rezervasyon #%d, hasar %.2f + eksik %.2f", booking.ID, req.DamageCost, req.MissingCost),
			After:       assessment,
		})

		return c.Status(fiber.StatusCreated).JSON(assessment)
	}
}

// GET /api/housekeeping/assessments?booking_id=5
func ListAssessmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Model(&models.RoomAssessment{})
		if bookingID := c.Query("booking_id"); bookingID != "" {
			query = query.Where("booking_id = ?", bookingID)
		}

		var assessments []models.RoomAssessment
		if err := query.Order("created_at desc").Find(&assessments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar yüklenemedi")
		}
		return c.JSON(assessments)
	}
}

// PUT /api/housekeeping/assessments/:id
func UpdateAssessmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kayıt ID")
		}

		var assessment models.RoomAssessment
		if err := database.DB.First(&assessment, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kayıt bulunamadı")
		}
		before := assessment

		var req CreateAssessmentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.DamageCost < 0 || req.MissingCost < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Maliyet negatif olamaz")
		}

		assessment.DamageCost = req.DamageCost
		assessment.MissingCost = req.MissingCost
		assessment.Note = req.Note

		if err := database.DB.Save(&assessment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "room_assessment",
			EntityID:    assessment.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Oda kontrolü güncellendi: #%d", assessment.ID),
			Before:      before,
			After:       assessment,
		})
		return c.JSON(assessment)
	}
}

// DELETE /api/housekeeping/assessments/:id
func DeleteAssessmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kayıt ID")
		}

		var assessment models.RoomAssessment
		if err := database.DB.First(&assessment, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kayıt bulunamadı")
		}

		if err := database.DB.Delete(&assessment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "room_assessment",
			EntityID:    assessment.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Oda kontrolü silindi: #%d", assessment.ID),
			Before:      assessment,
		})
		return c.JSON(fiber.Map{"message": "Kayıt silindi"})
	}
}
