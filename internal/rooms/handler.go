package rooms

import (
	"strings"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RoomResponse struct {
	ID           uint    `json:"id"`
	Number       string  `json:"number"`
	Type         string  `json:"type"`
	Floor        int     `json:"floor"`
	Capacity     int     `json:"capacity"`
	NightlyPrice float64 `json:"nightly_price"`
	Status       string  `json:"status"`
	Description  string  `json:"description"`
	CreatedAt    string  `json:"created_at"`
}

type CreateRoomRequest struct {
	Number       string  `json:"number"`
	Type         string  `json:"type"`
	Floor        int     `json:"floor"`
	Capacity     *int    `json:"capacity"` // opsiyonel, default 2
	NightlyPrice float64 `json:"nightly_price"`
	Description  string  `json:"description"`
}

type UpdateRoomRequest struct {
	Number       *string  `json:"number"`
	Type         *string  `json:"type"`
	Floor        *int     `json:"floor"`
	Capacity     *int     `json:"capacity"`
	NightlyPrice *float64 `json:"nightly_price"`
	Description  *string  `json:"description"`
}

type UpdateRoomStatusRequest struct {
	Status models.RoomStatus `json:"status"`
}

func toRoomResponse(r models.Room) RoomResponse {
	return RoomResponse{
		ID:           r.ID,
		Number:       r.Number,
		Type:         r.Type,
		Floor:        r.Floor,
		Capacity:     r.Capacity,
		NightlyPrice: r.NightlyPrice,
		Status:       string(r.Status),
		Description:  r.Description,
		CreatedAt:    r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// ODA CRUD
// ----------------------------------------

// POST /api/rooms
func CreateRoomHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRoomRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Number = strings.TrimSpace(body.Number)
		if body.Number == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Oda numarası boş olamaz")
		}
		if body.Type == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Oda tipi zorunlu")
		}
		if body.NightlyPrice <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Gecelik fiyat 0'dan büyük olmalı")
		}

		room := models.Room{
			Number:       body.Number,
			Type:         body.Type,
			Floor:        body.Floor,
			Capacity:     2,
			NightlyPrice: body.NightlyPrice,
			Status:       models.RoomStatusAvailable,
			Description:  body.Description,
		}
		if body.Capacity != nil && *body.Capacity > 0 {
			room.Capacity = *body.Capacity
		}

		if err := database.DB.Create(&room).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oda oluşturulamadı (numara kullanımda olabilir)")
		}

		return c.Status(fiber.StatusCreated).JSON(toRoomResponse(room))
	}
}

// GET /api/rooms?status=available&type=deluxe&floor=2
func ListRoomsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Room{})

		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if roomType := c.Query("type"); roomType != "" {
			q = q.Where("type = ?", roomType)
		}
		if floor := c.Query("floor"); floor != "" {
			q = q.Where("floor = ?", floor)
		}

		var rooms []models.Room
		if err := q.Order("number asc").Find(&rooms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Odalar listelenemedi")
		}

		res := make([]RoomResponse, 0, len(rooms))
		for _, r := range rooms {
			res = append(res, toRoomResponse(r))
		}

		return c.JSON(res)
	}
}

// GET /api/rooms/:id
func GetRoomHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var room models.Room
		if err := database.DB.First(&room, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oda bulunamadı")
		}

		return c.JSON(toRoomResponse(room))
	}
}

// PUT /api/rooms/:id
func UpdateRoomHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var room models.Room
		if err := database.DB.First(&room, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oda bulunamadı")
		}

		var body UpdateRoomRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Number != nil {
			n := strings.TrimSpace(*body.Number)
			if n == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Oda numarası boş olamaz")
			}
			room.Number = n
		}
		if body.Type != nil {
			room.Type = *body.Type
		}
		if body.Floor != nil {
			room.Floor = *body.Floor
		}
		if body.Capacity != nil && *body.Capacity > 0 {
			room.Capacity = *body.Capacity
		}
		if body.NightlyPrice != nil {
			if *body.NightlyPrice <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Gecelik fiyat 0'dan büyük olmalı")
			}
			room.NightlyPrice = *body.NightlyPrice
		}
		if body.Description != nil {
			room.Description = *body.Description
		}

		if err := database.DB.Save(&room).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oda güncellenemedi")
		}

		return c.JSON(toRoomResponse(room))
	}
}

// PUT /api/rooms/:id/status
func UpdateRoomStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var room models.Room
		if err := database.DB.First(&room, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oda bulunamadı")
		}

		var body UpdateRoomStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		switch body.Status {
		case models.RoomStatusAvailable, models.RoomStatusOccupied, models.RoomStatusCleaning,
			models.RoomStatusMaintenance, models.RoomStatusOutOfService:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz oda durumu")
		}

		// Dolu odayı elle müsait yapmaya izin verme, check-out üzerinden yürümeli
		if room.Status == models.RoomStatusOccupied && body.Status == models.RoomStatusAvailable {
			var activeCount int64
			database.DB.Model(&models.Booking{}).
				Where("room_id = ? AND status = ?", room.ID, models.BookingStatusCheckedIn).
				Count(&activeCount)
			if activeCount > 0 {
				return fiber.NewError(fiber.StatusConflict, "Odada aktif konaklama var, önce check-out yapılmalı")
			}
		}

		room.Status = body.Status
		if err := database.DB.Save(&room).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oda durumu güncellenemedi")
		}

		return c.JSON(toRoomResponse(room))
	}
}

// DELETE /api/rooms/:id
func DeleteRoomHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var room models.Room
		if err := database.DB.First(&room, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oda bulunamadı")
		}

		var bookingCount int64
		database.DB.Model(&models.Booking{}).Where("room_id = ?", room.ID).Count(&bookingCount)
		if bookingCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Rezervasyonu olan oda silinemez")
		}

		if err := database.DB.Delete(&room).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oda silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Oda silindi"})
	}
}
