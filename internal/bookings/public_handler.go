package bookings

import (
	"strings"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Public rezervasyon sayfası endpoint'leri (auth gerektirmez)

type RoomTypeAvailability struct {
	Type           string  `json:"type"`
	AvailableCount int     `json:"available_count"`
	MinPrice       float64 `json:"min_price"`
	MaxCapacity    int     `json:"max_capacity"`
}

type PublicBookingRequest struct {
	RoomType     string `json:"room_type"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Note         string `json:"note"`
}

// GET /api/public/availability?from=2025-12-09&to=2025-12-12
func PublicAvailabilityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseDateRange(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}

		var rooms []models.Room
		if err := database.DB.Where("status <> ?", models.RoomStatusOutOfService).
			Find(&rooms).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müsaitlik sorgulanamadı")
		}

		byType := make(map[string]*RoomTypeAvailability)
		for _, room := range rooms {
			if !roomAvailable(database.DB, room.ID, from, to, 0) {
				continue
			}

			entry, ok := byType[room.Type]
			if !ok {
				entry = &RoomTypeAvailability{Type: room.Type, MinPrice: room.NightlyPrice}
				byType[room.Type] = entry
			}
			entry.AvailableCount++
			if room.NightlyPrice < entry.MinPrice {
				entry.MinPrice = room.NightlyPrice
			}
			if room.Capacity > entry.MaxCapacity {
				entry.MaxCapacity = room.Capacity
			}
		}

		res := make([]RoomTypeAvailability, 0, len(byType))
		for _, entry := range byType {
			res = append(res, *entry)
		}

		return c.JSON(fiber.Map{
			"from":       from.Format("2006-01-02"),
			"to":         to.Format("2006-01-02"),
			"room_types": res,
		})
	}
}

// POST /api/public/bookings
// Web sitesinden gelen rezervasyon: pending olarak açılır, resepsiyon onaylar
func PublicCreateBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PublicBookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.FullName = strings.TrimSpace(body.FullName)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.FullName == "" || body.Email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve email zorunlu")
		}
		if body.RoomType == "" {
			return fiber.NewError(fiber.StatusBadRequest, "room_type zorunlu")
		}

		checkIn, checkOut, err := parseDateRange(body.CheckInDate, body.CheckOutDate)
		if err != nil {
			return err
		}

		// İstenen tipte müsait ilk odayı bul
		var rooms []models.Room
		if err := database.DB.Where("type = ? AND status <> ?", body.RoomType, models.RoomStatusOutOfService).
			Order("nightly_price asc").Find(&rooms).Error; err != nil || len(rooms) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Bu tipte oda bulunamadı")
		}

		var selected *models.Room
		for i := range rooms {
			if roomAvailable(database.DB, rooms[i].ID, checkIn, checkOut, 0) {
				selected = &rooms[i]
				break
			}
		}
		if selected == nil {
			return fiber.NewError(fiber.StatusConflict, "Bu tarihlerde bu tipte müsait oda yok")
		}

		// Aynı email varsa mevcut misafiri kullan
		var guest models.Guest
		if err := database.DB.Where("email = ?", body.Email).First(&guest).Error; err != nil {
			guest = models.Guest{
				FullName: body.FullName,
				Email:    body.Email,
				Phone:    strings.TrimSpace(body.Phone),
			}
			if err := database.DB.Create(&guest).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Misafir kaydedilemedi")
			}
		}

		nights := int(checkOut.Sub(checkIn).Hours() / 24)
		booking := models.Booking{
			Code:         uuid.NewString(),
			GuestID:      guest.ID,
			RoomID:       selected.ID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			TotalAmount:  float64(nights) * selected.NightlyPrice,
			Status:       models.BookingStatusPending,
			Source:       models.BookingSourceWeb,
			Note:         body.Note,
		}

		if err := database.DB.Create(&booking).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"code":           booking.Code,
			"room_type":      selected.Type,
			"check_in_date":  checkIn.Format("2006-01-02"),
			"check_out_date": checkOut.Format("2006-01-02"),
			"total_amount":   booking.TotalAmount,
			"status":         booking.Status,
		})
	}
}

// GET /api/public/bookings/:code
// Onay koduyla rezervasyon sorgulama
func PublicBookingLookupHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")

		var booking models.Booking
		if err := database.DB.Preload("Room").First(&booking, "code = ?", code).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		return c.JSON(fiber.Map{
			"code":           booking.Code,
			"room_type":      booking.Room.Type,
			"check_in_date":  booking.CheckInDate.Format("2006-01-02"),
			"check_out_date": booking.CheckOutDate.Format("2006-01-02"),
			"total_amount":   booking.TotalAmount,
			"status":         booking.Status,
		})
	}
}
