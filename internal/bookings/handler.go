package bookings

import (
	"fmt"
	"time"

	"otel-backend/internal/audit"
	"otel-backend/internal/auth"
	"otel-backend/internal/billing"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateBookingRequest struct {
	GuestID      uint     `json:"guest_id"`
	RoomID       uint     `json:"room_id"`
	CheckInDate  string   `json:"check_in_date"`  // "2025-12-09"
	CheckOutDate string   `json:"check_out_date"` // "2025-12-12"
	TotalAmount  *float64 `json:"total_amount"`   // boşsa gece sayısı x gecelik fiyat
	Note         string   `json:"note"`
}

type UpdateBookingRequest struct {
	RoomID       *uint    `json:"room_id"`
	CheckInDate  *string  `json:"check_in_date"`
	CheckOutDate *string  `json:"check_out_date"`
	TotalAmount  *float64 `json:"total_amount"`
	Note         *string  `json:"note"`
}

type BookingResponse struct {
	ID           uint    `json:"id"`
	Code         string  `json:"code"`
	GuestID      uint    `json:"guest_id"`
	GuestName    string  `json:"guest_name"`
	RoomID       uint    `json:"room_id"`
	RoomNumber   string  `json:"room_number"`
	CheckInDate  string  `json:"check_in_date"`
	CheckOutDate string  `json:"check_out_date"`
	Nights       int     `json:"nights"`
	TotalAmount  float64 `json:"total_amount"`
	PaidAmount   float64 `json:"paid_amount"`
	Status       string  `json:"status"`
	Source       string  `json:"source"`
	Note         string  `json:"note"`
	CreatedAt    string  `json:"created_at"`
}

// Yardımcı: Kullanıcı bilgilerini al (audit log için)
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

func toBookingResponse(b models.Booking) BookingResponse {
	nights := int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
	return BookingResponse{
		ID:           b.ID,
		Code:         b.Code,
		GuestID:      b.GuestID,
		GuestName:    b.Guest.FullName,
		RoomID:       b.RoomID,
		RoomNumber:   b.Room.Number,
		CheckInDate:  b.CheckInDate.Format("2006-01-02"),
		CheckOutDate: b.CheckOutDate.Format("2006-01-02"),
		Nights:       nights,
		TotalAmount:  b.TotalAmount,
		PaidAmount:   b.PaidAmount,
		Status:       string(b.Status),
		Source:       string(b.Source),
		Note:         b.Note,
		CreatedAt:    b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseDateRange(inStr, outStr string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse("2006-01-02", inStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "check_in_date formatı 'YYYY-MM-DD' olmalı")
	}
	checkOut, err := time.Parse("2006-01-02", outStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "check_out_date formatı 'YYYY-MM-DD' olmalı")
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Çıkış tarihi giriş tarihinden sonra olmalı")
	}
	return checkIn, checkOut, nil
}

// Yardımcı: Oda verilen tarih aralığında müsait mi? (excludeBookingID güncelleme için)
func roomAvailable(db *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeBookingID uint) bool {
	activeStatuses := []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusCheckedIn,
	}

	var count int64
	q := db.Model(&models.Booking{}).
		Where("room_id = ? AND status IN ?", roomID, activeStatuses).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	q.Count(&count)

	return count == 0
}

// POST /api/bookings
func CreateBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.GuestID == 0 || body.RoomID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "guest_id ve room_id zorunlu")
		}

		checkIn, checkOut, err := parseDateRange(body.CheckInDate, body.CheckOutDate)
		if err != nil {
			return err
		}

		var guest models.Guest
		if err := database.DB.First(&guest, "id = ?", body.GuestID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Misafir bulunamadı")
		}

		var room models.Room
		if err := database.DB.First(&room, "id = ?", body.RoomID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Oda bulunamadı")
		}
		if room.Status == models.RoomStatusOutOfService {
			return fiber.NewError(fiber.StatusConflict, "Oda servis dışı")
		}

		if !roomAvailable(database.DB, room.ID, checkIn, checkOut, 0) {
			return fiber.NewError(fiber.StatusConflict, "Oda bu tarihlerde dolu")
		}

		nights := int(checkOut.Sub(checkIn).Hours() / 24)
		total := float64(nights) * room.NightlyPrice
		if body.TotalAmount != nil {
			if *body.TotalAmount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Tutar 0'dan büyük olmalı")
			}
			total = *body.TotalAmount
		}

		booking := models.Booking{
			Code:         uuid.NewString(),
			GuestID:      guest.ID,
			RoomID:       room.ID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			TotalAmount:  total,
			Status:       models.BookingStatusConfirmed,
			Source:       models.BookingSourceFrontDesk,
			Note:         body.Note,
		}

		if err := database.DB.Create(&booking).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon oluşturulamadı")
		}

		booking.Guest = guest
		booking.Room = room

		// Audit log
		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "booking",
				EntityID:    booking.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Rezervasyon oluşturuldu: %s, oda %s", guest.FullName, room.Number),
				After:       booking,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toBookingResponse(booking))
	}
}

// GET /api/bookings?status=confirmed&guest_id=3&from=2025-12-01&to=2025-12-31
func ListBookingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Booking{}).Preload("Guest").Preload("Room")

		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if guestID := c.Query("guest_id"); guestID != "" {
			q = q.Where("guest_id = ?", guestID)
		}
		if from := c.Query("from"); from != "" {
			if d, err := time.Parse("2006-01-02", from); err == nil {
				q = q.Where("check_in_date >= ?", d)
			}
		}
		if to := c.Query("to"); to != "" {
			if d, err := time.Parse("2006-01-02", to); err == nil {
				q = q.Where("check_in_date <= ?", d)
			}
		}

		var bookings []models.Booking
		if err := q.Order("check_in_date desc").Limit(500).Find(&bookings).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyonlar listelenemedi")
		}

		res := make([]BookingResponse, 0, len(bookings))
		for _, b := range bookings {
			res = append(res, toBookingResponse(b))
		}

		return c.JSON(res)
	}
}

// GET /api/bookings/:id
func GetBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.Preload("Guest").Preload("Room").Preload("Payments").
			First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		res := toBookingResponse(booking)
		return c.JSON(fiber.Map{
			"booking":  res,
			"payments": booking.Payments,
			"billing":  billing.ForBooking(booking),
		})
	}
}

// PUT /api/bookings/:id
func UpdateBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.Preload("Guest").Preload("Room").First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		if booking.Status == models.BookingStatusCheckedOut || booking.Status == models.BookingStatusCancelled {
			return fiber.NewError(fiber.StatusConflict, "Kapanmış rezervasyon güncellenemez")
		}

		var body UpdateBookingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		before := booking

		checkIn := booking.CheckInDate
		checkOut := booking.CheckOutDate
		if body.CheckInDate != nil {
			d, err := time.Parse("2006-01-02", *body.CheckInDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "check_in_date formatı 'YYYY-MM-DD' olmalı")
			}
			checkIn = d
		}
		if body.CheckOutDate != nil {
			d, err := time.Parse("2006-01-02", *body.CheckOutDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "check_out_date formatı 'YYYY-MM-DD' olmalı")
			}
			checkOut = d
		}
		if !checkOut.After(checkIn) {
			return fiber.NewError(fiber.StatusBadRequest, "Çıkış tarihi giriş tarihinden sonra olmalı")
		}

		roomID := booking.RoomID
		if body.RoomID != nil {
			roomID = *body.RoomID
		}

		if roomID != booking.RoomID || !checkIn.Equal(booking.CheckInDate) || !checkOut.Equal(booking.CheckOutDate) {
			var room models.Room
			if err := database.DB.First(&room, "id = ?", roomID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Oda bulunamadı")
			}
			if !roomAvailable(database.DB, roomID, checkIn, checkOut, booking.ID) {
				return fiber.NewError(fiber.StatusConflict, "Oda bu tarihlerde dolu")
			}
			booking.RoomID = roomID
			booking.Room = room
		}

		booking.CheckInDate = checkIn
		booking.CheckOutDate = checkOut
		if body.TotalAmount != nil {
			if *body.TotalAmount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Tutar 0'dan büyük olmalı")
			}
			booking.TotalAmount = *body.TotalAmount
		}
		if body.Note != nil {
			booking.Note = *body.Note
		}

		if err := database.DB.Save(&booking).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon güncellenemedi")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "booking",
				EntityID:    booking.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Rezervasyon güncellendi: #%d", booking.ID),
				Before:      before,
				After:       booking,
			})
		}

		return c.JSON(toBookingResponse(booking))
	}
}

// POST /api/bookings/:id/check-in
func CheckInHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.Preload("Guest").Preload("Room").First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
			return fiber.NewError(fiber.StatusConflict, "Rezervasyon check-in için uygun durumda değil")
		}

		if booking.Room.Status != models.RoomStatusAvailable {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Oda müsait değil (durum: %s)", booking.Room.Status))
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
				Update("status", models.BookingStatusCheckedIn).Error; err != nil {
				return err
			}
			return tx.Model(&models.Room{}).Where("id = ?", booking.RoomID).
				Update("status", models.RoomStatusOccupied).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Check-in yapılamadı")
		}

		booking.Status = models.BookingStatusCheckedIn
		return c.JSON(toBookingResponse(booking))
	}
}

// POST /api/bookings/:id/check-out?force=true
// Bakiye sıfır değilse check-out reddedilir; force=true ile yine de çıkılabilir
func CheckOutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.Preload("Guest").Preload("Room").First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		if booking.Status != models.BookingStatusCheckedIn {
			return fiber.NewError(fiber.StatusConflict, "Rezervasyon check-in durumunda değil")
		}

		snap := billing.ForBooking(booking)
		force := c.Query("force") == "true"
		if snap.BalanceDue > 0 && !force {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "Bakiye kapanmadan check-out yapılamaz",
				"billing": snap,
			})
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
				Update("status", models.BookingStatusCheckedOut).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Room{}).Where("id = ?", booking.RoomID).
				Update("status", models.RoomStatusCleaning).Error; err != nil {
				return err
			}
			// Çıkış sonrası otomatik temizlik görevi aç
			task := models.HousekeepingTask{
				RoomID:      booking.RoomID,
				Type:        models.TaskTypeCleaning,
				Description: fmt.Sprintf("Check-out temizliği (oda %s)", booking.Room.Number),
				Priority:    "high",
				Status:      models.TaskStatusOpen,
			}
			return tx.Create(&task).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Check-out yapılamadı")
		}

		booking.Status = models.BookingStatusCheckedOut
		return c.JSON(fiber.Map{
			"booking": toBookingResponse(booking),
			"billing": snap,
			"forced":  force && snap.BalanceDue > 0,
		})
	}
}

// POST /api/bookings/:id/cancel
func CancelBookingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var booking models.Booking
		if err := database.DB.Preload("Guest").Preload("Room").First(&booking, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Rezervasyon bulunamadı")
		}

		if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
			return fiber.NewError(fiber.StatusConflict, "Sadece bekleyen veya onaylı rezervasyon iptal edilebilir")
		}

		before := booking
		booking.Status = models.BookingStatusCancelled
		if err := database.DB.Save(&booking).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rezervasyon iptal edilemedi")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "booking",
				EntityID:    booking.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Rezervasyon iptal edildi: #%d", booking.ID),
				Before:      before,
				After:       booking,
			})
		}

		return c.JSON(toBookingResponse(booking))
	}
}
