package guests

import (
	"strings"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type GuestResponse struct {
	ID          uint   `json:"id"`
	FullName    string `json:"full_name"`
	NationalID  string `json:"national_id"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Nationality string `json:"nationality"`
	Note        string `json:"note"`
	CreatedAt   string `json:"created_at"`
}

type CreateGuestRequest struct {
	FullName    string `json:"full_name"`
	NationalID  string `json:"national_id"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Nationality string `json:"nationality"`
	Note        string `json:"note"`
}

type UpdateGuestRequest struct {
	FullName    *string `json:"full_name"`
	NationalID  *string `json:"national_id"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Nationality *string `json:"nationality"`
	Note        *string `json:"note"`
}

func toGuestResponse(g models.Guest) GuestResponse {
	return GuestResponse{
		ID:          g.ID,
		FullName:    g.FullName,
		NationalID:  g.NationalID,
		Phone:       g.Phone,
		Email:       g.Email,
		Nationality: g.Nationality,
		Note:        g.Note,
		CreatedAt:   g.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/guests
func CreateGuestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateGuestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.FullName = strings.TrimSpace(body.FullName)
		if body.FullName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Misafir adı boş olamaz")
		}

		guest := models.Guest{
			FullName:    body.FullName,
			NationalID:  strings.TrimSpace(body.NationalID),
			Phone:       strings.TrimSpace(body.Phone),
			Email:       strings.TrimSpace(strings.ToLower(body.Email)),
			Nationality: body.Nationality,
			Note:        body.Note,
		}

		if err := database.DB.Create(&guest).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Misafir oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toGuestResponse(guest))
	}
}

// GET /api/guests?search=ahmet
// search hem isim hem kimlik/pasaport numarasında arar
func ListGuestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Guest{})

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(full_name) LIKE ? OR national_id LIKE ?", like, "%"+search+"%")
		}

		var guests []models.Guest
		if err := q.Order("full_name asc").Limit(200).Find(&guests).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Misafirler listelenemedi")
		}

		res := make([]GuestResponse, 0, len(guests))
		for _, g := range guests {
			res = append(res, toGuestResponse(g))
		}

		return c.JSON(res)
	}
}

// GET /api/guests/:id
func GetGuestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var guest models.Guest
		if err := database.DB.First(&guest, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Misafir bulunamadı")
		}

		return c.JSON(toGuestResponse(guest))
	}
}

// PUT /api/guests/:id
func UpdateGuestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var guest models.Guest
		if err := database.DB.First(&guest, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Misafir bulunamadı")
		}

		var body UpdateGuestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.FullName != nil {
			name := strings.TrimSpace(*body.FullName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Misafir adı boş olamaz")
			}
			guest.FullName = name
		}
		if body.NationalID != nil {
			guest.NationalID = strings.TrimSpace(*body.NationalID)
		}
		if body.Phone != nil {
			guest.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Email != nil {
			guest.Email = strings.TrimSpace(strings.ToLower(*body.Email))
		}
		if body.Nationality != nil {
			guest.Nationality = *body.Nationality
		}
		if body.Note != nil {
			guest.Note = *body.Note
		}

		if err := database.DB.Save(&guest).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Misafir güncellenemedi")
		}

		return c.JSON(toGuestResponse(guest))
	}
}

// DELETE /api/guests/:id
func DeleteGuestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var guest models.Guest
		if err := database.DB.First(&guest, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Misafir bulunamadı")
		}

		var bookingCount int64
		database.DB.Model(&models.Booking{}).Where("guest_id = ?", guest.ID).Count(&bookingCount)
		if bookingCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Rezervasyonu olan misafir silinemez")
		}

		if err := database.DB.Delete(&guest).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Misafir silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Misafir silindi"})
	}
}
