package bookings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"otel-backend/internal/auth"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Guest{},
		&models.Booking{},
		&models.Payment{},
		&models.POSTransaction{},
		&models.POSTransactionItem{},
		&models.InventoryItem{},
		&models.RoomAssessment{},
		&models.RefundRequest{},
		&models.HousekeepingTask{},
		&models.AuditLog{},
	))

	database.DB = db
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()

	// Test kullanıcısı
	user := models.User{Name: "Test Resepsiyon", Email: "test@otel.local", PasswordHash: "x", Role: models.RoleReceptionist, IsActive: true}
	require.NoError(t, database.DB.Create(&user).Error)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		return c.Next()
	})

	app.Post("/api/bookings", CreateBookingHandler())
	app.Get("/api/bookings/:id", GetBookingHandler())
	app.Put("/api/bookings/:id", UpdateBookingHandler())
	app.Post("/api/bookings/:id/check-in", CheckInHandler())
	app.Post("/api/bookings/:id/check-out", CheckOutHandler())
	app.Post("/api/bookings/:id/cancel", CancelBookingHandler())
	app.Post("/api/bookings/:id/payments", CreatePaymentHandler())

	return app
}

func seedGuestAndRoom(t *testing.T) (models.Guest, models.Room) {
	t.Helper()

	guest := models.Guest{FullName: "Ayşe Yılmaz", Phone: "5550001122"}
	require.NoError(t, database.DB.Create(&guest).Error)

	room := models.Room{Number: "101", Type: "standard", Floor: 1, Capacity: 2, NightlyPrice: 1000, Status: models.RoomStatusAvailable}
	require.NoError(t, database.DB.Create(&room).Error)

	return guest, room
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestCreateBookingComputesTotalFromNights(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	guest, room := seedGuestAndRoom(t)

	resp := doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-04",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got BookingResponse
	decodeBody(t, resp, &got)

	assert.Equal(t, 3, got.Nights)
	assert.Equal(t, 3000.0, got.TotalAmount) // 3 gece x 1000
	assert.Equal(t, "confirmed", got.Status)
	assert.NotEmpty(t, got.Code)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	guest, room := seedGuestAndRoom(t)

	resp := doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-05",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Çakışan tarih aralığı
	resp = doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-03",
		"check_out_date": "2026-09-07",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Sırt sırta rezervasyon (çıkış günü = giriş günü) çakışma değildir
	resp = doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-05",
		"check_out_date": "2026-09-08",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCancelledBookingFreesDates(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	guest, room := seedGuestAndRoom(t)

	resp := doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-05",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var first BookingResponse
	decodeBody(t, resp, &first)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/cancel", first.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-02",
		"check_out_date": "2026-09-04",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCheckInMarksRoomOccupied(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	guest, room := seedGuestAndRoom(t)

	resp := doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-03",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var booking BookingResponse
	decodeBody(t, resp, &booking)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/check-in", booking.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dbRoom models.Room
	require.NoError(t, database.DB.First(&dbRoom, room.ID).Error)
	assert.Equal(t, models.RoomStatusOccupied, dbRoom.Status)

	// İkinci check-in denemesi reddedilir
	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/check-in", booking.ID), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCheckOutBlockedUntilBalancePaid(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	guest, room := seedGuestAndRoom(t)

	resp := doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-03",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var booking BookingResponse
	decodeBody(t, resp, &booking)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/check-in", booking.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Bakiye açıkken check-out reddedilir, bakiye özeti döner
	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/check-out", booking.ID), nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var conflictBody struct {
		Error   string `json:"error"`
		Billing struct {
			BalanceDue float64 `json:"balance_due"`
		} `json:"billing"`
	}
	decodeBody(t, resp, &conflictBody)
	assert.Equal(t, 2000.0, conflictBody.Billing.BalanceDue)

	// Ödeme alınınca check-out geçer
	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/payments", booking.ID), fiber.Map{
		"amount": 2000.0,
		"method": "cash",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/check-out", booking.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Oda temizliğe geçer ve otomatik temizlik görevi açılır
	var dbRoom models.Room
	require.NoError(t, database.DB.First(&dbRoom, room.ID).Error)
	assert.Equal(t, models.RoomStatusCleaning, dbRoom.Status)

	var taskCount int64
	database.DB.Model(&models.HousekeepingTask{}).
		Where("room_id = ? AND type = ? AND status = ?", room.ID, models.TaskTypeCleaning, models.TaskStatusOpen).
		Count(&taskCount)
	assert.Equal(t, int64(1), taskCount)
}

func TestForcedCheckOutWithOpenBalance(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	guest, room := seedGuestAndRoom(t)

	resp := doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-03",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var booking BookingResponse
	decodeBody(t, resp, &booking)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/check-in", booking.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/check-out?force=true", booking.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Forced bool `json:"forced"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Forced)
}

func TestPaymentBumpsPaidAmount(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	guest, room := seedGuestAndRoom(t)

	resp := doJSON(t, app, "POST", "/api/bookings", fiber.Map{
		"guest_id":       guest.ID,
		"room_id":        room.ID,
		"check_in_date":  "2026-09-01",
		"check_out_date": "2026-09-03",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var booking BookingResponse
	decodeBody(t, resp, &booking)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/payments", booking.ID), fiber.Map{
		"amount": 500.0,
		"method": "card",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/payments", booking.ID), fiber.Map{
		"amount": 300.0,
		"method": "cash",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var dbBooking models.Booking
	require.NoError(t, database.DB.First(&dbBooking, booking.ID).Error)
	assert.Equal(t, 800.0, dbBooking.PaidAmount)

	// Geçersiz yöntem reddedilir
	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/bookings/%d/payments", booking.ID), fiber.Map{
		"amount": 100.0,
		"method": "bitcoin",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
