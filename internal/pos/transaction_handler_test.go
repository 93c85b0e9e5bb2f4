package pos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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
		&models.Guest{},
		&models.Room{},
		&models.Booking{},
		&models.InventoryItem{},
		&models.InventoryLot{},
		&models.POSTransaction{},
		&models.POSTransactionItem{},
		&models.AuditLog{},
	))

	database.DB = db
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()

	user := models.User{Name: "Test Kasiyer", Email: "kasiyer@otel.local", PasswordHash: "x", Role: models.RoleCashier, IsActive: true}
	require.NoError(t, database.DB.Create(&user).Error)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		return c.Next()
	})

	app.Post("/api/pos/checkout", CheckoutHandler())
	app.Post("/api/pos/transactions/:id/complete", CompleteTransactionHandler())
	app.Post("/api/pos/transactions/:id/void", VoidTransactionHandler())

	return app
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

func seedLotItem(t *testing.T, qty float64) (models.InventoryItem, models.InventoryLot) {
	t.Helper()

	item := models.InventoryItem{Name: "Su 0.5L", Unit: "şişe", Category: "minibar", SalePrice: 30, TracksLots: true}
	require.NoError(t, database.DB.Create(&item).Error)

	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	lot := models.InventoryLot{ItemID: item.ID, Brand: "Kaynak", ExpiryDate: &expiry, Quantity: qty, UnitCost: 10}
	require.NoError(t, database.DB.Create(&lot).Error)

	return item, lot
}

func TestCheckoutDecrementsLotStock(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	item, lot := seedLotItem(t, 10)

	resp := doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status": "completed",
		"lines": []fiber.Map{
			{"item_id": item.ID, "lot_id": lot.ID, "quantity": 4},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 120.0, got.Total) // 4 x 30 (satış fiyatı)
	assert.NotEmpty(t, got.ReceiptNo)

	var dbLot models.InventoryLot
	require.NoError(t, database.DB.First(&dbLot, lot.ID).Error)
	assert.Equal(t, 6.0, dbLot.Quantity)
}

func TestCheckoutRejectsInsufficientStockWithoutPartialCommit(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	item, lot := seedLotItem(t, 3)

	flatItem := models.InventoryItem{Name: "Çikolata", Unit: "adet", SalePrice: 50, TracksLots: false, StockQuantity: 20}
	require.NoError(t, database.DB.Create(&flatItem).Error)

	resp := doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status": "completed",
		"lines": []fiber.Map{
			{"item_id": flatItem.ID, "quantity": 5},
			{"item_id": item.ID, "lot_id": lot.ID, "quantity": 10}, // partide sadece 3 var
		},
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Hiçbir düşüm kalıcı olmamalı
	var dbLot models.InventoryLot
	require.NoError(t, database.DB.First(&dbLot, lot.ID).Error)
	assert.Equal(t, 3.0, dbLot.Quantity)

	var dbFlat models.InventoryItem
	require.NoError(t, database.DB.First(&dbFlat, flatItem.ID).Error)
	assert.Equal(t, 20.0, dbFlat.StockQuantity)

	var txCount int64
	database.DB.Model(&models.POSTransaction{}).Count(&txCount)
	assert.Equal(t, int64(0), txCount)
}

func TestCheckoutRequiresLotForLotTrackedItems(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	item, _ := seedLotItem(t, 10)

	resp := doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status": "completed",
		"lines": []fiber.Map{
			{"item_id": item.ID, "quantity": 2}, // lot_id yok
		},
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestPendingCheckoutRequiresActiveStay(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	item, lot := seedLotItem(t, 10)

	// booking_id olmadan pending reddedilir
	resp := doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status": "pending",
		"lines": []fiber.Map{
			{"item_id": item.ID, "lot_id": lot.ID, "quantity": 1},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Konaklamayan rezervasyona da yazılamaz
	guest := models.Guest{FullName: "Mehmet Kaya"}
	require.NoError(t, database.DB.Create(&guest).Error)
	room := models.Room{Number: "201", Type: "standard", NightlyPrice: 1000, Status: models.RoomStatusAvailable}
	require.NoError(t, database.DB.Create(&room).Error)
	booking := models.Booking{
		Code: "test-code", GuestID: guest.ID, RoomID: room.ID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		TotalAmount:  2000, Status: models.BookingStatusConfirmed, Source: models.BookingSourceFrontDesk,
	}
	require.NoError(t, database.DB.Create(&booking).Error)

	resp = doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status":     "pending",
		"booking_id": booking.ID,
		"lines": []fiber.Map{
			{"item_id": item.ID, "lot_id": lot.ID, "quantity": 1},
		},
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Check-in sonrası geçer ve guest_id rezervasyondan türetilir
	require.NoError(t, database.DB.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Update("status", models.BookingStatusCheckedIn).Error)

	resp = doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status":     "pending",
		"booking_id": booking.ID,
		"lines": []fiber.Map{
			{"item_id": item.ID, "lot_id": lot.ID, "quantity": 1},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.GuestID)
	assert.Equal(t, guest.ID, *got.GuestID)
}

func TestVoidRestoresStock(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	item, lot := seedLotItem(t, 10)

	guest := models.Guest{FullName: "Zeynep Demir"}
	require.NoError(t, database.DB.Create(&guest).Error)
	room := models.Room{Number: "301", Type: "suite", NightlyPrice: 2500, Status: models.RoomStatusOccupied}
	require.NoError(t, database.DB.Create(&room).Error)
	booking := models.Booking{
		Code: "void-test", GuestID: guest.ID, RoomID: room.ID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		TotalAmount:  5000, Status: models.BookingStatusCheckedIn, Source: models.BookingSourceFrontDesk,
	}
	require.NoError(t, database.DB.Create(&booking).Error)

	resp := doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status":     "pending",
		"booking_id": booking.ID,
		"lines": []fiber.Map{
			{"item_id": item.ID, "lot_id": lot.ID, "quantity": 4},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	var dbLot models.InventoryLot
	require.NoError(t, database.DB.First(&dbLot, lot.ID).Error)
	require.Equal(t, 6.0, dbLot.Quantity)

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/pos/transactions/%d/void", created.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, database.DB.First(&dbLot, lot.ID).Error)
	assert.Equal(t, 10.0, dbLot.Quantity)

	var dbTx models.POSTransaction
	require.NoError(t, database.DB.First(&dbTx, created.ID).Error)
	assert.Equal(t, models.POSStatusVoid, dbTx.Status)

	// İptal edilen satış tekrar iptal edilemez
	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/pos/transactions/%d/void", created.ID), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCompleteMarksPendingCollected(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)
	item, lot := seedLotItem(t, 10)

	guest := models.Guest{FullName: "Ali Vural"}
	require.NoError(t, database.DB.Create(&guest).Error)
	room := models.Room{Number: "102", Type: "standard", NightlyPrice: 1000, Status: models.RoomStatusOccupied}
	require.NoError(t, database.DB.Create(&room).Error)
	booking := models.Booking{
		Code: "complete-test", GuestID: guest.ID, RoomID: room.ID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		TotalAmount:  4000, Status: models.BookingStatusCheckedIn, Source: models.BookingSourceFrontDesk,
	}
	require.NoError(t, database.DB.Create(&booking).Error)

	resp := doJSON(t, app, "POST", "/api/pos/checkout", fiber.Map{
		"status":     "pending",
		"booking_id": booking.ID,
		"lines": []fiber.Map{
			{"item_id": item.ID, "lot_id": lot.ID, "quantity": 2},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/pos/transactions/%d/complete", created.ID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dbTx models.POSTransaction
	require.NoError(t, database.DB.First(&dbTx, created.ID).Error)
	assert.Equal(t, models.POSStatusCompleted, dbTx.Status)

	// Tahsil edilmiş satış tekrar tahsil edilemez
	resp = doJSON(t, app, "POST", fmt.Sprintf("/api/pos/transactions/%d/complete", created.ID), nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
