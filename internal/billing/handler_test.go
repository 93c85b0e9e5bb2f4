package billing

import (
	"testing"
	"time"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

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
		&models.Guest{},
		&models.Room{},
		&models.Booking{},
		&models.POSTransaction{},
		&models.POSTransactionItem{},
		&models.InventoryItem{},
		&models.RoomAssessment{},
		&models.RefundRequest{},
	))

	database.DB = db
}

func seedBooking(t *testing.T, total, paid float64) models.Booking {
	t.Helper()

	guest := models.Guest{FullName: "Fatma Şahin"}
	require.NoError(t, database.DB.Create(&guest).Error)
	room := models.Room{Number: "401", Type: "deluxe", NightlyPrice: 2000, Status: models.RoomStatusOccupied}
	require.NoError(t, database.DB.Create(&room).Error)

	booking := models.Booking{
		Code: "billing-test", GuestID: guest.ID, RoomID: room.ID,
		CheckInDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
		TotalAmount:  total, PaidAmount: paid,
		Status: models.BookingStatusCheckedIn, Source: models.BookingSourceFrontDesk,
	}
	require.NoError(t, database.DB.Create(&booking).Error)
	return booking
}

func TestForBookingCollectsAllSources(t *testing.T) {
	setupTestDB(t)
	booking := seedBooking(t, 10000, 3000)

	now := time.Now()
	require.NoError(t, database.DB.Create(&models.POSTransaction{
		ReceiptNo: "r1", BookingID: &booking.ID, Status: models.POSStatusCompleted, Total: 1500, Date: now, CreatedBy: 1,
	}).Error)
	require.NoError(t, database.DB.Create(&models.POSTransaction{
		ReceiptNo: "r2", BookingID: &booking.ID, Status: models.POSStatusPending, Total: 500, Date: now, CreatedBy: 1,
	}).Error)
	// İptal edilmiş satış hesaba girmez
	require.NoError(t, database.DB.Create(&models.POSTransaction{
		ReceiptNo: "r3", BookingID: &booking.ID, Status: models.POSStatusVoid, Total: 9999, Date: now, CreatedBy: 1,
	}).Error)

	require.NoError(t, database.DB.Create(&models.RoomAssessment{
		BookingID: booking.ID, DamageCost: 150, MissingCost: 50,
	}).Error)

	snap := ForBooking(booking)

	assert.Equal(t, 500.0, snap.POSPendingTotal)
	assert.Equal(t, 1500.0, snap.POSCompletedTotal)
	assert.Equal(t, 200.0, snap.AssessmentCost)
	assert.Equal(t, 10700.0, snap.TotalDue)
	assert.Equal(t, 4500.0, snap.PaidTotal)
	assert.Equal(t, 6200.0, snap.BalanceDue)
	assert.Equal(t, StatusPartial, snap.Status)
}

func TestForBookingUsesLatestAssessmentOnly(t *testing.T) {
	setupTestDB(t)
	booking := seedBooking(t, 5000, 5000)

	old := models.RoomAssessment{BookingID: booking.ID, DamageCost: 1000}
	require.NoError(t, database.DB.Create(&old).Error)
	// Eski kaydın created_at'ini geriye çek
	require.NoError(t, database.DB.Model(&old).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	require.NoError(t, database.DB.Create(&models.RoomAssessment{
		BookingID: booking.ID, DamageCost: 0, MissingCost: 0,
	}).Error)

	snap := ForBooking(booking)
	assert.Equal(t, 0.0, snap.AssessmentCost)
	assert.Equal(t, StatusPaid, snap.Status)
}

func TestApprovedRefundReducesPaidTotal(t *testing.T) {
	setupTestDB(t)
	booking := seedBooking(t, 5000, 5000)

	now := time.Now()
	require.NoError(t, database.DB.Create(&models.RefundRequest{
		BookingID: booking.ID, Amount: 2000, Reason: "Erken çıkış",
		Status: models.RefundStatusApproved, DecidedAt: &now,
	}).Error)
	// Bekleyen ve reddedilen talepler bakiyeye yansımaz
	require.NoError(t, database.DB.Create(&models.RefundRequest{
		BookingID: booking.ID, Amount: 1000, Reason: "Bekliyor",
		Status: models.RefundStatusRequested,
	}).Error)
	require.NoError(t, database.DB.Create(&models.RefundRequest{
		BookingID: booking.ID, Amount: 1000, Reason: "Reddedildi",
		Status: models.RefundStatusRejected, DecidedAt: &now,
	}).Error)

	snap := ForBooking(booking)

	assert.Equal(t, 2000.0, snap.RefundedAmount)
	assert.Equal(t, 3000.0, snap.PaidTotal)
	assert.Equal(t, 2000.0, snap.BalanceDue)
	assert.Equal(t, StatusPartial, snap.Status)
}
