package rooms

import (
	"time"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type DashboardStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DashboardResponse struct {
	Date           string                 `json:"date"`
	TotalRooms     int64                  `json:"total_rooms"`
	StatusCounts   []DashboardStatusCount `json:"status_counts"`
	OccupancyRate  float64                `json:"occupancy_rate"` // yüzde
	TodayArrivals  int64                  `json:"today_arrivals"`
	TodayDepartures int64                 `json:"today_departures"`
	OpenTasks      int64                  `json:"open_tasks"`
}

// GET /api/dashboard/rooms
// Resepsiyon ana ekranı: oda durumu sayıları, doluluk, bugünün giriş/çıkışları
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		loc := now.Location()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var totalRooms int64
		database.DB.Model(&models.Room{}).Count(&totalRooms)

		statuses := []models.RoomStatus{
			models.RoomStatusAvailable,
			models.RoomStatusOccupied,
			models.RoomStatusCleaning,
			models.RoomStatusMaintenance,
			models.RoomStatusOutOfService,
		}

		counts := make([]DashboardStatusCount, 0, len(statuses))
		var occupied int64
		for _, s := range statuses {
			var n int64
			database.DB.Model(&models.Room{}).Where("status = ?", s).Count(&n)
			counts = append(counts, DashboardStatusCount{Status: string(s), Count: n})
			if s == models.RoomStatusOccupied {
				occupied = n
			}
		}

		occupancyRate := 0.0
		if totalRooms > 0 {
			occupancyRate = float64(occupied) / float64(totalRooms) * 100
		}

		var arrivals int64
		database.DB.Model(&models.Booking{}).
			Where("check_in_date >= ? AND check_in_date < ? AND status IN ?", dayStart, dayEnd,
				[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
			Count(&arrivals)

		var departures int64
		database.DB.Model(&models.Booking{}).
			Where("check_out_date >= ? AND check_out_date < ? AND status = ?", dayStart, dayEnd,
				models.BookingStatusCheckedIn).
			Count(&departures)

		var openTasks int64
		database.DB.Model(&models.HousekeepingTask{}).
			Where("status IN ?", []models.TaskStatus{models.TaskStatusOpen, models.TaskStatusInProgress}).
			Count(&openTasks)

		return c.JSON(DashboardResponse{
			Date:            dayStart.Format("2006-01-02"),
			TotalRooms:      totalRooms,
			StatusCounts:    counts,
			OccupancyRate:   occupancyRate,
			TodayArrivals:   arrivals,
			TodayDepartures: departures,
			OpenTasks:       openTasks,
		})
	}
}
