package housekeeping

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
		&models.HousekeepingTask{},
		&models.RoomAssessment{},
		&models.AuditLog{},
	))

	database.DB = db
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()

	user := models.User{Name: "Test Kat Görevlisi", Email: "kat@otel.local", PasswordHash: "x", Role: models.RoleHousekeeping, IsActive: true}
	require.NoError(t, database.DB.Create(&user).Error)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		return c.Next()
	})

	app.Post("/api/housekeeping/tasks", CreateTaskHandler())
	app.Patch("/api/housekeeping/tasks/:id/status", UpdateTaskStatusHandler())

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

func TestCompletingCleaningTaskFreesRoom(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)

	room := models.Room{Number: "105", Type: "standard", NightlyPrice: 1000, Status: models.RoomStatusCleaning}
	require.NoError(t, database.DB.Create(&room).Error)

	resp := doJSON(t, app, "POST", "/api/housekeeping/tasks", fiber.Map{
		"room_id": room.ID,
		"type":    "cleaning",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var task models.HousekeepingTask
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))

	resp = doJSON(t, app, "PATCH", fmt.Sprintf("/api/housekeeping/tasks/%d/status", task.ID), fiber.Map{
		"status": "done",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dbRoom models.Room
	require.NoError(t, database.DB.First(&dbRoom, room.ID).Error)
	assert.Equal(t, models.RoomStatusAvailable, dbRoom.Status)

	var dbTask models.HousekeepingTask
	require.NoError(t, database.DB.First(&dbTask, task.ID).Error)
	assert.Equal(t, models.TaskStatusDone, dbTask.Status)
	assert.NotNil(t, dbTask.DoneAt)
}

func TestCompletingMaintenanceTaskDoesNotTouchRoomStatus(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)

	room := models.Room{Number: "106", Type: "standard", NightlyPrice: 1000, Status: models.RoomStatusMaintenance}
	require.NoError(t, database.DB.Create(&room).Error)

	resp := doJSON(t, app, "POST", "/api/housekeeping/tasks", fiber.Map{
		"room_id": room.ID,
		"type":    "maintenance",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var task models.HousekeepingTask
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))

	resp = doJSON(t, app, "PATCH", fmt.Sprintf("/api/housekeeping/tasks/%d/status", task.ID), fiber.Map{
		"status": "done",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Bakım görevinin kapanması oda durumunu değiştirmez, teknik ekip karar verir
	var dbRoom models.Room
	require.NoError(t, database.DB.First(&dbRoom, room.ID).Error)
	assert.Equal(t, models.RoomStatusMaintenance, dbRoom.Status)
}

func TestDoneTaskCannotChangeStatusAgain(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)

	room := models.Room{Number: "107", Type: "standard", NightlyPrice: 1000, Status: models.RoomStatusCleaning}
	require.NoError(t, database.DB.Create(&room).Error)

	resp := doJSON(t, app, "POST", "/api/housekeeping/tasks", fiber.Map{
		"room_id": room.ID,
		"type":    "cleaning",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var task models.HousekeepingTask
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))

	resp = doJSON(t, app, "PATCH", fmt.Sprintf("/api/housekeeping/tasks/%d/status", task.ID), fiber.Map{
		"status": "done",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "PATCH", fmt.Sprintf("/api/housekeeping/tasks/%d/status", task.ID), fiber.Map{
		"status": "open",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateTaskRejectsUnknownType(t *testing.T) {
	setupTestDB(t)
	app := setupTestApp(t)

	room := models.Room{Number: "108", Type: "standard", NightlyPrice: 1000, Status: models.RoomStatusAvailable}
	require.NoError(t, database.DB.Create(&room).Error)

	resp := doJSON(t, app, "POST", "/api/housekeeping/tasks", fiber.Map{
		"room_id": room.ID,
		"type":    "laundry",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
