package housekeeping

import (
	"fmt"
	"strconv"
	"time"

	"otel-backend/internal/audit"
	"otel-backend/internal/auth"
	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	RoomID      uint   `json:"room_id"`
	Type        string `json:"type"` // cleaning | maintenance
	Description string `json:"description"`
	AssigneeID  *uint  `json:"assignee_id"`
	Priority    string `json:"priority"` // low | normal | high
}

type UpdateTaskRequest struct {
	Description *string `json:"description"`
	AssigneeID  *uint   `json:"assignee_id"`
	Priority    *string `json:"priority"`
}

func validPriority(p string) bool {
	return p == "low" || p == "normal" || p == "high"
}

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

// POST /api/housekeeping/tasks
func CreateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var req CreateTaskRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		taskType := models.TaskType(req.Type)
		if taskType != models.TaskTypeCleaning && taskType != models.TaskTypeMaintenance {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz görev tipi")
		}

		var room models.Room
		if err := database.DB.First(&room, req.RoomID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oda bulunamadı")
		}

		if req.AssigneeID != nil {
			var assignee models.User
			if err := database.DB.First(&assignee, *req.AssigneeID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Atanan personel bulunamadı")
			}
		}

		priority := req.Priority
		if priority == "" {
			priority = "normal"
		}
		if !validPriority(priority) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz öncelik")
		}

		task := models.HousekeepingTask{
			RoomID:      req.RoomID,
			Type:        taskType,
			Description: req.Description,
			AssigneeID:  req.AssigneeID,
			Priority:    priority,
			Status:      models.TaskStatusOpen,
		}
		if err := database.DB.Create(&task).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "housekeeping_task",
			EntityID:    task.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Görev açıldı: %s, oda %s", task.Type, room.Number),
			After:       task,
		})

		database.DB.Preload("Room").Preload("Assignee").First(&task, task.ID)
		return c.Status(fiber.StatusCreated).JSON(task)
	}
}

// GET /api/housekeeping/tasks?status=open&type=cleaning&room_id=3&assignee_id=5
func ListTasksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Room").Preload("Assignee").Model(&models.HousekeepingTask{})

		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if taskType := c.Query("type"); taskType != "" {
			query = query.Where("type = ?", taskType)
		}
		if roomID := c.Query("room_id"); roomID != "" {
			query = query.Where("room_id = ?", roomID)
		}
		if assigneeID := c.Query("assignee_id"); assigneeID != "" {
			query = query.Where("assignee_id = ?", assigneeID)
		}

		var tasks []models.HousekeepingTask
		if err := query.Order("created_at desc").Find(&tasks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görevler yüklenemedi")
		}
		return c.JSON(tasks)
	}
}

// PUT /api/housekeeping/tasks/:id
func UpdateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz görev ID")
		}

		var task models.HousekeepingTask
		if err := database.DB.First(&task, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}
		if task.Status == models.TaskStatusDone {
			return fiber.NewError(fiber.StatusBadRequest, "Tamamlanmış görev güncellenemez")
		}

		var req UpdateTaskRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.AssigneeID != nil {
			var assignee models.User
			if err := database.DB.First(&assignee, *req.AssigneeID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Atanan personel bulunamadı")
			}
			task.AssigneeID = req.AssigneeID
		}
		if req.Priority != nil {
			if !validPriority(*req.Priority) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz öncelik")
			}
			task.Priority = *req.Priority
		}

		if err := database.DB.Save(&task).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev güncellenemedi")
		}
		return c.JSON(task)
	}
}

// PATCH /api/housekeeping/tasks/:id/status
// Temizlik görevi tamamlandığında "cleaning" durumundaki oda "available" olur.
func UpdateTaskStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz görev ID")
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		newStatus := models.TaskStatus(req.Status)
		if newStatus != models.TaskStatusOpen && newStatus != models.TaskStatusInProgress && newStatus != models.TaskStatusDone {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz görev durumu")
		}

		var task models.HousekeepingTask
		if err := database.DB.First(&task, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}
		if task.Status == models.TaskStatusDone {
			return fiber.NewError(fiber.StatusBadRequest, "Tamamlanmış görevin durumu değiştirilemez")
		}

		oldTask := task
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			task.Status = newStatus
			if newStatus == models.TaskStatusDone {
				now := time.Now()
				task.DoneAt = &now
			}
			if err := tx.Save(&task).Error; err != nil {
				return err
			}

			// Temizlik bitti -> temizlenmeyi bekleyen odayı müsait yap
			if newStatus == models.TaskStatusDone && task.Type == models.TaskTypeCleaning {
				var room models.Room
				if err := tx.First(&room, task.RoomID).Error; err != nil {
					return err
				}
				if room.Status == models.RoomStatusCleaning {
					if err := tx.Model(&room).Update("status", models.RoomStatusAvailable).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev durumu güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "housekeeping_task",
			EntityID:    task.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Görev durumu: %s -> %s", oldTask.Status, task.Status),
			Before:      oldTask,
			After:       task,
		})

		database.DB.Preload("Room").Preload("Assignee").First(&task, task.ID)
		return c.JSON(task)
	}
}

// DELETE /api/housekeeping/tasks/:id
func DeleteTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz görev ID")
		}

		var task models.HousekeepingTask
		if err := database.DB.First(&task, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		if err := database.DB.Delete(&task).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "housekeeping_task",
			EntityID:    task.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Görev silindi: #%d", task.ID),
			Before:      task,
		})
		return c.JSON(fiber.Map{"message": "Görev silindi"})
	}
}
