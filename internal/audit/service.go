package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"otel-backend/internal/database"
	"otel-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
		Undone:      false,
		IsUndone:    false,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// UndoLog - Bir audit log'u undo et.
// Sadece yan etkisi olmayan entity'ler geri alınabilir: rezervasyon, ödeme ve
// POS satışı gibi stok/bakiye değiştiren kayıtlar kendi iptal akışlarından geçer.
func UndoLog(logID uint, userID uint, userName string) error {
	var log models.AuditLog
	if err := database.DB.First(&log, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log bulunamadı: %w", err)
	}

	// Zaten undo edilmiş mi?
	if log.IsUndone {
		return fmt.Errorf("bu işlem zaten geri alınmış")
	}

	if !undoableEntity(log.EntityType) {
		return fmt.Errorf("bu kayıt tipi geri alınamaz: %s", log.EntityType)
	}

	switch log.Action {
	case models.AuditActionCreate:
		// Create ise entity'yi sil
		if err := deleteEntity(log.EntityType, log.EntityID); err != nil {
			return fmt.Errorf("entity silinemedi: %w", err)
		}

	case models.AuditActionUpdate:
		// Update ise önceki haline geri döndür
		if err := restoreEntity(log.EntityType, log.EntityID, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri yüklenemedi: %w", err)
		}

	case models.AuditActionDelete:
		// Delete ise entity'yi geri oluştur
		if err := recreateEntity(log.EntityType, log.BeforeData); err != nil {
			return fmt.Errorf("entity geri oluşturulamadı: %w", err)
		}

	default:
		return fmt.Errorf("bu işlem türü geri alınamaz")
	}

	// Log'u işaretle
	now := time.Now()
	log.IsUndone = true
	log.UndoneBy = &userID
	log.UndoneAt = &now

	if err := database.DB.Save(&log).Error; err != nil {
		return fmt.Errorf("log güncellenemedi: %w", err)
	}

	// Undo işlemi için yeni bir log oluştur
	undoLog := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Geri alındı: %s", log.Description),
		BeforeData:  log.AfterData,
		AfterData:   log.BeforeData,
		Undone:      true,
		IsUndone:    false,
	}

	if err := database.DB.Create(&undoLog).Error; err != nil {
		return fmt.Errorf("undo log kaydedilemedi: %w", err)
	}

	return nil
}

// undoableEntity: stok veya bakiye yan etkisi olmayan kayıtlar
func undoableEntity(entityType string) bool {
	switch entityType {
	case "expense", "housekeeping_task", "room_assessment":
		return true
	}
	return false
}

// deleteEntity - Entity'yi sil
func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "expense":
		return database.DB.Delete(&models.Expense{}, "id = ?", entityID).Error
	case "housekeeping_task":
		return database.DB.Delete(&models.HousekeepingTask{}, "id = ?", entityID).Error
	case "room_assessment":
		return database.DB.Delete(&models.RoomAssessment{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// recreateEntity - Silinen entity'yi geri oluştur
func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		expense.ID = 0 // Yeni entity oluştur
		expense.Category = models.ExpenseCategory{}
		return database.DB.Create(&expense).Error

	case "housekeeping_task":
		var task models.HousekeepingTask
		if err := json.Unmarshal([]byte(dataJSON), &task); err != nil {
			return err
		}
		task.ID = 0
		task.Room = models.Room{}
		task.Assignee = nil
		return database.DB.Create(&task).Error

	case "room_assessment":
		var assessment models.RoomAssessment
		if err := json.Unmarshal([]byte(dataJSON), &assessment); err != nil {
			return err
		}
		assessment.ID = 0
		assessment.Booking = models.Booking{}
		return database.DB.Create(&assessment).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}

// restoreEntity - Entity'yi geri yükle (update)
func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "expense":
		var expense models.Expense
		if err := json.Unmarshal([]byte(dataJSON), &expense); err != nil {
			return err
		}
		return database.DB.Model(&models.Expense{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"category_id": expense.CategoryID,
			"date":        expense.Date,
			"amount":      expense.Amount,
			"department":  expense.Department,
			"description": expense.Description,
		}).Error

	case "housekeeping_task":
		var task models.HousekeepingTask
		if err := json.Unmarshal([]byte(dataJSON), &task); err != nil {
			return err
		}
		return database.DB.Model(&models.HousekeepingTask{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"room_id":     task.RoomID,
			"type":        task.Type,
			"description": task.Description,
			"assignee_id": task.AssigneeID,
			"priority":    task.Priority,
			"status":      task.Status,
			"done_at":     task.DoneAt,
		}).Error

	case "room_assessment":
		var assessment models.RoomAssessment
		if err := json.Unmarshal([]byte(dataJSON), &assessment); err != nil {
			return err
		}
		return database.DB.Model(&models.RoomAssessment{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"booking_id":   assessment.BookingID,
			"damage_cost":  assessment.DamageCost,
			"missing_cost": assessment.MissingCost,
			"note":         assessment.Note,
		}).Error

	default:
		return fmt.Errorf("bilinmeyen entity tipi: %s", entityType)
	}
}
