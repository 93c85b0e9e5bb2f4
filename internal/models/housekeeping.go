package models

import "time"

type TaskType string

const (
	TaskTypeCleaning    TaskType = "cleaning"
	TaskTypeMaintenance TaskType = "maintenance"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type HousekeepingTask struct {
	ID          uint `gorm:"primaryKey"`
	RoomID      uint `gorm:"index;not null"`
	Room        Room
	Type        TaskType `gorm:"size:20;not null;index"`
	Description string   `gorm:"size:500"`
	AssigneeID  *uint    `gorm:"index"` // atanan personel
	Assignee    *User    `gorm:"foreignKey:AssigneeID"`
	Priority    string   `gorm:"size:10;not null;default:normal"` // low / normal / high
	Status      TaskStatus `gorm:"size:20;not null;index"`
	DoneAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoomAssessment: Check-out sonrası oda kontrolü (hasar + eksik eşya maliyeti).
// Misafir bakiyesine en son kayıt yansır.
type RoomAssessment struct {
	ID          uint `gorm:"primaryKey"`
	BookingID   uint `gorm:"index;not null"`
	Booking     Booking
	DamageCost  float64 `gorm:"not null;default:0"`
	MissingCost float64 `gorm:"not null;default:0"`
	Note        string  `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
