package models

import "time"

type ExpenseCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Expense struct {
	ID          uint `gorm:"primaryKey"`
	CategoryID  uint `gorm:"index;not null"`
	Category    ExpenseCategory
	Date        time.Time `gorm:"index;not null"`
	Amount      float64   `gorm:"not null"`
	Department  string    `gorm:"size:50"` // kat hizmetleri, mutfak, teknik vs.
	Description string    `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RefundStatus string

const (
	RefundStatusRequested RefundStatus = "requested"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusRejected  RefundStatus = "rejected"
)

// RefundRequest: Misafire yapılacak iade talebi. Sadece onaylananlar bakiyeye yansır.
type RefundRequest struct {
	ID          uint `gorm:"primaryKey"`
	BookingID   uint `gorm:"index;not null"`
	Booking     Booking
	Amount      float64      `gorm:"not null"`
	Reason      string       `gorm:"size:500;not null"`
	Status      RefundStatus `gorm:"size:20;not null;index"`
	DecidedByID *uint        // onaylayan/reddeden admin
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
