package models

import "time"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCheckedIn  BookingStatus = "checked_in"
	BookingStatusCheckedOut BookingStatus = "checked_out"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

type BookingSource string

const (
	BookingSourceFrontDesk BookingSource = "front_desk"
	BookingSourceWeb       BookingSource = "web" // public rezervasyon sayfası
)

type Booking struct {
	ID           uint   `gorm:"primaryKey"`
	Code         string `gorm:"size:36;uniqueIndex;not null"` // onay kodu (UUID)
	GuestID      uint   `gorm:"index;not null"`
	Guest        Guest
	RoomID       uint `gorm:"index;not null"`
	Room         Room
	CheckInDate  time.Time     `gorm:"index;not null"`
	CheckOutDate time.Time     `gorm:"index;not null"`
	TotalAmount  float64       `gorm:"not null"` // konaklama toplam tutarı
	PaidAmount   float64       `gorm:"not null;default:0"`
	Status       BookingStatus `gorm:"size:20;not null;index"`
	Source       BookingSource `gorm:"size:20;not null;default:front_desk"`
	Note         string        `gorm:"size:500"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Payments []Payment
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer" // havale/EFT
)

type Payment struct {
	ID          uint `gorm:"primaryKey"`
	BookingID   uint `gorm:"index;not null"`
	Booking     Booking
	Amount      float64       `gorm:"not null"`
	Method      PaymentMethod `gorm:"size:20;not null"`
	Date        time.Time     `gorm:"index;not null"`
	Description string        `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
