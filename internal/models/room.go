package models

import "time"

type RoomStatus string

const (
	RoomStatusAvailable    RoomStatus = "available"
	RoomStatusOccupied     RoomStatus = "occupied"
	RoomStatusCleaning     RoomStatus = "cleaning"
	RoomStatusMaintenance  RoomStatus = "maintenance"
	RoomStatusOutOfService RoomStatus = "out_of_service"
)

type Room struct {
	ID           uint       `gorm:"primaryKey"`
	Number       string     `gorm:"size:10;not null;unique"` // oda numarası (örn: "204")
	Type         string     `gorm:"size:50;not null"`        // standart, deluxe, suit vs.
	Floor        int        `gorm:"not null"`
	Capacity     int        `gorm:"not null;default:2"` // kişi kapasitesi
	NightlyPrice float64    `gorm:"not null"`           // gecelik fiyat
	Status       RoomStatus `gorm:"size:20;not null;default:available"`
	Description  string     `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
