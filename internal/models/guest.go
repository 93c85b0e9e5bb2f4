package models

import "time"

type Guest struct {
	ID          uint   `gorm:"primaryKey"`
	FullName    string `gorm:"size:150;not null;index"`
	NationalID  string `gorm:"size:30;index"` // TC kimlik veya pasaport no
	Phone       string `gorm:"size:30"`
	Email       string `gorm:"size:100"`
	Nationality string `gorm:"size:50"`
	Note        string `gorm:"size:500"` // opsiyonel not (alerjiler, tercihler vs.)
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Bookings []Booking
}
