package models

import "time"

type InventoryItem struct {
	ID            uint    `gorm:"primaryKey"`
	Name          string  `gorm:"size:100;not null;unique"`
	Unit          string  `gorm:"size:20;not null"` // adet, kg, şişe vs.
	Category      string  `gorm:"size:50;index"`    // minibar, restoran, temizlik vs.
	SalePrice     float64 `gorm:"not null"`
	TracksLots    bool    `gorm:"not null;default:false"` // parti/SKT takibi yapılıyor mu
	StockQuantity float64 `gorm:"not null;default:0"`     // parti takibi YOKSA kullanılan düz stok
	MinStockLevel float64 `gorm:"not null;default:0"`     // kritik stok uyarı seviyesi
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InventoryLot: Bir ürünün tarihli stok partisi. Quantity satışta düşer, asla negatif olmaz.
type InventoryLot struct {
	ID         uint `gorm:"primaryKey"`
	ItemID     uint `gorm:"index;not null"`
	Item       InventoryItem
	Brand      string     `gorm:"size:100"`
	BatchCode  string     `gorm:"size:50"`
	ExpiryDate *time.Time `gorm:"index"` // nil = son kullanma tarihi yok
	Quantity   float64    `gorm:"not null"`
	UnitCost   float64    `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type StockAdjustment struct {
	ID        uint `gorm:"primaryKey"`
	ItemID    uint `gorm:"index;not null"`
	Item      InventoryItem
	LotID     *uint   // parti takipli ürünlerde hangi parti
	Delta     float64 `gorm:"not null"` // pozitif = giriş, negatif = düşüm
	Reason    string  `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
