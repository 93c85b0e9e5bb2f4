package models

import "time"

type POSStatus string

const (
	POSStatusPending   POSStatus = "pending"   // oda hesabına yazıldı, tahsil edilmedi
	POSStatusCompleted POSStatus = "completed" // tahsil edildi
	POSStatusVoid      POSStatus = "void"      // iptal edildi, stok geri yüklendi
)

type POSTransaction struct {
	ID        uint   `gorm:"primaryKey"`
	ReceiptNo string `gorm:"size:36;uniqueIndex;not null"`
	GuestID   *uint  `gorm:"index"` // nil = misafir dışı (walk-in) satış
	Guest     *Guest
	BookingID *uint `gorm:"index"`
	Status    POSStatus `gorm:"size:20;not null;index"`
	Total     float64   `gorm:"not null"`
	Date      time.Time `gorm:"index;not null"`
	CreatedBy uint      // satışı yapan personel
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []POSTransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

type POSTransactionItem struct {
	ID            uint `gorm:"primaryKey"`
	TransactionID uint `gorm:"index;not null"`
	ItemID        uint `gorm:"index;not null"`
	Item          InventoryItem
	LotID         *uint   // parti takipli ürünlerde hangi partiden düşüldü
	Quantity      float64 `gorm:"not null"`
	UnitPrice     float64 `gorm:"not null"`
	LineTotal     float64 `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
