package database

import (
	"log"

	"otel-backend/internal/config"
	"otel-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	// InventoryItem migration: tracks_lots kolonu ekleniyor (AutoMigrate'ten ÖNCE)
	// Eski kurulumlarda tüm ürünler düz stok kullanıyordu, mevcut kayıtlar korunmalı
	if DB.Migrator().HasTable(&models.InventoryItem{}) {
		if !DB.Migrator().HasColumn(&models.InventoryItem{}, "tracks_lots") {
			log.Println("InventoryItem.tracks_lots kolonu ekleniyor...")
			if err := DB.Exec("ALTER TABLE inventory_items ADD COLUMN tracks_lots BOOLEAN NOT NULL DEFAULT FALSE").Error; err != nil {
				log.Printf("tracks_lots kolonu eklenirken hata (zaten var olabilir): %v", err)
			} else {
				log.Println("tracks_lots kolonu eklendi, mevcut ürünler düz stok olarak işaretlendi")
			}
		}

		// Partisi olan ürünleri tracks_lots=true yap (lot tablosu varsa)
		if DB.Migrator().HasTable(&models.InventoryLot{}) {
			DB.Exec(`
				UPDATE inventory_items SET tracks_lots = TRUE
				WHERE id IN (SELECT DISTINCT item_id FROM inventory_lots)
				AND tracks_lots = FALSE
			`)
		}
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Guest{},
		&models.Booking{},
		&models.Payment{},
		&models.InventoryItem{},
		&models.InventoryLot{},
		&models.StockAdjustment{},
		&models.POSTransaction{},
		&models.POSTransactionItem{},
		&models.HousekeepingTask{},
		&models.RoomAssessment{},
		&models.ExpenseCategory{},
		&models.Expense{},
		&models.RefundRequest{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Parti sorguları hep item + SKT sırasıyla çekiliyor, birleşik index şart
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_inventory_lots_item_expiry ON inventory_lots(item_id, expiry_date)")

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
