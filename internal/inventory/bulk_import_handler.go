package inventory

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"otel-backend/internal/database"
	"otel-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// normalizeTurkish: Türkçe karakterleri ASCII karşılıklarına çevirir
// Örn: "ÇİKOLATA ŞİŞE" -> "cikolata sise"
func normalizeTurkish(s string) string {
	replacements := map[rune]string{
		'ç': "c", 'Ç': "C",
		'ğ': "g", 'Ğ': "G",
		'ı': "i", 'İ': "I",
		'ö': "o", 'Ö': "O",
		'ş': "s", 'Ş': "S",
		'ü': "u", 'Ü': "U",
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, ok := replacements[r]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(r)
		}
	}
	return strings.ToLower(result.String())
}

// parseTurkishFloat: Türkçe formatındaki sayıyı float'a çevir (1.234,56 -> 1234.56)
func parseTurkishFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "TL", "")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") {
		// Binlik ayırıcı noktaları kaldır, virgülü noktaya çevir
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	return strconv.ParseFloat(s, 64)
}

type BulkImportRowResult struct {
	Row     int    `json:"row"`
	Name    string `json:"name"`
	Action  string `json:"action"` // "created" | "updated" | "skipped"
	Message string `json:"message,omitempty"`
}

// POST /api/inventory/items/import
// XLSX ile toplu ürün yükleme. Kolonlar: Ürün Adı | Birim | Kategori | Satış Fiyatı | Kritik Stok
// İsim eşleşirse (Türkçe karakter duyarsız) mevcut ürün güncellenir, yoksa yeni oluşturulur.
func BulkImportItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık mı?
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "ÜRÜN") || strings.Contains(firstCell, "PRODUCT") || strings.Contains(firstCell, "NAME") {
				startIndex = 1
				log.Printf("İlk satır başlık satırı olarak algılandı, atlanıyor")
			}
		}

		// Mevcut ürünleri normalize isimle indexle
		var existing []models.InventoryItem
		if err := database.DB.Find(&existing).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mevcut ürünler yüklenemedi")
		}
		byName := make(map[string]models.InventoryItem, len(existing))
		for _, item := range existing {
			byName[normalizeTurkish(item.Name)] = item
		}

		results := make([]BulkImportRowResult, 0)
		createdCount, updatedCount := 0, 0

		cell := func(row []string, i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			rowNo := i + 1

			name := cell(row, 0)
			if name == "" {
				continue
			}

			unit := cell(row, 1)
			category := cell(row, 2)

			salePrice := 0.0
			if s := cell(row, 3); s != "" {
				p, err := parseTurkishFloat(s)
				if err != nil {
					results = append(results, BulkImportRowResult{
						Row: rowNo, Name: name, Action: "skipped",
						Message: fmt.Sprintf("Satış fiyatı okunamadı: %q", s),
					})
					continue
				}
				salePrice = p
			}

			minStock := 0.0
			if s := cell(row, 4); s != "" {
				m, err := parseTurkishFloat(s)
				if err == nil {
					minStock = m
				}
			}

			if item, ok := byName[normalizeTurkish(name)]; ok {
				// Mevcut ürünü güncelle
				if unit != "" {
					item.Unit = unit
				}
				if category != "" {
					item.Category = category
				}
				if salePrice > 0 {
					item.SalePrice = salePrice
				}
				if minStock > 0 {
					item.MinStockLevel = minStock
				}
				if err := database.DB.Save(&item).Error; err != nil {
					results = append(results, BulkImportRowResult{
						Row: rowNo, Name: name, Action: "skipped", Message: "Güncellenemedi",
					})
					continue
				}
				updatedCount++
				results = append(results, BulkImportRowResult{Row: rowNo, Name: name, Action: "updated"})
				continue
			}

			if unit == "" {
				results = append(results, BulkImportRowResult{
					Row: rowNo, Name: name, Action: "skipped", Message: "Yeni ürün için birim zorunlu",
				})
				continue
			}

			item := models.InventoryItem{
				Name:          name,
				Unit:          unit,
				Category:      category,
				SalePrice:     salePrice,
				MinStockLevel: minStock,
			}
			if err := database.DB.Create(&item).Error; err != nil {
				results = append(results, BulkImportRowResult{
					Row: rowNo, Name: name, Action: "skipped", Message: "Oluşturulamadı",
				})
				continue
			}
			byName[normalizeTurkish(name)] = item
			createdCount++
			results = append(results, BulkImportRowResult{Row: rowNo, Name: name, Action: "created"})
		}

		return c.JSON(fiber.Map{
			"created": createdCount,
			"updated": updatedCount,
			"results": results,
			"message": fmt.Sprintf("%d ürün oluşturuldu, %d ürün güncellendi", createdCount, updatedCount),
		})
	}
}
