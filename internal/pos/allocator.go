package pos

import (
	"sort"

	"otel-backend/internal/models"
)

// CartLine: Satış ekranında sepette duran geçici satır. Checkout'a kadar
// veritabanına yazılmaz; stok düşümü sadece checkout'ta yapılır.
type CartLine struct {
	ItemID    uint    `json:"item_id"`
	LotID     *uint   `json:"lot_id"` // parti takipsiz ürünlerde nil
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type AllocationResult struct {
	PlacedLines []CartLine `json:"placed_lines"`
	Shortfall   float64    `json:"shortfall"` // karşılanamayan miktar; > 0 ise sepete ekleme reddedilmeli
}

// Allocate: İstenen miktarı partilere dağıtır. En erken SKT'li parti önce tüketilir,
// SKT'siz partiler en sona kalır. Her partinin kalan kapasitesi, sepette o partiye
// bağlı mevcut satırlar düşüldükten sonra hesaplanır. Saf fonksiyondur, stok düşmez.
func Allocate(item models.InventoryItem, lots []models.InventoryLot, requestedQty float64, existingLines []CartLine) AllocationResult {
	if requestedQty <= 0 {
		return AllocationResult{}
	}

	// Parti takipsiz ürün: düz stok tek sanal parti gibi davranır
	if !item.TracksLots {
		committed := 0.0
		for _, line := range existingLines {
			if line.ItemID == item.ID {
				committed += line.Quantity
			}
		}
		remaining := item.StockQuantity - committed
		if remaining <= 0 {
			return AllocationResult{Shortfall: requestedQty}
		}
		place := requestedQty
		if remaining < place {
			place = remaining
		}
		return AllocationResult{
			PlacedLines: []CartLine{{
				ItemID:    item.ID,
				Quantity:  place,
				UnitPrice: item.SalePrice,
			}},
			Shortfall: requestedQty - place,
		}
	}

	candidates := make([]models.InventoryLot, 0, len(lots))
	for _, lot := range lots {
		if lot.ItemID == item.ID && lot.Quantity > 0 {
			candidates = append(candidates, lot)
		}
	}

	// SKT'ye göre artan sırala; SKT'si olmayanlar en sona (önce eski stok çıksın)
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].ExpiryDate, candidates[j].ExpiryDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})

	stillNeeded := requestedQty
	var placed []CartLine

	for _, lot := range candidates {
		if stillNeeded <= 0 {
			break
		}

		committed := 0.0
		for _, line := range existingLines {
			if line.LotID != nil && *line.LotID == lot.ID {
				committed += line.Quantity
			}
		}

		remaining := lot.Quantity - committed
		if remaining <= 0 {
			continue
		}

		place := stillNeeded
		if remaining < place {
			place = remaining
		}

		lotID := lot.ID
		placed = append(placed, CartLine{
			ItemID:    item.ID,
			LotID:     &lotID,
			Quantity:  place,
			UnitPrice: item.SalePrice,
		})
		stillNeeded -= place
	}

	return AllocationResult{PlacedLines: placed, Shortfall: stillNeeded}
}

// MergeLines: Yerleştirilen satırları sepete ekler; aynı ürün + parti ikilisine
// ait satırlar tek satırda toplanır.
func MergeLines(cart []CartLine, placed []CartLine) []CartLine {
	merged := make([]CartLine, len(cart))
	copy(merged, cart)

	for _, p := range placed {
		found := false
		for i := range merged {
			if merged[i].ItemID == p.ItemID && sameLot(merged[i].LotID, p.LotID) {
				merged[i].Quantity += p.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, p)
		}
	}

	return merged
}

// RebindLine: Kullanıcı bir sepet satırını başka partiye taşıdığında yeni partinin
// kalan kapasitesini (taşınan satır hariç) kontrol eder. Kapasite yetmiyorsa hata
// vermez, miktarı sessizce kırpar ve uyarıyı döner. Parti bulunamazsa kapasite sıfır
// kabul edilir.
func RebindLine(line CartLine, newLotID uint, lots []models.InventoryLot, otherLines []CartLine) (CartLine, bool) {
	remaining := 0.0
	for _, lot := range lots {
		if lot.ID == newLotID {
			committed := 0.0
			for _, other := range otherLines {
				if other.LotID != nil && *other.LotID == newLotID {
					committed += other.Quantity
				}
			}
			remaining = lot.Quantity - committed
			break
		}
	}
	if remaining < 0 {
		remaining = 0
	}

	rebound := line
	rebound.LotID = &newLotID

	capped := false
	if rebound.Quantity > remaining {
		rebound.Quantity = remaining
		capped = true
	}

	return rebound, capped
}

func sameLot(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
