package pos

import (
	"testing"
	"time"

	"otel-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &d
}

func lotItem(id uint) models.InventoryItem {
	return models.InventoryItem{ID: id, Name: "Test Ürün", Unit: "adet", SalePrice: 50, TracksLots: true}
}

func TestAllocateSingleLotFullPlacement(t *testing.T) {
	item := lotItem(1)
	lots := []models.InventoryLot{
		{ID: 10, ItemID: 1, Quantity: 8, ExpiryDate: datePtr(t, "2025-06-01")},
	}

	res := Allocate(item, lots, 5, nil)

	require.Len(t, res.PlacedLines, 1)
	assert.Equal(t, 0.0, res.Shortfall)
	assert.Equal(t, 5.0, res.PlacedLines[0].Quantity)
	require.NotNil(t, res.PlacedLines[0].LotID)
	assert.Equal(t, uint(10), *res.PlacedLines[0].LotID)
	assert.Equal(t, 50.0, res.PlacedLines[0].UnitPrice)
}

func TestAllocateEarliestExpiryFirst(t *testing.T) {
	item := lotItem(1)
	lots := []models.InventoryLot{
		{ID: 20, ItemID: 1, Quantity: 5, ExpiryDate: datePtr(t, "2025-02-01")}, // B
		{ID: 10, ItemID: 1, Quantity: 5, ExpiryDate: datePtr(t, "2025-01-01")}, // A
	}

	res := Allocate(item, lots, 7, nil)

	require.Len(t, res.PlacedLines, 2)
	assert.Equal(t, 0.0, res.Shortfall)
	// Önce A (erken SKT) tamamen tüketilmeli, kalan B'den
	assert.Equal(t, uint(10), *res.PlacedLines[0].LotID)
	assert.Equal(t, 5.0, res.PlacedLines[0].Quantity)
	assert.Equal(t, uint(20), *res.PlacedLines[1].LotID)
	assert.Equal(t, 2.0, res.PlacedLines[1].Quantity)
}

func TestAllocateNoExpiryLotsSortLast(t *testing.T) {
	item := lotItem(1)
	lots := []models.InventoryLot{
		{ID: 10, ItemID: 1, Quantity: 3, ExpiryDate: nil},                      // A: SKT yok
		{ID: 20, ItemID: 1, Quantity: 3, ExpiryDate: datePtr(t, "2025-01-01")}, // B
	}

	res := Allocate(item, lots, 4, nil)

	require.Len(t, res.PlacedLines, 2)
	assert.Equal(t, uint(20), *res.PlacedLines[0].LotID)
	assert.Equal(t, 3.0, res.PlacedLines[0].Quantity)
	assert.Equal(t, uint(10), *res.PlacedLines[1].LotID)
	assert.Equal(t, 1.0, res.PlacedLines[1].Quantity)
	assert.Equal(t, 0.0, res.Shortfall)
}

func TestAllocateShortfall(t *testing.T) {
	item := lotItem(1)
	lots := []models.InventoryLot{
		{ID: 10, ItemID: 1, Quantity: 4, ExpiryDate: datePtr(t, "2025-01-01")},
		{ID: 20, ItemID: 1, Quantity: 2, ExpiryDate: datePtr(t, "2025-02-01")},
	}

	res := Allocate(item, lots, 10, nil)

	placed := 0.0
	for _, line := range res.PlacedLines {
		placed += line.Quantity
	}
	assert.Equal(t, 6.0, placed)
	assert.Equal(t, 4.0, res.Shortfall)
}

func TestAllocateRespectsExistingCartLines(t *testing.T) {
	item := lotItem(1)
	lotA := uint(10)
	lots := []models.InventoryLot{
		{ID: 10, ItemID: 1, Quantity: 5, ExpiryDate: datePtr(t, "2025-01-01")},
		{ID: 20, ItemID: 1, Quantity: 5, ExpiryDate: datePtr(t, "2025-02-01")},
	}
	existing := []CartLine{
		{ItemID: 1, LotID: &lotA, Quantity: 4, UnitPrice: 50},
	}

	res := Allocate(item, lots, 3, existing)

	require.Len(t, res.PlacedLines, 2)
	// A partisinde sadece 1 kaldı, kalan 2 B'den
	assert.Equal(t, uint(10), *res.PlacedLines[0].LotID)
	assert.Equal(t, 1.0, res.PlacedLines[0].Quantity)
	assert.Equal(t, uint(20), *res.PlacedLines[1].LotID)
	assert.Equal(t, 2.0, res.PlacedLines[1].Quantity)

	// Invariant: parti başına sepet toplamı parti miktarını aşamaz
	cart := MergeLines(existing, res.PlacedLines)
	for _, lot := range lots {
		total := 0.0
		for _, line := range cart {
			if line.LotID != nil && *line.LotID == lot.ID {
				total += line.Quantity
			}
		}
		assert.LessOrEqual(t, total, lot.Quantity)
	}
}

func TestAllocateSkipsFullyCommittedLots(t *testing.T) {
	item := lotItem(1)
	lotA := uint(10)
	lots := []models.InventoryLot{
		{ID: 10, ItemID: 1, Quantity: 3, ExpiryDate: datePtr(t, "2025-01-01")},
		{ID: 20, ItemID: 1, Quantity: 3, ExpiryDate: datePtr(t, "2025-02-01")},
	}
	existing := []CartLine{
		{ItemID: 1, LotID: &lotA, Quantity: 3, UnitPrice: 50},
	}

	res := Allocate(item, lots, 2, existing)

	require.Len(t, res.PlacedLines, 1)
	assert.Equal(t, uint(20), *res.PlacedLines[0].LotID)
	assert.Equal(t, 2.0, res.PlacedLines[0].Quantity)
}

func TestAllocateIgnoresOtherItemsLots(t *testing.T) {
	item := lotItem(1)
	lots := []models.InventoryLot{
		{ID: 10, ItemID: 2, Quantity: 100, ExpiryDate: datePtr(t, "2025-01-01")}, // başka ürünün partisi
	}

	res := Allocate(item, lots, 5, nil)

	assert.Empty(t, res.PlacedLines)
	assert.Equal(t, 5.0, res.Shortfall)
}

func TestAllocateNonLotItem(t *testing.T) {
	item := models.InventoryItem{ID: 1, Name: "Su", Unit: "şişe", SalePrice: 15, TracksLots: false, StockQuantity: 10}
	existing := []CartLine{
		{ItemID: 1, Quantity: 7, UnitPrice: 15},
	}

	res := Allocate(item, nil, 5, existing)

	require.Len(t, res.PlacedLines, 1)
	assert.Nil(t, res.PlacedLines[0].LotID)
	assert.Equal(t, 3.0, res.PlacedLines[0].Quantity)
	assert.Equal(t, 2.0, res.Shortfall)
}

func TestAllocateNonLotItemNoStock(t *testing.T) {
	item := models.InventoryItem{ID: 1, Name: "Su", Unit: "şişe", SalePrice: 15, StockQuantity: 2}
	existing := []CartLine{
		{ItemID: 1, Quantity: 2, UnitPrice: 15},
	}

	res := Allocate(item, nil, 1, existing)

	assert.Empty(t, res.PlacedLines)
	assert.Equal(t, 1.0, res.Shortfall)
}

func TestAllocateZeroRequestNoop(t *testing.T) {
	item := lotItem(1)
	res := Allocate(item, nil, 0, nil)
	assert.Empty(t, res.PlacedLines)
	assert.Equal(t, 0.0, res.Shortfall)
}

func TestMergeLinesCombinesSameLot(t *testing.T) {
	lotA := uint(10)
	cart := []CartLine{
		{ItemID: 1, LotID: &lotA, Quantity: 2, UnitPrice: 50},
	}
	placed := []CartLine{
		{ItemID: 1, LotID: &lotA, Quantity: 3, UnitPrice: 50},
	}

	merged := MergeLines(cart, placed)

	require.Len(t, merged, 1)
	assert.Equal(t, 5.0, merged[0].Quantity)
}

func TestMergeLinesKeepsDistinctLotsSeparate(t *testing.T) {
	lotA, lotB := uint(10), uint(20)
	cart := []CartLine{
		{ItemID: 1, LotID: &lotA, Quantity: 2, UnitPrice: 50},
	}
	placed := []CartLine{
		{ItemID: 1, LotID: &lotB, Quantity: 3, UnitPrice: 50},
	}

	merged := MergeLines(cart, placed)
	assert.Len(t, merged, 2)
}

func TestRebindLineWithinCapacity(t *testing.T) {
	lotA := uint(10)
	line := CartLine{ItemID: 1, LotID: &lotA, Quantity: 3, UnitPrice: 50}
	lots := []models.InventoryLot{
		{ID: 20, ItemID: 1, Quantity: 5, ExpiryDate: nil},
	}

	rebound, capped := RebindLine(line, 20, lots, nil)

	assert.False(t, capped)
	assert.Equal(t, 3.0, rebound.Quantity)
	assert.Equal(t, uint(20), *rebound.LotID)
}

func TestRebindLineCapsToRemaining(t *testing.T) {
	lotA, lotB := uint(10), uint(20)
	line := CartLine{ItemID: 1, LotID: &lotA, Quantity: 5, UnitPrice: 50}
	lots := []models.InventoryLot{
		{ID: 20, ItemID: 1, Quantity: 4, ExpiryDate: nil},
	}
	// Hedef partide başka bir satır 2 birim tutuyor
	others := []CartLine{
		{ItemID: 1, LotID: &lotB, Quantity: 2, UnitPrice: 50},
	}

	rebound, capped := RebindLine(line, 20, lots, others)

	assert.True(t, capped)
	assert.Equal(t, 2.0, rebound.Quantity)
}

func TestRebindLineUnknownLotZeroCapacity(t *testing.T) {
	lotA := uint(10)
	line := CartLine{ItemID: 1, LotID: &lotA, Quantity: 5, UnitPrice: 50}

	rebound, capped := RebindLine(line, 99, nil, nil)

	assert.True(t, capped)
	assert.Equal(t, 0.0, rebound.Quantity)
	assert.Equal(t, uint(99), *rebound.LotID)
}
