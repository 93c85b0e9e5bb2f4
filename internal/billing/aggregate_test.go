package billing

import (
	"testing"

	"otel-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAggregatePartialScenario(t *testing.T) {
	booking := models.Booking{TotalAmount: 10000, PaidAmount: 3000}
	posTxs := []models.POSTransaction{
		{Status: models.POSStatusCompleted, Total: 1500},
		{Status: models.POSStatusPending, Total: 500},
	}
	assessment := &models.RoomAssessment{DamageCost: 200, MissingCost: 0}

	snap := Aggregate(booking, posTxs, assessment, 0)

	assert.Equal(t, 10700.0, snap.TotalDue)
	assert.Equal(t, 4500.0, snap.PaidTotal)
	assert.Equal(t, 6200.0, snap.BalanceDue)
	assert.Equal(t, 0.0, snap.Overpayment)
	assert.Equal(t, StatusPartial, snap.Status)
}

func TestAggregateOverpayment(t *testing.T) {
	booking := models.Booking{TotalAmount: 10000, PaidAmount: 12000}

	snap := Aggregate(booking, nil, nil, 0)

	assert.Equal(t, 10000.0, snap.TotalDue)
	assert.Equal(t, 12000.0, snap.PaidTotal)
	assert.Equal(t, 2000.0, snap.Overpayment)
	assert.Equal(t, 0.0, snap.BalanceDue)
	assert.Equal(t, StatusOverpaid, snap.Status)
}

func TestAggregateRefundClampsPaidTotal(t *testing.T) {
	booking := models.Booking{TotalAmount: 2000, PaidAmount: 1000}

	snap := Aggregate(booking, nil, nil, 5000)

	assert.Equal(t, 0.0, snap.PaidTotal)
	assert.Equal(t, 2000.0, snap.BalanceDue)
	assert.Equal(t, StatusUnpaid, snap.Status)
}

func TestAggregateExactPaymentIsPaid(t *testing.T) {
	booking := models.Booking{TotalAmount: 5000, PaidAmount: 5000}

	snap := Aggregate(booking, nil, nil, 0)

	assert.Equal(t, 0.0, snap.BalanceDue)
	assert.Equal(t, 0.0, snap.Overpayment)
	assert.Equal(t, StatusPaid, snap.Status)
}

func TestAggregateZeroEverythingIsPaid(t *testing.T) {
	// Borç yok, ödeme yok: paid_total >= total_due olduğu için "Paid"
	snap := Aggregate(models.Booking{}, nil, nil, 0)

	assert.Equal(t, StatusPaid, snap.Status)
}

func TestAggregateUnpaid(t *testing.T) {
	booking := models.Booking{TotalAmount: 3000, PaidAmount: 0}

	snap := Aggregate(booking, nil, nil, 0)

	assert.Equal(t, 3000.0, snap.BalanceDue)
	assert.Equal(t, StatusUnpaid, snap.Status)
}

func TestAggregateIgnoresVoidTransactions(t *testing.T) {
	booking := models.Booking{TotalAmount: 1000}
	posTxs := []models.POSTransaction{
		{Status: models.POSStatusVoid, Total: 400},
		{Status: models.POSStatusPending, Total: 100},
	}

	snap := Aggregate(booking, posTxs, nil, 0)

	assert.Equal(t, 100.0, snap.POSPendingTotal)
	assert.Equal(t, 0.0, snap.POSCompletedTotal)
	assert.Equal(t, 1100.0, snap.TotalDue)
}

func TestAggregateAssessmentSumsDamageAndMissing(t *testing.T) {
	booking := models.Booking{TotalAmount: 1000}
	assessment := &models.RoomAssessment{DamageCost: 250, MissingCost: 75}

	snap := Aggregate(booking, nil, assessment, 0)

	assert.Equal(t, 325.0, snap.AssessmentCost)
	assert.Equal(t, 1325.0, snap.TotalDue)
}

func TestAggregateIsIdempotent(t *testing.T) {
	booking := models.Booking{TotalAmount: 10000, PaidAmount: 3000}
	posTxs := []models.POSTransaction{
		{Status: models.POSStatusCompleted, Total: 1500},
		{Status: models.POSStatusPending, Total: 500},
	}
	assessment := &models.RoomAssessment{DamageCost: 200}

	first := Aggregate(booking, posTxs, assessment, 100)
	second := Aggregate(booking, posTxs, assessment, 100)

	assert.Equal(t, first, second)
}
