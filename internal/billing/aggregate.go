package billing

import "otel-backend/internal/models"

type PaymentStatus string

const (
	StatusOverpaid PaymentStatus = "Overpaid"
	StatusPaid     PaymentStatus = "Paid"
	StatusPartial  PaymentStatus = "Partial"
	StatusUnpaid   PaymentStatus = "Unpaid"
)

// Snapshot: Misafir kartında gösterilen bakiye özeti. Saklanmaz, her istekte
// güncel kayıtlardan yeniden hesaplanır.
type Snapshot struct {
	RoomCharge        float64       `json:"room_charge"`
	RoomPaid          float64       `json:"room_paid"`
	POSPendingTotal   float64       `json:"pos_pending_total"`
	POSCompletedTotal float64       `json:"pos_completed_total"`
	AssessmentCost    float64       `json:"assessment_cost"`
	RefundedAmount    float64       `json:"refunded_amount"`
	TotalDue          float64       `json:"total_due"`
	PaidTotal         float64       `json:"paid_total"`
	BalanceDue        float64       `json:"balance_due"`
	Overpayment       float64       `json:"overpayment"`
	Status            PaymentStatus `json:"status"`
}

// Aggregate: Konaklama tutarı, POS harcamaları, oda kontrol maliyetleri ve iadelerden
// bakiye özetini hesaplar. Ara değerler negatif olabilir; sıfır kırpması yalnızca
// paid_total, balance_due ve overpayment adımlarında uygulanır.
func Aggregate(booking models.Booking, posTransactions []models.POSTransaction, latestAssessment *models.RoomAssessment, refundedAmount float64) Snapshot {
	posPendingTotal := 0.0
	posCompletedTotal := 0.0
	for _, tx := range posTransactions {
		switch tx.Status {
		case models.POSStatusPending:
			posPendingTotal += tx.Total
		case models.POSStatusCompleted:
			posCompletedTotal += tx.Total
		}
	}

	assessmentCost := 0.0
	if latestAssessment != nil {
		assessmentCost = latestAssessment.DamageCost + latestAssessment.MissingCost
	}

	totalDue := booking.TotalAmount + posPendingTotal + assessmentCost

	paidTotal := booking.PaidAmount + posCompletedTotal - refundedAmount
	if paidTotal < 0 {
		paidTotal = 0
	}

	balanceDue := totalDue - paidTotal
	if balanceDue < 0 {
		balanceDue = 0
	}

	overpayment := paidTotal - totalDue
	if overpayment < 0 {
		overpayment = 0
	}

	var status PaymentStatus
	switch {
	case overpayment > 0:
		status = StatusOverpaid
	case paidTotal >= totalDue:
		status = StatusPaid
	case paidTotal > 0:
		status = StatusPartial
	default:
		status = StatusUnpaid
	}

	return Snapshot{
		RoomCharge:        booking.TotalAmount,
		RoomPaid:          booking.PaidAmount,
		POSPendingTotal:   posPendingTotal,
		POSCompletedTotal: posCompletedTotal,
		AssessmentCost:    assessmentCost,
		RefundedAmount:    refundedAmount,
		TotalDue:          totalDue,
		PaidTotal:         paidTotal,
		BalanceDue:        balanceDue,
		Overpayment:       overpayment,
		Status:            status,
	}
}
