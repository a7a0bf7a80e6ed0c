package orders

import "inventory-backend/internal/models"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"   // nothing returned yet
	StatusPartial   OrderStatus = "partial"   // some but not all units returned
	StatusCompleted OrderStatus = "completed" // every unit returned
)

// StatusOf derives the order status from its detail rows. This is the only
// place the pending/partial/completed distinction is computed; the status is
// never persisted, so it cannot drift from the underlying rows.
func StatusOf(details []models.WithdrawOrderDetail) OrderStatus {
	if len(details) == 0 {
		return StatusPending
	}

	returned := 0
	for _, d := range details {
		if d.DateReturn != nil {
			returned++
		}
	}

	switch {
	case returned == 0:
		return StatusPending
	case returned == len(details):
		return StatusCompleted
	default:
		return StatusPartial
	}
}
