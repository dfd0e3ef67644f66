// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer represents one batch of surplus food published by a canteen.
// Qty is the number of units still available: reservations decrement it
// inside a store transaction and cancellations restore it.
type Offer struct {
	ID           string          // Document id, immutable once created.
	LocationID   string          // 4-digit canteen code the offer belongs to, immutable.
	Title        string          // Short display title, e.g. "Pasta box".
	PickupWindow string          // Free-text pickup time range, e.g. "15:30-16:30".
	Contents     []string        // Ordered list of item names included in the batch.
	UnitPrice    decimal.Decimal // Non-negative price per unit.
	Qty          int             // Remaining units; never driven below zero.
	Active       bool            // Inactive offers are hidden from browsing, not deleted.
	CreatedAt    time.Time       // Timestamp of when the offer was published.
}

// Available reports whether the offer can currently be reserved.
func (o *Offer) Available() bool {
	return o.Active && o.Qty > 0
}

// SoldOut reports whether every unit has been reserved.
func (o *Offer) SoldOut() bool {
	return o.Qty <= 0
}
