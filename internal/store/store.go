// Package store provides order persistence interfaces and
// implementations.
package store

import (
	"context"
	"time"

	"idb-pricer/internal/models"
)

// StoredOrder is one saved parse/price result. The implied market is a
// snapshot taken at save time; it is never refreshed in place.
type StoredOrder struct {
	ID           string
	CreatedAt    time.Time
	Ticker       string
	RawText      string
	Canonical    string
	Structure    models.OptionStructure
	ImpliedBid   float64
	ImpliedOffer float64
	ImpliedMid   float64
	BidSize      int
	OfferSize    int
	Incomplete   bool
	Spot         float64
}

// Sink defines the interface for order persistence.
type Sink interface {
	SaveOrder(ctx context.Context, order *StoredOrder) error
	GetOrder(ctx context.Context, id string) (*StoredOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]StoredOrder, error)
	DeleteOrder(ctx context.Context, id string) error
	Close() error
}

// OrderFilter represents filters for querying saved orders.
type OrderFilter struct {
	Ticker        string
	StructureType models.StructureType
	StartDate     time.Time
	EndDate       time.Time
	Limit         int
}
