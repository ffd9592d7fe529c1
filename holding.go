package finboard

import "time"

// Holding is a position in a tradable instrument, keyed by its symbol.
//
// Quantity and AverageCost are fixed at creation; the price sync only ever
// touches CurrentPrice and LastUpdated.
type Holding struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name,omitempty"`
	Quantity     Quantity  `json:"quantity"`
	AverageCost  float64   `json:"averageCost"`
	CurrentPrice float64   `json:"currentPrice"`
	LastUpdated  time.Time `json:"lastUpdated,omitzero"`
}

// MarketValue is the holding's value at its last known price.
func (h Holding) MarketValue() float64 {
	return h.Quantity.InexactFloat64() * h.CurrentPrice
}

// CostBasis is the total acquisition cost of the position.
func (h Holding) CostBasis() float64 {
	return h.Quantity.InexactFloat64() * h.AverageCost
}
