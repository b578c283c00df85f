package domain

// Price tiers as served by the catalog (0 = cheap, 2 = expensive).
const (
	PriceLow = iota
	PriceMedium
	PriceHigh
)

// Restaurant is a read-only catalog entry. The booking flow only ever
// reads ID; the rest is display data.
type Restaurant struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Image   string   `json:"image"`
	Address string   `json:"address"`
	Cuisine []string `json:"cuisine"`
	Price   int      `json:"price"`
	Metro   string   `json:"metro,omitempty"`
}
