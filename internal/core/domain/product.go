package domain

// Product is a catalog entry. The catalog is immutable after load; the
// live quantity is derived from the item's reserved counter, never stored.
type Product struct {
	ItemID                   int     `json:"itemId"`
	ItemName                 string  `json:"itemName"`
	Price                    float64 `json:"price"`
	InitialAvailableQuantity int64   `json:"initialAvailableQuantity"`
}

// ProductDetail is a Product enriched with the quantity still available,
// initialAvailableQuantity minus the reserved count.
type ProductDetail struct {
	Product
	CurrentQuantity int64 `json:"currentQuantity"`
}

// DefaultCatalog returns the built-in product list.
func DefaultCatalog() []Product {
	return []Product{
		{ItemID: 1, ItemName: "Suitcase 250", Price: 50, InitialAvailableQuantity: 4},
		{ItemID: 2, ItemName: "Suitcase 450", Price: 100, InitialAvailableQuantity: 10},
		{ItemID: 3, ItemName: "Suitcase 650", Price: 350, InitialAvailableQuantity: 2},
		{ItemID: 4, ItemName: "Suitcase 1050", Price: 550, InitialAvailableQuantity: 5},
	}
}
