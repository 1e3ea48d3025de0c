package models

// FlowerShop is a physical shop that keeps some bouquets in stock.
type FlowerShop struct {
	ID      int64  `db:"id" json:"id"`
	Address string `db:"address" json:"address"`
	Phone   string `db:"phone" json:"phone"`
}

// BouquetAvailability is one row of the availability table. Available[i]
// refers to Availability.Shops[i].
type BouquetAvailability struct {
	BouquetID int64  `json:"bouquet_id"`
	Name      string `json:"name"`
	Available []bool `json:"available"`
}

// Availability is the bouquet by shop stock table shown to staff. Shops are
// ordered by address and bouquets by name.
type Availability struct {
	Shops    []FlowerShop          `json:"shops"`
	Bouquets []BouquetAvailability `json:"bouquets"`
}
