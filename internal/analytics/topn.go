package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"floristDashboard/models"
)

// TopN is how many clients and bouquets the dashboard ranks.
const TopN = 5

// ClientRank aggregates one client, identified by phone number.
type ClientRank struct {
	Phone  string          `json:"phone"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"` // sum of paid orders
	Orders int             `json:"orders"`
}

// BouquetRank aggregates orders of one bouquet name.
type BouquetRank struct {
	Name    string          `json:"name"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// TopClients ranks clients by paid amount, then order count, both descending.
// Phone breaks remaining ties so the result is deterministic.
func TopClients(orders []models.Order, n int) []ClientRank {
	byPhone := make(map[string]*ClientRank)
	var keys []string
	for _, o := range orders {
		c, ok := byPhone[o.Phone]
		if !ok {
			c = &ClientRank{Phone: o.Phone, Amount: decimal.Zero}
			byPhone[o.Phone] = c
			keys = append(keys, o.Phone)
		}
		// orders arrive oldest first, keep the latest name the client used
		c.Name = o.ClientName
		c.Orders++
		if o.Paid {
			c.Amount = c.Amount.Add(o.Price)
		}
	}
	out := make([]ClientRank, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byPhone[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].Phone < out[j].Phone
	})
	return limit(out, n)
}

// TopBouquets ranks bouquet names by order count, then name.
func TopBouquets(orders []models.Order, n int) []BouquetRank {
	byName := make(map[string]*BouquetRank)
	var keys []string
	for _, o := range orders {
		b, ok := byName[o.BouquetName]
		if !ok {
			b = &BouquetRank{Name: o.BouquetName, Revenue: decimal.Zero}
			byName[o.BouquetName] = b
			keys = append(keys, o.BouquetName)
		}
		b.Orders++
		b.Revenue = b.Revenue.Add(o.Price)
	}
	out := make([]BouquetRank, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byName[k])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].Name < out[j].Name
	})
	return limit(out, n)
}

func limit[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// ModalWindow returns the delivery window used by most orders. Orders without
// a window (as soon as possible) are ignored; ties go to the lower id.
func ModalWindow(orders []models.Order) (int64, bool) {
	counts := make(map[int64]int)
	for _, o := range orders {
		if o.DeliveryWindowID != nil {
			counts[*o.DeliveryWindowID]++
		}
	}
	var best int64
	bestN := 0
	for id, n := range counts {
		if n > bestN || (n == bestN && id < best) {
			best, bestN = id, n
		}
	}
	return best, bestN > 0
}

// Totals sums prices, counts orders and distinct phone numbers.
func Totals(orders []models.Order) (sum decimal.Decimal, count, uniqueClients int) {
	sum = decimal.Zero
	phones := make(map[string]struct{})
	for _, o := range orders {
		sum = sum.Add(o.Price)
		phones[o.Phone] = struct{}{}
	}
	return sum, len(orders), len(phones)
}
