package seed

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"floristDashboard/internal/logger"
	"floristDashboard/internal/testutil"
	"floristDashboard/models"
	"floristDashboard/repository"
)

var seedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestBuildOrders(t *testing.T) {
	bouquets := []models.Bouquet{{ID: 1, Price: decimal.NewFromInt(2500)}, {ID: 2, Price: decimal.NewFromInt(4000)}}
	windows := []models.DeliveryWindow{{ID: 7}, {ID: 8}}
	cfg := Config{Days: 30, MinPerDay: 5, MaxPerDay: 40, Clients: 50}

	staff := Staff{Florists: []int64{11, 12}, Couriers: []int64{21}}

	orders := BuildOrders(rand.New(rand.NewSource(1)), seedNow, cfg, bouquets, windows, staff)
	if len(orders) < 30*5 || len(orders) > 30*40 {
		t.Fatalf("order count %d outside [150, 1200]", len(orders))
	}

	perDay := map[string]int{}
	cancelled := 0
	for i, o := range orders {
		if !strings.HasPrefix(o.DeliveryAddress, AddressPrefix) {
			t.Fatalf("order %d address %q", i, o.DeliveryAddress)
		}
		if h := o.CreatedAt.Hour(); h < openHour || h >= closeHour {
			t.Fatalf("order %d created outside work hours: %s", i, o.CreatedAt)
		}
		if !o.CreatedAt.Before(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("order %d created today or later: %s", i, o.CreatedAt)
		}
		if err := o.CheckTimestamps(); err != nil {
			t.Fatalf("order %d: %v", i, err)
		}
		perDay[o.CreatedAt.Format("2006-01-02")]++

		switch o.Status {
		case models.OrderStatusCancelled:
			cancelled++
			if o.Paid || o.ComposedAt != nil || o.DeliveredAt != nil {
				t.Fatalf("cancelled order %d has paid/stamps: %+v", i, o)
			}
			if o.FloristID != nil || o.CourierID != nil {
				t.Fatalf("cancelled order %d has staff: %+v", i, o)
			}
		case models.OrderStatusDelivered:
			if !o.Paid || o.ComposedAt == nil || o.DeliveredAt == nil {
				t.Fatalf("delivered order %d missing paid/stamps: %+v", i, o)
			}
			if o.FloristID == nil || (*o.FloristID != 11 && *o.FloristID != 12) {
				t.Fatalf("delivered order %d florist %v not from pool", i, o.FloristID)
			}
			if o.CourierID == nil || *o.CourierID != 21 {
				t.Fatalf("delivered order %d courier %v not from pool", i, o.CourierID)
			}
		default:
			t.Fatalf("unexpected status %q", o.Status)
		}
	}
	if len(perDay) != 30 {
		t.Fatalf("days covered: got %d want 30", len(perDay))
	}
	for day, n := range perDay {
		if n < 5 || n > 40 {
			t.Fatalf("day %s has %d orders", day, n)
		}
	}
	if cancelled == 0 || cancelled > len(orders)/4 {
		t.Fatalf("cancelled share looks wrong: %d of %d", cancelled, len(orders))
	}
}

func TestBuildOrders_Deterministic(t *testing.T) {
	bouquets := []models.Bouquet{{ID: 1, Price: decimal.NewFromInt(100)}}
	cfg := Config{Days: 3, MinPerDay: 2, MaxPerDay: 4, Clients: 10}
	a := BuildOrders(rand.New(rand.NewSource(9)), seedNow, cfg, bouquets, nil, Staff{})
	b := BuildOrders(rand.New(rand.NewSource(9)), seedNow, cfg, bouquets, nil, Staff{})
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].CreatedAt.Equal(b[i].CreatedAt) || a[i].Phone != b[i].Phone || a[i].DeliveryWindowID != nil || a[i].FloristID != nil {
			t.Fatalf("order %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	if BuildOrders(rand.New(rand.NewSource(9)), seedNow, cfg, nil, nil, Staff{}) != nil {
		t.Fatalf("expected no orders without bouquets")
	}
}

func TestBuildConsultations(t *testing.T) {
	cfg := Config{Days: 60, Clients: 30, MaxConsultationsPerDay: 4}
	cs := BuildConsultations(rand.New(rand.NewSource(3)), seedNow, cfg)
	if len(cs) == 0 || len(cs) > 60*4 {
		t.Fatalf("consultation count %d outside (0, 240]", len(cs))
	}

	perDay := map[string]int{}
	byStatus := map[models.ConsultationStatus]int{}
	for i, c := range cs {
		if !strings.HasPrefix(c.ClientName, ConsultationPrefix) || c.Phone == "" {
			t.Fatalf("consultation %d: %+v", i, c)
		}
		if h := c.CreatedAt.Hour(); h < openHour || h >= closeHour {
			t.Fatalf("consultation %d created outside work hours: %s", i, c.CreatedAt)
		}
		if !c.CreatedAt.Before(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("consultation %d created today or later: %s", i, c.CreatedAt)
		}
		switch c.Status {
		case models.ConsultationStatusConsulted:
			if c.ConsultedAt == nil || !c.ConsultedAt.After(c.CreatedAt) {
				t.Fatalf("consulted %d has bad consulted_at: %+v", i, c)
			}
		case models.ConsultationStatusCreated, models.ConsultationStatusCancelled:
			if c.ConsultedAt != nil {
				t.Fatalf("consultation %d not consulted but stamped: %+v", i, c)
			}
		default:
			t.Fatalf("unexpected status %q", c.Status)
		}
		perDay[c.CreatedAt.Format("2006-01-02")]++
		byStatus[c.Status]++
	}
	for day, n := range perDay {
		if n > 4 {
			t.Fatalf("day %s has %d consultations", day, n)
		}
	}
	if byStatus[models.ConsultationStatusConsulted] <= len(cs)/2 {
		t.Fatalf("most consultations should be consulted: %v", byStatus)
	}

	if BuildConsultations(rand.New(rand.NewSource(3)), seedNow, Config{Days: 10}) != nil {
		t.Fatalf("expected no consultations with MaxConsultationsPerDay 0")
	}
}

func TestSeederRunAndPurge(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "seedrun")
	users := repository.NewUserRepository(d)
	orders := repository.NewOrderRepository(d, time.UTC)
	consults := repository.NewConsultationRepository(d, time.UTC)
	shops := repository.NewShopRepository(d)
	s := &Seeder{
		Users:         users,
		Orders:        orders,
		Bouquets:      repository.NewBouquetRepository(d),
		Windows:       repository.NewDeliveryWindowRepository(d),
		Consultations: consults,
		Shops:         shops,
		Log:           logger.Discard(),
	}
	ctx := context.Background()
	testutil.SeedUser(t, d, "maria", models.RoleManager)

	cfg := Config{Days: 5, MinPerDay: 3, MaxPerDay: 6, Clients: 20, Florists: 2, Couriers: 3, MaxConsultationsPerDay: 3, Seed: 7}
	res, err := s.Run(ctx, seedNow, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Florists != 2 || res.Couriers != 3 || res.Orders < 15 || res.Orders > 30 || res.Shops != len(starterShops) {
		t.Fatalf("unexpected result %+v", res)
	}
	if n, err := consults.CountCreated(ctx, nil, nil); err != nil || n != res.Consultations {
		t.Fatalf("stored consultations %d, result %d, err=%v", n, res.Consultations, err)
	}

	florists, _ := users.ListByRole(ctx, models.RoleFlorist)
	couriers, _ := users.ListByRole(ctx, models.RoleCourier)
	staffIDs := map[int64]bool{}
	for _, u := range append(florists, couriers...) {
		staffIDs[u.ID] = true
	}
	stored, err := orders.ListByFilter(ctx, models.OrderFilter{})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	for _, o := range stored {
		if o.Status != models.OrderStatusDelivered {
			continue
		}
		if o.FloristID == nil || o.CourierID == nil || !staffIDs[*o.FloristID] || !staffIDs[*o.CourierID] {
			t.Fatalf("delivered order %d lacks seeded staff: florist=%v courier=%v", o.ID, o.FloristID, o.CourierID)
		}
	}

	avail, err := shops.Availability(ctx)
	if err != nil || len(avail.Shops) != len(starterShops) || len(avail.Bouquets) != len(starterCatalog) {
		t.Fatalf("availability after seeding: %+v err=%v", avail, err)
	}

	featured, err := s.Bouquets.Featured(ctx, 10)
	if err != nil || len(featured) == 0 {
		t.Fatalf("featured after seeding: %v %v", featured, err)
	}
	for _, b := range featured {
		if !b.IsRecommended {
			t.Fatalf("starter catalog has recommended bouquets, got %+v", b)
		}
	}

	// A second run reuses staff and catalog.
	res2, err := s.Run(ctx, seedNow, cfg)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res2.Florists != 0 || res2.Couriers != 0 || res2.Shops != 0 {
		t.Fatalf("staff recreated: %+v", res2)
	}
	all, err := s.Bouquets.List(ctx)
	if err != nil || len(all) != len(starterCatalog) {
		t.Fatalf("catalog duplicated: %d bouquets, err=%v", len(all), err)
	}

	purged, err := s.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if purged.Orders != int64(res.Orders+res2.Orders) || purged.Users != 5 || purged.Consultations != int64(res.Consultations+res2.Consultations) {
		t.Fatalf("purged %+v", purged)
	}
	if n, _ := consults.CountCreated(ctx, nil, nil); n != 0 {
		t.Fatalf("consultations left after purge: %d", n)
	}
	left, err := orders.ListByFilter(ctx, models.OrderFilter{})
	if err != nil || len(left) != 0 {
		t.Fatalf("orders left after purge: %d err=%v", len(left), err)
	}
	if u, _ := users.GetByUsername(ctx, "maria"); u == nil {
		t.Fatalf("purge removed a real staff account")
	}
}
