package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"floristDashboard/models"
	"floristDashboard/repository"
)

// Generated rows are recognisable by these prefixes so Purge can remove them.
const (
	AddressPrefix      = "delivery_address_"
	ConsultationPrefix = "consultation_client_"
	FloristPrefix      = "florist_"
	CourierPrefix      = "courier_"
)

// Config controls how much synthetic history is generated.
type Config struct {
	Days      int // days of history before today
	MinPerDay int
	MaxPerDay int
	Clients   int
	Florists  int
	Couriers  int
	// MaxConsultationsPerDay bounds callback requests per day; 0 generates none.
	MaxConsultationsPerDay int
	Seed                   int64 // 0 picks a time based seed
}

// DefaultConfig mirrors four years of a busy shop.
func DefaultConfig() Config {
	return Config{Days: 365 * 4, MinPerDay: 5, MaxPerDay: 40, Clients: 5000, Florists: 5, Couriers: 10, MaxConsultationsPerDay: 6}
}

// Work hours orders are placed in.
const (
	openHour  = 8
	closeHour = 21
)

// Staff holds the user ids generated orders are assigned to.
type Staff struct {
	Florists []int64
	Couriers []int64
}

// BuildOrders generates synthetic orders for the days before now's date.
// Roughly one order in eleven is unpaid and cancelled; the rest are delivered
// and, when staff is given, carry a random florist and courier.
// Composition that would end after closing moves to the next morning.
func BuildOrders(rnd *rand.Rand, now time.Time, cfg Config, bouquets []models.Bouquet, windows []models.DeliveryWindow, staff Staff) []models.Order {
	if len(bouquets) == 0 || cfg.Days <= 0 {
		return nil
	}
	if cfg.Clients <= 0 {
		cfg.Clients = 1
	}
	if cfg.MaxPerDay < cfg.MinPerDay {
		cfg.MaxPerDay = cfg.MinPerDay
	}
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var out []models.Order
	for delta := -cfg.Days; delta < 0; delta++ {
		day := today.AddDate(0, 0, delta)
		open := day.Add(openHour * time.Hour)
		closing := day.Add(closeHour * time.Hour)

		n := cfg.MinPerDay + rnd.Intn(cfg.MaxPerDay-cfg.MinPerDay+1)
		for i := 0; i < n; i++ {
			created := open.Add(time.Duration(rnd.Int63n(int64(closing.Sub(open)/time.Second))) * time.Second)
			client := rnd.Intn(cfg.Clients)
			b := bouquets[rnd.Intn(len(bouquets))]

			o := models.Order{
				BouquetID:       b.ID,
				Price:           b.Price,
				ClientName:      fmt.Sprintf("client_name_%d", client),
				Phone:           fmt.Sprintf("+%d", 79000000000+client),
				DeliveryAddress: fmt.Sprintf("%s%d", AddressPrefix, client),
				Email:           fmt.Sprintf("email_%d", client),
				CreatedAt:       created,
			}
			if len(windows) > 0 && rnd.Intn(5) > 0 {
				id := windows[rnd.Intn(len(windows))].ID
				o.DeliveryWindowID = &id
			}

			if rnd.Intn(11) == 0 {
				o.Status = models.OrderStatusCancelled
				out = append(out, o)
				continue
			}
			o.Paid = true
			o.Status = models.OrderStatusDelivered

			composeFor := time.Duration(30+rnd.Intn(91)) * time.Minute
			composed := created.Add(composeFor)
			if composed.After(closing) {
				composed = open.AddDate(0, 0, 1).Add(composeFor)
			}
			delivered := composed.Add(time.Duration(30+rnd.Intn(91)) * time.Minute)
			o.ComposedAt = &composed
			o.DeliveredAt = &delivered
			o.FloristID = pick(rnd, staff.Florists)
			o.CourierID = pick(rnd, staff.Couriers)
			out = append(out, o)
		}
	}
	return out
}

func pick(rnd *rand.Rand, ids []int64) *int64 {
	if len(ids) == 0 {
		return nil
	}
	id := ids[rnd.Intn(len(ids))]
	return &id
}

// BuildConsultations generates up to cfg.MaxConsultationsPerDay callback
// requests for each day before now's date. One in ten is cancelled, one in
// ten is left unanswered and the rest were consulted within the hour.
func BuildConsultations(rnd *rand.Rand, now time.Time, cfg Config) []models.Consultation {
	if cfg.MaxConsultationsPerDay <= 0 || cfg.Days <= 0 {
		return nil
	}
	if cfg.Clients <= 0 {
		cfg.Clients = 1
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var out []models.Consultation
	for delta := -cfg.Days; delta < 0; delta++ {
		day := today.AddDate(0, 0, delta)
		open := day.Add(openHour * time.Hour)
		span := int64((closeHour - openHour) * time.Hour / time.Second)

		n := rnd.Intn(cfg.MaxConsultationsPerDay + 1)
		for i := 0; i < n; i++ {
			client := rnd.Intn(cfg.Clients)
			c := models.Consultation{
				ClientName: fmt.Sprintf("%s%d", ConsultationPrefix, client),
				Phone:      fmt.Sprintf("+%d", 79000000000+client),
				CreatedAt:  open.Add(time.Duration(rnd.Int63n(span)) * time.Second),
			}
			switch rnd.Intn(10) {
			case 0:
				c.Status = models.ConsultationStatusCancelled
			case 1:
				c.Status = models.ConsultationStatusCreated
			default:
				at := c.CreatedAt.Add(time.Duration(5+rnd.Intn(56)) * time.Minute)
				c.ConsultedAt = &at
				c.Status = models.ConsultationStatusConsulted
			}
			out = append(out, c)
		}
	}
	return out
}

// Result summarises a seeding run.
type Result struct {
	Orders        int
	Consultations int
	Florists      int
	Couriers      int
	Shops         int
}

// Seeder writes synthetic data through the repositories.
type Seeder struct {
	Users         *repository.UserRepository
	Orders        repository.OrderRepositoryI
	Bouquets      *repository.BouquetRepository
	Windows       repository.DeliveryWindowRepositoryI
	Consultations repository.ConsultationRepositoryI
	Shops         repository.ShopRepositoryI
	Log           *logrus.Entry
}

// Run creates staff accounts, a starter catalog and shops when there are
// none, and cfg.Days of order and consultation history ending yesterday.
func (s *Seeder) Run(ctx context.Context, now time.Time, cfg Config) (Result, error) {
	var res Result
	seedVal := cfg.Seed
	if seedVal == 0 {
		seedVal = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seedVal))

	var (
		staff Staff
		err   error
	)
	if res.Florists, staff.Florists, err = s.ensureStaff(ctx, FloristPrefix, models.RoleFlorist, cfg.Florists); err != nil {
		return res, err
	}
	if res.Couriers, staff.Couriers, err = s.ensureStaff(ctx, CourierPrefix, models.RoleCourier, cfg.Couriers); err != nil {
		return res, err
	}

	bouquets, windows, err := s.ensureCatalog(ctx)
	if err != nil {
		return res, err
	}
	if res.Shops, err = s.ensureShops(ctx, rnd, bouquets); err != nil {
		return res, err
	}

	orders := BuildOrders(rnd, now, cfg, bouquets, windows, staff)
	// batches of 1000 rows per transaction
	const batch = 1000
	for start := 0; start < len(orders); start += batch {
		end := min(start+batch, len(orders))
		if err := s.Orders.CreateMany(ctx, orders[start:end]); err != nil {
			return res, fmt.Errorf("insert orders: %w", err)
		}
		res.Orders = end
		s.log().WithField("orders", end).Debug("seed progress")
	}

	consultations := BuildConsultations(rnd, now, cfg)
	for start := 0; start < len(consultations); start += batch {
		end := min(start+batch, len(consultations))
		if err := s.Consultations.CreateMany(ctx, consultations[start:end]); err != nil {
			return res, fmt.Errorf("insert consultations: %w", err)
		}
		res.Consultations = end
	}
	return res, nil
}

// PurgeResult counts the rows Purge removed.
type PurgeResult struct {
	Orders        int64
	Consultations int64
	Users         int64
}

// Purge removes generated orders, consultations and staff accounts. The
// catalog and shops stay.
func (s *Seeder) Purge(ctx context.Context) (PurgeResult, error) {
	var res PurgeResult
	var err error
	if res.Orders, err = s.Orders.DeleteSeeded(ctx, AddressPrefix); err != nil {
		return res, err
	}
	if res.Consultations, err = s.Consultations.DeleteSeeded(ctx, ConsultationPrefix); err != nil {
		return res, err
	}
	for _, prefix := range []string{FloristPrefix, CourierPrefix} {
		n, err := s.Users.DeleteByPrefix(ctx, prefix)
		if err != nil {
			return res, err
		}
		res.Users += n
	}
	return res, nil
}

// ensureStaff makes sure count accounts named prefix0..prefixN exist and
// returns how many it created together with all of their ids.
func (s *Seeder) ensureStaff(ctx context.Context, prefix string, role models.Role, count int) (int, []int64, error) {
	created := 0
	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		u, err := s.Users.GetByUsername(ctx, name)
		if err != nil {
			return created, ids, err
		}
		if u == nil {
			if u, err = s.Users.Create(ctx, name, role); err != nil {
				return created, ids, fmt.Errorf("create %s: %w", name, err)
			}
			created++
		}
		ids = append(ids, u.ID)
	}
	return created, ids, nil
}

var starterShops = []models.FlowerShop{
	{Address: "ул. Пушкина, 10", Phone: "+74950000001"},
	{Address: "пр. Мира, 54", Phone: "+74950000002"},
	{Address: "ул. Лесная, 3", Phone: "+74950000003"},
}

// ensureShops creates the starter shops when there are none and stocks
// each with a random half of the catalog.
func (s *Seeder) ensureShops(ctx context.Context, rnd *rand.Rand, bouquets []models.Bouquet) (int, error) {
	shops, err := s.Shops.List(ctx)
	if err != nil || len(shops) > 0 {
		return 0, err
	}
	for _, sh := range starterShops {
		created, err := s.Shops.Create(ctx, &sh)
		if err != nil {
			return 0, fmt.Errorf("create shop %s: %w", sh.Address, err)
		}
		for _, b := range bouquets {
			if err := s.Shops.SetAvailability(ctx, created.ID, b.ID, rnd.Intn(2) == 0); err != nil {
				return 0, err
			}
		}
	}
	s.log().WithField("shops", len(starterShops)).Info("starter shops created")
	return len(starterShops), nil
}

type starterBouquet struct {
	name        string
	price       int64
	recommended bool
	items       map[string]int
	events      []string
}

var starterCatalog = []starterBouquet{
	{"Нежность", 2500, true, map[string]int{"Роза кустовая": 7, "Эвкалипт": 3}, []string{"День рождения"}},
	{"Весеннее утро", 3200, false, map[string]int{"Тюльпан": 15}, []string{"8 марта"}},
	{"Красные розы", 4500, true, map[string]int{"Роза": 25}, []string{"Свадьба", "День рождения"}},
	{"Пионовое облако", 5200, false, map[string]int{"Пион": 9, "Эвкалипт": 2}, []string{"Свадьба"}},
}

func (s *Seeder) ensureCatalog(ctx context.Context) ([]models.Bouquet, []models.DeliveryWindow, error) {
	bouquets, err := s.Bouquets.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(bouquets) == 0 {
		events := map[string]int64{}
		for _, sb := range starterCatalog {
			b, err := s.Bouquets.Create(ctx, &models.Bouquet{Name: sb.name, Price: decimal.NewFromInt(sb.price), IsRecommended: sb.recommended})
			if err != nil {
				return nil, nil, fmt.Errorf("create bouquet %s: %w", sb.name, err)
			}
			for item, n := range sb.items {
				if err := s.Bouquets.AddItem(ctx, b.ID, item, n); err != nil {
					return nil, nil, err
				}
			}
			for _, name := range sb.events {
				id, ok := events[name]
				if !ok {
					e, err := s.Bouquets.CreateEvent(ctx, name)
					if err != nil {
						return nil, nil, err
					}
					id = e.ID
					events[name] = id
				}
				if err := s.Bouquets.AttachEvent(ctx, b.ID, id); err != nil {
					return nil, nil, err
				}
			}
			bouquets = append(bouquets, *b)
		}
		s.log().WithField("bouquets", len(bouquets)).Info("starter catalog created")
	}

	windows, err := s.Windows.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(windows) == 0 {
		for from := 8; from < 20; from += 4 {
			f, t := from, from+4
			w, err := s.Windows.Create(ctx, &models.DeliveryWindow{Name: fmt.Sprintf("%d:00-%d:00", f, t), FromHour: &f, ToHour: &t})
			if err != nil {
				return nil, nil, err
			}
			windows = append(windows, *w)
		}
	}
	return bouquets, windows, nil
}

func (s *Seeder) log() *logrus.Entry {
	if s.Log != nil {
		return s.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
