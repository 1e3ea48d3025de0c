package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"floristDashboard/models"
)

const (
	// UndeterminedWindow is reported when no order in the set has a delivery window.
	UndeterminedWindow = "Не определено"
	// AnyBouquet is the bouquet selector meaning "no bouquet filter".
	AnyBouquet = "any"
)

// OrderSource is the read side of the order store.
type OrderSource interface {
	ListByFilter(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
}

// BouquetLookup resolves a bouquet id; a missing bouquet is (nil, nil).
type BouquetLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Bouquet, error)
}

// WindowLookup resolves a delivery window id; a missing window is (nil, nil).
type WindowLookup interface {
	GetByID(ctx context.Context, id int64) (*models.DeliveryWindow, error)
}

// ConsultationCounter counts consultation requests created in [from, to).
type ConsultationCounter interface {
	CountCreated(ctx context.Context, from, to *time.Time) (int, error)
}

// Summary holds the report totals. OrdersSum, OrdersCount and UniqueClients
// honour the bouquet selector; Consultations does not.
type Summary struct {
	OrdersSum     decimal.Decimal `json:"orders_sum"`
	OrdersCount   int             `json:"orders_count"`
	UniqueClients int             `json:"unique_clients"`
	Consultations int             `json:"consultations"`
}

// BouquetRef identifies the bouquet a report was narrowed to.
type BouquetRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Report is the staff dashboard for one (period, bouquet) selection.
type Report struct {
	Period        Period        `json:"period"`
	Bouquet       *BouquetRef   `json:"bouquet"` // nil when not filtered
	GeneratedAt   time.Time     `json:"generated_at"`
	Summary       Summary       `json:"summary"`
	Stages        StageAverages `json:"stages"`
	PopularWindow string        `json:"most_popular_window"`
	Hours         []HourShare   `json:"hours"`
	Granularity   Granularity   `json:"granularity"`
	Distribution  []Bucket      `json:"distribution"`
	TopClients    []ClientRank  `json:"top_clients"`
	TopBouquets   []BouquetRank `json:"top_bouquets"`
}

// Options tune a Dashboard. Zero values fall back to sensible defaults.
type Options struct {
	Location         *time.Location
	Workday          Workday
	DecimalSeparator string
	Clock            func() time.Time
	Logger           *logrus.Entry
}

// Dashboard assembles reports from the order store.
type Dashboard struct {
	orders        OrderSource
	bouquets      BouquetLookup
	windows       WindowLookup
	consultations ConsultationCounter

	loc     *time.Location
	workday Workday
	sep     string
	clock   func() time.Time
	log     *logrus.Entry
}

func NewDashboard(orders OrderSource, bouquets BouquetLookup, windows WindowLookup, consultations ConsultationCounter, opts Options) *Dashboard {
	d := &Dashboard{
		orders:        orders,
		bouquets:      bouquets,
		windows:       windows,
		consultations: consultations,
		loc:           opts.Location,
		workday:       opts.Workday,
		sep:           opts.DecimalSeparator,
		clock:         opts.Clock,
		log:           opts.Logger,
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	if d.workday.Start == 0 && d.workday.Location == nil {
		d.workday.Start = DefaultWorkday().Start
	}
	if d.workday.Location == nil {
		d.workday.Location = d.loc
	}
	if d.sep == "" {
		d.sep = ","
	}
	if d.clock == nil {
		d.clock = time.Now
	}
	if d.log == nil {
		d.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return d
}

// ParseBouquetSelector reads the bouquet query value. Empty, "any",
// non-numeric and non-positive selectors mean no filter.
func ParseBouquetSelector(sel string) (int64, bool) {
	sel = strings.TrimSpace(sel)
	if sel == "" || strings.EqualFold(sel, AnyBouquet) {
		return 0, false
	}
	id, err := strconv.ParseInt(sel, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Generate builds the report for a period token and a bouquet selector.
// Unknown periods mean "all"; a selector that does not resolve to an existing
// bouquet is ignored. Only store failures are returned as errors.
func (d *Dashboard) Generate(ctx context.Context, period, bouquet string) (*Report, error) {
	now := d.clock().In(d.loc).Truncate(time.Second)
	p := ParsePeriod(period)
	rng := p.Range(now)

	base := models.OrderFilter{
		Statuses:    models.NonCancelledStatuses(),
		CreatedFrom: rng.From,
		CreatedTo:   rng.To,
	}
	scoped := base
	report := &Report{Period: p, GeneratedAt: now}

	if id, ok := ParseBouquetSelector(bouquet); ok {
		b, err := d.bouquets.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lookup bouquet %d: %w", id, err)
		}
		if b != nil {
			scoped = base.WithBouquet(b.ID)
			report.Bouquet = &BouquetRef{ID: b.ID, Name: b.Name}
		} else {
			d.log.WithField("bouquet", bouquet).Debug("bouquet selector not found, ignoring")
		}
	}

	// One read; the bouquet subset is carved out of the same snapshot so
	// every part of the report agrees.
	snapshot, err := d.orders.ListByFilter(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	selected := selectOrders(snapshot, scoped)

	d.log.WithFields(logrus.Fields{
		"period":   p,
		"bouquet":  bouquet,
		"snapshot": len(snapshot),
		"selected": len(selected),
	}).Debug("generating dashboard")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := d.consultations.CountCreated(gctx, rng.From, rng.To)
		if err != nil {
			return fmt.Errorf("count consultations: %w", err)
		}
		report.Summary.Consultations = n
		return nil
	})
	g.Go(func() error {
		name, err := d.windowName(gctx, selected)
		if err != nil {
			return err
		}
		report.PopularWindow = name
		return nil
	})
	g.Go(func() error {
		report.Summary.OrdersSum, report.Summary.OrdersCount, report.Summary.UniqueClients = Totals(selected)
		return nil
	})
	g.Go(func() error {
		report.Stages = AverageStages(selected, d.workday)
		return nil
	})
	g.Go(func() error {
		report.Hours = HourHistogram(selected, d.loc, d.sep)
		return nil
	})
	g.Go(func() error {
		report.Granularity = SelectGranularity(p, EarliestCreated(selected, now), now)
		report.Distribution = Distribution(selected, report.Granularity, d.loc)
		return nil
	})
	g.Go(func() error {
		report.TopClients = TopClients(snapshot, TopN)
		report.TopBouquets = TopBouquets(snapshot, TopN)
		return nil
	})
	if err := g.Wait(); err != nil {
		d.log.WithError(err).Error("dashboard generation failed")
		return nil, err
	}
	return report, nil
}

func (d *Dashboard) windowName(ctx context.Context, orders []models.Order) (string, error) {
	id, ok := ModalWindow(orders)
	if !ok {
		return UndeterminedWindow, nil
	}
	w, err := d.windows.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("lookup delivery window %d: %w", id, err)
	}
	if w == nil {
		return UndeterminedWindow, nil
	}
	return w.Name, nil
}

func selectOrders(orders []models.Order, f models.OrderFilter) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}
