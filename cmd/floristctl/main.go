// Command floristctl is the maintenance tool for the florist dashboard:
// it seeds synthetic history, purges it again, prints reports and steps the
// schema up or down.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"floristDashboard/internal/analytics"
	"floristDashboard/internal/config"
	"floristDashboard/internal/db"
	"floristDashboard/internal/logger"
	"floristDashboard/internal/seed"
	"floristDashboard/repository"
)

const usage = `usage: floristctl <command> [flags]

commands:
  seed     generate synthetic staff, catalog, shops, orders and consultations
  purge    remove generated orders, consultations and staff accounts
  report   print the dashboard for a period and bouquet
  migrate  up | down [-steps N] | status
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	var runErr error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "seed":
		runErr = runSeed(cfg, log, args)
	case "purge":
		runErr = runPurge(cfg, log, args)
	case "report":
		runErr = runReport(cfg, log, args)
	case "migrate":
		runErr = runMigrate(cfg, log, args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if runErr != nil {
		log.WithError(runErr).Fatal(os.Args[1] + " failed")
	}
}

type stores struct {
	users    *repository.UserRepository
	orders   *repository.OrderRepository
	bouquets *repository.BouquetRepository
	windows  *repository.DeliveryWindowRepository
	consults *repository.ConsultationRepository
	shops    *repository.ShopRepository
	close    func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", cfg.Database.Path, err)
	}
	loc := cfg.Shop.Location
	return &stores{
		users:    repository.NewUserRepository(d),
		orders:   repository.NewOrderRepository(d, loc),
		bouquets: repository.NewBouquetRepository(d),
		windows:  repository.NewDeliveryWindowRepository(d),
		consults: repository.NewConsultationRepository(d, loc),
		shops:    repository.NewShopRepository(d),
		close:    d.Close,
	}, nil
}

func runSeed(cfg *config.Config, log *logrus.Logger, args []string) error {
	def := seed.DefaultConfig()
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	days := fs.Int("days", def.Days, "days of history to generate, ending yesterday")
	minPerDay := fs.Int("min-per-day", def.MinPerDay, "minimum orders per day")
	maxPerDay := fs.Int("max-per-day", def.MaxPerDay, "maximum orders per day")
	clients := fs.Int("clients", def.Clients, "number of distinct clients")
	florists := fs.Int("florists", def.Florists, "florist accounts to ensure")
	couriers := fs.Int("couriers", def.Couriers, "courier accounts to ensure")
	consultations := fs.Int("max-consultations-per-day", def.MaxConsultationsPerDay, "maximum consultation requests per day")
	rndSeed := fs.Int64("seed", 0, "random seed (0 = time based)")
	_ = fs.Parse(args)

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	s := &seed.Seeder{
		Users:         st.users,
		Orders:        st.orders,
		Bouquets:      st.bouquets,
		Windows:       st.windows,
		Consultations: st.consults,
		Shops:         st.shops,
		Log:           logger.WithComponent(log, "seed"),
	}
	start := time.Now()
	res, err := s.Run(context.Background(), time.Now().In(cfg.Shop.Location), seed.Config{
		Days:      *days,
		MinPerDay: *minPerDay,
		MaxPerDay: *maxPerDay,
		Clients:   *clients,
		Florists:  *florists,
		Couriers:  *couriers,

		MaxConsultationsPerDay: *consultations,
		Seed:                   *rndSeed,
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"orders":        res.Orders,
		"consultations": res.Consultations,
		"florists":      res.Florists,
		"couriers":      res.Couriers,
		"shops":         res.Shops,
		"took":          time.Since(start).Round(time.Millisecond),
	}).Info("seed complete")
	return nil
}

func runPurge(cfg *config.Config, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	_ = fs.Parse(args)

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	s := &seed.Seeder{Users: st.users, Orders: st.orders, Consultations: st.consults, Log: logger.WithComponent(log, "seed")}
	res, err := s.Purge(context.Background())
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"orders": res.Orders, "consultations": res.Consultations, "users": res.Users}).Info("purge complete")
	return nil
}

// runMigrate opens the database, which applies pending migrations, then
// performs the requested action.
func runMigrate(cfg *config.Config, log *logrus.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("migrate needs an action: up, down or status")
	}
	fs := flag.NewFlagSet("migrate "+args[0], flag.ExitOnError)
	steps := fs.Int("steps", 1, "migrations to roll back (down only)")
	_ = fs.Parse(args[1:])

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db %s: %w", cfg.Database.Path, err)
	}
	defer d.Close()

	v, err := migrate(d, args[0], *steps, os.Stdout)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"action": args[0], "version": v}).Info("migrate complete")
	return nil
}

func migrate(d *sql.DB, action string, steps int, w io.Writer) (int, error) {
	switch action {
	case "up":
		if err := db.Migrate(d); err != nil {
			return 0, err
		}
	case "down":
		if steps < 1 {
			return 0, fmt.Errorf("steps must be at least 1, got %d", steps)
		}
		for i := 0; i < steps; i++ {
			if err := db.RollbackLast(d); err != nil {
				return 0, fmt.Errorf("rollback: %w", err)
			}
		}
	case "status":
	default:
		return 0, fmt.Errorf("unknown migrate action %q", action)
	}
	v, err := db.Version(d)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(w, "schema version %d\n", v)
	return v, nil
}

func runReport(cfg *config.Config, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	period := fs.String("period", string(analytics.PeriodAll), "period token (today, week, month, year, this_month, ...)")
	bouquet := fs.String("bouquet", analytics.AnyBouquet, "bouquet id or \"any\"")
	_ = fs.Parse(args)

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	dash := analytics.NewDashboard(st.orders, st.bouquets, st.windows, st.consults, analytics.Options{
		Location:         cfg.Shop.Location,
		Workday:          analytics.Workday{Start: cfg.Shop.WorkdayStart, Location: cfg.Shop.Location},
		DecimalSeparator: cfg.Shop.DecimalSeparator,
		Logger:           logger.WithComponent(log, "analytics"),
	})
	r, err := dash.Generate(context.Background(), *period, *bouquet)
	if err != nil {
		return err
	}
	return printReport(os.Stdout, r)
}
