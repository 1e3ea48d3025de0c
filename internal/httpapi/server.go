package httpapi

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"

	"floristDashboard/internal/analytics"
	"floristDashboard/internal/auth"
	"floristDashboard/models"
)

// TokenCookie is the cookie a browser session carries the staff JWT in.
const TokenCookie = "token"

const staffLocal = "staff"

// ReportGenerator builds dashboard reports.
type ReportGenerator interface {
	Generate(ctx context.Context, period, bouquet string) (*analytics.Report, error)
}

// FeaturedCatalog lists the storefront's front page bouquets.
type FeaturedCatalog interface {
	Featured(ctx context.Context, limit int) ([]models.Bouquet, error)
}

// AvailabilityReader builds the bouquet by shop stock table.
type AvailabilityReader interface {
	Availability(ctx context.Context) (*models.Availability, error)
}

// Config wires the HTTP surface. Catalog and Shops are optional; their
// routes are not mounted when nil.
type Config struct {
	JWTSecret string
	LoginURL  string
	Users     auth.UserLookup
	Dashboard ReportGenerator
	Catalog   FeaturedCatalog
	Shops     AvailabilityReader
	Log       *logrus.Entry
}

const maxFeatured = 50

// New builds the fiber app serving the staff dashboard.
func New(cfg Config) *fiber.App {
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = "/login"
	}

	app := fiber.New(fiber.Config{
		AppName:      "Florist Dashboard",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				message = fe.Message
			}
			cfg.Log.WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
				"code":   code,
			}).WithError(err).Error("request error")
			return c.Status(code).JSON(fiber.Map{"status": "error", "message": message})
		},
	})
	app.Use(requestid.New())
	app.Use(recover.New())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if cfg.Catalog != nil {
		app.Get("/bouquets/featured", func(c fiber.Ctx) error {
			limit := 0
			if q := c.Query("limit"); q != "" {
				n, err := strconv.Atoi(q)
				if err != nil || n < 1 || n > maxFeatured {
					return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxFeatured))
				}
				limit = n
			}
			bouquets, err := cfg.Catalog.Featured(c.Context(), limit)
			if err != nil {
				return err
			}
			if bouquets == nil {
				bouquets = []models.Bouquet{}
			}
			return c.JSON(bouquets)
		})
	}

	staff := app.Group("/staff", requireStaff(cfg))
	staff.Get("/dashboard", func(c fiber.Ctx) error {
		period := c.Query("period", string(analytics.PeriodAll))
		bouquet := c.Query("bouquet", analytics.AnyBouquet)
		if u, ok := StaffUser(c); ok {
			cfg.Log.WithFields(logrus.Fields{"staff": u.Username, "period": period, "bouquet": bouquet}).Debug("dashboard requested")
		}
		report, err := cfg.Dashboard.Generate(c.Context(), period, bouquet)
		if err != nil {
			return err
		}
		return c.JSON(report)
	})
	if cfg.Shops != nil {
		staff.Get("/availability", func(c fiber.Ctx) error {
			a, err := cfg.Shops.Availability(c.Context())
			if err != nil {
				return err
			}
			return c.JSON(a)
		})
	}
	return app
}

// requireStaff lets through callers whose token names a staff user. Anyone
// else is redirected to the login page with a next parameter pointing back.
func requireStaff(cfg Config) fiber.Handler {
	return func(c fiber.Ctx) error {
		p, err := principal(c, cfg.JWTSecret)
		if err != nil {
			return redirectToLogin(c, cfg.LoginURL)
		}
		u, err := auth.LookupStaff(c.Context(), cfg.Users, p)
		if errors.Is(err, auth.ErrNotStaff) {
			return redirectToLogin(c, cfg.LoginURL)
		}
		if err != nil {
			return err
		}
		c.Locals(staffLocal, u)
		return c.Next()
	}
}

// StaffUser returns the user requireStaff authenticated.
func StaffUser(c fiber.Ctx) (*models.User, bool) {
	u, ok := c.Locals(staffLocal).(*models.User)
	return u, ok
}

func principal(c fiber.Ctx, secret string) (*auth.Principal, error) {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		tok, err := auth.BearerToken(h)
		if err != nil {
			return nil, err
		}
		return auth.ParseToken(tok, secret)
	}
	if tok := c.Cookies(TokenCookie); tok != "" {
		return auth.ParseToken(tok, secret)
	}
	return nil, errors.New("missing token")
}

func redirectToLogin(c fiber.Ctx, loginURL string) error {
	u, err := url.Parse(loginURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("next", c.OriginalURL())
	u.RawQuery = q.Encode()
	return c.Redirect().Status(fiber.StatusFound).To(u.String())
}
