package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/metadata"

	"floristDashboard/internal/db"
	"floristDashboard/models"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so every pooled connection sees the same database.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// GenerateJWTHS256 returns a signed JWT string with minimal claims used by the app.
func GenerateJWTHS256(t *testing.T, secret, name, kind string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"name": name,
		"kind": kind,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// GenerateExpiredJWT returns a token that expired an hour ago.
func GenerateExpiredJWT(t *testing.T, secret, name, kind string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"name": name,
		"kind": kind,
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}

// SeedBouquet inserts a bouquet directly and returns its id.
func SeedBouquet(t *testing.T, d *sql.DB, name string, price int64) int64 {
	t.Helper()
	res, err := d.Exec(`INSERT INTO bouquets (name, price) VALUES (?, ?)`, name, decimal.NewFromInt(price).String())
	if err != nil {
		t.Fatalf("seed bouquet: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedWindow inserts a delivery window and returns its id.
func SeedWindow(t *testing.T, d *sql.DB, name string) int64 {
	t.Helper()
	res, err := d.Exec(`INSERT INTO delivery_windows (name) VALUES (?)`, name)
	if err != nil {
		t.Fatalf("seed window: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// SeedUser inserts a user with a role and returns it.
func SeedUser(t *testing.T, d *sql.DB, username string, role models.Role) models.User {
	t.Helper()
	res, err := d.Exec(`INSERT INTO users (username, role) VALUES (?, ?)`, username, string(role))
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	id, _ := res.LastInsertId()
	return models.User{ID: id, Username: username, Role: role}
}
