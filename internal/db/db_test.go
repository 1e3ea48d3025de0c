package db

import (
	"database/sql"
	"testing"
	"time"
)

func tableExists(t *testing.T, d *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n); err != nil {
		t.Fatalf("sqlite_master: %v", err)
	}
	return n == 1
}

func columnExists(t *testing.T, d *sql.DB, table, column string) bool {
	t.Helper()
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n); err != nil {
		t.Fatalf("table_info: %v", err)
	}
	return n == 1
}

func TestMigrationsRollBackAndReapply(t *testing.T) {
	d, err := Open("file:migrations_roundtrip?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	v, err := Version(d)
	if err != nil || v != 3 {
		t.Fatalf("version after open: %d err=%v", v, err)
	}
	if !tableExists(t, d, "flower_shops") || !columnExists(t, d, "orders", "florist_id") {
		t.Fatalf("latest schema not applied")
	}

	// 0003
	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback 0003: %v", err)
	}
	if tableExists(t, d, "flower_shops") || tableExists(t, d, "shop_bouquets") {
		t.Fatalf("flower shop tables survived rollback")
	}
	// 0002
	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback 0002: %v", err)
	}
	if columnExists(t, d, "orders", "florist_id") || columnExists(t, d, "orders", "courier_id") {
		t.Fatalf("staff columns survived rollback")
	}
	// 0001
	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback 0001: %v", err)
	}
	for _, table := range []string{"orders", "bouquets", "users", "consultations"} {
		if tableExists(t, d, table) {
			t.Fatalf("table %s survived rollback", table)
		}
	}
	if v, _ := Version(d); v != 0 {
		t.Fatalf("version after full rollback: %d", v)
	}
	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback with nothing applied should be a no-op, got %v", err)
	}

	if err := Migrate(d); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if v, _ := Version(d); v != 3 {
		t.Fatalf("version after reapply: %d", v)
	}
	if !tableExists(t, d, "orders") || !columnExists(t, d, "orders", "courier_id") {
		t.Fatalf("schema not restored")
	}
}

func TestTimeRoundTrip(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	in := time.Date(2024, time.June, 10, 6, 30, 15, 0, time.UTC)
	s := FormatTime(in, msk)
	if s != "2024-06-10 09:30:15" {
		t.Fatalf("FormatTime: %q", s)
	}
	out, err := ParseTime(s, msk)
	if err != nil || !out.Equal(in) {
		t.Fatalf("ParseTime: %s err=%v", out, err)
	}
	if got, err := ParseNullTime(sql.NullString{}, msk); err != nil || got != nil {
		t.Fatalf("ParseNullTime(null): %v err=%v", got, err)
	}
	if ns := NullTime(nil, msk); ns.Valid {
		t.Fatalf("NullTime(nil) should be invalid")
	}
}
