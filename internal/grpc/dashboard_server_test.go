package grpcserver

import (
	"context"
	"database/sql"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"floristDashboard/internal/analytics"
	"floristDashboard/internal/auth"
	"floristDashboard/internal/logger"
	"floristDashboard/internal/testutil"
	"floristDashboard/models"
	"floristDashboard/repository"
)

const testSecret = "grpc-test-secret"

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type deps struct {
	db      *sql.DB
	orders  *repository.OrderRepository
	server  *DashboardServer
	bouquet int64
	window  int64
}

// newTestDeps opens an in-memory sqlite DB, seeds staff and catalog rows and
// wires a DashboardServer over it.
func newTestDeps(t *testing.T, name string) *deps {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	testutil.SeedUser(t, d, "flora", models.RoleFlorist)
	testutil.SeedUser(t, d, "kurt", models.RoleCourier)
	testutil.SeedUser(t, d, "maria", models.RoleManager)
	testutil.SeedUser(t, d, "cust", "")

	orders := repository.NewOrderRepository(d, time.UTC)
	dash := analytics.NewDashboard(orders,
		repository.NewBouquetRepository(d),
		repository.NewDeliveryWindowRepository(d),
		repository.NewConsultationRepository(d, time.UTC),
		analytics.Options{Location: time.UTC, Clock: func() time.Time { return testNow }, Logger: logger.Discard()})

	return &deps{
		db:     d,
		orders: orders,
		server: &DashboardServer{
			Users:     repository.NewUserRepository(d),
			Orders:    orders,
			Dashboard: dash,
			Log:       logger.Discard(),
			Now:       func() time.Time { return testNow },
		},
		bouquet: testutil.SeedBouquet(t, d, "Roses", 1500),
		window:  testutil.SeedWindow(t, d, "10:00-12:00"),
	}
}

func (d *deps) createOrder(t *testing.T, phone string, price int64, paid bool, status models.OrderStatus, created time.Time) *models.Order {
	t.Helper()
	w := d.window
	o, err := d.orders.Create(context.Background(), &models.Order{
		BouquetID: d.bouquet, Price: decimal.NewFromInt(price), ClientName: "client " + phone, Phone: phone,
		DeliveryAddress: "Nevsky 1", DeliveryWindowID: &w, Paid: paid, Status: status, CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func staffCtx(name string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Name: name, Kind: "staff"})
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	return s
}

func dialBufconn(t *testing.T, ds *DashboardServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(testSecret, ds)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGetReport_OverBufconn(t *testing.T) {
	d := newTestDeps(t, "grpcreport")
	d.createOrder(t, "+1", 1500, true, models.OrderStatusCreated, time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC))
	d.createOrder(t, "+2", 500, false, models.OrderStatusCreated, time.Date(2024, time.June, 11, 15, 0, 0, 0, time.UTC))

	client := NewDashboardServiceClient(dialBufconn(t, d.server))
	req := mustStruct(t, map[string]any{"period": "all", "bouquet": "any"})

	if _, err := client.GetReport(context.Background(), req); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("no token: expected Unauthenticated, got %v", err)
	}

	custCtx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+testutil.GenerateJWTHS256(t, testSecret, "cust", "florist"))
	if _, err := client.GetReport(custCtx, req); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("customer: expected PermissionDenied, got %v", err)
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+testutil.GenerateJWTHS256(t, testSecret, "flora", "florist"))
	resp, err := client.GetReport(ctx, req)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	summary := resp.GetFields()["summary"].GetStructValue().GetFields()
	if got := summary["orders_count"].GetNumberValue(); got != 2 {
		t.Fatalf("orders_count: got %v want 2", got)
	}
	if got := summary["orders_sum"].GetStringValue(); got != "2000" {
		t.Fatalf("orders_sum: got %q want 2000", got)
	}
	if got := resp.GetFields()["most_popular_window"].GetStringValue(); got != "10:00-12:00" {
		t.Fatalf("most_popular_window: got %q", got)
	}
	if got := resp.GetFields()["granularity"].GetStringValue(); got != "day" {
		t.Fatalf("granularity: got %q want day", got)
	}
	if got := len(resp.GetFields()["top_clients"].GetListValue().GetValues()); got != 2 {
		t.Fatalf("top_clients: got %d want 2", got)
	}
}

func TestGetReport_BouquetSelectorAsNumber(t *testing.T) {
	d := newTestDeps(t, "grpcreportnum")
	d.createOrder(t, "+1", 1500, true, models.OrderStatusCreated, time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC))

	resp, err := d.server.GetReport(staffCtx("kurt"), mustStruct(t, map[string]any{"period": "month", "bouquet": float64(d.bouquet)}))
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	b := resp.GetFields()["bouquet"].GetStructValue().GetFields()
	if b["name"].GetStringValue() != "Roses" {
		t.Fatalf("bouquet: got %v", b)
	}
}

func TestHealth_Unauthenticated(t *testing.T) {
	d := newTestDeps(t, "grpchealth")
	hc := healthpb.NewHealthClient(dialBufconn(t, d.server))
	resp, err := hc.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("health status: %v", resp.GetStatus())
	}
}

func TestAdvanceOrder_RolesAndWorkflow(t *testing.T) {
	d := newTestDeps(t, "grpcadvance")
	o := d.createOrder(t, "+1", 1500, true, models.OrderStatusCreated, time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC))
	advance := func(who string, to models.OrderStatus) (*structpb.Struct, error) {
		return d.server.AdvanceOrder(staffCtx(who), mustStruct(t, map[string]any{"order_id": float64(o.ID), "status": string(to)}))
	}

	resp, err := advance("flora", models.OrderStatusComposed)
	if err != nil {
		t.Fatalf("florist compose: %v", err)
	}
	ord := resp.GetFields()["order"].GetStructValue().GetFields()
	if ord["status"].GetStringValue() != "composed" || ord["composed_at"].GetStringValue() == "" {
		t.Fatalf("composed order: %v", ord)
	}

	if _, err := advance("flora", models.OrderStatusDelivered); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("florist deliver: expected PermissionDenied, got %v", err)
	}
	if _, err := advance("cust", models.OrderStatusDelivered); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("customer: expected PermissionDenied, got %v", err)
	}
	if _, err := advance("kurt", models.OrderStatusDelivered); err != nil {
		t.Fatalf("courier deliver: %v", err)
	}
	if _, err := advance("maria", models.OrderStatusCancelled); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("cancel delivered: expected FailedPrecondition, got %v", err)
	}

	_, err = d.server.AdvanceOrder(staffCtx("maria"), mustStruct(t, map[string]any{"order_id": float64(9999), "status": "cancelled"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("unknown order: expected NotFound, got %v", err)
	}
	_, err = d.server.AdvanceOrder(staffCtx("maria"), mustStruct(t, map[string]any{"order_id": float64(o.ID), "status": "lost"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("bad status: expected InvalidArgument, got %v", err)
	}

	got, err := d.orders.GetByID(context.Background(), o.ID)
	if err != nil || got == nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != models.OrderStatusDelivered || got.DeliveredAt == nil || !got.DeliveredAt.Equal(testNow) {
		t.Fatalf("delivered order: %+v", got)
	}

	users := repository.NewUserRepository(d.db)
	flora, _ := users.GetByUsername(context.Background(), "flora")
	kurt, _ := users.GetByUsername(context.Background(), "kurt")
	if got.FloristID == nil || *got.FloristID != flora.ID {
		t.Fatalf("florist_id: got %v want %d", got.FloristID, flora.ID)
	}
	if got.CourierID == nil || *got.CourierID != kurt.ID {
		t.Fatalf("courier_id: got %v want %d", got.CourierID, kurt.ID)
	}
}

func TestAdvanceOrder_RejectsFractionalID(t *testing.T) {
	d := newTestDeps(t, "grpcadvancefrac")
	o := d.createOrder(t, "+1", 1500, true, models.OrderStatusCreated, time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC))

	for _, id := range []float64{float64(o.ID) + 0.9, -1, 0} {
		_, err := d.server.AdvanceOrder(staffCtx("maria"), mustStruct(t, map[string]any{"order_id": id, "status": "composing"}))
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("order_id %v: expected InvalidArgument, got %v", id, err)
		}
	}
	got, _ := d.orders.GetByID(context.Background(), o.ID)
	if got.Status != models.OrderStatusCreated {
		t.Fatalf("order moved by a rejected request: %+v", got)
	}
}

func TestGetReport_FractionalBouquetMeansAny(t *testing.T) {
	d := newTestDeps(t, "grpcreportfrac")
	d.createOrder(t, "+1", 1500, true, models.OrderStatusCreated, time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC))

	resp, err := d.server.GetReport(staffCtx("kurt"), mustStruct(t, map[string]any{"period": "month", "bouquet": float64(d.bouquet) + 0.9}))
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if _, isNull := resp.GetFields()["bouquet"].GetKind().(*structpb.Value_NullValue); !isNull {
		t.Fatalf("bouquet should be null, got %v", resp.GetFields()["bouquet"])
	}
}

func TestIntegral(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
		ok   bool
	}{
		{3, 3, true},
		{-2, -2, true},
		{1.9, 0, false},
		{1e300, 0, false},
	}
	for _, tt := range tests {
		got, ok := integral(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("integral(%v): got (%d, %v) want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestListActiveOrders_PaginationChaining(t *testing.T) {
	d := newTestDeps(t, "grpcactive")
	created := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	o1 := d.createOrder(t, "+1", 100, true, models.OrderStatusCreated, created)
	o2 := d.createOrder(t, "+2", 100, true, models.OrderStatusDelivering, created)
	o3 := d.createOrder(t, "+3", 100, true, models.OrderStatusComposing, created)
	d.createOrder(t, "+4", 100, true, models.OrderStatusCancelled, created)

	var ids []int64
	token := ""
	for page := 0; page < 5; page++ {
		resp, err := d.server.ListActiveOrders(staffCtx("flora"), mustStruct(t, map[string]any{"page_size": float64(2), "page_token": token}))
		if err != nil {
			t.Fatalf("ListActiveOrders page=%d: %v", page, err)
		}
		for _, v := range resp.GetFields()["orders"].GetListValue().GetValues() {
			ids = append(ids, int64(v.GetStructValue().GetFields()["id"].GetNumberValue()))
		}
		token = resp.GetFields()["next_page_token"].GetStringValue()
		if token == "" {
			break
		}
	}
	want := []int64{o2.ID, o3.ID, o1.ID}
	if len(ids) != len(want) {
		t.Fatalf("ids: got %v want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids: got %v want %v", ids, want)
		}
	}

	_, err := d.server.ListActiveOrders(staffCtx("flora"), mustStruct(t, map[string]any{"page_token": "%%%"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("bad token: expected InvalidArgument, got %v", err)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := repository.ActiveCursor{Rank: 2, ID: 42}
	out, err := decodeCursor(encodeCursor(in))
	if err != nil || out != in {
		t.Fatalf("cursor: got %+v err=%v", out, err)
	}
}
