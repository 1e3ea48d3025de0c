package grpcserver

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"floristDashboard/internal/analytics"
	"floristDashboard/internal/auth"
	"floristDashboard/models"
	"floristDashboard/repository"
)

const (
	maxPageSize     = 100 // Maximum allowed page size for list operations.
	defaultPageSize = 20  // Default page size for list operations.
	cursorSeparator = "|" // Separator for cursor components.
)

// ReportGenerator builds dashboard reports.
type ReportGenerator interface {
	Generate(ctx context.Context, period, bouquet string) (*analytics.Report, error)
}

// DashboardServer bundles dependencies and implements DashboardServiceServer.
type DashboardServer struct {
	Users     auth.UserLookup
	Orders    repository.OrderRepositoryI
	Dashboard ReportGenerator
	Log       *logrus.Entry
	Now       func() time.Time
}

var _ DashboardServiceServer = (*DashboardServer)(nil)

func (s *DashboardServer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetReport returns the dashboard for {period, bouquet}. Both fields are
// optional; bouquet may be an id number, a numeric string or "any".
func (s *DashboardServer) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx, s.Users); err != nil {
		return nil, err
	}
	fields := req.GetFields()
	period := fields["period"].GetStringValue()
	bouquet := selectorString(fields["bouquet"])

	report, err := s.Dashboard.Generate(ctx, period, bouquet)
	if err != nil {
		s.logger().WithError(err).Error("generate report")
		return nil, status.Errorf(codes.Internal, "generate report: %v", err)
	}
	out, err := toStruct(report)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode report: %v", err)
	}
	return out, nil
}

// ListActiveOrders pages through the work queue. Request fields: page_size,
// page_token. The response carries orders and next_page_token.
func (s *DashboardServer) ListActiveOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireStaff(ctx, s.Users); err != nil {
		return nil, err
	}
	fields := req.GetFields()
	size := int(fields["page_size"].GetNumberValue())
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	var after *repository.ActiveCursor
	if tok := strings.TrimSpace(fields["page_token"].GetStringValue()); tok != "" {
		c, err := decodeCursor(tok)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid page_token: %v", err)
		}
		after = &c
	}

	list, err := s.Orders.ListActive(ctx, size, after)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list orders: %v", err)
	}
	resp := struct {
		Orders        []models.Order `json:"orders"`
		NextPageToken string         `json:"next_page_token,omitempty"`
	}{Orders: list}
	if resp.Orders == nil {
		resp.Orders = []models.Order{}
	}
	if len(list) == size {
		last := list[len(list)-1]
		resp.NextPageToken = encodeCursor(repository.ActiveCursor{Rank: repository.ActiveRank(last.Status), ID: last.ID})
	}
	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode orders: %v", err)
	}
	return out, nil
}

// AdvanceOrder moves {order_id} to {status}. Florists may compose, couriers
// deliver, managers do anything.
func (s *DashboardServer) AdvanceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := auth.RequireStaff(ctx, s.Users)
	if err != nil {
		return nil, err
	}
	fields := req.GetFields()
	id, ok := integral(fields["order_id"].GetNumberValue())
	to := models.OrderStatus(strings.ToLower(strings.TrimSpace(fields["status"].GetStringValue())))
	if !ok || id <= 0 || !to.Valid() {
		return nil, status.Error(codes.InvalidArgument, "order_id must be a positive integer and status a known status")
	}
	if !auth.CanMoveTo(u.Role, to) {
		return nil, status.Errorf(codes.PermissionDenied, "%s cannot move orders to %s", u.Role, to)
	}

	ord, err := s.Orders.Advance(ctx, id, to, s.now(), u.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, status.Error(codes.NotFound, "order not found")
		case errors.Is(err, models.ErrInvalidTransition):
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
		return nil, status.Errorf(codes.Internal, "advance order: %v", err)
	}
	s.logger().WithFields(logrus.Fields{"order_id": id, "status": to, "by": u.Username}).Info("order advanced")

	out, err := toStruct(struct {
		Order *models.Order `json:"order"`
	}{ord})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode order: %v", err)
	}
	return out, nil
}

func (s *DashboardServer) logger() *logrus.Entry {
	if s.Log != nil {
		return s.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// selectorString accepts the bouquet selector as a number or a string.
func selectorString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		id, ok := integral(k.NumberValue)
		if !ok {
			return analytics.AnyBouquet
		}
		return strconv.FormatInt(id, 10)
	case *structpb.Value_StringValue:
		return k.StringValue
	}
	return analytics.AnyBouquet
}

// integral reports whether a JSON number is a whole int64.
func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// toStruct converts any JSON-encodable value into a google.protobuf.Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// encodeCursor builds an opaque page_token from the last order's queue position.
func encodeCursor(c repository.ActiveCursor) string {
	raw := strconv.Itoa(c.Rank) + cursorSeparator + strconv.FormatInt(c.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses an opaque page_token.
func decodeCursor(token string) (repository.ActiveCursor, error) {
	var c repository.ActiveCursor
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, fmt.Errorf("base64: %w", err)
	}
	parts := strings.SplitN(string(b), cursorSeparator, 2)
	if len(parts) != 2 {
		return c, fmt.Errorf("invalid cursor format")
	}
	if c.Rank, err = strconv.Atoi(parts[0]); err != nil {
		return c, fmt.Errorf("parse rank: %w", err)
	}
	if c.ID, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
		return c, fmt.Errorf("parse id: %w", err)
	}
	return c, nil
}
