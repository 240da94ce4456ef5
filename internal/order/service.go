package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/events"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

// Store is the subset of generated queries the order service reads and writes.
type Store interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (dbgen.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (dbgen.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]dbgen.OrderItem, error)
	ListOrders(ctx context.Context, arg dbgen.ListOrdersParams) ([]dbgen.Order, error)
	CountOrders(ctx context.Context, status pgtype.Text) (int64, error)
	ListOrdersByCustomer(ctx context.Context, arg dbgen.ListOrdersByCustomerParams) ([]dbgen.Order, error)
	CountOrdersByCustomer(ctx context.Context, customerID pgtype.UUID) (int64, error)
	UpdateOrderStatus(ctx context.Context, arg dbgen.UpdateOrderStatusParams) (dbgen.Order, error)
	UpdateOrderNotes(ctx context.Context, arg dbgen.UpdateOrderNotesParams) (dbgen.Order, error)
}

// ServiceConfig wires the order service.
type ServiceConfig struct {
	Store   Store
	Events  *events.Bus
	Metrics *obs.DomainMetrics
	Logger  zerolog.Logger
}

// Service exposes order reads for customers and guests, and status and note
// management for admins.
type Service struct {
	store   Store
	events  *events.Bus
	metrics *obs.DomainMetrics
	log     zerolog.Logger
}

// NewService builds a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{store: cfg.Store, events: cfg.Events, metrics: cfg.Metrics, log: cfg.Logger}
}

var errNotFound = common.NotFound("order")

// AdminList pages through all orders, optionally filtered by status.
func (s *Service) AdminList(ctx context.Context, status string, page common.Pagination) ([]Order, int64, error) {
	filter := pgtype.Text{}
	if strings.TrimSpace(status) != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, 0, common.InvalidField("status", "unknown order status")
		}
		filter = pgtype.Text{String: string(st), Valid: true}
	}
	total, err := s.store.CountOrders(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := s.store.ListOrders(ctx, dbgen.ListOrdersParams{
		Status: filter,
		Limit:  int32(page.PerPage),
		Offset: int32(page.Offset()),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row, nil))
	}
	return out, total, nil
}

// AdminGet loads an order with its lines.
func (s *Service) AdminGet(ctx context.Context, id uuid.UUID) (Order, error) {
	row, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return Order{}, mapLookup(err)
	}
	return s.withItems(ctx, row)
}

// ListForCustomer pages through the orders linked to a customer account.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, page common.Pagination) ([]Order, int64, error) {
	owner := pgtype.UUID{Bytes: customerID, Valid: true}
	total, err := s.store.CountOrdersByCustomer(ctx, owner)
	if err != nil {
		return nil, 0, fmt.Errorf("count customer orders: %w", err)
	}
	rows, err := s.store.ListOrdersByCustomer(ctx, dbgen.ListOrdersByCustomerParams{
		CustomerID: owner,
		Limit:      int32(page.PerPage),
		Offset:     int32(page.Offset()),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list customer orders: %w", err)
	}
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row, nil).ForCustomer())
	}
	return out, total, nil
}

// GetForCustomer returns an order only when it belongs to customerID. Orders of
// other customers are reported as not found.
func (s *Service) GetForCustomer(ctx context.Context, customerID uuid.UUID, number string) (Order, error) {
	row, err := s.store.GetOrderByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return Order{}, mapLookup(err)
	}
	if !row.CustomerID.Valid || uuid.UUID(row.CustomerID.Bytes) != customerID {
		return Order{}, errNotFound
	}
	o, err := s.withItems(ctx, row)
	return o.ForCustomer(), err
}

// GuestLookup finds an order by number and contact email. A wrong email is
// indistinguishable from a missing order.
func (s *Service) GuestLookup(ctx context.Context, number, email string) (Order, error) {
	if !common.IsReference(strings.ToUpper(strings.TrimSpace(number))) {
		return Order{}, errNotFound
	}
	row, err := s.store.GetOrderByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return Order{}, mapLookup(err)
	}
	if !strings.EqualFold(strings.TrimSpace(row.ContactEmail), strings.TrimSpace(email)) {
		return Order{}, errNotFound
	}
	o, err := s.withItems(ctx, row)
	return o.ForCustomer(), err
}

// ChangeStatus moves an order along the transition table. The write is a
// compare-and-set on the status read here, so a concurrent change is rejected
// rather than silently skipping a step.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, to string) (Order, Status, error) {
	target, ok := ParseStatus(to)
	if !ok {
		return Order{}, "", common.InvalidField("status", "unknown order status")
	}
	current, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return Order{}, "", mapLookup(err)
	}
	from := Status(current.Status)
	if !from.CanTransition(target) {
		return Order{}, from, ErrInvalidTransition.WithDetails(map[string]any{
			"from":    from,
			"to":      target,
			"allowed": from.Next(),
		})
	}
	updated, err := s.store.UpdateOrderStatus(ctx, dbgen.UpdateOrderStatusParams{
		ID:         id,
		FromStatus: string(from),
		ToStatus:   string(target),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, from, common.NewAppError("INVALID_TRANSITION", "order status changed concurrently; reload and retry", http.StatusConflict, err)
		}
		return Order{}, from, fmt.Errorf("update order status: %w", err)
	}
	s.metrics.Transition("order", string(target))
	s.publishStatusChange(ctx, updated, from, target)
	o, err := s.withItems(ctx, updated)
	return o, from, err
}

// UpdateNotes replaces the staff notes on an order.
func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (Order, error) {
	row, err := s.store.UpdateOrderNotes(ctx, dbgen.UpdateOrderNotesParams{ID: id, AdminNotes: strings.TrimSpace(notes)})
	if err != nil {
		return Order{}, mapLookup(err)
	}
	return s.withItems(ctx, row)
}

func (s *Service) withItems(ctx context.Context, row dbgen.Order) (Order, error) {
	items, err := s.store.ListOrderItems(ctx, row.ID)
	if err != nil {
		return Order{}, fmt.Errorf("list order items: %w", err)
	}
	return FromRow(row, items), nil
}

func (s *Service) publishStatusChange(ctx context.Context, o dbgen.Order, from, to Status) {
	if s.events == nil {
		return
	}
	_, err := s.events.Emit(ctx, events.TopicOrderStatusChanged, o.ID, events.OrderStatusChanged{
		OrderID:      o.ID.String(),
		OrderNumber:  o.OrderNumber,
		ContactName:  o.ContactName,
		ContactEmail: o.ContactEmail,
		From:         string(from),
		To:           string(to),
	})
	if err != nil {
		s.log.Error().Err(err).Str("order_number", o.OrderNumber).Msg("publish order status change")
	}
}

func mapLookup(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errNotFound
	}
	return fmt.Errorf("load order: %w", err)
}
