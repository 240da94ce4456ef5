package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/events"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

// ReferencePrefix starts every quote reference.
const ReferencePrefix = "QR"

// Store is the subset of generated queries used for quote requests.
type Store interface {
	CreateQuoteRequest(ctx context.Context, arg dbgen.CreateQuoteRequestParams) (dbgen.QuoteRequest, error)
	GetQuoteRequest(ctx context.Context, id uuid.UUID) (dbgen.QuoteRequest, error)
	ListQuoteRequests(ctx context.Context, arg dbgen.ListQuoteRequestsParams) ([]dbgen.QuoteRequest, error)
	CountQuoteRequests(ctx context.Context, status pgtype.Text) (int64, error)
	ListQuoteRequestsByCustomer(ctx context.Context, arg dbgen.ListQuoteRequestsByCustomerParams) ([]dbgen.QuoteRequest, error)
	CountQuoteRequestsByCustomer(ctx context.Context, customerID pgtype.UUID) (int64, error)
	UpdateQuoteStatus(ctx context.Context, arg dbgen.UpdateQuoteStatusParams) (dbgen.QuoteRequest, error)
	UpdateQuoteNotes(ctx context.Context, arg dbgen.UpdateQuoteNotesParams) (dbgen.QuoteRequest, error)
}

// Quote is the API view of a quote request.
type Quote struct {
	ID              string    `json:"id"`
	Reference       string    `json:"reference"`
	Status          Status    `json:"status"`
	CustomerID      string    `json:"customer_id,omitempty"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Company         string    `json:"company,omitempty"`
	ProductInterest string    `json:"product_interest"`
	Quantity        int64     `json:"quantity,omitempty"`
	Message         string    `json:"message"`
	AdminNotes      string    `json:"admin_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Input is a request for quote as submitted from the public form.
type Input struct {
	Name            string `json:"name" validate:"required,max=200"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Phone           string `json:"phone" validate:"max=40"`
	Company         string `json:"company" validate:"max=200"`
	ProductInterest string `json:"product_interest" validate:"required,max=200"`
	Quantity        int64  `json:"quantity" validate:"gte=0,lte=100000000"`
	Message         string `json:"message" validate:"required,max=5000"`
}

// ServiceConfig wires the quote service.
type ServiceConfig struct {
	Store          Store
	Events         *events.Bus
	Metrics        *obs.DomainMetrics
	Logger         zerolog.Logger
	NumberAttempts int
	Now            func() time.Time
}

// Service manages quote requests.
type Service struct {
	store    Store
	events   *events.Bus
	metrics  *obs.DomainMetrics
	log      zerolog.Logger
	attempts int
	now      func() time.Time
}

// NewService builds a Service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		store:    cfg.Store,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		log:      cfg.Logger,
		attempts: cfg.NumberAttempts,
		now:      cfg.Now,
	}
	if s.attempts <= 0 {
		s.attempts = 5
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

var (
	errNotFound = common.NotFound("quote request")
	// ErrReferenceExhausted is returned when every generated reference collided.
	ErrReferenceExhausted = errors.New("quote: could not allocate a unique reference")
)

// Submit stores a new request, linking it to customerID when signed in.
func (s *Service) Submit(ctx context.Context, customerID *uuid.UUID, in Input) (Quote, error) {
	params := dbgen.CreateQuoteRequestParams{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		Company:         strings.TrimSpace(in.Company),
		ProductInterest: strings.TrimSpace(in.ProductInterest),
		Quantity:        in.Quantity,
		Message:         strings.TrimSpace(in.Message),
	}
	if customerID != nil {
		params.CustomerID = pgtype.UUID{Bytes: *customerID, Valid: true}
	}
	for attempt := 1; attempt <= s.attempts; attempt++ {
		ref, err := common.NewReference(ReferencePrefix, s.now())
		if err != nil {
			return Quote{}, err
		}
		params.Reference = ref
		row, err := s.store.CreateQuoteRequest(ctx, params)
		if errors.Is(err, pgx.ErrNoRows) {
			s.metrics.NumberRetry()
			s.log.Warn().Str("reference", ref).Int("attempt", attempt).Msg("quote reference collision")
			continue
		}
		if err != nil {
			return Quote{}, fmt.Errorf("create quote request: %w", err)
		}
		s.metrics.QuoteSubmitted()
		s.publishCreated(ctx, row)
		return fromRow(row), nil
	}
	return Quote{}, ErrReferenceExhausted
}

// AdminList pages through quote requests, optionally filtered by status.
func (s *Service) AdminList(ctx context.Context, status string, page common.Pagination) ([]Quote, int64, error) {
	filter := pgtype.Text{}
	if strings.TrimSpace(status) != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, 0, common.InvalidField("status", "unknown quote status")
		}
		filter = pgtype.Text{String: string(st), Valid: true}
	}
	total, err := s.store.CountQuoteRequests(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count quote requests: %w", err)
	}
	rows, err := s.store.ListQuoteRequests(ctx, dbgen.ListQuoteRequestsParams{
		Status: filter,
		Limit:  int32(page.PerPage),
		Offset: int32(page.Offset()),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list quote requests: %w", err)
	}
	return fromRows(rows, false), total, nil
}

// ListForCustomer pages through a customer's own requests.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, page common.Pagination) ([]Quote, int64, error) {
	owner := pgtype.UUID{Bytes: customerID, Valid: true}
	total, err := s.store.CountQuoteRequestsByCustomer(ctx, owner)
	if err != nil {
		return nil, 0, fmt.Errorf("count customer quotes: %w", err)
	}
	rows, err := s.store.ListQuoteRequestsByCustomer(ctx, dbgen.ListQuoteRequestsByCustomerParams{
		CustomerID: owner,
		Limit:      int32(page.PerPage),
		Offset:     int32(page.Offset()),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list customer quotes: %w", err)
	}
	return fromRows(rows, true), total, nil
}

// Get loads one request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Quote, error) {
	row, err := s.store.GetQuoteRequest(ctx, id)
	if err != nil {
		return Quote{}, mapLookup(err)
	}
	return fromRow(row), nil
}

// ChangeStatus applies a transition with a compare-and-set on the current status.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, to string) (Quote, Status, error) {
	target, ok := ParseStatus(to)
	if !ok {
		return Quote{}, "", common.InvalidField("status", "unknown quote status")
	}
	current, err := s.store.GetQuoteRequest(ctx, id)
	if err != nil {
		return Quote{}, "", mapLookup(err)
	}
	from := Status(current.Status)
	if !from.CanTransition(target) {
		return Quote{}, from, ErrInvalidTransition.WithDetails(map[string]any{"from": from, "to": target})
	}
	row, err := s.store.UpdateQuoteStatus(ctx, dbgen.UpdateQuoteStatusParams{ID: id, FromStatus: string(from), ToStatus: string(target)})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, from, common.NewAppError("INVALID_TRANSITION", "quote status changed concurrently; reload and retry", http.StatusConflict, err)
		}
		return Quote{}, from, fmt.Errorf("update quote status: %w", err)
	}
	s.metrics.Transition("quote", string(target))
	return fromRow(row), from, nil
}

// UpdateNotes replaces the staff notes on a request.
func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (Quote, error) {
	row, err := s.store.UpdateQuoteNotes(ctx, dbgen.UpdateQuoteNotesParams{ID: id, AdminNotes: strings.TrimSpace(notes)})
	if err != nil {
		return Quote{}, mapLookup(err)
	}
	return fromRow(row), nil
}

func (s *Service) publishCreated(ctx context.Context, row dbgen.QuoteRequest) {
	if s.events == nil {
		return
	}
	_, err := s.events.Emit(ctx, events.TopicQuoteCreated, row.ID, events.QuoteCreated{
		QuoteID:         row.ID.String(),
		Reference:       row.Reference,
		Name:            row.Name,
		Email:           row.Email,
		Phone:           row.Phone,
		Company:         row.Company,
		ProductInterest: row.ProductInterest,
		Quantity:        row.Quantity,
		Message:         row.Message,
	})
	if err != nil {
		s.log.Error().Err(err).Str("reference", row.Reference).Msg("publish quote created")
	}
}

func fromRow(row dbgen.QuoteRequest) Quote {
	q := Quote{
		ID:              row.ID.String(),
		Reference:       row.Reference,
		Status:          Status(row.Status),
		Name:            row.Name,
		Email:           row.Email,
		Phone:           row.Phone,
		Company:         row.Company,
		ProductInterest: row.ProductInterest,
		Quantity:        row.Quantity,
		Message:         row.Message,
		AdminNotes:      row.AdminNotes,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.CustomerID.Valid {
		q.CustomerID = uuid.UUID(row.CustomerID.Bytes).String()
	}
	return q
}

func fromRows(rows []dbgen.QuoteRequest, hideNotes bool) []Quote {
	out := make([]Quote, 0, len(rows))
	for _, row := range rows {
		q := fromRow(row)
		if hideNotes {
			q.AdminNotes = ""
		}
		out = append(out, q)
	}
	return out
}

func mapLookup(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errNotFound
	}
	return fmt.Errorf("load quote request: %w", err)
}
