package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/events"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
)

type memoryStore struct {
	mu     sync.Mutex
	quotes map[uuid.UUID]dbgen.QuoteRequest
	// collisions makes the next n inserts report a taken reference.
	collisions int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{quotes: map[uuid.UUID]dbgen.QuoteRequest{}}
}

func (m *memoryStore) CreateQuoteRequest(_ context.Context, arg dbgen.CreateQuoteRequestParams) (dbgen.QuoteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collisions > 0 {
		m.collisions--
		return dbgen.QuoteRequest{}, pgx.ErrNoRows
	}
	row := dbgen.QuoteRequest{
		ID: uuid.New(), Reference: arg.Reference, CustomerID: arg.CustomerID, Name: arg.Name, Email: arg.Email,
		Phone: arg.Phone, Company: arg.Company, ProductInterest: arg.ProductInterest, Quantity: arg.Quantity,
		Message: arg.Message, Status: string(StatusNew), CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.quotes[row.ID] = row
	return row, nil
}

func (m *memoryStore) GetQuoteRequest(_ context.Context, id uuid.UUID) (dbgen.QuoteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.quotes[id]
	if !ok {
		return dbgen.QuoteRequest{}, pgx.ErrNoRows
	}
	return row, nil
}

func (m *memoryStore) list(keep func(dbgen.QuoteRequest) bool) []dbgen.QuoteRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dbgen.QuoteRequest
	for _, q := range m.quotes {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func (m *memoryStore) ListQuoteRequests(_ context.Context, arg dbgen.ListQuoteRequestsParams) ([]dbgen.QuoteRequest, error) {
	return m.list(func(q dbgen.QuoteRequest) bool { return !arg.Status.Valid || q.Status == arg.Status.String }), nil
}

func (m *memoryStore) CountQuoteRequests(ctx context.Context, status pgtype.Text) (int64, error) {
	rows, _ := m.ListQuoteRequests(ctx, dbgen.ListQuoteRequestsParams{Status: status})
	return int64(len(rows)), nil
}

func (m *memoryStore) ListQuoteRequestsByCustomer(_ context.Context, arg dbgen.ListQuoteRequestsByCustomerParams) ([]dbgen.QuoteRequest, error) {
	return m.list(func(q dbgen.QuoteRequest) bool { return q.CustomerID == arg.CustomerID }), nil
}

func (m *memoryStore) CountQuoteRequestsByCustomer(ctx context.Context, id pgtype.UUID) (int64, error) {
	rows, _ := m.ListQuoteRequestsByCustomer(ctx, dbgen.ListQuoteRequestsByCustomerParams{CustomerID: id})
	return int64(len(rows)), nil
}

func (m *memoryStore) UpdateQuoteStatus(_ context.Context, arg dbgen.UpdateQuoteStatusParams) (dbgen.QuoteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.quotes[arg.ID]
	if !ok || row.Status != arg.FromStatus {
		return dbgen.QuoteRequest{}, pgx.ErrNoRows
	}
	row.Status = arg.ToStatus
	m.quotes[arg.ID] = row
	return row, nil
}

func (m *memoryStore) UpdateQuoteNotes(_ context.Context, arg dbgen.UpdateQuoteNotesParams) (dbgen.QuoteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.quotes[arg.ID]
	if !ok {
		return dbgen.QuoteRequest{}, pgx.ErrNoRows
	}
	row.AdminNotes = arg.AdminNotes
	m.quotes[arg.ID] = row
	return row, nil
}

func sampleInput() Input {
	return Input{Name: "Bo", Email: "bo@example.com", ProductInterest: "Poly mailers", Quantity: 5000, Message: "Need custom print"}
}

func TestSubmitRetriesReferenceAndPublishes(t *testing.T) {
	store := newMemoryStore()
	store.collisions = 2
	metrics := obs.NewDomainMetrics("test", prometheus.NewRegistry())
	var published []events.Event
	bus := &events.Bus{Notifiers: []events.Notifier{events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		published = append(published, ev)
		return nil
	})}}
	svc := NewService(ServiceConfig{Store: store, Events: bus, Metrics: metrics, Logger: zerolog.Nop(),
		Now: func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }})

	q, err := svc.Submit(context.Background(), nil, sampleInput())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(q.Reference, "QR-20260301-"), q.Reference)
	require.Equal(t, StatusNew, q.Status)
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.OrderNumberRetries))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.QuotesSubmitted))
	require.Len(t, published, 1)
	require.Equal(t, events.TopicQuoteCreated, published[0].Topic)
}

func TestSubmitGivesUp(t *testing.T) {
	store := newMemoryStore()
	store.collisions = 3
	svc := NewService(ServiceConfig{Store: store, NumberAttempts: 3})
	_, err := svc.Submit(context.Background(), nil, sampleInput())
	require.ErrorIs(t, err, ErrReferenceExhausted)
}

func TestQuoteTransitions(t *testing.T) {
	require.True(t, StatusNew.CanTransition(StatusInReview))
	require.True(t, StatusNew.CanTransition(StatusClosed))
	require.False(t, StatusNew.CanTransition(StatusQuoted))
	require.True(t, StatusInReview.CanTransition(StatusQuoted))
	require.True(t, StatusQuoted.CanTransition(StatusClosed))
	require.False(t, StatusQuoted.CanTransition(StatusRejected))
	require.True(t, StatusClosed.Terminal())
	require.True(t, StatusRejected.Terminal())

	store := newMemoryStore()
	svc := NewService(ServiceConfig{Store: store})
	q, err := svc.Submit(context.Background(), nil, sampleInput())
	require.NoError(t, err)
	id := uuid.MustParse(q.ID)

	_, _, err = svc.ChangeStatus(context.Background(), id, "quoted")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INVALID_TRANSITION", appErr.Code)

	updated, from, err := svc.ChangeStatus(context.Background(), id, "in_review")
	require.NoError(t, err)
	require.Equal(t, StatusNew, from)
	require.Equal(t, StatusInReview, updated.Status)
}

func TestCustomerQuotesHideNotes(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(ServiceConfig{Store: store})
	customer := uuid.New()
	q, err := svc.Submit(context.Background(), &customer, sampleInput())
	require.NoError(t, err)
	_, err = svc.UpdateNotes(context.Background(), uuid.MustParse(q.ID), "margin is thin")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), nil, sampleInput())
	require.NoError(t, err)

	list, total, err := svc.ListForCustomer(context.Background(), customer, common.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Empty(t, list[0].AdminNotes)

	admin, err := svc.Get(context.Background(), uuid.MustParse(q.ID))
	require.NoError(t, err)
	require.Equal(t, "margin is thin", admin.AdminNotes)
}

func TestHandlers(t *testing.T) {
	store := newMemoryStore()
	h := NewHandler(NewService(ServiceConfig{Store: store}))
	r := chi.NewRouter()
	r.Post("/api/v1/quotes", h.Submit)
	r.Get("/api/v1/admin/quotes", h.AdminList)
	r.Patch("/api/v1/admin/quotes/{id}/status", h.AdminUpdateStatus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{"name":"Bo","email":"nope"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"email"`)
	require.Contains(t, rec.Body.String(), `"message"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quotes",
		strings.NewReader(`{"name":"Bo","email":"bo@example.com","product_interest":"Boxes","message":"hi"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"NEW"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/quotes?status=new", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_items":1`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/admin/quotes/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"CLOSED"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
