package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
)

type memoryStore struct {
	created []dbgen.CreateAuditLogParams
	listArg dbgen.ListAuditLogsParams
	rows    []dbgen.AuditLog
	err     error
}

func (m *memoryStore) CreateAuditLog(_ context.Context, arg dbgen.CreateAuditLogParams) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, arg)
	return nil
}

func (m *memoryStore) ListAuditLogs(_ context.Context, arg dbgen.ListAuditLogsParams) ([]dbgen.AuditLog, error) {
	m.listArg = arg
	return m.rows, nil
}

func (m *memoryStore) CountAuditLogs(context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

func TestRecordStoresMetadataAndAdmin(t *testing.T) {
	store := &memoryStore{}
	svc := Service{Store: store}
	adminID := uuid.New()

	err := svc.Record(context.Background(), Entry{
		AdminID:      adminID.String(),
		Action:       "order.status",
		ResourceType: "order",
		ResourceID:   "abc",
		Metadata:     map[string]any{"to": "CONFIRMED"},
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	got := store.created[0]
	require.True(t, got.AdminID.Valid)
	require.Equal(t, adminID, uuid.UUID(got.AdminID.Bytes))
	require.JSONEq(t, `{"to":"CONFIRMED"}`, string(got.Metadata))
}

func TestRecordRequiresAction(t *testing.T) {
	require.Error(t, Service{Store: &memoryStore{}}.Record(context.Background(), Entry{}))
}

func TestMiddlewareRecordsSuccessfulMutations(t *testing.T) {
	store := &memoryStore{}
	rec := HTTPRecorder{Service: &Service{Store: store}, Log: zerolog.Nop()}
	adminID := uuid.NewString()

	r := chi.NewRouter()
	r.With(rec.Middleware(HTTPConfig{Action: "product.update", ResourceType: "product", ResourceIDParam: "id"})).
		Put("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			Annotate(r.Context(), "", map[string]any{"slug": "mailer-box"})
			w.WriteHeader(http.StatusOK)
		})
	r.With(rec.Middleware(HTTPConfig{Action: "product.delete", ResourceType: "product", ResourceIDParam: "id"})).
		Delete("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			common.WriteError(w, common.NotFound("product"))
		})

	req := httptest.NewRequest(http.MethodPut, "/products/p-1", nil)
	req = req.WithContext(common.WithPrincipal(req.Context(), common.Principal{ID: adminID, Kind: common.PrincipalAdmin}))
	r.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodDelete, "/products/p-2", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, store.created, 1, "failed mutations are not audited")
	got := store.created[0]
	require.Equal(t, "product.update", got.Action)
	require.Equal(t, "p-1", got.ResourceID)
	require.True(t, got.AdminID.Valid)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(got.Metadata, &meta))
	require.Equal(t, "mailer-box", meta["slug"])
	require.EqualValues(t, 200, meta["status"])
}

func TestMiddlewareSwallowsStoreErrors(t *testing.T) {
	store := &memoryStore{err: errors.New("db down")}
	rec := HTTPRecorder{Service: &Service{Store: store}, Log: zerolog.Nop()}
	handler := rec.Middleware(HTTPConfig{Action: "admin.create"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Annotate(r.Context(), "new-id", nil)
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admins", nil))
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestHandlerListPaginates(t *testing.T) {
	adminID := uuid.New()
	store := &memoryStore{rows: []dbgen.AuditLog{{
		ID:           uuid.New(),
		AdminID:      pgtype.UUID{Bytes: adminID, Valid: true},
		Action:       "order.status",
		ResourceType: "order",
		ResourceID:   "o-1",
		Metadata:     []byte(`{"to":"SHIPPED"}`),
		CreatedAt:    time.Now(),
	}}}
	h := Handler{Service: &Service{Store: store}}

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit?page=2&per_page=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.EqualValues(t, 10, store.listArg.Limit)
	require.EqualValues(t, 10, store.listArg.Offset)

	var body struct {
		Data       []LogEntry        `json:"data"`
		Pagination common.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, adminID.String(), *body.Data[0].AdminID)
	require.Equal(t, 1, body.Pagination.TotalItems)
}
