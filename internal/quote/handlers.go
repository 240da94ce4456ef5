package quote

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/aryanbrs/packklite-sub001/internal/audit"
	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// Handler exposes public, customer and admin quote endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type notesRequest struct {
	Notes string `json:"notes" validate:"max=4000"`
}

// Submit handles POST /api/v1/quotes.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	var customerID *uuid.UUID
	if raw, ok := common.CustomerID(r.Context()); ok {
		if id, err := uuid.Parse(raw); err == nil {
			customerID = &id
		}
	}
	q, err := h.service.Submit(r.Context(), customerID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	q.AdminNotes = ""
	common.Data(w, http.StatusCreated, q)
}

// AccountList handles GET /api/v1/account/quotes.
func (h *Handler) AccountList(w http.ResponseWriter, r *http.Request) {
	raw, ok := common.CustomerID(r.Context())
	id, err := uuid.Parse(raw)
	if !ok || err != nil {
		common.WriteError(w, common.ErrUnauthorized)
		return
	}
	page := common.ParsePagination(r, 20)
	items, total, err := h.service.ListForCustomer(r.Context(), id, page)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	page.TotalItems = int(total)
	common.Paged(w, items, page)
}

// AdminList handles GET /api/v1/admin/quotes.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	page := common.ParsePagination(r, 20)
	items, total, err := h.service.AdminList(r.Context(), r.URL.Query().Get("status"), page)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	page.TotalItems = int(total)
	common.Paged(w, items, page)
}

// AdminGet handles GET /api/v1/admin/quotes/{id}.
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "quote request")
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// AdminUpdateStatus handles PATCH /api/v1/admin/quotes/{id}/status.
func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "quote request")
	if !ok {
		return
	}
	var req statusRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	q, from, err := h.service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"reference": q.Reference, "from": from, "to": q.Status})
	common.Data(w, http.StatusOK, q)
}

// AdminUpdateNotes handles PATCH /api/v1/admin/quotes/{id}/notes.
func (h *Handler) AdminUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "quote request")
	if !ok {
		return
	}
	var req notesRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	q, err := h.service.UpdateNotes(r.Context(), id, req.Notes)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"reference": q.Reference})
	common.Data(w, http.StatusOK, q)
}
