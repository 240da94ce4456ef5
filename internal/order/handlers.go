package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aryanbrs/packklite-sub001/internal/audit"
	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// Handler exposes customer, guest and admin order endpoints. Order creation
// lives in the checkout package.
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

// AccountList handles GET /api/v1/account/orders.
func (h *Handler) AccountList(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFrom(r)
	if !ok {
		common.WriteError(w, common.ErrUnauthorized)
		return
	}
	page := common.ParsePagination(r, 20)
	items, total, err := h.service.ListForCustomer(r.Context(), customerID, page)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	page.TotalItems = int(total)
	common.Paged(w, items, page)
}

// AccountGet handles GET /api/v1/account/orders/{orderNumber}.
func (h *Handler) AccountGet(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFrom(r)
	if !ok {
		common.WriteError(w, common.ErrUnauthorized)
		return
	}
	o, err := h.service.GetForCustomer(r.Context(), customerID, chi.URLParam(r, "orderNumber"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// GuestGet handles GET /api/v1/orders/{orderNumber}?email=.
func (h *Handler) GuestGet(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		common.WriteError(w, common.InvalidField("email", "is required"))
		return
	}
	o, err := h.service.GuestLookup(r.Context(), chi.URLParam(r, "orderNumber"), email)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// AdminList handles GET /api/v1/admin/orders.
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

// AdminGet handles GET /api/v1/admin/orders/{id}.
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "order")
	if !ok {
		return
	}
	o, err := h.service.AdminGet(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// AdminUpdateStatus handles PATCH /api/v1/admin/orders/{id}/status.
func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "order")
	if !ok {
		return
	}
	var req statusRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	o, from, err := h.service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"order_number": o.OrderNumber, "from": from, "to": o.Status})
	common.Data(w, http.StatusOK, o)
}

// AdminUpdateNotes handles PATCH /api/v1/admin/orders/{id}/notes.
func (h *Handler) AdminUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "order")
	if !ok {
		return
	}
	var req notesRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.service.UpdateNotes(r.Context(), id, req.Notes)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"order_number": o.OrderNumber})
	common.Data(w, http.StatusOK, o)
}

func customerFrom(r *http.Request) (uuid.UUID, bool) {
	raw, ok := common.CustomerID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
