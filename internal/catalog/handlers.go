package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aryanbrs/packklite-sub001/internal/audit"
	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// Handler exposes public and admin catalog endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Products handles GET /api/v1/products.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Page:     common.ParsePagination(r, 20),
	}
	items, total, err := h.service.ListActive(r.Context(), params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	params.Page.TotalItems = int(total)
	common.Paged(w, items, params.Page)
}

// ProductDetail handles GET /api/v1/products/{slug}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetActiveBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, p)
}

// AdminList handles GET /api/v1/admin/products.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	page := common.ParsePagination(r, 20)
	items, total, err := h.service.AdminList(r.Context(), page)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	page.TotalItems = int(total)
	common.Paged(w, items, page)
}

// AdminGet handles GET /api/v1/admin/products/{id}.
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "product")
	if !ok {
		return
	}
	p, err := h.service.AdminGet(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, p)
}

// AdminCreate handles POST /api/v1/admin/products.
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), p.ID, map[string]any{"slug": p.Slug})
	common.Data(w, http.StatusCreated, p)
}

// AdminUpdate handles PUT /api/v1/admin/products/{id}.
func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "product")
	if !ok {
		return
	}
	var in ProductInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"slug": p.Slug, "is_active": p.IsActive})
	common.Data(w, http.StatusOK, p)
}

// AdminDelete handles DELETE /api/v1/admin/products/{id}.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "product")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminAddVariant handles POST /api/v1/admin/products/{id}/variants.
func (h *Handler) AdminAddVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathUUID(w, r, "id", "product")
	if !ok {
		return
	}
	var in VariantInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.service.AddVariant(r.Context(), id, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"variant_id": v.ID, "sku": v.SKU})
	common.Data(w, http.StatusCreated, v)
}

// AdminUpdateVariant handles PUT /api/v1/admin/products/{id}/variants/{variantID}.
func (h *Handler) AdminUpdateVariant(w http.ResponseWriter, r *http.Request) {
	productID, ok := common.PathUUID(w, r, "id", "product")
	if !ok {
		return
	}
	variantID, ok := common.PathUUID(w, r, "variantID", "variant")
	if !ok {
		return
	}
	var in VariantInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.service.UpdateVariant(r.Context(), productID, variantID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"variant_id": v.ID, "sku": v.SKU, "base_price": v.BasePrice.StringFixed(2)})
	common.Data(w, http.StatusOK, v)
}

// AdminDeleteVariant handles DELETE /api/v1/admin/products/{id}/variants/{variantID}.
func (h *Handler) AdminDeleteVariant(w http.ResponseWriter, r *http.Request) {
	productID, ok := common.PathUUID(w, r, "id", "product")
	if !ok {
		return
	}
	variantID, ok := common.PathUUID(w, r, "variantID", "variant")
	if !ok {
		return
	}
	if err := h.service.DeleteVariant(r.Context(), productID, variantID); err != nil {
		common.WriteError(w, err)
		return
	}
	audit.Annotate(r.Context(), "", map[string]any{"variant_id": variantID.String()})
	w.WriteHeader(http.StatusNoContent)
}
