package cart

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// CookieName carries the cart id between requests.
const CookieName = "cart_id"

// Handler exposes the cart endpoints.
type Handler struct {
	Service *Service
	Cookies common.CookieOptions
}

// CartID returns the cart id from the request cookie, if it is well-formed.
func CartID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// ensureCartID returns the existing cart id or issues a new one in a cookie.
func (h *Handler) ensureCartID(w http.ResponseWriter, r *http.Request) string {
	if id := CartID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	h.Cookies.Set(w, CookieName, id, time.Now().Add(h.Service.Store.ttl()), true)
	return id
}

// Quantities share the checkout bounds: anything up to MaxLineQuantity is
// accepted and snapped to a valid quantity rather than rejected.
type addItemRequest struct {
	VariantSKU string `json:"variantSku" validate:"required,max=64"`
	Quantity   int64  `json:"quantity" validate:"lte=1000000"`
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity" validate:"lte=1000000"`
}

type previewRequest struct {
	Items []previewItem `json:"items" validate:"required,min=1,max=100,dive"`
}

type previewItem struct {
	UnitPrice *decimal.Decimal `json:"unitPrice" validate:"required"`
	Quantity  int64            `json:"quantity" validate:"lte=1000000"`
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.View(r.Context(), CartID(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// AddItem handles POST /api/v1/cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	view, err := h.Service.AddItem(r.Context(), h.ensureCartID(w, r), req.VariantSKU, req.Quantity)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// UpdateItem handles PUT /api/v1/cart/items/{sku}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	cartID := CartID(r)
	if cartID == "" {
		common.WriteError(w, ErrNotInCart)
		return
	}
	view, err := h.Service.SetQuantity(r.Context(), cartID, chi.URLParam(r, "sku"), req.Quantity)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/v1/cart/items/{sku}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := CartID(r)
	if cartID == "" {
		common.WriteError(w, ErrNotInCart)
		return
	}
	view, err := h.Service.RemoveItem(r.Context(), cartID, chi.URLParam(r, "sku"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// Clear handles DELETE /api/v1/cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(r.Context(), CartID(r)); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles POST /api/v1/cart/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	lines := make([]PreviewLine, 0, len(req.Items))
	for i, it := range req.Items {
		if it.UnitPrice.IsNegative() {
			common.WriteError(w, common.InvalidField(fmt.Sprintf("items[%d].unitPrice", i), "must not be negative"))
			return
		}
		lines = append(lines, PreviewLine{UnitPrice: *it.UnitPrice, Quantity: it.Quantity})
	}
	common.Data(w, http.StatusOK, h.Service.Preview(lines))
}
