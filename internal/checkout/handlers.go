package checkout

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/cart"
	"github.com/aryanbrs/packklite-sub001/internal/common"
)

// CartClearer empties the server-side cart after a successful checkout.
type CartClearer interface {
	Clear(ctx context.Context, cartID string) error
}

// Handler serves POST /api/v1/orders.
type Handler struct {
	Service *Service
	Cart    CartClearer
	Log     zerolog.Logger
}

// Create handles POST /api/v1/orders for guests and signed-in customers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
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
	o, err := h.Service.Create(r.Context(), customerID, in)
	if err != nil {
		if !common.IsAppError(err) {
			h.Log.Error().Err(err).Msg("checkout failed")
		}
		common.WriteError(w, err)
		return
	}
	if id := cart.CartID(r); id != "" && h.Cart != nil {
		if err := h.Cart.Clear(r.Context(), id); err != nil {
			h.Log.Warn().Err(err).Str("order_number", o.OrderNumber).Msg("clear cart after checkout")
		}
	}
	common.Data(w, http.StatusCreated, o.ForCustomer())
}
