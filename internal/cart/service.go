package cart

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aryanbrs/packklite-sub001/internal/catalog"
	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

// Resolver prices SKUs against the catalog.
type Resolver interface {
	ResolveSKUs(ctx context.Context, skus []string) (map[string]catalog.VariantRef, error)
}

var (
	// ErrUnknownSKU is returned for SKUs that do not exist or are not for sale.
	ErrUnknownSKU = common.NewAppError("UNKNOWN_SKU", "product variant not found", http.StatusNotFound, nil)
	// ErrNotInCart is returned when updating or removing a line the cart lacks.
	ErrNotInCart = common.NewAppError("NOT_FOUND", "item not in cart", http.StatusNotFound, nil)
)

// Line is one cart row enriched with catalog data and display totals.
type Line struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	SizeLabel   string `json:"size_label"`
	Available   bool   `json:"available"`
	pricing.DisplayLine
}

// View is the cart as shown to the shopper. Unavailable lines stay visible but
// do not count towards the totals.
type View struct {
	ID             string        `json:"id,omitempty"`
	Items          []Line        `json:"items"`
	Subtotal       pricing.Money `json:"subtotal"`
	Discount       pricing.Money `json:"discount"`
	DeliveryCharge pricing.Money `json:"delivery_charge"`
	Total          pricing.Money `json:"total"`
}

// Service encapsulates cart domain operations.
type Service struct {
	Store          Store
	Catalog        Resolver
	DeliveryCharge decimal.Decimal
}

// View loads the cart and prices it at current catalog prices.
func (s *Service) View(ctx context.Context, cartID string) (View, error) {
	if cartID == "" {
		return s.price("", nil, nil), nil
	}
	items, err := s.Store.Items(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	skus := make([]string, 0, len(items))
	for sku := range items {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	refs, err := s.Catalog.ResolveSKUs(ctx, skus)
	if err != nil {
		return View{}, fmt.Errorf("resolve cart skus: %w", err)
	}
	return s.price(cartID, items, refs), nil
}

func (s *Service) price(cartID string, items map[string]int64, refs map[string]catalog.VariantRef) View {
	skus := make([]string, 0, len(items))
	for sku := range items {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	var priced []pricing.Line
	var meta []Line
	var unavailable []Line
	for _, sku := range skus {
		qty := items[sku]
		ref, ok := refs[sku]
		if !ok || !ref.Active {
			line := Line{SKU: sku, ProductName: ref.ProductName, ProductSlug: ref.ProductSlug, SizeLabel: ref.SizeLabel}
			line.Quantity = qty
			unavailable = append(unavailable, line)
			continue
		}
		priced = append(priced, pricing.Line{UnitPrice: ref.UnitPrice, Quantity: qty})
		meta = append(meta, Line{SKU: sku, ProductName: ref.ProductName, ProductSlug: ref.ProductSlug, SizeLabel: ref.SizeLabel, Available: true})
	}

	display := pricing.Aggregate(priced, s.DeliveryCharge).Display()
	view := View{
		ID:             cartID,
		Items:          make([]Line, 0, len(meta)+len(unavailable)),
		Subtotal:       display.Subtotal,
		Discount:       display.Discount,
		DeliveryCharge: display.DeliveryCharge,
		Total:          display.Total,
	}
	for i, l := range meta {
		l.DisplayLine = display.Lines[i]
		view.Items = append(view.Items, l)
	}
	view.Items = append(view.Items, unavailable...)
	return view
}

func (s *Service) requireSellable(ctx context.Context, sku string) error {
	refs, err := s.Catalog.ResolveSKUs(ctx, []string{sku})
	if err != nil {
		return fmt.Errorf("resolve sku: %w", err)
	}
	if ref, ok := refs[sku]; !ok || !ref.Active {
		return ErrUnknownSKU
	}
	return nil
}

// AddItem adds qty of sku to the cart, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, cartID, sku string, qty int64) (View, error) {
	sku = strings.TrimSpace(sku)
	if err := s.requireSellable(ctx, sku); err != nil {
		return View{}, err
	}
	if _, err := s.Store.Add(ctx, cartID, sku, qty); err != nil {
		return View{}, err
	}
	return s.View(ctx, cartID)
}

// SetQuantity replaces the quantity of a line already in the cart.
func (s *Service) SetQuantity(ctx context.Context, cartID, sku string, qty int64) (View, error) {
	current, err := s.Store.Quantity(ctx, cartID, sku)
	if err != nil {
		return View{}, err
	}
	if current == 0 {
		return View{}, ErrNotInCart
	}
	if err := s.requireSellable(ctx, sku); err != nil {
		return View{}, err
	}
	if _, err := s.Store.Set(ctx, cartID, sku, qty); err != nil {
		return View{}, err
	}
	return s.View(ctx, cartID)
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, sku string) (View, error) {
	removed, err := s.Store.Remove(ctx, cartID, sku)
	if err != nil {
		return View{}, err
	}
	if !removed {
		return View{}, ErrNotInCart
	}
	return s.View(ctx, cartID)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	if cartID == "" {
		return nil
	}
	return s.Store.Clear(ctx, cartID)
}

// PreviewLine is an ad-hoc line priced without touching the catalog.
type PreviewLine struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Preview aggregates ad-hoc lines with the configured delivery charge.
// Quantities are normalized the same way checkout normalizes them, so the
// preview matches what an order would persist.
func (s *Service) Preview(lines []PreviewLine) pricing.Display {
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, pricing.Line{UnitPrice: l.UnitPrice, Quantity: pricing.RoundToValidQuantity(l.Quantity)})
	}
	return pricing.Aggregate(priced, s.DeliveryCharge).Display()
}
