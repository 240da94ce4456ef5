package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aryanbrs/packklite-sub001/internal/catalog"
	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/db"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/events"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
	"github.com/aryanbrs/packklite-sub001/internal/order"
	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

// OrderNumberPrefix starts every order number.
const OrderNumberPrefix = "PK"

// DefaultNumberAttempts bounds order number regeneration on collision.
const DefaultNumberAttempts = 5

// ContactInput is the buyer contact block.
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"required,max=40"`
	Company string `json:"company" validate:"max=200"`
}

// AddressInput is the shipping address block.
type AddressInput struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// ItemInput is one submitted line. UnitPrice is informational only.
type ItemInput struct {
	VariantSKU string           `json:"variantSku" validate:"required,max=64"`
	Quantity   int64            `json:"quantity" validate:"lte=1000000"`
	UnitPrice  *decimal.Decimal `json:"unitPrice"`
}

// Input is the checkout submission. Request fields are camelCase throughout.
// Client-sent figures are compared against the server computation and
// otherwise ignored; mismatches are labelled with their request field path.
type Input struct {
	Customer    ContactInput     `json:"customer"`
	Shipping    AddressInput     `json:"shipping"`
	Notes       string           `json:"notes" validate:"max=2000"`
	Items       []ItemInput      `json:"items" validate:"required,min=1,max=100,dive"`
	Subtotal    *decimal.Decimal `json:"subtotal"`
	Discount    *decimal.Decimal `json:"discount"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
}

// ServiceConfig wires the checkout service.
type ServiceConfig struct {
	DB             db.TxBeginner
	DeliveryCharge decimal.Decimal
	Events         *events.Bus
	Metrics        *obs.DomainMetrics
	Logger         zerolog.Logger
	// NumberAttempts defaults to DefaultNumberAttempts.
	NumberAttempts int
	Now            func() time.Time
}

// Service turns a checkout submission into a persisted order.
type Service struct {
	db             db.TxBeginner
	deliveryCharge decimal.Decimal
	events         *events.Bus
	metrics        *obs.DomainMetrics
	log            zerolog.Logger
	attempts       int
	now            func() time.Time
}

// NewService builds a Service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		db:             cfg.DB,
		deliveryCharge: cfg.DeliveryCharge,
		events:         cfg.Events,
		metrics:        cfg.Metrics,
		log:            cfg.Logger,
		attempts:       cfg.NumberAttempts,
		now:            cfg.Now,
	}
	if s.attempts <= 0 {
		s.attempts = DefaultNumberAttempts
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ErrNumberExhausted is returned when every generated order number collided.
var ErrNumberExhausted = errors.New("checkout: could not allocate a unique order number")

type line struct {
	sku      string
	quantity int64
	index    int
}

// Create validates the submission against the catalog, prices it, and writes
// the order with its lines in one transaction. Quantities are normalized and
// duplicate SKUs merged before pricing.
func (s *Service) Create(ctx context.Context, customerID *uuid.UUID, in Input) (order.Order, error) {
	if s == nil || s.db == nil {
		return order.Order{}, errors.New("checkout service not configured")
	}
	lines := mergeLines(in.Items)

	var (
		created dbgen.Order
		items   []dbgen.OrderItem
		summary pricing.Summary
	)
	err := db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		q := dbgen.New(tx)
		skus := make([]string, 0, len(lines))
		for _, l := range lines {
			skus = append(skus, l.sku)
		}
		refs, err := catalog.ResolveSKUs(ctx, q, skus)
		if err != nil {
			return err
		}
		priced := make([]pricing.Line, 0, len(lines))
		for _, l := range lines {
			ref, ok := refs[l.sku]
			if !ok || !ref.Active {
				return common.InvalidField(fmt.Sprintf("items[%d].variantSku", l.index), "unknown or unavailable SKU")
			}
			priced = append(priced, pricing.Line{UnitPrice: ref.UnitPrice, Quantity: l.quantity})
		}
		summary = pricing.Aggregate(priced, s.deliveryCharge)
		s.reportMismatches(in, refs, summary)

		created, err = s.insertOrder(ctx, q, customerID, in, summary)
		if err != nil {
			return err
		}
		items = make([]dbgen.OrderItem, 0, len(lines))
		for i, l := range lines {
			ref := refs[l.sku]
			res := summary.Lines[i]
			item, err := q.CreateOrderItem(ctx, dbgen.CreateOrderItemParams{
				OrderID:         created.ID,
				VariantID:       pgtype.UUID{Bytes: ref.ID, Valid: true},
				Sku:             ref.SKU,
				ProductName:     ref.ProductName,
				SizeLabel:       ref.SizeLabel,
				UnitPrice:       res.UnitPrice,
				Quantity:        res.Quantity,
				DiscountPercent: res.DiscountPercent,
				LineDiscount:    res.Discount,
				LineTotal:       res.Total,
			})
			if err != nil {
				return fmt.Errorf("create order item %s: %w", ref.SKU, err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return order.Order{}, err
	}

	s.metrics.OrderCreated()
	s.log.Info().Str("order_number", created.OrderNumber).Str("total", created.TotalAmount.String()).Int("lines", len(items)).Msg("order created")
	s.publishCreated(ctx, created, items, summary)
	return order.FromRow(created, items), nil
}

// insertOrder generates numbers until one inserts. A colliding number yields
// no row, which leaves the transaction usable for the next attempt.
func (s *Service) insertOrder(ctx context.Context, q *dbgen.Queries, customerID *uuid.UUID, in Input, summary pricing.Summary) (dbgen.Order, error) {
	params := dbgen.CreateOrderParams{
		ContactName:    strings.TrimSpace(in.Customer.Name),
		ContactEmail:   strings.TrimSpace(in.Customer.Email),
		ContactPhone:   strings.TrimSpace(in.Customer.Phone),
		Company:        strings.TrimSpace(in.Customer.Company),
		ShipLine1:      strings.TrimSpace(in.Shipping.Line1),
		ShipLine2:      strings.TrimSpace(in.Shipping.Line2),
		ShipCity:       strings.TrimSpace(in.Shipping.City),
		ShipState:      strings.TrimSpace(in.Shipping.State),
		ShipPostalCode: strings.TrimSpace(in.Shipping.PostalCode),
		ShipCountry:    strings.TrimSpace(in.Shipping.Country),
		Notes:          strings.TrimSpace(in.Notes),
		Subtotal:       summary.Subtotal,
		Discount:       summary.Discount,
		DeliveryCharge: summary.DeliveryCharge,
		TotalAmount:    summary.Total,
	}
	if customerID != nil {
		params.CustomerID = pgtype.UUID{Bytes: *customerID, Valid: true}
	}
	for attempt := 1; attempt <= s.attempts; attempt++ {
		number, err := common.NewReference(OrderNumberPrefix, s.now())
		if err != nil {
			return dbgen.Order{}, err
		}
		params.OrderNumber = number
		row, err := q.CreateOrder(ctx, params)
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Order{}, fmt.Errorf("create order: %w", err)
		}
		s.metrics.NumberRetry()
		s.log.Warn().Str("order_number", number).Int("attempt", attempt).Msg("order number collision")
	}
	return dbgen.Order{}, ErrNumberExhausted
}

// reportMismatches logs and counts every client figure that disagrees with the
// server computation. Client figures match when equal to the exact or the
// display-rounded server value.
func (s *Service) reportMismatches(in Input, refs map[string]catalog.VariantRef, summary pricing.Summary) {
	check := func(field string, client *decimal.Decimal, server decimal.Decimal) {
		if client == nil || client.Equal(server) || client.Equal(pricing.RoundMoney(server)) {
			return
		}
		s.metrics.Mismatch(field)
		s.log.Warn().
			Str("field", field).
			Str("client", client.String()).
			Str("server", server.String()).
			Msg("checkout figure mismatch; using server value")
	}
	for i, it := range in.Items {
		if ref, ok := refs[normalizeSKU(it.VariantSKU)]; ok {
			check(fmt.Sprintf("items[%d].unitPrice", i), it.UnitPrice, ref.UnitPrice)
		}
	}
	check("subtotal", in.Subtotal, summary.Subtotal)
	check("discount", in.Discount, summary.Discount)
	check("totalAmount", in.TotalAmount, summary.Total)
}

func (s *Service) publishCreated(ctx context.Context, o dbgen.Order, items []dbgen.OrderItem, summary pricing.Summary) {
	if s.events == nil {
		return
	}
	display := summary.Display()
	payload := events.OrderCreated{
		OrderID:        o.ID.String(),
		OrderNumber:    o.OrderNumber,
		ContactName:    o.ContactName,
		ContactEmail:   o.ContactEmail,
		Company:        o.Company,
		Subtotal:       display.Subtotal.StringFixed(pricing.MoneyPlaces),
		Discount:       display.Discount.StringFixed(pricing.MoneyPlaces),
		DeliveryCharge: display.DeliveryCharge.StringFixed(pricing.MoneyPlaces),
		Total:          display.Total.StringFixed(pricing.MoneyPlaces),
	}
	for _, it := range items {
		payload.Lines = append(payload.Lines, events.OrderLine{
			SKU:         it.Sku,
			ProductName: it.ProductName,
			SizeLabel:   it.SizeLabel,
			Quantity:    it.Quantity,
			UnitPrice:   pricing.NewMoney(it.UnitPrice).StringFixed(pricing.MoneyPlaces),
			LineTotal:   pricing.NewMoney(it.LineTotal).StringFixed(pricing.MoneyPlaces),
		})
	}
	if _, err := s.events.Emit(ctx, events.TopicOrderCreated, o.ID, payload); err != nil {
		s.log.Error().Err(err).Str("order_number", o.OrderNumber).Msg("publish order created")
	}
}

// mergeLines folds duplicate SKUs into the first occurrence and snaps each
// merged quantity to a valid step.
func mergeLines(items []ItemInput) []line {
	out := make([]line, 0, len(items))
	pos := make(map[string]int, len(items))
	for i, it := range items {
		sku := normalizeSKU(it.VariantSKU)
		qty := max(it.Quantity, 0)
		if j, ok := pos[sku]; ok {
			out[j].quantity += qty
			continue
		}
		pos[sku] = len(out)
		out = append(out, line{sku: sku, quantity: qty, index: i})
	}
	for i := range out {
		out[i].quantity = pricing.RoundToValidQuantity(out[i].quantity)
	}
	return out
}

func normalizeSKU(sku string) string {
	return strings.TrimSpace(sku)
}
