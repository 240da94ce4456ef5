package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/db"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

// Querier is the subset of generated queries the catalog needs.
type Querier interface {
	CountActiveProducts(ctx context.Context, arg dbgen.CountActiveProductsParams) (int64, error)
	ListActiveProducts(ctx context.Context, arg dbgen.ListActiveProductsParams) ([]dbgen.ListActiveProductsRow, error)
	CountProducts(ctx context.Context) (int64, error)
	ListProducts(ctx context.Context, arg dbgen.ListProductsParams) ([]dbgen.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (dbgen.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (dbgen.Product, error)
	ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]dbgen.ProductVariant, error)
	GetVariantsBySKUs(ctx context.Context, skus []string) ([]dbgen.GetVariantsBySKUsRow, error)
	CreateProduct(ctx context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error)
	UpdateProduct(ctx context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)
	CreateVariant(ctx context.Context, arg dbgen.CreateVariantParams) (dbgen.ProductVariant, error)
	UpdateVariant(ctx context.Context, arg dbgen.UpdateVariantParams) (dbgen.ProductVariant, error)
	DeleteVariant(ctx context.Context, arg dbgen.DeleteVariantParams) (int64, error)
}

// ProductSummary is a list entry in the public catalog.
type ProductSummary struct {
	ID           string        `json:"id"`
	Slug         string        `json:"slug"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	ImageURL     string        `json:"image_url"`
	FromPrice    pricing.Money `json:"from_price"`
	VariantCount int64         `json:"variant_count"`
}

// Variant is one purchasable size of a product.
type Variant struct {
	ID        string        `json:"id"`
	SKU       string        `json:"sku"`
	SizeLabel string        `json:"size_label"`
	BasePrice pricing.Money `json:"base_price"`
	IsActive  bool          `json:"is_active"`
	Position  int32         `json:"position"`
}

// Product is the full product payload, used by the detail and admin views.
type Product struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Variants    []Variant `json:"variants,omitempty"`
}

// VariantRef is a priced SKU as seen by the cart and checkout.
type VariantRef struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	SKU         string
	SizeLabel   string
	ProductName string
	ProductSlug string
	UnitPrice   decimal.Decimal
	Active      bool
}

// ListParams captures filters for the public product listing.
type ListParams struct {
	Search   string
	Category string
	Page     common.Pagination
}

// ErrUnknownSKU is returned when a SKU does not exist or cannot be sold.
var ErrUnknownSKU = common.NewAppError("UNKNOWN_SKU", "product variant not found", http.StatusNotFound, nil)

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	queries Querier
	tx      db.TxBeginner
	newQ    func(pgx.Tx) Querier
	cache   *Cache
	log     zerolog.Logger
}

// ServiceConfig groups Service dependencies. DB may be nil, in which case
// multi-statement writes run without a transaction.
type ServiceConfig struct {
	Queries Querier
	DB      db.TxBeginner
	Cache   *Cache
	Logger  zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	return &Service{
		queries: cfg.Queries,
		tx:      cfg.DB,
		newQ:    func(tx pgx.Tx) Querier { return dbgen.New(tx) },
		cache:   cfg.Cache,
		log:     cfg.Logger,
	}, nil
}

// ListActive returns one page of active products.
func (s *Service) ListActive(ctx context.Context, params ListParams) ([]ProductSummary, int64, error) {
	type page struct {
		Items []ProductSummary `json:"items"`
		Total int64            `json:"total"`
	}
	search := strings.TrimSpace(params.Search)
	category := strings.TrimSpace(params.Category)
	res, err := cachedRead(ctx, s, []string{"list", search, category, strconv.Itoa(params.Page.Page), strconv.Itoa(params.Page.PerPage)},
		func(ctx context.Context) (page, error) {
			count := dbgen.CountActiveProductsParams{Search: optionalText(search), Category: optionalText(category)}
			total, err := s.queries.CountActiveProducts(ctx, count)
			if err != nil {
				return page{}, fmt.Errorf("count products: %w", err)
			}
			rows, err := s.queries.ListActiveProducts(ctx, dbgen.ListActiveProductsParams{
				Search:   count.Search,
				Category: count.Category,
				Limit:    int32(params.Page.PerPage),
				Offset:   int32(params.Page.Offset()),
			})
			if err != nil {
				return page{}, fmt.Errorf("list products: %w", err)
			}
			items := make([]ProductSummary, 0, len(rows))
			for _, row := range rows {
				items = append(items, ProductSummary{
					ID:           row.ID.String(),
					Slug:         row.Slug,
					Name:         row.Name,
					Description:  row.Description,
					Category:     row.Category,
					ImageURL:     row.ImageUrl,
					FromPrice:    pricing.NewMoney(row.MinPrice),
					VariantCount: row.VariantCount,
				})
			}
			return page{Items: items, Total: total}, nil
		})
	if err != nil {
		return nil, 0, err
	}
	return res.Items, res.Total, nil
}

// GetActiveBySlug returns an active product with its active variants.
func (s *Service) GetActiveBySlug(ctx context.Context, slug string) (Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Product{}, common.NotFound("product")
	}
	return cachedRead(ctx, s, []string{"detail", slug}, func(ctx context.Context) (Product, error) {
		row, err := s.queries.GetProductBySlug(ctx, slug)
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, common.NotFound("product")
		}
		if err != nil {
			return Product{}, fmt.Errorf("get product by slug: %w", err)
		}
		if !row.IsActive {
			return Product{}, common.NotFound("product")
		}
		variants, err := s.queries.ListVariantsByProduct(ctx, row.ID)
		if err != nil {
			return Product{}, fmt.Errorf("list variants: %w", err)
		}
		p := toProduct(row)
		p.Variants = make([]Variant, 0, len(variants))
		for _, v := range variants {
			if v.IsActive {
				p.Variants = append(p.Variants, toVariant(v))
			}
		}
		return p, nil
	})
}

// ResolveSKUs looks up the given SKUs. Missing SKUs are absent from the map;
// callers decide whether inactive ones are acceptable.
func (s *Service) ResolveSKUs(ctx context.Context, skus []string) (map[string]VariantRef, error) {
	return ResolveSKUs(ctx, s.queries, skus)
}

// ResolveSKUs is the query behind Service.ResolveSKUs, exposed so checkout can
// run it inside its own transaction.
func ResolveSKUs(ctx context.Context, q interface {
	GetVariantsBySKUs(ctx context.Context, skus []string) ([]dbgen.GetVariantsBySKUsRow, error)
}, skus []string) (map[string]VariantRef, error) {
	out := make(map[string]VariantRef, len(skus))
	if len(skus) == 0 {
		return out, nil
	}
	rows, err := q.GetVariantsBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("get variants by sku: %w", err)
	}
	for _, row := range rows {
		out[row.Sku] = VariantRef{
			ID:          row.ID,
			ProductID:   row.ProductID,
			SKU:         row.Sku,
			SizeLabel:   row.SizeLabel,
			ProductName: row.ProductName,
			ProductSlug: row.ProductSlug,
			UnitPrice:   row.BasePrice,
			Active:      row.IsActive && row.ProductActive,
		}
	}
	return out, nil
}

// cachedRead serves from the cache when possible. Cache failures are logged and
// fall through to the database.
func cachedRead[T any](ctx context.Context, s *Service, parts []string, load func(context.Context) (T, error)) (T, error) {
	if !s.cache.enabled() {
		return load(ctx)
	}
	key, err := s.cache.Key(ctx, parts...)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog cache key")
		return load(ctx)
	}
	var cached T
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("catalog cache read")
	}
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := s.cache.SetJSON(ctx, key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("catalog cache write")
	}
	return value, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidate")
	}
}

func toProduct(row dbgen.Product) Product {
	return Product{
		ID:          row.ID.String(),
		Slug:        row.Slug,
		Name:        row.Name,
		Description: row.Description,
		Category:    row.Category,
		ImageURL:    row.ImageUrl,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toVariant(v dbgen.ProductVariant) Variant {
	return Variant{
		ID:        v.ID.String(),
		SKU:       v.Sku,
		SizeLabel: v.SizeLabel,
		BasePrice: pricing.NewMoney(v.BasePrice),
		IsActive:  v.IsActive,
		Position:  v.Position,
	}
}

func optionalText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
