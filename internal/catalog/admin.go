package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/db"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

// ProductInput is the admin create/update payload. Variants are only read on create.
type ProductInput struct {
	Slug        string         `json:"slug" validate:"required,max=120,slug"`
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=5000"`
	Category    string         `json:"category" validate:"max=100"`
	ImageURL    string         `json:"image_url" validate:"omitempty,url,max=1000"`
	IsActive    *bool          `json:"is_active"`
	Variants    []VariantInput `json:"variants" validate:"omitempty,max=50,dive"`
}

// VariantInput is the admin payload for one variant. BasePrice is a decimal
// string with at most two places.
type VariantInput struct {
	SKU       string `json:"sku" validate:"required,max=64"`
	SizeLabel string `json:"size_label" validate:"required,max=100"`
	BasePrice string `json:"base_price" validate:"required"`
	IsActive  *bool  `json:"is_active"`
	Position  int32  `json:"position" validate:"gte=0"`
}

func (in VariantInput) price(field string) (decimal.Decimal, error) {
	d, err := pricing.ParseMoney(strings.TrimSpace(in.BasePrice))
	if err != nil {
		return decimal.Zero, common.InvalidField(field, "must be a non-negative amount with at most 2 decimal places")
	}
	return d, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

const (
	slugConstraint = "products_slug_key"
	skuConstraint  = "product_variants_sku_key"
)

func mapWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err, slugConstraint):
		return common.Conflict("a product with this slug already exists", err)
	case db.IsUniqueViolation(err, skuConstraint):
		return common.Conflict("a variant with this sku already exists", err)
	case errors.Is(err, pgx.ErrNoRows):
		return common.NotFound("product")
	}
	return err
}

// AdminList returns products regardless of status, newest first.
func (s *Service) AdminList(ctx context.Context, p common.Pagination) ([]Product, int64, error) {
	total, err := s.queries.CountProducts(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.queries.ListProducts(ctx, dbgen.ListProductsParams{Limit: int32(p.PerPage), Offset: int32(p.Offset())})
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProduct(row))
	}
	return out, total, nil
}

// AdminGet returns a product with every variant, active or not.
func (s *Service) AdminGet(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.loadProduct(ctx, s.queries, id)
}

func (s *Service) loadProduct(ctx context.Context, q Querier, id uuid.UUID) (Product, error) {
	row, err := q.GetProductByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, common.NotFound("product")
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	variants, err := q.ListVariantsByProduct(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("list variants: %w", err)
	}
	p := toProduct(row)
	p.Variants = make([]Variant, 0, len(variants))
	for _, v := range variants {
		p.Variants = append(p.Variants, toVariant(v))
	}
	return p, nil
}

// Create inserts a product together with its variants.
func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	prices := make([]decimal.Decimal, len(in.Variants))
	for i, v := range in.Variants {
		price, err := v.price(fmt.Sprintf("variants[%d].base_price", i))
		if err != nil {
			return Product{}, err
		}
		prices[i] = price
	}

	var created Product
	err := s.write(ctx, func(q Querier) error {
		row, err := q.CreateProduct(ctx, dbgen.CreateProductParams{
			Slug:        in.Slug,
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
			Category:    strings.TrimSpace(in.Category),
			ImageUrl:    in.ImageURL,
			IsActive:    boolOr(in.IsActive, true),
		})
		if err != nil {
			return err
		}
		created = toProduct(row)
		created.Variants = make([]Variant, 0, len(in.Variants))
		for i, v := range in.Variants {
			vr, err := q.CreateVariant(ctx, dbgen.CreateVariantParams{
				ProductID: row.ID,
				Sku:       strings.TrimSpace(v.SKU),
				SizeLabel: strings.TrimSpace(v.SizeLabel),
				BasePrice: prices[i],
				IsActive:  boolOr(v.IsActive, true),
				Position:  v.Position,
			})
			if err != nil {
				return err
			}
			created.Variants = append(created.Variants, toVariant(vr))
		}
		return nil
	})
	if err != nil {
		return Product{}, mapWriteError(err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Update replaces the product fields. Variants are managed separately.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error) {
	row, err := s.queries.UpdateProduct(ctx, dbgen.UpdateProductParams{
		ID:          id,
		Slug:        in.Slug,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		ImageUrl:    in.ImageURL,
		IsActive:    boolOr(in.IsActive, true),
	})
	if err != nil {
		return Product{}, mapWriteError(err)
	}
	s.invalidate(ctx)
	return s.AdminGet(ctx, row.ID)
}

// Delete removes a product and, by cascade, its variants. Past order lines keep
// their snapshot.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.queries.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return common.NotFound("product")
	}
	s.invalidate(ctx)
	return nil
}

// AddVariant attaches a new variant to an existing product.
func (s *Service) AddVariant(ctx context.Context, productID uuid.UUID, in VariantInput) (Variant, error) {
	price, err := in.price("base_price")
	if err != nil {
		return Variant{}, err
	}
	if _, err := s.queries.GetProductByID(ctx, productID); err != nil {
		return Variant{}, mapWriteError(err)
	}
	row, err := s.queries.CreateVariant(ctx, dbgen.CreateVariantParams{
		ProductID: productID,
		Sku:       strings.TrimSpace(in.SKU),
		SizeLabel: strings.TrimSpace(in.SizeLabel),
		BasePrice: price,
		IsActive:  boolOr(in.IsActive, true),
		Position:  in.Position,
	})
	if err != nil {
		return Variant{}, mapWriteError(err)
	}
	s.invalidate(ctx)
	return toVariant(row), nil
}

// UpdateVariant replaces a variant's fields.
func (s *Service) UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, in VariantInput) (Variant, error) {
	price, err := in.price("base_price")
	if err != nil {
		return Variant{}, err
	}
	row, err := s.queries.UpdateVariant(ctx, dbgen.UpdateVariantParams{
		ID:        variantID,
		ProductID: productID,
		Sku:       strings.TrimSpace(in.SKU),
		SizeLabel: strings.TrimSpace(in.SizeLabel),
		BasePrice: price,
		IsActive:  boolOr(in.IsActive, true),
		Position:  in.Position,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Variant{}, common.NotFound("variant")
	}
	if err != nil {
		return Variant{}, mapWriteError(err)
	}
	s.invalidate(ctx)
	return toVariant(row), nil
}

// DeleteVariant removes one variant of a product.
func (s *Service) DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error {
	n, err := s.queries.DeleteVariant(ctx, dbgen.DeleteVariantParams{ID: variantID, ProductID: productID})
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	if n == 0 {
		return common.NotFound("variant")
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) write(ctx context.Context, fn func(q Querier) error) error {
	if s.tx == nil {
		return fn(s.queries)
	}
	return db.InTx(ctx, s.tx, func(tx pgx.Tx) error {
		return fn(s.newQ(tx))
	})
}
