package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aryanbrs/packklite-sub001/internal/catalog"
	"github.com/aryanbrs/packklite-sub001/internal/common"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
)

type fakeQueries struct {
	products  []dbgen.Product
	variants  []dbgen.ProductVariant
	listCalls int
}

func newFakeQueries() *fakeQueries {
	now := time.Now()
	box := dbgen.Product{ID: uuid.New(), Slug: "mailer-box", Name: "Mailer Box", Category: "boxes", IsActive: true, CreatedAt: now, UpdatedAt: now}
	hidden := dbgen.Product{ID: uuid.New(), Slug: "retired-tube", Name: "Retired Tube", Category: "tubes", IsActive: false, CreatedAt: now, UpdatedAt: now}
	return &fakeQueries{
		products: []dbgen.Product{box, hidden},
		variants: []dbgen.ProductVariant{
			{ID: uuid.New(), ProductID: box.ID, Sku: "MB-S", SizeLabel: "Small", BasePrice: decimal.RequireFromString("6.25"), IsActive: true, Position: 0},
			{ID: uuid.New(), ProductID: box.ID, Sku: "MB-L", SizeLabel: "Large", BasePrice: decimal.RequireFromString("9.40"), IsActive: true, Position: 1},
			{ID: uuid.New(), ProductID: box.ID, Sku: "MB-XL", SizeLabel: "XL", BasePrice: decimal.RequireFromString("12.00"), IsActive: false, Position: 2},
			{ID: uuid.New(), ProductID: hidden.ID, Sku: "RT-1", SizeLabel: "One", BasePrice: decimal.RequireFromString("3.00"), IsActive: true},
		},
	}
}

func (f *fakeQueries) active(search, category string) []dbgen.Product {
	var out []dbgen.Product
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (f *fakeQueries) CountActiveProducts(_ context.Context, arg dbgen.CountActiveProductsParams) (int64, error) {
	return int64(len(f.active(arg.Search.String, arg.Category.String))), nil
}

func (f *fakeQueries) ListActiveProducts(_ context.Context, arg dbgen.ListActiveProductsParams) ([]dbgen.ListActiveProductsRow, error) {
	f.listCalls++
	var rows []dbgen.ListActiveProductsRow
	for _, p := range f.active(arg.Search.String, arg.Category.String) {
		row := dbgen.ListActiveProductsRow{ID: p.ID, Slug: p.Slug, Name: p.Name, Category: p.Category, IsActive: true, MinPrice: decimal.Zero}
		for _, v := range f.variants {
			if v.ProductID != p.ID || !v.IsActive {
				continue
			}
			if row.VariantCount == 0 || v.BasePrice.LessThan(row.MinPrice) {
				row.MinPrice = v.BasePrice
			}
			row.VariantCount++
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *fakeQueries) CountProducts(context.Context) (int64, error) { return int64(len(f.products)), nil }

func (f *fakeQueries) ListProducts(context.Context, dbgen.ListProductsParams) ([]dbgen.Product, error) {
	return f.products, nil
}

func (f *fakeQueries) GetProductBySlug(_ context.Context, slug string) (dbgen.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return dbgen.Product{}, pgx.ErrNoRows
}

func (f *fakeQueries) GetProductByID(_ context.Context, id uuid.UUID) (dbgen.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return dbgen.Product{}, pgx.ErrNoRows
}

func (f *fakeQueries) ListVariantsByProduct(_ context.Context, productID uuid.UUID) ([]dbgen.ProductVariant, error) {
	var out []dbgen.ProductVariant
	for _, v := range f.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeQueries) GetVariantsBySKUs(_ context.Context, skus []string) ([]dbgen.GetVariantsBySKUsRow, error) {
	var out []dbgen.GetVariantsBySKUsRow
	for _, sku := range skus {
		for _, v := range f.variants {
			if v.Sku != sku {
				continue
			}
			p, _ := f.GetProductByID(context.Background(), v.ProductID)
			out = append(out, dbgen.GetVariantsBySKUsRow{
				ID: v.ID, ProductID: v.ProductID, Sku: v.Sku, SizeLabel: v.SizeLabel, BasePrice: v.BasePrice,
				IsActive: v.IsActive, ProductName: p.Name, ProductSlug: p.Slug, ProductActive: p.IsActive,
			})
		}
	}
	return out, nil
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (f *fakeQueries) CreateProduct(_ context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error) {
	for _, p := range f.products {
		if p.Slug == arg.Slug {
			return dbgen.Product{}, uniqueViolation("products_slug_key")
		}
	}
	p := dbgen.Product{ID: uuid.New(), Slug: arg.Slug, Name: arg.Name, Category: arg.Category, IsActive: arg.IsActive}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeQueries) UpdateProduct(_ context.Context, arg dbgen.UpdateProductParams) (dbgen.Product, error) {
	for i, p := range f.products {
		if p.ID == arg.ID {
			f.products[i].Name, f.products[i].Slug, f.products[i].IsActive = arg.Name, arg.Slug, arg.IsActive
			return f.products[i], nil
		}
	}
	return dbgen.Product{}, pgx.ErrNoRows
}

func (f *fakeQueries) DeleteProduct(_ context.Context, id uuid.UUID) (int64, error) {
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeQueries) CreateVariant(_ context.Context, arg dbgen.CreateVariantParams) (dbgen.ProductVariant, error) {
	for _, v := range f.variants {
		if v.Sku == arg.Sku {
			return dbgen.ProductVariant{}, uniqueViolation("product_variants_sku_key")
		}
	}
	v := dbgen.ProductVariant{ID: uuid.New(), ProductID: arg.ProductID, Sku: arg.Sku, SizeLabel: arg.SizeLabel, BasePrice: arg.BasePrice, IsActive: arg.IsActive, Position: arg.Position}
	f.variants = append(f.variants, v)
	return v, nil
}

func (f *fakeQueries) UpdateVariant(_ context.Context, arg dbgen.UpdateVariantParams) (dbgen.ProductVariant, error) {
	for i, v := range f.variants {
		if v.ID == arg.ID && v.ProductID == arg.ProductID {
			f.variants[i].BasePrice, f.variants[i].IsActive = arg.BasePrice, arg.IsActive
			return f.variants[i], nil
		}
	}
	return dbgen.ProductVariant{}, pgx.ErrNoRows
}

func (f *fakeQueries) DeleteVariant(_ context.Context, arg dbgen.DeleteVariantParams) (int64, error) {
	for i, v := range f.variants {
		if v.ID == arg.ID && v.ProductID == arg.ProductID {
			f.variants = append(f.variants[:i], f.variants[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func newService(t *testing.T, q *fakeQueries) *catalog.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Queries: q,
		Cache:   catalog.NewCache(client, time.Minute),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return svc
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestProductsListsOnlyActiveWithFromPrice(t *testing.T) {
	h := catalog.NewHandler(newService(t, newFakeQueries()))
	rr := httptest.NewRecorder()
	h.Products(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products?per_page=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []struct {
			Slug         string `json:"slug"`
			FromPrice    string `json:"from_price"`
			VariantCount int64  `json:"variant_count"`
		} `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			PerPage    int `json:"per_page"`
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "mailer-box", body.Data[0].Slug)
	require.Equal(t, "6.25", body.Data[0].FromPrice)
	require.EqualValues(t, 2, body.Data[0].VariantCount)
	require.Equal(t, 1, body.Pagination.TotalItems)
	require.Equal(t, 10, body.Pagination.PerPage)
}

func TestListIsCachedUntilAdminWrite(t *testing.T) {
	q := newFakeQueries()
	svc := newService(t, q)
	ctx := context.Background()
	params := catalog.ListParams{Page: pageOf(1, 20)}

	_, _, err := svc.ListActive(ctx, params)
	require.NoError(t, err)
	_, _, err = svc.ListActive(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 1, q.listCalls, "second read is served from redis")

	_, err = svc.Create(ctx, catalog.ProductInput{Slug: "poly-mailer", Name: "Poly Mailer", Variants: []catalog.VariantInput{{SKU: "PM-1", SizeLabel: "A4", BasePrice: "1.10"}}})
	require.NoError(t, err)

	items, total, err := svc.ListActive(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 2, q.listCalls)
	require.EqualValues(t, 2, total)
	require.Len(t, items, 2)
}

func TestProductDetailHidesInactive(t *testing.T) {
	h := catalog.NewHandler(newService(t, newFakeQueries()))

	rr := httptest.NewRecorder()
	h.ProductDetail(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/products/mailer-box", nil), "slug", "mailer-box"))
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data.Variants, 2)
	require.Equal(t, "MB-S", body.Data.Variants[0].SKU)
	require.Equal(t, "6.25", body.Data.Variants[0].BasePrice.StringFixed(2))

	rr = httptest.NewRecorder()
	h.ProductDetail(rr, withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/products/retired-tube", nil), "slug", "retired-tube"))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminCreateConflictsAndValidation(t *testing.T) {
	h := catalog.NewHandler(newService(t, newFakeQueries()))

	post := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.AdminCreate(rr, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body)))
		return rr
	}

	rr := post(`{"slug":"mailer-box","name":"Dup"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Contains(t, rr.Body.String(), "CONFLICT")

	rr = post(`{"slug":"new-box","name":"New","variants":[{"sku":"MB-S","size_label":"S","base_price":"1.00"}]}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = post(`{"slug":"Bad Slug","name":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), `"slug"`)

	rr = post(`{"slug":"cheap-box","name":"Cheap","variants":[{"sku":"CB-1","size_label":"S","base_price":"0.005"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "variants[0].base_price")

	rr = post(`{"slug":"kraft-box","name":"Kraft Box","variants":[{"sku":"KB-1","size_label":"S","base_price":"4.50"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Contains(t, rr.Body.String(), `"base_price":"4.50"`)
}

func TestAdminVariantLifecycle(t *testing.T) {
	q := newFakeQueries()
	svc := newService(t, q)
	ctx := context.Background()
	productID := q.products[0].ID

	v, err := svc.AddVariant(ctx, productID, catalog.VariantInput{SKU: "MB-M", SizeLabel: "Medium", BasePrice: "7.80"})
	require.NoError(t, err)

	vid := uuid.MustParse(v.ID)
	updated, err := svc.UpdateVariant(ctx, productID, vid, catalog.VariantInput{SKU: "MB-M", SizeLabel: "Medium", BasePrice: "7.95"})
	require.NoError(t, err)
	require.Equal(t, "7.95", updated.BasePrice.StringFixed(2))

	require.NoError(t, svc.DeleteVariant(ctx, productID, vid))
	err = svc.DeleteVariant(ctx, productID, vid)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")

	_, err = svc.AddVariant(ctx, uuid.New(), catalog.VariantInput{SKU: "X-1", SizeLabel: "X", BasePrice: "1"})
	require.Error(t, err)
}

func TestResolveSKUsMarksInactive(t *testing.T) {
	svc := newService(t, newFakeQueries())
	refs, err := svc.ResolveSKUs(context.Background(), []string{"MB-S", "MB-XL", "RT-1", "NOPE"})
	require.NoError(t, err)
	require.Len(t, refs, 3)
	require.True(t, refs["MB-S"].Active)
	require.Equal(t, "Mailer Box", refs["MB-S"].ProductName)
	require.False(t, refs["MB-XL"].Active, "inactive variant")
	require.False(t, refs["RT-1"].Active, "inactive product")
}

func pageOf(page, perPage int) common.Pagination {
	return common.Pagination{Page: page, PerPage: perPage}
}
