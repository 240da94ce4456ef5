package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

// catalogFile is the seed document: a list of products with their variants.
type catalogFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Slug        string        `yaml:"slug"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Category    string        `yaml:"category"`
	ImageURL    string        `yaml:"image_url"`
	Inactive    bool          `yaml:"inactive"`
	Variants    []seedVariant `yaml:"variants"`
}

type seedVariant struct {
	SKU       string `yaml:"sku"`
	SizeLabel string `yaml:"size_label"`
	// Price stays a string so YAML floats cannot lose cents.
	Price    string `yaml:"price"`
	Inactive bool   `yaml:"inactive"`

	price decimal.Decimal
}

func parseCatalog(r io.Reader) (catalogFile, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return catalogFile{}, fmt.Errorf("decode catalog: %w", err)
	}

	slugs := map[string]bool{}
	skus := map[string]bool{}
	for i := range f.Products {
		p := &f.Products[i]
		p.Slug = strings.TrimSpace(p.Slug)
		if p.Slug == "" || strings.TrimSpace(p.Name) == "" {
			return catalogFile{}, fmt.Errorf("product %d: slug and name are required", i)
		}
		if slugs[p.Slug] {
			return catalogFile{}, fmt.Errorf("product %q: duplicate slug", p.Slug)
		}
		slugs[p.Slug] = true
		if len(p.Variants) == 0 {
			return catalogFile{}, fmt.Errorf("product %q: at least one variant is required", p.Slug)
		}
		for j := range p.Variants {
			v := &p.Variants[j]
			v.SKU = strings.ToUpper(strings.TrimSpace(v.SKU))
			if v.SKU == "" {
				return catalogFile{}, fmt.Errorf("product %q variant %d: sku is required", p.Slug, j)
			}
			if skus[v.SKU] {
				return catalogFile{}, fmt.Errorf("sku %q: duplicate", v.SKU)
			}
			skus[v.SKU] = true
			price, err := pricing.ParseMoney(v.Price)
			if err != nil {
				return catalogFile{}, fmt.Errorf("sku %q: %w", v.SKU, err)
			}
			v.price = price
		}
	}
	return f, nil
}
