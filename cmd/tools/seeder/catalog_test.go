package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
products:
  - slug: kraft-mailer-box
    name: Kraft Mailer Box
    category: boxes
    variants:
      - sku: kmb-s
        size_label: "200 x 150 x 50 mm"
        price: "0.62"
      - sku: KMB-M
        size_label: "300 x 220 x 80 mm"
        price: "0.91"
`

func TestParseCatalog(t *testing.T) {
	f, err := parseCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, f.Products, 1)
	require.Len(t, f.Products[0].Variants, 2)
	require.Equal(t, "KMB-S", f.Products[0].Variants[0].SKU)
	require.Equal(t, "0.62", f.Products[0].Variants[0].price.StringFixed(2))
}

func TestParseCatalogRejects(t *testing.T) {
	cases := map[string]string{
		"duplicate sku": `
products:
  - {slug: a, name: A, variants: [{sku: X1, price: "1.00"}]}
  - {slug: b, name: B, variants: [{sku: x1, price: "1.00"}]}
`,
		"duplicate slug": `
products:
  - {slug: a, name: A, variants: [{sku: X1, price: "1.00"}]}
  - {slug: a, name: B, variants: [{sku: X2, price: "1.00"}]}
`,
		"sub-cent price": `
products:
  - {slug: a, name: A, variants: [{sku: X1, price: "1.005"}]}
`,
		"no variants": `
products:
  - {slug: a, name: A}
`,
		"unknown field": `
products:
  - {slug: a, name: A, colour: red, variants: [{sku: X1, price: "1.00"}]}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}
