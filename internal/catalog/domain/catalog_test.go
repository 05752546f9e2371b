package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wyfcoding/storefront/internal/platform/woocommerce"
)

func sampleProduct() woocommerce.Product {
	return woocommerce.Product{
		ID:           1,
		Name:         "Leather tote",
		Slug:         "leather-tote",
		Price:        "80",
		RegularPrice: "100",
		SalePrice:    "80",
		Categories:   []string{"bags", "totes"},
		Attributes: map[string][]string{
			"pa_color":    {"Black", "Brown"},
			"pa_material": {"Leather"},
		},
	}
}

func TestFilterMatches(t *testing.T) {
	p := sampleProduct()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"category match", Filter{Category: "bags"}, true},
		{"category case-insensitive", Filter{Category: "BAGS"}, true},
		{"category mismatch", Filter{Category: "wallets"}, false},
		{"color match", Filter{Color: "black"}, true},
		{"color mismatch", Filter{Color: "red"}, false},
		{"material match", Filter{Material: "leather"}, true},
		{"material mismatch", Filter{Material: "canvas"}, false},
		{"price in range", Filter{MinPrice: "50", MaxPrice: "90"}, true},
		{"price below min", Filter{MinPrice: "90"}, false},
		{"price above max", Filter{MaxPrice: "70"}, false},
		{"combined", Filter{Category: "totes", Color: "brown", MaxPrice: "80"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(&p))
		})
	}
}

func TestEffectivePricePrefersSale(t *testing.T) {
	p := sampleProduct()
	assert.Equal(t, "80", EffectivePrice(&p).String())

	p.SalePrice = ""
	p.Price = ""
	assert.Equal(t, "100", EffectivePrice(&p).String())
}

func TestDiscountPercent(t *testing.T) {
	p := sampleProduct()
	assert.Equal(t, 20, DiscountPercent(&p))

	p.SalePrice = ""
	assert.Equal(t, 0, DiscountPercent(&p))

	p.SalePrice = "100"
	assert.Equal(t, 0, DiscountPercent(&p))
}

func TestFilterIsEmpty(t *testing.T) {
	assert.True(t, (&Filter{}).IsEmpty())
	assert.False(t, (&Filter{Color: "black"}).IsEmpty())
}
