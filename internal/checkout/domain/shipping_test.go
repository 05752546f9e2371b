package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestPolicy() *ShippingPolicy {
	return NewShippingPolicy("200", "5", "10", []string{"Yerevan", "Երևան", "Ереван"})
}

func TestZoneForMatchesAllSpellings(t *testing.T) {
	policy := newTestPolicy()

	assert.Equal(t, ZoneCapital, policy.ZoneFor("Yerevan"))
	assert.Equal(t, ZoneCapital, policy.ZoneFor("  yerevan  "))
	assert.Equal(t, ZoneCapital, policy.ZoneFor("Ереван"))
	assert.Equal(t, ZoneOther, policy.ZoneFor("Gyumri"))
	assert.Equal(t, ZoneOther, policy.ZoneFor(""))
}

func TestFeeTiers(t *testing.T) {
	policy := newTestPolicy()

	tests := []struct {
		name  string
		zone  Zone
		gross string
		want  string
	}{
		{"capital below threshold", ZoneCapital, "199.99", "5"},
		{"other below threshold", ZoneOther, "100", "10"},
		{"capital at threshold is free", ZoneCapital, "200", "0"},
		{"other above threshold is free", ZoneOther, "240", "0"},
		{"empty cart pays capital fee", ZoneCapital, "0", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gross, err := decimal.NewFromString(tt.gross)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, policy.Fee(tt.zone, gross).String())
		})
	}
}

func TestQuoteKeyNormalizesCoupon(t *testing.T) {
	a := QuoteKey("client-1", ZoneCapital, " SUMMER20 ")
	b := QuoteKey("client-1", ZoneCapital, "summer20")
	assert.Equal(t, a, b)

	c := QuoteKey("client-1", ZoneOther, "summer20")
	assert.NotEqual(t, a, c)
}
