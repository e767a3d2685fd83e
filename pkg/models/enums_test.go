package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumUnmarshal(t *testing.T) {
	var p struct {
		Condition   Condition    `json:"condition"`
		Marketplace *Marketplace `json:"marketplace"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"condition":"refurbished","marketplace":"ebay"}`), &p))
	assert.Equal(t, ConditionRefurbished, p.Condition)
	require.NotNil(t, p.Marketplace)
	assert.Equal(t, MarketplaceEbay, *p.Marketplace)

	p.Marketplace = nil
	require.NoError(t, json.Unmarshal([]byte(`{"condition":"used","marketplace":null}`), &p))
	assert.Nil(t, p.Marketplace)
}

func TestEnumUnmarshal_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		dst  interface{}
	}{
		{"condition", `"mint"`, new(Condition)},
		{"marketplace", `"etsy"`, new(Marketplace)},
		{"status", `"lost"`, new(OrderStatus)},
		{"payment", `"cash"`, new(PaymentMethod)},
		{"delivery", `"drone"`, new(DeliveryMethod)},
		{"empty", `""`, new(Condition)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := json.Unmarshal([]byte(tt.body), tt.dst)
			var enumErr *EnumError
			assert.True(t, errors.As(err, &enumErr), "got %v", err)
		})
	}
}

func TestParseEnums(t *testing.T) {
	got := ParseEnums[Condition]([]string{"new", "broken", "used"})
	assert.Equal(t, []Condition{ConditionNew, ConditionUsed}, got)

	assert.Empty(t, ParseEnums[Marketplace]([]string{"etsy"}))
}
