package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductJSON_PricesAreNumbers(t *testing.T) {
	p := Product{ID: 3, Name: "Shirt", NewPrice: decimal.RequireFromString("19.99"), OldPrice: decimal.NewFromInt(25), Available: true}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"new_price":19.99`)
	assert.Contains(t, string(raw), `"old_price":25`)
	assert.Contains(t, string(raw), `"available":true`)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(3), decoded["id"])
	assert.Equal(t, "Shirt", decoded["name"])

	// the library default is left alone
	assert.False(t, decimal.MarshalJSONWithoutQuotes)
	quoted, err := json.Marshal(decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.Equal(t, `"1.5"`, string(quoted))
}

func TestOrderJSON(t *testing.T) {
	order := Order{OrderID: "ORD-1", UserID: "u-1", Items: []OrderItem{{"id": float64(1)}}, TotalAmount: decimal.RequireFromString("40.50"), Status: OrderStatusPending}

	raw, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalAmount":40.5`)
	assert.Contains(t, string(raw), `"orderId":"ORD-1"`)
	assert.NotContains(t, string(raw), `"user"`)

	raw, err = json.Marshal(AdminOrder{Order: order, Owner: &OrderOwner{Name: "ann", Email: "a@x.com"}})
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 40.5, decoded["totalAmount"])
	assert.Equal(t, "ORD-1", decoded["orderId"])
	assert.Equal(t, map[string]interface{}{"name": "ann", "email": "a@x.com"}, decoded["user"])

	raw, err = json.Marshal(AdminOrder{Order: order})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user":null`)
}
