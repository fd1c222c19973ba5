package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validOrder() PublicOrderRequest {
	return PublicOrderRequest{
		CompanyID: "company-1",
		Customer:  OrderCustomer{Name: "Ana", Phone: "11999998888", Address: "Rua A, 10"},
		Cart: []CartItem{
			{ProductID: "p1", Name: "X-Burger", Quantity: 2, Price: 20, Addons: []CartAddon{
				{ID: "a1", Name: "Bacon", Price: 4, Quantity: 1},
			}},
			{ProductID: "p2", Name: "Refrigerante", Quantity: 1, Price: 6},
		},
		Type:        OrderTypeDelivery,
		Payment:     "pix",
		Total:       61,
		DeliveryFee: 7,
	}
}

func TestPublicOrderRequestBind(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *PublicOrderRequest)
		wantErr bool
	}{
		{"valid delivery", func(o *PublicOrderRequest) {}, false},
		{"missing company", func(o *PublicOrderRequest) { o.CompanyID = "" }, true},
		{"empty cart", func(o *PublicOrderRequest) { o.Cart = nil }, true},
		{"zero quantity", func(o *PublicOrderRequest) { o.Cart[0].Quantity = 0 }, true},
		{"unknown type", func(o *PublicOrderRequest) { o.Type = "drone" }, true},
		{"delivery without address", func(o *PublicOrderRequest) { o.Customer.Address = "" }, true},
		{"pickup without address", func(o *PublicOrderRequest) {
			o.Type = OrderTypePickup
			o.Customer.Address = ""
		}, false},
		{"table order needs table", func(o *PublicOrderRequest) { o.Type = OrderTypeTable }, true},
		{"table order with table", func(o *PublicOrderRequest) {
			o.Type = OrderTypeTable
			o.Table = "12"
		}, false},
		{"bad email", func(o *PublicOrderRequest) { o.Customer.Email = "nope" }, true},
		{"negative total", func(o *PublicOrderRequest) { o.Total = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(&o)
			err := o.Bind(nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCartTotal(t *testing.T) {
	o := validOrder()
	// (20+4)*2 + 6 + 7 delivery
	assert.InDelta(t, 61.0, o.CartTotal(), 0.001)

	o.CashbackUsed = 100
	assert.Equal(t, 0.0, o.CartTotal())
}

func TestLineTotalCountsZeroQuantityAddonOnce(t *testing.T) {
	item := CartItem{Quantity: 3, Price: 10, Addons: []CartAddon{{ID: "a", Name: "Queijo", Price: 2}}}
	assert.InDelta(t, 36.0, item.LineTotal(), 0.001)
}
