package entity

import (
	"MenuHub/internal/lib/validate"
	"math"
	"net/http"
	"time"
)

const (
	OrderTypeDelivery = "delivery"
	OrderTypePickup   = "retirada"
	OrderTypeTable    = "mesa"
	OrderTypeCounter  = "balcao"

	OrderStatusPending = "pendente"
)

// PublicOrderRequest is the body posted by the public digital menu.
type PublicOrderRequest struct {
	CompanyID     string        `json:"companyId" validate:"required"`
	Customer      OrderCustomer `json:"cliente" validate:"required"`
	Cart          []CartItem    `json:"carrinho" validate:"required,min=1,dive"`
	Type          string        `json:"tipo" validate:"required,oneof=delivery retirada mesa balcao"`
	Payment       string        `json:"pagamento" validate:"required"`
	Total         float64       `json:"total" validate:"gte=0"`
	DeliveryFee   float64       `json:"taxa_entrega" validate:"gte=0"`
	Change        float64       `json:"troco" validate:"gte=0"`
	Notes         string        `json:"observacoes" validate:"max=1000"`
	PaymentID     string        `json:"payment_id,omitempty"`
	CashbackUsed  float64       `json:"cashback_usado" validate:"gte=0"`
	Table         string        `json:"mesa,omitempty" validate:"required_if=Type mesa"`
}

type OrderCustomer struct {
	Name    string `json:"nome" validate:"required,max=120"`
	Phone   string `json:"telefone" validate:"required,min=8,max=20"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"endereco,omitempty"`
}

type CartItem struct {
	ProductID string      `json:"produto_id" validate:"required"`
	Name      string      `json:"nome" validate:"required"`
	Quantity  int         `json:"quantidade" validate:"required,gt=0"`
	Price     float64     `json:"preco" validate:"gte=0"`
	Note      string      `json:"observacao,omitempty"`
	Addons    []CartAddon `json:"adicionais,omitempty" validate:"dive"`
}

type CartAddon struct {
	ID       string  `json:"id" validate:"required"`
	Name     string  `json:"nome" validate:"required"`
	Price    float64 `json:"preco" validate:"gte=0"`
	Quantity int     `json:"quantidade" validate:"gte=0"`
}

func (o *PublicOrderRequest) Bind(_ *http.Request) error {
	if o.Type == OrderTypeDelivery && o.Customer.Address == "" {
		return validationError("cliente.endereco is required for delivery")
	}
	return validate.Struct(o)
}

// CartTotal recomputes the order total from the cart, fees and cashback.
func (o *PublicOrderRequest) CartTotal() float64 {
	total := 0.0
	for _, item := range o.Cart {
		total += item.LineTotal()
	}
	total += o.DeliveryFee - o.CashbackUsed
	if total < 0 {
		total = 0
	}
	return math.Round(total*100) / 100
}

// LineTotal is (price + addons) * quantity; an addon with zero quantity counts once.
func (i CartItem) LineTotal() float64 {
	unit := i.Price
	for _, a := range i.Addons {
		q := a.Quantity
		if q == 0 {
			q = 1
		}
		unit += a.Price * float64(q)
	}
	return unit * float64(i.Quantity)
}

type Customer struct {
	ID        string `json:"id,omitempty"`
	CompanyID string `json:"company_id"`
	Name      string `json:"nome"`
	Phone     string `json:"telefone"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"endereco,omitempty"`
}

type Order struct {
	ID           string    `json:"id,omitempty"`
	Number       int64     `json:"numero_pedido,omitempty"`
	CompanyID    string    `json:"company_id"`
	CustomerID   string    `json:"cliente_id,omitempty"`
	CustomerName string    `json:"cliente_nome"`
	Phone        string    `json:"cliente_telefone"`
	Address      string    `json:"endereco_entrega,omitempty"`
	Type         string    `json:"tipo"`
	Payment      string    `json:"forma_pagamento"`
	PaymentID    string    `json:"payment_id,omitempty"`
	Status       string    `json:"status"`
	Total        float64   `json:"total"`
	DeliveryFee  float64   `json:"taxa_entrega"`
	Change       float64   `json:"troco"`
	CashbackUsed float64   `json:"cashback_usado"`
	Table        string    `json:"mesa,omitempty"`
	Notes        string    `json:"observacoes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type OrderItem struct {
	ID        string  `json:"id,omitempty"`
	OrderID   string  `json:"pedido_id"`
	ProductID string  `json:"produto_id"`
	Name      string  `json:"nome_produto"`
	Quantity  int     `json:"quantidade"`
	UnitPrice float64 `json:"preco_unitario"`
	Subtotal  float64 `json:"subtotal"`
	Note      string  `json:"observacao,omitempty"`
}

type OrderItemAddon struct {
	OrderItemID string  `json:"item_pedido_id"`
	AddonID     string  `json:"adicional_id"`
	Name        string  `json:"nome_adicional"`
	Price       float64 `json:"preco"`
	Quantity    int     `json:"quantidade"`
}

// ExistingOrder is what rpc_check_existing_order reports for a repeated payment.
type ExistingOrder struct {
	OrderID string `json:"pedido_id"`
	Number  int64  `json:"numero_pedido"`
}

type OrderResult struct {
	Success            bool   `json:"success"`
	OrderID            string `json:"pedido_id"`
	Number             int64  `json:"numero_pedido"`
	DuplicatePrevented bool   `json:"duplicate_prevented,omitempty"`
}
