package repository

import (
	"MenuHub/entity"
	"context"
	"fmt"
)

// CheckExistingOrder asks rpc_check_existing_order whether the payment already produced an order.
// It returns nil when none exists.
func (s *Supabase) CheckExistingOrder(_ context.Context, companyID, paymentID string) (*entity.ExistingOrder, error) {
	body := s.client.Rpc("rpc_check_existing_order", "", map[string]any{
		"p_company_id": companyID,
		"p_payment_id": paymentID,
	})

	rows, err := decodeRpcRows[entity.ExistingOrder]("rpc_check_existing_order", body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].OrderID == "" {
		return nil, nil
	}
	return &rows[0], nil
}

// UpsertCustomer keeps one customer row per (company_id, telefone) and returns its id.
func (s *Supabase) UpsertCustomer(_ context.Context, customer *entity.Customer) (string, error) {
	var rows []entity.Customer
	_, err := s.client.From(customersTable).
		Upsert(customer, "company_id,telefone", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("upsert customer: %w", err)
	}
	row, err := first(rows)
	if err != nil {
		return "", fmt.Errorf("upsert customer: %w", err)
	}
	return row.ID, nil
}

func (s *Supabase) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	var rows []entity.Order
	_, err := s.client.From(ordersTable).
		Insert(order, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	row, err := first(rows)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return row, nil
}

func (s *Supabase) CreateOrderItem(_ context.Context, item *entity.OrderItem) (*entity.OrderItem, error) {
	var rows []entity.OrderItem
	_, err := s.client.From(orderItemsTable).
		Insert(item, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("insert order item: %w", err)
	}
	row, err := first(rows)
	if err != nil {
		return nil, fmt.Errorf("insert order item: %w", err)
	}
	return row, nil
}

func (s *Supabase) CreateOrderItemAddons(_ context.Context, addons []entity.OrderItemAddon) error {
	if len(addons) == 0 {
		return nil
	}
	var rows []entity.OrderItemAddon
	_, err := s.client.From(orderAddonsTable).
		Insert(addons, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("insert order item addons: %w", err)
	}
	return nil
}

// DeleteOrder removes an order and, through foreign key cascades, its items.
func (s *Supabase) DeleteOrder(_ context.Context, orderID string) error {
	var rows []entity.Order
	_, err := s.client.From(ordersTable).
		Delete("representation", "").
		Eq("id", orderID).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (s *Supabase) DebitCashback(_ context.Context, companyID, customerID string, amount float64) (bool, error) {
	body := s.client.Rpc("safe_debit_cashback", "", map[string]any{
		"p_company_id": companyID,
		"p_cliente_id": customerID,
		"p_valor":      amount,
	})
	var ok bool
	if err := decodeRpc("safe_debit_cashback", body, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
