package core

import (
	"MenuHub/entity"
	"MenuHub/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// CreatePublicOrder stores an order posted by the public menu. A repeated
// payment id returns the order created the first time.
func (c *Core) CreatePublicOrder(ctx context.Context, req *entity.PublicOrderRequest) (*entity.OrderResult, error) {
	log := c.log.With(
		slog.String("company_id", req.CompanyID),
		slog.String("payment_id", req.PaymentID),
	)

	if req.PaymentID != "" {
		lockKey := "order:" + req.CompanyID + ":" + req.PaymentID
		c.locks.Lock(lockKey)
		defer c.locks.Unlock(lockKey)

		existing, err := c.repo.CheckExistingOrder(ctx, req.CompanyID, req.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrDuplicateCheck, err)
		}
		if existing != nil {
			log.With(slog.String("order_id", existing.OrderID)).Info("duplicate order prevented")
			return &entity.OrderResult{
				Success:            true,
				OrderID:            existing.OrderID,
				Number:             existing.Number,
				DuplicatePrevented: true,
			}, nil
		}
	}

	customerID, err := c.repo.UpsertCustomer(ctx, &entity.Customer{
		CompanyID: req.CompanyID,
		Name:      req.Customer.Name,
		Phone:     req.Customer.Phone,
		Email:     req.Customer.Email,
		Address:   req.Customer.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: customer: %v", entity.ErrOrderNotCreated, err)
	}

	order, err := c.repo.CreateOrder(ctx, &entity.Order{
		CompanyID:    req.CompanyID,
		CustomerID:   customerID,
		CustomerName: req.Customer.Name,
		Phone:        req.Customer.Phone,
		Address:      req.Customer.Address,
		Type:         req.Type,
		Payment:      req.Payment,
		PaymentID:    req.PaymentID,
		Status:       entity.OrderStatusPending,
		Total:        req.Total,
		DeliveryFee:  req.DeliveryFee,
		Change:       req.Change,
		CashbackUsed: req.CashbackUsed,
		Table:        req.Table,
		Notes:        req.Notes,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrOrderNotCreated, err)
	}
	log = log.With(slog.String("order_id", order.ID))

	if err = c.createItems(ctx, order.ID, req.Cart); err != nil {
		if dErr := c.repo.DeleteOrder(ctx, order.ID); dErr != nil {
			log.With(sl.Err(dErr)).Error("rollback order")
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrOrderNotCreated, err)
	}

	if req.CashbackUsed > 0 {
		ok, cErr := c.repo.DebitCashback(ctx, req.CompanyID, customerID, req.CashbackUsed)
		switch {
		case cErr != nil:
			log.With(sl.Err(cErr)).Error("debit cashback")
		case !ok:
			log.With(slog.Float64("amount", req.CashbackUsed)).Warn("cashback not debited")
		}
	}

	if expected := req.CartTotal(); math.Abs(expected-req.Total) > 0.01 {
		log.With(
			slog.Float64("total", req.Total),
			slog.Float64("expected", expected),
		).Warn("order total mismatch")
	}

	c.broadcast(order.CompanyID, entity.EventNewOrder, order)

	return &entity.OrderResult{
		Success: true,
		OrderID: order.ID,
		Number:  order.Number,
	}, nil
}

func (c *Core) createItems(ctx context.Context, orderID string, cart []entity.CartItem) error {
	for _, line := range cart {
		item, err := c.repo.CreateOrderItem(ctx, &entity.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			Subtotal:  math.Round(line.LineTotal()*100) / 100,
			Note:      line.Note,
		})
		if err != nil {
			return fmt.Errorf("item %s: %w", line.ProductID, err)
		}
		if len(line.Addons) == 0 {
			continue
		}

		addons := make([]entity.OrderItemAddon, 0, len(line.Addons))
		for _, a := range line.Addons {
			q := a.Quantity
			if q == 0 {
				q = 1
			}
			addons = append(addons, entity.OrderItemAddon{
				OrderItemID: item.ID,
				AddonID:     a.ID,
				Name:        a.Name,
				Price:       a.Price,
				Quantity:    q,
			})
		}
		if err = c.repo.CreateOrderItemAddons(ctx, addons); err != nil {
			return fmt.Errorf("addons of item %s: %w", line.ProductID, err)
		}
	}
	return nil
}
