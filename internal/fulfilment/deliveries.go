package fulfilment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/obs"
	"supplychainx.org/internal/store"
)

// DeliveryInput describes a new delivery. A nil or zero Cost is replaced by
// product cost × quantity × domain.DeliveryOverheadFactor.
type DeliveryInput struct {
	OrderID      int64
	Vehicle      string
	Driver       string
	Status       string
	DeliveryDate domain.Date
	Cost         *decimal.Decimal
}

// CostInput are the terms of a cost recalculation.
type CostInput struct {
	BaseCost  *decimal.Decimal
	Distance  *decimal.Decimal
	RatePerKm *decimal.Decimal
}

func (in DeliveryInput) build() (domain.Delivery, error) {
	var v apperr.Violations
	v.Check(in.OrderID > 0, "orderId", "is required")
	v.Check(strings.TrimSpace(in.Status) != "", "status", "is required")
	v.Check(!in.DeliveryDate.IsZero(), "deliveryDate", "is required")
	v.Check(in.Cost == nil || !in.Cost.IsNegative(), "cost", "must be positive")
	if err := v.Err(); err != nil {
		return domain.Delivery{}, err
	}
	status, err := domain.ParseDeliveryStatus(in.Status)
	if err != nil {
		return domain.Delivery{}, reject("delivery.status", "invalid status: %s", in.Status)
	}
	return domain.Delivery{
		OrderID:      in.OrderID,
		Vehicle:      strings.TrimSpace(in.Vehicle),
		Driver:       strings.TrimSpace(in.Driver),
		Status:       status,
		DeliveryDate: in.DeliveryDate,
	}, nil
}

// CreateDelivery ships an order. An order has at most one delivery.
func (s *Service) CreateDelivery(ctx context.Context, in DeliveryInput) (*domain.Delivery, error) {
	d, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		order, err := tx.Orders().Find(ctx, d.OrderID)
		if err != nil {
			return store.NotFound(err, "order", d.OrderID)
		}
		if in.Cost != nil && in.Cost.Round(domain.CostPlaces).IsPositive() {
			d.Cost = in.Cost.Round(domain.CostPlaces)
		} else {
			product, err := tx.Products().Find(ctx, order.ProductID)
			if err != nil {
				return store.NotFound(err, "product", order.ProductID)
			}
			d.Cost = domain.DefaultDeliveryCost(product.Cost, order.Quantity)
		}
		err = tx.Deliveries().Create(ctx, &d)
		if errors.Is(err, store.ErrConflict) {
			return reject("delivery.create", "order %d already has a delivery", d.OrderID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDeliveryStatus moves a delivery to any status. LIVREE also marks the
// owning order LIVREE before the transaction commits.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, id int64, rawStatus string) (*domain.Delivery, error) {
	if strings.TrimSpace(rawStatus) == "" {
		return nil, apperr.Validationf("status: is required")
	}
	status, err := domain.ParseDeliveryStatus(rawStatus)
	if err != nil {
		return nil, reject("delivery.status", "invalid status: %s", rawStatus)
	}
	var out *domain.Delivery
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		d, err := tx.Deliveries().Find(ctx, id)
		if err != nil {
			return store.NotFound(err, "delivery", id)
		}
		d.Status = status
		if err := tx.Deliveries().Update(ctx, d); err != nil {
			return store.NotFound(err, "delivery", id)
		}
		if status == domain.DeliveryDelivered {
			order, err := tx.Orders().Find(ctx, d.OrderID)
			if err != nil {
				return store.NotFound(err, "order", d.OrderID)
			}
			order.Status = domain.OrderDelivered
			if err := tx.Orders().Update(ctx, order); err != nil {
				return err
			}
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	if status == domain.DeliveryDelivered {
		obs.RecordDeliveryCompleted()
		obs.Logger().Info("delivery completed",
			zap.Int64("delivery_id", out.ID),
			zap.Int64("order_id", out.OrderID),
		)
	}
	return out, nil
}

// RecalculateCost sets cost = baseCost + distance × ratePerKm. The terms must
// not be negative and the result must be positive.
func (s *Service) RecalculateCost(ctx context.Context, id int64, in CostInput) (*domain.Delivery, error) {
	var v apperr.Violations
	nonNegative(&v, "baseCost", in.BaseCost)
	nonNegative(&v, "distance", in.Distance)
	nonNegative(&v, "ratePerKm", in.RatePerKm)
	if err := v.Err(); err != nil {
		return nil, err
	}
	cost := domain.RecalculatedDeliveryCost(*in.BaseCost, *in.Distance, *in.RatePerKm)
	if !cost.IsPositive() {
		return nil, reject("delivery.cost", "recalculated cost must be positive, got %s", cost.StringFixed(domain.CostPlaces))
	}
	var out *domain.Delivery
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		d, err := tx.Deliveries().Find(ctx, id)
		if err != nil {
			return store.NotFound(err, "delivery", id)
		}
		d.Cost = cost
		if err := tx.Deliveries().Update(ctx, d); err != nil {
			return store.NotFound(err, "delivery", id)
		}
		out = d
		return nil
	})
	return out, err
}

func nonNegative(v *apperr.Violations, field string, d *decimal.Decimal) {
	switch {
	case d == nil:
		v.Add(field, "is required")
	case d.IsNegative():
		v.Add(field, "must be positive or zero")
	}
}

func (s *Service) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	var out *domain.Delivery
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		d, err := tx.Deliveries().Find(ctx, id)
		out = d
		return store.NotFound(err, "delivery", id)
	})
	return out, err
}

func (s *Service) ListDeliveries(ctx context.Context) ([]*domain.Delivery, error) {
	var out []*domain.Delivery
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Deliveries().List(ctx)
		return err
	})
	return out, err
}

func (s *Service) DeliveriesByStatus(ctx context.Context, rawStatus string) ([]*domain.Delivery, error) {
	status, err := domain.ParseDeliveryStatus(rawStatus)
	if err != nil {
		return nil, reject("delivery.status", "invalid status: %s", rawStatus)
	}
	var out []*domain.Delivery
	err = s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Deliveries().FindByStatus(ctx, status)
		return err
	})
	return out, err
}
