package fulfilment

import (
	"context"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

type OrderInput struct {
	CustomerID int64
	ProductID  int64
	Quantity   int
	Status     string
}

func (in OrderInput) build() (domain.Order, error) {
	var v apperr.Violations
	v.Check(in.CustomerID > 0, "customerId", "is required")
	v.Check(in.ProductID > 0, "productId", "is required")
	v.Check(in.Quantity > 0, "quantity", "must be positive")
	v.Check(in.Quantity <= domain.MaxCount, "quantity", domain.OverMaxCount)
	v.Check(strings.TrimSpace(in.Status) != "", "status", "is required")
	if err := v.Err(); err != nil {
		return domain.Order{}, err
	}
	status, err := domain.ParseOrderStatus(in.Status)
	if err != nil {
		return domain.Order{}, reject("order.status", "invalid status: %s", in.Status)
	}
	return domain.Order{
		CustomerID: in.CustomerID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		Status:     status,
	}, nil
}

func resolveOrderRefs(ctx context.Context, tx store.Tx, o *domain.Order) error {
	if _, err := tx.Customers().Find(ctx, o.CustomerID); err != nil {
		return store.NotFound(err, "customer", o.CustomerID)
	}
	if _, err := tx.Products().Find(ctx, o.ProductID); err != nil {
		return store.NotFound(err, "product", o.ProductID)
	}
	return nil
}

// CreateOrder records a sales order. Stock is not reserved.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	o, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := resolveOrderRefs(ctx, tx, &o); err != nil {
			return err
		}
		return tx.Orders().Create(ctx, &o)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Service) UpdateOrder(ctx context.Context, id int64, in OrderInput) (*domain.Order, error) {
	o, err := in.build()
	if err != nil {
		return nil, err
	}
	o.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Orders().Find(ctx, id); err != nil {
			return store.NotFound(err, "order", id)
		}
		if err := resolveOrderRefs(ctx, tx, &o); err != nil {
			return err
		}
		return store.NotFound(tx.Orders().Update(ctx, &o), "order", id)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CancelOrder deletes an order still in preparation.
func (s *Service) CancelOrder(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		o, err := tx.Orders().Find(ctx, id)
		if err != nil {
			return store.NotFound(err, "order", id)
		}
		if o.Status != domain.OrderPreparing {
			return reject("order.cancel", "cannot cancel order: it has already shipped (status: %s)", o.Status)
		}
		err = tx.Orders().Delete(ctx, id)
		return guarded("order.cancel", store.NotFound(err, "order", id), "cannot cancel order: a delivery is already planned")
	})
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var out *domain.Order
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		o, err := tx.Orders().Find(ctx, id)
		out = o
		return store.NotFound(err, "order", id)
	})
	return out, err
}

func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Orders().List(ctx)
		return err
	})
	return out, err
}

func (s *Service) OrdersByStatus(ctx context.Context, rawStatus string) ([]*domain.Order, error) {
	status, err := domain.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, reject("order.status", "invalid status: %s", rawStatus)
	}
	var out []*domain.Order
	err = s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Orders().FindByStatus(ctx, status)
		return err
	})
	return out, err
}
