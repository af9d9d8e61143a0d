package production

import (
	"context"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// ProductionOrderInput carries every field of a production order; updates
// replace all of them.
type ProductionOrderInput struct {
	ProductID int64
	Quantity  int
	Status    string
	StartDate domain.Date
	EndDate   *domain.Date
}

func (in ProductionOrderInput) build() (domain.ProductionOrder, error) {
	var v apperr.Violations
	v.Check(in.ProductID > 0, "productId", "is required")
	v.Check(in.Quantity > 0, "quantity", "must be positive")
	v.Check(in.Quantity <= domain.MaxCount, "quantity", domain.OverMaxCount)
	v.Check(strings.TrimSpace(in.Status) != "", "status", "is required")
	v.Check(!in.StartDate.IsZero(), "startDate", "is required")
	if in.EndDate != nil && !in.EndDate.IsZero() && !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate.Time) {
		v.Add("endDate", "must not precede startDate")
	}
	if err := v.Err(); err != nil {
		return domain.ProductionOrder{}, err
	}
	status, err := domain.ParseProductionOrderStatus(in.Status)
	if err != nil {
		return domain.ProductionOrder{}, reject("production_order.status", "invalid status: %s", in.Status)
	}
	o := domain.ProductionOrder{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Status:    status,
		StartDate: in.StartDate,
	}
	if in.EndDate != nil && !in.EndDate.IsZero() {
		end := *in.EndDate
		o.EndDate = &end
	}
	return o, nil
}

func (s *Service) CreateProductionOrder(ctx context.Context, in ProductionOrderInput) (*domain.ProductionOrder, error) {
	o, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Products().Find(ctx, o.ProductID); err != nil {
			return store.NotFound(err, "product", o.ProductID)
		}
		return tx.ProductionOrders().Create(ctx, &o)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateProductionOrder replaces all fields, status included. Transitions are
// not restricted.
func (s *Service) UpdateProductionOrder(ctx context.Context, id int64, in ProductionOrderInput) (*domain.ProductionOrder, error) {
	o, err := in.build()
	if err != nil {
		return nil, err
	}
	o.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.ProductionOrders().Find(ctx, id); err != nil {
			return store.NotFound(err, "production order", id)
		}
		if _, err := tx.Products().Find(ctx, o.ProductID); err != nil {
			return store.NotFound(err, "product", o.ProductID)
		}
		return store.NotFound(tx.ProductionOrders().Update(ctx, &o), "production order", id)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CancelProductionOrder deletes an order that has not started.
func (s *Service) CancelProductionOrder(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		o, err := tx.ProductionOrders().Find(ctx, id)
		if err != nil {
			return store.NotFound(err, "production order", id)
		}
		if o.Status != domain.ProductionPending {
			return reject("production_order.cancel", "cannot cancel production order: it has already started (status: %s)", o.Status)
		}
		return store.NotFound(tx.ProductionOrders().Delete(ctx, id), "production order", id)
	})
}

func (s *Service) GetProductionOrder(ctx context.Context, id int64) (*domain.ProductionOrder, error) {
	var out *domain.ProductionOrder
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		o, err := tx.ProductionOrders().Find(ctx, id)
		out = o
		return store.NotFound(err, "production order", id)
	})
	return out, err
}

func (s *Service) ListProductionOrders(ctx context.Context) ([]*domain.ProductionOrder, error) {
	var out []*domain.ProductionOrder
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.ProductionOrders().List(ctx)
		return err
	})
	return out, err
}

func (s *Service) ProductionOrdersByStatus(ctx context.Context, rawStatus string) ([]*domain.ProductionOrder, error) {
	status, err := domain.ParseProductionOrderStatus(rawStatus)
	if err != nil {
		return nil, reject("production_order.status", "invalid status: %s", rawStatus)
	}
	var out []*domain.ProductionOrder
	err = s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.ProductionOrders().FindByStatus(ctx, status)
		return err
	})
	return out, err
}
