package procurement

import (
	"context"
	"fmt"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// LineInput is one requested material quantity.
type LineInput struct {
	MaterialID int64
	Quantity   int
}

// SupplyOrderInput carries the header and the full line set of a supply order.
type SupplyOrderInput struct {
	SupplierID int64
	OrderDate  domain.Date
	Status     string
	Lines      []LineInput
}

func (in SupplyOrderInput) build() (domain.SupplyOrder, error) {
	var v apperr.Violations
	v.Check(in.SupplierID > 0, "supplierId", "is required")
	v.Check(!in.OrderDate.IsZero(), "orderDate", "is required")
	v.Check(strings.TrimSpace(in.Status) != "", "status", "is required")
	v.Check(len(in.Lines) > 0, "materials", "at least one raw material is required")
	for i, l := range in.Lines {
		v.Check(l.MaterialID > 0, fmt.Sprintf("materials[%d].materialId", i), "is required")
		v.Check(l.Quantity > 0, fmt.Sprintf("materials[%d].quantity", i), "must be greater than 0")
		v.Check(l.Quantity <= domain.MaxCount, fmt.Sprintf("materials[%d].quantity", i), domain.OverMaxCount)
	}
	if err := v.Err(); err != nil {
		return domain.SupplyOrder{}, err
	}
	status, err := domain.ParseSupplyOrderStatus(in.Status)
	if err != nil {
		return domain.SupplyOrder{}, reject("supply_order.status", "invalid status: %s", in.Status)
	}
	o := domain.SupplyOrder{
		SupplierID: in.SupplierID,
		OrderDate:  in.OrderDate,
		Status:     status,
		Lines:      make([]domain.SupplyOrderLine, 0, len(in.Lines)),
	}
	for _, l := range in.Lines {
		o.Lines = append(o.Lines, domain.SupplyOrderLine{MaterialID: l.MaterialID, Quantity: l.Quantity})
	}
	return o, nil
}

func resolveOrderRefs(ctx context.Context, tx store.Tx, o *domain.SupplyOrder) error {
	if _, err := tx.Suppliers().Find(ctx, o.SupplierID); err != nil {
		return store.NotFound(err, "supplier", o.SupplierID)
	}
	for _, l := range o.Lines {
		if _, err := tx.RawMaterials().Find(ctx, l.MaterialID); err != nil {
			return store.NotFound(err, "raw material", l.MaterialID)
		}
	}
	return nil
}

// CreateSupplyOrder places an order on a supplier with its lines.
func (s *Service) CreateSupplyOrder(ctx context.Context, in SupplyOrderInput) (*domain.SupplyOrder, error) {
	o, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := resolveOrderRefs(ctx, tx, &o); err != nil {
			return err
		}
		return tx.SupplyOrders().Create(ctx, &o)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateSupplyOrder rewrites the header and replaces the previous lines with
// the given set.
func (s *Service) UpdateSupplyOrder(ctx context.Context, id int64, in SupplyOrderInput) (*domain.SupplyOrder, error) {
	o, err := in.build()
	if err != nil {
		return nil, err
	}
	o.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.SupplyOrders().Find(ctx, id); err != nil {
			return store.NotFound(err, "supply order", id)
		}
		if err := resolveOrderRefs(ctx, tx, &o); err != nil {
			return err
		}
		return store.NotFound(tx.SupplyOrders().Update(ctx, &o), "supply order", id)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteSupplyOrder removes an order that has not been received yet.
func (s *Service) DeleteSupplyOrder(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		o, err := tx.SupplyOrders().Find(ctx, id)
		if err != nil {
			return store.NotFound(err, "supply order", id)
		}
		if o.Status == domain.SupplyOrderReceived {
			return reject("supply_order.delete", "cannot delete a supply order that was already received (status %s)", o.Status)
		}
		return store.NotFound(tx.SupplyOrders().Delete(ctx, id), "supply order", id)
	})
}

// GetSupplyOrder loads one supply order with its lines.
func (s *Service) GetSupplyOrder(ctx context.Context, id int64) (*domain.SupplyOrder, error) {
	var out *domain.SupplyOrder
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		o, err := tx.SupplyOrders().Find(ctx, id)
		out = o
		return store.NotFound(err, "supply order", id)
	})
	return out, err
}

// ListSupplyOrders returns every supply order.
func (s *Service) ListSupplyOrders(ctx context.Context) ([]*domain.SupplyOrder, error) {
	var out []*domain.SupplyOrder
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.SupplyOrders().List(ctx)
		return err
	})
	return out, err
}

// SupplyOrdersByStatus filters supply orders by a status literal.
func (s *Service) SupplyOrdersByStatus(ctx context.Context, rawStatus string) ([]*domain.SupplyOrder, error) {
	status, err := domain.ParseSupplyOrderStatus(rawStatus)
	if err != nil {
		return nil, reject("supply_order.status", "invalid status: %s", rawStatus)
	}
	var out []*domain.SupplyOrder
	err = s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.SupplyOrders().FindByStatus(ctx, status)
		return err
	})
	return out, err
}
