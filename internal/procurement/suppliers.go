package procurement

import (
	"context"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// SupplierInput carries the writable fields of a supplier.
type SupplierInput struct {
	Name     string
	Contact  string
	Rating   *float64
	LeadTime *int
}

func (in SupplierInput) build() (domain.Supplier, error) {
	var v apperr.Violations
	v.Check(strings.TrimSpace(in.Name) != "", "name", "must not be blank")
	v.Check(strings.TrimSpace(in.Contact) != "", "contact", "must not be blank")
	switch {
	case in.Rating == nil:
		v.Add("rating", "is required")
	case *in.Rating < 0:
		v.Add("rating", "must be positive or zero")
	}
	switch {
	case in.LeadTime == nil:
		v.Add("leadTime", "is required")
	case *in.LeadTime < 1:
		v.Add("leadTime", "must be at least 1 day")
	case *in.LeadTime > domain.MaxCount:
		v.Add("leadTime", domain.OverMaxCount)
	}
	if err := v.Err(); err != nil {
		return domain.Supplier{}, err
	}
	return domain.Supplier{
		Name:     strings.TrimSpace(in.Name),
		Contact:  strings.TrimSpace(in.Contact),
		Rating:   *in.Rating,
		LeadTime: *in.LeadTime,
	}, nil
}

// CreateSupplier validates and stores a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	sup, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Suppliers().Create(ctx, &sup)
	})
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// UpdateSupplier replaces the fields of an existing supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (*domain.Supplier, error) {
	sup, err := in.build()
	if err != nil {
		return nil, err
	}
	sup.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		return store.NotFound(tx.Suppliers().Update(ctx, &sup), "supplier", id)
	})
	if err != nil {
		return nil, err
	}
	return &sup, nil
}

// DeleteSupplier removes a supplier that has no pending or in-progress
// supply order. Received orders go with it.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Suppliers().Lock(ctx, id); err != nil {
			return store.NotFound(err, "supplier", id)
		}
		n, err := tx.SupplyOrders().CountBySupplierAndStatusIn(ctx, id, domain.ActiveSupplyOrderStatuses)
		if err != nil {
			return err
		}
		if n > 0 {
			return reject("supplier.delete", "supplier has active orders")
		}
		err = tx.Suppliers().Delete(ctx, id)
		return guarded("supplier.delete", store.NotFound(err, "supplier", id), "supplier has active orders")
	})
}

// GetSupplier loads one supplier.
func (s *Service) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var out *domain.Supplier
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		sup, err := tx.Suppliers().Find(ctx, id)
		out = sup
		return store.NotFound(err, "supplier", id)
	})
	return out, err
}

// ListSuppliers returns every supplier ordered by id.
func (s *Service) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	var out []*domain.Supplier
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Suppliers().List(ctx)
		return err
	})
	return out, err
}

// SearchSuppliers matches name case-insensitively as a substring.
func (s *Service) SearchSuppliers(ctx context.Context, name string) ([]*domain.Supplier, error) {
	var out []*domain.Supplier
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Suppliers().SearchByName(ctx, name)
		return err
	})
	return out, err
}
