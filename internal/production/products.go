package production

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name           string
	ProductionTime *int
	Cost           *decimal.Decimal
	Stock          *int
}

func (in ProductInput) build() (domain.Product, error) {
	var v apperr.Violations
	v.Check(strings.TrimSpace(in.Name) != "", "name", "must not be blank")
	switch {
	case in.ProductionTime == nil:
		v.Add("productionTime", "is required")
	case *in.ProductionTime <= 0:
		v.Add("productionTime", "must be positive")
	case *in.ProductionTime > domain.MaxCount:
		v.Add("productionTime", domain.OverMaxCount)
	}
	switch {
	case in.Cost == nil:
		v.Add("cost", "is required")
	case !in.Cost.IsPositive():
		v.Add("cost", "must be positive")
	}
	switch {
	case in.Stock == nil:
		v.Add("stock", "is required")
	case *in.Stock < 0:
		v.Add("stock", "must be positive or zero")
	case *in.Stock > domain.MaxCount:
		v.Add("stock", domain.OverMaxCount)
	}
	if err := v.Err(); err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		Name:           strings.TrimSpace(in.Name),
		ProductionTime: *in.ProductionTime,
		Cost:           *in.Cost,
		Stock:          *in.Stock,
	}, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Products().Create(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	p, err := in.build()
	if err != nil {
		return nil, err
	}
	p.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		return store.NotFound(tx.Products().Update(ctx, &p), "product", id)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product that no production order or customer order
// refers to. Its bill of materials goes with it.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Products().Lock(ctx, id); err != nil {
			return store.NotFound(err, "product", id)
		}
		runs, err := tx.ProductionOrders().FindByProduct(ctx, id)
		if err != nil {
			return err
		}
		if len(runs) > 0 {
			return reject("product.delete", "cannot delete product: it has %d associated production order(s)", len(runs))
		}
		orders, err := tx.Orders().CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		if orders > 0 {
			return reject("product.delete", "cannot delete product: it has %d associated customer order(s)", orders)
		}
		err = tx.Products().Delete(ctx, id)
		return guarded("product.delete", store.NotFound(err, "product", id), "cannot delete product: it is still referenced")
	})
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var out *domain.Product
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		p, err := tx.Products().Find(ctx, id)
		out = p
		return store.NotFound(err, "product", id)
	})
	return out, err
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Products().List(ctx)
		return err
	})
	return out, err
}

// SearchProducts matches name case-insensitively as a substring.
func (s *Service) SearchProducts(ctx context.Context, name string) ([]*domain.Product, error) {
	var out []*domain.Product
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Products().SearchByName(ctx, name)
		return err
	})
	return out, err
}
