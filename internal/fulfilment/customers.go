package fulfilment

import (
	"context"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

type CustomerInput struct {
	Name    string
	Address string
	City    string
}

func (in CustomerInput) build() (domain.Customer, error) {
	var v apperr.Violations
	v.Check(strings.TrimSpace(in.Name) != "", "name", "must not be blank")
	v.Check(strings.TrimSpace(in.Address) != "", "address", "must not be blank")
	v.Check(strings.TrimSpace(in.City) != "", "city", "must not be blank")
	if err := v.Err(); err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		City:    strings.TrimSpace(in.City),
	}, nil
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	c, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Customers().Create(ctx, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, in CustomerInput) (*domain.Customer, error) {
	c, err := in.build()
	if err != nil {
		return nil, err
	}
	c.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		return store.NotFound(tx.Customers().Update(ctx, &c), "customer", id)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCustomer removes a customer without orders.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Customers().Lock(ctx, id); err != nil {
			return store.NotFound(err, "customer", id)
		}
		orders, err := tx.Orders().FindByCustomer(ctx, id)
		if err != nil {
			return err
		}
		if len(orders) > 0 {
			return reject("customer.delete", "cannot delete customer: it has %d associated order(s)", len(orders))
		}
		err = tx.Customers().Delete(ctx, id)
		return guarded("customer.delete", store.NotFound(err, "customer", id), "cannot delete customer: it still has orders")
	})
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var out *domain.Customer
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		c, err := tx.Customers().Find(ctx, id)
		out = c
		return store.NotFound(err, "customer", id)
	})
	return out, err
}

func (s *Service) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	var out []*domain.Customer
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Customers().List(ctx)
		return err
	})
	return out, err
}

// SearchCustomers matches name case-insensitively as a substring.
func (s *Service) SearchCustomers(ctx context.Context, name string) ([]*domain.Customer, error) {
	var out []*domain.Customer
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.Customers().SearchByName(ctx, name)
		return err
	})
	return out, err
}
