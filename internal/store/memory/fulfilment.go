package memory

import (
	"context"

	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

type customerRepo struct{ t *tx }

func (r customerRepo) Create(_ context.Context, c *domain.Customer) error {
	if err := r.t.write(); err != nil {
		return err
	}
	c.ID = r.t.st.next("customers")
	r.t.st.customers[c.ID] = *c
	return nil
}

func (r customerRepo) Update(_ context.Context, c *domain.Customer) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.customers[c.ID]; !ok {
		return store.ErrNotFound
	}
	r.t.st.customers[c.ID] = *c
	return nil
}

func (r customerRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.customers[id]; !ok {
		return store.ErrNotFound
	}
	for _, o := range r.t.st.orders {
		if o.CustomerID == id {
			return store.ErrReferenced
		}
	}
	delete(r.t.st.customers, id)
	return nil
}

func (r customerRepo) Find(_ context.Context, id int64) (*domain.Customer, error) {
	return find(r.t.st.customers, id, same[domain.Customer])
}

func (r customerRepo) Lock(_ context.Context, id int64) error {
	if _, ok := r.t.st.customers[id]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r customerRepo) List(context.Context) ([]*domain.Customer, error) {
	return rows(r.t.st.customers, same[domain.Customer], nil), nil
}

func (r customerRepo) SearchByName(_ context.Context, fragment string) ([]*domain.Customer, error) {
	return rows(r.t.st.customers, same[domain.Customer], func(c domain.Customer) bool {
		return containsFold(c.Name, fragment)
	}), nil
}

type orderRepo struct{ t *tx }

func (r orderRepo) checkRefs(o *domain.Order) error {
	if _, ok := r.t.st.customers[o.CustomerID]; !ok {
		return store.ErrReferenced
	}
	if _, ok := r.t.st.products[o.ProductID]; !ok {
		return store.ErrReferenced
	}
	return nil
}

func (r orderRepo) Create(_ context.Context, o *domain.Order) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if err := r.checkRefs(o); err != nil {
		return err
	}
	o.ID = r.t.st.next("orders")
	r.t.st.orders[o.ID] = *o
	return nil
}

func (r orderRepo) Update(_ context.Context, o *domain.Order) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.checkRefs(o); err != nil {
		return err
	}
	r.t.st.orders[o.ID] = *o
	return nil
}

func (r orderRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.orders[id]; !ok {
		return store.ErrNotFound
	}
	for _, d := range r.t.st.deliveries {
		if d.OrderID == id {
			return store.ErrReferenced
		}
	}
	delete(r.t.st.orders, id)
	return nil
}

func (r orderRepo) Find(_ context.Context, id int64) (*domain.Order, error) {
	return find(r.t.st.orders, id, same[domain.Order])
}

func (r orderRepo) List(context.Context) ([]*domain.Order, error) {
	return rows(r.t.st.orders, same[domain.Order], nil), nil
}

func (r orderRepo) FindByStatus(_ context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return rows(r.t.st.orders, same[domain.Order], func(o domain.Order) bool {
		return o.Status == status
	}), nil
}

func (r orderRepo) FindByCustomer(_ context.Context, customerID int64) ([]*domain.Order, error) {
	return rows(r.t.st.orders, same[domain.Order], func(o domain.Order) bool {
		return o.CustomerID == customerID
	}), nil
}

func (r orderRepo) CountByProduct(_ context.Context, productID int64) (int, error) {
	n := 0
	for _, o := range r.t.st.orders {
		if o.ProductID == productID {
			n++
		}
	}
	return n, nil
}

type deliveryRepo struct{ t *tx }

func (r deliveryRepo) Create(_ context.Context, d *domain.Delivery) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.orders[d.OrderID]; !ok {
		return store.ErrReferenced
	}
	for _, existing := range r.t.st.deliveries {
		if existing.OrderID == d.OrderID {
			return store.ErrConflict
		}
	}
	d.ID = r.t.st.next("deliveries")
	r.t.st.deliveries[d.ID] = *d
	return nil
}

func (r deliveryRepo) Update(_ context.Context, d *domain.Delivery) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.deliveries[d.ID]; !ok {
		return store.ErrNotFound
	}
	for id, existing := range r.t.st.deliveries {
		if id != d.ID && existing.OrderID == d.OrderID {
			return store.ErrConflict
		}
	}
	r.t.st.deliveries[d.ID] = *d
	return nil
}

func (r deliveryRepo) Find(_ context.Context, id int64) (*domain.Delivery, error) {
	return find(r.t.st.deliveries, id, same[domain.Delivery])
}

func (r deliveryRepo) List(context.Context) ([]*domain.Delivery, error) {
	return rows(r.t.st.deliveries, same[domain.Delivery], nil), nil
}

func (r deliveryRepo) FindByStatus(_ context.Context, status domain.DeliveryStatus) ([]*domain.Delivery, error) {
	return rows(r.t.st.deliveries, same[domain.Delivery], func(d domain.Delivery) bool {
		return d.Status == status
	}), nil
}
