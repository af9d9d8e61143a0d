package memory

import (
	"context"

	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

type productRepo struct{ t *tx }

func (r productRepo) Create(_ context.Context, p *domain.Product) error {
	if err := r.t.write(); err != nil {
		return err
	}
	p.ID = r.t.st.next("products")
	r.t.st.products[p.ID] = *p
	return nil
}

func (r productRepo) Update(_ context.Context, p *domain.Product) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	r.t.st.products[p.ID] = *p
	return nil
}

// Delete removes the product and its BOM entries.
func (r productRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.products[id]; !ok {
		return store.ErrNotFound
	}
	for _, o := range r.t.st.productionOrders {
		if o.ProductID == id {
			return store.ErrReferenced
		}
	}
	for _, o := range r.t.st.orders {
		if o.ProductID == id {
			return store.ErrReferenced
		}
	}
	delete(r.t.st.products, id)
	for eid, e := range r.t.st.bom {
		if e.ProductID == id {
			delete(r.t.st.bom, eid)
		}
	}
	return nil
}

func (r productRepo) Find(_ context.Context, id int64) (*domain.Product, error) {
	return find(r.t.st.products, id, same[domain.Product])
}

func (r productRepo) Lock(_ context.Context, id int64) error {
	if _, ok := r.t.st.products[id]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r productRepo) List(context.Context) ([]*domain.Product, error) {
	return rows(r.t.st.products, same[domain.Product], nil), nil
}

func (r productRepo) SearchByName(_ context.Context, fragment string) ([]*domain.Product, error) {
	return rows(r.t.st.products, same[domain.Product], func(p domain.Product) bool {
		return containsFold(p.Name, fragment)
	}), nil
}

type bomRepo struct{ t *tx }

func (r bomRepo) checkRefs(e *domain.BOMEntry) error {
	if _, ok := r.t.st.products[e.ProductID]; !ok {
		return store.ErrReferenced
	}
	if _, ok := r.t.st.materials[e.MaterialID]; !ok {
		return store.ErrReferenced
	}
	return nil
}

func (r bomRepo) Create(_ context.Context, e *domain.BOMEntry) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if err := r.checkRefs(e); err != nil {
		return err
	}
	e.ID = r.t.st.next("bom_entries")
	r.t.st.bom[e.ID] = *e
	return nil
}

func (r bomRepo) Update(_ context.Context, e *domain.BOMEntry) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.bom[e.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.checkRefs(e); err != nil {
		return err
	}
	r.t.st.bom[e.ID] = *e
	return nil
}

func (r bomRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.bom[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.t.st.bom, id)
	return nil
}

func (r bomRepo) Find(_ context.Context, id int64) (*domain.BOMEntry, error) {
	return find(r.t.st.bom, id, same[domain.BOMEntry])
}

func (r bomRepo) List(context.Context) ([]*domain.BOMEntry, error) {
	return rows(r.t.st.bom, same[domain.BOMEntry], nil), nil
}

func (r bomRepo) FindByProduct(_ context.Context, productID int64) ([]*domain.BOMEntry, error) {
	return rows(r.t.st.bom, same[domain.BOMEntry], func(e domain.BOMEntry) bool {
		return e.ProductID == productID
	}), nil
}

func (r bomRepo) CountByMaterial(_ context.Context, materialID int64) (int, error) {
	n := 0
	for _, e := range r.t.st.bom {
		if e.MaterialID == materialID {
			n++
		}
	}
	return n, nil
}

type productionOrderRepo struct{ t *tx }

func (r productionOrderRepo) Create(_ context.Context, o *domain.ProductionOrder) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.products[o.ProductID]; !ok {
		return store.ErrReferenced
	}
	o.ID = r.t.st.next("production_orders")
	r.t.st.productionOrders[o.ID] = cloneProductionOrder(*o)
	return nil
}

func (r productionOrderRepo) Update(_ context.Context, o *domain.ProductionOrder) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.productionOrders[o.ID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := r.t.st.products[o.ProductID]; !ok {
		return store.ErrReferenced
	}
	r.t.st.productionOrders[o.ID] = cloneProductionOrder(*o)
	return nil
}

func (r productionOrderRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.productionOrders[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.t.st.productionOrders, id)
	return nil
}

func (r productionOrderRepo) Find(_ context.Context, id int64) (*domain.ProductionOrder, error) {
	return find(r.t.st.productionOrders, id, cloneProductionOrder)
}

func (r productionOrderRepo) List(context.Context) ([]*domain.ProductionOrder, error) {
	return rows(r.t.st.productionOrders, cloneProductionOrder, nil), nil
}

func (r productionOrderRepo) FindByStatus(_ context.Context, status domain.ProductionOrderStatus) ([]*domain.ProductionOrder, error) {
	return rows(r.t.st.productionOrders, cloneProductionOrder, func(o domain.ProductionOrder) bool {
		return o.Status == status
	}), nil
}

func (r productionOrderRepo) FindByProduct(_ context.Context, productID int64) ([]*domain.ProductionOrder, error) {
	return rows(r.t.st.productionOrders, cloneProductionOrder, func(o domain.ProductionOrder) bool {
		return o.ProductID == productID
	}), nil
}
