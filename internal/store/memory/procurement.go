package memory

import (
	"context"
	"slices"

	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

type supplierRepo struct{ t *tx }

func (r supplierRepo) Create(_ context.Context, s *domain.Supplier) error {
	if err := r.t.write(); err != nil {
		return err
	}
	s.ID = r.t.st.next("suppliers")
	r.t.st.suppliers[s.ID] = *s
	return nil
}

func (r supplierRepo) Update(_ context.Context, s *domain.Supplier) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.suppliers[s.ID]; !ok {
		return store.ErrNotFound
	}
	r.t.st.suppliers[s.ID] = *s
	return nil
}

func (r supplierRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.t.st.suppliers, id)
	for oid, o := range r.t.st.supplyOrders {
		if o.SupplierID == id {
			delete(r.t.st.supplyOrders, oid)
		}
	}
	for mid, m := range r.t.st.materials {
		if i := slices.Index(m.SupplierIDs, id); i >= 0 {
			m.SupplierIDs = slices.Delete(m.SupplierIDs, i, i+1)
			r.t.st.materials[mid] = m
		}
	}
	return nil
}

func (r supplierRepo) Find(_ context.Context, id int64) (*domain.Supplier, error) {
	return find(r.t.st.suppliers, id, same[domain.Supplier])
}

func (r supplierRepo) Lock(_ context.Context, id int64) error {
	if _, ok := r.t.st.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r supplierRepo) List(context.Context) ([]*domain.Supplier, error) {
	return rows(r.t.st.suppliers, same[domain.Supplier], nil), nil
}

func (r supplierRepo) SearchByName(_ context.Context, fragment string) ([]*domain.Supplier, error) {
	return rows(r.t.st.suppliers, same[domain.Supplier], func(s domain.Supplier) bool {
		return containsFold(s.Name, fragment)
	}), nil
}

type materialRepo struct{ t *tx }

func (r materialRepo) Create(_ context.Context, m *domain.RawMaterial) error {
	if err := r.t.write(); err != nil {
		return err
	}
	m.ID = r.t.st.next("raw_materials")
	stored := cloneMaterial(*m)
	stored.SupplierIDs = nil
	r.t.st.materials[m.ID] = stored
	return nil
}

func (r materialRepo) Update(_ context.Context, m *domain.RawMaterial) error {
	if err := r.t.write(); err != nil {
		return err
	}
	existing, ok := r.t.st.materials[m.ID]
	if !ok {
		return store.ErrNotFound
	}
	stored := *m
	stored.SupplierIDs = existing.SupplierIDs
	r.t.st.materials[m.ID] = stored
	return nil
}

func (r materialRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	m, ok := r.t.st.materials[id]
	if !ok {
		return store.ErrNotFound
	}
	if len(m.SupplierIDs) > 0 {
		return store.ErrReferenced
	}
	for _, o := range r.t.st.supplyOrders {
		for _, l := range o.Lines {
			if l.MaterialID == id {
				return store.ErrReferenced
			}
		}
	}
	for _, e := range r.t.st.bom {
		if e.MaterialID == id {
			return store.ErrReferenced
		}
	}
	delete(r.t.st.materials, id)
	return nil
}

func (r materialRepo) Find(_ context.Context, id int64) (*domain.RawMaterial, error) {
	return find(r.t.st.materials, id, cloneMaterial)
}

func (r materialRepo) Lock(_ context.Context, id int64) error {
	if _, ok := r.t.st.materials[id]; !ok {
		return store.ErrNotFound
	}
	return nil
}

func (r materialRepo) List(context.Context) ([]*domain.RawMaterial, error) {
	return rows(r.t.st.materials, cloneMaterial, nil), nil
}

func (r materialRepo) FindBelowMinStock(context.Context) ([]*domain.RawMaterial, error) {
	return rows(r.t.st.materials, cloneMaterial, domain.RawMaterial.IsCritical), nil
}

func (r materialRepo) SetSuppliers(_ context.Context, materialID int64, supplierIDs []int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	m, ok := r.t.st.materials[materialID]
	if !ok {
		return store.ErrNotFound
	}
	links := make([]int64, 0, len(supplierIDs))
	for _, sid := range supplierIDs {
		if _, ok := r.t.st.suppliers[sid]; !ok {
			return store.ErrReferenced
		}
		if !slices.Contains(links, sid) {
			links = append(links, sid)
		}
	}
	slices.Sort(links)
	m.SupplierIDs = links
	r.t.st.materials[materialID] = m
	return nil
}

func (r materialRepo) CountSupplierLinks(_ context.Context, materialID int64) (int, error) {
	m, ok := r.t.st.materials[materialID]
	if !ok {
		return 0, nil
	}
	return len(m.SupplierIDs), nil
}

type supplyOrderRepo struct{ t *tx }

func (r supplyOrderRepo) checkRefs(o *domain.SupplyOrder) error {
	if _, ok := r.t.st.suppliers[o.SupplierID]; !ok {
		return store.ErrReferenced
	}
	for _, l := range o.Lines {
		if _, ok := r.t.st.materials[l.MaterialID]; !ok {
			return store.ErrReferenced
		}
	}
	return nil
}

func (r supplyOrderRepo) assignLineIDs(o *domain.SupplyOrder) {
	for i := range o.Lines {
		o.Lines[i].ID = r.t.st.next("supply_order_lines")
	}
}

func (r supplyOrderRepo) Create(_ context.Context, o *domain.SupplyOrder) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if err := r.checkRefs(o); err != nil {
		return err
	}
	o.ID = r.t.st.next("supply_orders")
	r.assignLineIDs(o)
	r.t.st.supplyOrders[o.ID] = cloneSupplyOrder(*o)
	return nil
}

func (r supplyOrderRepo) Update(_ context.Context, o *domain.SupplyOrder) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.supplyOrders[o.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.checkRefs(o); err != nil {
		return err
	}
	r.assignLineIDs(o)
	r.t.st.supplyOrders[o.ID] = cloneSupplyOrder(*o)
	return nil
}

func (r supplyOrderRepo) Delete(_ context.Context, id int64) error {
	if err := r.t.write(); err != nil {
		return err
	}
	if _, ok := r.t.st.supplyOrders[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.t.st.supplyOrders, id)
	return nil
}

func (r supplyOrderRepo) Find(_ context.Context, id int64) (*domain.SupplyOrder, error) {
	return find(r.t.st.supplyOrders, id, cloneSupplyOrder)
}

func (r supplyOrderRepo) List(context.Context) ([]*domain.SupplyOrder, error) {
	return rows(r.t.st.supplyOrders, cloneSupplyOrder, nil), nil
}

func (r supplyOrderRepo) FindByStatus(_ context.Context, status domain.SupplyOrderStatus) ([]*domain.SupplyOrder, error) {
	return rows(r.t.st.supplyOrders, cloneSupplyOrder, func(o domain.SupplyOrder) bool {
		return o.Status == status
	}), nil
}

func (r supplyOrderRepo) CountBySupplierAndStatusIn(_ context.Context, supplierID int64, statuses []domain.SupplyOrderStatus) (int, error) {
	n := 0
	for _, o := range r.t.st.supplyOrders {
		if o.SupplierID == supplierID && slices.Contains(statuses, o.Status) {
			n++
		}
	}
	return n, nil
}

func (r supplyOrderRepo) CountLinesByMaterial(_ context.Context, materialID int64) (int, error) {
	n := 0
	for _, o := range r.t.st.supplyOrders {
		for _, l := range o.Lines {
			if l.MaterialID == materialID {
				n++
			}
		}
	}
	return n, nil
}
