// Package memory is an in-process implementation of store.Store. Every
// transaction works on a private copy of the data set which replaces the
// shared state only when the transaction function succeeds.
package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"

	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

var errReadOnly = errors.New("memory: write in read-only transaction")

var _ store.Store = (*Store)(nil)

// Store keeps all rows in maps guarded by a single mutex.
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) WithTx(ctx context.Context, fn func(store.Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *Store) WithReadTx(ctx context.Context, fn func(store.Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) run(ctx context.Context, readOnly bool, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&tx{st: work, readOnly: readOnly}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !readOnly {
		s.st = work
	}
	return nil
}

type state struct {
	seq map[string]int64

	users            map[int64]domain.User
	tokens           map[string]domain.RefreshToken
	suppliers        map[int64]domain.Supplier
	materials        map[int64]domain.RawMaterial
	supplyOrders     map[int64]domain.SupplyOrder
	products         map[int64]domain.Product
	bom              map[int64]domain.BOMEntry
	productionOrders map[int64]domain.ProductionOrder
	customers        map[int64]domain.Customer
	orders           map[int64]domain.Order
	deliveries       map[int64]domain.Delivery
}

func newState() *state {
	return &state{
		seq:              map[string]int64{},
		users:            map[int64]domain.User{},
		tokens:           map[string]domain.RefreshToken{},
		suppliers:        map[int64]domain.Supplier{},
		materials:        map[int64]domain.RawMaterial{},
		supplyOrders:     map[int64]domain.SupplyOrder{},
		products:         map[int64]domain.Product{},
		bom:              map[int64]domain.BOMEntry{},
		productionOrders: map[int64]domain.ProductionOrder{},
		customers:        map[int64]domain.Customer{},
		orders:           map[int64]domain.Order{},
		deliveries:       map[int64]domain.Delivery{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:              cloneMap(s.seq, same[int64]),
		users:            cloneMap(s.users, same[domain.User]),
		tokens:           cloneMap(s.tokens, same[domain.RefreshToken]),
		suppliers:        cloneMap(s.suppliers, same[domain.Supplier]),
		materials:        cloneMap(s.materials, cloneMaterial),
		supplyOrders:     cloneMap(s.supplyOrders, cloneSupplyOrder),
		products:         cloneMap(s.products, same[domain.Product]),
		bom:              cloneMap(s.bom, same[domain.BOMEntry]),
		productionOrders: cloneMap(s.productionOrders, cloneProductionOrder),
		customers:        cloneMap(s.customers, same[domain.Customer]),
		orders:           cloneMap(s.orders, same[domain.Order]),
		deliveries:       cloneMap(s.deliveries, same[domain.Delivery]),
	}
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func same[V any](v V) V { return v }

func cloneMaterial(m domain.RawMaterial) domain.RawMaterial {
	m.SupplierIDs = slices.Clone(m.SupplierIDs)
	return m
}

func cloneSupplyOrder(o domain.SupplyOrder) domain.SupplyOrder {
	o.Lines = slices.Clone(o.Lines)
	return o
}

func cloneProductionOrder(o domain.ProductionOrder) domain.ProductionOrder {
	if o.EndDate != nil {
		end := *o.EndDate
		o.EndDate = &end
	}
	return o
}

func cloneMap[K comparable, V any](m map[K]V, cp func(V) V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = cp(v)
	}
	return out
}

// rows returns copies of the values accepted by keep, ordered by id.
func rows[V any](m map[int64]V, cp func(V) V, keep func(V) bool) []*V {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*V, 0, len(ids))
	for _, id := range ids {
		v := cp(m[id])
		out = append(out, &v)
	}
	return out
}

func find[V any](m map[int64]V, id int64, cp func(V) V) (*V, error) {
	v, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	v = cp(v)
	return &v, nil
}

func containsFold(name, fragment string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(fragment))
}

type tx struct {
	st       *state
	readOnly bool
}

func (t *tx) write() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) Users() store.UserRepo                       { return userRepo{t} }
func (t *tx) RefreshTokens() store.RefreshTokenRepo       { return tokenRepo{t} }
func (t *tx) Suppliers() store.SupplierRepo               { return supplierRepo{t} }
func (t *tx) RawMaterials() store.RawMaterialRepo         { return materialRepo{t} }
func (t *tx) SupplyOrders() store.SupplyOrderRepo         { return supplyOrderRepo{t} }
func (t *tx) Products() store.ProductRepo                 { return productRepo{t} }
func (t *tx) BOM() store.BOMRepo                          { return bomRepo{t} }
func (t *tx) ProductionOrders() store.ProductionOrderRepo { return productionOrderRepo{t} }
func (t *tx) Customers() store.CustomerRepo               { return customerRepo{t} }
func (t *tx) Orders() store.OrderRepo                     { return orderRepo{t} }
func (t *tx) Deliveries() store.DeliveryRepo              { return deliveryRepo{t} }
