package pg

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

type supplierRepo struct{ q *sql.Tx }

const supplierColumns = `id, name, contact, rating, lead_time`

func scanSupplier(s scanner) (*domain.Supplier, error) {
	var v domain.Supplier
	if err := s.Scan(&v.ID, &v.Name, &v.Contact, &v.Rating, &v.LeadTime); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r supplierRepo) Create(ctx context.Context, s *domain.Supplier) error {
	err := r.q.QueryRowContext(ctx,
		`insert into suppliers(name, contact, rating, lead_time) values($1,$2,$3,$4) returning id`,
		s.Name, s.Contact, s.Rating, s.LeadTime,
	).Scan(&s.ID)
	return mapError(err)
}

func (r supplierRepo) Update(ctx context.Context, s *domain.Supplier) error {
	return affected(r.q.ExecContext(ctx,
		`update suppliers set name=$2, contact=$3, rating=$4, lead_time=$5 where id=$1`,
		s.ID, s.Name, s.Contact, s.Rating, s.LeadTime))
}

func (r supplierRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from suppliers where id=$1`, id))
}

func (r supplierRepo) Find(ctx context.Context, id int64) (*domain.Supplier, error) {
	return one(r.q.QueryRowContext(ctx, `select `+supplierColumns+` from suppliers where id=$1`, id), scanSupplier)
}

func (r supplierRepo) Lock(ctx context.Context, id int64) error {
	return lock(ctx, r.q, "suppliers", id)
}

func (r supplierRepo) List(ctx context.Context) ([]*domain.Supplier, error) {
	rows, err := r.q.QueryContext(ctx, `select `+supplierColumns+` from suppliers order by id`)
	return collect(rows, err, scanSupplier)
}

func (r supplierRepo) SearchByName(ctx context.Context, fragment string) ([]*domain.Supplier, error) {
	rows, err := r.q.QueryContext(ctx,
		`select `+supplierColumns+` from suppliers where name ilike $1 order by id`, likePattern(fragment))
	return collect(rows, err, scanSupplier)
}

type materialRepo struct{ q *sql.Tx }

const materialColumns = `m.id, m.name, m.stock, m.stock_min, m.unit`

func scanMaterial(s scanner) (*domain.RawMaterial, error) {
	var v domain.RawMaterial
	if err := s.Scan(&v.ID, &v.Name, &v.Stock, &v.StockMin, &v.Unit); err != nil {
		return nil, err
	}
	v.SupplierIDs = []int64{}
	return &v, nil
}

// query loads materials matching where (which may reference alias m) and
// attaches their supplier links.
func (r materialRepo) query(ctx context.Context, where string, args ...any) ([]*domain.RawMaterial, error) {
	rows, err := r.q.QueryContext(ctx, `select `+materialColumns+` from raw_materials m `+where+` order by m.id`, args...)
	list, err := collect(rows, err, scanMaterial)
	if err != nil || len(list) == 0 {
		return list, err
	}
	byID := make(map[int64]*domain.RawMaterial, len(list))
	for _, m := range list {
		byID[m.ID] = m
	}
	links, err := r.q.QueryContext(ctx,
		`select sm.material_id, sm.supplier_id from supplier_materials sm
		 join raw_materials m on m.id = sm.material_id `+where+`
		 order by sm.material_id, sm.supplier_id`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer links.Close()
	for links.Next() {
		var mid, sid int64
		if err := links.Scan(&mid, &sid); err != nil {
			return nil, err
		}
		if m, ok := byID[mid]; ok {
			m.SupplierIDs = append(m.SupplierIDs, sid)
		}
	}
	return list, links.Err()
}

func (r materialRepo) Create(ctx context.Context, m *domain.RawMaterial) error {
	err := r.q.QueryRowContext(ctx,
		`insert into raw_materials(name, stock, stock_min, unit) values($1,$2,$3,$4) returning id`,
		m.Name, m.Stock, m.StockMin, m.Unit,
	).Scan(&m.ID)
	return mapError(err)
}

func (r materialRepo) Update(ctx context.Context, m *domain.RawMaterial) error {
	return affected(r.q.ExecContext(ctx,
		`update raw_materials set name=$2, stock=$3, stock_min=$4, unit=$5 where id=$1`,
		m.ID, m.Name, m.Stock, m.StockMin, m.Unit))
}

func (r materialRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from raw_materials where id=$1`, id))
}

func (r materialRepo) Find(ctx context.Context, id int64) (*domain.RawMaterial, error) {
	list, err := r.query(ctx, `where m.id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (r materialRepo) Lock(ctx context.Context, id int64) error {
	return lock(ctx, r.q, "raw_materials", id)
}

func (r materialRepo) List(ctx context.Context) ([]*domain.RawMaterial, error) {
	return r.query(ctx, "")
}

func (r materialRepo) FindBelowMinStock(ctx context.Context) ([]*domain.RawMaterial, error) {
	return r.query(ctx, `where m.stock < m.stock_min`)
}

func (r materialRepo) SetSuppliers(ctx context.Context, materialID int64, supplierIDs []int64) error {
	if _, err := r.q.ExecContext(ctx, `delete from supplier_materials where material_id=$1`, materialID); err != nil {
		return mapError(err)
	}
	ids := slices.Clone(supplierIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, sid := range ids {
		if _, err := r.q.ExecContext(ctx,
			`insert into supplier_materials(supplier_id, material_id) values($1,$2)`, sid, materialID); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r materialRepo) CountSupplierLinks(ctx context.Context, materialID int64) (int, error) {
	return count(ctx, r.q, `select count(*) from supplier_materials where material_id=$1`, materialID)
}

type supplyOrderRepo struct{ q *sql.Tx }

func scanSupplyOrder(s scanner) (*domain.SupplyOrder, error) {
	var v domain.SupplyOrder
	if err := s.Scan(&v.ID, &v.SupplierID, &v.OrderDate, &v.Status); err != nil {
		return nil, err
	}
	v.Lines = []domain.SupplyOrderLine{}
	return &v, nil
}

// query loads orders matching where (alias o) together with their lines.
func (r supplyOrderRepo) query(ctx context.Context, where string, args ...any) ([]*domain.SupplyOrder, error) {
	rows, err := r.q.QueryContext(ctx,
		`select o.id, o.supplier_id, o.order_date, o.status from supply_orders o `+where+` order by o.id`, args...)
	list, err := collect(rows, err, scanSupplyOrder)
	if err != nil || len(list) == 0 {
		return list, err
	}
	byID := make(map[int64]*domain.SupplyOrder, len(list))
	for _, o := range list {
		byID[o.ID] = o
	}
	lines, err := r.q.QueryContext(ctx,
		`select l.supply_order_id, l.id, l.material_id, l.quantity from supply_order_lines l
		 join supply_orders o on o.id = l.supply_order_id `+where+`
		 order by l.supply_order_id, l.position`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer lines.Close()
	for lines.Next() {
		var (
			orderID int64
			line    domain.SupplyOrderLine
		)
		if err := lines.Scan(&orderID, &line.ID, &line.MaterialID, &line.Quantity); err != nil {
			return nil, err
		}
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	return list, lines.Err()
}

func (r supplyOrderRepo) insertLines(ctx context.Context, o *domain.SupplyOrder) error {
	for i := range o.Lines {
		l := &o.Lines[i]
		err := r.q.QueryRowContext(ctx,
			`insert into supply_order_lines(supply_order_id, material_id, quantity, position) values($1,$2,$3,$4) returning id`,
			o.ID, l.MaterialID, l.Quantity, i,
		).Scan(&l.ID)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r supplyOrderRepo) Create(ctx context.Context, o *domain.SupplyOrder) error {
	err := r.q.QueryRowContext(ctx,
		`insert into supply_orders(supplier_id, order_date, status) values($1,$2,$3) returning id`,
		o.SupplierID, o.OrderDate, o.Status,
	).Scan(&o.ID)
	if err != nil {
		return mapError(err)
	}
	return r.insertLines(ctx, o)
}

func (r supplyOrderRepo) Update(ctx context.Context, o *domain.SupplyOrder) error {
	err := affected(r.q.ExecContext(ctx,
		`update supply_orders set supplier_id=$2, order_date=$3, status=$4 where id=$1`,
		o.ID, o.SupplierID, o.OrderDate, o.Status))
	if err != nil {
		return err
	}
	if _, err := r.q.ExecContext(ctx, `delete from supply_order_lines where supply_order_id=$1`, o.ID); err != nil {
		return mapError(err)
	}
	return r.insertLines(ctx, o)
}

func (r supplyOrderRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from supply_orders where id=$1`, id))
}

func (r supplyOrderRepo) Find(ctx context.Context, id int64) (*domain.SupplyOrder, error) {
	list, err := r.query(ctx, `where o.id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (r supplyOrderRepo) List(ctx context.Context) ([]*domain.SupplyOrder, error) {
	return r.query(ctx, "")
}

func (r supplyOrderRepo) FindByStatus(ctx context.Context, status domain.SupplyOrderStatus) ([]*domain.SupplyOrder, error) {
	return r.query(ctx, `where o.status=$1`, status)
}

func (r supplyOrderRepo) CountBySupplierAndStatusIn(ctx context.Context, supplierID int64, statuses []domain.SupplyOrderStatus) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	args := []any{supplierID}
	marks := make([]string, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, s)
		marks = append(marks, placeholder(len(args)))
	}
	return count(ctx, r.q,
		`select count(*) from supply_orders where supplier_id=$1 and status in (`+strings.Join(marks, ",")+`)`, args...)
}

func (r supplyOrderRepo) CountLinesByMaterial(ctx context.Context, materialID int64) (int, error) {
	return count(ctx, r.q, `select count(*) from supply_order_lines where material_id=$1`, materialID)
}
