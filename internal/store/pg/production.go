package pg

import (
	"context"
	"database/sql"

	"supplychainx.org/internal/domain"
)

type productRepo struct{ q *sql.Tx }

const productColumns = `id, name, production_time, cost, stock`

func scanProduct(s scanner) (*domain.Product, error) {
	var v domain.Product
	if err := s.Scan(&v.ID, &v.Name, &v.ProductionTime, &v.Cost, &v.Stock); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r productRepo) Create(ctx context.Context, p *domain.Product) error {
	err := r.q.QueryRowContext(ctx,
		`insert into products(name, production_time, cost, stock) values($1,$2,$3,$4) returning id`,
		p.Name, p.ProductionTime, p.Cost, p.Stock,
	).Scan(&p.ID)
	return mapError(err)
}

func (r productRepo) Update(ctx context.Context, p *domain.Product) error {
	return affected(r.q.ExecContext(ctx,
		`update products set name=$2, production_time=$3, cost=$4, stock=$5 where id=$1`,
		p.ID, p.Name, p.ProductionTime, p.Cost, p.Stock))
}

// Delete removes the product; its BOM entries cascade.
func (r productRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from products where id=$1`, id))
}

func (r productRepo) Find(ctx context.Context, id int64) (*domain.Product, error) {
	return one(r.q.QueryRowContext(ctx, `select `+productColumns+` from products where id=$1`, id), scanProduct)
}

func (r productRepo) Lock(ctx context.Context, id int64) error {
	return lock(ctx, r.q, "products", id)
}

func (r productRepo) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.q.QueryContext(ctx, `select `+productColumns+` from products order by id`)
	return collect(rows, err, scanProduct)
}

func (r productRepo) SearchByName(ctx context.Context, fragment string) ([]*domain.Product, error) {
	rows, err := r.q.QueryContext(ctx,
		`select `+productColumns+` from products where name ilike $1 order by id`, likePattern(fragment))
	return collect(rows, err, scanProduct)
}

type bomRepo struct{ q *sql.Tx }

const bomColumns = `id, product_id, material_id, quantity_per_unit`

func scanBOM(s scanner) (*domain.BOMEntry, error) {
	var v domain.BOMEntry
	if err := s.Scan(&v.ID, &v.ProductID, &v.MaterialID, &v.QuantityPerUnit); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r bomRepo) Create(ctx context.Context, e *domain.BOMEntry) error {
	err := r.q.QueryRowContext(ctx,
		`insert into bom_entries(product_id, material_id, quantity_per_unit) values($1,$2,$3) returning id`,
		e.ProductID, e.MaterialID, e.QuantityPerUnit,
	).Scan(&e.ID)
	return mapError(err)
}

func (r bomRepo) Update(ctx context.Context, e *domain.BOMEntry) error {
	return affected(r.q.ExecContext(ctx,
		`update bom_entries set product_id=$2, material_id=$3, quantity_per_unit=$4 where id=$1`,
		e.ID, e.ProductID, e.MaterialID, e.QuantityPerUnit))
}

func (r bomRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from bom_entries where id=$1`, id))
}

func (r bomRepo) Find(ctx context.Context, id int64) (*domain.BOMEntry, error) {
	return one(r.q.QueryRowContext(ctx, `select `+bomColumns+` from bom_entries where id=$1`, id), scanBOM)
}

func (r bomRepo) List(ctx context.Context) ([]*domain.BOMEntry, error) {
	rows, err := r.q.QueryContext(ctx, `select `+bomColumns+` from bom_entries order by id`)
	return collect(rows, err, scanBOM)
}

func (r bomRepo) FindByProduct(ctx context.Context, productID int64) ([]*domain.BOMEntry, error) {
	rows, err := r.q.QueryContext(ctx,
		`select `+bomColumns+` from bom_entries where product_id=$1 order by id`, productID)
	return collect(rows, err, scanBOM)
}

func (r bomRepo) CountByMaterial(ctx context.Context, materialID int64) (int, error) {
	return count(ctx, r.q, `select count(*) from bom_entries where material_id=$1`, materialID)
}

type productionOrderRepo struct{ q *sql.Tx }

const productionOrderColumns = `id, product_id, quantity, status, start_date, end_date`

func scanProductionOrder(s scanner) (*domain.ProductionOrder, error) {
	var (
		v   domain.ProductionOrder
		end domain.Date
	)
	if err := s.Scan(&v.ID, &v.ProductID, &v.Quantity, &v.Status, &v.StartDate, &end); err != nil {
		return nil, err
	}
	if !end.IsZero() {
		v.EndDate = &end
	}
	return &v, nil
}

func (r productionOrderRepo) Create(ctx context.Context, o *domain.ProductionOrder) error {
	err := r.q.QueryRowContext(ctx,
		`insert into production_orders(product_id, quantity, status, start_date, end_date) values($1,$2,$3,$4,$5) returning id`,
		o.ProductID, o.Quantity, o.Status, o.StartDate, o.EndDate,
	).Scan(&o.ID)
	return mapError(err)
}

func (r productionOrderRepo) Update(ctx context.Context, o *domain.ProductionOrder) error {
	return affected(r.q.ExecContext(ctx,
		`update production_orders set product_id=$2, quantity=$3, status=$4, start_date=$5, end_date=$6 where id=$1`,
		o.ID, o.ProductID, o.Quantity, o.Status, o.StartDate, o.EndDate))
}

func (r productionOrderRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from production_orders where id=$1`, id))
}

func (r productionOrderRepo) Find(ctx context.Context, id int64) (*domain.ProductionOrder, error) {
	return one(r.q.QueryRowContext(ctx,
		`select `+productionOrderColumns+` from production_orders where id=$1`, id), scanProductionOrder)
}

func (r productionOrderRepo) List(ctx context.Context) ([]*domain.ProductionOrder, error) {
	rows, err := r.q.QueryContext(ctx, `select `+productionOrderColumns+` from production_orders order by id`)
	return collect(rows, err, scanProductionOrder)
}

func (r productionOrderRepo) FindByStatus(ctx context.Context, status domain.ProductionOrderStatus) ([]*domain.ProductionOrder, error) {
	rows, err := r.q.QueryContext(ctx,
		`select `+productionOrderColumns+` from production_orders where status=$1 order by id`, status)
	return collect(rows, err, scanProductionOrder)
}

func (r productionOrderRepo) FindByProduct(ctx context.Context, productID int64) ([]*domain.ProductionOrder, error) {
	rows, err := r.q.QueryContext(ctx,
		`select `+productionOrderColumns+` from production_orders where product_id=$1 order by id`, productID)
	return collect(rows, err, scanProductionOrder)
}
