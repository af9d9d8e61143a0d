package pg

import (
	"context"
	"database/sql"

	"supplychainx.org/internal/domain"
)

type customerRepo struct{ q *sql.Tx }

const customerColumns = `id, name, address, city`

func scanCustomer(s scanner) (*domain.Customer, error) {
	var v domain.Customer
	if err := s.Scan(&v.ID, &v.Name, &v.Address, &v.City); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r customerRepo) Create(ctx context.Context, c *domain.Customer) error {
	err := r.q.QueryRowContext(ctx,
		`insert into customers(name, address, city) values($1,$2,$3) returning id`,
		c.Name, c.Address, c.City,
	).Scan(&c.ID)
	return mapError(err)
}

func (r customerRepo) Update(ctx context.Context, c *domain.Customer) error {
	return affected(r.q.ExecContext(ctx,
		`update customers set name=$2, address=$3, city=$4 where id=$1`, c.ID, c.Name, c.Address, c.City))
}

func (r customerRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from customers where id=$1`, id))
}

func (r customerRepo) Find(ctx context.Context, id int64) (*domain.Customer, error) {
	return one(r.q.QueryRowContext(ctx, `select `+customerColumns+` from customers where id=$1`, id), scanCustomer)
}

func (r customerRepo) Lock(ctx context.Context, id int64) error {
	return lock(ctx, r.q, "customers", id)
}

func (r customerRepo) List(ctx context.Context) ([]*domain.Customer, error) {
	rows, err := r.q.QueryContext(ctx, `select `+customerColumns+` from customers order by id`)
	return collect(rows, err, scanCustomer)
}

func (r customerRepo) SearchByName(ctx context.Context, fragment string) ([]*domain.Customer, error) {
	rows, err := r.q.QueryContext(ctx,
		`select `+customerColumns+` from customers where name ilike $1 order by id`, likePattern(fragment))
	return collect(rows, err, scanCustomer)
}

type orderRepo struct{ q *sql.Tx }

const orderColumns = `id, customer_id, product_id, quantity, status`

func scanOrder(s scanner) (*domain.Order, error) {
	var v domain.Order
	if err := s.Scan(&v.ID, &v.CustomerID, &v.ProductID, &v.Quantity, &v.Status); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r orderRepo) Create(ctx context.Context, o *domain.Order) error {
	err := r.q.QueryRowContext(ctx,
		`insert into orders(customer_id, product_id, quantity, status) values($1,$2,$3,$4) returning id`,
		o.CustomerID, o.ProductID, o.Quantity, o.Status,
	).Scan(&o.ID)
	return mapError(err)
}

func (r orderRepo) Update(ctx context.Context, o *domain.Order) error {
	return affected(r.q.ExecContext(ctx,
		`update orders set customer_id=$2, product_id=$3, quantity=$4, status=$5 where id=$1`,
		o.ID, o.CustomerID, o.ProductID, o.Quantity, o.Status))
}

func (r orderRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.q.ExecContext(ctx, `delete from orders where id=$1`, id))
}

func (r orderRepo) Find(ctx context.Context, id int64) (*domain.Order, error) {
	return one(r.q.QueryRowContext(ctx, `select `+orderColumns+` from orders where id=$1`, id), scanOrder)
}

func (r orderRepo) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, `select `+orderColumns+` from orders order by id`)
	return collect(rows, err, scanOrder)
}

func (r orderRepo) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, `select `+orderColumns+` from orders where status=$1 order by id`, status)
	return collect(rows, err, scanOrder)
}

func (r orderRepo) FindByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, `select `+orderColumns+` from orders where customer_id=$1 order by id`, customerID)
	return collect(rows, err, scanOrder)
}

func (r orderRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	return count(ctx, r.q, `select count(*) from orders where product_id=$1`, productID)
}

type deliveryRepo struct{ q *sql.Tx }

const deliveryColumns = `id, order_id, vehicle, driver, status, delivery_date, cost`

func scanDelivery(s scanner) (*domain.Delivery, error) {
	var v domain.Delivery
	if err := s.Scan(&v.ID, &v.OrderID, &v.Vehicle, &v.Driver, &v.Status, &v.DeliveryDate, &v.Cost); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r deliveryRepo) Create(ctx context.Context, d *domain.Delivery) error {
	err := r.q.QueryRowContext(ctx,
		`insert into deliveries(order_id, vehicle, driver, status, delivery_date, cost) values($1,$2,$3,$4,$5,$6) returning id`,
		d.OrderID, d.Vehicle, d.Driver, d.Status, d.DeliveryDate, d.Cost,
	).Scan(&d.ID)
	return mapError(err)
}

func (r deliveryRepo) Update(ctx context.Context, d *domain.Delivery) error {
	return affected(r.q.ExecContext(ctx,
		`update deliveries set order_id=$2, vehicle=$3, driver=$4, status=$5, delivery_date=$6, cost=$7 where id=$1`,
		d.ID, d.OrderID, d.Vehicle, d.Driver, d.Status, d.DeliveryDate, d.Cost))
}

func (r deliveryRepo) Find(ctx context.Context, id int64) (*domain.Delivery, error) {
	return one(r.q.QueryRowContext(ctx, `select `+deliveryColumns+` from deliveries where id=$1`, id), scanDelivery)
}

func (r deliveryRepo) List(ctx context.Context) ([]*domain.Delivery, error) {
	rows, err := r.q.QueryContext(ctx, `select `+deliveryColumns+` from deliveries order by id`)
	return collect(rows, err, scanDelivery)
}

func (r deliveryRepo) FindByStatus(ctx context.Context, status domain.DeliveryStatus) ([]*domain.Delivery, error) {
	rows, err := r.q.QueryContext(ctx, `select `+deliveryColumns+` from deliveries where status=$1 order by id`, status)
	return collect(rows, err, scanDelivery)
}
