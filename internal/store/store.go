// Package store declares the persistence gateway used by every workflow.
// Each service call runs inside exactly one transaction obtained from Store.
package store

import (
	"context"
	"errors"
	"time"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
)

var (
	ErrNotFound   = errors.New("store: not found")
	ErrConflict   = errors.New("store: unique constraint violated")
	ErrReferenced = errors.New("store: foreign key constraint violated")
	// ErrInvalid reports a value the schema refuses: out of a column's range
	// or failing a check constraint. It classifies as apperr.Validation.
	ErrInvalid = &apperr.Error{Kind: apperr.Validation, Message: "value out of range"}
)

// Store opens transactional units of work.
type Store interface {
	// WithTx runs fn in a read-write transaction. The transaction commits when
	// fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Tx) error) error
	// WithReadTx runs fn in a read-only transaction.
	WithReadTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Users() UserRepo
	RefreshTokens() RefreshTokenRepo
	Suppliers() SupplierRepo
	RawMaterials() RawMaterialRepo
	SupplyOrders() SupplyOrderRepo
	Products() ProductRepo
	BOM() BOMRepo
	ProductionOrders() ProductionOrderRepo
	Customers() CustomerRepo
	Orders() OrderRepo
	Deliveries() DeliveryRepo
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	Find(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
}

type RefreshTokenRepo interface {
	Create(ctx context.Context, tok *domain.RefreshToken) error
	FindByToken(ctx context.Context, id string) (*domain.RefreshToken, error)
	FindActive(ctx context.Context, id string) (*domain.RefreshToken, error)
	// Revoke marks a non-revoked token revoked and reports whether it did.
	Revoke(ctx context.Context, id string) (bool, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type SupplierRepo interface {
	Create(ctx context.Context, s *domain.Supplier) error
	Update(ctx context.Context, s *domain.Supplier) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.Supplier, error)
	// Lock acquires a row lock on the supplier for the rest of the transaction.
	Lock(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Supplier, error)
	SearchByName(ctx context.Context, fragment string) ([]*domain.Supplier, error)
}

type RawMaterialRepo interface {
	Create(ctx context.Context, m *domain.RawMaterial) error
	Update(ctx context.Context, m *domain.RawMaterial) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.RawMaterial, error)
	Lock(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.RawMaterial, error)
	FindBelowMinStock(ctx context.Context) ([]*domain.RawMaterial, error)
	// SetSuppliers replaces the supplier links of a material.
	SetSuppliers(ctx context.Context, materialID int64, supplierIDs []int64) error
	CountSupplierLinks(ctx context.Context, materialID int64) (int, error)
}

type SupplyOrderRepo interface {
	// Create inserts the order and its lines.
	Create(ctx context.Context, o *domain.SupplyOrder) error
	// Update rewrites the header and replaces the line set wholesale.
	Update(ctx context.Context, o *domain.SupplyOrder) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.SupplyOrder, error)
	List(ctx context.Context) ([]*domain.SupplyOrder, error)
	FindByStatus(ctx context.Context, status domain.SupplyOrderStatus) ([]*domain.SupplyOrder, error)
	CountBySupplierAndStatusIn(ctx context.Context, supplierID int64, statuses []domain.SupplyOrderStatus) (int, error)
	CountLinesByMaterial(ctx context.Context, materialID int64) (int, error)
}

type ProductRepo interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.Product, error)
	Lock(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Product, error)
	SearchByName(ctx context.Context, fragment string) ([]*domain.Product, error)
}

type BOMRepo interface {
	Create(ctx context.Context, e *domain.BOMEntry) error
	Update(ctx context.Context, e *domain.BOMEntry) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.BOMEntry, error)
	List(ctx context.Context) ([]*domain.BOMEntry, error)
	FindByProduct(ctx context.Context, productID int64) ([]*domain.BOMEntry, error)
	CountByMaterial(ctx context.Context, materialID int64) (int, error)
}

type ProductionOrderRepo interface {
	Create(ctx context.Context, o *domain.ProductionOrder) error
	Update(ctx context.Context, o *domain.ProductionOrder) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.ProductionOrder, error)
	List(ctx context.Context) ([]*domain.ProductionOrder, error)
	FindByStatus(ctx context.Context, status domain.ProductionOrderStatus) ([]*domain.ProductionOrder, error)
	FindByProduct(ctx context.Context, productID int64) ([]*domain.ProductionOrder, error)
}

type CustomerRepo interface {
	Create(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.Customer, error)
	Lock(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Customer, error)
	SearchByName(ctx context.Context, fragment string) ([]*domain.Customer, error)
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
	CountByProduct(ctx context.Context, productID int64) (int, error)
}

type DeliveryRepo interface {
	// Create fails with ErrConflict when the order already has a delivery.
	Create(ctx context.Context, d *domain.Delivery) error
	Update(ctx context.Context, d *domain.Delivery) error
	Find(ctx context.Context, id int64) (*domain.Delivery, error)
	List(ctx context.Context) ([]*domain.Delivery, error)
	FindByStatus(ctx context.Context, status domain.DeliveryStatus) ([]*domain.Delivery, error)
}
