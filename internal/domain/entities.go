package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryOverheadFactor is applied to the product value of an order when a
// delivery is created without an explicit cost.
var DeliveryOverheadFactor = decimal.RequireFromString("1.1")

// MaxCount bounds every stored quantity, stock level and duration. The
// columns backing them are 4-byte integers.
const MaxCount = math.MaxInt32

// OverMaxCount is the violation message for a value above MaxCount.
const OverMaxCount = "must not exceed 2147483647"

// CostPlaces is the scale of every persisted monetary amount.
const CostPlaces = 2

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
}

type Supplier struct {
	ID       int64
	Name     string
	Contact  string
	Rating   float64
	LeadTime int
}

type RawMaterial struct {
	ID          int64
	Name        string
	Stock       int
	StockMin    int
	Unit        string
	SupplierIDs []int64
}

// IsCritical reports whether stock has fallen below the minimum threshold.
func (m RawMaterial) IsCritical() bool { return m.Stock < m.StockMin }

type SupplyOrder struct {
	ID         int64
	SupplierID int64
	OrderDate  Date
	Status     SupplyOrderStatus
	Lines      []SupplyOrderLine
}

type SupplyOrderLine struct {
	ID         int64
	MaterialID int64
	Quantity   int
}

type Product struct {
	ID             int64
	Name           string
	ProductionTime int
	Cost           decimal.Decimal
	Stock          int
}

type BOMEntry struct {
	ID              int64
	ProductID       int64
	MaterialID      int64
	QuantityPerUnit int
}

type ProductionOrder struct {
	ID        int64
	ProductID int64
	Quantity  int
	Status    ProductionOrderStatus
	StartDate Date
	EndDate   *Date
}

type Customer struct {
	ID      int64
	Name    string
	Address string
	City    string
}

type Order struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	Quantity   int
	Status     OrderStatus
}

type Delivery struct {
	ID           int64
	OrderID      int64
	Vehicle      string
	Driver       string
	Status       DeliveryStatus
	DeliveryDate Date
	Cost         decimal.Decimal
}

// DefaultDeliveryCost is product.cost × quantity × DeliveryOverheadFactor.
func DefaultDeliveryCost(unitCost decimal.Decimal, quantity int) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(int64(quantity))).Mul(DeliveryOverheadFactor).Round(CostPlaces)
}

// RecalculatedDeliveryCost is baseCost + distance × ratePerKm.
func RecalculatedDeliveryCost(baseCost, distance, ratePerKm decimal.Decimal) decimal.Decimal {
	return baseCost.Add(distance.Mul(ratePerKm)).Round(CostPlaces)
}

// RefreshToken is the persisted half of a refresh credential. Only the hash
// of the secret part is stored.
type RefreshToken struct {
	ID        string
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

// Expired reports whether the token is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }
