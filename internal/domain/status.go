package domain

import (
	"fmt"
	"strings"
)

type SupplyOrderStatus string

const (
	SupplyOrderPending    SupplyOrderStatus = "EN_ATTENTE"
	SupplyOrderInProgress SupplyOrderStatus = "EN_COURS"
	SupplyOrderReceived   SupplyOrderStatus = "RECUE"
)

// ActiveSupplyOrderStatuses are the statuses that block supplier deletion.
var ActiveSupplyOrderStatuses = []SupplyOrderStatus{SupplyOrderPending, SupplyOrderInProgress}

func ParseSupplyOrderStatus(s string) (SupplyOrderStatus, error) {
	return parseEnum(s, "supply order status", SupplyOrderPending, SupplyOrderInProgress, SupplyOrderReceived)
}

type ProductionOrderStatus string

const (
	ProductionPending    ProductionOrderStatus = "EN_ATTENTE"
	ProductionInProgress ProductionOrderStatus = "EN_PRODUCTION"
	ProductionFinished   ProductionOrderStatus = "TERMINE"
	ProductionBlocked    ProductionOrderStatus = "BLOQUE"
)

func ParseProductionOrderStatus(s string) (ProductionOrderStatus, error) {
	return parseEnum(s, "production order status", ProductionPending, ProductionInProgress, ProductionFinished, ProductionBlocked)
}

type OrderStatus string

const (
	OrderPreparing OrderStatus = "EN_PREPARATION"
	OrderShipping  OrderStatus = "EN_ROUTE"
	OrderDelivered OrderStatus = "LIVREE"
	OrderCancelled OrderStatus = "ANNULEE"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	return parseEnum(s, "order status", OrderPreparing, OrderShipping, OrderDelivered, OrderCancelled)
}

type DeliveryStatus string

const (
	DeliveryPlanned    DeliveryStatus = "PLANIFIEE"
	DeliveryInProgress DeliveryStatus = "EN_COURS"
	DeliveryDelivered  DeliveryStatus = "LIVREE"
	DeliveryCancelled  DeliveryStatus = "ANNULEE"
)

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	return parseEnum(s, "delivery status", DeliveryPlanned, DeliveryInProgress, DeliveryDelivered, DeliveryCancelled)
}

func parseEnum[T ~string](raw, what string, allowed ...T) (T, error) {
	v := T(strings.ToUpper(strings.TrimSpace(raw)))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", what, raw)
}
