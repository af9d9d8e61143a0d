package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"supplychainx.org/internal/audit"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/obs"
)

func mapAll[T any, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// audit records a mutating operation. Failures are logged, never surfaced.
func (a *API) audit(ctx context.Context, event, resource string, id int64, extra map[string]any) {
	fields := map[string]any{"resource": resource}
	if id > 0 {
		fields["id"] = id
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err := audit.LogEvent(ctx, event, fields); err != nil {
		obs.Logger().Warn("audit write failed", zap.String("event", event), zap.Error(err))
	}
}

// --- procurement ---

type supplierRequest struct {
	Name     string   `json:"name"`
	Contact  string   `json:"contact"`
	Rating   *float64 `json:"rating"`
	LeadTime *int     `json:"leadTime"`
}

type supplierResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Contact  string  `json:"contact"`
	Rating   float64 `json:"rating"`
	LeadTime int     `json:"leadTime"`
}

func newSupplierResponse(s *domain.Supplier) supplierResponse {
	return supplierResponse{ID: s.ID, Name: s.Name, Contact: s.Contact, Rating: s.Rating, LeadTime: s.LeadTime}
}

type rawMaterialRequest struct {
	Name        string  `json:"name"`
	Stock       *int    `json:"stock"`
	StockMin    *int    `json:"stockMin"`
	Unit        string  `json:"unit"`
	SupplierIDs []int64 `json:"supplierIds"`
}

type rawMaterialResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Stock       int     `json:"stock"`
	StockMin    int     `json:"stockMin"`
	Unit        string  `json:"unit"`
	SupplierIDs []int64 `json:"supplierIds"`
	IsCritical  bool    `json:"isCritical"`
}

func newRawMaterialResponse(m *domain.RawMaterial) rawMaterialResponse {
	ids := m.SupplierIDs
	if ids == nil {
		ids = []int64{}
	}
	return rawMaterialResponse{
		ID:          m.ID,
		Name:        m.Name,
		Stock:       m.Stock,
		StockMin:    m.StockMin,
		Unit:        m.Unit,
		SupplierIDs: ids,
		IsCritical:  m.IsCritical(),
	}
}

type supplyOrderLineDTO struct {
	ID         int64 `json:"id,omitempty"`
	MaterialID int64 `json:"materialId"`
	Quantity   int   `json:"quantity"`
}

type supplyOrderRequest struct {
	SupplierID int64                `json:"supplierId"`
	OrderDate  domain.Date          `json:"orderDate"`
	Status     string               `json:"status"`
	Materials  []supplyOrderLineDTO `json:"materials"`
}

type supplyOrderResponse struct {
	ID         int64                    `json:"id"`
	SupplierID int64                    `json:"supplierId"`
	OrderDate  domain.Date              `json:"orderDate"`
	Status     domain.SupplyOrderStatus `json:"status"`
	Materials  []supplyOrderLineDTO     `json:"materials"`
}

func newSupplyOrderResponse(o *domain.SupplyOrder) supplyOrderResponse {
	lines := make([]supplyOrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, supplyOrderLineDTO{ID: l.ID, MaterialID: l.MaterialID, Quantity: l.Quantity})
	}
	return supplyOrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		OrderDate:  o.OrderDate,
		Status:     o.Status,
		Materials:  lines,
	}
}

// --- production ---

type productRequest struct {
	Name           string           `json:"name"`
	ProductionTime *int             `json:"productionTime"`
	Cost           *decimal.Decimal `json:"cost"`
	Stock          *int             `json:"stock"`
}

type productResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	ProductionTime int             `json:"productionTime"`
	Cost           decimal.Decimal `json:"cost"`
	Stock          int             `json:"stock"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, ProductionTime: p.ProductionTime, Cost: p.Cost, Stock: p.Stock}
}

type bomRequest struct {
	ProductID  int64 `json:"productId"`
	MaterialID int64 `json:"materialId"`
	Quantity   *int  `json:"quantity"`
}

type bomResponse struct {
	ID         int64 `json:"id"`
	ProductID  int64 `json:"productId"`
	MaterialID int64 `json:"materialId"`
	Quantity   int   `json:"quantity"`
}

func newBOMResponse(e *domain.BOMEntry) bomResponse {
	return bomResponse{ID: e.ID, ProductID: e.ProductID, MaterialID: e.MaterialID, Quantity: e.QuantityPerUnit}
}

type productionOrderRequest struct {
	ProductID int64        `json:"productId"`
	Quantity  int          `json:"quantity"`
	Status    string       `json:"status"`
	StartDate domain.Date  `json:"startDate"`
	EndDate   *domain.Date `json:"endDate"`
}

type productionOrderResponse struct {
	ID        int64                        `json:"id"`
	ProductID int64                        `json:"productId"`
	Quantity  int                          `json:"quantity"`
	Status    domain.ProductionOrderStatus `json:"status"`
	StartDate domain.Date                  `json:"startDate"`
	EndDate   *domain.Date                 `json:"endDate"`
}

func newProductionOrderResponse(o *domain.ProductionOrder) productionOrderResponse {
	return productionOrderResponse{
		ID:        o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		Status:    o.Status,
		StartDate: o.StartDate,
		EndDate:   o.EndDate,
	}
}

// --- fulfilment ---

type customerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type customerResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

func newCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Address: c.Address, City: c.City}
}

type orderRequest struct {
	CustomerID int64  `json:"customerId"`
	ProductID  int64  `json:"productId"`
	Quantity   int    `json:"quantity"`
	Status     string `json:"status"`
}

type orderResponse struct {
	ID         int64              `json:"id"`
	CustomerID int64              `json:"customerId"`
	ProductID  int64              `json:"productId"`
	Quantity   int                `json:"quantity"`
	Status     domain.OrderStatus `json:"status"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{ID: o.ID, CustomerID: o.CustomerID, ProductID: o.ProductID, Quantity: o.Quantity, Status: o.Status}
}

type deliveryRequest struct {
	OrderID      int64            `json:"orderId"`
	Vehicle      string           `json:"vehicle"`
	Driver       string           `json:"driver"`
	Status       string           `json:"status"`
	DeliveryDate domain.Date      `json:"deliveryDate"`
	Cost         *decimal.Decimal `json:"cost"`
}

type deliveryStatusRequest struct {
	Status string `json:"status"`
}

type costRequest struct {
	BaseCost  *decimal.Decimal `json:"baseCost"`
	Distance  *decimal.Decimal `json:"distance"`
	RatePerKm *decimal.Decimal `json:"ratePerKm"`
}

type deliveryResponse struct {
	ID           int64                 `json:"id"`
	OrderID      int64                 `json:"orderId"`
	Vehicle      string                `json:"vehicle"`
	Driver       string                `json:"driver"`
	Status       domain.DeliveryStatus `json:"status"`
	DeliveryDate domain.Date           `json:"deliveryDate"`
	Cost         decimal.Decimal       `json:"cost"`
}

func newDeliveryResponse(d *domain.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:           d.ID,
		OrderID:      d.OrderID,
		Vehicle:      d.Vehicle,
		Driver:       d.Driver,
		Status:       d.Status,
		DeliveryDate: d.DeliveryDate,
		Cost:         d.Cost,
	}
}

func writeOne[T any, R any](w http.ResponseWriter, r *http.Request, v T, err error, conv func(T) R) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv(v))
}

func writeList[T any, R any](w http.ResponseWriter, r *http.Request, list []T, err error, conv func(T) R) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(list, conv))
}

// created audits a successful create and answers 201 with a Location header.
func (a *API) created(w http.ResponseWriter, r *http.Request, resource string, id int64, body any) {
	a.audit(r.Context(), resource+".create", resource, id, nil)
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, body)
}

// updated audits a successful update and answers 200.
func (a *API) updated(w http.ResponseWriter, r *http.Request, resource string, id int64, body any) {
	a.audit(r.Context(), resource+".update", resource, id, nil)
	writeJSON(w, http.StatusOK, body)
}

// deleted audits a successful delete or cancel and answers 204.
func (a *API) deleted(w http.ResponseWriter, r *http.Request, event, resource string, id int64, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.audit(r.Context(), event, resource, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
