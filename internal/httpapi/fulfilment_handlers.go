package httpapi

import (
	"net/http"
	"strings"

	"supplychainx.org/internal/fulfilment"
)

func (req customerRequest) input() fulfilment.CustomerInput {
	return fulfilment.CustomerInput{Name: req.Name, Address: req.Address, City: req.City}
}

// handleCustomers serves /api/customers, /api/customers/search and /api/customers/{id}.
func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.fulfilment.ListCustomers(ctx)
			writeList(w, r, list, err, newCustomerResponse)
		case http.MethodPost:
			var req customerRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			c, err := a.fulfilment.CreateCustomer(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "customer", c.ID, newCustomerResponse(c))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 1 && rest[0] == "search":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		list, err := a.fulfilment.SearchCustomers(ctx, r.URL.Query().Get("name"))
		writeList(w, r, list, err, newCustomerResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			c, err := a.fulfilment.GetCustomer(ctx, id)
			writeOne(w, r, c, err, newCustomerResponse)
		case http.MethodPut:
			var req customerRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			c, err := a.fulfilment.UpdateCustomer(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "customer", id, newCustomerResponse(c))
		case http.MethodDelete:
			a.deleted(w, r, "customer.delete", "customer", id, a.fulfilment.DeleteCustomer(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}

func (req orderRequest) input() fulfilment.OrderInput {
	return fulfilment.OrderInput{CustomerID: req.CustomerID, ProductID: req.ProductID, Quantity: req.Quantity, Status: req.Status}
}

// handleOrders serves /api/orders, /status/{status} and /{id}. DELETE cancels.
func (a *API) handleOrders(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.fulfilment.ListOrders(ctx)
			writeList(w, r, list, err, newOrderResponse)
		case http.MethodPost:
			var req orderRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			o, err := a.fulfilment.CreateOrder(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "order", o.ID, newOrderResponse(o))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 2 && rest[0] == "status":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		list, err := a.fulfilment.OrdersByStatus(ctx, rest[1])
		writeList(w, r, list, err, newOrderResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			o, err := a.fulfilment.GetOrder(ctx, id)
			writeOne(w, r, o, err, newOrderResponse)
		case http.MethodPut:
			var req orderRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			o, err := a.fulfilment.UpdateOrder(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "order", id, newOrderResponse(o))
		case http.MethodDelete:
			a.deleted(w, r, "order.cancel", "order", id, a.fulfilment.CancelOrder(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}

func (req deliveryRequest) input() fulfilment.DeliveryInput {
	return fulfilment.DeliveryInput{
		OrderID:      req.OrderID,
		Vehicle:      req.Vehicle,
		Driver:       req.Driver,
		Status:       req.Status,
		DeliveryDate: req.DeliveryDate,
		Cost:         req.Cost,
	}
}

// handleDeliveries serves /api/deliveries[?status=], /{id}, /{id}/status and
// /{id}/calculate-cost.
func (a *API) handleDeliveries(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
				list, err := a.fulfilment.DeliveriesByStatus(ctx, status)
				writeList(w, r, list, err, newDeliveryResponse)
				return
			}
			list, err := a.fulfilment.ListDeliveries(ctx)
			writeList(w, r, list, err, newDeliveryResponse)
		case http.MethodPost:
			var req deliveryRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			d, err := a.fulfilment.CreateDelivery(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "delivery", d.ID, newDeliveryResponse(d))
		default:
			writeError(w, r, methodNotSupported(r))
		}
		return
	}
	if len(rest) > 2 {
		writeError(w, r, notFound(r))
		return
	}
	id, err := parseID(rest[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(rest) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		d, err := a.fulfilment.GetDelivery(ctx, id)
		writeOne(w, r, d, err, newDeliveryResponse)
		return
	}

	switch rest[1] {
	case "status":
		if r.Method != http.MethodPut {
			writeError(w, r, methodNotSupported(r))
			return
		}
		var req deliveryStatusRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		d, err := a.fulfilment.UpdateDeliveryStatus(ctx, id, req.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		a.audit(ctx, "delivery.status", "delivery", id, map[string]any{"status": d.Status, "order_id": d.OrderID})
		writeJSON(w, http.StatusOK, newDeliveryResponse(d))
	case "calculate-cost":
		if r.Method != http.MethodPost {
			writeError(w, r, methodNotSupported(r))
			return
		}
		var req costRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		d, err := a.fulfilment.RecalculateCost(ctx, id, fulfilment.CostInput{
			BaseCost:  req.BaseCost,
			Distance:  req.Distance,
			RatePerKm: req.RatePerKm,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		a.audit(ctx, "delivery.cost", "delivery", id, map[string]any{"cost": d.Cost.String()})
		writeJSON(w, http.StatusOK, newDeliveryResponse(d))
	default:
		writeError(w, r, notFound(r))
	}
}
