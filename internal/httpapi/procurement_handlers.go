package httpapi

import (
	"net/http"

	"supplychainx.org/internal/procurement"
)

func (req supplierRequest) input() procurement.SupplierInput {
	return procurement.SupplierInput{Name: req.Name, Contact: req.Contact, Rating: req.Rating, LeadTime: req.LeadTime}
}

// handleSuppliers serves /api/suppliers, /api/suppliers/search and /api/suppliers/{id}.
func (a *API) handleSuppliers(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.procurement.ListSuppliers(ctx)
			writeList(w, r, list, err, newSupplierResponse)
		case http.MethodPost:
			var req supplierRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			s, err := a.procurement.CreateSupplier(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "supplier", s.ID, newSupplierResponse(s))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 1 && rest[0] == "search":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		list, err := a.procurement.SearchSuppliers(ctx, r.URL.Query().Get("name"))
		writeList(w, r, list, err, newSupplierResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			s, err := a.procurement.GetSupplier(ctx, id)
			writeOne(w, r, s, err, newSupplierResponse)
		case http.MethodPut:
			var req supplierRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			s, err := a.procurement.UpdateSupplier(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "supplier", id, newSupplierResponse(s))
		case http.MethodDelete:
			a.deleted(w, r, "supplier.delete", "supplier", id, a.procurement.DeleteSupplier(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}

func (req rawMaterialRequest) input() procurement.MaterialInput {
	return procurement.MaterialInput{
		Name:        req.Name,
		Stock:       req.Stock,
		StockMin:    req.StockMin,
		Unit:        req.Unit,
		SupplierIDs: req.SupplierIDs,
	}
}

// handleRawMaterials serves /api/raw-materials, /critical and /{id}.
func (a *API) handleRawMaterials(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.procurement.ListMaterials(ctx)
			writeList(w, r, list, err, newRawMaterialResponse)
		case http.MethodPost:
			var req rawMaterialRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			m, err := a.procurement.CreateMaterial(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "raw_material", m.ID, newRawMaterialResponse(m))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 1 && rest[0] == "critical":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		list, err := a.procurement.CriticalMaterials(ctx)
		writeList(w, r, list, err, newRawMaterialResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			m, err := a.procurement.GetMaterial(ctx, id)
			writeOne(w, r, m, err, newRawMaterialResponse)
		case http.MethodPut:
			var req rawMaterialRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			m, err := a.procurement.UpdateMaterial(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "raw_material", id, newRawMaterialResponse(m))
		case http.MethodDelete:
			a.deleted(w, r, "raw_material.delete", "raw_material", id, a.procurement.DeleteMaterial(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}

func (req supplyOrderRequest) input() procurement.SupplyOrderInput {
	lines := make([]procurement.LineInput, 0, len(req.Materials))
	for _, l := range req.Materials {
		lines = append(lines, procurement.LineInput{MaterialID: l.MaterialID, Quantity: l.Quantity})
	}
	return procurement.SupplyOrderInput{
		SupplierID: req.SupplierID,
		OrderDate:  req.OrderDate,
		Status:     req.Status,
		Lines:      lines,
	}
}

// handleSupplyOrders serves /api/supply-orders, /status/{status} and /{id}.
func (a *API) handleSupplyOrders(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.procurement.ListSupplyOrders(ctx)
			writeList(w, r, list, err, newSupplyOrderResponse)
		case http.MethodPost:
			var req supplyOrderRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			o, err := a.procurement.CreateSupplyOrder(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "supply_order", o.ID, newSupplyOrderResponse(o))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 2 && rest[0] == "status":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		list, err := a.procurement.SupplyOrdersByStatus(ctx, rest[1])
		writeList(w, r, list, err, newSupplyOrderResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			o, err := a.procurement.GetSupplyOrder(ctx, id)
			writeOne(w, r, o, err, newSupplyOrderResponse)
		case http.MethodPut:
			var req supplyOrderRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			o, err := a.procurement.UpdateSupplyOrder(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "supply_order", id, newSupplyOrderResponse(o))
		case http.MethodDelete:
			a.deleted(w, r, "supply_order.delete", "supply_order", id, a.procurement.DeleteSupplyOrder(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}
