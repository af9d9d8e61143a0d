package httpapi

import (
	"net/http"

	"supplychainx.org/internal/production"
)

func (req productRequest) input() production.ProductInput {
	return production.ProductInput{Name: req.Name, ProductionTime: req.ProductionTime, Cost: req.Cost, Stock: req.Stock}
}

// handleProducts serves /api/products, /api/products/search and /api/products/{id}.
func (a *API) handleProducts(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.production.ListProducts(ctx)
			writeList(w, r, list, err, newProductResponse)
		case http.MethodPost:
			var req productRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			p, err := a.production.CreateProduct(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "product", p.ID, newProductResponse(p))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 1 && rest[0] == "search":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		list, err := a.production.SearchProducts(ctx, r.URL.Query().Get("name"))
		writeList(w, r, list, err, newProductResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			p, err := a.production.GetProduct(ctx, id)
			writeOne(w, r, p, err, newProductResponse)
		case http.MethodPut:
			var req productRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			p, err := a.production.UpdateProduct(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "product", id, newProductResponse(p))
		case http.MethodDelete:
			a.deleted(w, r, "product.delete", "product", id, a.production.DeleteProduct(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}

func (req bomRequest) input() production.BOMInput {
	return production.BOMInput{ProductID: req.ProductID, MaterialID: req.MaterialID, Quantity: req.Quantity}
}

// handleBOM serves /api/bom, /api/bom/product/{productId} and /api/bom/{id}.
func (a *API) handleBOM(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.production.ListBOMEntries(ctx)
			writeList(w, r, list, err, newBOMResponse)
		case http.MethodPost:
			var req bomRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			e, err := a.production.CreateBOMEntry(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "bom_entry", e.ID, newBOMResponse(e))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 2 && rest[0] == "product":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		productID, err := parseID(rest[1])
		if err != nil {
			writeError(w, r, err)
			return
		}
		list, err := a.production.BOMForProduct(ctx, productID)
		writeList(w, r, list, err, newBOMResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			e, err := a.production.GetBOMEntry(ctx, id)
			writeOne(w, r, e, err, newBOMResponse)
		case http.MethodPut:
			var req bomRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			e, err := a.production.UpdateBOMEntry(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "bom_entry", id, newBOMResponse(e))
		case http.MethodDelete:
			a.deleted(w, r, "bom_entry.delete", "bom_entry", id, a.production.DeleteBOMEntry(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}

func (req productionOrderRequest) input() production.ProductionOrderInput {
	return production.ProductionOrderInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Status:    req.Status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
}

// handleProductionOrders serves /api/production-orders, /status/{status} and /{id}.
// DELETE cancels.
func (a *API) handleProductionOrders(w http.ResponseWriter, r *http.Request, rest []string) {
	ctx := r.Context()
	switch {
	case len(rest) == 0:
		switch r.Method {
		case http.MethodGet:
			list, err := a.production.ListProductionOrders(ctx)
			writeList(w, r, list, err, newProductionOrderResponse)
		case http.MethodPost:
			var req productionOrderRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			o, err := a.production.CreateProductionOrder(ctx, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.created(w, r, "production_order", o.ID, newProductionOrderResponse(o))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	case len(rest) == 2 && rest[0] == "status":
		if r.Method != http.MethodGet {
			writeError(w, r, methodNotSupported(r))
			return
		}
		list, err := a.production.ProductionOrdersByStatus(ctx, rest[1])
		writeList(w, r, list, err, newProductionOrderResponse)
	case len(rest) == 1:
		id, err := parseID(rest[0])
		if err != nil {
			writeError(w, r, err)
			return
		}
		switch r.Method {
		case http.MethodGet:
			o, err := a.production.GetProductionOrder(ctx, id)
			writeOne(w, r, o, err, newProductionOrderResponse)
		case http.MethodPut:
			var req productionOrderRequest
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, r, err)
				return
			}
			o, err := a.production.UpdateProductionOrder(ctx, id, req.input())
			if err != nil {
				writeError(w, r, err)
				return
			}
			a.updated(w, r, "production_order", id, newProductionOrderResponse(o))
		case http.MethodDelete:
			a.deleted(w, r, "production_order.cancel", "production_order", id, a.production.CancelProductionOrder(ctx, id))
		default:
			writeError(w, r, methodNotSupported(r))
		}
	default:
		writeError(w, r, notFound(r))
	}
}
