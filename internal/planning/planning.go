// Package planning answers read-only production questions: whether current
// raw-material stock covers a run, and how long the run takes.
package planning

import (
	"context"
	"errors"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// MaterialNeed is one bill-of-materials line scaled to the requested quantity.
type MaterialNeed struct {
	MaterialID   int64  `json:"materialId"`
	MaterialName string `json:"materialName"`
	Required     int64  `json:"required"`
	Available    int    `json:"available"`
	OK           bool   `json:"ok"`
}

// Availability reports whether every need is covered. Entries for the same
// material are reported separately and are not summed.
type Availability struct {
	ProductID   int64          `json:"productId"`
	ProductName string         `json:"productName"`
	Quantity    int            `json:"quantity"`
	CanProduce  bool           `json:"canProduce"`
	Materials   []MaterialNeed `json:"materials"`
}

// ProductionTime is expressed in the product's unit, minutes.
type ProductionTime struct {
	ProductID           int64  `json:"productId"`
	ProductName         string `json:"productName"`
	Quantity            int    `json:"quantity"`
	UnitProductionTime  int    `json:"unitProductionTime"`
	TotalProductionTime int64  `json:"totalProductionTime"`
}

type Service struct {
	store store.Store
}

func NewService(st store.Store) (*Service, error) {
	if st == nil {
		return nil, errors.New("planning: store is required")
	}
	return &Service{store: st}, nil
}

// checkQuantity bounds quantity to the range of the stored columns, so the
// int64 products below cannot overflow.
func checkQuantity(quantity int) error {
	switch {
	case quantity <= 0:
		return apperr.Validationf("quantity: must be positive")
	case quantity > domain.MaxCount:
		return apperr.Validationf("quantity: must not exceed %d", domain.MaxCount)
	}
	return nil
}

// CheckAvailability compares each recipe line × quantity with current stock.
// Nothing is reserved or decremented.
func (s *Service) CheckAvailability(ctx context.Context, productID int64, quantity int) (*Availability, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	var out *Availability
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		p, err := tx.Products().Find(ctx, productID)
		if err != nil {
			return store.NotFound(err, "product", productID)
		}
		entries, err := tx.BOM().FindByProduct(ctx, productID)
		if err != nil {
			return err
		}
		res := &Availability{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    quantity,
			CanProduce:  true,
			Materials:   make([]MaterialNeed, 0, len(entries)),
		}
		materials := make(map[int64]*domain.RawMaterial, len(entries))
		for _, e := range entries {
			m, ok := materials[e.MaterialID]
			if !ok {
				m, err = tx.RawMaterials().Find(ctx, e.MaterialID)
				if err != nil {
					return store.NotFound(err, "raw material", e.MaterialID)
				}
				materials[e.MaterialID] = m
			}
			need := MaterialNeed{
				MaterialID:   m.ID,
				MaterialName: m.Name,
				Required:     int64(e.QuantityPerUnit) * int64(quantity),
				Available:    m.Stock,
			}
			need.OK = int64(need.Available) >= need.Required
			res.CanProduce = res.CanProduce && need.OK
			res.Materials = append(res.Materials, need)
		}
		out = res
		return nil
	})
	return out, err
}

// CalculateTime multiplies the product's unit production time by quantity.
func (s *Service) CalculateTime(ctx context.Context, productID int64, quantity int) (*ProductionTime, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	var out *ProductionTime
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		p, err := tx.Products().Find(ctx, productID)
		if err != nil {
			return store.NotFound(err, "product", productID)
		}
		out = &ProductionTime{
			ProductID:           p.ID,
			ProductName:         p.Name,
			Quantity:            quantity,
			UnitProductionTime:  p.ProductionTime,
			TotalProductionTime: int64(p.ProductionTime) * int64(quantity),
		}
		return nil
	})
	return out, err
}
