package procurement

import (
	"context"
	"slices"
	"strings"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// MaterialInput carries the writable fields of a raw material. A nil
// SupplierIDs on update keeps the existing links.
type MaterialInput struct {
	Name        string
	Stock       *int
	StockMin    *int
	Unit        string
	SupplierIDs []int64
}

func (in MaterialInput) build() (domain.RawMaterial, error) {
	var v apperr.Violations
	v.Check(strings.TrimSpace(in.Name) != "", "name", "must not be blank")
	switch {
	case in.Stock == nil:
		v.Add("stock", "is required")
	case *in.Stock < 0:
		v.Add("stock", "must be positive or zero")
	case *in.Stock > domain.MaxCount:
		v.Add("stock", domain.OverMaxCount)
	}
	switch {
	case in.StockMin == nil:
		v.Add("stockMin", "is required")
	case *in.StockMin < 0:
		v.Add("stockMin", "must be positive or zero")
	case *in.StockMin > domain.MaxCount:
		v.Add("stockMin", domain.OverMaxCount)
	}
	v.Check(strings.TrimSpace(in.Unit) != "", "unit", "must not be blank")
	if err := v.Err(); err != nil {
		return domain.RawMaterial{}, err
	}
	return domain.RawMaterial{
		Name:     strings.TrimSpace(in.Name),
		Stock:    *in.Stock,
		StockMin: *in.StockMin,
		Unit:     strings.TrimSpace(in.Unit),
	}, nil
}

func resolveSuppliers(ctx context.Context, tx store.Tx, ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, err := tx.Suppliers().Find(ctx, id); err != nil {
			return nil, store.NotFound(err, "supplier", id)
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

// CreateMaterial stores a raw material and links it to its suppliers.
func (s *Service) CreateMaterial(ctx context.Context, in MaterialInput) (*domain.RawMaterial, error) {
	m, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		links, err := resolveSuppliers(ctx, tx, in.SupplierIDs)
		if err != nil {
			return err
		}
		if err := tx.RawMaterials().Create(ctx, &m); err != nil {
			return err
		}
		if len(links) > 0 {
			if err := tx.RawMaterials().SetSuppliers(ctx, m.ID, links); err != nil {
				return err
			}
		}
		m.SupplierIDs = links
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMaterial replaces the fields of a raw material.
func (s *Service) UpdateMaterial(ctx context.Context, id int64, in MaterialInput) (*domain.RawMaterial, error) {
	m, err := in.build()
	if err != nil {
		return nil, err
	}
	m.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.RawMaterials().Find(ctx, id)
		if err != nil {
			return store.NotFound(err, "raw material", id)
		}
		m.SupplierIDs = current.SupplierIDs
		if err := tx.RawMaterials().Update(ctx, &m); err != nil {
			return store.NotFound(err, "raw material", id)
		}
		if in.SupplierIDs == nil {
			return nil
		}
		links, err := resolveSuppliers(ctx, tx, in.SupplierIDs)
		if err != nil {
			return err
		}
		if err := tx.RawMaterials().SetSuppliers(ctx, id, links); err != nil {
			return err
		}
		m.SupplierIDs = links
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMaterial removes a raw material no supplier, supply-order line or
// bill of materials refers to.
func (s *Service) DeleteMaterial(ctx context.Context, id int64) error {
	const msg = "raw material is referenced by suppliers, supply orders or bills of materials"
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RawMaterials().Lock(ctx, id); err != nil {
			return store.NotFound(err, "raw material", id)
		}
		links, err := tx.RawMaterials().CountSupplierLinks(ctx, id)
		if err != nil {
			return err
		}
		lines, err := tx.SupplyOrders().CountLinesByMaterial(ctx, id)
		if err != nil {
			return err
		}
		recipes, err := tx.BOM().CountByMaterial(ctx, id)
		if err != nil {
			return err
		}
		if links+lines+recipes > 0 {
			return reject("raw_material.delete", msg)
		}
		err = tx.RawMaterials().Delete(ctx, id)
		return guarded("raw_material.delete", store.NotFound(err, "raw material", id), msg)
	})
}

// GetMaterial loads one raw material with its supplier links.
func (s *Service) GetMaterial(ctx context.Context, id int64) (*domain.RawMaterial, error) {
	var out *domain.RawMaterial
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		m, err := tx.RawMaterials().Find(ctx, id)
		out = m
		return store.NotFound(err, "raw material", id)
	})
	return out, err
}

// ListMaterials returns every raw material.
func (s *Service) ListMaterials(ctx context.Context) ([]*domain.RawMaterial, error) {
	var out []*domain.RawMaterial
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.RawMaterials().List(ctx)
		return err
	})
	return out, err
}

// CriticalMaterials returns the materials whose stock is below their minimum.
func (s *Service) CriticalMaterials(ctx context.Context) ([]*domain.RawMaterial, error) {
	var out []*domain.RawMaterial
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.RawMaterials().FindBelowMinStock(ctx)
		return err
	})
	return out, err
}
