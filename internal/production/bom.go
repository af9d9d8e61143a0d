package production

import (
	"context"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
)

// BOMInput is one recipe line: quantity of a material per unit of product.
type BOMInput struct {
	ProductID  int64
	MaterialID int64
	Quantity   *int
}

func (in BOMInput) build() (domain.BOMEntry, error) {
	var v apperr.Violations
	v.Check(in.ProductID > 0, "productId", "is required")
	v.Check(in.MaterialID > 0, "materialId", "is required")
	switch {
	case in.Quantity == nil:
		v.Add("quantity", "is required")
	case *in.Quantity <= 0:
		v.Add("quantity", "must be positive")
	case *in.Quantity > domain.MaxCount:
		v.Add("quantity", domain.OverMaxCount)
	}
	if err := v.Err(); err != nil {
		return domain.BOMEntry{}, err
	}
	return domain.BOMEntry{ProductID: in.ProductID, MaterialID: in.MaterialID, QuantityPerUnit: *in.Quantity}, nil
}

func resolveEntryRefs(ctx context.Context, tx store.Tx, e *domain.BOMEntry) error {
	if _, err := tx.Products().Find(ctx, e.ProductID); err != nil {
		return store.NotFound(err, "product", e.ProductID)
	}
	if _, err := tx.RawMaterials().Find(ctx, e.MaterialID); err != nil {
		return store.NotFound(err, "raw material", e.MaterialID)
	}
	return nil
}

// CreateBOMEntry adds a line to a product's recipe. The same material may
// appear on several lines.
func (s *Service) CreateBOMEntry(ctx context.Context, in BOMInput) (*domain.BOMEntry, error) {
	e, err := in.build()
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := resolveEntryRefs(ctx, tx, &e); err != nil {
			return err
		}
		return tx.BOM().Create(ctx, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) UpdateBOMEntry(ctx context.Context, id int64, in BOMInput) (*domain.BOMEntry, error) {
	e, err := in.build()
	if err != nil {
		return nil, err
	}
	e.ID = id
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.BOM().Find(ctx, id); err != nil {
			return store.NotFound(err, "bill of materials entry", id)
		}
		if err := resolveEntryRefs(ctx, tx, &e); err != nil {
			return err
		}
		return store.NotFound(tx.BOM().Update(ctx, &e), "bill of materials entry", id)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) DeleteBOMEntry(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		return store.NotFound(tx.BOM().Delete(ctx, id), "bill of materials entry", id)
	})
}

func (s *Service) GetBOMEntry(ctx context.Context, id int64) (*domain.BOMEntry, error) {
	var out *domain.BOMEntry
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		e, err := tx.BOM().Find(ctx, id)
		out = e
		return store.NotFound(err, "bill of materials entry", id)
	})
	return out, err
}

func (s *Service) ListBOMEntries(ctx context.Context) ([]*domain.BOMEntry, error) {
	var out []*domain.BOMEntry
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.BOM().List(ctx)
		return err
	})
	return out, err
}

// BOMForProduct returns the recipe of an existing product.
func (s *Service) BOMForProduct(ctx context.Context, productID int64) ([]*domain.BOMEntry, error) {
	var out []*domain.BOMEntry
	err := s.store.WithReadTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Products().Find(ctx, productID); err != nil {
			return store.NotFound(err, "product", productID)
		}
		var err error
		out, err = tx.BOM().FindByProduct(ctx, productID)
		return err
	})
	return out, err
}
