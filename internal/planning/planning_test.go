package planning

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
	"supplychainx.org/internal/store/memory"
)

type seeded struct {
	svc     *Service
	product int64
	m1, m2  int64
}

func seed(t *testing.T) seeded {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	var out seeded
	err := st.WithTx(ctx, func(tx store.Tx) error {
		p := &domain.Product{Name: "Bench", ProductionTime: 12, Cost: decimal.NewFromInt(80), Stock: 0}
		if err := tx.Products().Create(ctx, p); err != nil {
			return err
		}
		m1 := &domain.RawMaterial{Name: "Oak plank", Stock: 100, StockMin: 10, Unit: "pcs"}
		m2 := &domain.RawMaterial{Name: "Screw box", Stock: 15, StockMin: 5, Unit: "box"}
		for _, m := range []*domain.RawMaterial{m1, m2} {
			if err := tx.RawMaterials().Create(ctx, m); err != nil {
				return err
			}
		}
		for _, e := range []*domain.BOMEntry{
			{ProductID: p.ID, MaterialID: m1.ID, QuantityPerUnit: 2},
			{ProductID: p.ID, MaterialID: m2.ID, QuantityPerUnit: 3},
		} {
			if err := tx.BOM().Create(ctx, e); err != nil {
				return err
			}
		}
		out.product, out.m1, out.m2 = p.ID, m1.ID, m2.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc, err := NewService(st)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	out.svc = svc
	return out
}

func TestCheckAvailability(t *testing.T) {
	s := seed(t)
	res, err := s.svc.CheckAvailability(context.Background(), s.product, 10)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if res.CanProduce {
		t.Fatalf("expected canProduce=false")
	}
	if len(res.Materials) != 2 {
		t.Fatalf("expected two lines, got %d", len(res.Materials))
	}
	first, second := res.Materials[0], res.Materials[1]
	if first.MaterialID != s.m1 || first.Required != 20 || first.Available != 100 || !first.OK {
		t.Fatalf("unexpected first line: %+v", first)
	}
	if second.MaterialID != s.m2 || second.Required != 30 || second.Available != 15 || second.OK {
		t.Fatalf("unexpected second line: %+v", second)
	}

	res, err = s.svc.CheckAvailability(context.Background(), s.product, 5)
	if err != nil || !res.CanProduce {
		t.Fatalf("5 units should be producible: %+v %v", res, err)
	}
}

func TestCalculateTime(t *testing.T) {
	s := seed(t)
	res, err := s.svc.CalculateTime(context.Background(), s.product, 7)
	if err != nil {
		t.Fatalf("CalculateTime: %v", err)
	}
	if res.UnitProductionTime != 12 || res.TotalProductionTime != 84 || res.ProductName != "Bench" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestPlanningErrors(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	if _, err := s.svc.CheckAvailability(ctx, 404, 1); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.svc.CalculateTime(ctx, 404, 1); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.svc.CalculateTime(ctx, s.product, 0); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestPlanningLargeQuantities(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	for _, qty := range []int{domain.MaxCount + 1, 1 << 40, 1 << 62} {
		if _, err := s.svc.CheckAvailability(ctx, s.product, qty); apperr.KindOf(err) != apperr.Validation {
			t.Fatalf("availability qty=%d: expected validation, got %v", qty, err)
		}
		if _, err := s.svc.CalculateTime(ctx, s.product, qty); apperr.KindOf(err) != apperr.Validation {
			t.Fatalf("time qty=%d: expected validation, got %v", qty, err)
		}
	}

	res, err := s.svc.CheckAvailability(ctx, s.product, domain.MaxCount)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if res.CanProduce {
		t.Fatalf("max quantity must not be producible: %+v", res)
	}
	if got, want := res.Materials[0].Required, int64(2)*domain.MaxCount; got != want {
		t.Fatalf("required=%d, want %d", got, want)
	}

	tm, err := s.svc.CalculateTime(ctx, s.product, domain.MaxCount)
	if err != nil {
		t.Fatalf("CalculateTime: %v", err)
	}
	if want := int64(12) * domain.MaxCount; tm.TotalProductionTime != want {
		t.Fatalf("total=%d, want %d", tm.TotalProductionTime, want)
	}
}
