package production

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/store"
	"supplychainx.org/internal/store/memory"
)

func ptr[T any](v T) *T { return &v }

var start = domain.NewDate(2024, time.May, 2)

func setup(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc, err := NewService(st)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, st
}

func mustProduct(t *testing.T, svc *Service, name string) *domain.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), ProductInput{
		Name: name, ProductionTime: ptr(30), Cost: ptr(decimal.RequireFromString("500")), Stock: ptr(100),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return p
}

func mustMaterial(t *testing.T, st store.Store, name string) int64 {
	t.Helper()
	m := &domain.RawMaterial{Name: name, Stock: 10, StockMin: 1, Unit: "kg"}
	if err := st.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.RawMaterials().Create(context.Background(), m)
	}); err != nil {
		t.Fatalf("create material: %v", err)
	}
	return m.ID
}

func TestProductValidation(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Name: "Chair", ProductionTime: ptr(0), Cost: ptr(decimal.Zero), Stock: ptr(-1),
	})
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation, got %v", err)
	}
	want := "productionTime: must be positive, cost: must be positive, stock: must be positive or zero"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestProductDeleteGuardedByProductionOrders(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	p := mustProduct(t, svc, "Table")

	po, err := svc.CreateProductionOrder(ctx, ProductionOrderInput{ProductID: p.ID, Quantity: 5, Status: "EN_ATTENTE", StartDate: start})
	if err != nil {
		t.Fatalf("CreateProductionOrder: %v", err)
	}
	if err := svc.DeleteProduct(ctx, p.ID); apperr.KindOf(err) != apperr.BusinessRule {
		t.Fatalf("expected business rule, got %v", err)
	}
	if err := svc.CancelProductionOrder(ctx, po.ID); err != nil {
		t.Fatalf("CancelProductionOrder: %v", err)
	}
	if err := svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := svc.GetProduct(ctx, p.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProductDeleteGuardedByCustomerOrders(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	p := mustProduct(t, svc, "Lamp")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		c := &domain.Customer{Name: "Client", Address: "1 rue", City: "Lyon"}
		if err := tx.Customers().Create(ctx, c); err != nil {
			return err
		}
		return tx.Orders().Create(ctx, &domain.Order{CustomerID: c.ID, ProductID: p.ID, Quantity: 1, Status: domain.OrderPreparing})
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	if err := svc.DeleteProduct(ctx, p.ID); apperr.KindOf(err) != apperr.BusinessRule {
		t.Fatalf("expected business rule, got %v", err)
	}
}

func TestCancelOnlyPendingProductionOrders(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	p := mustProduct(t, svc, "Desk")

	po, err := svc.CreateProductionOrder(ctx, ProductionOrderInput{ProductID: p.ID, Quantity: 2, Status: "EN_ATTENTE", StartDate: start})
	if err != nil {
		t.Fatalf("CreateProductionOrder: %v", err)
	}
	end := start.AddDate(0, 0, 3)
	updated, err := svc.UpdateProductionOrder(ctx, po.ID, ProductionOrderInput{
		ProductID: p.ID, Quantity: 4, Status: "EN_PRODUCTION", StartDate: start, EndDate: &domain.Date{Time: end},
	})
	if err != nil {
		t.Fatalf("UpdateProductionOrder: %v", err)
	}
	if updated.Quantity != 4 || updated.EndDate == nil {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if err := svc.CancelProductionOrder(ctx, po.ID); apperr.KindOf(err) != apperr.BusinessRule {
		t.Fatalf("expected business rule, got %v", err)
	}
	running, err := svc.ProductionOrdersByStatus(ctx, "en_production")
	if err != nil || len(running) != 1 {
		t.Fatalf("expected one running order: %v %v", running, err)
	}
	if err := svc.CancelProductionOrder(ctx, 404); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProductionOrderReferences(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	if _, err := svc.CreateProductionOrder(ctx, ProductionOrderInput{ProductID: 9, Quantity: 1, Status: "EN_ATTENTE", StartDate: start}); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	p := mustProduct(t, svc, "Shelf")
	if _, err := svc.CreateProductionOrder(ctx, ProductionOrderInput{ProductID: p.ID, Quantity: 1, Status: "PAUSED", StartDate: start}); apperr.KindOf(err) != apperr.BusinessRule {
		t.Fatalf("expected business rule, got %v", err)
	}
	early := domain.Date{Time: start.AddDate(0, 0, -1)}
	if _, err := svc.CreateProductionOrder(ctx, ProductionOrderInput{ProductID: p.ID, Quantity: 1, Status: "EN_ATTENTE", StartDate: start, EndDate: &early}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestBOMEntries(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	p := mustProduct(t, svc, "Bike")
	m1 := mustMaterial(t, st, "Frame")
	m2 := mustMaterial(t, st, "Wheel")

	for _, in := range []BOMInput{{p.ID, m1, ptr(1)}, {p.ID, m2, ptr(2)}, {p.ID, m2, ptr(1)}} {
		if _, err := svc.CreateBOMEntry(ctx, in); err != nil {
			t.Fatalf("CreateBOMEntry: %v", err)
		}
	}
	recipe, err := svc.BOMForProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("BOMForProduct: %v", err)
	}
	if len(recipe) != 3 {
		t.Fatalf("duplicate material lines must be kept, got %d entries", len(recipe))
	}

	if _, err := svc.UpdateBOMEntry(ctx, recipe[2].ID, BOMInput{p.ID, m2, ptr(4)}); err != nil {
		t.Fatalf("UpdateBOMEntry: %v", err)
	}
	e, err := svc.GetBOMEntry(ctx, recipe[2].ID)
	if err != nil || e.QuantityPerUnit != 4 {
		t.Fatalf("update not applied: %+v %v", e, err)
	}
	if err := svc.DeleteBOMEntry(ctx, recipe[0].ID); err != nil {
		t.Fatalf("DeleteBOMEntry: %v", err)
	}
	if _, err := svc.BOMForProduct(ctx, 999); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
	if _, err := svc.CreateBOMEntry(ctx, BOMInput{p.ID, 999, ptr(1)}); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found for unknown material, got %v", err)
	}
	if _, err := svc.CreateBOMEntry(ctx, BOMInput{p.ID, m1, ptr(0)}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestSearchProducts(t *testing.T) {
	svc, _ := setup(t)
	mustProduct(t, svc, "Office Chair")
	mustProduct(t, svc, "Garden Table")
	got, err := svc.SearchProducts(context.Background(), "chAIR")
	if err != nil || len(got) != 1 || got[0].Name != "Office Chair" {
		t.Fatalf("unexpected search result: %+v %v", got, err)
	}
}

func TestCountsBeyondColumnRange(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	big := domain.MaxCount + 1

	_, err := svc.CreateProduct(ctx, ProductInput{
		Name: "Shelf", ProductionTime: ptr(big), Cost: ptr(decimal.NewFromInt(10)), Stock: ptr(big),
	})
	if want := "productionTime: " + domain.OverMaxCount + ", stock: " + domain.OverMaxCount; apperr.KindOf(err) != apperr.Validation || err.Error() != want {
		t.Fatalf("expected product validation, got %v", err)
	}

	p := mustProduct(t, svc, "Stool")
	mat := mustMaterial(t, st, "Pine")
	if _, err := svc.CreateBOMEntry(ctx, BOMInput{ProductID: p.ID, MaterialID: mat, Quantity: ptr(big)}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected BOM quantity validation, got %v", err)
	}
	_, err = svc.CreateProductionOrder(ctx, ProductionOrderInput{ProductID: p.ID, Quantity: 1 << 40, Status: "EN_ATTENTE", StartDate: start})
	if apperr.KindOf(err) != apperr.Validation || err.Error() != "quantity: "+domain.OverMaxCount {
		t.Fatalf("expected production order validation, got %v", err)
	}
	if _, err := svc.CreateProductionOrder(ctx, ProductionOrderInput{ProductID: p.ID, Quantity: domain.MaxCount, Status: "EN_ATTENTE", StartDate: start}); err != nil {
		t.Fatalf("quantity at the bound should be accepted: %v", err)
	}
}
