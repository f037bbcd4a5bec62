package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kenogenyi/zikistorez/internal/domain/enums"
	"github.com/kenogenyi/zikistorez/internal/domain/model"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
	"github.com/kenogenyi/zikistorez/internal/services/access"
	"github.com/kenogenyi/zikistorez/internal/services/catalog"
)

func TestCreateSyncsPricedProduct(t *testing.T) {
	store := newFakeProductStore()
	gateway := &fakeGateway{}
	svc := catalog.NewService(store, gateway, "NGN")

	seller := access.Caller{UserID: 10, Role: enums.RoleStandard, AdminSurface: true}
	price := int64(250_00)
	product, err := svc.Create(context.Background(), seller, catalog.CreateInput{
		Name:      "Icon pack",
		Category:  "ui_kits",
		PriceKobo: &price,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if product.ApprovedForSale != enums.ApprovalStatusPending {
		t.Fatalf("new product should be pending, got %q", product.ApprovedForSale)
	}
	if product.PaystackProductID == nil || *product.PaystackProductID != "PROD_1" {
		t.Fatalf("provider id was not stored, got %v", product.PaystackProductID)
	}
	if gateway.created != 1 {
		t.Fatalf("gateway create calls = %d, want 1", gateway.created)
	}
}

func TestCreateUnpricedSkipsGateway(t *testing.T) {
	store := newFakeProductStore()
	gateway := &fakeGateway{}
	svc := catalog.NewService(store, gateway, "NGN")

	seller := access.Caller{UserID: 10, Role: enums.RoleStandard, AdminSurface: true}
	product, err := svc.Create(context.Background(), seller, catalog.CreateInput{Name: "Draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.PaystackProductID != nil {
		t.Fatalf("unpriced product must not get a provider id")
	}
	if gateway.created != 0 {
		t.Fatalf("gateway should not be called for unpriced products")
	}
}

func TestCreateRejectsPriceOutOfRange(t *testing.T) {
	svc := catalog.NewService(newFakeProductStore(), &fakeGateway{}, "NGN")
	seller := access.Caller{UserID: 10, Role: enums.RoleStandard, AdminSurface: true}

	for _, price := range []int64{-1, model.MaxPriceKobo + 1} {
		p := price
		if _, err := svc.Create(context.Background(), seller, catalog.CreateInput{Name: "X", PriceKobo: &p}); !errors.Is(err, catalog.ErrValidation) {
			t.Fatalf("price %d should fail validation, got err=%v", price, err)
		}
	}
}

func TestUpdateUsesProviderUpdateWhenSynced(t *testing.T) {
	store := newFakeProductStore()
	gateway := &fakeGateway{}
	svc := catalog.NewService(store, gateway, "NGN")

	seller := access.Caller{UserID: 10, Role: enums.RoleStandard, AdminSurface: true}
	price := int64(100_00)
	created, err := svc.Create(context.Background(), seller, catalog.CreateInput{Name: "Kit", PriceKobo: &price})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newPrice := int64(150_00)
	updated, err := svc.Update(context.Background(), seller, created.ID, catalog.UpdateInput{PriceKobo: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if gateway.updated != 1 {
		t.Fatalf("gateway update calls = %d, want 1", gateway.updated)
	}
	if updated.PriceKobo == nil || *updated.PriceKobo != newPrice {
		t.Fatalf("price was not updated")
	}
}

func TestUpdateScopedToOwner(t *testing.T) {
	store := newFakeProductStore()
	svc := catalog.NewService(store, &fakeGateway{}, "NGN")

	owner := access.Caller{UserID: 10, Role: enums.RoleStandard, AdminSurface: true}
	created, err := svc.Create(context.Background(), owner, catalog.CreateInput{Name: "Kit"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := access.Caller{UserID: 11, Role: enums.RoleStandard, AdminSurface: true}
	name := "Hijacked"
	if _, err := svc.Update(context.Background(), other, created.ID, catalog.UpdateInput{Name: &name}); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("foreign update should report not found, got err=%v", err)
	}
}

func TestSetApprovalAdminOnly(t *testing.T) {
	store := newFakeProductStore()
	svc := catalog.NewService(store, &fakeGateway{}, "NGN")

	owner := access.Caller{UserID: 10, Role: enums.RoleStandard, AdminSurface: true}
	created, err := svc.Create(context.Background(), owner, catalog.CreateInput{Name: "Kit"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SetApproval(context.Background(), owner, created.ID, enums.ApprovalStatusApproved); !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("seller approval should be forbidden, got err=%v", err)
	}

	admin := access.Caller{UserID: 1, Role: enums.RoleAdmin, AdminSurface: true}
	approved, err := svc.SetApproval(context.Background(), admin, created.ID, enums.ApprovalStatusApproved)
	if err != nil {
		t.Fatalf("admin approval: %v", err)
	}
	if approved.ApprovedForSale != enums.ApprovalStatusApproved {
		t.Fatalf("status = %q, want approved", approved.ApprovedForSale)
	}
}

func TestGetHidesUnapprovedFromStorefront(t *testing.T) {
	store := newFakeProductStore()
	svc := catalog.NewService(store, &fakeGateway{}, "NGN")

	owner := access.Caller{UserID: 10, Role: enums.RoleStandard, AdminSurface: true}
	created, err := svc.Create(context.Background(), owner, catalog.CreateInput{Name: "Kit"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	shopper := access.Caller{UserID: 42, Role: enums.RoleStandard}
	if _, err := svc.Get(context.Background(), shopper, created.ID); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("pending product should be hidden on the storefront, got err=%v", err)
	}

	admin := access.Caller{UserID: 1, Role: enums.RoleAdmin}
	if _, err := svc.SetApproval(context.Background(), admin, created.ID, enums.ApprovalStatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Get(context.Background(), shopper, created.ID); err != nil {
		t.Fatalf("approved product should be visible, got err=%v", err)
	}
}

type fakeGateway struct {
	created int
	updated int
	fail    bool
}

func (g *fakeGateway) CreateProduct(_ context.Context, _ string, _ int64, _ string) (string, error) {
	if g.fail {
		return "", errors.New("gateway down")
	}
	g.created++
	return fmt.Sprintf("PROD_%d", g.created), nil
}

func (g *fakeGateway) UpdateProduct(_ context.Context, _, _ string, _ int64, _ string) error {
	if g.fail {
		return errors.New("gateway down")
	}
	g.updated++
	return nil
}

type fakeProductStore struct {
	nextID   int64
	products map[int64]model.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{nextID: 1, products: make(map[int64]model.Product)}
}

func (f *fakeProductStore) Create(_ context.Context, in pgrepo.ProductCreate) (model.Product, error) {
	product := model.Product{
		ID:              f.nextID,
		UserID:          in.UserID,
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		PriceKobo:       in.PriceKobo,
		ApprovedForSale: enums.ApprovalStatusPending,
		ImageMediaIDs:   in.ImageMediaIDs,
		ProductFileID:   in.ProductFileID,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	f.nextID++
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductStore) FindByID(_ context.Context, productID int64, scope pgrepo.ProductScope) (model.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return model.Product{}, pgrepo.ErrProductNotFound
	}
	if scope.OwnerID != nil && product.UserID != *scope.OwnerID {
		return model.Product{}, pgrepo.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeProductStore) ListApproved(_ context.Context, _, _ int) ([]model.Product, error) {
	var out []model.Product
	for _, p := range f.products {
		if p.ApprovedForSale == enums.ApprovalStatusApproved {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) ListByOwner(_ context.Context, ownerID int64) ([]model.Product, error) {
	var out []model.Product
	for _, p := range f.products {
		if p.UserID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) Update(_ context.Context, productID int64, scope pgrepo.ProductScope, in pgrepo.ProductUpdate) (model.Product, error) {
	product, err := f.FindByID(context.Background(), productID, scope)
	if err != nil {
		return model.Product{}, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.PriceKobo != nil {
		product.PriceKobo = in.PriceKobo
	}
	if in.ImageMediaIDs != nil {
		product.ImageMediaIDs = in.ImageMediaIDs
	}
	if in.ProductFileID != nil {
		product.ProductFileID = in.ProductFileID
	}
	product.UpdatedAt = time.Now().UTC()
	f.products[productID] = product
	return product, nil
}

func (f *fakeProductStore) Delete(_ context.Context, productID int64, scope pgrepo.ProductScope) error {
	if _, err := f.FindByID(context.Background(), productID, scope); err != nil {
		return err
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeProductStore) SetProviderSync(_ context.Context, productID int64, providerID string) error {
	product, ok := f.products[productID]
	if !ok {
		return pgrepo.ErrProductNotFound
	}
	product.PaystackProductID = &providerID
	f.products[productID] = product
	return nil
}

func (f *fakeProductStore) SetApproval(_ context.Context, productID int64, status enums.ApprovalStatus) (model.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return model.Product{}, pgrepo.ErrProductNotFound
	}
	product.ApprovedForSale = status
	f.products[productID] = product
	return product, nil
}
