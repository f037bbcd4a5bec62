package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kenogenyi/zikistorez/internal/domain/enums"
	"github.com/kenogenyi/zikistorez/internal/domain/model"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
	"github.com/kenogenyi/zikistorez/internal/services/access"
)

var (
	ErrValidation      = errors.New("invalid product input")
	ErrForbidden       = errors.New("forbidden")
	ErrProductNotFound = errors.New("product not found")
)

type ProductStore interface {
	Create(ctx context.Context, in pgrepo.ProductCreate) (model.Product, error)
	FindByID(ctx context.Context, productID int64, scope pgrepo.ProductScope) (model.Product, error)
	ListApproved(ctx context.Context, limit, offset int) ([]model.Product, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Product, error)
	Update(ctx context.Context, productID int64, scope pgrepo.ProductScope, in pgrepo.ProductUpdate) (model.Product, error)
	Delete(ctx context.Context, productID int64, scope pgrepo.ProductScope) error
	SetProviderSync(ctx context.Context, productID int64, providerID string) error
	SetApproval(ctx context.Context, productID int64, status enums.ApprovalStatus) (model.Product, error)
}

type Gateway interface {
	CreateProduct(ctx context.Context, name string, priceKobo int64, currency string) (string, error)
	UpdateProduct(ctx context.Context, providerID, name string, priceKobo int64, currency string) error
}

type Service struct {
	products ProductStore
	gateway  Gateway
	currency string
}

func NewService(products ProductStore, gateway Gateway, currency string) *Service {
	if strings.TrimSpace(currency) == "" {
		currency = "NGN"
	}
	return &Service{
		products: products,
		gateway:  gateway,
		currency: currency,
	}
}

type CreateInput struct {
	Name          string
	Description   string
	Category      string
	PriceKobo     *int64
	ImageMediaIDs []int64
	ProductFileID *int64
}

type UpdateInput struct {
	Name          *string
	Description   *string
	Category      *string
	PriceKobo     *int64
	ImageMediaIDs []int64
	ProductFileID *int64
}

func (s *Service) Create(ctx context.Context, caller access.Caller, in CreateInput) (model.Product, error) {
	if !access.ProductsCreate(caller).Allowed() {
		return model.Product{}, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, ErrValidation
	}
	if err := validatePrice(in.PriceKobo); err != nil {
		return model.Product{}, err
	}

	product, err := s.products.Create(ctx, pgrepo.ProductCreate{
		UserID:        caller.UserID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Category:      in.Category,
		PriceKobo:     in.PriceKobo,
		ImageMediaIDs: in.ImageMediaIDs,
		ProductFileID: in.ProductFileID,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}

	if in.PriceKobo != nil {
		providerID, err := s.gateway.CreateProduct(ctx, product.Name, *in.PriceKobo, s.currency)
		if err != nil {
			// Keep the row; the next priced update retries the provider sync.
			return product, fmt.Errorf("sync product to gateway: %w", err)
		}
		if err := s.products.SetProviderSync(ctx, product.ID, providerID); err != nil {
			return product, fmt.Errorf("store provider product id: %w", err)
		}
		product.PaystackProductID = &providerID
	}

	return product, nil
}

func (s *Service) Get(ctx context.Context, caller access.Caller, productID int64) (model.Product, error) {
	decision := access.ProductsRead(caller)
	if !decision.Allowed() {
		return model.Product{}, ErrForbidden
	}

	scope := pgrepo.ProductScope{}
	if decision.OwnerScope() {
		scope.OwnerID = &caller.UserID
	}

	product, err := s.products.FindByID(ctx, productID, scope)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProductNotFound) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("find product: %w", err)
	}

	// Unapproved products are invisible on the storefront except to their
	// owner.
	if !caller.AdminSurface && !caller.IsAdmin() &&
		product.ApprovedForSale != enums.ApprovalStatusApproved && product.UserID != caller.UserID {
		return model.Product{}, ErrProductNotFound
	}

	return product, nil
}

func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]model.Product, error) {
	products, err := s.products.ListApproved(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list approved products: %w", err)
	}
	return products, nil
}

func (s *Service) ListMine(ctx context.Context, caller access.Caller) ([]model.Product, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrForbidden
	}
	products, err := s.products.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own products: %w", err)
	}
	return products, nil
}

func (s *Service) Update(ctx context.Context, caller access.Caller, productID int64, in UpdateInput) (model.Product, error) {
	decision := access.ProductsMutate(caller)
	if !decision.Allowed() {
		return model.Product{}, ErrForbidden
	}
	if in.PriceKobo != nil {
		if err := validatePrice(in.PriceKobo); err != nil {
			return model.Product{}, err
		}
	}

	scope := pgrepo.ProductScope{}
	if decision.OwnerScope() {
		scope.OwnerID = &caller.UserID
	}

	product, err := s.products.Update(ctx, productID, scope, pgrepo.ProductUpdate{
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		PriceKobo:     in.PriceKobo,
		ImageMediaIDs: in.ImageMediaIDs,
		ProductFileID: in.ProductFileID,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrProductNotFound) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	if product.PriceKobo != nil {
		if err := s.syncProvider(ctx, &product); err != nil {
			return product, err
		}
	}

	return product, nil
}

func (s *Service) Delete(ctx context.Context, caller access.Caller, productID int64) error {
	decision := access.ProductsMutate(caller)
	if !decision.Allowed() {
		return ErrForbidden
	}

	scope := pgrepo.ProductScope{}
	if decision.OwnerScope() {
		scope.OwnerID = &caller.UserID
	}

	if err := s.products.Delete(ctx, productID, scope); err != nil {
		if errors.Is(err, pgrepo.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *Service) SetApproval(ctx context.Context, caller access.Caller, productID int64, status enums.ApprovalStatus) (model.Product, error) {
	if !access.ProductsApprove(caller).Allowed() {
		return model.Product{}, ErrForbidden
	}
	if !status.Valid() {
		return model.Product{}, ErrValidation
	}

	product, err := s.products.SetApproval(ctx, productID, status)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProductNotFound) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("set product approval: %w", err)
	}
	return product, nil
}

func (s *Service) syncProvider(ctx context.Context, product *model.Product) error {
	if product.PaystackProductID != nil {
		if err := s.gateway.UpdateProduct(ctx, *product.PaystackProductID, product.Name, *product.PriceKobo, s.currency); err != nil {
			return fmt.Errorf("sync product to gateway: %w", err)
		}
		return nil
	}

	providerID, err := s.gateway.CreateProduct(ctx, product.Name, *product.PriceKobo, s.currency)
	if err != nil {
		return fmt.Errorf("sync product to gateway: %w", err)
	}
	if err := s.products.SetProviderSync(ctx, product.ID, providerID); err != nil {
		return fmt.Errorf("store provider product id: %w", err)
	}
	product.PaystackProductID = &providerID
	return nil
}

func validatePrice(priceKobo *int64) error {
	if priceKobo == nil {
		return nil
	}
	if *priceKobo < 0 || *priceKobo > model.MaxPriceKobo {
		return ErrValidation
	}
	return nil
}
