package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kenogenyi/zikistorez/internal/domain/model"
	"github.com/kenogenyi/zikistorez/internal/infra/paystack"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
	"github.com/kenogenyi/zikistorez/internal/services/access"
)

var (
	ErrValidation    = errors.New("invalid checkout input")
	ErrPaymentInit   = errors.New("payment session could not be created")
	ErrOrderNotFound = errors.New("order not found")
)

type ProductStore interface {
	FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, userID int64, productIDs []int64) (model.Order, error)
	FindByID(ctx context.Context, orderID int64, scope pgrepo.OrderScope) (model.Order, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

type Gateway interface {
	InitializeTransaction(ctx context.Context, in paystack.InitializeTransactionInput) (paystack.InitializeTransactionResult, error)
}

type Service struct {
	products  ProductStore
	orders    OrderStore
	users     UserStore
	gateway   Gateway
	publicURL string
	newRef    func() string
}

func NewService(products ProductStore, orders OrderStore, users UserStore, gateway Gateway, publicURL string) *Service {
	return &Service{
		products:  products,
		orders:    orders,
		users:     users,
		gateway:   gateway,
		publicURL: strings.TrimRight(publicURL, "/"),
		newRef:    func() string { return uuid.NewString() },
	}
}

type Session struct {
	OrderID          int64
	AuthorizationURL string
	Reference        string
}

type OrderStatus struct {
	OrderID int64
	IsPaid  bool
}

// CreateSession builds a pending order from the priced subset of the
// requested products and opens a hosted payment page for it. Unpriced
// products are dropped without error. The order is created before the
// gateway call and is not rolled back when the gateway fails.
func (s *Service) CreateSession(ctx context.Context, caller access.Caller, productIDs []int64) (Session, error) {
	if !caller.IsAuthenticated() {
		return Session{}, ErrValidation
	}
	if len(productIDs) == 0 {
		return Session{}, ErrValidation
	}

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return Session{}, fmt.Errorf("load checkout products: %w", err)
	}

	var (
		pricedIDs []int64
		totalKobo int64
	)
	for _, product := range products {
		if product.PriceKobo == nil {
			continue
		}
		pricedIDs = append(pricedIDs, product.ID)
		totalKobo += *product.PriceKobo
	}

	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return Session{}, fmt.Errorf("load checkout user: %w", err)
	}

	order, err := s.orders.Create(ctx, caller.UserID, pricedIDs)
	if err != nil {
		return Session{}, fmt.Errorf("create order: %w", err)
	}

	result, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeTransactionInput{
		AmountKobo:  totalKobo,
		Email:       user.Email,
		Reference:   s.newRef(),
		CallbackURL: fmt.Sprintf("%s/thank-you?orderId=%d", s.publicURL, order.ID),
		Metadata: paystack.TransactionMetadata{
			UserID:   user.ID,
			OrderID:  order.ID,
			Products: pricedIDs,
		},
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrPaymentInit, err)
	}

	return Session{
		OrderID:          order.ID,
		AuthorizationURL: result.AuthorizationURL,
		Reference:        result.Reference,
	}, nil
}

// PollOrderStatus reports the paid flag without side effects; the flag only
// flips through webhook reconciliation.
func (s *Service) PollOrderStatus(ctx context.Context, caller access.Caller, orderID int64) (OrderStatus, error) {
	decision := access.OrdersRead(caller)
	if !decision.Allowed() {
		return OrderStatus{}, ErrOrderNotFound
	}

	scope := pgrepo.OrderScope{}
	if decision.OwnerScope() {
		scope.OwnerID = &caller.UserID
	}

	order, err := s.orders.FindByID(ctx, orderID, scope)
	if err != nil {
		if errors.Is(err, pgrepo.ErrOrderNotFound) {
			return OrderStatus{}, ErrOrderNotFound
		}
		return OrderStatus{}, fmt.Errorf("find order: %w", err)
	}

	return OrderStatus{OrderID: order.ID, IsPaid: order.IsPaid}, nil
}
