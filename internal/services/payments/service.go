package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kenogenyi/zikistorez/internal/domain/model"
	"github.com/kenogenyi/zikistorez/internal/infra/email"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
)

const eventChargeSuccess = "charge.success"

var (
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMalformedPayload   = errors.New("malformed webhook payload")
	ErrMissingMetadata    = errors.New("webhook metadata is missing required ids")
	ErrUserNotFound       = errors.New("webhook user not found")
	ErrOrderNotFound      = errors.New("webhook order not found")
	ErrNotificationFailed = errors.New("receipt notification failed")
)

type OrderStore interface {
	FindByID(ctx context.Context, orderID int64, scope pgrepo.OrderScope) (model.Order, error)
	MarkPaid(ctx context.Context, orderID int64) (model.Order, bool, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

type ProductStore interface {
	FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type Service struct {
	secret   []byte
	orders   OrderStore
	users    UserStore
	products ProductStore
	mailer   Mailer
	currency string
	now      func() time.Time
}

type Dependencies struct {
	WebhookSecret string
	Orders        OrderStore
	Users         UserStore
	Products      ProductStore
	Mailer        Mailer
	Currency      string
}

func NewService(deps Dependencies) *Service {
	currency := deps.Currency
	if strings.TrimSpace(currency) == "" {
		currency = "NGN"
	}
	return &Service{
		secret:   []byte(deps.WebhookSecret),
		orders:   deps.Orders,
		users:    deps.Users,
		products: deps.Products,
		mailer:   deps.Mailer,
		currency: currency,
		now:      time.Now,
	}
}

type Result struct {
	OrderID          int64
	UserID           int64
	Transitioned     bool
	AlreadyProcessed bool
	Ignored          bool
}

// flexID accepts both string and numeric id encodings; hosted checkout
// metadata round-trips through the payment page as strings.
type flexID struct {
	value int64
	set   bool
}

func (f *flexID) UnmarshalJSON(raw []byte) error {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("parse id %q: %w", s, err)
		}
		f.value = parsed
		f.set = true
		return nil
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	f.value = n
	f.set = true
	return nil
}

type eventEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		Metadata struct {
			UserID  flexID `json:"userId"`
			OrderID flexID `json:"orderId"`
		} `json:"metadata"`
	} `json:"data"`
}

// HandleEvent verifies and reconciles one raw webhook delivery. The paid
// transition happens at most once per order; only the delivery that wins the
// conditional update sends the receipt email.
func (s *Service) HandleEvent(ctx context.Context, rawBody []byte, signatureHeader string) (Result, error) {
	if s.orders == nil || s.users == nil {
		return Result{}, fmt.Errorf("payments dependencies are not configured")
	}

	if !s.verifySignature(rawBody, signatureHeader) {
		return Result{}, ErrInvalidSignature
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return Result{}, ErrMalformedPayload
	}

	meta := envelope.Data.Metadata
	if !meta.UserID.set || !meta.OrderID.set || meta.UserID.value <= 0 || meta.OrderID.value <= 0 {
		return Result{}, ErrMissingMetadata
	}

	if envelope.Event != eventChargeSuccess {
		return Result{Ignored: true}, nil
	}

	user, err := s.users.FindByID(ctx, meta.UserID.value)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Result{}, ErrUserNotFound
		}
		return Result{}, fmt.Errorf("find webhook user: %w", err)
	}

	if _, err := s.orders.FindByID(ctx, meta.OrderID.value, pgrepo.OrderScope{}); err != nil {
		if errors.Is(err, pgrepo.ErrOrderNotFound) {
			return Result{}, ErrOrderNotFound
		}
		return Result{}, fmt.Errorf("find webhook order: %w", err)
	}

	order, changed, err := s.orders.MarkPaid(ctx, meta.OrderID.value)
	if err != nil {
		return Result{}, fmt.Errorf("mark order paid: %w", err)
	}

	result := Result{
		OrderID:          order.ID,
		UserID:           user.ID,
		Transitioned:     changed,
		AlreadyProcessed: !changed,
	}
	if !changed {
		return result, nil
	}

	if err := s.sendReceipt(ctx, user, order); err != nil {
		// The paid flag stays set; redelivery will not retry the email.
		return result, fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	return result, nil
}

func (s *Service) verifySignature(rawBody []byte, signatureHeader string) bool {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if len(s.secret) == 0 || signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha512.New, s.secret)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signatureHeader)))
}

func (s *Service) sendReceipt(ctx context.Context, user model.User, order model.Order) error {
	if s.mailer == nil {
		return fmt.Errorf("mailer is not configured")
	}

	var receiptProducts []email.ReceiptProduct
	if s.products != nil && len(order.ProductIDs) > 0 {
		products, err := s.products.FindByIDs(ctx, order.ProductIDs)
		if err != nil {
			return fmt.Errorf("load receipt products: %w", err)
		}
		for _, p := range products {
			var price int64
			if p.PriceKobo != nil {
				price = *p.PriceKobo
			}
			receiptProducts = append(receiptProducts, email.ReceiptProduct{Name: p.Name, PriceKobo: price})
		}
	}

	body, err := email.RenderReceipt(email.ReceiptData{
		Email:    user.Email,
		OrderID:  order.ID,
		Date:     s.now().UTC(),
		Products: receiptProducts,
		Currency: s.currency,
	})
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	subject := fmt.Sprintf("Your receipt for order #%d", order.ID)
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	return nil
}
