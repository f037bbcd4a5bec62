package payments_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kenogenyi/zikistorez/internal/domain/model"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
	"github.com/kenogenyi/zikistorez/internal/services/payments"
)

const testWebhookSecret = "whsec_test"

func TestHandleEventMarksOrderPaidAndSendsReceipt(t *testing.T) {
	env := newPaymentsEnv(t)
	body := chargeSuccessBody(21, 7)

	result, err := env.svc.HandleEvent(context.Background(), body, sign(body))
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if !result.Transitioned {
		t.Fatalf("first delivery should transition the order")
	}
	if !env.orders.orders[7].IsPaid {
		t.Fatalf("order was not marked paid")
	}
	if env.mailer.sent != 1 {
		t.Fatalf("receipt emails sent = %d, want 1", env.mailer.sent)
	}
	if env.mailer.lastTo != "buyer@example.com" {
		t.Fatalf("receipt went to %q", env.mailer.lastTo)
	}
	if !strings.Contains(env.mailer.lastBody, "Icon pack") {
		t.Fatalf("receipt body should list product names")
	}
}

func TestHandleEventDuplicateDeliverySendsOneEmail(t *testing.T) {
	env := newPaymentsEnv(t)
	body := chargeSuccessBody(21, 7)

	if _, err := env.svc.HandleEvent(context.Background(), body, sign(body)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	result, err := env.svc.HandleEvent(context.Background(), body, sign(body))
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if result.Transitioned || !result.AlreadyProcessed {
		t.Fatalf("second delivery should be a no-op, got %+v", result)
	}
	if env.mailer.sent != 1 {
		t.Fatalf("duplicate delivery sent another receipt, total = %d", env.mailer.sent)
	}
}

func TestHandleEventRejectsBadSignature(t *testing.T) {
	env := newPaymentsEnv(t)
	body := chargeSuccessBody(21, 7)

	cases := map[string]string{
		"empty":    "",
		"garbage":  "deadbeef",
		"tampered": sign(append([]byte(nil), append(body, ' ')...)),
	}
	for name, sig := range cases {
		if _, err := env.svc.HandleEvent(context.Background(), body, sig); !errors.Is(err, payments.ErrInvalidSignature) {
			t.Fatalf("%s signature should be rejected, got err=%v", name, err)
		}
	}
	if env.orders.orders[7].IsPaid {
		t.Fatalf("rejected delivery must not flip the paid flag")
	}
}

func TestHandleEventMalformedBody(t *testing.T) {
	env := newPaymentsEnv(t)
	body := []byte(`{"event": "charge.success", "data": `)

	if _, err := env.svc.HandleEvent(context.Background(), body, sign(body)); !errors.Is(err, payments.ErrMalformedPayload) {
		t.Fatalf("truncated body should be malformed, got err=%v", err)
	}
}

func TestHandleEventMissingMetadata(t *testing.T) {
	env := newPaymentsEnv(t)

	bodies := map[string][]byte{
		"no metadata":  []byte(`{"event":"charge.success","data":{}}`),
		"no orderId":   []byte(`{"event":"charge.success","data":{"metadata":{"userId":"21"}}}`),
		"empty values": []byte(`{"event":"charge.success","data":{"metadata":{"userId":"","orderId":""}}}`),
	}
	for name, body := range bodies {
		if _, err := env.svc.HandleEvent(context.Background(), body, sign(body)); !errors.Is(err, payments.ErrMissingMetadata) {
			t.Fatalf("%s should fail with ErrMissingMetadata, got err=%v", name, err)
		}
	}
}

func TestHandleEventStringAndNumericIDs(t *testing.T) {
	env := newPaymentsEnv(t)
	body := []byte(`{"event":"charge.success","data":{"metadata":{"userId":21,"orderId":7}}}`)

	result, err := env.svc.HandleEvent(context.Background(), body, sign(body))
	if err != nil {
		t.Fatalf("numeric ids should parse, got err=%v", err)
	}
	if result.OrderID != 7 || result.UserID != 21 {
		t.Fatalf("result = %+v", result)
	}
}

func TestHandleEventIgnoresOtherEvents(t *testing.T) {
	env := newPaymentsEnv(t)
	body := []byte(`{"event":"transfer.success","data":{"metadata":{"userId":"21","orderId":"7"}}}`)

	result, err := env.svc.HandleEvent(context.Background(), body, sign(body))
	if err != nil {
		t.Fatalf("other events should ack, got err=%v", err)
	}
	if !result.Ignored {
		t.Fatalf("result should be marked ignored, got %+v", result)
	}
	if env.orders.orders[7].IsPaid || env.mailer.sent != 0 {
		t.Fatalf("ignored event must not have side effects")
	}
}

func TestHandleEventUnknownUserAndOrder(t *testing.T) {
	env := newPaymentsEnv(t)

	body := chargeSuccessBody(999, 7)
	if _, err := env.svc.HandleEvent(context.Background(), body, sign(body)); !errors.Is(err, payments.ErrUserNotFound) {
		t.Fatalf("unknown user should fail, got err=%v", err)
	}

	body = chargeSuccessBody(21, 999)
	if _, err := env.svc.HandleEvent(context.Background(), body, sign(body)); !errors.Is(err, payments.ErrOrderNotFound) {
		t.Fatalf("unknown order should fail, got err=%v", err)
	}
}

func TestHandleEventEmailFailureKeepsPaidState(t *testing.T) {
	env := newPaymentsEnv(t)
	env.mailer.fail = true
	body := chargeSuccessBody(21, 7)

	_, err := env.svc.HandleEvent(context.Background(), body, sign(body))
	if !errors.Is(err, payments.ErrNotificationFailed) {
		t.Fatalf("email failure should surface ErrNotificationFailed, got err=%v", err)
	}
	if !env.orders.orders[7].IsPaid {
		t.Fatalf("paid state must be kept when the email fails")
	}

	// Redelivery does not retry the email: the transition already happened.
	env.mailer.fail = false
	result, err := env.svc.HandleEvent(context.Background(), body, sign(body))
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if result.Transitioned || env.mailer.sent != 0 {
		t.Fatalf("redelivery after email failure should be a no-op, got %+v sent=%d", result, env.mailer.sent)
	}
}

type paymentsEnv struct {
	svc    *payments.Service
	orders *fakeOrders
	mailer *fakeMailer
}

func newPaymentsEnv(t *testing.T) *paymentsEnv {
	t.Helper()

	price := int64(250_00)
	orders := &fakeOrders{orders: map[int64]model.Order{
		7: {ID: 7, UserID: 21, ProductIDs: []int64{1}},
	}}
	users := &fakeUsers{users: map[int64]model.User{
		21: {ID: 21, Email: "buyer@example.com"},
	}}
	products := &fakeProducts{products: map[int64]model.Product{
		1: {ID: 1, Name: "Icon pack", PriceKobo: &price},
	}}
	mailer := &fakeMailer{}

	svc := payments.NewService(payments.Dependencies{
		WebhookSecret: testWebhookSecret,
		Orders:        orders,
		Users:         users,
		Products:      products,
		Mailer:        mailer,
		Currency:      "NGN",
	})

	return &paymentsEnv{svc: svc, orders: orders, mailer: mailer}
}

func chargeSuccessBody(userID, orderID int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"metadata":{"userId":"%d","orderId":"%d","products":[1]}}}`,
		userID, orderID,
	))
}

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeOrders struct {
	orders map[int64]model.Order
}

func (f *fakeOrders) FindByID(_ context.Context, orderID int64, scope pgrepo.OrderScope) (model.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return model.Order{}, pgrepo.ErrOrderNotFound
	}
	if scope.OwnerID != nil && order.UserID != *scope.OwnerID {
		return model.Order{}, pgrepo.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, orderID int64) (model.Order, bool, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return model.Order{}, false, pgrepo.ErrOrderNotFound
	}
	if order.IsPaid {
		return order, false, nil
	}
	order.IsPaid = true
	f.orders[orderID] = order
	return order, true, nil
}

type fakeUsers struct {
	users map[int64]model.User
}

func (f *fakeUsers) FindByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

type fakeMailer struct {
	fail     bool
	sent     int
	lastTo   string
	lastBody string
}

func (f *fakeMailer) Send(_ context.Context, to, _, htmlBody string) error {
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent++
	f.lastTo = to
	f.lastBody = htmlBody
	return nil
}

type fakeProducts struct {
	products map[int64]model.Product
}

func (f *fakeProducts) FindByIDs(_ context.Context, productIDs []int64) ([]model.Product, error) {
	var out []model.Product
	for _, id := range productIDs {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
