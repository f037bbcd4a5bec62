package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrGateway marks any failed call to the payment provider. Callers decide
// whether to retry; this client never does.
var ErrGateway = errors.New("paystack gateway error")

type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewClient(httpClient *http.Client, baseURL, secretKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secretKey:  strings.TrimSpace(secretKey),
	}
}

type TransactionMetadata struct {
	UserID   int64   `json:"userId,string"`
	OrderID  int64   `json:"orderId,string"`
	Products []int64 `json:"products"`
}

type InitializeTransactionInput struct {
	AmountKobo  int64
	Email       string
	Reference   string
	CallbackURL string
	Metadata    TransactionMetadata
}

type InitializeTransactionResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type initializeRequest struct {
	Amount      int64               `json:"amount"`
	Email       string              `json:"email"`
	Reference   string              `json:"reference,omitempty"`
	CallbackURL string              `json:"callback_url"`
	Metadata    TransactionMetadata `json:"metadata"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (c *Client) InitializeTransaction(ctx context.Context, in InitializeTransactionInput) (InitializeTransactionResult, error) {
	if in.AmountKobo < 0 || strings.TrimSpace(in.Email) == "" {
		return InitializeTransactionResult{}, fmt.Errorf("invalid initialize transaction payload")
	}

	var resp initializeResponse
	err := c.post(ctx, http.MethodPost, "/transaction/initialize", initializeRequest{
		Amount:      in.AmountKobo,
		Email:       in.Email,
		Reference:   in.Reference,
		CallbackURL: in.CallbackURL,
		Metadata:    in.Metadata,
	}, &resp)
	if err != nil {
		return InitializeTransactionResult{}, err
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return InitializeTransactionResult{}, fmt.Errorf("%w: initialize transaction: %s", ErrGateway, resp.Message)
	}

	return InitializeTransactionResult{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
	}, nil
}

type productRequest struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
}

type productResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID          json.Number `json:"id"`
		ProductCode string      `json:"product_code"`
	} `json:"data"`
}

// CreateProduct registers a product on the provider side and returns the
// provider-assigned identifier.
func (c *Client) CreateProduct(ctx context.Context, name string, priceKobo int64, currency string) (string, error) {
	if strings.TrimSpace(name) == "" || priceKobo < 0 {
		return "", fmt.Errorf("invalid create product payload")
	}

	var resp productResponse
	err := c.post(ctx, http.MethodPost, "/product", productRequest{
		Name:     name,
		Price:    priceKobo,
		Currency: currency,
	}, &resp)
	if err != nil {
		return "", err
	}
	if !resp.Status {
		return "", fmt.Errorf("%w: create product: %s", ErrGateway, resp.Message)
	}

	providerID := resp.Data.ID.String()
	if providerID == "" || providerID == "0" {
		providerID = resp.Data.ProductCode
	}
	if providerID == "" {
		return "", fmt.Errorf("%w: create product: provider returned no id", ErrGateway)
	}

	return providerID, nil
}

func (c *Client) UpdateProduct(ctx context.Context, providerID, name string, priceKobo int64, currency string) error {
	if strings.TrimSpace(providerID) == "" {
		return fmt.Errorf("provider product id is required")
	}

	var resp productResponse
	err := c.post(ctx, http.MethodPut, "/product/"+providerID, productRequest{
		Name:     name,
		Price:    priceKobo,
		Currency: currency,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Status {
		return fmt.Errorf("%w: update product: %s", ErrGateway, resp.Message)
	}

	return nil
}

func (c *Client) post(ctx context.Context, method, path string, body, target any) error {
	if c.httpClient == nil {
		return fmt.Errorf("paystack http client is nil")
	}
	if c.baseURL == "" {
		return fmt.Errorf("paystack base url is empty")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal paystack request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrGateway, method, path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d", ErrGateway, method, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode %s %s response: %v", ErrGateway, method, path, err)
	}

	return nil
}
