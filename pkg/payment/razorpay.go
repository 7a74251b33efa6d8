package payment

import (
	"context"
	"errors"
	"fmt"

	"resume-formatter/internal/config"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

var ErrMissingSignature = errors.New("missing webhook signature")

// Order is what the client needs to open the checkout.
type Order struct {
	ID       string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type paymentAPI interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Gateway talks to Razorpay. The SDK has no context support, so calls
// are abandoned (not cancelled) when ctx is done.
type Gateway struct {
	keyID         string
	webhookSecret string
	orders        orderAPI
	payments      paymentAPI
}

func NewGateway(cfg config.PaymentConfig) *Gateway {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Gateway{
		keyID:         cfg.KeyID,
		webhookSecret: cfg.WebhookSecret,
		orders:        client.Order,
		payments:      client.Payment,
	}
}

func (g *Gateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
	}
	if receipt != "" {
		data["receipt"] = receipt
	}
	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.orders.Create(data, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("create order: response has no id")
	}
	return &Order{ID: id, Amount: amount, Currency: currency, KeyID: g.keyID}, nil
}

// PaymentStatus returns the gateway status of a payment, for example
// "captured" or "authorized".
func (g *Gateway) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.payments.Fetch(paymentID, nil, nil)
	})
	if err != nil {
		return "", fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	status, _ := body["status"].(string)
	if status == "" {
		return "", fmt.Errorf("fetch payment %s: response has no status", paymentID)
	}
	return status, nil
}

// WebhookEnabled reports whether webhook bodies are signature checked.
func (g *Gateway) WebhookEnabled() bool { return g.webhookSecret != "" }

// VerifyWebhook checks the X-Razorpay-Signature header against body.
// With no secret configured every body is accepted.
func (g *Gateway) VerifyWebhook(body []byte, signature string) error {
	if !g.WebhookEnabled() {
		return nil
	}
	if signature == "" {
		return ErrMissingSignature
	}
	if !utils.VerifyWebhookSignature(string(body), signature, g.webhookSecret) {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}

func call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := fn()
		done <- result{body, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.body, r.err
	}
}
