package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sounddesk/backend/internal/config"
)

// Gateway event types
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventAccountUpdated    = "account.updated"
)

// Metadata keys carried on a checkout session for webhook correlation.
const (
	MetaRequestID = "request_id"
	MetaCreatorID = "creator_id"
)

// LineItem is one priced component of a checkout session.
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"` // cents
	Quantity   int64  `json:"quantity"`
}

// CheckoutSessionParams describes a hosted session to open at the gateway.
type CheckoutSessionParams struct {
	Currency   string            `json:"currency"`
	LineItems  []LineItem        `json:"line_items"`
	Metadata   map[string]string `json:"metadata"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
}

// CheckoutSession is the gateway's handle for a hosted payment flow.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutGateway abstracts the hosted payment provider. The concrete HTTP
// client lives behind it so payment logic stays testable without a gateway.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error)
}

// HTTPGateway talks to the payment provider's REST API.
type HTTPGateway struct {
	cfg        *config.GatewayConfig
	httpClient *http.Client
}

func NewHTTPGateway(cfg *config.GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateCheckoutSession opens a hosted checkout session and returns its id
// and redirect URL.
func (g *HTTPGateway) CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("malformed gateway response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, fmt.Errorf("gateway response missing session id or url")
	}
	return &session, nil
}

// VerifyGatewaySignature checks the HMAC-SHA256 signature the gateway sends
// with each webhook delivery ("sha256=<hex>" over the raw body).
func VerifyGatewaySignature(secret string, body []byte, signature string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(strings.TrimPrefix(signature, "sha256=")), []byte(expectedMAC))
}

// SignGatewayPayload produces the signature header value for a payload.
// Used by tests and the simulated checkout flow.
func SignGatewayPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// GatewayEvent is the webhook envelope: a type tag plus a raw data object.
type GatewayEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CheckoutCompletedData is the session object delivered on
// checkout.session.completed events.
type CheckoutCompletedData struct {
	SessionID     string            `json:"id"`
	AmountTotal   int64             `json:"amount_total"` // cents
	Currency      string            `json:"currency"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// AccountUpdatedData is the connected-account object delivered on
// account.updated events.
type AccountUpdatedData struct {
	AccountID        string `json:"id"`
	DetailsSubmitted bool   `json:"details_submitted"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
}

// ParseGatewayEvent decodes the webhook envelope.
func ParseGatewayEvent(body []byte) (*GatewayEvent, error) {
	var event GatewayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("event missing type")
	}
	return &event, nil
}
