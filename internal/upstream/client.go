package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront_system/internal/domain"

	"github.com/sirupsen/logrus"
)

// Client sends one fulfillment request to the third-party provider.
// Implementations must bound the call with a timeout; the saga treats any
// error, including a timeout, as a failure and refunds the debit. Retry
// policy, if any, lives outside this client.
type Client interface {
	Dispatch(ctx context.Context, req Request) (*Result, error)
}

// HTTPClient is the production Client speaking JSON to the provider API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout}, // Bounds every dispatch
	}
}

// wire format of a dispatch request
type dispatchBody struct {
	ProductID string `json:"product_id"` // Provider's product id
	Reference string `json:"reference"`  // Our correlation id
	Quantity  int    `json:"quantity"`
	PlayerUID string `json:"player_uid,omitempty"` // game-topup only
	Phone     string `json:"phone,omitempty"`      // mobile-topup only
}

// wire format of a dispatch response
type dispatchReply struct {
	Reference string `json:"reference"`
	Code      string `json:"code,omitempty"` // instant-code only
	Message   string `json:"message,omitempty"`
}

// Dispatch posts the request to the type-specific provider endpoint and
// returns the provider's reference. All variants are handled here; adding
// a variant without a case below is a programming error surfaced at runtime.
func (h *HTTPClient) Dispatch(ctx context.Context, req Request) (*Result, error) {
	var path string
	var body dispatchBody
	switch r := req.(type) {
	case InstantCodeRequest:
		path = "/fulfill/code"
		body = dispatchBody{ProductID: r.UpstreamProductID, Reference: r.Reference, Quantity: r.Quantity}
	case PreorderCodeRequest:
		path = "/fulfill/preorder"
		body = dispatchBody{ProductID: r.UpstreamProductID, Reference: r.Reference, Quantity: r.Quantity}
	case GameTopupRequest:
		path = "/fulfill/game"
		body = dispatchBody{ProductID: r.UpstreamProductID, Reference: r.Reference, Quantity: r.Quantity, PlayerUID: r.PlayerUID}
	case MobileTopupRequest:
		path = "/fulfill/mobile"
		body = dispatchBody{ProductID: r.UpstreamProductID, Reference: r.Reference, Quantity: r.Quantity, Phone: r.PhoneNumber}
	case CashcardRequest:
		path = "/fulfill/cashcard"
		body = dispatchBody{ProductID: r.UpstreamProductID, Reference: r.Reference, Quantity: r.Quantity}
	case GenericRequest:
		path = "/fulfill/generic"
		body = dispatchBody{ProductID: r.UpstreamProductID, Reference: r.Reference, Quantity: r.Quantity}
	default:
		return nil, fmt.Errorf("%w: unknown request variant %T", domain.ErrUpstream, req)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrUpstream, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", h.apiKey)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		// Timeouts land here; the saga compensates
		logrus.WithFields(logrus.Fields{
			"reference": body.Reference,
			"path":      path,
			"error":     err.Error(),
		}).Error("Upstream dispatch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithFields(logrus.Fields{
			"reference": body.Reference,
			"path":      path,
			"status":    resp.StatusCode,
		}).Error("Upstream rejected dispatch")
		return nil, fmt.Errorf("%w: provider returned status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var reply dispatchReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	// Providers that do not echo the reference keep ours
	if reply.Reference == "" {
		reply.Reference = body.Reference
	}
	return &Result{Reference: reply.Reference, Code: reply.Code}, nil
}
