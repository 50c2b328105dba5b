package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

const genericFailure = "the order could not be created"

type Config struct {
	SiteURL        string
	ConsumerKey    string
	ConsumerSecret string
	// Backend payment gateway identifiers for the two supported methods.
	PaymentMethodCard string
	PaymentMethodCOD  string
}

// Submitter turns cart contents plus checkout input into one order-creation
// call against the commerce backend and interprets the outcome. The backend
// call sits behind a circuit breaker; a duplicate submission for the same
// session is rejected while one is in flight.
type Submitter struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[OrderResult]
	inflight   sync.Map
}

func NewSubmitter(cfg Config, httpClient *http.Client) *Submitter {
	if cfg.PaymentMethodCard == "" {
		cfg.PaymentMethodCard = "bacs"
	}
	if cfg.PaymentMethodCOD == "" {
		cfg.PaymentMethodCOD = "cod"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Submitter{
		cfg:        cfg,
		httpClient: httpClient,
		breaker: gobreaker.NewCircuitBreaker[OrderResult](gobreaker.Settings{
			Name:    "woocommerce-orders",
			Timeout: 30 * time.Second,
		}),
	}
}

// Validate runs every local precondition. It is called by Submit before any
// network interaction; a failure here means no backend call was attempted.
func Validate(req OrderRequest) error {
	if req.Customer.FirstName == "" || req.Customer.LastName == "" ||
		req.Customer.Phone == "" || req.Customer.Email == "" {
		return ErrMissingCustomer
	}
	if req.Delivery.Method == "" || req.Delivery.Type == "" || req.Delivery.City == "" {
		return ErrMissingDelivery
	}
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range req.Items {
		if item.ProductDatabaseID == 0 {
			return ErrMissingProductIDs
		}
	}
	return nil
}

// Submit creates one order. On success the caller is responsible for
// clearing the cart; on any failure the cart is left untouched so the user
// can retry.
func (s *Submitter) Submit(ctx context.Context, session string, req OrderRequest) (OrderResult, error) {
	if _, busy := s.inflight.LoadOrStore(session, struct{}{}); busy {
		return OrderResult{}, ErrSubmitInFlight
	}
	defer s.inflight.Delete(session)

	if err := Validate(req); err != nil {
		return OrderResult{}, err
	}

	body, err := json.Marshal(s.buildPayload(req))
	if err != nil {
		return OrderResult{}, fmt.Errorf("marshal order payload failed: %w", err)
	}

	return s.breaker.Execute(func() (OrderResult, error) {
		return s.post(ctx, body)
	})
}

func (s *Submitter) post(ctx context.Context, body []byte) (OrderResult, error) {
	url := strings.TrimRight(s.cfg.SiteURL, "/") + "/wp-json/wc/v3/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return OrderResult{}, fmt.Errorf("build order request failed: %w", err)
	}
	httpReq.SetBasicAuth(s.cfg.ConsumerKey, s.cfg.ConsumerSecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return OrderResult{}, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return OrderResult{}, fmt.Errorf("read order response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return OrderResult{}, &BackendError{
			Status:  resp.StatusCode,
			Message: backendMessage(respBody),
		}
	}

	var created struct {
		ID       int64  `json:"id"`
		OrderKey string `json:"order_key"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return OrderResult{}, fmt.Errorf("decode order response failed: %w", err)
	}
	return OrderResult{OrderID: created.ID, OrderKey: created.OrderKey}, nil
}

// backendMessage digs the human-readable error out of a failure response,
// falling back to a generic message when the backend provided none.
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return genericFailure
}
