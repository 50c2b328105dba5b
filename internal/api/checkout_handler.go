package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dimabalawov/wallpaper-imp/internal/cart"
	"github.com/dimabalawov/wallpaper-imp/internal/checkout"
)

// OrderSubmitter is the slice of the checkout submitter the handler needs.
type OrderSubmitter interface {
	Submit(ctx context.Context, session string, req checkout.OrderRequest) (checkout.OrderResult, error)
}

type CheckoutHandler struct {
	stores       *cart.Manager
	submitter    OrderSubmitter
	deliveryCost float64
	timeout      time.Duration
}

func NewCheckoutHandler(stores *cart.Manager, submitter OrderSubmitter, deliveryCost float64, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		stores:       stores,
		submitter:    submitter,
		deliveryCost: deliveryCost,
		timeout:      timeout,
	}
}

// CreateOrderRequestDTO carries the visitor's checkout input. Items and
// totals are never taken from the client; they come from the session's cart.
type CreateOrderRequestDTO struct {
	Customer      checkout.Customer `json:"customer"`
	Comment       string            `json:"comment"`
	Delivery      struct {
		Method checkout.DeliveryMethod `json:"method"`
		Type   string                  `json:"type"`
		City   string                  `json:"city"`
	} `json:"delivery"`
	PaymentMethod checkout.PaymentMethod `json:"paymentMethod"`
}

func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session := sessionFromContext(r.Context())
	store, err := h.stores.Store(ctx, session)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "cart storage is unavailable")
		return
	}

	cost := h.deliveryCost
	if req.Delivery.Method == checkout.DeliverySelfPickup {
		cost = 0
	}

	itemsTotal := store.TotalPrice()
	order := checkout.OrderRequest{
		Customer: req.Customer,
		Comment:  req.Comment,
		Delivery: checkout.Delivery{
			Method: req.Delivery.Method,
			Type:   req.Delivery.Type,
			City:   req.Delivery.City,
			Cost:   cost,
		},
		PaymentMethod: req.PaymentMethod,
		Items:         store.Items(),
		Totals: checkout.Totals{
			ItemsTotal: itemsTotal,
			OrderTotal: itemsTotal + cost,
		},
	}

	result, err := h.submitter.Submit(ctx, session, order)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	// The order exists in the backend: only now is the cart cleared.
	store.Clear(r.Context())
	respondJSON(w, http.StatusCreated, result)
}

func (h *CheckoutHandler) respondSubmitError(w http.ResponseWriter, err error) {
	var backendErr *checkout.BackendError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrMissingProductIDs):
		respondError(w, http.StatusBadRequest, "missing_product_ids", err.Error())
	case errors.Is(err, checkout.ErrMissingCustomer),
		errors.Is(err, checkout.ErrMissingDelivery):
		respondError(w, http.StatusBadRequest, "missing_fields", err.Error())
	case errors.Is(err, checkout.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "submit_in_flight", err.Error())
	case errors.As(err, &backendErr):
		respondError(w, backendErr.Status, "order_failed", backendErr.Message)
	default:
		respondError(w, http.StatusBadGateway, "order_failed", "the order could not be created, please try again")
	}
}
