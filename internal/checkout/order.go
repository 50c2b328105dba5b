package checkout

import (
	"github.com/dimabalawov/wallpaper-imp/internal/cart"
)

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash-on-delivery"
)

type DeliveryMethod string

const (
	DeliveryNovaPoshta DeliveryMethod = "nova-poshta"
	DeliveryUkrposhta  DeliveryMethod = "ukrposhta"
	DeliverySelfPickup DeliveryMethod = "self-pickup"
)

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type Delivery struct {
	Method DeliveryMethod `json:"method"`
	Type   string         `json:"type"`
	City   string         `json:"city"`
	Cost   float64        `json:"cost"`
}

type Totals struct {
	ItemsTotal float64 `json:"itemsTotal"`
	OrderTotal float64 `json:"orderTotal"`
}

// OrderRequest is assembled fresh per submission from the cart contents and
// the customer's checkout input. It is never persisted.
type OrderRequest struct {
	Customer      Customer        `json:"customer"`
	Comment       string          `json:"comment,omitempty"`
	Delivery      Delivery        `json:"delivery"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Items         []cart.LineItem `json:"items"`
	Totals        Totals          `json:"totals"`
}

type OrderResult struct {
	OrderID  int64  `json:"orderId"`
	OrderKey string `json:"orderKey"`
}
