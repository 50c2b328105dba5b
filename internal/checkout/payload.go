package checkout

import "strconv"

// Wire types for the WooCommerce order creation endpoint.

type wooMeta struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

type wooIdentity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city"`
}

type wooLineItem struct {
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Total     string    `json:"total"`
	MetaData  []wooMeta `json:"meta_data"`
}

type wooShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

type wooOrder struct {
	PaymentMethod      string            `json:"payment_method"`
	PaymentMethodTitle string            `json:"payment_method_title"`
	SetPaid            bool              `json:"set_paid"`
	CustomerNote       string            `json:"customer_note"`
	Billing            wooIdentity       `json:"billing"`
	Shipping           wooIdentity       `json:"shipping"`
	LineItems          []wooLineItem     `json:"line_items"`
	ShippingLines      []wooShippingLine `json:"shipping_lines"`
	MetaData           []wooMeta         `json:"meta_data"`
}

func toMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// buildPayload maps an order request to the backend's order shape. Each cart
// item becomes one order line of quantity one carrying its configuration as
// a descriptive attribute set. Delivery becomes a shipping line only when it
// actually costs something.
func (s *Submitter) buildPayload(req OrderRequest) wooOrder {
	methodID := s.cfg.PaymentMethodCard
	methodTitle := "Card"
	if req.PaymentMethod == PaymentCashOnDelivery {
		methodID = s.cfg.PaymentMethodCOD
		methodTitle = "Cash on delivery"
	}

	lines := make([]wooLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, wooLineItem{
			ProductID: item.ProductDatabaseID,
			Quantity:  1,
			Total:     toMoney(item.Price),
			MetaData: []wooMeta{
				{Key: "SKU", Value: item.ProductID},
				{Key: "Width (cm)", Value: item.Width},
				{Key: "Height (cm)", Value: item.Height},
				{Key: "Material", Value: item.Material},
				{Key: "Premium print", Value: yesNo(item.Premium)},
				{Key: "Laminate", Value: yesNo(item.Laminate)},
				{Key: "Glue", Value: yesNo(item.Glue)},
			},
		})
	}

	shippingLines := []wooShippingLine{}
	if req.Delivery.Cost > 0 {
		shippingLines = append(shippingLines, wooShippingLine{
			MethodID:    string(req.Delivery.Method),
			MethodTitle: string(req.Delivery.Method),
			Total:       toMoney(req.Delivery.Cost),
		})
	}

	return wooOrder{
		PaymentMethod:      methodID,
		PaymentMethodTitle: methodTitle,
		SetPaid:            false,
		CustomerNote:       req.Comment,
		Billing: wooIdentity{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			City:      req.Delivery.City,
		},
		Shipping: wooIdentity{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			City:      req.Delivery.City,
		},
		LineItems:     lines,
		ShippingLines: shippingLines,
		MetaData: []wooMeta{
			{Key: "delivery_method", Value: string(req.Delivery.Method)},
			{Key: "delivery_type", Value: req.Delivery.Type},
			{Key: "delivery_city", Value: req.Delivery.City},
		},
	}
}
