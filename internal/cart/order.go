package cart

// OrderItemRequest is a line item in the shape the order API expects.
type OrderItemRequest struct {
	Name    string  `json:"name" binding:"required"`
	Qty     int     `json:"qty" binding:"required,gt=0"`
	Image   string  `json:"image"`
	Price   float64 `json:"price" binding:"gte=0"`
	Product int64   `json:"product" binding:"required"`
}

// OrderRequest is the order submission payload.
type OrderRequest struct {
	OrderItems      []OrderItemRequest `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required,oneof=PayPal 'Cash on Delivery'"`
	ItemsPrice      float64            `json:"itemsPrice"`
	TaxPrice        float64            `json:"taxPrice"`
	ShippingPrice   float64            `json:"shippingPrice"`
	TotalPrice      float64            `json:"totalPrice"`
}

// BuildOrderRequest snapshots the cart into an order submission. An empty
// payment method falls back to DefaultPaymentMethod.
func BuildOrderRequest(s State) OrderRequest {
	items := make([]OrderItemRequest, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, OrderItemRequest{
			Name:    it.Name,
			Qty:     it.Quantity,
			Image:   it.Image,
			Price:   it.Price,
			Product: it.ProductID,
		})
	}

	method := s.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	p := Totals(s.Items)
	return OrderRequest{
		OrderItems:      items,
		ShippingAddress: s.ShippingAddress,
		PaymentMethod:   method,
		ItemsPrice:      p.ItemsPrice,
		TaxPrice:        p.TaxPrice,
		ShippingPrice:   p.ShippingPrice,
		TotalPrice:      p.TotalPrice,
	}
}

// LineItems converts order items back to cart line items, e.g. to price a
// submitted order. CountInStock is left at zero.
func (r OrderRequest) LineItems() []LineItem {
	items := make([]LineItem, 0, len(r.OrderItems))
	for _, oi := range r.OrderItems {
		items = append(items, LineItem{
			ProductID: oi.Product,
			Name:      oi.Name,
			Image:     oi.Image,
			Price:     oi.Price,
			Quantity:  oi.Qty,
		})
	}
	return items
}
