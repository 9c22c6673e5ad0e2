package cart

// Payment method tags accepted at checkout.
const (
	PaymentPayPal         = "PayPal"
	PaymentCashOnDelivery = "Cash on Delivery"
)

// DefaultPaymentMethod is preselected when the shopper never picked one.
const DefaultPaymentMethod = PaymentCashOnDelivery

// LineItem is one product entry in a cart. Price and CountInStock are
// captured when the item is added and are not refreshed afterwards.
type LineItem struct {
	ProductID    int64   `json:"productId"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Quantity     int     `json:"quantity"`
}

// ShippingAddress is where the order ships.
type ShippingAddress struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// IsZero reports whether no field has been filled in.
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// Complete reports whether every field has been filled in.
func (a ShippingAddress) Complete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// State is everything a cart holds.
type State struct {
	Items           []LineItem      `json:"cartItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// Empty reports whether the cart has no line items.
func (s State) Empty() bool {
	return len(s.Items) == 0
}

// Find returns the line item for productID.
func (s State) Find(productID int64) (LineItem, bool) {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}

// ItemCount is the sum of all quantities.
func (s State) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
