package cart

// Action is a single cart mutation. Reduce applies it to a State.
type Action interface {
	reduce(State) State
}

// AddItem merges Item into the cart. An existing line for the same product
// keeps its position, takes the incoming name/image/price/stock and adds the
// incoming quantity. Quantity is not clamped to CountInStock.
type AddItem struct {
	Item LineItem
}

// RemoveItem drops the line for ProductID. Unknown ids are ignored.
type RemoveItem struct {
	ProductID int64
}

// SetQuantity overwrites a line's quantity. A quantity of zero or less
// removes the line.
type SetQuantity struct {
	ProductID int64
	Quantity  int
}

// ClearItems empties the line items. Address and payment method are kept.
type ClearItems struct{}

// SaveShippingAddress replaces the shipping address.
type SaveShippingAddress struct {
	Address ShippingAddress
}

// SavePaymentMethod replaces the payment method tag.
type SavePaymentMethod struct {
	Method string
}

// Load replaces the whole state, used when rehydrating from storage.
type Load struct {
	State State
}

// Reduce returns the state after applying a. The input state is never modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.reduce(s)
}

func (a AddItem) reduce(s State) State {
	items := make([]LineItem, 0, len(s.Items)+1)
	merged := false
	for _, it := range s.Items {
		if it.ProductID == a.Item.ProductID {
			next := a.Item
			next.Quantity = it.Quantity + a.Item.Quantity
			items = append(items, next)
			merged = true
			continue
		}
		items = append(items, it)
	}
	if !merged {
		items = append(items, a.Item)
	}
	s.Items = items
	return s
}

func (a RemoveItem) reduce(s State) State {
	items := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ProductID != a.ProductID {
			items = append(items, it)
		}
	}
	s.Items = items
	return s
}

func (a SetQuantity) reduce(s State) State {
	if a.Quantity <= 0 {
		return RemoveItem{ProductID: a.ProductID}.reduce(s)
	}
	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	for i := range items {
		if items[i].ProductID == a.ProductID {
			items[i].Quantity = a.Quantity
		}
	}
	s.Items = items
	return s
}

func (ClearItems) reduce(s State) State {
	s.Items = []LineItem{}
	return s
}

func (a SaveShippingAddress) reduce(s State) State {
	s.ShippingAddress = a.Address
	return s
}

func (a SavePaymentMethod) reduce(s State) State {
	s.PaymentMethod = a.Method
	return s
}

func (a Load) reduce(State) State {
	next := a.State
	if next.Items == nil {
		next.Items = []LineItem{}
	}
	return next
}
