package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func item(id int64, price float64, qty int) LineItem {
	return LineItem{ProductID: id, Name: "p", Image: "/img.png", Price: price, CountInStock: 10, Quantity: qty}
}

func TestReduce_AddItemMergesQuantity(t *testing.T) {
	s := State{}
	s = Reduce(s, AddItem{Item: LineItem{ProductID: 1, Name: "Mug", Image: "/a.png", Price: 10, CountInStock: 5, Quantity: 2}})
	s = Reduce(s, AddItem{Item: LineItem{ProductID: 1, Name: "Mug v2", Image: "/b.png", Price: 12, CountInStock: 3, Quantity: 4}})

	assert.Len(t, s.Items, 1)
	assert.Equal(t, LineItem{ProductID: 1, Name: "Mug v2", Image: "/b.png", Price: 12, CountInStock: 3, Quantity: 6}, s.Items[0])
}

func TestReduce_AddItemDoesNotClampToStock(t *testing.T) {
	s := State{}
	s = Reduce(s, AddItem{Item: LineItem{ProductID: 1, CountInStock: 2, Quantity: 2}})
	s = Reduce(s, AddItem{Item: LineItem{ProductID: 1, CountInStock: 2, Quantity: 2}})

	assert.Equal(t, 4, s.Items[0].Quantity)
}

func TestReduce_AddItemKeepsInsertionOrder(t *testing.T) {
	s := State{}
	s = Reduce(s, AddItem{Item: item(3, 1, 1)})
	s = Reduce(s, AddItem{Item: item(1, 1, 1)})
	s = Reduce(s, AddItem{Item: item(2, 1, 1)})
	s = Reduce(s, AddItem{Item: item(3, 1, 1)})

	var ids []int64
	for _, it := range s.Items {
		ids = append(ids, it.ProductID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
	assert.Equal(t, 2, s.Items[0].Quantity)
}

func TestReduce_RemoveItem(t *testing.T) {
	s := State{Items: []LineItem{item(1, 1, 1), item(2, 1, 1)}}

	s = Reduce(s, RemoveItem{ProductID: 1})
	assert.Equal(t, []LineItem{item(2, 1, 1)}, s.Items)

	// unknown id is a no-op
	s = Reduce(s, RemoveItem{ProductID: 99})
	assert.Equal(t, []LineItem{item(2, 1, 1)}, s.Items)
}

func TestReduce_SetQuantity(t *testing.T) {
	s := State{Items: []LineItem{item(1, 5, 1), item(2, 5, 1)}}

	s = Reduce(s, SetQuantity{ProductID: 2, Quantity: 7})
	assert.Equal(t, 7, s.Items[1].Quantity)
	assert.Equal(t, 5.0, s.Items[1].Price)

	s = Reduce(s, SetQuantity{ProductID: 99, Quantity: 3})
	assert.Len(t, s.Items, 2)
}

func TestReduce_SetQuantityZeroEqualsRemove(t *testing.T) {
	for _, q := range []int{0, -1} {
		base := State{Items: []LineItem{item(1, 5, 1), item(2, 5, 1)}}

		viaSet := Reduce(base, SetQuantity{ProductID: 1, Quantity: q})
		viaRemove := Reduce(base, RemoveItem{ProductID: 1})

		assert.Equal(t, viaRemove, viaSet)
	}
}

func TestReduce_ClearKeepsAddressAndPayment(t *testing.T) {
	addr := ShippingAddress{Address: "1 Main St", City: "Lahore", PostalCode: "54000", Country: "PK"}
	s := State{Items: []LineItem{item(1, 1, 1)}, ShippingAddress: addr, PaymentMethod: PaymentPayPal}

	s = Reduce(s, ClearItems{})

	assert.Empty(t, s.Items)
	assert.NotNil(t, s.Items)
	assert.Equal(t, addr, s.ShippingAddress)
	assert.Equal(t, PaymentPayPal, s.PaymentMethod)
}

func TestReduce_DoesNotModifyInput(t *testing.T) {
	base := State{Items: []LineItem{item(1, 1, 1)}}

	_ = Reduce(base, AddItem{Item: item(1, 1, 5)})
	_ = Reduce(base, SetQuantity{ProductID: 1, Quantity: 9})

	assert.Equal(t, 1, base.Items[0].Quantity)
}

func TestReduce_SaveAddressAndPayment(t *testing.T) {
	addr := ShippingAddress{Address: "a", City: "b", PostalCode: "c", Country: "d"}
	s := Reduce(State{}, SaveShippingAddress{Address: addr})
	s = Reduce(s, SavePaymentMethod{Method: PaymentCashOnDelivery})

	assert.Equal(t, addr, s.ShippingAddress)
	assert.Equal(t, PaymentCashOnDelivery, s.PaymentMethod)
}

func TestReduce_NilAction(t *testing.T) {
	s := State{Items: []LineItem{item(1, 1, 1)}}
	assert.Equal(t, s, Reduce(s, nil))
}
