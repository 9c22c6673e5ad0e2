package cart

import (
	"math"
	"math/big"
)

const (
	// FreeShippingThreshold is the items total above which shipping is waived.
	FreeShippingThreshold = 500.0
	// FlatShippingFee is charged at or below the threshold.
	FlatShippingFee = 50.0
	// TaxRate is applied to the items total.
	TaxRate = 0.15
)

// Prices are the four monetary fields shown at checkout and sent with an order.
type Prices struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// Totals derives Prices from the line items. Tax and total are each rounded
// to two places; the items price and the sum feeding the total are not.
func Totals(items []LineItem) Prices {
	var itemsPrice float64
	for _, it := range items {
		itemsPrice += float64(it.Quantity) * it.Price
	}

	shipping := FlatShippingFee
	if itemsPrice > FreeShippingThreshold {
		shipping = 0
	}

	tax := Round2(TaxRate * itemsPrice)

	return Prices{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    Round2(itemsPrice + shipping + tax),
	}
}

var (
	hundred = big.NewRat(100, 1)
	cents   = big.NewInt(100)
)

// Round2 rounds v to two decimal places from its exact binary value, with
// ties going away from zero: 0.15*2.3 is 0.34499999999999997 in float64 and
// rounds to 0.34.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e21 {
		return v
	}

	r := new(big.Rat).SetFloat64(v)
	neg := r.Sign() < 0
	r.Abs(r).Mul(r, hundred)

	q, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	out, _ := new(big.Rat).SetFrac(q, cents).Float64()
	if neg {
		return -out
	}
	return out
}
