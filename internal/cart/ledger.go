package cart

import (
	"context"
	"encoding/json"
	"fmt"
)

// Ledger is one cart's state plus the storage it is mirrored to. Every
// mutation is applied through Reduce and then written through to storage
// before the method returns.
//
// A Ledger is not safe for concurrent use; open one per request.
type Ledger struct {
	id    string
	store Storage
	state State
}

// Open rehydrates the cart identified by id. Keys that were never written
// leave the corresponding part of the state at its zero value.
func Open(ctx context.Context, store Storage, id string) (*Ledger, error) {
	l := &Ledger{id: id, store: store, state: State{Items: []LineItem{}}}

	loaded, err := load(ctx, store, id)
	if err != nil {
		return nil, err
	}
	l.state = Reduce(l.state, Load{State: loaded})
	return l, nil
}

func load(ctx context.Context, store Storage, id string) (State, error) {
	var s State

	raw, ok, err := store.Get(ctx, id, KeyItems)
	if err != nil {
		return s, err
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.Items); err != nil {
			return s, fmt.Errorf("cart %s: decode %s: %w", id, KeyItems, err)
		}
	}

	raw, ok, err = store.Get(ctx, id, KeyShippingAddress)
	if err != nil {
		return s, err
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.ShippingAddress); err != nil {
			return s, fmt.Errorf("cart %s: decode %s: %w", id, KeyShippingAddress, err)
		}
	}

	raw, ok, err = store.Get(ctx, id, KeyPaymentMethod)
	if err != nil {
		return s, err
	}
	if ok {
		s.PaymentMethod = raw
	}

	return s, nil
}

// ID is the cart id the ledger was opened with.
func (l *Ledger) ID() string { return l.id }

// State returns a copy of the current state.
func (l *Ledger) State() State {
	s := l.state
	s.Items = append([]LineItem(nil), l.state.Items...)
	if s.Items == nil {
		s.Items = []LineItem{}
	}
	return s
}

// Totals prices the current line items.
func (l *Ledger) Totals() Prices {
	return Totals(l.state.Items)
}

// Dispatch applies a to the state and writes the result through to storage.
// The in-memory state reflects a even when the write fails.
func (l *Ledger) Dispatch(ctx context.Context, a Action) error {
	l.state = Reduce(l.state, a)
	return l.persist(ctx)
}

func (l *Ledger) AddItem(ctx context.Context, item LineItem) error {
	return l.Dispatch(ctx, AddItem{Item: item})
}

func (l *Ledger) RemoveItem(ctx context.Context, productID int64) error {
	return l.Dispatch(ctx, RemoveItem{ProductID: productID})
}

func (l *Ledger) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	return l.Dispatch(ctx, SetQuantity{ProductID: productID, Quantity: quantity})
}

func (l *Ledger) Clear(ctx context.Context) error {
	return l.Dispatch(ctx, ClearItems{})
}

func (l *Ledger) SaveShippingAddress(ctx context.Context, addr ShippingAddress) error {
	return l.Dispatch(ctx, SaveShippingAddress{Address: addr})
}

func (l *Ledger) SavePaymentMethod(ctx context.Context, method string) error {
	return l.Dispatch(ctx, SavePaymentMethod{Method: method})
}

// Reset drops all three stored keys and empties the state, including the
// shipping address and payment method.
func (l *Ledger) Reset(ctx context.Context) error {
	l.state = State{Items: []LineItem{}}
	return l.store.Delete(ctx, l.id, KeyItems, KeyShippingAddress, KeyPaymentMethod)
}

// persist writes the items unconditionally; the address and payment method
// are only written once they hold something.
func (l *Ledger) persist(ctx context.Context) error {
	items := l.state.Items
	if items == nil {
		items = []LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart %s: encode items: %w", l.id, err)
	}
	if err := l.store.Set(ctx, l.id, KeyItems, string(b)); err != nil {
		return err
	}

	if !l.state.ShippingAddress.IsZero() {
		b, err := json.Marshal(l.state.ShippingAddress)
		if err != nil {
			return fmt.Errorf("cart %s: encode shipping address: %w", l.id, err)
		}
		if err := l.store.Set(ctx, l.id, KeyShippingAddress, string(b)); err != nil {
			return err
		}
	}

	if l.state.PaymentMethod != "" {
		if err := l.store.Set(ctx, l.id, KeyPaymentMethod, l.state.PaymentMethod); err != nil {
			return err
		}
	}
	return nil
}
