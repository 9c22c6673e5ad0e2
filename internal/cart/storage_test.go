package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_IsolatedByCart(t *testing.T) {
	ctx := context.Background()
	for name, store := range storages(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "a", KeyPaymentMethod, PaymentPayPal))
			require.NoError(t, store.Set(ctx, "b", KeyPaymentMethod, PaymentCashOnDelivery))

			v, ok, err := store.Get(ctx, "a", KeyPaymentMethod)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, PaymentPayPal, v)

			require.NoError(t, store.Delete(ctx, "a", KeyPaymentMethod, KeyItems))
			_, ok, err = store.Get(ctx, "a", KeyPaymentMethod)
			require.NoError(t, err)
			assert.False(t, ok)

			v, ok, err = store.Get(ctx, "b", KeyPaymentMethod)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, PaymentCashOnDelivery, v)

			// Deleting nothing is a no-op
			assert.NoError(t, store.Delete(ctx, "b"))
		})
	}
}

func TestOpenRedis(t *testing.T) {
	mr, _ := setupTestRedis(t)

	url := "redis://" + mr.Addr() + "/0"

	client, err := OpenRedis(context.Background(), url)
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())

	_, err = OpenRedis(context.Background(), "not-a-url")
	assert.Error(t, err)

	mr.Close()
	_, err = OpenRedis(context.Background(), url)
	assert.Error(t, err)
}
