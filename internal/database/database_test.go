package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema_SQLite(t *testing.T) {
	db, err := OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, InitSchema(db, "sqlite"))
	// idempotent
	require.NoError(t, InitSchema(db, "sqlite"))

	for _, table := range []string{"users", "categories", "products", "reviews", "orders", "order_items"} {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
		assert.NoError(t, err, table)
		assert.Zero(t, n, table)
	}
}

func TestInitSchema_UnknownDriver(t *testing.T) {
	db, err := OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, InitSchema(db, "oracle"))
}
