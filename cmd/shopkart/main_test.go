package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopkart/shopkart-api/internal/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckPassword(t *testing.T) {
	out, err := execute(t, "check-password", "abc")
	assert.ErrorIs(t, err, credential.ErrTooShort)

	var report credential.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Length)
	assert.True(t, report.Lowercase)

	_, err = execute(t, "check-password", "Secret1!")
	assert.NoError(t, err)
}

func TestPaySendsTokenAndResult(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/orders/7/pay", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id": 7, "isPaid": true}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--api", srv.URL, "--token", "tkn", "pay", "7", "--payment-id", "PAY-7")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tkn", gotAuth)
	assert.Equal(t, "PAY-7", gotBody["id"])
	assert.Equal(t, "COMPLETED", gotBody["status"])
	assert.Contains(t, out, `"isPaid": true`)
}

func TestOrderRejectsBadID(t *testing.T) {
	_, err := execute(t, "--api", "http://127.0.0.1:1", "order", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order id")
}
