package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopkart/shopkart-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testApp) upload(token, filename string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(a.t, err)
	_, err = part.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestUploadFile(t *testing.T) {
	app := setupTestApp(t)
	_, adminToken := app.createUser("Admin", "admin@example.com", models.RoleAdmin, true)
	_, userToken := app.createUser("User", "user@example.com", models.RoleUser, true)

	w := app.upload(userToken, "photo.png", []byte("png-bytes"))
	requireStatus(t, w, http.StatusForbidden)

	w = app.upload(adminToken, "script.sh", []byte("#!/bin/sh"))
	requireStatus(t, w, http.StatusBadRequest)

	w = app.upload(adminToken, "Photo.PNG", []byte("png-bytes"))
	requireStatus(t, w, http.StatusOK)

	url := decode[map[string]string](t, w)["url"]
	require.True(t, strings.HasPrefix(url, "http://shop.test/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := strings.TrimPrefix(url, "http://shop.test/uploads/")
	saved, err := os.ReadFile(filepath.Join(app.h.Config.UploadDir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(saved))

	// Served back statically
	req := httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}
