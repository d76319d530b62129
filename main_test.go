package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storeapi/internal/config"
	"storeapi/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig(databaseURL string) config.Config {
	return config.Config{
		AppPort:          ":0",
		DatabaseURL:      databaseURL,
		DBLogLevel:       "silent",
		JWTSecret:        "test_jwt_secret",
		JWTExpiration:    time.Minute,
		RabbitMQExchange: "inventory",
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthCheck(t *testing.T) {
	app, err := newApp(testConfig(database.MemoryURL), nil)
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["events"])
}

func TestStorageBackends(t *testing.T) {
	urls := map[string]string{
		"memory": database.MemoryURL,
		"sqlite": "sqlite:///file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	for name, url := range urls {
		t.Run(name, func(t *testing.T) {
			app, err := newApp(testConfig(url), nil)
			require.NoError(t, err)

			resp := doJSON(t, app, http.MethodGet, "/item/X", nil, "")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			creds := map[string]string{"username": "bob", "password": "pw"}
			resp = doJSON(t, app, http.MethodPost, "/register", creds, "")
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			resp = doJSON(t, app, http.MethodPost, "/auth", creds, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var auth map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))

			resp = doJSON(t, app, http.MethodPost, "/store/S", nil, "")
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp = doJSON(t, app, http.MethodPost, "/item/X", map[string]interface{}{"price": 1.5, "store_id": 1}, "")
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			resp = doJSON(t, app, http.MethodGet, "/item/X", nil, auth["access_token"])
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp = doJSON(t, app, http.MethodDelete, "/store/S", nil, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestNewAppRejectsUnknownDatabase(t *testing.T) {
	_, err := newApp(testConfig("mysql://localhost/db"), nil)
	assert.Error(t, err)
}
