package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bills", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"bill_id":"1"}]`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", WithToken("secret"))
	raw, err := c.Get(context.Background(), "/bills")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"bill_id":"1"}]`, string(raw))
}

func TestHTTPClientSendEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Water", body["item_name"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	raw, err := c.Send(context.Background(), http.MethodPost, "/bills", map[string]string{"item_name": "Water"})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestHTTPClientApplicationError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"message body", http.StatusConflict, `{"message":"payment already pending"}`, "payment already pending"},
		{"error body", http.StatusForbidden, `{"error":"account not approved"}`, "account not approved"},
		{"plain text body", http.StatusInternalServerError, "boom", "Internal Server Error"},
		{"empty body", http.StatusNotFound, "", "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL).Get(context.Background(), "/x")
			var appErr *ApplicationError
			require.True(t, errors.As(err, &appErr), "got %T", err)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.wantMessage, appErr.Message)
		})
	}
}

func TestHTTPClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).Get(context.Background(), "/bills")
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %T", err)
	assert.Equal(t, "/bills", netErr.Path)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestHTTPClientSetToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.SetToken("t2")
	_, err := c.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "Bearer t2", got)
}
