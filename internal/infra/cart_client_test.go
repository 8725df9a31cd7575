package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-orders/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartClient_GetCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart", r.URL.Path)
		assert.Equal(t, "42", r.Header.Get("X-User-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cartItems":[{"productId":3,"quantity":2},{"productId":9,"quantity":1}]}`))
	}))
	defer srv.Close()

	items, err := NewCartClient(srv.URL, time.Second).GetCart(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{ProductID: 3, Quantity: 2}, {ProductID: 9, Quantity: 1}}, items)
}

func TestCartClient_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	items, err := NewCartClient(srv.URL, time.Second).GetCart(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"cartItems":`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewCartClient(srv.URL, 50*time.Millisecond).GetCart(context.Background(), 1)
			assert.ErrorIs(t, err, ErrCartUnavailable)
		})
	}
}
