package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"marketplace-orders/internal/domain"
)

// ErrCartUnavailable wraps every failure to obtain a cart snapshot.
var ErrCartUnavailable = errors.New("cart service unavailable")

type cartResponse struct {
	CartItems []struct {
		ProductID uint64 `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"cartItems"`
}

type CartClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCartClient(baseURL string, timeout time.Duration) *CartClient {
	return &CartClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetCart fetches the caller's cart. An empty or missing cart yields an
// empty slice, leaving the empty-order decision to checkout.
func (c *CartClient) GetCart(ctx context.Context, userID uint64) ([]domain.LineItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cart", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	req.Header.Set("X-User-ID", strconv.FormatUint(userID, 10))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []domain.LineItem{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cart service returned status %d", ErrCartUnavailable, resp.StatusCode)
	}

	var body cartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode cart: %v", ErrCartUnavailable, err)
	}

	items := make([]domain.LineItem, 0, len(body.CartItems))
	for _, ci := range body.CartItems {
		items = append(items, domain.LineItem{ProductID: ci.ProductID, Quantity: ci.Quantity})
	}
	return items, nil
}
