package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"app/internal/gateway"
)

// カートサービスのHTTPクライアント
type CartAPI struct {
	base string
	hc   *http.Client
}

func NewCartAPI(base string, hc *http.Client) *CartAPI {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &CartAPI{base: base, hc: hc}
}

func (c *CartAPI) GetCart(ctx context.Context, token string) (gateway.Cart, error) {
	headers := map[string]string{"Authorization": "Bearer " + token}

	data, err := doJSON(ctx, c.hc, http.MethodGet, c.base+"/cart", headers, nil)
	if err != nil {
		return gateway.Cart{}, err
	}

	var out struct {
		Subtotal    int64 `json:"subtotal"`
		WeightGrams int64 `json:"weight_grams"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return gateway.Cart{}, err
	}
	return gateway.Cart{Subtotal: out.Subtotal, WeightGrams: out.WeightGrams}, nil
}
