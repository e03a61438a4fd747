package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"app/internal/domain/model"
	"app/internal/gateway"
)

// 注文サービスのHTTPクライアント
type OrderAPI struct {
	base string
	hc   *http.Client
}

func NewOrderAPI(base string, hc *http.Client) *OrderAPI {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &OrderAPI{base: base, hc: hc}
}

func (c *OrderAPI) CreateOrder(ctx context.Context, shippingAddress string, method model.PaymentMethod, amount int64, token string) (gateway.CreatedOrder, error) {
	body := map[string]any{
		"shipping_address": shippingAddress,
		"payment_method":   string(method),
		"amount":           amount,
	}
	headers := map[string]string{"Authorization": "Bearer " + token}

	data, err := doJSON(ctx, c.hc, http.MethodPost, c.base+"/orders", headers, body)
	if err != nil {
		return gateway.CreatedOrder{}, err
	}

	var out struct {
		OrderID string `json:"order_id"`
		Amount  int64  `json:"amount"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return gateway.CreatedOrder{}, err
	}
	return gateway.CreatedOrder{OrderID: out.OrderID, Amount: out.Amount}, nil
}
