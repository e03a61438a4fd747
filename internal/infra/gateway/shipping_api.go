package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker/v2"

	"app/internal/domain/model"
	"app/internal/gateway"
)

type rawResponse struct {
	Status int
	Body   []byte
}

// 配送系APIのHTTPクライアント。
// 障害時に呼び続けないようサーキットブレーカーを挟む（開いている間は即失敗→フォールバックへ）。
type ShippingAPI struct {
	base  string
	token string
	hc    *http.Client
	cb    *gobreaker.CircuitBreaker[rawResponse]
}

func NewShippingAPI(base string, token string, hc *http.Client) *ShippingAPI {
	if hc == nil {
		hc = http.DefaultClient
	}
	cb := gobreaker.NewCircuitBreaker[rawResponse](gobreaker.Settings{
		Name: "shipping-api",
	})
	return &ShippingAPI{base: base, token: token, hc: hc, cb: cb}
}

func (c *ShippingAPI) CheckServiceability(ctx context.Context, postalCode string) (bool, error) {
	q := url.Values{"pincode": {postalCode}}
	data, err := c.do(ctx, http.MethodGet, "/serviceability?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}

	var out struct {
		Deliverable bool `json:"deliverable"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return false, err
	}
	return out.Deliverable, nil
}

func (c *ShippingAPI) ListCouriers(ctx context.Context) ([]model.Courier, error) {
	data, err := c.do(ctx, http.MethodGet, "/couriers", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Couriers []model.Courier `json:"couriers"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out.Couriers, nil
}

func (c *ShippingAPI) QuoteRate(ctx context.Context, courierID int64, postalCode string, weightGrams int64) (gateway.RateQuote, error) {
	body := map[string]any{
		"courier_id": courierID,
		"pincode":    postalCode,
		"weight":     weightGrams,
	}
	data, err := c.do(ctx, http.MethodPost, "/rates", body)
	if err != nil {
		return gateway.RateQuote{}, err
	}

	var out struct {
		Rates []struct {
			CourierID   int64  `json:"courier_id"`
			CourierName string `json:"courier_name"`
			Rate        int64  `json:"rate"`
			EtaDays     string `json:"eta_days"`
		} `json:"rates"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return gateway.RateQuote{}, err
	}
	if len(out.Rates) == 0 {
		return gateway.RateQuote{}, fmt.Errorf("no rate for courier %s", strconv.FormatInt(courierID, 10))
	}

	r := out.Rates[0]
	return gateway.RateQuote{
		CourierID:   courierID,
		CourierName: r.CourierName,
		Rate:        r.Rate,
		EtaDays:     r.EtaDays,
	}, nil
}

func (c *ShippingAPI) do(ctx context.Context, method string, path string, body any) (json.RawMessage, error) {
	res, err := c.cb.Execute(func() (rawResponse, error) {
		headers := map[string]string{"Authorization": "Bearer " + c.token}
		return send(ctx, c.hc, method, c.base+path, headers, body)
	})
	if err != nil {
		return nil, err
	}
	return parseEnvelope(res.Status, res.Body)
}
