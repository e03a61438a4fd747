package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"app/internal/gateway"
)

// 決済プロセッサのHTTPクライアント（セッション発行）。
// key/secretのBasic認証で呼ぶ。
type PaymentAPI struct {
	base      string
	keyID     string
	keySecret string
	hc        *http.Client
}

func NewPaymentAPI(base string, keyID string, keySecret string, hc *http.Client) *PaymentAPI {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &PaymentAPI{base: base, keyID: keyID, keySecret: keySecret, hc: hc}
}

func (c *PaymentAPI) CreateSession(ctx context.Context, orderID string, amount int64) (gateway.PaymentSessionData, error) {
	body := map[string]any{
		"receipt":  orderID,
		"amount":   amount,
		"currency": "INR",
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	headers := map[string]string{"Authorization": "Basic " + auth}

	data, err := doJSON(ctx, c.hc, http.MethodPost, c.base+"/sessions", headers, body)
	if err != nil {
		return gateway.PaymentSessionData{}, err
	}

	var out struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return gateway.PaymentSessionData{}, err
	}

	return gateway.PaymentSessionData{
		SessionOrderID: out.ID,
		Amount:         out.Amount,
		Currency:       out.Currency,

		//ウィジェット起動用の公開キーはこちらの設定値
		Key: c.keyID,
	}, nil
}
