package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"app/internal/gateway"
)

// 外部サービス共通の応答形
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doJSON はJSONリクエストを投げてenvelopeのdataを返す。
// successがfalseならサーバーのmessageを持ったAPIErrorにする。
func doJSON(ctx context.Context, hc *http.Client, method string, url string, headers map[string]string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	return parseEnvelope(res.StatusCode, raw)
}

// send は生の応答を返す素のHTTP呼び出し。
// ネットワークエラーと5xxはエラーにする（ブレーカーの失敗として数えるため）。
func send(ctx context.Context, hc *http.Client, method string, url string, headers map[string]string, body any) (rawResponse, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return rawResponse{}, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return rawResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := hc.Do(req)
	if err != nil {
		return rawResponse{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return rawResponse{}, err
	}
	if res.StatusCode >= 500 {
		return rawResponse{}, fmt.Errorf("server error (status %d)", res.StatusCode)
	}

	return rawResponse{Status: res.StatusCode, Body: raw}, nil
}

func parseEnvelope(status int, raw []byte) (json.RawMessage, error) {
	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d)", status)
	}
	if !env.Success {
		if env.Message != "" {
			return nil, &gateway.APIError{Message: env.Message}
		}
		return nil, fmt.Errorf("request failed (status %d)", status)
	}
	return env.Data, nil
}
