package gateway

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

// 外部サービスがエラー応答で返したメッセージ。
// Usecaseはこれをそのままユーザー向けエラーに使う。
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// 外部サービスのメッセージを取り出す。なければ空文字。
func APIErrorMessage(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}

// 業者ごとの送料見積もり
type RateQuote struct {
	CourierID   int64
	CourierName string
	Rate        int64
	EtaDays     string
}

// カートの要約（小計と梱包重量）
type Cart struct {
	Subtotal    int64
	WeightGrams int64
}

// 作成済み注文
type CreatedOrder struct {
	OrderID string
	Amount  int64
}

// 決済プロセッサが発行したセッション
type PaymentSessionData struct {
	SessionOrderID string
	Amount         int64
	Currency       string
	Key            string
}

// 配送系API（配送可否・業者一覧・見積もり）
type ShippingGateway interface {
	CheckServiceability(ctx context.Context, postalCode string) (bool, error)
	ListCouriers(ctx context.Context) ([]model.Courier, error)
	QuoteRate(ctx context.Context, courierID int64, postalCode string, weightGrams int64) (RateQuote, error)
}

// カートサービス
type CartGateway interface {
	GetCart(ctx context.Context, token string) (Cart, error)
}

// 注文サービス
type OrderGateway interface {
	CreateOrder(ctx context.Context, shippingAddress string, method model.PaymentMethod, amount int64, token string) (CreatedOrder, error)
}

// 決済プロセッサ（セッション発行）
type PaymentGateway interface {
	CreateSession(ctx context.Context, orderID string, amount int64) (PaymentSessionData, error)
}
