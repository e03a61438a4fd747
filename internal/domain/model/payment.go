package model

// 決済フローの状態
type PaymentState string

const (
	PaymentStateIdle       PaymentState = "IDLE"
	PaymentStateInitiating PaymentState = "INITIATING"

	//外部決済ウィジェットの結果待ち（success / failure / dismiss のどれか1回だけ返る）
	PaymentStateAwaitingAuthorization PaymentState = "AWAITING_AUTHORIZATION"

	PaymentStateVerifying PaymentState = "VERIFYING"
	PaymentStateVerified  PaymentState = "VERIFIED"
	PaymentStateFailed    PaymentState = "FAILED"
)

func (s PaymentState) IsTerminal() bool {
	return s == PaymentStateVerified || s == PaymentStateFailed
}

// FAILEDからだけリトライできる（注文は既に存在するのでIDLEへは戻らない）
func (s PaymentState) CanRetry() bool {
	return s == PaymentStateFailed
}

// 1回の決済試行の間だけ存在するセッション。
// リトライは同じ注文IDに対して新しいセッションを作り直す。
type PaymentSession struct {
	//決済プロセッサ側の注文参照
	OrderRef string `json:"order_ref"`

	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`

	//ウィジェット起動用の公開キー
	Key string `json:"key"`
}
