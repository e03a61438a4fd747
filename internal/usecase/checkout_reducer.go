package usecase

import (
	"app/internal/domain/model"
)

// チェックアウト状態を動かすイベント
type EventType string

const (
	//注文作成の開始（loading ON、前回のエラーはここで消える）
	EvSubmitStarted EventType = "SUBMIT_STARTED"

	EvOrderCreated EventType = "ORDER_CREATED"
	EvOrderFailed  EventType = "ORDER_FAILED"

	EvPaymentInitStarted EventType = "PAYMENT_INIT_STARTED"
	EvPaymentAwaiting    EventType = "PAYMENT_AWAITING"
	EvPaymentFailed      EventType = "PAYMENT_FAILED"

	EvVerifyStarted EventType = "VERIFY_STARTED"
	EvVerified      EventType = "VERIFIED"
)

type Event struct {
	Type EventType

	//EvSubmitStarted / EvOrderCreated
	PaymentMethod model.PaymentMethod
	OrderID       string
	Amount        int64

	//EvOrderFailed / EvPaymentFailed
	Message string

	//EvPaymentAwaiting
	Session model.PaymentSession
}

// reduce は (状態, イベント) から次の状態を作る純粋関数。
// 段階はAddress→Payment→Successの前進のみで、リトライはPaymentの自己ループ。
// 不正なイベントは黙って無視して現状を返す。
func reduce(s model.CheckoutSession, ev Event) model.CheckoutSession {
	switch ev.Type {
	case EvSubmitStarted:
		if s.Stage != model.StageAddress {
			return s
		}
		s.Loading = true
		s.Error = ""
		s.PaymentMethod = ev.PaymentMethod

	case EvOrderCreated:
		if s.Stage != model.StageAddress {
			return s
		}
		s.Loading = false
		s.Error = ""
		s.OrderID = ev.OrderID
		s.OrderAmount = ev.Amount
		if s.PaymentMethod == model.PaymentMethodCOD {
			s.Stage = model.StageSuccess
		} else {
			s.Stage = model.StagePayment
			s.PaymentState = model.PaymentStateIdle
		}

	case EvOrderFailed:
		if s.Stage != model.StageAddress {
			return s
		}
		//Addressに留まり、ユーザーの再送信を待つ
		s.Loading = false
		s.Error = ev.Message

	case EvPaymentInitStarted:
		if s.Stage != model.StagePayment {
			return s
		}
		//リトライは前のセッション状態を完全に置き換えてから始める
		s.Loading = true
		s.Error = ""
		s.PaymentState = model.PaymentStateInitiating
		s.Payment = model.PaymentSession{}

	case EvPaymentAwaiting:
		if s.Stage != model.StagePayment || s.PaymentState != model.PaymentStateInitiating {
			return s
		}
		s.Loading = false
		s.PaymentState = model.PaymentStateAwaitingAuthorization
		s.Payment = ev.Session

	case EvPaymentFailed:
		if s.Stage != model.StagePayment {
			return s
		}
		s.Loading = false
		s.Error = ev.Message
		s.PaymentState = model.PaymentStateFailed

	case EvVerifyStarted:
		if s.Stage != model.StagePayment || s.PaymentState != model.PaymentStateAwaitingAuthorization {
			return s
		}
		s.Loading = true
		s.PaymentState = model.PaymentStateVerifying

	case EvVerified:
		if s.Stage != model.StagePayment || s.PaymentState != model.PaymentStateVerifying {
			return s
		}
		s.Loading = false
		s.Error = ""
		s.PaymentState = model.PaymentStateVerified
		s.Stage = model.StageSuccess
	}

	return s
}
