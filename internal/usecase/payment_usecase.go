package usecase

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"app/internal/domain/model"
	"app/internal/gateway"
	repo "app/internal/repository"
	"app/internal/signal"
)

// ウィジェット起動に必要な一式
type PaymentHandoff struct {
	Key      string         `json:"key"`
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	OrderRef string         `json:"order_ref"`
	Prefill  PaymentPrefill `json:"prefill"`
}

type PaymentPrefill struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ウィジェットからのコールバック。resultは success / failure / dismiss のどれか。
type PaymentCallbackInput struct {
	Result           string `json:"result"`
	ProcessorOrderID string `json:"processor_order_id"`
	PaymentID        string `json:"payment_id"`
	Signature        string `json:"signature"`
	Reason           string `json:"reason"`
}

// 決済フロー（開始・コールバック・検証・リトライ）
type PaymentUsecase struct {
	sessions repo.CheckoutSessionRepository
	payments gateway.PaymentGateway
	verifier SignatureVerifier
	bus      signal.Bus
	logger   *zap.Logger
}

func NewPaymentUsecase(
	sessions repo.CheckoutSessionRepository,
	payments gateway.PaymentGateway,
	verifier SignatureVerifier,
	bus signal.Bus,
	logger *zap.Logger,
) *PaymentUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentUsecase{
		sessions: sessions,
		payments: payments,
		verifier: verifier,
		bus:      bus,
		logger:   logger,
	}
}

// Initiate は作成済み注文に対して決済セッションを発行し、ウィジェット起動情報を返す。
// 失敗してもIDLEには戻らない（注文は存在するのでFAILEDからリトライできる）。
func (u *PaymentUsecase) Initiate(ctx context.Context, id string) (PaymentHandoff, error) {
	s, err := u.sessions.FindByID(ctx, id)
	if err != nil {
		return PaymentHandoff{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if s.Stage != model.StagePayment || s.OrderID == "" {
		return PaymentHandoff{}, NewHTTPError(http.StatusConflict, "no order to pay for")
	}

	//前の試行の状態を完全に置き換えてから始める
	s = reduce(s, Event{Type: EvPaymentInitStarted})
	if err := u.sessions.Save(ctx, s); err != nil {
		return PaymentHandoff{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	data, err := u.payments.CreateSession(ctx, s.OrderID, s.OrderAmount)
	if err != nil {
		msg := gateway.APIErrorMessage(err)
		if msg == "" {
			msg = MsgSomethingWentWrong
		}
		u.logger.Warn("payment session creation failed",
			zap.String("checkout_id", id),
			zap.String("order_id", s.OrderID),
			zap.Error(err))

		s = reduce(s, Event{Type: EvPaymentFailed, Message: msg})
		if err := u.sessions.Save(ctx, s); err != nil {
			return PaymentHandoff{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return PaymentHandoff{}, NewHTTPError(http.StatusBadGateway, msg)
	}

	sess := model.PaymentSession{
		OrderRef: data.SessionOrderID,
		Amount:   data.Amount,
		Currency: data.Currency,
		Key:      data.Key,
	}
	s = reduce(s, Event{Type: EvPaymentAwaiting, Session: sess})
	if err := u.sessions.Save(ctx, s); err != nil {
		return PaymentHandoff{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return PaymentHandoff{
		Key:      sess.Key,
		Amount:   sess.Amount,
		Currency: sess.Currency,
		OrderRef: sess.OrderRef,
		Prefill: PaymentPrefill{
			Name:  s.Address.FullName,
			Phone: s.Address.Phone,
		},
	}, nil
}

// HandleCallback はウィジェットの終端コールバック1回分を処理する。
func (u *PaymentUsecase) HandleCallback(ctx context.Context, userID int64, id string, in PaymentCallbackInput) (CheckoutDTO, error) {
	s, err := u.findOwned(ctx, userID, id)
	if err != nil {
		return CheckoutDTO{}, err
	}
	if s.Stage != model.StagePayment || s.PaymentState != model.PaymentStateAwaitingAuthorization {
		return CheckoutDTO{}, NewHTTPError(http.StatusConflict, "no authorization in progress")
	}

	switch in.Result {
	case "success":
		return u.verify(ctx, s, in)

	case "failure":
		//プロセッサの理由をそのまま見せる
		msg := in.Reason
		if msg == "" {
			msg = MsgSomethingWentWrong
		}
		s = reduce(s, Event{Type: EvPaymentFailed, Message: msg})

	case "dismiss":
		s = reduce(s, Event{Type: EvPaymentFailed, Message: MsgPaymentCancelled})

	default:
		return CheckoutDTO{}, NewHTTPError(http.StatusBadRequest, "invalid result")
	}

	if err := u.sessions.Save(ctx, s); err != nil {
		return CheckoutDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCheckoutDTO(s), nil
}

// verify は署名と注文参照を検証し、成功でチェックアウトを完了させる。
func (u *PaymentUsecase) verify(ctx context.Context, s model.CheckoutSession, in PaymentCallbackInput) (CheckoutDTO, error) {
	s = reduce(s, Event{Type: EvVerifyStarted})
	if err := u.sessions.Save(ctx, s); err != nil {
		return CheckoutDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ok := in.ProcessorOrderID == s.Payment.OrderRef &&
		u.verifier.Verify(in.ProcessorOrderID, in.PaymentID, in.Signature)

	if !ok {
		u.logger.Warn("payment verification failed",
			zap.String("checkout_id", s.ID),
			zap.String("order_id", s.OrderID))

		s = reduce(s, Event{Type: EvPaymentFailed, Message: MsgVerificationFailed})
		if err := u.sessions.Save(ctx, s); err != nil {
			return CheckoutDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return toCheckoutDTO(s), nil
	}

	s = reduce(s, Event{Type: EvVerified})
	if err := u.sessions.Save(ctx, s); err != nil {
		return CheckoutDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//完了が確定してから通知する
	u.bus.Publish(signal.CartChanged)

	return toCheckoutDTO(s), nil
}

// Retry はFAILEDから同じ注文IDで決済をやり直す。
// tokenValidがfalse（期限切れ・未ログイン）なら決済エラーではなくセッション切れとして返す。
func (u *PaymentUsecase) Retry(ctx context.Context, userID int64, tokenValid bool, id string) (PaymentHandoff, error) {
	if !tokenValid {
		return PaymentHandoff{}, NewHTTPError(http.StatusUnauthorized, MsgSessionExpired)
	}

	s, err := u.findOwned(ctx, userID, id)
	if err != nil {
		return PaymentHandoff{}, err
	}
	if s.Stage != model.StagePayment || !s.PaymentState.CanRetry() {
		return PaymentHandoff{}, NewHTTPError(http.StatusConflict, "nothing to retry")
	}

	return u.Initiate(ctx, id)
}

func (u *PaymentUsecase) findOwned(ctx context.Context, userID int64, id string) (model.CheckoutSession, error) {
	if userID <= 0 {
		return model.CheckoutSession{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	s, err := u.sessions.FindByID(ctx, id)
	if err != nil {
		return model.CheckoutSession{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if s.UserID != userID {
		return model.CheckoutSession{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return s, nil
}
