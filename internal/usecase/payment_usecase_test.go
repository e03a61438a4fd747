package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"app/internal/domain/model"
	"app/internal/gateway"
	"app/internal/signal"
)

// 決済待ちのセッションを用意する
func (f *fixture) seedAwaiting(t *testing.T) model.CheckoutSession {
	t.Helper()
	s := model.CheckoutSession{
		ID:            "c1",
		UserID:        1,
		Stage:         model.StagePayment,
		Address:       validAddress(),
		PaymentMethod: model.PaymentMethodPrepaid,
		OrderID:       "o1",
		OrderAmount:   999,
		PaymentState:  model.PaymentStateAwaitingAuthorization,
		Payment:       model.PaymentSession{OrderRef: "pay_1", Amount: 999, Currency: "INR", Key: "key1"},
	}
	require.NoError(t, f.sessions.Create(context.Background(), s))
	return s
}

func TestInitiate_FailureIsRetryable(t *testing.T) {
	f := newFixture()
	s := f.seedAwaiting(t)
	s.PaymentState = model.PaymentStateIdle
	s.Payment = model.PaymentSession{}
	require.NoError(t, f.sessions.Save(context.Background(), s))

	f.payGw.On("CreateSession", mock.Anything, "o1", int64(999)).
		Return(gateway.PaymentSessionData{}, &gateway.APIError{Message: "processor unavailable"})

	_, err := f.pay.Initiate(context.Background(), "c1")
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "processor unavailable", he.Message)

	got, ferr := f.sessions.FindByID(context.Background(), "c1")
	require.NoError(t, ferr)
	//IDLEには戻らず、FAILEDからリトライできる
	assert.Equal(t, model.PaymentStateFailed, got.PaymentState)
	assert.True(t, got.PaymentState.CanRetry())
	assert.False(t, got.Loading)
	assert.Equal(t, "o1", got.OrderID)
}

func TestHandleCallback_Dismiss(t *testing.T) {
	f := newFixture()
	f.seedAwaiting(t)

	out, err := f.pay.HandleCallback(context.Background(), 1, "c1", PaymentCallbackInput{Result: "dismiss"})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStateFailed, out.PaymentState)
	assert.Equal(t, MsgPaymentCancelled, out.Error)
	assert.Equal(t, model.StagePayment, out.Stage)
	assert.Empty(t, f.bus.published())
}

func TestHandleCallback_FailureReasonVerbatim(t *testing.T) {
	f := newFixture()
	f.seedAwaiting(t)

	out, err := f.pay.HandleCallback(context.Background(), 1, "c1", PaymentCallbackInput{
		Result: "failure",
		Reason: "card declined by issuer",
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStateFailed, out.PaymentState)
	assert.Equal(t, "card declined by issuer", out.Error)
}

func TestHandleCallback_SuccessVerifies(t *testing.T) {
	f := newFixture()
	f.seedAwaiting(t)

	sig := f.verifier.Sign("pay_1", "p_99")
	out, err := f.pay.HandleCallback(context.Background(), 1, "c1", PaymentCallbackInput{
		Result:           "success",
		ProcessorOrderID: "pay_1",
		PaymentID:        "p_99",
		Signature:        sig,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStateVerified, out.PaymentState)
	assert.Equal(t, model.StageSuccess, out.Stage)
	assert.Empty(t, out.Error)
	assert.Equal(t, []string{signal.CartChanged}, f.bus.published())
}

func TestHandleCallback_BadSignature(t *testing.T) {
	f := newFixture()
	f.seedAwaiting(t)

	out, err := f.pay.HandleCallback(context.Background(), 1, "c1", PaymentCallbackInput{
		Result:           "success",
		ProcessorOrderID: "pay_1",
		PaymentID:        "p_99",
		Signature:        "forged",
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStateFailed, out.PaymentState)
	assert.Equal(t, MsgVerificationFailed, out.Error)
	assert.Empty(t, f.bus.published())
}

func TestHandleCallback_MismatchedOrderRef(t *testing.T) {
	f := newFixture()
	f.seedAwaiting(t)

	sig := f.verifier.Sign("pay_other", "p_99")
	out, err := f.pay.HandleCallback(context.Background(), 1, "c1", PaymentCallbackInput{
		Result:           "success",
		ProcessorOrderID: "pay_other",
		PaymentID:        "p_99",
		Signature:        sig,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStateFailed, out.PaymentState)
}

func TestHandleCallback_NoAuthorizationInProgress(t *testing.T) {
	f := newFixture()
	s := f.seedAwaiting(t)
	s.PaymentState = model.PaymentStateFailed
	require.NoError(t, f.sessions.Save(context.Background(), s))

	_, err := f.pay.HandleCallback(context.Background(), 1, "c1", PaymentCallbackInput{Result: "dismiss"})
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}

func TestRetry_SameOrderID(t *testing.T) {
	f := newFixture()
	f.seedAwaiting(t)

	//閉じられて失敗した後にリトライする
	_, err := f.pay.HandleCallback(context.Background(), 1, "c1", PaymentCallbackInput{Result: "dismiss"})
	require.NoError(t, err)

	f.payGw.On("CreateSession", mock.Anything, "o1", int64(999)).
		Return(gateway.PaymentSessionData{SessionOrderID: "pay_2", Amount: 999, Currency: "INR", Key: "key1"}, nil)

	handoff, err := f.pay.Retry(context.Background(), 1, true, "c1")
	require.NoError(t, err)
	assert.Equal(t, "pay_2", handoff.OrderRef)

	got, ferr := f.sessions.FindByID(context.Background(), "c1")
	require.NoError(t, ferr)
	//注文は作り直されない
	assert.Equal(t, "o1", got.OrderID)
	assert.Equal(t, model.PaymentStateAwaitingAuthorization, got.PaymentState)
	//前のセッション状態は置き換わっている
	assert.Equal(t, "pay_2", got.Payment.OrderRef)

	f.payGw.AssertNumberOfCalls(t, "CreateSession", 1)
}

func TestRetry_ExpiredTokenIsSessionExpired(t *testing.T) {
	f := newFixture()
	s := f.seedAwaiting(t)
	s.PaymentState = model.PaymentStateFailed
	require.NoError(t, f.sessions.Save(context.Background(), s))

	_, err := f.pay.Retry(context.Background(), 1, false, "c1")
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
	assert.Equal(t, MsgSessionExpired, he.Message)

	f.payGw.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetry_NothingToRetry(t *testing.T) {
	f := newFixture()
	f.seedAwaiting(t)

	//AWAITINGのままではリトライできない
	_, err := f.pay.Retry(context.Background(), 1, true, "c1")
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}
