package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"app/internal/domain/model"
)

func newSession() model.CheckoutSession {
	return model.CheckoutSession{
		ID:             "c1",
		UserID:         1,
		Stage:          model.StageAddress,
		Serviceability: model.ServiceabilityServiceable,
		PaymentState:   model.PaymentStateIdle,
	}
}

func TestReduce_SubmitStartedSetsLoadingAndClearsError(t *testing.T) {
	s := newSession()
	s.Error = "old error"

	s = reduce(s, Event{Type: EvSubmitStarted, PaymentMethod: model.PaymentMethodCOD})
	assert.True(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Equal(t, model.StageAddress, s.Stage)
}

func TestReduce_CODGoesStraightToSuccess(t *testing.T) {
	s := newSession()
	s = reduce(s, Event{Type: EvSubmitStarted, PaymentMethod: model.PaymentMethodCOD})
	s = reduce(s, Event{Type: EvOrderCreated, OrderID: "o1", Amount: 1089})

	assert.Equal(t, model.StageSuccess, s.Stage)
	assert.False(t, s.Loading)
	assert.Equal(t, "o1", s.OrderID)
}

func TestReduce_PrepaidEntersPayment(t *testing.T) {
	s := newSession()
	s = reduce(s, Event{Type: EvSubmitStarted, PaymentMethod: model.PaymentMethodPrepaid})
	s = reduce(s, Event{Type: EvOrderCreated, OrderID: "o1", Amount: 999})

	assert.Equal(t, model.StagePayment, s.Stage)
	assert.Equal(t, model.PaymentStateIdle, s.PaymentState)
}

func TestReduce_OrderFailedStaysOnAddress(t *testing.T) {
	s := newSession()
	s = reduce(s, Event{Type: EvSubmitStarted, PaymentMethod: model.PaymentMethodPrepaid})
	s = reduce(s, Event{Type: EvOrderFailed, Message: "out of stock"})

	assert.Equal(t, model.StageAddress, s.Stage)
	assert.False(t, s.Loading)
	assert.Equal(t, "out of stock", s.Error)
}

func TestReduce_PaymentFlowHappyPath(t *testing.T) {
	s := newSession()
	s = reduce(s, Event{Type: EvSubmitStarted, PaymentMethod: model.PaymentMethodPrepaid})
	s = reduce(s, Event{Type: EvOrderCreated, OrderID: "o1", Amount: 999})

	s = reduce(s, Event{Type: EvPaymentInitStarted})
	assert.Equal(t, model.PaymentStateInitiating, s.PaymentState)
	assert.True(t, s.Loading)

	sess := model.PaymentSession{OrderRef: "pay_1", Amount: 999, Currency: "INR", Key: "k"}
	s = reduce(s, Event{Type: EvPaymentAwaiting, Session: sess})
	assert.Equal(t, model.PaymentStateAwaitingAuthorization, s.PaymentState)
	assert.False(t, s.Loading)
	assert.Equal(t, sess, s.Payment)

	s = reduce(s, Event{Type: EvVerifyStarted})
	assert.Equal(t, model.PaymentStateVerifying, s.PaymentState)
	assert.True(t, s.Loading)

	s = reduce(s, Event{Type: EvVerified})
	assert.Equal(t, model.PaymentStateVerified, s.PaymentState)
	assert.Equal(t, model.StageSuccess, s.Stage)
	assert.False(t, s.Loading)
}

func TestReduce_RetryReplacesPriorSession(t *testing.T) {
	s := newSession()
	s.Stage = model.StagePayment
	s.PaymentState = model.PaymentStateFailed
	s.Error = "declined"
	s.Payment = model.PaymentSession{OrderRef: "pay_old"}

	s = reduce(s, Event{Type: EvPaymentInitStarted})
	assert.Equal(t, model.PaymentStateInitiating, s.PaymentState)
	assert.Empty(t, s.Error)
	assert.Equal(t, model.PaymentSession{}, s.Payment)
	//Paymentの自己ループで、段階は戻らない
	assert.Equal(t, model.StagePayment, s.Stage)
}

func TestReduce_NoBackwardTransitions(t *testing.T) {
	s := newSession()
	s.Stage = model.StageSuccess

	before := s
	for _, ev := range []Event{
		{Type: EvSubmitStarted, PaymentMethod: model.PaymentMethodCOD},
		{Type: EvOrderFailed, Message: "x"},
		{Type: EvPaymentInitStarted},
		{Type: EvVerified},
	} {
		s = reduce(s, ev)
		assert.Equal(t, before, s, string(ev.Type))
	}
}

func TestReduce_VerifiedOnlyFromVerifying(t *testing.T) {
	s := newSession()
	s.Stage = model.StagePayment
	s.PaymentState = model.PaymentStateAwaitingAuthorization

	got := reduce(s, Event{Type: EvVerified})
	assert.Equal(t, s, got)
}
