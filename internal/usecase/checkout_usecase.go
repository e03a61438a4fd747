package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"app/internal/domain/model"
	"app/internal/gateway"
	repo "app/internal/repository"
	"app/internal/signal"
)

// 見積もりに使う梱包重量。カートが取れないときの既定値。
const defaultWeightGrams int64 = 500

type CheckoutDTO struct {
	ID            string                 `json:"id"`
	Stage         model.Stage            `json:"stage"`
	Loading       bool                   `json:"loading"`
	Error         string                 `json:"error,omitempty"`
	PaymentMethod model.PaymentMethod    `json:"payment_method,omitempty"`
	OrderID       string                 `json:"order_id,omitempty"`
	OrderAmount   int64                  `json:"order_amount,omitempty"`
	Address       model.Address          `json:"address"`
	Service       model.Serviceability   `json:"serviceability"`
	Options       []model.ShippingOption `json:"shipping_options"`
	SelectedID    string                 `json:"selected_option_id,omitempty"`
	PaymentState  model.PaymentState     `json:"payment_state"`
}

type AddressUpdateRequest struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Landmark     string `json:"landmark"`
}

type SubmitOutput struct {
	Checkout CheckoutDTO     `json:"checkout"`
	Handoff  *PaymentHandoff `json:"payment,omitempty"`
}

// チェックアウト全体を進める
type CheckoutUsecase struct {
	sessions repo.CheckoutSessionRepository
	shipping *ShippingUsecase
	payments *PaymentUsecase
	carts    gateway.CartGateway
	orders   gateway.OrderGateway
	bus      signal.Bus
	logger   *zap.Logger

	//注文作成後、決済開始までの待ち
	initDelay time.Duration
}

func NewCheckoutUsecase(
	sessions repo.CheckoutSessionRepository,
	shipping *ShippingUsecase,
	payments *PaymentUsecase,
	carts gateway.CartGateway,
	orders gateway.OrderGateway,
	bus signal.Bus,
	logger *zap.Logger,
	initDelay time.Duration,
) *CheckoutUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutUsecase{
		sessions:  sessions,
		shipping:  shipping,
		payments:  payments,
		carts:     carts,
		orders:    orders,
		bus:       bus,
		logger:    logger,
		initDelay: initDelay,
	}
}

// Open はチェックアウトを開く。毎回まっさらなセッションを作る。
func (u *CheckoutUsecase) Open(ctx context.Context, userID int64) (CheckoutDTO, error) {
	if userID <= 0 {
		return CheckoutDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	s := model.CheckoutSession{
		ID:             uuid.NewString(),
		UserID:         userID,
		Stage:          model.StageAddress,
		Serviceability: model.ServiceabilityUnknown,
		PaymentState:   model.PaymentStateIdle,
	}
	if err := u.sessions.Create(ctx, s); err != nil {
		return CheckoutDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCheckoutDTO(s), nil
}

func (u *CheckoutUsecase) Get(ctx context.Context, userID int64, id string) (CheckoutDTO, error) {
	s, err := u.findOwned(ctx, userID, id)
	if err != nil {
		return CheckoutDTO{}, err
	}
	return toCheckoutDTO(s), nil
}

// UpdateAddress は住所フォームの内容を反映する。
// 郵便番号が変わったら配送可否と選択肢をリセットし、6桁なら再判定する。
func (u *CheckoutUsecase) UpdateAddress(ctx context.Context, userID int64, token string, id string, req AddressUpdateRequest) (CheckoutDTO, error) {
	s, err := u.findOwned(ctx, userID, id)
	if err != nil {
		return CheckoutDTO{}, err
	}
	if s.Stage != model.StageAddress {
		return CheckoutDTO{}, NewHTTPError(http.StatusConflict, "address can no longer be changed")
	}

	postalChanged := req.PostalCode != s.Address.PostalCode

	s.Address = model.Address{
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Landmark:     req.Landmark,
	}

	if postalChanged {
		//古い判定結果が適用されないよう世代を進める
		s.PostalGeneration++
		s.Serviceability = model.ServiceabilityUnknown
		s.ShippingOptions = nil
		s.SelectedOptionID = ""
	}

	if err := u.sessions.Save(ctx, s); err != nil {
		return CheckoutDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if postalChanged && len(req.PostalCode) == 6 {
		u.refreshShipping(ctx, token, s.ID, s.PostalGeneration, req.PostalCode)

		//反映後の状態を読み直す
		s, err = u.findOwned(ctx, userID, id)
		if err != nil {
			return CheckoutDTO{}, err
		}
	}

	return toCheckoutDTO(s), nil
}

// refreshShipping は配送可否→選択肢の順で解決し、世代が一致するときだけ適用する。
// 古い郵便番号の結果は黙って捨てる。
func (u *CheckoutUsecase) refreshShipping(ctx context.Context, token string, id string, generation int64, postalCode string) {
	svc := u.shipping.CheckServiceability(ctx, postalCode)

	var opts []model.ShippingOption
	if svc == model.ServiceabilityServiceable {
		weight := defaultWeightGrams
		if cart, err := u.carts.GetCart(ctx, token); err == nil && cart.WeightGrams > 0 {
			weight = cart.WeightGrams
		}
		opts = u.shipping.ResolveOptions(ctx, postalCode, weight)
	}

	applied, err := u.sessions.UpdateIfGeneration(ctx, id, generation, func(s *model.CheckoutSession) {
		s.Serviceability = svc
		s.ShippingOptions = opts
		s.SelectedOptionID = ""
		if len(opts) > 0 {
			//最初に取れた選択肢を自動選択する
			s.SelectedOptionID = opts[0].ID
		}
	})
	if err != nil {
		u.logger.Warn("shipping refresh save failed", zap.String("checkout_id", id), zap.Error(err))
		return
	}
	if !applied {
		u.logger.Debug("superseded shipping result discarded",
			zap.String("checkout_id", id),
			zap.String("postal_code", postalCode))
	}
}

// SelectOption は配送方法を選び直す
func (u *CheckoutUsecase) SelectOption(ctx context.Context, userID int64, id string, optionID string) (CheckoutDTO, error) {
	s, err := u.findOwned(ctx, userID, id)
	if err != nil {
		return CheckoutDTO{}, err
	}

	found := false
	for _, opt := range s.ShippingOptions {
		if opt.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return CheckoutDTO{}, NewHTTPError(http.StatusBadRequest, "unknown shipping option")
	}

	s.SelectedOptionID = optionID
	if err := u.sessions.Save(ctx, s); err != nil {
		return CheckoutDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toCheckoutDTO(s), nil
}

// ProceedToPayment は住所確定から注文作成までを進め、
// 代引きなら完了、事前決済なら決済開始まで行う。
func (u *CheckoutUsecase) ProceedToPayment(ctx context.Context, userID int64, token string, id string, method model.PaymentMethod) (SubmitOutput, error) {
	if token == "" {
		return SubmitOutput{}, NewHTTPError(http.StatusUnauthorized, MsgPleaseLogin)
	}
	if !method.Valid() {
		return SubmitOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	s, err := u.findOwned(ctx, userID, id)
	if err != nil {
		return SubmitOutput{}, err
	}
	if s.Stage != model.StageAddress {
		return SubmitOutput{}, NewHTTPError(http.StatusConflict, "already submitted")
	}

	if verr := ValidateAddress(s.Address, s.Serviceability, s.SelectedOptionID != ""); verr != nil {
		return SubmitOutput{}, NewHTTPError(http.StatusBadRequest, verr.Error())
	}

	cart, err := u.carts.GetCart(ctx, token)
	if err != nil {
		msg := gateway.APIErrorMessage(err)
		if msg == "" {
			msg = MsgSomethingWentWrong
		}
		return SubmitOutput{}, NewHTTPError(http.StatusBadGateway, msg)
	}
	if cart.Subtotal <= 0 {
		return SubmitOutput{}, NewHTTPError(http.StatusBadRequest, MsgCartEmpty)
	}

	amount := model.OrderAmount(cart.Subtotal, method)

	s = reduce(s, Event{Type: EvSubmitStarted, PaymentMethod: method})
	if err := u.sessions.Save(ctx, s); err != nil {
		return SubmitOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	created, err := u.orders.CreateOrder(ctx, FormatShippingAddress(s.Address), method, amount, token)
	if err != nil {
		msg := gateway.APIErrorMessage(err)
		if msg == "" {
			msg = MsgSomethingWentWrong
		}
		u.logger.Warn("order creation failed", zap.String("checkout_id", id), zap.Error(err))

		s = reduce(s, Event{Type: EvOrderFailed, Message: msg})
		if err := u.sessions.Save(ctx, s); err != nil {
			return SubmitOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return SubmitOutput{}, NewHTTPError(http.StatusBadGateway, msg)
	}

	s = reduce(s, Event{Type: EvOrderCreated, OrderID: created.OrderID, Amount: amount})
	if err := u.sessions.Save(ctx, s); err != nil {
		return SubmitOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if method == model.PaymentMethodCOD {
		//遷移が確定してから通知する
		u.bus.Publish(signal.CartChanged)
		return SubmitOutput{Checkout: toCheckoutDTO(s)}, nil
	}

	//画面がPaymentへ切り替わるのを待ってから決済を開始する
	if err := sleepOrDone(ctx, u.initDelay); err != nil {
		return SubmitOutput{Checkout: toCheckoutDTO(s)}, nil
	}

	handoff, err := u.payments.Initiate(ctx, s.ID)
	if err != nil {
		//注文は作成済みなのでエラーにはせず、リトライ可能な状態で返す
		s, ferr := u.findOwned(ctx, userID, id)
		if ferr != nil {
			return SubmitOutput{}, ferr
		}
		return SubmitOutput{Checkout: toCheckoutDTO(s)}, nil
	}

	s, err = u.findOwned(ctx, userID, id)
	if err != nil {
		return SubmitOutput{}, err
	}
	return SubmitOutput{Checkout: toCheckoutDTO(s), Handoff: &handoff}, nil
}

// Close はチェックアウトを閉じる。非同期ステップの実行中は閉じられない。
func (u *CheckoutUsecase) Close(ctx context.Context, userID int64, id string) error {
	s, err := u.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if s.Loading {
		return NewHTTPError(http.StatusConflict, "request in flight")
	}
	if err := u.sessions.Delete(ctx, s.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CheckoutUsecase) findOwned(ctx context.Context, userID int64, id string) (model.CheckoutSession, error) {
	if userID <= 0 {
		return model.CheckoutSession{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	s, err := u.sessions.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CheckoutSession{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.CheckoutSession{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人のセッションは存在しない扱い
	if s.UserID != userID {
		return model.CheckoutSession{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return s, nil
}

func toCheckoutDTO(s model.CheckoutSession) CheckoutDTO {
	opts := s.ShippingOptions
	if opts == nil {
		opts = []model.ShippingOption{}
	}
	return CheckoutDTO{
		ID:            s.ID,
		Stage:         s.Stage,
		Loading:       s.Loading,
		Error:         s.Error,
		PaymentMethod: s.PaymentMethod,
		OrderID:       s.OrderID,
		OrderAmount:   s.OrderAmount,
		Address:       s.Address,
		Service:       s.Serviceability,
		Options:       opts,
		SelectedID:    s.SelectedOptionID,
		PaymentState:  s.PaymentState,
	}
}
