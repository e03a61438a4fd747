package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// セッション切れ時はログインへ戻す案内を付ける
type SessionExpiredResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
	AfterMS  int64  `json:"after_ms"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /checkout のAPI
type CheckoutHandler struct {
	uc  *usecase.CheckoutUsecase
	pay *usecase.PaymentUsecase
	cfg config.Config
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, pay *usecase.PaymentUsecase, cfg config.Config) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, pay: pay, cfg: cfg}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(h.cfg))

	g.POST("", h.open)
	g.GET("/:id", h.get)
	g.PATCH("/:id/address", h.updateAddress)
	g.POST("/:id/shipping", h.selectOption)
	g.POST("/:id/submit", h.submit)
	g.POST("/:id/payment/callback", h.paymentCallback)
	g.POST("/:id/payment/retry", h.paymentRetry)
	g.DELETE("/:id", h.close)
}

func (h *CheckoutHandler) open(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Open(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) get(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) updateAddress(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.AddressUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateAddress(c.Request().Context(), userID, getRawToken(c), c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type selectOptionRequest struct {
	OptionID string `json:"option_id"`
}

func (h *CheckoutHandler) selectOption(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req selectOptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SelectOption(c.Request().Context(), userID, c.Param("id"), req.OptionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type submitRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *CheckoutHandler) submit(c echo.Context) error {
	//未ログインはここでは汎用エラーではなく「please login」
	userID, ok := getUserID(c)
	token := getRawToken(c)
	if !ok || token == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: usecase.MsgPleaseLogin})
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.ProceedToPayment(c.Request().Context(), userID, token, c.Param("id"), model.PaymentMethod(req.PaymentMethod))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) paymentCallback(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.PaymentCallbackInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.pay.HandleCallback(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) paymentRetry(c echo.Context) error {
	userID, idOK := getUserID(c)
	tokenValid := tokenState(c) == middleware.TokenOK

	//トークン切れは決済エラーではなくセッション切れとして返し、ログインへ戻す
	if !idOK || !tokenValid {
		return c.JSON(http.StatusUnauthorized, SessionExpiredResponse{
			Error:    usecase.MsgSessionExpired,
			Redirect: "/login",
			AfterMS:  h.cfg.LoginRedirectDelay.Milliseconds(),
		})
	}

	out, err := h.pay.Retry(c.Request().Context(), userID, tokenValid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) close(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.Close(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func getUserID(c echo.Context) (int64, bool) {
	if tokenState(c) != middleware.TokenOK {
		return 0, false
	}
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	return id, ok && id > 0
}

func getRawToken(c echo.Context) string {
	v, _ := c.Get(middleware.CtxRawTokenKey).(string)
	return v
}

func tokenState(c echo.Context) middleware.TokenState {
	v, _ := c.Get(middleware.CtxTokenStateKey).(middleware.TokenState)
	return v
}
