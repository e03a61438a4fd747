package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// ユーザーに見せるメッセージ
const (
	//未ログインで注文しようとした
	MsgPleaseLogin = "please login"

	//リトライ時にトークンが切れていた（ログインへ戻す）
	MsgSessionExpired = "session expired"

	//サーバーがメッセージを返さなかったときの汎用文言
	MsgSomethingWentWrong = "something went wrong, please try again"

	//ウィジェットをユーザーが閉じた
	MsgPaymentCancelled = "payment cancelled, you can retry"

	MsgVerificationFailed = "payment verification failed"

	MsgCartEmpty = "cart empty"
)
