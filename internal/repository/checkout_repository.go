package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// チェックアウトセッションを保存・取得する窓口
type CheckoutSessionRepository interface {
	Create(ctx context.Context, s model.CheckoutSession) error

	FindByID(ctx context.Context, id string) (model.CheckoutSession, error)

	//セッション全体を上書き保存する
	Save(ctx context.Context, s model.CheckoutSession) error

	//世代が一致するときだけapplyを適用して保存する。
	//遅れて完了した配送可否チェックの結果を捨てるために使う。
	//適用できたらtrueを返す。
	UpdateIfGeneration(ctx context.Context, id string, generation int64, apply func(*model.CheckoutSession)) (bool, error)

	Delete(ctx context.Context, id string) error
}
