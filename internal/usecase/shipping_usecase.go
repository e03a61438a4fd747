package usecase

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"app/internal/domain/model"
	"app/internal/gateway"
)

// 配送可否と送料見積もりをまとめる
type ShippingUsecase struct {
	shipping gateway.ShippingGateway
	logger   *zap.Logger
}

func NewShippingUsecase(shipping gateway.ShippingGateway, logger *zap.Logger) *ShippingUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingUsecase{shipping: shipping, logger: logger}
}

// CheckServiceability は郵便番号の配送可否を問い合わせる。
// 6桁でなければ問い合わせずにUNKNOWNを返す。
// プロバイダのエラーは配送不可と同じ扱い（配送できる保証がないまま進めない）。
func (u *ShippingUsecase) CheckServiceability(ctx context.Context, postalCode string) model.Serviceability {
	if len(postalCode) != 6 {
		return model.ServiceabilityUnknown
	}

	ok, err := u.shipping.CheckServiceability(ctx, postalCode)
	if err != nil {
		u.logger.Warn("serviceability check failed",
			zap.String("postal_code", postalCode),
			zap.Error(err))
		return model.ServiceabilityNotServiceable
	}
	if !ok {
		return model.ServiceabilityNotServiceable
	}
	return model.ServiceabilityServiceable
}

// ResolveOptions は業者ごとの見積もりを並行で集めて選択肢を作る。
// 必ず1件以上返す（全滅ならフォールバックの無料標準配送）。
// 配送は絶対にチェックアウトを止めない方針。
func (u *ShippingUsecase) ResolveOptions(ctx context.Context, postalCode string, weightGrams int64) []model.ShippingOption {
	couriers, err := u.shipping.ListCouriers(ctx)
	if err != nil {
		u.logger.Warn("courier list fetch failed", zap.Error(err))
		return []model.ShippingOption{model.FallbackShippingOption()}
	}
	if len(couriers) == 0 {
		return []model.ShippingOption{model.FallbackShippingOption()}
	}

	//依頼した位置と同じ位置へ結果を入れて、完了順に左右されないようにする
	quotes := make([]*gateway.RateQuote, len(couriers))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range couriers {
		g.Go(func() error {
			q, err := u.shipping.QuoteRate(gctx, c.ID, postalCode, weightGrams)
			if err != nil {
				//1社の失敗はその業者を外すだけ
				u.logger.Warn("rate quote failed",
					zap.Int64("courier_id", c.ID),
					zap.String("courier", c.Name),
					zap.Error(err))
				return nil
			}
			quotes[i] = &q
			return nil
		})
	}
	//失敗は各goroutine内で握っているのでエラーは返らない
	_ = g.Wait()

	opts := make([]model.ShippingOption, 0, len(quotes))
	for _, q := range quotes {
		if q == nil || q.Rate < 0 {
			continue
		}
		opts = append(opts, model.ShippingOption{
			ID:          quoteOptionID(q.CourierID),
			Name:        q.CourierName,
			CourierName: q.CourierName,
			Rate:        q.Rate,
			EtaDays:     q.EtaDays,
		})
	}

	if len(opts) == 0 {
		return []model.ShippingOption{model.FallbackShippingOption()}
	}
	return opts
}

func quoteOptionID(courierID int64) string {
	return "courier-" + strconv.FormatInt(courierID, 10)
}
