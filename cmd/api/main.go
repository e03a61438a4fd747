package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraGw "app/internal/infra/gateway"
	infraRepo "app/internal/infra/repository"
	"app/internal/signal"
	"app/internal/usecase"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(&model.CheckoutSession{}); err != nil {
		panic(err)
	}

	sessions := infraRepo.NewCheckoutGormRepository(gormDB)

	//外部サービスクライアント
	hc := &http.Client{Timeout: 10 * time.Second}
	shippingAPI := infraGw.NewShippingAPI(cfg.ShippingAPIURL, cfg.ShippingAPIToken, hc)
	orderAPI := infraGw.NewOrderAPI(cfg.OrderAPIURL, hc)
	cartAPI := infraGw.NewCartAPI(cfg.CartAPIURL, hc)
	paymentAPI := infraGw.NewPaymentAPI(cfg.PaymentAPIURL, cfg.PaymentKeyID, cfg.PaymentKeySecret, hc)

	//通知バス（バッジ側が購読する。ここではログだけ）
	hub := signal.NewHub()
	hub.Subscribe(signal.CartChanged, func() {
		logger.Info("signal", zap.String("name", signal.CartChanged))
	})
	hub.Subscribe(signal.WishlistChanged, func() {
		logger.Info("signal", zap.String("name", signal.WishlistChanged))
	})

	//Usecase生成
	shippingUC := usecase.NewShippingUsecase(shippingAPI, logger)
	verifier := usecase.NewHMACVerifier(cfg.PaymentKeySecret)
	paymentUC := usecase.NewPaymentUsecase(sessions, paymentAPI, verifier, hub, logger)
	checkoutUC := usecase.NewCheckoutUsecase(
		sessions, shippingUC, paymentUC, cartAPI, orderAPI, hub, logger, cfg.PaymentInitDelay,
	)

	//Handler生成
	checkoutH := handler.NewCheckoutHandler(checkoutUC, paymentUC, cfg)

	e := echo.New()
	e.HideBanner = true
	checkoutH.RegisterRoutes(e)

	addr := ":" + cfg.Port
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
