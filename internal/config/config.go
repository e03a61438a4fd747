package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート

	JWTSecret string // JWT署名シークレット

	ShippingAPIURL   string // 配送系APIのベースURL
	ShippingAPIToken string // 配送系APIのトークン
	OrderAPIURL      string // 注文サービスのベースURL
	CartAPIURL       string // カートサービスのベースURL
	PaymentAPIURL    string // 決済プロセッサのベースURL

	PaymentKeyID     string // 決済プロセッサの公開キー
	PaymentKeySecret string // 決済プロセッサのシークレット（署名検証にも使う）

	//注文作成後、決済開始までの待ち（画面が落ち着くまで）
	PaymentInitDelay time.Duration

	//セッション切れ時にログインへ戻すまでの待ち
	LoginRedirectDelay time.Duration
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		ShippingAPIURL:   os.Getenv("SHIPPING_API_URL"),
		ShippingAPIToken: os.Getenv("SHIPPING_API_TOKEN"),
		OrderAPIURL:      os.Getenv("ORDER_API_URL"),
		CartAPIURL:       os.Getenv("CART_API_URL"),
		PaymentAPIURL:    os.Getenv("PAYMENT_API_URL"),

		PaymentKeyID:     os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret: os.Getenv("PAYMENT_KEY_SECRET"),

		PaymentInitDelay:   durationOr("PAYMENT_INIT_DELAY_MS", 400*time.Millisecond),
		LoginRedirectDelay: durationOr("LOGIN_REDIRECT_DELAY_MS", 1500*time.Millisecond),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ShippingAPIURL == "" {
		return Config{}, fmt.Errorf("SHIPPING_API_URL is required")
	}
	if cfg.OrderAPIURL == "" {
		return Config{}, fmt.Errorf("ORDER_API_URL is required")
	}
	if cfg.CartAPIURL == "" {
		return Config{}, fmt.Errorf("CART_API_URL is required")
	}
	if cfg.PaymentAPIURL == "" {
		return Config{}, fmt.Errorf("PAYMENT_API_URL is required")
	}
	if cfg.PaymentKeyID == "" {
		return Config{}, fmt.Errorf("PAYMENT_KEY_ID is required")
	}
	if cfg.PaymentKeySecret == "" {
		return Config{}, fmt.Errorf("PAYMENT_KEY_SECRET is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
