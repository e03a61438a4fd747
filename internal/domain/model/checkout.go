package model

import "time"

// チェックアウトの段階（前進のみ。Paymentだけリトライで自己ループする）
type Stage int

const (
	StageAddress Stage = 1
	StagePayment Stage = 2
	StageSuccess Stage = 3
)

// チェックアウトセッション。開くたびに初期値へリセットされる。
type CheckoutSession struct {
	ID     string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID int64  `gorm:"not null;index" json:"user_id"`

	Stage Stage `gorm:"not null;default:1" json:"stage"`

	//非同期ステップ実行中フラグ（注文作成・決済開始・検証の間だけtrue）
	Loading bool `gorm:"not null;default:false" json:"loading"`

	//現在のエラー1件だけを保持する
	Error string `gorm:"type:varchar(500)" json:"error,omitempty"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(10)" json:"payment_method"`

	OrderID     string `gorm:"type:varchar(64)" json:"order_id,omitempty"`
	OrderAmount int64  `json:"order_amount"`

	Address Address `gorm:"embedded;embeddedPrefix:addr_" json:"address"`

	Serviceability Serviceability `gorm:"type:varchar(20);not null;default:UNKNOWN" json:"serviceability"`

	//郵便番号が変わるたびに増える。遅れて届いた判定結果の破棄に使う
	PostalGeneration int64 `gorm:"not null;default:0" json:"-"`

	ShippingOptions []ShippingOption `gorm:"serializer:json" json:"shipping_options"`

	//選択中の配送方法のID（optionsが空でなければ必ず1つ選ばれている）
	SelectedOptionID string `gorm:"type:varchar(64)" json:"selected_option_id,omitempty"`

	PaymentState PaymentState   `gorm:"type:varchar(30);not null;default:IDLE" json:"payment_state"`
	Payment      PaymentSession `gorm:"embedded;embeddedPrefix:pay_" json:"payment"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 選択中の配送方法を返す
func (s *CheckoutSession) SelectedOption() (ShippingOption, bool) {
	for _, opt := range s.ShippingOptions {
		if opt.ID == s.SelectedOptionID {
			return opt, true
		}
	}
	return ShippingOption{}, false
}
