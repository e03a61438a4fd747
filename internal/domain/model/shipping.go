package model

// 郵便番号の配送可否
type Serviceability string

const (
	//郵便番号が6桁に達していない（未判定）
	ServiceabilityUnknown Serviceability = "UNKNOWN"

	ServiceabilityServiceable    Serviceability = "SERVICEABLE"
	ServiceabilityNotServiceable Serviceability = "NOT_SERVICEABLE"
)

// 配送業者
type Courier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// 配送方法の選択肢（業者ごとの見積もり、またはフォールバック）
type ShippingOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CourierName string `json:"courier_name"`

	//送料
	Rate int64 `json:"rate"`

	//お届け目安（日数レンジ）
	EtaDays string `json:"eta_days"`
}

// 見積もりが1件も取れないときに必ず使える無料の標準配送
func FallbackShippingOption() ShippingOption {
	return ShippingOption{
		ID:          "standard",
		Name:        "Standard Shipping",
		CourierName: "Standard",
		Rate:        0,
		EtaDays:     "5-7",
	}
}
