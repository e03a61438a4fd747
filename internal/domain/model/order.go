package model

type PaymentMethod string

const (
	//代金引換
	PaymentMethodCOD PaymentMethod = "cod"

	//事前オンライン決済
	PaymentMethodPrepaid PaymentMethod = "prepaid"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodPrepaid
}

// 代引き手数料
const CODFee int64 = 90

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
)

// 注文。作成はサーバー側で行われ、クライアントはIDと金額と状態だけを持つ。
// 作成後は不変（リトライは同じ注文IDに対する新しい決済試行）。
type Order struct {
	ID     string      `json:"id"`
	Amount int64       `json:"amount"`
	Status OrderStatus `json:"status"`
}

// 支払方法に応じた請求額。代引きは手数料を上乗せ、事前決済は小計のまま。
func OrderAmount(subtotal int64, method PaymentMethod) int64 {
	if method == PaymentMethodCOD {
		return subtotal + CODFee
	}
	return subtotal
}
