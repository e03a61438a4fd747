package model

// 配送先住所（チェックアウト中だけ保持する入力値。確定時に1本の文字列へまとめる）
type Address struct {
	//宛名
	FullName string `json:"full_name"`

	//電話番号（10桁）
	Phone string `json:"phone"`

	//番地など
	AddressLine1 string `json:"address_line1"`

	//建物名など（任意）
	AddressLine2 string `json:"address_line2"`

	//市区町村
	City string `json:"city"`

	//州
	State string `json:"state"`

	//郵便番号（6桁）
	PostalCode string `json:"postal_code"`

	//目印（任意）
	Landmark string `json:"landmark"`
}
