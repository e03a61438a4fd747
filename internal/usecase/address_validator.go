package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"app/internal/domain/model"
)

// 住所バリデーションの失敗。Fieldは機械名、Messageは表示用。
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

var (
	phoneRe  = regexp.MustCompile(`^\d{10}$`)
	postalRe = regexp.MustCompile(`^\d{6}$`)

	//camelCaseを表示用に区切る（addressLine1 → address line 1）
	camelRe = regexp.MustCompile(`([a-z])([A-Z0-9])`)
)

func humanizeField(name string) string {
	return strings.ToLower(camelRe.ReplaceAllString(name, "$1 $2"))
}

// 必須項目（この順に検査し、最初の失敗で止める）
var requiredAddressFields = []struct {
	name string
	get  func(model.Address) string
}{
	{"fullName", func(a model.Address) string { return a.FullName }},
	{"phone", func(a model.Address) string { return a.Phone }},
	{"addressLine1", func(a model.Address) string { return a.AddressLine1 }},
	{"city", func(a model.Address) string { return a.City }},
	{"state", func(a model.Address) string { return a.State }},
	{"postalCode", func(a model.Address) string { return a.PostalCode }},
}

// ValidateAddress は住所・配送可否・配送方法の選択状態から注文へ進めるか判定する。
// 純粋関数で副作用はない。
func ValidateAddress(addr model.Address, svc model.Serviceability, hasSelectedOption bool) error {
	for _, f := range requiredAddressFields {
		if strings.TrimSpace(f.get(addr)) == "" {
			return &FieldError{
				Field:   f.name,
				Message: fmt.Sprintf("%s is required", humanizeField(f.name)),
			}
		}
	}

	if !phoneRe.MatchString(strings.TrimSpace(addr.Phone)) {
		return &FieldError{Field: "phone", Message: "enter a valid 10-digit phone number"}
	}

	if !postalRe.MatchString(strings.TrimSpace(addr.PostalCode)) {
		return &FieldError{Field: "postalCode", Message: "enter a valid 6-digit pincode"}
	}

	//配送不可が確定しているなら進めない
	if svc == model.ServiceabilityNotServiceable {
		return &FieldError{Field: "postalCode", Message: "delivery is not available for this pincode"}
	}

	//未判定かつ配送方法も未選択なら進めない
	if svc == model.ServiceabilityUnknown && !hasSelectedOption {
		return &FieldError{Field: "postalCode", Message: "enter a valid pincode"}
	}

	//配送可で選択肢がまだ無い場合は、無料の標準配送が使える前提で通す
	return nil
}

// FormatShippingAddress は注文作成に渡す1本の住所文字列を作る。
// 空の部分は出力しない。
func FormatShippingAddress(a model.Address) string {
	parts := []string{
		strings.TrimSpace(a.FullName),
		strings.TrimSpace(a.Phone),
		strings.TrimSpace(a.AddressLine1),
	}

	if v := strings.TrimSpace(a.AddressLine2); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(a.Landmark); v != "" {
		parts = append(parts, "Landmark: "+v)
	}

	parts = append(parts, fmt.Sprintf("%s, %s - %s",
		strings.TrimSpace(a.City),
		strings.TrimSpace(a.State),
		strings.TrimSpace(a.PostalCode),
	))

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
