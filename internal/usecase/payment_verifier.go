package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// 決済プロセッサの署名を検証する
type SignatureVerifier interface {
	Verify(orderRef string, paymentID string, signature string) bool
}

// プロセッサのシークレットによるHMAC-SHA256検証。
// 署名対象は "orderRef|paymentID"。
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(orderRef string, paymentID string, signature string) bool {
	if orderRef == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := v.Sign(orderRef, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (v *HMACVerifier) Sign(orderRef string, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderRef + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
