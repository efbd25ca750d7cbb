package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
)

// HMACVerifier checks the hex HMAC-SHA256 of the raw body against the
// signature header.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

var _ paymentgateway.WebhookVerifier = (*HMACVerifier)(nil)

func (v *HMACVerifier) Verify(payload []byte, signature string) error {
	if len(v.secret) == 0 || signature == "" {
		return paymentgateway.ErrInvalidSignature
	}
	given, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return paymentgateway.ErrInvalidSignature
	}
	if !hmac.Equal(given, v.sign(payload)) {
		return paymentgateway.ErrInvalidSignature
	}
	return nil
}

// Sign returns the signature the gateway would send for payload.
func (v *HMACVerifier) Sign(payload []byte) string {
	return hex.EncodeToString(v.sign(payload))
}

func (v *HMACVerifier) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
