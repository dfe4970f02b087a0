package payment

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5Upper(s string) string {
	h := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func TestGeneratePaymentURL(t *testing.T) {
	svc := NewRobokassaService(RobokassaConfig{MerchantLogin: "shop", Password1: "p1", Password2: "p2", IsTest: true})

	raw := svc.GeneratePaymentURL(42, decimal.RequireFromString("1500.5"), "Order 42", "a@b.c")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "1500.50", q.Get("OutSum"))
	assert.Equal(t, "42", q.Get("InvId"))
	assert.Equal(t, md5Upper("shop:1500.50:42:p1"), q.Get("SignatureValue"))
	assert.Equal(t, "1", q.Get("IsTest"))
	assert.True(t, strings.HasPrefix(raw, defaultRobokassaURL))
}

func TestVerifyResultSignature(t *testing.T) {
	svc := NewRobokassaService(RobokassaConfig{MerchantLogin: "shop", Password1: "p1", Password2: "p2"})

	sig := md5Upper("100.00:7:p2")
	assert.True(t, svc.VerifyResultSignature("100.00", "7", sig))
	assert.True(t, svc.VerifyResultSignature("100.00", "7", strings.ToLower(sig)))
	assert.False(t, svc.VerifyResultSignature("100.01", "7", sig))
	assert.Equal(t, sig, svc.Sign("100.00", "7"))
}
