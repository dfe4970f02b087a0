package payment

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultRobokassaURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

type RobokassaConfig struct {
	MerchantLogin string
	Password1     string
	Password2     string
	BaseURL       string
	Currency      string
	IsTest        bool
}

// RobokassaService signs payment links and verifies result callbacks.
type RobokassaService struct {
	cfg RobokassaConfig
}

func NewRobokassaService(cfg RobokassaConfig) *RobokassaService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultRobokassaURL
	}
	return &RobokassaService{cfg: cfg}
}

// FormatAmount renders an amount the way it is signed: two decimals, dot separator.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// GeneratePaymentURL builds the checkout link for invoice invID.
func (r *RobokassaService) GeneratePaymentURL(invID uint, amount decimal.Decimal, description, email string) string {
	outSum := FormatAmount(amount)
	inv := fmt.Sprintf("%d", invID)

	params := url.Values{}
	params.Set("MerchantLogin", r.cfg.MerchantLogin)
	params.Set("OutSum", outSum)
	params.Set("InvId", inv)
	params.Set("Description", description)
	params.Set("SignatureValue", r.signature(r.cfg.MerchantLogin, outSum, inv, r.cfg.Password1))
	if email != "" {
		params.Set("Email", email)
	}
	if r.cfg.Currency != "" {
		params.Set("OutSumCurrency", r.cfg.Currency)
	}
	params.Set("Culture", "ru")
	if r.cfg.IsTest {
		params.Set("IsTest", "1")
	}

	return r.cfg.BaseURL + "?" + params.Encode()
}

// VerifyResultSignature checks the ResultURL signature MD5(OutSum:InvId:Password2).
// outSum must be the exact string received.
func (r *RobokassaService) VerifyResultSignature(outSum, invID, received string) bool {
	return strings.EqualFold(r.signature(outSum, invID, r.cfg.Password2), received)
}

func (r *RobokassaService) signature(parts ...string) string {
	hash := md5.Sum([]byte(strings.Join(parts, ":")))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

// Sign exposes the result signature, used by tests and manual callback replay.
func (r *RobokassaService) Sign(outSum, invID string) string {
	return r.signature(outSum, invID, r.cfg.Password2)
}
