package models

import "github.com/shopspring/decimal"

type Discount struct {
	BaseModelWithDeleted
	Name               string `gorm:"not null" json:"name"`
	Code               string `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DiscountPercentage int    `gorm:"not null" json:"discount_percentage"`
}

var hundred = decimal.NewFromInt(100)

// Apply returns total reduced by the percentage, rounded to cents.
func (d *Discount) Apply(total decimal.Decimal) decimal.Decimal {
	pct := d.DiscountPercentage
	if pct <= 0 {
		return total
	}
	if pct > 100 {
		pct = 100
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(pct))).Div(hundred)
	return total.Mul(factor).Round(2)
}
