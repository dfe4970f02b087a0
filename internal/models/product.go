package models

import "github.com/shopspring/decimal"

type Product struct {
	BaseModelWithDeleted
	Name        string          `gorm:"not null" json:"name"`
	Slug        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	Pictures []Picture `gorm:"polymorphic:Owner;polymorphicValue:product" json:"pictures,omitempty"`
}

func (p *Product) MediaOwnerType() OwnerType { return OwnerTypeProduct }
func (p *Product) MediaOwnerID() string      { return p.ID }
