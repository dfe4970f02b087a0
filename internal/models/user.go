package models

type User struct {
	BaseModel
	Email        string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string   `json:"name"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`

	Avatar *Picture `gorm:"polymorphic:Owner;polymorphicValue:user" json:"avatar,omitempty"`
}

func (u *User) MediaOwnerType() OwnerType { return OwnerTypeUser }
func (u *User) MediaOwnerID() string      { return u.ID }
