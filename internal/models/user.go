package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Role identifies what a user may do. Stored as an integer; collectors are 1.
type Role int

const (
	RoleUnknown Role = iota
	RoleCollector
	RoleCustomer
	RoleAdmin
)

var ErrInvalidRole = errors.New("invalid role")

var roleNames = map[Role]string{
	RoleCollector: "collector",
	RoleCustomer:  "customer",
	RoleAdmin:     "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole accepts the lower-case role names; an empty string is a customer.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleCustomer, nil
	}
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUnknown, ErrInvalidRole
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role" gorm:"not null;default:0;index"`

	CustomerInfo *CustomerInfo `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"customer_info,omitempty"`
}
