package Models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Permission levels
const (
	PermissionEmployee = 1
	PermissionManager  = 3
	PermissionAdmin    = 4
)

type User struct {
	gorm.Model
	Username   string `json:"username" gorm:"uniqueIndex;size:100"`
	Name       string `json:"name"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission"`
	IsApproved bool   `json:"is_approved"`
	FCMToken   string `json:"-"`
}

// DisplayName returns the user's name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword(u.Password, []byte(plain)) == nil
}

func (u *User) IsAdmin() bool {
	return u.Permission >= PermissionManager
}
