package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a registered member of the community
type User struct {
	UserID       uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname     string    `gorm:"uniqueIndex;size:64;not null" json:"nickname"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email,omitempty"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Surname      string    `gorm:"size:64;not null" json:"surname"`
	Gender       string    `gorm:"size:16" json:"gender,omitempty"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	Description  string    `gorm:"size:200" json:"description,omitempty"`
	Education    string    `gorm:"size:200" json:"education,omitempty"`
	Linkedin     string    `gorm:"size:255" json:"linkedin,omitempty"`
	Admin        bool      `gorm:"not null;default:false" json:"admin"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// SearchFields lists the columns mirrored into the search index
func (User) SearchFields() []string {
	return []string{"nickname", "name", "surname", "description"}
}

// SetPassword stores a bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
