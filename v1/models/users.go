package models

import "time"

// User represents a registered ImportIQ account
type User struct {
	UserID       string `gorm:"primarykey;column:user_id" json:"userId"`
	Email        string `gorm:"column:email;not null;unique" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FullName     string `gorm:"column:full_name;not null" json:"fullName"`
	BaseModel
}

// TableName sets the table name for GORM
func (User) TableName() string {
	return "users"
}

// Session represents a bearer session token issued at login
type Session struct {
	SessionID string    `gorm:"primarykey;column:session_id" json:"sessionId"`
	UserID    string    `gorm:"column:user_id;not null;index" json:"userId"`
	Token     string    `gorm:"column:token;not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expiresAt"`
	BaseModel
}

// TableName sets the table name for GORM
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
