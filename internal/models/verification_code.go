package models

import "time"

// VerificationCode is keyed by e-mail; issuing a new code replaces the old one
type VerificationCode struct {
	Email     string    `gorm:"type:varchar(255);primarykey" json:"email"`
	CodeHash  string    `gorm:"type:varchar(255);not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (v *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
