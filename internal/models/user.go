package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName       string    `gorm:"type:varchar(255)" json:"displayName"`
	PhotoURL          string    `gorm:"type:varchar(512)" json:"photoURL,omitempty"`
	GitHubID          *int64    `gorm:"column:github_id" json:"githubId,omitempty"`
	GitHubLogin       string    `gorm:"column:github_login;type:varchar(255)" json:"githubLogin,omitempty"`
	GitHubAccessToken string    `gorm:"column:github_access_token;type:varchar(255)" json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// HasGitHub reports whether the user completed the GitHub OAuth flow
func (u *User) HasGitHub() bool {
	return u.GitHubAccessToken != ""
}
