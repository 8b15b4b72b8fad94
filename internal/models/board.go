package models

import (
	"time"

	"gorm.io/gorm"
)

type Board struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     string    `gorm:"type:varchar(36);not null;index" json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Loaded from board_members by the repository
	Members []string `gorm:"-" json:"members"`
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// HasMember reports whether userID is in the loaded member set
func (b *Board) HasMember(userID string) bool {
	for _, m := range b.Members {
		if m == userID {
			return true
		}
	}
	return false
}
