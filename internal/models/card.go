package models

import (
	"time"

	"gorm.io/gorm"
)

type Card struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	BoardID     string    `gorm:"type:varchar(36);not null;index" json:"boardId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     string    `gorm:"type:varchar(36);not null" json:"ownerId"`
	TasksCount  int       `gorm:"not null;default:0" json:"tasksCount"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Members []string `gorm:"-" json:"members"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
