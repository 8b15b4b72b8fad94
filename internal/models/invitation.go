package models

import (
	"time"

	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Terminal reports whether no further transition is allowed
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationDeclined
}

type Invitation struct {
	ID           string           `gorm:"type:varchar(36);primarykey" json:"id"`
	BoardID      string           `gorm:"type:varchar(36);not null;index" json:"boardId"`
	BoardOwnerID string           `gorm:"type:varchar(36);not null" json:"boardOwnerId"`
	MemberID     string           `gorm:"type:varchar(36);not null;index" json:"memberId"`
	MemberEmail  string           `gorm:"type:varchar(255);not null" json:"memberEmail"`
	Status       InvitationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
