package models

import "time"

// BoardMember is one element of a board's member set; the composite key makes duplicates impossible
type BoardMember struct {
	BoardID  string    `gorm:"type:varchar(36);primarykey" json:"boardId"`
	UserID   string    `gorm:"type:varchar(36);primarykey;index" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

type CardMember struct {
	CardID   string    `gorm:"type:varchar(36);primarykey" json:"cardId"`
	UserID   string    `gorm:"type:varchar(36);primarykey;index" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}
