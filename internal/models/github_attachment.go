package models

import (
	"time"

	"gorm.io/gorm"
)

type GitHubAttachmentType string

const (
	AttachmentPullRequest GitHubAttachmentType = "pull_request"
	AttachmentCommit      GitHubAttachmentType = "commit"
	AttachmentIssue       GitHubAttachmentType = "issue"
)

func (t GitHubAttachmentType) Valid() bool {
	switch t {
	case AttachmentPullRequest, AttachmentCommit, AttachmentIssue:
		return true
	}
	return false
}

// GitHubAttachment links a task to a pull request, commit or issue.
// Number is set for pull requests and issues, SHA for commits.
type GitHubAttachment struct {
	ID        string               `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID    string               `gorm:"type:varchar(36);not null;index" json:"taskId"`
	CardID    string               `gorm:"type:varchar(36);not null;index" json:"cardId"`
	BoardID   string               `gorm:"type:varchar(36);not null;index" json:"boardId"`
	Type      GitHubAttachmentType `gorm:"type:varchar(20);not null" json:"type"`
	Number    string               `gorm:"type:varchar(20)" json:"number,omitempty"`
	SHA       string               `gorm:"column:sha;type:varchar(64)" json:"sha,omitempty"`
	Title     string               `gorm:"type:varchar(512)" json:"title,omitempty"`
	URL       string               `gorm:"type:varchar(1024)" json:"url,omitempty"`
	CreatedBy string               `gorm:"type:varchar(36)" json:"createdBy"`
	CreatedAt time.Time            `json:"createdAt"`
}

func (GitHubAttachment) TableName() string {
	return "github_attachments"
}

func (a *GitHubAttachment) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
