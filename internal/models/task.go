package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusIcebox        TaskStatus = "icebox"
	TaskStatusBacklog       TaskStatus = "backlog"
	TaskStatusOngoing       TaskStatus = "ongoing"
	TaskStatusWaitingReview TaskStatus = "waiting-review"
	TaskStatusDone          TaskStatus = "done"
)

// TaskStatuses lists the kanban columns; any status may move to any other
var TaskStatuses = []TaskStatus{
	TaskStatusIcebox,
	TaskStatusBacklog,
	TaskStatusOngoing,
	TaskStatusWaitingReview,
	TaskStatusDone,
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

var TaskPriorities = []TaskPriority{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
	TaskPriorityCritical,
}

func (p TaskPriority) Valid() bool {
	for _, v := range TaskPriorities {
		if p == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string        `gorm:"type:varchar(36);primarykey" json:"id"`
	CardID      string        `gorm:"type:varchar(36);not null;index" json:"cardId"`
	BoardID     string        `gorm:"type:varchar(36);not null;index" json:"boardId"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      TaskStatus    `gorm:"type:varchar(20);not null;default:'icebox'" json:"status"`
	OwnerID     string        `gorm:"type:varchar(36);not null" json:"ownerId"`
	Priority    *TaskPriority `gorm:"type:varchar(20)" json:"priority,omitempty"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	// Order is a relative sort key within a status column, never renumbered
	Order     int64     `gorm:"column:sort_order;not null;index" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	AssignedTo []string `gorm:"-" json:"assignedTo"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// TaskAssignee is one element of a task's assigned-user set
type TaskAssignee struct {
	TaskID    string    `gorm:"type:varchar(36);primarykey" json:"taskId"`
	UserID    string    `gorm:"type:varchar(36);primarykey;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
