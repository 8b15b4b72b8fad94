package dto

import (
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/services"
)

// CreateTaskRequest is the body of POST .../tasks
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,taskstatus"`
	Priority    *string    `json:"priority" binding:"omitempty,taskpriority"`
	Deadline    *time.Time `json:"deadline"`
	AssignedTo  []string   `json:"assignedTo"`
}

// UpdateTaskRequest is the body of PATCH .../tasks/:taskId.
// An empty priority or deadline clears the field.
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" binding:"omitempty,taskstatus"`
	Priority    *string   `json:"priority" binding:"omitempty,taskpriority"`
	Deadline    *string   `json:"deadline"`
	AssignedTo  *[]string `json:"assignedTo"`
}

// GenerateTasksRequest is the body of POST .../tasks/generate
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// GenerateTasksResponse lists AI drafts; none of them are stored
type GenerateTasksResponse struct {
	Tasks []services.GeneratedTask `json:"tasks"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string               `json:"id"`
	CardID      string               `json:"cardId"`
	BoardID     string               `json:"boardId"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.TaskStatus    `json:"status"`
	Priority    *models.TaskPriority `json:"priority,omitempty"`
	Deadline    *time.Time           `json:"deadline,omitempty"`
	OwnerID     string               `json:"ownerId"`
	AssignedTo  []string             `json:"assignedTo"`
	Order       int64                `json:"order"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// TaskListResponse lists a card's tasks in order with a count per status column
type TaskListResponse struct {
	Tasks  []TaskDTO                 `json:"tasks"`
	Counts map[models.TaskStatus]int `json:"counts"`
}

// AttachGitHubRequest is the body of POST .../github-attach
type AttachGitHubRequest struct {
	Type   string `json:"type" binding:"required"`
	Number string `json:"number"`
	SHA    string `json:"sha"`
	Title  string `json:"title"`
	URL    string `json:"url" binding:"omitempty,url"`
}

// AttachmentDTO represents a GitHub attachment in API responses
type AttachmentDTO struct {
	AttachmentID string                      `json:"attachmentId"`
	TaskID       string                      `json:"taskId"`
	Type         models.GitHubAttachmentType `json:"type"`
	Number       string                      `json:"number,omitempty"`
	SHA          string                      `json:"sha,omitempty"`
	Title        string                      `json:"title,omitempty"`
	URL          string                      `json:"url,omitempty"`
	CreatedBy    string                      `json:"createdBy"`
	CreatedAt    time.Time                   `json:"createdAt"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	assignedTo := task.AssignedTo
	if assignedTo == nil {
		assignedTo = []string{}
	}

	return TaskDTO{
		ID:          task.ID,
		CardID:      task.CardID,
		BoardID:     task.BoardID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		OwnerID:     task.OwnerID,
		AssignedTo:  assignedTo,
		Order:       task.Order,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	counts := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		counts[status] = 0
	}
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
		counts[task.Status]++
	}

	return TaskListResponse{
		Tasks:  items,
		Counts: counts,
	}
}

func ToAttachmentDTO(attachment models.GitHubAttachment) AttachmentDTO {
	return AttachmentDTO{
		AttachmentID: attachment.ID,
		TaskID:       attachment.TaskID,
		Type:         attachment.Type,
		Number:       attachment.Number,
		SHA:          attachment.SHA,
		Title:        attachment.Title,
		URL:          attachment.URL,
		CreatedBy:    attachment.CreatedBy,
		CreatedAt:    attachment.CreatedAt,
	}
}

func ToAttachmentDTOs(attachments []models.GitHubAttachment) []AttachmentDTO {
	items := make([]AttachmentDTO, len(attachments))
	for i, attachment := range attachments {
		items[i] = ToAttachmentDTO(attachment)
	}
	return items
}
