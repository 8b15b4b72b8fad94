package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/minitrello-api/internal/constants"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidTaskStatus      = errors.New("status must be one of icebox, backlog, ongoing, waiting-review, done")
	ErrInvalidTaskPriority    = errors.New("priority must be one of low, medium, high, critical")
	ErrInvalidTaskAssignee    = errors.New("one or more assigned users are not members of the board")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAIGeneration           = errors.New("AI task generation failed")
	ErrAITextRequired         = errors.New("text is required")
	ErrAITextTooLong          = errors.New("text is too long")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	cardRepo  repository.CardRepository
	boardRepo repository.BoardRepository
	generator TaskGenerator
}

// NewTaskService creates a new TaskService. generator may be nil when AI is not configured.
func NewTaskService(taskRepo repository.TaskRepository, cardRepo repository.CardRepository, boardRepo repository.BoardRepository, generator TaskGenerator) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		generator: generator,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	BoardID     string
	CardID      string
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    *models.TaskPriority
	Deadline    *time.Time
	AssignedTo  []string
	OwnerID     string
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	ClearPriority bool
	Deadline      *time.Time
	ClearDeadline bool
	AssignedTo    *[]string
}

// GenerateTasksInput represents input for AI task drafting
type GenerateTasksInput struct {
	BoardID string
	CardID  string
	Text    string
}

// CreateTask creates a task under a card of the board
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusIcebox
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	if _, err := s.findCard(ctx, input.BoardID, input.CardID); err != nil {
		return nil, err
	}

	if err := s.ensureAssignees(ctx, input.BoardID, input.AssignedTo); err != nil {
		return nil, err
	}

	task := &models.Task{
		CardID:      input.CardID,
		BoardID:     input.BoardID,
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		OwnerID:     input.OwnerID,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
		AssignedTo:  input.AssignedTo,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListTasks returns the tasks of a card sorted by order
func (s *TaskService) ListTasks(ctx context.Context, boardID, cardID string) ([]models.Task, error) {
	if _, err := s.findCard(ctx, boardID, cardID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task addressed by its full board/card/task path
func (s *TaskService) GetTask(ctx context.Context, boardID, cardID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.BoardID != boardID || task.CardID != cardID {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

// UpdateTask validates the enums and applies the update. Status may move freely between columns.
func (s *TaskService) UpdateTask(ctx context.Context, boardID, cardID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	if _, err := s.GetTask(ctx, boardID, cardID, taskID); err != nil {
		return nil, err
	}

	update := repository.TaskUpdate{
		Description:   input.Description,
		Status:        input.Status,
		Priority:      input.Priority,
		ClearPriority: input.ClearPriority,
		Deadline:      input.Deadline,
		ClearDeadline: input.ClearDeadline,
		AssignedTo:    input.AssignedTo,
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		update.Title = &title
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}
	if input.AssignedTo != nil {
		if err := s.ensureAssignees(ctx, boardID, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	task, err := s.taskRepo.Update(ctx, taskID, update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a task and its attachments and decrements the card counter
func (s *TaskService) DeleteTask(ctx context.Context, boardID, cardID, taskID string) error {
	if _, err := s.GetTask(ctx, boardID, cardID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// GenerateTasks uses AI to draft tasks for a card. Drafts are not persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrAITextRequired
	}
	if len(text) > constants.MaxAIInputLength {
		return nil, ErrAITextTooLong
	}

	card, err := s.findCard(ctx, input.BoardID, input.CardID)
	if err != nil {
		return nil, err
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, card.Name, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIGeneration, err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}

		if aiTask.Deadline != nil && aiTask.Deadline.Before(cutoff) {
			aiTask.Deadline = nil
		}
		if !models.TaskPriority(aiTask.Priority).Valid() {
			aiTask.Priority = ""
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) findCard(ctx context.Context, boardID, cardID string) (*models.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to find card: %w", err)
	}

	if card.BoardID != boardID {
		return nil, ErrCardNotFound
	}

	return card, nil
}

// ensureAssignees verifies that every assigned user belongs to the board
func (s *TaskService) ensureAssignees(ctx context.Context, boardID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	board, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBoardNotFound
		}
		return fmt.Errorf("failed to find board: %w", err)
	}

	for _, userID := range userIDs {
		if !board.HasMember(userID) {
			return ErrInvalidTaskAssignee
		}
	}

	return nil
}
