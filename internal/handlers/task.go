package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/minitrello-api/internal/dto"
	apierrors "github.com/yukikurage/minitrello-api/internal/errors"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/metrics"
	"github.com/yukikurage/minitrello-api/internal/middleware"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/services"
)

type TaskHandler struct {
	responder
	taskService *services.TaskService
	metrics     *metrics.Metrics
}

func NewTaskHandler(taskService *services.TaskService, m *metrics.Metrics, log *logger.Logger, expose bool) *TaskHandler {
	return &TaskHandler{
		responder:   responder{log: log.WithComponent("tasks"), expose: expose},
		taskService: taskService,
		metrics:     m,
	}
}

// CreateTask creates a task in the card; status defaults to icebox
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	input := services.CreateTaskInput{
		BoardID:     c.Param("boardId"),
		CardID:      c.Param("cardId"),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Deadline:    req.Deadline,
		AssignedTo:  req.AssignedTo,
		OwnerID:     userID,
	}
	if req.Priority != nil && *req.Priority != "" {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.Created(c, dto.ToTaskDTO(*task))
}

// ListTasks returns the card's tasks sorted by order
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context(), c.Param("boardId"), c.Param("cardId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToTaskListResponse(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), c.Param("taskId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update; an empty priority or deadline clears it
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}

	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	if req.Priority != nil {
		if *req.Priority == "" {
			input.ClearPriority = true
		} else {
			priority := models.TaskPriority(*req.Priority)
			input.Priority = &priority
		}
	}

	if req.Deadline != nil {
		if *req.Deadline == "" {
			input.ClearDeadline = true
		} else {
			deadline, err := time.Parse(time.RFC3339, *req.Deadline)
			if err != nil {
				apierrors.BadRequest(c, "Deadline must be an RFC 3339 timestamp")
				return
			}
			input.Deadline = &deadline
		}
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), c.Param("taskId"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.ToTaskDTO(*task))
}

// DeleteTask removes the task and its attachments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), c.Param("boardId"), c.Param("cardId"), c.Param("taskId")); err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.DeleteCompleted("task")

	dto.Message(c, "Task deleted successfully")
}

// GenerateTasks drafts tasks for the card from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, bindingMessage(err))
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		BoardID: c.Param("boardId"),
		CardID:  c.Param("cardId"),
		Text:    req.Text,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	dto.OK(c, dto.GenerateTasksResponse{Tasks: drafts})
}
