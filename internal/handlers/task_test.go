package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/minitrello-api/internal/constants"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/metrics"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"github.com/yukikurage/minitrello-api/internal/services"
	"github.com/yukikurage/minitrello-api/internal/testutil"
)

func jsonBody(t testing.TB, v interface{}) io.Reader {
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(raw)
}

type failingGenerator struct{}

func (failingGenerator) GenerateTasksFromText(ctx context.Context, cardName, text string) ([]services.GeneratedTask, error) {
	return nil, io.ErrUnexpectedEOF
}

type TaskHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	repos  *repository.Repositories
	board  *models.Board
	card   *models.Card
	task   *models.Task
}

func (s *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(RegisterValidators())

	s.repos = repository.NewGormRepositories(testutil.NewTestDB(s.T()))
	ctx := context.Background()

	s.board = &models.Board{Name: "B", OwnerID: "owner"}
	s.Require().NoError(s.repos.Boards.Create(ctx, s.board))
	s.card = &models.Card{BoardID: s.board.ID, Name: "C", OwnerID: "owner"}
	s.Require().NoError(s.repos.Cards.Create(ctx, s.card))
	high := models.TaskPriorityHigh
	s.task = &models.Task{BoardID: s.board.ID, CardID: s.card.ID, Title: "T", OwnerID: "owner", Priority: &high}
	s.Require().NoError(s.repos.Tasks.Create(ctx, s.task))

	taskService := services.NewTaskService(s.repos.Tasks, s.repos.Cards, s.repos.Boards, failingGenerator{})
	handler := NewTaskHandler(taskService, metrics.New(), logger.NewNop(), false)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, "owner")
		c.Next()
	})
	tasks := r.Group("/boards/:boardId/cards/:cardId/tasks")
	tasks.POST("", handler.CreateTask)
	tasks.POST("/generate", handler.GenerateTasks)
	tasks.PATCH("/:taskId", handler.UpdateTask)
	tasks.DELETE("/:taskId", handler.DeleteTask)
	s.router = r
}

func (s *TaskHandlerTestSuite) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = jsonBody(s.T(), body)
	}
	req := httptest.NewRequest(method, "/boards/"+s.board.ID+"/cards/"+s.card.ID+"/tasks"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *TaskHandlerTestSuite) reload() *models.Task {
	task, err := s.repos.Tasks.FindByID(context.Background(), s.task.ID)
	s.Require().NoError(err)
	return task
}

func (s *TaskHandlerTestSuite) TestCreateTask_RejectsUnknownPriority() {
	w := s.request(http.MethodPost, "", map[string]string{"title": "x", "priority": "urgent"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Priority must be one of low, medium, high, critical")
}

func (s *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	w := s.request(http.MethodPost, "", map[string]string{"description": "no title"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Title is required")
}

func (s *TaskHandlerTestSuite) TestCreateTask_AssigneeMustBeMember() {
	w := s.request(http.MethodPost, "", map[string]interface{}{"title": "x", "assignedTo": []string{"stranger"}})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TaskHandlerTestSuite) TestUpdateTask_EmptyValuesClear() {
	deadline := "2031-03-04T05:06:07Z"
	w := s.request(http.MethodPatch, "/"+s.task.ID, map[string]string{"deadline": deadline})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().NotNil(s.reload().Deadline)

	w = s.request(http.MethodPatch, "/"+s.task.ID, map[string]string{"priority": "", "deadline": ""})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	task := s.reload()
	s.Nil(task.Priority)
	s.Nil(task.Deadline)
	s.Equal("T", task.Title)
}

func (s *TaskHandlerTestSuite) TestUpdateTask_OrderIsNotWritable() {
	before := s.reload().Order

	w := s.request(http.MethodPatch, "/"+s.task.ID, map[string]interface{}{"order": 5, "status": "done", "title": "Moved"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	task := s.reload()
	s.Equal(before, task.Order)
	s.Equal(models.TaskStatusDone, task.Status)
	s.Equal("Moved", task.Title)
}

func (s *TaskHandlerTestSuite) TestUpdateTask_BadDeadline() {
	w := s.request(http.MethodPatch, "/"+s.task.ID, map[string]string{"deadline": "tomorrow"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "RFC 3339")
}

func (s *TaskHandlerTestSuite) TestUpdateTask_UnknownTask() {
	w := s.request(http.MethodPatch, "/missing", map[string]string{"title": "x"})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *TaskHandlerTestSuite) TestGenerateTasks_UpstreamDetailsHidden() {
	w := s.request(http.MethodPost, "/generate", map[string]string{"text": "split this"})
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Contains(w.Body.String(), "Failed to generate tasks")
	s.NotContains(w.Body.String(), io.ErrUnexpectedEOF.Error())
}

func (s *TaskHandlerTestSuite) TestDeleteTask() {
	w := s.request(http.MethodDelete, "/"+s.task.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodDelete, "/"+s.task.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
