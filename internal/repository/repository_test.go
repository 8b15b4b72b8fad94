package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/testutil"
	"github.com/yukikurage/minitrello-api/internal/utils"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	repos *Repositories
	clock time.Time
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.repos = NewGormRepositories(s.db)

	s.clock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.repos.Tasks = NewTaskRepositoryWithClock(s.db, func() time.Time {
		s.clock = s.clock.Add(time.Millisecond)
		return s.clock
	})
}

func (s *RepositoryTestSuite) createBoard(name, ownerID string) *models.Board {
	board := &models.Board{Name: name, OwnerID: ownerID}
	s.Require().NoError(s.repos.Boards.Create(s.ctx, board))
	return board
}

func (s *RepositoryTestSuite) createCard(boardID, name, ownerID string) *models.Card {
	card := &models.Card{BoardID: boardID, Name: name, OwnerID: ownerID}
	s.Require().NoError(s.repos.Cards.Create(s.ctx, card))
	return card
}

func (s *RepositoryTestSuite) createTask(card *models.Card, title string) *models.Task {
	task := &models.Task{CardID: card.ID, BoardID: card.BoardID, Title: title, OwnerID: card.OwnerID}
	s.Require().NoError(s.repos.Tasks.Create(s.ctx, task))
	return task
}

func (s *RepositoryTestSuite) tasksCount(cardID string) int {
	card, err := s.repos.Cards.FindByID(s.ctx, cardID)
	s.Require().NoError(err)
	return card.TasksCount
}

func (s *RepositoryTestSuite) countRows(model interface{}, query string, args ...interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func (s *RepositoryTestSuite) TestBoardLifecycleScenario() {
	board := s.createBoard("B1", "owner")
	card := s.createCard(board.ID, "C1", "owner")
	s.Equal(0, s.tasksCount(card.ID))

	first := s.createTask(card, "t1")
	s.createTask(card, "t2")
	s.createTask(card, "t3")
	s.Equal(3, s.tasksCount(card.ID))

	s.Require().NoError(s.repos.Tasks.Delete(s.ctx, first.ID))
	s.Equal(2, s.tasksCount(card.ID))

	s.Require().NoError(s.repos.Cards.Delete(s.ctx, card.ID))
	s.Zero(s.countRows(&models.Task{}, "card_id = ?", card.ID))

	s.Require().NoError(s.repos.Boards.Delete(s.ctx, board.ID))
	s.Zero(s.countRows(&models.Card{}, "board_id = ?", board.ID))

	_, err := s.repos.Boards.FindByID(s.ctx, board.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestBoardCreate_OwnerIsMember() {
	board := s.createBoard("Roadmap", "owner")

	found, err := s.repos.Boards.FindByID(s.ctx, board.ID)
	s.Require().NoError(err)
	s.Equal([]string{"owner"}, found.Members)

	ok, err := s.repos.Boards.IsMember(s.ctx, board.ID, "owner")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RepositoryTestSuite) TestBoardDelete_RemovesWholeHierarchy() {
	board := s.createBoard("B", "owner")
	other := s.createBoard("Other", "owner")
	otherCard := s.createCard(other.ID, "keep", "owner")
	s.createTask(otherCard, "keep")

	for i := 0; i < 3; i++ {
		card := s.createCard(board.ID, "card", "owner")
		for j := 0; j < 2; j++ {
			task := s.createTask(card, "task")
			s.Require().NoError(s.repos.Attachments.Create(s.ctx, &models.GitHubAttachment{
				TaskID: task.ID, CardID: card.ID, BoardID: board.ID,
				Type: models.AttachmentPullRequest, Number: "12",
			}))
		}
	}
	s.Require().NoError(s.repos.Invitations.Create(s.ctx, &models.Invitation{
		BoardID: board.ID, BoardOwnerID: "owner", MemberID: "guest", MemberEmail: "guest@example.com",
	}))

	s.Require().NoError(s.repos.Boards.Delete(s.ctx, board.ID))

	s.Zero(s.countRows(&models.Card{}, "board_id = ?", board.ID))
	s.Zero(s.countRows(&models.Task{}, "board_id = ?", board.ID))
	s.Zero(s.countRows(&models.GitHubAttachment{}, "board_id = ?", board.ID))
	s.Zero(s.countRows(&models.Invitation{}, "board_id = ?", board.ID))
	s.Zero(s.countRows(&models.BoardMember{}, "board_id = ?", board.ID))

	s.Equal(1, s.tasksCount(otherCard.ID))
}

func (s *RepositoryTestSuite) TestBoardDelete_Missing() {
	s.NoError(s.repos.Boards.Delete(s.ctx, "missing"))
}

func (s *RepositoryTestSuite) TestTaskDelete_MissingIsNoop() {
	board := s.createBoard("B", "owner")
	card := s.createCard(board.ID, "C", "owner")
	s.createTask(card, "t")

	s.NoError(s.repos.Tasks.Delete(s.ctx, "missing"))
	s.Equal(1, s.tasksCount(card.ID))
}

func (s *RepositoryTestSuite) TestTaskDelete_RemovesAttachments() {
	board := s.createBoard("B", "owner")
	card := s.createCard(board.ID, "C", "owner")
	task := s.createTask(card, "t")
	s.Require().NoError(s.repos.Attachments.Create(s.ctx, &models.GitHubAttachment{
		TaskID: task.ID, CardID: card.ID, BoardID: board.ID, Type: models.AttachmentCommit, SHA: "abc123",
	}))

	s.Require().NoError(s.repos.Tasks.Delete(s.ctx, task.ID))

	attachments, err := s.repos.Attachments.ListByTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Empty(attachments)
}

func (s *RepositoryTestSuite) TestTaskDelete_CounterNeverNegative() {
	board := s.createBoard("B", "owner")
	card := s.createCard(board.ID, "C", "owner")
	task := s.createTask(card, "t")
	s.Require().NoError(s.db.Model(&models.Card{}).Where("id = ?", card.ID).UpdateColumn("tasks_count", 0).Error)

	s.Require().NoError(s.repos.Tasks.Delete(s.ctx, task.ID))
	s.Equal(0, s.tasksCount(card.ID))
}

func (s *RepositoryTestSuite) TestTaskCreate_MissingCardStillCreates() {
	task := &models.Task{CardID: "gone", BoardID: "gone", Title: "orphan", OwnerID: "owner"}
	s.Require().NoError(s.repos.Tasks.Create(s.ctx, task))

	found, err := s.repos.Tasks.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusIcebox, found.Status)
	s.Equal([]string{}, found.AssignedTo)
}

func (s *RepositoryTestSuite) TestTaskCounterMatchesTasks() {
	board := s.createBoard("B", "owner")
	card := s.createCard(board.ID, "C", "owner")

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, s.createTask(card, "t").ID)
	}
	for _, id := range ids[:3] {
		s.Require().NoError(s.repos.Tasks.Delete(s.ctx, id))
	}
	// deleting twice must not decrement twice
	s.Require().NoError(s.repos.Tasks.Delete(s.ctx, ids[0]))

	s.Equal(int(s.countRows(&models.Task{}, "card_id = ?", card.ID)), s.tasksCount(card.ID))
	s.Equal(2, s.tasksCount(card.ID))
}

func (s *RepositoryTestSuite) TestTaskOrder_AssignedAtCreation() {
	board := s.createBoard("B", "owner")
	card := s.createCard(board.ID, "C", "owner")
	first := s.createTask(card, "first")
	second := s.createTask(card, "second")
	s.Less(first.Order, second.Order)

	newTitle := "renamed"
	_, err := s.repos.Tasks.Update(s.ctx, first.ID, TaskUpdate{Title: &newTitle})
	s.Require().NoError(err)

	tasks, err := s.repos.Tasks.ListByCard(s.ctx, card.ID)
	s.Require().NoError(err)
	s.Require().Len(tasks, 2)
	s.Equal(first.ID, tasks[0].ID)
	s.Equal(first.Order, tasks[0].Order)
	s.Equal("renamed", tasks[0].Title)
}

func (s *RepositoryTestSuite) TestTaskOrder_FrozenClockStillIncreases() {
	frozen := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.repos.Tasks = NewTaskRepositoryWithClock(s.db, func() time.Time { return frozen })

	board := s.createBoard("B", "owner")
	card := s.createCard(board.ID, "C", "owner")
	first := s.createTask(card, "first")
	second := s.createTask(card, "second")

	s.Equal(frozen.UnixMilli(), first.Order)
	s.Equal(first.Order+1, second.Order)
}

func (s *RepositoryTestSuite) TestTaskUpdate_FieldsAndAssignees() {
	board := s.createBoard("B", "owner")
	card := s.createCard(board.ID, "C", "owner")
	task := s.createTask(card, "t")

	status := models.TaskStatusOngoing
	priority := models.TaskPriorityCritical
	deadline := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assignees := []string{"u1", "u2", "u1"}

	updated, err := s.repos.Tasks.Update(s.ctx, task.ID, TaskUpdate{
		Status:     &status,
		Priority:   &priority,
		Deadline:   &deadline,
		AssignedTo: &assignees,
	})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusOngoing, updated.Status)
	s.Require().NotNil(updated.Priority)
	s.Equal(models.TaskPriorityCritical, *updated.Priority)
	s.Require().NotNil(updated.Deadline)
	s.True(deadline.Equal(*updated.Deadline))
	s.ElementsMatch([]string{"u1", "u2"}, updated.AssignedTo)
	s.True(updated.UpdatedAt.After(task.UpdatedAt))

	cleared, err := s.repos.Tasks.Update(s.ctx, task.ID, TaskUpdate{ClearPriority: true, ClearDeadline: true})
	s.Require().NoError(err)
	s.Nil(cleared.Priority)
	s.Nil(cleared.Deadline)
	s.ElementsMatch([]string{"u1", "u2"}, cleared.AssignedTo)
}

func (s *RepositoryTestSuite) TestTaskUpdate_Missing() {
	title := "x"
	_, err := s.repos.Tasks.Update(s.ctx, "missing", TaskUpdate{Title: &title})
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestCardListByBoard_NewestFirst() {
	board := s.createBoard("B", "owner")
	older := s.createCard(board.ID, "older", "owner")
	s.Require().NoError(s.db.Model(&models.Card{}).Where("id = ?", older.ID).
		UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)
	newer := s.createCard(board.ID, "newer", "owner")

	cards, err := s.repos.Cards.ListByBoard(s.ctx, board.ID)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Equal(newer.ID, cards[0].ID)
	s.Equal(older.ID, cards[1].ID)
	s.Equal([]string{"owner"}, cards[0].Members)
}

func (s *RepositoryTestSuite) TestInvitationAccept_Twice() {
	board := s.createBoard("B", "owner")
	invitation := &models.Invitation{BoardID: board.ID, BoardOwnerID: "owner", MemberID: "guest", MemberEmail: "guest@example.com"}
	s.Require().NoError(s.repos.Invitations.Create(s.ctx, invitation))

	accepted, err := s.repos.Invitations.Accept(s.ctx, invitation.ID)
	s.Require().NoError(err)
	s.Equal(models.InvitationAccepted, accepted.Status)

	_, err = s.repos.Invitations.Accept(s.ctx, invitation.ID)
	s.Require().NoError(err)

	found, err := s.repos.Boards.FindByID(s.ctx, board.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"owner", "guest"}, found.Members)
}

func (s *RepositoryTestSuite) TestInvitation_TerminalStatesAreClosed() {
	board := s.createBoard("B", "owner")
	invitation := &models.Invitation{BoardID: board.ID, BoardOwnerID: "owner", MemberID: "guest", MemberEmail: "guest@example.com"}
	s.Require().NoError(s.repos.Invitations.Create(s.ctx, invitation))

	_, err := s.repos.Invitations.Decline(s.ctx, invitation.ID)
	s.Require().NoError(err)

	_, err = s.repos.Invitations.Accept(s.ctx, invitation.ID)
	s.ErrorIs(err, ErrInvitationClosed)

	isMember, err := s.repos.Boards.IsMember(s.ctx, board.ID, "guest")
	s.Require().NoError(err)
	s.False(isMember)

	pending, err := s.repos.Invitations.ListPendingForUser(s.ctx, "guest")
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *RepositoryTestSuite) TestUserCreate_DuplicateEmail() {
	s.Require().NoError(s.repos.Users.Create(s.ctx, &models.User{Email: "a@example.com", DisplayName: "a"}))

	err := s.repos.Users.Create(s.ctx, &models.User{Email: "a@example.com", DisplayName: "again"})
	s.ErrorIs(err, gorm.ErrDuplicatedKey)
}

func (s *RepositoryTestSuite) TestUserList_SearchAndWindow() {
	for _, u := range []models.User{
		{Email: "alice@example.com", DisplayName: "Alice"},
		{Email: "bob@example.com", DisplayName: "Bob"},
		{Email: "carol@alice.dev", DisplayName: "Carol"},
		{Email: "dan_100%@example.com", DisplayName: "Dan"},
	} {
		u := u
		s.Require().NoError(s.repos.Users.Create(s.ctx, &u))
	}

	users, total, err := s.repos.Users.List(s.ctx, utils.PageQuery{Limit: 10, Search: "ALICE"})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Require().Len(users, 2)
	s.Equal("Alice", users[0].DisplayName)
	s.Equal("Carol", users[1].DisplayName)

	// wildcards in the term are matched literally
	users, total, err = s.repos.Users.List(s.ctx, utils.PageQuery{Limit: 10, Search: "_100%"})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(users, 1)
	s.Equal("Dan", users[0].DisplayName)

	users, total, err = s.repos.Users.List(s.ctx, utils.PageQuery{Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	s.Require().Len(users, 2)
	s.Equal("Carol", users[0].DisplayName)
}

func (s *RepositoryTestSuite) TestVerificationCodeSave_Replaces() {
	expires := time.Now().Add(time.Minute)
	s.Require().NoError(s.repos.VerificationCodes.Save(s.ctx, &models.VerificationCode{Email: "a@example.com", CodeHash: "one", ExpiresAt: expires}))
	s.Require().NoError(s.repos.VerificationCodes.Save(s.ctx, &models.VerificationCode{Email: "a@example.com", CodeHash: "two", ExpiresAt: expires}))

	code, err := s.repos.VerificationCodes.FindByEmail(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("two", code.CodeHash)

	s.Require().NoError(s.repos.VerificationCodes.Delete(s.ctx, "a@example.com"))
	_, err = s.repos.VerificationCodes.FindByEmail(s.ctx, "a@example.com")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
