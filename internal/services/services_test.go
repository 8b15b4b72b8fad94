package services

import (
	"context"
	"errors"
	"testing"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/minitrello-api/internal/config"
	"github.com/yukikurage/minitrello-api/internal/github"
	"github.com/yukikurage/minitrello-api/internal/identity"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/mailer"
	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"github.com/yukikurage/minitrello-api/internal/testutil"
	"github.com/yukikurage/minitrello-api/internal/verification"
)

type fakeGenerator struct {
	tasks []GeneratedTask
	err   error
}

func (f *fakeGenerator) GenerateTasksFromText(ctx context.Context, cardName, text string) ([]GeneratedTask, error) {
	return f.tasks, f.err
}

type fakeGitHub struct {
	profile *github.Profile
	err     error
}

func (f *fakeGitHub) AuthURL(state string) string { return "https://github.test/authorize?state=" + state }

func (f *fakeGitHub) Exchange(ctx context.Context, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "gho_" + code, nil
}

func (f *fakeGitHub) FetchProfile(ctx context.Context, accessToken string) (*github.Profile, error) {
	return f.profile, nil
}

func (f *fakeGitHub) ListRepositories(ctx context.Context, accessToken string) ([]*gh.Repository, error) {
	return []*gh.Repository{{FullName: gh.String("octo/board")}}, nil
}

func (f *fakeGitHub) RepositoryInfo(ctx context.Context, accessToken, owner, repo string) (*github.RepositoryInfo, error) {
	return &github.RepositoryInfo{RepositoryID: owner + "/" + repo}, nil
}

type ServicesTestSuite struct {
	suite.Suite
	ctx         context.Context
	repos       *repository.Repositories
	boards      *BoardService
	cards       *CardService
	tasks       *TaskService
	invitations *InvitationService
	attachments *AttachmentService
	users       *UserService
	auth        *AuthService
	gitHub      *fakeGitHub
	generator   *fakeGenerator
}

func (s *ServicesTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = repository.NewGormRepositories(testutil.NewTestDB(s.T()))
	s.generator = &fakeGenerator{}
	s.gitHub = &fakeGitHub{profile: &github.Profile{ID: 7, Login: "octocat", Name: "Octo Cat", Email: "Octo@Example.com"}}

	tokens := identity.NewProvider(config.JWTConfig{Secret: "test", Issuer: "test", ExpiresIn: time.Hour})
	codes := verification.NewService(verification.NewDatabaseStore(s.repos.VerificationCodes))

	s.boards = NewBoardService(s.repos.Boards)
	s.cards = NewCardService(s.repos.Cards, s.repos.Boards)
	s.tasks = NewTaskService(s.repos.Tasks, s.repos.Cards, s.repos.Boards, s.generator)
	s.invitations = NewInvitationService(s.repos.Invitations, s.repos.Boards, s.repos.Users)
	s.attachments = NewAttachmentService(s.repos.Attachments, s.repos.Tasks)
	s.users = NewUserService(s.repos.Users)
	s.auth = NewAuthService(s.repos.Users, codes, mailer.NewLogSender(logger.NewNop()), tokens, s.gitHub, true)
}

func (s *ServicesTestSuite) createUser(email string) *models.User {
	user := &models.User{Email: email, DisplayName: email}
	s.Require().NoError(s.repos.Users.Create(s.ctx, user))
	return user
}

func (s *ServicesTestSuite) createBoardWithCard(ownerID string) (*models.Board, *models.Card) {
	board, err := s.boards.CreateBoard(s.ctx, CreateBoardInput{Name: "Board", OwnerID: ownerID})
	s.Require().NoError(err)
	card, err := s.cards.CreateCard(s.ctx, CreateCardInput{BoardID: board.ID, Name: "Card", OwnerID: ownerID})
	s.Require().NoError(err)
	return board, card
}

func (s *ServicesTestSuite) TestCreateBoard_NameRequired() {
	_, err := s.boards.CreateBoard(s.ctx, CreateBoardInput{Name: "  ", OwnerID: "u"})
	s.ErrorIs(err, ErrBoardNameRequired)
}

func (s *ServicesTestSuite) TestGetBoard_NonMember() {
	board, _ := s.createBoardWithCard("owner")

	_, err := s.boards.GetBoard(s.ctx, board.ID, "stranger")
	s.ErrorIs(err, ErrNotBoardMember)

	_, err = s.boards.GetBoard(s.ctx, "missing", "owner")
	s.ErrorIs(err, ErrBoardNotFound)
}

func (s *ServicesTestSuite) TestDeleteBoard_OwnerOnly() {
	board, _ := s.createBoardWithCard("owner")

	s.ErrorIs(s.boards.DeleteBoard(s.ctx, board.ID, "member"), ErrNotBoardOwner)
	s.NoError(s.boards.DeleteBoard(s.ctx, board.ID, "owner"))
	s.ErrorIs(s.boards.DeleteBoard(s.ctx, board.ID, "owner"), ErrBoardNotFound)
}

func (s *ServicesTestSuite) TestRemoveMember_OwnerStays() {
	board, _ := s.createBoardWithCard("owner")
	s.ErrorIs(s.boards.RemoveMember(s.ctx, board.ID, "owner", "owner"), ErrCannotRemoveOwner)
	s.ErrorIs(s.boards.RemoveMember(s.ctx, board.ID, "owner", "nobody"), ErrMemberNotOnBoard)
}

func (s *ServicesTestSuite) TestCreateCard_BoardMustExist() {
	_, err := s.cards.CreateCard(s.ctx, CreateCardInput{BoardID: "missing", Name: "Card", OwnerID: "u"})
	s.ErrorIs(err, ErrBoardNotFound)
}

func (s *ServicesTestSuite) TestGetCard_WrongBoard() {
	_, card := s.createBoardWithCard("owner")
	other, _ := s.createBoardWithCard("owner")

	_, err := s.cards.GetCard(s.ctx, other.ID, card.ID)
	s.ErrorIs(err, ErrCardNotFound)
}

func (s *ServicesTestSuite) TestCreateTask_Validation() {
	board, card := s.createBoardWithCard("owner")
	bogusPriority := models.TaskPriority("urgent")

	_, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{BoardID: board.ID, CardID: card.ID, OwnerID: "owner"})
	s.ErrorIs(err, ErrTitleRequired)

	_, err = s.tasks.CreateTask(s.ctx, CreateTaskInput{BoardID: board.ID, CardID: card.ID, Title: "t", Status: "todo", OwnerID: "owner"})
	s.ErrorIs(err, ErrInvalidTaskStatus)

	_, err = s.tasks.CreateTask(s.ctx, CreateTaskInput{BoardID: board.ID, CardID: card.ID, Title: "t", Priority: &bogusPriority, OwnerID: "owner"})
	s.ErrorIs(err, ErrInvalidTaskPriority)

	_, err = s.tasks.CreateTask(s.ctx, CreateTaskInput{BoardID: board.ID, CardID: card.ID, Title: "t", AssignedTo: []string{"stranger"}, OwnerID: "owner"})
	s.ErrorIs(err, ErrInvalidTaskAssignee)

	_, err = s.tasks.CreateTask(s.ctx, CreateTaskInput{BoardID: board.ID, CardID: "missing", Title: "t", OwnerID: "owner"})
	s.ErrorIs(err, ErrCardNotFound)
}

func (s *ServicesTestSuite) TestTaskLifecycle() {
	board, card := s.createBoardWithCard("owner")
	critical := models.TaskPriorityCritical

	task, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{
		BoardID: board.ID, CardID: card.ID, Title: "Ship", Priority: &critical,
		AssignedTo: []string{"owner"}, OwnerID: "owner",
	})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusIcebox, task.Status)

	for _, status := range []models.TaskStatus{models.TaskStatusDone, models.TaskStatusBacklog, models.TaskStatusWaitingReview} {
		status := status
		updated, err := s.tasks.UpdateTask(s.ctx, board.ID, card.ID, task.ID, UpdateTaskInput{Status: &status})
		s.Require().NoError(err)
		s.Equal(status, updated.Status)
	}

	bogus := models.TaskStatus("archived")
	_, err = s.tasks.UpdateTask(s.ctx, board.ID, card.ID, task.ID, UpdateTaskInput{Status: &bogus})
	s.ErrorIs(err, ErrInvalidTaskStatus)

	empty := " "
	_, err = s.tasks.UpdateTask(s.ctx, board.ID, card.ID, task.ID, UpdateTaskInput{Title: &empty})
	s.ErrorIs(err, ErrTitleEmpty)

	s.Require().NoError(s.tasks.DeleteTask(s.ctx, board.ID, card.ID, task.ID))
	_, err = s.tasks.GetTask(s.ctx, board.ID, card.ID, task.ID)
	s.ErrorIs(err, ErrTaskNotFound)

	reloaded, err := s.cards.GetCard(s.ctx, board.ID, card.ID)
	s.Require().NoError(err)
	s.Equal(0, reloaded.TasksCount)
}

func (s *ServicesTestSuite) TestUpdateTask_KeepsOrderAcrossColumns() {
	board, card := s.createBoardWithCard("owner")
	task, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{BoardID: board.ID, CardID: card.ID, Title: "Drag me", OwnerID: "owner"})
	s.Require().NoError(err)

	for _, status := range []models.TaskStatus{models.TaskStatusBacklog, models.TaskStatusDone} {
		status := status
		updated, err := s.tasks.UpdateTask(s.ctx, board.ID, card.ID, task.ID, UpdateTaskInput{Status: &status})
		s.Require().NoError(err)
		s.Equal(task.Order, updated.Order)
	}
}

func (s *ServicesTestSuite) TestGenerateTasks_FiltersDrafts() {
	board, card := s.createBoardWithCard("owner")
	past := time.Now().Add(-72 * time.Hour)
	future := time.Now().Add(72 * time.Hour)
	s.generator.tasks = []GeneratedTask{
		{Title: "Write tests", Priority: "high", Deadline: &future},
		{Title: "  "},
		{Title: "Old", Priority: "whenever", Deadline: &past},
	}

	drafts, err := s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{BoardID: board.ID, CardID: card.ID, Text: "write tests; old thing"})
	s.Require().NoError(err)
	s.Require().Len(drafts, 2)
	s.Equal("high", drafts[0].Priority)
	s.NotNil(drafts[0].Deadline)
	s.Empty(drafts[1].Priority)
	s.Nil(drafts[1].Deadline)

	// drafts are not persisted
	tasks, err := s.tasks.ListTasks(s.ctx, board.ID, card.ID)
	s.Require().NoError(err)
	s.Empty(tasks)
}

func (s *ServicesTestSuite) TestGenerateTasks_Errors() {
	board, card := s.createBoardWithCard("owner")

	_, err := s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{BoardID: board.ID, CardID: card.ID})
	s.ErrorIs(err, ErrAITextRequired)

	_, err = s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{BoardID: board.ID, CardID: card.ID, Text: "nothing to do"})
	s.ErrorIs(err, ErrAINoTasksGenerated)

	noAI := NewTaskService(s.repos.Tasks, s.repos.Cards, s.repos.Boards, nil)
	_, err = noAI.GenerateTasks(s.ctx, GenerateTasksInput{BoardID: board.ID, CardID: card.ID, Text: "x"})
	s.ErrorIs(err, ErrAIServiceNotConfigured)
}

func (s *ServicesTestSuite) TestInvitationFlow() {
	owner := s.createUser("owner@example.com")
	guest := s.createUser("guest@example.com")
	board, _ := s.createBoardWithCard(owner.ID)

	_, err := s.invitations.Invite(s.ctx, InviteInput{BoardID: board.ID, ActorID: guest.ID, Email: guest.Email})
	s.ErrorIs(err, ErrNotBoardOwner)

	_, err = s.invitations.Invite(s.ctx, InviteInput{BoardID: board.ID, ActorID: owner.ID, Email: "nobody@example.com"})
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.invitations.Invite(s.ctx, InviteInput{BoardID: board.ID, ActorID: owner.ID, Email: owner.Email})
	s.ErrorIs(err, ErrAlreadyBoardMember)

	invitation, err := s.invitations.Invite(s.ctx, InviteInput{BoardID: board.ID, ActorID: owner.ID, Email: "GUEST@example.com"})
	s.Require().NoError(err)
	s.Equal(models.InvitationPending, invitation.Status)

	_, err = s.invitations.Invite(s.ctx, InviteInput{BoardID: board.ID, ActorID: owner.ID, Email: guest.Email})
	s.ErrorIs(err, ErrInvitationAlreadyPending)

	pending, err := s.invitations.ListInvitations(s.ctx, guest.ID)
	s.Require().NoError(err)
	s.Len(pending, 1)

	_, err = s.invitations.Accept(s.ctx, invitation.ID, owner.ID)
	s.ErrorIs(err, ErrInvitationNotFound)

	_, err = s.invitations.Accept(s.ctx, invitation.ID, guest.ID)
	s.Require().NoError(err)
	_, err = s.invitations.Accept(s.ctx, invitation.ID, guest.ID)
	s.Require().NoError(err)

	_, err = s.invitations.Decline(s.ctx, invitation.ID, guest.ID)
	s.ErrorIs(err, ErrInvalidInvitationTransition)

	loaded, err := s.boards.GetBoard(s.ctx, board.ID, guest.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{owner.ID, guest.ID}, loaded.Members)

	// a member may leave on their own
	s.Require().NoError(s.boards.RemoveMember(s.ctx, board.ID, guest.ID, guest.ID))
	_, err = s.boards.GetBoard(s.ctx, board.ID, guest.ID)
	s.ErrorIs(err, ErrNotBoardMember)
}

func (s *ServicesTestSuite) TestAttachments() {
	board, card := s.createBoardWithCard("owner")
	task, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{BoardID: board.ID, CardID: card.ID, Title: "t", OwnerID: "owner"})
	s.Require().NoError(err)

	base := AttachInput{BoardID: board.ID, CardID: card.ID, TaskID: task.ID, CreatedBy: "owner"}

	bad := base
	bad.Type = "gist"
	_, err = s.attachments.Attach(s.ctx, bad)
	s.ErrorIs(err, ErrInvalidAttachmentType)

	pr := base
	pr.Type = models.AttachmentPullRequest
	_, err = s.attachments.Attach(s.ctx, pr)
	s.ErrorIs(err, ErrAttachmentNumber)

	commit := base
	commit.Type = models.AttachmentCommit
	_, err = s.attachments.Attach(s.ctx, commit)
	s.ErrorIs(err, ErrAttachmentSHA)

	pr.Number = "#42"
	created, err := s.attachments.Attach(s.ctx, pr)
	s.Require().NoError(err)
	s.Equal("42", created.Number)

	list, err := s.attachments.ListAttachments(s.ctx, board.ID, card.ID, task.ID)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.ErrorIs(s.attachments.RemoveAttachment(s.ctx, "other-task", created.ID), ErrAttachmentNotFound)
	s.NoError(s.attachments.RemoveAttachment(s.ctx, task.ID, created.ID))
}

func (s *ServicesTestSuite) TestUpdateDisplayName() {
	user := s.createUser("a@example.com")

	_, err := s.users.UpdateDisplayName(s.ctx, user.ID, "")
	s.ErrorIs(err, ErrDisplayNameRequired)

	updated, err := s.users.UpdateDisplayName(s.ctx, user.ID, "Alice")
	s.Require().NoError(err)
	s.Equal("Alice", updated.DisplayName)
	s.Equal("a@example.com", updated.Email)

	_, err = s.users.UpdateDisplayName(s.ctx, "missing", "Bob")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *ServicesTestSuite) TestSendAndVerifyCode_CreatesUser() {
	sent, err := s.auth.SendCode(s.ctx, "New@Example.com")
	s.Require().NoError(err)
	s.False(sent.Delivered)
	s.Len(sent.Code, 6)

	result, err := s.auth.VerifyCode(s.ctx, VerifyCodeInput{Email: "new@example.com", Code: sent.Code})
	s.Require().NoError(err)
	s.NotEmpty(result.Token)
	s.Equal("new@example.com", result.User.Email)
	s.Equal("new", result.User.DisplayName)

	_, err = s.auth.VerifyCode(s.ctx, VerifyCodeInput{Email: "new@example.com", Code: sent.Code})
	s.ErrorIs(err, ErrVerificationCodeMissing)
}

func (s *ServicesTestSuite) TestSignup_DuplicateEmail() {
	s.createUser("taken@example.com")

	sent, err := s.auth.SendCode(s.ctx, "taken@example.com")
	s.Require().NoError(err)

	_, err = s.auth.Signup(s.ctx, VerifyCodeInput{Email: "taken@example.com", Code: sent.Code, DisplayName: "Again"})
	s.ErrorIs(err, ErrEmailAlreadyRegistered)
}

func (s *ServicesTestSuite) TestCompleteGitHubLogin_LinksAccount() {
	existing := s.createUser("octo@example.com")

	result, err := s.auth.CompleteGitHubLogin(s.ctx, "abc")
	s.Require().NoError(err)
	s.Equal(existing.ID, result.User.ID)
	s.Equal("octocat", result.User.GitHubLogin)

	token, login, err := s.auth.GitHubToken(s.ctx, existing.ID)
	s.Require().NoError(err)
	s.Equal("gho_abc", token)
	s.Equal("octocat", login)

	repos, err := NewGitHubService(s.auth, s.gitHub).ListRepositories(s.ctx, existing.ID)
	s.Require().NoError(err)
	s.Len(repos, 1)
}

func (s *ServicesTestSuite) TestCompleteGitHubLogin_UpstreamFailure() {
	s.gitHub.err = errors.Join(github.ErrUpstream, errors.New("bad_verification_code"))

	_, err := s.auth.CompleteGitHubLogin(s.ctx, "abc")
	s.ErrorIs(err, github.ErrUpstream)
}

func (s *ServicesTestSuite) TestGitHubToken_NotConnected() {
	user := s.createUser("plain@example.com")

	_, _, err := s.auth.GitHubToken(s.ctx, user.ID)
	s.ErrorIs(err, ErrGitHubNotConnected)

	_, err = NewGitHubService(s.auth, s.gitHub).RepositoryInfo(s.ctx, user.ID, "octo", "board")
	s.ErrorIs(err, ErrGitHubNotConnected)
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}
