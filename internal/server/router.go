package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/minitrello-api/internal/config"
	"github.com/yukikurage/minitrello-api/internal/constants"
	"github.com/yukikurage/minitrello-api/internal/handlers"
	"github.com/yukikurage/minitrello-api/internal/identity"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/mailer"
	"github.com/yukikurage/minitrello-api/internal/metrics"
	"github.com/yukikurage/minitrello-api/internal/middleware"
	"github.com/yukikurage/minitrello-api/internal/repository"
	"github.com/yukikurage/minitrello-api/internal/services"
	"github.com/yukikurage/minitrello-api/internal/verification"
	"gorm.io/gorm"
)

// Options are the collaborators the router is built from
type Options struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *gorm.DB
	Metrics      *metrics.Metrics
	SessionStore sessions.Store
	Mailer       mailer.Sender
	// Optional: codes live in the database when nil
	Redis *redis.Client
	// Optional: GitHub sign-in and browsing answer 503 / 404 when nil
	GitHub services.GitHubAPI
	// Optional: task drafting answers 503 when nil
	Generator services.TaskGenerator
}

// NewRouter wires repositories, services and handlers into a gin engine
func NewRouter(opts Options) (*gin.Engine, error) {
	cfg := opts.Config
	log := opts.Logger
	expose := !cfg.IsProduction()

	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	repos := repository.NewGormRepositories(opts.DB)

	var codeStore verification.Store = verification.NewDatabaseStore(repos.VerificationCodes)
	if opts.Redis != nil {
		codeStore = verification.NewRedisStore(opts.Redis)
	}

	tokens := identity.NewProvider(cfg.JWT)
	authService := services.NewAuthService(repos.Users, verification.NewService(codeStore), opts.Mailer, tokens, opts.GitHub, expose)
	boardService := services.NewBoardService(repos.Boards)
	cardService := services.NewCardService(repos.Cards, repos.Boards)
	taskService := services.NewTaskService(repos.Tasks, repos.Cards, repos.Boards, opts.Generator)
	invitationService := services.NewInvitationService(repos.Invitations, repos.Boards, repos.Users)
	attachmentService := services.NewAttachmentService(repos.Attachments, repos.Tasks)
	userService := services.NewUserService(repos.Users)
	githubService := services.NewGitHubService(authService, opts.GitHub)

	authHandler := handlers.NewAuthHandler(authService, opts.Metrics, log, cfg.App.FrontendURL, expose)
	userHandler := handlers.NewUserHandler(userService, log)
	boardHandler := handlers.NewBoardHandler(boardService, opts.Metrics, log)
	cardHandler := handlers.NewCardHandler(cardService, opts.Metrics, log)
	taskHandler := handlers.NewTaskHandler(taskService, opts.Metrics, log, expose)
	invitationHandler := handlers.NewInvitationHandler(invitationService, log)
	githubHandler := handlers.NewGitHubHandler(githubService, attachmentService, log, expose)
	healthHandler := handlers.NewHealthHandler(opts.DB, cfg.App.Environment)

	requireAuth := middleware.RequireAuth(tokens, log)
	boardAccess := middleware.RequireBoardAccess(boardService, log)
	codeLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	// verify and signup share a budget so guesses cannot be split across them
	verifyLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(sessions.Sessions(constants.SessionCookieName, opts.SessionStore))

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	r.NoRoute(healthHandler.NotFound)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.GET("/github", authHandler.GitHubLogin)
			auth.GET("/github/callback", authHandler.GitHubCallback)
			auth.GET("/github/token", requireAuth, authHandler.GitHubToken)
			auth.POST("/send-code", middleware.RateLimit(codeLimiter), authHandler.SendCode)
			auth.POST("/verify-code", middleware.RateLimit(verifyLimiter), authHandler.VerifyCode)
			auth.POST("/signup", middleware.RateLimit(verifyLimiter), authHandler.Signup)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.PATCH("/me", userHandler.UpdateMe)
			users.GET("/:userId", userHandler.GetUser)
		}

		api.GET("/cards", requireAuth, cardHandler.ListMyCards)

		boards := api.Group("/boards")
		boards.Use(requireAuth)
		{
			boards.POST("", boardHandler.CreateBoard)
			boards.GET("", boardHandler.ListBoards)

			board := boards.Group("/:boardId")
			board.Use(boardAccess)
			{
				board.GET("", boardHandler.GetBoard)
				board.PATCH("", boardHandler.UpdateBoard)
				board.DELETE("", middleware.RequireBoardOwner(), boardHandler.DeleteBoard)
				board.DELETE("/members/:userId", boardHandler.RemoveMember)
				board.POST("/invitations", middleware.RequireBoardOwner(), invitationHandler.Invite)

				board.POST("/cards", cardHandler.CreateCard)
				board.GET("/cards", cardHandler.ListCards)
				board.GET("/cards/:cardId", cardHandler.GetCard)
				board.PATCH("/cards/:cardId", cardHandler.UpdateCard)
				board.DELETE("/cards/:cardId", cardHandler.DeleteCard)

				board.POST("/cards/:cardId/tasks", taskHandler.CreateTask)
				board.GET("/cards/:cardId/tasks", taskHandler.ListTasks)
				board.POST("/cards/:cardId/tasks/generate", taskHandler.GenerateTasks)
				board.GET("/cards/:cardId/tasks/:taskId", taskHandler.GetTask)
				board.PATCH("/cards/:cardId/tasks/:taskId", taskHandler.UpdateTask)
				board.DELETE("/cards/:cardId/tasks/:taskId", taskHandler.DeleteTask)
			}
		}

		invitations := api.Group("/invitations")
		invitations.Use(requireAuth)
		{
			invitations.GET("", invitationHandler.ListInvitations)
			invitations.POST("/:invitationId/accept", invitationHandler.Accept)
			invitations.POST("/:invitationId/decline", invitationHandler.Decline)
		}

		gh := api.Group("/github")
		gh.Use(requireAuth)
		{
			gh.GET("/repositories", githubHandler.ListRepositories)
			gh.GET("/repositories/:owner/:repo", githubHandler.RepositoryInfo)

			task := gh.Group("/boards/:boardId/cards/:cardId/tasks/:taskId")
			task.Use(boardAccess)
			{
				task.POST("/github-attach", githubHandler.Attach)
				task.GET("/github-attachments", githubHandler.ListAttachments)
				task.DELETE("/github-attachments/:attachmentId", githubHandler.RemoveAttachment)
			}
		}
	}

	return r, nil
}
