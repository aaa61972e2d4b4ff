package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/studyhub/studyhub-backend/config"
	"github.com/studyhub/studyhub-backend/handlers"
	"github.com/studyhub/studyhub-backend/middleware"
	"github.com/studyhub/studyhub-backend/repositories"
	"github.com/studyhub/studyhub-backend/repositories/postgres"
	"github.com/studyhub/studyhub-backend/services/auth"
	"github.com/studyhub/studyhub-backend/services/chat"
	"github.com/studyhub/studyhub-backend/services/dashboard"
	"github.com/studyhub/studyhub-backend/services/github"
	"github.com/studyhub/studyhub-backend/services/notes"
	"github.com/studyhub/studyhub-backend/services/providers"
	"github.com/studyhub/studyhub-backend/services/providers/groq"
	"github.com/studyhub/studyhub-backend/services/questions"
	"github.com/studyhub/studyhub-backend/services/retrieval"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	Notes     repositories.NoteRepository
	Questions repositories.QuestionRepository
	Repos     repositories.RepoRepository
	Chats     repositories.ChatRepository
	TxManager repositories.TransactionManager

	// Services
	TokenManager     *auth.TokenManager
	AuthService      *auth.Service
	NotesService     *notes.Service
	QuestionsService *questions.Service
	GithubService    *github.Service
	ChatService      *chat.Service
	DashboardService *dashboard.Service
	Retrieval        *retrieval.Service
	Completer        providers.Completer

	// HTTP layer
	AuthMiddleware   *middleware.AuthMiddleware
	AuthHandler      *handlers.AuthHandler
	NotesHandler     *handlers.NotesHandler
	QuestionsHandler *handlers.QuestionsHandler
	GithubHandler    *handlers.GithubHandler
	ChatHandler      *handlers.ChatHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initHTTP()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	// Test the connection
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := factory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Notes = repos.Notes
	d.Questions = repos.Questions
	d.Repos = repos.Repos
	d.Chats = repos.Chats
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices initializes domain services
func (d *Dependencies) initServices(cfg *config.Config) error {
	d.TokenManager = auth.NewTokenManager(cfg.Auth)
	d.AuthService = auth.NewService(d.Users, d.TokenManager, d.Logger)

	d.NotesService = notes.NewService(d.Notes, d.Logger)
	d.QuestionsService = questions.NewService(d.Questions, d.Logger)

	completer, err := groq.NewClient(cfg.Groq, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create groq client: %w", err)
	}
	d.Completer = completer

	githubClient := github.NewClient(cfg.GitHub)
	d.GithubService = github.NewService(d.Users, d.Repos, githubClient, d.Completer, d.Logger)

	d.Retrieval = retrieval.NewService(cfg.Retrieval, d.Logger)
	d.ChatService = chat.NewService(
		d.Chats, d.Notes, d.Questions, d.Repos,
		d.TxManager, d.Retrieval, d.Completer, d.Logger,
	)

	d.DashboardService = dashboard.NewService(d.Notes, d.Questions, d.Repos, d.Chats, d.Logger)

	d.Logger.Info("services initialized", zap.String("model", d.Completer.ModelName()))
	return nil
}

// initHTTP initializes the middleware and handler layer
func (d *Dependencies) initHTTP() {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.TokenManager, d.Logger)

	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, d.Logger)
	d.NotesHandler = handlers.NewNotesHandler(d.NotesService, d.Logger)
	d.QuestionsHandler = handlers.NewQuestionsHandler(d.QuestionsService, d.Logger)
	d.GithubHandler = handlers.NewGithubHandler(d.GithubService, d.Logger)
	d.ChatHandler = handlers.NewChatHandler(d.ChatService, d.Logger)
	d.DashboardHandler = handlers.NewDashboardHandler(d.DashboardService, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB.DB, d.Logger)
}

// Close gracefully shuts down all dependencies. Background embedding
// passes are drained before the database connection closes.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	if d.NotesService != nil {
		d.NotesService.WaitForIndexing()
	}
	if d.QuestionsService != nil {
		d.QuestionsService.WaitForIndexing()
	}

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
