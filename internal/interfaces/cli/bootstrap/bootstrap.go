// Package bootstrap assembles the engine's dependency graph for the CLI
// commands. Every command that needs a running stack goes through New so the
// wiring exists in exactly one place.
package bootstrap

import (
	"fmt"
	"os"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/application/lifecycle"
	"github.com/custos-grc/custos/internal/application/reconcile"
	"github.com/custos-grc/custos/internal/application/ticketsync"
	domaindirectory "github.com/custos-grc/custos/internal/domain/directory"
	"github.com/custos-grc/custos/internal/domain/ticketing"
	directoryadapter "github.com/custos-grc/custos/internal/infrastructure/adapters/directory"
	"github.com/custos-grc/custos/internal/infrastructure/adapters/jira"
	"github.com/custos-grc/custos/internal/infrastructure/audit"
	"github.com/custos-grc/custos/internal/infrastructure/cache"
	"github.com/custos-grc/custos/internal/infrastructure/config"
	"github.com/custos-grc/custos/internal/infrastructure/database"
	"github.com/custos-grc/custos/internal/infrastructure/repository"
	"github.com/custos-grc/custos/internal/shared/biztime"
	"github.com/custos-grc/custos/internal/shared/logger"
)

// Options controls optional bootstrap behavior.
type Options struct {
	// Env selects the configuration environment.
	Env string
	// PromptJiraToken reads the Jira API token from the terminal when the
	// configuration leaves it empty. Tokens do not belong in config files.
	PromptJiraToken bool
}

// App is the assembled dependency graph.
type App struct {
	Config *config.Config
	Logger logger.Interface
	DB     *gorm.DB
	Redis  *redis.Client

	Emitter    *audit.GormEmitter
	AuditQuery *audit.Query

	AssignmentRepo *repository.AssignmentRepository
	CatalogRepo    *repository.CatalogRepository
	UserRepo       *repository.UserRepository

	Directory    domaindirectory.Directory
	Lifecycle    *lifecycle.Service
	Reconciler   *reconcile.DriftReconciler
	Synchronizer *ticketsync.Synchronizer
}

// New loads configuration and builds the full stack.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init("UTC"); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}

	if opts.PromptJiraToken && cfg.Jira.APIToken == "" {
		token, err := promptSecret("Jira API token: ")
		if err != nil {
			return nil, err
		}
		cfg.Jira.APIToken = token
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db := database.Get()

	assignmentRepo := repository.NewAssignmentRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)

	emitter := audit.NewGormEmitter(db, log)

	// Redis is optional. Without it, directory lookups go straight upstream.
	var redisClient *redis.Client
	var dir domaindirectory.Directory = directoryadapter.NewClient(cfg.Directory, log)
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warnw("redis unavailable, directory snapshot cache disabled", "error", err)
		} else {
			dir = cache.NewDirectorySnapshotCache(dir, redisClient, cfg.Directory.SnapshotTTL(), log)
		}
	}

	lifecycleSvc := lifecycle.NewService(assignmentRepo, emitter, log)

	resolver := reconcile.NewBlueprintResolver(assignmentRepo, catalogRepo, log)
	reconciler := reconcile.NewDriftReconciler(
		resolver,
		assignmentRepo,
		catalogRepo,
		userRepo,
		dir,
		cfg.Reconcile,
		cfg.Scheduler.DriftRecomputeConcurrent,
		log,
	)

	gateway := jira.NewClient(cfg.Jira, log)
	synchronizer := ticketsync.NewSynchronizer(
		gateway,
		ticketing.NewSubstringMatcher(),
		lifecycleSvc,
		assignmentRepo,
		userRepo,
		catalogRepo,
		dir,
		emitter,
		log,
	)

	return &App{
		Config:         cfg,
		Logger:         log,
		DB:             db,
		Redis:          redisClient,
		Emitter:        emitter,
		AuditQuery:     audit.NewQuery(db),
		AssignmentRepo: assignmentRepo,
		CatalogRepo:    catalogRepo,
		UserRepo:       userRepo,
		Directory:      dir,
		Lifecycle:      lifecycleSvc,
		Reconciler:     reconciler,
		Synchronizer:   synchronizer,
	}, nil
}

// Close flushes the audit emitter and releases connections.
func (a *App) Close() {
	if a.Emitter != nil {
		a.Emitter.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warnw("failed to close redis client", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		a.Logger.Warnw("failed to close database", "error", err)
	}
}

func promptSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("jira api token is not configured and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return string(raw), nil
}
