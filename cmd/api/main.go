package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/onboarding-service/internal/api/http"
	"github.com/spec-kit/onboarding-service/internal/api/http/handlers"
	"github.com/spec-kit/onboarding-service/internal/auth"
	"github.com/spec-kit/onboarding-service/internal/config"
	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/events"
	"github.com/spec-kit/onboarding-service/internal/notify"
	"github.com/spec-kit/onboarding-service/internal/observability"
	"github.com/spec-kit/onboarding-service/internal/persistence"
	"github.com/spec-kit/onboarding-service/internal/ratelimit"
	"github.com/spec-kit/onboarding-service/internal/repository"
	"github.com/spec-kit/onboarding-service/internal/repository/memstore"
	"github.com/spec-kit/onboarding-service/internal/schema"
	"github.com/spec-kit/onboarding-service/internal/service"
	"github.com/spec-kit/onboarding-service/internal/session"
	"github.com/spec-kit/onboarding-service/internal/storage"
	"github.com/spec-kit/onboarding-service/internal/worker"
)

type repositories struct {
	submissions repository.SubmissionRepository
	emails      repository.EmailAddressRepository
	tasks       repository.TaskRepository
	assignments repository.TaskAssignmentRepository
	teams       repository.TeamRepository
	departments repository.DepartmentRepository
	managers    repository.ManagerRepository
	recruiters  repository.RecruiterRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, afero.NewOsFs(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	repos, err := buildRepositories(pg, cfg.Auth, logger)
	if err != nil {
		logger.Fatal("failed to build repositories", zap.Error(err))
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var sessions session.Store
	var uploadLimiter ratelimit.Limiter
	if redis.Enabled() {
		sessions = session.NewRedisStore(redis.Client)
		uploadLimiter = ratelimit.NewRedisLimiter(redis.Client, "onboarding:ratelimit:uploads:", cfg.RateLimit.UploadsPerMinute)
	} else {
		mem, err := session.NewMemoryStore()
		if err != nil {
			logger.Fatal("failed to init session store", zap.Error(err))
		}
		sessions = mem
	}

	wizardSchema, err := schema.Load(cfg.Wizard.SchemaFile)
	if err != nil {
		logger.Fatal("failed to load wizard schema", zap.Error(err))
	}

	blobs, err := storage.NewOsBlobStore(cfg.Storage.RootDir, cfg.Storage.PublicBaseURL, storage.Limits{
		MaxDocumentBytes: cfg.Storage.MaxDocumentBytes,
		MaxAudioBytes:    cfg.Storage.MaxAudioBytes,
	})
	if err != nil {
		logger.Fatal("failed to init blob storage", zap.Error(err))
	}

	dispatcher := events.NewAsyncDispatcher(logger, metrics, cfg.Wizard.DispatchTimeout())
	renderer, err := notify.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse notification templates", zap.Error(err))
	}
	senders, closeSenders := buildSenders(cfg.Notification, logger)
	defer closeSenders()

	notificationService := service.NewNotificationService(dispatcher, renderer, senders, logger, cfg.Notification)
	notifications := worker.StartNotificationWorker(notificationService, dispatcher, logger)

	allocator := service.NewEmailAllocator(repos.emails, cfg.Wizard.CompanyDomain, logger, metrics)
	sequencer := service.NewSequencer(service.SequencerDependencies{
		Schema:          wizardSchema,
		Drafts:          service.NewDraftStore(repos.submissions, cfg.Wizard.PersistenceTimeout()),
		Allocator:       allocator,
		ManagerRepo:     repos.managers,
		Dispatcher:      dispatcher,
		DispatchTimeout: cfg.Wizard.DispatchTimeout(),
		Logger:          logger,
		Metrics:         metrics,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:       repos.tasks,
		AssignmentRepo: repos.assignments,
		SubmissionRepo: repos.submissions,
		ManagerRepo:    repos.managers,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	wizardService := service.NewWizardService(sequencer, sessions, taskService, cfg.Wizard.SessionTTL())
	submissionService := service.NewSubmissionService(repos.submissions)
	referenceService := service.NewReferenceService(service.ReferenceDependencies{
		DepartmentRepo: repos.departments,
		TeamRepo:       repos.teams,
		ManagerRepo:    repos.managers,
		RecruiterRepo:  repos.recruiters,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{ManagerRepo: repos.managers})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.managers, authService, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Storage.MaxAudioBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Wizard:         handlers.NewWizardHandler(wizardService, wizardSchema),
		Uploads:        handlers.NewUploadsHandler(blobs, storage.NewLinkSigner(cfg.Auth.JWTSecret, cfg.Storage.LinkTTL())),
		Reference:      handlers.NewReferenceHandler(referenceService),
		Managers:       handlers.NewManagersHandler(authService, taskService, submissionService),
		AuthMiddleware: authMiddleware,
		UploadLimiter:  uploadLimiter,
		Metrics:        metrics,
		Logger:         logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	notifications.Stop(cfg.Wizard.DispatchTimeout())
}

func buildRepositories(pg *persistence.Postgres, authCfg config.AuthConfig, logger *zap.Logger) (*repositories, error) {
	if pg.Enabled() {
		pool := pg.Pool
		return &repositories{
			submissions: repository.NewSubmissionRepository(pool),
			emails:      repository.NewEmailAddressRepository(pool),
			tasks:       repository.NewTaskRepository(pool),
			assignments: repository.NewTaskAssignmentRepository(pool),
			teams:       repository.NewTeamRepository(pool),
			departments: repository.NewDepartmentRepository(pool),
			managers:    repository.NewManagerRepository(pool),
			recruiters:  repository.NewRecruiterRepository(pool),
		}, nil
	}
	store, err := memstore.New()
	if err != nil {
		return nil, err
	}
	if err := seedBootstrapManager(store, authCfg, logger); err != nil {
		return nil, err
	}
	return &repositories{
		submissions: store.Submissions(),
		emails:      store.EmailAddresses(),
		tasks:       store.Tasks(),
		assignments: store.TaskAssignments(),
		teams:       store.Teams(),
		departments: store.Departments(),
		managers:    store.Managers(),
		recruiters:  store.Recruiters(),
	}, nil
}

func seedBootstrapManager(store *memstore.Store, cfg config.AuthConfig, logger *zap.Logger) error {
	if cfg.BootstrapManagerEmail == "" {
		return nil
	}
	hash, err := auth.HashPassword(cfg.BootstrapManagerPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("bootstrap manager: %w", err)
	}
	err = store.PutManager(domain.Manager{
		ID:           uuid.NewString(),
		Name:         "Bootstrap Manager",
		Email:        cfg.BootstrapManagerEmail,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	logger.Info("seeded bootstrap manager", zap.String("email", cfg.BootstrapManagerEmail))
	return nil
}

func buildSenders(cfg config.NotificationConfig, logger *zap.Logger) ([]notify.Sender, func()) {
	var senders []notify.Sender
	var closers []func() error
	if cfg.SMTPHost != "" {
		senders = append(senders, notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom))
	}
	if cfg.WebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.WebhookURL, &http.Client{Timeout: 10 * time.Second}))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := notify.NewKafkaSender(cfg.KafkaBrokers, cfg.KafkaTopic)
		senders = append(senders, kafka)
		closers = append(closers, kafka.Close)
	}
	if len(senders) == 0 {
		logger.Warn("no notification senders configured; notifications are logged only")
	}
	return senders, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close notification sender", zap.Error(err))
			}
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
