package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"library-backend/internal/config"
	bookhandler "library-backend/internal/domains/book/handler"
	bookrepo "library-backend/internal/domains/book/repository"
	bookservice "library-backend/internal/domains/book/service"
	dashboardhandler "library-backend/internal/domains/dashboard/handler"
	dashboardrepo "library-backend/internal/domains/dashboard/repository"
	dashboardservice "library-backend/internal/domains/dashboard/service"
	txhandler "library-backend/internal/domains/transaction/handler"
	txjob "library-backend/internal/domains/transaction/job"
	txrepo "library-backend/internal/domains/transaction/repository"
	txservice "library-backend/internal/domains/transaction/service"
	userhandler "library-backend/internal/domains/user/handler"
	userjob "library-backend/internal/domains/user/job"
	userrepo "library-backend/internal/domains/user/repository"
	userservice "library-backend/internal/domains/user/service"
	"library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/email"
	"library-backend/internal/infrastructure/queue"
	"library-backend/internal/infrastructure/sms"
	"library-backend/internal/infrastructure/storage"
	pkgcache "library-backend/pkg/cache"
	"library-backend/pkg/clock"
	"library-backend/pkg/jwt"
)

// Container wires every dependency of the application. Both binaries build
// one; the api uses the handlers, the worker uses the services and jobs.
type Container struct {
	Config *config.Config
	Clock  clock.Clock

	// Infrastructure
	DB         *database.PostgresDB
	Cache      pkgcache.Cache
	Queue      *queue.Client
	JWTManager *jwt.Manager
	Email      email.EmailService
	SMS        sms.SMSService
	Storage    *storage.MinIOStorage

	// Services
	BookService        bookservice.ServiceInterface
	BookImportService  bookservice.ImportServiceInterface
	BookCoverService   bookservice.CoverServiceInterface
	UserService        userservice.ServiceInterface
	TransactionService txservice.ServiceInterface
	DashboardService   dashboardservice.ServiceInterface

	// Handlers
	BookHandler        *bookhandler.Handler
	UserHandler        *userhandler.Handler
	TransactionHandler *txhandler.Handler
	DashboardHandler   *dashboardhandler.Handler

	// Jobs
	SweepJob    *txjob.SweepJob
	ReminderJob *txjob.ReminderJob
	CleanupJob  *userjob.CleanupJob
}

// New builds the full dependency graph and connects to Postgres and Redis.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
		Clock:  clock.System(),
	}

	// ===== Infrastructure =====
	c.DB = database.NewPostgresDB(&cfg.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	c.Cache = cache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if connector, ok := c.Cache.(interface{ Connect(context.Context) error }); ok {
		if err := connector.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Queue.Ping(); err != nil {
		log.Warn().Err(err).Msg("[Container] queue broker unreachable at startup")
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry(), cfg.JWT.RefreshExpiry())
	c.Email = email.NewSMTPEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	c.SMS = newSMSService(cfg.SMS)

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	c.Storage = minioStorage

	// ===== Repositories =====
	pool := c.DB.Pool
	bookRepository := bookrepo.NewRepository(pool)
	userRepository := userrepo.NewRepository(pool)
	txRepository := txrepo.NewRepository(pool)
	dashboardRepository := dashboardrepo.NewRepository(pool)

	// ===== Services =====
	policy := txservice.LoanPolicy{
		BorrowPeriodDays: cfg.Loan.BorrowPeriodDays,
		MaxRenewals:      cfg.Loan.MaxRenewals,
		BorrowCap:        cfg.Loan.BorrowCap,
		FinePerDay:       cfg.Loan.FinePerDay,
		DueSoonWindow:    time.Duration(cfg.Loan.DueSoonWindowHrs) * time.Hour,
	}

	c.BookService = bookservice.NewService(bookRepository, c.Clock)
	c.BookImportService = bookservice.NewImportService(bookRepository, c.Clock)
	c.BookCoverService = bookservice.NewCoverService(bookRepository, c.Storage, storage.NewImageProcessor())
	c.TransactionService = txservice.NewService(
		txRepository, bookRepository, userRepository, c.Queue, c.Cache, policy, c.Clock)
	c.UserService = userservice.NewService(
		userRepository, txRepository, c.Queue, c.Cache, c.JWTManager, cfg.JWT, c.Clock)
	c.DashboardService = dashboardservice.NewService(dashboardRepository, bookRepository, c.Clock)

	// ===== Handlers =====
	c.BookHandler = bookhandler.NewHandler(c.BookService, c.BookImportService, c.BookCoverService, c.Cache)
	c.UserHandler = userhandler.NewHandler(c.UserService)
	c.TransactionHandler = txhandler.NewHandler(c.TransactionService)
	c.DashboardHandler = dashboardhandler.NewHandler(c.DashboardService, c.Cache)

	// ===== Jobs =====
	c.SweepJob = txjob.NewSweepJob(c.TransactionService, c.Queue, c.Clock)
	c.ReminderJob = txjob.NewReminderJob(c.TransactionService, c.Queue, c.Clock)
	c.CleanupJob = userjob.NewCleanupJob(c.UserService)

	log.Info().Msg("[Container] dependency graph initialized")
	return c, nil
}

func newSMSService(cfg config.SMSConfig) sms.SMSService {
	if cfg.Provider == "twilio" {
		return sms.NewTwilioSMSService(cfg.AccountSID, cfg.AuthToken, cfg.FromNumber)
	}
	return sms.NewMockSMSService()
}

// Close releases external connections in reverse dependency order.
func (c *Container) Close() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Warn().Err(err).Msg("[Container] failed to close queue client")
		}
	}
	if closer, ok := c.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("[Container] failed to close redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("[Container] shut down")
}
