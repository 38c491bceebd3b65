package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/config"
	httpx "github.com/you/fintrack/internal/http"
	"github.com/you/fintrack/internal/http/handlers"
	"github.com/you/fintrack/internal/http/middleware"
	"github.com/you/fintrack/internal/infrastructure/audit"
	"github.com/you/fintrack/internal/infrastructure/auth"
	"github.com/you/fintrack/internal/infrastructure/database"
	"github.com/you/fintrack/internal/infrastructure/notifications"
	"github.com/you/fintrack/internal/infrastructure/repositories"
	"github.com/you/fintrack/internal/services"
)

const rateLimitPrefix = "rl:"

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Repositories
	UserRepo     domain.UserRepository
	CategoryRepo domain.CategoryRepository
	ExpenseRepo  domain.TransactionRepository
	IncomeRepo   domain.TransactionRepository
	CounterStore domain.CounterStore

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	AuditLogger     domain.AuditLogger
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	PermissionSvc   domain.PermissionService
	AdminSvc        domain.UserAdminService
	CategorySvc     domain.CategoryService
	ExpenseSvc      domain.TransactionService
	IncomeSvc       domain.TransactionService
	ReportSvc       domain.ReportService
	ExportSvc       domain.ExportService
	PolicySvc       domain.PolicyService
}

// NewContainer connects to postgres and redis, migrates the schema and
// builds every dependency
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := database.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	return Build(cfg, db, rdb)
}

// Build wires the container on top of an open database. redisClient may be
// nil, which disables the OTP resend throttle and the rate limiter.
func Build(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Container, error) {
	c := &Container{Config: cfg, DB: db, RedisClient: redisClient}

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	if err := c.initPolicies(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.CategoryRepo = repositories.NewCategoryRepository(c.DB)
	c.ExpenseRepo = repositories.NewTransactionRepository(c.DB, domain.KindExpense)
	c.IncomeRepo = repositories.NewTransactionRepository(c.DB, domain.KindIncome)
	if c.RedisClient != nil {
		c.CounterStore = repositories.NewCounterStore(c.RedisClient, rateLimitPrefix)
	}
}

func (c *Container) initServices() error {
	cfg := c.Config

	// Initialize basic services
	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	c.AuditLogger = audit.NewLogAuditLogger(log.Default())

	var mailer notifications.EmailSender
	m, err := notifications.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	if err != nil {
		return err
	}
	if m != nil {
		mailer = m
	}
	c.NotificationSvc = notifications.NewNotifier(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, mailer,
		notifications.LogCodes(cfg.GinMode == gin.DebugMode))

	// Initialize OTP service
	otpConfig := services.OTPConfig{
		Length:       cfg.OTP_Length,
		TTL:          cfg.OTP_TTL,
		MaxAttempts:  cfg.OTP_MaxAttempts,
		ResendWindow: cfg.OTP_ResendWindow,
	}
	c.OTPSvc = services.NewOTPService(c.NotificationSvc, c.UserRepo, c.RedisClient, otpConfig)

	c.AuthSvc = services.NewAuthService(c.UserRepo, c.CategoryRepo, c.PasswordSvc, c.TokenSvc, c.OTPSvc, c.AuditLogger)
	c.PermissionSvc = services.NewPermissionService(c.UserRepo, c.AuditLogger)
	c.AdminSvc = services.NewUserAdminService(c.UserRepo, c.CategoryRepo, c.PasswordSvc, c.AuditLogger)
	c.CategorySvc = services.NewCategoryService(c.CategoryRepo)

	c.ExpenseSvc = services.NewTransactionService(c.ExpenseRepo, c.UserRepo, c.CategoryRepo, c.PermissionSvc, cfg.StrictCategories)
	c.IncomeSvc = services.NewTransactionService(c.IncomeRepo, c.UserRepo, c.CategoryRepo, c.PermissionSvc, cfg.StrictCategories)
	c.ReportSvc = services.NewReportService(c.ExpenseRepo, c.IncomeRepo, c.UserRepo, c.PermissionSvc)
	c.ExportSvc = services.NewExportService(c.ExpenseRepo, c.IncomeRepo, c.UserRepo, c.PermissionSvc)
	return nil
}

func (c *Container) initPolicies() error {
	enforcer, err := auth.NewEnforcer(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	c.PolicySvc = services.NewPolicyService(enforcer)
	if err := c.PolicySvc.SeedDefaults(); err != nil {
		return fmt.Errorf("seed policies: %w", err)
	}
	return nil
}

// Router builds the gin engine serving every endpoint
func (c *Container) Router() *gin.Engine {
	h := httpx.Handlers{
		Auth:     handlers.NewAuthHandlers(c.AuthSvc),
		Profile:  handlers.NewProfileHandlers(c.AuthSvc, c.PermissionSvc, c.CategorySvc),
		Expenses: handlers.NewTransactionHandlers(c.ExpenseSvc, c.ExportSvc),
		Incomes:  handlers.NewTransactionHandlers(c.IncomeSvc, c.ExportSvc),
		Reports:  handlers.NewReportHandlers(c.ReportSvc),
		Manager:  handlers.NewManagerHandlers(c.AdminSvc, c.PermissionSvc),
		Admin:    handlers.NewAdminHandlers(c.AdminSvc),
		Policies: handlers.NewPolicyHandlers(c.PolicySvc),
	}

	return httpx.BuildRouter(h, middleware.NewAuthMW(c.TokenSvc), middleware.NewCasbinMW(c.PolicySvc), httpx.RouterOptions{
		CORSOrigins: c.Config.CORSOrigins,
		RateLimit: httpx.RateLimit{
			Store:    c.CounterStore,
			Requests: c.Config.RateLimitMax,
			Window:   c.Config.RateLimitWindow,
		},
		DisableRequestLog: gin.Mode() == gin.TestMode,
	})
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
