package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/infrastructure/repositories"
	"github.com/you/fintrack/internal/mocks"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testClock is a settable time source shared by the services under test
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// testStack wires the real services over sqlite and miniredis with mocked
// delivery so tests can read issued codes back from the store
type testStack struct {
	db         *gorm.DB
	users      domain.UserRepository
	categories domain.CategoryRepository
	expenses   domain.TransactionRepository
	incomes    domain.TransactionRepository
	redis      *miniredis.Miniredis
	notifier   *mocks.MockNotificationService
	audit      *mocks.MockAuditLogger
	clock      *testClock

	otp          domain.OTPService
	auth         domain.AuthService
	permissions  domain.PermissionService
	admin        domain.UserAdminService
	categorySvc  domain.CategoryService
	expenseSvc   domain.TransactionService
	incomeSvc    domain.TransactionService
	reports      domain.ReportService
	exports      domain.ExportService
	passwordHash domain.PasswordService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func testOTPConfig() OTPConfig {
	return OTPConfig{
		Length:       6,
		TTL:          10 * time.Minute,
		MaxAttempts:  5,
		ResendWindow: 30 * time.Second,
	}
}

func newTestStack(t *testing.T, strictCategories bool) *testStack {
	t.Helper()

	s := &testStack{
		db:       newTestDB(t),
		redis:    miniredis.RunT(t),
		notifier: mocks.NewMockNotificationService(),
		audit:    mocks.NewMockAuditLogger(),
		clock:    &testClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	s.users = repositories.NewUserRepository(s.db)
	s.categories = repositories.NewCategoryRepository(s.db)
	s.expenses = repositories.NewTransactionRepository(s.db, domain.KindExpense)
	s.incomes = repositories.NewTransactionRepository(s.db, domain.KindIncome)

	redisClient := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	otp := NewOTPService(s.notifier, s.users, redisClient, testOTPConfig()).(*OTPServiceImpl)
	otp.now = s.clock.Now
	s.otp = otp

	s.passwordHash = mocks.NewMockPasswordService()
	s.auth = NewAuthService(s.users, s.categories, s.passwordHash, mocks.NewMockTokenService(), s.otp, s.audit)
	s.permissions = NewPermissionService(s.users, s.audit)
	s.admin = NewUserAdminService(s.users, s.categories, s.passwordHash, s.audit)
	s.categorySvc = NewCategoryService(s.categories)
	s.expenseSvc = NewTransactionService(s.expenses, s.users, s.categories, s.permissions, strictCategories)
	s.incomeSvc = NewTransactionService(s.incomes, s.users, s.categories, s.permissions, strictCategories)
	s.reports = NewReportService(s.expenses, s.incomes, s.users, s.permissions)
	s.exports = NewExportService(s.expenses, s.incomes, s.users, s.permissions)
	return s
}

// liveCode reads the stored OTP of email
func (s *testStack) liveCode(t *testing.T, email string) string {
	t.Helper()
	user, err := s.users.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("failed to load %s: %v", email, err)
	}
	if user.OTPCode == "" {
		t.Fatalf("no live otp for %s", email)
	}
	return user.OTPCode
}

// wrongCode returns a code of the same width that differs from code
func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

// clearThrottle lets the next resend through without moving the clock
func (s *testStack) clearThrottle() {
	s.redis.FlushAll()
}

// createUser inserts a verified user directly
func (s *testStack) createUser(t *testing.T, email, mobile, role string, managerID *uint, perms map[string]any) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Test",
		Email:        email,
		Mobile:       mobile,
		PasswordHash: "hashed:pw12345678",
		Role:         role,
		Status:       domain.StatusVerified,
		ManagerID:    managerID,
		Permissions:  perms,
	}
	if err := s.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func principal(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Role: u.Role}
}
