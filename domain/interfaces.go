package domain

import (
	"context"
	"io"
	"time"
)

// OTPConsumption is the state change applied when an OTP is consumed
type OTPConsumption struct {
	Purpose      OTPPurpose
	Code         string
	MaxAttempts  int
	Now          time.Time
	PasswordHash string // replaces the stored hash when non-empty
}

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByMobile(ctx context.Context, mobile string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
	ListByManager(ctx context.Context, managerID uint) ([]*User, error)
	ListAll(ctx context.Context) ([]*User, error)

	SetOTP(ctx context.Context, userID uint, purpose OTPPurpose, code string, expiresAt time.Time) error
	RecordOTPFailure(ctx context.Context, userID uint, code string) (int, error)
	InvalidateOTP(ctx context.Context, userID uint) error
	// ConsumeOTP atomically checks and clears the OTP. It returns false when
	// the stored OTP no longer matches the conditions.
	ConsumeOTP(ctx context.Context, userID uint, c OTPConsumption) (bool, error)
}

// CategoryRepository defines category list persistence
type CategoryRepository interface {
	Create(ctx context.Context, set *CategorySet) error
	FindByUser(ctx context.Context, userID uint) (*CategorySet, error)
	Save(ctx context.Context, set *CategorySet) error
}

// TransactionRepository defines persistence for one transaction kind
type TransactionRepository interface {
	Kind() TxKind
	Create(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id uint) (*Transaction, error)
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, userID uint, f TransactionFilter) ([]*Transaction, int64, error)
	ListAll(ctx context.Context, userID uint, from, to *time.Time) ([]*Transaction, error)
}

// CounterStore is a fixed-window hit counter keyed by client
type CounterStore interface {
	// Hit increments key and returns the count inside the current window
	// together with the time left before the window resets.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, name, email, mobile, password string) (*User, error)
	VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, identifier string) error
	ConfirmPasswordReset(ctx context.Context, identifier, code, newPassword string) error
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
	UpdateProfile(ctx context.Context, userID uint, name, mobile string) (*User, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
}

// OTPService defines OTP operations
type OTPService interface {
	Issue(ctx context.Context, user *User, purpose OTPPurpose, channel Channel) (*OTPIssue, error)
	Check(ctx context.Context, user *User, purpose OTPPurpose, code, newPasswordHash string) error
	CanResend(ctx context.Context, email string) (bool, int64, error)
}

// PermissionService manages capability flags of managed users
type PermissionService interface {
	Get(ctx context.Context, actor Principal, userID uint) (Permissions, error)
	Set(ctx context.Context, actor Principal, userID uint, updates map[string]bool) (Permissions, error)
	Require(ctx context.Context, actor Principal, capability string) error
	Team(ctx context.Context, actor Principal) ([]*User, error)
}

// UserAdminService covers manager and admin user management
type UserAdminService interface {
	CreateManagedUser(ctx context.Context, actor Principal, in ManagedUserInput) (*User, error)
	ListUsers(ctx context.Context, actor Principal) ([]*User, error)
	SetRole(ctx context.Context, actor Principal, userID uint, role string) (*User, error)
	DeleteUser(ctx context.Context, actor Principal, userID uint) error
}

// ManagedUserInput is the payload a manager uses to create a team member
type ManagedUserInput struct {
	Name        string
	Email       string
	Mobile      string
	Password    string
	Permissions map[string]bool
}

// TransactionService is the CRUD contract for one transaction kind
type TransactionService interface {
	Kind() TxKind
	List(ctx context.Context, actor Principal, ownerID uint, f TransactionFilter) (*TransactionPage, error)
	Get(ctx context.Context, actor Principal, id uint) (*Transaction, error)
	Create(ctx context.Context, actor Principal, in TransactionInput) (*Transaction, error)
	Update(ctx context.Context, actor Principal, id uint, in TransactionInput) (*Transaction, error)
	Delete(ctx context.Context, actor Principal, id uint) error
}

// CategoryService manages a user's category lists
type CategoryService interface {
	List(ctx context.Context, userID uint, kind TxKind) ([]string, error)
	Add(ctx context.Context, userID uint, kind TxKind, name string) ([]string, error)
	Remove(ctx context.Context, userID uint, kind TxKind, name string) ([]string, error)
}

// ReportService aggregates transactions
type ReportService interface {
	Summary(ctx context.Context, actor Principal, ownerID uint, from, to time.Time) (*Summary, error)
}

// ExportService writes transactions in a downloadable format
type ExportService interface {
	Export(ctx context.Context, actor Principal, ownerID uint, kind TxKind, format string, w io.Writer) error
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID uint, role string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	TTL() time.Duration
}

// Channel is the delivery route for an OTP
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
	SeedDefaults() error
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	AddGroupingPolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
