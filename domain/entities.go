package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles recognised by the API
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// AccountStatus is the verification state of a user
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusVerified AccountStatus = "verified"
)

// OTPPurpose tells which flow a live OTP belongs to
type OTPPurpose string

const (
	OTPPurposeVerify OTPPurpose = "verify"
	OTPPurposeReset  OTPPurpose = "reset"
)

// User represents an account in the system
type User struct {
	ID           uint
	Name         string
	Email        string
	Mobile       string
	PasswordHash string
	Role         string
	Status       AccountStatus

	// OTP fields are only populated while a verification or reset flow is running
	OTPCode      string
	OTPPurpose   OTPPurpose
	OTPExpiresAt *time.Time
	OTPAttempts  int

	// Permissions holds the raw stored capability map; use ResolvePermissions to read it
	Permissions map[string]any
	ManagerID   *uint

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVerified reports whether the user may log in
func (u *User) IsVerified() bool {
	return u.Status == StatusVerified
}

// HasLiveOTP reports whether an OTP for the given purpose is stored
func (u *User) HasLiveOTP(purpose OTPPurpose) bool {
	return u.OTPCode != "" && u.OTPPurpose == purpose && u.OTPExpiresAt != nil
}

// IsManagedBy reports whether actorID administers this user
func (u *User) IsManagedBy(actorID uint) bool {
	return u.ManagerID != nil && *u.ManagerID == actorID
}

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the principal has the admin role
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// AuthResult represents authentication outcome
type AuthResult struct {
	User      *User
	Token     string
	ExpiresIn int64
}

// OTPIssue describes a freshly issued OTP
type OTPIssue struct {
	UserID    uint
	Purpose   OTPPurpose
	Code      string
	ExpiresAt time.Time
}

// TxKind selects between the two parallel transaction entities
type TxKind string

const (
	KindExpense TxKind = "expense"
	KindIncome  TxKind = "income"
)

// Valid reports whether k is a known kind
func (k TxKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// Table returns the storage table for the kind
func (k TxKind) Table() string {
	if k == KindIncome {
		return "incomes"
	}
	return "expenses"
}

// PaymentMethod is how a transaction was settled
type PaymentMethod string

const (
	MethodBank PaymentMethod = "Bank"
	MethodCash PaymentMethod = "Cash"
)

// Valid reports whether m is a known method
func (m PaymentMethod) Valid() bool {
	return m == MethodBank || m == MethodCash
}

// Transaction is an expense or an income owned by one user
type Transaction struct {
	ID        uint
	Kind      TxKind
	UserID    uint
	Amount    decimal.Decimal
	Category  string
	Note      string
	Date      time.Time
	Method    PaymentMethod
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionInput is the client supplied payload for create and update
type TransactionInput struct {
	Amount   decimal.Decimal
	Category string
	Note     string
	Date     string
	Method   PaymentMethod
}

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
	Method   PaymentMethod
	Page     int
	PageSize int
}

// TransactionPage is one page of a listing
type TransactionPage struct {
	Items    []*Transaction
	Total    int64
	Page     int
	PageSize int
}

// CategorySet is the per-user ordered category lists
type CategorySet struct {
	UserID  uint
	Income  []string
	Expense []string
}

// Names returns the list for the given kind
func (c *CategorySet) Names(kind TxKind) []string {
	if kind == KindIncome {
		return c.Income
	}
	return c.Expense
}

// CategoryTotal aggregates one category of one kind
type CategoryTotal struct {
	Kind     TxKind          `json:"kind"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// MonthTotal aggregates a calendar month
type MonthTotal struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Summary is the reports view over a date range
type Summary struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
	ByCategory   []CategoryTotal `json:"byCategory"`
	ByMonth      []MonthTotal    `json:"byMonth"`
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	TokenID   string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
