package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/http/middleware"
)

// fail hands err to middleware.ErrorHandler
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// respondOK writes data as the bare response body
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// bind decodes the JSON body and reports binding problems as validation errors
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, bindingError(err))
		return false
	}
	return true
}

// principal returns the authenticated caller; routes without AuthMiddleware
// never call it
func principal(c *gin.Context) (domain.Principal, bool) {
	p, found := middleware.CurrentPrincipal(c)
	if !found {
		fail(c, domain.ErrTokenInvalid)
	}
	return p, found
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, domain.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric query parameter; absent means 0
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fail(c, domain.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// queryDate parses an optional YYYY-MM-DD query parameter
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		fail(c, domain.NewValidationError(name, "must be a date in YYYY-MM-DD format"))
		return nil, false
	}
	return &d, true
}

// UserView is the public shape of a user
type UserView struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Mobile      string             `json:"mobile"`
	Role        string             `json:"role"`
	Status      string             `json:"status"`
	ManagerID   *uint              `json:"managerId,omitempty"`
	Restricted  bool               `json:"restricted"`
	Permissions domain.Permissions `json:"permissions"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func userView(u *domain.User) UserView {
	return UserView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Mobile:      u.Mobile,
		Role:        u.Role,
		Status:      string(u.Status),
		ManagerID:   u.ManagerID,
		Restricted:  u.IsRestricted(),
		Permissions: domain.ResolvePermissions(u.Permissions),
		CreatedAt:   u.CreatedAt,
	}
}

func userViews(users []*domain.User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, userView(u))
	}
	return out
}

// TransactionView is the public shape of an expense or income
type TransactionView struct {
	ID        uint        `json:"id"`
	Type      string      `json:"type"`
	UserID    uint        `json:"userId"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	Note      string      `json:"note"`
	Date      string      `json:"date"`
	Method    string      `json:"method"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func transactionView(tx *domain.Transaction) TransactionView {
	return TransactionView{
		ID:        tx.ID,
		Type:      string(tx.Kind),
		UserID:    tx.UserID,
		Amount:    json.Number(tx.Amount.StringFixed(2)),
		Category:  tx.Category,
		Note:      tx.Note,
		Date:      tx.Date.Format(domain.DateLayout),
		Method:    string(tx.Method),
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
}
