package httpx

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/http/handlers"
	"github.com/you/fintrack/internal/http/middleware"
)

// Handlers groups every handler set the router mounts
type Handlers struct {
	Auth     *handlers.AuthHandlers
	Profile  *handlers.ProfileHandlers
	Expenses *handlers.TransactionHandlers
	Incomes  *handlers.TransactionHandlers
	Reports  *handlers.ReportHandlers
	Manager  *handlers.ManagerHandlers
	Admin    *handlers.AdminHandlers
	Policies *handlers.PolicyHandlers
}

// RateLimit configures the limiter on the /auth group
type RateLimit struct {
	Store    domain.CounterStore
	Requests int
	Window   time.Duration
}

// RouterOptions carries the cross cutting middleware inputs
type RouterOptions struct {
	CORSOrigins []string
	RateLimit   RateLimit
	// DisableRequestLog drops gin.Logger, mostly for tests
	DisableRequestLog bool
}

func BuildRouter(h Handlers, jwtmw *middleware.AuthMW, cb middleware.CasbinMiddleware, opts RouterOptions) *gin.Engine {
	r := gin.New()
	if !opts.DisableRequestLog {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.CORS(opts.CORSOrigins), middleware.ErrorHandler())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	if opts.RateLimit.Store != nil {
		auth.Use(middleware.RateLimit(opts.RateLimit.Store, opts.RateLimit.Requests, opts.RateLimit.Window))
	}
	auth.POST("/register-request", h.Auth.Register)
	auth.POST("/verify-otp", h.Auth.VerifyOTP)
	auth.POST("/resend-otp", h.Auth.ResendOTP)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/request-reset", h.Auth.RequestReset)
	auth.POST("/confirm-reset", h.Auth.ConfirmReset)

	v := r.Group("/", jwtmw.WithJWT(), cb.Enforce())

	mountTransactions(v.Group("/expenses"), h.Expenses)
	mountTransactions(v.Group("/incomes"), h.Incomes)

	v.GET("/profile", h.Profile.Get)
	v.PUT("/profile", h.Profile.Update)
	v.PUT("/profile/password", h.Profile.ChangePassword)

	v.GET("/user/permissions", h.Profile.Permissions)
	v.GET("/user/team", h.Profile.Team)
	v.GET("/user/categories/:type", h.Profile.Categories)
	v.PUT("/user/categories/:type", h.Profile.AddCategory)
	v.DELETE("/user/categories/:type", h.Profile.RemoveCategory)

	v.GET("/reports/summary", h.Reports.Summary)

	mgr := v.Group("/manager")
	mgr.POST("/users", h.Manager.CreateUser)
	mgr.GET("/users", h.Manager.Team)
	mgr.GET("/users/:id/permissions", h.Manager.GetPermissions)
	mgr.PUT("/users/:id/permissions", h.Manager.SetPermissions)
	mgr.GET("/users/:id/expenses", h.Expenses.ListForUser)
	mgr.GET("/users/:id/incomes", h.Incomes.ListForUser)

	adm := v.Group("/admin")
	adm.GET("/users", h.Admin.ListUsers)
	adm.PUT("/users/:id/role", h.Admin.SetRole)
	adm.DELETE("/users/:id", h.Admin.DeleteUser)
	adm.GET("/policies", h.Policies.List)
	adm.POST("/policies", h.Policies.Add)
	adm.DELETE("/policies", h.Policies.Remove)

	return r
}

func mountTransactions(g *gin.RouterGroup, h *handlers.TransactionHandlers) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/export", h.Export)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
