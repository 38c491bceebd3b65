package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/fintrack/internal/app"
	"github.com/you/fintrack/internal/config"
	"github.com/you/fintrack/internal/infrastructure/repositories"
)

const testPassword = "Password123"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestServer runs the full router over sqlite and miniredis
type TestServer struct {
	t         *testing.T
	Server    *httptest.Server
	Container *app.Container
	Redis     *miniredis.Miniredis
}

// testConfig mirrors config/config.yml with a roomy auth rate limit
func testConfig() *config.Config {
	return &config.Config{
		CORSOrigins:      []string{"*"},
		JWTSecret:        "e2e-secret",
		JWTIssuer:        "fintrack-e2e",
		JWTTTL:           time.Hour,
		OTP_TTL:          10 * time.Minute,
		OTP_Length:       6,
		OTP_MaxAttempts:  5,
		OTP_ResendWindow: 30 * time.Second,
		RateLimitWindow:  time.Minute,
		RateLimitMax:     1000,
		CasbinModelPath:  "../../../config/casbin_model.conf",
	}
}

// NewTestServer starts a server; mutate adjusts the config before wiring
func NewTestServer(t *testing.T, mutate func(*config.Config)) *TestServer {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repositories.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c, err := app.Build(cfg, db, rdb)
	require.NoError(t, err)

	srv := httptest.NewServer(c.Router())
	t.Cleanup(func() {
		srv.Close()
		c.Close()
	})

	return &TestServer{t: t, Server: srv, Container: c, Redis: mr}
}

// Response is a decoded API response
type Response struct {
	Status  int
	Header  http.Header
	Data    json.RawMessage
	Error   string
	RawBody []byte
}

// Decode unmarshals the success body into out
func (r Response) Decode(t *testing.T, out any) {
	t.Helper()
	require.NotEmpty(t, r.Data, "no data in %s", string(r.RawBody))
	require.NoError(t, json.Unmarshal(r.Data, out))
}

// Do sends a JSON request; token may be empty
func (s *TestServer) Do(method, path, token string, body any) Response {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.Server.URL+path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Server.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	out := Response{Status: resp.StatusCode, Header: resp.Header, RawBody: raw}
	if resp.StatusCode < http.StatusMultipleChoices {
		if json.Valid(raw) {
			out.Data = raw
		}
		return out
	}
	var errBody struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &errBody) == nil {
		out.Error = errBody.Error
	}
	return out
}

// PendingCode reads the live OTP straight from the user row
func (s *TestServer) PendingCode(email string) string {
	s.t.Helper()
	user, err := s.Container.UserRepo.FindByEmail(context.Background(), email)
	require.NoError(s.t, err)
	require.NotEmpty(s.t, user.OTPCode, "no live code for %s", email)
	return user.OTPCode
}

// ClearThrottle expires the OTP resend window
func (s *TestServer) ClearThrottle() {
	s.Redis.FastForward(s.Container.Config.OTP_ResendWindow + time.Second)
}

var userSeq atomic.Int64

// Account is a registered and verified user
type Account struct {
	ID     uint
	Email  string
	Mobile string
	Token  string
}

func nextIdentity() (string, string) {
	n := userSeq.Add(1)
	return fmt.Sprintf("user%d@example.com", n), fmt.Sprintf("55500%05d", n)
}

// Signup registers, verifies and returns a logged in account
func (s *TestServer) Signup(name string) Account {
	s.t.Helper()

	email, mobile := nextIdentity()
	res := s.Do(http.MethodPost, "/auth/register-request", "", map[string]string{
		"name": name, "email": email, "mobile": mobile, "password": testPassword,
	})
	require.Equal(s.t, http.StatusOK, res.Status, string(res.RawBody))

	res = s.Do(http.MethodPost, "/auth/verify-otp", "", map[string]string{"email": email, "otp": s.PendingCode(email)})
	require.Equal(s.t, http.StatusOK, res.Status, string(res.RawBody))

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	res.Decode(s.t, &data)
	return Account{ID: data.User.ID, Email: email, Mobile: mobile, Token: data.Token}
}

// Promote changes a role directly in the store and logs in again
func (s *TestServer) Promote(acc Account, role string) Account {
	s.t.Helper()
	ctx := context.Background()
	user, err := s.Container.UserRepo.FindByID(ctx, acc.ID)
	require.NoError(s.t, err)
	user.Role = role
	require.NoError(s.t, s.Container.UserRepo.Update(ctx, user))
	acc.Token = s.Login(acc.Email, testPassword)
	return acc
}

// Login returns a fresh token
func (s *TestServer) Login(identifier, password string) string {
	s.t.Helper()
	res := s.Do(http.MethodPost, "/auth/login", "", map[string]string{"identifier": identifier, "password": password})
	require.Equal(s.t, http.StatusOK, res.Status, string(res.RawBody))
	var data struct {
		Token string `json:"token"`
	}
	res.Decode(s.t, &data)
	return data.Token
}
