package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/http/middleware"
)

// envelope splits a response into its success body and error message
type envelope struct {
	Data  json.RawMessage
	Error string
}

// testRouter returns an engine with the error handler installed and, when
// actor is set, the caller stored the way AuthMiddleware does
func testRouter(actor *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	if actor != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserID, actor.UserID)
			c.Set(middleware.ContextUserRole, actor.Role)
		})
	}
	return r
}

// perform sends body as JSON; a string body is sent verbatim
func perform(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if w.Code < http.StatusMultipleChoices {
			env.Data = json.RawMessage(w.Body.Bytes())
		} else {
			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			env.Error = body.Error
		}
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NotEmpty(t, env.Data, "response has no data")
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func verifiedUser(id uint, role string) *domain.User {
	return &domain.User{
		ID:     id,
		Name:   "Test User",
		Email:  "user@example.com",
		Mobile: "+15550001111",
		Role:   role,
		Status: domain.StatusVerified,
	}
}
