package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/mocks"
)

var testManager = &domain.Principal{UserID: 2, Role: domain.RoleManager}

func TestManagerHandlers_CreateUser(t *testing.T) {
	tests := []struct {
		name       string
		createErr  error
		wantStatus int
		wantError  string
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "duplicate email", createErr: domain.ErrUserAlreadyExists, wantStatus: http.StatusConflict, wantError: "User already exists"},
		{name: "not allowed", createErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantError: "Access Denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.ManagedUserInput
			admin := mocks.NewMockUserAdminService()
			admin.CreateManagedUserFunc = func(ctx context.Context, actor domain.Principal, in domain.ManagedUserInput) (*domain.User, error) {
				got = in
				if tt.createErr != nil {
					return nil, tt.createErr
				}
				u := verifiedUser(10, domain.RoleUser)
				u.ManagerID = &actor.UserID
				u.Permissions = map[string]any{domain.PermCanAdd: in.Permissions[domain.PermCanAdd]}
				return u, nil
			}
			r := testRouter(testManager)
			r.POST("/manager/users", NewManagerHandlers(admin, mocks.NewMockPermissionService()).CreateUser)

			w, env := perform(t, r, http.MethodPost, "/manager/users", CreateUserRequest{
				Name:        "Member",
				Email:       "member@example.com",
				Mobile:      "5550003333",
				Password:    "password123",
				Permissions: map[string]bool{domain.PermCanAdd: true},
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "member@example.com", got.Email)
			assert.True(t, got.Permissions[domain.PermCanAdd])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, env.Error)
				return
			}
			var view UserView
			decodeData(t, env, &view)
			assert.True(t, view.Restricted)
			assert.True(t, view.Permissions.CanAdd)
		})
	}
}

func TestManagerHandlers_Permissions(t *testing.T) {
	var gotUpdates map[string]bool
	perms := mocks.NewMockPermissionService()
	perms.GetFunc = func(ctx context.Context, actor domain.Principal, userID uint) (domain.Permissions, error) {
		if userID != 10 {
			return domain.Permissions{}, domain.ErrForbidden
		}
		return domain.Permissions{CanExport: true}, nil
	}
	perms.SetFunc = func(ctx context.Context, actor domain.Principal, userID uint, updates map[string]bool) (domain.Permissions, error) {
		gotUpdates = updates
		merged, err := domain.MergePermissions(nil, updates)
		if err != nil {
			return domain.Permissions{}, err
		}
		return domain.ResolvePermissions(merged), nil
	}
	h := NewManagerHandlers(mocks.NewMockUserAdminService(), perms)
	r := testRouter(testManager)
	r.GET("/manager/users/:id/permissions", h.GetPermissions)
	r.PUT("/manager/users/:id/permissions", h.SetPermissions)

	w, env := perform(t, r, http.MethodGet, "/manager/users/10/permissions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Permissions
	decodeData(t, env, &got)
	assert.True(t, got.CanExport)

	w, _ = perform(t, r, http.MethodGet, "/manager/users/11/permissions", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = perform(t, r, http.MethodPut, "/manager/users/10/permissions", `{"canDelete":true,"canAdd":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]bool{"canDelete": true, "canAdd": false}, gotUpdates)
	decodeData(t, env, &got)
	assert.True(t, got.CanDelete)

	w, env = perform(t, r, http.MethodPut, "/manager/users/10/permissions", `{"canFly":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "canFly")

	w, _ = perform(t, r, http.MethodPut, "/manager/users/10/permissions", `{"canDelete":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "non boolean flags are rejected at binding")
}

func TestManagerHandlers_Team(t *testing.T) {
	perms := mocks.NewMockPermissionService()
	perms.TeamFunc = func(ctx context.Context, actor domain.Principal) ([]*domain.User, error) {
		assert.Equal(t, *testManager, actor)
		return nil, nil
	}
	r := testRouter(testManager)
	r.GET("/manager/users", NewManagerHandlers(mocks.NewMockUserAdminService(), perms).Team)

	w, env := perform(t, r, http.MethodGet, "/manager/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}
