package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func newUserHandlerFixture(t *testing.T) (*fakeUserRepo, *fakeBlogRepo, *UserHandler) {
	t.Helper()
	users := newFakeUserRepo()
	blogs := newFakeBlogRepo()
	return users, blogs, NewUserHandler(users, blogs, t.TempDir())
}

func TestCreateUserHashesPassword(t *testing.T) {
	users, _, handler := newUserHandlerFixture(t)

	c, rec := newTestContext(http.MethodPost, "/api/users",
		strings.NewReader(`{"username":"alice","name":"Alice","password":"sekret"}`), echo.MIMEApplicationJSON)

	require.NoError(t, handler.CreateUser(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got models.User
	decodeBody(t, rec, &got)
	assert.Equal(t, "alice", got.Username)
	// the hash stays server-side and verifies against the plaintext
	assert.NotContains(t, rec.Body.String(), "sekret")
	stored, err := users.GetUserByID(context.Background(), got.ID.Hex())
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("sekret")))
}

func TestCreateUserPasswordRules(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing password", `{"username":"alice","name":"Alice"}`, "password must be given"},
		{"short password", `{"username":"alice","name":"Alice","password":"ab"}`, "password must be at least 3 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, handler := newUserHandlerFixture(t)
			c, _ := newTestContext(http.MethodPost, "/api/users",
				strings.NewReader(tt.body), echo.MIMEApplicationJSON)

			err := handler.CreateUser(c)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
			assert.Equal(t, tt.message, err.(*echo.HTTPError).Message)
		})
	}
}

func TestCreateUserShortUsername(t *testing.T) {
	_, _, handler := newUserHandlerFixture(t)
	c, _ := newTestContext(http.MethodPost, "/api/users",
		strings.NewReader(`{"username":"al","name":"Alice","password":"sekret"}`), echo.MIMEApplicationJSON)

	err := handler.CreateUser(c)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	users, _, handler := newUserHandlerFixture(t)
	seedUser(t, users, "alice")

	c, _ := newTestContext(http.MethodPost, "/api/users",
		strings.NewReader(`{"username":"alice","name":"Other Alice","password":"sekret"}`), echo.MIMEApplicationJSON)

	err := handler.CreateUser(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	assert.Equal(t, "expected `username` to be unique", err.(*echo.HTTPError).Message)
}

func TestGetUserPublicProfile(t *testing.T) {
	users, blogs, handler := newUserHandlerFixture(t)
	alice := seedUser(t, users, "alice")

	blog := &models.Blog{Title: "post", URL: "http://x", UserID: alice.ID}
	require.NoError(t, blogs.CreateBlog(context.Background(), blog))
	stored, err := users.GetUserByID(context.Background(), alice.ID.Hex())
	require.NoError(t, err)
	stored.Blogs = models.AddID(stored.Blogs, blog.ID)
	require.NoError(t, users.UpdateUser(context.Background(), stored))

	c, rec := newTestContext(http.MethodGet, "/api/users/:id", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(alice.ID.Hex())

	require.NoError(t, handler.GetUser(c))

	var got PublicUser
	decodeBody(t, rec, &got)
	assert.Equal(t, "alice", got.Username)
	require.Len(t, got.Blogs, 1)
	assert.Equal(t, "post", got.Blogs[0].Title)
	// the profile projection never exposes credentials
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}

func TestGetUserNotFound(t *testing.T) {
	_, _, handler := newUserHandlerFixture(t)

	c, _ := newTestContext(http.MethodGet, "/api/users/:id", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	err := handler.GetUser(c)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestUpdateBioOwnProfile(t *testing.T) {
	users, _, handler := newUserHandlerFixture(t)
	alice := seedUser(t, users, "alice")

	c, rec := newTestContext(http.MethodPut, "/api/users/:id",
		strings.NewReader(`{"bio":"gopher"}`), echo.MIMEApplicationJSON)
	c.SetParamNames("id")
	c.SetParamValues(alice.ID.Hex())
	actAs(t, c, users, alice.ID)

	require.NoError(t, handler.UpdateBio(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := users.GetUserByID(context.Background(), alice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "gopher", stored.Bio)
}

func TestUpdateBioSomeoneElse(t *testing.T) {
	users, _, handler := newUserHandlerFixture(t)
	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	c, _ := newTestContext(http.MethodPut, "/api/users/:id",
		strings.NewReader(`{"bio":"hijacked"}`), echo.MIMEApplicationJSON)
	c.SetParamNames("id")
	c.SetParamValues(alice.ID.Hex())
	actAs(t, c, users, bob.ID)

	err := handler.UpdateBio(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))

	stored, lookupErr := users.GetUserByID(context.Background(), alice.ID.Hex())
	require.NoError(t, lookupErr)
	assert.Empty(t, stored.Bio)
}

func TestDeleteUserIsIdempotent(t *testing.T) {
	users, _, handler := newUserHandlerFixture(t)
	alice := seedUser(t, users, "alice")

	del := func() int {
		c, rec := newTestContext(http.MethodDelete, "/api/users/:id", nil, "")
		c.SetParamNames("id")
		c.SetParamValues(alice.ID.Hex())
		require.NoError(t, handler.DeleteUser(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, del())
	_, err := users.GetUserByID(context.Background(), alice.ID.Hex())
	require.Error(t, err)

	// deleting an already-deleted user still succeeds
	assert.Equal(t, http.StatusNoContent, del())
}
