package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	blogRepository repositories.BlogRepository
	uploadDir      string
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, blogRepo repositories.BlogRepository, uploadDir string) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		blogRepository: blogRepo,
		uploadDir:      uploadDir,
	}
}

// RegisterUserRoutes registers user routes. Registration and the public
// projections stay open; bio, avatar and delete require a session.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/users", h.CreateUser)
	g.GET("/users", h.GetUsers)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id", h.UpdateBio, requireAuth)
	g.PUT("/users/:id/avatar", h.UpdateAvatar, requireAuth)
	g.DELETE("/users/:id", h.DeleteUser, requireAuth)
}

// ListedUser is a user with authored blogs resolved, as returned by the
// user listing
type ListedUser struct {
	ID        primitive.ObjectID   `json:"id"`
	Username  string               `json:"username"`
	Name      string               `json:"name"`
	Bio       string               `json:"bio"`
	AvatarURL string               `json:"avatarUrl"`
	Followers []primitive.ObjectID `json:"followers"`
	Following []primitive.ObjectID `json:"following"`
	Blogs     []models.BlogRef     `json:"blogs"`
}

// PublicUser is the public profile projection returned for a single user
type PublicUser struct {
	ID        primitive.ObjectID   `json:"id"`
	Username  string               `json:"username"`
	Name      string               `json:"name"`
	Bio       string               `json:"bio"`
	AvatarURL string               `json:"avatarUrl"`
	Blogs     []models.ProfileBlog `json:"blogs"`
}

// CreateUser registers a new user with a password credential
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be given")
	}
	if len(req.Password) <= 3 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 3 characters long")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		Name:         req.Name,
	}

	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			return echo.NewHTTPError(http.StatusBadRequest, "expected `username` to be unique")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, user)
}

// GetUsers lists all users with their authored blogs resolved
func (h *UserHandler) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.userRepository.GetUsers(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	blogIDs := []primitive.ObjectID{}
	for i := range users {
		blogIDs = append(blogIDs, users[i].Blogs...)
	}
	blogs, err := h.blogRepository.GetBlogsByIDs(ctx, blogIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	blogMap := make(map[primitive.ObjectID]models.BlogRef, len(blogs))
	for i := range blogs {
		b := &blogs[i]
		blogMap[b.ID] = models.BlogRef{ID: b.ID, Title: b.Title, Author: b.Author, URL: b.URL}
	}

	listed := make([]ListedUser, len(users))
	for i := range users {
		u := &users[i]
		item := ListedUser{
			ID:        u.ID,
			Username:  u.Username,
			Name:      u.Name,
			Bio:       u.Bio,
			AvatarURL: u.AvatarURL,
			Followers: u.Followers,
			Following: u.Following,
			Blogs:     []models.BlogRef{},
		}
		for _, id := range u.Blogs {
			if ref, ok := blogMap[id]; ok {
				item.Blogs = append(item.Blogs, ref)
			}
		}
		listed[i] = item
	}

	return c.JSON(http.StatusOK, listed)
}

// GetUser returns the public profile projection of one user with authored
// blogs resolved, newest first
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		if errors.Is(err, repositories.ErrInvalidID) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// GetBlogsByIDs sorts newest-first already
	blogs, err := h.blogRepository.GetBlogsByIDs(ctx, user.Blogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	profileBlogs := make([]models.ProfileBlog, len(blogs))
	for i := range blogs {
		b := &blogs[i]
		profileBlogs[i] = models.ProfileBlog{
			ID:        b.ID,
			Title:     b.Title,
			ImageURL:  b.ImageURL,
			Likes:     b.Likes,
			CreatedAt: b.CreatedAt,
		}
	}

	return c.JSON(http.StatusOK, PublicUser{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		Blogs:     profileBlogs,
	})
}

// UpdateBio updates the bio of the authenticated user's own profile
func (h *UserHandler) UpdateBio(c echo.Context) error {
	actor := auth.CurrentUser(c)
	if actor == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if c.Param("id") != actor.ID.Hex() {
		return echo.NewHTTPError(http.StatusForbidden, "you can only edit your own profile")
	}

	var req models.UpdateBioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor.Bio = req.Bio
	if err := h.userRepository.UpdateUser(c.Request().Context(), actor); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, actor)
}

// UpdateAvatar stores an uploaded avatar image and points the user's
// avatarUrl at it
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	actor := auth.CurrentUser(c)
	if actor == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if c.Param("id") != actor.ID.Hex() {
		return echo.NewHTTPError(http.StatusForbidden, "you can only edit your own profile")
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file missing")
	}

	name, err := saveUploadedFile(file, filepath.Join(h.uploadDir, "avatars"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	actor.AvatarURL = "/avatars/" + name
	if err := h.userRepository.UpdateUser(c.Request().Context(), actor); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, actor)
}

// DeleteUser removes a user record. The delete is idempotent and leaves
// the user's blogs and notifications in place.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userRepository.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, repositories.ErrInvalidID) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
