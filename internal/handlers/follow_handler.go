package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests. The two sides of an
// edge are written one after the other; each write is idempotent so a retry
// after a partial failure converges.
type FollowHandler struct {
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	resolve                *resolver
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, notifRepo repositories.NotificationRepository) *FollowHandler {
	return &FollowHandler{
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		resolve:                &resolver{users: userRepo, comments: commentRepo},
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/users/:id/follow", h.FollowUser, requireAuth)
	g.DELETE("/users/:id/follow", h.UnfollowUser, requireAuth)
}

// FollowUser adds a follow edge from the actor to the target user and
// notifies the target. Following an already-followed user is a no-op;
// following yourself is rejected.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	ctx := c.Request().Context()
	actor := auth.CurrentUser(c)
	if actor == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID := c.Param("id")
	if targetID == actor.ID.Hex() {
		return echo.NewHTTPError(http.StatusBadRequest, "you cannot follow yourself")
	}

	target, err := h.userRepository.GetUserByID(ctx, targetID)
	if err != nil {
		return userLookupError(err)
	}

	if !models.ContainsID(target.Followers, actor.ID) {
		target.Followers = models.AddID(target.Followers, actor.ID)
		if err := h.userRepository.UpdateUser(ctx, target); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	if !models.ContainsID(actor.Following, target.ID) {
		actor.Following = models.AddID(actor.Following, target.ID)
		if err := h.userRepository.UpdateUser(ctx, actor); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	notif := &models.Notification{
		Recipient: target.ID,
		Sender:    actor.ID,
		Type:      models.NotificationFollow,
	}
	if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
		c.Logger().Errorf("creating follow notification: %v", err)
	}

	view, err := h.resolve.userView(ctx, target)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

// UnfollowUser removes the follow edge between the actor and the target.
// Removing an absent edge is a no-op, not an error.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	ctx := c.Request().Context()
	actor := auth.CurrentUser(c)
	if actor == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		return userLookupError(err)
	}

	target.Followers = models.RemoveID(target.Followers, actor.ID)
	if err := h.userRepository.UpdateUser(ctx, target); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	actor.Following = models.RemoveID(actor.Following, target.ID)
	if err := h.userRepository.UpdateUser(ctx, actor); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	view, err := h.resolve.userView(ctx, target)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

// userLookupError maps repository lookup failures onto HTTP errors
func userLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if errors.Is(err, repositories.ErrInvalidID) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
