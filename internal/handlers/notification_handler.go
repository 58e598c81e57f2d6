package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	blogRepository         repositories.BlogRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, blogRepo repositories.BlogRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		blogRepository:         blogRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/notifications", h.GetNotifications, requireAuth)
	g.PUT("/notifications/:id/read", h.MarkAsRead, requireAuth)
}

// enrichNotifications resolves senders (with avatar) and referenced blogs
// to display shape, batching lookups behind caches
func (h *NotificationHandler) enrichNotifications(ctx context.Context, notifications []models.Notification) ([]models.NotificationView, error) {
	senderIDs := []primitive.ObjectID{}
	blogIDs := []primitive.ObjectID{}
	for i := range notifications {
		senderIDs = models.AddID(senderIDs, notifications[i].Sender)
		if !notifications[i].BlogID.IsZero() {
			blogIDs = models.AddID(blogIDs, notifications[i].BlogID)
		}
	}

	senders, err := h.userRepository.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	senderMap := make(map[primitive.ObjectID]models.UserRef, len(senders))
	for i := range senders {
		senderMap[senders[i].ID] = senders[i].ToSenderRef()
	}

	blogs, err := h.blogRepository.GetBlogsByIDs(ctx, blogIDs)
	if err != nil {
		return nil, err
	}
	blogMap := make(map[primitive.ObjectID]models.BlogTitleRef, len(blogs))
	for i := range blogs {
		blogMap[blogs[i].ID] = models.BlogTitleRef{ID: blogs[i].ID, Title: blogs[i].Title}
	}

	views := make([]models.NotificationView, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		view := models.NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
			Sender:    senderMap[n.Sender],
		}
		if ref, ok := blogMap[n.BlogID]; ok {
			view.Blog = &ref
		}
		views[i] = view
	}
	return views, nil
}

// GetNotifications returns the current user's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifications, err := h.notificationRepository.GetByRecipient(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	views, err := h.enrichNotifications(ctx, notifications)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

// MarkAsRead flips the read flag on one notification
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	notification, err := h.notificationRepository.MarkRead(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidID) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, notification)
}
