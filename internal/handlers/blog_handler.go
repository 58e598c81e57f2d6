package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// trendingPageSize is the fixed page size of the trending listing
const trendingPageSize = 9

// BlogHandler handles blog CRUD, engagement (likes and comments) and the
// listing/feed/trending queries
type BlogHandler struct {
	blogRepository         repositories.BlogRepository
	userRepository         repositories.UserRepository
	commentRepository      repositories.CommentRepository
	notificationRepository repositories.NotificationRepository
	resolve                *resolver
	uploadDir              string
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(
	blogRepo repositories.BlogRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	notifRepo repositories.NotificationRepository,
	uploadDir string,
) *BlogHandler {
	return &BlogHandler{
		blogRepository:         blogRepo,
		userRepository:         userRepo,
		commentRepository:      commentRepo,
		notificationRepository: notifRepo,
		resolve:                &resolver{users: userRepo, comments: commentRepo},
		uploadDir:              uploadDir,
	}
}

// RegisterBlogRoutes registers blog routes. Listings are public; creating,
// engaging with and deleting blogs require a session.
func (h *BlogHandler) RegisterBlogRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/blogs", h.GetBlogs)
	g.GET("/blogs/trending", h.GetTrending)
	g.GET("/blogs/feed", h.GetFeed, requireAuth)
	g.GET("/blogs/tags/:tag", h.GetBlogsByTag)
	g.GET("/blogs/:id", h.GetBlog)
	g.POST("/blogs", h.CreateBlog, requireAuth)
	g.PUT("/blogs/:id", h.UpdateBlog)
	g.PUT("/blogs/:id/like", h.ToggleLike, requireAuth)
	g.POST("/blogs/:id/comments", h.AddComment, requireAuth)
	g.DELETE("/blogs/:id", h.DeleteBlog, requireAuth)
}

// GetBlogs lists all blogs newest first with owner, comments and likes
// resolved
func (h *BlogHandler) GetBlogs(c echo.Context) error {
	ctx := c.Request().Context()

	blogs, err := h.blogRepository.GetAllBlogs(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.resolve.blogViews(ctx, blogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

// GetTrending returns one page of blogs ranked by like count, ties broken
// newest first
func (h *BlogHandler) GetTrending(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	skip := int64((page - 1) * trendingPageSize)

	blogs, err := h.blogRepository.GetTrendingBlogs(ctx, skip, trendingPageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.resolve.blogViews(ctx, blogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	total, err := h.blogRepository.CountBlogs(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"blogs":       views,
		"totalPages":  int(math.Ceil(float64(total) / float64(trendingPageSize))),
		"currentPage": page,
	})
}

// GetFeed returns blogs authored by the users the requester follows. An
// empty following set yields an explicit empty-feed body rather than a bare
// empty list, so the client can tell it apart from "no matches".
func (h *BlogHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if len(user.Following) == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"blogs":   []models.BlogView{},
			"message": "You are not following anyone yet.",
		})
	}

	blogs, err := h.blogRepository.GetBlogsByUserIDs(ctx, user.Following)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.resolve.blogViews(ctx, blogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

// GetBlogsByTag lists blogs carrying the given tag, matched
// case-insensitively against the lower-cased stored form
func (h *BlogHandler) GetBlogsByTag(c echo.Context) error {
	ctx := c.Request().Context()

	tag := strings.ToLower(c.Param("tag"))
	blogs, err := h.blogRepository.GetBlogsByTag(ctx, tag)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.resolve.blogViews(ctx, blogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

// GetBlog returns one blog with its references resolved
func (h *BlogHandler) GetBlog(c echo.Context) error {
	ctx := c.Request().Context()

	blog, err := h.blogRepository.GetBlogByID(ctx, c.Param("id"))
	if err != nil {
		return blogLookupError(err)
	}
	view, err := h.resolve.blogView(ctx, blog)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

// CreateBlog creates a blog from a multipart form (title, url, author, tags,
// optional image) and appends its id to the actor's authored set
func (h *BlogHandler) CreateBlog(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	title := c.FormValue("title")
	url := c.FormValue("url")
	if title == "" || url == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and url are required")
	}

	imageURL := ""
	if file, err := c.FormFile("image"); err == nil {
		name, err := saveUploadedFile(file, h.uploadDir)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		imageURL = "/uploads/" + name
	}

	blog := &models.Blog{
		Title:    title,
		Author:   c.FormValue("author"),
		URL:      url,
		ImageURL: imageURL,
		UserID:   user.ID,
		Tags:     models.NormalizeTags(c.FormValue("tags")),
	}
	if err := h.blogRepository.CreateBlog(ctx, blog); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user.Blogs = models.AddID(user.Blogs, blog.ID)
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	view, err := h.resolve.blogView(ctx, blog)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, view)
}

// UpdateBlog updates blog fields; empty fields are left untouched
func (h *BlogHandler) UpdateBlog(c echo.Context) error {
	ctx := c.Request().Context()

	blog, err := h.blogRepository.GetBlogByID(ctx, c.Param("id"))
	if err != nil {
		return blogLookupError(err)
	}

	var req models.UpdateBlogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if req.Title != "" {
		blog.Title = req.Title
	}
	if req.Author != "" {
		blog.Author = req.Author
	}
	if req.URL != "" {
		blog.URL = req.URL
	}
	if req.Likes != nil {
		blog.Likes = req.Likes
	}

	if err := h.blogRepository.UpdateBlog(ctx, blog); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	view, err := h.resolve.blogView(ctx, blog)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

// ToggleLike flips the actor's membership in the blog's like set. The blog
// owner is notified whenever someone else toggles, on unlike as well as on
// like.
func (h *BlogHandler) ToggleLike(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	blog, err := h.blogRepository.GetBlogByID(ctx, c.Param("id"))
	if err != nil {
		return blogLookupError(err)
	}

	blog.ToggleLike(user.ID)
	if err := h.blogRepository.UpdateBlog(ctx, blog); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if blog.UserID != user.ID {
		notif := &models.Notification{
			Recipient: blog.UserID,
			Sender:    user.ID,
			Type:      models.NotificationLike,
			BlogID:    blog.ID,
		}
		if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
			c.Logger().Errorf("creating like notification: %v", err)
		}
	}

	view, err := h.resolve.blogView(ctx, blog)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

// AddComment creates a comment, appends it to the blog's comment set and
// notifies the blog owner when the commenter is someone else
func (h *BlogHandler) AddComment(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	blog, err := h.blogRepository.GetBlogByID(ctx, c.Param("id"))
	if err != nil {
		return blogLookupError(err)
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment := &models.Comment{Content: req.Content, BlogID: blog.ID}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	blog.Comments = models.AddID(blog.Comments, comment.ID)
	if err := h.blogRepository.UpdateBlog(ctx, blog); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if blog.UserID != user.ID {
		notif := &models.Notification{
			Recipient: blog.UserID,
			Sender:    user.ID,
			Type:      models.NotificationComment,
			BlogID:    blog.ID,
		}
		if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
			c.Logger().Errorf("creating comment notification: %v", err)
		}
	}

	view, err := h.resolve.blogView(ctx, blog)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, view)
}

// DeleteBlog removes a blog. Only the owner may delete; deleting an absent
// blog succeeds so the operation is safe to retry. Comments and
// notifications referencing the blog are left in place.
func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	blog, err := h.blogRepository.GetBlogByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return c.NoContent(http.StatusNoContent)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if blog.UserID != user.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "only the owner of the blog can delete it")
	}

	if err := h.blogRepository.DeleteBlog(ctx, c.Param("id")); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// blogLookupError maps repository lookup failures onto HTTP errors
func blogLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "blog doesn't exist")
	}
	if errors.Is(err, repositories.ErrInvalidID) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
