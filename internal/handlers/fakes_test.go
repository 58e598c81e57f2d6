package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. Fakes rather than a mock
// framework: the handler logic under test is real, only storage is swapped.

type fakeUserRepo struct {
	users map[primitive.ObjectID]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]models.User)}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return repositories.ErrDuplicateUsername
		}
	}
	user.ID = primitive.NewObjectID()
	if user.Blogs == nil {
		user.Blogs = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", id, repositories.ErrInvalidID)
	}
	user, ok := f.users[objID]
	if !ok {
		return nil, fmt.Errorf("user: %w", repositories.ErrNotFound)
	}
	return &user, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repositories.ErrNotFound)
}

func (f *fakeUserRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	for _, u := range f.users {
		if u.GoogleID == googleID {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repositories.ErrNotFound)
}

func (f *fakeUserRepo) GetUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := []models.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID.Hex(), repositories.ErrNotFound)
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("user %q: %w", id, repositories.ErrInvalidID)
	}
	delete(f.users, objID)
	return nil
}

type fakeBlogRepo struct {
	blogs map[primitive.ObjectID]models.Blog
	now   time.Time
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{blogs: make(map[primitive.ObjectID]models.Blog), now: time.Now()}
}

// nextTime hands out strictly increasing creation times so newest-first
// ordering is deterministic
func (f *fakeBlogRepo) nextTime() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeBlogRepo) CreateBlog(ctx context.Context, blog *models.Blog) error {
	blog.ID = primitive.NewObjectID()
	blog.CreatedAt = f.nextTime()
	blog.UpdatedAt = blog.CreatedAt
	if blog.Likes == nil {
		blog.Likes = []primitive.ObjectID{}
	}
	if blog.Comments == nil {
		blog.Comments = []primitive.ObjectID{}
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}
	f.blogs[blog.ID] = *blog
	return nil
}

func (f *fakeBlogRepo) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("blog %q: %w", id, repositories.ErrInvalidID)
	}
	blog, ok := f.blogs[objID]
	if !ok {
		return nil, fmt.Errorf("blog: %w", repositories.ErrNotFound)
	}
	return &blog, nil
}

func (f *fakeBlogRepo) all() []models.Blog {
	blogs := make([]models.Blog, 0, len(f.blogs))
	for _, b := range f.blogs {
		blogs = append(blogs, b)
	}
	sort.Slice(blogs, func(i, j int) bool {
		return blogs[i].CreatedAt.After(blogs[j].CreatedAt)
	})
	return blogs
}

func (f *fakeBlogRepo) GetAllBlogs(ctx context.Context) ([]models.Blog, error) {
	return f.all(), nil
}

func (f *fakeBlogRepo) GetBlogsByTag(ctx context.Context, tag string) ([]models.Blog, error) {
	blogs := []models.Blog{}
	for _, b := range f.all() {
		for _, t := range b.Tags {
			if t == tag {
				blogs = append(blogs, b)
				break
			}
		}
	}
	return blogs, nil
}

func (f *fakeBlogRepo) GetBlogsByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Blog, error) {
	blogs := []models.Blog{}
	for _, b := range f.all() {
		if models.ContainsID(userIDs, b.UserID) {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

func (f *fakeBlogRepo) GetBlogsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Blog, error) {
	blogs := []models.Blog{}
	for _, b := range f.all() {
		if models.ContainsID(ids, b.ID) {
			blogs = append(blogs, b)
		}
	}
	return blogs, nil
}

func (f *fakeBlogRepo) GetTrendingBlogs(ctx context.Context, skip, limit int64) ([]models.Blog, error) {
	blogs := f.all()
	sort.SliceStable(blogs, func(i, j int) bool {
		if len(blogs[i].Likes) != len(blogs[j].Likes) {
			return len(blogs[i].Likes) > len(blogs[j].Likes)
		}
		return blogs[i].CreatedAt.After(blogs[j].CreatedAt)
	})
	if skip >= int64(len(blogs)) {
		return []models.Blog{}, nil
	}
	blogs = blogs[skip:]
	if int64(len(blogs)) > limit {
		blogs = blogs[:limit]
	}
	return blogs, nil
}

func (f *fakeBlogRepo) CountBlogs(ctx context.Context) (int64, error) {
	return int64(len(f.blogs)), nil
}

func (f *fakeBlogRepo) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	if _, ok := f.blogs[blog.ID]; !ok {
		return fmt.Errorf("blog %s: %w", blog.ID.Hex(), repositories.ErrNotFound)
	}
	blog.UpdatedAt = f.nextTime()
	f.blogs[blog.ID] = *blog
	return nil
}

func (f *fakeBlogRepo) DeleteBlog(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("blog %q: %w", id, repositories.ErrInvalidID)
	}
	if _, ok := f.blogs[objID]; !ok {
		return fmt.Errorf("blog %s: %w", id, repositories.ErrNotFound)
	}
	delete(f.blogs, objID)
	return nil
}

type fakeCommentRepo struct {
	comments map[primitive.ObjectID]models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]models.Comment)}
}

func (f *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	f.comments[comment.ID] = *comment
	return nil
}

func (f *fakeCommentRepo) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	comments := []models.Comment{}
	for _, id := range ids {
		if c, ok := f.comments[id]; ok {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

type fakeNotificationRepo struct {
	notifications []models.Notification
	now           time.Time
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{now: time.Now()}
}

func (f *fakeNotificationRepo) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	f.now = f.now.Add(time.Second)
	notification.CreatedAt = f.now
	notification.UpdatedAt = f.now
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range f.notifications {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("notification %q: %w", id, repositories.ErrInvalidID)
	}
	for i := range f.notifications {
		if f.notifications[i].ID == objID {
			f.notifications[i].Read = true
			n := f.notifications[i]
			return &n, nil
		}
	}
	return nil, fmt.Errorf("notification: %w", repositories.ErrNotFound)
}

// --- helpers ---

// newTestContext builds an echo context around an httptest request/recorder
func newTestContext(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// seedUser creates a user directly in the fake store
func seedUser(t *testing.T, repo *fakeUserRepo, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Name: username}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// actAs attaches a freshly-loaded copy of the user to the request context,
// the way the auth middleware would
func actAs(t *testing.T, c echo.Context, repo *fakeUserRepo, userID primitive.ObjectID) *models.User {
	t.Helper()
	user, err := repo.GetUserByID(context.Background(), userID.Hex())
	require.NoError(t, err)
	auth.SetCurrentUser(c, user)
	return user
}

// decodeBody unmarshals a JSON response body into out
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// httpStatus extracts the status code from a handler error
func httpStatus(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return httpErr.Code
}
