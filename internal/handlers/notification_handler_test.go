package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type notifFixture struct {
	users   *fakeUserRepo
	blogs   *fakeBlogRepo
	notifs  *fakeNotificationRepo
	handler *NotificationHandler
}

func newNotifFixture(t *testing.T) *notifFixture {
	t.Helper()
	users := newFakeUserRepo()
	blogs := newFakeBlogRepo()
	notifs := newFakeNotificationRepo()
	return &notifFixture{
		users:   users,
		blogs:   blogs,
		notifs:  notifs,
		handler: NewNotificationHandler(notifs, users, blogs),
	}
}

func (fx *notifFixture) notify(t *testing.T, n models.Notification) models.Notification {
	t.Helper()
	require.NoError(t, fx.notifs.CreateNotification(context.Background(), &n))
	return n
}

func TestGetNotificationsNewestFirstWithRefs(t *testing.T) {
	fx := newNotifFixture(t)
	alice := seedUser(t, fx.users, "alice")
	bob := seedUser(t, fx.users, "bob")
	carol := seedUser(t, fx.users, "carol")

	blog := &models.Blog{Title: "post", URL: "http://x", UserID: alice.ID}
	require.NoError(t, fx.blogs.CreateBlog(context.Background(), blog))

	fx.notify(t, models.Notification{
		Recipient: alice.ID, Sender: bob.ID,
		Type: models.NotificationLike, BlogID: blog.ID,
	})
	fx.notify(t, models.Notification{
		Recipient: alice.ID, Sender: carol.ID,
		Type: models.NotificationFollow,
	})
	// someone else's notification never shows up in alice's listing
	fx.notify(t, models.Notification{
		Recipient: bob.ID, Sender: carol.ID,
		Type: models.NotificationFollow,
	})

	c, rec := newTestContext(http.MethodGet, "/api/notifications", nil, "")
	actAs(t, c, fx.users, alice.ID)

	require.NoError(t, fx.handler.GetNotifications(c))

	var views []models.NotificationView
	decodeBody(t, rec, &views)
	require.Len(t, views, 2)

	// newest first: the follow arrived after the like
	assert.Equal(t, models.NotificationFollow, views[0].Type)
	assert.Equal(t, "carol", views[0].Sender.Username)
	assert.Nil(t, views[0].Blog)

	assert.Equal(t, models.NotificationLike, views[1].Type)
	assert.Equal(t, "bob", views[1].Sender.Username)
	require.NotNil(t, views[1].Blog)
	assert.Equal(t, "post", views[1].Blog.Title)
}

func TestGetNotificationsEmpty(t *testing.T) {
	fx := newNotifFixture(t)
	alice := seedUser(t, fx.users, "alice")

	c, rec := newTestContext(http.MethodGet, "/api/notifications", nil, "")
	actAs(t, c, fx.users, alice.ID)

	require.NoError(t, fx.handler.GetNotifications(c))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMarkAsRead(t *testing.T) {
	fx := newNotifFixture(t)
	alice := seedUser(t, fx.users, "alice")
	bob := seedUser(t, fx.users, "bob")

	n := fx.notify(t, models.Notification{
		Recipient: alice.ID, Sender: bob.ID,
		Type: models.NotificationFollow,
	})

	c, rec := newTestContext(http.MethodPut, "/api/notifications/:id/read", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID.Hex())
	actAs(t, c, fx.users, alice.ID)

	require.NoError(t, fx.handler.MarkAsRead(c))

	var got models.Notification
	decodeBody(t, rec, &got)
	assert.True(t, got.Read)
	assert.True(t, fx.notifs.notifications[0].Read)
}

func TestMarkAsReadInvalidID(t *testing.T) {
	fx := newNotifFixture(t)
	alice := seedUser(t, fx.users, "alice")

	c, _ := newTestContext(http.MethodPut, "/api/notifications/:id/read", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-hex-id")
	actAs(t, c, fx.users, alice.ID)

	err := fx.handler.MarkAsRead(c)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestMarkAsReadMissing(t *testing.T) {
	fx := newNotifFixture(t)
	alice := seedUser(t, fx.users, "alice")

	c, _ := newTestContext(http.MethodPut, "/api/notifications/:id/read", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())
	actAs(t, c, fx.users, alice.ID)

	err := fx.handler.MarkAsRead(c)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}
