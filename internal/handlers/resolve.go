package handlers

import (
	"context"

	"github.com/anonto42/bloglist/backend/internal/models"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// resolver turns stored entities into display shapes, batching the user and
// comment lookups behind per-call caches. Display transforms live here, not
// on the persistence models.
type resolver struct {
	users    repositories.UserRepository
	comments repositories.CommentRepository
}

// userRefMap loads the given users and indexes their compact projections by
// id. Dangling references resolve to zero-valued refs rather than errors.
func (r *resolver) userRefMap(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	users, err := r.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	refs := make(map[primitive.ObjectID]models.UserRef, len(users))
	for i := range users {
		refs[users[i].ID] = users[i].ToRef()
	}
	return refs, nil
}

// userRefs resolves an ordered id set to compact projections, dropping
// dangling references
func (r *resolver) userRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserRef, error) {
	refMap, err := r.userRefMap(ctx, ids)
	if err != nil {
		return nil, err
	}
	refs := make([]models.UserRef, 0, len(ids))
	for _, id := range ids {
		if ref, ok := refMap[id]; ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// blogViews resolves a batch of blogs: owners and likers to compact user
// projections, comment ids to comment views. Ordering of the input is kept.
func (r *resolver) blogViews(ctx context.Context, blogs []models.Blog) ([]models.BlogView, error) {
	userIDs := []primitive.ObjectID{}
	commentIDs := []primitive.ObjectID{}
	for i := range blogs {
		userIDs = models.AddID(userIDs, blogs[i].UserID)
		for _, id := range blogs[i].Likes {
			userIDs = models.AddID(userIDs, id)
		}
		commentIDs = append(commentIDs, blogs[i].Comments...)
	}

	userMap, err := r.userRefMap(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	comments, err := r.comments.GetCommentsByIDs(ctx, commentIDs)
	if err != nil {
		return nil, err
	}
	commentMap := make(map[primitive.ObjectID]models.CommentView, len(comments))
	for i := range comments {
		commentMap[comments[i].ID] = comments[i].ToView()
	}

	views := make([]models.BlogView, len(blogs))
	for i := range blogs {
		b := &blogs[i]
		view := models.BlogView{
			ID:        b.ID,
			Title:     b.Title,
			Author:    b.Author,
			URL:       b.URL,
			ImageURL:  b.ImageURL,
			Tags:      b.Tags,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
			User:      userMap[b.UserID],
			Comments:  []models.CommentView{},
			Likes:     []models.UserRef{},
		}
		for _, id := range b.Comments {
			if cv, ok := commentMap[id]; ok {
				view.Comments = append(view.Comments, cv)
			}
		}
		for _, id := range b.Likes {
			if ref, ok := userMap[id]; ok {
				view.Likes = append(view.Likes, ref)
			}
		}
		views[i] = view
	}
	return views, nil
}

// blogView resolves a single blog
func (r *resolver) blogView(ctx context.Context, blog *models.Blog) (*models.BlogView, error) {
	views, err := r.blogViews(ctx, []models.Blog{*blog})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// userView resolves a user's follower and following sets to compact
// projections
func (r *resolver) userView(ctx context.Context, user *models.User) (*models.UserView, error) {
	followers, err := r.userRefs(ctx, user.Followers)
	if err != nil {
		return nil, err
	}
	following, err := r.userRefs(ctx, user.Following)
	if err != nil {
		return nil, err
	}
	return &models.UserView{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		Blogs:     user.Blogs,
		Followers: followers,
		Following: following,
	}, nil
}
