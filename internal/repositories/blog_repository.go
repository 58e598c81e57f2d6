package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/bloglist/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	CreateBlog(ctx context.Context, blog *models.Blog) error
	GetBlogByID(ctx context.Context, id string) (*models.Blog, error)
	GetAllBlogs(ctx context.Context) ([]models.Blog, error)
	GetBlogsByTag(ctx context.Context, tag string) ([]models.Blog, error)
	GetBlogsByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Blog, error)
	GetBlogsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Blog, error)
	GetTrendingBlogs(ctx context.Context, skip, limit int64) ([]models.Blog, error)
	CountBlogs(ctx context.Context) (int64, error)
	UpdateBlog(ctx context.Context, blog *models.Blog) error
	DeleteBlog(ctx context.Context, id string) error
}

// MongoBlogRepository implements BlogRepository for MongoDB
type MongoBlogRepository struct {
	collection *mongo.Collection
}

// NewMongoBlogRepository creates a new MongoBlogRepository
func NewMongoBlogRepository(db *mongo.Database) *MongoBlogRepository {
	return &MongoBlogRepository{collection: db.Collection("blogs")}
}

// CreateBlog creates a new blog in MongoDB
func (r *MongoBlogRepository) CreateBlog(ctx context.Context, blog *models.Blog) error {
	blog.ID = primitive.NewObjectID()
	blog.CreatedAt = time.Now()
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
	_, err := r.collection.InsertOne(ctx, blog)
	return err
}

// GetBlogByID retrieves a blog by hex ID from MongoDB
func (r *MongoBlogRepository) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("blog %q: %w", id, ErrInvalidID)
	}

	var blog models.Blog
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&blog)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("blog: %w", ErrNotFound)
		}
		return nil, err
	}
	return &blog, nil
}

// GetAllBlogs retrieves all blogs, newest first
func (r *MongoBlogRepository) GetAllBlogs(ctx context.Context) ([]models.Blog, error) {
	return r.find(ctx, bson.D{})
}

// GetBlogsByTag retrieves blogs carrying the given tag, newest first.
// Tags are stored lower-cased, so the caller passes a lower-cased tag for a
// case-insensitive match.
func (r *MongoBlogRepository) GetBlogsByTag(ctx context.Context, tag string) ([]models.Blog, error) {
	return r.find(ctx, bson.M{"tags": bson.M{"$in": []string{tag}}})
}

// GetBlogsByUserIDs retrieves blogs owned by any of the given users,
// newest first
func (r *MongoBlogRepository) GetBlogsByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Blog, error) {
	if len(userIDs) == 0 {
		return []models.Blog{}, nil
	}
	return r.find(ctx, bson.M{"user": bson.M{"$in": userIDs}})
}

// GetBlogsByIDs retrieves the blogs whose ids appear in the given set,
// newest first
func (r *MongoBlogRepository) GetBlogsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Blog, error) {
	if len(ids) == 0 {
		return []models.Blog{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoBlogRepository) find(ctx context.Context, filter interface{}) ([]models.Blog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err = cursor.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// GetTrendingBlogs ranks blogs by like count with a newest-first tie-break
// and returns one page. The like count is derived per request from the size
// of the like set rather than stored.
func (r *MongoBlogRepository) GetTrendingBlogs(ctx context.Context, skip, limit int64) ([]models.Blog, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{"likeCount": bson.M{"$size": "$likes"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "likeCount", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blogs []models.Blog
	if err = cursor.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// CountBlogs returns the total number of blogs
func (r *MongoBlogRepository) CountBlogs(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// UpdateBlog replaces the stored document for the given blog
func (r *MongoBlogRepository) UpdateBlog(ctx context.Context, blog *models.Blog) error {
	blog.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": blog.ID}, blog)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("blog %s: %w", blog.ID.Hex(), ErrNotFound)
	}
	return nil
}

// DeleteBlog deletes a blog by hex ID from MongoDB
func (r *MongoBlogRepository) DeleteBlog(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("blog %q: %w", id, ErrInvalidID)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("blog %s: %w", id, ErrNotFound)
	}
	return nil
}
