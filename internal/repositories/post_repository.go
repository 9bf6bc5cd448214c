package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/campushub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrPostNotFound = errors.New("post not found")

// PostFilter narrows post listings; zero values mean "any".
type PostFilter struct {
	AuthorID uint
	Day      time.Time
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	SearchByTitle(ctx context.Context, query string, limit int64) ([]models.Post, error)
	ListDates(ctx context.Context) ([]time.Time, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, authorID uint) ([]string, error)
	AdjustLikesCount(ctx context.Context, postID string, delta int) error
	AdjustCommentsCount(ctx context.Context, postID string, delta int) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes listings rely on
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date_posted", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "date_posted", Value: -1}}},
	})
	return err
}

func parsePostID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// a malformed id can never match a stored post
		return primitive.NilObjectID, fmt.Errorf("invalid post ID format: %w", ErrPostNotFound)
	}
	return objID, nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	if post.DatePosted.IsZero() {
		post.DatePosted = now
	}
	post.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (f PostFilter) toBSON() bson.M {
	filter := bson.M{}
	if f.AuthorID != 0 {
		filter["author_id"] = f.AuthorID
	}
	if !f.Day.IsZero() {
		start := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, f.Day.Location())
		filter["date_posted"] = bson.M{"$gte": start, "$lt": start.AddDate(0, 0, 1)}
	}
	return filter
}

// ListPosts retrieves posts newest first with pagination, plus the total match count
func (r *MongoPostRepository) ListPosts(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.Post, int64, error) {
	query := filter.toBSON()

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "date_posted", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *MongoPostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"author_id": authorID})
}

// SearchByTitle is a case-insensitive substring match on the title
func (r *MongoPostRepository) SearchByTitle(ctx context.Context, query string, limit int64) ([]models.Post, error) {
	filter := bson.M{"title": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "date_posted", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListDates returns the posting time of every post, oldest first
func (r *MongoPostRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"date_posted": 1}).
		SetSort(bson.D{{Key: "date_posted", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var dates []time.Time
	for cursor.Next(ctx) {
		var doc struct {
			DatePosted time.Time `bson:"date_posted"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		dates = append(dates, doc.DatePosted)
	}
	return dates, cursor.Err()
}

// UpdatePost updates an existing post in MongoDB
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := parsePostID(id)
	if err != nil {
		return err
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"content":    post.Content,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := parsePostID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeleteByAuthor removes every post by authorID and returns the removed ids
// so dependent rows in the relational store can follow.
func (r *MongoPostRepository) DeleteByAuthor(ctx context.Context, authorID uint) ([]string, error) {
	filter := bson.M{"author_id": authorID}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(docs))
	objIDs := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID.Hex()
		objIDs[i] = d.ID
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}}); err != nil {
		return nil, fmt.Errorf("delete posts of author %d: %w", authorID, err)
	}
	return ids, nil
}

func (r *MongoPostRepository) adjust(ctx context.Context, postID, field string, delta int) error {
	objID, err := parsePostID(postID)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

// AdjustLikesCount moves the denormalized like counter by delta
func (r *MongoPostRepository) AdjustLikesCount(ctx context.Context, postID string, delta int) error {
	return r.adjust(ctx, postID, "likes_count", delta)
}

// AdjustCommentsCount moves the denormalized comment counter by delta
func (r *MongoPostRepository) AdjustCommentsCount(ctx context.Context, postID string, delta int) error {
	return r.adjust(ctx, postID, "comments_count", delta)
}
