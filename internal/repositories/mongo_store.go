package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"blogapi/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
)

var oldestFirst = bson.D{{Key: "createdAt", Value: 1}}

// MongoStore is a Store backed by MongoDB.
type MongoStore struct {
	client   *mongo.Client
	users    *MongoUserRepository
	posts    *MongoPostRepository
	comments *MongoCommentRepository
}

// NewMongoStore connects to uri, selects database and ensures the indexes
// the repositories rely on.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		users:    &MongoUserRepository{coll: db.Collection(usersCollection)},
		posts:    &MongoPostRepository{coll: db.Collection(postsCollection)},
		comments: &MongoCommentRepository{coll: db.Collection(commentsCollection)},
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users.email index: %w", err)
	}
	_, err = s.comments.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comments.postId index: %w", err)
	}
	return nil
}

var _ Store = (*MongoStore)(nil)

func (s *MongoStore) Users() UserRepository       { return s.users }
func (s *MongoStore) Posts() PostRepository       { return s.posts }
func (s *MongoStore) Comments() CommentRepository { return s.comments }

// Atomic runs fn directly. Multi-document transactions need a replica set,
// which standalone deployments do not have.
func (s *MongoStore) Atomic(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user %s: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "email "+email)
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "ID "+id)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with %s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", what, err)
	}
	return &user, nil
}

func (r *MongoUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// MongoPostRepository is a MongoDB implementation of PostRepository.
type MongoPostRepository struct {
	coll *mongo.Collection
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *MongoPostRepository) GetAll(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("post with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

func (r *MongoPostRepository) Update(ctx context.Context, post *models.Post) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{"$set": bson.M{
		"title":   post.Title,
		"excerpt": post.Excerpt,
		"content": post.Content,
	}})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post with ID %s for update: %w", post.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// SearchByTitle quotes query so it is matched literally.
func (r *MongoPostRepository) SearchByTitle(ctx context.Context, query string) ([]models.Post, error) {
	return r.find(ctx, bson.M{"title": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}})
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// MongoCommentRepository is a MongoDB implementation of CommentRepository.
type MongoCommentRepository struct {
	coll *mongo.Collection
}

func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *MongoCommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"postId": postID}, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of post %s: %w", postID, err)
	}
	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *MongoCommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments of post %s: %w", postID, err)
	}
	return res.DeletedCount, nil
}
