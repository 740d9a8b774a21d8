// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/CherdHall/PlotForge/internal/app/system/htmlsanitize"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrEmptyContent = errors.New("post content is empty")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

// Add appends a post to a thread. Content that is empty or whitespace
// after trimming is rejected; what remains is sanitized before it is
// stored so raw markup never reaches a template.
func (s *Store) Add(ctx context.Context, threadID, authorID primitive.ObjectID, content string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Post{}, ErrEmptyContent
	}

	p := models.Post{
		ID:        primitive.NewObjectID(),
		ThreadID:  threadID,
		AuthorID:  authorID,
		Content:   htmlsanitize.Sanitize(content),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListByThread returns the thread's posts ordered by creation time.
func (s *Store) ListByThread(ctx context.Context, threadID primitive.ObjectID) ([]models.Post, error) {
	cur, err := s.c.Find(ctx, bson.M{"thread_id": threadID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByThread returns the number of posts in a thread.
func (s *Store) CountByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"thread_id": threadID})
}
