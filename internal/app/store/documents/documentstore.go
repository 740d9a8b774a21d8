// internal/app/store/documents/documentstore.go
package documentstore

import (
	"context"
	"errors"
	"time"

	"github.com/CherdHall/PlotForge/internal/app/system/htmlsanitize"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("document not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("documents")}
}

// Create inserts a document with an empty revision log.
func (s *Store) Create(ctx context.Context, d models.Document) (models.Document, error) {
	d.ID = primitive.NewObjectID()
	d.TitleCI = text.Fold(d.Title)
	if d.Type == "" {
		d.Type = models.DocCustom
	}
	if d.Revisions == nil {
		d.Revisions = []models.Revision{}
	}
	d.LastUpdated = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

// GetByID retrieves a document.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var d models.Document
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Document{}, ErrNotFound
		}
		return models.Document{}, err
	}
	return d, nil
}

// ListByThread returns the workspace's documents, story-level docs
// first, then by chapter and title.
func (s *Store) ListByThread(ctx context.Context, threadID primitive.ObjectID) ([]models.Document, error) {
	cur, err := s.c.Find(ctx, bson.M{"thread_id": threadID},
		options.Find().SetSort(bson.D{
			{Key: "chapter_num", Value: 1},
			{Key: "title_ci", Value: 1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update overwrites the document's content, refreshes last_updated,
// and appends one revision entry whose summary is truncated to
// models.RevisionSummaryMax characters.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, content string, editorID primitive.ObjectID, summary string) error {
	if runes := []rune(summary); len(runes) > models.RevisionSummaryMax {
		summary = string(runes[:models.RevisionSummaryMax])
	}

	now := time.Now().UTC()
	rev := models.Revision{
		ID:        uuid.NewString(),
		EditorID:  editorID,
		Timestamp: now,
		Summary:   summary,
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"content":      htmlsanitize.Sanitize(content),
			"last_updated": now,
		},
		"$push": bson.M{"revisions": rev},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
