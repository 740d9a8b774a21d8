// internal/app/store/threads/threadstore.go
package threadstore

import (
	"context"
	"errors"
	"time"

	"github.com/CherdHall/PlotForge/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMaxMembers is the capacity applied when a proposal is
// submitted without a usable max-members value.
const DefaultMaxMembers = 15

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("thread not found")
	ErrInvalidKind   = errors.New("unknown thread kind")
	ErrInvalidParent = errors.New("subthread parent must be a private workspace")
	ErrNotOpen       = errors.New("proposal is not open")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("threads")}
}

// Create inserts a thread after enforcing kind invariants:
// proposals and workspaces never carry a parent, and a subthread's
// parent must be an existing workspace. Status and capacity defaults
// are filled per kind.
func (s *Store) Create(ctx context.Context, t models.Thread) (models.Thread, error) {
	switch t.Kind {
	case models.KindProposal, models.KindWorkspace:
		if t.ParentID != nil {
			return models.Thread{}, ErrInvalidParent
		}
	case models.KindSubThread:
		if t.ParentID == nil {
			return models.Thread{}, ErrInvalidParent
		}
		var parent models.Thread
		err := s.c.FindOne(ctx, bson.M{"_id": *t.ParentID}).Decode(&parent)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return models.Thread{}, ErrInvalidParent
			}
			return models.Thread{}, err
		}
		if parent.Kind != models.KindWorkspace {
			return models.Thread{}, ErrInvalidParent
		}
	default:
		return models.Thread{}, ErrInvalidKind
	}

	if t.Status == "" {
		if t.Kind == models.KindProposal {
			t.Status = models.StatusOpen
		} else {
			t.Status = models.StatusActive
		}
	}
	if t.MaxMembers <= 0 {
		t.MaxMembers = DefaultMaxMembers
	}

	t.ID = primitive.NewObjectID()
	t.TitleCI = text.Fold(t.Title)
	t.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Thread{}, err
	}
	return t, nil
}

// GetByID retrieves a thread.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Thread, error) {
	var t models.Thread
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Thread{}, ErrNotFound
		}
		return models.Thread{}, err
	}
	return t, nil
}

// OpenProposalsPage is one keyset-paged window of open proposals.
type OpenProposalsPage struct {
	Threads []models.Thread
	PrevCur string
	NextCur string
}

// ListOpenProposals returns open recruitment threads, newest first,
// keyset-paged on (created_at, _id) via waffle cursor tokens. The
// cursor key is the RFC 3339 timestamp, which sorts lexicographically.
func (s *Store) ListOpenProposals(ctx context.Context, after, before string, limit int64) (OpenProposalsPage, error) {
	if limit <= 0 {
		limit = 20
	}

	filter := bson.M{"kind": models.KindProposal, "status": models.StatusOpen}
	find := options.Find()

	if before != "" {
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			if ts, err := time.Parse(time.RFC3339Nano, c.CI); err == nil {
				filter["$or"] = []bson.M{
					{"created_at": bson.M{"$gt": ts}},
					{"created_at": ts, "_id": bson.M{"$gt": c.ID}},
				}
			}
		}
		find.SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).SetLimit(limit + 1)
	} else {
		if after != "" {
			if c, ok := wafflemongo.DecodeCursor(after); ok {
				if ts, err := time.Parse(time.RFC3339Nano, c.CI); err == nil {
					filter["$or"] = []bson.M{
						{"created_at": bson.M{"$lt": ts}},
						{"created_at": ts, "_id": bson.M{"$lt": c.ID}},
					}
				}
			}
		}
		find.SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).SetLimit(limit + 1)
	}

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return OpenProposalsPage{}, err
	}
	defer cur.Close(ctx)

	var rows []models.Thread
	if err := cur.All(ctx, &rows); err != nil {
		return OpenProposalsPage{}, err
	}
	// One row beyond the page size was fetched as look-ahead; trim it
	// and keep only the pagination it proves.
	hasPrev, hasNext := false, false
	if before != "" {
		// Window was fetched in reverse for the "previous" direction.
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
		if int64(len(rows)) > limit {
			rows = rows[1:]
			hasPrev = true
		}
		hasNext = true
	} else {
		if int64(len(rows)) > limit {
			rows = rows[:limit]
			hasNext = true
		}
		hasPrev = after != ""
	}

	page := OpenProposalsPage{Threads: rows}
	if len(rows) > 0 {
		first, last := rows[0], rows[len(rows)-1]
		if hasPrev {
			page.PrevCur = wafflemongo.EncodeCursor(first.CreatedAt.UTC().Format(time.RFC3339Nano), first.ID)
		}
		if hasNext {
			page.NextCur = wafflemongo.EncodeCursor(last.CreatedAt.UTC().Format(time.RFC3339Nano), last.ID)
		}
	}
	return page, nil
}

// ListByLeader returns the leader's threads of one kind, optionally
// filtered by status, newest first.
func (s *Store) ListByLeader(ctx context.Context, leaderID primitive.ObjectID, kind, status string) ([]models.Thread, error) {
	filter := bson.M{"leader_id": leaderID, "kind": kind}
	if status != "" {
		filter["status"] = status
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Thread
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSubThreads returns the subthreads of a workspace in creation order.
func (s *Store) ListSubThreads(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Thread, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"parent_id": workspaceID, "kind": models.KindSubThread},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Thread
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMany resolves a set of thread IDs in one query.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Thread, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Thread
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetWorkspaceID links a proposal to its paired private workspace.
func (s *Store) SetWorkspaceID(ctx context.Context, proposalID, workspaceID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": proposalID, "kind": models.KindProposal},
		bson.M{"$set": bson.M{"workspace_id": workspaceID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close flips an open proposal to closed. Closing an already-closed or
// non-proposal thread returns ErrNotOpen.
func (s *Store) Close(ctx context.Context, proposalID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": proposalID, "kind": models.KindProposal, "status": models.StatusOpen},
		bson.M{"$set": bson.M{"status": models.StatusClosed}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, getErr := s.GetByID(ctx, proposalID); getErr != nil {
			return getErr
		}
		return ErrNotOpen
	}
	return nil
}
