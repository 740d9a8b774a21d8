// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/CherdHall/PlotForge/internal/app/system/txn"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Store struct {
	c       *mongo.Collection
	threads *mongo.Collection
}

var (
	ErrBadRole             = errors.New(`role must be "leader" or "member"`)
	ErrDuplicateMembership = errors.New("user is already a member of this thread")
	ErrCapacityFull        = errors.New("thread has reached its member capacity")
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("group_memberships"),
		threads: db.Collection("threads"),
	}
}

// Add creates a membership. The unique (thread_id, user_id) index
// turns a duplicate into ErrDuplicateMembership. Add performs no
// capacity check; use AddWithCapacity for leader-invoked enrollment.
func (s *Store) Add(ctx context.Context, threadID, userID primitive.ObjectID, role string) error {
	if role != models.RoleLeader && role != models.RoleMember {
		return ErrBadRole
	}

	doc := models.GroupMembership{
		ThreadID: threadID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// touchForEnroll stamps the thread document from inside the enrollment
// transaction. Concurrent enrollments into the same thread then write
// the same document, so one transaction conflicts, aborts, and is
// retried by the driver after the other commits. Without this anchor
// two racing count-check-inserts could both observe a free slot, since
// inserting two distinct membership documents never conflicts.
func (s *Store) touchForEnroll(ctx context.Context, threadID primitive.ObjectID) error {
	_, err := s.threads.UpdateByID(ctx, threadID, bson.M{
		"$currentDate": bson.M{"last_enrollment": true},
	})
	return err
}

// AddWithCapacity enrolls userID as a member of the thread, holding
// the membership count at or below the thread's capacity. The
// count-check-insert runs inside a transaction anchored on the thread
// document, serializing racing adds; the unique index still backstops
// duplicates either way.
func (s *Store) AddWithCapacity(ctx context.Context, client *mongo.Client, logger *zap.Logger, thread models.Thread, userID primitive.ObjectID) error {
	return txn.WithTransaction(ctx, client, logger, func(ctx context.Context) error {
		if err := s.touchForEnroll(ctx, thread.ID); err != nil {
			return err
		}
		n, err := s.CountByThread(ctx, thread.ID)
		if err != nil {
			return err
		}
		if n >= int64(thread.MaxMembers) {
			return ErrCapacityFull
		}
		return s.Add(ctx, thread.ID, userID, models.RoleMember)
	})
}

// AddPairWithCapacity enrolls userID in a recruitment thread and its
// paired workspace as one unit. Capacity is checked against the
// recruitment thread; the workspace mirrors its roster, so a slot in
// one is a slot in the other.
func (s *Store) AddPairWithCapacity(ctx context.Context, client *mongo.Client, logger *zap.Logger, proposal models.Thread, workspaceID, userID primitive.ObjectID) error {
	return txn.WithTransaction(ctx, client, logger, func(ctx context.Context) error {
		if err := s.touchForEnroll(ctx, proposal.ID); err != nil {
			return err
		}
		n, err := s.CountByThread(ctx, proposal.ID)
		if err != nil {
			return err
		}
		if n >= int64(proposal.MaxMembers) {
			return ErrCapacityFull
		}
		if err := s.Add(ctx, proposal.ID, userID, models.RoleMember); err != nil {
			return err
		}
		return s.Add(ctx, workspaceID, userID, models.RoleMember)
	})
}

// Exists checks membership for (threadID, userID).
func (s *Store) Exists(ctx context.Context, threadID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"thread_id": threadID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsLeader reports whether userID holds the leader role on the thread.
func (s *Store) IsLeader(ctx context.Context, threadID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"thread_id": threadID,
		"user_id":   userID,
		"role":      models.RoleLeader,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountByThread returns the membership count for a thread.
func (s *Store) CountByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"thread_id": threadID})
}

// ListByThread returns the thread's memberships in join order.
func (s *Store) ListByThread(ctx context.Context, threadID primitive.ObjectID) ([]models.GroupMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"thread_id": threadID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.GroupMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListThreadIDsByUser returns every thread the user belongs to.
func (s *Store) ListThreadIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.GroupMembership
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		ids = append(ids, m.ThreadID)
	}
	return ids, cur.Err()
}

// DeleteByThread removes all memberships for a thread. Memberships are
// only ever deleted through their thread; there is no standalone
// removal path.
func (s *Store) DeleteByThread(ctx context.Context, threadID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"thread_id": threadID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
