// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The unique indexes here are load-bearing: users.username_ci and
users.email_ci back the registration conflict check, and the compound
group_memberships index enforces one membership per (thread, user).
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db, logger); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureThreads(ctx, db, logger); err != nil {
		problems = append(problems, "threads: "+err.Error())
	}
	if err := ensureGroupMemberships(ctx, db, logger); err != nil {
		problems = append(problems, "group_memberships: "+err.Error())
	}
	if err := ensurePosts(ctx, db, logger); err != nil {
		problems = append(problems, "posts: "+err.Error())
	}
	if err := ensureDocuments(ctx, db, logger); err != nil {
		problems = append(problems, "documents: "+err.Error())
	}
	if err := ensureBoundaryOptions(ctx, db, logger); err != nil {
		problems = append(problems, "boundary_options: "+err.Error())
	}
	if err := ensureLoginRecords(ctx, db, logger); err != nil {
		problems = append(problems, "login_records: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("users"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetName("uniq_username_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
	})
}

func ensureThreads(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("threads"), logger, []mongo.IndexModel{
		{
			// Open-proposal listing, newest first.
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("kind_status_created"),
		},
		{
			Keys:    bson.D{{Key: "leader_id", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().SetName("leader_kind"),
		},
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("parent"),
		},
	})
}

func ensureGroupMemberships(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("group_memberships"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "thread_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_thread_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user"),
		},
	})
}

func ensurePosts(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("posts"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "thread_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("thread_created"),
		},
	})
}

func ensureDocuments(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("documents"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "thread_id", Value: 1}, {Key: "type", Value: 1}, {Key: "chapter_num", Value: 1}},
			Options: options.Index().SetName("thread_type_chapter"),
		},
	})
}

func ensureBoundaryOptions(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("boundary_options"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "option_text", Value: 1}},
			Options: options.Index().SetName("uniq_option_text").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "sort_order", Value: 1}},
			Options: options.Index().SetName("sort_order"),
		},
	})
}

func ensureLoginRecords(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("login_records"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper                                                                */
/* -------------------------------------------------------------------------- */

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, indexModels []mongo.IndexModel) error {
	var errs []string

	for _, m := range indexModels {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// Same keys under a different name or with different options.
			// Drop the conflicting index and recreate with ours.
			if isOptionsConflictErr(err) && name != "" {
				if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr != nil {
					logger.Warn("drop conflicting index failed",
						zap.String("collection", coll.Name()),
						zap.String("name", name),
						zap.Error(dropErr))
				}
				if _, err = coll.Indexes().CreateOne(ctx, m); err == nil {
					continue
				}
			}
			logger.Warn("create index failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}

		logger.Info("ensured index",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Mongo sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name or options.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict")
}
