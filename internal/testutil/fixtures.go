// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with a throwaway password hash. Use the
// user store's Create when the test exercises real password handling.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "$2a$10$test.hash.not.a.real.credential.padding00000000000000",
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return user
}

// CreateThread inserts a thread of the given kind with sensible
// defaults for the rest: open for proposals, active otherwise, default
// capacity.
func (f *Fixtures) CreateThread(ctx context.Context, title, kind string, leaderID primitive.ObjectID) models.Thread {
	f.t.Helper()

	status := models.StatusActive
	if kind == models.KindProposal {
		status = models.StatusOpen
	}

	thread := models.Thread{
		ID:         primitive.NewObjectID(),
		Title:      title,
		TitleCI:    text.Fold(title),
		Kind:       kind,
		LeaderID:   leaderID,
		Status:     status,
		MaxMembers: 15,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := f.db.Collection("threads").InsertOne(ctx, thread); err != nil {
		f.t.Fatalf("create test thread: %v", err)
	}
	return thread
}

// CreateProposalPair inserts a linked recruitment thread and workspace
// with the leader enrolled in both, mirroring what submission produces.
func (f *Fixtures) CreateProposalPair(ctx context.Context, title string, leaderID primitive.ObjectID) (models.Thread, models.Thread) {
	f.t.Helper()

	workspace := f.CreateThread(ctx, title, models.KindWorkspace, leaderID)

	proposal := f.CreateThread(ctx, title, models.KindProposal, leaderID)
	_, err := f.db.Collection("threads").UpdateByID(ctx, proposal.ID, map[string]any{
		"$set": map[string]any{"workspace_id": workspace.ID},
	})
	if err != nil {
		f.t.Fatalf("link proposal to workspace: %v", err)
	}
	proposal.WorkspaceID = &workspace.ID

	f.CreateMembership(ctx, proposal.ID, leaderID, models.RoleLeader)
	f.CreateMembership(ctx, workspace.ID, leaderID, models.RoleLeader)

	return proposal, workspace
}

// CreateSubThread inserts a subthread under a workspace.
func (f *Fixtures) CreateSubThread(ctx context.Context, title string, workspaceID, leaderID primitive.ObjectID) models.Thread {
	f.t.Helper()

	thread := models.Thread{
		ID:         primitive.NewObjectID(),
		Title:      title,
		TitleCI:    text.Fold(title),
		Kind:       models.KindSubThread,
		LeaderID:   leaderID,
		Status:     models.StatusActive,
		ParentID:   &workspaceID,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := f.db.Collection("threads").InsertOne(ctx, thread); err != nil {
		f.t.Fatalf("create test subthread: %v", err)
	}
	return thread
}

// CreateMembership links a user to a thread with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, threadID, userID primitive.ObjectID, role string) models.GroupMembership {
	f.t.Helper()

	m := models.GroupMembership{
		ID:       primitive.NewObjectID(),
		ThreadID: threadID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test membership: %v", err)
	}
	return m
}

// CreatePost inserts a post on a thread.
func (f *Fixtures) CreatePost(ctx context.Context, threadID, authorID primitive.ObjectID, content string) models.Post {
	f.t.Helper()

	p := models.Post{
		ID:        primitive.NewObjectID(),
		ThreadID:  threadID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("posts").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("create test post: %v", err)
	}
	return p
}

// CreateDocument inserts a document in a workspace.
func (f *Fixtures) CreateDocument(ctx context.Context, workspaceID primitive.ObjectID, title, docType string) models.Document {
	f.t.Helper()

	d := models.Document{
		ID:          primitive.NewObjectID(),
		ThreadID:    workspaceID,
		Title:       title,
		TitleCI:     text.Fold(title),
		Type:        docType,
		Content:     "draft text",
		Revisions:   []models.Revision{},
		LastUpdated: time.Now().UTC(),
	}

	if _, err := f.db.Collection("documents").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("create test document: %v", err)
	}
	return d
}

// CreateBoundaryOption inserts a boundary option valid for every
// category.
func (f *Fixtures) CreateBoundaryOption(ctx context.Context, optionText string) models.BoundaryOption {
	f.t.Helper()

	o := models.BoundaryOption{
		ID:           primitive.NewObjectID(),
		OptionText:   optionText,
		ForGenre:     true,
		ForPolitical: true,
		ForViolence:  true,
		ForSex:       true,
		ForStyle:     true,
		ForAudience:  true,
	}

	if _, err := f.db.Collection("boundary_options").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("create test boundary option: %v", err)
	}
	return o
}
