package proposalstore_test

import (
	"context"
	"errors"
	"testing"

	documentstore "github.com/CherdHall/PlotForge/internal/app/store/documents"
	membershipstore "github.com/CherdHall/PlotForge/internal/app/store/memberships"
	poststore "github.com/CherdHall/PlotForge/internal/app/store/posts"
	proposalstore "github.com/CherdHall/PlotForge/internal/app/store/proposals"
	threadstore "github.com/CherdHall/PlotForge/internal/app/store/threads"
	"github.com/CherdHall/PlotForge/internal/app/system/txn"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/CherdHall/PlotForge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_Submit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := proposalstore.New(db.Client(), db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leaderID := primitive.NewObjectID()
	res, err := store.Submit(ctx, proposalstore.SubmitInput{
		LeaderID:    leaderID,
		Title:       "The Lighthouse Murders",
		Description: "A cozy mystery set on a remote island. Looking for four co-writers.",
		MaxMembers:  5,
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	/*── recruitment thread ────────────────────────────────────────────────*/

	if res.Proposal.Kind != models.KindProposal {
		t.Errorf("proposal kind: got %q", res.Proposal.Kind)
	}
	if res.Proposal.Status != models.StatusOpen {
		t.Errorf("proposal status: got %q", res.Proposal.Status)
	}
	if res.Proposal.MaxMembers != 5 {
		t.Errorf("proposal capacity: got %d", res.Proposal.MaxMembers)
	}
	if res.Proposal.WorkspaceID == nil || *res.Proposal.WorkspaceID != res.Workspace.ID {
		t.Error("proposal not linked to workspace")
	}

	// The link must also be persisted.
	threads := threadstore.New(db)
	persisted, err := threads.GetByID(ctx, res.Proposal.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if persisted.WorkspaceID == nil || *persisted.WorkspaceID != res.Workspace.ID {
		t.Error("persisted proposal not linked to workspace")
	}

	/*── workspace and default subthreads ──────────────────────────────────*/

	if res.Workspace.Kind != models.KindWorkspace {
		t.Errorf("workspace kind: got %q", res.Workspace.Kind)
	}
	if res.Workspace.Status != models.StatusActive {
		t.Errorf("workspace status: got %q", res.Workspace.Status)
	}

	subs, err := threads.ListSubThreads(ctx, res.Workspace.ID)
	if err != nil {
		t.Fatalf("ListSubThreads failed: %v", err)
	}
	wantSubs := []string{
		proposalstore.SubThreadChatTitle,
		proposalstore.SubThreadArcTitle,
		proposalstore.SubThreadChapterTitle,
	}
	if len(subs) != len(wantSubs) {
		t.Fatalf("expected %d subthreads, got %d", len(wantSubs), len(subs))
	}
	for i, want := range wantSubs {
		if subs[i].Title != want {
			t.Errorf("subthread %d: got %q, want %q", i, subs[i].Title, want)
		}
		if subs[i].ParentID == nil || *subs[i].ParentID != res.Workspace.ID {
			t.Errorf("subthread %q not parented to workspace", subs[i].Title)
		}
	}

	/*── default documents ─────────────────────────────────────────────────*/

	docs, err := documentstore.New(db).ListByThread(ctx, res.Workspace.ID)
	if err != nil {
		t.Fatalf("ListByThread failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	byType := map[string]models.Document{}
	for _, d := range docs {
		byType[d.Type] = d
	}
	if _, ok := byType[models.DocStoryArc]; !ok {
		t.Error("missing story arc document")
	}
	if d, ok := byType[models.DocChapterArc]; !ok || d.ChapterNum == nil || *d.ChapterNum != 1 {
		t.Error("missing or unnumbered chapter arc document")
	}
	if d, ok := byType[models.DocChapterText]; !ok || d.ChapterNum == nil || *d.ChapterNum != 1 {
		t.Error("missing or unnumbered chapter text document")
	}
	if d := byType[models.DocStoryArc]; d.DiscussionID == nil {
		t.Error("story arc document has no discussion link")
	}

	/*── leader memberships and first post ─────────────────────────────────*/

	memberships := membershipstore.New(db)
	for _, threadID := range []primitive.ObjectID{res.Proposal.ID, res.Workspace.ID} {
		isLeader, err := memberships.IsLeader(ctx, threadID, leaderID)
		if err != nil {
			t.Fatalf("IsLeader failed: %v", err)
		}
		if !isLeader {
			t.Errorf("leader not enrolled in thread %s", threadID.Hex())
		}
	}

	posts, err := poststore.New(db).ListByThread(ctx, res.Proposal.ID)
	if err != nil {
		t.Fatalf("ListByThread failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected the description as the first post, got %d posts", len(posts))
	}
	if posts[0].AuthorID != leaderID {
		t.Error("first post not authored by the leader")
	}
}

func TestStore_Submit_EmptyTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := proposalstore.New(db.Client(), db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Submit(ctx, proposalstore.SubmitInput{
		LeaderID: primitive.NewObjectID(),
	})
	if !errors.Is(err, proposalstore.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestStore_Submit_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := proposalstore.New(db.Client(), db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res, err := store.Submit(ctx, proposalstore.SubmitInput{
		LeaderID: primitive.NewObjectID(),
		Title:    "Untitled Epic",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if res.Proposal.MaxMembers != threadstore.DefaultMaxMembers {
		t.Errorf("expected default capacity %d, got %d", threadstore.DefaultMaxMembers, res.Proposal.MaxMembers)
	}

	// No description means no seed post.
	posts, err := poststore.New(db).ListByThread(ctx, res.Proposal.ID)
	if err != nil {
		t.Fatalf("ListByThread failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("expected no posts, got %d", len(posts))
	}
}

func TestStore_Submit_CopiesBoundariesByValue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := proposalstore.New(db.Client(), db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	genreID := primitive.NewObjectID()
	audienceID := primitive.NewObjectID()

	res, err := store.Submit(ctx, proposalstore.SubmitInput{
		LeaderID: primitive.NewObjectID(),
		Title:    "Bounded",
		Boundaries: models.Boundaries{
			Genre:    &genreID,
			Audience: &audienceID,
		},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	for _, b := range []models.Boundaries{res.Proposal.Boundaries, res.Workspace.Boundaries} {
		if b.Genre == nil || *b.Genre != genreID {
			t.Error("genre boundary not carried over")
		}
		if b.Audience == nil || *b.Audience != audienceID {
			t.Error("audience boundary not carried over")
		}
		if b.Violence != nil {
			t.Error("unset boundary unexpectedly populated")
		}
	}
}

// transactionsSupported reports whether the test deployment can abort a
// multi-document transaction, by checking that a throwaway insert rolls
// back when the transaction function returns an error.
func transactionsSupported(t *testing.T, db *mongo.Database) bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	scratch := db.Collection("txn_support_check")
	abort := errors.New("abort")
	err := txn.WithTransaction(ctx, db.Client(), zap.NewNop(), func(ctx context.Context) error {
		if _, err := scratch.InsertOne(ctx, bson.M{"n": 1}); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("transaction check failed: %v", err)
	}
	n, err := scratch.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	return n == 0
}

func TestStore_Submit_RollsBackOnMidFlowFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if !transactionsSupported(t, db) {
		t.Skip("standalone mongod: transactions unavailable")
	}
	store := proposalstore.New(db.Client(), db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leaderID := primitive.NewObjectID()

	// A whitespace-only description survives the empty check but is
	// rejected by the post store, failing the fan-out after the threads
	// and documents have already been written.
	_, err := store.Submit(ctx, proposalstore.SubmitInput{
		LeaderID:    leaderID,
		Title:       "The Lighthouse Murders",
		Description: "   ",
	})
	if !errors.Is(err, poststore.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	// Nothing from the aborted fan-out remains.
	threads := threadstore.New(db)
	proposals, err := threads.ListByLeader(ctx, leaderID, models.KindProposal, models.StatusOpen)
	if err != nil {
		t.Fatalf("ListByLeader failed: %v", err)
	}
	if len(proposals) != 0 {
		t.Errorf("expected no recruitment thread after a failed submission, got %d", len(proposals))
	}
	workspaces, err := threads.ListByLeader(ctx, leaderID, models.KindWorkspace, models.StatusActive)
	if err != nil {
		t.Fatalf("ListByLeader failed: %v", err)
	}
	if len(workspaces) != 0 {
		t.Errorf("expected no workspace after a failed submission, got %d", len(workspaces))
	}
}
