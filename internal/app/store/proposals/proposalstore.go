// internal/app/store/proposals/proposalstore.go
package proposalstore

import (
	"context"
	"errors"

	documentstore "github.com/CherdHall/PlotForge/internal/app/store/documents"
	membershipstore "github.com/CherdHall/PlotForge/internal/app/store/memberships"
	poststore "github.com/CherdHall/PlotForge/internal/app/store/posts"
	threadstore "github.com/CherdHall/PlotForge/internal/app/store/threads"
	"github.com/CherdHall/PlotForge/internal/app/system/txn"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Default subthread titles, created in this order under every new
// workspace.
const (
	SubThreadChatTitle    = "Social Chat (Not Book Related)"
	SubThreadArcTitle     = "Overall Story Arc (Big Picture)"
	SubThreadChapterTitle = "Chapter 1"
)

// Default document titles, each cross-referenced to the subthread
// created for it.
const (
	DocArcTitle         = "Overall Story Arc"
	DocChapterArcTitle  = "Chapter 1 Story Arc"
	DocChapterTextTitle = "Chapter 1 Text"
)

// docPlaceholder seeds every default document so the workspace never
// opens on a blank page.
const docPlaceholder = "Nothing here yet. Start writing!"

var ErrEmptyTitle = errors.New("proposal title is required")

// Store orchestrates the proposal-submission fan-out across the
// thread, membership, document, and post collections.
type Store struct {
	client      *mongo.Client
	threads     *threadstore.Store
	memberships *membershipstore.Store
	documents   *documentstore.Store
	posts       *poststore.Store
	log         *zap.Logger
}

func New(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		client:      client,
		threads:     threadstore.New(db),
		memberships: membershipstore.New(db),
		documents:   documentstore.New(db),
		posts:       poststore.New(db),
		log:         logger,
	}
}

// SubmitInput is everything the proposal form provides. MaxMembers ≤ 0
// means "not supplied or not numeric" and falls back to the default
// capacity. Boundaries are all optional and independently nullable.
type SubmitInput struct {
	LeaderID    primitive.ObjectID
	Title       string
	Description string
	MaxMembers  int
	Boundaries  models.Boundaries
}

// SubmitResult reports what one successful submission created.
type SubmitResult struct {
	Proposal   models.Thread
	Workspace  models.Thread
	SubThreads []models.Thread
	Documents  []models.Document
}

// Submit runs the whole recruitment-to-workspace fan-out as one unit:
//
//  1. recruitment thread (open proposal) + leader membership
//  2. private workspace + leader membership, boundaries copied by value
//  3. three default subthreads under the workspace
//  4. three default documents, each linked to its subthread
//  5. the description, if any, as the recruitment thread's first post
//  6. proposal.workspace_id → workspace
//
// The steps execute inside a transaction so a mid-flow failure cannot
// leave an orphaned recruitment thread with no workspace behind it.
func (s *Store) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	if in.Title == "" {
		return SubmitResult{}, ErrEmptyTitle
	}
	if in.MaxMembers <= 0 {
		in.MaxMembers = threadstore.DefaultMaxMembers
	}

	var res SubmitResult
	err := txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		var err error

		res.Proposal, err = s.threads.Create(ctx, models.Thread{
			Title:      in.Title,
			Kind:       models.KindProposal,
			LeaderID:   in.LeaderID,
			Status:     models.StatusOpen,
			MaxMembers: in.MaxMembers,
			Boundaries: in.Boundaries,
		})
		if err != nil {
			return err
		}
		if err = s.memberships.Add(ctx, res.Proposal.ID, in.LeaderID, models.RoleLeader); err != nil {
			return err
		}

		res.Workspace, err = s.threads.Create(ctx, models.Thread{
			Title:      in.Title,
			Kind:       models.KindWorkspace,
			LeaderID:   in.LeaderID,
			Status:     models.StatusActive,
			MaxMembers: in.MaxMembers,
			Boundaries: in.Boundaries, // copied by value, never shared
		})
		if err != nil {
			return err
		}
		if err = s.memberships.Add(ctx, res.Workspace.ID, in.LeaderID, models.RoleLeader); err != nil {
			return err
		}

		res.SubThreads, err = s.createDefaultSubThreads(ctx, res.Workspace.ID, in.LeaderID)
		if err != nil {
			return err
		}

		res.Documents, err = s.createDefaultDocuments(ctx, res.Workspace.ID, res.SubThreads)
		if err != nil {
			return err
		}

		if in.Description != "" {
			if _, err = s.posts.Add(ctx, res.Proposal.ID, in.LeaderID, in.Description); err != nil {
				return err
			}
		}

		if err = s.threads.SetWorkspaceID(ctx, res.Proposal.ID, res.Workspace.ID); err != nil {
			return err
		}
		res.Proposal.WorkspaceID = &res.Workspace.ID
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	s.log.Info("proposal submitted",
		zap.String("proposal_id", res.Proposal.ID.Hex()),
		zap.String("workspace_id", res.Workspace.ID.Hex()),
		zap.String("leader_id", in.LeaderID.Hex()),
		zap.Int("max_members", in.MaxMembers))
	return res, nil
}

// createDefaultSubThreads creates the chat, story-arc, and chapter-1
// subthreads under the workspace, in that order.
func (s *Store) createDefaultSubThreads(ctx context.Context, workspaceID, leaderID primitive.ObjectID) ([]models.Thread, error) {
	titles := []string{SubThreadChatTitle, SubThreadArcTitle, SubThreadChapterTitle}

	subs := make([]models.Thread, 0, len(titles))
	for _, title := range titles {
		sub, err := s.threads.Create(ctx, models.Thread{
			Title:    title,
			Kind:     models.KindSubThread,
			LeaderID: leaderID,
			Status:   models.StatusActive,
			ParentID: &workspaceID,
		})
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// createDefaultDocuments seeds the three default documents. subThreads
// must be the slice from createDefaultSubThreads: the arc doc points at
// the arc subthread, both chapter docs at the chapter subthread.
func (s *Store) createDefaultDocuments(ctx context.Context, workspaceID primitive.ObjectID, subThreads []models.Thread) ([]models.Document, error) {
	chapterOne := 1

	seeds := []models.Document{
		{Title: DocArcTitle, Type: models.DocStoryArc},
		{Title: DocChapterArcTitle, Type: models.DocChapterArc, ChapterNum: &chapterOne},
		{Title: DocChapterTextTitle, Type: models.DocChapterText, ChapterNum: &chapterOne},
	}
	if len(subThreads) == 3 {
		seeds[0].DiscussionID = &subThreads[1].ID
		seeds[1].DiscussionID = &subThreads[2].ID
		seeds[2].DiscussionID = &subThreads[2].ID
	}

	docs := make([]models.Document, 0, len(seeds))
	for _, seed := range seeds {
		seed.ThreadID = workspaceID
		seed.Content = docPlaceholder
		doc, err := s.documents.Create(ctx, seed)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
