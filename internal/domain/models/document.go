// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document types.
const (
	DocStoryArc    = "story_arc"
	DocChapterArc  = "chapter_arc"
	DocChapterText = "chapter_text"
	DocStoryCanon  = "story_canon"
	DocCustom      = "custom"
)

// RevisionSummaryMax is the cap applied to revision summaries.
const RevisionSummaryMax = 200

// Revision is one entry in a document's append-only revision log.
type Revision struct {
	ID        string             `bson:"id" json:"id"` // uuid
	EditorID  primitive.ObjectID `bson:"editor_id" json:"editor_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Summary   string             `bson:"summary" json:"summary"` // truncated to RevisionSummaryMax
}

// Document is an editable text artifact scoped to a workspace thread:
// story arcs, chapter text, story canon, or custom docs. Revisions are
// stored as a structured array, never an encoded blob.
type Document struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ThreadID primitive.ObjectID `bson:"thread_id" json:"thread_id"` // owning workspace
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"title_ci"`
	Type     string             `bson:"type" json:"type"`

	ChapterNum *int   `bson:"chapter_num,omitempty" json:"chapter_num,omitempty"`
	Content    string `bson:"content" json:"content"`

	// DiscussionID references the subthread where this document is
	// discussed, when one exists.
	DiscussionID *primitive.ObjectID `bson:"discussion_id,omitempty" json:"discussion_id,omitempty"`

	Revisions   []Revision `bson:"revisions" json:"revisions"`
	LastUpdated time.Time  `bson:"last_updated" json:"last_updated"`
}
