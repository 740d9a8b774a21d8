// internal/domain/models/thread.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thread kinds. A thread is exactly one of these; the kind is a
// first-class field rather than a pair of booleans so that invalid
// combinations cannot be represented.
const (
	KindProposal  = "proposal"  // public recruitment post
	KindWorkspace = "workspace" // private group workspace
	KindSubThread = "subthread" // discussion thread nested under a workspace
)

// Thread statuses.
const (
	StatusOpen   = "open"   // proposal accepting members
	StatusClosed = "closed" // proposal no longer recruiting
	StatusActive = "active" // workspace or subthread
)

// Boundaries holds the six optional content-boundary selections for a
// thread. Each field references a BoundaryOption. Boundaries are copied
// by value from proposal to workspace at creation time, so later edits
// to one never retroactively alter the other.
type Boundaries struct {
	Genre     *primitive.ObjectID `bson:"genre_id,omitempty" json:"genre_id,omitempty"`
	Political *primitive.ObjectID `bson:"political_id,omitempty" json:"political_id,omitempty"`
	Violence  *primitive.ObjectID `bson:"violence_id,omitempty" json:"violence_id,omitempty"`
	Sex       *primitive.ObjectID `bson:"sex_id,omitempty" json:"sex_id,omitempty"`
	Style     *primitive.ObjectID `bson:"style_id,omitempty" json:"style_id,omitempty"`
	Audience  *primitive.ObjectID `bson:"audience_id,omitempty" json:"audience_id,omitempty"`
}

// Thread is the discussion entity. Depending on Kind it is a public
// recruitment proposal, a private workspace, or a subthread nested
// under a workspace.
//
// Invariants (enforced by threadstore.Create):
//   - a subthread's ParentID must reference a workspace
//   - a proposal never has a parent
//   - membership count never exceeds MaxMembers
type Thread struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	TitleCI  string             `bson:"title_ci" json:"title_ci"`
	Kind     string             `bson:"kind" json:"kind"`
	LeaderID primitive.ObjectID `bson:"leader_id" json:"leader_id"`

	Status     string `bson:"status" json:"status"`
	MaxMembers int    `bson:"max_members" json:"max_members"`

	// ParentID is set on subthreads only and references the owning workspace.
	ParentID *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`

	// WorkspaceID is set on proposals only and references the private
	// workspace created alongside the proposal.
	WorkspaceID *primitive.ObjectID `bson:"workspace_id,omitempty" json:"workspace_id,omitempty"`

	Boundaries Boundaries `bson:"boundaries" json:"boundaries"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsProposal reports whether the thread is a public recruitment post.
func (t Thread) IsProposal() bool { return t.Kind == KindProposal }

// IsWorkspace reports whether the thread is a private workspace.
func (t Thread) IsWorkspace() bool { return t.Kind == KindWorkspace }

// IsOpenProposal reports whether the thread is publicly readable
// without a session.
func (t Thread) IsOpenProposal() bool {
	return t.Kind == KindProposal && t.Status == StatusOpen
}
