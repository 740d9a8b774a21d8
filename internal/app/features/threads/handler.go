// internal/app/features/threads/handler.go
package threads

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	membershipstore "github.com/CherdHall/PlotForge/internal/app/store/memberships"
	poststore "github.com/CherdHall/PlotForge/internal/app/store/posts"
	threadstore "github.com/CherdHall/PlotForge/internal/app/store/threads"
	userstore "github.com/CherdHall/PlotForge/internal/app/store/users"
	"github.com/CherdHall/PlotForge/internal/app/system/authz"
	"github.com/CherdHall/PlotForge/internal/app/system/htmlsanitize"
	"github.com/CherdHall/PlotForge/internal/app/system/timeouts"
	"github.com/CherdHall/PlotForge/internal/app/system/viewdata"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Client      *mongo.Client
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Threads     *threadstore.Store
	Posts       *poststore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
}

func NewHandler(client *mongo.Client, db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Client:      client,
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Threads:     threadstore.New(db),
		Posts:       poststore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type postView struct {
	Author    string
	AuthorID  string
	Content   template.HTML
	CreatedAt time.Time
	CanAdd    bool // viewer is the leader and this author is not yet a member
}

type threadViewData struct {
	viewdata.BaseVM
	ThreadID    string
	ThreadTitle string
	Kind        string
	Status      string
	IsOpen      bool
	IsLeader    bool
	CanPost     bool
	MemberCount int64
	MaxMembers  int
	Posts       []postView
	WorkspaceID string // for subthreads, the parent workspace
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /threads/{id}                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeThread renders a discussion thread. Open recruitment threads are
// public. Everything else requires membership: the thread's own roster
// for proposals, the parent workspace's roster for subthreads.
func (h *Handler) ServeThread(w http.ResponseWriter, r *http.Request) {
	tid, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Threads.GetByID(ctx, tid)
	if errors.Is(err, threadstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: load thread", err, "A server error occurred.", "/proposals")
		return
	}

	// Workspaces have their own page.
	if t.IsWorkspace() {
		http.Redirect(w, r, "/workspace/"+t.ID.Hex(), http.StatusSeeOther)
		return
	}

	_, userID, signedIn := authz.UserCtx(r)

	if !t.IsOpenProposal() {
		if !signedIn {
			uierrors.RenderUnauthorized(w, r, "/login")
			return
		}
		member, err := h.Memberships.Exists(ctx, rosterThreadID(t), userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "threads: check membership", err, "A server error occurred.", "/proposals")
			return
		}
		if !member {
			uierrors.RenderForbidden(w, r, "You are not a member of this group.", "/proposals")
			return
		}
	}

	h.renderThread(ctx, w, r, t, userID, signedIn, "")
}

func (h *Handler) renderThread(ctx context.Context, w http.ResponseWriter, r *http.Request, t models.Thread, userID primitive.ObjectID, signedIn bool, errMsg string) {
	posts, err := h.Posts.ListByThread(ctx, t.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: list posts", err, "A server error occurred.", "/proposals")
		return
	}

	authorIDs := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors, err := h.Users.GetMany(ctx, authorIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: load authors", err, "A server error occurred.", "/proposals")
		return
	}

	isLeader := false
	if signedIn {
		isLeader, err = h.Memberships.IsLeader(ctx, t.ID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "threads: check leader", err, "A server error occurred.", "/proposals")
			return
		}
	}

	// Member roster, needed for the leader's add buttons.
	memberSet := map[primitive.ObjectID]bool{}
	if t.IsProposal() && isLeader {
		members, err := h.Memberships.ListByThread(ctx, t.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "threads: list members", err, "A server error occurred.", "/proposals")
			return
		}
		for _, m := range members {
			memberSet[m.UserID] = true
		}
	}

	count, err := h.Memberships.CountByThread(ctx, rosterThreadID(t))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: count members", err, "A server error occurred.", "/proposals")
		return
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView{
			Author:    authors[p.AuthorID].Username,
			AuthorID:  p.AuthorID.Hex(),
			Content:   htmlsanitize.SanitizeHTML(p.Content),
			CreatedAt: p.CreatedAt,
			CanAdd:    t.IsOpenProposal() && isLeader && !memberSet[p.AuthorID],
		})
	}

	back := "/proposals"
	workspaceID := ""
	if t.Kind == models.KindSubThread && t.ParentID != nil {
		workspaceID = t.ParentID.Hex()
		back = "/workspace/" + workspaceID
	}

	vm := viewdata.NewBaseVM(r, t.Title, back)
	if errMsg != "" {
		vm.SetError(errMsg)
	}

	templates.Render(w, r, "thread_view", threadViewData{
		BaseVM:      vm,
		ThreadID:    t.ID.Hex(),
		ThreadTitle: t.Title,
		Kind:        t.Kind,
		Status:      t.Status,
		IsOpen:      t.Status == models.StatusOpen || t.Status == models.StatusActive,
		IsLeader:    isLeader,
		CanPost:     signedIn && t.Status != models.StatusClosed,
		MemberCount: count,
		MaxMembers:  t.MaxMembers,
		Posts:       views,
		WorkspaceID: workspaceID,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /threads/{id}/post                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandlePost appends a message. Anyone signed in may post on an open
// recruitment thread (that is how writers apply); subthreads take posts
// from workspace members only; closed threads take none.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	tid, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "threads: parse form", err, "Invalid form data.", "/threads/"+tid.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Threads.GetByID(ctx, tid)
	if errors.Is(err, threadstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: load thread", err, "A server error occurred.", "/proposals")
		return
	}

	switch {
	case t.IsOpenProposal():
		// open recruitment, any signed-in user
	case t.Kind == models.KindSubThread:
		member, err := h.Memberships.Exists(ctx, rosterThreadID(t), userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "threads: check membership", err, "A server error occurred.", "/proposals")
			return
		}
		if !member {
			uierrors.RenderForbidden(w, r, "You are not a member of this group.", "/proposals")
			return
		}
	default:
		uierrors.RenderForbidden(w, r, "This thread is closed.", "/threads/"+tid.Hex())
		return
	}

	if _, err := h.Posts.Add(ctx, t.ID, userID, r.FormValue("content")); err != nil {
		if errors.Is(err, poststore.ErrEmptyContent) {
			h.renderThread(ctx, w, r, t, userID, true, "Your post is empty. Write something first.")
			return
		}
		h.ErrLog.LogServerError(w, r, "threads: add post", err, "A server error occurred.", "/threads/"+tid.Hex())
		return
	}

	http.Redirect(w, r, "/threads/"+tid.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /threads/{id}/add_member/{userID}                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleAddMember lets the leader of an open recruitment thread enroll
// a user. Enrollment covers the recruitment thread and its paired
// workspace together, capacity permitting.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	tid, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	}
	candidateID, ok := parseID(chi.URLParam(r, "userID"))
	if !ok {
		uierrors.RenderNotFound(w, r, "That user does not exist.", "/threads/"+tid.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	t, err := h.Threads.GetByID(ctx, tid)
	if errors.Is(err, threadstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: load thread", err, "A server error occurred.", "/proposals")
		return
	}
	if !t.IsOpenProposal() || t.WorkspaceID == nil {
		uierrors.RenderForbidden(w, r, "This proposal is not recruiting.", "/threads/"+tid.Hex())
		return
	}

	isLeader, err := h.Memberships.IsLeader(ctx, t.ID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: check leader", err, "A server error occurred.", "/proposals")
		return
	}
	if !isLeader {
		uierrors.RenderForbidden(w, r, "Only the group leader can add members.", "/threads/"+tid.Hex())
		return
	}

	if _, err := h.Users.GetByID(ctx, candidateID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.RenderNotFound(w, r, "That user does not exist.", "/threads/"+tid.Hex())
			return
		}
		h.ErrLog.LogServerError(w, r, "threads: load candidate", err, "A server error occurred.", "/threads/"+tid.Hex())
		return
	}

	err = h.Memberships.AddPairWithCapacity(ctx, h.Client, h.Log, t, *t.WorkspaceID, candidateID)
	switch {
	case errors.Is(err, membershipstore.ErrDuplicateMembership):
		// Already in; nothing to do.
	case errors.Is(err, membershipstore.ErrCapacityFull):
		uierrors.RenderForbidden(w, r, "The group is full.", "/threads/"+tid.Hex())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "threads: add member", err, "A server error occurred.", "/threads/"+tid.Hex())
		return
	default:
		h.Log.Info("member added",
			zap.String("thread_id", t.ID.Hex()),
			zap.String("user_id", candidateID.Hex()),
			zap.String("added_by", userID.Hex()))
	}

	http.Redirect(w, r, "/threads/"+tid.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /threads/{id}/close                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleClose ends recruitment. The workspace stays active; closing
// only stops new applications and hides the proposal from the open
// list.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	tid, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	isLeader, err := h.Memberships.IsLeader(ctx, tid, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "threads: check leader", err, "A server error occurred.", "/proposals")
		return
	}
	if !isLeader {
		uierrors.RenderForbidden(w, r, "Only the group leader can close recruitment.", "/threads/"+tid.Hex())
		return
	}

	err = h.Threads.Close(ctx, tid)
	switch {
	case errors.Is(err, threadstore.ErrNotFound):
		uierrors.RenderNotFound(w, r, "That thread does not exist.", "/proposals")
		return
	case errors.Is(err, threadstore.ErrNotOpen):
		// Already closed; treat as success.
	case err != nil:
		h.ErrLog.LogServerError(w, r, "threads: close", err, "A server error occurred.", "/threads/"+tid.Hex())
		return
	default:
		h.Log.Info("recruitment closed",
			zap.String("thread_id", tid.Hex()),
			zap.String("closed_by", userID.Hex()))
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// rosterThreadID is where a thread's membership lives: subthreads share
// their parent workspace's roster, everything else owns its own.
func rosterThreadID(t models.Thread) primitive.ObjectID {
	if t.Kind == models.KindSubThread && t.ParentID != nil {
		return *t.ParentID
	}
	return t.ID
}

func parseID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
