// internal/app/features/workspaces/dochandlers.go
package workspaces

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	documentstore "github.com/CherdHall/PlotForge/internal/app/store/documents"
	"github.com/CherdHall/PlotForge/internal/app/system/htmlsanitize"
	"github.com/CherdHall/PlotForge/internal/app/system/timeouts"
	"github.com/CherdHall/PlotForge/internal/app/system/viewdata"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errDocumentOutsideWorkspace = errors.New("document belongs to a different workspace")

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type revisionRow struct {
	Editor    string
	Timestamp time.Time
	Summary   string
}

type documentViewData struct {
	viewdata.BaseVM
	WorkspaceID  string
	DocID        string
	DocTitle     string
	Content      template.HTML
	DiscussionID string
	Revisions    []revisionRow
}

type documentEditData struct {
	viewdata.BaseVM
	WorkspaceID string
	DocID       string
	DocTitle    string
	Content     string
}

// loadWorkspaceDocument resolves {docID} and confirms the document
// belongs to the workspace in the URL, so a member of one workspace
// cannot reach into another by mixing IDs.
func (h *Handler) loadWorkspaceDocument(ctx context.Context, w http.ResponseWriter, r *http.Request, ws models.Thread) (models.Document, bool) {
	docID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "docID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That document does not exist.", "/workspace/"+ws.ID.Hex())
		return models.Document{}, false
	}

	doc, err := h.Documents.GetByID(ctx, docID)
	if errors.Is(err, documentstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That document does not exist.", "/workspace/"+ws.ID.Hex())
		return models.Document{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: load document", err, "A server error occurred.", "/workspace/"+ws.ID.Hex())
		return models.Document{}, false
	}
	// A mismatched pair of IDs is reported as missing but logged, since
	// it never comes from a link the app itself rendered.
	if doc.ThreadID != ws.ID {
		h.ErrLog.LogNotFound(w, r, "workspaces: document outside workspace", errDocumentOutsideWorkspace, "That document does not exist.", "/workspace/"+ws.ID.Hex())
		return models.Document{}, false
	}
	return doc, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /workspace/{id}/documents/{docID}                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, _, ok := h.loadMemberWorkspace(ctx, w, r)
	if !ok {
		return
	}
	doc, ok := h.loadWorkspaceDocument(ctx, w, r, ws)
	if !ok {
		return
	}

	// Revision history, newest first.
	editorIDs := make([]primitive.ObjectID, 0, len(doc.Revisions))
	for _, rev := range doc.Revisions {
		editorIDs = append(editorIDs, rev.EditorID)
	}
	editors, err := h.Users.GetMany(ctx, editorIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: load editors", err, "A server error occurred.", "/workspace/"+ws.ID.Hex())
		return
	}

	revs := make([]revisionRow, 0, len(doc.Revisions))
	for i := len(doc.Revisions) - 1; i >= 0; i-- {
		rev := doc.Revisions[i]
		revs = append(revs, revisionRow{
			Editor:    editors[rev.EditorID].Username,
			Timestamp: rev.Timestamp,
			Summary:   rev.Summary,
		})
	}

	data := documentViewData{
		BaseVM:      viewdata.NewBaseVM(r, doc.Title, "/workspace/"+ws.ID.Hex()),
		WorkspaceID: ws.ID.Hex(),
		DocID:       doc.ID.Hex(),
		DocTitle:    doc.Title,
		Content:     htmlsanitize.SanitizeHTML(doc.Content),
		Revisions:   revs,
	}
	if doc.DiscussionID != nil {
		data.DiscussionID = doc.DiscussionID.Hex()
	}

	templates.Render(w, r, "document_view", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /workspace/{id}/documents/{docID}/edit                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDocumentEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, _, ok := h.loadMemberWorkspace(ctx, w, r)
	if !ok {
		return
	}
	doc, ok := h.loadWorkspaceDocument(ctx, w, r, ws)
	if !ok {
		return
	}

	templates.Render(w, r, "document_edit", documentEditData{
		BaseVM:      viewdata.NewBaseVM(r, "Edit: "+doc.Title, "/workspace/"+ws.ID.Hex()+"/documents/"+doc.ID.Hex()),
		WorkspaceID: ws.ID.Hex(),
		DocID:       doc.ID.Hex(),
		DocTitle:    doc.Title,
		Content:     doc.Content,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /workspace/{id}/documents/{docID}/edit                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDocumentEdit saves a new version. Any workspace member may
// edit; the revision trail records who and when.
func (h *Handler) HandleDocumentEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, userID, ok := h.loadMemberWorkspace(ctx, w, r)
	if !ok {
		return
	}
	doc, ok := h.loadWorkspaceDocument(ctx, w, r, ws)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "workspaces: parse form", err, "Invalid form data.", "/workspace/"+ws.ID.Hex())
		return
	}

	content := r.FormValue("content")
	summary := strings.TrimSpace(r.FormValue("summary"))

	if err := h.Documents.Update(ctx, doc.ID, content, userID, summary); err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: update document", err, "A server error occurred.", "/workspace/"+ws.ID.Hex())
		return
	}

	h.Log.Info("document updated",
		zap.String("doc_id", doc.ID.Hex()),
		zap.String("workspace_id", ws.ID.Hex()),
		zap.String("editor_id", userID.Hex()))

	http.Redirect(w, r, "/workspace/"+ws.ID.Hex()+"/documents/"+doc.ID.Hex(), http.StatusSeeOther)
}
