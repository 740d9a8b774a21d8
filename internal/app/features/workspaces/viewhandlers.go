// internal/app/features/workspaces/viewhandlers.go
package workspaces

import (
	"context"
	"net/http"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	"github.com/CherdHall/PlotForge/internal/app/system/authz"
	"github.com/CherdHall/PlotForge/internal/app/system/timeouts"
	"github.com/CherdHall/PlotForge/internal/app/system/viewdata"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type subThreadRow struct {
	ID    string
	Title string
}

type documentRow struct {
	ID    string
	Title string
	Type  string
}

type memberRow struct {
	Name   string
	Role   string
	Leader bool
}

type workspaceData struct {
	viewdata.BaseVM
	WorkspaceID string
	Name        string
	SubThreads  []subThreadRow
	Documents   []documentRow
	Members     []memberRow
}

type myWorkspaceRow struct {
	ID    string
	Title string
}

type myWorkspacesData struct {
	viewdata.BaseVM
	Workspaces []myWorkspaceRow
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /workspace/{id}                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeWorkspace is the workspace hub: discussion subthreads, shared
// documents, and the member roster on one page.
func (h *Handler) ServeWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, _, ok := h.loadMemberWorkspace(ctx, w, r)
	if !ok {
		return
	}

	subs, err := h.Threads.ListSubThreads(ctx, ws.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: list subthreads", err, "A server error occurred.", "/my-workspaces")
		return
	}
	docs, err := h.Documents.ListByThread(ctx, ws.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: list documents", err, "A server error occurred.", "/my-workspaces")
		return
	}
	members, err := h.Memberships.ListByThread(ctx, ws.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: list members", err, "A server error occurred.", "/my-workspaces")
		return
	}

	memberIDs := make([]primitive.ObjectID, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}
	users, err := h.Users.GetMany(ctx, memberIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: load members", err, "A server error occurred.", "/my-workspaces")
		return
	}

	data := workspaceData{
		BaseVM:      viewdata.NewBaseVM(r, ws.Title, "/my-workspaces"),
		WorkspaceID: ws.ID.Hex(),
		Name:        ws.Title,
	}
	for _, st := range subs {
		data.SubThreads = append(data.SubThreads, subThreadRow{ID: st.ID.Hex(), Title: st.Title})
	}
	for _, d := range docs {
		data.Documents = append(data.Documents, documentRow{ID: d.ID.Hex(), Title: d.Title, Type: d.Type})
	}
	for _, m := range members {
		data.Members = append(data.Members, memberRow{
			Name:   users[m.UserID].Username,
			Role:   m.Role,
			Leader: m.Role == models.RoleLeader,
		})
	}

	templates.Render(w, r, "workspace_view", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /my-workspaces                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeMyWorkspaces(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	threadIDs, err := h.Memberships.ListThreadIDsByUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: list memberships", err, "A server error occurred.", "/dashboard")
		return
	}
	threads, err := h.Threads.GetMany(ctx, threadIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: load threads", err, "A server error occurred.", "/dashboard")
		return
	}

	data := myWorkspacesData{
		BaseVM: viewdata.NewBaseVM(r, "My Workspaces", "/dashboard"),
	}
	for _, t := range threads {
		if !t.IsWorkspace() {
			continue
		}
		data.Workspaces = append(data.Workspaces, myWorkspaceRow{ID: t.ID.Hex(), Title: t.Title})
	}

	templates.Render(w, r, "my_workspaces", data)
}
