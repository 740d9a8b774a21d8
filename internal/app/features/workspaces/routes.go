// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/CherdHall/PlotForge/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /workspace/*. MyWorkspacesRoutes serves /my-workspaces
// separately so the two prefixes can be mounted side by side.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/{id}", h.ServeWorkspace)
	r.Get("/{id}/documents/{docID}", h.ServeDocument)
	r.Get("/{id}/documents/{docID}/edit", h.ServeDocumentEdit)
	r.Post("/{id}/documents/{docID}/edit", h.HandleDocumentEdit)
	return r
}

func MyWorkspacesRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeMyWorkspaces)
	return r
}
