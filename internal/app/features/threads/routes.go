// internal/app/features/threads/routes.go
package threads

import (
	"github.com/CherdHall/PlotForge/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Reads do their own gating: open recruitment threads are public.
	r.Get("/{id}", h.ServeThread)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/{id}/post", h.HandlePost)
		pr.Post("/{id}/add_member/{userID}", h.HandleAddMember)
		pr.Post("/{id}/close", h.HandleClose)
	})

	return r
}
