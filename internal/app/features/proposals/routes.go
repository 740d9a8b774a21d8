// internal/app/features/proposals/routes.go
package proposals

import (
	"github.com/CherdHall/PlotForge/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Browsing is public; submitting needs an account.
	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/new", h.ServeNewForm)
		pr.Post("/", h.HandleSubmit)
	})

	return r
}
