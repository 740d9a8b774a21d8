// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	membershipstore "github.com/CherdHall/PlotForge/internal/app/store/memberships"
	threadstore "github.com/CherdHall/PlotForge/internal/app/store/threads"
	"github.com/CherdHall/PlotForge/internal/app/system/authz"
	"github.com/CherdHall/PlotForge/internal/app/system/timeouts"
	"github.com/CherdHall/PlotForge/internal/app/system/viewdata"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Threads     *threadstore.Store
	Memberships *membershipstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Threads:     threadstore.New(db),
		Memberships: membershipstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type proposalRow struct {
	ID          string
	Title       string
	MemberCount int64
	MaxMembers  int
	WorkspaceID string
}

type dashboardData struct {
	viewdata.BaseVM
	Proposals []proposalRow
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	open, err := h.Threads.ListByLeader(ctx, userID, models.KindProposal, models.StatusOpen)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list proposals", err, "A server error occurred.", "/")
		return
	}

	rows := make([]proposalRow, 0, len(open))
	for _, t := range open {
		n, err := h.Memberships.CountByThread(ctx, t.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "dashboard: count members", err, "A server error occurred.", "/")
			return
		}
		row := proposalRow{
			ID:          t.ID.Hex(),
			Title:       t.Title,
			MemberCount: n,
			MaxMembers:  t.MaxMembers,
		}
		if t.WorkspaceID != nil {
			row.WorkspaceID = t.WorkspaceID.Hex()
		}
		rows = append(rows, row)
	}

	templates.Render(w, r, "dashboard", dashboardData{
		BaseVM:    viewdata.NewBaseVM(r, "Dashboard", "/"),
		Proposals: rows,
	})
}
