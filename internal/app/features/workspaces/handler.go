// internal/app/features/workspaces/handler.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	documentstore "github.com/CherdHall/PlotForge/internal/app/store/documents"
	membershipstore "github.com/CherdHall/PlotForge/internal/app/store/memberships"
	threadstore "github.com/CherdHall/PlotForge/internal/app/store/threads"
	userstore "github.com/CherdHall/PlotForge/internal/app/store/users"
	"github.com/CherdHall/PlotForge/internal/app/system/authz"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Threads     *threadstore.Store
	Memberships *membershipstore.Store
	Documents   *documentstore.Store
	Users       *userstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Threads:     threadstore.New(db),
		Memberships: membershipstore.New(db),
		Documents:   documentstore.New(db),
		Users:       userstore.New(db),
	}
}

// loadMemberWorkspace resolves {id}, confirms it is a workspace, and
// confirms the signed-in user is on its roster. Every workspace page
// goes through here.
func (h *Handler) loadMemberWorkspace(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Thread, primitive.ObjectID, bool) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return models.Thread{}, primitive.NilObjectID, false
	}

	wid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That workspace does not exist.", "/my-workspaces")
		return models.Thread{}, primitive.NilObjectID, false
	}

	ws, err := h.Threads.GetByID(ctx, wid)
	if errors.Is(err, threadstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That workspace does not exist.", "/my-workspaces")
		return models.Thread{}, primitive.NilObjectID, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: load workspace", err, "A server error occurred.", "/my-workspaces")
		return models.Thread{}, primitive.NilObjectID, false
	}
	if !ws.IsWorkspace() {
		uierrors.RenderNotFound(w, r, "That workspace does not exist.", "/my-workspaces")
		return models.Thread{}, primitive.NilObjectID, false
	}

	member, err := h.Memberships.Exists(ctx, ws.ID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "workspaces: check membership", err, "A server error occurred.", "/my-workspaces")
		return models.Thread{}, primitive.NilObjectID, false
	}
	if !member {
		uierrors.RenderForbidden(w, r, "You are not a member of this workspace.", "/my-workspaces")
		return models.Thread{}, primitive.NilObjectID, false
	}

	return ws, userID, true
}
