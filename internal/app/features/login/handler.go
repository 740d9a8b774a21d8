// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	loginstore "github.com/CherdHall/PlotForge/internal/app/store/logins"
	userstore "github.com/CherdHall/PlotForge/internal/app/store/users"
	"github.com/CherdHall/PlotForge/internal/app/system/auth"
	"github.com/CherdHall/PlotForge/internal/app/system/timeouts"
	"github.com/CherdHall/PlotForge/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Users      *userstore.Store
	Logins     *loginstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Users:      userstore.New(db),
		Logins:     loginstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Username  string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Log In", "/"),
		ReturnURL: safeReturn(query.Get(r, "return")),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: parse form", err, "Invalid form data.", "/login")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	ret := safeReturn(r.FormValue("return"))

	if username == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your username and password.", username, ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok, err := h.Users.Authenticate(ctx, username, password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: authenticate", err, "A server error occurred.", "/login")
		return
	}
	if !ok {
		// Same message for unknown user and wrong password.
		h.renderFormWithError(w, r, "Invalid username or password.", username, ret)
		return
	}

	su := auth.SessionUser{ID: u.ID.Hex(), Name: u.Username, Email: u.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: start session", err, "A server error occurred.", "/login")
		return
	}
	if err := h.Logins.CreateFrom(ctx, r, u.ID, "password"); err != nil {
		h.Log.Warn("login: record login", zap.Error(err))
	}

	if ret == "" {
		ret = "/dashboard"
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username, ret string) {
	data := loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Log In", "/"),
		Username:  username,
		ReturnURL: ret,
	}
	data.SetError(msg)
	templates.Render(w, r, "login", data)
}

// safeReturn accepts only site-local paths so the post-login redirect
// cannot be pointed off-site.
func safeReturn(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}
