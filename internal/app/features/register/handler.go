// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	loginstore "github.com/CherdHall/PlotForge/internal/app/store/logins"
	userstore "github.com/CherdHall/PlotForge/internal/app/store/users"
	"github.com/CherdHall/PlotForge/internal/app/system/auth"
	"github.com/CherdHall/PlotForge/internal/app/system/inputval"
	"github.com/CherdHall/PlotForge/internal/app/system/timeouts"
	"github.com/CherdHall/PlotForge/internal/app/system/viewdata"
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

type registerFormData struct {
	viewdata.BaseVM
	Username string
	Email    string
}

type registerForm struct {
	Username string `validate:"required,max=60" label:"Username"`
	Email    string `validate:"required,max=254" label:"Email"`
	Password string `validate:"required,max=200" label:"Password"`
}

const minPasswordLen = 8

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "register", registerFormData{
		BaseVM: viewdata.NewBaseVM(r, "Register", "/"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: parse form", err, "Invalid form data.", "/register")
		return
	}

	form := registerForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}

	if res := inputval.Validate(form); res.HasErrors() {
		h.renderFormWithError(w, r, res.First(), form)
		return
	}
	if len(form.Password) < minPasswordLen {
		h.renderFormWithError(w, r, "Password must be at least 8 characters.", form)
		return
	}
	if !strings.Contains(form.Email, "@") {
		h.renderFormWithError(w, r, "Please enter a valid email address.", form)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, form.Username, form.Email, form.Password)
	switch {
	case errors.Is(err, userstore.ErrDuplicate):
		h.renderFormWithError(w, r, "That username or email is already taken.", form)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "register: create user", err, "A server error occurred.", "/register")
		return
	}

	/*── sign the new account in straight away ─────────────────────────────*/

	su := auth.SessionUser{ID: u.ID.Hex(), Name: u.Username, Email: u.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "register: start session", err, "A server error occurred.", "/login")
		return
	}
	if err := h.Logins.CreateFrom(ctx, r, u.ID, "password"); err != nil {
		h.Log.Warn("register: record login", zap.Error(err))
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg string, form registerForm) {
	data := registerFormData{
		BaseVM:   viewdata.NewBaseVM(r, "Register", "/"),
		Username: form.Username,
		Email:    form.Email,
	}
	data.SetError(msg)
	templates.Render(w, r, "register", data)
}
