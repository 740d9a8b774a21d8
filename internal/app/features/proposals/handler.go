// internal/app/features/proposals/handler.go
package proposals

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	boundarystore "github.com/CherdHall/PlotForge/internal/app/store/boundaries"
	membershipstore "github.com/CherdHall/PlotForge/internal/app/store/memberships"
	proposalstore "github.com/CherdHall/PlotForge/internal/app/store/proposals"
	threadstore "github.com/CherdHall/PlotForge/internal/app/store/threads"
	userstore "github.com/CherdHall/PlotForge/internal/app/store/users"
	"github.com/CherdHall/PlotForge/internal/app/system/authz"
	"github.com/CherdHall/PlotForge/internal/app/system/inputval"
	"github.com/CherdHall/PlotForge/internal/app/system/normalize"
	"github.com/CherdHall/PlotForge/internal/app/system/timeouts"
	"github.com/CherdHall/PlotForge/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listPageSize = 20

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Threads     *threadstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Boundaries  *boundarystore.Store
	Proposals   *proposalstore.Store
}

func NewHandler(client *mongo.Client, db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Threads:     threadstore.New(db),
		Memberships: membershipstore.New(db),
		Users:       userstore.New(db),
		Boundaries:  boundarystore.New(db),
		Proposals:   proposalstore.New(client, db, logger),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type listRow struct {
	ID          string
	Title       string
	Leader      string
	MemberCount int64
	MaxMembers  int
}

type listData struct {
	viewdata.BaseVM
	Proposals []listRow
	PrevCur   string
	NextCur   string
}

type newFormData struct {
	viewdata.BaseVM
	Title       string
	Description string
	MaxMembers  string
	Choices     boundarystore.Choices
	Selected    map[string]string // category → selected option id hex
}

type newForm struct {
	Title       string `validate:"required,max=120" label:"Title"`
	Description string `validate:"max=10000" label:"Description"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /proposals                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList shows all open proposals, newest first, keyset paged. The
// page is public: visitors can browse before registering.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	after := normalize.QueryParam(query.Get(r, "after"))
	before := normalize.QueryParam(query.Get(r, "before"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Threads.ListOpenProposals(ctx, after, before, listPageSize)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposals: list open", err, "A server error occurred.", "/")
		return
	}

	leaderIDs := make([]primitive.ObjectID, 0, len(page.Threads))
	for _, t := range page.Threads {
		leaderIDs = append(leaderIDs, t.LeaderID)
	}
	leaders, err := h.Users.GetMany(ctx, leaderIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposals: load leaders", err, "A server error occurred.", "/")
		return
	}

	rows := make([]listRow, 0, len(page.Threads))
	for _, t := range page.Threads {
		n, err := h.Memberships.CountByThread(ctx, t.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "proposals: count members", err, "A server error occurred.", "/")
			return
		}
		rows = append(rows, listRow{
			ID:          t.ID.Hex(),
			Title:       t.Title,
			Leader:      leaders[t.LeaderID].Username,
			MemberCount: n,
			MaxMembers:  t.MaxMembers,
		})
	}

	templates.Render(w, r, "proposals_list", listData{
		BaseVM:    viewdata.NewBaseVM(r, "Open Proposals", "/"),
		Proposals: rows,
		PrevCur:   page.PrevCur,
		NextCur:   page.NextCur,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /proposals/new                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNewForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	choices, err := h.Boundaries.ListChoices(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposals: load boundary options", err, "A server error occurred.", "/proposals")
		return
	}

	templates.Render(w, r, "proposals_new", newFormData{
		BaseVM:   viewdata.NewBaseVM(r, "New Proposal", "/proposals"),
		Choices:  choices,
		Selected: map[string]string{},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /proposals                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSubmit runs the full submission workflow: recruitment thread,
// workspace, default subthreads and documents, all in one shot.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "proposals: parse form", err, "Invalid form data.", "/proposals/new")
		return
	}

	form := newForm{
		Title:       normalize.Name(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		h.renderNewFormWithError(w, r, res.First(), r.Form)
		return
	}

	// A non-numeric group size is treated like an absent one and picks
	// up the default capacity in the store.
	maxMembers := 0
	if raw := strings.TrimSpace(r.FormValue("max_members")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			if n < 2 {
				h.renderNewFormWithError(w, r, "Group size must be at least 2.", r.Form)
				return
			}
			maxMembers = n
		}
	}

	bounds, err := parseBoundaries(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "proposals: parse boundaries", err, "Invalid boundary selection.", "/proposals/new")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Proposals.Submit(ctx, proposalstore.SubmitInput{
		LeaderID:    userID,
		Title:       form.Title,
		Description: form.Description,
		MaxMembers:  maxMembers,
		Boundaries:  bounds,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposals: submit", err, "A server error occurred.", "/proposals/new")
		return
	}

	http.Redirect(w, r, "/workspace/"+res.Workspace.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) renderNewFormWithError(w http.ResponseWriter, r *http.Request, msg string, form map[string][]string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	choices, err := h.Boundaries.ListChoices(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "proposals: load boundary options", err, "A server error occurred.", "/proposals")
		return
	}

	first := func(key string) string {
		if vs := form[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	selected := make(map[string]string, len(boundaryFields))
	for _, f := range boundaryFields {
		selected[f] = first(f)
	}

	data := newFormData{
		BaseVM:      viewdata.NewBaseVM(r, "New Proposal", "/proposals"),
		Title:       first("title"),
		Description: first("description"),
		MaxMembers:  first("max_members"),
		Choices:     choices,
		Selected:    selected,
	}
	data.SetError(msg)
	templates.Render(w, r, "proposals_new", data)
}
