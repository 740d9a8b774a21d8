package proposals_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	"github.com/CherdHall/PlotForge/internal/app/features/proposals"
	proposalstore "github.com/CherdHall/PlotForge/internal/app/store/proposals"
	threadstore "github.com/CherdHall/PlotForge/internal/app/store/threads"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/CherdHall/PlotForge/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*proposals.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return proposals.NewHandler(db.Client(), db, uierrors.NewErrorLogger(logger), logger), db
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestServeList_Public(t *testing.T) {
	testutil.BootTemplates(t)
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateUser(ctx, "quillpen", "quill@example.com")
	store := proposalstore.New(db.Client(), db, zap.NewNop())
	if _, err := store.Submit(ctx, proposalstore.SubmitInput{
		LeaderID: leader.ID,
		Title:    "The Lighthouse Murders",
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// No signed-in user: the listing is public.
	rec := httptest.NewRecorder()
	handler.ServeList(rec, httptest.NewRequest("GET", "/proposals", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The Lighthouse Murders") {
		t.Error("expected the proposal title in the listing")
	}
	if !strings.Contains(body, "quillpen") {
		t.Error("expected the leader name in the listing")
	}
}

func TestServeList_ExcludesClosed(t *testing.T) {
	testutil.BootTemplates(t)
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateUser(ctx, "quillpen", "quill@example.com")
	store := proposalstore.New(db.Client(), db, zap.NewNop())
	res, err := store.Submit(ctx, proposalstore.SubmitInput{
		LeaderID: leader.ID,
		Title:    "Closed Story",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := threadstore.New(db).Close(ctx, res.Proposal.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeList(rec, httptest.NewRequest("GET", "/proposals", nil))

	if strings.Contains(rec.Body.String(), "Closed Story") {
		t.Error("closed proposals should not appear in the public listing")
	}
}

func TestHandleSubmit_Unauthenticated(t *testing.T) {
	testutil.BootTemplates(t)
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, postForm("/proposals", url.Values{"title": {"X"}}))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHandleSubmit_CreatesAndRedirectsToWorkspace(t *testing.T) {
	testutil.BootTemplates(t)
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateUser(ctx, "quillpen", "quill@example.com")

	form := url.Values{
		"title":       {"The Lighthouse Murders"},
		"description": {"A cozy mystery on a remote island."},
		"max_members": {"6"},
	}
	req := testutil.WithUser(postForm("/proposals", form), testutil.UserFor(leader.ID, "quillpen"))
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/workspace/") {
		t.Fatalf("expected a workspace redirect, got %q", loc)
	}

	// The proposal exists and is linked to the workspace in the URL.
	open, err := threadstore.New(db).ListByLeader(ctx, leader.ID, models.KindProposal, models.StatusOpen)
	if err != nil {
		t.Fatalf("ListByLeader failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open proposal, got %d", len(open))
	}
	if open[0].WorkspaceID == nil || "/workspace/"+open[0].WorkspaceID.Hex() != loc {
		t.Error("redirect does not point at the created workspace")
	}
}

func TestHandleSubmit_MissingTitle(t *testing.T) {
	testutil.BootTemplates(t)
	handler, _ := newTestHandler(t)

	form := url.Values{
		"description": {"No title supplied."},
	}
	req := testutil.WithUser(postForm("/proposals", form), testutil.SomeUser("quillpen"))
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("expected the form to re-render, not redirect")
	}
	if !strings.Contains(rec.Body.String(), "Title is required.") {
		t.Error("expected the validation message in the re-rendered form")
	}
}

func TestHandleSubmit_GroupSizeTooSmall(t *testing.T) {
	testutil.BootTemplates(t)
	handler, _ := newTestHandler(t)

	form := url.Values{
		"title":       {"Solo Act"},
		"max_members": {"1"},
	}
	req := testutil.WithUser(postForm("/proposals", form), testutil.SomeUser("quillpen"))
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("expected the form to re-render for a group of one")
	}
}

func TestHandleSubmit_NonNumericGroupSizeUsesDefault(t *testing.T) {
	testutil.BootTemplates(t)
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateUser(ctx, "quillpen", "quill@example.com")

	// An unparsable group size is treated like an absent one.
	form := url.Values{
		"title":       {"The Lighthouse Murders"},
		"max_members": {"lots"},
	}
	req := testutil.WithUser(postForm("/proposals", form), testutil.UserFor(leader.ID, "quillpen"))
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	open, err := threadstore.New(db).ListByLeader(ctx, leader.ID, models.KindProposal, models.StatusOpen)
	if err != nil {
		t.Fatalf("ListByLeader failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open proposal, got %d", len(open))
	}
	if open[0].MaxMembers != threadstore.DefaultMaxMembers {
		t.Errorf("expected the default capacity %d, got %d", threadstore.DefaultMaxMembers, open[0].MaxMembers)
	}
}
