package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/CherdHall/PlotForge/internal/app/features/errors"
	"github.com/CherdHall/PlotForge/internal/app/features/dashboard"
	proposalstore "github.com/CherdHall/PlotForge/internal/app/store/proposals"
	"github.com/CherdHall/PlotForge/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return dashboard.NewHandler(db, uierrors.NewErrorLogger(logger), logger), db
}

func TestServe_Unauthenticated(t *testing.T) {
	testutil.BootTemplates(t)
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/dashboard", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestServe_ListsOwnOpenProposals(t *testing.T) {
	testutil.BootTemplates(t)
	handler, db := newTestHandler(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateUser(ctx, "quillpen", "quill@example.com")

	proposals := proposalstore.New(db.Client(), db, zap.NewNop())
	_, err := proposals.Submit(ctx, proposalstore.SubmitInput{
		LeaderID: leader.ID,
		Title:    "The Lighthouse Murders",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.UserFor(leader.ID, "quillpen"))
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "The Lighthouse Murders") {
		t.Error("expected the proposal title on the dashboard")
	}
}

func TestServe_EmptyDashboard(t *testing.T) {
	testutil.BootTemplates(t)
	handler, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.SomeUser("quillpen"))
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
