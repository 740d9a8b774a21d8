package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/CherdHall/PlotForge/internal/app/system/auth"
	"github.com/CherdHall/PlotForge/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_SignedIn(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   id.Hex(),
		Name: "quillpen",
	})

	name, userID, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok for signed-in user")
	}
	if name != "quillpen" {
		t.Errorf("name: got %q", name)
	}
	if userID != id {
		t.Errorf("userID: got %s, want %s", userID.Hex(), id.Hex())
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	_, userID, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false with no session user")
	}
	if userID != primitive.NilObjectID {
		t.Error("expected NilObjectID with no session user")
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   "not-an-object-id",
		Name: "quillpen",
	})

	_, _, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false for a malformed session user ID")
	}
}
