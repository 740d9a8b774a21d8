package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/CherdHall/PlotForge/internal/app/store/users"
	"github.com/CherdHall/PlotForge/internal/app/system/indexes"
	"github.com/CherdHall/PlotForge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, "Ishmael", "ishmael@pequod.example", "call-me-maybe-8")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if u.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if u.UsernameCI == "" || u.EmailCI == "" {
		t.Error("expected folded CI fields to be set")
	}
	if u.PasswordHash == "" || u.PasswordHash == "call-me-maybe-8" {
		t.Error("expected password to be stored hashed")
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if u.LastLogin != nil {
		t.Error("expected LastLogin to be unset on a fresh account")
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, "Queequeg", "q1@pequod.example", "harpoon-pass-1"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same username, different case: folded index must reject it.
	_, err := store.Create(ctx, "QUEEQUEG", "q2@pequod.example", "harpoon-pass-2")
	if !errors.Is(err, userstore.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_GetByUsername_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Starbuck", "starbuck@pequod.example", "first-mate-pw")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByUsername(ctx, "sTaRbUcK")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got user %s, want %s", got.ID.Hex(), created.ID.Hex())
	}
}

func TestStore_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Ahab", "ahab@pequod.example", "white-whale-42")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	u, ok, err := store.Authenticate(ctx, "ahab", "white-whale-42")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !ok {
		t.Fatal("expected authentication to succeed")
	}
	if u.ID != created.ID {
		t.Errorf("got user %s, want %s", u.ID.Hex(), created.ID.Hex())
	}

	// Success stamps last_login.
	reloaded, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.LastLogin == nil {
		t.Error("expected LastLogin to be set after successful login")
	}
}

func TestStore_Authenticate_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Pip", "pip@pequod.example", "cabin-boy-pw")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, ok, err := store.Authenticate(ctx, "pip", "wrong-password")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if ok {
		t.Fatal("expected authentication to fail")
	}

	// A failed attempt must not touch the account.
	reloaded, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.LastLogin != nil {
		t.Error("expected LastLogin to stay unset after failed login")
	}
}

func TestStore_Authenticate_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, ok, err := store.Authenticate(ctx, "nobody", "whatever-pw")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if ok {
		t.Fatal("expected authentication to fail for unknown user")
	}
}

func TestStore_GetMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, "Flask", "flask@pequod.example", "third-mate-pw")
	b, _ := store.Create(ctx, "Stubb", "stubb@pequod.example", "second-mate-pw")

	got, err := store.GetMany(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	if got[a.ID].Username != "Flask" || got[b.ID].Username != "Stubb" {
		t.Error("GetMany returned wrong users")
	}
}
