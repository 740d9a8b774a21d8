package boundarystore_test

import (
	"errors"
	"testing"

	boundarystore "github.com/CherdHall/PlotForge/internal/app/store/boundaries"
	"github.com/CherdHall/PlotForge/internal/domain/models"
	"github.com/CherdHall/PlotForge/internal/testutil"
)

func TestStore_Seed_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boundarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	opts := boundarystore.DefaultOptions()
	if err := store.Seed(ctx, opts); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := store.Seed(ctx, opts); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	n, err := db.Collection("boundary_options").CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if int(n) != len(opts) {
		t.Errorf("expected %d options after double seed, got %d", len(opts), n)
	}
}

func TestStore_ListForCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boundarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Seed(ctx, boundarystore.DefaultOptions()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	genres, err := store.ListForCategory(ctx, models.BoundaryGenre)
	if err != nil {
		t.Fatalf("ListForCategory failed: %v", err)
	}
	if len(genres) == 0 {
		t.Fatal("expected genre options")
	}
	for _, g := range genres {
		if !g.ForGenre {
			t.Errorf("option %q not flagged for genre", g.OptionText)
		}
	}
	// Sorted by sort_order.
	for i := 1; i < len(genres); i++ {
		if genres[i-1].SortOrder > genres[i].SortOrder {
			t.Fatalf("options out of order at %d: %d > %d", i, genres[i-1].SortOrder, genres[i].SortOrder)
		}
	}
}

func TestStore_ListForCategory_BadCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boundarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.ListForCategory(ctx, "mood")
	if !errors.Is(err, boundarystore.ErrBadCategory) {
		t.Fatalf("expected ErrBadCategory, got %v", err)
	}
}

func TestStore_ListChoices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boundarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Seed(ctx, boundarystore.DefaultOptions()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	ch, err := store.ListChoices(ctx)
	if err != nil {
		t.Fatalf("ListChoices failed: %v", err)
	}
	if len(ch.Genre) == 0 || len(ch.Political) == 0 || len(ch.Violence) == 0 ||
		len(ch.Sex) == 0 || len(ch.Style) == 0 || len(ch.Audience) == 0 {
		t.Error("expected every category to have options after seeding")
	}
}
