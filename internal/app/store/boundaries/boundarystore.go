// internal/app/store/boundaries/boundarystore.go
package boundarystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/CherdHall/PlotForge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound    = errors.New("boundary option not found")
	ErrBadCategory = errors.New("unknown boundary category")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("boundary_options")}
}

// categoryField maps a boundary category to its flag field.
func categoryField(category string) (string, error) {
	switch category {
	case models.BoundaryGenre:
		return "for_genre", nil
	case models.BoundaryPolitical:
		return "for_political", nil
	case models.BoundaryViolence:
		return "for_violence", nil
	case models.BoundarySex:
		return "for_sex", nil
	case models.BoundaryStyle:
		return "for_style", nil
	case models.BoundaryAudience:
		return "for_audience", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadCategory, category)
	}
}

// ListForCategory returns the options flagged for one dropdown, in
// sort order.
func (s *Store) ListForCategory(ctx context.Context, category string) ([]models.BoundaryOption, error) {
	field, err := categoryField(category)
	if err != nil {
		return nil, err
	}

	cur, err := s.c.Find(ctx, bson.M{field: true},
		options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var opts []models.BoundaryOption
	if err := cur.All(ctx, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// Choices bundles the option lists for all six dropdowns.
type Choices struct {
	Genre     []models.BoundaryOption
	Political []models.BoundaryOption
	Violence  []models.BoundaryOption
	Sex       []models.BoundaryOption
	Style     []models.BoundaryOption
	Audience  []models.BoundaryOption
}

// ListChoices loads the options for every dropdown on the proposal form.
func (s *Store) ListChoices(ctx context.Context) (Choices, error) {
	var (
		ch  Choices
		err error
	)
	if ch.Genre, err = s.ListForCategory(ctx, models.BoundaryGenre); err != nil {
		return Choices{}, err
	}
	if ch.Political, err = s.ListForCategory(ctx, models.BoundaryPolitical); err != nil {
		return Choices{}, err
	}
	if ch.Violence, err = s.ListForCategory(ctx, models.BoundaryViolence); err != nil {
		return Choices{}, err
	}
	if ch.Sex, err = s.ListForCategory(ctx, models.BoundarySex); err != nil {
		return Choices{}, err
	}
	if ch.Style, err = s.ListForCategory(ctx, models.BoundaryStyle); err != nil {
		return Choices{}, err
	}
	if ch.Audience, err = s.ListForCategory(ctx, models.BoundaryAudience); err != nil {
		return Choices{}, err
	}
	return ch, nil
}

// GetByID retrieves one option.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.BoundaryOption, error) {
	var opt models.BoundaryOption
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&opt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.BoundaryOption{}, ErrNotFound
		}
		return models.BoundaryOption{}, err
	}
	return opt, nil
}

// GetMany resolves a set of option IDs in one query.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.BoundaryOption, error) {
	result := make(map[primitive.ObjectID]models.BoundaryOption, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var opt models.BoundaryOption
		if err := cur.Decode(&opt); err != nil {
			return nil, err
		}
		result[opt.ID] = opt
	}
	return result, cur.Err()
}

// Seed upserts the default option set. It keys on option_text, so
// re-running at startup is safe and never duplicates rows.
func (s *Store) Seed(ctx context.Context, opts []models.BoundaryOption) error {
	for _, opt := range opts {
		update := bson.M{"$setOnInsert": bson.M{
			"option_text":   opt.OptionText,
			"for_genre":     opt.ForGenre,
			"for_political": opt.ForPolitical,
			"for_violence":  opt.ForViolence,
			"for_sex":       opt.ForSex,
			"for_style":     opt.ForStyle,
			"for_audience":  opt.ForAudience,
			"sort_order":    opt.SortOrder,
		}}
		_, err := s.c.UpdateOne(ctx,
			bson.M{"option_text": opt.OptionText},
			update,
			options.Update().SetUpsert(true))
		if err != nil {
			return err
		}
	}
	return nil
}

// DefaultOptions is the seed data for a fresh deployment. Operators
// can extend the collection afterwards; Seed never overwrites edits.
func DefaultOptions() []models.BoundaryOption {
	return []models.BoundaryOption{
		{OptionText: "Fantasy", ForGenre: true, SortOrder: 10},
		{OptionText: "Science Fiction", ForGenre: true, SortOrder: 20},
		{OptionText: "Mystery", ForGenre: true, SortOrder: 30},
		{OptionText: "Romance", ForGenre: true, SortOrder: 40},
		{OptionText: "Horror", ForGenre: true, SortOrder: 50},
		{OptionText: "Historical", ForGenre: true, SortOrder: 60},

		{OptionText: "No real-world politics", ForPolitical: true, SortOrder: 10},
		{OptionText: "Allegory welcome", ForPolitical: true, SortOrder: 20},
		{OptionText: "Anything goes", ForPolitical: true, ForViolence: true, ForSex: true, SortOrder: 90},

		{OptionText: "None", ForViolence: true, ForSex: true, SortOrder: 10},
		{OptionText: "Mild / off-page", ForViolence: true, ForSex: true, SortOrder: 20},
		{OptionText: "Graphic", ForViolence: true, SortOrder: 30},

		{OptionText: "Literary", ForStyle: true, SortOrder: 10},
		{OptionText: "Pulpy / fast-paced", ForStyle: true, SortOrder: 20},
		{OptionText: "Epistolary", ForStyle: true, SortOrder: 30},

		{OptionText: "All ages", ForAudience: true, SortOrder: 10},
		{OptionText: "Young adult", ForAudience: true, SortOrder: 20},
		{OptionText: "Adult", ForAudience: true, SortOrder: 30},
	}
}
