// internal/app/features/proposals/boundaries.go
package proposals

import (
	"net/http"

	"github.com/CherdHall/PlotForge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// boundaryFields are the form field names for the six boundary
// dropdowns, matching the category names used by the boundary store.
var boundaryFields = []string{
	models.BoundaryGenre,
	models.BoundaryPolitical,
	models.BoundaryViolence,
	models.BoundarySex,
	models.BoundaryStyle,
	models.BoundaryAudience,
}

// parseBoundaries reads the six optional dropdowns. An empty value means
// "no preference" and leaves the field nil.
func parseBoundaries(r *http.Request) (models.Boundaries, error) {
	var b models.Boundaries

	parse := func(field string) (*primitive.ObjectID, error) {
		raw := r.FormValue(field)
		if raw == "" {
			return nil, nil
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}

	var err error
	if b.Genre, err = parse(models.BoundaryGenre); err != nil {
		return b, err
	}
	if b.Political, err = parse(models.BoundaryPolitical); err != nil {
		return b, err
	}
	if b.Violence, err = parse(models.BoundaryViolence); err != nil {
		return b, err
	}
	if b.Sex, err = parse(models.BoundarySex); err != nil {
		return b, err
	}
	if b.Style, err = parse(models.BoundaryStyle); err != nil {
		return b, err
	}
	if b.Audience, err = parse(models.BoundaryAudience); err != nil {
		return b, err
	}
	return b, nil
}
