// internal/domain/models/boundaryoption.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Boundary categories, matching the six dropdowns on the proposal form.
const (
	BoundaryGenre     = "genre"
	BoundaryPolitical = "political"
	BoundaryViolence  = "violence"
	BoundarySex       = "sex"
	BoundaryStyle     = "style"
	BoundaryAudience  = "audience"
)

// BoundaryOption is a read-only reference row for the content-boundary
// dropdowns. One option can appear in several dropdowns via the
// category flags. SortOrder controls dropdown ordering.
type BoundaryOption struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OptionText string             `bson:"option_text" json:"option_text"`

	ForGenre     bool `bson:"for_genre" json:"for_genre"`
	ForPolitical bool `bson:"for_political" json:"for_political"`
	ForViolence  bool `bson:"for_violence" json:"for_violence"`
	ForSex       bool `bson:"for_sex" json:"for_sex"`
	ForStyle     bool `bson:"for_style" json:"for_style"`
	ForAudience  bool `bson:"for_audience" json:"for_audience"`

	SortOrder int `bson:"sort_order" json:"sort_order"`
}
