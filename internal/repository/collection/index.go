package collection

import (
	"github.com/kailas-cloud/collabsearch/internal/db"
	"github.com/kailas-cloud/collabsearch/internal/repository/search"
)

// Indexed document fields beyond the ones the search repository queries.
const (
	fieldVisibility  = "visibility"
	fieldDisplayName = "displayName"
	fieldTagline     = "tagline"
	fieldDescription = "description"
)

// displayNameWeight boosts title matches over body text.
const displayNameWeight = 2

// buildIndex creates the FT schema of one routed collection.
// Documents are hashes keyed "<collection>:<doc id>". spaceID is absent on
// documents not owned by a space, so it indexes missing values for the scope filter.
func buildIndex(idx search.Index) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(idx.Name).
		OnHash().
		Prefix(collectionPrefix(idx.Name)).
		Tag(search.FieldID).
		Tag(search.FieldType).
		OptionalTag(search.FieldSpaceID).
		OptionalTag(fieldVisibility).
		OptionalTag(search.FieldTagsets).
		WeightedText(fieldDisplayName, displayNameWeight).
		Text(fieldTagline).
		Text(fieldDescription).
		Build()
	if err != nil {
		return nil, err //nolint:wrapcheck // builder errors already name the field
	}
	return def, nil
}

func collectionPrefix(name string) string {
	return name + ":"
}
