package category

// Category is a caller-facing search bucket.
type Category string

// Search categories.
const (
	Spaces             Category = "spaces"
	CollaborationTools Category = "collaboration-tools"
	Responses          Category = "responses"
	Contributors       Category = "contributors"
)

// All returns every category in routing order.
func All() []Category {
	return []Category{Spaces, Contributors, CollaborationTools, Responses}
}

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	return c == Spaces || c == CollaborationTools || c == Responses || c == Contributors
}
