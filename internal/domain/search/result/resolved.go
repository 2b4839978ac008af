package result

import "github.com/kailas-cloud/collabsearch/internal/domain/entity"

// Output is a response bucket resolved results are merged into.
type Output string

// Output buckets.
const (
	OutputContributors       Output = "contributors"
	OutputContributions      Output = "contributions"
	OutputFramings           Output = "framings"
	OutputSpaces             Output = "spaces"
	OutputCollaborationTools Output = "collaboration-tools"
)

// Outputs returns every output bucket in response order.
func Outputs() []Output {
	return []Output{
		OutputContributors, OutputContributions, OutputFramings,
		OutputSpaces, OutputCollaborationTools,
	}
}

// Resolved is a raw hit enriched with its live entity and ancestors.
type Resolved interface {
	Raw() Raw
	Output() Output
}

// Space is a resolved space or subspace hit. Parent is set for subspaces only.
type Space struct {
	Stub   Raw
	Space  entity.Space
	Parent *entity.Space
}

// Raw implements Resolved.
func (r Space) Raw() Raw { return r.Stub }

// Output implements Resolved.
func (r Space) Output() Output { return OutputSpaces }

// User is a resolved user hit.
type User struct {
	Stub Raw
	User entity.User
}

// Raw implements Resolved.
func (r User) Raw() Raw { return r.Stub }

// Output implements Resolved.
func (r User) Output() Output { return OutputContributors }

// Organization is a resolved organization hit.
type Organization struct {
	Stub         Raw
	Organization entity.Organization
}

// Raw implements Resolved.
func (r Organization) Raw() Raw { return r.Stub }

// Output implements Resolved.
func (r Organization) Output() Output { return OutputContributors }

// Post is a resolved post hit with its owning callout and space.
type Post struct {
	Stub    Raw
	Post    entity.Post
	Callout entity.Callout
	Space   entity.Space
}

// Raw implements Resolved.
func (r Post) Raw() Raw { return r.Stub }

// Output implements Resolved.
func (r Post) Output() Output { return OutputContributions }

// Whiteboard is a resolved whiteboard hit.
type Whiteboard struct {
	Stub           Raw
	Whiteboard     entity.Whiteboard
	Callout        entity.Callout
	Space          entity.Space
	IsContribution bool
}

// Raw implements Resolved.
func (r Whiteboard) Raw() Raw { return r.Stub }

// Output implements Resolved.
func (r Whiteboard) Output() Output { return contentOutput(r.IsContribution) }

// Memo is a resolved memo hit.
type Memo struct {
	Stub           Raw
	Memo           entity.Memo
	Callout        entity.Callout
	Space          entity.Space
	IsContribution bool
}

// Raw implements Resolved.
func (r Memo) Raw() Raw { return r.Stub }

// Output implements Resolved.
func (r Memo) Output() Output { return contentOutput(r.IsContribution) }

// Callout is a resolved callout hit with its owning space.
type Callout struct {
	Stub    Raw
	Callout entity.Callout
	Space   entity.Space
}

// Raw implements Resolved.
func (r Callout) Raw() Raw { return r.Stub }

// Output implements Resolved.
func (r Callout) Output() Output { return OutputCollaborationTools }

func contentOutput(isContribution bool) Output {
	if isContribution {
		return OutputContributions
	}
	return OutputFramings
}
