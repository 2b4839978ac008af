// Package entity holds the live relational entities a search hit resolves to.
package entity

import "github.com/kailas-cloud/collabsearch/internal/domain/authorization"

// Profile is the display data shared by every entity.
type Profile struct {
	DisplayName string `json:"displayName"`
	Tagline     string `json:"tagline,omitempty"`
	Description string `json:"description,omitempty"`
}

// SpaceLevel distinguishes root spaces from nested subspaces.
type SpaceLevel int

// Space levels.
const (
	LevelSpace    SpaceLevel = 0
	LevelSubspace SpaceLevel = 1
	LevelSubSub   SpaceLevel = 2
)

// SpaceVisibility is the lifecycle state of a space.
type SpaceVisibility string

// Space visibilities.
const (
	SpaceActive   SpaceVisibility = "active"
	SpaceArchived SpaceVisibility = "archived"
	SpaceDemo     SpaceVisibility = "demo"
)

// Space is a collaboration space or subspace.
type Space struct {
	ID            string               `json:"id"`
	NameID        string               `json:"nameID"`
	Level         SpaceLevel           `json:"level"`
	Visibility    SpaceVisibility      `json:"visibility"`
	ParentSpaceID string               `json:"parentSpaceID,omitempty"`
	Profile       Profile              `json:"profile"`
	Authorization authorization.Policy `json:"-"`
}

// User is a platform user.
type User struct {
	ID      string  `json:"id"`
	NameID  string  `json:"nameID"`
	Email   string  `json:"-"`
	Profile Profile `json:"profile"`
}

// Organization is a contributing organization.
type Organization struct {
	ID            string               `json:"id"`
	NameID        string               `json:"nameID"`
	Profile       Profile              `json:"profile"`
	Authorization authorization.Policy `json:"-"`
}

// CalloutVisibility is the publication state of a callout.
type CalloutVisibility string

// Callout visibilities.
const (
	CalloutDraft     CalloutVisibility = "draft"
	CalloutPublished CalloutVisibility = "published"
)

// CalloutsSetType is the kind of container a callout lives in.
type CalloutsSetType string

// Callouts-set types. Only collaboration sets are searchable.
const (
	CalloutsSetCollaboration CalloutsSetType = "collaboration"
	CalloutsSetKnowledgeBase CalloutsSetType = "knowledge-base"
	CalloutsSetTemplates     CalloutsSetType = "templates"
)

// Callout is a collaboration tool that frames content and collects contributions.
type Callout struct {
	ID              string               `json:"id"`
	NameID          string               `json:"nameID"`
	Visibility      CalloutVisibility    `json:"visibility"`
	CalloutsSetType CalloutsSetType      `json:"-"`
	Profile         Profile              `json:"profile"`
	Authorization   authorization.Policy `json:"-"`
}

// IsDraft reports whether the callout is unpublished.
func (c Callout) IsDraft() bool { return c.Visibility == CalloutDraft }

// Post is a contribution to a callout.
type Post struct {
	ID            string               `json:"id"`
	NameID        string               `json:"nameID"`
	Profile       Profile              `json:"profile"`
	Authorization authorization.Policy `json:"-"`
}

// Whiteboard is either a callout framing or a contribution.
type Whiteboard struct {
	ID            string               `json:"id"`
	NameID        string               `json:"nameID"`
	Profile       Profile              `json:"profile"`
	Authorization authorization.Policy `json:"-"`
}

// Memo is either a callout framing or a contribution.
type Memo struct {
	ID            string               `json:"id"`
	NameID        string               `json:"nameID"`
	Profile       Profile              `json:"profile"`
	Authorization authorization.Policy `json:"-"`
}

// CalloutParent is the resolved ancestor chain of a content item.
type CalloutParent struct {
	Callout Callout
	Space   Space
}

// Subspace is a nested space with its parent. Parent is nil when the relation is missing.
type Subspace struct {
	Space  Space
	Parent *Space
}

// ContentKind is a callout content item that can be a framing or a contribution.
type ContentKind string

// Content kinds.
const (
	ContentPost       ContentKind = "post"
	ContentWhiteboard ContentKind = "whiteboard"
	ContentMemo       ContentKind = "memo"
)
