package search

import (
	"context"

	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
)

// Extractor runs one federated multi-search and returns normalized hits.
type Extractor interface {
	Search(ctx context.Context, req request.Request, publicOnly bool) ([]result.Raw, error)
}

// SpaceReader loads spaces and subspaces by id.
type SpaceReader interface {
	SpaceByID(ctx context.Context, id string) (entity.Space, error)
	SpacesByIDs(ctx context.Context, ids []string) ([]entity.Space, error)
	SubspacesByIDs(ctx context.Context, ids []string) ([]entity.Subspace, error)
}

// ContributorReader loads users and organizations, and looks up who holds
// credentials on a space.
type ContributorReader interface {
	UsersByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	OrganizationsByIDs(ctx context.Context, ids []string) ([]entity.Organization, error)
	UsersWithCredentials(
		ctx context.Context, resourceID string, types ...authorization.CredentialType,
	) ([]entity.User, error)
	OrganizationsWithCredentials(
		ctx context.Context, resourceID string, types ...authorization.CredentialType,
	) ([]entity.Organization, error)
}

// ContentReader loads callouts and callout content with their ancestors.
type ContentReader interface {
	PostsByIDs(ctx context.Context, ids []string) ([]entity.Post, error)
	WhiteboardsByIDs(ctx context.Context, ids []string) ([]entity.Whiteboard, error)
	MemosByIDs(ctx context.Context, ids []string) ([]entity.Memo, error)
	FramingParents(
		ctx context.Context, kind entity.ContentKind, ids []string,
	) (map[string]entity.CalloutParent, error)
	ContributionParents(
		ctx context.Context, kind entity.ContentKind, ids []string,
	) (map[string]entity.CalloutParent, error)
	CalloutsByIDs(ctx context.Context, ids []string) ([]entity.CalloutParent, error)
}

// Entities is every relational read the resolver needs.
type Entities interface {
	SpaceReader
	ContributorReader
	ContentReader
}

// Authorizer decides READ access on an entity's authorization policy.
type Authorizer interface {
	IsAccessGranted(who actor.Actor, policy authorization.Policy, privilege authorization.Privilege) bool
}
