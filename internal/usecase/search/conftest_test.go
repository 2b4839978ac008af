package search

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/collabsearch/internal/authz"
	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
)

const scopeID = "0b7c6a0e-95d4-4c2e-a3e4-1f8b7f0e2a11"

// --- Mocks ---

type mockExtractor struct {
	raws       []result.Raw
	err        error
	calls      int
	publicOnly bool
	req        request.Request
}

func (m *mockExtractor) Search(_ context.Context, req request.Request, publicOnly bool) ([]result.Raw, error) {
	m.calls++
	m.req = req
	m.publicOnly = publicOnly
	return m.raws, m.err
}

// mockEntities serves fixtures by id. It is safe for the concurrent branches.
type mockEntities struct {
	mu sync.Mutex

	spaces    map[string]entity.Space
	subspaces map[string]entity.Subspace
	users     map[string]entity.User
	orgs      map[string]entity.Organization
	// userCreds / orgCreds: scope id -> holder ids
	userCreds map[string][]string
	orgCreds  map[string][]string

	posts       map[string]entity.Post
	whiteboards map[string]entity.Whiteboard
	memos       map[string]entity.Memo
	framings    map[string]entity.CalloutParent
	contribs    map[string]entity.CalloutParent
	callouts    map[string]entity.CalloutParent

	err error

	parentLookups []string
}

func newMockEntities() *mockEntities {
	return &mockEntities{
		spaces:      map[string]entity.Space{},
		subspaces:   map[string]entity.Subspace{},
		users:       map[string]entity.User{},
		orgs:        map[string]entity.Organization{},
		userCreds:   map[string][]string{},
		orgCreds:    map[string][]string{},
		posts:       map[string]entity.Post{},
		whiteboards: map[string]entity.Whiteboard{},
		memos:       map[string]entity.Memo{},
		framings:    map[string]entity.CalloutParent{},
		contribs:    map[string]entity.CalloutParent{},
		callouts:    map[string]entity.CalloutParent{},
	}
}

func pick[T any](m map[string]T, ids []string) []T {
	var out []T
	for _, id := range ids {
		if v, ok := m[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (m *mockEntities) SpaceByID(_ context.Context, id string) (entity.Space, error) {
	if m.err != nil {
		return entity.Space{}, m.err
	}
	sp, ok := m.spaces[id]
	if !ok {
		return entity.Space{}, domain.ErrNotFound
	}
	return sp, nil
}

func (m *mockEntities) SpacesByIDs(_ context.Context, ids []string) ([]entity.Space, error) {
	return pick(m.spaces, ids), m.err
}

func (m *mockEntities) SubspacesByIDs(_ context.Context, ids []string) ([]entity.Subspace, error) {
	return pick(m.subspaces, ids), m.err
}

func (m *mockEntities) UsersByIDs(_ context.Context, ids []string) ([]entity.User, error) {
	return pick(m.users, ids), m.err
}

func (m *mockEntities) OrganizationsByIDs(_ context.Context, ids []string) ([]entity.Organization, error) {
	return pick(m.orgs, ids), m.err
}

func (m *mockEntities) UsersWithCredentials(
	_ context.Context, resourceID string, _ ...authorization.CredentialType,
) ([]entity.User, error) {
	return pick(m.users, m.userCreds[resourceID]), m.err
}

func (m *mockEntities) OrganizationsWithCredentials(
	_ context.Context, resourceID string, _ ...authorization.CredentialType,
) ([]entity.Organization, error) {
	return pick(m.orgs, m.orgCreds[resourceID]), m.err
}

func (m *mockEntities) PostsByIDs(_ context.Context, ids []string) ([]entity.Post, error) {
	return pick(m.posts, ids), m.err
}

func (m *mockEntities) WhiteboardsByIDs(_ context.Context, ids []string) ([]entity.Whiteboard, error) {
	return pick(m.whiteboards, ids), m.err
}

func (m *mockEntities) MemosByIDs(_ context.Context, ids []string) ([]entity.Memo, error) {
	return pick(m.memos, ids), m.err
}

func (m *mockEntities) FramingParents(
	_ context.Context, _ entity.ContentKind, ids []string,
) (map[string]entity.CalloutParent, error) {
	return m.parents(m.framings, ids), m.err
}

func (m *mockEntities) ContributionParents(
	_ context.Context, _ entity.ContentKind, ids []string,
) (map[string]entity.CalloutParent, error) {
	return m.parents(m.contribs, ids), m.err
}

func (m *mockEntities) parents(src map[string]entity.CalloutParent, ids []string) map[string]entity.CalloutParent {
	m.mu.Lock()
	m.parentLookups = append(m.parentLookups, ids...)
	m.mu.Unlock()

	out := map[string]entity.CalloutParent{}
	for _, id := range ids {
		if p, ok := src[id]; ok {
			out[id] = p
		}
	}
	return out
}

func (m *mockEntities) CalloutsByIDs(_ context.Context, ids []string) ([]entity.CalloutParent, error) {
	return pick(m.callouts, ids), m.err
}

// --- Fixtures ---

func readPolicy(t authorization.CredentialType) authorization.Policy {
	return authorization.Policy{Rules: []authorization.Rule{{
		CredentialType: t,
		Privileges:     []authorization.Privilege{authorization.PrivilegeRead},
	}}}
}

var (
	publicPolicy     = readPolicy(authorization.CredentialGlobalAnonymous)
	registeredPolicy = readPolicy(authorization.CredentialGlobalRegistered)
	nobodyPolicy     = authorization.Policy{}
)

func member() actor.Actor {
	return actor.New("me", "me@example.org", []authorization.Credential{
		{Type: authorization.CredentialSpaceMember, ResourceID: scopeID},
	})
}

func publishedParent(calloutID string, p authorization.Policy) entity.CalloutParent {
	return entity.CalloutParent{
		Callout: entity.Callout{
			ID:              calloutID,
			Visibility:      entity.CalloutPublished,
			CalloutsSetType: entity.CalloutsSetCollaboration,
			Authorization:   p,
		},
		Space: entity.Space{ID: scopeID, NameID: "scope"},
	}
}

func raw(id string, score float64, t result.Type, entityID string) result.Raw {
	return result.NewRaw(id, score, t, entityID)
}

func newTestService(t *testing.T, ents *mockEntities, ex *mockExtractor) *Service {
	t.Helper()
	return New(ex, ents, authz.New())
}

func resultIDs(set result.CategorySet) []string {
	out := make([]string, len(set.Results))
	for i, r := range set.Results {
		out[i] = r.Raw().EntityID()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
