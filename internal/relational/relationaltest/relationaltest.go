// Package relationaltest seeds in-memory SQLite databases for tests.
package relationaltest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/relational"
)

// Open returns a migrated in-memory database closed with the test.
func Open(t *testing.T) *relational.DB {
	t.Helper()
	ctx := context.Background()

	d, err := relational.Open(ctx, relational.Config{Driver: relational.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := d.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

// Seeder inserts fixture rows.
type Seeder struct {
	t  *testing.T
	db *relational.DB
}

// NewSeeder creates a seeder over d.
func NewSeeder(t *testing.T, d *relational.DB) *Seeder {
	return &Seeder{t: t, db: d}
}

func (s *Seeder) exec(query string, args ...any) {
	s.t.Helper()
	if _, err := s.db.ExecContext(context.Background(), query, args...); err != nil {
		s.t.Fatalf("seed: %v\n%s", err, query)
	}
}

// ReadableBy is a policy granting READ to holders of credential type t on any resource.
func ReadableBy(t authorization.CredentialType) authorization.Policy {
	return authorization.Policy{Rules: []authorization.Rule{{
		CredentialType: t,
		Privileges:     []authorization.Privilege{authorization.PrivilegeRead},
	}}}
}

// Public grants READ to anonymous and registered callers.
func Public() authorization.Policy {
	return authorization.Policy{Rules: []authorization.Rule{
		{CredentialType: authorization.CredentialGlobalAnonymous, Privileges: []authorization.Privilege{authorization.PrivilegeRead}},
		{CredentialType: authorization.CredentialGlobalRegistered, Privileges: []authorization.Privilege{authorization.PrivilegeRead}},
	}}
}

func (s *Seeder) policy(p authorization.Policy) string {
	s.t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		s.t.Fatalf("marshal policy: %v", err)
	}
	return string(data)
}

// Space inserts a space owning a fresh collaboration and returns the
// collaboration's callouts-set id. parentID is empty for level-0 spaces.
func (s *Seeder) Space(id, name string, level entity.SpaceLevel, parentID string, p authorization.Policy) string {
	s.t.Helper()
	setID := uuid.NewString()
	collabID := uuid.NewString()
	s.exec(`INSERT INTO callouts_set (id, type) VALUES (?, ?)`, setID, string(entity.CalloutsSetCollaboration))
	s.exec(`INSERT INTO collaboration (id, callouts_set_id) VALUES (?, ?)`, collabID, setID)

	var parent any
	if parentID != "" {
		parent = parentID
	}
	s.exec(`INSERT INTO space (id, name_id, level, visibility, parent_space_id, collaboration_id, display_name, auth_policy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, int(level), string(entity.SpaceActive), parent, collabID, name, s.policy(p))
	return setID
}

// CalloutsSet inserts a detached callouts-set of type t.
func (s *Seeder) CalloutsSet(t entity.CalloutsSetType) string {
	s.t.Helper()
	id := uuid.NewString()
	s.exec(`INSERT INTO callouts_set (id, type) VALUES (?, ?)`, id, string(t))
	return id
}

// Callout inserts a callout into a callouts-set.
func (s *Seeder) Callout(id, setID string, v entity.CalloutVisibility, p authorization.Policy) {
	s.t.Helper()
	s.exec(`INSERT INTO callout (id, name_id, callouts_set_id, visibility, display_name, auth_policy)
		VALUES (?, ?, ?, ?, ?, ?)`, id, id, setID, string(v), id, s.policy(p))
}

// Content inserts a post, whiteboard or memo.
func (s *Seeder) Content(kind entity.ContentKind, id string, p authorization.Policy) {
	s.t.Helper()
	s.exec(`INSERT INTO `+string(kind)+` (id, name_id, display_name, auth_policy) VALUES (?, ?, ?, ?)`,
		id, id, id, s.policy(p))
}

// Contribution links content to a callout as a contribution.
func (s *Seeder) Contribution(calloutID string, kind entity.ContentKind, contentID string) {
	s.t.Helper()
	s.exec(`INSERT INTO callout_contribution (id, callout_id, `+string(kind)+`_id) VALUES (?, ?, ?)`,
		uuid.NewString(), calloutID, contentID)
}

// Framing links a whiteboard or memo to a callout as its framing.
func (s *Seeder) Framing(calloutID string, kind entity.ContentKind, contentID string) {
	s.t.Helper()
	s.exec(`INSERT INTO callout_framing (id, callout_id, `+string(kind)+`_id) VALUES (?, ?, ?)`,
		uuid.NewString(), calloutID, contentID)
}

// User inserts a user.
func (s *Seeder) User(id, name, email string) {
	s.t.Helper()
	s.exec(`INSERT INTO users (id, name_id, email, display_name) VALUES (?, ?, ?, ?)`, id, name, email, name)
}

// Organization inserts an organization.
func (s *Seeder) Organization(id, name string, p authorization.Policy) {
	s.t.Helper()
	s.exec(`INSERT INTO organization (id, name_id, display_name, auth_policy) VALUES (?, ?, ?, ?)`,
		id, name, name, s.policy(p))
}

// Credential grants a credential to a user or organization.
func (s *Seeder) Credential(actorID string, t authorization.CredentialType, resourceID string) {
	s.t.Helper()
	s.exec(`INSERT INTO credential (id, actor_id, type, resource_id) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), actorID, string(t), resourceID)
}
