// Package entity loads the live relational entities search hits point at.
// Every loader takes an id set and runs one query for it.
package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/collabsearch/internal/domain"
	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/relational"
)

// store is the consumer interface for relational reads (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo implements the resolver's entity loaders.
type Repo struct {
	db store
}

// New creates an entity repository.
func New(db store) *Repo {
	return &Repo{db: db}
}

const spaceColumns = `s.id, s.name_id, s.level, s.visibility, s.parent_space_id,
	s.display_name, s.tagline, s.description, s.auth_policy`

const nullableSpaceColumns = `p.id, p.name_id, p.level, p.visibility, p.parent_space_id,
	p.display_name, p.tagline, p.description, p.auth_policy`

// SpaceByID loads one space. Returns domain.ErrNotFound if absent.
func (r *Repo) SpaceByID(ctx context.Context, id string) (entity.Space, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+spaceColumns+` FROM space s WHERE s.id = ?`, id)

	var sc spaceScan
	if err := row.Scan(sc.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Space{}, domain.ErrNotFound
		}
		return entity.Space{}, fmt.Errorf("load space %s: %w", id, err)
	}
	sp, _ := sc.space(ctx)
	return sp, nil
}

// SpacesByIDs loads spaces by id. Unknown ids are skipped.
func (r *Repo) SpacesByIDs(ctx context.Context, ids []string) ([]entity.Space, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+spaceColumns+` FROM space s WHERE s.id IN (`+relational.Placeholders(len(ids))+`)`,
		relational.Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load spaces: %w", err)
	}
	defer rows.Close()

	var out []entity.Space
	for rows.Next() {
		var sc spaceScan
		if err := rows.Scan(sc.dest()...); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		sp, _ := sc.space(ctx)
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}
	return out, nil
}

// SubspacesByIDs loads subspaces with their parent space. Parent is nil when
// the parent relation does not resolve.
func (r *Repo) SubspacesByIDs(ctx context.Context, ids []string) ([]entity.Subspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+spaceColumns+`, `+nullableSpaceColumns+`
		FROM space s
		LEFT JOIN space p ON p.id = s.parent_space_id
		WHERE s.id IN (`+relational.Placeholders(len(ids))+`)`,
		relational.Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load subspaces: %w", err)
	}
	defer rows.Close()

	var out []entity.Subspace
	for rows.Next() {
		var sc, pc spaceScan
		if err := rows.Scan(append(sc.dest(), pc.dest()...)...); err != nil {
			return nil, fmt.Errorf("scan subspace: %w", err)
		}
		sub := entity.Subspace{}
		sub.Space, _ = sc.space(ctx)
		if parent, ok := pc.space(ctx); ok {
			sub.Parent = &parent
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subspaces: %w", err)
	}
	return out, nil
}

// UsersByIDs loads users by id.
func (r *Repo) UsersByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryUsers(ctx,
		`SELECT u.id, u.name_id, u.email, u.display_name, u.tagline, u.description
		FROM users u WHERE u.id IN (`+relational.Placeholders(len(ids))+`)`,
		relational.Args(ids)...)
}

// UsersWithCredentials loads users holding any of types on resourceID.
func (r *Repo) UsersWithCredentials(
	ctx context.Context, resourceID string, types ...authorization.CredentialType,
) ([]entity.User, error) {
	if len(types) == 0 {
		return nil, nil
	}
	args := append([]any{resourceID}, credentialArgs(types)...)
	return r.queryUsers(ctx,
		`SELECT DISTINCT u.id, u.name_id, u.email, u.display_name, u.tagline, u.description
		FROM users u
		JOIN credential c ON c.actor_id = u.id
		WHERE c.resource_id = ? AND c.type IN (`+relational.Placeholders(len(types))+`)`,
		args...)
}

func (r *Repo) queryUsers(ctx context.Context, query string, args ...any) ([]entity.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.NameID, &u.Email,
			&u.Profile.DisplayName, &u.Profile.Tagline, &u.Profile.Description); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// OrganizationsByIDs loads organizations by id.
func (r *Repo) OrganizationsByIDs(ctx context.Context, ids []string) ([]entity.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryOrganizations(ctx,
		`SELECT o.id, o.name_id, o.display_name, o.tagline, o.description, o.auth_policy
		FROM organization o WHERE o.id IN (`+relational.Placeholders(len(ids))+`)`,
		relational.Args(ids)...)
}

// OrganizationsWithCredentials loads organizations holding any of types on resourceID.
func (r *Repo) OrganizationsWithCredentials(
	ctx context.Context, resourceID string, types ...authorization.CredentialType,
) ([]entity.Organization, error) {
	if len(types) == 0 {
		return nil, nil
	}
	args := append([]any{resourceID}, credentialArgs(types)...)
	return r.queryOrganizations(ctx,
		`SELECT DISTINCT o.id, o.name_id, o.display_name, o.tagline, o.description, o.auth_policy
		FROM organization o
		JOIN credential c ON c.actor_id = o.id
		WHERE c.resource_id = ? AND c.type IN (`+relational.Placeholders(len(types))+`)`,
		args...)
}

func (r *Repo) queryOrganizations(ctx context.Context, query string, args ...any) ([]entity.Organization, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	defer rows.Close()

	var out []entity.Organization
	for rows.Next() {
		var (
			o      entity.Organization
			policy string
		)
		if err := rows.Scan(&o.ID, &o.NameID,
			&o.Profile.DisplayName, &o.Profile.Tagline, &o.Profile.Description, &policy); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		o.Authorization = decodePolicy(ctx, o.ID, policy)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return out, nil
}

// Credentials returns the credentials held by an actor.
func (r *Repo) Credentials(ctx context.Context, actorID string) ([]authorization.Credential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.type, c.resource_id FROM credential c WHERE c.actor_id = ?`, actorID)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	defer rows.Close()

	var out []authorization.Credential
	for rows.Next() {
		var (
			c   authorization.Credential
			typ string
		)
		if err := rows.Scan(&typ, &c.ResourceID); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		c.Type = authorization.CredentialType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

func credentialArgs(types []authorization.CredentialType) []any {
	out := make([]any, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
