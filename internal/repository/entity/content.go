package entity

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/relational"
)

// contentTables maps each content kind to its table and its join column.
var contentTables = map[entity.ContentKind]struct {
	table  string
	column string
}{
	entity.ContentPost:       {"post", "post_id"},
	entity.ContentWhiteboard: {"whiteboard", "whiteboard_id"},
	entity.ContentMemo:       {"memo", "memo_id"},
}

// content is the shape shared by posts, whiteboards and memos.
type content struct {
	id      string
	nameID  string
	profile entity.Profile
	policy  string
}

func (r *Repo) contentByIDs(ctx context.Context, kind entity.ContentKind, ids []string) ([]content, error) {
	t, ok := contentTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT x.id, x.name_id, x.display_name, x.tagline, x.description, x.auth_policy
		FROM `+t.table+` x WHERE x.id IN (`+relational.Placeholders(len(ids))+`)`,
		relational.Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", t.table, err)
	}
	defer rows.Close()

	var out []content
	for rows.Next() {
		var c content
		if err := rows.Scan(&c.id, &c.nameID,
			&c.profile.DisplayName, &c.profile.Tagline, &c.profile.Description, &c.policy); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.table, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.table, err)
	}
	return out, nil
}

// PostsByIDs loads posts with their authorization policy.
func (r *Repo) PostsByIDs(ctx context.Context, ids []string) ([]entity.Post, error) {
	rows, err := r.contentByIDs(ctx, entity.ContentPost, ids)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Post, len(rows))
	for i, c := range rows {
		out[i] = entity.Post{
			ID: c.id, NameID: c.nameID, Profile: c.profile,
			Authorization: decodePolicy(ctx, c.id, c.policy),
		}
	}
	return out, nil
}

// WhiteboardsByIDs loads whiteboards with their authorization policy.
func (r *Repo) WhiteboardsByIDs(ctx context.Context, ids []string) ([]entity.Whiteboard, error) {
	rows, err := r.contentByIDs(ctx, entity.ContentWhiteboard, ids)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Whiteboard, len(rows))
	for i, c := range rows {
		out[i] = entity.Whiteboard{
			ID: c.id, NameID: c.nameID, Profile: c.profile,
			Authorization: decodePolicy(ctx, c.id, c.policy),
		}
	}
	return out, nil
}

// MemosByIDs loads memos with their authorization policy.
func (r *Repo) MemosByIDs(ctx context.Context, ids []string) ([]entity.Memo, error) {
	rows, err := r.contentByIDs(ctx, entity.ContentMemo, ids)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Memo, len(rows))
	for i, c := range rows {
		out[i] = entity.Memo{
			ID: c.id, NameID: c.nameID, Profile: c.profile,
			Authorization: decodePolicy(ctx, c.id, c.policy),
		}
	}
	return out, nil
}

const calloutColumns = `co.id, co.name_id, co.visibility, cs.type,
	co.display_name, co.tagline, co.description, co.auth_policy`

// calloutChain joins a callout up to the space owning its collaboration.
// The space side is outer-joined so a broken chain is visible to the caller.
const calloutChain = `JOIN callouts_set cs ON cs.id = co.callouts_set_id
	LEFT JOIN collaboration col ON col.callouts_set_id = cs.id
	LEFT JOIN space p ON p.collaboration_id = col.id`

// FramingParents resolves the callout and space of content used as a callout
// framing, keyed by content id. Posts are never framings.
func (r *Repo) FramingParents(
	ctx context.Context, kind entity.ContentKind, ids []string,
) (map[string]entity.CalloutParent, error) {
	if kind == entity.ContentPost {
		return nil, nil
	}
	return r.parents(ctx, "callout_framing", kind, ids)
}

// ContributionParents resolves the callout and space of content contributed
// to a callout, keyed by content id.
func (r *Repo) ContributionParents(
	ctx context.Context, kind entity.ContentKind, ids []string,
) (map[string]entity.CalloutParent, error) {
	return r.parents(ctx, "callout_contribution", kind, ids)
}

func (r *Repo) parents(
	ctx context.Context, joinTable string, kind entity.ContentKind, ids []string,
) (map[string]entity.CalloutParent, error) {
	t, ok := contentTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT x.`+t.column+`, `+calloutColumns+`, `+nullableSpaceColumns+`
		FROM `+joinTable+` x
		JOIN callout co ON co.id = x.callout_id
		`+calloutChain+`
		WHERE x.`+t.column+` IN (`+relational.Placeholders(len(ids))+`)`,
		relational.Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load %s parents of %s: %w", joinTable, t.table, err)
	}
	defer rows.Close()

	out := make(map[string]entity.CalloutParent, len(ids))
	for rows.Next() {
		var (
			contentID string
			cs        calloutScan
			sc        spaceScan
		)
		dest := append([]any{&contentID}, cs.dest()...)
		if err := rows.Scan(append(dest, sc.dest()...)...); err != nil {
			return nil, fmt.Errorf("scan %s parent: %w", t.table, err)
		}
		sp, _ := sc.space(ctx)
		out[contentID] = entity.CalloutParent{Callout: cs.callout(ctx), Space: sp}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s parents: %w", t.table, err)
	}
	return out, nil
}

// CalloutsByIDs loads callouts of collaboration callouts-sets with their
// owning space. Callouts of template and other sets are not returned.
// Space.ID is empty when the chain to the space is broken.
func (r *Repo) CalloutsByIDs(ctx context.Context, ids []string) ([]entity.CalloutParent, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := append(relational.Args(ids), string(entity.CalloutsSetCollaboration))
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+calloutColumns+`, `+nullableSpaceColumns+`
		FROM callout co
		`+calloutChain+`
		WHERE co.id IN (`+relational.Placeholders(len(ids))+`) AND cs.type = ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("load callouts: %w", err)
	}
	defer rows.Close()

	var out []entity.CalloutParent
	for rows.Next() {
		var (
			cs calloutScan
			sc spaceScan
		)
		if err := rows.Scan(append(cs.dest(), sc.dest()...)...); err != nil {
			return nil, fmt.Errorf("scan callout: %w", err)
		}
		sp, _ := sc.space(ctx)
		out = append(out, entity.CalloutParent{Callout: cs.callout(ctx), Space: sp})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate callouts: %w", err)
	}
	return out, nil
}
