package relational

import (
	"context"
	"fmt"
)

// schema is the relational layout the entity repository reads from.
// Authorization policies are stored as JSON documents.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS callouts_set (
		id   TEXT PRIMARY KEY,
		type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS collaboration (
		id              TEXT PRIMARY KEY,
		callouts_set_id TEXT NOT NULL REFERENCES callouts_set(id)
	)`,
	`CREATE TABLE IF NOT EXISTS space (
		id               TEXT PRIMARY KEY,
		name_id          TEXT NOT NULL,
		level            INTEGER NOT NULL DEFAULT 0,
		visibility       TEXT NOT NULL DEFAULT 'active',
		parent_space_id  TEXT,
		collaboration_id TEXT REFERENCES collaboration(id),
		display_name     TEXT NOT NULL DEFAULT '',
		tagline          TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		auth_policy      TEXT NOT NULL DEFAULT '{"rules":[]}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_space_collaboration ON space(collaboration_id)`,
	`CREATE TABLE IF NOT EXISTS callout (
		id              TEXT PRIMARY KEY,
		name_id         TEXT NOT NULL,
		callouts_set_id TEXT NOT NULL REFERENCES callouts_set(id),
		visibility      TEXT NOT NULL DEFAULT 'published',
		display_name    TEXT NOT NULL DEFAULT '',
		tagline         TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		auth_policy     TEXT NOT NULL DEFAULT '{"rules":[]}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_callout_set ON callout(callouts_set_id)`,
	`CREATE TABLE IF NOT EXISTS post (
		id           TEXT PRIMARY KEY,
		name_id      TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		tagline      TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		auth_policy  TEXT NOT NULL DEFAULT '{"rules":[]}'
	)`,
	`CREATE TABLE IF NOT EXISTS whiteboard (
		id           TEXT PRIMARY KEY,
		name_id      TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		tagline      TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		auth_policy  TEXT NOT NULL DEFAULT '{"rules":[]}'
	)`,
	`CREATE TABLE IF NOT EXISTS memo (
		id           TEXT PRIMARY KEY,
		name_id      TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		tagline      TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		auth_policy  TEXT NOT NULL DEFAULT '{"rules":[]}'
	)`,
	`CREATE TABLE IF NOT EXISTS callout_framing (
		id            TEXT PRIMARY KEY,
		callout_id    TEXT NOT NULL REFERENCES callout(id),
		whiteboard_id TEXT REFERENCES whiteboard(id),
		memo_id       TEXT REFERENCES memo(id)
	)`,
	`CREATE TABLE IF NOT EXISTS callout_contribution (
		id            TEXT PRIMARY KEY,
		callout_id    TEXT NOT NULL REFERENCES callout(id),
		post_id       TEXT REFERENCES post(id),
		whiteboard_id TEXT REFERENCES whiteboard(id),
		memo_id       TEXT REFERENCES memo(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_framing_callout ON callout_framing(callout_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contribution_callout ON callout_contribution(callout_id)`,
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		name_id      TEXT NOT NULL,
		email        TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		tagline      TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS organization (
		id           TEXT PRIMARY KEY,
		name_id      TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		tagline      TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		auth_policy  TEXT NOT NULL DEFAULT '{"rules":[]}'
	)`,
	`CREATE TABLE IF NOT EXISTS credential (
		id          TEXT PRIMARY KEY,
		actor_id    TEXT NOT NULL,
		type        TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credential_resource ON credential(resource_id, type)`,
	`CREATE INDEX IF NOT EXISTS idx_credential_actor ON credential(actor_id)`,
}

// Migrate creates the schema. It is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
