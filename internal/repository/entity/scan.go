package entity

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/logger"
)

// spaceScan receives space columns. Every column is nullable so the same
// struct serves the outer side of a LEFT JOIN.
type spaceScan struct {
	id, nameID, visibility, parentID  sql.NullString
	displayName, tagline, description sql.NullString
	policy                            sql.NullString
	level                             sql.NullInt64
}

func (s *spaceScan) dest() []any {
	return []any{
		&s.id, &s.nameID, &s.level, &s.visibility, &s.parentID,
		&s.displayName, &s.tagline, &s.description, &s.policy,
	}
}

// space converts the scanned row. ok is false when the join produced no row.
func (s *spaceScan) space(ctx context.Context) (entity.Space, bool) {
	if !s.id.Valid {
		return entity.Space{}, false
	}
	return entity.Space{
		ID:            s.id.String,
		NameID:        s.nameID.String,
		Level:         entity.SpaceLevel(s.level.Int64),
		Visibility:    entity.SpaceVisibility(s.visibility.String),
		ParentSpaceID: s.parentID.String,
		Profile: entity.Profile{
			DisplayName: s.displayName.String,
			Tagline:     s.tagline.String,
			Description: s.description.String,
		},
		Authorization: decodePolicy(ctx, s.id.String, s.policy.String),
	}, true
}

// calloutScan receives callout columns joined with the callouts-set type.
type calloutScan struct {
	id, nameID, visibility, setType   sql.NullString
	displayName, tagline, description sql.NullString
	policy                            sql.NullString
}

func (c *calloutScan) dest() []any {
	return []any{
		&c.id, &c.nameID, &c.visibility, &c.setType,
		&c.displayName, &c.tagline, &c.description, &c.policy,
	}
}

func (c *calloutScan) callout(ctx context.Context) entity.Callout {
	return entity.Callout{
		ID:              c.id.String,
		NameID:          c.nameID.String,
		Visibility:      entity.CalloutVisibility(c.visibility.String),
		CalloutsSetType: entity.CalloutsSetType(c.setType.String),
		Profile: entity.Profile{
			DisplayName: c.displayName.String,
			Tagline:     c.tagline.String,
			Description: c.description.String,
		},
		Authorization: decodePolicy(ctx, c.id.String, c.policy.String),
	}
}

// decodePolicy parses a stored policy. A malformed policy grants nothing.
func decodePolicy(ctx context.Context, ownerID, raw string) authorization.Policy {
	if raw == "" {
		return authorization.Policy{}
	}
	var p authorization.Policy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.FromContext(ctx).Warn("malformed authorization policy",
			zap.String("entity_id", ownerID),
			zap.Error(err),
		)
		return authorization.Policy{}
	}
	return p
}
