package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
	"github.com/kailas-cloud/collabsearch/internal/domain/entity"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
	"github.com/kailas-cloud/collabsearch/internal/logger"
	"github.com/kailas-cloud/collabsearch/internal/metrics"
)

// Credentials whose holders count as contributors of a scope space.
var (
	userScopeCredentials = []authorization.CredentialType{
		authorization.CredentialSpaceMember,
		authorization.CredentialSpaceAdmin,
	}
	organizationScopeCredentials = []authorization.CredentialType{
		authorization.CredentialSpaceMember,
		authorization.CredentialSpaceAdmin,
		authorization.CredentialSpaceLead,
	}
)

// resolveInput is what one per-type branch works on. Stubs are keyed by entity id.
type resolveInput struct {
	who          actor.Actor
	scopeSpaceID string
	stubs        stubSet
}

type resolveFunc func(ctx context.Context, in resolveInput) ([]result.Resolved, error)

// Resolver turns raw hits into authorized, ancestor-complete results.
type Resolver struct {
	entities Entities
	authz    Authorizer
	branches map[result.Type]resolveFunc
}

// NewResolver creates a Resolver with one branch per result type.
func NewResolver(entities Entities, authz Authorizer) *Resolver {
	r := &Resolver{entities: entities, authz: authz}
	r.branches = map[result.Type]resolveFunc{
		result.TypeSpace:        r.resolveSpaces,
		result.TypeSubspace:     r.resolveSubspaces,
		result.TypeUser:         r.resolveUsers,
		result.TypeOrganization: r.resolveOrganizations,
		result.TypePost:         r.resolvePosts,
		result.TypeWhiteboard:   r.resolveWhiteboards,
		result.TypeMemo:         r.resolveMemos,
		result.TypeCallout:      r.resolveCallouts,
	}
	return r
}

// Resolve runs every per-type branch concurrently and waits for all of them.
// Items that cannot be resolved or are not readable are dropped; only store
// failures abort.
func (r *Resolver) Resolve(
	ctx context.Context, who actor.Actor, scopeSpaceID string, raws []result.Raw,
) ([]result.Resolved, error) {
	grouped := groupByType(ctx, raws)
	types := result.Types()
	outs := make([][]result.Resolved, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		stubs := grouped[t]
		if stubs.len() == 0 {
			continue
		}
		branch, ok := r.branches[t]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation passes through
			}
			res, err := branch(gctx, resolveInput{who: who, scopeSpaceID: scopeSpaceID, stubs: stubs})
			if err != nil {
				return fmt.Errorf("resolve %s: %w", t, err)
			}
			outs[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per branch
	}

	var out []result.Resolved
	for _, o := range outs {
		out = append(out, o...)
	}
	return out, nil
}

// stubSet holds the raw hits of one type by entity id, in hit order.
type stubSet struct {
	byID  map[string]result.Raw
	order []string
}

func (s stubSet) len() int { return len(s.order) }

func (s stubSet) ids() []string { return s.order }

func (s stubSet) get(id string) (result.Raw, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// groupByType buckets hits by type. Unresolvable hits are dropped here. When
// one entity is hit twice the higher score wins.
func groupByType(ctx context.Context, raws []result.Raw) map[result.Type]stubSet {
	out := make(map[result.Type]stubSet)
	for _, raw := range raws {
		if !raw.IsResolvable() {
			logger.FromContext(ctx).Debug("skipping unresolvable hit",
				zap.String("doc", raw.ID()),
				zap.String("type", string(raw.Type())),
			)
			metrics.SearchDroppedResultsTotal.WithLabelValues(string(raw.Type()), metrics.ReasonUnresolvable).Inc()
			continue
		}

		set, ok := out[raw.Type()]
		if !ok {
			set = stubSet{byID: make(map[string]result.Raw)}
		}
		if prev, dup := set.byID[raw.EntityID()]; dup {
			if raw.Score() > prev.Score() {
				set.byID[raw.EntityID()] = raw
			}
		} else {
			set.byID[raw.EntityID()] = raw
			set.order = append(set.order, raw.EntityID())
		}
		out[raw.Type()] = set
	}
	return out
}

// drop records a hit removed during resolution. Data-integrity gaps log at
// error level, access denials at debug.
func drop(ctx context.Context, t result.Type, reason, entityID string, fields ...zap.Field) {
	metrics.SearchDroppedResultsTotal.WithLabelValues(string(t), reason).Inc()

	log := logger.FromContext(ctx)
	fields = append(fields,
		zap.String("type", string(t)),
		zap.String("entity_id", entityID),
		zap.String("reason", reason),
	)
	switch reason {
	case metrics.ReasonDenied, metrics.ReasonDraft, metrics.ReasonOutOfScope:
		log.Debug("search hit dropped", fields...)
	default:
		log.Error("search hit dropped: data integrity", fields...)
	}
}

func (r *Resolver) canRead(who actor.Actor, policy authorization.Policy) bool {
	return r.authz.IsAccessGranted(who, policy, authorization.PrivilegeRead)
}

// --- spaces ---

// resolveSpaces needs no access check: space metadata is public. With a scope
// only the scope space itself is loaded.
func (r *Resolver) resolveSpaces(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	if in.scopeSpaceID != "" {
		return r.resolveScopeSpace(ctx, in)
	}

	spaces, err := r.entities.SpacesByIDs(ctx, in.stubs.ids())
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}

	out := make([]result.Resolved, 0, len(spaces))
	for _, sp := range spaces {
		stub, ok := in.stubs.get(sp.ID)
		if !ok {
			drop(ctx, result.TypeSpace, metrics.ReasonNoStub, sp.ID)
			continue
		}
		out = append(out, result.Space{Stub: stub, Space: sp})
	}
	return out, nil
}

// resolveScopeSpace pairs the scope space with its own hit, or with the first
// space hit when the scope space itself did not match.
func (r *Resolver) resolveScopeSpace(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	sp, err := r.entities.SpaceByID(ctx, in.scopeSpaceID)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}

	stub, ok := in.stubs.get(sp.ID)
	if !ok {
		stub, _ = in.stubs.get(in.stubs.ids()[0])
	}
	return []result.Resolved{result.Space{Stub: stub, Space: sp}}, nil
}

// resolveSubspaces drops subspaces the caller cannot read and those whose
// parent does not resolve.
func (r *Resolver) resolveSubspaces(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	subs, err := r.entities.SubspacesByIDs(ctx, in.stubs.ids())
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}

	out := make([]result.Resolved, 0, len(subs))
	for _, sub := range subs {
		stub, ok := in.stubs.get(sub.Space.ID)
		if !ok {
			drop(ctx, result.TypeSubspace, metrics.ReasonNoStub, sub.Space.ID)
			continue
		}
		if !r.canRead(in.who, sub.Space.Authorization) {
			drop(ctx, result.TypeSubspace, metrics.ReasonDenied, sub.Space.ID)
			continue
		}
		if sub.Parent == nil {
			drop(ctx, result.TypeSubspace, metrics.ReasonOrphaned, sub.Space.ID,
				zap.String("parent_space_id", sub.Space.ParentSpaceID))
			continue
		}
		out = append(out, result.Space{Stub: stub, Space: sub.Space, Parent: sub.Parent})
	}
	return out, nil
}

// --- contributors ---

// resolveUsers narrows hits to contributors of the scope, if any. User
// directory entries need no access check.
func (r *Resolver) resolveUsers(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	ids := in.stubs.ids()
	if in.scopeSpaceID != "" {
		members, err := r.entities.UsersWithCredentials(ctx, in.scopeSpaceID, userScopeCredentials...)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by Resolve
		}
		memberIDs := make([]string, len(members))
		for i, m := range members {
			memberIDs[i] = m.ID
		}
		ids = intersect(ctx, result.TypeUser, ids, memberIDs)
		if len(ids) == 0 {
			return nil, nil
		}
	}

	users, err := r.entities.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}

	out := make([]result.Resolved, 0, len(users))
	for _, u := range users {
		stub, ok := in.stubs.get(u.ID)
		if !ok {
			drop(ctx, result.TypeUser, metrics.ReasonNoStub, u.ID)
			continue
		}
		out = append(out, result.User{Stub: stub, User: u})
	}
	return out, nil
}

// resolveOrganizations narrows hits to contributors of the scope, if any, and
// drops organizations the caller cannot read.
func (r *Resolver) resolveOrganizations(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	ids := in.stubs.ids()
	if in.scopeSpaceID != "" {
		members, err := r.entities.OrganizationsWithCredentials(ctx, in.scopeSpaceID, organizationScopeCredentials...)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by Resolve
		}
		memberIDs := make([]string, len(members))
		for i, m := range members {
			memberIDs[i] = m.ID
		}
		ids = intersect(ctx, result.TypeOrganization, ids, memberIDs)
		if len(ids) == 0 {
			return nil, nil
		}
	}

	orgs, err := r.entities.OrganizationsByIDs(ctx, ids)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}

	out := make([]result.Resolved, 0, len(orgs))
	for _, o := range orgs {
		stub, ok := in.stubs.get(o.ID)
		if !ok {
			drop(ctx, result.TypeOrganization, metrics.ReasonNoStub, o.ID)
			continue
		}
		if !r.canRead(in.who, o.Authorization) {
			drop(ctx, result.TypeOrganization, metrics.ReasonDenied, o.ID)
			continue
		}
		out = append(out, result.Organization{Stub: stub, Organization: o})
	}
	return out, nil
}

// intersect keeps the hit ids found in allowed, preserving hit order.
func intersect(ctx context.Context, t result.Type, hits, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, id := range allowed {
		set[id] = true
	}
	out := make([]string, 0, len(hits))
	for _, id := range hits {
		if !set[id] {
			drop(ctx, t, metrics.ReasonOutOfScope, id)
			continue
		}
		out = append(out, id)
	}
	return out
}

// --- callout content ---

// contentItem is a post, whiteboard or memo reduced to what ancestor
// resolution needs.
type contentItem struct {
	id     string
	policy authorization.Policy
	build  func(stub result.Raw, parent entity.CalloutParent, isContribution bool) result.Resolved
}

func (r *Resolver) resolvePosts(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	posts, err := r.entities.PostsByIDs(ctx, in.stubs.ids())
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}
	items := make([]contentItem, len(posts))
	for i, p := range posts {
		items[i] = contentItem{id: p.ID, policy: p.Authorization,
			build: func(stub result.Raw, parent entity.CalloutParent, _ bool) result.Resolved {
				return result.Post{Stub: stub, Post: p, Callout: parent.Callout, Space: parent.Space}
			}}
	}
	return r.resolveContent(ctx, in, result.TypePost, entity.ContentPost, items)
}

func (r *Resolver) resolveWhiteboards(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	boards, err := r.entities.WhiteboardsByIDs(ctx, in.stubs.ids())
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}
	items := make([]contentItem, len(boards))
	for i, w := range boards {
		items[i] = contentItem{id: w.ID, policy: w.Authorization,
			build: func(stub result.Raw, parent entity.CalloutParent, isContribution bool) result.Resolved {
				return result.Whiteboard{
					Stub: stub, Whiteboard: w, Callout: parent.Callout, Space: parent.Space,
					IsContribution: isContribution,
				}
			}}
	}
	return r.resolveContent(ctx, in, result.TypeWhiteboard, entity.ContentWhiteboard, items)
}

func (r *Resolver) resolveMemos(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	memos, err := r.entities.MemosByIDs(ctx, in.stubs.ids())
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}
	items := make([]contentItem, len(memos))
	for i, m := range memos {
		items[i] = contentItem{id: m.ID, policy: m.Authorization,
			build: func(stub result.Raw, parent entity.CalloutParent, isContribution bool) result.Resolved {
				return result.Memo{
					Stub: stub, Memo: m, Callout: parent.Callout, Space: parent.Space,
					IsContribution: isContribution,
				}
			}}
	}
	return r.resolveContent(ctx, in, result.TypeMemo, entity.ContentMemo, items)
}

// resolveContent filters by READ before resolving ancestors, so the join
// queries only run for visible items. Framings are looked up first; what is
// not a framing is looked up as a contribution.
func (r *Resolver) resolveContent(
	ctx context.Context, in resolveInput, t result.Type, kind entity.ContentKind, items []contentItem,
) ([]result.Resolved, error) {
	visible := make([]contentItem, 0, len(items))
	for _, it := range items {
		if _, ok := in.stubs.get(it.id); !ok {
			drop(ctx, t, metrics.ReasonNoStub, it.id)
			continue
		}
		if !r.canRead(in.who, it.policy) {
			drop(ctx, t, metrics.ReasonDenied, it.id)
			continue
		}
		visible = append(visible, it)
	}
	if len(visible) == 0 {
		return nil, nil
	}

	ids := make([]string, len(visible))
	for i, it := range visible {
		ids[i] = it.id
	}

	framings, err := r.entities.FramingParents(ctx, kind, ids)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}

	rest := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := framings[id]; !ok {
			rest = append(rest, id)
		}
	}

	var contributions map[string]entity.CalloutParent
	if len(rest) > 0 {
		contributions, err = r.entities.ContributionParents(ctx, kind, rest)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by Resolve
		}
	}

	out := make([]result.Resolved, 0, len(visible))
	for _, it := range visible {
		parent, isFraming := framings[it.id]
		isContribution := false
		if !isFraming {
			var ok bool
			parent, ok = contributions[it.id]
			if !ok {
				drop(ctx, t, metrics.ReasonOrphaned, it.id, zap.String("missing", "callout"))
				continue
			}
			isContribution = true
		}
		if reason, ok := checkCalloutParent(parent); !ok {
			drop(ctx, t, reason, it.id, zap.String("callout_id", parent.Callout.ID))
			continue
		}

		stub, _ := in.stubs.get(it.id)
		out = append(out, it.build(stub, parent, isContribution))
	}
	return out, nil
}

// checkCalloutParent rejects drafts, callouts outside a collaboration and
// chains that stop before a space.
func checkCalloutParent(p entity.CalloutParent) (string, bool) {
	if p.Callout.CalloutsSetType != entity.CalloutsSetCollaboration {
		return metrics.ReasonOrphaned, false
	}
	if p.Space.ID == "" {
		return metrics.ReasonOrphaned, false
	}
	if p.Callout.IsDraft() {
		return metrics.ReasonDraft, false
	}
	return "", true
}

// --- callouts ---

func (r *Resolver) resolveCallouts(ctx context.Context, in resolveInput) ([]result.Resolved, error) {
	callouts, err := r.entities.CalloutsByIDs(ctx, in.stubs.ids())
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Resolve
	}

	out := make([]result.Resolved, 0, len(callouts))
	for _, c := range callouts {
		stub, ok := in.stubs.get(c.Callout.ID)
		if !ok {
			drop(ctx, result.TypeCallout, metrics.ReasonNoStub, c.Callout.ID)
			continue
		}
		if !r.canRead(in.who, c.Callout.Authorization) {
			drop(ctx, result.TypeCallout, metrics.ReasonDenied, c.Callout.ID)
			continue
		}
		if reason, ok := checkCalloutParent(c); !ok {
			drop(ctx, result.TypeCallout, reason, c.Callout.ID)
			continue
		}
		out = append(out, result.Callout{Stub: stub, Callout: c.Callout, Space: c.Space})
	}
	return out, nil
}
