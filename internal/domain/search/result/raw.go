package result

// Unresolvable marks an id the search engine did not return.
const Unresolvable = "N/A"

// Raw is an engine hit normalized into a typed stub. It never leaves the pipeline.
type Raw struct {
	id       string
	score    float64
	typ      Type
	terms    []string
	entityID string
}

// NewRaw creates a raw result. Empty ids are replaced with Unresolvable.
func NewRaw(id string, score float64, typ Type, entityID string) Raw {
	if id == "" {
		id = Unresolvable
	}
	if entityID == "" {
		entityID = Unresolvable
	}
	return Raw{id: id, score: score, typ: typ, entityID: entityID}
}

// ID returns the search-engine document id.
func (r Raw) ID() string { return r.id }

// Score returns the engine relevance score.
func (r Raw) Score() float64 { return r.score }

// Type returns the result type.
func (r Raw) Type() Type { return r.typ }

// Terms returns the matched terms. Always empty: match tracking is not implemented.
func (r Raw) Terms() []string { return r.terms }

// EntityID returns the relational id of the referenced entity.
func (r Raw) EntityID() string { return r.entityID }

// IsResolvable reports whether the hit carries a usable entity id.
func (r Raw) IsResolvable() bool { return r.entityID != Unresolvable }
