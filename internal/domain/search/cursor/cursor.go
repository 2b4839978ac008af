// Package cursor encodes the resumable position of a ranked result page.
//
// One category filter can page several output buckets (responses feeds both
// contributions and framings), so a cursor carries one position per bucket.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed signals a cursor that cannot be decoded.
var ErrMalformed = errors.New("malformed cursor")

// Position is the (score, id) key of the last item on a page. Served counts
// the items the bucket has returned up to and including that page.
type Position struct {
	Score  float64 `json:"s"`
	ID     string  `json:"i"`
	Served int     `json:"n,omitempty"`
}

// Set maps an output bucket name to the last position returned for it.
// A bucket without an entry restarts from the top.
type Set map[string]Position

// Encode serializes the set into an opaque URL-safe string.
func Encode(s Set) string {
	data, _ := json.Marshal(s) //nolint:errchkjson // map of float64 + string always marshals
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a cursor produced by Encode.
func Decode(s string) (Set, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no positions", ErrMalformed)
	}
	for bucket, p := range set {
		if bucket == "" || p.ID == "" {
			return nil, fmt.Errorf("%w: empty bucket or id", ErrMalformed)
		}
		if p.Served < 0 {
			return nil, fmt.Errorf("%w: negative served count", ErrMalformed)
		}
	}
	return set, nil
}

// Served returns the largest served count across the set.
func (s Set) Served() int {
	n := 0
	for _, p := range s {
		n = max(n, p.Served)
	}
	return n
}

// Less orders by score descending, then id descending.
// It reports whether (scoreA, idA) ranks before (scoreB, idB).
func Less(scoreA float64, idA string, scoreB float64, idB string) bool {
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return idA > idB
}

// After reports whether (score, id) ranks strictly after the position.
func (p Position) After(score float64, id string) bool {
	return Less(p.Score, p.ID, score, id)
}
