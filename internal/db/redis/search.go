package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/collabsearch/internal/db"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/filter"
)

// scorer accumulates BM25 over every matched term/field pair.
const scorer = "BM25STD"

// MultiSearch pipelines one FT.SEARCH per query through a single DoMulti round trip.
// Server-side errors (unknown index, syntax) stay on their item. When every
// item failed without a server reply the round trip itself is reported.
func (s *Store) MultiSearch(ctx context.Context, queries []db.TextQuery) ([]db.MultiSearchItem, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(queries))
	for i := range queries {
		args, err := buildTextSearchArgs(&queries[i])
		if err != nil {
			return nil, fmt.Errorf("query %d (%s): %w", i, queries[i].IndexName, err)
		}
		cmds[i] = s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)

	items := make([]db.MultiSearchItem, len(results))
	var transportErr error
	transportFailures := 0
	for i, res := range results {
		raw, err := res.ToArray()
		if err != nil {
			if _, isServerErr := rueidis.IsRedisErr(err); !isServerErr {
				transportFailures++
				if transportErr == nil {
					transportErr = err
				}
			}
			items[i] = db.MultiSearchItem{Err: &db.Error{Op: db.OpSearch, Err: err}}
			continue
		}

		parsed, err := parseScoredResult(raw)
		if err != nil {
			items[i] = db.MultiSearchItem{Err: &db.Error{Op: db.OpSearch, Err: err}}
			continue
		}
		items[i] = db.MultiSearchItem{Result: parsed}
	}

	if transportFailures == len(results) {
		return nil, &db.Error{Op: db.OpMultiSearch, Err: transportErr}
	}
	return items, nil
}

func buildTextSearchArgs(q *db.TextQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if len(q.Terms) == 0 {
		return nil, errors.New("at least one term is required")
	}
	if q.TopK <= 0 {
		return nil, errors.New("topK must be positive")
	}

	args := []string{q.IndexName, buildQueryString(q)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"WITHSCORES",
		"SCORER", scorer,
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	)
	return args, nil
}

// buildQueryString renders "<filter> (<terms> | <tag clause>)".
func buildQueryString(q *db.TextQuery) string {
	match := buildTermUnion(q.Terms)
	if q.TagField != "" && len(q.TagValues) > 0 {
		match = fmt.Sprintf("(%s | %s)", match, buildTagFilter(q.TagField, q.TagValues))
	}

	filterStr := buildFilter(q.Filters)
	if filterStr == "" {
		return match
	}
	return filterStr + " " + match
}

// buildTermUnion ORs every term across all TEXT fields.
// Multi-word terms are grouped so their words intersect.
func buildTermUnion(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		escaped := escapeQuery(t)
		if strings.ContainsAny(escaped, " \t") {
			escaped = "(" + escaped + ")"
		}
		parts = append(parts, escaped)
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			// RETURN 0 or a document without the requested fields
			fields = nil
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates filter.Expression into an FT.SEARCH pre-filter query string.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	var parts []string

	for _, cond := range expr.Must() {
		parts = append(parts, buildCondition(cond))
	}

	if shouldParts := buildShouldGroup(expr.Should()); shouldParts != "" {
		parts = append(parts, shouldParts)
	}

	for _, cond := range expr.MustNot() {
		parts = append(parts, "-"+buildCondition(cond))
	}

	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	if cond.IsMissing() {
		return fmt.Sprintf("ismissing(@%s)", cond.Key())
	}
	if cond.IsMatch() {
		return buildTagFilter(cond.Key(), cond.Values())
	}
	return ""
}

func buildShouldGroup(conditions []filter.Condition) string {
	if len(conditions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(conditions))
	for _, cond := range conditions {
		parts = append(parts, buildCondition(cond))
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, "|"))
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
