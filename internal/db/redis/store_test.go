package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/collabsearch/internal/db"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "collab-data-spaces"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx := db.NewIndex("collab-data-spaces").
		Prefix("collab-data-spaces:").
		OptionalTag("spaceID").
		Text("displayName").
		MustBuild()
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "test:idx",
		Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "test:idx",
		Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		name  string
		reply rueidis.RedisResult
		want  bool
	}{
		{"exists", mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("idx"))), true},
		{"unknown", mock.Result(mock.RedisError("Unknown index name")), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)
			c.EXPECT().Do(gomock.Any(), mock.Match("FT.INFO", "idx")).Return(tc.reply)

			got, err := NewStoreForTest(c).IndexExists(context.Background(), "idx")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildFieldArgs_AllTypes(t *testing.T) {
	tests := []struct {
		field db.IndexField
		want  string
	}{
		{db.IndexField{Name: "n", Type: db.IndexFieldNumeric}, "n NUMERIC"},
		{db.IndexField{Name: "t", Type: db.IndexFieldText}, "t TEXT"},
		{db.IndexField{Name: "t", Type: db.IndexFieldText, TextWeight: 2}, "t TEXT WEIGHT 2"},
		{db.IndexField{Name: "g", Type: db.IndexFieldTag, TagSeparator: "|"}, "g TAG SEPARATOR |"},
		{db.IndexField{Name: "s", Type: db.IndexFieldTag, IndexMissing: true}, "s TAG INDEXMISSING"},
		{db.IndexField{Name: "$.x", Alias: "x", Type: db.IndexFieldTag}, "$.x AS x TAG"},
	}
	for _, tc := range tests {
		args, err := buildFieldArgs(&tc.field)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(args, " "); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestBuildCreateArgs_Validation(t *testing.T) {
	if _, err := buildCreateArgs(&db.IndexDefinition{}); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := buildCreateArgs(&db.IndexDefinition{Name: "idx"}); err == nil {
		t.Error("expected error for no fields")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "x", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown field type")
	}
}

// --- search.go tests ---

func scoredReply(hits ...[3]string) rueidis.RedisResult {
	msgs := []rueidis.RedisMessage{mock.RedisInt64(int64(len(hits)))}
	for _, h := range hits {
		fields := []rueidis.RedisMessage{}
		if h[2] != "" {
			fields = append(fields, mock.RedisString("id"), mock.RedisString(h[2]))
		}
		msgs = append(msgs,
			mock.RedisString(h[0]),
			mock.RedisString(h[1]),
			mock.RedisArray(fields...),
		)
	}
	return mock.Result(mock.RedisArray(msgs...))
}

func TestMultiSearch_SingleRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" && cmd[1] == "spaces" }),
			mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" && cmd[1] == "posts" }),
		).
		Times(1).
		Return([]rueidis.RedisResult{
			scoredReply([3]string{"spaces:1", "9", "s1"}, [3]string{"spaces:2", "7.5", "s2"}),
			scoredReply([3]string{"posts:1", "3", "p1"}),
		})

	s := NewStoreForTest(c)
	items, err := s.MultiSearch(context.Background(), []db.TextQuery{
		{IndexName: "spaces", Terms: []string{"alpha"}, TopK: 10, ReturnFields: []string{"id"}},
		{IndexName: "posts", Terms: []string{"alpha"}, TopK: 10, ReturnFields: []string{"id"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Err != nil || len(items[0].Result.Entries) != 2 {
		t.Fatalf("item 0 = %+v", items[0])
	}
	e := items[0].Result.Entries[1]
	if e.Key != "spaces:2" || e.Score != 7.5 || e.Fields["id"] != "s2" {
		t.Errorf("entry = %+v", e)
	}
	if items[1].Result.Entries[0].Fields["id"] != "p1" {
		t.Errorf("item 1 = %+v", items[1].Result)
	}
}

func TestMultiSearch_IsolatesServerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisError("no such index")),
			scoredReply([3]string{"posts:1", "3", "p1"}),
		})

	s := NewStoreForTest(c)
	items, err := s.MultiSearch(context.Background(), []db.TextQuery{
		{IndexName: "broken", Terms: []string{"alpha"}, TopK: 5},
		{IndexName: "posts", Terms: []string{"alpha"}, TopK: 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Err == nil || !isDBError(items[0].Err) {
		t.Errorf("item 0 err = %v, want db.Error", items[0].Err)
	}
	if items[1].Err != nil || len(items[1].Result.Entries) != 1 {
		t.Errorf("item 1 = %+v", items[1])
	}
}

func TestMultiSearch_TotalTransportFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.ErrorResult(context.DeadlineExceeded),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	_, err := s.MultiSearch(context.Background(), []db.TextQuery{
		{IndexName: "a", Terms: []string{"alpha"}, TopK: 5},
		{IndexName: "b", Terms: []string{"alpha"}, TopK: 5},
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped DeadlineExceeded, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpMultiSearch {
		t.Errorf("expected db.Error with op %q, got %v", db.OpMultiSearch, err)
	}
}

func TestMultiSearch_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	items, err := s.MultiSearch(context.Background(), nil)
	if err != nil || items != nil {
		t.Errorf("got %v, %v", items, err)
	}
}

func TestMultiSearch_InvalidQuery(t *testing.T) {
	s := NewStoreForTest(nil) // rejected before the round trip
	_, err := s.MultiSearch(context.Background(), []db.TextQuery{{IndexName: "a", TopK: 5}})
	if err == nil {
		t.Fatal("expected error for query without terms")
	}
}

func TestParseScoredResult_MissingFields(t *testing.T) {
	raw := []rueidis.RedisMessage{
		mock.RedisInt64(1),
		mock.RedisString("users:1"),
		mock.RedisString("1.25"),
		mock.RedisArray(),
	}
	res, err := parseScoredResult(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 || len(res.Entries[0].Fields) != 0 {
		t.Errorf("entries = %+v", res.Entries)
	}
}

func TestBuildTextSearchArgs(t *testing.T) {
	missing, _ := filter.NewMissing("spaceID")
	match, _ := filter.NewMatch("spaceID", "3f1c2a9e-8d4b")
	expr, _ := filter.NewExpression(nil, []filter.Condition{missing, match}, nil)

	args, err := buildTextSearchArgs(&db.TextQuery{
		IndexName:    "collab-data-posts",
		Terms:        []string{"alpha", "open source"},
		TagField:     "tagsets",
		TagValues:    []string{"default:alpha"},
		Filters:      expr,
		TopK:         8,
		ReturnFields: []string{"id", "type"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantQuery := `(ismissing(@spaceID) | @spaceID:{3f1c2a9e\-8d4b}) ` +
		`((alpha|(open source)) | @tagsets:{default\:alpha})`
	if args[1] != wantQuery {
		t.Errorf("query\n got  %s\n want %s", args[1], wantQuery)
	}

	rest := strings.Join(args[2:], " ")
	wantRest := "RETURN 2 id type WITHSCORES SCORER BM25STD LIMIT 0 8 DIALECT 2"
	if rest != wantRest {
		t.Errorf("args\n got  %s\n want %s", rest, wantRest)
	}
}

func TestBuildTextSearchArgs_Validation(t *testing.T) {
	tests := []db.TextQuery{
		{Terms: []string{"a"}, TopK: 1},
		{IndexName: "i", TopK: 1},
		{IndexName: "i", Terms: []string{"a"}},
	}
	for _, q := range tests {
		if _, err := buildTextSearchArgs(&q); err == nil {
			t.Errorf("expected error for %+v", q)
		}
	}
}

func TestBuildFilter_Empty(t *testing.T) {
	if got := buildFilter(filter.Expression{}); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestBuildFilter_MustAndMustNot(t *testing.T) {
	vis, _ := filter.NewMatch("visibility", "active", "demo")
	typ, _ := filter.NewMatch("type", "template")
	expr, _ := filter.NewExpression([]filter.Condition{vis}, nil, []filter.Condition{typ})

	want := `@visibility:{active|demo} -@type:{template}`
	if got := buildFilter(expr); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEscapeQuery(t *testing.T) {
	input := `hello "world" @user {tag}`
	escaped := escapeQuery(input)
	expected := `hello \"world\" \@user \{tag\}`
	if escaped != expected {
		t.Errorf("expected %q, got %q", expected, escaped)
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
