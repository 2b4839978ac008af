package result

import "testing"

func TestNewRaw_SentinelForMissingIDs(t *testing.T) {
	r := NewRaw("", 1.5, TypePost, "")
	if r.ID() != Unresolvable {
		t.Errorf("id = %q, want %q", r.ID(), Unresolvable)
	}
	if r.EntityID() != Unresolvable {
		t.Errorf("entity id = %q, want %q", r.EntityID(), Unresolvable)
	}
	if r.IsResolvable() {
		t.Error("expected unresolvable")
	}
	if len(r.Terms()) != 0 {
		t.Errorf("terms = %v, want empty", r.Terms())
	}
}

func TestNewRaw_Resolvable(t *testing.T) {
	r := NewRaw("doc:1", 2, TypeSpace, "s1")
	if !r.IsResolvable() {
		t.Error("expected resolvable")
	}
	if r.Type() != TypeSpace || r.Score() != 2 {
		t.Errorf("got %v/%v", r.Type(), r.Score())
	}
}

func TestType_IsValid(t *testing.T) {
	for _, typ := range Types() {
		if !typ.IsValid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	if Type("template").IsValid() {
		t.Error("template should be invalid")
	}
}

func TestOutput_ContentRouting(t *testing.T) {
	tests := []struct {
		name string
		r    Resolved
		want Output
	}{
		{"post", Post{}, OutputContributions},
		{"whiteboard contribution", Whiteboard{IsContribution: true}, OutputContributions},
		{"whiteboard framing", Whiteboard{}, OutputFramings},
		{"memo contribution", Memo{IsContribution: true}, OutputContributions},
		{"memo framing", Memo{}, OutputFramings},
		{"callout", Callout{}, OutputCollaborationTools},
		{"space", Space{}, OutputSpaces},
		{"user", User{}, OutputContributors},
		{"organization", Organization{}, OutputContributors},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.Output(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResponse_Set(t *testing.T) {
	var resp Response
	for _, o := range Outputs() {
		if resp.Set(o) == nil {
			t.Errorf("no set for %q", o)
		}
	}
	if resp.Set(Output("unknown")) != nil {
		t.Error("expected nil for unknown output")
	}
	resp.Set(OutputSpaces).Total = TotalNotComputed
	if resp.Spaces.Total != TotalNotComputed {
		t.Error("Set must return a pointer into the response")
	}
}
