package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("conn refused")

	tests := []struct {
		name       string
		engine     Pinger
		relational Pinger
		wantStatus Status
		wantChecks map[string]CheckResult
	}{
		{
			name:       "all healthy",
			engine:     &mockPinger{},
			relational: &mockPinger{},
			wantStatus: Healthy,
			wantChecks: map[string]CheckResult{SearchEngine: CheckOK, Relational: CheckOK},
		},
		{
			name:       "search engine down",
			engine:     &mockPinger{err: down},
			relational: &mockPinger{},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{SearchEngine: CheckError, Relational: CheckOK},
		},
		{
			name:       "relational down",
			engine:     &mockPinger{},
			relational: &mockPinger{err: down},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{SearchEngine: CheckOK, Relational: CheckError},
		},
		{
			name:       "both down",
			engine:     &mockPinger{err: down},
			relational: &mockPinger{err: down},
			wantStatus: Unhealthy,
			wantChecks: map[string]CheckResult{SearchEngine: CheckError, Relational: CheckError},
		},
		{
			name:       "relational not configured",
			engine:     &mockPinger{},
			wantStatus: Healthy,
			wantChecks: map[string]CheckResult{SearchEngine: CheckOK},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(tc.engine, tc.relational).Check(context.Background())

			if r.Status != tc.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tc.wantStatus)
			}
			if len(r.Checks) != len(tc.wantChecks) {
				t.Fatalf("checks = %v, want %v", r.Checks, tc.wantChecks)
			}
			for name, want := range tc.wantChecks {
				if r.Checks[name] != want {
					t.Errorf("%s = %q, want %q", name, r.Checks[name], want)
				}
			}
		})
	}
}

type deadlinePinger struct {
	sawDeadline bool
}

func (d *deadlinePinger) Ping(ctx context.Context) error {
	_, d.sawDeadline = ctx.Deadline()
	return nil
}

func TestCheck_BoundsEachPing(t *testing.T) {
	p := &deadlinePinger{}
	New(p, nil).Check(context.Background())
	if !p.sawDeadline {
		t.Error("ping must run with a deadline")
	}
}
