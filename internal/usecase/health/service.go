package health

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/collabsearch/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	SearchEngine = "search_engine"
	Relational   = "relational"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	components map[string]Pinger
	timeout    time.Duration
}

// New creates a Service. Nil pingers are skipped.
func New(searchEngine, relational Pinger) *Service {
	components := make(map[string]Pinger, 2)
	if searchEngine != nil {
		components[SearchEngine] = searchEngine
	}
	if relational != nil {
		components[Relational] = relational
	}
	return &Service{components: components, timeout: DefaultTimeout}
}

// Check pings every component. Some failing is Degraded, all failing is Unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]CheckResult, len(names))
	failed := 0
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.components[name].Ping(cctx)
		cancel()

		if err != nil {
			logger.FromContext(ctx).Warn("health check failed",
				zap.String("component", name), zap.Error(err))
			checks[name] = CheckError
			failed++
			continue
		}
		checks[name] = CheckOK
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(names):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
