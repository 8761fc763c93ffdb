package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a non-critical component is failing; answers may fall back.
	Degraded Status = "degraded"
	// Unhealthy indicates a critical component is failing.
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

// DefaultTimeout bounds each component check.
const DefaultTimeout = 2 * time.Second

// Component is one named dependency.
type Component struct {
	Name     string
	Checker  Checker
	Critical bool
}

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	components []Component
	timeout    time.Duration
}

// New creates a Service. Components with a nil Checker are skipped.
func New(timeout time.Duration, components ...Component) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	active := make([]Component, 0, len(components))
	for _, c := range components {
		if c.Checker != nil {
			active = append(active, c)
		}
	}
	return &Service{components: active, timeout: timeout}
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu      sync.Mutex
		checks  = make(map[string]CheckResult, len(s.components))
		status  = Healthy
		g, gctx = errgroup.WithContext(ctx)
	)

	for _, c := range s.components {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := c.Checker.HealthCheck(cctx); err != nil {
				res = CheckError
			}

			mu.Lock()
			defer mu.Unlock()
			checks[c.Name] = res
			switch {
			case res == CheckOK:
			case c.Critical:
				status = Unhealthy
			case status == Healthy:
				status = Degraded
			}
			return nil
		})
	}
	_ = g.Wait()

	return Report{Status: status, Checks: checks}
}
