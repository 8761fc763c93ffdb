package health

import "context"

// Pinger checks database availability (Valkey/Redis store or Postgres pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker checks availability of a model provider or any other dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// PingChecker adapts a Pinger to Checker.
func PingChecker(p Pinger) Checker {
	return CheckerFunc(p.Ping)
}
