package usecase

import (
	"context"
	"time"
)

// Checker probes one dependency.
type Checker func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks  map[string]Checker
	timeout time.Duration
}

func NewHealthUsecase(checks map[string]Checker) HealthUsecase {
	return &healthUsecase{checks: checks, timeout: 2 * time.Second}
}

// Check reports "ok" or "unavailable" per dependency and whether all passed.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	report := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range u.checks {
		cctx, cancel := context.WithTimeout(ctx, u.timeout)
		err := check(cctx)
		cancel()
		if err != nil {
			report[name] = "unavailable"
			healthy = false
			continue
		}
		report[name] = "ok"
	}
	if !healthy {
		report["status"] = "degraded"
	}
	return report, healthy
}
