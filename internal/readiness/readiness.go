// Package readiness runs the platform validation checks behind
// GET /api/platform/validate and the readiness command.
package readiness

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Status string

const (
	Pass Status = "PASS"
	Warn Status = "WARN"
	Fail Status = "FAIL"
)

func (s Status) rank() int {
	switch s {
	case Fail:
		return 2
	case Warn:
		return 1
	}
	return 0
}

// CheckFunc returns the outcome of one check and a human readable detail.
type CheckFunc func(ctx context.Context) (Status, string)

type Check struct {
	Name string
	Run  CheckFunc
}

type Result struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Detail     string `json:"detail"`
	DurationMS int64  `json:"durationMs"`
}

type Report struct {
	Status    Status    `json:"status"`
	Results   []Result  `json:"results"`
	Passed    int       `json:"passed"`
	Warnings  int       `json:"warnings"`
	Failures  int       `json:"failures"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Runner executes checks sequentially, each under its own timeout.
type Runner struct {
	checks  []Check
	timeout time.Duration
	log     *zap.Logger
}

func NewRunner(log *zap.Logger, checks ...Check) *Runner {
	return &Runner{checks: checks, timeout: 5 * time.Second, log: log}
}

// WithTimeout sets the per-check timeout.
func (r *Runner) WithTimeout(d time.Duration) *Runner {
	r.timeout = d
	return r
}

func (r *Runner) Run(ctx context.Context) Report {
	rep := Report{Status: Pass, Results: make([]Result, 0, len(r.checks)), CheckedAt: time.Now().UTC()}

	for _, c := range r.checks {
		res := r.runOne(ctx, c)
		rep.Results = append(rep.Results, res)

		switch res.Status {
		case Pass:
			rep.Passed++
		case Warn:
			rep.Warnings++
		default:
			rep.Failures++
		}
		if res.Status.rank() > rep.Status.rank() {
			rep.Status = res.Status
		}
	}

	r.log.Info("Readiness checks finished",
		zap.String("status", string(rep.Status)),
		zap.Int("passed", rep.Passed),
		zap.Int("warnings", rep.Warnings),
		zap.Int("failures", rep.Failures),
	)
	return rep
}

func (r *Runner) runOne(ctx context.Context, c Check) (res Result) {
	start := time.Now()
	res.Name = c.Name
	defer func() {
		if p := recover(); p != nil {
			res.Status = Fail
			res.Detail = fmt.Sprintf("check panicked: %v", p)
		}
		res.DurationMS = time.Since(start).Milliseconds()
		if res.Status != Pass {
			r.log.Warn("Readiness check not passing",
				zap.String("check", c.Name),
				zap.String("status", string(res.Status)),
				zap.String("detail", res.Detail),
			)
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res.Status, res.Detail = c.Run(cctx)
	if res.Status == "" {
		res.Status = Fail
	}
	return res
}
