package rotation

import (
	"time"

	"go.uber.org/zap"
)

// Report counts the archives deleted per tier during one pass.
type Report struct {
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
}

func (r *Report) add(t Tier) {
	switch t {
	case TierDaily:
		r.Daily++
	case TierWeekly:
		r.Weekly++
	case TierMonthly:
		r.Monthly++
	}
}

// Total returns the number of archives deleted across all tiers.
func (r Report) Total() int {
	return r.Daily + r.Weekly + r.Monthly
}

// Engine runs rotation passes: enumerate, classify, delete, report.
// Exactly one pass may run against a storage root at a time; callers
// hold the run lock.
type Engine struct {
	repo   Repository
	policy Policy
	dryRun bool
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(e *Engine)

// WithLogger sets the logger for the Engine.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDryRun makes the Engine report eligible archives without
// removing anything.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// NewEngine creates a rotation Engine over repo with the given policy.
func NewEngine(repo Repository, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		repo:   repo,
		policy: policy,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rotate evaluates every archive present at scan start exactly once and
// deletes the ones whose retention window has elapsed. Per-file deletion
// failures are logged and skipped; they never abort the pass and never
// count toward the report. Running Rotate twice with the same now and no
// new archives yields an all-zero second report.
func (e *Engine) Rotate(now time.Time) Report {
	var report Report

	records, err := e.repo.List()
	if err != nil {
		e.logger.Sugar().Errorf("Failed to list backups: %v", err)
		return report
	}

	for _, rec := range records {
		tier := e.policy.Classify(rec.CreatedAt, now)
		if !tier.Deletable() {
			continue
		}
		if e.dryRun {
			e.logger.Sugar().Infof("Would delete %s backup: %s", tier, rec.Path)
			report.add(tier)
			continue
		}
		if err := e.repo.Delete(rec.Path); err != nil {
			e.logger.Sugar().Errorf("Failed to delete %s: %v", rec.Path, err)
			continue
		}
		report.add(tier)
	}

	e.logger.Sugar().Infof("Deleted %d old daily backup(s)", report.Daily)
	e.logger.Sugar().Infof("Deleted %d old weekly backup(s)", report.Weekly)
	e.logger.Sugar().Infof("Deleted %d old monthly backup(s)", report.Monthly)

	return report
}
