package rotation

import "time"

// Policy holds the retention windows, in days, weeks and months.
// Weekly and monthly windows use fixed 7 and 30 day multiples, not
// calendar weeks or months. A Policy is immutable once built.
type Policy struct {
	Days   int
	Weeks  int
	Months int
}

// Tier is the retention category an archive falls into for one pass.
// It is recomputed from scratch every pass; nothing on disk records it.
type Tier int

const (
	// TierNone marks an archive that is retained this pass.
	TierNone Tier = iota
	TierDaily
	TierWeekly
	TierMonthly
)

func (t Tier) String() string {
	switch t {
	case TierDaily:
		return "daily"
	case TierWeekly:
		return "weekly"
	case TierMonthly:
		return "monthly"
	}
	return "none"
}

// Deletable reports whether an archive classified into t should be
// removed this pass.
func (t Tier) Deletable() bool {
	return t != TierNone
}

// Classify decides which tier an archive created at createdAt belongs to
// when evaluated at now. The checks run in a fixed order; the first match
// wins:
//
//  1. older than Days, not a Sunday, not the 1st of a month -> daily
//  2. a Sunday older than Weeks*7 days                      -> weekly
//  3. a 1st of a month older than Months*30 days            -> monthly
//
// Sunday and first-of-month archives are shielded from daily pruning
// regardless of age; they only fall to their own longer windows.
func (p Policy) Classify(createdAt, now time.Time) Tier {
	ageDays := int(now.Sub(createdAt).Hours() / 24)
	weekday := createdAt.Weekday()
	day := createdAt.Day()

	switch {
	case ageDays > p.Days && weekday != time.Sunday && day != 1:
		return TierDaily
	case weekday == time.Sunday && ageDays > p.Weeks*7:
		return TierWeekly
	case day == 1 && ageDays > p.Months*30:
		return TierMonthly
	}
	return TierNone
}
