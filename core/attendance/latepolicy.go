package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/settings"
)

// courseStartSkew corrects stored course start times, which lag the zone the
// check-in timestamps are written in by one hour. It is a storage-mismatch
// correction, not a business rule; verify against live data before changing.
const courseStartSkew = time.Hour

// ShouldMarkLate decides whether a present check-in should be reclassified
// late: the check-in is strictly after course start (skew-corrected) plus the
// configured grace period. False when auto-late-marking is disabled or either
// timestamp is missing. The boundary is exclusive: checking in exactly at the
// threshold is still on time.
func ShouldMarkLate(checkIn, courseStart null.Time, conf settings.Settings) bool {
	if !conf.AutoLateMarking || !checkIn.Valid || !courseStart.Valid {
		return false
	}
	threshold := courseStart.Time.Add(courseStartSkew).Add(conf.Latency())
	return checkIn.Time.After(threshold)
}
