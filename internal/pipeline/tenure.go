package pipeline

import (
	"math"
	"sort"
	"time"

	"leadscout/internal/domain"
)

const daysPerYear = 365.25

// ExperienceYears computes total professional experience from a set of
// employment intervals, merging overlaps so concurrent roles are not counted
// twice. Intervals without a resolvable start year are skipped; a missing end
// resolves to now. The result is rounded to one decimal place.
func ExperienceYears(exps []domain.Experience, now time.Time) float64 {
	if len(exps) == 0 {
		return 0.0
	}

	sorted := make([]domain.Experience, len(exps))
	copy(sorted, exps)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, mi := startKey(sorted[i])
		yj, mj := startKey(sorted[j])
		if yi != yj {
			return yi < yj
		}
		return mi < mj
	})

	var totalDays float64
	var covered bool
	var coveredStart, coveredEnd time.Time

	for _, exp := range sorted {
		if exp.StartsAt == nil || exp.StartsAt.Year == 0 {
			continue
		}

		startMonth := exp.StartsAt.Month
		if startMonth == 0 {
			startMonth = 1
		}
		start := time.Date(exp.StartsAt.Year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)

		var end time.Time
		if exp.EndsAt == nil || exp.EndsAt.Year == 0 {
			end = now
		} else {
			endMonth := exp.EndsAt.Month
			if endMonth == 0 {
				endMonth = 12
			}
			end = time.Date(exp.EndsAt.Year, time.Month(endMonth), 28, 0, 0, 0, 0, time.UTC)
		}

		if !covered {
			coveredStart, coveredEnd = start, end
			covered = true
			continue
		}

		if !start.After(coveredEnd) {
			// Overlapping or nested: extend the covered interval.
			if end.After(coveredEnd) {
				coveredEnd = end
			}
		} else {
			totalDays += coveredEnd.Sub(coveredStart).Hours() / 24
			coveredStart, coveredEnd = start, end
		}
	}

	if covered {
		totalDays += coveredEnd.Sub(coveredStart).Hours() / 24
	}

	return math.Round(totalDays/daysPerYear*10) / 10
}

// startKey orders experiences by start date, pushing unknown starts last.
func startKey(exp domain.Experience) (int, int) {
	if exp.StartsAt == nil || exp.StartsAt.Year == 0 {
		return 9999, 12
	}
	month := exp.StartsAt.Month
	if month == 0 {
		month = 12
	}
	return exp.StartsAt.Year, month
}
