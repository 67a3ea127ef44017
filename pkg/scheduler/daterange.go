package scheduler

import "time"

const isoDate = "2006-01-02"

// resolveDateRange computes one user's aggregator lookback window for
// today's run, per spec §4.9. skip reports the "already-run-today" case.
func resolveDateRange(today time.Time, latestRoundupDate string) (gte, lte string, skip bool) {
	todayStr := today.Format(isoDate)
	if latestRoundupDate == todayStr {
		return "", "", true
	}

	yesterday := today.AddDate(0, 0, -1).Format(isoDate)

	gte = latestRoundupDate
	if gte == "" {
		gte = firstDayOfMonth(today)
	}
	if gte >= todayStr {
		gte = yesterday
	}

	lte = yesterday
	return gte, lte, false
}

func firstDayOfMonth(t time.Time) string {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).Format(isoDate)
}
