package user

import (
	"time"

	"nutriplan/domain"
	"nutriplan/internal/utils"
)

const WeeklyWindowDays = 7

// NextWeeklyWindow applies one plan request to the rolling window. A window
// that is unset or at least seven days old restarts at today with a zero
// count before the increment. A fresh window at the limit is rejected and
// returned unchanged.
func NextWeeklyWindow(start *time.Time, count int, today time.Time, limit int) (time.Time, int, error) {
	if start == nil || utils.DaysBetween(*start, today) >= WeeklyWindowDays {
		return today, 1, nil
	}
	if count >= limit {
		return *start, count, domain.ErrWeeklyLimitReached
	}
	return *start, count + 1, nil
}
