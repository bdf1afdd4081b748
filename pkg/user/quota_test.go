package user

import (
	"errors"
	"testing"
	"time"

	"nutriplan/domain"
)

func TestNextWeeklyWindow(t *testing.T) {
	today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	daysAgo := func(n int) *time.Time {
		d := today.AddDate(0, 0, -n)
		return &d
	}

	t.Run("unset window starts today", func(t *testing.T) {
		start, count, err := NextWeeklyWindow(nil, 3, today, 5)
		if err != nil || !start.Equal(today) || count != 1 {
			t.Fatalf("got %s %d %v", start, count, err)
		}
	})

	t.Run("fresh window at limit is rejected unchanged", func(t *testing.T) {
		start, count, err := NextWeeklyWindow(daysAgo(2), 5, today, 5)
		if !errors.Is(err, domain.ErrWeeklyLimitReached) {
			t.Fatalf("expected ErrWeeklyLimitReached, got %v", err)
		}
		if count != 5 || !start.Equal(*daysAgo(2)) {
			t.Fatalf("window must not change on rejection: %s %d", start, count)
		}
	})

	t.Run("fresh window below limit increments", func(t *testing.T) {
		_, count, err := NextWeeklyWindow(daysAgo(6), 4, today, 5)
		if err != nil || count != 5 {
			t.Fatalf("got %d %v", count, err)
		}
	})

	t.Run("stale window resets regardless of count", func(t *testing.T) {
		start, count, err := NextWeeklyWindow(daysAgo(10), 5, today, 5)
		if err != nil || count != 1 || !start.Equal(today) {
			t.Fatalf("got %s %d %v", start, count, err)
		}
	})

	t.Run("window exactly seven days old is stale", func(t *testing.T) {
		_, count, err := NextWeeklyWindow(daysAgo(7), 5, today, 5)
		if err != nil || count != 1 {
			t.Fatalf("got %d %v", count, err)
		}
	})
}
