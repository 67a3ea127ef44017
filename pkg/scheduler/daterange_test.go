package scheduler

import (
	"testing"
	"time"
)

func TestResolveDateRange_AlreadyRunToday(t *testing.T) {
	today := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	_, _, skip := resolveDateRange(today, "2026-07-31")
	if !skip {
		t.Error("expected skip = true when latestRoundupDate == today")
	}
}

func TestResolveDateRange_FirstRun(t *testing.T) {
	today := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	gte, lte, skip := resolveDateRange(today, "")
	if skip {
		t.Fatal("expected skip = false")
	}
	if gte != "2026-07-01" {
		t.Errorf("gte = %s, want 2026-07-01 (first day of month)", gte)
	}
	if lte != "2026-07-30" {
		t.Errorf("lte = %s, want 2026-07-30 (yesterday)", lte)
	}
}

func TestResolveDateRange_ContinuesFromLastRun(t *testing.T) {
	today := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	gte, lte, skip := resolveDateRange(today, "2026-07-20")
	if skip {
		t.Fatal("expected skip = false")
	}
	if gte != "2026-07-20" {
		t.Errorf("gte = %s, want 2026-07-20", gte)
	}
	if lte != "2026-07-30" {
		t.Errorf("lte = %s, want 2026-07-30", lte)
	}
}

func TestResolveDateRange_ClampsFutureLatestDate(t *testing.T) {
	today := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	gte, _, skip := resolveDateRange(today, "2026-08-15")
	if skip {
		t.Fatal("expected skip = false")
	}
	if gte != "2026-07-30" {
		t.Errorf("gte = %s, want clamped to yesterday 2026-07-30", gte)
	}
}
