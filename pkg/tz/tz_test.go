package tz

import (
	"testing"
	"time"
)

func TestFormatDateTimeUsesBerlin(t *testing.T) {
	// 22:30 UTC in summer is 00:30 the next day in Berlin.
	ts := time.Date(2026, 7, 3, 22, 30, 0, 0, time.UTC)
	if got := FormatDateTime(ts); got != "04.07.2026 00:30" {
		t.Fatalf("FormatDateTime() = %q", got)
	}
	if got := FormatDate(ts); got != "04.07.2026" {
		t.Fatalf("FormatDate() = %q", got)
	}
	if FormatDateTime(time.Time{}) != "" || FormatDate(time.Time{}) != "" {
		t.Fatal("zero time must format as empty string")
	}
}
