package utils

import (
	"testing"
	"time"
)

func TestParseDateFormatDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate(" 2025-06-10 ")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := FormatDate(parsed); got != "2025-06-10" {
		t.Fatalf("round trip = %q", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("10/06/2025"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2025, 6, 10, 8, 30, 0, 0, time.Local)
	if got := FormatDateTime(ts); got != "2025-06-10 08:30:00" {
		t.Fatalf("FormatDateTime = %q", got)
	}
}
