package model

import (
	"testing"
	"time"
)

func TestNextDueDate(t *testing.T) {
	due := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		frequency string
		expected  time.Time
	}{
		{"weekly", due.AddDate(0, 0, 7)},
		{"monthly", due.AddDate(0, 0, 30)},
		{"yearly", due.AddDate(0, 0, 365)},
		{"unknown", due},
	}

	for _, tc := range cases {
		sub := SubscriptionEntity{Frequency: tc.frequency, DueDate: due}
		if got := sub.NextDueDate(); !got.Equal(tc.expected) {
			t.Fatalf("NextDueDate for %s: expected %v, got %v", tc.frequency, tc.expected, got)
		}
	}
}
