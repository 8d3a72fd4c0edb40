package hub_test

import (
	"testing"
	"time"

	"github.com/eoforge/sathub/internal/hub"
)

func TestNormalizeQueryTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2020-01-13", "2020-01-13T00:00:00Z"},
		{"2020-01-13T07:46:19", "2020-01-13T07:46:19Z"},
		{"2020-01-13T07:46:19Z", "2020-01-13T07:46:19Z"},
		{"2020/01/13", "2020-01-13T00:00:00Z"},
		{"20200113", "2020-01-13T00:00:00Z"},
		{"NOW", "NOW"},
		{"NOW-8HOURS", "NOW-8HOURS"},
		{"NOW-1DAY", "NOW-1DAY"},
	}
	for _, tt := range tests {
		got, err := hub.NormalizeQueryTime(tt.in)
		if err != nil {
			t.Fatalf("NormalizeQueryTime(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeQueryTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeQueryTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"yesterday", "NOW+1DAY", "13.01.2020"} {
		if _, err := hub.NormalizeQueryTime(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestResolveQueryTime(t *testing.T) {
	now := time.Date(2020, 1, 13, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"NOW", now},
		{"NOW-8HOURS", now.Add(-8 * time.Hour)},
		{"NOW-30MINUTES", now.Add(-30 * time.Minute)},
		{"NOW-1DAY", now.AddDate(0, 0, -1)},
		{"NOW-2MONTHS", now.AddDate(0, -2, 0)},
		{"2020-01-10", time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := hub.ResolveQueryTime(tt.in, now)
		if err != nil {
			t.Fatalf("ResolveQueryTime(%q) failed: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("ResolveQueryTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
