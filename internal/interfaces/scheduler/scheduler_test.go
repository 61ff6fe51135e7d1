package scheduler

import (
	"testing"
	"time"

	"doughjo/internal/shared/config"
)

func TestNextRun(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		times []string
		want  time.Time
		ok    bool
	}{
		{
			name:  "later today",
			times: []string{"15:30"},
			want:  time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "already passed rolls to tomorrow",
			times: []string{"03:00"},
			want:  time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "earliest of several",
			times: []string{"03:00", "13:00", "22:00"},
			want:  time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "invalid entries skipped",
			times: []string{"not-a-time", "14:00"},
			want:  time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "all invalid",
			times: []string{"25:99"},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scheduler{cfg: config.SchedulerConfig{ScheduleTimes: tt.times}}
			got, ok := s.nextRun(now)
			if ok != tt.ok {
				t.Fatalf("nextRun() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("nextRun() = %s, want %s", got, tt.want)
			}
		})
	}
}
