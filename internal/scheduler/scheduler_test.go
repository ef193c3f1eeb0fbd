package scheduler

import (
	"testing"
	"time"
)

func TestIntervalSpec(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     string
		wantErr  bool
	}{
		{name: "one minute", interval: time.Minute, want: "@every 60s"},
		{name: "sub second rounds up", interval: 300 * time.Millisecond, want: "@every 1s"},
		{name: "fractional seconds truncate", interval: 2500 * time.Millisecond, want: "@every 2s"},
		{name: "zero", interval: 0, wantErr: true},
		{name: "negative", interval: -time.Second, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intervalSpec(tt.interval)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got spec %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("intervalSpec(%s) = %q, want %q", tt.interval, got, tt.want)
			}
		})
	}
}

func TestSchedulerEvery(t *testing.T) {
	s := New(time.UTC)

	if _, err := s.Every(time.Minute, "dispatch", func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Every(0, "broken", func() {}); err == nil {
		t.Error("expected error for zero interval")
	}
	if s.Entries() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Entries())
	}
}

func TestSchedulerRunsJob(t *testing.T) {
	s := New(time.UTC)
	ran := make(chan struct{}, 1)
	if _, err := s.Every(time.Second, "tick", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
