package retention

import (
	"context"
	"testing"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results/storage"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{"daily", "0 3 * * *", true, false},
		{"hourly", "0 * * * *", true, false},
		{"empty schedule", "", false, false},
		{"invalid schedule", "invalid cron", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPruner(storage.NewMemoryStorage(), &config.RetentionConfig{Days: 30, PruneSchedule: tt.schedule}, nil)

			err := p.Start(context.Background())
			defer p.Stop()

			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if got := p.scheduler.IsRunning(); got != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", got, tt.wantRunning)
			}
			if next := p.NextPruning(); (next != nil) != tt.wantRunning {
				t.Errorf("NextPruning() = %v", next)
			}
		})
	}
}

func TestScheduler_StopsWithContext(t *testing.T) {
	p := NewPruner(storage.NewMemoryStorage(), &config.RetentionConfig{PruneSchedule: "* * * * *"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	p.Stop()
	if p.scheduler.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
	p.Stop()
}
