package cache

import (
	"testing"
	"time"

	"signal_backend/internal/feature/signals/domain/entity"
)

func TestTimeUntilNextBar(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)

	tests := []struct {
		tf   entity.Timeframe
		want time.Duration
	}{
		{entity.Timeframe5m, 4*time.Minute + 30*time.Second},
		{entity.Timeframe15m, 9*time.Minute + 30*time.Second},
		{entity.Timeframe1h, 39*time.Minute + 30*time.Second},
		{entity.Timeframe4h, 1*time.Hour + 39*time.Minute + 30*time.Second},
		{entity.Timeframe1d, 13*time.Hour + 39*time.Minute + 30*time.Second},
		{"1week", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			t.Parallel()

			if got := TimeUntilNextBar(tt.tf, now); got != tt.want {
				t.Errorf("TimeUntilNextBar(%s) = %v, want %v", tt.tf, got, tt.want)
			}
		})
	}
}

func TestTimeUntilNextBar_OnBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := TimeUntilNextBar(entity.Timeframe1h, now); got != time.Hour {
		t.Errorf("expected a full bar on the boundary, got %v", got)
	}
}

func TestTimeUntilNextBar_NonUTCInput(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, 3, 1, 19, 20, 30, 0, tokyo) // 10:20:30 UTC
	if got := TimeUntilNextBar(entity.Timeframe1d, now); got != 13*time.Hour+39*time.Minute+30*time.Second {
		t.Errorf("expected the UTC day boundary, got %v", got)
	}
}
