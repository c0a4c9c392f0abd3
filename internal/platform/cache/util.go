package cache

import (
	"time"

	"signal_backend/internal/feature/signals/domain/entity"
)

// TimeUntilNextBar は now から次の足の開始時刻までの期間を返します。
// 足の長さが不明な時間足では0を返します。日足の境界はUTCの0時です。
func TimeUntilNextBar(tf entity.Timeframe, now time.Time) time.Duration {
	d := tf.Duration()
	if d <= 0 {
		return 0
	}
	now = now.UTC()
	next := now.Truncate(d).Add(d)
	return next.Sub(now)
}
