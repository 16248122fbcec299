package ledger

import "time"

// Clock supplies the minute index used for rate-limit bucketing.
// Implementations must be monotonically non-decreasing.
type Clock interface {
	CurrentMinute() int64
}

// WallClock buckets on wall-clock Unix minutes.
type WallClock struct{}

func (WallClock) CurrentMinute() int64 {
	return time.Now().Unix() / 60
}
