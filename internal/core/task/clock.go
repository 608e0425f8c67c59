package task

import "time"

// CreatedAtLayout は created_at の既定値に使う書式です。
const CreatedAtLayout = time.RFC3339Nano

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc は関数を Clock として扱うためのアダプタです。
type ClockFunc func() time.Time

// Now は f を呼び出します。
func (f ClockFunc) Now() time.Time {
	return f()
}

func clockOrDefault(clock Clock) Clock {
	if clock == nil {
		return realClock{}
	}
	return clock
}
