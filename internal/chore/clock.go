package chore

import "time"

// Clock supplies a monotonic millisecond counter. The counter may wrap at
// 2^32; only differences are ever used. The scheduler reads it once at
// construction and on every dispatch pass.
type Clock func() uint32

var wallStart = time.Now()

// WallClock is the default Clock: milliseconds elapsed since process start,
// backed by the runtime's monotonic reading.
func WallClock() uint32 {
	return uint32(time.Since(wallStart).Milliseconds())
}
