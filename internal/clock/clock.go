// Package clock is the time source for polling deadlines and event stamps.
// Tests swap NowFunc for a fixed or stepped source.
package clock

import "time"

// NowFunc supplies the current time.
var NowFunc func() time.Time = time.Now

// Now reports the current time via NowFunc.
func Now() time.Time {
	return NowFunc()
}
