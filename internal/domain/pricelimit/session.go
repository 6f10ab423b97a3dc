package pricelimit

import "time"

// JST is Japan Standard Time. Japan has no daylight saving.
var JST = time.FixedZone("JST", 9*60*60)

// ClosingTime returns 15:00 JST on t's calendar day in Tokyo.
func ClosingTime(t time.Time) time.Time {
	j := t.In(JST)
	return time.Date(j.Year(), j.Month(), j.Day(), 15, 0, 0, 0, JST)
}
