// Package coldres computes how long a player can stay in the Glacite
// tunnels before freezing, given their cold resistance stat.
package coldres

import "time"

// Cold accumulates to 100 at a base rate of one point per 5 seconds;
// resistance slows accumulation proportionally.
const (
	maxCold         = 100
	secondsPerPoint = 5
)

// TotalSeconds is the survivable time for the given resistance value.
func TotalSeconds(resistance float64) float64 {
	return maxCold * secondsPerPoint * (1 + resistance/100)
}

// Duration is TotalSeconds as a time.Duration, handy for display.
func Duration(resistance float64) time.Duration {
	return time.Duration(TotalSeconds(resistance) * float64(time.Second))
}
