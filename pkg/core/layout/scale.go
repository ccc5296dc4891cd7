package layout

import "math"

const (
	scaleDomainMin = 1
	scaleDomainMax = 5
	scaleRangeMin  = 60
	scaleRangeMax  = 30

	// minLinkScale keeps deep links at a positive rest length.
	minLinkScale = 1
)

// LogScale maps x from [1, 5] onto [60, 30] logarithmically and
// extrapolates outside the domain. The result never drops below
// minLinkScale; x <= 0 maps to the range start.
func LogScale(x float64) float64 {
	if x <= 0 {
		return scaleRangeMin
	}
	t := math.Log(x/scaleDomainMin) / math.Log(scaleDomainMax/scaleDomainMin)
	return max(scaleRangeMin+t*(scaleRangeMax-scaleRangeMin), minLinkScale)
}

// LinkDistance is the rest length of a link at depth whose connector group
// fans out to fanOut+1 slots.
func LinkDistance(depth, fanOut int) float64 {
	return float64(fanOut+1) * LogScale(float64(depth+1))
}
