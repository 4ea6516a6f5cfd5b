package calc

// presetSpread is the distance between a preset and the bounds of its range.
const presetSpread = 60

// DelayRange is a min/max pair of seconds between two sends.
type DelayRange struct {
	Min int
	Max int
}

// Average returns the rounded midpoint of r.
func (r DelayRange) Average() int {
	return FromMinMax(r.Min, r.Max)
}

// Valid reports whether Min is strictly below Max.
func (r DelayRange) Valid() bool {
	return r.Min < r.Max
}

// FromMinMax returns round((lo+hi)/2), rounding halves away from zero.
func FromMinMax(lo, hi int) int {
	sum := lo + hi
	if sum >= 0 {
		return (sum + 1) / 2
	}
	return -((-sum + 1) / 2)
}

// FromPreset centres a range on preset, never going below one second.
func FromPreset(preset int) DelayRange {
	return DelayRange{
		Min: max(1, preset-presetSpread),
		Max: preset + presetSpread,
	}
}

// DelayPreset is a named average delay offered for quick selection.
type DelayPreset struct {
	Label string
	Value int
}

var DelayPresets = []DelayPreset{
	{Label: "1 minute", Value: 60},
	{Label: "2 minutes", Value: 120},
	{Label: "3 minutes", Value: 180},
	{Label: "5 minutes", Value: 300},
}
