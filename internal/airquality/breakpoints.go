package airquality

import "math"

// pm25Breakpoint is one segment of the EPA PM2.5 breakpoint table.
type pm25Breakpoint struct {
	concLow, concHigh   float64
	indexLow, indexHigh float64
}

// pm25Breakpoints is the US EPA breakpoint table for 24-hour PM2.5 (µg/m³).
// The final segment extrapolates linearly beyond 250.4 with no upper bound.
var pm25Breakpoints = []pm25Breakpoint{
	{0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
}

// PM25ToAQI converts a raw PM2.5 concentration in µg/m³ to the US EPA AQI
// using piecewise-linear breakpoint interpolation. Negative input is treated
// as zero.
func PM25ToAQI(pm25 float64) int {
	if pm25 <= 0 {
		return 0
	}

	for _, bp := range pm25Breakpoints {
		if pm25 <= bp.concHigh {
			slope := (bp.indexHigh - bp.indexLow) / (bp.concHigh - bp.concLow)
			return int(math.Round(slope*(pm25-bp.concLow) + bp.indexLow))
		}
	}

	// Beyond the last tabulated segment: continue the 201-300 slope upward.
	return int(math.Round((100.0/249.6)*(pm25-250.4) + 300))
}

// CNFromUS approximates a China-scale AQI from the US value. It is a rough
// halving used only when a source reports no native China-scale index.
func CNFromUS(us int) int {
	return int(math.Round(float64(us) * 0.5))
}
