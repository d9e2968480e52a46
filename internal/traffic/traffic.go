package traffic

type Density string

const (
	Low    Density = "low"
	Medium Density = "medium"
	High   Density = "high"
	Jam    Density = "jam"
)

// Policy maps observed travel time against an uncongested baseline onto
// a density tier. Cut points are exclusive upper bounds, so no ratio
// satisfies two tiers.
type Policy struct {
	BaselineSpeedKmh float64
	MediumRatio      float64
	HighRatio        float64
	JamRatio         float64
}

// Serving is the live estimation policy, tuned for hyperlocal trips.
var Serving = Policy{
	BaselineSpeedKmh: 15,
	MediumRatio:      1.2,
	HighRatio:        1.5,
	JamRatio:         2.0,
}

// Pipeline mirrors the historical data-collection utility, which rated
// traffic-aware against free-flow duration with its own cut points.
// Tuned independently of Serving; do not unify them.
var Pipeline = Policy{
	BaselineSpeedKmh: 15,
	MediumRatio:      1.0,
	HighRatio:        1.4,
	JamRatio:         1.6,
}

// Classify derives the tier from trip distance and the traffic-aware
// duration. A zero expected duration is always Low.
func (p Policy) Classify(distanceKm, durationMinutes float64) Density {
	expected := distanceKm / p.BaselineSpeedKmh * 60
	if expected == 0 {
		return Low
	}
	return p.ClassifyRatio(durationMinutes / expected)
}

// ClassifyRatio derives the tier from a precomputed observed/expected
// duration ratio, for callers with their own baseline.
func (p Policy) ClassifyRatio(ratio float64) Density {
	switch {
	case ratio < p.MediumRatio:
		return Low
	case ratio < p.HighRatio:
		return Medium
	case ratio < p.JamRatio:
		return High
	default:
		return Jam
	}
}
