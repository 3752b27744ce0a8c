package analytics

// HeartRateZone describes one training-intensity band as a fixed percentage
// of a maximum heart rate.
type HeartRateZone struct {
	Zone      int     `json:"zone"`
	Label     string  `json:"label"`
	Percent   float64 `json:"percent"`   // threshold as % of max HR
	Threshold float64 `json:"threshold"` // bpm at which the zone begins
	Color     string  `json:"color"`
}

// The five-zone model is a fixed constant of the system: labels, threshold
// percentages and display colors never vary. Only the max HR is an input.
var zoneDefinitions = []HeartRateZone{
	{Zone: 1, Label: "Very Light", Percent: 50, Color: "#60a5fa"},
	{Zone: 2, Label: "Light", Percent: 60, Color: "#34d399"},
	{Zone: 3, Label: "Moderate", Percent: 70, Color: "#fbbf24"},
	{Zone: 4, Label: "Hard", Percent: 80, Color: "#f97316"},
	{Zone: 5, Label: "Maximum", Percent: 90, Color: "#ef4444"},
}

// CalculateHeartRateZones derives the five training zones for maxHR, in
// increasing-intensity order. For maxHR <= 0 the thresholds are computed
// as-is (zero or negative) rather than rejected; callers validate max HR
// at the input boundary if they need to.
func CalculateHeartRateZones(maxHR float64) []HeartRateZone {
	zones := make([]HeartRateZone, len(zoneDefinitions))
	for i, def := range zoneDefinitions {
		def.Threshold = maxHR * def.Percent / 100
		zones[i] = def
	}
	return zones
}
