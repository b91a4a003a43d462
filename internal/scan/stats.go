package scan

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes a finished or in-progress scan. The distance figures cover
// every fingerprint comparison made while a dialogue box was tracked.
type Stats struct {
	Frames      int `json:"frames"`
	Events      int `json:"events"`
	Comparisons int `json:"comparisons"`

	MeanDistance   float64 `json:"mean_distance"`
	StdDevDistance float64 `json:"stddev_distance"`
	MaxDistance    float64 `json:"max_distance"`
}

func distanceStats(distances []float64) Stats {
	st := Stats{Comparisons: len(distances)}
	if len(distances) == 0 {
		return st
	}

	st.MaxDistance = floats.Max(distances)
	if len(distances) == 1 {
		st.MeanDistance = distances[0]
		return st
	}
	st.MeanDistance, st.StdDevDistance = stat.MeanStdDev(distances, nil)
	return st
}
