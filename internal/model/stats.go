package model

import (
	"math"
	"strconv"
)

// Statistics summarizes one completed run. Values are rounded at
// construction time so every report shows identical figures.
type Statistics struct {
	Run          string  `json:"run"`
	Time         float64 `json:"time"`
	PlacedN      int     `json:"placed_n"`
	PlacedVol    float64 `json:"placed_vol"`
	RemainingN   int     `json:"remaining_n"`
	RemainingVol float64 `json:"remaining_vol"`
	PlacedRatio  float64 `json:"placed_ratio"`
	FillingRatio float64 `json:"filling_ratio"`
}

// StatisticsHeader lists the report columns in output order.
var StatisticsHeader = []string{
	"Run",
	"Time",
	"Placed N",
	"Placed Vol",
	"Remaining N",
	"Remaining Vol",
	"Placed ratio",
	"Filling ratio",
}

// NewStatistics builds the summary of a run. The placed ratio relates placed
// volume to total catalog volume and is zero for an empty catalog; the
// filling ratio relates placed volume to container capacity.
func NewStatistics(run string, elapsedSeconds float64, placed *PlacedPackageList, notPlaced *PackageList, containerVolume float64) Statistics {
	placedVol := placed.TotalVolume()
	remainingVol := notPlaced.TotalVolume()

	placedRatio := 0.0
	if placedVol+remainingVol > 0 {
		placedRatio = placedVol / (placedVol + remainingVol)
	}

	return Statistics{
		Run:          run,
		Time:         round(elapsedSeconds, 2),
		PlacedN:      placed.Len(),
		PlacedVol:    round(placedVol, 1),
		RemainingN:   notPlaced.Len(),
		RemainingVol: round(remainingVol, 1),
		PlacedRatio:  round(placedRatio, 2),
		FillingRatio: round(placedVol/containerVolume, 2),
	}
}

// Row renders the statistics as report cells aligned with StatisticsHeader.
func (s Statistics) Row() []string {
	return []string{
		s.Run,
		formatFloat(s.Time),
		strconv.Itoa(s.PlacedN),
		formatFloat(s.PlacedVol),
		strconv.Itoa(s.RemainingN),
		formatFloat(s.RemainingVol),
		formatFloat(s.PlacedRatio),
		formatFloat(s.FillingRatio),
	}
}

func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
