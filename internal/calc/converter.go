package calc

import (
	"fmt"
	"math"
	"sort"
)

// raceDistancesKm maps the supported race keys to kilometers.
var raceDistancesKm = map[string]float64{
	"5k":   5,
	"10k":  10,
	"half": 21.0975,
	"full": 42.195,
}

// RaceDistanceKm resolves a race key (5k, 10k, half, full) to kilometers.
func RaceDistanceKm(key string) (float64, error) {
	d, ok := raceDistancesKm[key]
	if !ok {
		return 0, fmt.Errorf("unknown race distance %q (want one of %v)", key, raceKeys())
	}
	return d, nil
}

func raceKeys() []string {
	keys := make([]string, 0, len(raceDistancesKm))
	for k := range raceDistancesKm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PaceForFinish converts a goal finish time over a race distance into the
// required sec/km pace, rounded to the nearest second.
func PaceForFinish(distanceKey string, finishSeconds int) (int, error) {
	km, err := RaceDistanceKm(distanceKey)
	if err != nil {
		return 0, err
	}
	if finishSeconds <= 0 {
		return 0, fmt.Errorf("finish time must be positive")
	}
	return int(math.Round(float64(finishSeconds) / km)), nil
}

// FinishForPace converts a sec/km pace into the projected finish time over a
// race distance, rounded to the nearest second.
func FinishForPace(distanceKey string, paceSecPerKm int) (int, error) {
	km, err := RaceDistanceKm(distanceKey)
	if err != nil {
		return 0, err
	}
	if paceSecPerKm <= 0 {
		return 0, fmt.Errorf("pace must be positive")
	}
	return int(math.Round(float64(paceSecPerKm) * km)), nil
}
