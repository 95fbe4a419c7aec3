package responses

// RaceTimeResponse is the marathon estimate derived from a 10K effort.
type RaceTimeResponse struct {
	TenKSeconds     int    `json:"tenKSeconds"`
	MarathonSeconds int    `json:"marathonSeconds"`
	MarathonTime    string `json:"marathonTime"`
}

// PaceConvertResponse carries both sides of the pace/finish-time conversion.
type PaceConvertResponse struct {
	Distance      string  `json:"distance"`
	DistanceKm    float64 `json:"distanceKm"`
	PaceSecPerKm  int     `json:"paceSecPerKm"`
	Pace          string  `json:"pace"`
	FinishSeconds int     `json:"finishSeconds"`
	FinishTime    string  `json:"finishTime"`
}
