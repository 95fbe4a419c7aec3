package responses

import "marathon-readiness/toolkit/internal/trend"

// TrendStateResponse is the persisted blob plus the derived UI mode.
type TrendStateResponse struct {
	Version   int         `json:"version"`
	State     trend.State `json:"state"`
	UpdatedAt int64       `json:"updatedAt"`
	Mode      trend.Mode  `json:"mode"`
}

// CheckInResponse acknowledges a recorded check-in.
type CheckInResponse struct {
	CheckIn   trend.CheckIn `json:"checkin"`
	UpdatedAt int64         `json:"updatedAt"`
}
