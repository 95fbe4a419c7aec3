package entities

// TrendState is the remote copy of a user's trendline blob. The payload is
// stored as the serialized JSON envelope so the remote store never needs to
// understand check-in internals.
type TrendState struct {
	UserID    string `gorm:"primaryKey;size:64" json:"user_id"`
	Payload   string `gorm:"type:text" json:"payload"`
	Version   int    `json:"version"`
	UpdatedAt int64  `gorm:"index" json:"updated_at"`
}

func (TrendState) TableName() string {
	return "trend_states"
}
