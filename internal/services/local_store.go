package services

import (
	"encoding/json"

	"marathon-readiness/toolkit/internal/common"
	"marathon-readiness/toolkit/internal/logging"
	"marathon-readiness/toolkit/internal/trend"
)

const stateKeyPrefix = "trend:state:"

// LocalStateStore is the fast, always-available copy of each user's trendline
// blob. It sits in front of the remote store and absorbs every read and
// write; the flusher mirrors it outward.
type LocalStateStore struct {
	cache common.CacheInterface
}

func NewLocalStateStore(cache common.CacheInterface) *LocalStateStore {
	return &LocalStateStore{cache: cache}
}

// Get returns the cached blob for a user. A corrupt entry is treated as
// missing so the remote copy can repopulate it.
func (s *LocalStateStore) Get(userID string) (trend.Payload, bool) {
	raw, ok := s.cache.Get(stateKeyPrefix + userID)
	if !ok {
		return trend.Payload{}, false
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return trend.Payload{}, false
	}

	var p trend.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		logging.Warn("corrupt local state entry dropped", "user_id", userID, "error", err.Error())
		s.cache.Delete(stateKeyPrefix + userID)
		return trend.Payload{}, false
	}
	return p, true
}

// Set stores the blob without expiry. State entries live until wiped.
func (s *LocalStateStore) Set(userID string, p trend.Payload) {
	raw, err := json.Marshal(p)
	if err != nil {
		logging.Error("failed to encode state for local cache", "user_id", userID, "error", err.Error())
		return
	}
	s.cache.Set(stateKeyPrefix+userID, string(raw), 0)
}

func (s *LocalStateStore) Delete(userID string) {
	s.cache.Delete(stateKeyPrefix + userID)
}
