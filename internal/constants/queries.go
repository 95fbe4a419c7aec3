package constants

const (
	GetStatusByApiKey = `SELECT id, status FROM api_keys WHERE id = $1`
)
