package entities

// ApiKey maps the api_keys lookup table used by the key middleware.
type ApiKey struct {
	ApiKey string `db:"id"`
	Status bool   `db:"status"`
}
