package domain

// Setting is a key/value preference. Set is an upsert.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt int64
}
