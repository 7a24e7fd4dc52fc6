package driven

// ConfigStore holds settings under dotted keys such as "retrieval.top_k".
type ConfigStore interface {
	// Get returns the raw value and whether key is present.
	Get(key string) (any, bool)

	// GetString returns "" when key is absent or not a string.
	GetString(key string) string

	// GetInt returns 0 when key is absent or not an integer.
	GetInt(key string) int

	// GetFloat widens integers and returns 0 when key is absent or not
	// numeric.
	GetFloat(key string) float64

	// Set stages a value. Nothing reaches storage until Save.
	Set(key string, value any) error

	// Save writes every staged value.
	Save() error

	// Load replaces the in-memory values with what storage holds.
	Load() error

	// Path identifies where Save writes.
	Path() string
}
