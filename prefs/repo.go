// Package prefs persists small pieces of UI state as plain string key/value
// pairs. Absence of a key means "use default", never an error.
package prefs

// Repo stores preference strings by key.
type Repo interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set stores or replaces the value for key.
	Set(key, value string) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}

// GetOrDefault reads key from repo, falling back to def when the key is
// absent or the read fails.
func GetOrDefault(repo Repo, key, def string) string {
	value, ok, err := repo.Get(key)
	if err != nil || !ok {
		return def
	}
	return value
}
