package session

// Snapshot is the complete authentication state at a point in time. It is a
// value type: observers receive copies and never share mutable state with the
// store.
type Snapshot struct {
	IsAuthenticated bool
	UserClaims      map[string]any
	AccessToken     string
	IDToken         string

	// IsLoading is true only before the first completed authentication check.
	IsLoading bool
}

// DefaultSnapshot is the state every store starts in: anonymous and still
// waiting for the first authentication check.
var DefaultSnapshot = Snapshot{
	IsLoading: true,
}

// State is the coarse lifecycle state derived from a snapshot.
type State string

const (
	StateLoading       State = "loading"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// State derives the lifecycle state from the loading and authentication flags.
func (s Snapshot) State() State {
	if s.IsLoading {
		return StateLoading
	}
	if s.IsAuthenticated {
		return StateAuthenticated
	}
	return StateAnonymous
}
