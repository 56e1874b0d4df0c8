package standings

// State describes what a display surface should render for a view model.
type State string

// View states. Loading means no snapshot has arrived yet; Empty means the
// latest snapshot held zero records, which is distinct from a feed error.
const (
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateEmpty       State = "empty"
	StateUnavailable State = "unavailable"
)

// View is the standings view model handed to the rendering surface: the
// derived structure plus the state that tells the surface whether the
// structure is current.
type View struct {
	State     State     `json:"state"`
	Reason    string    `json:"reason,omitempty"`
	Standings Standings `json:"standings"`
}
