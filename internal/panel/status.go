package panel

// State classifies the lifecycle state a hosting panel reports for a server.
type State string

const (
	StateOnline   State = "online"
	StateOffline  State = "offline"
	StateStarting State = "starting"
	StatePending  State = "pending"
	StateUnknown  State = "unknown"
)

// ParseState maps a raw panel state string onto the closed set of states.
// Anything unrecognized becomes StateUnknown; callers that need the raw
// value read Status.Raw.
func ParseState(raw string) State {
	switch raw {
	case "online":
		return StateOnline
	case "offline":
		return StateOffline
	case "starting":
		return StateStarting
	case "pending":
		return StatePending
	default:
		return StateUnknown
	}
}

// Status is a point-in-time snapshot of a server as reported by the panel.
type Status struct {
	State      State
	Raw        string
	Players    int
	MaxPlayers int
	Address    string
}
