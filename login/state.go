package login

// State is a step of one authorization attempt.
type State int

const (
	Idle State = iota
	AwaitingCode
	ExchangingCode
	ResolvingProfiles
	Completed
	CancelledByUser
	NetworkFailed
	InvalidCode
)

var stateNames = map[State]string{
	Idle:              "idle",
	AwaitingCode:      "awaiting_code",
	ExchangingCode:    "exchanging_code",
	ResolvingProfiles: "resolving_profiles",
	Completed:         "completed",
	CancelledByUser:   "cancelled_by_user",
	NetworkFailed:     "network_failed",
	InvalidCode:       "invalid_code",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s within an attempt.
func (s State) Terminal() bool {
	switch s {
	case Completed, CancelledByUser, NetworkFailed, InvalidCode:
		return true
	}
	return false
}
