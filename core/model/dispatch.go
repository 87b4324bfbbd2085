package model

// DispatchPhase is the lifecycle phase of the autonomous dispatch controller.
type DispatchPhase int

const (
	DispatchIdle DispatchPhase = iota
	DispatchLocked
	DispatchCooldown
)

// String returns a human-readable representation of the dispatch phase.
func (p DispatchPhase) String() string {
	switch p {
	case DispatchIdle:
		return "idle"
	case DispatchLocked:
		return "locked"
	case DispatchCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// DispatchState is the in-memory state owned by one dispatch controller
// instance. It starts in DispatchIdle at process start and is never persisted
// across restarts.
type DispatchState struct {
	Phase          DispatchPhase
	RecommendedQty int
	LastPOID       string
}

// DispatchNotice is the outward fire-and-forget event emitted after a
// completed autonomous order. Listeners subscribe explicitly; no
// acknowledgement is expected.
type DispatchNotice struct {
	Scenario string `json:"scenario"`
	Qty      int    `json:"qty"`
	POID     string `json:"po_id"`
	Message  string `json:"message"`
}
