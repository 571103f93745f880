package protocol

import "log/slog"

// State is one of the four connection phases.
type State int

const (
	StateHandshaking State = iota
	StateLogin
	StateConfiguration
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateLogin:
		return "login"
	case StateConfiguration:
		return "configuration"
	case StatePlay:
		return "play"
	default:
		return "unknown"
	}
}

// Handler processes one inbound packet's payload. Returning an error does
// not tear down the connection; the caller logs it and continues per the
// error handling design's ProtocolError/containment policy.
type Handler func(payload []byte) error

// Dispatcher routes inbound packets to handlers keyed by (state, id) and
// tracks the current state on the caller's behalf.
type Dispatcher struct {
	state    State
	handlers map[dispatchKey]Handler
	log      *slog.Logger
}

type dispatchKey struct {
	state State
	id    int32
}

// NewDispatcher starts in StateHandshaking.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		state:    StateHandshaking,
		handlers: make(map[dispatchKey]Handler),
		log:      log,
	}
}

// State returns the current protocol state.
func (d *Dispatcher) State() State {
	return d.state
}

// SetState transitions the dispatcher locally, e.g. after login-acknowledged.
func (d *Dispatcher) SetState(s State) {
	d.log.Debug("protocol state transition", "from", d.state, "to", s)
	d.state = s
}

// Register installs a handler for (state, id). A later call for the same
// key overwrites the earlier one.
func (d *Dispatcher) Register(state State, id int32, h Handler) {
	d.handlers[dispatchKey{state, id}] = h
}

// Dispatch routes an inbound packet to its handler. Unknown (state, id)
// pairs are logged and ignored, not treated as errors.
func (d *Dispatcher) Dispatch(id int32, payload []byte) {
	h, ok := d.handlers[dispatchKey{d.state, id}]
	if !ok {
		d.log.Debug("ignoring unhandled packet", "state", d.state, "id", id)
		return
	}
	if err := h(payload); err != nil {
		d.log.Warn("packet handler failed", "state", d.state, "id", id, "err", err)
	}
}
