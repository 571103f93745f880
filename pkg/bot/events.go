package bot

// EventType names one of the client's observable event kinds.
type EventType int

const (
	EventLogin EventType = iota
	EventSpawn
	EventPosition
	EventHealth
	EventChat
	EventDisconnect
	EventError
	EventArrived
)

func (t EventType) String() string {
	switch t {
	case EventLogin:
		return "login"
	case EventSpawn:
		return "spawn"
	case EventPosition:
		return "position"
	case EventHealth:
		return "health"
	case EventChat:
		return "chat"
	case EventDisconnect:
		return "disconnect"
	case EventError:
		return "error"
	case EventArrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// Event carries whatever fields its Type uses; the rest are zero.
type Event struct {
	Type EventType

	EntityID   int32
	X, Y, Z    float64
	Yaw, Pitch float32

	Health     float32
	Food       int32
	Saturation float32

	Text   string
	Reason string

	Err error
}

// Handler reacts to one Event. It runs synchronously on the client's
// single loop goroutine, so it must not block or call back into the
// client with Goto/Stop/Disconnect from inside itself without spawning a
// goroutine (those calls wait on the very loop the handler is running on).
type Handler func(Event)

// On registers h to run whenever an event of type t fires. Handlers fire
// in registration order.
func (c *Client) On(t EventType, h Handler) {
	c.listeners[t] = append(c.listeners[t], h)
}

func (c *Client) emit(ev Event) {
	for _, h := range c.listeners[ev.Type] {
		h(ev)
	}
}
