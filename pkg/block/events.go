package block

// EventKind identifies what happened to a workspace.
type EventKind int

const (
	// EventCreate fires after a block is created and registered.
	EventCreate EventKind = iota
	// EventDispose fires after a block is removed from the workspace.
	EventDispose
	// EventChange fires when a block's fields, flags, comment, position, or
	// links change.
	EventChange
	// EventLoad fires once after a whole document finishes decoding.
	EventLoad
)

// String returns a stable lowercase name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventDispose:
		return "dispose"
	case EventChange:
		return "change"
	case EventLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Event describes a single workspace change. Block is nil for EventLoad.
type Event struct {
	Kind  EventKind
	Block *Block
}

// Listener receives workspace events. Listeners run synchronously on the
// goroutine that performed the change, in registration order. A listener
// must not modify the workspace while handling an event.
type Listener func(Event)

// RenderSink receives re-render requests for blocks whose appearance changed.
// Hosts that draw blocks implement this to schedule redraws; headless hosts
// use the default no-op sink.
type RenderSink interface {
	NotifyDirty(b *Block)
}

// NopRenderSink is a RenderSink that ignores all requests.
type NopRenderSink struct{}

// NotifyDirty implements [RenderSink].
func (NopRenderSink) NotifyDirty(*Block) {}
