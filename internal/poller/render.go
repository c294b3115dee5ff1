package poller

// Target names a render target the session writes to.
type Target string

const (
	TargetAge      Target = "age"
	TargetGarden   Target = "garden"
	TargetPlants   Target = "plants"
	TargetWatchers Target = "watchers"
	// TargetPage is the whole page; only its style is ever set.
	TargetPage Target = "page"
)

// Targets lists every target in display order.
var Targets = []Target{TargetAge, TargetPlants, TargetWatchers, TargetGarden, TargetPage}

// Literal UI strings for the disconnected state.
const (
	DisconnectedText  = "DISCONNECTED"
	DisconnectedStyle = "background: lightgrey"
	ReconnectLabel    = "Reconnect"
)

// Renderer is the capability interface for render targets. The session
// depends only on this interface, never on concrete UI handles.
//
// Implementations are called from the session's polling goroutine and must
// not block.
type Renderer interface {
	SetText(target Target, text string)
	SetStyle(target Target, style string)
	// AttachControl appends a clickable control labelled label to target.
	// onActivate runs when a user activates it.
	AttachControl(target Target, label string, onActivate func()) Control
}

// Control is a handle on an attached control.
type Control interface {
	// Remove detaches the control. Safe to call more than once.
	Remove()
}
