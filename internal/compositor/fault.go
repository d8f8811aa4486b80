package compositor

import "fmt"

// Fault records a layer that could not be rendered this frame. The layer
// contributed black (or nothing, when its target could not be resolved)
// and the rest of the frame proceeded.
type Fault struct {
	UID      string
	Behavior string
	Err      error
}

func (f Fault) Error() string {
	return fmt.Sprintf("layer %s (%s): %v", f.UID, f.Behavior, f.Err)
}

func (f Fault) Unwrap() error { return f.Err }

// panicError carries a recovered panic and the stack at the point of recovery.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }
