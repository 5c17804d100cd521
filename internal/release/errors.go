package release

import "fmt"

// UnsupportedTriggerKindError is returned for events that are neither
// scheduled nor manual triggers.
type UnsupportedTriggerKindError struct {
	Kind string
}

func (e *UnsupportedTriggerKindError) Error() string {
	return fmt.Sprintf("unsupported event name: %s", e.Kind)
}
