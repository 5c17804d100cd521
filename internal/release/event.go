package release

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ferrocene/releasetools/internal/maputils"
)

// EventKind is the reason a run was started.
type EventKind string

const (
	EventKindScheduled EventKind = "scheduled"
	EventKindManual    EventKind = "manual"
)

// GitHub Actions event names.
const (
	GithubEventSchedule         = "schedule"
	GithubEventWorkflowDispatch = "workflow_dispatch"
)

// ManualInputs are the inputs of a manually dispatched run.
type ManualInputs struct {
	// Ref is the branch, tag or commit to release.
	Ref string
	// VerbatimRef is true if Ref is a commit SHA that must not be
	// resolved.
	VerbatimRef bool
	// Env is the release environment, e.g. "prod" or "dev".
	Env              string
	OverrideExisting bool
	AllowDuplicate   bool
}

// Event is the triggering event of a run.
type Event struct {
	Kind EventKind
	// Inputs is only set for EventKindManual.
	Inputs *ManualInputs
}

func NewScheduledEvent() *Event {
	return &Event{Kind: EventKindScheduled}
}

func NewManualEvent(inputs *ManualInputs) *Event {
	return &Event{Kind: EventKindManual, Inputs: inputs}
}

// ParseEvent converts a GitHub Actions event into an Event.
// eventName is the value of GITHUB_EVENT_NAME, payload the content of the
// file referenced by GITHUB_EVENT_PATH. The payload is only evaluated for
// workflow_dispatch events.
// If the event name is not supported an *UnsupportedTriggerKindError is
// returned.
func ParseEvent(eventName string, payload []byte) (*Event, error) {
	switch eventName {
	case GithubEventSchedule, string(EventKindScheduled):
		return NewScheduledEvent(), nil

	case GithubEventWorkflowDispatch, string(EventKindManual):
		inputs, err := parseManualInputs(payload)
		if err != nil {
			return nil, fmt.Errorf("parsing %s event payload failed: %w", eventName, err)
		}

		return NewManualEvent(inputs), nil

	default:
		return nil, &UnsupportedTriggerKindError{Kind: eventName}
	}
}

func parseManualInputs(payload []byte) (*ManualInputs, error) {
	var ev map[string]any

	if len(payload) == 0 {
		return nil, errors.New("payload is empty")
	}

	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}

	inputs, err := maputils.MapVal(ev, "inputs")
	if err != nil {
		return nil, err
	}

	var result ManualInputs

	if result.Ref, err = maputils.StrVal(inputs, "ref"); err != nil {
		return nil, err
	}
	if result.Ref == "" {
		return nil, errors.New("input ref is missing or empty")
	}

	if result.Env, err = maputils.StrVal(inputs, "env"); err != nil {
		return nil, err
	}
	if result.Env == "" {
		return nil, errors.New("input env is missing or empty")
	}

	if result.VerbatimRef, err = maputils.BoolVal(inputs, "verbatim-ref"); err != nil {
		return nil, err
	}

	if result.OverrideExisting, err = maputils.BoolVal(inputs, "override-existing"); err != nil {
		return nil, err
	}

	if result.AllowDuplicate, err = maputils.BoolVal(inputs, "allow-duplicate"); err != nil {
		return nil, err
	}

	return &result, nil
}
