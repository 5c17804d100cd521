package release

// JobDescriptor describes a release job that the CI orchestrator starts.
type JobDescriptor struct {
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Command     string `json:"command"`
}

const (
	allowOverridingFlag = " --allow-overriding-existing-releases"
	allowDuplicatesFlag = " --allow-duplicate-releases"
)

// Emitter creates JobDescriptors for releases.
type Emitter struct {
	publishCommand string
}

// NewEmitter returns an Emitter that creates jobs running publishCommand with
// the commit to release as argument.
func NewEmitter(publishCommand string) *Emitter {
	return &Emitter{publishCommand: publishCommand}
}

// Emit returns one JobDescriptor per release, in the order of releases.
func (e *Emitter) Emit(ev *Event, releases []*PendingRelease) ([]*JobDescriptor, error) {
	var environment, nameSuffix, commandSuffix string

	switch ev.Kind {
	case EventKindScheduled:
		environment = "release-prod-automated"
		nameSuffix = "automated"

	case EventKindManual:
		if ev.Inputs == nil {
			return nil, &UnsupportedTriggerKindError{Kind: string(ev.Kind) + " (without inputs)"}
		}

		environment = "release-" + ev.Inputs.Env + "-manual"
		nameSuffix = "manual"

		if ev.Inputs.OverrideExisting {
			commandSuffix += allowOverridingFlag
			nameSuffix += ", allow overriding"
		}

		if ev.Inputs.AllowDuplicate {
			commandSuffix += allowDuplicatesFlag
			nameSuffix += ", allow duplicates"
		}

	default:
		return nil, &UnsupportedTriggerKindError{Kind: string(ev.Kind)}
	}

	jobs := make([]*JobDescriptor, 0, len(releases))
	for _, r := range releases {
		jobs = append(jobs, &JobDescriptor{
			Name:        r.Metadata.Channel + " (" + nameSuffix + ")",
			Environment: environment,
			Command:     e.publishCommand + " " + r.Commit + commandSuffix,
		})
	}

	return jobs, nil
}
