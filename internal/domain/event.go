package domain

// EventKind classifies progress events emitted during a run
type EventKind int

const (
	EventStart     EventKind = iota // source root -> destination root
	EventCompare                    // source -> candidate
	EventMkdir                      // directory about to be created
	EventProbe                      // next version-chain slot examined
	EventDuplicate                  // version-chain slot matched the source
	EventWrite                      // source -> write target
	EventSkip                       // non-regular entry ignored
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventCompare:
		return "compare"
	case EventMkdir:
		return "mkdir"
	case EventProbe:
		return "probe"
	case EventDuplicate:
		return "duplicate"
	case EventWrite:
		return "write"
	case EventSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Event is a single progress notification
type Event struct {
	Kind   EventKind
	Source string
	Target string
	DryRun bool
}
