package domain

type Phase int

const (
	Idle Phase = iota
	Uploading
	Processing
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Uploading:
		return "uploading"
	case Processing:
		return "processing"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether the triggering control is disabled in this phase.
func (p Phase) Busy() bool {
	return p == Uploading || p == Processing
}

type Event int

const (
	Submit Event = iota
	RequestSent
	ResponseOK
	ResponseError
	TransportError
	Reset
)

func (e Event) String() string {
	switch e {
	case Submit:
		return "submit"
	case RequestSent:
		return "request-sent"
	case ResponseOK:
		return "response-ok"
	case ResponseError:
		return "response-error"
	case TransportError:
		return "transport-error"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Transition is one recorded step of a lifecycle.
type Transition struct {
	From  Phase
	Event Event
	To    Phase
}
