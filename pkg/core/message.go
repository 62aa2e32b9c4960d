package core

// MessageKind discriminates the envelope variants crossing a worker boundary
// A closed set of kinds avoids reflection-based dispatch on the wire
type MessageKind int

const (
	// KindRequest carries a correlated request body to a worker
	KindRequest MessageKind = iota

	// KindResponse carries a successful result back to the coordinator
	KindResponse

	// KindError carries a propagated payload failure back to the coordinator
	KindError

	// KindShutdown is the graceful-close sentinel; it follows all accepted
	// requests in FIFO order, so the worker drains before exiting
	KindShutdown
)

func (k MessageKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindError:
		return "error"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Envelope is the single message type moved across channels
//
// Body holds a JSON-encoded payload; envelopes never carry live references
// into coordinator or worker memory.
type Envelope struct {
	Kind   MessageKind
	ID     uint64 // Correlation id; zero for one-shot and control envelopes
	Body   []byte
	Reason string // Failure description for KindError envelopes
}

func newRequest(id uint64, body []byte) Envelope {
	return Envelope{Kind: KindRequest, ID: id, Body: body}
}

func newResponse(id uint64, body []byte) Envelope {
	return Envelope{Kind: KindResponse, ID: id, Body: body}
}

func newError(id uint64, reason string) Envelope {
	return Envelope{Kind: KindError, ID: id, Reason: reason}
}

func newShutdown() Envelope {
	return Envelope{Kind: KindShutdown}
}

// copyBytes makes an isolation-preserving copy of a byte payload
// Callers must never retain a slice that also lives on the other side
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
