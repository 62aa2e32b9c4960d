package core

// Error represents a coordinator error with a stable code
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errors
var (
	// ErrSpawnFailed indicates an isolation context could not be allocated.
	// Raised synchronously; no partial state is left registered.
	ErrSpawnFailed = &Error{Code: "SPAWN_FAILED", Message: "could not allocate an isolation context"}

	// ErrTimeout indicates a correlated request exceeded its deadline.
	// The worker keeps running; its late response is discarded.
	ErrTimeout = &Error{Code: "REQUEST_TIMEOUT", Message: "request timed out"}

	// ErrWorkerClosed indicates a call after Close() began, or a request
	// still pending at teardown
	ErrWorkerClosed = &Error{Code: "WORKER_CLOSED", Message: "worker is closed"}

	// ErrChannelClosed indicates a send after the peer endpoint closed
	ErrChannelClosed = &Error{Code: "CHANNEL_CLOSED", Message: "channel is closed"}

	// ErrCoordinatorClosed indicates a submission on a closed coordinator
	ErrCoordinatorClosed = &Error{Code: "COORDINATOR_CLOSED", Message: "coordinator is closed"}
)

// PayloadError is a failure captured inside a worker and delivered to the
// caller through the same path as a successful result. The coordinator and
// sibling workers are unaffected.
type PayloadError struct {
	Description string
}

func (e *PayloadError) Error() string {
	return e.Description
}
