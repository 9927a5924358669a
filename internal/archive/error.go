package archive

import "fmt"

// Reason classifies why an archival attempt failed.
type Reason string

const (
	ReasonNetwork     Reason = "network"
	ReasonProxyStatus Reason = "proxy-status"
	ReasonProxyDown   Reason = "proxy-down"
	ReasonBlocked     Reason = "blocked"
	ReasonIncomplete  Reason = "incomplete"
	ReasonTooLarge    Reason = "too-large"
	ReasonStorage     Reason = "storage"
	ReasonBusy        Reason = "busy"
)

// Error is a classified archival failure. Message is shown to the user.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func failure(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
