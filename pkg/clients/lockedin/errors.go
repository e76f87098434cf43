package lockedin

import (
	"errors"
	"fmt"
)

// Operation names, also used as metric labels.
const (
	OpSignup              = "signup"
	OpUpdateReminderTimes = "update_reminder_times"
	OpGetUser             = "get_user"
	OpPing                = "ping"
)

var ErrMalformedUser = errors.New("response is not a user record")

// TransportError is any failure talking to the backend: the call never
// completed, or it answered with a non-2xx status.
type TransportError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message returns the backend's detail for err when there is one, else fallback.
func Message(err error, fallback string) string {
	var terr *TransportError
	if errors.As(err, &terr) && terr.Detail != "" {
		return terr.Detail
	}
	return fallback
}
