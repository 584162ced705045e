package verify

import (
	"errors"
	"fmt"
)

// RemoteError wraps a failure while talking to a remote verification
// service. Op identifies the phase that failed.
type RemoteError struct {
	URL string
	Op  string // "dial", "send", "receive"
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote verification %s failed (%s): %v", e.Op, e.URL, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemoteUnavailable reports whether err means the verification service
// could not be reached at all, as opposed to a failure mid-exchange. Callers
// use it to suggest checking the service URL or running discovery again.
func IsRemoteUnavailable(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Op == "dial"
}
