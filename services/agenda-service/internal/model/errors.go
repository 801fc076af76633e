package model

// RemoteError is returned by appointment stores when an update is rejected or cannot be
// delivered. Message is a human readable reason and may be empty.
type RemoteError struct {
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "remote store error"
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
