package webhook

import "fmt"

/* Error taxonomy for bridge calls
 * TransportError: the request never completed (dial failure, timeout)
 * ProtocolError: the bridge answered, but not with a parseable 200
 * DataError: a well-formed response carried an unusable field
 * All three are log-and-abort conditions for callers; none is fatal
 * and none is retried
 */

// TransportError reports a connection-level failure for a bridge call.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("webhook transport failure: %v (url=%s)", e.Err, e.URL)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a non-OK status or an unparseable response body.
type ProtocolError struct {
	URL    string
	Status int
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook protocol failure: %v (status=%d url=%s)", e.Err, e.Status, e.URL)
	}
	return fmt.Sprintf("webhook protocol failure: bad status %d (url=%s)", e.Status, e.URL)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// DataError reports a missing or malformed field in an otherwise valid
// bridge response.
type DataError struct {
	Field   string
	Payload map[string]any
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook data failure: field %q: %v (payload=%v)", e.Field, e.Err, e.Payload)
	}
	return fmt.Sprintf("webhook data failure: missing field %q (payload=%v)", e.Field, e.Payload)
}

func (e *DataError) Unwrap() error { return e.Err }
