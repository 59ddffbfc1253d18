package download

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousFreshness is returned when neither size nor modification time of an existing
	// local file can be compared with the remote.
	ErrAmbiguousFreshness = errors.New("cannot determine whether local file is up to date: neither size nor modification time is comparable")
	ErrUnknownSize        = errors.New("unable to determine file size")
	ErrRangeNotSupported  = errors.New("server ignored range request")
	ErrShortRead          = errors.New("response ended before the end of the requested range")
)

type HTTPStatusError struct {
	StatusCode int
}

func ErrUnexpectedHTTPStatus(statusCode int) error {
	return HTTPStatusError{StatusCode: statusCode}
}

var _ error = HTTPStatusError{}

func (c HTTPStatusError) Error() string {
	return fmt.Sprintf("Status code %d", c.StatusCode)
}
