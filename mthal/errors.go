package mthal

import (
	"errors"
	"fmt"
)

var (
	ErrorTimeout           = errors.New("The operation did not complete in time")
	ErrorHandshakeTimeout  = errors.New("Boot ROM did not answer the sync sequence")
	ErrorAgentBootFailed   = errors.New("Download agent did not report in")
	ErrorAgentUpload       = errors.New("Download agent upload was not acknowledged")
	ErrorMalformedFrame    = errors.New("Received malformed frame")
	ErrorInvalidResponse   = errors.New("Received invalid response")
	ErrorNoAck             = errors.New("No ACK received")
	ErrorReadVerifyFailed  = errors.New("Read verification failed")
	ErrorWriteVerifyFailed = errors.New("Write verification failed")
	ErrorRegionRange       = errors.New("Region is outside of the flash")
	ErrorAlignment         = errors.New("Address alignment has been violated")
	ErrorMissingFunction   = errors.New("This function is not supported in this mode")
	ErrorUnsupportedBaud   = errors.New("Baud rate is not supported by the download agent")
	ErrorClosed            = errors.New("Session is closed")
	ErrorWriteNotAllowed   = errors.New("Region cannot be written")
)

/* TransportError is returned for anything the serial link itself failed at.
 * It is never retried by the transport. */
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// FlashError reports a failed region operation. Data holds the chunks that
// were transferred and verified before the failure, Offset is the flash offset
// right after them, so a dump can be resumed from there.
type FlashError struct {
	Op     string
	Err    error
	Offset uint32
	Chunks int
	Data   []byte
}

func (e *FlashError) Error() string {
	switch e.Op {
	case "write":
		return fmt.Sprintf("flash write: %v at 0x%06x, %d chunks confirmed written", e.Err, e.Offset, e.Chunks)
	case "read":
		return fmt.Sprintf("flash read: %v at 0x%06x, %d chunks read (%d bytes)", e.Err, e.Offset, e.Chunks, len(e.Data))
	}
	return fmt.Sprintf("flash %s: %v at 0x%06x", e.Op, e.Err, e.Offset)
}

func (e *FlashError) Unwrap() error {
	return e.Err
}

func timeoutError(op string) error {
	return &TransportError{Op: op, Err: ErrorTimeout}
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrorTimeout)
}
