package mthal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

/* stubPort replays canned reads. An empty read waits out the read timeout
 * and returns (0, nil), the way go.bug.st/serial reports a quiet line. */
type stubPort struct {
	serial.Port

	reads   [][]byte
	readErr error
	timeout time.Duration

	written  []byte
	maxWrite int
	drained  int
	flushed  int
	modes    []serial.Mode
	modeErr  error
	closed   bool
}

func (p *stubPort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *stubPort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.reads) == 0 {
		time.Sleep(p.timeout)
		return 0, nil
	}

	n := copy(b, p.reads[0])
	p.reads[0] = p.reads[0][n:]
	if len(p.reads[0]) == 0 {
		p.reads = p.reads[1:]
	}
	return n, nil
}

func (p *stubPort) Write(b []byte) (int, error) {
	if p.maxWrite > 0 && len(b) > p.maxWrite {
		b = b[:p.maxWrite]
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *stubPort) Drain() error {
	p.drained++
	return nil
}

func (p *stubPort) ResetInputBuffer() error {
	p.flushed++
	return nil
}

func (p *stubPort) SetMode(mode *serial.Mode) error {
	if p.modeErr != nil {
		return p.modeErr
	}
	p.modes = append(p.modes, *mode)
	return nil
}

func (p *stubPort) Close() error {
	p.closed = true
	return nil
}

func newStubTransport(p *stubPort, settle time.Duration) *SerialTransport {
	return &SerialTransport{port: p, name: "stub", baud: 115200, settle: settle}
}

func TestSerialReadExact(t *testing.T) {
	p := &stubPort{reads: [][]byte{{1, 2}, {3}, {4, 5, 6}}}
	s := newStubTransport(p, 0)

	in, err := s.ReadExact(4, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, in)

	in, err = s.ReadExact(2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6}, in)
}

func TestSerialReadExactShort(t *testing.T) {
	p := &stubPort{reads: [][]byte{{0xa5, 0x5a}}}
	s := newStubTransport(p, 0)

	start := time.Now()
	in, err := s.ReadExact(4, 20*time.Millisecond)
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	/* What did arrive is handed back as is, never padded */
	assert.Equal(t, []byte{0xa5, 0x5a}, in)

	assert.ErrorIs(t, err, ErrorTimeout)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "read 2/4", transportErr.Op)
}

func TestSerialReadExactSilent(t *testing.T) {
	s := newStubTransport(&stubPort{}, 0)

	in, err := s.ReadExact(1, 5*time.Millisecond)
	assert.ErrorIs(t, err, ErrorTimeout)
	assert.Empty(t, in)
}

func TestSerialReadError(t *testing.T) {
	portErr := errors.New("device unplugged")
	s := newStubTransport(&stubPort{readErr: portErr}, 0)

	_, err := s.ReadExact(1, time.Second)
	assert.False(t, isTimeout(err))

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "read", transportErr.Op)
	assert.ErrorIs(t, err, portErr)
}

func TestSerialWrite(t *testing.T) {
	p := &stubPort{maxWrite: 3}
	s := newStubTransport(p, 0)

	require.NoError(t, s.Write([]byte{1, 2, 3, 4, 5, 6, 7}))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7}, p.written)
	assert.Equal(t, 1, p.drained)

	require.NoError(t, s.Flush())
	assert.Equal(t, 1, p.flushed)
}

func TestSerialSetBaudSettles(t *testing.T) {
	p := &stubPort{}
	s := newStubTransport(p, 30*time.Millisecond)

	start := time.Now()
	require.NoError(t, s.SetBaud(921600))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	require.Len(t, p.modes, 1)
	assert.Equal(t, 921600, p.modes[0].BaudRate)
	assert.Equal(t, 8, p.modes[0].DataBits)
	assert.Equal(t, serial.NoParity, p.modes[0].Parity)
	assert.Equal(t, serial.OneStopBit, p.modes[0].StopBits)
	assert.Equal(t, 921600, s.baud)
}

func TestSerialSetBaudFails(t *testing.T) {
	p := &stubPort{modeErr: errors.New("unsupported")}
	s := newStubTransport(p, time.Hour)

	err := s.SetBaud(921600)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "set baud 921600", transportErr.Op)
	assert.Equal(t, 115200, s.baud)
}

func TestSerialClose(t *testing.T) {
	p := &stubPort{}
	s := newStubTransport(p, 0)

	require.NoError(t, s.Close())
	assert.True(t, p.closed)
	assert.NoError(t, s.Close())
}
