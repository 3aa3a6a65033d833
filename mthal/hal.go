package mthal

import (
	"time"
)

type LogFunc func(level int, format string, param ...interface{})

/* ProgressFunc is called at chunk boundaries, op is "agent", "read" or "write" */
type ProgressFunc func(op string, done int, total int)

type Config struct {
	/* The boot ROM does not go above 115200, only the agent does */
	BootBaud  int
	NMEABaud  int
	AgentBaud int
	DTRReset  bool

	/* Time given to the firmware to reboot into the boot ROM */
	EntryDelay time.Duration

	HandshakeAttempts int
	HandshakeTimeout  time.Duration
	ReadTimeout       time.Duration
	AgentBootTimeout  time.Duration
	EraseTimeout      time.Duration

	FrameRetries int
	ReadRetries  int

	MTU           int
	SectorSize    int
	FlashSize     int
	ExplicitErase bool

	LogFunc  LogFunc
	Progress ProgressFunc
}

var nmeaBaudRates = []int{115200, 57600, 38400, 19200, 14400, 9600, 4800}

func DefaultConfig() Config {
	return Config{
		BootBaud: 115200,

		EntryDelay: 100 * time.Millisecond,

		HandshakeAttempts: 2000,
		HandshakeTimeout:  5 * time.Millisecond,
		ReadTimeout:       time.Second,
		AgentBootTimeout:  2 * time.Second,
		EraseTimeout:      10 * time.Second,

		FrameRetries: 3,
		ReadRetries:  3,

		MTU:        0x100,
		SectorSize: 0x10000,
		FlashSize:  0x100000,
	}
}

type HandshakeState int

const (
	HandshakeIdle HandshakeState = iota
	HandshakeProbing
	HandshakeSyncAcked
	HandshakeFailed
)

func (h HandshakeState) String() string {
	switch h {
	case HandshakeIdle:
		return "idle"
	case HandshakeProbing:
		return "probing"
	case HandshakeSyncAcked:
		return "sync-acked"
	case HandshakeFailed:
		return "failed"
	}
	return "unknown"
}

// Session is one dump or update run. It owns the transport and all protocol
// state: handshake state, current baud rate and whether the download agent
// is executing. A Session is not reusable once closed.
type Session struct {
	t      Transport
	config Config

	state        HandshakeState
	baud         int
	agentRunning bool
	agent        AgentInfo

	closed bool
}

func New(t Transport, config Config) *Session {
	if config.BootBaud <= 0 || config.BootBaud > 115200 {
		config.BootBaud = 115200
	}
	/* Chunks are whole words, anything below one word falls back to the default */
	config.MTU &^= 3
	if config.MTU < 4 {
		config.MTU = 0x100
	}
	if config.SectorSize <= 0 {
		config.SectorSize = 0x10000
	}
	if config.HandshakeAttempts <= 0 {
		config.HandshakeAttempts = 1
	}

	return &Session{
		t:      t,
		config: config,
	}
}

func (s *Session) State() HandshakeState {
	return s.state
}

func (s *Session) Baud() int {
	return s.baud
}

func (s *Session) AgentRunning() bool {
	return s.agentRunning
}

func (s *Session) Config() Config {
	return s.config
}

/* Close resets the module as well as possible and releases the transport.
 * A failed reset is only a warning, the link goes away regardless. */
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	if s.agentRunning {
		if err := s.Restart(); err != nil {
			s.logf(0, "Failed to restart device: %v", err)
		}
	} else if s.state == HandshakeSyncAcked {
		s.logf(0, "Device is left in boot ROM mode, please reset it manually")
	}

	s.closed = true
	return s.t.Close()
}

func (s *Session) checkOpen() error {
	if s.closed {
		return ErrorClosed
	}
	return nil
}

func (s *Session) logf(level int, format string, param ...interface{}) {
	if s.config.LogFunc != nil {
		s.config.LogFunc(level, format, param...)
	}
}

func (s *Session) progress(op string, done int, total int) {
	if s.config.Progress != nil {
		s.config.Progress(op, done, total)
	}
}
