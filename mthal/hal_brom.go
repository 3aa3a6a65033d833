package mthal

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Connect drops the module out of NMEA mode into its boot ROM and runs the
// sync handshake. On success the session is in HandshakeSyncAcked.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.state != HandshakeIdle {
		return fmt.Errorf("handshake already ran (%s)", s.state)
	}

	if err := s.enterBootROM(); err != nil {
		return err
	}

	return s.handshake(ctx)
}

func (s *Session) enterBootROM() error {
	if s.config.DTRReset {
		d, ok := s.t.(dtrSetter)
		if !ok {
			return ErrorMissingFunction
		}
		if err := d.SetDTR(true); err != nil {
			return err
		}
		if err := d.SetDTR(false); err != nil {
			return err
		}
		s.logf(2, "Toggled DTR to reset device")
	} else {
		rates := nmeaBaudRates
		if s.config.NMEABaud > 0 {
			rates = []int{s.config.NMEABaud}
		}

		for _, rate := range rates {
			err := s.t.SetBaud(rate)
			if err == nil {
				err = s.t.Write([]byte(pmtkEnterBootROM))
			}
			if err != nil {
				/* When sweeping, a rate the adapter does not like is not fatal */
				if len(rates) == 1 {
					return err
				}
				s.logf(2, "Skipping %d baud: %v", rate, err)
				continue
			}
			s.logf(2, "Sent boot ROM request at %d baud", rate)
			time.Sleep(s.config.EntryDelay)
		}
	}

	if err := s.t.SetBaud(s.config.BootBaud); err != nil {
		return err
	}
	s.baud = s.config.BootBaud

	return s.t.Flush()
}

func (s *Session) handshake(ctx context.Context) error {
	s.state = HandshakeProbing

	for attempt := 1; attempt <= s.config.HandshakeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			s.state = HandshakeFailed
			return err
		}

		ok, err := s.handshakeAttempt()
		if err != nil {
			s.state = HandshakeFailed
			return err
		}
		if ok {
			s.state = HandshakeSyncAcked
			s.logf(1, "Boot ROM answered after %d attempts", attempt)
			return nil
		}
	}

	s.state = HandshakeFailed
	return &ProtocolError{
		Op:  "handshake",
		Err: fmt.Errorf("%w after %d attempts", ErrorHandshakeTimeout, s.config.HandshakeAttempts),
	}
}

/* The ROM answers each sync byte with its complement. A silent device
 * costs exactly one HandshakeTimeout per attempt. */
func (s *Session) handshakeAttempt() (bool, error) {
	for i, b := range handshakeSequence {
		if err := s.t.Write([]byte{b}); err != nil {
			return false, err
		}

		timeout := s.config.HandshakeTimeout
		if i > 0 {
			timeout = s.config.ReadTimeout
		}

		in, err := s.t.ReadExact(1, timeout)
		if err != nil {
			if isTimeout(err) {
				return false, nil
			}
			return false, err
		}

		if in[0] != ^b {
			s.logf(3, "Sync byte %02x answered with %02x", b, in[0])
			return false, nil
		}
	}

	return true, nil
}

func (s *Session) bromReady() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.state != HandshakeSyncAcked || s.agentRunning {
		return ErrorMissingFunction
	}
	return nil
}

func (s *Session) bromCheckedWrite(data []byte) error {
	if err := s.t.Write(data); err != nil {
		return err
	}

	echo, err := s.t.ReadExact(len(data), s.config.ReadTimeout)
	if err != nil {
		return err
	}

	s.logf(3, "BROM out: %x", data)
	if !bytes.Equal(echo, data) {
		return fmt.Errorf("%w: echo %x != %x", ErrorInvalidResponse, echo, data)
	}
	return nil
}

func (s *Session) bromRead32(addr uint32, length int) ([]byte, error) {
	if addr%4 != 0 || length%4 != 0 {
		return nil, ErrorAlignment
	}

	if err := s.bromCheckedWrite(frameMake(bromCmdRead32, addr, uint32(length/4)).Bytes()); err != nil {
		return nil, err
	}

	return s.t.ReadExact(length, s.config.ReadTimeout)
}

func (s *Session) bromChecksum(addr uint32, length int) (uint16, error) {
	if addr%2 != 0 || length%2 != 0 {
		return 0, ErrorAlignment
	}

	if err := s.bromCheckedWrite(frameMake(bromCmdChecksum, addr, uint32(length/2)).Bytes()); err != nil {
		return 0, err
	}

	in, err := s.t.ReadExact(2, s.config.ReadTimeout)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(in), nil
}

/* data is sent as is, callers do the byte swapping */
func (s *Session) bromWrite16(addr uint32, data []byte) error {
	if addr%2 != 0 || len(data)%2 != 0 {
		return ErrorAlignment
	}

	if err := s.bromCheckedWrite(frameMake(bromCmdWrite16, addr, uint32(len(data)/2)).Bytes()); err != nil {
		return err
	}

	/* The ROM echoes the data as well, keep pieces small so it never overruns */
	for work := data; len(work) > 0; {
		n := len(work)
		if n > 10 {
			n = 10
		}
		if err := s.bromCheckedWrite(work[:n]); err != nil {
			return err
		}
		work = work[n:]
	}

	sum, err := s.bromChecksum(addr, len(data))
	if err != nil {
		return err
	}
	if local := XOR16(data); sum != local {
		return fmt.Errorf("%w: checksum %04x != %04x", ErrorInvalidResponse, sum, local)
	}
	return nil
}

func (s *Session) bromJump(addr uint32) error {
	if addr%4 != 0 {
		return ErrorAlignment
	}
	return s.bromCheckedWrite(frameMake(bromCmdJump, addr).Bytes())
}

/* bromRead reads memory through the ROM, checks it against the ROM checksum
 * and returns it in memory byte order. */
func (s *Session) bromRead(addr uint32, length int) ([]byte, error) {
	var lastErr error
	for try := 0; try <= s.config.ReadRetries; try++ {
		if try > 0 {
			s.logf(1, "Retrying read at %08x: %v", addr, lastErr)
			if err := s.t.Flush(); err != nil {
				return nil, err
			}
		}

		raw, err := s.bromRead32(addr, length)
		if err == nil {
			var sum uint16
			sum, err = s.bromChecksum(addr, length)
			if err == nil {
				local := XOR16(raw)
				if local == sum {
					return swapBytes(raw, 4), nil
				}
				err = fmt.Errorf("%w: checksum %04x != %04x", ErrorReadVerifyFailed, local, sum)
			}
		}

		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}

	if errors.Is(lastErr, ErrorReadVerifyFailed) {
		return nil, lastErr
	}
	return nil, &ProtocolError{Op: fmt.Sprintf("read %08x", addr), Err: lastErr}
}

func retryable(err error) bool {
	return isTimeout(err) ||
		errors.Is(err, ErrorInvalidResponse) ||
		errors.Is(err, ErrorMalformedFrame) ||
		errors.Is(err, ErrorNoAck) ||
		errors.Is(err, ErrorReadVerifyFailed)
}
