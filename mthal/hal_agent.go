package mthal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// AgentInfo is the report the download agent sends once it starts.
type AgentInfo struct {
	Version           uint16
	FlashDeviceID     byte
	FlashSize         uint32
	FlashManufacturer uint16
	FlashDevice       uint16
	FlashExt1         uint16
	FlashExt2         uint16
	ExtSRAMSize       uint32
}

var agentBaudRates = map[int]byte{
	921600: 1,
	460800: 2,
	230400: 3,
}

func parseAgentReport(in []byte) (AgentInfo, error) {
	var info AgentInfo
	if len(in) != agentReportLen {
		return info, fmt.Errorf("%w: report is %d bytes", ErrorMalformedFrame, len(in))
	}
	if in[0] != agentSyncChar {
		return info, fmt.Errorf("%w: sync char %02x", ErrorInvalidResponse, in[0])
	}

	info.Version = binary.BigEndian.Uint16(in[1:])
	info.FlashDeviceID = in[3]
	info.FlashSize = binary.BigEndian.Uint32(in[4:])
	info.FlashManufacturer = binary.BigEndian.Uint16(in[8:])
	info.FlashDevice = binary.BigEndian.Uint16(in[10:])
	info.FlashExt1 = binary.BigEndian.Uint16(in[12:])
	info.FlashExt2 = binary.BigEndian.Uint16(in[14:])
	info.ExtSRAMSize = binary.BigEndian.Uint32(in[16:])

	if info.Version != agentVersion {
		return info, fmt.Errorf("%w: unsupported agent version %04x", ErrorInvalidResponse, info.Version)
	}
	if info.FlashDeviceID == 0xff {
		return info, fmt.Errorf("%w: unsupported flash type", ErrorInvalidResponse)
	}
	return info, nil
}

func (s *Session) Agent() (AgentInfo, bool) {
	return s.agent, s.agentRunning
}

// LoadAgent copies the download agent into RAM through the boot ROM and
// starts it. Each chunk has to be echoed and checksummed correctly, any
// failure aborts the upload since a partial agent cannot be resumed.
func (s *Session) LoadAgent(ctx context.Context, payload []byte) error {
	if err := s.bromReady(); err != nil {
		return err
	}
	if len(payload) == 0 {
		return errors.New("download agent is empty")
	}

	code := payload
	if len(code)%2 != 0 {
		code = append(append([]byte{}, payload...), 0)
	}

	for offset := 0; offset < len(code); offset += s.config.MTU {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := offset + s.config.MTU
		if end > len(code) {
			end = len(code)
		}

		addr := uint32(BaseAddrAgent + offset)
		if err := s.bromWrite16(addr, swapBytes(code[offset:end], 2)); err != nil {
			return &ProtocolError{
				Op:  fmt.Sprintf("agent upload at %08x", addr),
				Err: fmt.Errorf("%w: %w", ErrorAgentUpload, err),
			}
		}
		s.progress("agent", end, len(code))
	}

	if err := s.bromJump(BaseAddrAgent); err != nil {
		return &ProtocolError{Op: "agent jump", Err: err}
	}

	report, err := s.t.ReadExact(agentReportLen, s.config.AgentBootTimeout)
	if err != nil {
		return &ProtocolError{Op: "agent boot", Err: fmt.Errorf("%w: %w", ErrorAgentBootFailed, err)}
	}

	info, err := parseAgentReport(report)
	if err != nil {
		return &ProtocolError{Op: "agent boot", Err: fmt.Errorf("%w: %w", ErrorAgentBootFailed, err)}
	}

	s.agentRunning = true
	s.agent = info
	s.logf(1, "Download agent %04x running, flash %02x size %d", info.Version, info.FlashDeviceID, info.FlashSize)

	/* The agent reports in at the boot ROM rate, switch only now */
	if s.config.AgentBaud > 0 && s.config.AgentBaud != s.baud {
		return s.agentSetBaud(s.config.AgentBaud)
	}
	return nil
}

func (s *Session) agentExpect(op string, want byte) error {
	in, err := s.t.ReadExact(1, s.config.ReadTimeout)
	if err != nil {
		return &ProtocolError{Op: op, Err: err}
	}
	if in[0] != want {
		return &ProtocolError{Op: op, Err: fmt.Errorf("%w: got %02x, expected %02x", ErrorInvalidResponse, in[0], want)}
	}
	return nil
}

func (s *Session) agentSetBaud(rate int) error {
	index, ok := agentBaudRates[rate]
	if !ok {
		return fmt.Errorf("%w: %d", ErrorUnsupportedBaud, rate)
	}

	if err := s.t.Write([]byte{agentCmdSetBaud, index, 0}); err != nil {
		return err
	}
	if err := s.agentExpect("set baud", agentACK); err != nil {
		return err
	}
	if err := s.agentExpect("set baud", agentBaudStart); err != nil {
		return err
	}

	if err := s.t.SetBaud(rate); err != nil {
		return err
	}
	s.baud = rate

	if err := s.agentExpect("set baud", agentBaudDone); err != nil {
		return err
	}

	for _, m := range []byte{agentSyncChar, agentACK} {
		if err := s.t.Write([]byte{m}); err != nil {
			return err
		}
		if err := s.agentExpect("set baud", m); err != nil {
			return err
		}
	}

	s.logf(1, "Switched to %d baud", rate)
	return nil
}

/* exchange sends a command and waits for ACK plus respLen bytes. NAKs,
 * garbage and timeouts are retried with the same command, anything else
 * from the transport is fatal. */
func (s *Session) exchange(op string, cmd []byte, respLen int, timeout time.Duration) ([]byte, error) {
	var lastErr error
	for try := 0; try <= s.config.FrameRetries; try++ {
		if try > 0 {
			s.logf(1, "%s: retry %d after %v", op, try, lastErr)
			if err := s.t.Flush(); err != nil {
				return nil, err
			}
		}

		s.logf(3, "DA out: %x", cmd)
		if err := s.t.Write(cmd); err != nil {
			return nil, err
		}

		status, err := s.t.ReadExact(1, timeout)
		if err != nil {
			if !isTimeout(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		switch status[0] {
		case agentACK:
		case agentNAK:
			lastErr = ErrorNoAck
			continue
		default:
			lastErr = fmt.Errorf("%w: status %02x", ErrorMalformedFrame, status[0])
			continue
		}

		if respLen == 0 {
			return nil, nil
		}

		resp, err := s.t.ReadExact(respLen, timeout)
		if err != nil {
			if !isTimeout(err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		return resp, nil
	}

	return nil, &ProtocolError{Op: op, Err: lastErr}
}

func (s *Session) agentRead(addr uint32, length int) ([]byte, error) {
	cmd := frameMake(agentCmdRead, addr, uint32(length)).Bytes()

	var lastErr error
	for try := 0; try <= s.config.ReadRetries; try++ {
		if try > 0 {
			s.logf(1, "Retrying read at %06x: %v", addr, lastErr)
			if err := s.t.Flush(); err != nil {
				return nil, err
			}
		}

		resp, err := s.exchange(fmt.Sprintf("read %06x", addr), cmd, length+agentFooterSize, s.config.ReadTimeout)
		if err != nil {
			return nil, err
		}

		data, err := packetDecode(resp, length)
		if err == nil {
			return data, nil
		}
		lastErr = fmt.Errorf("%w: %w", ErrorReadVerifyFailed, err)
	}

	return nil, lastErr
}

/* agentSendPacket resends a packet only when the agent NAKs it. A lost reply
 * is fatal, the agent may already have programmed the data. */
func (s *Session) agentSendPacket(op string, packet []byte) error {
	for try := 0; ; try++ {
		if err := s.t.Write(packet); err != nil {
			return err
		}

		in, err := s.t.ReadExact(1, s.config.ReadTimeout)
		if err != nil {
			if isTimeout(err) {
				return &ProtocolError{Op: op, Err: err}
			}
			return err
		}

		switch in[0] {
		case agentCont:
			return nil
		case agentNAK:
			if try >= s.config.FrameRetries {
				return &ProtocolError{Op: op, Err: ErrorNoAck}
			}
			s.logf(1, "%s: packet was rejected, resending", op)
		default:
			return &ProtocolError{Op: op, Err: fmt.Errorf("%w: status %02x", ErrorMalformedFrame, in[0])}
		}
	}
}

/* agentWriteChunk programs one erase sector worth of data. The agent erases
 * the range given by the mem block itself unless ExplicitErase is set. */
func (s *Session) agentWriteChunk(addr uint32, data []byte) error {
	op := fmt.Sprintf("write %06x", addr)

	if s.config.ExplicitErase {
		cmd := frameMake(agentCmdFormat, addr, uint32(s.config.SectorSize)).Bytes()
		if _, err := s.exchange("erase", cmd, 0, s.config.EraseTimeout); err != nil {
			return err
		}
	}

	mem := append([]byte{agentCmdMem, 1}, frameMake(0, addr, addr+uint32(len(data))-1).Payload...)
	if _, err := s.exchange("mem block", mem, 1, s.config.ReadTimeout); err != nil {
		return err
	}

	resp, err := s.exchange(op, frameMake(agentCmdWrite, uint32(s.config.MTU)).Bytes(), 1, s.config.EraseTimeout)
	if err != nil {
		return err
	}
	if resp[0] != agentACK {
		return &ProtocolError{Op: op, Err: fmt.Errorf("%w: erase answered with %02x", ErrorNoAck, resp[0])}
	}

	for offset := 0; offset < len(data); offset += s.config.MTU {
		end := offset + s.config.MTU
		if end > len(data) {
			end = len(data)
		}
		if err := s.agentSendPacket(op, packetEncode(data[offset:end])); err != nil {
			return err
		}
	}

	tail, err := s.t.ReadExact(2, s.config.ReadTimeout)
	if err != nil {
		return &ProtocolError{Op: op, Err: err}
	}
	if tail[0] != agentACK || tail[1] != agentACK {
		return &ProtocolError{Op: op, Err: fmt.Errorf("%w: trailer %x", ErrorNoAck, tail)}
	}
	return nil
}
