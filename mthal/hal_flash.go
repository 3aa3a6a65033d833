package mthal

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
)

type ChipInfo struct {
	Chipset fwimage.Chipset

	/* Zero when the download agent is not running */
	FlashSize     uint32
	FlashDeviceID byte
	AgentVersion  uint16
}

/* knownFlashSize is only trusted when it came from the agent report */
func (s *Session) knownFlashSize() uint32 {
	if s.agentRunning {
		return s.agent.FlashSize
	}
	return 0
}

func (s *Session) flashSize() int {
	if size := s.knownFlashSize(); size > 0 {
		return int(size)
	}
	return s.config.FlashSize
}

func (s *Session) flashReady() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.state != HandshakeSyncAcked {
		return ErrorMissingFunction
	}
	return nil
}

/* readChunk returns length bytes of flash starting at offset. Without the
 * agent the flash is read through its memory mapped window, which the ROM
 * only serves in whole words. */
func (s *Session) readChunk(offset uint32, length int) ([]byte, error) {
	if s.agentRunning {
		return s.agentRead(offset, length)
	}

	start := offset &^ 3
	skip := int(offset - start)
	aligned := (skip + length + 3) &^ 3

	data, err := s.bromRead(BaseAddrFirmware+start, aligned)
	if err != nil {
		return nil, err
	}
	return data[skip : skip+length], nil
}

// ReadRegion reads a flash region in MTU sized chunks. Every chunk is
// verified before it is accepted. On failure the returned *FlashError holds
// the verified prefix and the offset to resume from.
func (s *Session) ReadRegion(ctx context.Context, region FlashRegion) (fwimage.Image, error) {
	if err := s.flashReady(); err != nil {
		return nil, err
	}
	if err := region.Validate(s.knownFlashSize()); err != nil {
		return nil, err
	}

	out := make([]byte, 0, region.Length)
	chunks := 0
	for uint32(len(out)) < region.Length {
		offset := region.Start + uint32(len(out))

		fail := func(err error) error {
			return &FlashError{Op: "read", Err: err, Offset: offset, Chunks: chunks, Data: out}
		}

		if err := ctx.Err(); err != nil {
			return nil, fail(err)
		}

		n := s.config.MTU
		if remaining := int(region.Length) - len(out); n > remaining {
			n = remaining
		}

		data, err := s.readChunk(offset, n)
		if err != nil {
			return nil, fail(err)
		}

		out = append(out, data...)
		chunks++
		s.progress("read", len(out), int(region.Length))
	}

	return fwimage.Image(out), nil
}

// WriteRegion programs image into the flash, one erase sector at a time.
// Each sector is read back and compared before the next one is touched, a
// mismatch stops the update and is never retried silently.
func (s *Session) WriteRegion(ctx context.Context, region FlashRegion, image fwimage.Image) error {
	if err := s.flashReady(); err != nil {
		return err
	}
	if !s.agentRunning {
		return fmt.Errorf("%w: writing flash needs the download agent", ErrorMissingFunction)
	}
	if err := region.Validate(s.knownFlashSize()); err != nil {
		return err
	}
	if uint32(len(image)) != region.Length {
		return fmt.Errorf("image is %d bytes but region is %d bytes", len(image), region.Length)
	}
	if region.Start%uint32(s.config.SectorSize) != 0 || len(image)%2 != 0 {
		return ErrorAlignment
	}

	sector := s.config.SectorSize
	confirmed := 0
	for pos := 0; pos < len(image); pos += sector {
		addr := region.Start + uint32(pos)

		if err := ctx.Err(); err != nil {
			return &FlashError{Op: "write", Err: err, Offset: addr, Chunks: confirmed}
		}

		end := pos + sector
		if end > len(image) {
			end = len(image)
		}
		chunk := image[pos:end]

		if err := s.agentWriteChunk(addr, chunk); err != nil {
			return &FlashError{Op: "write", Err: err, Offset: addr, Chunks: confirmed}
		}
		if err := s.verifyChunk(addr, chunk); err != nil {
			return &FlashError{Op: "write", Err: err, Offset: addr, Chunks: confirmed}
		}

		confirmed++
		s.logf(2, "Sector %06x written and verified", addr)
		s.progress("write", end, len(image))
	}

	return nil
}

func (s *Session) verifyChunk(addr uint32, data []byte) error {
	remote := NewSum16()
	for pos := 0; pos < len(data); pos += s.config.MTU {
		n := s.config.MTU
		if n > len(data)-pos {
			n = len(data) - pos
		}

		in, err := s.readChunk(addr+uint32(pos), n)
		if err != nil {
			return err
		}
		remote.Write(in)
	}

	if local := Sum16(data); local != remote.Sum16() {
		return fmt.Errorf("%w: checksum %04x, expected %04x", ErrorWriteVerifyFailed, remote.Sum16(), local)
	}
	return nil
}

// ChipInfo identifies the module with a single read of the device type
// string in the flashed header.
func (s *Session) ChipInfo(ctx context.Context) (ChipInfo, error) {
	var info ChipInfo
	if err := s.flashReady(); err != nil {
		return info, err
	}
	if err := ctx.Err(); err != nil {
		return info, err
	}

	in, err := s.readChunk(fwimage.DeviceTypeOffset, fwimage.DeviceTypeWidth)
	if err != nil {
		return info, err
	}

	if i := bytes.IndexByte(in, 0); i >= 0 {
		in = in[:i]
	}
	info.Chipset = fwimage.ChipsetFromDeviceType(string(in))
	if s.agentRunning {
		info.FlashSize = s.agent.FlashSize
		info.FlashDeviceID = s.agent.FlashDeviceID
		info.AgentVersion = s.agent.Version
	}
	return info, nil
}

// FirmwareSize returns the image length recorded in the flashed header.
func (s *Session) FirmwareSize(ctx context.Context) (uint32, error) {
	if err := s.flashReady(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	in, err := s.readChunk(fwimage.FirmwareSizeOffset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(in), nil
}

// Restart asks the download agent to reboot the module into its firmware.
func (s *Session) Restart() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.agentRunning {
		return ErrorMissingFunction
	}

	s.agentRunning = false
	if err := s.t.Write([]byte{agentCmdFinish}); err != nil {
		return err
	}
	s.logf(1, "Device restarted")
	return nil
}
