package mthal

import (
	"encoding/binary"
	"fmt"
)

/* Memory map as seen from the boot ROM */
const (
	BaseAddrRAM      = 0x00000000
	BaseAddrAgent    = 0x00000c00
	BaseAddrFirmware = 0x20000000
	BaseAddrRegs     = 0x80000000
	BaseAddrROM      = 0xa0000000
)

/* Boot ROM opcodes. Every byte sent to the ROM is echoed. */
const (
	bromCmdWrite16  = 0xa1
	bromCmdRead16   = 0xa2
	bromCmdChecksum = 0xa4
	bromCmdJump     = 0xa8
	bromCmdRead32   = 0xaf
)

/* Download agent opcodes and control characters */
const (
	agentCmdSetBaud = 0xd2
	agentCmdMem     = 0xd3
	agentCmdFormat  = 0xd4
	agentCmdWrite   = 0xd5
	agentCmdRead    = 0xd6
	agentCmdFinish  = 0xd9

	agentACK      = 0x5a
	agentNAK      = 0xa5
	agentCont     = 0x69
	agentSyncChar = 0xc0

	agentBaudStart = 0xcc
	agentBaudDone  = 0xaa

	agentVersion    = 0x0400
	agentReportLen  = 20
	agentFooterSize = 2
)

var handshakeSequence = []byte{0xa0, 0x0a, 0x50, 0x05}

const pmtkEnterBootROM = "$PMTK180*3B\r\n"

// Frame is a single host to device command: an opcode followed by its
// big endian parameters.
type Frame struct {
	Opcode  byte
	Payload []byte
}

func (f Frame) Bytes() []byte {
	out := make([]byte, 0, 1+len(f.Payload))
	out = append(out, f.Opcode)
	return append(out, f.Payload...)
}

func frameMake(opcode byte, params ...uint32) Frame {
	payload := make([]byte, 0, 4*len(params))
	for _, p := range params {
		payload = binary.BigEndian.AppendUint32(payload, p)
	}
	return Frame{Opcode: opcode, Payload: payload}
}

/* Data packets travel as payload followed by a big endian SUM16 footer */
func packetEncode(data []byte) []byte {
	out := make([]byte, 0, len(data)+agentFooterSize)
	out = append(out, data...)
	return binary.BigEndian.AppendUint16(out, Sum16(data))
}

func packetDecode(in []byte, expectLen int) ([]byte, error) {
	if len(in) != expectLen+agentFooterSize {
		return nil, fmt.Errorf("%w: length %d, expected %d", ErrorMalformedFrame, len(in), expectLen+agentFooterSize)
	}

	data := in[:expectLen]
	footer := binary.BigEndian.Uint16(in[expectLen:])
	if sum := Sum16(data); sum != footer {
		return nil, fmt.Errorf("%w: checksum %04x != %04x", ErrorMalformedFrame, sum, footer)
	}
	return data, nil
}

/* The boot ROM transfers words most significant byte first, flash and RAM
 * hold them little endian. */
func swapBytes(buf []byte, width int) []byte {
	out := make([]byte, len(buf))
	for i := 0; i+width <= len(buf); i += width {
		for j := 0; j < width; j++ {
			out[i+j] = buf[i+width-1-j]
		}
	}
	return out
}
