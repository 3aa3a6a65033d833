package mthal

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeMode int

const (
	fakeModeSync fakeMode = iota
	fakeModeBROM
	fakeModeAgent
)

/* fakeDevice simulates an MT333x boot ROM and download agent behind the
 * Transport interface. Memory is kept in device byte order (little endian),
 * the wire formats are produced from it the way the real chip does. */
type fakeDevice struct {
	mode fakeMode
	out  []byte
	rx   []byte

	ram   map[uint32]byte
	flash []byte

	/* Sync behaviour */
	silent     bool
	syncIgnore int
	syncIndex  int
	syncProbes int

	/* Agent behaviour */
	agent       []byte
	agentSilent bool
	report      AgentInfo
	memStart    uint32
	memEnd      uint32
	writeCursor uint32
	packetLen   int
	writing     bool
	writeCmds   int
	packets     int
	erases      []uint32
	restarted   bool
	pendingBaud bool

	/* Fault injection */
	brokenEcho      bool
	corruptReadOnce map[uint32]bool
	corruptRead     map[uint32]bool
	corruptBROMOnce map[uint32]bool
	corruptSector   int
	nakPacketOnce   bool
	dropContOnce    bool

	/* Bookkeeping */
	realtime bool
	bauds    []int
	closed   bool
	dtr      []bool
}

func newFakeDevice(flashSize int) *fakeDevice {
	flash := make([]byte, flashSize)
	for i := range flash {
		flash[i] = byte(i*7 + i>>8)
	}

	return &fakeDevice{
		ram:             make(map[uint32]byte),
		flash:           flash,
		corruptReadOnce: make(map[uint32]bool),
		corruptRead:     make(map[uint32]bool),
		corruptBROMOnce: make(map[uint32]bool),
		corruptSector:   -1,
		report: AgentInfo{
			Version:           agentVersion,
			FlashDeviceID:     0x01,
			FlashSize:         uint32(flashSize),
			FlashManufacturer: 0x00c2,
			FlashDevice:       0x2015,
			FlashExt1:         0x0001,
			FlashExt2:         0x0002,
			ExtSRAMSize:       0,
		},
	}
}

func agentReportBytes(info AgentInfo) []byte {
	out := []byte{agentSyncChar}
	out = binary.BigEndian.AppendUint16(out, info.Version)
	out = append(out, info.FlashDeviceID)
	out = binary.BigEndian.AppendUint32(out, info.FlashSize)
	out = binary.BigEndian.AppendUint16(out, info.FlashManufacturer)
	out = binary.BigEndian.AppendUint16(out, info.FlashDevice)
	out = binary.BigEndian.AppendUint16(out, info.FlashExt1)
	out = binary.BigEndian.AppendUint16(out, info.FlashExt2)
	return binary.BigEndian.AppendUint32(out, info.ExtSRAMSize)
}

func (d *fakeDevice) memRead(addr uint32) byte {
	if addr >= BaseAddrFirmware && addr < BaseAddrFirmware+uint32(len(d.flash)) {
		return d.flash[addr-BaseAddrFirmware]
	}
	return d.ram[addr]
}

func (d *fakeDevice) memWrite(addr uint32, value byte) {
	d.ram[addr] = value
}

func (d *fakeDevice) Write(b []byte) error {
	if d.closed {
		return ErrorClosed
	}
	for _, m := range b {
		d.receive(m)
	}
	return nil
}

func (d *fakeDevice) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if len(d.out) < n {
		d.out = nil
		if d.realtime {
			time.Sleep(timeout)
		}
		return nil, timeoutError("fake read")
	}

	result := append([]byte{}, d.out[:n]...)
	d.out = d.out[n:]
	return result, nil
}

func (d *fakeDevice) SetBaud(rate int) error {
	d.bauds = append(d.bauds, rate)
	if d.pendingBaud {
		d.pendingBaud = false
		d.out = append(d.out, agentBaudDone)
	}
	return nil
}

func (d *fakeDevice) Flush() error {
	d.out = nil
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDevice) SetDTR(dtr bool) error {
	d.dtr = append(d.dtr, dtr)
	return nil
}

func (d *fakeDevice) receive(m byte) {
	switch d.mode {
	case fakeModeSync:
		d.receiveSync(m)
	case fakeModeBROM:
		echo := m
		if d.brokenEcho {
			echo ^= 0xff
		}
		d.out = append(d.out, echo)
		d.rx = append(d.rx, m)
		d.processBROM()
	case fakeModeAgent:
		d.rx = append(d.rx, m)
		d.processAgent()
	}
}

func (d *fakeDevice) receiveSync(m byte) {
	if m == handshakeSequence[0] {
		d.syncProbes++
		if d.silent || d.syncProbes <= d.syncIgnore {
			return
		}
		d.syncIndex = 0
	}
	if d.silent {
		return
	}

	if m != handshakeSequence[d.syncIndex] {
		d.syncIndex = 0
		return
	}

	d.out = append(d.out, ^m)
	d.syncIndex++
	if d.syncIndex == len(handshakeSequence) {
		d.mode = fakeModeBROM
		d.syncIndex = 0
	}
}

/* BROM commands: opcode, BE32 address, BE32 count. A1 is followed by the
 * halfwords to write. */
func (d *fakeDevice) processBROM() {
	if len(d.rx) == 0 {
		return
	}

	op := d.rx[0]
	header := 9
	if op == bromCmdJump {
		header = 5
	}
	if len(d.rx) < header {
		return
	}

	addr := binary.BigEndian.Uint32(d.rx[1:])

	switch op {
	case bromCmdWrite16:
		count := int(binary.BigEndian.Uint32(d.rx[5:]))
		if len(d.rx) < header+2*count {
			return
		}
		data := d.rx[header : header+2*count]
		for i := 0; i < count; i++ {
			d.memWrite(addr+uint32(2*i), data[2*i+1])
			d.memWrite(addr+uint32(2*i+1), data[2*i])
		}

	case bromCmdRead32:
		count := int(binary.BigEndian.Uint32(d.rx[5:]))
		start := len(d.out)
		for i := 0; i < count; i++ {
			a := addr + uint32(4*i)
			d.out = append(d.out, d.memRead(a+3), d.memRead(a+2), d.memRead(a+1), d.memRead(a))
		}
		if d.corruptBROMOnce[addr] {
			delete(d.corruptBROMOnce, addr)
			d.out[start] ^= 0x01
		}

	case bromCmdChecksum:
		count := int(binary.BigEndian.Uint32(d.rx[5:]))
		var sum uint16
		for i := 0; i < count; i++ {
			a := addr + uint32(2*i)
			sum ^= uint16(d.memRead(a)) | uint16(d.memRead(a+1))<<8
		}
		d.out = binary.BigEndian.AppendUint16(d.out, sum)

	case bromCmdJump:
		if addr == BaseAddrAgent && !d.agentSilent && d.agentLoaded() {
			d.mode = fakeModeAgent
			d.out = append(d.out, agentReportBytes(d.report)...)
		}

	default:
		d.rx = d.rx[1:]
		return
	}

	d.rx = nil
}

func (d *fakeDevice) agentLoaded() bool {
	if d.agent == nil {
		return true
	}
	for i, m := range d.agent {
		if d.ram[BaseAddrAgent+uint32(i)] != m {
			return false
		}
	}
	return true
}

func (d *fakeDevice) processAgent() {
	if d.writing {
		d.processPacket()
		return
	}
	if len(d.rx) == 0 {
		return
	}

	need := map[byte]int{
		agentCmdSetBaud: 3,
		agentCmdMem:     10,
		agentCmdFormat:  9,
		agentCmdWrite:   5,
		agentCmdRead:    9,
		agentCmdFinish:  1,
		agentSyncChar:   1,
		agentACK:        1,
	}

	op := d.rx[0]
	n, ok := need[op]
	if !ok {
		d.rx = d.rx[1:]
		d.out = append(d.out, agentNAK)
		return
	}
	if len(d.rx) < n {
		return
	}
	cmd := d.rx[:n]
	d.rx = d.rx[n:]

	switch op {
	case agentCmdSetBaud:
		d.out = append(d.out, agentACK, agentBaudStart)
		d.pendingBaud = true

	case agentSyncChar, agentACK:
		d.out = append(d.out, op)

	case agentCmdMem:
		d.memStart = binary.BigEndian.Uint32(cmd[2:])
		d.memEnd = binary.BigEndian.Uint32(cmd[6:])
		d.out = append(d.out, agentACK, 0x00)

	case agentCmdFormat:
		addr := binary.BigEndian.Uint32(cmd[1:])
		length := binary.BigEndian.Uint32(cmd[5:])
		for i := addr; i < addr+length && int(i) < len(d.flash); i++ {
			d.flash[i] = 0xff
		}
		d.erases = append(d.erases, addr)
		d.out = append(d.out, agentACK)

	case agentCmdWrite:
		d.packetLen = int(binary.BigEndian.Uint32(cmd[1:]))
		for i := d.memStart; i <= d.memEnd; i++ {
			d.flash[i] = 0xff
		}
		d.writeCursor = d.memStart
		d.writing = true
		d.out = append(d.out, agentACK, agentACK)

	case agentCmdRead:
		addr := binary.BigEndian.Uint32(cmd[1:])
		length := binary.BigEndian.Uint32(cmd[5:])
		data := append([]byte{}, d.flash[addr:addr+length]...)
		footer := Sum16(data)
		if d.corruptReadOnce[addr] || d.corruptRead[addr] {
			delete(d.corruptReadOnce, addr)
			data[0] ^= 0x01
		}
		d.out = append(d.out, agentACK)
		d.out = append(d.out, data...)
		d.out = binary.BigEndian.AppendUint16(d.out, footer)

	case agentCmdFinish:
		d.restarted = true
	}
}

func (d *fakeDevice) processPacket() {
	remaining := int(d.memEnd-d.writeCursor) + 1
	n := d.packetLen
	if n > remaining {
		n = remaining
	}
	if len(d.rx) < n+agentFooterSize {
		return
	}

	packet := d.rx[:n+agentFooterSize]
	d.rx = d.rx[n+agentFooterSize:]
	d.packets++

	data, err := packetDecode(packet, n)
	if err != nil || d.nakPacketOnce {
		d.nakPacketOnce = false
		d.out = append(d.out, agentNAK)
		return
	}

	sector := d.writeCmds
	copy(d.flash[d.writeCursor:], data)
	if sector == d.corruptSector {
		d.flash[d.writeCursor] ^= 0x80
	}
	d.writeCursor += uint32(n)
	if d.dropContOnce {
		d.dropContOnce = false
		return
	}
	d.out = append(d.out, agentCont)

	if d.writeCursor > d.memEnd {
		d.writing = false
		d.writeCmds++
		d.out = append(d.out, agentACK, agentACK)
	}
}

func testConfig() Config {
	config := DefaultConfig()
	config.NMEABaud = 9600
	config.EntryDelay = 0
	config.HandshakeAttempts = 20
	config.HandshakeTimeout = time.Millisecond
	config.ReadTimeout = 10 * time.Millisecond
	config.AgentBootTimeout = 10 * time.Millisecond
	config.EraseTimeout = 10 * time.Millisecond
	config.SectorSize = 0x400
	config.MTU = 0x80
	return config
}

func testAgentPayload() []byte {
	payload := make([]byte, 301)
	for i := range payload {
		payload[i] = byte(0x30 + i%71)
	}
	return payload
}

func connectFake(t *testing.T, d *fakeDevice, config Config) *Session {
	t.Helper()

	s := New(d, config)
	require.NoError(t, s.Connect(context.Background()))
	require.Equal(t, HandshakeSyncAcked, s.State())
	return s
}

func startAgent(t *testing.T, d *fakeDevice, config Config) *Session {
	t.Helper()

	payload := testAgentPayload()
	d.agent = append(append([]byte{}, payload...), 0)

	s := connectFake(t, d, config)
	require.NoError(t, s.LoadAgent(context.Background(), payload))
	require.True(t, s.AgentRunning())
	return s
}
