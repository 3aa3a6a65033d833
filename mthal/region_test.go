package mthal

import (
	"testing"

	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRegionValidate(t *testing.T) {
	tests := []struct {
		name   string
		region FlashRegion
		flash  uint32
		ok     bool
	}{
		{"inside", FlashRegion{Start: 0, Length: 0x1000}, 0x1000, true},
		{"unknown size", FlashRegion{Start: 0x100000, Length: 0x10}, 0, true},
		{"empty", FlashRegion{Start: 0, Length: 0}, 0x1000, false},
		{"past end", FlashRegion{Start: 0xfff, Length: 2}, 0x1000, false},
		{"wraps", FlashRegion{Start: 0xffffff00, Length: 0x200}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate(tt.flash)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrorRegionRange)
			}
		})
	}
}

func TestMemoryRegionList(t *testing.T) {
	d := newFakeDevice(0x1000)
	s := connectFake(t, d, testConfig())

	assert.Contains(t, s.MemoryRegionList(), MemoryRegionRAM)
	assert.NotNil(t, s.MemoryRegionGet("ram"))
	assert.Nil(t, s.MemoryRegionGet("nope"))

	d = newFakeDevice(0x1000)
	s = startAgent(t, d, testConfig())

	assert.Equal(t, []MemoryRegionNameType{MemoryRegionFLASH, MemoryRegionHEADER, MemoryRegionFIRSTBLOCK}, s.MemoryRegionList())
	assert.Nil(t, s.MemoryRegionGet(MemoryRegionRAM))
	assert.Equal(t, 0x1000, s.MemoryRegionGet(MemoryRegionFLASH).GetLength())
}

func TestHeaderRegion(t *testing.T) {
	d := newFakeDevice(0x1000)
	s := connectFake(t, d, testConfig())

	header := s.MemoryRegionGet(MemoryRegionHEADER)
	require.NotNil(t, header)
	assert.Equal(t, fwimage.HeaderSize, header.GetLength())

	parent, offset := RecursiveGetParentAddress(header, 0x10)
	assert.Equal(t, MemoryRegionFLASH, parent.GetName())
	assert.Equal(t, 0x10, offset)

	/* Reads are clipped to the region */
	buf := make([]byte, 0x40)
	n, err := header.Access(false, fwimage.HeaderSize-0x10, buf)
	require.NoError(t, err)
	assert.Equal(t, 0x10, n)
	assert.Equal(t, d.flash[fwimage.HeaderSize-0x10:fwimage.HeaderSize], buf[:n])

	_, err = header.Access(true, 0, []byte{1})
	assert.ErrorIs(t, err, ErrorWriteNotAllowed)
}

func TestRAMRegion(t *testing.T) {
	d := newFakeDevice(0x1000)
	s := connectFake(t, d, testConfig())

	ram := s.MemoryRegionGet(MemoryRegionRAM)
	require.NotNil(t, ram)

	data := make([]byte, 0x104)
	for i := range data {
		data[i] = byte(i ^ 0x5a)
	}

	n, err := ram.Access(true, 0x2000, data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	readback := make([]byte, len(data))
	n, err = ram.Access(false, 0x2000, readback)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, readback)

	_, err = ram.Access(true, 0x2001, data[:4])
	assert.ErrorIs(t, err, ErrorAlignment)
	_, err = ram.Access(true, 0x2000, data[:3])
	assert.ErrorIs(t, err, ErrorAlignment)

	rom := s.MemoryRegionGet(MemoryRegionROM)
	_, err = rom.Access(true, 0, data[:4])
	assert.ErrorIs(t, err, ErrorWriteNotAllowed)
}

func TestRegionWindowChunks(t *testing.T) {
	mem := make([]byte, 0x40)
	for i := range mem {
		mem[i] = byte(i)
	}

	var transfers [][2]int
	root := regionMakeRoot("MEM", len(mem), 4, 0x10, func(write bool, addr int, buf []byte) error {
		transfers = append(transfers, [2]int{addr, len(buf)})
		if write {
			copy(mem[addr:], buf)
		} else {
			copy(buf, mem[addr:])
		}
		return nil
	})

	buf := make([]byte, 0x30)
	n, err := root.Access(false, 0x18, buf)
	require.NoError(t, err)
	assert.Equal(t, 0x28, n)
	assert.Equal(t, mem[0x18:], buf[:n])
	assert.Equal(t, [][2]int{{0x18, 0x10}, {0x28, 0x10}, {0x38, 0x8}}, transfers)

	n, err = root.Access(false, 0x40, buf)
	assert.NoError(t, err)
	assert.Zero(t, n)

	inner := regionWrapPartial("INNER", regionWrapPartial("OUTER", root, 0x10, 0x20), 0x8, 0x10)
	assert.Equal(t, 4, inner.GetAlignment())

	transfers = nil
	n, err = inner.Access(true, 0x4, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88})
	require.NoError(t, err)
	assert.Equal(t, 0xc, n)
	assert.Equal(t, [][2]int{{0x1c, 0xc}}, transfers)
	assert.Equal(t, byte(0xaa), mem[0x1c])
	assert.Equal(t, byte(0x66), mem[0x27])
	assert.Equal(t, byte(0x28), mem[0x28])

	parent, offset := RecursiveGetParentAddress(inner, 0x4)
	assert.Equal(t, MemoryRegionNameType("MEM"), parent.GetName())
	assert.Equal(t, 0x1c, offset)

	parent, offset = RecursiveGetParentAddress(root, 0x4)
	assert.Equal(t, MemoryRegionNameType("MEM"), parent.GetName())
	assert.Equal(t, 0x4, offset)
}

func TestRegionWindowError(t *testing.T) {
	failAt := 0x20
	root := regionMakeRoot("MEM", 0x100, 1, 0x10, func(write bool, addr int, buf []byte) error {
		if addr == failAt {
			return ErrorTimeout
		}
		return nil
	})

	n, err := root.Access(false, 0, make([]byte, 0x40))
	assert.ErrorIs(t, err, ErrorTimeout)
	assert.Equal(t, 0x20, n)
}
