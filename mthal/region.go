package mthal

import "fmt"

// FlashRegion is a span of flash offsets. Length is never zero and the
// region has to fit inside the flash once its size is known.
type FlashRegion struct {
	Start  uint32
	Length uint32
}

func (r FlashRegion) End() uint32 {
	return r.Start + r.Length
}

/* flashSize 0 means the size is not known yet */
func (r FlashRegion) Validate(flashSize uint32) error {
	if r.Length == 0 {
		return fmt.Errorf("%w: empty region", ErrorRegionRange)
	}
	if r.End() < r.Start {
		return fmt.Errorf("%w: region wraps around", ErrorRegionRange)
	}
	if flashSize > 0 && r.End() > flashSize {
		return fmt.Errorf("%w: 0x%06x-0x%06x, flash is 0x%06x bytes", ErrorRegionRange, r.Start, r.End(), flashSize)
	}
	return nil
}

type MemoryRegionNameType string

const (
	MemoryRegionFLASH      MemoryRegionNameType = "FLASH"
	MemoryRegionHEADER     MemoryRegionNameType = "HEADER"
	MemoryRegionFIRSTBLOCK MemoryRegionNameType = "FIRSTBLOCK"
	MemoryRegionRAM        MemoryRegionNameType = "RAM"
	MemoryRegionREGS       MemoryRegionNameType = "REGS"
	MemoryRegionROM        MemoryRegionNameType = "ROM"
)

type MemoryRegion interface {
	GetLength() int
	Access(write bool, addr int, buf []byte) (int, error)
	GetParent() (MemoryRegion, int)
	GetName() MemoryRegionNameType
	GetAlignment() int
}

/* regionWindow is a named view of length bytes. A root window moves data
 * with access, a nested one forwards to parent at offset. Every access is
 * clipped to the window and a root splits it into transfers of at most chunk
 * bytes, so callers always get everything that fits in one call. */
type regionWindow struct {
	name   MemoryRegionNameType
	length int

	parent MemoryRegion
	offset int

	access func(write bool, addr int, buf []byte) error
	align  int
	chunk  int
}

func regionMakeRoot(name MemoryRegionNameType, length int, align int, chunk int, access func(write bool, addr int, buf []byte) error) MemoryRegion {
	return regionWindow{
		name:   name,
		length: length,
		access: access,
		align:  align,
		chunk:  chunk,
	}
}

func regionWrapPartial(name MemoryRegionNameType, parent MemoryRegion, offset int, length int) MemoryRegion {
	return regionWindow{
		name:   name,
		length: length,
		parent: parent,
		offset: offset,
	}
}

func (w regionWindow) GetName() MemoryRegionNameType {
	return w.name
}

func (w regionWindow) GetLength() int {
	return w.length
}

func (w regionWindow) GetParent() (MemoryRegion, int) {
	return w.parent, w.offset
}

func (w regionWindow) GetAlignment() int {
	if w.parent != nil {
		return w.parent.GetAlignment()
	}
	return w.align
}

func (w regionWindow) Access(write bool, addr int, buf []byte) (int, error) {
	if addr < 0 || addr >= w.length {
		return 0, nil
	}
	if len(buf) > w.length-addr {
		buf = buf[:w.length-addr]
	}
	if w.parent != nil {
		return w.parent.Access(write, w.offset+addr, buf)
	}

	if addr%w.align != 0 {
		return 0, ErrorAlignment
	}
	if write && len(buf)%w.align != 0 {
		return 0, fmt.Errorf("%w: data length %d", ErrorAlignment, len(buf))
	}

	done := 0
	for done < len(buf) {
		n := len(buf) - done
		if w.chunk > 0 && n > w.chunk {
			n = w.chunk
		}
		if err := w.access(write, addr+done, buf[done:done+n]); err != nil {
			return done, err
		}
		done += n
	}
	return done, nil
}

// RecursiveGetParentAddress follows the parents of region up to the root and
// returns it together with the root address of offset.
func RecursiveGetParentAddress(region MemoryRegion, offset int) (MemoryRegion, int) {
	for {
		parent, at := region.GetParent()
		if parent == nil {
			return region, offset
		}
		region, offset = parent, offset+at
	}
}
