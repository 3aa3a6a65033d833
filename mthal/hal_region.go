package mthal

import (
	"strings"

	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
)

func (s *Session) memoryRegionFlash() MemoryRegion {
	return regionMakeRoot(MemoryRegionFLASH, s.flashSize(), 1, s.config.MTU, s.flashAccess)
}

func (s *Session) flashAccess(write bool, addr int, buf []byte) error {
	if write {
		return ErrorWriteNotAllowed
	}
	if err := s.flashReady(); err != nil {
		return err
	}

	in, err := s.readChunk(uint32(addr), len(buf))
	if err != nil {
		return err
	}
	copy(buf, in)
	return nil
}

/* Memory seen directly through the boot ROM read32/write16 commands */
func (s *Session) bromMemoryRegionMake(name MemoryRegionNameType, baseAddr uint32, length int, writable bool) MemoryRegion {
	return regionMakeRoot(name, length, 4, s.config.MTU, func(write bool, addr int, buf []byte) error {
		if write && !writable {
			return ErrorWriteNotAllowed
		}
		if err := s.bromReady(); err != nil {
			return err
		}

		if write {
			return s.bromWrite16(baseAddr+uint32(addr), swapBytes(buf, 2))
		}

		in, err := s.bromRead(baseAddr+uint32(addr), (len(buf)+3)&^3)
		if err != nil {
			return err
		}
		copy(buf, in)
		return nil
	})
}

func (s *Session) MemoryRegionList() []MemoryRegionNameType {
	list := []MemoryRegionNameType{
		MemoryRegionFLASH,
		MemoryRegionHEADER,
		MemoryRegionFIRSTBLOCK,
	}

	/* The agent owns the link once it runs, the ROM commands are gone */
	if !s.agentRunning {
		list = append(list, MemoryRegionRAM, MemoryRegionREGS, MemoryRegionROM)
	}

	return list
}

func (s *Session) MemoryRegionGet(name MemoryRegionNameType) MemoryRegion {
	t := MemoryRegionNameType(strings.ToUpper(string(name)))

	switch t {
	case MemoryRegionFLASH:
		return s.memoryRegionFlash()
	case MemoryRegionHEADER:
		return regionWrapPartial(MemoryRegionHEADER, s.memoryRegionFlash(), 0, fwimage.HeaderSize)
	case MemoryRegionFIRSTBLOCK:
		return regionWrapPartial(MemoryRegionFIRSTBLOCK, s.memoryRegionFlash(), 0, s.config.SectorSize)
	}

	if s.agentRunning {
		return nil
	}

	switch t {
	case MemoryRegionRAM:
		return s.bromMemoryRegionMake(MemoryRegionRAM, BaseAddrRAM, 0x10000, true)
	case MemoryRegionREGS:
		return s.bromMemoryRegionMake(MemoryRegionREGS, BaseAddrRegs, 0x1000, false)
	case MemoryRegionROM:
		return s.bromMemoryRegionMake(MemoryRegionROM, BaseAddrROM, 0x10000, false)
	}

	return nil
}
