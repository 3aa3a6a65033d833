package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BertoldVdb/mt-tools/mthal"
	"github.com/inancgumus/screen"
)

type MEMIOListRegions struct {
}

func (l *MEMIOListRegions) Run(c *Context) error {
	var regions []mthal.MemoryRegion
	for _, m := range c.session.MemoryRegionList() {
		regions = append(regions, c.session.MemoryRegionGet(m))
	}

	mode := "boot ROM"
	if c.session.AgentRunning() {
		mode = "download agent"
	}
	fmt.Printf("Region       |     Length | Parent (%s)\n", mode)

	for _, m := range regions {
		fmt.Printf("%-13s| %10s |", m.GetName(), humanBytes(uint32(m.GetLength())))
		if p, _ := m.GetParent(); p != nil {
			root, offset := mthal.RecursiveGetParentAddress(m, 0)
			fmt.Printf(" %s.%06X", root.GetName(), offset)
		}
		fmt.Printf("\n")
	}
	return nil
}

type Region struct {
	Region string `arg name:"region" help:"Memory region to access."`
	Addr   int    `arg name:"addr" help:"Address to access." type:"int"`
}

func (r Region) get(c *Context) (mthal.MemoryRegion, error) {
	region := c.session.MemoryRegionGet(mthal.MemoryRegionNameType(r.Region))
	if region == nil {
		return nil, fmt.Errorf("Invalid memory region %q", r.Region)
	}
	return region, nil
}

type MEMIOReadCmd struct {
	Loop     int    `optional help:"0=Perform once, 1=Mark changes since start, 2=Mark changes since previous iteration."`
	Filename string `optional help:"File to write dump to."`

	Region Region `embed`
	Amount int    `arg name:"amount" help:"Number of bytes to read, omit for the rest of the region." optional default:"0" type:"int"`
}

/* changeMarks flags bytes that differ from the previous read. With
 * accumulate set a flag stays until the command exits. */
type changeMarks struct {
	accumulate bool
	prev       []byte
	mark       []bool
}

func (m *changeMarks) update(buf []byte) []bool {
	if !m.accumulate || len(m.mark) != len(buf) {
		m.mark = make([]bool, len(buf))
	}
	for i := range buf {
		if i < len(m.prev) && buf[i] != m.prev[i] {
			m.mark[i] = true
		}
	}
	m.prev = buf
	return m.mark
}

func (l *MEMIOReadCmd) read(region mthal.MemoryRegion) ([]byte, error) {
	buf := make([]byte, l.Amount)
	n, err := region.Access(false, l.Region.Addr, buf)
	if err != nil {
		return nil, fmt.Errorf("Read error: %w", err)
	}
	return buf[:n], nil
}

func (l *MEMIOReadCmd) Run(c *Context) error {
	if l.Loop < 0 || l.Loop > 2 {
		return errors.New("Loop flag out of range")
	}

	region, err := l.Region.get(c)
	if err != nil {
		return err
	}

	if l.Amount == 0 {
		l.Amount = region.GetLength() - l.Region.Addr
	}
	if l.Amount <= 0 {
		return errors.New("Address is outside of the region")
	}

	buf, err := l.read(region)
	if err != nil {
		return err
	}
	if l.Filename != "" {
		return os.WriteFile(l.Filename, buf, 0644)
	}
	if l.Loop == 0 {
		fmt.Println(hexdump(l.Region.Addr, buf, nil))
		return nil
	}

	marks := changeMarks{accumulate: l.Loop == 1}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		screen.Clear()
		screen.MoveTopLeft()
		fmt.Println(hexdump(l.Region.Addr, buf, marks.update(buf)))

		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		case <-ticker.C:
		}

		if buf, err = l.read(region); err != nil {
			return err
		}
	}
}

type MEMIOWriteFileCmd struct {
	Region   Region `embed`
	Filename string `arg name:"filename" help:"File to read data from."`

	Verify bool `optional name:"verify" help:"Read and verify written file."`
}

func (w MEMIOWriteFileCmd) Run(c *Context) error {
	data, err := os.ReadFile(w.Filename)
	if err != nil {
		return err
	}

	region, err := w.Region.get(c)
	if err != nil {
		return err
	}

	n, err := region.Access(true, w.Region.Addr, data)
	if n > 0 {
		fmt.Printf("Wrote %d bytes to %s:%06x.\n", n, w.Region.Region, w.Region.Addr)
	}
	if err != nil {
		return err
	}

	if w.Verify {
		readback := make([]byte, len(data))
		if _, err := region.Access(false, w.Region.Addr, readback); err != nil {
			return err
		}

		if !bytes.Equal(readback, data) {
			return fmt.Errorf("%w: memory differs from %s", mthal.ErrorWriteVerifyFailed, w.Filename)
		}

		fmt.Println("Verification OK.")
	}

	return nil
}
