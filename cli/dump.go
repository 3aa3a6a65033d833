package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BertoldVdb/mt-tools/mthal"
	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
)

type DumpCmd struct {
	Filename string `arg help:"File to write dump to."`

	Length         int    `optional type:"int" help:"Number of bytes to dump, omit to use the size recorded in the header."`
	Offset         int    `optional type:"int" help:"Flash offset to start at, the dump is appended to the file."`
	HeaderOnly     bool   `optional name:"header-only" help:"Only dump the firmware header."`
	FirstBlockOnly bool   `optional name:"first-block-only" help:"Only dump the first flash sector."`
	RemoveMagic    bool   `optional name:"remove-magic" help:"Erase the marker the flasher adds so the dump matches the flashed file."`
	DA             string `optional name:"da" help:"Download agent to read through instead of the boot ROM."`
}

func (d *DumpCmd) length(c *Context) (int, error) {
	switch {
	case d.Length > 0:
		return d.Length, nil
	case d.FirstBlockOnly:
		return c.config.SectorSize, nil
	case d.HeaderOnly:
		return fwimage.HeaderSize, nil
	}

	size, err := c.session.FirmwareSize(c.ctx)
	if err != nil {
		return 0, err
	}
	if size == 0 || size == 0xffffffff {
		return 0, errors.New("firmware size is not recorded in the header, use --length")
	}
	c.log.Infof("Header reports %s of firmware", humanBytes(size))
	return int(size), nil
}

func (d *DumpCmd) Run(c *Context) error {
	if d.DA != "" {
		if err := c.loadAgent(d.DA); err != nil {
			return err
		}
	}

	length, err := d.length(c)
	if err != nil {
		return err
	}
	if d.Offset >= length {
		return fmt.Errorf("offset 0x%x is past the end of the firmware", d.Offset)
	}

	region := mthal.FlashRegion{Start: uint32(d.Offset), Length: uint32(length - d.Offset)}
	img, err := c.session.ReadRegion(c.ctx, region)

	var flashErr *mthal.FlashError
	if errors.As(err, &flashErr) && len(flashErr.Data) > 0 {
		if werr := d.write(flashErr.Data); werr != nil {
			return werr
		}
		fmt.Printf("Saved %s, resume with --offset 0x%x\n", humanBytes(uint32(len(flashErr.Data))), flashErr.Offset)
	}
	if err != nil {
		return err
	}

	if d.RemoveMagic {
		if d.Offset != 0 {
			c.log.Warn("Not removing magic, the dump does not contain the header")
		} else if stripped, ok := fwimage.StripProgramMagic(img); ok {
			img = stripped
		} else {
			c.log.Warn("Unable to remove magic, firmware too small")
		}
	}

	if err := d.write(img); err != nil {
		return err
	}
	fmt.Printf("Dumped %s to %s, fingerprint %04x.\n", humanBytes(uint32(len(img))), d.Filename, fwimage.Fingerprint(img))

	if d.Offset == 0 {
		if rec, err := fwimage.Decode(img); err == nil {
			fmt.Printf("Suggested name: %s\n", fwimage.SuggestFilename("", rec))
		} else {
			c.log.Warnf("Dumped header does not decode: %v", err)
		}
	}
	return nil
}

func (d *DumpCmd) write(data []byte) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if d.Offset > 0 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(d.Filename, flags, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
