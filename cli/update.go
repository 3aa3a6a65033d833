package main

import (
	"fmt"
	"os"

	"github.com/BertoldVdb/mt-tools/mthal"
	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
)

/* Images are programmed in whole flash pages */
const flashPageSize = 0x100

type UpdateCmd struct {
	DA       string `arg name:"da" help:"Download agent binary matching the chipset."`
	Firmware string `arg name:"firmware" help:"Firmware file to write."`

	Force bool `optional help:"Write even if the firmware is for a different chipset than the one installed."`
}

func (u *UpdateCmd) Run(c *Context) error {
	data, err := os.ReadFile(u.Firmware)
	if err != nil {
		return err
	}

	img := fwimage.Image(data)
	if err := img.CheckLength(flashPageSize); err != nil {
		return err
	}
	rec, err := fwimage.Decode(img)
	if err != nil {
		return err
	}
	fmt.Printf("Firmware %s build %04d for %s, %d baud, fingerprint %04x\n",
		rec.Version, rec.Build, rec.Chipset, rec.Baud(), fwimage.Fingerprint(img))

	if err := c.loadAgent(u.DA); err != nil {
		return err
	}

	chip, err := c.session.ChipInfo(c.ctx)
	if err != nil {
		return err
	}
	switch {
	case chip.Chipset == fwimage.ChipsetUnknown:
		c.log.Warn("Installed firmware does not identify the chipset, continuing")
	case chip.Chipset != rec.Chipset && !u.Force:
		return fmt.Errorf("device runs %s firmware but file is for %s, use --force to write anyway", chip.Chipset, rec.Chipset)
	case chip.Chipset != rec.Chipset:
		c.log.Warnf("Writing %s firmware to a %s device", rec.Chipset, chip.Chipset)
	}

	region := mthal.FlashRegion{Start: 0, Length: uint32(len(img))}
	if err := c.session.WriteRegion(c.ctx, region, img); err != nil {
		return err
	}

	fmt.Printf("Wrote and verified %s.\n", humanBytes(region.Length))
	return nil
}
