package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
)

type PatchCmd struct {
	Input  string `arg name:"input" help:"Firmware file to start from."`
	Output string `arg name:"output" help:"File to write the patched firmware to."`

	Baud          int    `optional help:"NMEA baud rate, one of 4800..921600."`
	Rates         string `optional help:"Sentence rates in GGA,GSA,GSV,RMC,VTG,GLL,ZDA order, e.g. 1,1,5,1,1,0,0 or 1151100."`
	UpdateRate    int    `optional name:"update-rate" help:"Fix update rate in Hz."`
	Chipset       string `optional help:"Chipset id to store, e.g. MT3339."`
	VersionString string `optional name:"version-string" help:"Release name to store."`
	Build         int    `optional type:"int" help:"Build number to store." default:"-1"`
}

/* parseRates accepts comma separated values or a digit string where A is 10 */
func parseRates(s string) ([fwimage.RateCount]byte, error) {
	var rates [fwimage.RateCount]byte

	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		for _, m := range s {
			if m == 'A' || m == 'a' {
				parts = append(parts, "10")
			} else {
				parts = append(parts, string(m))
			}
		}
	}

	if len(parts) != fwimage.RateCount {
		return rates, fmt.Errorf("expected %d rates, got %d", fwimage.RateCount, len(parts))
	}

	for i, m := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(m))
		if err != nil {
			return rates, fmt.Errorf("%s rate: %w", fwimage.SentenceNames[i], err)
		}
		if v < 0 || v > fwimage.MaxRate {
			return rates, fmt.Errorf("%s rate %d is outside 0..%d", fwimage.SentenceNames[i], v, fwimage.MaxRate)
		}
		rates[i] = byte(v)
	}
	return rates, nil
}

func (p *PatchCmd) apply(r *fwimage.Record) error {
	if p.Baud != 0 {
		if err := r.SetBaud(p.Baud); err != nil {
			return err
		}
	}
	if p.Rates != "" {
		rates, err := parseRates(p.Rates)
		if err != nil {
			return err
		}
		r.Rates = rates
	}
	if p.UpdateRate != 0 {
		if p.UpdateRate < 0 || p.UpdateRate > 0xff {
			return fmt.Errorf("update rate %d is out of range", p.UpdateRate)
		}
		r.UpdateRate = byte(p.UpdateRate)
	}
	if p.Chipset != "" {
		chip, err := fwimage.ChipsetByName(p.Chipset)
		if err != nil {
			return err
		}
		r.Chipset = chip
	}
	if p.VersionString != "" {
		r.Version = p.VersionString
	}
	if p.Build >= 0 {
		r.Build = p.Build
	}
	return nil
}

func (p *PatchCmd) Run(c *Context) error {
	in, err := os.ReadFile(p.Input)
	if err != nil {
		return err
	}

	rec, err := fwimage.Decode(in)
	if err != nil {
		return err
	}

	if err := p.apply(&rec); err != nil {
		return err
	}

	out, err := fwimage.Encode(rec, in)
	if err != nil {
		return err
	}

	changed := headerChanges(in, out)
	if changed == nil {
		return errors.New("Nothing to change")
	}
	fmt.Print(hexdump(0, out[:fwimage.HeaderSize], changed))

	if err := os.WriteFile(p.Output, out, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s, fingerprint %04x, suggested name %s\n", p.Output, fwimage.Fingerprint(out), fwimage.SuggestFilename("", rec))
	return nil
}

/* headerChanges marks the header bytes that differ, nil when none do */
func headerChanges(a []byte, b []byte) []bool {
	var mark []bool
	for i := 0; i < fwimage.HeaderSize; i++ {
		if a[i] != b[i] {
			if mark == nil {
				mark = make([]bool, fwimage.HeaderSize)
			}
			mark[i] = true
		}
	}
	return mark
}
