package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
	"github.com/fatih/color"
)

type InfoCmd struct {
	Filename string `arg help:"Firmware file to analyze."`
}

func (i *InfoCmd) Run(c *Context) error {
	data, err := os.ReadFile(i.Filename)
	if err != nil {
		return err
	}

	info, err := fwimage.DecodeInfo(fwimage.Image(data))
	if err != nil {
		return err
	}

	printInfo(os.Stdout, info, fwimage.Fingerprint(data))
	if info.RecordErr != nil {
		c.log.Warnf("Customization record does not decode, it cannot be patched: %v", info.RecordErr)
	}
	return nil
}

func printRate(w io.Writer, name string, m byte) {
	switch m {
	case 0:
		fmt.Fprintf(w, " - %s: disabled\n", name)
	case 1:
		fmt.Fprintf(w, " - %s: every fix\n", name)
	default:
		fmt.Fprintf(w, " - %s: every %d fixes\n", name, m)
	}
}

func printInfo(w io.Writer, info fwimage.Info, fingerprint uint16) {
	r := info.Record
	warn := color.New(color.FgRed)

	fmt.Fprintf(w, "Firmware family: %s\n", info.Family)
	fmt.Fprintf(w, "Device type: %s\n", info.DeviceType)
	if info.RecordErr == nil {
		fmt.Fprintf(w, "Chipset: %s\n", r.Chipset)
	}
	fmt.Fprintf(w, "Release name: %s\n", info.ReleaseName)
	fmt.Fprintf(w, "Release version: %d.%d\n", info.ReleaseMajor, info.ReleaseMinor)
	fmt.Fprintf(w, "Build number: %04x\n", info.BuildNumber)
	if info.FirmwareSize == 0 {
		fmt.Fprintf(w, "Firmware size: unknown\n")
	} else {
		fmt.Fprintf(w, "Firmware size: %d (%s)\n", info.FirmwareSize, humanBytes(info.FirmwareSize))
	}
	fmt.Fprintf(w, "Serial port string: %s\n", info.SerialPort)
	fmt.Fprintf(w, "Fingerprint: %04x\n", fingerprint)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Baud rate: %s\n", info.BaudName())
	fmt.Fprintf(w, "NMEA coordinate precision: %d digits\n", info.NMEAPrecision)
	fmt.Fprintf(w, "Update rate: %d Hz\n", info.UpdateRate)
	fmt.Fprintln(w, "Sentence rates:")
	for i, m := range info.Rates {
		printRate(w, fwimage.SentenceNames[i], m)
	}
	printRate(w, "unknown", info.RateUnknown)
	printRate(w, "GLL (2)", info.RateGLL2)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "GPS datum: %s\n", info.Datum)
	if info.NavThresholdSuspect() {
		warn.Fprintf(w, "Nav. threshold: %.2f m/s (raw %d, unexpected)\n", info.NavThresholdSpeed(), info.NavThreshold)
	} else {
		fmt.Fprintf(w, "Nav. threshold: %.2f m/s\n", info.NavThresholdSpeed())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "3D fix LED:")
	fmt.Fprintf(w, " - no fix: %.1f s, %s\n", info.LEDNoFix.Period, info.LEDNoFix.Duty)
	fmt.Fprintf(w, " - fix: %.1f s, %s\n", info.LEDFix.Period, info.LEDFix.Duty)

	if l := info.Locus; l != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "LOCUS settings:")
		fmt.Fprintf(w, " - type: %s\n", l.Type)
		fmt.Fprintf(w, " - mode: %s\n", strings.Join(l.Modes, ", "))
		fmt.Fprintf(w, " - record content: %s\n", strings.Join(l.Content, ", "))
		fmt.Fprintf(w, " - interval: %d\n", l.Interval)
		fmt.Fprintf(w, " - distance: %d\n", l.Distance)
		fmt.Fprintf(w, " - speed: %d\n", l.Speed)
	}

	fmt.Fprintln(w)
	if info.RecordErr != nil {
		warn.Fprintf(w, "Customization record: %v\n", info.RecordErr)
	} else {
		fmt.Fprintf(w, "Suggested name: %s\n", fwimage.SuggestFilename("", r))
	}
}
