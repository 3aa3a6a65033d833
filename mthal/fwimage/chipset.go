package fwimage

import (
	"fmt"
	"strings"
)

type Chipset byte

const (
	ChipsetUnknown Chipset = 0x00
	ChipsetMT3318  Chipset = 0x18
	ChipsetMT3329  Chipset = 0x29
	ChipsetMT3333  Chipset = 0x33
	ChipsetMT3339  Chipset = 0x39
)

var chipsetNames = map[Chipset]string{
	ChipsetMT3318: "MT3318",
	ChipsetMT3329: "MT3329",
	ChipsetMT3333: "MT3333",
	ChipsetMT3339: "MT3339",
}

func (c Chipset) Known() bool {
	_, ok := chipsetNames[c]
	return ok
}

func (c Chipset) String() string {
	if name, ok := chipsetNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%02x)", byte(c))
}

var knownChipsets = []Chipset{ChipsetMT3318, ChipsetMT3329, ChipsetMT3333, ChipsetMT3339}

/* partNumber is the name without the MT prefix, e.g. "3333" */
func (c Chipset) partNumber() string {
	return strings.TrimPrefix(chipsetNames[c], "MT")
}

// ChipsetFromDeviceType finds the chipset named by a device type string such
// as "MT3333" or "GTop 3339". Anything else is ChipsetUnknown.
func ChipsetFromDeviceType(text string) Chipset {
	for _, c := range knownChipsets {
		if strings.Contains(text, c.partNumber()) {
			return c
		}
	}
	return ChipsetUnknown
}

// ChipsetByName accepts "MT3333", "3333" or "mt3333".
func ChipsetByName(name string) (Chipset, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "MT") {
		name = "MT" + name
	}

	for c, n := range chipsetNames {
		if n == name {
			return c, nil
		}
	}
	return ChipsetUnknown, fmt.Errorf("unknown chipset %q", name)
}
