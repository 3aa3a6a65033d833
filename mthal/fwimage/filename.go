package fwimage

import (
	"fmt"
	"strings"
)

// SuggestFilename builds the conventional name for an image, e.g.
// "AXN_3.8_0051_MT3333_96.1151100.1.bin". The name is only a hint for
// humans, nothing ever parses it back.
func SuggestFilename(prefix string, r Record) string {
	var digits strings.Builder
	for _, m := range r.Rates {
		if m == MaxRate {
			digits.WriteByte('A')
		} else {
			digits.WriteByte('0' + m)
		}
	}

	version := strings.Map(func(c rune) rune {
		if c == '/' || c == '\\' || c == ' ' {
			return '_'
		}
		return c
	}, r.Version)

	return fmt.Sprintf("%s%s_%04d_%s_%d.%s.%d.bin", prefix, version, r.Build, r.Chipset, r.BaudCode, digits.String(), r.UpdateRate)
}
