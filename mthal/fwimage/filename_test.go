package fwimage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestFilename(t *testing.T) {
	r := Record{
		Chipset:    ChipsetMT3333,
		BaudCode:   96,
		Rates:      [RateCount]byte{1, 1, 5, 1, 1, 0, 0},
		UpdateRate: 1,
		Version:    "AXN_3.8",
		Build:      51,
	}
	assert.Equal(t, "AXN_3.8_0051_MT3333_96.1151100.1.bin", SuggestFilename("", r))

	r.Rates[RateZDA] = 10
	r.Version = "AXN 3/8"
	r.UpdateRate = 10
	assert.Equal(t, "dump_AXN_3_8_0051_MT3333_96.115110A.10.bin", SuggestFilename("dump_", r))
}
