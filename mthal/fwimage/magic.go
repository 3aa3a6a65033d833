package fwimage

import "github.com/sigurn/crc16"

const (
	programMagicOffset = 0x5c
	programMagicWidth  = 4
)

var crcTab = crc16.MakeTable(crc16.CRC16_XMODEM)

// StripProgramMagic returns a copy of img with the marker the flasher adds
// during programming erased, so a dump compares equal to the file it was
// written from. Images too short to hold the marker are returned unchanged
// with ok set to false.
func StripProgramMagic(img Image) (out Image, ok bool) {
	out = make(Image, len(img))
	copy(out, img)

	if len(out) < programMagicOffset+programMagicWidth {
		return out, false
	}
	for i := 0; i < programMagicWidth; i++ {
		out[programMagicOffset+i] = 0xff
	}
	return out, true
}

func Fingerprint(img Image) uint16 {
	return crc16.Checksum(img, crcTab)
}
