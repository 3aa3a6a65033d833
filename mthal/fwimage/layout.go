package fwimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	HeaderSize = 0x200

	DeviceTypeOffset = 0x1b0
	DeviceTypeWidth  = 16
	UpdateRateOffset = 0x11c
	BaudIndexOffset  = 0x120
	VersionOffset    = 0x148
	VersionWidth     = 8
	BuildOffset      = 0x108

	FirmwareSizeOffset = 0xf4
)

/* Sentence order of Record.Rates */
const (
	RateGGA = iota
	RateGSA
	RateGSV
	RateRMC
	RateVTG
	RateGLL
	RateZDA
	RateCount
)

var SentenceNames = [RateCount]string{"GGA", "GSA", "GSV", "RMC", "VTG", "GLL", "ZDA"}

/* The sentence rates are not stored in sentence order */
var RateOffsets = [RateCount]int{
	RateGGA: 0x128,
	RateGSA: 0x12c,
	RateGSV: 0x12b,
	RateRMC: 0x12e,
	RateVTG: 0x12d,
	RateGLL: 0x129,
	RateZDA: 0x138,
}

// BaudRates is indexed by the baud byte of the header.
var BaudRates = []int{115200, 921600, 460800, 230400, 57600, 38400, 19200, 14400, 9600, 4800}

const (
	MaxRate       = 10
	MaxUpdateRate = 10
	MaxBuild      = 9999
)

// Span is the location of one header field.
type Span struct {
	Name   string
	Offset int
	Width  int
}

/* field is one entry of the header layout. decode and encode only ever see
 * the width bytes at offset. */
type field struct {
	Span
	decode func(in []byte, r *Record) error
	encode func(r *Record, out []byte) error
}

var layout = buildLayout()

func buildLayout() []field {
	fields := []field{
		{
			Span:   Span{"chipset", DeviceTypeOffset, DeviceTypeWidth},
			decode: decodeChipset,
			encode: encodeChipset,
		},
		{
			Span:   Span{"baud", BaudIndexOffset, 1},
			decode: decodeBaud,
			encode: encodeBaud,
		},
	}

	/* GGA comes first, it decides how the other digits must be stored */
	for i := 0; i < RateCount; i++ {
		fields = append(fields, rateField(i))
	}

	return append(fields,
		field{
			Span: Span{"update rate", UpdateRateOffset, 1},
			decode: func(in []byte, r *Record) error {
				if in[0] < 1 || in[0] > MaxUpdateRate {
					return fmt.Errorf("%d Hz is outside 1..%d", in[0], MaxUpdateRate)
				}
				r.UpdateRate = in[0]
				return nil
			},
			encode: func(r *Record, out []byte) error {
				if r.UpdateRate < 1 || r.UpdateRate > MaxUpdateRate {
					return fmt.Errorf("%d Hz is outside 1..%d", r.UpdateRate, MaxUpdateRate)
				}
				out[0] = r.UpdateRate
				return nil
			},
		},
		field{
			Span:   Span{"version", VersionOffset, VersionWidth},
			decode: decodeVersion,
			encode: encodeVersion,
		},
		field{
			Span: Span{"build", BuildOffset, 2},
			decode: func(in []byte, r *Record) error {
				v, err := bcdDecode(binary.LittleEndian.Uint16(in))
				if err != nil {
					return err
				}
				r.Build = v
				return nil
			},
			encode: func(r *Record, out []byte) error {
				if r.Build < 0 || r.Build > MaxBuild {
					return fmt.Errorf("%d is outside 0..%d", r.Build, MaxBuild)
				}
				binary.LittleEndian.PutUint16(out, bcdEncode(r.Build))
				return nil
			},
		},
	)
}

// Spans lists the header bytes owned by the customization record.
func Spans() []Span {
	spans := make([]Span, len(layout))
	for i, f := range layout {
		spans[i] = f.Span
	}
	return spans
}

/* The chipset has no byte of its own, it is named by the device type string */
func decodeChipset(in []byte, r *Record) error {
	text, err := headerString(in)
	if err != nil {
		return err
	}
	r.Chipset = ChipsetFromDeviceType(text)
	return nil
}

/* encodeChipset renames the chipset inside the device type string. The
 * string keeps its length, only the part number digits change. */
func encodeChipset(r *Record, out []byte) error {
	text, err := headerString(out)
	if err != nil {
		return err
	}

	current := ChipsetFromDeviceType(text)
	if r.Chipset == current {
		return nil
	}
	if !r.Chipset.Known() {
		return fmt.Errorf("unknown chipset id %02x", byte(r.Chipset))
	}
	if !current.Known() {
		return fmt.Errorf("device type %q does not name a chipset", text)
	}

	i := bytes.Index(out, []byte(current.partNumber()))
	copy(out[i:], r.Chipset.partNumber())
	return nil
}

func decodeBaud(in []byte, r *Record) error {
	if int(in[0]) >= len(BaudRates) {
		return fmt.Errorf("baud index %d is out of range", in[0])
	}
	r.BaudCode = uint16(BaudRates[in[0]] / 100)
	return nil
}

func encodeBaud(r *Record, out []byte) error {
	index := baudIndex(r.Baud())
	if index < 0 {
		return fmt.Errorf("%d baud cannot be stored", r.Baud())
	}
	out[0] = byte(index)
	return nil
}

func baudIndex(baud int) int {
	for i, m := range BaudRates {
		if m == baud {
			return i
		}
	}
	return -1
}

func rateField(index int) field {
	return field{
		Span: Span{SentenceNames[index] + " rate", RateOffsets[index], 1},
		decode: func(in []byte, r *Record) error {
			return decodeRate(index, in[0], r)
		},
		encode: func(r *Record, out []byte) error {
			return encodeRate(index, r, out)
		},
	}
}

/* A rate is a raw value 0..10 or an ASCII digit '0'..':'. Real headers never
 * mix the two, so every digit has to match the way GGA is stored. */
func decodeRate(index int, m byte, r *Record) error {
	ascii := m >= '0' && m <= '0'+MaxRate
	if !ascii && m > MaxRate {
		return fmt.Errorf("digit %02x is outside 0..%d", m, MaxRate)
	}

	if index == RateGGA {
		r.ASCIIRates = ascii
	} else if ascii != r.ASCIIRates {
		return fmt.Errorf("digit %02x mixes ASCII and raw storage", m)
	}

	if ascii {
		m -= '0'
	}
	r.Rates[index] = m
	return nil
}

func encodeRate(index int, r *Record, out []byte) error {
	m := r.Rates[index]
	if m > MaxRate {
		return fmt.Errorf("%d is outside 0..%d", m, MaxRate)
	}
	if r.ASCIIRates {
		m += '0'
	}
	out[0] = m
	return nil
}

func printable(b byte) bool {
	return b >= 0x20 && b < 0x7f
}

/* headerString accepts printable text padded with NULs only */
func headerString(in []byte) (string, error) {
	text := in
	if i := bytes.IndexByte(in, 0); i >= 0 {
		text = in[:i]
		for _, m := range in[i:] {
			if m != 0 {
				return "", fmt.Errorf("data after terminator")
			}
		}
	}

	for _, m := range text {
		if !printable(m) {
			return "", fmt.Errorf("non printable byte %02x", m)
		}
	}
	return string(text), nil
}

func decodeVersion(in []byte, r *Record) error {
	text, err := headerString(in)
	if err != nil {
		return err
	}
	r.Version = text
	return nil
}

func encodeVersion(r *Record, out []byte) error {
	if len(r.Version) > len(out) {
		return fmt.Errorf("%q is longer than %d bytes", r.Version, len(out))
	}
	if strings.IndexFunc(r.Version, func(c rune) bool { return c > 0x7f || !printable(byte(c)) }) >= 0 {
		return fmt.Errorf("%q is not printable", r.Version)
	}

	n := copy(out, r.Version)
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return nil
}

func bcdDecode(v uint16) (int, error) {
	result := 0
	for shift := 12; shift >= 0; shift -= 4 {
		digit := int(v>>shift) & 0xf
		if digit > 9 {
			return 0, fmt.Errorf("%04x is not BCD", v)
		}
		result = result*10 + digit
	}
	return result, nil
}

func bcdEncode(v int) uint16 {
	var result uint16
	for shift := 0; shift < 16; shift += 4 {
		result |= uint16(v%10) << shift
		v /= 10
	}
	return result
}
