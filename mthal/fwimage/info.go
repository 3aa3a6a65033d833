package fwimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

/* Extended header fields. Their meaning was found by comparing images, so
 * they are only ever displayed and never written back. */
const (
	infoFamilyOffset       = 0x90
	infoReleaseMajorOffset = 0x15a
	infoReleaseMinorOffset = 0x15b
	infoSerialPortOffset   = 0x190
	infoDatumOffset        = 0x11b
	infoNavThreshOffset    = 0x136
	infoLEDNoFixOffset     = 0x121
	infoLEDFixOffset       = 0x122
	infoPrecisionOffset    = 0x162
	infoLocusOffset        = 0x182
	infoRateUnknownOffset  = 0x12a
	infoRateGLL2Offset     = 0x12f
)

const NavThresholdSuspect = 0xa

type LED struct {
	Period float64
	Duty   string
}

type Locus struct {
	Type     string
	Modes    []string
	Content  []string
	Interval uint16
	Distance uint16
	Speed    uint16
}

// Info is everything the header tells about an image. The plain fields are
// read as stored and are filled in even when the record does not decode,
// RecordErr then says why.
type Info struct {
	Record    Record
	RecordErr error

	Family       string
	DeviceType   string
	ReleaseMajor byte
	ReleaseMinor byte
	FirmwareSize uint32
	SerialPort   string
	ReleaseName  string
	BuildNumber  uint16

	BaudIndex  byte
	UpdateRate byte
	Rates      [RateCount]byte

	/* Two more rate bytes whose sentence is not known */
	RateUnknown byte
	RateGLL2    byte

	Datum        string
	NavThreshold byte
	LEDNoFix     LED
	LEDFix       LED

	/* Coordinate digits after the decimal point */
	NMEAPrecision int

	/* Only present on releases newer than 1.51 */
	Locus *Locus
}

/* Speed in m/s below which the position is held */
func (i Info) NavThresholdSpeed() float64 {
	return 0.2 * float64(i.NavThreshold)
}

func (i Info) NavThresholdSuspect() bool {
	return i.NavThreshold > NavThresholdSuspect
}

var ledDuty = []string{"OFF", "50ms", "100ms", "200ms", "1/8", "1/2", "7/8", "ON"}

var locusTypes = []string{"Overlap", "Full-Stop"}

var locusModes = []string{"AlwaysLocate", "Fix Only", "Normal", "Interval", "Distance", "Speed"}

var locusContent = []struct {
	bit  uint
	name string
}{
	{0, "Timestamp"},
	{1, "Validity"},
	{2, "Latitude"},
	{3, "Longitude"},
	{4, "Height"},
	{5, "Speed"},
	{6, "Track"},
	{10, "HDOP"},
	{12, "# Satellites"},
}

func cString(in []byte) string {
	if i := bytes.IndexByte(in, 0); i >= 0 {
		in = in[:i]
	}
	return strings.TrimSpace(string(in))
}

func decodeLED(v byte) LED {
	duty := "unknown"
	if int(v>>5) < len(ledDuty) {
		duty = ledDuty[v>>5]
	}
	return LED{
		Period: 0.5 * float64(v&0x1f+1),
		Duty:   duty,
	}
}

// BaudName is the rate the baud index selects, or "out of range".
func (i Info) BaudName() string {
	if int(i.BaudIndex) < len(BaudRates) {
		return fmt.Sprintf("%d", BaudRates[i.BaudIndex])
	}
	return "out of range"
}

/* rateValue undoes the ASCII storage of a rate digit */
func rateValue(m byte) byte {
	if m >= '0' && m <= '0'+MaxRate {
		return m - '0'
	}
	return m
}

// DecodeInfo only fails on an image too short to hold a header. A record
// that does not decode is reported through Info.RecordErr.
func DecodeInfo(img Image) (Info, error) {
	if len(img) < HeaderSize {
		return Info{}, formatError("header", "image is %d bytes, need at least %d", len(img), HeaderSize)
	}

	r, err := Decode(img)
	info := Info{
		Record:       r,
		RecordErr:    err,
		Family:       cString(img[infoFamilyOffset : infoFamilyOffset+32]),
		DeviceType:   cString(img[DeviceTypeOffset : DeviceTypeOffset+DeviceTypeWidth]),
		ReleaseName:  cString(img[VersionOffset : VersionOffset+VersionWidth]),
		BuildNumber:  binary.LittleEndian.Uint16(img[BuildOffset:]),
		BaudIndex:    img[BaudIndexOffset],
		UpdateRate:   img[UpdateRateOffset],
		RateUnknown:  rateValue(img[infoRateUnknownOffset]),
		RateGLL2:     rateValue(img[infoRateGLL2Offset]),
		ReleaseMajor: img[infoReleaseMajorOffset],
		ReleaseMinor: img[infoReleaseMinorOffset],
		FirmwareSize: binary.LittleEndian.Uint32(img[FirmwareSizeOffset:]),
		SerialPort:   cString(img[infoSerialPortOffset : infoSerialPortOffset+16]),
		NavThreshold: img[infoNavThreshOffset],
		LEDNoFix:     decodeLED(img[infoLEDNoFixOffset]),
		LEDFix:       decodeLED(img[infoLEDFixOffset]),
	}

	for i, offset := range RateOffsets {
		info.Rates[i] = rateValue(img[offset])
	}

	if d := int(img[infoDatumOffset]); d < len(datumNames) {
		info.Datum = datumNames[d]
	} else {
		info.Datum = fmt.Sprintf("#%d", d)
	}

	info.NMEAPrecision = 4
	if img[infoPrecisionOffset]&0x4 != 0 {
		info.NMEAPrecision = 6
	}

	if info.ReleaseMajor > 1 || (info.ReleaseMajor == 1 && info.ReleaseMinor > 51) {
		info.Locus = decodeLocus(img[infoLocusOffset : infoLocusOffset+12])
	}

	return info, nil
}

func decodeLocus(in []byte) *Locus {
	l := &Locus{
		Type:     "unknown",
		Interval: binary.LittleEndian.Uint16(in[6:]),
		Distance: binary.LittleEndian.Uint16(in[8:]),
		Speed:    binary.LittleEndian.Uint16(in[10:]),
	}
	if int(in[0]) < len(locusTypes) {
		l.Type = locusTypes[in[0]]
	}

	for i, name := range locusModes {
		if in[1]&(1<<i) != 0 {
			l.Modes = append(l.Modes, name)
		}
	}

	content := binary.LittleEndian.Uint32(in[2:])
	for _, m := range locusContent {
		if content&(1<<m.bit) != 0 {
			l.Content = append(l.Content, m.name)
		}
	}
	if len(l.Content) > 0 {
		l.Content = append(l.Content, "Checksum")
	}

	return l
}
