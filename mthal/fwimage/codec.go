// Package fwimage reads and writes the customization record of MT333x
// firmware images. Everything here works on plain byte buffers, no device
// is involved.
package fwimage

import "fmt"

// Image is a firmware image as stored in flash. The codec never modifies an
// Image it was given, Encode returns a copy.
type Image []byte

// Record is the decoded customization record.
type Record struct {
	Chipset Chipset

	/* Baud rate divided by 100. The header stores an index into BaudRates,
	 * so only those rates can be encoded. */
	BaudCode uint16

	/* Emit every Nth fix, 0 disables the sentence */
	Rates      [RateCount]byte
	UpdateRate byte

	Version string
	Build   int

	/* Rate digits are stored as ASCII instead of raw values */
	ASCIIRates bool
}

func (r Record) Baud() int {
	return int(r.BaudCode) * 100
}

func (r *Record) SetBaud(baud int) error {
	if baudIndex(baud) < 0 {
		return fmt.Errorf("baud rate %d cannot be stored, use one of %v", baud, BaudRates)
	}
	r.BaudCode = uint16(baud / 100)
	return nil
}

func Decode(img Image) (Record, error) {
	var r Record
	if len(img) < HeaderSize {
		return Record{}, formatError("header", "image is %d bytes, need at least %d", len(img), HeaderSize)
	}

	for _, f := range layout {
		if err := f.decode(img[f.Offset:f.Offset+f.Width], &r); err != nil {
			return Record{}, &FormatError{Field: f.Name, Reason: err.Error()}
		}
	}
	return r, nil
}

func Encode(r Record, base Image) (Image, error) {
	if len(base) < HeaderSize {
		return nil, formatError("header", "image is %d bytes, need at least %d", len(base), HeaderSize)
	}

	out := make(Image, len(base))
	copy(out, base)

	for _, f := range layout {
		if err := f.encode(&r, out[f.Offset:f.Offset+f.Width]); err != nil {
			return nil, &FormatError{Field: f.Name, Reason: err.Error()}
		}
	}
	return out, nil
}

// CheckLength verifies the image can be written in whole flash pages.
func (img Image) CheckLength(pageSize int) error {
	if len(img) < HeaderSize {
		return formatError("length", "image is %d bytes, need at least %d", len(img), HeaderSize)
	}
	if pageSize > 0 && len(img)%pageSize != 0 {
		return formatError("length", "%d bytes is not a multiple of the %d byte page size", len(img), pageSize)
	}
	return nil
}
