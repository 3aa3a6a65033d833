package mthal

/* Checksum16 is the 16-bit accumulator used on the wire and for verifying
 * written flash against the source image. */
type Checksum16 interface {
	Write(p []byte) (int, error)
	Sum16() uint16
	Reset()
}

/* XOR over big endian halfwords, a trailing odd byte counts as the high byte.
 * This is what the boot ROM A4 command reports. */
type xor16 struct {
	sum     uint16
	odd     bool
	pending byte
}

func NewXOR16() Checksum16 {
	return &xor16{}
}

func (x *xor16) Write(p []byte) (int, error) {
	for _, m := range p {
		if x.odd {
			x.sum ^= uint16(x.pending)<<8 | uint16(m)
			x.odd = false
		} else {
			x.pending = m
			x.odd = true
		}
	}
	return len(p), nil
}

func (x *xor16) Sum16() uint16 {
	if x.odd {
		return x.sum ^ uint16(x.pending)<<8
	}
	return x.sum
}

func (x *xor16) Reset() {
	*x = xor16{}
}

/* Plain byte sum truncated to 16 bits, used by the download agent packets */
type sum16 struct {
	sum uint16
}

func NewSum16() Checksum16 {
	return &sum16{}
}

func (s *sum16) Write(p []byte) (int, error) {
	for _, m := range p {
		s.sum += uint16(m)
	}
	return len(p), nil
}

func (s *sum16) Sum16() uint16 {
	return s.sum
}

func (s *sum16) Reset() {
	s.sum = 0
}

func XOR16(p []byte) uint16 {
	x := NewXOR16()
	x.Write(p)
	return x.Sum16()
}

func Sum16(p []byte) uint16 {
	s := NewSum16()
	s.Write(p)
	return s.Sum16()
}
