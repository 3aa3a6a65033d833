package mthal

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Transport is the byte level link to the module. Reads either return
// exactly the requested amount or fail, there is no partial success.
type Transport interface {
	Write(b []byte) error
	ReadExact(n int, timeout time.Duration) ([]byte, error)
	SetBaud(rate int) error
	Flush() error
	Close() error
}

type dtrSetter interface {
	SetDTR(dtr bool) error
}

type SerialTransport struct {
	port   serial.Port
	name   string
	baud   int
	settle time.Duration
}

func OpenSerial(name string, baud int, settle time.Duration) (*SerialTransport, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, &TransportError{Op: "open " + name, Err: err}
	}

	return &SerialTransport{
		port:   port,
		name:   name,
		baud:   baud,
		settle: settle,
	}, nil
}

func (s *SerialTransport) Write(b []byte) error {
	for len(b) > 0 {
		n, err := s.port.Write(b)
		if err != nil {
			return &TransportError{Op: "write", Err: err}
		}
		b = b[n:]
	}
	if err := s.port.Drain(); err != nil {
		return &TransportError{Op: "drain", Err: err}
	}
	return nil
}

func (s *SerialTransport) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, n)
	deadline := time.Now().Add(timeout)

	got := 0
	for got < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf[:got], timeoutError(fmt.Sprintf("read %d/%d", got, n))
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return buf[:got], &TransportError{Op: "read", Err: err}
		}

		m, err := s.port.Read(buf[got:])
		if err != nil {
			return buf[:got], &TransportError{Op: "read", Err: err}
		}
		got += m
	}

	return buf, nil
}

/* The module UART needs a moment to re-lock after a rate change */
func (s *SerialTransport) SetBaud(rate int) error {
	if err := s.port.SetMode(&serial.Mode{
		BaudRate: rate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}); err != nil {
		return &TransportError{Op: fmt.Sprintf("set baud %d", rate), Err: err}
	}
	s.baud = rate
	time.Sleep(s.settle)
	return nil
}

func (s *SerialTransport) Flush() error {
	if err := s.port.ResetInputBuffer(); err != nil {
		return &TransportError{Op: "flush", Err: err}
	}
	return nil
}

func (s *SerialTransport) SetDTR(dtr bool) error {
	if err := s.port.SetDTR(dtr); err != nil {
		return &TransportError{Op: "set DTR", Err: err}
	}
	return nil
}

func (s *SerialTransport) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

type PortInfo struct {
	Name    string
	IsUSB   bool
	VID     string
	PID     string
	Serial  string
	Product string
}

func ListPorts() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var result []PortInfo
	for _, m := range ports {
		result = append(result, PortInfo{
			Name:    m.Name,
			IsUSB:   m.IsUSB,
			VID:     m.VID,
			PID:     m.PID,
			Serial:  m.SerialNumber,
			Product: m.Product,
		})
	}
	return result, nil
}
