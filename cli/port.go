package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BertoldVdb/mt-tools/mthal"
)

func matchPort(info mthal.PortInfo) bool {
	if !info.IsUSB {
		return false
	}
	if CLI.VID != 0 && !strings.EqualFold(info.VID, fmt.Sprintf("%04x", CLI.VID)) {
		return false
	}
	if CLI.PID != 0 && !strings.EqualFold(info.PID, fmt.Sprintf("%04x", CLI.PID)) {
		return false
	}
	return true
}

func findPort() (string, error) {
	if CLI.Port != "" {
		return CLI.Port, nil
	}

	ports, err := mthal.ListPorts()
	if err != nil {
		return "", err
	}
	for _, m := range ports {
		if matchPort(m) {
			return m.Name, nil
		}
	}
	return "", fmt.Errorf("no serial port found, use --port: %w", os.ErrNotExist)
}

func (c *Context) openSession() error {
	name, err := findPort()
	if err != nil {
		return err
	}

	t, err := mthal.OpenSerial(name, c.config.BootBaud, c.settle)
	if err != nil {
		return err
	}
	c.log.Infof("Opened %s", name)

	c.session = mthal.New(t, c.config)
	if err := c.session.Connect(c.ctx); err != nil {
		c.session.Close()
		return err
	}
	return nil
}

func (c *Context) loadAgent(filename string) error {
	if running, ok := c.session.Agent(); ok {
		c.log.Debugf("Download agent %04x already running", running.Version)
		return nil
	}

	payload, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := c.session.LoadAgent(c.ctx, payload); err != nil {
		return err
	}

	info, _ := c.session.Agent()
	fmt.Printf("Download agent running: flash id %02x, %s (mfr %04x dev %04x)\n",
		info.FlashDeviceID, humanBytes(info.FlashSize), info.FlashManufacturer, info.FlashDevice)
	return nil
}
