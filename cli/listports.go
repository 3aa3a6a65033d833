package main

import (
	"fmt"

	"github.com/BertoldVdb/mt-tools/mthal"
)

type ListPortsCmd struct {
}

func (l *ListPortsCmd) Run(c *Context) error {
	ports, err := mthal.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	for _, info := range ports {
		if !info.IsUSB {
			fmt.Printf("%s\n", info.Name)
			continue
		}

		selected := ""
		if CLI.Port == "" && matchPort(info) {
			selected = " (matches)"
		}

		fmt.Printf("%s: ID %s:%s %s%s\n", info.Name, info.VID, info.PID, info.Product, selected)
		fmt.Printf("\tSerialNbr    %s\n", info.Serial)
	}
	return nil
}
